// Package risk implements the weighted-factor dropout scoring engine. All
// functions are pure: same profile in, same score out.
package risk

import (
	"math"

	"fiber/edurisk/app/model"
)

// Sub-factor weights. Must sum to 1.
const (
	weightAcademic   = 0.30
	weightBehavioral = 0.20
	weightSocial     = 0.25
	weightHealth     = 0.15
	weightSupport    = 0.10
)

var supportMap = map[string]float64{
	model.LevelLow:    100,
	model.LevelMedium: 50,
	model.LevelHigh:   0,
}

var incomeMap = map[string]float64{
	model.LevelLow:    100,
	model.LevelMedium: 40,
	model.LevelHigh:   0,
}

// Compute scores a student profile. The returned total is the weighted sum
// of the unrounded sub-factors, clamped to [0,100] and rounded; the returned
// factors are the per-factor scores rounded for reporting. Recommendation
// thresholds are evaluated against the rounded factors.
func Compute(s model.Student) (int, model.RiskFactors) {
	gpaScore := (10 - s.GPA) * 10
	attendanceScore := 100 - s.Attendance
	academic := gpaScore*0.6 + attendanceScore*0.4

	disciplinaryScore := math.Min(float64(s.DisciplinaryActions)*20, 100)
	extracurricularScore := math.Max(0, 100-float64(s.ExtracurricularActivities)*20)
	behavioral := disciplinaryScore*0.7 + extracurricularScore*0.3

	workingHoursScore := math.Min(s.WorkingHours*5, 100)
	social := supportMap[s.ParentalSupport]*0.4 +
		incomeMap[s.FamilyIncome]*0.3 +
		workingHoursScore*0.3

	healthScore := 0.0
	if s.HealthIssues {
		healthScore = 70
	}
	mentalHealthScore := 40.0
	if s.MentalHealthSupport {
		mentalHealthScore = 0
	}
	health := healthScore*0.6 + mentalHealthScore*0.4

	studyHoursScore := math.Max(0, 100-s.StudyHoursPerWeek*5)
	tutoringScore := math.Max(0, 100-s.TutoringHours*10)
	transportScore := 0.0
	if s.TransportationIssues {
		transportScore = 50
	}
	internetScore := 30.0
	if s.InternetAccess {
		internetScore = 0
	}
	support := studyHoursScore*0.3 + tutoringScore*0.2 + transportScore*0.25 + internetScore*0.25

	total := academic*weightAcademic +
		behavioral*weightBehavioral +
		social*weightSocial +
		health*weightHealth +
		support*weightSupport
	total = math.Min(100, math.Max(0, total))

	factors := model.RiskFactors{
		Academic:   int(math.Round(academic)),
		Behavioral: int(math.Round(behavioral)),
		Social:     int(math.Round(social)),
		Health:     int(math.Round(health)),
		Support:    int(math.Round(support)),
	}

	return int(math.Round(total)), factors
}

// Level classifies a risk score. 33 and 67 belong to medium and high
// respectively.
func Level(score int) string {
	if score < 33 {
		return model.LevelLow
	}
	if score < 67 {
		return model.LevelMedium
	}
	return model.LevelHigh
}

// Recommend builds the ordered advice list. Every matching rule fires; none
// suppress others.
func Recommend(s model.Student, score int, factors model.RiskFactors) []model.Recommendation {
	recs := []model.Recommendation{}

	if factors.Academic > 50 {
		if s.GPA < 6.25 {
			recs = append(recs, model.Recommendation{
				Category:   "Academic",
				Suggestion: "Enroll in academic tutoring program to improve GPA",
				Priority:   model.PriorityHigh,
			})
		}
		if s.Attendance < 75 {
			recs = append(recs, model.Recommendation{
				Category:   "Academic",
				Suggestion: "Work with counselor on attendance improvement plan",
				Priority:   model.PriorityHigh,
			})
		}
	}

	if factors.Behavioral > 50 {
		if s.DisciplinaryActions > 2 {
			recs = append(recs, model.Recommendation{
				Category:   "Behavioral",
				Suggestion: "Schedule behavioral counseling sessions",
				Priority:   model.PriorityMedium,
			})
		}
		if s.ExtracurricularActivities == 0 {
			recs = append(recs, model.Recommendation{
				Category:   "Engagement",
				Suggestion: "Encourage participation in extracurricular activities",
				Priority:   model.PriorityMedium,
			})
		}
	}

	if factors.Social > 60 {
		if s.ParentalSupport == model.LevelLow {
			recs = append(recs, model.Recommendation{
				Category:   "Family Support",
				Suggestion: "Connect family with support services and resources",
				Priority:   model.PriorityHigh,
			})
		}
		if s.WorkingHours > 15 {
			recs = append(recs, model.Recommendation{
				Category:   "Work-Life Balance",
				Suggestion: "Discuss reducing work hours to focus on academics",
				Priority:   model.PriorityMedium,
			})
		}
	}

	if factors.Health > 40 {
		recs = append(recs, model.Recommendation{
			Category:   "Health & Wellbeing",
			Suggestion: "Provide access to health and mental health services",
			Priority:   model.PriorityHigh,
		})
	}

	if factors.Support > 50 {
		if s.StudyHoursPerWeek < 10 {
			recs = append(recs, model.Recommendation{
				Category:   "Study Habits",
				Suggestion: "Develop structured study schedule with mentor",
				Priority:   model.PriorityMedium,
			})
		}
		if !s.InternetAccess {
			recs = append(recs, model.Recommendation{
				Category:   "Resources",
				Suggestion: "Arrange internet access through school programs",
				Priority:   model.PriorityHigh,
			})
		}
	}

	if score > 67 {
		recs = append(recs, model.Recommendation{
			Category:   "Urgent",
			Suggestion: "Schedule immediate intervention meeting with counselor and mentor",
			Priority:   model.PriorityCritical,
		})
	}

	return recs
}
