package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

type Student struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"user_id"`
	StudentID string             `bson:"studentId" json:"student_id"`

	// Academic
	CurrentGrade      string  `bson:"currentGrade" json:"current_grade"`
	GPA               float64 `bson:"gpa" json:"gpa"`
	Attendance        float64 `bson:"attendance" json:"attendance"`
	StudyHoursPerWeek float64 `bson:"studyHoursPerWeek" json:"study_hours_per_week"`
	TutoringHours     float64 `bson:"tutoringHours" json:"tutoring_hours"`

	// Behavioral
	DisciplinaryActions       int `bson:"disciplinaryActions" json:"disciplinary_actions"`
	ExtracurricularActivities int `bson:"extracurricularActivities" json:"extracurricular_activities"`

	// Family & social
	ParentalSupport string  `bson:"parentalSupport" json:"parental_support"`
	FamilyIncome    string  `bson:"familyIncome" json:"family_income"`
	WorkingHours    float64 `bson:"workingHours" json:"working_hours"`

	// Health & wellbeing
	HealthIssues        bool `bson:"healthIssues" json:"health_issues"`
	MentalHealthSupport bool `bson:"mentalHealthSupport" json:"mental_health_support"`

	// Transportation & access
	TransportationIssues bool `bson:"transportationIssues" json:"transportation_issues"`
	InternetAccess       bool `bson:"internetAccess" json:"internet_access"`

	Notes     string    `bson:"notes" json:"notes"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

type UpsertProfileRequest struct {
	StudentID                 string  `json:"student_id"`
	CurrentGrade              string  `json:"current_grade"`
	GPA                       float64 `json:"gpa" validate:"gte=0,lte=10"`
	Attendance                float64 `json:"attendance" validate:"gte=0,lte=100"`
	StudyHoursPerWeek         float64 `json:"study_hours_per_week" validate:"gte=0"`
	TutoringHours             float64 `json:"tutoring_hours" validate:"gte=0"`
	DisciplinaryActions       int     `json:"disciplinary_actions" validate:"gte=0"`
	ExtracurricularActivities int     `json:"extracurricular_activities" validate:"gte=0"`
	ParentalSupport           string  `json:"parental_support" validate:"required,oneof=low medium high"`
	FamilyIncome              string  `json:"family_income" validate:"required,oneof=low medium high"`
	WorkingHours              float64 `json:"working_hours" validate:"gte=0"`
	HealthIssues              bool    `json:"health_issues"`
	MentalHealthSupport       bool    `json:"mental_health_support"`
	TransportationIssues      bool    `json:"transportation_issues"`
	InternetAccess            bool    `json:"internet_access"`
	Notes                     string  `json:"notes"`
}

// StudentWithRisk is a roster row: the profile joined with the student's
// latest prediction, defaulting to "unknown"/0 when none exists.
type StudentWithRisk struct {
	ID             primitive.ObjectID  `json:"id"`
	UserID         primitive.ObjectID  `json:"user_id"`
	StudentID      string              `json:"student_id"`
	Name           string              `json:"name"`
	Email          string              `json:"email"`
	GPA            float64             `json:"gpa"`
	Attendance     float64             `json:"attendance"`
	AssignedMentor *primitive.ObjectID `json:"assigned_mentor,omitempty"`
	RiskLevel      string              `json:"risk_level"`
	RiskScore      int                 `json:"risk_score"`
	LastUpdated    time.Time           `json:"last_updated"`
}
