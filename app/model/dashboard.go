package model

// RiskDistribution buckets a set of students by the risk level of their
// latest prediction; students with no prediction land in Unknown. The four
// counts always sum to the size of the set.
type RiskDistribution struct {
	Low     int `json:"low"`
	Medium  int `json:"medium"`
	High    int `json:"high"`
	Unknown int `json:"unknown"`
}

type StudentDashboard struct {
	ProfileComplete  bool              `json:"profileComplete"`
	Message          string            `json:"message,omitempty"`
	GPA              float64           `json:"gpa,omitempty"`
	Attendance       float64           `json:"attendance,omitempty"`
	CurrentRisk      string            `json:"currentRisk,omitempty"`
	CurrentRiskScore int               `json:"currentRiskScore"`
	TotalPredictions int64             `json:"totalPredictions,omitempty"`
	Mentor           *UserSummary      `json:"mentor,omitempty"`
	Recommendations  []Recommendation  `json:"recommendations,omitempty"`
	PredictionTrend  []Prediction      `json:"predictionTrend,omitempty"`
	LatestFactors    *RiskFactors      `json:"latestPredictionFactors,omitempty"`
	Sessions         []SessionResponse `json:"counselingSessions,omitempty"`
}

type MentorDashboard struct {
	TotalStudents     int               `json:"totalStudents"`
	RiskDistribution  RiskDistribution  `json:"riskDistribution"`
	HighRiskStudents  []StudentWithRisk `json:"highRiskStudents"`
	AvgGPA            float64           `json:"avgGPA"`
	AvgAttendance     float64           `json:"avgAttendance"`
	Students          []StudentWithRisk `json:"students"`
	PendingSessions   []SessionResponse `json:"pendingSessions"`
	ScheduledSessions []SessionResponse `json:"sessions"`
}

type AdminDashboard struct {
	TotalUsers       int64                `json:"totalUsers"`
	TotalStudents    int64                `json:"totalStudents"`
	TotalMentors     int64                `json:"totalMentors"`
	TotalAdmins      int64                `json:"totalAdmins"`
	TotalPredictions int64                `json:"totalPredictions"`
	RiskDistribution RiskDistribution     `json:"riskDistribution"`
	AvgGPA           float64              `json:"avgGPA"`
	AvgAttendance    float64              `json:"avgAttendance"`
	RecentActivity   []PredictionResponse `json:"recentActivity"`
	HighRiskStudents []StudentWithRisk    `json:"highRiskStudents"`
}
