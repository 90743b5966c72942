package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// RiskFactors holds the five reported sub-factor scores, each 0-100.
type RiskFactors struct {
	Academic   int `bson:"academic" json:"academic"`
	Behavioral int `bson:"behavioral" json:"behavioral"`
	Social     int `bson:"social" json:"social"`
	Health     int `bson:"health" json:"health"`
	Support    int `bson:"support" json:"support"`
}

type Recommendation struct {
	Category   string `bson:"category" json:"category"`
	Suggestion string `bson:"suggestion" json:"suggestion"`
	Priority   string `bson:"priority" json:"priority"`
}

// Prediction is an immutable snapshot of one risk engine invocation,
// including a copy of the profile attributes it was computed from.
type Prediction struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID       primitive.ObjectID `bson:"studentId" json:"student_id"`
	UserID          primitive.ObjectID `bson:"userId" json:"user_id"`
	RiskLevel       string             `bson:"riskLevel" json:"risk_level"`
	RiskScore       int                `bson:"riskScore" json:"risk_score"`
	Factors         RiskFactors        `bson:"factors" json:"factors"`
	Recommendations []Recommendation   `bson:"recommendations" json:"recommendations"`
	InputData       Student            `bson:"inputData" json:"input_data"`
	CreatedAt       time.Time          `bson:"createdAt" json:"created_at"`
}

// PredictionResponse joins the snapshot with its owning user and profile
// identifiers for list views and exports.
type PredictionResponse struct {
	Prediction
	User           *UserSummary `json:"user,omitempty"`
	StudentNumber  string       `json:"student_number,omitempty"`
	CurrentGrade   string       `json:"current_grade,omitempty"`
	GPA            float64      `json:"gpa,omitempty"`
	AttendancePct  float64      `json:"attendance,omitempty"`
}

type PredictionHistoryResponse struct {
	Success     bool                 `json:"success"`
	Count       int                  `json:"count"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	Pages       int                  `json:"pages"`
	Predictions []PredictionResponse `json:"predictions"`
}
