package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionStatus string

const (
	SessionPending     SessionStatus = "pending"
	SessionScheduled   SessionStatus = "scheduled"
	SessionCompleted   SessionStatus = "completed"
	SessionCancelled   SessionStatus = "cancelled"
	SessionRescheduled SessionStatus = "rescheduled"
)

const DefaultSessionDuration = 60

// Session is a counseling meeting between a student user and a mentor user.
// Rejection is a status change to cancelled, never a removal.
type Session struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID     primitive.ObjectID `bson:"studentId" json:"student_id"`
	MentorID      primitive.ObjectID `bson:"mentorId" json:"mentor_id"`
	ScheduledDate time.Time          `bson:"scheduledDate" json:"scheduled_date"`
	Duration      int                `bson:"duration" json:"duration"`
	Topic         string             `bson:"topic" json:"topic"`
	Status        SessionStatus      `bson:"status" json:"status"`
	Notes         string             `bson:"notes" json:"notes"`
	MeetingLink   string             `bson:"meetingLink" json:"meeting_link"`
	CreatedAt     time.Time          `bson:"createdAt" json:"created_at"`
}

type SessionResponse struct {
	Session
	Student *UserSummary `json:"student,omitempty"`
	Mentor  *UserSummary `json:"mentor,omitempty"`
}

type CreateSessionRequest struct {
	SessionType string `json:"sessionType"`
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time" validate:"required"`
	Notes       string `json:"notes"`
}

type BookSessionRequest struct {
	StudentID     string `json:"studentId" validate:"required"`
	MentorID      string `json:"mentorId"`
	ScheduledDate string `json:"scheduledDate" validate:"required"`
	Duration      int    `json:"duration" validate:"gte=0"`
	Topic         string `json:"topic" validate:"required"`
	Notes         string `json:"notes"`
	MeetingLink   string `json:"meetingLink"`
}

type ApproveSessionRequest struct {
	ScheduledDate string `json:"scheduledDate"`
	Duration      int    `json:"duration" validate:"gte=0"`
}
