package service

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fiber/edurisk/app/model"
)

// Ownership predicates shared by the session, student and dashboard
// handlers. Role gating happens in middleware; these decide whether a
// particular actor may touch a particular record.

// MentorOwnsStudent reports whether the student user is assigned to the
// acting mentor.
func MentorOwnsStudent(studentUser *model.User, mentorID primitive.ObjectID) bool {
	return studentUser.AssignedMentor != nil && *studentUser.AssignedMentor == mentorID
}

// MentorOwnsSession reports whether the acting mentor is the session's
// mentor.
func MentorOwnsSession(session *model.Session, mentorID primitive.ObjectID) bool {
	return session.MentorID == mentorID
}

// StudentOwnsPrediction reports whether the prediction snapshot belongs to
// the acting student.
func StudentOwnsPrediction(prediction *model.Prediction, userID primitive.ObjectID) bool {
	return prediction.UserID == userID
}
