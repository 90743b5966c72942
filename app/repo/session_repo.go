package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fiber/edurisk/app/model"
)

type SessionRepository interface {
	Create(session *model.Session) error
	FindByID(id primitive.ObjectID) (*model.Session, error)
	FindByStudent(studentID primitive.ObjectID, statuses []model.SessionStatus) ([]model.Session, error)
	FindByMentor(mentorID primitive.ObjectID, statuses []model.SessionStatus) ([]model.Session, error)
	FindScheduledFrom(mentorID primitive.ObjectID, from time.Time) ([]model.Session, error)
	ApproveIfPending(id primitive.ObjectID, scheduledDate *time.Time, duration *int) (*model.Session, error)
	RejectIfPending(id primitive.ObjectID) error
	DeleteByStudent(studentID primitive.ObjectID) error
}

type SessionRepo struct {
	coll *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) *SessionRepo {
	return &SessionRepo{coll: db.Collection("sessions")}
}

func (r *SessionRepo) Create(session *model.Session) error {
	session.CreatedAt = time.Now()

	res, err := r.coll.InsertOne(context.TODO(), session)
	if err != nil {
		return err
	}
	session.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *SessionRepo) FindByID(id primitive.ObjectID) (*model.Session, error) {
	var s model.Session
	err := r.coll.FindOne(context.TODO(), bson.M{"_id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) FindByStudent(studentID primitive.ObjectID, statuses []model.SessionStatus) ([]model.Session, error) {
	filter := bson.M{"studentId": studentID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.findMany(filter, opts)
}

func (r *SessionRepo) FindByMentor(mentorID primitive.ObjectID, statuses []model.SessionStatus) ([]model.Session, error) {
	filter := bson.M{"mentorId": mentorID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.findMany(filter, opts)
}

func (r *SessionRepo) FindScheduledFrom(mentorID primitive.ObjectID, from time.Time) ([]model.Session, error) {
	filter := bson.M{
		"mentorId":      mentorID,
		"status":        model.SessionScheduled,
		"scheduledDate": bson.M{"$gte": from},
	}
	opts := options.Find().SetSort(bson.D{{Key: "scheduledDate", Value: 1}})
	return r.findMany(filter, opts)
}

// ApproveIfPending transitions pending -> scheduled in a single conditional
// update so two concurrent approvals cannot both succeed. Returns
// ErrAlreadyProcessed when the session is no longer pending.
func (r *SessionRepo) ApproveIfPending(id primitive.ObjectID, scheduledDate *time.Time, duration *int) (*model.Session, error) {
	set := bson.M{"status": model.SessionScheduled}
	if scheduledDate != nil {
		set["scheduledDate"] = *scheduledDate
	}
	if duration != nil {
		set["duration"] = *duration
	}

	filter := bson.M{"_id": id, "status": model.SessionPending}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.Session
	err := r.coll.FindOneAndUpdate(context.TODO(), filter, bson.M{"$set": set}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrAlreadyProcessed
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RejectIfPending transitions pending -> cancelled under the same
// compare-and-set condition as ApproveIfPending. No other field changes.
func (r *SessionRepo) RejectIfPending(id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "status": model.SessionPending}
	update := bson.M{"$set": bson.M{"status": model.SessionCancelled}}

	res, err := r.coll.UpdateOne(context.TODO(), filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrAlreadyProcessed
	}
	return nil
}

func (r *SessionRepo) DeleteByStudent(studentID primitive.ObjectID) error {
	_, err := r.coll.DeleteMany(context.TODO(), bson.M{"studentId": studentID})
	return err
}

func (r *SessionRepo) findMany(filter bson.M, opts *options.FindOptions) ([]model.Session, error) {
	cursor, err := r.coll.Find(context.TODO(), filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(context.TODO())

	var sessions []model.Session
	for cursor.Next(context.TODO()) {
		var s model.Session
		if err := cursor.Decode(&s); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, cursor.Err()
}
