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

type StudentRepository interface {
	Create(student *model.Student) error
	Upsert(student *model.Student) (*model.Student, error)
	FindByID(id primitive.ObjectID) (*model.Student, error)
	FindByUserID(userID primitive.ObjectID) (*model.Student, error)
	FindByUserIDs(userIDs []primitive.ObjectID) ([]model.Student, error)
	FindAll() ([]model.Student, error)
	DeleteByUserID(userID primitive.ObjectID) error
}

type StudentRepo struct {
	coll *mongo.Collection
}

func NewStudentRepo(db *mongo.Database) *StudentRepo {
	return &StudentRepo{coll: db.Collection("students")}
}

func (r *StudentRepo) Create(student *model.Student) error {
	now := time.Now()
	student.CreatedAt = now
	student.UpdatedAt = now

	res, err := r.coll.InsertOne(context.TODO(), student)
	if err != nil {
		return err
	}
	student.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// Upsert writes the profile keyed by its owning user, creating it on first
// submission. StudentID and CreatedAt survive updates.
func (r *StudentRepo) Upsert(student *model.Student) (*model.Student, error) {
	now := time.Now()

	set := bson.M{
		"currentGrade":              student.CurrentGrade,
		"gpa":                       student.GPA,
		"attendance":                student.Attendance,
		"studyHoursPerWeek":         student.StudyHoursPerWeek,
		"tutoringHours":             student.TutoringHours,
		"disciplinaryActions":       student.DisciplinaryActions,
		"extracurricularActivities": student.ExtracurricularActivities,
		"parentalSupport":           student.ParentalSupport,
		"familyIncome":              student.FamilyIncome,
		"workingHours":              student.WorkingHours,
		"healthIssues":              student.HealthIssues,
		"mentalHealthSupport":       student.MentalHealthSupport,
		"transportationIssues":      student.TransportationIssues,
		"internetAccess":            student.InternetAccess,
		"notes":                     student.Notes,
		"updatedAt":                 now,
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"userId":    student.UserID,
			"studentId": student.StudentID,
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved model.Student
	err := r.coll.FindOneAndUpdate(context.TODO(), bson.M{"userId": student.UserID}, update, opts).Decode(&saved)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *StudentRepo) FindByID(id primitive.ObjectID) (*model.Student, error) {
	var student model.Student
	err := r.coll.FindOne(context.TODO(), bson.M{"_id": id}).Decode(&student)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepo) FindByUserID(userID primitive.ObjectID) (*model.Student, error) {
	var student model.Student
	err := r.coll.FindOne(context.TODO(), bson.M{"userId": userID}).Decode(&student)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepo) FindByUserIDs(userIDs []primitive.ObjectID) ([]model.Student, error) {
	if len(userIDs) == 0 {
		return []model.Student{}, nil
	}
	return r.findMany(bson.M{"userId": bson.M{"$in": userIDs}})
}

func (r *StudentRepo) FindAll() ([]model.Student, error) {
	return r.findMany(bson.M{})
}

func (r *StudentRepo) DeleteByUserID(userID primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(context.TODO(), bson.M{"userId": userID})
	return err
}

func (r *StudentRepo) findMany(filter bson.M) ([]model.Student, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.coll.Find(context.TODO(), filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(context.TODO())

	var students []model.Student
	for cursor.Next(context.TODO()) {
		var s model.Student
		if err := cursor.Decode(&s); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, cursor.Err()
}
