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

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id primitive.ObjectID) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindAll(role, search string) ([]model.User, error)
	FindMentors() ([]model.User, error)
	FindAssignedStudents(mentorID primitive.ObjectID) ([]model.User, error)
	FindByIDs(ids []primitive.ObjectID) (map[primitive.ObjectID]model.User, error)
	CountActiveByRole(role string) (int64, error)
	Update(user *model.User) error
	SetRefreshToken(id primitive.ObjectID, token string) error
	Delete(id primitive.ObjectID) error
}

type UserRepo struct {
	coll *mongo.Collection
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{coll: db.Collection("users")}
}

func (r *UserRepo) Create(user *model.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.coll.InsertOne(context.TODO(), user)
	if err != nil {
		return err
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *UserRepo) FindByID(id primitive.ObjectID) (*model.User, error) {
	var user model.User
	err := r.coll.FindOne(context.TODO(), bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.coll.FindOne(context.TODO(), bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) FindAll(role, search string) ([]model.User, error) {
	filter := bson.M{"isActive": true}
	if role != "" {
		filter["role"] = role
	}
	if search != "" {
		filter["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": search, "$options": "i"}},
			bson.M{"email": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.findMany(filter, opts)
}

func (r *UserRepo) FindMentors() ([]model.User, error) {
	return r.findMany(bson.M{"role": model.RoleMentor, "isActive": true}, options.Find())
}

func (r *UserRepo) FindAssignedStudents(mentorID primitive.ObjectID) ([]model.User, error) {
	filter := bson.M{
		"role":           model.RoleStudent,
		"isActive":       true,
		"assignedMentor": mentorID,
	}
	return r.findMany(filter, options.Find())
}

func (r *UserRepo) FindByIDs(ids []primitive.ObjectID) (map[primitive.ObjectID]model.User, error) {
	result := make(map[primitive.ObjectID]model.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	users, err := r.findMany(bson.M{"_id": bson.M{"$in": ids}}, options.Find())
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func (r *UserRepo) CountActiveByRole(role string) (int64, error) {
	filter := bson.M{"isActive": true}
	if role != "" {
		filter["role"] = role
	}
	return r.coll.CountDocuments(context.TODO(), filter)
}

func (r *UserRepo) Update(user *model.User) error {
	user.UpdatedAt = time.Now()
	_, err := r.coll.ReplaceOne(context.TODO(), bson.M{"_id": user.ID}, user)
	return err
}

func (r *UserRepo) SetRefreshToken(id primitive.ObjectID, token string) error {
	update := bson.M{"$set": bson.M{"refreshToken": token, "updatedAt": time.Now()}}
	_, err := r.coll.UpdateOne(context.TODO(), bson.M{"_id": id}, update)
	return err
}

func (r *UserRepo) Delete(id primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(context.TODO(), bson.M{"_id": id})
	return err
}

func (r *UserRepo) findMany(filter bson.M, opts *options.FindOptions) ([]model.User, error) {
	cursor, err := r.coll.Find(context.TODO(), filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(context.TODO())

	var users []model.User
	for cursor.Next(context.TODO()) {
		var u model.User
		if err := cursor.Decode(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, cursor.Err()
}
