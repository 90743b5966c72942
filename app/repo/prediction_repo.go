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

type PredictionRepository interface {
	Create(prediction *model.Prediction) error
	FindByID(id primitive.ObjectID) (*model.Prediction, error)
	LatestByUserID(userID primitive.ObjectID) (*model.Prediction, error)
	LatestPerUser() (map[primitive.ObjectID]model.Prediction, error)
	TrendByUserID(userID primitive.ObjectID, limit int) ([]model.Prediction, error)
	History(userIDs []primitive.ObjectID, page, limit int) ([]model.Prediction, int64, error)
	FindForExport(userIDs []primitive.ObjectID) ([]model.Prediction, error)
	Recent(limit int) ([]model.Prediction, error)
	CountByUserID(userID primitive.ObjectID) (int64, error)
	Count() (int64, error)
	DeleteByUserID(userID primitive.ObjectID) error
}

type PredictionRepo struct {
	coll *mongo.Collection
}

func NewPredictionRepo(db *mongo.Database) *PredictionRepo {
	return &PredictionRepo{coll: db.Collection("predictions")}
}

func (r *PredictionRepo) Create(prediction *model.Prediction) error {
	prediction.CreatedAt = time.Now()

	res, err := r.coll.InsertOne(context.TODO(), prediction)
	if err != nil {
		return err
	}
	prediction.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *PredictionRepo) FindByID(id primitive.ObjectID) (*model.Prediction, error) {
	var p model.Prediction
	err := r.coll.FindOne(context.TODO(), bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PredictionRepo) LatestByUserID(userID primitive.ObjectID) (*model.Prediction, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var p model.Prediction
	err := r.coll.FindOne(context.TODO(), bson.M{"userId": userID}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// LatestPerUser resolves the newest prediction for every user in one
// aggregation pass instead of loading full history per user.
func (r *PredictionRepo) LatestPerUser() (map[primitive.ObjectID]model.Prediction, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$userId"},
			{Key: "doc", Value: bson.D{{Key: "$first", Value: "$$ROOT"}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(context.TODO(), pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(context.TODO())

	latest := make(map[primitive.ObjectID]model.Prediction)
	for cursor.Next(context.TODO()) {
		var row struct {
			Doc model.Prediction `bson:"doc"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		latest[row.Doc.UserID] = row.Doc
	}
	return latest, cursor.Err()
}

func (r *PredictionRepo) TrendByUserID(userID primitive.ObjectID, limit int) ([]model.Prediction, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return r.findMany(bson.M{"userId": userID}, opts)
}

// History returns a page of predictions newest first, optionally restricted
// to a set of owning users. A nil userIDs slice means unrestricted.
func (r *PredictionRepo) History(userIDs []primitive.ObjectID, page, limit int) ([]model.Prediction, int64, error) {
	filter := bson.M{}
	if userIDs != nil {
		filter["userId"] = bson.M{"$in": userIDs}
	}

	total, err := r.coll.CountDocuments(context.TODO(), filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	predictions, err := r.findMany(filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return predictions, total, nil
}

func (r *PredictionRepo) FindForExport(userIDs []primitive.ObjectID) ([]model.Prediction, error) {
	filter := bson.M{}
	if userIDs != nil {
		filter["userId"] = bson.M{"$in": userIDs}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.findMany(filter, opts)
}

func (r *PredictionRepo) Recent(limit int) ([]model.Prediction, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return r.findMany(bson.M{}, opts)
}

func (r *PredictionRepo) CountByUserID(userID primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(context.TODO(), bson.M{"userId": userID})
}

func (r *PredictionRepo) Count() (int64, error) {
	return r.coll.CountDocuments(context.TODO(), bson.M{})
}

func (r *PredictionRepo) DeleteByUserID(userID primitive.ObjectID) error {
	_, err := r.coll.DeleteMany(context.TODO(), bson.M{"userId": userID})
	return err
}

func (r *PredictionRepo) findMany(filter bson.M, opts *options.FindOptions) ([]model.Prediction, error) {
	cursor, err := r.coll.Find(context.TODO(), filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(context.TODO())

	var predictions []model.Prediction
	for cursor.Next(context.TODO()) {
		var p model.Prediction
		if err := cursor.Decode(&p); err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}
	return predictions, cursor.Err()
}
