package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"model-catalog-service/internal/model"
	"model-catalog-service/pkg/config"
	"model-catalog-service/prometheus"
)

const (
	modelsCollection    = "models"
	purchasesCollection = "purchases"
)

// Mongo wraps a connected client and the two collections used by the service.
// The handle is constructed once at startup and passed down explicitly.
type Mongo struct {
	client    *mongo.Client
	models    *mongo.Collection
	purchases *mongo.Collection
}

// Connect opens a client, verifies the connection and returns the store handle.
func Connect(ctx context.Context, cfg *config.MongoConfig) (*Mongo, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(cfg.Database)
	return &Mongo{
		client:    client,
		models:    db.Collection(modelsCollection),
		purchases: db.Collection(purchasesCollection),
	}, nil
}

// Close disconnects the underlying client.
func (s *Mongo) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping verifies the connection is still alive.
func (s *Mongo) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Models returns the ModelStore backed by the models collection.
func (s *Mongo) Models() ModelStore {
	return &mongoModelStore{coll: s.models}
}

// Purchases returns the PurchaseStore backed by the purchases collection.
func (s *Mongo) Purchases() PurchaseStore {
	return &mongoPurchaseStore{coll: s.purchases}
}

// observe records the duration of one document store operation.
func observe(collection, operation string, start time.Time) {
	prometheus.DbOperationDuration.
		WithLabelValues(collection, operation).
		Observe(time.Since(start).Seconds())
}

type mongoModelStore struct {
	coll *mongo.Collection
}

func (s *mongoModelStore) Insert(ctx context.Context, m *model.Model) (string, error) {
	defer observe(modelsCollection, "insert", time.Now())
	res, err := s.coll.InsertOne(ctx, m)
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	m.ID = oid
	return oid.Hex(), nil
}

func (s *mongoModelStore) FindByID(ctx context.Context, id string) (*model.Model, error) {
	defer observe(modelsCollection, "find_by_id", time.Now())
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var m model.Model
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *mongoModelStore) Find(ctx context.Context, filter ModelFilter) ([]model.Model, error) {
	defer observe(modelsCollection, "find", time.Now())
	query := bson.M{}
	if filter.Search != "" {
		query["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}
	if filter.Framework != "" && filter.Framework != FrameworkAll {
		query["framework"] = filter.Framework
	}
	if filter.CreatedBy != "" {
		query["createdBy"] = filter.CreatedBy
	}

	sort := bson.D{{Key: "createdAt", Value: -1}}
	switch filter.Sort {
	case SortOldest:
		sort = bson.D{{Key: "createdAt", Value: 1}}
	case SortPopular:
		sort = bson.D{{Key: "purchased", Value: -1}}
	}

	opts := options.Find().SetSort(sort)
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cur, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var models []model.Model
	if err := cur.All(ctx, &models); err != nil {
		return nil, err
	}
	return models, nil
}

func (s *mongoModelStore) Update(ctx context.Context, id string, fields ModelUpdate) (int64, error) {
	defer observe(modelsCollection, "update", time.Now())
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return 0, ErrNotFound
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":        fields.Name,
		"framework":   fields.Framework,
		"useCase":     fields.UseCase,
		"dataset":     fields.Dataset,
		"description": fields.Description,
		"image":       fields.Image,
		"updatedAt":   time.Now().UTC(),
	}})
	if err != nil {
		return 0, err
	}
	if res.MatchedCount == 0 {
		return 0, ErrNotFound
	}
	return res.ModifiedCount, nil
}

func (s *mongoModelStore) IncrementPurchased(ctx context.Context, id string, delta int64) error {
	defer observe(modelsCollection, "increment_purchased", time.Now())
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"purchased": delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoModelStore) SetPurchased(ctx context.Context, id string, value int64) error {
	defer observe(modelsCollection, "set_purchased", time.Now())
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"purchased": value}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoModelStore) Delete(ctx context.Context, id string) (int64, error) {
	defer observe(modelsCollection, "delete", time.Now())
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return 0, ErrNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

type mongoPurchaseStore struct {
	coll *mongo.Collection
}

func (s *mongoPurchaseStore) Insert(ctx context.Context, p *model.Purchase) (string, error) {
	defer observe(purchasesCollection, "insert", time.Now())
	res, err := s.coll.InsertOne(ctx, p)
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	p.ID = oid
	return oid.Hex(), nil
}

func (s *mongoPurchaseStore) FindByPurchaser(ctx context.Context, email string) ([]model.Purchase, error) {
	return s.find(ctx, bson.M{"purchasedBy": email})
}

func (s *mongoPurchaseStore) FindByModel(ctx context.Context, modelID string) ([]model.Purchase, error) {
	return s.find(ctx, bson.M{"modelId": modelID})
}

func (s *mongoPurchaseStore) find(ctx context.Context, query bson.M) ([]model.Purchase, error) {
	defer observe(purchasesCollection, "find", time.Now())
	opts := options.Find().SetSort(bson.D{{Key: "purchasedAt", Value: -1}})
	cur, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var purchases []model.Purchase
	if err := cur.All(ctx, &purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

func (s *mongoPurchaseStore) CountByModel(ctx context.Context, modelID string) (int64, error) {
	defer observe(purchasesCollection, "count", time.Now())
	return s.coll.CountDocuments(ctx, bson.M{"modelId": modelID})
}

func (s *mongoPurchaseStore) CountByModels(ctx context.Context, modelIDs []string) (int64, error) {
	defer observe(purchasesCollection, "count", time.Now())
	if len(modelIDs) == 0 {
		return 0, nil
	}
	return s.coll.CountDocuments(ctx, bson.M{"modelId": bson.M{"$in": modelIDs}})
}

func (s *mongoPurchaseStore) StatsByModels(ctx context.Context, modelIDs []string) ([]model.ModelPurchaseStat, error) {
	defer observe(purchasesCollection, "aggregate", time.Now())
	if len(modelIDs) == 0 {
		return []model.ModelPurchaseStat{}, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"modelId": bson.M{"$in": modelIDs}}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$modelId",
			"count":     bson.M{"$sum": 1},
			"modelName": bson.M{"$first": "$modelName"},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var stats []model.ModelPurchaseStat
	if err := cur.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *mongoPurchaseStore) DeleteByModel(ctx context.Context, modelID string) (int64, error) {
	defer observe(purchasesCollection, "delete_many", time.Now())
	res, err := s.coll.DeleteMany(ctx, bson.M{"modelId": modelID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
