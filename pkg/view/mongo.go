package view

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string
	Database   string // default "fractalview"
	Collection string // default "views"
}

// MongoStore keeps views in a MongoDB collection with a unique index on
// the view name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and ensures the name index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "fractalview"
	}
	if cfg.Collection == "" {
		cfg.Collection = "views"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo create index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Save(ctx context.Context, v *View) error {
	if err := v.Validate(); err != nil {
		return err
	}
	existing, err := s.Load(ctx, v.Name)
	if err != nil && !isNotFound(err) {
		return err
	}
	carry(v, existing)

	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"name": v.Name}, v, opts); err != nil {
		return fmt.Errorf("mongo save %q: %w", v.Name, err)
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context, name string) (*View, error) {
	var v View
	err := s.coll.FindOne(ctx, bson.M{"name": name}).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("mongo load %q: %w", name, err)
	}
	return &v, nil
}

func (s *MongoStore) List(ctx context.Context) ([]*View, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	var views []*View
	if err := cur.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	return views, nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("mongo delete %q: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
