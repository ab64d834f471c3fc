package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/GreenHouse007/world-builder/internal/domain"
)

// mongoStore keeps worlds in a document collection, one document per world.
// This matches the shape the web client's original backend used.
type mongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type worldDoc struct {
	OwnerID  string `bson:"ownerId"`
	WorldID  string `bson:"worldId"`
	Position int    `bson:"position"`
	Doc      string `bson:"doc"`
	Updated  string `bson:"updatedAt"`
}

func openMongo(ctx context.Context, uri string) (*mongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &mongoStore{
		client: client,
		coll:   client.Database("worldbuilder").Collection("worlds"),
	}, nil
}

func (m *mongoStore) FindWorlds(ctx context.Context, ownerID string) ([]*domain.World, error) {
	opts := options.Find().SetSort(bson.M{"position": 1})
	cursor, err := m.coll.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find worlds: %w", err)
	}
	defer cursor.Close(ctx)

	var worlds []*domain.World
	for cursor.Next(ctx) {
		var doc worldDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode world doc: %w", err)
		}
		var w domain.World
		if err := json.Unmarshal([]byte(doc.Doc), &w); err != nil {
			return nil, fmt.Errorf("decode world %s: %w", doc.WorldID, err)
		}
		worlds = append(worlds, &w)
	}
	return worlds, cursor.Err()
}

func (m *mongoStore) ReplaceWorlds(ctx context.Context, ownerID string, worlds []*domain.World) error {
	if _, err := m.coll.DeleteMany(ctx, bson.M{"ownerId": ownerID}); err != nil {
		return fmt.Errorf("clear worlds: %w", err)
	}
	if len(worlds) == 0 {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339)
	docs := make([]any, 0, len(worlds))
	for i, w := range worlds {
		data, err := json.Marshal(w)
		if err != nil {
			return fmt.Errorf("encode world %s: %w", w.ID, err)
		}
		docs = append(docs, worldDoc{
			OwnerID:  ownerID,
			WorldID:  w.ID,
			Position: i,
			Doc:      string(data),
			Updated:  now,
		})
	}
	if _, err := m.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert worlds: %w", err)
	}
	return nil
}

func (m *mongoStore) DeleteWorlds(ctx context.Context, ownerID string) error {
	_, err := m.coll.DeleteMany(ctx, bson.M{"ownerId": ownerID})
	return err
}

func (m *mongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
