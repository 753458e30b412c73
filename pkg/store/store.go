// Package store archives rendered timelines in MongoDB.
//
// Published timelines are stored as one document per render: the serialized
// timeline plus the script hash it was rendered from, so a diagram can be
// fetched again without re-running the pipeline. Used by the render
// command's --publish flag and the HTTP server.
package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/isaflow/isaflow/pkg/errors"
	"github.com/isaflow/isaflow/pkg/render"
)

const collectionName = "timelines"

// Document is one archived timeline.
type Document struct {
	ID         primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	Title      string                `bson:"title" json:"title"`
	ScriptHash string                `bson:"script_hash" json:"script_hash"`
	StepCount  int                   `bson:"step_count" json:"step_count"`
	CreatedAt  time.Time             `bson:"created_at" json:"created_at"`
	Timeline   render.TimelineRecord `bson:"timeline" json:"timeline"`
}

// newDocument builds the archive document for a rendered timeline.
func newDocument(scriptHash string, rec render.TimelineRecord) Document {
	return Document{
		Title:      rec.Title,
		ScriptHash: scriptHash,
		StepCount:  len(rec.Steps),
		CreatedAt:  time.Now().UTC(),
		Timeline:   rec,
	}
}

// TimelineStore reads and writes archived timelines.
// The zero value is not usable - use Connect.
type TimelineStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect dials the MongoDB deployment at uri and opens the timeline
// collection in the named database.
func Connect(ctx context.Context, uri, database string) (*TimelineStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect to timeline store")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping timeline store")
	}
	return &TimelineStore{
		client: client,
		coll:   client.Database(database).Collection(collectionName),
	}, nil
}

// Save archives a rendered timeline and returns the document id.
func (s *TimelineStore) Save(ctx context.Context, scriptHash string, rec render.TimelineRecord) (string, error) {
	res, err := s.coll.InsertOne(ctx, newDocument(scriptHash, rec))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "save timeline %q", rec.Title)
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id.Hex(), nil
}

// Load fetches an archived timeline by document id.
func (s *TimelineStore) Load(ctx context.Context, id string) (*Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid timeline id %q", id)
	}

	var doc Document
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeTimelineNotFound, "no timeline with id %q", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load timeline %q", id)
	}
	return &doc, nil
}

// LoadByHash fetches the most recent archive of the given script hash.
func (s *TimelineStore) LoadByHash(ctx context.Context, scriptHash string) (*Document, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var doc Document
	err := s.coll.FindOne(ctx, bson.M{"script_hash": scriptHash}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeTimelineNotFound, "no timeline for script %s", scriptHash)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load timeline for script %s", scriptHash)
	}
	return &doc, nil
}

// List returns the newest archived timelines, most recent first.
func (s *TimelineStore) List(ctx context.Context, limit int64) ([]Document, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list timelines")
	}
	defer cursor.Close(ctx)

	var docs []Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode timelines")
	}
	return docs, nil
}

// Close disconnects from the deployment.
func (s *TimelineStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
