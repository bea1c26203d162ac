package store

import (
	"context"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/relblock/relblock/pkg/errors"
)

// MongoLog persists events in a MongoDB collection, for deployments
// where several API replicas share one set of diagrams. A unique index
// on (diagram_id, version) makes concurrent appends lose cleanly with a
// conflict instead of forking history.
type MongoLog struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoLog connects to MongoDB, verifies the connection, and ensures
// the version index exists. Events live in <database>.events.
func NewMongoLog(ctx context.Context, uri, database string) (*MongoLog, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(database).Collection("events")
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "diagram_id", Value: 1}, {Key: "version", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ensure index: %w", err)
	}

	return &MongoLog{client: client, coll: coll}, nil
}

// Append stores the event, assigning it the next version. A concurrent
// append of the same version trips the unique index and reports a
// conflict; retrying re-reads the head.
func (l *MongoLog) Append(ctx context.Context, ev *Event) error {
	head, err := l.Head(ctx, ev.DiagramID)
	if err != nil {
		return err
	}
	next := head + 1
	if ev.Version != 0 && ev.Version != next {
		return errors.New(errors.ErrCodeConflict, "version %d already written, next is %d", ev.Version, next)
	}
	ev.Version = next

	if _, err := l.coll.InsertOne(ctx, ev); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Wrap(errors.ErrCodeConflict, err, "concurrent append at version %d", next)
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Events returns a diagram's events sorted by version ascending.
func (l *MongoLog) Events(ctx context.Context, diagramID string) ([]Event, error) {
	cur, err := l.coll.Find(ctx,
		bson.M{"diagram_id": diagramID},
		options.Find().SetSort(bson.D{{Key: "version", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

// Head returns the latest version of a diagram's log.
func (l *MongoLog) Head(ctx context.Context, diagramID string) (int, error) {
	var latest Event
	err := l.coll.FindOne(ctx,
		bson.M{"diagram_id": diagramID},
		options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})).Decode(&latest)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find head: %w", err)
	}
	return latest.Version, nil
}

// Diagrams lists all diagram IDs with at least one event.
func (l *MongoLog) Diagrams(ctx context.Context) ([]string, error) {
	raw, err := l.coll.Distinct(ctx, "diagram_id", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct diagrams: %w", err)
	}

	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// Close disconnects from MongoDB.
func (l *MongoLog) Close(ctx context.Context) error {
	return l.client.Disconnect(ctx)
}

// Ensure MongoLog implements Log.
var _ Log = (*MongoLog)(nil)
