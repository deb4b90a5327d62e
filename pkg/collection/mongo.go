package collection

import (
	"context"
	"fmt"
	"iter"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/amaumene/gallery/pkg/errors"
)

// MongoCollection adapts a MongoDB collection. Filters are translated to
// query documents and evaluated by the server; identifiers are ObjectIDs.
type MongoCollection struct {
	coll   *mongo.Collection
	client *mongo.Client
}

// ConnectMongoCollection dials uri. Close disconnects the client.
func ConnectMongoCollection(ctx context.Context, uri, database, name string) (*MongoCollection, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.NewStoreError("mongo", "connect", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.NewStoreError("mongo", "connect", err)
	}
	c := NewMongoCollection(client.Database(database).Collection(name))
	c.client = client
	return c, nil
}

// NewMongoCollection wraps a collection whose client is managed elsewhere.
func NewMongoCollection(coll *mongo.Collection) *MongoCollection {
	return &MongoCollection{coll: coll}
}

// MongoFilter translates f into a query document.
func MongoFilter(f Filter) bson.D {
	query := bson.D{}
	for _, c := range f.Conditions {
		switch c.Op {
		case OpContainsFold:
			query = append(query, bson.E{Key: c.Field, Value: bson.D{
				{Key: "$regex", Value: regexp.QuoteMeta(c.Value)},
				{Key: "$options", Value: "i"},
			}})
		case OpIn:
			values := c.Values
			if values == nil {
				values = []string{}
			}
			query = append(query, bson.E{Key: c.Field, Value: bson.D{{Key: "$in", Value: values}}})
		}
	}
	return query
}

func (c *MongoCollection) InsertOne(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fields := make(bson.M, len(doc))
	for k, v := range doc {
		if k != IDField {
			fields[k] = v
		}
	}
	if _, err := c.coll.InsertOne(ctx, fields); err != nil {
		return errors.NewStoreError("mongo", "insert", fmt.Errorf("inserting document: %w", err))
	}
	return nil
}

func (c *MongoCollection) DeleteMany(ctx context.Context, f Filter) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := c.coll.DeleteMany(ctx, MongoFilter(f)); err != nil {
		return errors.NewStoreError("mongo", "delete", fmt.Errorf("deleting documents: %w", err))
	}
	return nil
}

func (c *MongoCollection) Find(ctx context.Context, f Filter) iter.Seq2[Document, error] {
	return func(yield func(Document, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return
		}

		cur, err := c.coll.Find(ctx, MongoFilter(f))
		if err != nil {
			yield(nil, errors.NewStoreError("mongo", "find", fmt.Errorf("finding documents: %w", err)))
			return
		}
		defer cur.Close(ctx)

		for cur.Next(ctx) {
			var doc bson.M
			if err := cur.Decode(&doc); err != nil {
				yield(nil, errors.NewStoreError("mongo", "find", fmt.Errorf("decoding document: %w", err)))
				return
			}
			if !yield(Document(doc), nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(nil, errors.NewStoreError("mongo", "find", err))
		}
	}
}

func (c *MongoCollection) Close(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return errors.NewStoreError("mongo", "close", c.client.Disconnect(ctx))
}
