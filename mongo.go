package mongostore

import (
	"bytes"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Connect is the default Connector. It dials MongoDB with the configured URI
// and client options and verifies the connection with a ping before handing
// it to the store. No application-level retry: transient startup failures
// are the operator's to handle, typically by restarting the process.
func Connect(ctx context.Context, cfg Config) (Client, error) {
	opts := cfg.ClientOptions
	if opts == nil {
		opts = options.Client()
	}
	opts = opts.ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &mongoClient{
		client:       client,
		idField:      cfg.IDField,
		expiresField: cfg.ExpiresField,
	}, nil
}

// mongoClient adapts *mongo.Client to the Client capability, carrying the
// configured document field names into every collection handle.
type mongoClient struct {
	client       *mongo.Client
	idField      string
	expiresField string
}

func (c *mongoClient) Collection(database, name string) Collection {
	return &mongoCollection{
		coll:         c.client.Database(database).Collection(name),
		idField:      c.idField,
		expiresField: c.expiresField,
	}
}

func (c *mongoClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *mongoClient) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// mongoCollection maps store operations onto collection primitives, keyed by
// the configured field names. Field names are bound by the store after
// configuration resolution.
type mongoCollection struct {
	coll         *mongo.Collection
	idField      string
	expiresField string
}

func (c *mongoCollection) FindOne(ctx context.Context, id string) (*Record, error) {
	var raw bson.Raw
	err := c.coll.FindOne(ctx, bson.M{c.idField: id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c.decodeRecord(raw)
}

func (c *mongoCollection) Upsert(ctx context.Context, rec *Record) error {
	update := bson.M{"$set": bson.M{
		c.idField:      rec.ID,
		"session":      rec.Session,
		c.expiresField: rec.Expires,
	}}
	_, err := c.coll.UpdateOne(ctx,
		bson.M{c.idField: rec.ID},
		update,
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

func (c *mongoCollection) DeleteOne(ctx context.Context, id string) error {
	_, err := c.coll.DeleteOne(ctx, bson.M{c.idField: id})
	return err
}

func (c *mongoCollection) DeleteMany(ctx context.Context) error {
	_, err := c.coll.DeleteMany(ctx, bson.M{})
	return err
}

func (c *mongoCollection) FindAll(ctx context.Context) ([]Record, error) {
	cursor, err := c.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []Record
	for cursor.Next(ctx) {
		rec, err := c.decodeRecord(cursor.Current)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *mongoCollection) EnsureTTLIndex(ctx context.Context, expireAfterSeconds int32) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: c.expiresField, Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(expireAfterSeconds),
	}
	_, err := c.coll.Indexes().CreateOne(ctx, model)
	return err
}

// decodeRecord extracts the configured fields from a raw document. Documents
// written by other store implementations may lack any of them; missing
// fields decode to zero values rather than errors.
func (c *mongoCollection) decodeRecord(raw bson.Raw) (*Record, error) {
	rec := &Record{}

	if v, err := raw.LookupErr(c.idField); err == nil {
		if s, ok := v.StringValueOK(); ok {
			rec.ID = s
		}
	}
	if v, err := raw.LookupErr(c.expiresField); err == nil {
		if t, ok := v.TimeOK(); ok {
			rec.Expires = t
		}
	}
	if v, err := raw.LookupErr("session"); err == nil {
		if doc, ok := v.DocumentOK(); ok {
			session, err := unmarshalSession(doc)
			if err != nil {
				return nil, err
			}
			rec.Session = session
		}
	}

	return rec, nil
}

// unmarshalSession decodes the session payload into plain maps so callers
// get map[string]any all the way down instead of bson.D.
func unmarshalSession(doc bson.Raw) (Session, error) {
	dec := bson.NewDecoder(bson.NewDocumentReader(bytes.NewReader(doc)))
	dec.DefaultDocumentM()

	var session Session
	if err := dec.Decode(&session); err != nil {
		return nil, err
	}
	return session, nil
}
