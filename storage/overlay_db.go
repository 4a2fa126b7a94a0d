package storage

import (
	"context"
	"errors"
	"time"

	"overlay-stream/metrics"
	"overlay-stream/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	overlaysCollection = "overlays"
	settingsCollection = "settings"
)

type OverlayDB interface {
	Ping(ctx context.Context) error
	InsertOverlay(ctx context.Context, overlay model.Overlay) (primitive.ObjectID, error)
	FindOverlays(ctx context.Context) ([]model.Overlay, error)
	FindOverlay(ctx context.Context, id primitive.ObjectID) (*model.Overlay, error)
	UpdateOverlay(ctx context.Context, id primitive.ObjectID, update model.OverlayUpdate) (bool, error)
	DeleteOverlay(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// MongoDB stores overlays and settings in two collections of one database.
// It is safe for concurrent use; consistency is left to MongoDB's
// single-document atomicity.
type MongoDB struct {
	Log *zap.Logger

	mongoClient  *mongo.Client
	database     *mongo.Database
	overlays     *mongo.Collection
	settings     *mongo.Collection
	databaseName string
}

// NewMongoDB returns a store backed by an already connected database.
func NewMongoDB(database *mongo.Database, logger *zap.Logger) *MongoDB {
	if logger == nil {
		logger = zap.NewNop()
	}
	db := &MongoDB{Log: logger}
	db.use(database)
	return db
}

// Connect creates the client and selects the database. The MongoDB server
// does not have to be reachable yet; use Ping to find out whether it is.
func (db *MongoDB) Connect(ctx context.Context, connectionString, databaseName string) error {
	if db.Log == nil {
		db.Log = zap.NewNop()
	}

	opts := options.Client().
		ApplyURI(connectionString).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return wrap("connect", err)
	}

	db.mongoClient = client
	db.use(client.Database(databaseName))

	db.Log.Info("MongoDB client created", zap.String("database", databaseName))
	return nil
}

func (db *MongoDB) use(database *mongo.Database) {
	db.database = database
	db.databaseName = database.Name()
	db.overlays = database.Collection(overlaysCollection)
	db.settings = database.Collection(settingsCollection)
}

func (db *MongoDB) Close(ctx context.Context) error {
	if db.mongoClient != nil {
		if err := db.mongoClient.Disconnect(ctx); err != nil {
			return wrap("disconnect", err)
		}
		db.Log.Info("Disconnected from MongoDB")
	}
	return nil
}

func (db *MongoDB) Ping(ctx context.Context) (err error) {
	defer func(start time.Time) { metrics.RecordStoreOperation("ping", start, err) }(time.Now())

	return wrap("ping", db.database.Client().Ping(ctx, readpref.Primary()))
}

// InsertOverlay stores a new overlay under a freshly generated ObjectID,
// ignoring any ID already set on overlay.
func (db *MongoDB) InsertOverlay(ctx context.Context, overlay model.Overlay) (_ primitive.ObjectID, err error) {
	defer func(start time.Time) { metrics.RecordStoreOperation("insert_overlay", start, err) }(time.Now())

	overlay.ID = primitive.NewObjectID()
	if overlay.Style == nil {
		overlay.Style = map[string]any{}
	}

	if _, err = db.overlays.InsertOne(ctx, overlay); err != nil {
		return primitive.NilObjectID, wrap("insert overlay", err)
	}

	db.Log.Debug("Overlay saved to MongoDB", zap.String("id", overlay.ID.Hex()))
	return overlay.ID, nil
}

func (db *MongoDB) FindOverlays(ctx context.Context) (_ []model.Overlay, err error) {
	defer func(start time.Time) { metrics.RecordStoreOperation("find_overlays", start, err) }(time.Now())

	cursor, err := db.overlays.Find(ctx, bson.D{})
	if err != nil {
		return nil, wrap("find overlays", err)
	}

	overlays := make([]model.Overlay, 0)
	if err = cursor.All(ctx, &overlays); err != nil {
		return nil, wrap("decode overlays", err)
	}

	return overlays, nil
}

func (db *MongoDB) FindOverlay(ctx context.Context, id primitive.ObjectID) (_ *model.Overlay, err error) {
	defer func(start time.Time) { metrics.RecordStoreOperation("find_overlay", start, err) }(time.Now())

	var overlay model.Overlay
	filter := bson.D{{Key: "_id", Value: id}}
	err = db.overlays.FindOne(ctx, filter).Decode(&overlay)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrap("find overlay", err)
	}

	return &overlay, nil
}

// UpdateOverlay replaces the top-level fields named by update and reports
// whether a document matched. Nothing is created when the id is unknown. An
// empty update only checks for existence.
func (db *MongoDB) UpdateOverlay(ctx context.Context, id primitive.ObjectID, update model.OverlayUpdate) (_ bool, err error) {
	if update.IsEmpty() {
		_, err := db.FindOverlay(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return err == nil, err
	}

	defer func(start time.Time) { metrics.RecordStoreOperation("update_overlay", start, err) }(time.Now())

	filter := bson.D{{Key: "_id", Value: id}}
	result, err := db.overlays.UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: setFields(update)}})
	if err != nil {
		return false, wrap("update overlay", err)
	}

	return result.MatchedCount > 0, nil
}

func (db *MongoDB) DeleteOverlay(ctx context.Context, id primitive.ObjectID) (_ bool, err error) {
	defer func(start time.Time) { metrics.RecordStoreOperation("delete_overlay", start, err) }(time.Now())

	filter := bson.D{{Key: "_id", Value: id}}
	result, err := db.overlays.DeleteOne(ctx, filter)
	if err != nil {
		return false, wrap("delete overlay", err)
	}

	return result.DeletedCount > 0, nil
}

func setFields(update model.OverlayUpdate) bson.D {
	var set bson.D
	if update.Type != nil {
		set = append(set, bson.E{Key: "type", Value: *update.Type})
	}
	if update.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *update.Content})
	}
	if update.Position != nil {
		set = append(set, bson.E{Key: "position", Value: *update.Position})
	}
	if update.Size != nil {
		set = append(set, bson.E{Key: "size", Value: *update.Size})
	}
	if update.Style != nil {
		set = append(set, bson.E{Key: "style", Value: update.Style})
	}
	if update.IsVisible != nil {
		set = append(set, bson.E{Key: "isVisible", Value: *update.IsVisible})
	}
	return set
}
