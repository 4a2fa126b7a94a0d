package storage

import (
	"context"
	"errors"
	"time"

	"overlay-stream/metrics"
	"overlay-stream/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type SettingsDB interface {
	GetSettings(ctx context.Context, settingsType string) (*model.Settings, error)
	SaveSettings(ctx context.Context, settings model.Settings) error
}

func (db *MongoDB) GetSettings(ctx context.Context, settingsType string) (_ *model.Settings, err error) {
	defer func(start time.Time) { metrics.RecordStoreOperation("get_settings", start, err) }(time.Now())

	var settings model.Settings
	filter := bson.D{{Key: "_id", Value: settingsType}}
	err = db.settings.FindOne(ctx, filter).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrap("get settings", err)
	}

	return &settings, nil
}

// SaveSettings replaces the whole settings document of settings.Type, creating
// it when absent. The type is the document _id, so concurrent first saves
// cannot leave two documents behind.
func (db *MongoDB) SaveSettings(ctx context.Context, settings model.Settings) (err error) {
	defer func(start time.Time) { metrics.RecordStoreOperation("save_settings", start, err) }(time.Now())

	if settings.Type == "" {
		return wrap("save settings", errors.New("settings type is empty"))
	}

	filter := bson.D{{Key: "_id", Value: settings.Type}}
	opts := options.Replace().SetUpsert(true)
	if _, err = db.settings.ReplaceOne(ctx, filter, settings, opts); err != nil {
		return wrap("save settings", err)
	}

	db.Log.Debug("Settings saved to MongoDB", zap.String("type", settings.Type))
	return nil
}
