package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const connectionTestCollection = "connection_test"

// ConnectionReport summarises a successful connection check.
type ConnectionReport struct {
	Database    string
	Collections []string
	ProbeID     primitive.ObjectID
}

// CheckConnection connects to uri and runs RunConnectionCheck against
// databaseName, disconnecting afterwards.
func CheckConnection(ctx context.Context, uri, databaseName string, logger *zap.Logger) (*ConnectionReport, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, wrap("connect", err)
	}
	defer func() {
		if err := client.Disconnect(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to disconnect from MongoDB", zap.Error(err))
		}
	}()

	return RunConnectionCheck(ctx, client.Database(databaseName), logger)
}

// RunConnectionCheck pings the server, lists the collections of database and
// writes, reads back and deletes a probe document.
func RunConnectionCheck(ctx context.Context, database *mongo.Database, logger *zap.Logger) (*ConnectionReport, error) {
	if err := database.Client().Ping(ctx, readpref.Primary()); err != nil {
		return nil, wrap("ping", err)
	}
	logger.Info("connected to MongoDB")

	collections, err := database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, wrap("list collections", err)
	}
	logger.Info("database is accessible",
		zap.String("database", database.Name()),
		zap.Strings("collections", collections),
	)

	probes := database.Collection(connectionTestCollection)
	probeID := primitive.NewObjectID()
	probe := bson.D{{Key: "_id", Value: probeID}, {Key: "test", Value: "connection successful"}}
	if _, err := probes.InsertOne(ctx, probe); err != nil {
		return nil, wrap("write probe", err)
	}
	logger.Info("write test successful", zap.String("id", probeID.Hex()))

	var found bson.M
	err = probes.FindOne(ctx, bson.D{{Key: "_id", Value: probeID}}).Decode(&found)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, wrap("read probe", fmt.Errorf("probe %s not found after write", probeID.Hex()))
	}
	if err != nil {
		return nil, wrap("read probe", err)
	}
	logger.Info("read test successful")

	if _, err := probes.DeleteOne(ctx, bson.D{{Key: "_id", Value: probeID}}); err != nil {
		return nil, wrap("delete probe", err)
	}
	logger.Info("cleanup successful")

	return &ConnectionReport{
		Database:    database.Name(),
		Collections: collections,
		ProbeID:     probeID,
	}, nil
}
