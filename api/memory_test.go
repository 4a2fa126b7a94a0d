package api

import (
	"context"
	"maps"
	"sync"

	"overlay-stream/model"
	"overlay-stream/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryDB is an in-memory OverlayDB and SettingsDB with MongoDB's matching
// semantics. Setting err makes every call fail with it.
type memoryDB struct {
	mu       sync.Mutex
	order    []primitive.ObjectID
	overlays map[primitive.ObjectID]model.Overlay
	settings map[string]model.Settings
	err      error
	pingErr  error
	calls    int
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		overlays: make(map[primitive.ObjectID]model.Overlay),
		settings: make(map[string]model.Settings),
	}
}

func (db *memoryDB) fail(op string) error {
	db.calls++
	if db.err != nil {
		return &storage.Error{Op: op, Err: db.err}
	}
	return nil
}

func (db *memoryDB) Ping(context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.pingErr != nil {
		return &storage.Error{Op: "ping", Err: db.pingErr}
	}
	return nil
}

func (db *memoryDB) InsertOverlay(_ context.Context, overlay model.Overlay) (primitive.ObjectID, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.fail("insert overlay"); err != nil {
		return primitive.NilObjectID, err
	}

	overlay.ID = primitive.NewObjectID()
	overlay.Style = maps.Clone(overlay.Style)
	db.overlays[overlay.ID] = overlay
	db.order = append(db.order, overlay.ID)
	return overlay.ID, nil
}

func (db *memoryDB) FindOverlays(context.Context) ([]model.Overlay, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.fail("find overlays"); err != nil {
		return nil, err
	}

	overlays := make([]model.Overlay, 0, len(db.order))
	for _, id := range db.order {
		if overlay, ok := db.overlays[id]; ok {
			overlays = append(overlays, overlay)
		}
	}
	return overlays, nil
}

func (db *memoryDB) FindOverlay(_ context.Context, id primitive.ObjectID) (*model.Overlay, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.fail("find overlay"); err != nil {
		return nil, err
	}

	overlay, ok := db.overlays[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &overlay, nil
}

func (db *memoryDB) UpdateOverlay(_ context.Context, id primitive.ObjectID, update model.OverlayUpdate) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.fail("update overlay"); err != nil {
		return false, err
	}

	overlay, ok := db.overlays[id]
	if !ok {
		return false, nil
	}
	if update.Type != nil {
		overlay.Type = *update.Type
	}
	if update.Content != nil {
		overlay.Content = *update.Content
	}
	if update.Position != nil {
		overlay.Position = *update.Position
	}
	if update.Size != nil {
		overlay.Size = *update.Size
	}
	if update.Style != nil {
		overlay.Style = maps.Clone(update.Style)
	}
	if update.IsVisible != nil {
		overlay.IsVisible = *update.IsVisible
	}
	db.overlays[id] = overlay
	return true, nil
}

func (db *memoryDB) DeleteOverlay(_ context.Context, id primitive.ObjectID) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.fail("delete overlay"); err != nil {
		return false, err
	}

	if _, ok := db.overlays[id]; !ok {
		return false, nil
	}
	delete(db.overlays, id)
	return true, nil
}

func (db *memoryDB) GetSettings(_ context.Context, settingsType string) (*model.Settings, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.fail("get settings"); err != nil {
		return nil, err
	}

	settings, ok := db.settings[settingsType]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &settings, nil
}

func (db *memoryDB) SaveSettings(_ context.Context, settings model.Settings) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.fail("save settings"); err != nil {
		return err
	}

	db.settings[settings.Type] = settings
	return nil
}

func (db *memoryDB) callCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.calls
}
