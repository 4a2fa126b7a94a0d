package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OverlayTypeText = "text"
	OverlayTypeLogo = "logo"
)

const (
	DefaultWidth  = 100
	DefaultHeight = 50
)

// Overlay is a single element drawn on top of the stream.
type Overlay struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Type      string             `json:"type" bson:"type"`
	Content   string             `json:"content" bson:"content"` // text, or image URL for logos
	Position  Position           `json:"position" bson:"position"`
	Size      Size               `json:"size" bson:"size"`
	Style     map[string]any     `json:"style" bson:"style"`
	IsVisible bool               `json:"isVisible" bson:"isVisible"`
}

type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// OverlayUpdate holds the top-level fields replaced by a partial update.
// Nil fields are left untouched on the stored document.
type OverlayUpdate struct {
	Type      *string
	Content   *string
	Position  *Position
	Size      *Size
	Style     map[string]any
	IsVisible *bool
}

func (u OverlayUpdate) IsEmpty() bool {
	return u.Type == nil && u.Content == nil && u.Position == nil &&
		u.Size == nil && u.Style == nil && u.IsVisible == nil
}
