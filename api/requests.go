package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"overlay-stream/model"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
)

const maxBodyBytes = 1 << 20

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// validateRequest checks req against its validate tags and reports the first
// failure as a ValidationError.
func validateRequest(req any) error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := fieldErrors[0]
	switch fe.Tag() {
	case "required":
		return &ValidationError{Message: "Missing required field: " + fe.Field()}
	case "min":
		return &ValidationError{Message: fmt.Sprintf("Field %s must not be empty", fe.Field())}
	default:
		return &ValidationError{Message: fmt.Sprintf("Invalid value for field %s", fe.Field())}
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return maxBytesErr
		}
		return &ValidationError{Message: "Invalid JSON body"}
	}
	return nil
}

type positionInput struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (p positionInput) toPosition() model.Position {
	var pos model.Position
	if p.X != nil {
		pos.X = *p.X
	}
	if p.Y != nil {
		pos.Y = *p.Y
	}
	return pos
}

type sizeInput struct {
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

func (s sizeInput) toSize() model.Size {
	size := model.Size{Width: model.DefaultWidth, Height: model.DefaultHeight}
	if s.Width != nil {
		size.Width = *s.Width
	}
	if s.Height != nil {
		size.Height = *s.Height
	}
	return size
}

type createOverlayRequest struct {
	Type      *string        `json:"type" validate:"required,min=1"`
	Content   *string        `json:"content" validate:"required,min=1"`
	Position  *positionInput `json:"position" validate:"required"`
	Size      *sizeInput     `json:"size" validate:"required"`
	Style     map[string]any `json:"style"`
	IsVisible *bool          `json:"isVisible"`
}

func (req *createOverlayRequest) toOverlay() model.Overlay {
	overlay := model.Overlay{
		Type:      *req.Type,
		Content:   *req.Content,
		Position:  req.Position.toPosition(),
		Size:      req.Size.toSize(),
		Style:     req.Style,
		IsVisible: true,
	}
	if overlay.Style == nil {
		overlay.Style = map[string]any{}
	}
	if req.IsVisible != nil {
		overlay.IsVisible = *req.IsVisible
	}
	return overlay
}

// updateOverlayRequest accepts any subset of the mutable fields. Fields that
// are absent or null are left untouched.
type updateOverlayRequest struct {
	Type      *string        `json:"type" validate:"omitnil,min=1"`
	Content   *string        `json:"content" validate:"omitnil,min=1"`
	Position  *positionInput `json:"position"`
	Size      *sizeInput     `json:"size"`
	Style     map[string]any `json:"style"`
	IsVisible *bool          `json:"isVisible"`
}

func (req *updateOverlayRequest) toUpdate() model.OverlayUpdate {
	update := model.OverlayUpdate{
		Type:      req.Type,
		Content:   req.Content,
		Style:     req.Style,
		IsVisible: req.IsVisible,
	}
	if req.Position != nil {
		pos := req.Position.toPosition()
		update.Position = &pos
	}
	if req.Size != nil {
		size := req.Size.toSize()
		update.Size = &size
	}
	return update
}

type saveSettingsRequest struct {
	RTSPURL string `json:"rtspUrl" validate:"required"`
}
