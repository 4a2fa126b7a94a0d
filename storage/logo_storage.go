package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"overlay-stream/metrics"
	"overlay-stream/model"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
)

// DefaultMaxLogoDimension bounds the longest side of a stored logo.
const DefaultMaxLogoDimension = 1024

var (
	ErrInvalidImage    = errors.New("file is not a supported image")
	ErrInvalidLogoName = errors.New("invalid logo name")
)

var logoNamePattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.png$`)

type LogoStorage interface {
	SaveLogo(data []byte) (model.Logo, error)
	OpenLogo(name string) (*os.File, error)
}

// LocalLogoStorage keeps normalised logo images as PNG files in Directory.
type LocalLogoStorage struct {
	Directory    string
	MaxDimension int
}

// SaveLogo decodes an uploaded image, applies its EXIF orientation, shrinks
// it to fit MaxDimension and writes it as PNG under a generated name. The
// returned Logo has no URL; that is up to the caller serving the files.
func (s *LocalLogoStorage) SaveLogo(data []byte) (model.Logo, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return model.Logo{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	img = applyOrientation(img, readOrientation(data))

	maxDimension := s.MaxDimension
	if maxDimension <= 0 {
		maxDimension = DefaultMaxLogoDimension
	}
	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	if err := os.MkdirAll(s.Directory, 0755); err != nil {
		return model.Logo{}, fmt.Errorf("mkdir: %w", err)
	}

	name := uuid.NewString() + ".png"
	if err := imaging.Save(img, filepath.Join(s.Directory, name)); err != nil {
		return model.Logo{}, fmt.Errorf("save logo: %w", err)
	}
	metrics.LogosStored.Inc()

	bounds = img.Bounds()
	return model.Logo{Name: name, Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

func (s *LocalLogoStorage) OpenLogo(name string) (*os.File, error) {
	if !logoNamePattern.MatchString(name) {
		return nil, ErrInvalidLogoName
	}

	file, err := os.Open(filepath.Join(s.Directory, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open logo: %w", err)
	}

	return file, nil
}

// readOrientation returns the EXIF orientation tag, or 1 when the image
// carries none.
func readOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
