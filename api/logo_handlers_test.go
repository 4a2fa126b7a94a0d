package api

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"overlay-stream/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newLogoTestHandler(t *testing.T, maxBytes int64) http.Handler {
	t.Helper()

	db := newMemoryDB()
	h := &Handlers{
		Overlays:     db,
		Settings:     db,
		Logos:        &storage.LocalLogoStorage{Directory: t.TempDir()},
		Log:          zaptest.NewLogger(t),
		MaxLogoBytes: maxBytes,
	}
	return h.Routes(RouterConfig{})
}

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for x := range width {
		for y := range height {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func uploadRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, "logo.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/logos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadAndServeLogo(t *testing.T) {
	handler := newLogoTestHandler(t, 0)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "file", testPNG(t, 40, 20)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeBody[logoResponse](t, rec)
	assert.Equal(t, "Logo uploaded successfully", resp.Message)
	assert.Equal(t, 40, resp.Logo.Width)
	assert.Equal(t, 20, resp.Logo.Height)
	assert.Equal(t, "/api/logos/"+resp.Logo.Name, resp.Logo.URL)

	rec = doRequest(t, handler, http.MethodGet, resp.Logo.URL, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	cfg, err := png.DecodeConfig(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 20, cfg.Height)
}

func TestUploadLogoErrors(t *testing.T) {
	testCases := []struct {
		name       string
		maxBytes   int64
		field      string
		data       []byte
		wantStatus int
		wantError  string
	}{
		{
			name:       "no file field",
			field:      "image",
			data:       []byte("irrelevant"),
			wantStatus: http.StatusBadRequest,
			wantError:  "No file found in the request",
		},
		{
			name:       "not an image",
			field:      "file",
			data:       []byte("definitely not a picture"),
			wantStatus: http.StatusBadRequest,
			wantError:  "File is not a supported image",
		},
		{
			name:       "too large",
			maxBytes:   100,
			field:      "file",
			data:       bytes.Repeat([]byte{0xff}, 1000),
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newLogoTestHandler(t, tc.maxBytes)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, uploadRequest(t, tc.field, tc.data))
			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantError != "" {
				assert.Equal(t, tc.wantError, decodeBody[errorResponse](t, rec).Error)
			}
		})
	}
}

func TestUploadLogoRequiresMultipart(t *testing.T) {
	handler := newLogoTestHandler(t, 0)

	rec := doRequest(t, handler, http.MethodPost, "/api/logos", `{"file":"logo.png"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid multipart form", decodeBody[errorResponse](t, rec).Error)
}

func TestGetLogoErrors(t *testing.T) {
	handler := newLogoTestHandler(t, 0)

	rec := doRequest(t, handler, http.MethodGet, "/api/logos/logo.gif", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid logo name", decodeBody[errorResponse](t, rec).Error)

	rec = doRequest(t, handler, http.MethodGet, "/api/logos/3f2b8c4e-1d2a-4b5c-9e8f-0a1b2c3d4e5f.png", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Logo not found", decodeBody[errorResponse](t, rec).Error)
}
