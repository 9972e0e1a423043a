package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postbridge/internal/presentation"
	"postbridge/pkg/digest"
)

func TestUpload(t *testing.T) {
	s := newTestServer(t)
	data := jpegData(t, 320, 200)

	rec := s.upload(t, "sunset.jpg", "image/jpeg", data, map[string]string{presentation.AltField: "sunset"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	desc := decodeDescriptor(t, rec)
	assert.Equal(t, digest.Sum(data), desc.Sha256)
	assert.Equal(t, "sunset.jpg", desc.Filename)
	assert.Equal(t, "sunset", desc.AltText)
	assert.Equal(t, "image/jpeg", desc.FileType)
	assert.Equal(t, 320, desc.Width)
	assert.Equal(t, 200, desc.Height)
	assert.Equal(t, "http://media.test/files/"+desc.ID+".jpg", desc.URL)

	again := s.upload(t, "sunset.jpg", "image/jpeg", data, map[string]string{presentation.AltField: "sunset"})
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, desc.ID, decodeDescriptor(t, again).ID)

	other := s.upload(t, "sunset.jpg", "image/jpeg", data, map[string]string{presentation.AltField: "sunset2"})
	require.Equal(t, http.StatusOK, other.Code)
	assert.NotEqual(t, desc.ID, decodeDescriptor(t, other).ID)
	assert.Len(t, s.catalog.files, 2)
}

func TestUploadTypeFieldOverridesPartHeader(t *testing.T) {
	s := newTestServer(t)

	rec := s.upload(t, "a.png", "application/octet-stream", pngData(t, 10, 10),
		map[string]string{presentation.TypeField: "image/png"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", decodeDescriptor(t, rec).FileType)
}

func TestUploadRejects(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		data        func(t *testing.T) []byte
		fields      map[string]string
	}{
		{
			name:        "bmp",
			filename:    "a.bmp",
			contentType: "image/bmp",
			data:        func(*testing.T) []byte { return []byte("BM\x00\x00") },
		},
		{
			name:        "png sent as jpeg",
			filename:    "a.jpg",
			contentType: "image/jpeg",
			data:        func(t *testing.T) []byte { return pngData(t, 4, 4) },
		},
		{
			name:        "bad width",
			filename:    "a.png",
			contentType: "image/png",
			data:        func(t *testing.T) []byte { return pngData(t, 4, 4) },
			fields:      map[string]string{presentation.WidthField: "wide"},
		},
		{
			name:        "negative height",
			filename:    "a.png",
			contentType: "image/png",
			data:        func(t *testing.T) []byte { return pngData(t, 4, 4) },
			fields:      map[string]string{presentation.HeightField: "-3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			rec := s.upload(t, tt.filename, tt.contentType, tt.data(t), tt.fields)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(presentation.ReasonTag))
			assert.Empty(t, s.catalog.files)
		})
	}
}

func TestUploadMissingFilePart(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("alt=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := s.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
