package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"postbridge/internal/application/usecase"
	"postbridge/internal/domain/dto"
	"postbridge/internal/domain/model"
	"postbridge/internal/domain/repository/database"
	"postbridge/internal/infrastructure/filesystem"
	"postbridge/internal/infrastructure/imaging"
	"postbridge/internal/presentation"
	"postbridge/pkg/keylock"
)

type memCatalog struct {
	mu    sync.Mutex
	files map[string]model.File
}

func (c *memCatalog) FindByID(_ context.Context, id string) (*model.File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.files[id]
	if !ok {
		return nil, database.ErrNotFound
	}

	return &f, nil
}

func (c *memCatalog) FindByCompositeKey(ctx context.Context, key model.CompositeKey) (*model.File, error) {
	return c.FindByID(ctx, key.ID())
}

func (c *memCatalog) Insert(_ context.Context, file *model.File) (*model.File, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.files[file.ID]; ok {
		return &f, false, nil
	}

	c.files[file.ID] = *file

	return file, true, nil
}

type testServer struct {
	echo    *echo.Echo
	catalog *memCatalog
	store   *filesystem.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	catalog := &memCatalog{files: make(map[string]model.File)}

	store, err := filesystem.New(filesystem.Config{Root: t.TempDir()})
	require.NoError(t, err)

	proc, err := imaging.NewProcessor(imaging.Config{})
	require.NoError(t, err)

	locks := keylock.New()
	uploader := usecase.NewUploader(catalog, catalog, store, locks, nil, nil, "http://media.test")
	getter := usecase.NewGetter(catalog, "http://media.test")
	fetcher := usecase.NewFetcher(catalog, store, locks, proc, map[string]dto.Bounds{
		"mastodon": {MaxWidth: 1920, MaxHeight: 1080},
	}, nil)

	uploadHandler := NewUploadHandler(uploader, getter)
	getHandler := NewGetHandler(fetcher)
	headHandler := NewHeadHandler(getter)

	e := echo.New()
	e.POST("/upload", uploadHandler.Handle)
	e.GET(fmt.Sprintf("/files/:%s", presentation.IDParam), getHandler.HandleGet)
	e.HEAD(fmt.Sprintf("/files/:%s", presentation.IDParam), headHandler.HandleHead)
	e.GET(fmt.Sprintf("/files/:%s/meta", presentation.IDParam), headHandler.HandleDescribe)

	return &testServer{echo: e, catalog: catalog, store: store}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	return rec
}

func (s *testServer) upload(t *testing.T, filename, contentType string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, presentation.FileField, filename))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	require.NoError(t, err)

	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())

	return s.do(req)
}

func sampleImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 90, A: 255})
		}
	}

	return img
}

func jpegData(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, sampleImage(w, h), nil))

	return buf.Bytes()
}

func pngData(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, sampleImage(w, h)))

	return buf.Bytes()
}

func decodeDescriptor(t *testing.T, rec *httptest.ResponseRecorder) dto.FileDescriptor {
	t.Helper()

	var desc dto.FileDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &desc))

	return desc
}
