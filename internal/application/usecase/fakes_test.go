package usecase

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"postbridge/internal/domain/model"
	"postbridge/internal/domain/repository/blob"
	"postbridge/internal/domain/repository/database"
)

type memCatalog struct {
	mu        sync.Mutex
	files     map[string]*model.File
	insertErr error
	// beforeInsert runs under the lock ahead of the id check and may seed
	// files to stand in for a writer outside this process.
	beforeInsert func(files map[string]*model.File, file *model.File)
}

func newMemCatalog() *memCatalog {
	return &memCatalog{files: make(map[string]*model.File)}
}

func (c *memCatalog) FindByID(_ context.Context, id string) (*model.File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.files[id]
	if !ok {
		return nil, database.ErrNotFound
	}

	cp := *f

	return &cp, nil
}

func (c *memCatalog) FindByCompositeKey(_ context.Context, key model.CompositeKey) (*model.File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range c.files {
		if f.Key() == key {
			cp := *f

			return &cp, nil
		}
	}

	return nil, database.ErrNotFound
}

func (c *memCatalog) Insert(_ context.Context, file *model.File) (*model.File, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.insertErr != nil {
		return nil, false, c.insertErr
	}

	if c.beforeInsert != nil {
		c.beforeInsert(c.files, file)
	}

	if existing, ok := c.files[file.ID]; ok {
		cp := *existing

		return &cp, false, nil
	}

	cp := *file
	c.files[file.ID] = &cp

	return file, true, nil
}

func (c *memCatalog) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.files)
}

type memBlobs struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	writes int
}

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: make(map[string][]byte)}
}

func (b *memBlobs) Write(_ context.Context, d string, data []byte) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.blobs[d]; ok {
		return false, nil
	}

	b.blobs[d] = bytes.Clone(data)
	b.writes++

	return true, nil
}

func (b *memBlobs) Read(_ context.Context, d string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.blobs[d]
	if !ok {
		return nil, blob.ErrNotFound
	}

	return data, nil
}

func (b *memBlobs) Exists(_ context.Context, d string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.blobs[d]

	return ok, nil
}

func (b *memBlobs) PathFor(d string) string { return "mem/" + d }

func (b *memBlobs) writeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.writes
}

func (b *memBlobs) drop(d string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.blobs, d)
}

type memPublisher struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (p *memPublisher) Publish(_ context.Context, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}

	p.messages = append(p.messages, message)

	return nil
}

func (p *memPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.messages...)
}

var errBoom = errors.New("boom")

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += 7 {
		for x := 0; x < w; x += 7 {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	return img
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(w, h), &jpeg.Options{Quality: 80}))

	return buf.Bytes()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))

	return buf.Bytes()
}

// bmpBytes is a 1x1 24-bit BMP.
func bmpBytes() []byte {
	return []byte{
		'B', 'M', 58, 0, 0, 0, 0, 0, 0, 0, 54, 0, 0, 0,
		40, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 24, 0,
		0, 0, 0, 0, 4, 0, 0, 0, 0x13, 0x0b, 0, 0, 0x13, 0x0b, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 255, 0,
	}
}
