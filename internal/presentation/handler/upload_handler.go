package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"postbridge/internal/application/usecase"
	"postbridge/internal/application/usecase/abstraction"
	"postbridge/internal/domain/dto"
	"postbridge/internal/presentation"
)

type UploadHandler struct {
	uploader abstraction.Uploader
	getter   abstraction.Getter
}

func NewUploadHandler(uploader abstraction.Uploader, getter abstraction.Getter) *UploadHandler {
	return &UploadHandler{
		uploader: uploader,
		getter:   getter,
	}
}

// Handle handles multipart POST /upload requests. The image goes in the
// "file" part; alt, width, height and type are optional form fields.
func (h *UploadHandler) Handle(c echo.Context) error {
	fh, err := c.FormFile(presentation.FileField)
	if err != nil {
		return writeError(c, fmt.Errorf("%w: missing %q part", usecase.ErrValidation, presentation.FileField))
	}

	f, err := fh.Open()
	if err != nil {
		return writeError(c, fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return writeError(c, fmt.Errorf("read upload: %w", err))
	}

	width, err := parseDimension(c.FormValue(presentation.WidthField))
	if err != nil {
		return writeError(c, err)
	}

	height, err := parseDimension(c.FormValue(presentation.HeightField))
	if err != nil {
		return writeError(c, err)
	}

	mimeType := c.FormValue(presentation.TypeField)
	if mimeType == "" {
		mimeType = fh.Header.Get(echo.HeaderContentType)
	}

	file, err := h.uploader.ResolveOrCreate(c.Request().Context(), dto.UploadInput{
		Data:     data,
		Filename: fh.Filename,
		AltText:  c.FormValue(presentation.AltField),
		Width:    width,
		Height:   height,
		MimeType: mimeType,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, h.getter.Describe(file))
}

// parseDimension reads an optional pixel count; empty means not declared.
func parseDimension(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: dimension %q must be a positive integer", usecase.ErrValidation, s)
	}

	return v, nil
}
