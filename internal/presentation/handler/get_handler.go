package handler

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"postbridge/internal/application/usecase"
	"postbridge/internal/application/usecase/abstraction"
	"postbridge/internal/domain/dto"
	"postbridge/internal/presentation"
	"postbridge/pkg/digest"
)

type GetHandler struct {
	fetcher abstraction.Fetcher
}

func NewGetHandler(fetcher abstraction.Fetcher) *GetHandler {
	return &GetHandler{
		fetcher: fetcher,
	}
}

// HandleGet handles GET /files/<id> requests. Either a platform or an explicit
// max_width/max_height bound may be given; without one the stored bytes are
// returned as is.
func (h *GetHandler) HandleGet(c echo.Context) error {
	id := removeFileExtension(c.Param(presentation.IDParam))
	if id == "" {
		return writeError(c, fmt.Errorf("%w: missing file id", usecase.ErrValidation))
	}

	platform := c.QueryParam(presentation.PlatformQuery)

	bounds, err := parseBounds(c)
	if err != nil {
		return writeError(c, err)
	}

	var out *dto.ProcessedFile

	switch {
	case platform != "" && bounds != nil:
		return writeError(c, fmt.Errorf("%w: platform and explicit bounds are exclusive", usecase.ErrValidation))
	case platform != "":
		out, err = h.fetcher.FetchForPlatform(c.Request().Context(), id, platform)
	default:
		out, err = h.fetcher.FetchProcessed(c.Request().Context(), id, bounds)
	}

	if err != nil {
		return writeError(c, err)
	}

	header := c.Response().Header()
	header.Set(presentation.WidthTag, strconv.Itoa(out.Width))
	header.Set(presentation.HeightTag, strconv.Itoa(out.Height))
	header.Set(presentation.ResizedTag, strconv.FormatBool(out.Resized))
	header.Set(echo.HeaderContentLength, strconv.Itoa(len(out.Data)))

	if out.Filename != "" {
		header.Set(echo.HeaderContentDisposition, mime.FormatMediaType("inline", map[string]string{"filename": out.Filename}))
	}

	return c.Blob(http.StatusOK, out.MimeType, out.Data)
}

// parseBounds returns nil when neither max_width nor max_height is given.
func parseBounds(c echo.Context) (*dto.Bounds, error) {
	rawW := c.QueryParam(presentation.MaxWidthQuery)
	rawH := c.QueryParam(presentation.MaxHeightQuery)

	if rawW == "" && rawH == "" {
		return nil, nil //nolint:nilnil
	}

	w, err := strconv.Atoi(rawW)
	if err != nil || w <= 0 {
		return nil, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrValidation, presentation.MaxWidthQuery)
	}

	h, err := strconv.Atoi(rawH)
	if err != nil || h <= 0 {
		return nil, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrValidation, presentation.MaxHeightQuery)
	}

	b := &dto.Bounds{MaxWidth: w, MaxHeight: h}

	if raw := c.QueryParam(presentation.QualityQuery); raw != "" {
		q, err := strconv.Atoi(raw)
		if err != nil || q < 1 || q > 100 {
			return nil, fmt.Errorf("%w: %s must be in 1..100", usecase.ErrValidation, presentation.QualityQuery)
		}

		b.Quality = q
	}

	return b, nil
}

// removeFileExtension strips a short extension such as ".jpg" from an id.
func removeFileExtension(id string) string {
	if dotIndex := strings.LastIndex(id, "."); dotIndex != -1 && len(id)-dotIndex <= 5 {
		if potentialID := id[:dotIndex]; digest.Valid(potentialID) {
			return potentialID
		}
	}

	return id
}
