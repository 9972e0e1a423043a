package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"postbridge/internal/application/usecase"
	"postbridge/internal/application/usecase/abstraction"
	"postbridge/internal/presentation"
)

type HeadHandler struct {
	getter abstraction.Getter
}

func NewHeadHandler(getter abstraction.Getter) *HeadHandler {
	return &HeadHandler{
		getter: getter,
	}
}

// HandleHead handles HEAD /files/<id> requests.
func (h *HeadHandler) HandleHead(c echo.Context) error {
	id := removeFileExtension(c.Param(presentation.IDParam))
	if id == "" {
		return writeError(c, fmt.Errorf("%w: missing file id", usecase.ErrValidation))
	}

	desc, err := h.getter.GetFile(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	header := c.Response().Header()
	header.Set(echo.HeaderContentType, desc.FileType)
	header.Set(echo.HeaderContentLength, strconv.FormatInt(desc.Size, 10))
	header.Set(presentation.WidthTag, strconv.Itoa(desc.Width))
	header.Set(presentation.HeightTag, strconv.Itoa(desc.Height))

	return c.NoContent(http.StatusOK)
}

// HandleDescribe handles GET /files/<id>/meta requests.
func (h *HeadHandler) HandleDescribe(c echo.Context) error {
	desc, err := h.getter.GetFile(c.Request().Context(), removeFileExtension(c.Param(presentation.IDParam)))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, desc)
}
