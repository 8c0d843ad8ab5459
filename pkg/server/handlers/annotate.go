// Package handlers implements the HTTP request handlers.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/semtab/linker"
	"github.com/semtab/linker/pkg/server/dto"
	"github.com/semtab/linker/pkg/store"
	"github.com/semtab/linker/pkg/types"
)

// AnnotateHandler handles annotation requests
type AnnotateHandler struct {
	annotator *linker.Annotator
	store     store.Store
}

// NewAnnotateHandler creates a new annotate handler
func NewAnnotateHandler(annotator *linker.Annotator, st store.Store) *AnnotateHandler {
	return &AnnotateHandler{
		annotator: annotator,
		store:     st,
	}
}

// AnnotateTable handles POST /api/v1/annotate
func (h *AnnotateHandler) AnnotateTable(c *gin.Context) {
	var req dto.AnnotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	table, err := types.NewTable(req.TableID, req.DatasetID, req.Rows)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	annotated, err := h.annotator.AnnotateTable(c.Request.Context(), table)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.response(annotated))
}

// GetAnnotations handles GET /api/v1/annotations/:dataset/:generator/:table
func (h *AnnotateHandler) GetAnnotations(c *gin.Context) {
	key := store.Key{
		DatasetID:   c.Param("dataset"),
		GeneratorID: c.Param("generator"),
		TableID:     c.Param("table"),
	}

	table, err := h.store.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "no annotations for " + key.String()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp := h.response(table)
	resp.Generator = key.GeneratorID
	c.JSON(http.StatusOK, resp)
}

func (h *AnnotateHandler) response(table *types.Table) dto.AnnotateResponse {
	resp := dto.AnnotateResponse{
		TableID:     table.ID(),
		DatasetID:   table.DatasetID(),
		Generator:   h.annotator.GeneratorID(),
		Annotations: []dto.CellAnnotation{},
	}
	for _, cell := range table.AnnotatedCells() {
		entity, _ := table.Annotation(cell)
		resp.Annotations = append(resp.Annotations, dto.CellAnnotation{
			Row:       cell.Row,
			Col:       cell.Col,
			Label:     table.CellValue(cell),
			EntityURI: entity.URI,
		})
	}
	return resp
}
