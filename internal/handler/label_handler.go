package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pebble/internal/tracker"
)

// CreateLabelRequest defines the expected request body for creating a label
type CreateLabelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// LabelHandler handles label-related HTTP requests
type LabelHandler struct {
	store *tracker.Store
}

// NewLabelHandler creates a new LabelHandler instance
func NewLabelHandler(store *tracker.Store) *LabelHandler {
	return &LabelHandler{store: store}
}

// Create godoc
// @Summary   Create a label
// @Tags      Labels
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     request  body      CreateLabelRequest  true  "Label, color as #RRGGBB"
// @Success   201      {object}  model.Label
// @Failure   400      {object}  map[string]string
// @Router    /labels [post]
func (h *LabelHandler) Create(c *gin.Context) {
	var req CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	label, err := h.store.CreateLabel(c.Request.Context(), tracker.LabelDraft{Name: req.Name, Color: req.Color})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, label)
}

// List godoc
// @Summary   List labels by name
// @Tags      Labels
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}  model.Label
// @Router    /labels [get]
func (h *LabelHandler) List(c *gin.Context) {
	labels, err := h.store.Labels(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, labels)
}
