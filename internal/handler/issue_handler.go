package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pebble/internal/model"
	"pebble/internal/tracker"
)

type IssueHandler struct {
	store *tracker.Store
}

func NewIssueHandler(store *tracker.Store) *IssueHandler {
	return &IssueHandler{store: store}
}

// UpdateIssueRequest carries only the fields to change. An empty description
// clears it.
type UpdateIssueRequest struct {
	Title         *string          `json:"title"`
	Description   *string          `json:"description"`
	Type          *model.IssueType `json:"type"`
	Priority      *model.Priority  `json:"priority"`
	Status        *model.Status    `json:"status"`
	AssigneeID    *uuid.UUID       `json:"assignee_id"`
	ClearAssignee bool             `json:"clear_assignee"`
	LabelIDs      *[]uuid.UUID     `json:"label_ids"`
}

// Get godoc
// @Summary   Get an issue
// @Tags      Issues
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      string  true  "Issue ID"
// @Success   200  {object}  model.Issue
// @Failure   404  {object}  map[string]string
// @Router    /issues/{id} [get]
func (h *IssueHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	issue, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// Update godoc
// @Summary   Edit an issue
// @Tags      Issues
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id       path      string              true  "Issue ID"
// @Param     request  body      UpdateIssueRequest  true  "Fields to change"
// @Success   200      {object}  model.Issue
// @Failure   400      {object}  map[string]string
// @Failure   404      {object}  map[string]string
// @Router    /issues/{id} [patch]
func (h *IssueHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	issue, err := h.store.UpdateByID(c.Request.Context(), id, tracker.IssueUpdate{
		Title:         req.Title,
		Description:   req.Description,
		Type:          req.Type,
		Priority:      req.Priority,
		Status:        req.Status,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: req.ClearAssignee,
		LabelIDs:      req.LabelIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// Delete godoc
// @Summary   Delete an issue
// @Tags      Issues
// @Security  BearerAuth
// @Param     id  path  string  true  "Issue ID"
// @Success   204
// @Failure   404  {object}  map[string]string
// @Router    /issues/{id} [delete]
func (h *IssueHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteByID(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search godoc
// @Summary   Search issues across projects
// @Description  Case-insensitive match on title, description, status and type. Newest first.
// @Tags      Issues
// @Produce   json
// @Security  BearerAuth
// @Param     query  query     string  false  "Search text"
// @Param     page   query     int     false  "Page, from 1"
// @Success   200    {object}  tracker.SearchPage
// @Router    /issues [get]
func (h *IssueHandler) Search(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}

	result, err := h.store.SearchIssues(c.Request.Context(), c.Query("query"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
