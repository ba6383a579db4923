package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pebble/internal/model"
	"pebble/internal/tracker"
)

const latestIssueCount = 5

type DashboardHandler struct {
	store *tracker.Store
}

func NewDashboardHandler(store *tracker.Store) *DashboardHandler {
	return &DashboardHandler{store: store}
}

type LatestIssueResponse struct {
	ID           string         `json:"id"`
	Key          string         `json:"key"`
	Title        string         `json:"title"`
	Status       model.Status   `json:"status"`
	Priority     model.Priority `json:"priority"`
	AssigneeName string         `json:"assignee_name"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Cards godoc
// @Summary   Project and issue totals
// @Tags      Dashboard
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  tracker.Cards
// @Router    /dashboard/cards [get]
func (h *DashboardHandler) Cards(c *gin.Context) {
	cards, err := h.store.Cards(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

// Latest godoc
// @Summary   Newest issues across all projects
// @Tags      Dashboard
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}  LatestIssueResponse
// @Router    /dashboard/latest [get]
func (h *DashboardHandler) Latest(c *gin.Context) {
	issues, err := h.store.LatestIssues(c.Request.Context(), latestIssueCount)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]LatestIssueResponse, len(issues))
	for i, issue := range issues {
		response[i] = LatestIssueResponse{
			ID:        issue.ID.String(),
			Key:       issue.Key,
			Title:     issue.Title,
			Status:    issue.Status,
			Priority:  issue.Priority,
			CreatedAt: issue.CreatedAt,
		}
		if issue.Assignee != nil {
			response[i].AssigneeName = issue.Assignee.Name
		} else {
			response[i].AssigneeName = "Unassigned"
		}
	}
	c.JSON(http.StatusOK, response)
}
