package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pebble/internal/model"
	"pebble/internal/tracker"
)

type BoardHandler struct {
	store    *tracker.Store
	projects *ProjectHandler
}

func NewBoardHandler(store *tracker.Store) *BoardHandler {
	return &BoardHandler{store: store, projects: NewProjectHandler(store)}
}

type MoveIssueRequest struct {
	Status model.Status `json:"status" binding:"required"`
}

// BoardSnapshot is the payload of the board endpoints and the event stream.
type BoardSnapshot struct {
	Columns []tracker.Column `json:"columns"`
	Summary tracker.Summary  `json:"summary"`
}

func snapshot(issues []model.Issue) BoardSnapshot {
	return BoardSnapshot{Columns: tracker.GroupByStatus(issues), Summary: tracker.Summarize(issues)}
}

// Board godoc
// @Summary   Issues grouped into the four status columns
// @Tags      Board
// @Produce   json
// @Security  BearerAuth
// @Param     key  path      string  true  "Project key"
// @Success   200  {object}  BoardSnapshot
// @Router    /projects/{key}/board [get]
func (h *BoardHandler) Board(c *gin.Context) {
	_, issues, ok := h.projects.projectIssues(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snapshot(issues))
}

// Move godoc
// @Summary   Drop an issue onto a status column
// @Description  Any column may be targeted, including earlier ones and the current one.
// @Tags      Board
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id       path      string            true  "Issue ID"
// @Param     request  body      MoveIssueRequest  true  "Target column"
// @Success   200      {object}  BoardSnapshot
// @Failure   400      {object}  map[string]string
// @Failure   404      {object}  map[string]string
// @Router    /issues/{id}/move [post]
func (h *BoardHandler) Move(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req MoveIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	issue, err := h.store.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	issues, err := h.store.ListByProject(ctx, issue.ProjectID)
	if err != nil {
		respondError(c, err)
		return
	}

	board := tracker.NewBoard(h.store, issues, nil)
	board.BeginDrag(*issue)
	if err := board.DropOn(ctx, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot(board.Issues()))
}

// Events godoc
// @Summary   Stream board snapshots
// @Description  Server-sent "board" events, one on connect and one after every change to the project's issues.
// @Tags      Board
// @Produce   text/event-stream
// @Security  BearerAuth
// @Param     key  path  string  true  "Project key"
// @Router    /projects/{key}/events [get]
func (h *BoardHandler) Events(c *gin.Context) {
	project, issues, ok := h.projects.projectIssues(c)
	if !ok {
		return
	}

	// Holds only the newest issue set; a slow client skips intermediate ones.
	latest := make(chan []model.Issue, 1)
	unsubscribe := h.store.Subscribe(project.ID, func(_ uuid.UUID, issues []model.Issue) {
		for {
			select {
			case latest <- issues:
				return
			default:
				select {
				case <-latest:
				default:
				}
			}
		}
	})
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("board", snapshot(issues))
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case issues := <-latest:
			c.SSEvent("board", snapshot(issues))
			c.Writer.Flush()
		}
	}
}
