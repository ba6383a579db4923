package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pebble/internal/model"
	"pebble/internal/tracker"
)

// recentIssueCount is how many issues the project summary lists.
const recentIssueCount = 5

type ProjectHandler struct {
	store *tracker.Store
}

func NewProjectHandler(store *tracker.Store) *ProjectHandler {
	return &ProjectHandler{store: store}
}

type CreateProjectRequest struct {
	Name        string  `json:"name"`
	Key         string  `json:"key"`
	Description *string `json:"description"`
}

type CreateIssueRequest struct {
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Type        model.IssueType `json:"type"`
	Priority    model.Priority  `json:"priority"`
	Status      model.Status    `json:"status"`
	AssigneeID  *uuid.UUID      `json:"assignee_id"`
	LabelIDs    []uuid.UUID     `json:"label_ids"`
}

type SummaryResponse struct {
	Project *model.Project  `json:"project"`
	Summary tracker.Summary `json:"summary"`
	Recent  []model.Issue   `json:"recent"`
}

// Create godoc
// @Summary   Create a project
// @Description  The key is derived from the name when omitted.
// @Tags      Projects
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     request  body      CreateProjectRequest  true  "Project"
// @Success   201      {object}  model.Project
// @Failure   400      {object}  map[string]string
// @Router    /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, err := h.store.CreateProject(c.Request.Context(), tracker.ProjectDraft{
		Name:        req.Name,
		Key:         req.Key,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// List godoc
// @Summary   List projects with their status counts
// @Tags      Projects
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}  tracker.ProjectOverview
// @Router    /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	overviews, err := h.store.ProjectOverviews(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overviews)
}

// Get godoc
// @Summary   Get a project by key
// @Tags      Projects
// @Produce   json
// @Security  BearerAuth
// @Param     key  path      string  true  "Project key"
// @Success   200  {object}  model.Project
// @Failure   404  {object}  map[string]string
// @Router    /projects/{key} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	project, ok := h.project(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, project)
}

// Issues godoc
// @Summary   List all issues of a project
// @Tags      Issues
// @Produce   json
// @Security  BearerAuth
// @Param     key  path   string  true  "Project key"
// @Success   200  {array}  model.Issue
// @Router    /projects/{key}/issues [get]
func (h *ProjectHandler) Issues(c *gin.Context) {
	_, issues, ok := h.projectIssues(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, issues)
}

// CreateIssue godoc
// @Summary   Create an issue
// @Description  Type, priority and status default to TASK, MEDIUM and TODO.
// @Tags      Issues
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     key      path      string              true  "Project key"
// @Param     request  body      CreateIssueRequest  true  "Issue"
// @Success   201      {object}  model.Issue
// @Failure   400      {object}  map[string]string
// @Failure   404      {object}  map[string]string
// @Router    /projects/{key}/issues [post]
func (h *ProjectHandler) CreateIssue(c *gin.Context) {
	project, ok := h.project(c)
	if !ok {
		return
	}

	var req CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	issue, err := h.store.Create(c.Request.Context(), tracker.IssueDraft{
		ProjectID:   project.ID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Priority:    req.Priority,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
		LabelIDs:    req.LabelIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, issue)
}

// Backlog godoc
// @Summary   Filtered and sorted backlog
// @Description  Highest priority first, then earliest status. "all" disables a filter.
// @Tags      Issues
// @Produce   json
// @Security  BearerAuth
// @Param     key       path   string  true   "Project key"
// @Param     status    query  string  false  "Status or all"
// @Param     priority  query  string  false  "Priority or all"
// @Success   200  {array}  model.Issue
// @Router    /projects/{key}/backlog [get]
func (h *ProjectHandler) Backlog(c *gin.Context) {
	var filter tracker.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter"})
		return
	}

	_, issues, ok := h.projectIssues(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, tracker.Select(issues, filter))
}

// Summary godoc
// @Summary   Status counts, completion rate and recent issues
// @Tags      Projects
// @Produce   json
// @Security  BearerAuth
// @Param     key  path      string  true  "Project key"
// @Success   200  {object}  SummaryResponse
// @Router    /projects/{key}/summary [get]
func (h *ProjectHandler) Summary(c *gin.Context) {
	project, issues, ok := h.projectIssues(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, SummaryResponse{
		Project: project,
		Summary: tracker.Summarize(issues),
		Recent:  tracker.Recent(issues, recentIssueCount),
	})
}

func (h *ProjectHandler) project(c *gin.Context) (*model.Project, bool) {
	project, err := h.store.ProjectByKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return project, true
}

func (h *ProjectHandler) projectIssues(c *gin.Context) (*model.Project, []model.Issue, bool) {
	project, ok := h.project(c)
	if !ok {
		return nil, nil, false
	}
	issues, err := h.store.ListByProject(c.Request.Context(), project.ID)
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	return project, issues, true
}
