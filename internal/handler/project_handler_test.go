package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pebble/internal/handler"
	"pebble/internal/model"
	"pebble/internal/repository"
	"pebble/internal/tracker"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	router *gin.Engine
	store  *tracker.Store
}

func setupAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := tracker.NewStore(repository.NewMemoryRepositories(),
		tracker.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	projects := handler.NewProjectHandler(store)
	issues := handler.NewIssueHandler(store)
	boards := handler.NewBoardHandler(store)
	labels := handler.NewLabelHandler(store)
	dashboard := handler.NewDashboardHandler(store)

	r := gin.New()
	r.POST("/projects", projects.Create)
	r.GET("/projects", projects.List)
	r.GET("/projects/:key", projects.Get)
	r.GET("/projects/:key/issues", projects.Issues)
	r.POST("/projects/:key/issues", projects.CreateIssue)
	r.GET("/projects/:key/backlog", projects.Backlog)
	r.GET("/projects/:key/summary", projects.Summary)
	r.GET("/projects/:key/board", boards.Board)
	r.GET("/projects/:key/events", boards.Events)
	r.POST("/issues/:id/move", boards.Move)
	r.GET("/issues", issues.Search)
	r.GET("/issues/:id", issues.Get)
	r.PATCH("/issues/:id", issues.Update)
	r.DELETE("/issues/:id", issues.Delete)
	r.GET("/labels", labels.List)
	r.POST("/labels", labels.Create)
	r.GET("/dashboard/cards", dashboard.Cards)
	r.GET("/dashboard/latest", dashboard.Latest)

	return &apiFixture{router: r, store: store}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v), resp.Body.String())
	return v
}

func (f *apiFixture) createIssue(t *testing.T, key string, req handler.CreateIssueRequest) model.Issue {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/projects/"+key+"/issues", req)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[model.Issue](t, resp)
}

func (f *apiFixture) createProject(t *testing.T) {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/projects", handler.CreateProjectRequest{Name: "Pebble", Key: "PBL"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
}

func TestCreateIssue_AssignsKeyAndDefaults(t *testing.T) {
	f := setupAPI(t)
	f.createProject(t)

	first := f.createIssue(t, "PBL", handler.CreateIssueRequest{Title: "Set up CI"})
	second := f.createIssue(t, "pbl", handler.CreateIssueRequest{Title: "Fix login", Type: model.TypeBug})

	assert.Equal(t, "PBL-1", first.Key)
	assert.Equal(t, model.StatusTodo, first.Status)
	assert.Equal(t, model.PriorityMedium, first.Priority)
	assert.Equal(t, "PBL-2", second.Key)
	assert.Equal(t, model.TypeBug, second.Type)
}

func TestCreateIssue_Errors(t *testing.T) {
	f := setupAPI(t)
	f.createProject(t)

	resp := f.do(t, http.MethodPost, "/projects/PBL/issues", handler.CreateIssueRequest{Title: "x", Priority: "URGENT"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "priority", decode[map[string]string](t, resp)["field"])

	resp = f.do(t, http.MethodPost, "/projects/PBL/issues", handler.CreateIssueRequest{Title: ""})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = f.do(t, http.MethodPost, "/projects/NOPE/issues", handler.CreateIssueRequest{Title: "x"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCreateProject_DuplicateKey(t *testing.T) {
	f := setupAPI(t)
	f.createProject(t)

	resp := f.do(t, http.MethodPost, "/projects", handler.CreateProjectRequest{Name: "Again", Key: "PBL"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = f.do(t, http.MethodPost, "/projects", handler.CreateProjectRequest{Name: "Mobile App"})
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Regexp(t, `^MOB\d{2}$`, decode[model.Project](t, resp).Key)

	list := decode[[]tracker.ProjectOverview](t, f.do(t, http.MethodGet, "/projects", nil))
	assert.Len(t, list, 2)
}

func TestBacklog_FiltersAndSorts(t *testing.T) {
	f := setupAPI(t)
	f.createProject(t)

	f.createIssue(t, "PBL", handler.CreateIssueRequest{Title: "low todo", Priority: model.PriorityLow})
	f.createIssue(t, "PBL", handler.CreateIssueRequest{Title: "highest done", Priority: model.PriorityHighest, Status: model.StatusDone})
	f.createIssue(t, "PBL", handler.CreateIssueRequest{Title: "highest progress", Priority: model.PriorityHighest, Status: model.StatusInProgress})

	all := decode[[]model.Issue](t, f.do(t, http.MethodGet, "/projects/PBL/backlog?status=all&priority=all", nil))
	require.Len(t, all, 3)
	assert.Equal(t, []string{"PBL-3", "PBL-2", "PBL-1"}, []string{all[0].Key, all[1].Key, all[2].Key})

	done := decode[[]model.Issue](t, f.do(t, http.MethodGet, "/projects/PBL/backlog?status=DONE", nil))
	require.Len(t, done, 1)
	assert.Equal(t, "highest done", done[0].Title)
}

func TestSummary(t *testing.T) {
	f := setupAPI(t)
	f.createProject(t)

	for _, status := range []model.Status{model.StatusTodo, model.StatusInProgress, model.StatusInReview, model.StatusDone} {
		f.createIssue(t, "PBL", handler.CreateIssueRequest{Title: string(status), Status: status})
	}

	summary := decode[handler.SummaryResponse](t, f.do(t, http.MethodGet, "/projects/PBL/summary", nil))

	assert.Equal(t, 25, summary.Summary.CompletionRatePercent)
	assert.Equal(t, 4, summary.Summary.Total)
	assert.Len(t, summary.Recent, 4)
	assert.Equal(t, "PBL", summary.Project.Key)
}

func TestMove_BackwardAndErrors(t *testing.T) {
	f := setupAPI(t)
	f.createProject(t)
	issue := f.createIssue(t, "PBL", handler.CreateIssueRequest{Title: "review", Status: model.StatusInReview})

	resp := f.do(t, http.MethodPost, "/issues/"+issue.ID.String()+"/move", handler.MoveIssueRequest{Status: model.StatusTodo})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	board := decode[handler.BoardSnapshot](t, resp)
	require.Len(t, board.Columns, 4)
	assert.Equal(t, 1, board.Columns[0].Count)
	assert.Equal(t, 0, board.Columns[2].Count)

	stored := decode[model.Issue](t, f.do(t, http.MethodGet, "/issues/"+issue.ID.String(), nil))
	assert.Equal(t, model.StatusTodo, stored.Status)

	resp = f.do(t, http.MethodPost, "/issues/"+issue.ID.String()+"/move", handler.MoveIssueRequest{Status: "BLOCKED"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = f.do(t, http.MethodPost, "/issues/not-a-uuid/move", handler.MoveIssueRequest{Status: model.StatusDone})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = f.do(t, http.MethodPost, "/issues/00000000-0000-0000-0000-000000000001/move", handler.MoveIssueRequest{Status: model.StatusDone})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateAndDeleteIssue(t *testing.T) {
	f := setupAPI(t)
	f.createProject(t)

	labelResp := f.do(t, http.MethodPost, "/labels", handler.CreateLabelRequest{Name: "Bug", Color: "#EF4444"})
	require.Equal(t, http.StatusCreated, labelResp.Code)
	label := decode[model.Label](t, labelResp)

	issue := f.createIssue(t, "PBL", handler.CreateIssueRequest{Title: "draft", Description: ptr("old")})

	resp := f.do(t, http.MethodPatch, "/issues/"+issue.ID.String(), map[string]any{
		"title":       "final",
		"description": "",
		"label_ids":   []string{label.ID.String()},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	updated := decode[model.Issue](t, resp)
	assert.Equal(t, "final", updated.Title)
	assert.Nil(t, updated.Description)
	require.Len(t, updated.Labels, 1)
	assert.Equal(t, "Bug", updated.Labels[0].Name)
	assert.Equal(t, issue.Key, updated.Key)

	resp = f.do(t, http.MethodDelete, "/issues/"+issue.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = f.do(t, http.MethodGet, "/issues/"+issue.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	resp = f.do(t, http.MethodDelete, "/issues/"+issue.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSearchAndDashboard(t *testing.T) {
	f := setupAPI(t)
	f.createProject(t)

	for i := 0; i < 7; i++ {
		f.createIssue(t, "PBL", handler.CreateIssueRequest{Title: "checkout step", Status: model.StatusDone})
	}
	f.createIssue(t, "PBL", handler.CreateIssueRequest{Title: "profile"})

	page := decode[tracker.SearchPage](t, f.do(t, http.MethodGet, "/issues?query=Checkout&page=2", nil))
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Issues, 1)

	cards := decode[tracker.Cards](t, f.do(t, http.MethodGet, "/dashboard/cards", nil))
	assert.Equal(t, tracker.Cards{Projects: 1, Issues: 8, Completed: 7, Pending: 1}, cards)

	latest := decode[[]handler.LatestIssueResponse](t, f.do(t, http.MethodGet, "/dashboard/latest", nil))
	require.Len(t, latest, 5)
	assert.Equal(t, "PBL-8", latest[0].Key)
	assert.Equal(t, "Unassigned", latest[0].AssigneeName)
}

func TestEvents_StreamsBoardAfterChanges(t *testing.T) {
	f := setupAPI(t)
	f.createProject(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/projects/PBL/events", nil).WithContext(ctx)
	resp := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.router.ServeHTTP(resp, req)
	}()

	// Give the handler time to subscribe before mutating
	time.Sleep(100 * time.Millisecond)
	project, err := f.store.ProjectByKey(context.Background(), "PBL")
	require.NoError(t, err)
	_, err = f.store.Create(context.Background(), tracker.IssueDraft{ProjectID: project.ID, Title: "live"})
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	cancel()
	<-done

	body := resp.Body.String()
	assert.Equal(t, 2, strings.Count(body, "event:board"), body)
	assert.Contains(t, body, "PBL-1")
	assert.Contains(t, resp.Header().Get("Content-Type"), "text/event-stream")
}

func ptr[T any](v T) *T { return &v }
