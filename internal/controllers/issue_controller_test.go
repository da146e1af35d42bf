package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/civicsync/civicsync/internal/models"
	"github.com/civicsync/civicsync/internal/realtime"
	"github.com/civicsync/civicsync/internal/repository"
	"github.com/civicsync/civicsync/internal/services"
)

func newTestRouter(t *testing.T) (*gin.Engine, *realtime.Hub, *repository.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	hub := realtime.NewHub()
	svc := services.NewIssueService(store, hub)
	ic := NewIssueController(svc)

	r := gin.New()
	r.GET("/issues", ic.GetIssues)
	r.POST("/issues", ic.CreateIssue)
	r.POST("/issues/:id/upvote", ic.UpvoteIssue)
	r.PUT("/issues/:id/status", ic.UpdateIssueStatus)
	r.GET("/issues/:id/updates", ic.GetIssueUpdates)
	return r, hub, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeIssue(t *testing.T, w *httptest.ResponseRecorder) models.Issue {
	t.Helper()
	var issue models.Issue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issue))
	return issue
}

// The full reporting scenario: create, upvote twice, resolve, and check the
// connected listener saw the final update.
func TestIssueLifecycleScenario(t *testing.T) {
	r, hub, _ := newTestRouter(t)

	listener, cancel := hub.Subscribe()
	defer cancel()

	w := doJSON(t, r, http.MethodPost, "/issues", gin.H{
		"title":       "Pothole",
		"description": "deep hole",
		"category":    "Road",
		"location":    "Main St",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	issue := decodeIssue(t, w)
	require.Equal(t, models.StatusPending, issue.Status)
	require.Equal(t, 0, issue.Upvotes)
	// No account behind the default reporter id, so the synthesized name
	// reads as anonymous. It must never be empty.
	require.Equal(t, "Anonymous", issue.UserName)

	// The creation reached the listener with the same synthesized name.
	first := <-listener
	require.Equal(t, issue.ID, first.Issue.ID)
	require.Equal(t, "Anonymous", first.Issue.UserName)

	for i := 0; i < 2; i++ {
		w = doJSON(t, r, http.MethodPost, "/issues/1/upvote", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	require.Equal(t, 2, decodeIssue(t, w).Upvotes)

	w = doJSON(t, r, http.MethodPut, "/issues/1/status", gin.H{"status": "Resolved"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.StatusResolved, decodeIssue(t, w).Status)

	// Drain the two upvote events, then expect the status update.
	<-listener
	<-listener
	last := <-listener
	require.Equal(t, models.StatusResolved, last.Issue.Status)

	// The audit trail recorded the change.
	w = doJSON(t, r, http.MethodGet, "/issues/1/updates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []models.IssueUpdate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	require.Equal(t, models.StatusResolved, records[0].Status)
}

func TestCreateIssueValidationReturns400(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/issues", gin.H{
		"title":    "Pothole",
		"category": "Road",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownIssueReturns404(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/issues/42/upvote", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPut, "/issues/42/status", gin.H{"status": "Resolved"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestBadStatusReturns400(t *testing.T) {
	r, _, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/issues", gin.H{
		"title":       "Pothole",
		"description": "deep hole",
		"category":    "Road",
		"location":    "Main St",
	})

	w := doJSON(t, r, http.MethodPut, "/issues/1/status", gin.H{"status": "Done"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetIssuesFilters(t *testing.T) {
	r, _, _ := newTestRouter(t)

	for _, tc := range []struct{ title, desc, cat string }{
		{"Pothole on Main", "deep", "Road"},
		{"Water leak", "pipe burst", "Water"},
		{"Dark corner", "street light out", "Street Lights"},
	} {
		w := doJSON(t, r, http.MethodPost, "/issues", gin.H{
			"title":       tc.title,
			"description": tc.desc,
			"category":    tc.cat,
			"location":    "somewhere",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	var issues []models.Issue

	w := doJSON(t, r, http.MethodGet, "/issues", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issues))
	require.Len(t, issues, 3)
	// Newest first.
	require.Equal(t, "Dark corner", issues[0].Title)

	w = doJSON(t, r, http.MethodGet, "/issues?category=Water", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issues))
	require.Len(t, issues, 1)

	w = doJSON(t, r, http.MethodGet, "/issues?search=light", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issues))
	require.Len(t, issues, 1)
	require.Equal(t, "Dark corner", issues[0].Title)
}
