package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trackline-dev/trackline/db"
	"github.com/trackline-dev/trackline/internal/auth"
	"github.com/trackline-dev/trackline/internal/handlers"
	"github.com/trackline-dev/trackline/internal/router"
	"github.com/trackline-dev/trackline/internal/services"
	"github.com/trackline-dev/trackline/internal/storage"
	"github.com/trackline-dev/trackline/internal/types"
	"gorm.io/driver/sqlite"
)

// setupAPI spins up the full router against a fresh in-memory database.
func setupAPI(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")
	require.NoError(t, auth.InitJWTSecret())

	gdb, err := db.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))
	db.DB = gdb

	notifier := services.NewNotifier(gdb)
	notifier.Start()
	t.Cleanup(notifier.Stop)

	uploads, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)

	handlers.Init(notifier, services.NewMailer(services.MailerConfig{}), uploads)

	return router.NewRouter()
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func registerAndLogin(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/auth/token", "", gin.H{
		"username": username,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var token types.TokenResponse
	decodeBody(t, w, &token)
	require.NotEmpty(t, token.AccessToken)

	return token.AccessToken
}

func TestRegisterAndLogin(t *testing.T) {
	r := setupAPI(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		User types.UserResponse `json:"user"`
	}
	decodeBody(t, w, &created)
	assert.Equal(t, types.RoleAdmin, created.User.Role)

	// Duplicate usernames are rejected.
	w = doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice",
		"password": "other1234",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/token", "", gin.H{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	token := registerAndLogin(t, r, "bob")

	w = doJSON(t, r, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		User types.UserResponse `json:"user"`
	}
	decodeBody(t, w, &me)
	assert.Equal(t, "bob", me.User.Username)
	assert.Equal(t, types.RoleCollaborator, me.User.Role)

	w = doJSON(t, r, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActivityLifecycle(t *testing.T) {
	r := setupAPI(t)
	token := registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/activities", token, gin.H{
		"title":       "Quarterly report",
		"description": "Numbers for Q3",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var activity types.ActivityResponse
	decodeBody(t, w, &activity)
	assert.Equal(t, types.StatusNew, activity.Status)

	w = doJSON(t, r, http.MethodGet, "/api/activities", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page types.PaginatedActivities
	decodeBody(t, w, &page)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PerPage)
	require.Len(t, page.Items, 1)

	patchURL := fmt.Sprintf("/api/activities/%d", activity.ID)

	w = doJSON(t, r, http.MethodPatch, patchURL, token, gin.H{
		"status":      "In Progress",
		"assigned_to": "bob",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated types.ActivityResponse
	decodeBody(t, w, &updated)
	assert.Equal(t, types.StatusInProgress, updated.Status)

	w = doJSON(t, r, http.MethodGet, patchURL+"/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var history []types.HistoryResponse
	decodeBody(t, w, &history)
	assert.Len(t, history, 2)

	// Repeating the same patch adds nothing.
	w = doJSON(t, r, http.MethodPatch, patchURL, token, gin.H{
		"status":      "In Progress",
		"assigned_to": "bob",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, patchURL+"/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &history)
	assert.Len(t, history, 2)
}

func TestAdminGates(t *testing.T) {
	r := setupAPI(t)

	adminToken := registerAndLogin(t, r, "alice")
	collabToken := registerAndLogin(t, r, "bob")

	w := doJSON(t, r, http.MethodPost, "/api/activities", adminToken, gin.H{"title": "Admin only ops"})
	require.Equal(t, http.StatusCreated, w.Code)

	var activity types.ActivityResponse
	decodeBody(t, w, &activity)

	deleteURL := fmt.Sprintf("/api/activities/%d", activity.ID)

	w = doJSON(t, r, http.MethodDelete, deleteURL, collabToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/dashboard/weekly", collabToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/collaborators", collabToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/dashboard/weekly", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, deleteURL, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccessIsolationBetweenUsers(t *testing.T) {
	r := setupAPI(t)

	registerAndLogin(t, r, "alice")
	ownerToken := registerAndLogin(t, r, "bob")
	strangerToken := registerAndLogin(t, r, "carol")

	w := doJSON(t, r, http.MethodPost, "/api/activities", ownerToken, gin.H{"title": "Private work"})
	require.Equal(t, http.StatusCreated, w.Code)

	var activity types.ActivityResponse
	decodeBody(t, w, &activity)

	// A non-shared collaborator cannot even learn the activity exists.
	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/activities/%d", activity.ID), strangerToken, gin.H{
		"status": "Done",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/activities", strangerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page types.PaginatedActivities
	decodeBody(t, w, &page)
	assert.EqualValues(t, 0, page.Total)
}

func TestInvitationFlow(t *testing.T) {
	r := setupAPI(t)
	ownerToken := registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/activities", ownerToken, gin.H{"title": "Shared work"})
	require.Equal(t, http.StatusCreated, w.Code)

	var activity types.ActivityResponse
	decodeBody(t, w, &activity)

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/activities/%d/invite", activity.ID), ownerToken, gin.H{
		"invited_email": "guest@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var invitation types.InvitationResponse
	decodeBody(t, w, &invitation)
	require.NotEmpty(t, invitation.Token)

	// The redemption page is public.
	w = doJSON(t, r, http.MethodGet, "/api/invite/"+invitation.Token, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/invite/does-not-exist", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/invite/"+invitation.Token+"/accept-login", "", gin.H{
		"username": "guest",
		"password": "guestpass1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var token types.TokenResponse
	decodeBody(t, w, &token)
	require.NotEmpty(t, token.AccessToken)

	// The guest now sees the shared activity.
	w = doJSON(t, r, http.MethodGet, "/api/activities", token.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page types.PaginatedActivities
	decodeBody(t, w, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, activity.ID, page.Items[0].ID)
}

func TestSubtaskEndpoints(t *testing.T) {
	r := setupAPI(t)
	token := registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/activities", token, gin.H{"title": "Plan launch"})
	require.Equal(t, http.StatusCreated, w.Code)

	var activity types.ActivityResponse
	decodeBody(t, w, &activity)

	base := fmt.Sprintf("/api/activities/%d/subtasks", activity.ID)

	for _, title := range []string{"First", "Second"} {
		w = doJSON(t, r, http.MethodPost, base, token, gin.H{"title": title})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var subtasks []types.SubtaskResponse
	decodeBody(t, w, &subtasks)
	require.Len(t, subtasks, 2)
	assert.Equal(t, 0, subtasks[0].Order)
	assert.Equal(t, 1, subtasks[1].Order)

	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("%s/%d", base, subtasks[0].ID), token, gin.H{
		"status": types.StatusDone,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var done types.SubtaskResponse
	decodeBody(t, w, &done)
	assert.NotNil(t, done.CompletedAt)
}

func TestFileUploadAndDownload(t *testing.T) {
	r := setupAPI(t)
	token := registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/activities", token, gin.H{"title": "With attachments"})
	require.Equal(t, http.StatusCreated, w.Code)

	var activity types.ActivityResponse
	decodeBody(t, w, &activity)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("remember the milk"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/activities/%d/files", activity.ID), &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var file types.FileResponse
	decodeBody(t, rec, &file)
	assert.Equal(t, "notes.txt", file.Filename)
	assert.EqualValues(t, len("remember the milk"), file.FileSize)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/activities/%d/files/%d", activity.ID, file.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "remember the milk", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "notes.txt")

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/activities/%d/files/%d", activity.ID, file.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSVExport(t *testing.T) {
	r := setupAPI(t)
	token := registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/activities", token, gin.H{"title": "Exported row"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/activities/export/csv", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "activities.csv")
	assert.Contains(t, w.Body.String(), "Exported row")
	assert.Contains(t, w.Body.String(), "Title")
}

func TestWebhookEndpoints(t *testing.T) {
	r := setupAPI(t)
	token := registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/webhooks", token, gin.H{
		"url": "https://example.com/hook",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var webhook types.WebhookResponse
	decodeBody(t, w, &webhook)
	assert.Equal(t, types.EventWildcard, webhook.Event)

	w = doJSON(t, r, http.MethodGet, "/api/webhooks", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var webhooks []types.WebhookResponse
	decodeBody(t, w, &webhooks)
	require.Len(t, webhooks, 1)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/webhooks/%d", webhook.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
