package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trackline-dev/trackline/db"
	"github.com/trackline-dev/trackline/internal/models"
	"github.com/trackline-dev/trackline/internal/store"
	"github.com/trackline-dev/trackline/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func notifierTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))

	return gdb
}

func TestNotifierDeliversMatchingWebhooks(t *testing.T) {
	gdb := notifierTestDB(t)

	owner := models.User{Username: "alice", Role: types.RoleAdmin, PasswordHash: "x"}
	require.NoError(t, gdb.Create(&owner).Error)

	received := make(chan WebhookEnvelope, 4)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var envelope WebhookEnvelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&envelope))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		received <- envelope
	}))
	defer server.Close()

	_, err := store.CreateWebhook(gdb, owner.ID, server.URL, types.EventWildcard)
	require.NoError(t, err)

	// A subscription for a different event must stay silent.
	silent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("webhook with non-matching event was called")
	}))
	defer silent.Close()

	_, err = store.CreateWebhook(gdb, owner.ID, silent.URL, "activity_deleted")
	require.NoError(t, err)

	notifier := NewNotifier(gdb)
	notifier.Start()
	defer notifier.Stop()

	notifier.Notify(owner.ID, types.EventActivityUpdated, ActivityData{
		ID:     42,
		Title:  "Quarterly report",
		Status: types.StatusDone,
	})

	select {
	case envelope := <-received:
		assert.Equal(t, types.EventActivityUpdated, envelope.Event)
		assert.EqualValues(t, 42, envelope.Activity.ID)
		assert.Equal(t, "Quarterly report", envelope.Activity.Title)
		assert.False(t, envelope.Timestamp.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was never delivered")
	}
}

func TestNotifyNeverBlocks(t *testing.T) {
	gdb := notifierTestDB(t)

	// No dispatcher running, so the queue only fills.
	notifier := NewNotifier(gdb)
	defer notifier.Stop()

	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < notifierQueueSize+10; i++ {
			notifier.Notify(1, types.EventActivityUpdated, ActivityData{ID: uint(i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a full queue")
	}
}

func TestNotifierSurvivesFailingEndpoint(t *testing.T) {
	gdb := notifierTestDB(t)

	owner := models.User{Username: "alice", Role: types.RoleAdmin, PasswordHash: "x"}
	require.NoError(t, gdb.Create(&owner).Error)

	calls := make(chan int, 4)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		calls <- 1
	}))
	defer failing.Close()

	_, err := store.CreateWebhook(gdb, owner.ID, failing.URL, types.EventWildcard)
	require.NoError(t, err)

	notifier := NewNotifier(gdb)
	notifier.Start()
	defer notifier.Stop()

	// Two notifications in a row; the first failure must not wedge the
	// dispatcher.
	notifier.Notify(owner.ID, types.EventActivityUpdated, ActivityData{ID: 1})
	notifier.Notify(owner.ID, types.EventActivityUpdated, ActivityData{ID: 2})

	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("delivery %d never attempted", i+1)
		}
	}
}
