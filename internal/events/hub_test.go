package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventMarshalFlattensPayload(t *testing.T) {
	event := Event{
		Type: "case_updated",
		Payload: map[string]interface{}{
			"case_id": "S2G-1",
			"status":  "resolved",
		},
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "case_updated", decoded["type"])
	assert.Equal(t, "S2G-1", decoded["case_id"])
	assert.Equal(t, "resolved", decoded["status"])
}

func TestBroadcastWithoutListeners(t *testing.T) {
	hub := NewHub()
	// Must be a no-op, not an error.
	hub.Broadcast(Event{Type: "new_case"})
	assert.Equal(t, 0, hub.ListenerCount())
}

func TestBroadcastReachesListener(t *testing.T) {
	hub := NewHub()

	rec := httptest.NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)

	served := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req)
		close(served)
	}()

	require.Eventually(t, func() bool {
		return hub.ListenerCount() == 1
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast(Event{Type: "new_notification", Payload: map[string]interface{}{"case_id": "c-1"}})

	require.Eventually(t, func() bool {
		return strings.Contains(rec.Body.String(), "new_notification")
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, rec.Body.String(), "data: ")
	assert.Contains(t, rec.Body.String(), `"case_id":"c-1"`)

	cancel()
	select {
	case <-served:
	case <-time.After(time.Second):
		t.Fatal("handler did not return after client disconnect")
	}
	assert.Equal(t, 0, hub.ListenerCount())
}
