package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPostsTextPayload(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	require.NoError(t, c.Send(context.Background(), "hello digest"))
	assert.Equal(t, "hello digest", got["text"])
}

func TestSendSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	c.retryCfg.Delay = 10 * time.Millisecond

	err := c.Send(context.Background(), "will fail")
	assert.Error(t, err)
}

func TestSendChunksInOrderAndStopsOnFailure(t *testing.T) {
	var received []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		if payload["text"] == "boom" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		received = append(received, payload["text"])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	c.retryCfg.Delay = 10 * time.Millisecond

	require.NoError(t, c.SendChunks(context.Background(), []string{"one", "two"}, time.Millisecond))
	assert.Equal(t, []string{"one", "two"}, received)

	received = nil
	err := c.SendChunks(context.Background(), []string{"one", "boom", "three"}, time.Millisecond)
	assert.Error(t, err)
	// The chunk after the failure is never attempted.
	assert.Equal(t, []string{"one"}, received)
}
