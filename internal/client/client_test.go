package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bot struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(url string, opts ...Option) *Client {
	opts = append([]Option{WithToken("tok"), WithRetryInterval(time.Millisecond)}, opts...)
	return New(url, opts...)
}

func TestPath(t *testing.T) {
	assert.Equal(t, "/api/bots/42/status", Path(EndpointBotStatus, "42"))
	assert.Equal(t, "/api/bots/a%2Fb", Path(EndpointBot, "a/b"))
}

func TestResourceList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/bots", r.URL.Path)
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "success",
			"data": map[string]interface{}{
				"items":     []bot{{ID: "1", Name: "Alpha", Status: "active"}},
				"page_info": map[string]int{"page": 1, "per_page": 20, "total": 1, "total_pages": 1},
			},
		})
	}))
	defer srv.Close()

	bots := NewResource[bot](newTestClient(srv.URL), EndpointBots, EndpointBot)
	page, err := bots.List(context.Background(), url.Values{"status": {"active"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Alpha", page.Items[0].Name)
	assert.Equal(t, 1, page.PageInfo.Total)
}

func TestResourceCreateSendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var in map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"status": "success",
			"data":   bot{ID: "9", Name: in["name"]},
		})
	}))
	defer srv.Close()

	bots := NewResource[bot](newTestClient(srv.URL), EndpointBots, EndpointBot)
	created, err := bots.Create(context.Background(), map[string]string{"name": "Beta"})
	require.NoError(t, err)
	assert.Equal(t, "Beta", created.Name)
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "message": "busy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": bot{ID: "1"}})
	}))
	defer srv.Close()

	bots := NewResource[bot](newTestClient(srv.URL, WithMaxRetries(3)), EndpointBots, EndpointBot)
	got, err := bots.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestGetRetriesAreBounded(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusBadGateway, map[string]string{"status": "error", "message": "upstream"})
	}))
	defer srv.Close()

	bots := NewResource[bot](newTestClient(srv.URL, WithMaxRetries(1)), EndpointBots, EndpointBot)
	_, err := bots.Get(context.Background(), "1")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream", apiErr.Message)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "Failed to fetch bot"})
	}))
	defer srv.Close()

	bots := NewResource[bot](newTestClient(srv.URL, WithMaxRetries(3)), EndpointBots, EndpointBot)
	_, err := bots.Get(context.Background(), "1")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestWritesAreNeverRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	bots := NewResource[bot](newTestClient(srv.URL, WithMaxRetries(3)), EndpointBots, EndpointBot)
	err := bots.Delete(context.Background(), "1")
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestZeroRetriesDisablesRetrying(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := Get[bot](context.Background(), newTestClient(srv.URL, WithMaxRetries(0)), EndpointAuthMe, nil)
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
