package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	datatables "github.com/ZihxS/gorm-admin-datatables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (t tag) EntityID() string {
	return strconv.FormatInt(t.ID, 10)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL+"/api/", time.Second, WithInitialInterval(time.Millisecond), WithMaxRetries(2))
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	_, err := NewClient("/relative", time.Second)
	assert.Error(t, err)

	client, err := NewClient("http://backend:9000/api/", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000/api/tags", client.URL("/tags", nil))
	assert.Equal(t, "http://backend:9000/api/tags/a%2Fb", client.URL("/tags/a%2Fb", nil))
}

func TestSourceListPage(t *testing.T) {
	var query string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		query = r.URL.RawQuery

		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []tag{{ID: 1, Name: "go"}, {ID: 2, Name: "rust"}},
			"total": 12,
		})
	})

	params := datatables.ListParams{
		Page:      2,
		Size:      10,
		Search:    "go",
		SortBy:    "name",
		SortOrder: datatables.SortDesc,
		Filters:   map[string]string{"tag_type": "3"},
	}

	page, err := NewSource[tag](client, "/tags").ListPage(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, "filter%5Btag_type%5D=3&page=2&search=go&size=10&sortBy=name&sortOrder=desc", query)
	assert.Len(t, page.Items, 2)
	assert.EqualValues(t, 12, page.Total)
	assert.Equal(t, 2, page.Pages)
}

func TestSourceListPageEmptyItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":null,"total":0,"pages":0}`))
	})

	page, err := NewSource[tag](client, "/tags").ListPage(context.Background(), datatables.DefaultListParams())
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.True(t, page.IsEmpty())
}

func TestSourceListPageRetries(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		failures  int32
		wantErr   bool
		wantCalls int32
	}{
		{name: "recovers_from_5xx", status: http.StatusBadGateway, failures: 2, wantErr: false, wantCalls: 3},
		{name: "recovers_from_429", status: http.StatusTooManyRequests, failures: 1, wantErr: false, wantCalls: 2},
		{name: "gives_up_after_retries", status: http.StatusServiceUnavailable, failures: 10, wantErr: true, wantCalls: 3},
		{name: "4xx_is_permanent", status: http.StatusBadRequest, failures: 10, wantErr: true, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if atomic.AddInt32(&calls, 1) <= tt.failures {
					http.Error(w, "unavailable", tt.status)
					return
				}
				_, _ = w.Write([]byte(`{"items":[{"id":1,"name":"go"}],"total":1,"pages":1}`))
			})

			page, err := NewSource[tag](client, "/tags").ListPage(context.Background(), datatables.DefaultListParams())
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, page.IsEmpty())
				assert.NotNil(t, page.Items)

				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, tt.status, statusErr.StatusCode)
				return
			}
			require.NoError(t, err)
			assert.Len(t, page.Items, 1)
		})
	}
}

func TestRetriesAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "unavailable", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"items":[],"total":0,"pages":0}`))
	})

	_, err := NewSource[tag](client, "/tags").ListPage(context.Background(), datatables.DefaultListParams())
	require.NoError(t, err)

	entries := logs.TakeAll()
	require.Len(t, entries, 1)
	assert.Equal(t, "backend", entries[0].LoggerName)
	assert.Equal(t, "retrying backend request", entries[0].Message)
	assert.Equal(t, http.MethodGet, entries[0].ContextMap()["method"])
}

func TestSourceListPageDecodeError(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`<html>`))
	})

	_, err := NewSource[tag](client, "/tags").ListPage(context.Background(), datatables.DefaultListParams())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestSourceGet(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags/7":
			_, _ = w.Write([]byte(`{"id":7,"name":"go"}`))
		default:
			http.NotFound(w, r)
		}
	})
	source := NewSource[tag](client, "/tags")

	item, err := source.Get(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "go", item.Name)

	_, err = source.Get(context.Background(), "8")
	require.Error(t, err)
	assert.ErrorIs(t, err, datatables.ErrNotFound)
	assert.True(t, IsNotFound(err))
}

func TestSourceDelete(t *testing.T) {
	var deleted []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		switch r.URL.Path {
		case "/api/tags/1", "/api/tags/2":
			deleted = append(deleted, r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		case "/api/tags/locked":
			http.Error(w, "locked", http.StatusConflict)
		default:
			http.NotFound(w, r)
		}
	})
	source := NewSource[tag](client, "/tags")

	n, err := source.Delete(context.Background(), "1", "9", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"/api/tags/1", "/api/tags/2"}, deleted)

	n, err = source.Delete(context.Background(), "9")
	assert.ErrorIs(t, err, datatables.ErrNotFound)
	assert.Zero(t, n)

	n, err = source.Delete(context.Background(), "1", "locked")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
	assert.Equal(t, 1, n)

	n, err = source.Delete(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestSourceContextCanceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSource[tag](client, "/tags").ListPage(ctx, datatables.DefaultListParams())
	assert.ErrorIs(t, err, context.Canceled)
}
