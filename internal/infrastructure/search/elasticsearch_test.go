package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
)

func newFakeES(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es
}

func TestUserDirectory_IndexUser(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	es := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	u := entity.PublicUser{ID: "u-1", Handle: "alice", Email: "a@x.com", DisplayName: "Alice", CreatedAt: time.Now()}
	require.NoError(t, NewUserDirectory(es, "users").IndexUser(context.Background(), u))

	assert.Equal(t, "/users/_doc/u-1", gotPath)
	assert.Equal(t, "alice", gotBody["handle"])
	assert.NotContains(t, gotBody, "password_hash")
}

func TestUserDirectory_Search(t *testing.T) {
	es := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		assert.True(t, strings.Contains(string(b), `"multi_match"`))
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"u-1","_source":{"id":"u-1","handle":"alice","display_name":"Alice"}}]}}`))
	})

	got, err := NewUserDirectory(es, "users").Search(context.Background(), "ali", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Handle)
	assert.Equal(t, "Alice", got[0].DisplayName)
}

func TestUserDirectory_SearchErrorStatus(t *testing.T) {
	es := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})

	_, err := NewUserDirectory(es, "users").Search(context.Background(), "ali", 10)
	assert.Error(t, err)
}
