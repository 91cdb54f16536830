package chroma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const collectionsPath = "/api/v2/tenants/default_tenant/databases/default_database/collections"

// newTestClient builds a client pointed at the mock server.
func newTestClient(t *testing.T, srv *httptest.Server, cfg Config) *Client {
	t.Helper()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	cfg.Host = u.Hostname()
	cfg.Port = port

	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		wantBase    string
	}{
		{
			name:        "missing host",
			config:      Config{},
			expectError: true,
		},
		{
			name:     "defaults applied",
			config:   Config{Host: "vectors.example.com"},
			wantBase: "http://vectors.example.com:8000/api/v2/tenants/default_tenant/databases/default_database",
		},
		{
			name:     "ssl and custom port",
			config:   Config{Host: "vectors.example.com", Port: 9443, SSL: true},
			wantBase: "https://vectors.example.com:9443/api/v2/tenants/default_tenant/databases/default_database",
		},
		{
			name:     "custom tenant and database",
			config:   Config{Host: "vectors.example.com", Tenant: "team", Database: "docs"},
			wantBase: "http://vectors.example.com:8000/api/v2/tenants/team/databases/docs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)
			if tt.expectError {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBase, client.baseURL)
		})
	}
}

func TestListCollections(t *testing.T) {
	cols := []Collection{
		{ID: uuid.NewString(), Name: "alpha", Metadata: map[string]any{SpaceMetadataKey: "cosine"}},
		{ID: uuid.NewString(), Name: "beta"},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, collectionsPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Contains(t, r.Header.Get("User-Agent"), "chromactl/")

		require.NoError(t, json.NewEncoder(w).Encode(cols))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Config{})
	got, err := client.ListCollections(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0].Name)
	assert.Equal(t, "cosine", got[0].Space())
	assert.Equal(t, "beta", got[1].Name)
	assert.Equal(t, DefaultSpace, got[1].Space())
}

func TestListCollections_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Config{})
	got, err := client.ListCollections(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCreateCollection(t *testing.T) {
	id := uuid.NewString()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, collectionsPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req createCollectionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "notes", req.Name)
		assert.Equal(t, "cosine", req.Metadata[SpaceMetadataKey])
		assert.False(t, req.GetOrCreate)

		require.NoError(t, json.NewEncoder(w).Encode(Collection{
			ID:       id,
			Name:     req.Name,
			Metadata: req.Metadata,
		}))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Config{})
	col, err := client.CreateCollection(context.Background(), "notes", map[string]any{SpaceMetadataKey: "cosine"})
	require.NoError(t, err)
	assert.Equal(t, id, col.ID)
	assert.Equal(t, "notes", col.Name)
	assert.Equal(t, "cosine", col.Space())
}

func TestCreateCollection_AlreadyExists(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
	}{
		{name: "conflict status", status: http.StatusConflict, body: `{"error":"Collection notes already exists"}`},
		{name: "legacy error body", status: http.StatusInternalServerError, body: `{"error":"ValueError('Collection notes already exists')"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			client := newTestClient(t, srv, Config{})
			col, err := client.CreateCollection(context.Background(), "notes", nil)
			assert.ErrorIs(t, err, ErrAlreadyExists)
			assert.Nil(t, col)
		})
	}
}

func TestCreateCollection_EmptyName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for invalid arguments")
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Config{})
	_, err := client.CreateCollection(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetCollection(t *testing.T) {
	id := uuid.NewString()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, collectionsPath+"/notes", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(Collection{ID: id, Name: "notes"}))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Config{})
	col, err := client.GetCollection(context.Background(), "notes")
	require.NoError(t, err)
	assert.Equal(t, id, col.ID)
}

func TestGetCollection_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"Collection missing does not exist"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Config{})
	col, err := client.GetCollection(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, col)

	var opErr *Error
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "GetCollection", opErr.Op)
}

func TestDeleteCollection(t *testing.T) {
	var called bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, collectionsPath+"/notes", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Config{})
	require.NoError(t, client.DeleteCollection(context.Background(), "notes"))
	assert.True(t, called)
}

func TestDeleteCollection_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Config{})
	err := client.DeleteCollection(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCount(t *testing.T) {
	col := &Collection{ID: uuid.NewString(), Name: "notes"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, collectionsPath+"/"+col.ID+"/count", r.URL.Path)
		fmt.Fprint(w, "42")
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Config{})
	n, err := client.Count(context.Background(), col)
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestGetRecords(t *testing.T) {
	col := &Collection{ID: uuid.NewString(), Name: "notes"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, collectionsPath+"/"+col.ID+"/get", r.URL.Path)

		var req getRecordsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 2, req.Limit)
		assert.Equal(t, []string{"documents", "metadatas"}, req.Include)

		require.NoError(t, json.NewEncoder(w).Encode(GetResult{
			IDs:       []string{"a", "b"},
			Documents: []string{"first", "second"},
			Metadatas: []map[string]any{{"source": "wiki"}, nil},
		}))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Config{})
	res, err := client.GetRecords(context.Background(), col, 2, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.IDs)
	assert.Equal(t, "first", res.Documents[0])
	assert.Equal(t, "wiki", res.Metadatas[0]["source"])
}

func TestGetRecords_WithEmbeddings(t *testing.T) {
	col := &Collection{ID: uuid.NewString(), Name: "notes"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req getRecordsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Include, "embeddings")

		require.NoError(t, json.NewEncoder(w).Encode(GetResult{
			IDs:        []string{"a"},
			Documents:  []string{"first"},
			Embeddings: [][]float64{{0.1, 0.2, 0.3}},
		}))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Config{})
	res, err := client.GetRecords(context.Background(), col, 1, true)
	require.NoError(t, err)
	require.Len(t, res.Embeddings, 1)
	assert.Len(t, res.Embeddings[0], 3)
}

func TestGetRecords_InvalidLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for invalid arguments")
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Config{})
	for _, limit := range []int{0, -5} {
		_, err := client.GetRecords(context.Background(), &Collection{ID: "x"}, limit, false)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestQuery(t *testing.T) {
	col := &Collection{ID: uuid.NewString(), Name: "notes"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, collectionsPath+"/"+col.ID+"/query", r.URL.Path)

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"deployment checklist"}, req.QueryTexts)
		assert.Equal(t, 3, req.NResults)
		assert.Contains(t, req.Include, "distances")

		require.NoError(t, json.NewEncoder(w).Encode(QueryResult{
			IDs:       [][]string{{"a", "b", "c"}},
			Documents: [][]string{{"one", "two", "three"}},
			Distances: [][]float64{{0.11, 0.35, 0.8}},
		}))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Config{})
	res, err := client.Query(context.Background(), col, "deployment checklist", 3)
	require.NoError(t, err)
	require.Len(t, res.IDs, 1)
	assert.Equal(t, []string{"a", "b", "c"}, res.IDs[0])

	// Service ordering is passed through untouched.
	assert.Equal(t, []float64{0.11, 0.35, 0.8}, res.Distances[0])
}

func TestQuery_InvalidArguments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for invalid arguments")
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Config{})
	col := &Collection{ID: "x"}

	_, err := client.Query(context.Background(), col, "", 5)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = client.Query(context.Background(), col, "query", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAuthTokenHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, "[]")
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Config{Token: "secret-token"})
	_, err := client.ListCollections(context.Background())
	require.NoError(t, err)
}

func TestUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Config{})
	_, err := client.ListCollections(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	client := newTestClient(t, srv, Config{})
	_, err := client.ListCollections(context.Background())
	assert.ErrorIs(t, err, ErrConnection)
}

func TestUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		fmt.Fprint(w, "short and stout")
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Config{})
	_, err := client.ListCollections(context.Background())
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "already exists"))
	assert.Contains(t, err.Error(), "418")
	assert.Contains(t, err.Error(), "short and stout")
}
