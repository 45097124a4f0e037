package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-ledger/internal/domain"
)

// fakeRest servidor mínimo con la semántica de filtros eq. que usa el cliente.
type fakeRest struct {
	mu     sync.Mutex
	rows   map[string]map[string]map[string]any // colección -> clave -> fila
	status int                                  // si != 0, responde siempre con este código
	apiKey string
}

func newFakeRest() *fakeRest {
	return &fakeRest{rows: map[string]map[string]map[string]any{}}
}

func (f *fakeRest) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apiKey = r.Header.Get("apikey")
	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}
	collection := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
	if f.rows[collection] == nil {
		f.rows[collection] = map[string]map[string]any{}
	}
	table := f.rows[collection]
	q := r.URL.Query()
	keyCol := keyColumn(collection)

	match := func(row map[string]any) bool {
		if v := q.Get(keyCol); strings.HasPrefix(v, "eq.") && row[keyCol] != strings.TrimPrefix(v, "eq.") {
			return false
		}
		if v := q.Get("version"); strings.HasPrefix(v, "eq.") {
			want, _ := strconv.ParseFloat(strings.TrimPrefix(v, "eq."), 64)
			if got, _ := row["version"].(float64); got != want {
				return false
			}
		}
		return true
	}

	switch r.Method {
	case http.MethodGet:
		out := []map[string]any{}
		for _, row := range table {
			if match(row) {
				out = append(out, row)
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		var row map[string]any
		_ = json.Unmarshal(body, &row)
		key, _ := row[keyCol].(string)
		if _, exists := table[key]; exists && !strings.Contains(r.Header.Get("Prefer"), "merge-duplicates") {
			w.WriteHeader(http.StatusConflict)
			return
		}
		table[key] = row
		w.WriteHeader(http.StatusCreated)
	case http.MethodPatch:
		body, _ := io.ReadAll(r.Body)
		var patch map[string]any
		_ = json.Unmarshal(body, &patch)
		out := []map[string]any{}
		for k, row := range table {
			if match(row) {
				table[k] = patch
				out = append(out, patch)
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	case http.MethodDelete:
		for k, row := range table {
			if match(row) {
				delete(table, k)
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (f *fakeRest) setStatus(code int) {
	f.mu.Lock()
	f.status = code
	f.mu.Unlock()
}

func (f *fakeRest) put(collection, id string, version int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows[collection] == nil {
		f.rows[collection] = map[string]map[string]any{}
	}
	f.rows[collection][id] = map[string]any{"id": id, "version": float64(version)}
}

func (f *fakeRest) versionOf(collection, id string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, _ := f.rows[collection][id]["version"].(float64)
	return v
}

func doc(id string, version int) json.RawMessage {
	raw, _ := json.Marshal(map[string]any{"id": id, "version": version, "quantity": "10"})
	return raw
}

func newTestClient(t *testing.T, f *fakeRest) *Client {
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "secret", 2*time.Second)
}

func TestUpsertVersioned_InsertaYAvanza(t *testing.T) {
	f := newFakeRest()
	c := newTestClient(t, f)
	ctx := context.Background()

	require.NoError(t, c.UpsertVersioned(ctx, "products", "r1", 1, doc("r1", 1)))
	assert.Equal(t, float64(1), f.versionOf("products", "r1"))
	assert.Equal(t, "secret", f.apiKey)

	require.NoError(t, c.UpsertVersioned(ctx, "products", "r1", 2, doc("r1", 2)))
	assert.Equal(t, float64(2), f.versionOf("products", "r1"))
}

func TestUpsertVersioned_ReintentoIdempotente(t *testing.T) {
	f := newFakeRest()
	f.put("products", "r1", 5)
	c := newTestClient(t, f)

	require.NoError(t, c.UpsertVersioned(context.Background(), "products", "r1", 5, doc("r1", 5)))
	assert.Equal(t, float64(5), f.versionOf("products", "r1"))
}

func TestUpsertVersioned_ConflictoNoSobrescribe(t *testing.T) {
	f := newFakeRest()
	f.put("products", "r1", 9)
	c := newTestClient(t, f)

	err := c.UpsertVersioned(context.Background(), "products", "r1", 3, doc("r1", 3))
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.Equal(t, float64(9), f.versionOf("products", "r1"))
}

func TestUpsertFetchDeletePurge(t *testing.T) {
	f := newFakeRest()
	c := newTestClient(t, f)
	ctx := context.Background()

	require.NoError(t, c.Upsert(ctx, "categories", json.RawMessage(`{"name":"10 MT"}`)))
	require.NoError(t, c.Upsert(ctx, "categories", json.RawMessage(`{"name":"10 MT"}`)))
	require.NoError(t, c.Upsert(ctx, "categories", json.RawMessage(`{"name":"RETALHOS"}`)))
	rows, err := c.Fetch(ctx, "categories")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	require.NoError(t, c.Delete(ctx, "categories", "10 MT"))
	rows, _ = c.Fetch(ctx, "categories")
	assert.Len(t, rows, 1)

	require.NoError(t, c.Purge(ctx, "categories"))
	rows, _ = c.Fetch(ctx, "categories")
	assert.Empty(t, rows)
}

func TestErrores_RechazoYServidor(t *testing.T) {
	f := newFakeRest()
	c := newTestClient(t, f)
	ctx := context.Background()

	f.setStatus(http.StatusUnauthorized)
	err := c.Upsert(ctx, "users", json.RawMessage(`{"id":"u1"}`))
	assert.ErrorIs(t, err, ErrRejected)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f.setStatus(http.StatusBadGateway)
	err = c.Upsert(ctx, "users", json.RawMessage(`{"id":"u1"}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRejected)
}
