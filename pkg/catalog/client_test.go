package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/live-catalog/internal/core/domain/product"
)

type recordedServer struct {
	srv *httptest.Server

	mu       sync.Mutex
	requests []*http.Request
}

func newRecordedServer(t *testing.T, status int, body string) *recordedServer {
	t.Helper()
	rs := &recordedServer{}
	rs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		rs.requests = append(rs.requests, r.Clone(context.Background()))
		rs.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(rs.srv.Close)
	return rs
}

func (r *recordedServer) last() *http.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

func TestListCarriesBypassToken(t *testing.T) {
	server := newRecordedServer(t, http.StatusOK, `[]`)
	c := New(server.srv.URL)

	_, err := c.List(context.Background())
	require.NoError(t, err)

	got := server.last()
	assert.Equal(t, "/api/products", got.URL.Path)
	assert.Equal(t, c.tokens.BypassToken(), got.URL.Query().Get("v"))
}

func TestMutationsRotateBypassToken(t *testing.T) {
	server := newRecordedServer(t, http.StatusCreated, `{"id":"p-1","name":"Pen"}`)
	c := New(server.srv.URL)
	before := c.tokens.BypassToken()

	price := product.FlexFloat(1.5)
	created, err := c.Create(context.Background(), &product.CreateProductRequest{
		Name: "Pen", Description: "Blue pen", Price: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "p-1", created.ID)

	// The token must differ so the next read cannot be served from an
	// intermediary cache keyed on the pre-write token.
	assert.NotEqual(t, before, c.tokens.BypassToken())
	assert.Empty(t, server.last().URL.Query().Get("v"), "writes carry no bypass token")
}

func TestNotFoundMapsToDomainError(t *testing.T) {
	server := newRecordedServer(t, http.StatusNotFound, `{"message":"product not found"}`)
	c := New(server.srv.URL)

	_, err := c.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestErrorBodyMessageIsSurfaced(t *testing.T) {
	server := newRecordedServer(t, http.StatusBadRequest, `{"message":"name: cannot be blank."}`)
	c := New(server.srv.URL)

	price := product.FlexFloat(1.5)
	_, err := c.Create(context.Background(), &product.CreateProductRequest{Price: &price})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be blank")
}
