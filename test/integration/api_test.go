package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/avatarctic/live-catalog/internal/application/services"
	"github.com/avatarctic/live-catalog/internal/core/domain/product"
	"github.com/avatarctic/live-catalog/internal/infrastructure/cache"
	"github.com/avatarctic/live-catalog/internal/infrastructure/httpserver"
	"github.com/avatarctic/live-catalog/internal/infrastructure/store"
	"github.com/avatarctic/live-catalog/internal/infrastructure/ws"
)

// APITestSuite exercises the full in-process stack: memory store, snapshot
// cache, broadcast hub, application service and the echo surface, with a
// real websocket client attached to the live feed.
type APITestSuite struct {
	suite.Suite
	server *httptest.Server
	conn   *websocket.Conn
}

func (s *APITestSuite) SetupTest() {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	st := store.NewMemoryStore()
	ch := cache.New(st, 5*time.Minute, logger)
	hub := ws.NewHub(logger)
	svc := services.NewProductService(st, ch, hub, logger)

	srv := httpserver.NewServer(
		&httpserver.ServerConfig{Host: "127.0.0.1", Port: "0"},
		logger,
		httpserver.ServerDeps{ProductService: svc, Hub: hub},
	)
	s.server = httptest.NewServer(srv.Echo())

	wsURL := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	s.Require().NoError(err)
	s.conn = conn
}

func (s *APITestSuite) TearDownTest() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	if s.server != nil {
		s.server.Close()
	}
}

func (s *APITestSuite) postJSON(path, body string) *http.Response {
	resp, err := http.Post(s.server.URL+path, "application/json", bytes.NewReader([]byte(body)))
	s.Require().NoError(err)
	return resp
}

func (s *APITestSuite) doJSON(method, path, body string) *http.Response {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *APITestSuite) decode(resp *http.Response, out interface{}) {
	defer resp.Body.Close()
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
}

// expectNotice asserts exactly one invalidation notice arrives on the feed.
func (s *APITestSuite) expectNotice() {
	s.Require().NoError(s.conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, payload, err := s.conn.ReadMessage()
	s.Require().NoError(err)

	var notice ws.Notice
	s.Require().NoError(json.Unmarshal(payload, &notice))
	s.Equal(ws.NoticeProductsInvalidate, notice.Type)
}

func (s *APITestSuite) expectNoNotice() {
	s.Require().NoError(s.conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond)))
	_, _, err := s.conn.ReadMessage()
	s.Error(err, "no notice should have been broadcast")
}

func (s *APITestSuite) TestCreateProductBroadcastsOneNotice() {
	resp := s.postJSON("/api/products", `{"name":"Pen","description":"Blue pen","price":"1.5"}`)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var created product.Product
	s.decode(resp, &created)
	s.NotEmpty(created.ID)
	s.Equal(1.5, created.Price)
	s.Equal(product.DefaultCurrency, created.Currency)
	s.Equal(0, created.Stock)

	s.expectNotice()
	s.expectNoNotice()
}

func (s *APITestSuite) TestCrudRoundTrip() {
	resp := s.postJSON("/api/products", `{"name":"Pen","description":"Blue pen","price":2,"stock":"3"}`)
	s.Equal(http.StatusCreated, resp.StatusCode)
	var created product.Product
	s.decode(resp, &created)
	s.expectNotice()

	// The post-write repopulation means the list already reflects the write.
	resp = s.doJSON(http.MethodGet, "/api/products?v=tok-1", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	var list []product.Product
	s.decode(resp, &list)
	s.Require().Len(list, 1)
	s.Equal(created.ID, list[0].ID)
	s.Equal(3, list[0].Stock)

	resp = s.doJSON(http.MethodPut, "/api/products/"+created.ID, `{"price":"4.25"}`)
	s.Equal(http.StatusOK, resp.StatusCode)
	var updated struct {
		Message string          `json:"message"`
		Product product.Product `json:"product"`
	}
	s.decode(resp, &updated)
	s.Equal("Product updated successfully", updated.Message)
	s.Equal(4.25, updated.Product.Price)
	s.Equal("Pen", updated.Product.Name)
	s.expectNotice()

	resp = s.doJSON(http.MethodDelete, "/api/products/"+created.ID, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	var deleted struct {
		Message string          `json:"message"`
		Product product.Product `json:"product"`
	}
	s.decode(resp, &deleted)
	s.Equal("Product deleted successfully", deleted.Message)
	s.Equal(created.ID, deleted.Product.ID)
	s.expectNotice()

	resp = s.doJSON(http.MethodGet, "/api/products", "")
	s.decode(resp, &list)
	s.Empty(list)
}

func (s *APITestSuite) TestListOrdersNewestFirst() {
	for i := 0; i < 3; i++ {
		resp := s.postJSON("/api/products",
			fmt.Sprintf(`{"name":"Item %d","description":"n","price":1}`, i))
		s.Equal(http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
		s.expectNotice()
		time.Sleep(5 * time.Millisecond)
	}

	resp := s.doJSON(http.MethodGet, "/api/products", "")
	var list []product.Product
	s.decode(resp, &list)
	s.Require().Len(list, 3)
	s.Equal("Item 2", list[0].Name)
	s.Equal("Item 0", list[2].Name)
}

func (s *APITestSuite) TestRefreshEndpointBroadcasts() {
	resp := s.postJSON("/api/products/refresh", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	var body struct {
		Message string `json:"message"`
		Count   int    `json:"count"`
	}
	s.decode(resp, &body)
	s.Equal("Cache refreshed", body.Message)
	s.Equal(0, body.Count)
	s.expectNotice()
}

func (s *APITestSuite) TestInvalidPayloadBroadcastsNothing() {
	resp := s.postJSON("/api/products", `{"name":"Pen"}`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
	s.expectNoNotice()
}

func (s *APITestSuite) TestMissingProductIsNotFound() {
	resp := s.doJSON(http.MethodGet, "/api/products/nope", "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func TestHealthEndpointReportsService(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	st := store.NewMemoryStore()
	ch := cache.New(st, time.Minute, logger)
	hub := ws.NewHub(logger)
	svc := services.NewProductService(st, ch, hub, logger)

	srv := httpserver.NewServer(
		&httpserver.ServerConfig{Host: "127.0.0.1", Port: "0"},
		logger,
		httpserver.ServerDeps{ProductService: svc, Hub: hub},
	)
	ts := httptest.NewServer(srv.Echo())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "live-catalog", body["service"])
}
