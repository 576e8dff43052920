package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abgdnv/inventory/internal/config"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// InventoryAPISuite drives the full HTTP stack over a real store file.
type InventoryAPISuite struct {
	suite.Suite
	cfg    *config.Config
	server *httptest.Server
}

func (s *InventoryAPISuite) SetupTest() {
	s.cfg = testConfig(filepath.Join(s.T().TempDir(), "inventory_data.dat"))
	s.server = s.startServer()
}

func (s *InventoryAPISuite) TearDownTest() {
	s.server.Close()
}

func (s *InventoryAPISuite) startServer() *httptest.Server {
	deps, err := SetupDependencies(context.Background(), s.cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Require().NoError(err)
	return httptest.NewServer(SetupHttpHandler(deps))
}

func (s *InventoryAPISuite) do(method, path, body string) (int, string, http.Header) {
	req, err := http.NewRequest(method, s.server.URL+path, strings.NewReader(body))
	s.Require().NoError(err)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, string(raw), resp.Header
}

func (s *InventoryAPISuite) TestAddFindAndList() {
	code, body, _ := s.do(http.MethodPost, "/api/v1/products", `{"id":"A1","name":"Widget","quantity":10,"price":2.5}`)
	s.Equal(http.StatusCreated, code)
	s.JSONEq(`{"id":"A1","name":"Widget","quantity":10,"price":2.5}`, body)

	code, body, _ = s.do(http.MethodPost, "/api/v1/products", `{"id":"a1","name":"Other","quantity":1,"price":1}`)
	s.Equal(http.StatusConflict, code)
	s.JSONEq(`{"error":"Product with ID 'a1' already exists. Please use a unique ID."}`, body)

	code, body, _ = s.do(http.MethodGet, "/api/v1/products/a1", "")
	s.Equal(http.StatusOK, code)
	s.JSONEq(`{"id":"A1","name":"Widget","quantity":10,"price":2.5}`, body)

	code, body, _ = s.do(http.MethodGet, "/api/v1/products", "")
	s.Equal(http.StatusOK, code)
	s.JSONEq(`[{"id":"A1","name":"Widget","quantity":10,"price":2.5}]`, body)
}

func (s *InventoryAPISuite) TestValidation() {
	code, body, _ := s.do(http.MethodPost, "/api/v1/products", `{"id":"A1","name":"Widget","quantity":-1,"price":2.5}`)

	s.Equal(http.StatusBadRequest, code)
	s.JSONEq(`{"validation_errors":{"Quantity":"failed on rule: gte"}}`, body)
}

func (s *InventoryAPISuite) TestDataSurvivesRestart() {
	code, _, _ := s.do(http.MethodPost, "/api/v1/products", `{"id":"B2","name":"Gadget","quantity":3,"price":19.99}`)
	s.Require().Equal(http.StatusCreated, code)

	s.server.Close()
	s.server = s.startServer()

	code, body, _ := s.do(http.MethodGet, "/api/v1/products/B2", "")
	s.Equal(http.StatusOK, code)
	s.JSONEq(`{"id":"B2","name":"Gadget","quantity":3,"price":19.99}`, body)
}

func (s *InventoryAPISuite) TestRequestIDIsEchoed() {
	req, err := http.NewRequest(http.MethodGet, s.server.URL+"/healthz", nil)
	s.Require().NoError(err)
	req.Header.Set(middleware.RequestIDHeader, "req-42")

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	_ = resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("req-42", resp.Header.Get(middleware.RequestIDHeader))
}

func TestInventoryAPISuite(t *testing.T) {
	suite.Run(t, new(InventoryAPISuite))
}

func Test_SetupDependencies_UnknownBackend(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "inventory"))
	cfg.Store.Backend = "postgres"

	deps, err := SetupDependencies(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Error(t, err)
	assert.Nil(t, deps)
}

func Test_SetupHttpServer(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "inventory.db"))
	cfg.Store.Backend = "sqlite"
	deps, err := SetupDependencies(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	srv := SetupHttpServer(deps, cfg)

	assert.Equal(t, "127.0.0.1:8080", srv.Addr)
	assert.Equal(t, cfg.HTTPServer.Timeout.Read, srv.ReadTimeout)
	assert.Equal(t, cfg.HTTPServer.MaxHeaderBytes, srv.MaxHeaderBytes)
	assert.NotNil(t, srv.Handler)
}

func testConfig(path string) *config.Config {
	cfg := &config.Config{}
	cfg.Store.Path = path
	cfg.Store.Backend = "file"
	cfg.HTTPServer.Host = "127.0.0.1"
	cfg.HTTPServer.Port = 8080
	cfg.HTTPServer.MaxHeaderBytes = 1 << 20
	cfg.HTTPServer.Timeout.Read = 5 * time.Second
	cfg.HTTPServer.Timeout.Write = 10 * time.Second
	cfg.HTTPServer.Timeout.Idle = 120 * time.Second
	cfg.HTTPServer.Timeout.ReadHeader = 2 * time.Second
	cfg.Log.Level = "info"
	cfg.Shutdown.Timeout = 5 * time.Second
	return cfg
}
