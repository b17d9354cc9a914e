package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/jerber/fastgql/internal/executor"
	"github.com/jerber/fastgql/internal/registry"
	"github.com/jerber/fastgql/internal/server"
)

type stubDB struct {
	result []byte
}

func (s *stubDB) QueryJSON(ctx context.Context, sql string, params []any) ([]byte, error) {
	return s.result, nil
}

func newTestHandler(t *testing.T, opts ...server.Option) *server.Handler {
	t.Helper()
	account := &registry.Model{
		Name:  "Account",
		Table: "accounts",
		Fields: []registry.Field{
			{Name: "username", Type: registry.Scalar("String"), Column: "username"},
		},
	}
	root := &registry.Model{
		Name: "AccountQueries",
		Fields: []registry.Field{
			{Name: "accounts", Type: registry.List(registry.Object(account)), Relation: &registry.Relation{FromWhere: "true"}},
		},
		Resolvers: []registry.Resolver{
			{
				Name:    "server_version",
				Returns: registry.Scalar("String"),
				Func: func(ctx context.Context, source any, args map[string]any) (any, error) {
					return "1.0.0", nil
				},
			},
		},
	}
	r := registry.New()
	sch, err := r.Build(registry.Roots{Query: []*registry.Model{root}})
	require.NoError(t, err)

	db := &stubDB{result: []byte(`[{"username": "ana"}]`)}
	h, err := server.New(executor.New(sch, db, executor.WithTypeNamer(r.TypeNamer())), sch, opts...)
	require.NoError(t, err)
	return h
}

func postJSON(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServeQuery(t *testing.T) {
	h := newTestHandler(t)
	w := postJSON(t, h, `{"query": "{ accounts { username } }"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Data   map[string]any   `json:"data"`
		Errors []map[string]any `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Empty(t, res.Errors)
	want := map[string]any{"accounts": []any{map[string]any{"username": "ana"}}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestServeValidationErrorNullsData(t *testing.T) {
	h := newTestHandler(t)
	w := postJSON(t, h, `{"query": "{ nope }"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var res map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	data, present := res["data"]
	require.True(t, present, "data member must be present")
	require.Nil(t, data)
	require.NotEmpty(t, res["errors"])
}

func TestServeGETQuery(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/graphql?query={serverVersion}", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"serverVersion":"1.0.0"`)
}

func TestServeBatch(t *testing.T) {
	h := newTestHandler(t)
	w := postJSON(t, h, `[{"query": "{ serverVersion }"}, {"query": "{ accounts { username } }"}]`)
	require.Equal(t, http.StatusOK, w.Code)

	var res []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res, 2)
}

func TestServeGraphiQL(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")
	require.Contains(t, w.Body.String(), "GraphiQL")
}

func TestServeMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodDelete, "/graphql", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServeBodyTooLarge(t *testing.T) {
	h := newTestHandler(t, server.WithMaxBodyBytes(10))
	w := postJSON(t, h, `{"query": "{ accounts { username } }"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestServeCORS(t *testing.T) {
	h := newTestHandler(t, server.WithCORS("https://app.example.com"))
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query": "{ serverVersion }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	preflight.Header.Set("Origin", "https://app.example.com")
	pw := httptest.NewRecorder()
	h.ServeHTTP(pw, preflight)
	require.Equal(t, http.StatusNoContent, pw.Code)
	require.Equal(t, "GET,POST,OPTIONS", pw.Header().Get("Access-Control-Allow-Methods"))
}
