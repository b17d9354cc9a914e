package fastgql_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/jerber/fastgql"
)

type mockDB struct {
	result []byte
	calls  int
}

func (m *mockDB) QueryJSON(ctx context.Context, sql string, params []any) ([]byte, error) {
	m.calls++
	return m.result, nil
}

func newEngine(t *testing.T, db fastgql.Database) *fastgql.Engine {
	t.Helper()

	content := &fastgql.Model{
		Name:          "Content",
		Interface:     true,
		Table:         "content",
		Discriminator: "kind",
		Fields: []fastgql.Field{
			{Name: "title", Type: fastgql.Scalar("String"), Column: "title"},
		},
	}
	movie := &fastgql.Model{
		Name:       "Movie",
		Table:      "content",
		Implements: []*fastgql.Model{content},
		Fields: []fastgql.Field{
			{Name: "release_year", Type: fastgql.Scalar("Int"), Column: "release_year"},
		},
	}
	show := &fastgql.Model{
		Name:       "Show",
		Table:      "content",
		Implements: []*fastgql.Model{content},
		Fields: []fastgql.Field{
			{Name: "season_count", Type: fastgql.Scalar("Int"), Column: "season_count"},
		},
	}
	account := &fastgql.Model{
		Name:  "Account",
		Table: "accounts",
		Fields: []fastgql.Field{
			{Name: "username", Type: fastgql.Scalar("String"), Column: "username"},
		},
		Resolvers: []fastgql.Resolver{
			{
				Name:    "watchlist",
				Returns: fastgql.List(fastgql.Object(content)),
				Args: []fastgql.Arg{
					{Name: "limit", Type: fastgql.Optional(fastgql.Scalar("Int"))},
				},
				Func: func(ctx context.Context, source any, args map[string]any) (any, error) {
					return nil, nil
				},
				Relation: &fastgql.Relation{
					FromWhere: "$current.account_id = $parent.id",
					Args:      map[string]fastgql.ArgSpec{"limit": {Kind: fastgql.ArgLimit}},
				},
			},
		},
	}
	root := &fastgql.Model{
		Name: "AccountQueries",
		Fields: []fastgql.Field{
			{
				Name:     "account_by_username",
				Type:     fastgql.Optional(fastgql.Object(account)),
				Relation: &fastgql.Relation{FromWhere: "true"},
			},
		},
	}
	contentRoot := &fastgql.Model{
		Name: "ContentQueries",
		Fields: []fastgql.Field{
			{Name: "movies", Type: fastgql.List(fastgql.Object(movie)), Relation: &fastgql.Relation{FromWhere: "true"}},
			{Name: "shows", Type: fastgql.List(fastgql.Object(show)), Relation: &fastgql.Relation{FromWhere: "true"}},
		},
	}
	eng, err := fastgql.New(fastgql.Config{
		Query: []*fastgql.Model{root, contentRoot},
		DB:    db,
	})
	require.NoError(t, err)
	return eng
}

func TestEngineSingleQueryPerCompiledTree(t *testing.T) {
	db := &mockDB{result: []byte(`{
		"username": "ana",
		"watchlist": [
			{"__typename": "Movie", "title": "Heat", "releaseYear": 1995, "seasonCount": null},
			{"__typename": "Show", "title": "The Wire", "releaseYear": null, "seasonCount": 5}
		]
	}`)}
	eng := newEngine(t, db)

	resp := eng.Execute(context.Background(), fastgql.Request{Query: `{
		accountByUsername {
			username
			watchlist(limit: 2) {
				title
				... on Movie { releaseYear }
				... on Show { seasonCount }
			}
		}
	}`})
	require.Empty(t, resp.Errors)
	require.Equal(t, 1, db.calls)

	want := map[string]any{
		"accountByUsername": map[string]any{
			"username": "ana",
			"watchlist": []any{
				map[string]any{"title": "Heat", "releaseYear": float64(1995)},
				map[string]any{"title": "The Wire", "seasonCount": float64(5)},
			},
		},
	}
	if diff := cmp.Diff(want, resp.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestEngineValidationErrorNullsData(t *testing.T) {
	eng := newEngine(t, &mockDB{})

	resp := eng.Execute(context.Background(), fastgql.Request{
		Query: `{ accountByUsername { nope } }`,
	})
	require.Nil(t, resp.Data)
	require.Len(t, resp.Errors, 1)
	require.Contains(t, resp.Errors[0].Message, "nope")
	require.NotEmpty(t, resp.Errors[0].Locations)
}

func TestEngineParseError(t *testing.T) {
	eng := newEngine(t, &mockDB{})

	resp := eng.Execute(context.Background(), fastgql.Request{Query: `{ nope`})
	require.Nil(t, resp.Data)
	require.Len(t, resp.Errors, 1)
}

func TestEngineIntrospectionToggle(t *testing.T) {
	on := newEngine(t, &mockDB{})
	resp := on.Execute(context.Background(), fastgql.Request{
		Query: `{ __schema { queryType { name } } }`,
	})
	require.Empty(t, resp.Errors)

	content := &fastgql.Model{
		Name: "Thing",
		Resolvers: []fastgql.Resolver{{
			Name:    "ping",
			Returns: fastgql.Scalar("String"),
			Func: func(ctx context.Context, source any, args map[string]any) (any, error) {
				return "pong", nil
			},
		}},
	}
	off, err := fastgql.New(fastgql.Config{
		Query:                []*fastgql.Model{content},
		DisableIntrospection: true,
	})
	require.NoError(t, err)
	resp = off.Execute(context.Background(), fastgql.Request{
		Query: `{ __schema { queryType { name } } }`,
	})
	require.Nil(t, resp.Data)
	require.Len(t, resp.Errors, 1)
}

func TestEngineHandler(t *testing.T) {
	db := &mockDB{result: []byte(`{"username": "ana"}`)}
	eng := newEngine(t, db)
	h, err := eng.Handler(fastgql.WithGraphiQL(false))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql",
		strings.NewReader(`{"query": "{ accountByUsername { username } }"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"username":"ana"`)
}
