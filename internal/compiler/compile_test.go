package compiler_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jerber/fastgql/internal/compiler"
	"github.com/jerber/fastgql/internal/language"
	"github.com/jerber/fastgql/internal/registry"
	"github.com/jerber/fastgql/internal/schema"
	"github.com/jerber/fastgql/internal/selection"
)

func buildMoviesSchema(t *testing.T) *schema.Schema {
	t.Helper()

	content := &registry.Model{
		Name:          "Content",
		Interface:     true,
		Table:         "content",
		Discriminator: "kind",
		Fields: []registry.Field{
			{Name: "id", Type: registry.Scalar("UUID"), Column: "id"},
			{Name: "title", Type: registry.Scalar("String"), Column: "title"},
		},
	}
	movie := &registry.Model{
		Name:       "Movie",
		Table:      "content",
		Implements: []*registry.Model{content},
		Fields: []registry.Field{
			{Name: "release_year", Type: registry.Scalar("Int"), Column: "release_year"},
		},
	}
	show := &registry.Model{
		Name:       "Show",
		Table:      "content",
		Implements: []*registry.Model{content},
		Fields: []registry.Field{
			{Name: "season_count", Type: registry.Scalar("Int"), Column: "season_count"},
		},
	}
	account := &registry.Model{
		Name:  "Account",
		Table: "accounts",
		Fields: []registry.Field{
			{Name: "id", Type: registry.Scalar("UUID"), Column: "id"},
			{Name: "username", Type: registry.Scalar("String"), Column: "username"},
		},
		Resolvers: []registry.Resolver{
			{
				Name:    "watchlist",
				Returns: registry.List(registry.Object(content)),
				Args: []registry.Arg{
					{Name: "limit", Type: registry.Optional(registry.Scalar("Int"))},
					{Name: "offset", Type: registry.Optional(registry.Scalar("Int"))},
					{Name: "by_title", Type: registry.Optional(registry.Scalar("Boolean"))},
				},
				Relation: &registry.Relation{
					FromWhere: "$current.id IN (SELECT content_id FROM watchlist_items WHERE account_id = $parent.id)",
					Args: map[string]schema.ArgSpec{
						"limit":    {Kind: schema.ArgLimit},
						"offset":   {Kind: schema.ArgOffset},
						"by_title": {Kind: schema.ArgOrderBy, Expression: "$current.title ASC"},
					},
				},
				Func: func(ctx context.Context, source any, args map[string]any) (any, error) {
					return nil, nil
				},
			},
			{
				Name:    "suggestion_score",
				Returns: registry.Optional(registry.Scalar("Float")),
				Func: func(ctx context.Context, source any, args map[string]any) (any, error) {
					return 0.5, nil
				},
			},
		},
	}
	root := &registry.Model{
		Name: "AccountQueries",
		Fields: []registry.Field{
			{Name: "accounts", Type: registry.List(registry.Object(account)), Relation: &registry.Relation{FromWhere: "true"}},
		},
		Resolvers: []registry.Resolver{
			{
				Name:    "account_by_username",
				Returns: registry.Optional(registry.Object(account)),
				Args: []registry.Arg{
					{Name: "username", Type: registry.Scalar("String")},
				},
				Relation: &registry.Relation{
					FromWhere: "true",
					Args: map[string]schema.ArgSpec{
						"username": {Kind: schema.ArgWhere, Expression: "$current.username = $arg"},
					},
				},
				Func: func(ctx context.Context, source any, args map[string]any) (any, error) {
					return nil, nil
				},
			},
		},
	}
	contentRoot := &registry.Model{
		Name: "ContentQueries",
		Fields: []registry.Field{
			{Name: "movies", Type: registry.List(registry.Object(movie)), Relation: &registry.Relation{FromWhere: "true"}},
			{Name: "shows", Type: registry.List(registry.Object(show)), Relation: &registry.Relation{FromWhere: "true"}},
		},
	}

	r := registry.New()
	s, err := r.Build(registry.Roots{Query: []*registry.Model{root, contentRoot}})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func compileQuery(t *testing.T, s *schema.Schema, query string, vars map[string]any) *compiler.CompiledQuery {
	t.Helper()
	doc, err := language.ParseQuery(query)
	if err != nil {
		t.Fatal(err)
	}
	bound, err := selection.Bind(s, doc, "", vars)
	if err != nil {
		t.Fatal(err)
	}
	cq, err := compiler.Compile(s, bound.Nodes[0])
	if err != nil {
		t.Fatal(err)
	}
	return cq
}

func TestCompileSingleTable(t *testing.T) {
	s := buildMoviesSchema(t)
	cq := compileQuery(t, s, `{ accounts { username } }`, nil)

	want := "SELECT json_agg(_accounts_json) AS _accounts_json_agg FROM (" +
		"SELECT json_build_object('username', _accounts.username) AS _accounts_json " +
		"FROM accounts _accounts WHERE true) AS _accounts_json_sub"
	if diff := cmp.Diff(want, cq.SQL); diff != "" {
		t.Errorf("SQL mismatch (-want +got):\n%s", diff)
	}
	if len(cq.Params) != 0 {
		t.Errorf("params = %v, want none", cq.Params)
	}
}

func TestCompileNestedRelation(t *testing.T) {
	s := buildMoviesSchema(t)
	cq := compileQuery(t, s, `{
		accounts {
			username
			watchlist(limit: 2) {
				__typename
				title
				... on Movie { releaseYear }
				... on Show { seasonCount }
			}
		}
	}`, nil)

	sql := cq.SQL
	for _, fragment := range []string{
		// One statement, one correlated subquery per nesting level.
		"FROM accounts _accounts",
		"FROM content accounts__content",
		"accounts__content.id IN (SELECT content_id FROM watchlist_items WHERE account_id = _accounts.id)",
		"'__typename', accounts__content.kind",
		"CASE WHEN accounts__content.kind = 'Movie' THEN accounts__content.release_year END",
		"CASE WHEN accounts__content.kind = 'Show' THEN accounts__content.season_count END",
		"LIMIT $1",
	} {
		if !strings.Contains(sql, fragment) {
			t.Errorf("SQL missing %q:\n%s", fragment, sql)
		}
	}
	if strings.Contains(sql, "$current") || strings.Contains(sql, "$parent") {
		t.Errorf("unresolved alias tokens in SQL:\n%s", sql)
	}
	if diff := cmp.Diff([]any{2}, cq.Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
	if n := strings.Count(sql, "SELECT json_"); n != 2 {
		t.Errorf("got %d projection levels, want 2", n)
	}
	if len(cq.Splices) != 0 {
		t.Errorf("unexpected splices: %+v", cq.Splices)
	}
}

func TestCompileArgumentClauses(t *testing.T) {
	s := buildMoviesSchema(t)
	cq := compileQuery(t, s, `{
		accountByUsername(username: "Cameron") {
			username
			watchlist(limit: 5, offset: 10, byTitle: true) { title }
		}
	}`, nil)

	sql := cq.SQL
	for _, fragment := range []string{
		"WHERE true AND _accounts.username = $1",
		"ORDER BY accounts__content.title ASC",
		"OFFSET $3",
		"LIMIT $2",
	} {
		if !strings.Contains(sql, fragment) {
			t.Errorf("SQL missing %q:\n%s", fragment, sql)
		}
	}
	if strings.Contains(sql, "$arg") || strings.Contains(sql, "$current") {
		t.Errorf("unresolved tokens in SQL:\n%s", sql)
	}
	if strings.Contains(sql, "Cameron") {
		t.Errorf("argument value interpolated into SQL:\n%s", sql)
	}
	if diff := cmp.Diff([]any{"Cameron", 5, 10}, cq.Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileCommonFieldInBranch(t *testing.T) {
	s := buildMoviesSchema(t)
	cq := compileQuery(t, s, `{
		accounts {
			watchlist {
				title
				... on Movie { title releaseYear }
			}
		}
	}`, nil)

	// The common selection already projects title for every row; the
	// branch must not re-emit it as a type-owned key.
	if n := strings.Count(cq.SQL, "'title'"); n != 1 {
		t.Errorf("'title' projected %d times, want 1:\n%s", n, cq.SQL)
	}
	wl := cq.Decode.Children["watchlist"]
	if wl == nil {
		t.Fatal("missing decode plan for watchlist")
	}
	if _, owned := wl.BranchOwners["title"]; owned {
		t.Errorf("title marked branch-owned: %v", wl.BranchOwners)
	}

	raw := `[{"watchlist": [
		{"__typename": "Movie", "title": "Heat", "releaseYear": 1995},
		{"__typename": "Show", "title": "Primal", "releaseYear": null}
	]}]`
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatal(err)
	}
	got := cq.Decode.Apply(v)
	want := []any{map[string]any{"watchlist": []any{
		map[string]any{"title": "Heat", "releaseYear": float64(1995)},
		map[string]any{"title": "Primal"},
	}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded value mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileRecordsSplicePoints(t *testing.T) {
	s := buildMoviesSchema(t)
	cq := compileQuery(t, s, `{ accounts { username suggestionScore } }`, nil)

	if len(cq.Splices) != 1 {
		t.Fatalf("got %d splices, want 1", len(cq.Splices))
	}
	sp := cq.Splices[0]
	if sp.Node.Name != "suggestionScore" || len(sp.Path) != 0 || sp.OnType != "" {
		t.Errorf("splice = %+v", sp)
	}
	if strings.Contains(cq.SQL, "suggestionScore") {
		t.Error("resolver field leaked into SQL")
	}
}

func TestCompileRejectsUnmappedArgument(t *testing.T) {
	s := buildMoviesSchema(t)

	account := s.Types["Account"]
	wl := account.Field("watchlist")
	saved := wl.Storage.Relation.Args
	wl.Storage.Relation.Args = nil
	defer func() { wl.Storage.Relation.Args = saved }()

	doc, err := language.ParseQuery(`{ accounts { watchlist(limit: 2) { title } } }`)
	if err != nil {
		t.Fatal(err)
	}
	bound, err := selection.Bind(s, doc, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = compiler.Compile(s, bound.Nodes[0])
	if err == nil {
		t.Fatal("expected compile error for unmapped argument")
	}
	if _, ok := err.(*compiler.CompileError); !ok {
		t.Errorf("error type = %T, want *CompileError", err)
	}
}

func TestDecodePlanApply(t *testing.T) {
	s := buildMoviesSchema(t)
	cq := compileQuery(t, s, `{
		accounts {
			username
			watchlist {
				__typename
				title
				... on Movie { releaseYear }
				... on Show { seasonCount }
			}
		}
	}`, nil)

	raw := `[
		{"username": "ana", "watchlist": [
			{"__typename": "Movie", "title": "Heat", "releaseYear": 1995, "seasonCount": null},
			{"__typename": "Show", "title": "Primal", "releaseYear": null, "seasonCount": 2}
		]},
		{"username": "ben", "watchlist": null}
	]`
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatal(err)
	}

	got := cq.Decode.Apply(v)
	want := []any{
		map[string]any{"username": "ana", "watchlist": []any{
			map[string]any{"__typename": "Movie", "title": "Heat", "releaseYear": float64(1995)},
			map[string]any{"__typename": "Show", "title": "Primal", "seasonCount": float64(2)},
		}},
		map[string]any{"username": "ben", "watchlist": []any{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded value mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodePlanFillsStaticTypename(t *testing.T) {
	s := buildMoviesSchema(t)
	cq := compileQuery(t, s, `{ accounts { __typename username } }`, nil)

	var v any
	if err := json.Unmarshal([]byte(`[{"username": "ana"}]`), &v); err != nil {
		t.Fatal(err)
	}
	got := cq.Decode.Apply(v)
	want := []any{map[string]any{"__typename": "Account", "username": "ana"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded value mismatch (-want +got):\n%s", diff)
	}
}
