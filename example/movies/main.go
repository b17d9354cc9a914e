// Command movies serves a small streaming-catalog GraphQL API backed by
// Postgres. Every storage-backed selection compiles to one database query.
//
// Expected tables:
//
//	accounts (id, username)
//	people   (id, name)
//	content  (id, kind, title, release_year, season_count, director_id)
//	watchlist (account_id, content_id)
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jerber/fastgql"
	"github.com/jerber/fastgql/internal/pgdb"
)

func main() {
	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres connection string")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	pretty := flag.Bool("pretty", false, "Pretty-print JSON responses")
	timeout := flag.Duration("timeout", 10*time.Second, "Per-request timeout")
	otelEndpoint := flag.String("otel.endpoint", "", "OTLP collector endpoint")
	otelService := flag.String("otel.service", "movies", "OpenTelemetry service name")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("-dsn or DATABASE_URL is required")
	}

	shutdown, err := fastgql.Telemetry(*otelEndpoint, *otelService)
	if err != nil {
		log.Fatalf("telemetry setup: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	db, err := pgdb.Connect(context.Background(), *dsn,
		pgdb.WithQueryTimeout(*timeout),
		pgdb.WithRetries(1))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	eng, err := fastgql.New(fastgql.Config{
		Query: []*fastgql.Model{queryRoot()},
		DB:    db,
	})
	if err != nil {
		log.Fatalf("schema: %v", err)
	}

	sopts := []fastgql.ServerOption{fastgql.WithTimeout(*timeout)}
	if *pretty {
		sopts = append(sopts, fastgql.WithPretty())
	}
	h, err := eng.Handler(sopts...)
	if err != nil {
		log.Fatalf("server init: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)

	log.Printf("GraphQL server listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

// compiledOnly backs relation fields that the engine always serves through
// the compiled query path.
func compiledOnly(ctx context.Context, source any, args map[string]any) (any, error) {
	return nil, errors.New("field requires the database")
}

func queryRoot() *fastgql.Model {
	person := &fastgql.Model{
		Name:  "Person",
		Table: "people",
		Fields: []fastgql.Field{
			{Name: "id", Type: fastgql.Scalar("ID"), Column: "id"},
			{Name: "name", Type: fastgql.Scalar("String"), Column: "name"},
		},
	}

	content := &fastgql.Model{
		Name:          "Content",
		Interface:     true,
		Table:         "content",
		Discriminator: "kind",
		Fields: []fastgql.Field{
			{Name: "id", Type: fastgql.Scalar("ID"), Column: "id"},
			{Name: "title", Type: fastgql.Scalar("String"), Column: "title"},
		},
	}

	movie := &fastgql.Model{
		Name:       "Movie",
		Table:      "content",
		Implements: []*fastgql.Model{content},
		Fields: []fastgql.Field{
			{Name: "release_year", Type: fastgql.Scalar("Int"), Column: "release_year"},
			{
				Name:     "director",
				Type:     fastgql.Optional(fastgql.Object(person)),
				Relation: &fastgql.Relation{FromWhere: "$current.id = $parent.director_id"},
			},
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
			{Name: "id", Type: fastgql.Scalar("ID"), Column: "id"},
			{Name: "username", Type: fastgql.Scalar("String"), Column: "username"},
		},
		Resolvers: []fastgql.Resolver{
			{
				Name:    "watchlist",
				Returns: fastgql.List(fastgql.Object(content)),
				Args: []fastgql.Arg{
					{Name: "limit", Type: fastgql.Optional(fastgql.Scalar("Int")), Default: 20, HasDefault: true},
				},
				Func: compiledOnly,
				Relation: &fastgql.Relation{
					FromWhere: "$current.id IN (SELECT content_id FROM watchlist WHERE account_id = $parent.id)",
					Args:      map[string]fastgql.ArgSpec{"limit": {Kind: fastgql.ArgLimit}},
				},
			},
		},
	}

	return &fastgql.Model{
		Name: "CatalogQueries",
		Resolvers: []fastgql.Resolver{
			{
				Name:    "account_by_username",
				Returns: fastgql.Optional(fastgql.Object(account)),
				Args: []fastgql.Arg{
					{Name: "username", Type: fastgql.Scalar("String")},
				},
				Func: compiledOnly,
				Relation: &fastgql.Relation{
					FromWhere: "true",
					Args: map[string]fastgql.ArgSpec{
						"username": {Kind: fastgql.ArgWhere, Expression: "$current.username = $arg"},
					},
				},
			},
			{
				Name:    "movies",
				Returns: fastgql.List(fastgql.Object(movie)),
				Args: []fastgql.Arg{
					{Name: "limit", Type: fastgql.Optional(fastgql.Scalar("Int")), Default: 50, HasDefault: true},
				},
				Func: compiledOnly,
				Relation: &fastgql.Relation{
					FromWhere: "$current.kind = 'Movie'",
					Args:      map[string]fastgql.ArgSpec{"limit": {Kind: fastgql.ArgLimit}},
				},
			},
			{
				Name:    "shows",
				Returns: fastgql.List(fastgql.Object(show)),
				Func:    compiledOnly,
				Relation: &fastgql.Relation{
					FromWhere: "$current.kind = 'Show'",
				},
			},
		},
	}
}
