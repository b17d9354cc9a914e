package introspection_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jerber/fastgql/internal/executor"
	"github.com/jerber/fastgql/internal/introspection"
	"github.com/jerber/fastgql/internal/language"
	"github.com/jerber/fastgql/internal/registry"
	"github.com/jerber/fastgql/internal/schema"
	"github.com/jerber/fastgql/internal/selection"
)

type noDB struct{}

func (noDB) QueryJSON(ctx context.Context, sql string, params []any) ([]byte, error) {
	return nil, nil
}

func buildExtendedSchema(t *testing.T) *schema.Schema {
	t.Helper()
	account := &registry.Model{
		Name:  "Account",
		Table: "accounts",
		Fields: []registry.Field{
			{Name: "id", Type: registry.Scalar("UUID"), Column: "id"},
			{Name: "username", Type: registry.Scalar("String"), Column: "username"},
		},
	}
	root := &registry.Model{
		Name: "AccountQueries",
		Fields: []registry.Field{
			{Name: "accounts", Type: registry.List(registry.Object(account)), Relation: &registry.Relation{FromWhere: "true"}},
		},
	}
	r := registry.New()
	s, err := r.Build(registry.Roots{Query: []*registry.Model{root}})
	if err != nil {
		t.Fatal(err)
	}
	return introspection.Extend(s)
}

func execute(t *testing.T, s *schema.Schema, query string) *executor.Response {
	t.Helper()
	doc, err := language.ParseQuery(query)
	if err != nil {
		t.Fatal(err)
	}
	bound, err := selection.Bind(s, doc, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	return executor.New(s, noDB{}).Execute(context.Background(), bound)
}

func TestSchemaIntrospection(t *testing.T) {
	s := buildExtendedSchema(t)
	resp := execute(t, s, `{
		__schema {
			queryType { name }
			mutationType { name }
		}
	}`)
	if len(resp.Errors) != 0 {
		t.Fatalf("errors: %+v", resp.Errors)
	}
	want := map[string]any{"__schema": map[string]any{
		"queryType":    map[string]any{"name": "Query"},
		"mutationType": nil,
	}}
	if diff := cmp.Diff(want, resp.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemaTypesExcludeMetaTypes(t *testing.T) {
	s := buildExtendedSchema(t)
	resp := execute(t, s, `{ __schema { types { name } } }`)
	if len(resp.Errors) != 0 {
		t.Fatalf("errors: %+v", resp.Errors)
	}
	types := resp.Data["__schema"].(map[string]any)["types"].([]any)
	names := make(map[string]bool)
	for _, item := range types {
		names[item.(map[string]any)["name"].(string)] = true
	}
	for _, wantName := range []string{"Account", "Query", "String", "UUID"} {
		if !names[wantName] {
			t.Errorf("type %s missing from introspection", wantName)
		}
	}
	for name := range names {
		if len(name) >= 2 && name[:2] == "__" {
			t.Errorf("meta type %s leaked into type list", name)
		}
	}
}

func TestTypeIntrospection(t *testing.T) {
	s := buildExtendedSchema(t)
	resp := execute(t, s, `{
		__type(name: "Account") {
			name
			kind
			fields {
				name
				type { kind name ofType { kind name } }
			}
		}
	}`)
	if len(resp.Errors) != 0 {
		t.Fatalf("errors: %+v", resp.Errors)
	}
	want := map[string]any{"__type": map[string]any{
		"name": "Account",
		"kind": "OBJECT",
		"fields": []any{
			map[string]any{"name": "id", "type": map[string]any{
				"kind": "NON_NULL", "name": nil,
				"ofType": map[string]any{"kind": "SCALAR", "name": "UUID"},
			}},
			map[string]any{"name": "username", "type": map[string]any{
				"kind": "NON_NULL", "name": nil,
				"ofType": map[string]any{"kind": "SCALAR", "name": "String"},
			}},
		},
	}}
	if diff := cmp.Diff(want, resp.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownTypeIntrospection(t *testing.T) {
	s := buildExtendedSchema(t)
	resp := execute(t, s, `{ __type(name: "Ghost") { name } }`)
	if len(resp.Errors) != 0 {
		t.Fatalf("errors: %+v", resp.Errors)
	}
	if diff := cmp.Diff(map[string]any{"__type": nil}, resp.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}
