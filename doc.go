// Package fastgql builds a GraphQL schema from data-model definitions and
// compiles each query's storage-backed selection into a single database
// query, so a nested request costs one round trip instead of one per row.
//
// Models declare their fields, resolvers and storage mapping as plain data:
//
//	account := &fastgql.Model{
//		Name:  "Account",
//		Table: "accounts",
//		Fields: []fastgql.Field{
//			{Name: "username", Type: fastgql.Scalar("String"), Column: "username"},
//		},
//	}
//
// New validates the whole model graph up front and returns an Engine;
// Engine.Execute serves requests directly and Engine.Handler exposes the
// HTTP transport. Fields without a storage mapping fall back to their
// resolvers, and both paths may mix within one query.
package fastgql
