package compiler

import (
	"strings"
)

// argToken marks the spot where an argument value binds inside a predicate
// or clause expression.
const argToken = "$arg"

// currentToken and parentToken are rewritten to concrete table aliases once
// a level's SQL is assembled. Children resolve their own tokens before they
// are embedded, so the rewrite never leaks across levels.
const (
	currentToken = "$current"
	parentToken  = "$parent"
)

// sqlBuilder assembles one level of the query: the json_build_object
// projection over one table plus its filter clauses. It satisfies
// schema.Clauses so relation update hooks can adjust it directly.
type sqlBuilder struct {
	table  string
	alias  string
	many   bool
	params *paramSet

	fields  []string // "'key', expr" pairs in document order
	wheres  []string
	orderBy string
	limit   string
	offset  string

	// Branch fields collapse into one CASE per response key, switching on
	// the discriminator column.
	discriminator string
	branchKeys    []string
	branchArms    map[string][]branchArm
}

type branchArm struct {
	member string
	expr   string
}

func (b *sqlBuilder) addBranchField(key, member, expr string) {
	if b.branchArms == nil {
		b.branchArms = make(map[string][]branchArm)
	}
	if _, ok := b.branchArms[key]; !ok {
		b.branchKeys = append(b.branchKeys, key)
	}
	b.branchArms[key] = append(b.branchArms[key], branchArm{member: member, expr: expr})
}

// flushBranchFields renders the accumulated arms. Member names come from
// registered type definitions, never from the client, so quoting them as
// literals is safe.
func (b *sqlBuilder) flushBranchFields() {
	for _, key := range b.branchKeys {
		arms := make([]string, 0, len(b.branchArms[key]))
		for _, a := range b.branchArms[key] {
			arms = append(arms, "WHEN "+b.discriminator+" = '"+a.member+"' THEN "+a.expr)
		}
		b.addField(key, "CASE "+strings.Join(arms, " ")+" END")
	}
}

func (b *sqlBuilder) SetLimit(n int) {
	b.limit = b.params.add(n)
}

func (b *sqlBuilder) SetOffset(n int) {
	b.offset = b.params.add(n)
}

// AndWhere adds a predicate. Each $arg token binds the next value from
// params positionally; $current and $parent refer to this level's table and
// its parent's.
func (b *sqlBuilder) AndWhere(predicate string, params ...any) {
	for _, v := range params {
		predicate = strings.Replace(predicate, argToken, b.params.add(v), 1)
	}
	b.wheres = append(b.wheres, predicate)
}

func (b *sqlBuilder) SetOrderBy(clause string) {
	b.orderBy = clause
}

func (b *sqlBuilder) addField(key, expr string) {
	b.fields = append(b.fields, "'"+key+"', "+expr)
}

// sql renders the level. fromWhere is the relation predicate tying this
// level to its parent; parentAlias is empty at the root.
func (b *sqlBuilder) sql(fromWhere, parentAlias string) string {
	var conds []string
	if fromWhere != "" {
		conds = append(conds, fromWhere)
	}
	conds = append(conds, b.wheres...)

	var sb strings.Builder
	sb.WriteString("SELECT json_build_object(")
	sb.WriteString(strings.Join(b.fields, ", "))
	sb.WriteString(") AS ")
	sb.WriteString(b.alias)
	sb.WriteString("_json FROM ")
	sb.WriteString(b.table)
	sb.WriteString(" ")
	sb.WriteString(b.alias)
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	if b.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.orderBy)
	}
	if b.offset != "" {
		sb.WriteString(" OFFSET ")
		sb.WriteString(b.offset)
	}
	if b.limit != "" {
		sb.WriteString(" LIMIT ")
		sb.WriteString(b.limit)
	}

	s := sb.String()
	if b.many {
		s = "SELECT json_agg(" + b.alias + "_json) AS " + b.alias + "_json_agg FROM (" + s + ") AS " + b.alias + "_json_sub"
	}

	s = strings.ReplaceAll(s, currentToken, b.alias)
	if parentAlias != "" {
		s = strings.ReplaceAll(s, parentToken, parentAlias)
	}
	return s
}

// tableAlias derives the alias for a level from the chain of tables above
// it. The chain keeps aliases unique along any ancestor path, which is all
// SQL scoping requires. A bare root alias gets a prefix so it cannot shadow
// the table name itself.
func tableAlias(tablePath []string) string {
	alias := strings.ReplaceAll(strings.Join(tablePath, "__"), `"`, "")
	if len(tablePath) == 1 && strings.EqualFold(alias, strings.ReplaceAll(tablePath[0], `"`, "")) {
		alias = "_" + alias
	}
	return alias
}
