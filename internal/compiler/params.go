package compiler

import "strconv"

// paramSet numbers parameters across the whole compiled query, so every
// subquery shares one namespace and values are never spliced into SQL text.
type paramSet struct {
	values []any
}

func (p *paramSet) add(v any) string {
	p.values = append(p.values, v)
	return "$" + strconv.Itoa(len(p.values))
}
