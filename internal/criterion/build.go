package criterion

import (
	"maps"
	"net/url"
	"strings"
)

// Query is the flat parameter map produced by Build.
type Query map[string]string

// Clone returns an independent copy of q.
func (q Query) Clone() Query {
	if q == nil {
		return Query{}
	}
	return maps.Clone(q)
}

// With returns a copy of q with key set to value.
func (q Query) With(key, value string) Query {
	clone := q.Clone()
	clone[key] = value
	return clone
}

// Values converts q for use in a request URL.
func (q Query) Values() url.Values {
	values := make(url.Values, len(q))
	for k, v := range q {
		values.Set(k, v)
	}
	return values
}

// Encode renders q in URL encoding, sorted by key.
func (q Query) Encode() string {
	return q.Values().Encode()
}

// Build compiles a criterion tree into query parameters.
//
// A named root renders as a single parameter whose value is the field list of
// its children, or its own value for a filter. An anonymous root renders each
// child as its own parameter: filters as name=value, flags as name=true and
// selectors or collections as name=<field list>. Anonymous children of an
// anonymous root are flattened into it.
//
// A field list joins its entries with commas. A selector renders as
// name(child,child), and an anonymous selector contributes its children
// directly to the enclosing list.
func Build(c *Criterion) Query {
	q := Query{}
	if c == nil {
		return q
	}

	if c.name != "" {
		q.put(c)
		return q
	}

	q.flatten(c)
	return q
}

func (q Query) flatten(root *Criterion) {
	for _, child := range root.children {
		if child.name == "" {
			q.flatten(child)
			continue
		}
		q.put(child)
	}
}

func (q Query) put(c *Criterion) {
	switch {
	case c.hasValue:
		q[c.name] = c.value
	case len(c.children) > 0 || c.kind == KindCollection:
		q[c.name] = fieldList(c.children)
	default:
		q[c.name] = "true"
	}
}

func fieldList(children []*Criterion) string {
	var b strings.Builder
	writeFieldList(&b, children)
	return b.String()
}

func writeFieldList(b *strings.Builder, children []*Criterion) {
	first := true
	for _, child := range children {
		if child.name == "" && len(child.children) == 0 {
			continue
		}

		if !first {
			b.WriteByte(',')
		}
		first = false

		switch {
		case child.name == "":
			writeFieldList(b, child.children)
		case len(child.children) > 0:
			b.WriteString(child.name)
			b.WriteByte('(')
			writeFieldList(b, child.children)
			b.WriteByte(')')
		default:
			b.WriteString(child.name)
		}
	}
}
