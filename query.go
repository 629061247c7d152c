package skybase

import (
	"bytes"
	"context"
	"fmt"
	"sort"
)

// Op is a filter comparator. Equality serializes as the bare field
// name; every other comparator as "{field}?{op}".
type Op string

const (
	OpEq          Op = ""
	OpNe          Op = "ne"
	OpGt          Op = "gt"
	OpGte         Op = "gte"
	OpLt          Op = "lt"
	OpLte         Op = "lte"
	OpRange       Op = "range"
	OpContains    Op = "contains"
	OpNotContains Op = "not_contains"
	OpPrefix      Op = "pfx"
)

func (op Op) key(field string) string {
	if op == OpEq {
		return field
	}
	return field + "?" + string(op)
}

// Group is one AND-conjunction of filter predicates. A later set on the
// same field+comparator overwrites the earlier value; insertion order
// of distinct keys is kept so serialization stays deterministic.
type Group struct {
	keys   []string
	values map[string]any
}

func newGroup() *Group {
	return &Group{values: make(map[string]any)}
}

func (g *Group) set(key string, value any) {
	if _, ok := g.values[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.values[key] = value
}

// Len reports the number of distinct predicates in the group.
func (g *Group) Len() int {
	return len(g.keys)
}

func (g *Group) clone() *Group {
	c := &Group{
		keys:   append([]string(nil), g.keys...),
		values: make(map[string]any, len(g.values)),
	}
	for k, v := range g.values {
		c.values[k] = v
	}
	return c
}

// MarshalJSON writes predicates in insertion order.
func (g *Group) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range g.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := jsonMarshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := jsonMarshal(g.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Query accumulates filter predicates and OR branches for one base,
// serializes them to the wire format, and drives pagination. Builder
// methods chain and return the receiver; a query is never mutated by
// the requests it issues.
type Query struct {
	base    *Base
	limit   int
	last    string
	sort    bool
	partial bool
	groups  []*Group // previously unioned OR branches
	group   *Group   // current in-progress branch
}

// Set records a predicate in the current group. Any JSON-compatible
// value is accepted; the server validates comparator/value pairing.
func (q *Query) Set(op Op, field string, value any) *Query {
	q.group.set(op.key(field), value)
	return q
}

// Equals matches records whose field equals the value.
func (q *Query) Equals(field string, value any) *Query {
	return q.Set(OpEq, field, value)
}

// NotEquals matches records whose field differs from the value.
func (q *Query) NotEquals(field string, value any) *Query {
	return q.Set(OpNe, field, value)
}

// GreaterThan matches records whose field exceeds the value.
func (q *Query) GreaterThan(field string, value any) *Query {
	return q.Set(OpGt, field, value)
}

// GreaterThanOrEqual matches records whose field is at least the value.
func (q *Query) GreaterThanOrEqual(field string, value any) *Query {
	return q.Set(OpGte, field, value)
}

// LessThan matches records whose field is below the value.
func (q *Query) LessThan(field string, value any) *Query {
	return q.Set(OpLt, field, value)
}

// LessThanOrEqual matches records whose field is at most the value.
func (q *Query) LessThanOrEqual(field string, value any) *Query {
	return q.Set(OpLte, field, value)
}

// InRange matches records whose field lies within [start, end].
func (q *Query) InRange(field string, start, end float64) *Query {
	return q.Set(OpRange, field, []float64{start, end})
}

// Contains matches records whose field contains the value.
func (q *Query) Contains(field string, value string) *Query {
	return q.Set(OpContains, field, value)
}

// NotContains matches records whose field does not contain the value.
func (q *Query) NotContains(field string, value string) *Query {
	return q.Set(OpNotContains, field, value)
}

// Prefix matches records whose field starts with the value.
func (q *Query) Prefix(field string, value string) *Query {
	return q.Set(OpPrefix, field, value)
}

// Union folds other's accumulated branches and its current group into
// q as additional OR branches. q's current group is untouched.
func (q *Query) Union(other *Query) *Query {
	for _, g := range other.groups {
		q.groups = append(q.groups, g.clone())
	}
	q.groups = append(q.groups, other.group.clone())
	return q
}

// Append adds a manually constructed branch. Keys are sorted so the
// serialized form stays deterministic.
func (q *Query) Append(group map[string]any) *Query {
	keys := make([]string, 0, len(group))
	for k := range group {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	g := newGroup()
	for _, k := range keys {
		g.set(k, group[k])
	}
	q.groups = append(q.groups, g)
	return q
}

// Limit caps the number of records per page. The server defaults to
// 1000 and caps at 1000; neither bound is enforced here.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Last resumes the query from the given pagination cursor.
func (q *Query) Last(cursor string) *Query {
	q.last = cursor
	return q
}

// Sort orders results descending when desc is true.
func (q *Query) Sort(desc bool) *Query {
	q.sort = desc
	return q
}

// AllowPartial makes All return everything aggregated so far when a
// page after the first fails, instead of failing the whole walk.
func (q *Query) AllowPartial() *Query {
	q.partial = true
	return q
}

func (q *Query) clone() *Query {
	c := &Query{
		base:    q.base,
		limit:   q.limit,
		last:    q.last,
		sort:    q.sort,
		partial: q.partial,
		group:   q.group.clone(),
	}
	for _, g := range q.groups {
		c.groups = append(c.groups, g.clone())
	}
	return c
}

// payload builds the wire form. The current group always trails the
// unioned branches, even when empty ("OR of one").
func (q *Query) payload() map[string]any {
	groups := make([]*Group, 0, len(q.groups)+1)
	groups = append(groups, q.groups...)
	groups = append(groups, q.group)

	data := map[string]any{"query": groups}
	if q.limit > 0 {
		data["limit"] = q.limit
	}
	if q.last != "" {
		data["last"] = q.last
	}
	if q.sort {
		data["sort"] = "desc"
	}
	return data
}

func (q *Query) MarshalJSON() ([]byte, error) {
	return jsonMarshal(q.payload())
}

// Run issues the query once and returns a single page.
func (q *Query) Run(ctx context.Context) (*QueryResponse, error) {
	var out *QueryResponse
	resp, err := q.base.client.R().
		SetContext(ctx).
		SetBody(q.payload()).
		SetSuccessResult(&out).
		Post(q.base.prefix + "/query")

	if err := handleAPIError(resp, err, "base query"); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("base query: %w", ErrInvalidResponse)
	}

	return out, nil
}

// All runs the query repeatedly, feeding each page's cursor into the
// next request, and returns every item across all pages. The limit
// must be unset; an error on the first page always propagates, and an
// error on a later page fails the walk unless AllowPartial was set.
func (q *Query) All(ctx context.Context) (*QueryResponse, error) {
	if q.limit > 0 {
		return nil, ErrLimitSet
	}

	agg := &QueryResponse{Items: []map[string]any{}}
	cursor := q.last

	for first := true; ; first = false {
		page, err := q.clone().Last(cursor).Run(ctx)
		if err != nil {
			if !first && q.partial {
				break
			}
			return nil, err
		}

		agg.Items = append(agg.Items, page.Items...)
		if page.Paging.Last == "" {
			break
		}
		cursor = page.Paging.Last
	}

	agg.Paging = Paging{Size: len(agg.Items)}
	return agg, nil
}
