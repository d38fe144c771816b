// Package query translates raw URL query values into a typed read criteria:
// filter expressions, sort order, field projection, and pagination. The
// criteria is store-agnostic; the mongo layer compiles it into a filter
// document and find options.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Op is the closed set of comparison operators a filter may carry.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

// opFromToken maps a bracketed URL token ("price[gte]=100") to an operator.
// Unknown tokens are dropped rather than guessed at.
func opFromToken(tok string) (Op, bool) {
	switch tok {
	case "gt":
		return OpGt, true
	case "gte":
		return OpGte, true
	case "lt":
		return OpLt, true
	case "lte":
		return OpLte, true
	}
	return "", false
}

// Filter is one typed comparison: field OP value.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// SortField orders results by one field, optionally descending.
type SortField struct {
	Field string
	Desc  bool
}

const (
	DefaultPage  = int64(1)
	DefaultLimit = int64(100)
)

// Criteria is the composed read operation.
type Criteria struct {
	Filters []Filter
	Sort    []SortField
	Fields  []string
	Page    int64
	Limit   int64
}

// Skip returns the pagination offset.
func (c Criteria) Skip() int64 {
	return (c.Page - 1) * c.Limit
}

// reserved keys never become filters.
var reserved = map[string]struct{}{
	"page":   {},
	"limit":  {},
	"sort":   {},
	"fields": {},
}

// Builder accumulates a Criteria from raw query values. Each method mutates
// and returns the builder so calls chain; Criteria() yields the result.
type Builder struct {
	values url.Values
	c      Criteria
}

// New starts a builder over the given query values.
func New(values url.Values) *Builder {
	return &Builder{
		values: values,
		c:      Criteria{Page: DefaultPage, Limit: DefaultLimit},
	}
}

// Filter turns every non-reserved key into a typed filter expression.
// Bracketed operator suffixes ("price[gte]") select the comparison; plain
// keys compare for equality. Values are coerced to number or bool when they
// parse as one, otherwise kept as strings; anything beyond that surfaces as
// a store-level error.
func (b *Builder) Filter() *Builder {
	for key, vals := range b.values {
		if len(vals) == 0 {
			continue
		}
		field, op := splitKey(key)
		if _, skip := reserved[field]; skip {
			continue
		}
		b.c.Filters = append(b.c.Filters, Filter{
			Field: field,
			Op:    op,
			Value: coerce(vals[0]),
		})
	}
	return b
}

// Sort applies the comma-separated sort list, "-" prefix meaning descending.
// Without a sort parameter the order is newest first with the identifier as a
// tiebreaker, so pagination stays deterministic.
func (b *Builder) Sort() *Builder {
	raw := strings.TrimSpace(b.values.Get("sort"))
	if raw == "" {
		b.c.Sort = []SortField{
			{Field: "createdAt", Desc: true},
			{Field: "_id"},
		}
		return b
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "-") {
			b.c.Sort = append(b.c.Sort, SortField{Field: part[1:], Desc: true})
		} else {
			b.c.Sort = append(b.c.Sort, SortField{Field: part})
		}
	}
	return b
}

// Select applies the comma-separated field allow-list. An empty list leaves
// Fields nil; the store layer then excludes only the legacy version field.
func (b *Builder) Select() *Builder {
	raw := strings.TrimSpace(b.values.Get("fields"))
	if raw == "" {
		return b
	}
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			b.c.Fields = append(b.c.Fields, f)
		}
	}
	return b
}

// Paginate reads page and limit, clamping both to at least 1.
func (b *Builder) Paginate() *Builder {
	if page, err := strconv.ParseInt(b.values.Get("page"), 10, 64); err == nil && page > 0 {
		b.c.Page = page
	}
	if limit, err := strconv.ParseInt(b.values.Get("limit"), 10, 64); err == nil && limit > 0 {
		b.c.Limit = limit
	}
	return b
}

// Criteria returns the accumulated criteria.
func (b *Builder) Criteria() Criteria {
	return b.c
}

// Parse runs the full chain with default behaviour for every stage.
func Parse(values url.Values) Criteria {
	return New(values).Filter().Sort().Select().Paginate().Criteria()
}

// splitKey separates "price[gte]" into field and operator. A key without a
// recognised bracket suffix is an equality comparison on the whole key.
func splitKey(key string) (string, Op) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, OpEq
	}
	op, ok := opFromToken(key[open+1 : len(key)-1])
	if !ok {
		return key, OpEq
	}
	return key[:open], op
}

func coerce(raw string) any {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if t, err := strconv.ParseBool(raw); err == nil {
		return t
	}
	return raw
}
