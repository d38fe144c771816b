package query

import (
	"net/url"
	"testing"
)

func TestParse_OperatorFilters(t *testing.T) {
	values := url.Values{}
	values.Set("price[gte]", "100")
	values.Set("duration[lt]", "10")
	values.Set("difficulty", "easy")

	c := Parse(values)

	if len(c.Filters) != 3 {
		t.Fatalf("expected 3 filters, got %d", len(c.Filters))
	}

	byField := map[string]Filter{}
	for _, f := range c.Filters {
		byField[f.Field] = f
	}

	price := byField["price"]
	if price.Op != OpGte {
		t.Fatalf("expected gte on price, got %q", price.Op)
	}
	if v, ok := price.Value.(float64); !ok || v != 100 {
		t.Fatalf("expected price value 100, got %v", price.Value)
	}

	if byField["duration"].Op != OpLt {
		t.Fatalf("expected lt on duration, got %q", byField["duration"].Op)
	}

	diff := byField["difficulty"]
	if diff.Op != OpEq {
		t.Fatalf("expected eq on difficulty, got %q", diff.Op)
	}
	if diff.Value != "easy" {
		t.Fatalf("expected string value, got %v", diff.Value)
	}
}

func TestParse_ReservedKeysNeverFilter(t *testing.T) {
	values := url.Values{}
	values.Set("page", "3")
	values.Set("limit", "2")
	values.Set("sort", "-price")
	values.Set("fields", "name,price")

	c := Parse(values)

	if len(c.Filters) != 0 {
		t.Fatalf("reserved keys leaked into filters: %+v", c.Filters)
	}
	if c.Page != 3 || c.Limit != 2 {
		t.Fatalf("unexpected pagination: page=%d limit=%d", c.Page, c.Limit)
	}
	if c.Skip() != 4 {
		t.Fatalf("expected skip 4, got %d", c.Skip())
	}
	if len(c.Fields) != 2 || c.Fields[0] != "name" || c.Fields[1] != "price" {
		t.Fatalf("unexpected fields: %v", c.Fields)
	}
	if len(c.Sort) != 1 || c.Sort[0].Field != "price" || !c.Sort[0].Desc {
		t.Fatalf("unexpected sort: %+v", c.Sort)
	}
}

func TestParse_DefaultSortIsDeterministic(t *testing.T) {
	c := Parse(url.Values{})

	if len(c.Sort) != 2 {
		t.Fatalf("expected 2 default sort fields, got %+v", c.Sort)
	}
	if c.Sort[0].Field != "createdAt" || !c.Sort[0].Desc {
		t.Fatalf("expected -createdAt first, got %+v", c.Sort[0])
	}
	if c.Sort[1].Field != "_id" || c.Sort[1].Desc {
		t.Fatalf("expected _id ascending tiebreaker, got %+v", c.Sort[1])
	}
}

func TestParse_Defaults(t *testing.T) {
	c := Parse(url.Values{})

	if c.Page != DefaultPage || c.Limit != DefaultLimit {
		t.Fatalf("unexpected defaults: page=%d limit=%d", c.Page, c.Limit)
	}
	if c.Fields != nil {
		t.Fatalf("expected nil fields, got %v", c.Fields)
	}
	if c.Skip() != 0 {
		t.Fatalf("expected skip 0, got %d", c.Skip())
	}
}

func TestParse_InvalidPaginationClamped(t *testing.T) {
	values := url.Values{}
	values.Set("page", "0")
	values.Set("limit", "-5")

	c := Parse(values)

	if c.Page != DefaultPage || c.Limit != DefaultLimit {
		t.Fatalf("expected clamped defaults, got page=%d limit=%d", c.Page, c.Limit)
	}
}

func TestParse_UnknownOperatorFallsBackToEquality(t *testing.T) {
	values := url.Values{}
	values.Set("price[regex]", "x")

	c := Parse(values)

	if len(c.Filters) != 1 {
		t.Fatalf("expected 1 filter, got %d", len(c.Filters))
	}
	f := c.Filters[0]
	if f.Op != OpEq || f.Field != "price[regex]" {
		t.Fatalf("unknown token must stay an equality key, got %+v", f)
	}
}

func TestParse_BoolCoercion(t *testing.T) {
	values := url.Values{}
	values.Set("secretTour", "true")

	c := Parse(values)

	if v, ok := c.Filters[0].Value.(bool); !ok || !v {
		t.Fatalf("expected bool true, got %v", c.Filters[0].Value)
	}
}
