// Package query turns list parameters into a datastore-neutral predicate
// and pagination window. Backends translate Filter into their own query
// language (a bson document, a SQL WHERE clause).
package query

import (
	"net/url"
	"strconv"

	"github.com/aanand-mishra/students-api/internal/schema"
	"github.com/aanand-mishra/students-api/internal/types"
)

// Pagination bounds.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Filter selects students. A nil field imposes no restriction; both fields
// together are ANDed.
type Filter struct {
	// Country matches address.country exactly (case-sensitive).
	Country *string
	// MinAge matches age >= MinAge.
	MinAge *int
}

// IsEmpty reports whether the filter matches every record.
func (f Filter) IsEmpty() bool {
	return f.Country == nil && f.MinAge == nil
}

// Page is a skip/limit window over the ordered result set.
type Page struct {
	Offset int64
	Limit  int64
}

// BuildFilter builds the predicate for the optional list parameters.
// An empty country is treated as absent.
func BuildFilter(country *string, minAge *int) Filter {
	var f Filter
	if country != nil && *country != "" {
		c := *country
		f.Country = &c
	}
	if minAge != nil {
		a := *minAge
		f.MinAge = &a
	}
	return f
}

// params mirrors the query string so the bounds can be expressed as
// validate tags and reported like any other validation failure.
type params struct {
	Country *string `json:"country"`
	MinAge  *int    `json:"age"     validate:"omitempty,gte=0"`
	Offset  int64   `json:"offset"  validate:"gte=0"`
	Limit   int64   `json:"limit"   validate:"gte=1,lte=1000"`
}

// Parse reads country, age, offset and limit from a query string.
// Non-integer or out-of-range values fail with *types.ValidationError.
func Parse(v url.Values) (Filter, Page, error) {
	p := params{Limit: DefaultLimit}

	if v.Has("country") {
		c := v.Get("country")
		p.Country = &c
	}
	if raw := v.Get("age"); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return Filter{}, Page{}, types.NewValidationError("age", "must be an integer")
		}
		p.MinAge = &age
	}
	if raw := v.Get("offset"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Filter{}, Page{}, types.NewValidationError("offset", "must be an integer")
		}
		p.Offset = n
	}
	if raw := v.Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Filter{}, Page{}, types.NewValidationError("limit", "must be an integer")
		}
		p.Limit = n
	}

	if err := schema.Validate(p); err != nil {
		return Filter{}, Page{}, err
	}

	return BuildFilter(p.Country, p.MinAge), Page{Offset: p.Offset, Limit: p.Limit}, nil
}
