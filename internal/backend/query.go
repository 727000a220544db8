package backend

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/brandradar/visibility-dashboard/internal/models"
)

// Query builds PostgREST-style table requests: equality, range, membership,
// ordering and limit filters expressed as query parameters.
type Query struct {
	table   string
	columns string
	params  url.Values
	order   []string
	limit   int
}

// From starts a query against table
func From(table string) *Query {
	return &Query{table: table, params: url.Values{}}
}

// Table returns the table or view name
func (q *Query) Table() string {
	return q.table
}

// Select restricts the returned columns (PostgREST select syntax, embeds allowed)
func (q *Query) Select(columns string) *Query {
	q.columns = columns
	return q
}

func (q *Query) filter(column, op, value string) *Query {
	q.params.Add(column, op+"."+value)
	return q
}

// Eq filters column = value
func (q *Query) Eq(column, value string) *Query {
	return q.filter(column, "eq", value)
}

// EqIfSet filters column = value unless value is empty
func (q *Query) EqIfSet(column, value string) *Query {
	if value == "" {
		return q
	}
	return q.Eq(column, value)
}

// Gte filters column >= value
func (q *Query) Gte(column, value string) *Query {
	return q.filter(column, "gte", value)
}

// Lte filters column <= value
func (q *Query) Lte(column, value string) *Query {
	return q.filter(column, "lte", value)
}

// In filters column to one of values
func (q *Query) In(column string, values []string) *Query {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return q.filter(column, "in", "("+strings.Join(quoted, ",")+")")
}

// Days restricts a YYYY-MM-DD column to the range; empty bounds are open
func (q *Query) Days(column string, r models.TimeRange) *Query {
	if r.Start != "" {
		q.Gte(column, r.Start)
	}
	if r.End != "" {
		q.Lte(column, r.End)
	}
	return q
}

// Timestamps restricts a timestamp column to whole days of the range
func (q *Query) Timestamps(column string, r models.TimeRange) *Query {
	if r.Start != "" {
		q.Gte(column, r.Start+"T00:00:00Z")
	}
	if r.End != "" {
		q.Lte(column, r.End+"T23:59:59.999Z")
	}
	return q
}

// Order appends an ordering column
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.order = append(q.order, column+"."+dir)
	return q
}

// Limit caps the number of rows; zero means no limit
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Values renders the query parameters
func (q *Query) Values() url.Values {
	values := url.Values{}
	for k, v := range q.params {
		values[k] = append([]string(nil), v...)
	}
	if q.columns != "" {
		values.Set("select", q.columns)
	}
	if len(q.order) > 0 {
		values.Set("order", strings.Join(q.order, ","))
	}
	if q.limit > 0 {
		values.Set("limit", strconv.Itoa(q.limit))
	}
	return values
}
