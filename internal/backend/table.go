package backend

import (
	"context"
	"net/http"
	"net/url"
)

// Record is one row payload for an insert. Optional fields are simply
// absent from the map; the client never sends explicit nulls for them.
type Record = map[string]any

// Table returns a handle on one table of the service's table store.
func (c *Client) Table(name string) *Table {
	return &Table{c: c, name: name}
}

// Table issues inserts and selects against a single named table.
type Table struct {
	c    *Client
	name string
}

// Insert writes the given records in one call. The service enforces
// ownership and integrity; the client sends the payload as-is.
func (t *Table) Insert(ctx context.Context, records ...Record) error {
	header := http.Header{"Prefer": {"return=minimal"}}
	return t.c.doJSON(ctx, http.MethodPost, "/rest/v1/"+t.name, nil, header, records, nil)
}

// Select starts a read of the given columns ("*" for all).
func (t *Table) Select(columns string) *SelectQuery {
	return &SelectQuery{t: t, columns: columns}
}

// SelectQuery accumulates filters and ordering for a single fetch.
type SelectQuery struct {
	t       *Table
	columns string
	eqs     [][2]string
	order   string
}

// Eq restricts the result to rows whose column equals value.
func (q *SelectQuery) Eq(column, value string) *SelectQuery {
	q.eqs = append(q.eqs, [2]string{column, value})
	return q
}

// Order sorts the result by column, descending when desc is true.
func (q *SelectQuery) Order(column string, desc bool) *SelectQuery {
	q.order = column + ".asc"
	if desc {
		q.order = column + ".desc"
	}
	return q
}

// Fetch runs the query and decodes the resulting rows into dest,
// which must be a pointer to a slice.
func (q *SelectQuery) Fetch(ctx context.Context, dest any) error {
	query := url.Values{}
	query.Set("select", q.columns)
	for _, eq := range q.eqs {
		query.Set(eq[0], "eq."+eq[1])
	}
	if q.order != "" {
		query.Set("order", q.order)
	}
	return q.t.c.doJSON(ctx, http.MethodGet, "/rest/v1/"+q.t.name, query, nil, nil, dest)
}
