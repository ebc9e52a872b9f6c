package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Table starts a row-level operation against the named table.
func (c *Client) From(table string) *Table {
	return &Table{client: c, name: table}
}

// Table scopes data API operations to one table.
type Table struct {
	client *Client
	name   string
}

// Select starts a read returning the given columns ("*" for all).
func (t *Table) Select(columns string) *SelectQuery {
	return &SelectQuery{table: t, columns: columns}
}

// Insert writes a single row. When dest is non-nil the created row is
// decoded into it. A unique-constraint violation returns ErrConflict.
func (t *Table) Insert(ctx context.Context, row, dest any) error {
	path := "/rest/v1/" + t.name
	if dest != nil {
		var rows []json.RawMessage
		if err := t.client.doJSON(ctx, http.MethodPost, path+"?select=*", t.client.bearerOrAnon(), row, &rows); err != nil {
			return err
		}
		if len(rows) == 0 {
			return ErrNotFound
		}
		return json.Unmarshal(rows[0], dest)
	}
	return t.client.doJSON(ctx, http.MethodPost, path, t.client.bearerOrAnon(), row, nil)
}

// Upsert writes a row, updating the existing one when the onConflict
// column already holds the same value.
func (t *Table) Upsert(ctx context.Context, row any, onConflict string) error {
	path := fmt.Sprintf("/rest/v1/%s?on_conflict=%s", t.name, url.QueryEscape(onConflict))
	return t.client.doJSON(ctx, http.MethodPost, path, t.client.bearerOrAnon(), row, nil)
}

// Update starts a partial update constrained by filters.
func (t *Table) Update(changes any) *UpdateQuery {
	return &UpdateQuery{table: t, changes: changes}
}

type filter struct {
	column string
	op     string
	value  string
}

// SelectQuery accumulates filters and ordering for a read.
type SelectQuery struct {
	table   *Table
	columns string
	filters []filter
	order   []string
}

// Eq keeps rows whose column equals the value.
func (q *SelectQuery) Eq(column string, value any) *SelectQuery {
	q.filters = append(q.filters, filter{column, "eq", fmt.Sprint(value)})
	return q
}

// Neq keeps rows whose column differs from the value.
func (q *SelectQuery) Neq(column string, value any) *SelectQuery {
	q.filters = append(q.filters, filter{column, "neq", fmt.Sprint(value)})
	return q
}

// Or keeps rows matching the raw disjunction expression, e.g.
// "and(a.eq.1,b.eq.2),and(a.eq.2,b.eq.1)".
func (q *SelectQuery) Or(expr string) *SelectQuery {
	q.filters = append(q.filters, filter{"or", "raw", "(" + expr + ")"})
	return q
}

// Order sorts by the column; ascending when asc is true.
func (q *SelectQuery) Order(column string, asc bool) *SelectQuery {
	dir := "desc"
	if asc {
		dir = "asc"
	}
	q.order = append(q.order, column+"."+dir)
	return q
}

// Fetch runs the query and decodes all matching rows into dest, which
// must be a pointer to a slice.
func (q *SelectQuery) Fetch(ctx context.Context, dest any) error {
	return q.table.client.doJSON(ctx, http.MethodGet, q.path(), q.table.client.bearerOrAnon(), nil, dest)
}

// Single runs the query and decodes exactly one row into dest.
// Returns ErrNotFound when nothing matches.
func (q *SelectQuery) Single(ctx context.Context, dest any) error {
	var rows []json.RawMessage
	if err := q.table.client.doJSON(ctx, http.MethodGet, q.path(), q.table.client.bearerOrAnon(), nil, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return json.Unmarshal(rows[0], dest)
}

func (q *SelectQuery) path() string {
	params := url.Values{}
	params.Set("select", q.columns)
	for _, f := range q.filters {
		if f.op == "raw" {
			params.Set(f.column, f.value)
			continue
		}
		params.Set(f.column, f.op+"."+f.value)
	}
	if len(q.order) > 0 {
		params.Set("order", strings.Join(q.order, ","))
	}
	return "/rest/v1/" + q.table.name + "?" + params.Encode()
}

// UpdateQuery accumulates filters for a partial update.
type UpdateQuery struct {
	table   *Table
	changes any
	filters []filter
}

// Eq constrains the update to rows whose column equals the value.
func (q *UpdateQuery) Eq(column string, value any) *UpdateQuery {
	q.filters = append(q.filters, filter{column, "eq", fmt.Sprint(value)})
	return q
}

// Do runs the update without reading anything back.
func (q *UpdateQuery) Do(ctx context.Context) error {
	return q.table.client.doJSON(ctx, http.MethodPatch, q.path(), q.table.client.bearerOrAnon(), q.changes, nil)
}

// Fetch runs the update and decodes the first updated row into dest.
func (q *UpdateQuery) Fetch(ctx context.Context, dest any) error {
	var rows []json.RawMessage
	if err := q.table.client.doJSON(ctx, http.MethodPatch, q.path()+"&select=*", q.table.client.bearerOrAnon(), q.changes, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return json.Unmarshal(rows[0], dest)
}

func (q *UpdateQuery) path() string {
	params := url.Values{}
	for _, f := range q.filters {
		params.Set(f.column, f.op+"."+f.value)
	}
	return "/rest/v1/" + q.table.name + "?" + params.Encode()
}
