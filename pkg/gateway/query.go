package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type filter struct {
	column string
	expr   string
}

// Query builds one tabular request. Relational embeds go in the select
// string, e.g. `*,category:food_categories(*)`.
type Query struct {
	c       *Client
	table   string
	columns string
	filters []filter
	order   string
	limit   int
	single  bool
}

func (c *Client) From(table string) *Query {
	return &Query{c: c, table: table, columns: "*"}
}

func (q *Query) Select(columns string) *Query {
	q.columns = columns
	return q
}

func (q *Query) Eq(column string, value any) *Query {
	q.filters = append(q.filters, filter{column, "eq." + encodeValue(value)})
	return q
}

func (q *Query) Gte(column string, value any) *Query {
	q.filters = append(q.filters, filter{column, "gte." + encodeValue(value)})
	return q
}

func (q *Query) Order(column string, ascending bool) *Query {
	direction := "desc"
	if ascending {
		direction = "asc"
	}
	q.order = column + "." + direction
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Single makes the request return one row instead of a list; no rows is a
// not-found error.
func (q *Query) Single() *Query {
	q.single = true
	return q
}

func (q *Query) Get(ctx context.Context, dest any) error {
	return q.execute(ctx, http.MethodGet, nil, dest)
}

func (q *Query) Insert(ctx context.Context, row any, dest any) error {
	return q.execute(ctx, http.MethodPost, row, dest)
}

func (q *Query) Update(ctx context.Context, patch any, dest any) error {
	return q.execute(ctx, http.MethodPatch, patch, dest)
}

func (q *Query) Delete(ctx context.Context) error {
	return q.execute(ctx, http.MethodDelete, nil, nil)
}

func (q *Query) execute(ctx context.Context, method string, body, dest any) error {
	req, err := q.c.newRequest(ctx, method, "/rest/v1/"+q.table+"?"+q.encode(), body)
	if err != nil {
		return err
	}

	token, err := q.c.accessToken(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	if dest != nil && method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}
	if q.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}

	return q.c.do(req, dest)
}

func (q *Query) encode() string {
	params := url.Values{}
	params.Set("select", q.columns)
	for _, f := range q.filters {
		params.Add(f.column, f.expr)
	}
	if q.order != "" {
		params.Set("order", q.order)
	}
	if q.limit > 0 {
		params.Set("limit", strconv.Itoa(q.limit))
	}
	return params.Encode()
}

func encodeValue(value any) string {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
