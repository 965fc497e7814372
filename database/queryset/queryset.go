// Package queryset provides a deferred SQL query description over
// database/sql. A QuerySet carries the table, selected columns,
// annotation expressions, ordering and pagination; nothing touches the
// database until Fetch or Count runs.
package queryset

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// QuerySet is a deferred query over one table. The zero value is not
// usable; build with New. A QuerySet is not safe for concurrent
// mutation; bind one per request.
type QuerySet struct {
	db          *sql.DB
	table       string
	columns     []string
	annotations map[string]string // alias -> SQL expression
	order       []string
	limit       int
	offset      int
	log         *slog.Logger
}

// New builds a query set over table selecting the given columns
// (all columns when none are given).
func New(db *sql.DB, table string, columns ...string) *QuerySet {
	return &QuerySet{
		db:          db,
		table:       table,
		columns:     columns,
		annotations: make(map[string]string),
		log:         slog.Default(),
	}
}

// WithLogger replaces the logger used for query diagnostics.
func (q *QuerySet) WithLogger(l *slog.Logger) *QuerySet {
	q.log = l
	return q
}

// Annotate attaches computed expressions, selected as "expr AS name".
func (q *QuerySet) Annotate(exprs map[string]string) {
	for name, expr := range exprs {
		q.annotations[name] = expr
	}
}

// OrderBy replaces the ordering with the given ORDER BY elements.
func (q *QuerySet) OrderBy(clauses ...string) {
	q.order = clauses
}

// Page sets LIMIT and OFFSET. A limit of zero means no limit.
func (q *QuerySet) Page(limit, offset int) *QuerySet {
	q.limit = limit
	q.offset = offset
	return q
}

// SQL renders the SELECT statement the set describes. Column names,
// annotation expressions and order clauses come from trusted table
// definitions, not request input, and are interpolated as-is.
func (q *QuerySet) SQL() string {
	sel := make([]string, 0, len(q.columns)+len(q.annotations))
	sel = append(sel, q.columns...)

	names := make([]string, 0, len(q.annotations))
	for name := range q.annotations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sel = append(sel, fmt.Sprintf("%s AS %s", q.annotations[name], name))
	}
	if len(sel) == 0 {
		sel = []string{"*"}
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(sel, ", "), q.table)
	if len(q.order) > 0 {
		query += " ORDER BY " + strings.Join(q.order, ", ")
	}
	if q.limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", q.limit, q.offset)
	}
	return query
}

// Fetch executes the query and returns one map per row, with []byte
// values decoded to strings.
func (q *QuerySet) Fetch(ctx context.Context) ([]map[string]any, error) {
	query := q.SQL()
	queryID := uuid.NewString()
	start := time.Now()

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", q.table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", q.table, err)
	}

	records := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", q.table, err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		records = append(records, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", q.table, err)
	}

	q.log.Debug("queryset fetch",
		"query_id", queryID,
		"table", q.table,
		"rows", len(records),
		"elapsed", time.Since(start))
	return records, nil
}

// Count returns the number of rows the set matches, ignoring
// pagination.
func (q *QuerySet) Count(ctx context.Context) (int, error) {
	var total int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", q.table)
	if err := q.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", q.table, err)
	}
	return total, nil
}
