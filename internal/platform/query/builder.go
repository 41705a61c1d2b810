// Package query provides the tenant-scoped query builder behind every
// list endpoint. A Builder accumulates search, filter, sort, range,
// and pagination directives from raw request parameters, then executes
// as one row query plus one count query sharing the identical predicate
// set.
package query

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"

	"github.com/clinicore/clinic-api/pkg/pagination"
)

// Executor runs SQL. Both *pgxpool.Pool and pgx.Tx satisfy it.
type Executor interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

var dialect = goqu.Dialect("postgres")

// Builder composes one tenant-scoped read. Every directive merges;
// nothing executes until Rows or Meta is called, and Rows runs at most
// once.
type Builder struct {
	exec   Executor
	table  string
	params url.Values

	cols     []interface{}
	wheres   []goqu.Expression
	joins    []joinSpec
	order    []exp.OrderedExpression
	page     pagination.Params
	scoped   bool
	unscoped bool
	executed bool
}

type joinSpec struct {
	table string
	on    exp.JoinCondition
}

// New builds a Builder over one table for the given raw query
// parameters.
func New(exec Executor, table string, params url.Values) *Builder {
	if params == nil {
		params = url.Values{}
	}
	return &Builder{
		exec:   exec,
		table:  table,
		params: params,
		cols:   []interface{}{goqu.Star()},
		page:   pagination.FromValues(params.Get("page"), params.Get("limit")),
	}
}

// Scope adds the mandatory tenant predicate. Every tenant-owned table
// must be scoped before Rows or Meta will run.
func (b *Builder) Scope(clinicID interface{}) *Builder {
	b.scoped = true
	return b.RawFilter(goqu.Ex{b.table + ".clinic_id": clinicID})
}

// Unscoped marks the builder as intentionally tenant-free. Reserved for
// platform-level tables such as the clinic registry itself.
func (b *Builder) Unscoped() *Builder {
	b.unscoped = true
	return b
}

// RawFilter merges a caller-supplied condition unconditionally.
func (b *Builder) RawFilter(ex goqu.Expression) *Builder {
	b.wheres = append(b.wheres, ex)
	return b
}

// Search adds a case-insensitive OR-contains condition across the given
// column paths when a searchTerm parameter is present. Paths may be
// qualified ("patient.first_name") when the relation was joined.
func (b *Builder) Search(fields ...string) *Builder {
	term := strings.TrimSpace(b.params.Get("searchTerm"))
	if term == "" || len(fields) == 0 {
		return b
	}
	pattern := "%" + escapeLike(term) + "%"
	ors := make([]goqu.Expression, 0, len(fields))
	for _, f := range fields {
		ors = append(ors, goqu.I(b.qualify(f)).ILike(pattern))
	}
	b.wheres = append(b.wheres, goqu.Or(ors...))
	return b
}

// Filter adds equality conditions for each allow-listed parameter
// present in the raw query. Parameters outside the allow-list are
// ignored, which keeps arbitrary column injection out of the predicate.
func (b *Builder) Filter(allowed ...string) *Builder {
	for _, field := range allowed {
		if v := b.params.Get(field); v != "" {
			b.wheres = append(b.wheres, goqu.Ex{b.qualify(field): v})
		}
	}
	return b
}

// RangeSpec describes one inclusive range filter: the column it
// constrains, the min/max parameter keys, and how raw values parse.
type RangeSpec struct {
	Field  string
	MinKey string
	MaxKey string
	Parse  func(string) (interface{}, error)
}

// DateRange builds a RangeSpec for a date column with ISO "2006-01-02"
// parameter values.
func DateRange(field, minKey, maxKey string) RangeSpec {
	return RangeSpec{Field: field, MinKey: minKey, MaxKey: maxKey, Parse: parseISODate}
}

func parseISODate(s string) (interface{}, error) {
	return time.Parse("2006-01-02", s)
}

// Range adds inclusive min/max conditions for each spec whose parameter
// keys appear in the query. Unparseable values are dropped, matching
// the lenient read-path contract.
func (b *Builder) Range(specs ...RangeSpec) *Builder {
	for _, spec := range specs {
		col := b.qualify(spec.Field)
		if raw := b.params.Get(spec.MinKey); raw != "" {
			if v, err := spec.Parse(raw); err == nil {
				b.wheres = append(b.wheres, goqu.I(col).Gte(v))
			}
		}
		if raw := b.params.Get(spec.MaxKey); raw != "" {
			if v, err := spec.Parse(raw); err == nil {
				b.wheres = append(b.wheres, goqu.I(col).Lte(v))
			}
		}
	}
	return b
}

// Sort applies sortBy/sortOrder when sortBy names an allow-listed
// column, falling back to the stable default otherwise.
func (b *Builder) Sort(defaultField string, defaultDesc bool, allowed ...string) *Builder {
	field, desc := defaultField, defaultDesc
	if requested := b.params.Get("sortBy"); requested != "" {
		for _, a := range allowed {
			if a == requested {
				field = requested
				desc = strings.EqualFold(b.params.Get("sortOrder"), "desc")
				break
			}
		}
	}
	col := goqu.I(b.qualify(field))
	if desc {
		b.order = append(b.order, col.Desc())
	} else {
		b.order = append(b.order, col.Asc())
	}
	return b
}

// Fields restricts the projection. Multiple calls replace, not merge.
func (b *Builder) Fields(cols ...string) *Builder {
	if len(cols) == 0 {
		return b
	}
	b.cols = make([]interface{}, 0, len(cols))
	for _, c := range cols {
		b.cols = append(b.cols, goqu.I(b.qualify(c)))
	}
	return b
}

// Join declares an inner join so Search and Filter can reference the
// joined table's columns. Repeated calls merge.
func (b *Builder) Join(table, leftCol, rightCol string) *Builder {
	b.joins = append(b.joins, joinSpec{
		table: table,
		on:    goqu.On(goqu.I(leftCol).Eq(goqu.I(rightCol))),
	})
	return b
}

// Page exposes the normalized pagination parameters.
func (b *Builder) Page() pagination.Params { return b.page }

// Rows executes the composed read exactly once and returns the page of
// matching rows for the caller to scan.
func (b *Builder) Rows(ctx context.Context) (pgx.Rows, error) {
	if b.executed {
		return nil, fmt.Errorf("query builder for %s already executed", b.table)
	}
	if err := b.checkScope(); err != nil {
		return nil, err
	}
	b.executed = true

	ds := b.dataset().
		Select(b.cols...).
		Order(b.order...).
		Limit(uint(b.page.Limit)).
		Offset(uint(b.page.Offset()))
	sql, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query for %s: %w", b.table, err)
	}
	return b.exec.Query(ctx, sql, args...)
}

// Meta runs the independent count over the same predicate set, with
// pagination excluded, and returns the page metadata.
func (b *Builder) Meta(ctx context.Context) (pagination.Meta, error) {
	if err := b.checkScope(); err != nil {
		return pagination.Meta{}, err
	}
	sql, args, err := b.dataset().
		Select(goqu.COUNT(goqu.Star())).
		Prepared(true).ToSQL()
	if err != nil {
		return pagination.Meta{}, fmt.Errorf("build count for %s: %w", b.table, err)
	}
	var total int
	if err := b.exec.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return pagination.Meta{}, fmt.Errorf("count %s: %w", b.table, err)
	}
	return pagination.NewMeta(b.page, total), nil
}

func (b *Builder) dataset() *goqu.SelectDataset {
	ds := dialect.From(b.table)
	for _, j := range b.joins {
		ds = ds.Join(goqu.T(j.table), j.on)
	}
	if len(b.wheres) > 0 {
		ds = ds.Where(b.wheres...)
	}
	return ds
}

func (b *Builder) checkScope() error {
	if !b.scoped && !b.unscoped {
		return fmt.Errorf("query on %s has no tenant scope; call Scope or Unscoped", b.table)
	}
	return nil
}

// qualify prefixes bare column names with the builder's table so joined
// queries stay unambiguous. Dotted paths pass through untouched.
func (b *Builder) qualify(col string) string {
	if strings.Contains(col, ".") {
		return col
	}
	return b.table + "." + col
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
