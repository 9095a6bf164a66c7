package querybuilder

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoTable      = errors.New("querybuilder: table is not set")
	ErrNoColumns    = errors.New("querybuilder: no columns")
	ErrColumnsCount = errors.New("querybuilder: values do not match columns")
	ErrNoConditions = errors.New("querybuilder: refusing to update without conditions")
)

// QueryBuilder assembles SQL with '?' placeholders. Callers rebind them for
// their driver, e.g. sqlx.Rebind(sqlx.DOLLAR, query).
type QueryBuilder interface {
	Select(cols ...string) QueryBuilder
	DistinctOn(cols ...string) QueryBuilder
	From(table string) QueryBuilder
	Into(table string) QueryBuilder
	Where(clause string, args ...interface{}) QueryBuilder
	And(clause string, args ...interface{}) QueryBuilder

	OrderBy(col string, asc bool) QueryBuilder
	Limit(n int) QueryBuilder

	Insert(cols ...string) QueryBuilder
	Values(values ...interface{}) QueryBuilder
	Returning(cols ...string) QueryBuilder

	Update(table string) QueryBuilder
	Set(col string, value interface{}) QueryBuilder

	Build() (string, []interface{}, error)
}

type operation int

const (
	opSelect operation = iota
	opInsert
	opUpdate
)

type queryBuilder struct {
	op         operation
	schema     string
	table      string
	cols       []string
	distinctOn []string
	conditions []Condition
	values     InsertRows
	sets       []Assignment
	orderBy    []string
	limit      int
	returning  []string
}

func NewQueryBuilder(schema string) QueryBuilder {
	return &queryBuilder{
		schema: schema,
	}
}

func (q *queryBuilder) Select(cols ...string) QueryBuilder {
	q.op = opSelect
	q.cols = append(q.cols, cols...)
	return q
}

func (q *queryBuilder) DistinctOn(cols ...string) QueryBuilder {
	q.distinctOn = append(q.distinctOn, cols...)
	return q
}

func (q *queryBuilder) From(table string) QueryBuilder {
	q.table = table
	return q
}

func (q *queryBuilder) Into(table string) QueryBuilder {
	q.table = table
	return q
}

func (q *queryBuilder) Insert(cols ...string) QueryBuilder {
	q.op = opInsert
	q.cols = cols
	return q
}

func (q *queryBuilder) Values(values ...interface{}) QueryBuilder {
	q.values = append(q.values, values)
	return q
}

func (q *queryBuilder) Returning(cols ...string) QueryBuilder {
	q.returning = append(q.returning, cols...)
	return q
}

func (q *queryBuilder) Update(table string) QueryBuilder {
	q.op = opUpdate
	q.table = table
	return q
}

func (q *queryBuilder) Set(col string, value interface{}) QueryBuilder {
	q.sets = append(q.sets, Assignment{Column: col, Value: value})
	return q
}

func (q *queryBuilder) Where(clause string, args ...interface{}) QueryBuilder {
	return q.And(clause, args...)
}

func (q *queryBuilder) And(clause string, args ...interface{}) QueryBuilder {
	q.conditions = append(q.conditions, Condition{
		clause: clause,
		args:   args,
	})
	return q
}

func (q *queryBuilder) OrderBy(col string, asc bool) QueryBuilder {
	orderVector := "ASC"
	if !asc {
		orderVector = "DESC"
	}
	q.orderBy = append(q.orderBy, fmt.Sprintf("%s %s", col, orderVector))
	return q
}

func (q *queryBuilder) Limit(n int) QueryBuilder {
	q.limit = n
	return q
}

func (q *queryBuilder) Build() (string, []interface{}, error) {
	if q.table == "" {
		return "", nil, ErrNoTable
	}
	switch q.op {
	case opInsert:
		return q.buildInsert()
	case opUpdate:
		return q.buildUpdate()
	default:
		return q.buildSelect()
	}
}

func (q *queryBuilder) qualifiedTable() string {
	if q.schema == "" {
		return q.table
	}
	return q.schema + "." + q.table
}

func (q *queryBuilder) where(query string, args []interface{}) (string, []interface{}) {
	if len(q.conditions) == 0 {
		return query, args
	}
	condition, condArgs := buildCondition(q.conditions)
	return query + " WHERE " + condition, append(args, condArgs...)
}

func (q *queryBuilder) tail(query string) string {
	if len(q.orderBy) > 0 {
		query += " ORDER BY " + strings.Join(q.orderBy, ", ")
	}
	if q.limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.limit)
	}
	if len(q.returning) > 0 {
		query += " RETURNING " + strings.Join(q.returning, ", ")
	}
	return query
}

func (q *queryBuilder) buildSelect() (string, []interface{}, error) {
	if len(q.cols) == 0 {
		return "", nil, ErrNoColumns
	}
	query := "SELECT "
	if len(q.distinctOn) > 0 {
		query += fmt.Sprintf("DISTINCT ON (%s) ", strings.Join(q.distinctOn, ", "))
	}
	query += fmt.Sprintf("%s FROM %s", strings.Join(q.cols, ", "), q.qualifiedTable())

	query, args := q.where(query, nil)
	return q.tail(query), args, nil
}

func (q *queryBuilder) buildInsert() (string, []interface{}, error) {
	if len(q.cols) == 0 {
		return "", nil, ErrNoColumns
	}
	if len(q.values) == 0 || q.values.Width() != len(q.cols) {
		return "", nil, ErrColumnsCount
	}

	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(q.cols)), ", ") + ")"
	tuples := make([]string, len(q.values))
	args := make([]interface{}, 0, len(q.values)*len(q.cols))
	for i, row := range q.values {
		tuples[i] = placeholders
		args = append(args, row...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		q.qualifiedTable(), strings.Join(q.cols, ", "), strings.Join(tuples, ", "))
	return q.tail(query), args, nil
}

func (q *queryBuilder) buildUpdate() (string, []interface{}, error) {
	if len(q.sets) == 0 {
		return "", nil, ErrNoColumns
	}
	if len(q.conditions) == 0 {
		return "", nil, ErrNoConditions
	}

	setClause := make([]string, 0, len(q.sets))
	args := make([]interface{}, 0, len(q.sets))
	for _, s := range q.sets {
		setClause = append(setClause, s.Column+" = ?")
		args = append(args, s.Value)
	}

	query := fmt.Sprintf("UPDATE %s SET %s", q.qualifiedTable(), strings.Join(setClause, ", "))
	query, args = q.where(query, args)
	return q.tail(query), args, nil
}
