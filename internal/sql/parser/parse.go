package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tuannm99/flatsql/internal/record"
)

var (
	ErrBadQuery           = errors.New("flatsql: failed to parse the query")
	ErrEmptyQuery         = fmt.Errorf("%w: empty statement", ErrBadQuery)
	ErrInvalidDBAction    = errors.New("flatsql: invalid database action")
	ErrInvalidTableAction = errors.New("flatsql: invalid table action")
	ErrInvalidCondition   = errors.New("flatsql: invalid condition")
	ErrInvalidOperator    = errors.New("flatsql: invalid operator")
)

// All patterns are anchored on the trimmed statement and accept one
// optional trailing ';'.
var (
	reShow        = regexp.MustCompile(`(?is)^show\s+(.+?)\s*;?$`)
	reDatabase    = regexp.MustCompile(`(?is)^(\S+)\s+database\s+([^\s;]+)\s*;?$`)
	reCreateTable = regexp.MustCompile(`(?is)^create\s+table\s+([^\s(;]+)\s*\((.*)\)\s*;?$`)
	reTableAction = regexp.MustCompile(`(?is)^(\S+)\s+table\s+([^\s;]+)\s*;?$`)
	reDropColumn  = regexp.MustCompile(`(?is)^alter\s+table\s+([^\s;]+)\s+drop\s+column\s+([^\s;]+)\s*;?$`)
	reAlterColumn = regexp.MustCompile(`(?is)^alter\s+table\s+([^\s;]+)\s+alter\s+column\s+([^\s;]+)\s+(.+?)\s*;?$`)
	reAddColumn   = regexp.MustCompile(`(?is)^alter\s+table\s+([^\s;]+)\s+add\s+([^\s;]+)\s+(.+?)\s*;?$`)
	reSelect      = regexp.MustCompile(`(?is)^select\s+(.+?)\s+from\s+([^\s;]+)(?:\s+where\s+(.+?))?\s*;?$`)
	reInsert      = regexp.MustCompile(`(?is)^insert\s+into\s+([^\s(;]+)\s*(?:\(([^()]*)\))?\s*values\s*((?:\([^()]*\)[\s,]*)+);?$`)
	reDelete      = regexp.MustCompile(`(?is)^delete\s+from\s+([^\s;]+)\s+where\s+(.+?)\s*;?$`)

	reTuple     = regexp.MustCompile(`\(([^()]*)\)`)
	reValue     = regexp.MustCompile(`[^,()\s]+`)
	reCondition = regexp.MustCompile(`(?s)^([^\s=!<>]+)\s*([=!<>]+)\s*(.+)$`)
)

// rule recognizes one statement form. matched is false when sql is not of
// that form; err is set when it is but cannot be built.
type rule func(sql string) (q Query, matched bool, err error)

// rules are tried in order and the first match wins. Several forms overlap
// (CREATE TABLE vs "<action> TABLE <name>"), so the order is part of the
// grammar.
var rules = []rule{
	parseShow,
	parseDatabase,
	parseCreateTable,
	parseTableAction,
	parseDropColumn,
	parseAlterColumn,
	parseAddColumn,
	parseSelect,
	parseInsert,
	parseDelete,
}

// Parse turns a single statement into a Query.
func Parse(sql string) (Query, error) {
	s := strings.TrimSpace(sql)
	if s == "" {
		return nil, ErrEmptyQuery
	}

	for _, r := range rules {
		q, ok, err := r(s)
		if err != nil {
			return nil, err
		}
		if ok {
			return q, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrBadQuery, s)
}

func parseShow(sql string) (Query, bool, error) {
	m := reShow.FindStringSubmatch(sql)
	if m == nil {
		return nil, false, nil
	}

	switch strings.ToLower(strings.Join(strings.Fields(m[1]), " ")) {
	case "databases":
		return &ShowDatabasesQuery{}, true, nil
	case "current database":
		return &ShowCurrentDatabaseQuery{}, true, nil
	case "tables":
		return &ShowTablesQuery{}, true, nil
	default:
		return nil, true, fmt.Errorf("%w: %q", ErrBadQuery, sql)
	}
}

func parseDatabase(sql string) (Query, bool, error) {
	m := reDatabase.FindStringSubmatch(sql)
	if m == nil {
		return nil, false, nil
	}

	var action DatabaseAction
	switch strings.ToLower(m[1]) {
	case "create":
		action = CreateDatabase
	case "drop":
		action = DropDatabase
	case "use":
		action = UseDatabase
	default:
		return nil, true, fmt.Errorf("%w: %s", ErrInvalidDBAction, m[1])
	}
	return &DatabaseQuery{Name: m[2], Action: action}, true, nil
}

func parseCreateTable(sql string) (Query, bool, error) {
	m := reCreateTable.FindStringSubmatch(sql)
	if m == nil {
		return nil, false, nil
	}

	op := &CreateTable{}
	for _, entry := range splitTopLevel(m[2]) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			// trailing comma
			continue
		}

		i := strings.IndexFunc(entry, isSpace)
		if i < 0 {
			return nil, true, fmt.Errorf("%w: column %q has no type", ErrBadQuery, entry)
		}

		dt, err := record.ParseType(entry[i:])
		if err != nil {
			return nil, true, err
		}
		op.Columns = append(op.Columns, entry[:i])
		op.Types = append(op.Types, dt)
	}

	if len(op.Columns) == 0 {
		return nil, true, fmt.Errorf("%w: empty column list", ErrBadQuery)
	}
	return &TableQuery{Name: m[1], Op: op}, true, nil
}

func parseTableAction(sql string) (Query, bool, error) {
	m := reTableAction.FindStringSubmatch(sql)
	if m == nil {
		return nil, false, nil
	}

	switch strings.ToLower(m[1]) {
	case "drop":
		return &TableQuery{Name: m[2], Op: &DropTable{}}, true, nil
	case "truncate":
		return &TableQuery{Name: m[2], Op: &TruncateTable{}}, true, nil
	default:
		return nil, true, fmt.Errorf("%w: %s", ErrInvalidTableAction, m[1])
	}
}

func parseDropColumn(sql string) (Query, bool, error) {
	m := reDropColumn.FindStringSubmatch(sql)
	if m == nil {
		return nil, false, nil
	}
	return &TableQuery{Name: m[1], Op: &DropColumn{Column: m[2]}}, true, nil
}

func parseAlterColumn(sql string) (Query, bool, error) {
	m := reAlterColumn.FindStringSubmatch(sql)
	if m == nil {
		return nil, false, nil
	}

	dt, err := record.ParseType(m[3])
	if err != nil {
		return nil, true, err
	}
	return &TableQuery{Name: m[1], Op: &AlterColumn{Column: m[2], Type: dt}}, true, nil
}

func parseAddColumn(sql string) (Query, bool, error) {
	m := reAddColumn.FindStringSubmatch(sql)
	if m == nil {
		return nil, false, nil
	}

	dt, err := record.ParseType(m[3])
	if err != nil {
		return nil, true, err
	}
	return &TableQuery{Name: m[1], Op: &AddColumn{Column: m[2], Type: dt}}, true, nil
}

func parseSelect(sql string) (Query, bool, error) {
	m := reSelect.FindStringSubmatch(sql)
	if m == nil {
		return nil, false, nil
	}

	op := &Select{Columns: parseColumns(m[1])}
	if m[3] != "" {
		cond, err := ParseCondition(m[3])
		if err != nil {
			return nil, true, err
		}
		op.Condition = &cond
	}
	return &TableQuery{Name: m[2], Op: op}, true, nil
}

func parseInsert(sql string) (Query, bool, error) {
	idx := reInsert.FindStringSubmatchIndex(sql)
	if idx == nil {
		return nil, false, nil
	}

	op := &Insert{Columns: AllColumns()}
	if idx[4] >= 0 {
		op.Columns = Columns(splitValues(sql[idx[4]:idx[5]])...)
	}
	for _, tuple := range reTuple.FindAllStringSubmatch(sql[idx[6]:idx[7]], -1) {
		op.Values = append(op.Values, splitValues(tuple[1]))
	}
	return &TableQuery{Name: sql[idx[2]:idx[3]], Op: op}, true, nil
}

func parseDelete(sql string) (Query, bool, error) {
	m := reDelete.FindStringSubmatch(sql)
	if m == nil {
		return nil, false, nil
	}

	cond, err := ParseCondition(m[2])
	if err != nil {
		return nil, true, err
	}
	return &TableQuery{Name: m[1], Op: &Delete{Condition: cond}}, true, nil
}

// ParseCondition parses "<key><op><value>", e.g. "age >= 12" or
// "name='jone'". Matching quotes around the value are stripped.
func ParseCondition(s string) (Condition, error) {
	m := reCondition.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Condition{}, fmt.Errorf("%w: %q", ErrInvalidCondition, s)
	}

	var op Operator
	switch m[2] {
	case "=":
		op = Eq
	case "!=":
		op = NotEq
	case ">":
		op = Gt
	case ">=":
		op = GtEq
	case "<":
		op = Lt
	case "<=":
		op = LtEq
	default:
		return Condition{}, fmt.Errorf("%w: %s", ErrInvalidOperator, m[2])
	}

	return Condition{
		Key:      m[1],
		Operator: op,
		Value:    trimQuotes(strings.TrimSpace(m[3])),
	}, nil
}
