// Package selectopt builds WHERE fragments for the id-selection modes
// the facade exposes (:ids, :update_table, :delta, :expiry). See
// spec.md §6, §4.4.
//
// Each builder takes a small typed option struct and returns a SQL
// fragment plus its bound arguments — the same "typed struct in, SQL
// fragment + args out" shape as internal/plan, so the planner never has
// to introspect the selection kind.
package selectopt

import (
	"errors"
	"fmt"
	"time"

	"entiq/internal/sqltime"
)

// Selection bundles the mutually exclusive id-selection modes. At most
// one is applied per query; precedence when several are set is
// IDs > UpdateTable > Delta > Expiry.
type Selection struct {
	IDs         []any
	UpdateTable *UpdateTable
	Delta       *Delta
	Expiry      *Expiry
}

// UpdateTable selects rows of Table whose Updated column is newer than
// Date. Date is optional: nil selects every row of Table.
type UpdateTable struct {
	Table   string
	ID      string
	Updated string
	Date    *time.Time
}

// Delta selects rows where any of Columns (each "table/col") is newer
// than Date.
type Delta struct {
	Columns []string
	Date    time.Time
}

// Expiry selects rows where Column (a "table/col" datetime) is newer
// than now - Age.
type Expiry struct {
	Column string
	Age    AgeSpec
}

// AgeSpec is either a day count (relative to now) or an absolute
// instant. Exactly one must be set.
type AgeSpec struct {
	Days *int
	At   *time.Time
}

// ErrUpdateTableMissingUpdatedColumn is returned when an UpdateTable
// selection supplies a Date but no Updated column to compare it
// against — the source leaves this combination undefined; entiq rejects
// it rather than guessing which column to filter on.
var ErrUpdateTableMissingUpdatedColumn = errors.New("selectopt: UpdateTable.Date set without Updated column")

// Where builds the WHERE fragment and arguments for the
// highest-precedence mode set on sel. rootIDColumn is the qualified id
// column the IDs mode filters against; the other modes filter on the
// columns they name. An empty Selection returns ("", nil): no filter,
// select every id.
func Where(rootIDColumn string, sel Selection) (where string, args []any, err error) {
	switch {
	case len(sel.IDs) > 0:
		return idsWhere(rootIDColumn, sel.IDs)
	case sel.UpdateTable != nil:
		return updateTableWhere(*sel.UpdateTable)
	case sel.Delta != nil:
		return deltaWhere(*sel.Delta)
	case sel.Expiry != nil:
		return expiryWhere(*sel.Expiry)
	default:
		return "", nil, nil
	}
}

func idsWhere(idColumn string, ids []any) (string, []any, error) {
	frag := idColumn + " IN (" + placeholders(len(ids)) + ")"
	return frag, ids, nil
}

func updateTableWhere(ut UpdateTable) (string, []any, error) {
	if ut.Date != nil && ut.Updated == "" {
		return "", nil, ErrUpdateTableMissingUpdatedColumn
	}
	if ut.Date == nil {
		return "", nil, nil
	}
	frag := fmt.Sprintf("%s.%s > ?", ut.Table, ut.Updated)
	return frag, []any{sqltime.Format(*ut.Date)}, nil
}

func deltaWhere(d Delta) (string, []any, error) {
	if len(d.Columns) == 0 {
		return "", nil, nil
	}
	frag := ""
	args := make([]any, 0, len(d.Columns))
	for i, col := range d.Columns {
		if i > 0 {
			frag += " OR "
		}
		table, name := splitQualified(col)
		frag += fmt.Sprintf("%s.%s > ?", table, name)
		args = append(args, sqltime.Format(d.Date))
	}
	return frag, args, nil
}

func expiryWhere(e Expiry) (string, []any, error) {
	table, name := splitQualified(e.Column)
	cutoff, err := e.Age.cutoff()
	if err != nil {
		return "", nil, err
	}
	frag := fmt.Sprintf("%s.%s > ?", table, name)
	return frag, []any{sqltime.Format(cutoff)}, nil
}

func (a AgeSpec) cutoff() (time.Time, error) {
	switch {
	case a.At != nil:
		return *a.At, nil
	case a.Days != nil:
		return time.Now().AddDate(0, 0, -*a.Days), nil
	default:
		return time.Time{}, errors.New("selectopt: AgeSpec has neither Days nor At set")
	}
}

func splitQualified(qualified string) (table, col string) {
	for i, r := range qualified {
		if r == '/' {
			return qualified[:i], qualified[i+1:]
		}
	}
	return "", qualified
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, n*2-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, '?')
	}
	return string(out)
}
