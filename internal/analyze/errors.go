// Package analyze compiles a parsed spec.TableSpec into its grouped form:
// relationships are classified one/many, transitive single-valued
// relationships are promoted to the root of their query group, and
// output paths are computed. See spec.md §4.2.
package analyze

import (
	"fmt"
	"strings"
)

// RepeatedJoinTableError reports that two promoted single-valued
// relationships within one query group target the same table.
type RepeatedJoinTableError struct {
	Source string
	Tables []string
}

func (e *RepeatedJoinTableError) Error() string {
	return fmt.Sprintf("repeated join table in group %q: %s appears more than once",
		e.Source, strings.Join(e.Tables, ", "))
}
