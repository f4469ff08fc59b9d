package plan

import (
	"fmt"
	"strings"

	"entiq/internal/spec"
)

// UnorderableJoinsError reports that the fixed-point join-ordering scan
// failed to make progress: the group's single-valued relationships form
// a cycle, or reference a table outside the group.
type UnorderableJoinsError struct {
	Remaining []*spec.RelSpec
}

func (e *UnorderableJoinsError) Error() string {
	names := make([]string, len(e.Remaining))
	for i, r := range e.Remaining {
		names[i] = r.SourceTable.Name + "->" + r.Target.Name
	}
	return fmt.Sprintf("unorderable joins: %s", strings.Join(names, ", "))
}

// OrderJoins sequences a group's single-valued relationships so that
// every join's left-side table is already available by the time it is
// emitted: a fixed-point queue scan starting from {root.Name}.
func OrderJoins(root *spec.TableSpec) ([]*spec.RelSpec, error) {
	queue := append([]*spec.RelSpec(nil), root.Relationships.One...)
	available := map[string]bool{root.Name: true}
	ordered := make([]*spec.RelSpec, 0, len(queue))

	stall := 0
	for len(queue) > 0 {
		rel := queue[0]
		queue = queue[1:]

		if available[rel.SourceTable.Name] {
			ordered = append(ordered, rel)
			available[rel.Target.Name] = true
			stall = 0
			continue
		}

		queue = append(queue, rel)
		stall++
		if stall > len(queue) {
			return nil, &UnorderableJoinsError{Remaining: queue}
		}
	}
	return ordered, nil
}
