// Package sqltime formats time.Time values for the MySQL dialect entiq
// targets, per spec.md §6. It is a leaf package so both
// internal/selectopt (WHERE fragments) and internal/driver
// (driver.FormatDateTime, the seam spec.md calls out as an external
// collaborator) can depend on it without a cycle.
package sqltime

import "time"

const layout = "2006-01-02 15:04:05"

// Format renders t as yyyy-MM-dd HH:mm:ss.
func Format(t time.Time) string {
	return t.Format(layout)
}
