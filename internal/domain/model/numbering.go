//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"fmt"
	"time"
)

const (
	InvoiceNumberPrefix  = "INV"
	DiagnoseNumberPrefix = "DIAG"
)

// FormatDocumentNumber renders PREFIX/YYYY/MM/DD/NN for the seq-th document of day.
// seq is 1-based; values past 99 simply widen.
func FormatDocumentNumber(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s/%04d/%02d/%02d/%02d", prefix, day.Year(), int(day.Month()), day.Day(), seq)
}

// DayBounds returns the [start, end) instants of the calendar day containing t in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
