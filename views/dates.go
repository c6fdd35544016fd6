package views

import (
	"fmt"
	"time"
)

var monthsPtBR = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// FormatDate formats t as "d MMM y" with Brazilian Portuguese month names,
// e.g. "15 mar 2021".
func FormatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%d %s %d", t.Day(), monthsPtBR[t.Month()-1], t.Year())
}

// FormatEdited formats the edit notice of a republished post,
// e.g. "* editado em 19 mar 2021, às 15:49".
func FormatEdited(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return "* editado em " + FormatDate(t, nil) + ", às " + t.Format("15:04")
}

// isoDate is the machine-readable datetime attribute of <time>.
func isoDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
