package pointsto

import "fmt"

// Severity classifies a Note, mirroring the three-level scheme godoctor's
// own log package uses for refactoring diagnostics.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Note is one diagnostic entry. Unlike a front-end contract violation, a
// Note is never fatal -- it records a point where the analysis had to
// widen a result rather than reject the input outright (spec.md §5, §7).
type Note struct {
	Severity Severity
	Message  string
}

// Notes accumulates precision-loss diagnostics over the lifetime of an
// Analysis.
type Notes struct {
	entries []Note
}

func (n *Notes) add(sev Severity, format string, args ...interface{}) {
	n.entries = append(n.entries, Note{Severity: sev, Message: fmt.Sprintf(format, args...)})
}

// Entries returns the accumulated notes in emission order.
func (n *Notes) Entries() []Note {
	out := make([]Note, len(n.entries))
	copy(out, n.entries)
	return out
}

// notePrecisionLoss records a silent-widening event. Its only caller is
// TypeSafe, for an offset that falls outside its aggregate; unknown-size
// variables, unions and casts are not logged. These never panic (spec.md
// §7's PrecisionLoss category) -- the analysis keeps going with a weaker
// result.
func (a *Analysis) notePrecisionLoss(format string, args ...interface{}) {
	a.notes.add(Warning, format, args...)
	a.stats.PrecisionLossEvents++
}
