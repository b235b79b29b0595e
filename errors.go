package pointsto

import "fmt"

// ContractError signals a violation of the front-end contract (spec.md
// §7): a constraint referencing an unknown variable, a malformed field
// chain, or similar programmer error. The solver never returns this as an
// error value -- contract violations are bugs, and panic immediately with
// a clear message, matching the "abort with message" policy of §7.
type ContractError struct{ msg string }

func (e *ContractError) Error() string { return "pointsto: contract violation: " + e.msg }

func contractErrorf(format string, args ...interface{}) error {
	return &ContractError{msg: fmt.Sprintf(format, args...)}
}

// ExhaustionError signals that the analysis could not obtain memory it
// needed. Like ContractError, this is only ever raised via panic; there
// is no recovery path inside the solver itself (spec.md §5, §7).
type ExhaustionError struct{ msg string }

func (e *ExhaustionError) Error() string { return "pointsto: resource exhaustion: " + e.msg }
