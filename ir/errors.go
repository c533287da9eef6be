package ir

import (
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

// fatalf reports a programmer error: a violated graph invariant, an
// out-of-range edge index, or a cardinality mismatch that no recovery
// path exists for. It panics with a wrapped error rather than returning
// one, mirroring the abort-on-assert discipline the rest of the pipeline
// expects from this package.
func fatalf(format string, args ...any) {
	panic(errors.Errorf(format, args...))
}

// skipInline logs a non-fatal inlining diagnostic and leaves the Call
// untouched, per the domain-expected-diagnostic classification: these are
// not bugs, just calls this run chose not to substitute.
func skipInline(logger *slog.Logger, call *Node, cause error) {
	if logger == nil {
		return
	}
	logger.Debug("skipping inline",
		"call", call.ID(),
		"callee", call.CallName(),
		"reason", cause)
}

// errCalleeNotFound, errBudgetExceeded and errNoInlineMarker are the causes
// attached to skipInline's "reason" attribute.
var (
	errCalleeNotFound  = fmt.Errorf("callee not registered")
	errBudgetExceeded  = fmt.Errorf("inline budget exceeded")
	errNoInlineMarker  = fmt.Errorf("callee marked __noinline__")
)
