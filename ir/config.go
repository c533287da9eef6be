package ir

import "log/slog"

// Config holds the small set of knobs threaded through a Graph and its
// passes: a register pool size, how large a callee the inliner is willing
// to substitute, and where diagnostic logging goes.
type Config struct {
	// NumRegisters records a register pool size (registers x0..x<N-1>);
	// numRegisters reports 3 when it is zero. LinearScanRegAlloc does not
	// read it: its pool size is the numRegs argument of
	// NewLinearScanRegAlloc.
	NumRegisters int

	// InlineBudget caps the total node count of callees substituted into
	// one caller. Defaults to 20 when zero.
	InlineBudget int

	// Logger receives structured diagnostics (inline skip reasons, at Debug
	// level). Defaults to slog.Default().
	Logger *slog.Logger
}

const (
	defaultNumRegisters = 3
	defaultInlineBudget = 20
)

func (c *Config) numRegisters() int {
	if c == nil || c.NumRegisters <= 0 {
		return defaultNumRegisters
	}
	return c.NumRegisters
}

func (c *Config) inlineBudget() int {
	if c == nil || c.InlineBudget <= 0 {
		return defaultInlineBudget
	}
	return c.InlineBudget
}

func (c *Config) logger() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
