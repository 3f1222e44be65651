// Package logging assembles the slog loggers used by the uhdrsplit CLI.
//
// It owns the console and JSON handlers and level parsing. Console output is
// coloured only when written to a terminal. NewNop serves tests and wiring
// code that needs a logger but no output.
package logging
