// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder writing to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - convenience functions (DebugKV, WarnKV, etc.).
//
// Stdout is reserved for build directives, so nothing here ever writes to it.
package logger
