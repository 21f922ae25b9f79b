package directive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/oshokin/git-revision/internal/logger"
)

// Format selects how directives are rendered.
type Format string

const (
	// FormatCargo renders cargo build-script directives.
	FormatCargo Format = "cargo"
	// FormatLdflags renders a `go build -ldflags` -X argument.
	FormatLdflags Format = "ldflags"
)

// DefaultSymbol is the Go variable set by the ldflags format.
const DefaultSymbol = "main.GitRevision"

// ErrUnknownFormat is returned for unsupported output formats.
var ErrUnknownFormat = errors.New("unknown output format")

// Compile-time check that *Format can back a command-line flag.
var _ pflag.Value = (*Format)(nil)

// ParseFormat validates s as a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCargo, FormatLdflags:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// String implements pflag.Value.
func (f *Format) String() string {
	return string(*f)
}

// Set implements pflag.Value.
func (f *Format) Set(s string) error {
	parsed, err := ParseFormat(s)
	if err != nil {
		return err
	}

	*f = parsed

	return nil
}

// Type implements pflag.Value.
func (f *Format) Type() string {
	return "format"
}

// Emitter receives directives produced while resolving a revision.
// Every method returns the error of the underlying sink write.
type Emitter interface {
	// RerunIfChanged asks the build to re-run resolution when path changes.
	RerunIfChanged(path string) error
	// SetEnv defines a build-time constant.
	SetEnv(name, value string) error
	// Warning reports a recoverable problem to the build log.
	Warning(message string) error
}

// New returns the emitter for format writing to w.
// The symbol is only used by the ldflags format.
//
//nolint:ireturn // Callers pick the rendering at runtime.
func New(ctx context.Context, format Format, w io.Writer, symbol string) (Emitter, error) {
	switch format {
	case FormatCargo, "":
		return NewCargoEmitter(w), nil
	case FormatLdflags:
		return NewLdflagsEmitter(ctx, w, symbol), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// CargoEmitter writes cargo build-script directives, one per line.
type CargoEmitter struct {
	w io.Writer
}

// NewCargoEmitter creates an emitter writing to w.
func NewCargoEmitter(w io.Writer) *CargoEmitter {
	return &CargoEmitter{w: w}
}

// RerunIfChanged writes a cargo:rerun-if-changed directive.
func (e *CargoEmitter) RerunIfChanged(path string) error {
	return e.writeln("cargo:rerun-if-changed=" + path)
}

// SetEnv writes a cargo:rustc-env directive.
func (e *CargoEmitter) SetEnv(name, value string) error {
	return e.writeln("cargo:rustc-env=" + name + "=" + value)
}

// Warning writes a cargo:warning directive.
// Line breaks in message are replaced so the warning stays one directive.
func (e *CargoEmitter) Warning(message string) error {
	return e.writeln("cargo:warning=" + singleLine(message))
}

func (e *CargoEmitter) writeln(line string) error {
	if _, err := io.WriteString(e.w, line+"\n"); err != nil {
		return fmt.Errorf("write directive: %w", err)
	}

	return nil
}

// LdflagsEmitter renders the revision as a linker -X flag.
// Go builds have no cache invalidation hook, so rerun directives are dropped,
// and warnings go to the log rather than into the flag string.
type LdflagsEmitter struct {
	//nolint:containedctx // Warnings are logged with the caller's scoped logger.
	ctx    context.Context
	w      io.Writer
	symbol string
}

// NewLdflagsEmitter creates an emitter writing -X '<symbol>=<value>' to w.
func NewLdflagsEmitter(ctx context.Context, w io.Writer, symbol string) *LdflagsEmitter {
	if symbol == "" {
		symbol = DefaultSymbol
	}

	return &LdflagsEmitter{
		ctx:    ctx,
		w:      w,
		symbol: symbol,
	}
}

// RerunIfChanged is a no-op for Go builds.
func (e *LdflagsEmitter) RerunIfChanged(path string) error {
	logger.DebugKV(e.ctx, "Ignoring rerun directive", "path", path)
	return nil
}

// SetEnv writes the -X flag. The constant name is not part of the output:
// the configured symbol decides which variable receives the value.
func (e *LdflagsEmitter) SetEnv(name, value string) error {
	logger.DebugKV(e.ctx, "Rendering linker flag", "constant", name, "symbol", e.symbol)

	if _, err := fmt.Fprintf(e.w, "-X '%s=%s'\n", e.symbol, value); err != nil {
		return fmt.Errorf("write linker flag: %w", err)
	}

	return nil
}

// Warning logs message at warn level.
func (e *LdflagsEmitter) Warning(message string) error {
	logger.Warn(e.ctx, message)
	return nil
}

// singleLine collapses line breaks into spaces.
func singleLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
