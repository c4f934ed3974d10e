package runtime

import (
	"github.com/sirupsen/logrus"

	"github.com/vesper-lang/vesper/internal/modules"
	"github.com/vesper-lang/vesper/internal/value"
)

// config is the functional-options bag every Runtime is built from,
// grounded on internal/lexer's LexerOption/WithPreserveComments idiom
// applied one level up, at the realm rather than
// the single-file scan.
type config struct {
	logger               *logrus.Logger
	maxMarkStack         int
	gcThreshold          int
	stackLimit           int
	resolver             modules.Loader
	unhandledRejectionFn func(reason value.Value)
}

// Option configures a Runtime at construction time.
type Option func(*config)

// WithLogger swaps in a caller-provided logger instead of the default
// logrus.New() text-formatted logger.
func WithLogger(l *logrus.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMaxMarkStack records n in the Runtime's config. New does not pass it
// to internal/gc, whose mark-stack soft cap before a rescan pass is fixed,
// so the value has no effect on collection.
func WithMaxMarkStack(n int) Option {
	return func(c *config) { c.maxMarkStack = n }
}

// WithGCThreshold records n in the Runtime's config. New does not pass it
// to internal/gc, whose collection trigger (live size over 4/3 of the last
// post-collection live size, once 64 KiB are allocated) is fixed, so the
// value has no effect on collection.
func WithGCThreshold(n int) Option {
	return func(c *config) { c.gcThreshold = n }
}

// WithStackLimit overrides internal/vm's recursion-depth guard. Zero
// means "use the package default".
func WithStackLimit(n int) Option {
	return func(c *config) { c.stackLimit = n }
}

// WithModuleResolver supplies the Loader internal/modules uses to turn an
// import specifier into source text. Without this option, Runtime uses a
// filesystem-rooted resolver (see loader.go).
func WithModuleResolver(l modules.Loader) Option {
	return func(c *config) { c.resolver = l }
}

// WithUnhandledRejectionHook registers a callback invoked when the job
// queue drains with a promise still rejected and no handler ever attached
// (an unhandled-rejection report).
func WithUnhandledRejectionHook(fn func(reason value.Value)) Option {
	return func(c *config) { c.unhandledRejectionFn = fn }
}
