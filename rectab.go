package rectab

import (
	"errors"

	"go.uber.org/zap"
)

// Sentinel errors for programmatic error handling.
var (
	ErrInvalidAccessorName = errors.New("invalid accessor name")
	ErrAccessorSignature   = errors.New("invalid accessor signature")
	ErrAccessInvocation    = errors.New("accessor invocation failed")
	ErrUnknownColumn       = errors.New("unknown column")
	ErrTypeMismatch        = errors.New("entity type mismatch")
	ErrFormat              = errors.New("format mismatch")
)

// ColumnGap is the number of spaces between adjacent columns.
const ColumnGap = 2

// --- Optional Interfaces ---

// The optional interfaces may be implemented with value or pointer receivers;
// both apply to value and pointer entities.

// Columned declares an explicit column order for an entity type.
// The returned names select and order the fields; every name must match a
// field. Default: discovery order, which is not guaranteed.
type Columned interface {
	Columns() []string
}

// Fielder declares the fields of an entity type explicitly, replacing
// discovery of Get methods.
type Fielder interface {
	Fields() []Field
}

// Aligned sets per-column alignment, indexed in final column order.
// Default: AlignRight. Missing entries are right-aligned.
type Aligned interface {
	Alignments() []Alignment
}

// Alignment controls column text alignment.
type Alignment int

const (
	AlignRight Alignment = iota
	AlignLeft
	AlignCenter
)

// --- Options ---

// Option configures schema construction and rendering.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	columns []string
}

// WithLogger sets the logger that receives debug entries about discovered
// fields and rendered tables. Default: no logging.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithColumns fixes the column order for a single call. It takes precedence
// over [Columned].
func WithColumns(names ...string) Option {
	return func(o *options) {
		o.columns = append([]string(nil), names...)
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
