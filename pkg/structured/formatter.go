package structured

import (
	"errors"

	"go.uber.org/zap"
)

// TextField is the minimal view of a form field the Formatter rewrites.
type TextField interface {
	Name() string
	Value() string
	SetValue(string)
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithLogger routes formatter diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Formatter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Formatter rewrites structured-data fields into the canonical layout. It is
// cosmetic only: content that fails to decode is left as typed.
type Formatter struct {
	logger *zap.Logger
}

// NewFormatter constructs a Formatter. Without options diagnostics are dropped.
func NewFormatter(options ...Option) *Formatter {
	f := &Formatter{logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f
}

// Normalize formats field in place and reports whether its content changed.
func (f *Formatter) Normalize(field TextField) bool {
	if field == nil {
		return false
	}
	current := field.Value()

	formatted, err := Format(current)
	if err != nil {
		if errors.Is(err, ErrEmpty) {
			return false
		}
		f.log().Warn("structured field left unformatted",
			zap.String("field", field.Name()),
			zap.Error(err),
		)
		return false
	}
	if formatted == current {
		return false
	}
	field.SetValue(formatted)
	return true
}

// NormalizeAll formats every field and returns how many changed.
func (f *Formatter) NormalizeAll(fields ...TextField) int {
	changed := 0
	for _, field := range fields {
		if f.Normalize(field) {
			changed++
		}
	}
	return changed
}

func (f *Formatter) log() *zap.Logger {
	if f == nil || f.logger == nil {
		return zap.NewNop()
	}
	return f.logger
}
