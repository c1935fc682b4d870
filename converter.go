package rectab

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"time"
)

// DefaultFloatPattern is applied to floating point and decimal fields that
// have no explicit format.
const DefaultFloatPattern = "%.2f"

const nullText = "null"

// Kind is the shape of a field value. It selects the default converter.
type Kind int

const (
	KindOther Kind = iota
	KindText
	KindInteger
	KindFloat
	KindDecimal
	KindBool
	KindTemporal
	KindDuration
)

var kindNames = map[Kind]string{
	KindOther:    "other",
	KindText:     "text",
	KindInteger:  "integer",
	KindFloat:    "float",
	KindDecimal:  "decimal",
	KindBool:     "bool",
	KindTemporal: "temporal",
	KindDuration: "duration",
}

// String returns the kind name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var defaultPatterns = map[Kind]string{
	KindFloat:   DefaultFloatPattern,
	KindDecimal: DefaultFloatPattern,
}

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
	bigFloatType = reflect.TypeFor[big.Float]()
)

// KindOf returns the kind of values of type t. Pointer types report the kind
// of their element.
func KindOf(t reflect.Type) Kind {
	if t == nil {
		return KindOther
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t {
	case timeType:
		return KindTemporal
	case durationType:
		return KindDuration
	case bigFloatType:
		return KindDecimal
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return KindInteger
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.String:
		return KindText
	case reflect.Bool:
		return KindBool
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return KindText
		}
	}
	return KindOther
}

// Converter turns a raw field value into display text. The zero value is the
// default converter.
type Converter struct {
	pattern string
}

// DefaultConverter returns the converter that prints a value's natural text
// form.
func DefaultConverter() Converter { return Converter{} }

// PatternConverter returns a converter that applies an fmt pattern. For
// [time.Time] values a pattern without a % verb is used as a time layout; for
// other values it is printed as is ("n/a"). An empty pattern yields the
// default converter.
func PatternConverter(pattern string) Converter { return Converter{pattern: pattern} }

// DefaultConverterFor returns the converter used for fields of kind k that
// carry no explicit format.
func DefaultConverterFor(k Kind) Converter {
	return PatternConverter(defaultPatterns[k])
}

// Pattern returns the format pattern, or "" for the default converter.
func (c Converter) Pattern() string { return c.pattern }

// IsDefault reports whether c is the default converter.
func (c Converter) IsDefault() bool { return c.pattern == "" }

// String describes the converter.
func (c Converter) String() string {
	if c.IsDefault() {
		return "default"
	}
	return fmt.Sprintf("pattern(%q)", c.pattern)
}

// Convert returns the display text of v.
func (c Converter) Convert(v any) (string, error) {
	v, ok := indirect(v)
	if !ok {
		return nullText, nil
	}
	if c.IsDefault() {
		return naturalText(v), nil
	}
	if t, ok := v.(time.Time); ok && !strings.Contains(c.pattern, "%") {
		return t.Format(c.pattern), nil
	}
	out := fmt.Sprintf(c.pattern, v)
	// A pattern that consumes no operand prints as literal text.
	if i := strings.LastIndex(out, "%!(EXTRA "); i >= 0 && !strings.Contains(out[:i], "%!") {
		out = out[:i]
	}
	if strings.Contains(out, "%!") && !strings.Contains(naturalText(v), "%!") {
		return "", fmt.Errorf("%w: pattern %q cannot format %T value %v", ErrFormat, c.pattern, v, v)
	}
	return out, nil
}

func naturalText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	}
	return fmt.Sprint(v)
}

// indirect follows pointers until it reaches a non-pointer value or a pointer
// whose formatting methods have pointer receivers (*big.Float, most error
// types). It reports false for nil values.
func indirect(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for {
		switch rv.Kind() {
		case reflect.Pointer:
			if rv.IsNil() {
				return nil, false
			}
			if formatsItself(rv.Type()) && !formatsItself(rv.Type().Elem()) {
				return rv.Interface(), true
			}
			rv = rv.Elem()
		case reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			if rv.IsNil() {
				return nil, false
			}
			return rv.Interface(), true
		default:
			if f, ok := rv.Interface().(big.Float); ok {
				return &f, true
			}
			return rv.Interface(), true
		}
	}
}

var (
	formatterType = reflect.TypeFor[fmt.Formatter]()
	stringerType  = reflect.TypeFor[fmt.Stringer]()
)

func formatsItself(t reflect.Type) bool {
	return t.Implements(formatterType) || t.Implements(stringerType) || t.Implements(errorType)
}
