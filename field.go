package rectab

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// AccessorPrefix starts the name of every accessor a field name can be
// derived from.
const AccessorPrefix = "Get"

// Accessor reads one raw value from an entity.
type Accessor func(entity any) (any, error)

// Field is one column of a [Schema]: a name, the accessor reading its value
// and the converter printing it. Fields are immutable.
type Field struct {
	name     string
	accessor string
	kind     Kind
	get      Accessor
	conv     Converter
}

// NewField returns a field with an explicit name. A non-empty format selects a
// pattern converter; otherwise the default converter for kind is used.
func NewField(name string, kind Kind, get Accessor, format string) Field {
	conv := DefaultConverterFor(kind)
	if format != "" {
		conv = PatternConverter(format)
	}
	return Field{name: name, kind: kind, get: get, conv: conv}
}

// FieldFromAccessor returns a field whose name is derived from accessorName:
// the [AccessorPrefix] is removed and the first remaining letter lower-cased.
func FieldFromAccessor(accessorName string, kind Kind, get Accessor, format string) (Field, error) {
	name, err := FieldName(accessorName)
	if err != nil {
		return Field{}, err
	}
	f := NewField(name, kind, get, format)
	f.accessor = accessorName
	return f, nil
}

// FieldName derives a field name from an accessor name (GetFilmID → filmID).
func FieldName(accessorName string) (string, error) {
	rest, ok := strings.CutPrefix(accessorName, AccessorPrefix)
	if !ok || rest == "" {
		return "", fmt.Errorf("%w: %q must start with %q followed by a name", ErrInvalidAccessorName, accessorName, AccessorPrefix)
	}
	return lowerFirst(rest), nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

// Column returns a field reading V from entities of type T. The kind is taken
// from V. An optional format overrides the kind's default converter.
func Column[T, V any](name string, get func(T) V, format ...string) Field {
	return NewField(name, KindOf(reflect.TypeFor[V]()), typedAccessor(get), firstOr(format))
}

// Getter is like [Column] but derives the field name from accessorName, the
// way discovered fields are named.
func Getter[T, V any](accessorName string, get func(T) V, format ...string) (Field, error) {
	return FieldFromAccessor(accessorName, KindOf(reflect.TypeFor[V]()), typedAccessor(get), firstOr(format))
}

func typedAccessor[T, V any](get func(T) V) Accessor {
	return func(entity any) (any, error) {
		e, ok := asEntity[T](entity)
		if !ok {
			return nil, fmt.Errorf("%w: accessor wants %v, got %T", ErrTypeMismatch, reflect.TypeFor[T](), entity)
		}
		return get(e), nil
	}
}

// asEntity converts entity to T. A non-nil *T is dereferenced, and a U value
// is copied behind a new pointer when T is *U.
func asEntity[T any](entity any) (T, bool) {
	if e, ok := entity.(T); ok {
		return e, true
	}
	if p, ok := entity.(*T); ok && p != nil {
		return *p, true
	}
	var zero T
	want := reflect.TypeFor[T]()
	rv := reflect.ValueOf(entity)
	if want.Kind() != reflect.Pointer || !rv.IsValid() || rv.Type() != want.Elem() {
		return zero, false
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return p.Interface().(T), true
}

func firstOr(format []string) string {
	if len(format) > 0 {
		return format[0]
	}
	return ""
}

// Name returns the column name.
func (f Field) Name() string { return f.name }

// Accessor returns the name of the accessor the field was derived from, or ""
// for fields built with an explicit name.
func (f Field) Accessor() string { return f.accessor }

// Kind returns the declared value kind.
func (f Field) Kind() Kind { return f.kind }

// Converter returns the converter used for display text.
func (f Field) Converter() Converter { return f.conv }

// WithFormat returns a copy of f that prints values with format. An empty
// format returns f unchanged.
func (f Field) WithFormat(format string) Field {
	if format != "" {
		f.conv = PatternConverter(format)
	}
	return f
}

// Value invokes the accessor on entity. Errors and panics raised by the
// accessor are reported as [ErrAccessInvocation] wrapping the cause.
func (f Field) Value(entity any) (v any, err error) {
	if f.get == nil {
		return nil, fmt.Errorf("%w: field %q has no accessor", ErrAccessInvocation, f.name)
	}
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("panic: %v", r)
			}
			v, err = nil, fmt.Errorf("%w: field %q: %w", ErrAccessInvocation, f.name, cause)
		}
	}()
	v, err = f.get(entity)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %w", ErrAccessInvocation, f.name, err)
	}
	return v, nil
}

// ValueString returns the display text of the field's value on entity.
func (f Field) ValueString(entity any) (string, error) {
	v, err := f.Value(entity)
	if err != nil {
		return "", err
	}
	s, err := f.conv.Convert(v)
	if err != nil {
		return "", fmt.Errorf("field %q: %w", f.name, err)
	}
	return s, nil
}
