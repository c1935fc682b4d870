package rectab

import (
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"
)

var errorType = reflect.TypeFor[error]()

// Schema is the ordered list of fields bound to one entity type. A Schema is
// immutable and safe for concurrent use.
type Schema struct {
	typ      reflect.Type
	fields   []Field
	explicit bool
}

// FromDiscoveryOrder returns a schema that keeps fields in the order given.
// For discovered fields that order is implementation-defined; use
// [FromExplicitOrder] when the column sequence matters.
func FromDiscoveryOrder(typ reflect.Type, fields []Field) *Schema {
	return &Schema{typ: typ, fields: append([]Field(nil), fields...)}
}

// FromExplicitOrder returns a schema holding exactly the fields named in
// names, in that order. Fields not listed are dropped. A name with no
// matching field fails with [ErrUnknownColumn].
func FromExplicitOrder(typ reflect.Type, fields []Field, names []string) (*Schema, error) {
	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		if _, dup := byName[f.name]; !dup {
			byName[f.name] = f
		}
	}
	ordered := make([]Field, 0, len(names))
	for _, name := range names {
		f, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a field of %v", ErrUnknownColumn, name, typ)
		}
		ordered = append(ordered, f)
	}
	return &Schema{typ: typ, fields: ordered, explicit: true}, nil
}

// Discover returns a field for every method of typ whose name starts with
// [AccessorPrefix]. Such methods must take no arguments and return a value,
// optionally followed by an error. formats maps field or accessor names to
// format patterns.
//
// Methods promoted from embedded types belong to typ's method set and are
// discovered too; wrap an embedded type in a named field to hide its Get
// methods.
//
// Fields come back in reflection order. Callers must not rely on it.
func Discover(typ reflect.Type, formats map[string]string) ([]Field, error) {
	if err := checkEntityType(typ); err != nil {
		return nil, err
	}
	var fields []Field
	for i := range typ.NumMethod() {
		m := typ.Method(i)
		if !strings.HasPrefix(m.Name, AccessorPrefix) {
			continue
		}
		kind, err := accessorKind(typ, m)
		if err != nil {
			return nil, err
		}
		f, err := FieldFromAccessor(m.Name, kind, methodAccessor(typ, m), "")
		if err != nil {
			return nil, err
		}
		fields = append(fields, f.WithFormat(lookupFormat(formats, f)))
	}
	return fields, nil
}

func checkEntityType(typ reflect.Type) error {
	if typ == nil {
		return fmt.Errorf("%w: nil entity type", ErrTypeMismatch)
	}
	if typ.Kind() == reflect.Interface {
		return fmt.Errorf("%w: %v is an interface, entities need a concrete type", ErrTypeMismatch, typ)
	}
	return nil
}

// accessorKind checks the method signature and returns the kind of its value.
// The receiver is the first input of m.Type.
func accessorKind(typ reflect.Type, m reflect.Method) (Kind, error) {
	mt := m.Type
	ok := mt.NumIn() == 1 &&
		(mt.NumOut() == 1 || (mt.NumOut() == 2 && mt.Out(1) == errorType))
	if !ok {
		return KindOther, fmt.Errorf("%w: %v.%s must take no arguments and return a value", ErrAccessorSignature, typ, m.Name)
	}
	return KindOf(mt.Out(0)), nil
}

func methodAccessor(typ reflect.Type, m reflect.Method) Accessor {
	return func(entity any) (any, error) {
		rv := reflect.ValueOf(entity)
		if !rv.IsValid() || rv.Type() != typ {
			return nil, fmt.Errorf("%w: %s wants %v, got %T", ErrTypeMismatch, m.Name, typ, entity)
		}
		out := m.Func.Call([]reflect.Value{rv})
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}
}

func lookupFormat(formats map[string]string, f Field) string {
	if p, ok := formats[f.name]; ok {
		return p
	}
	if f.accessor != "" {
		return formats[f.accessor]
	}
	return ""
}

// NewSchema builds the schema for entities of type typ.
//
// Fields come from [Fielder] when typ implements it, otherwise from
// [Discover]. formats overrides converters by field name or accessor name.
// The column order is taken from [WithColumns], then from [Columned], and
// falls back to discovery order.
func NewSchema(typ reflect.Type, formats map[string]string, opts ...Option) (*Schema, error) {
	o := buildOptions(opts)
	return newSchema(typ, formats, o)
}

func newSchema(typ reflect.Type, formats map[string]string, o options) (*Schema, error) {
	if err := checkEntityType(typ); err != nil {
		return nil, err
	}
	var fields []Field
	if fd, ok := declaredBy[Fielder](typ); ok {
		for _, f := range fd.Fields() {
			fields = append(fields, f.WithFormat(lookupFormat(formats, f)))
		}
	} else {
		var err error
		if fields, err = Discover(typ, formats); err != nil {
			return nil, err
		}
	}
	for _, f := range fields {
		o.logger.Debug("field resolved",
			zap.String("field", f.name),
			zap.String("accessor", f.accessor),
			zap.Stringer("kind", f.kind),
			zap.Stringer("converter", f.conv),
		)
	}

	names := o.columns
	if names == nil {
		if c, ok := declaredBy[Columned](typ); ok {
			names = c.Columns()
		}
	}

	var s *Schema
	if names != nil {
		var err error
		if s, err = FromExplicitOrder(typ, fields, names); err != nil {
			return nil, err
		}
	} else {
		s = FromDiscoveryOrder(typ, fields)
	}
	o.logger.Debug("schema built",
		zap.Stringer("type", typ),
		zap.Strings("columns", s.FieldNames()),
		zap.Bool("explicit", s.explicit),
	)
	return s, nil
}

// zeroEntity returns a zero value of typ for calling type-level methods such as
// Columns. Pointer types get a pointer to a zero value so value-receiver
// methods do not dereference nil.
func zeroEntity(typ reflect.Type) any {
	if typ.Kind() == reflect.Pointer {
		return reflect.New(typ.Elem()).Interface()
	}
	return reflect.Zero(typ).Interface()
}

// declaredBy returns typ's implementation of I. For non-pointer types the
// pointer method set is checked as well, so declarations with pointer
// receivers apply to value entities.
func declaredBy[I any](typ reflect.Type) (I, bool) {
	if d, ok := zeroEntity(typ).(I); ok {
		return d, true
	}
	if typ.Kind() != reflect.Pointer {
		d, ok := reflect.New(typ).Interface().(I)
		return d, ok
	}
	var zero I
	return zero, false
}

// Type returns the entity type the schema is bound to.
func (s *Schema) Type() reflect.Type { return s.typ }

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.fields) }

// Explicit reports whether the column order was declared rather than
// discovered.
func (s *Schema) Explicit() bool { return s.explicit }

// Fields returns a copy of the fields in column order.
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// FieldNames returns the column names in order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// RowValues returns the display text of every field of entity, in column
// order. entity must have exactly the schema's type, so a *T is rejected by
// a schema for T and vice versa. Mismatches fail with [ErrTypeMismatch].
func (s *Schema) RowValues(entity any) ([]string, error) {
	if t := reflect.TypeOf(entity); t != s.typ {
		return nil, fmt.Errorf("%w: got %v, want %v", ErrTypeMismatch, t, s.typ)
	}
	row := make([]string, len(s.fields))
	for i, f := range s.fields {
		v, err := f.ValueString(entity)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}
