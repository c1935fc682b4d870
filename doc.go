// Package rectab renders a homogeneous slice of records as an aligned text
// table.
//
// Columns, value formatting and layout are derived from the record type
// instead of hand-written per-type rendering code. The central entry points
// are [Render] and [Write]:
//
//	out, err := rectab.Render(films, nil)
//	fmt.Println(out)
//
// # Fields
//
// A column is a [Field]: a name, an [Accessor] reading the raw value from a
// record, and a [Converter] turning that value into text. Fields come from one
// of two places:
//
//   - [Fielder]: the type declares its fields explicitly, usually with
//     [Column] or [Getter]. No reflection is involved.
//   - Discovery: otherwise every method named Get<Name> is an accessor and
//     produces a field named <name> with its first letter lower-cased
//     (GetFilmID → filmID). See [Discover].
//
// # Formatting
//
// A field with no explicit format uses the default for its [Kind]: floating
// point and decimal values are printed with two decimals ("%.2f"), everything
// else with its natural text form. nil renders as "null". Pass a formats map
// to [Render] to override a column:
//
//	rectab.Render(items, map[string]string{"salary": "%10.1f", "hired": "2006-01-02"})
//
// Patterns are fmt verbs. For [time.Time] values a pattern without a verb is a
// Go time layout. Formats can also be loaded from YAML with [LoadFormats].
//
// # Column Order
//
// Discovery order is implementation-defined. To get a fixed order implement
// [Columned], or pass [WithColumns] per call. Every listed name must match a
// field, and unlisted fields are dropped.
//
// # Layout
//
// Cells are right-justified by default ([Aligned] overrides it per column).
// Columns are separated by [ColumnGap] spaces, the header is underlined with
// dashes, and the output has no trailing newline.
//
// # Errors
//
// The package exports sentinel errors for programmatic handling:
//
//   - [ErrInvalidAccessorName]: accessor name lacks the Get prefix
//   - [ErrAccessorSignature]: Get method is not a zero-argument reader
//   - [ErrAccessInvocation]: an accessor failed or panicked
//   - [ErrUnknownColumn]: a declared column has no matching field
//   - [ErrTypeMismatch]: records of different types in one call
//   - [ErrFormat]: a pattern does not fit the value it is applied to
package rectab
