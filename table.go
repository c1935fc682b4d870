package rectab

import (
	"io"
	"reflect"
	"strings"

	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
)

// Render formats entities as a text table and returns it. All entities must
// share the runtime type of the first one. formats maps field (or accessor)
// names to format patterns and may be nil.
//
// An empty slice renders as "". On error nothing is returned.
func Render[T any](entities []T, formats map[string]string, opts ...Option) (string, error) {
	if len(entities) == 0 {
		return "", nil
	}
	o := buildOptions(opts)
	schema, err := newSchema(reflect.TypeOf(any(entities[0])), formats, o)
	if err != nil {
		return "", err
	}

	rows := make([][]string, len(entities))
	for i, e := range entities {
		if rows[i], err = schema.RowValues(any(e)); err != nil {
			return "", err
		}
	}

	header := schema.FieldNames()
	var aligns []Alignment
	if a, ok := declaredBy[Aligned](schema.typ); ok {
		aligns = a.Alignments()
	}
	out := layout(header, rows, extendAligns(aligns, len(header)))

	o.logger.Debug("table rendered",
		zap.Stringer("type", schema.typ),
		zap.Int("rows", len(rows)),
		zap.Int("columns", len(header)),
	)
	return out, nil
}

// Write renders entities like [Render] and writes the table to w. Nothing is
// written when rendering fails.
func Write[T any](w io.Writer, entities []T, formats map[string]string, opts ...Option) error {
	out, err := Render(entities, formats, opts...)
	if err != nil || out == "" {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func layout(header []string, rows [][]string, aligns []Alignment) string {
	widths := computeWidths(header, rows)
	gap := strings.Repeat(" ", ColumnGap)

	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, formatRow(header, widths, aligns, gap))
	lines = append(lines, strings.Repeat("-", rowWidth(widths)))
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, aligns, gap))
	}
	return strings.Join(lines, "\n")
}

// computeWidths returns, per column, the widest display width among the
// header and all body cells.
func computeWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func rowWidth(widths []int) int {
	n := 0
	for _, w := range widths {
		n += w
	}
	if len(widths) > 1 {
		n += ColumnGap * (len(widths) - 1)
	}
	return n
}

func formatRow(cells []string, widths []int, aligns []Alignment, gap string) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = alignCell(cell, width, aligns[i])
	}
	return strings.Join(parts, gap)
}

func extendAligns(aligns []Alignment, numCols int) []Alignment {
	if len(aligns) >= numCols {
		return aligns[:numCols]
	}
	extended := make([]Alignment, numCols)
	copy(extended, aligns)
	return extended
}

func alignCell(s string, width int, align Alignment) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	switch align {
	case AlignLeft:
		return s + strings.Repeat(" ", pad)
	case AlignCenter:
		left := pad / 2
		right := pad - left
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
	default:
		return strings.Repeat(" ", pad) + s
	}
}
