package rectab

import (
	"io"
	"iter"
)

// WriteIter collects entities from seq and writes them as a table to w.
// Column widths depend on every row, so nothing is written before the
// sequence ends.
func WriteIter[T any](w io.Writer, seq iter.Seq[T], formats map[string]string, opts ...Option) error {
	var entities []T
	for e := range seq {
		entities = append(entities, e)
	}
	return Write(w, entities, formats, opts...)
}

// WriteChan drains ch and writes the received entities as a table to w.
// It is a thin wrapper around [WriteIter].
func WriteChan[T any](w io.Writer, ch <-chan T, formats map[string]string, opts ...Option) error {
	return WriteIter(w, chanToIter(ch), formats, opts...)
}

func chanToIter[T any](ch <-chan T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for item := range ch {
			if !yield(item) {
				return
			}
		}
	}
}
