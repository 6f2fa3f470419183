// Package stream provides a pull-based lazy iterator abstraction used to
// compose record sources with wrappers such as subsampling and batching.
//
// Every iterator reports end of stream by returning [io.EOF] from Next.
// Once an iterator has returned io.EOF, subsequent calls keep returning io.EOF.
package stream

import (
	"errors"
	"io"
)

// Iterator produces the next element of a finite, forward-only stream.
// Next returns io.EOF when the stream is exhausted.
type Iterator[T any] interface {
	Next() (T, error)
}

// Func adapts a plain function to the Iterator interface.
type Func[T any] func() (T, error)

// Next calls f.
func (f Func[T]) Next() (T, error) {
	return f()
}

// sliceIterator yields the elements of a slice in order.
type sliceIterator[T any] struct {
	items []T
	pos   int
}

// FromSlice returns an iterator over items. The slice is not copied.
func FromSlice[T any](items []T) Iterator[T] {
	return &sliceIterator[T]{items: items}
}

func (it *sliceIterator[T]) Next() (T, error) {
	if it.pos >= len(it.items) {
		var zero T

		return zero, io.EOF
	}

	item := it.items[it.pos]
	it.pos++

	return item, nil
}

// ForEach drains it, calling fn for every element in order.
// It stops at the first error returned by either the iterator or fn.
func ForEach[T any](it Iterator[T], fn func(T) error) error {
	for {
		item, err := it.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		fnErr := fn(item)
		if fnErr != nil {
			return fnErr
		}
	}
}

// Collect drains it into a slice. It is intended for tests and small streams.
func Collect[T any](it Iterator[T]) ([]T, error) {
	var out []T

	err := ForEach(it, func(item T) error {
		out = append(out, item)

		return nil
	})

	return out, err
}

// filterIterator yields only the upstream elements accepted by keep.
type filterIterator[T any] struct {
	upstream Iterator[T]
	keep     func(T) bool
	done     bool
}

// Filter returns an iterator yielding the elements of upstream for which keep
// returns true. Order is preserved.
func Filter[T any](upstream Iterator[T], keep func(T) bool) Iterator[T] {
	return &filterIterator[T]{upstream: upstream, keep: keep}
}

func (it *filterIterator[T]) Next() (T, error) {
	var zero T

	if it.done {
		return zero, io.EOF
	}

	for {
		item, err := it.upstream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				it.done = true
			}

			return zero, err
		}

		if it.keep(item) {
			return item, nil
		}
	}
}
