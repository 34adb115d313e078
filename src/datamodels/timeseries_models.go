package datamodels

import (
	"time"

	"pairbot/src/utils/errors"
)

// Series is an ordered sequence of values keyed by a strictly increasing
// time index. Two series are aligned when their indexes are identical.
type Series[T any] struct {
	Name   string
	Index  []time.Time
	Values []T
}

type TimeSeries = Series[float64]

type PositionSeries = Series[Position]

// NewSeries validates the index and wraps the values. The slices are not copied.
func NewSeries[T any](name string, index []time.Time, values []T) (Series[T], error) {
	if len(index) != len(values) {
		return Series[T]{}, errors.Validationf("series %q has %d timestamps but %d values", name, len(index), len(values))
	}
	for i := 1; i < len(index); i++ {
		if !index[i].After(index[i-1]) {
			return Series[T]{}, errors.Validationf("series %q index is not strictly increasing at position %d (%s after %s)",
				name, i, index[i].Format(time.RFC3339), index[i-1].Format(time.RFC3339))
		}
	}
	return Series[T]{Name: name, Index: index, Values: values}, nil
}

// MustSeries is NewSeries for fixtures and literals known to be valid.
func MustSeries[T any](name string, index []time.Time, values []T) Series[T] {
	s, err := NewSeries(name, index, values)
	if err != nil {
		panic(err)
	}
	return s
}

// StepIndex returns n timestamps at Unix seconds 0..n-1, for data keyed by step.
func StepIndex(n int) []time.Time {
	index := make([]time.Time, n)
	for i := range index {
		index[i] = time.Unix(int64(i), 0).UTC()
	}
	return index
}

func (s Series[T]) Len() int {
	return len(s.Values)
}

func (s Series[T]) At(i int) T {
	return s.Values[i]
}

// Last returns the final value, or the zero value and false when empty.
func (s Series[T]) Last() (T, bool) {
	var zero T
	if len(s.Values) == 0 {
		return zero, false
	}
	return s.Values[len(s.Values)-1], true
}

// From returns the sub-series starting at position i. It shares storage with s.
func (s Series[T]) From(i int) Series[T] {
	if i < 0 {
		i = 0
	}
	if i > len(s.Values) {
		i = len(s.Values)
	}
	return Series[T]{Name: s.Name, Index: s.Index[i:], Values: s.Values[i:]}
}

// WithValues returns a series on the same index carrying new values.
func WithValues[T, U any](s Series[T], name string, values []U) Series[U] {
	return Series[U]{Name: name, Index: s.Index, Values: values}
}

// IsAlignedWith reports whether both series share the same timestamps in the same order.
func (s Series[T]) IsAlignedWith(other Indexed) bool {
	index := other.GetIndex()
	if len(s.Index) != len(index) {
		return false
	}
	for i := range index {
		if !s.Index[i].Equal(index[i]) {
			return false
		}
	}
	return true
}

// Indexed is anything carrying a time index, so series of different element
// types can be checked together.
type Indexed interface {
	GetName() string
	GetIndex() []time.Time
}

func (s Series[T]) GetName() string {
	return s.Name
}

func (s Series[T]) GetIndex() []time.Time {
	return s.Index
}

// CheckAligned fails with ErrMisaligned unless every series shares the first one's index.
func CheckAligned(series ...Indexed) error {
	if len(series) < 2 {
		return nil
	}
	reference := series[0]
	refIndex := reference.GetIndex()
	for _, other := range series[1:] {
		index := other.GetIndex()
		if len(index) != len(refIndex) {
			return errors.Wrapf(errors.ErrMisaligned, "%q has %d points, %q has %d",
				reference.GetName(), len(refIndex), other.GetName(), len(index))
		}
		for i := range index {
			if !index[i].Equal(refIndex[i]) {
				return errors.Wrapf(errors.ErrMisaligned, "%q and %q differ at position %d (%s vs %s)",
					reference.GetName(), other.GetName(), i,
					refIndex[i].Format(time.RFC3339), index[i].Format(time.RFC3339))
			}
		}
	}
	return nil
}
