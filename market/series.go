package market

// TimeSeries is an append-only sequence indexed by insertion order. The
// index handed out by Append never changes. Not safe for concurrent use.
type TimeSeries[T any] struct {
	values []T
}

func NewTimeSeries[T any](capacity int) *TimeSeries[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &TimeSeries[T]{values: make([]T, 0, capacity)}
}

// Append stores v and returns its index.
func (s *TimeSeries[T]) Append(v T) int {
	s.values = append(s.values, v)
	return len(s.values) - 1
}

func (s *TimeSeries[T]) Len() int { return len(s.values) }

// At returns the value stored at index i.
func (s *TimeSeries[T]) At(i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(s.values) {
		return zero, false
	}
	return s.values[i], true
}

// Last returns the value n positions back from the newest one, Last(0)
// being the newest. Out of range reads return the zero value.
func (s *TimeSeries[T]) Last(n int) T {
	v, _ := s.At(len(s.values) - 1 - n)
	return v
}

func (s *TimeSeries[T]) LastValue() T {
	return s.Last(0)
}

// Tail copies out the newest n values in chronological order. Fewer are
// returned when the series is shorter than n.
func (s *TimeSeries[T]) Tail(n int) []T {
	if n > len(s.values) {
		n = len(s.values)
	}
	if n <= 0 {
		return nil
	}
	out := make([]T, n)
	copy(out, s.values[len(s.values)-n:])
	return out
}

// Values copies out the whole series.
func (s *TimeSeries[T]) Values() []T {
	return s.Tail(len(s.values))
}
