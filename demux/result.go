package demux

type Status int

const (
	Found Status = iota
	NotFound
	IOFailure
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not-found"
	case IOFailure:
		return "io-failure"
	}
	return "unknown"
}

// Result is the outcome of a metadata lookup. Err is set for NotFound
// results caused by malformed values and for every IOFailure.
type Result[T any] struct {
	Value  T
	Status Status
	Err    error
}

func found[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: Found}
}

func notFound[T any](err error) Result[T] {
	return Result[T]{Status: NotFound, Err: err}
}

func ioFailure[T any](err error) Result[T] {
	return Result[T]{Status: IOFailure, Err: err}
}

func (r Result[T]) Ok() bool {
	return r.Status == Found
}

// Or returns the value if it was found and fallback otherwise.
func (r Result[T]) Or(fallback T) T {
	if r.Status != Found {
		return fallback
	}
	return r.Value
}
