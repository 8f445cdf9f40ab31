package api

type Kind int

const (
	KindProgress Kind = iota
	KindSuccess
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindProgress:
		return "progress"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	}
	return "unknown"
}

// Event is one element of a call's event stream. A stream carries zero or
// more KindProgress events followed by exactly one KindSuccess or KindError
// event, after which it is closed.
type Event[T any] struct {
	Kind     Kind
	Fraction float64
	Data     T
	Err      error
}

func (e Event[T]) Terminal() bool {
	return e.Kind != KindProgress
}

func progressEvent[T any](f float64) Event[T] { return Event[T]{Kind: KindProgress, Fraction: f} }
func successEvent[T any](v T) Event[T]        { return Event[T]{Kind: KindSuccess, Fraction: 1, Data: v} }
func errorEvent[T any](err error) Event[T]    { return Event[T]{Kind: KindError, Err: err} }

// Await drains ch and returns the terminal outcome.
func Await[T any](ch <-chan Event[T]) (T, error) {
	var zero T
	for ev := range ch {
		switch ev.Kind {
		case KindSuccess:
			return ev.Data, nil
		case KindError:
			return zero, ev.Err
		}
	}
	return zero, errStreamClosed
}

// Map converts the payload of a stream. Progress and error events pass
// through unchanged.
func Map[A, B any](in <-chan Event[A], fn func(A) B) <-chan Event[B] {
	em := newEmitter[B]()
	go func() {
		for ev := range in {
			switch ev.Kind {
			case KindProgress:
				em.progress(ev.Fraction)
			case KindSuccess:
				em.finish(successEvent(fn(ev.Data)))
			case KindError:
				em.finish(errorEvent[B](ev.Err))
			}
		}
		em.finish(errorEvent[B](errStreamClosed))
	}()
	return em.ch
}
