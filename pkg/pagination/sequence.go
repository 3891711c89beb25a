package pagination

import (
	"context"
	"fmt"
	"iter"

	"github.com/rs/zerolog"

	"github.com/saturnines/nexus-pages/pkg/errors"
	"github.com/saturnines/nexus-pages/pkg/logging"
)

// Sequence is a re-iterable view of a paged remote collection. It holds no
// cursor state of its own; every Iterate call starts again from the first page.
type Sequence[T any] struct {
	fetcher PageFetcher
	cfg     Config
	logger  zerolog.Logger
}

type settings struct {
	logger *zerolog.Logger
}

// Option customizes a Sequence.
type Option func(*settings)

// WithLogger logs page fetches to logger instead of the global logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = &logger
	}
}

// New builds a Sequence over fetcher. The config is validated up front.
func New[T any](fetcher PageFetcher, cfg Config, opts ...Option) (*Sequence[T], error) {
	if fetcher == nil {
		return nil, errors.WrapError(fmt.Errorf("page fetcher is nil"), errors.ErrConfiguration, "create sequence")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var st settings
	for _, o := range opts {
		o(&st)
	}
	logger := logging.Logger
	if st.logger != nil {
		logger = *st.logger
	}

	return &Sequence[T]{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger.With().Str("param", cfg.QueryParameter).Logger(),
	}, nil
}

// Config returns the field configuration of the sequence.
func (s *Sequence[T]) Config() Config {
	return s.cfg
}

// Iterate returns a fresh iterator positioned before the first page.
func (s *Sequence[T]) Iterate() *Iterator[T] {
	return &Iterator[T]{
		adv: cursorAdvancer[T]{
			fetcher: s.fetcher,
			cfg:     s.cfg,
		},
		logger: s.logger,
	}
}

// Seq yields every element in page order then array order. Fetch errors are
// yielded once with a zero element and end the sequence. Breaking out of the
// range loop stops further fetches.
func (s *Sequence[T]) Seq(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		it := s.Iterate()
		for {
			page, err := it.Advance(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if page.Exhausted {
				return
			}
			for _, el := range page.Elements {
				if !yield(el, nil) {
					return
				}
			}
		}
	}
}

// FindFirst returns the first element matching pred. No page after the one
// holding the match is fetched. ok is false when the collection ran out.
func (s *Sequence[T]) FindFirst(ctx context.Context, pred func(T) bool) (T, bool, error) {
	return s.FindFirstFunc(ctx, func(_ context.Context, el T) (bool, error) {
		return pred(el), nil
	})
}

// FindFirstFunc is FindFirst with a predicate that may block or fail.
// Predicates run one at a time, in element order; a predicate error is
// returned as is.
func (s *Sequence[T]) FindFirstFunc(ctx context.Context, pred func(context.Context, T) (bool, error)) (T, bool, error) {
	var zero T
	for el, err := range s.Seq(ctx) {
		if err != nil {
			return zero, false, err
		}
		ok, err := pred(ctx, el)
		if err != nil {
			return zero, false, err
		}
		if ok {
			return el, true, nil
		}
	}
	return zero, false, nil
}

// All loads the whole collection into memory.
func (s *Sequence[T]) All(ctx context.Context) ([]T, error) {
	return FlatMapNotNull(ctx, s, func(_ context.Context, el T) (T, bool, error) {
		return el, true, nil
	}, NoLimit)
}

// FlatMapNotNull maps every element in order and keeps the results whose ok
// is true. With limit > 0 it stops as soon as limit results are kept, without
// looking at the rest of the page or fetching another one. Any error discards
// what was collected so far.
func FlatMapNotNull[T, R any](
	ctx context.Context,
	s *Sequence[T],
	mapper func(context.Context, T) (R, bool, error),
	limit int,
) ([]R, error) {
	results := make([]R, 0)
	if limit < 0 {
		limit = NoLimit
	}

	for el, err := range s.Seq(ctx) {
		if err != nil {
			return nil, err
		}
		r, ok, err := mapper(ctx, el)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		results = append(results, r)
		if limit != NoLimit && len(results) >= limit {
			break
		}
	}
	return results, nil
}
