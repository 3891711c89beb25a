package pagination

import (
	"context"

	"github.com/rs/zerolog"
)

// Page is one batch of elements. Exhausted is set when the fetch returned no
// elements, which ends the iteration.
type Page[T any] struct {
	Elements  []T
	Exhausted bool
}

// Iterator steps through the pages of a Sequence. It is single use and not
// safe for concurrent use; get a new one from Sequence.Iterate instead.
type Iterator[T any] struct {
	adv    cursorAdvancer[T]
	logger zerolog.Logger
	pages  int
}

// Advance fetches the next page. After an empty page has been seen it keeps
// returning an exhausted page without fetching. A failed call leaves the
// cursor where it was.
func (it *Iterator[T]) Advance(ctx context.Context) (Page[T], error) {
	if it.adv.exhausted {
		return Page[T]{Exhausted: true}, nil
	}
	if err := ctx.Err(); err != nil {
		return Page[T]{}, err
	}

	hadCursor := it.adv.cursor != nil
	elements, err := it.adv.advance(ctx)
	if err != nil {
		it.logger.Debug().Err(err).Int("page", it.pages+1).Msg("page fetch failed")
		return Page[T]{}, err
	}
	it.pages++

	it.logger.Debug().
		Int("page", it.pages).
		Bool("cursor", hadCursor).
		Int("elements", len(elements)).
		Bool("next", it.adv.cursor != nil).
		Msg("fetched page")

	return Page[T]{Elements: elements, Exhausted: it.adv.exhausted}, nil
}

// Exhausted reports whether an empty page has been seen.
func (it *Iterator[T]) Exhausted() bool {
	return it.adv.exhausted
}

// Cursor returns the cursor the next Advance will send, or nil.
func (it *Iterator[T]) Cursor() *string {
	if it.adv.cursor == nil {
		return nil
	}
	c := *it.adv.cursor
	return &c
}

// Pages is the number of successful fetches so far.
func (it *Iterator[T]) Pages() int {
	return it.pages
}
