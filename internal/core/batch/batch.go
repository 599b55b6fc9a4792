package batch

import (
	"context"

	apperrors "github.com/frahmantamala/safety-management/internal"
	"golang.org/x/sync/errgroup"
)

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindInternal   ErrorKind = "internal"
)

type Failure[T any] struct {
	Index   int       `json:"index"`
	Item    T         `json:"item"`
	Reason  ErrorKind `json:"reason"`
	Message string    `json:"message"`
}

// Result reports per-item outcomes; a failed item never aborts the batch.
type Result[T any] struct {
	Succeeded []T          `json:"succeeded"`
	Failed    []Failure[T] `json:"failed"`
}

func (r Result[T]) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}

// KindOf maps an error onto a failure reason using the AppError type when present.
func KindOf(err error) ErrorKind {
	appErr, ok := apperrors.IsAppError(err)
	if !ok {
		return KindInternal
	}
	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		return KindValidation
	case apperrors.ErrorTypeNotFound:
		return KindNotFound
	case apperrors.ErrorTypeConflict:
		return KindConflict
	default:
		return KindInternal
	}
}

func newResult[T any]() Result[T] {
	return Result[T]{Succeeded: []T{}, Failed: []Failure[T]{}}
}

// RunSequential processes items in order, so later items observe the side
// effects of earlier ones. It stops early only when ctx is done.
func RunSequential[T any](ctx context.Context, items []T, fn func(context.Context, T) error) (Result[T], error) {
	res := newResult[T]()
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := fn(ctx, item); err != nil {
			res.Failed = append(res.Failed, Failure[T]{Index: i, Item: item, Reason: KindOf(err), Message: err.Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, item)
	}
	return res, nil
}

// RunConcurrent processes items with at most limit in flight. Outcomes are
// collected in input order regardless of completion order.
func RunConcurrent[T any](ctx context.Context, items []T, limit int, fn func(context.Context, T) error) (Result[T], error) {
	errs := make([]error, len(items))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			errs[i] = fn(ctx, item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return newResult[T](), err
	}

	res := newResult[T]()
	for i, item := range items {
		if errs[i] != nil {
			res.Failed = append(res.Failed, Failure[T]{Index: i, Item: item, Reason: KindOf(errs[i]), Message: errs[i].Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, item)
	}
	return res, nil
}
