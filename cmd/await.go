package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielolaszy/redmine/pkg/models"
	"github.com/danielolaszy/redmine/pkg/redmine"
)

// RequestError is returned when Redmine reports a failed operation.
type RequestError struct {
	Kind     redmine.ErrorKind
	Messages []string
}

func (e *RequestError) Error() string {
	messages := strings.Join(e.Messages, "; ")
	if messages == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, messages)
}

func resultError(kind redmine.ErrorKind, messages []string) error {
	if kind == redmine.NoError {
		return nil
	}
	return &RequestError{Kind: kind, Messages: messages}
}

type result[T any] struct {
	value    T
	kind     redmine.ErrorKind
	messages []string
}

func wait[T any](ctx context.Context, ch <-chan result[T]) (T, error) {
	select {
	case r := <-ch:
		return r.value, resultError(r.kind, r.messages)
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// awaitList runs a list operation and blocks until its callback fires.
func awaitList[T any](ctx context.Context, start func(redmine.ListCallback[T]) error) ([]T, error) {
	ch := make(chan result[[]T], 1)
	err := start(func(items []T, kind redmine.ErrorKind, messages []string) {
		ch <- result[[]T]{value: items, kind: kind, messages: messages}
	})
	if err != nil {
		return nil, err
	}
	return wait(ctx, ch)
}

// awaitItem runs a single-record operation and blocks until its callback fires.
func awaitItem[T any](ctx context.Context, start func(redmine.ItemCallback[T]) error) (T, error) {
	ch := make(chan result[T], 1)
	err := start(func(item T, kind redmine.ErrorKind, messages []string) {
		ch <- result[T]{value: item, kind: kind, messages: messages}
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return wait(ctx, ch)
}

// awaitSaved runs a mutation and returns the id reported by Redmine.
func awaitSaved(ctx context.Context, start func(redmine.SuccessCallback) error) (models.ID, error) {
	ch := make(chan result[models.ID], 1)
	err := start(func(_ bool, id models.ID, kind redmine.ErrorKind, messages []string) {
		ch <- result[models.ID]{value: id, kind: kind, messages: messages}
	})
	if err != nil {
		return models.ID{}, err
	}
	return wait(ctx, ch)
}
