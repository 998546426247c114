package symbolic

import (
	"context"

	"github.com/pkg/errors"

	"github.com/zephyrtronium/symbolic/internal/arena"
)

var (
	// ErrPoolExhausted means an operation needed a node and the pool had none
	// left. The operation stops and leaves its trees consistent.
	ErrPoolExhausted = errors.New("symbolic: node pool exhausted")
	// ErrInterrupted means an operation was cancelled through its
	// context.Context. Trees are left consistent in their last fully rewritten
	// state.
	ErrInterrupted = errors.New("symbolic: interrupted")
)

// poll returns ErrInterrupted if ctx is done.
func poll(ctx context.Context) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	// Contexts that override Err without cancelling their parent have no
	// cause.
	if cause := context.Cause(ctx); cause != nil {
		err = cause
	}
	return errors.WithMessage(ErrInterrupted, err.Error())
}

// exhausted translates an arena allocation failure.
func exhausted(err error, op string) error {
	if errors.Is(err, arena.ErrExhausted) {
		return errors.WithMessage(ErrPoolExhausted, op)
	}
	return err
}
