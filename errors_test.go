package symbolic

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

// countdown is a context that reports cancellation once Err has been asked
// more than n times. Its parent is never cancelled, so it has no cause.
type countdown struct {
	context.Context
	n int
}

func newCountdown(t testing.TB, n int) *countdown {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return &countdown{Context: ctx, n: n}
}

func (c *countdown) Err() error {
	if c.n <= 0 {
		return context.Canceled
	}
	c.n--
	return nil
}

func TestPoll(t *testing.T) {
	cancelled, cancel := context.WithCancelCause(context.Background())
	cancel(errors.New("stop button"))
	cases := []struct {
		name string
		ctx  context.Context
		msg  string
	}{
		{"background", context.Background(), ""},
		{"cause", cancelled, "stop button"},
		{"nocause", newCountdown(t, 0), context.Canceled.Error()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := poll(c.ctx)
			if c.msg == "" {
				if err != nil {
					t.Errorf("live context polled as %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInterrupted) {
				t.Fatalf("wrong error: want ErrInterrupted, got %v", err)
			}
			if !strings.Contains(err.Error(), c.msg) {
				t.Errorf("error %q doesn't mention %q", err, c.msg)
			}
		})
	}
}

func TestCountdown(t *testing.T) {
	ctx := newCountdown(t, 2)
	for i := 0; i < 2; i++ {
		if err := poll(ctx); err != nil {
			t.Fatalf("poll %d: %v", i, err)
		}
	}
	if err := poll(ctx); !errors.Is(err, ErrInterrupted) {
		t.Errorf("third poll: want ErrInterrupted, got %v", err)
	}
}
