package symbolic

import (
	"context"
	"testing"

	"github.com/pkg/errors"
)

// orderCorpus is in ascending canonical order after reduction.
var orderCorpus = []string{
	"-3", "1/2", "1", "2", "i", "π", "2π", "e",
	"x^(1/2)", "x", "2x", "3x", "πx", "x^2", "2x^2", "x^3", "x^y",
	"1+x", "1+x^2", "y", "x*y", "2x y", "y^2", "x+y",
	"sin(x)", "2sin(x)", "sin(x)^2", "cos(x)",
}

func signOf(c int) int {
	switch {
	case c < 0:
		return -1
	case c > 0:
		return 1
	}
	return 0
}

func TestSimplificationOrder(t *testing.T) {
	p := NewPool(1024)
	es := make([]*Expression, len(orderCorpus))
	for i, src := range orderCorpus {
		es[i] = reduced(t, p, src, systemCtx)
	}
	ctx := context.Background()
	for i, a := range es {
		c, err := SimplificationOrder(ctx, a, a, true)
		if err != nil {
			t.Fatal(err)
		}
		if c != 0 {
			t.Errorf("%v compares %d to itself", a, c)
		}
		for j := i + 1; j < len(es); j++ {
			b := es[j]
			ab, err := SimplificationOrder(ctx, a, b, true)
			if err != nil {
				t.Fatal(err)
			}
			ba, err := SimplificationOrder(ctx, b, a, true)
			if err != nil {
				t.Fatal(err)
			}
			if ab > 0 {
				t.Errorf("%v sorts after %v", a, b)
			}
			if signOf(ab) != -signOf(ba) {
				t.Errorf("asymmetric comparison of %v and %v: %d, %d", a, b, ab, ba)
			}
			desc, err := SimplificationOrder(ctx, a, b, false)
			if err != nil {
				t.Fatal(err)
			}
			if desc != -ab {
				t.Errorf("descending comparison of %v and %v is %d, ascending %d", a, b, desc, ab)
			}
		}
	}
}

func TestSimplificationOrderInterrupted(t *testing.T) {
	p := NewPool(32)
	a := mustParse(t, p, "x+1")
	b := mustParse(t, p, "y")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := SimplificationOrder(ctx, a, b, true); !errors.Is(err, ErrInterrupted) {
		t.Errorf("wrong error: want ErrInterrupted, got %v", err)
	}
}

func TestSimplificationOrderInterruptedMidway(t *testing.T) {
	p := NewPool(64)
	a := mustParse(t, p, "x^2*y+sin(x)*3+z")
	b := mustParse(t, p, "x^2*y+sin(x)*3+w")
	want, err := SimplificationOrder(context.Background(), a, b, true)
	if err != nil {
		t.Fatal(err)
	}
	for n := 1; n <= 40; n++ {
		c, err := SimplificationOrder(newCountdown(t, n), a, b, true)
		switch {
		case err == nil && c != want:
			t.Errorf("%d polls: got %d, want %d", n, c, want)
		case err != nil && !errors.Is(err, ErrInterrupted):
			t.Errorf("%d polls: wrong error: want ErrInterrupted, got %v", n, err)
		}
	}
	checkPool(t, p)
}

func TestSimplificationOrderAcrossPools(t *testing.T) {
	a := mustParse(t, NewPool(4), "x")
	b := mustParse(t, NewPool(4), "x")
	defer func() {
		if recover() == nil {
			t.Error("comparing across pools didn't panic")
		}
	}()
	SimplificationOrder(context.Background(), a, b, true)
}
