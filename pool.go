package symbolic

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/zephyrtronium/symbolic/internal/arena"
)

// Pool is a fixed-capacity store of expression nodes. Every Expression lives
// in exactly one pool. A Pool is not safe for concurrent use; all operations
// on expressions in one pool must be serialized by the caller.
type Pool struct {
	a   *arena.Arena[node]
	log *slog.Logger
	obs Observer
}

// PoolOption is an option used when creating a pool.
type PoolOption interface {
	poolOption()
}

type (
	loggeropt   struct{ l *slog.Logger }
	observeropt struct{ o Observer }
)

func (loggeropt) poolOption()   {}
func (observeropt) poolOption() {}

// WithLogger sets the logger a pool reports aborted operations to. The default
// is slog.Default().
func WithLogger(l *slog.Logger) PoolOption {
	return loggeropt{l}
}

// WithObserver sets an observer for reductions, approximations, and pool
// occupancy.
func WithObserver(o Observer) PoolOption {
	return observeropt{o}
}

// NewPool creates a pool with room for capacity nodes. Panics if capacity is
// not positive.
func NewPool(capacity int, opts ...PoolOption) *Pool {
	p := Pool{
		a:   arena.New[node](capacity),
		log: slog.Default(),
		obs: nopObserver{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case loggeropt:
			if opt.l != nil {
				p.log = opt.l
			}
		case observeropt:
			if opt.o != nil {
				p.obs = opt.o
			}
		default:
			panic("symbolic: unknown pool option type")
		}
	}
	return &p
}

// Cap returns the number of nodes the pool can hold.
func (p *Pool) Cap() int {
	return p.a.Cap()
}

// Live returns the number of nodes in use.
func (p *Pool) Live() int {
	return p.a.Live()
}

// HighWater returns the largest number of nodes that have been in use at once.
func (p *Pool) HighWater() int {
	return p.a.HighWater()
}

// Validate checks the structural invariants of every tree in the pool: single
// ownership, consistent parent links, and legal arity for every node kind.
// It returns all violations found.
func (p *Pool) Validate() error {
	err := p.a.Check()
	var roots []arena.Handle
	for i := 0; i < p.a.Cap(); i++ {
		// Walk only from roots so that each node is checked once.
		h, ok := p.a.HandleAt(i)
		if ok && p.a.Parent(h).IsNil() {
			roots = append(roots, h)
		}
	}
	for _, r := range roots {
		p.a.Walk(r, func(h arena.Handle) bool {
			n := p.a.Get(h)
			if n.kind == Uninitialized || n.kind >= numKinds {
				err = multierr.Append(err, errors.Errorf("%v has invalid kind %v", h, n.kind))
				return true
			}
			if c := p.a.NumChildren(h); !n.kind.arityOK(c) {
				err = multierr.Append(err, errors.Errorf("%v: %v with %d children", h, n.kind, c))
			}
			if n.kind == Matrix && (n.cols <= 0 || p.a.NumChildren(h)%n.cols != 0) {
				err = multierr.Append(err, errors.Errorf("%v: matrix of %d entries in %d columns", h, p.a.NumChildren(h), n.cols))
			}
			return true
		})
	}
	return err
}

// alloc allocates a childless root node.
func (p *Pool) alloc(n node) (arena.Handle, error) {
	h, err := p.a.Alloc(n)
	if err != nil {
		p.log.Debug("pool exhausted", slog.String("op", "alloc"), slog.String("kind", n.kind.String()), slog.Int("live", p.a.Live()), slog.Int("capacity", p.a.Cap()))
		return arena.Handle{}, exhausted(err, "allocating "+n.kind.String())
	}
	return h, nil
}

// build allocates a node and attaches children to it. The children must be
// unreferenced roots. If allocation fails, the children are freed.
func (p *Pool) build(n node, children ...arena.Handle) (arena.Handle, error) {
	h, err := p.alloc(n)
	if err != nil {
		p.free(children...)
		return arena.Handle{}, err
	}
	for _, c := range children {
		p.a.Append(h, c)
	}
	return h, nil
}

// free frees unreferenced roots. Nil handles are ignored.
func (p *Pool) free(hs ...arena.Handle) {
	for _, h := range hs {
		if !h.IsNil() {
			p.a.Free(h)
		}
	}
}

func (p *Pool) node(h arena.Handle) node {
	return p.a.Get(h)
}

func (p *Pool) kind(h arena.Handle) Kind {
	return p.a.Get(h).kind
}

func (p *Pool) numChildren(h arena.Handle) int {
	return p.a.NumChildren(h)
}

func (p *Pool) child(h arena.Handle, i int) arena.Handle {
	return p.a.Child(h, i)
}

// clone deep-copies the subtree at h into a new root.
func (p *Pool) clone(h arena.Handle) (arena.Handle, error) {
	return p.importFrom(p, h)
}

// importFrom deep-copies the subtree at h in src into a new root in p. On
// failure nothing is left allocated.
func (p *Pool) importFrom(src *Pool, h arena.Handle) (arena.Handle, error) {
	r, err := p.alloc(src.node(h))
	if err != nil {
		return arena.Handle{}, err
	}
	n := src.numChildren(h)
	for i := 0; i < n; i++ {
		c, err := p.importFrom(src, src.child(h, i))
		if err != nil {
			p.a.Free(r)
			return arena.Handle{}, err
		}
		p.a.Append(r, c)
	}
	return r, nil
}

// become makes the node at h take the place of the root r: h gets r's payload
// and children, h's old children are freed, and r is freed. h keeps its
// position and references, so handles to h stay valid.
func (p *Pool) become(h, r arena.Handle) {
	if h == r {
		return
	}
	for n := p.a.NumChildren(h); n > 0; n-- {
		p.a.Free(p.a.Detach(h, n-1))
	}
	p.a.Set(h, p.a.Get(r))
	for p.a.NumChildren(r) > 0 {
		p.a.Append(h, p.a.Detach(r, 0))
	}
	p.a.Free(r)
}

// becomeChild replaces the node at h with its own i-th child.
func (p *Pool) becomeChild(h arena.Handle, i int) {
	p.become(h, p.a.Detach(h, i))
}

// becomeLeaf replaces the subtree at h with a single childless node.
func (p *Pool) becomeLeaf(h arena.Handle, n node) {
	for k := p.a.NumChildren(h); k > 0; k-- {
		p.a.Free(p.a.Detach(h, k-1))
	}
	p.a.Set(h, n)
}

// setKind changes the kind of h, keeping its children.
func (p *Pool) setKind(h arena.Handle, k Kind) {
	p.a.Set(h, node{kind: k})
}

// observe reports pool occupancy to the observer.
func (p *Pool) observe() {
	p.obs.ObservePool(p.a.Live(), p.a.Cap())
}

// logAbort logs an operation that stopped early.
func (p *Pool) logAbort(ctx context.Context, op string, h arena.Handle, err error) {
	p.log.DebugContext(ctx, "operation aborted",
		slog.String("op", op),
		slog.String("kind", p.kind(h).String()),
		slog.Int("live", p.a.Live()),
		slog.Int("capacity", p.a.Cap()),
		slog.String("err", err.Error()),
	)
}

func (p *Pool) String() string {
	return "Pool(" + strconv.Itoa(p.a.Live()) + "/" + strconv.Itoa(p.a.Cap()) + ")"
}
