package shop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ahinestrog/smartkart/Backend/src/cart"
	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

type Session struct {
	UserID string
	Token  string
}

// CartState holds one user's cart snapshot. Every mutation is followed by a
// full refetch, so the snapshot only ever shows what the server returned.
// Overlapping calls are not serialized; the server merges them atomically.
type CartState struct {
	client *Client
	log    zerolog.Logger

	// OnAuthRequired runs whenever the server rejects the session.
	OnAuthRequired func(error)

	busy atomic.Int32

	mu      sync.RWMutex
	session *Session
	gen     uint64
	items   []cart.LineItem
}

func NewCartState(c *Client, logger zerolog.Logger) *CartState {
	return &CartState{client: c, log: logger.With().Str("component", "cart_state").Logger()}
}

// SetSession switches the snapshot to s. A nil session empties the
// snapshot without contacting the server.
func (s *CartState) SetSession(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	s.gen++
	s.items = nil
	if sess == nil {
		s.session = nil
		s.mu.Unlock()
		return nil
	}
	cp := *sess
	s.session = &cp
	s.mu.Unlock()
	return s.Refresh(ctx)
}

func (s *CartState) Session() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

// Refresh refetches the cart. Without a session it is a no-op.
func (s *CartState) Refresh(ctx context.Context) error {
	done := s.begin()
	defer done()
	return s.refetch(ctx, "fetch")
}

func (s *CartState) Add(ctx context.Context, productID string, qty int) error {
	return s.mutate(ctx, "add", func(ctx context.Context) error {
		_, err := s.client.AddToCart(ctx, productID, qty)
		return err
	})
}

func (s *CartState) Update(ctx context.Context, productID string, qty int) error {
	return s.mutate(ctx, "update", func(ctx context.Context) error {
		_, err := s.client.UpdateCart(ctx, productID, qty)
		return err
	})
}

func (s *CartState) Remove(ctx context.Context, productID string) error {
	return s.mutate(ctx, "remove", func(ctx context.Context) error {
		_, err := s.client.RemoveFromCart(ctx, productID)
		return err
	})
}

func (s *CartState) Clear(ctx context.Context) error {
	return s.mutate(ctx, "clear", func(ctx context.Context) error {
		_, err := s.client.ClearCart(ctx)
		return err
	})
}

func (s *CartState) Items() []cart.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]cart.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *CartState) TotalItems() int {
	n := 0
	for _, it := range s.Items() {
		n += it.Quantity
	}
	return n
}

func (s *CartState) TotalPrice() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range s.Items() {
		sum = sum.Add(it.Total())
	}
	return sum
}

// Busy reports whether any call is in flight.
func (s *CartState) Busy() bool { return s.busy.Load() > 0 }

func (s *CartState) begin() func() {
	s.busy.Add(1)
	return func() { s.busy.Add(-1) }
}

func (s *CartState) current() (*Session, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, s.gen
}

func (s *CartState) mutate(ctx context.Context, op string, call func(context.Context) error) error {
	done := s.begin()
	defer done()

	sess, _ := s.current()
	if sess == nil {
		err := fmt.Errorf("%w: %w", ErrAuthRequired, fault.Unauthenticated("no session"))
		s.log.Warn().Str("op", op).Msg("cart call without a session")
		return err
	}
	if err := call(WithToken(ctx, sess.Token)); err != nil {
		return s.fail(op, err)
	}
	return s.refetch(ctx, op)
}

func (s *CartState) refetch(ctx context.Context, op string) error {
	sess, gen := s.current()
	if sess == nil {
		return nil
	}
	v, err := s.client.Cart(WithToken(ctx, sess.Token))
	if err != nil {
		return s.fail(op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// the session changed while the request was in flight
		return nil
	}
	s.items = v.Items
	return nil
}

func (s *CartState) fail(op string, err error) error {
	s.log.Error().Err(err).Str("op", op).Msg("cart call failed")
	if errors.Is(err, ErrAuthRequired) && s.OnAuthRequired != nil {
		s.OnAuthRequired(err)
	}
	return err
}
