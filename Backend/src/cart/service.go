package cart

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"

	"github.com/ahinestrog/smartkart/Backend/src/platform/auth"
	"github.com/ahinestrog/smartkart/Backend/src/platform/events"
	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

type Service struct {
	repo     Repository
	products ProductLookup
	events   Events
	now      func() time.Time
}

func NewService(repo Repository, products ProductLookup, ev Events) *Service {
	return &Service{
		repo:     repo,
		products: products,
		events:   ev,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Get(ctx context.Context) (View, error) {
	uid, err := auth.MustUser(ctx)
	if err != nil {
		return View{}, err
	}
	c, err := s.repo.Get(ctx, uid)
	if err != nil {
		return View{}, fault.Unavailable("get cart", err)
	}
	return c.View(), nil
}

func (s *Service) Add(ctx context.Context, productID string, qty int) (View, error) {
	uid, err := auth.MustUser(ctx)
	if err != nil {
		return View{}, err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return View{}, fault.InvalidArgument("productId is required")
	}
	if err := checkQuantity(qty); err != nil {
		return View{}, err
	}
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		if fault.Is(err, codes.NotFound) {
			return View{}, fault.NotFound("product not found")
		}
		return View{}, fault.Unavailable("lookup product", err)
	}
	line := LineItem{ProductID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image, Quantity: qty}

	c, err := s.repo.Mutate(ctx, uid, func(c *Cart) (bool, error) {
		if err := c.Add(line); err != nil {
			return false, err
		}
		c.UpdatedAt = s.now()
		return true, nil
	})
	if err != nil {
		return View{}, fault.Unavailable("add to cart", err)
	}
	s.publish(ctx, events.RKCartUpdated, uid, c)
	return c.View(), nil
}

func (s *Service) Update(ctx context.Context, productID string, qty int) (View, error) {
	uid, err := auth.MustUser(ctx)
	if err != nil {
		return View{}, err
	}
	if err := checkQuantity(qty); err != nil {
		return View{}, err
	}
	productID = strings.TrimSpace(productID)
	c, err := s.repo.Mutate(ctx, uid, func(c *Cart) (bool, error) {
		if !c.SetQuantity(productID, qty) {
			return false, fault.NotFound("item not found in cart")
		}
		c.UpdatedAt = s.now()
		return true, nil
	})
	if err != nil {
		return View{}, fault.Unavailable("update cart", err)
	}
	s.publish(ctx, events.RKCartUpdated, uid, c)
	return c.View(), nil
}

// Remove is a no-op for a product that has no line.
func (s *Service) Remove(ctx context.Context, productID string) (View, error) {
	uid, err := auth.MustUser(ctx)
	if err != nil {
		return View{}, err
	}
	productID = strings.TrimSpace(productID)
	removed := false
	c, err := s.repo.Mutate(ctx, uid, func(c *Cart) (bool, error) {
		removed = c.Remove(productID)
		if removed {
			c.UpdatedAt = s.now()
		}
		return removed, nil
	})
	if err != nil {
		return View{}, fault.Unavailable("remove from cart", err)
	}
	if removed {
		s.publish(ctx, events.RKCartUpdated, uid, c)
	}
	return c.View(), nil
}

func (s *Service) Clear(ctx context.Context) (View, error) {
	uid, err := auth.MustUser(ctx)
	if err != nil {
		return View{}, err
	}
	c, err := s.repo.Mutate(ctx, uid, func(c *Cart) (bool, error) {
		if !c.Clear() {
			return false, nil
		}
		c.UpdatedAt = s.now()
		return true, nil
	})
	if err != nil {
		return View{}, fault.Unavailable("clear cart", err)
	}
	s.publish(ctx, events.RKCartCleared, uid, c)
	return c.View(), nil
}

func (s *Service) publish(ctx context.Context, key, uid string, c *Cart) {
	if s.events == nil {
		return
	}
	payload := map[string]any{
		"userId":     uid,
		"totalItems": c.TotalItems(),
		"totalPrice": c.TotalPrice().StringFixed(2),
	}
	if err := s.events.Publish(ctx, key, payload); err != nil {
		log.Warn().Err(err).Str("key", key).Str("user", uid).Msg("event publish failed")
	}
}
