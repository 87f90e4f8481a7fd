package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/catalog"
	"github.com/google/uuid"
)

const DefaultMaxAttempts = 3

// ProductLookup resolves products against the catalog. It must return
// catalog.ErrProductNotFound for unknown products.
type ProductLookup interface {
	FindProduct(ctx context.Context, productID int64) (catalog.Product, error)
}

type ChangeKind string

const (
	ChangeCreated     ChangeKind = "created"
	ChangeItemAdded   ChangeKind = "item-added"
	ChangeItemUpdated ChangeKind = "item-updated"
	ChangeItemRemoved ChangeKind = "item-removed"
	ChangeCleared     ChangeKind = "cleared"
)

// Change describes a persisted cart mutation.
type Change struct {
	Kind      ChangeKind
	ProductID int64
	Cart      View
}

// ChangeNotifier is told about every persisted mutation, after the save.
type ChangeNotifier interface {
	CartChanged(ctx context.Context, change Change) error
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithNotifier(n ChangeNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithMaxAttempts bounds how many times a mutation is retried on ErrVersionConflict.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// Service is the only mutator of carts. Each mutation is a load, mutate, save
// cycle against the Repository; version conflicts restart the cycle.
type Service struct {
	repo     Repository
	products ProductLookup
	notifier ChangeNotifier
	logger   *slog.Logger

	maxAttempts int
	now         func() time.Time
	newID       func() string
}

func NewService(repo Repository, products ProductLookup, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		products:    products,
		logger:      slog.Default(),
		maxAttempts: DefaultMaxAttempts,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateCart(ctx context.Context) (View, error) {
	c := New(s.newID(), s.now())
	if err := s.repo.Create(ctx, c); err != nil {
		return View{}, unavailable("create cart", err)
	}

	s.logger.InfoContext(ctx, "cart created", "cart_id", c.ID)
	view := NewView(c)
	s.notify(ctx, Change{Kind: ChangeCreated, Cart: view})
	return view, nil
}

func (s *Service) GetCart(ctx context.Context, cartID string) (View, error) {
	c, err := s.load(ctx, cartID)
	if err != nil {
		return View{}, err
	}
	return NewView(c), nil
}

// AddToCart adds one unit of productID. A repeated add increments the
// existing line and keeps the price captured by the first add.
func (s *Service) AddToCart(ctx context.Context, cartID string, productID int64) (ItemView, error) {
	var (
		product *catalog.Product
		line    Item
	)

	c, err := s.mutate(ctx, cartID, func(c *Cart) (bool, error) {
		if product == nil {
			p, err := s.products.FindProduct(ctx, productID)
			if err != nil {
				if errors.Is(err, catalog.ErrProductNotFound) {
					return false, ErrProductNotFound
				}
				return false, unavailable("find product", err)
			}
			product = &p
		}
		var err error
		line, err = c.AddOrMergeLine(product.ID, product.Price)
		return err == nil, err
	})
	if err != nil {
		return ItemView{}, err
	}

	s.logger.InfoContext(ctx, "item added to cart", "cart_id", cartID, "product_id", productID, "quantity", line.Quantity)
	s.notify(ctx, Change{Kind: ChangeItemAdded, ProductID: productID, Cart: NewView(c)})
	return NewItemView(line), nil
}

// UpdateCartItem sets the quantity of an existing line. Quantities outside
// 1..MaxQuantity are rejected; removing a line is done with RemoveItem.
func (s *Service) UpdateCartItem(ctx context.Context, cartID string, productID int64, quantity int) (ItemView, error) {
	if !validQuantity(quantity) {
		return ItemView{}, ErrInvalidQuantity
	}

	var line Item
	c, err := s.mutate(ctx, cartID, func(c *Cart) (bool, error) {
		var err error
		line, err = c.SetLineQuantity(productID, quantity)
		return err == nil, err
	})
	if err != nil {
		return ItemView{}, err
	}

	s.notify(ctx, Change{Kind: ChangeItemUpdated, ProductID: productID, Cart: NewView(c)})
	return NewItemView(line), nil
}

// RemoveItem is idempotent: removing a product the cart does not hold succeeds
// without writing.
func (s *Service) RemoveItem(ctx context.Context, cartID string, productID int64) error {
	removed := false
	c, err := s.mutate(ctx, cartID, func(c *Cart) (bool, error) {
		removed = c.RemoveLine(productID)
		return removed, nil
	})
	if err != nil {
		return err
	}

	if removed {
		s.notify(ctx, Change{Kind: ChangeItemRemoved, ProductID: productID, Cart: NewView(c)})
	}
	return nil
}

func (s *Service) ClearCart(ctx context.Context, cartID string) error {
	cleared := false
	c, err := s.mutate(ctx, cartID, func(c *Cart) (bool, error) {
		cleared = !c.IsEmpty()
		c.Clear()
		return cleared, nil
	})
	if err != nil {
		return err
	}

	if cleared {
		s.notify(ctx, Change{Kind: ChangeCleared, Cart: NewView(c)})
	}
	return nil
}

func (s *Service) load(ctx context.Context, cartID string) (*Cart, error) {
	// A malformed id cannot name a stored cart.
	if _, err := uuid.Parse(cartID); err != nil {
		return nil, ErrCartNotFound
	}

	c, err := s.repo.Get(ctx, cartID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, unavailable("load cart", err)
	}
	return c, nil
}

// mutate runs apply against a freshly loaded cart and saves it when apply
// reports a change. A version conflict reloads and reapplies, up to maxAttempts.
func (s *Service) mutate(ctx context.Context, cartID string, apply func(c *Cart) (bool, error)) (*Cart, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		c, err := s.load(ctx, cartID)
		if err != nil {
			return nil, err
		}

		changed, err := apply(c)
		if err != nil {
			return nil, err
		}
		if !changed {
			return c, nil
		}

		c.UpdatedAt = s.now()
		err = s.repo.Save(ctx, c)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, unavailable("save cart", err)
		}

		lastErr = err
		s.logger.WarnContext(ctx, "cart version conflict", "cart_id", cartID, "attempt", attempt)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, unavailable("save cart", ctxErr)
		}
	}
	return nil, fmt.Errorf("save cart %s after %d attempts: %w", cartID, s.maxAttempts, lastErr)
}

func (s *Service) notify(ctx context.Context, change Change) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.CartChanged(ctx, change); err != nil {
		s.logger.ErrorContext(ctx, "cart change notification failed",
			"cart_id", change.Cart.ID, "kind", string(change.Kind), "error", err)
	}
}
