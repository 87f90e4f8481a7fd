package cart

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/catalog"
)

type memRepo struct {
	mu    sync.Mutex
	carts map[string]*Cart

	saves     int
	conflicts int // number of upcoming saves to reject with ErrVersionConflict
	createErr error
	getErr    error
	saveErr   error
}

func newMemRepo() *memRepo {
	return &memRepo{carts: map[string]*Cart{}}
}

func cloneCart(c *Cart) *Cart {
	cp := *c
	cp.Items = append([]Item{}, c.Items...)
	return &cp
}

func (r *memRepo) Create(_ context.Context, c *Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.carts[c.ID] = cloneCart(c)
	return nil
}

func (r *memRepo) Get(_ context.Context, id string) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	c, ok := r.carts[id]
	if !ok {
		return nil, ErrCartNotFound
	}
	return cloneCart(c), nil
}

func (r *memRepo) Save(_ context.Context, c *Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	if r.conflicts > 0 {
		r.conflicts--
		return ErrVersionConflict
	}
	if err := c.Validate(); err != nil {
		return err
	}
	stored, ok := r.carts[c.ID]
	if !ok || stored.Version != c.Version {
		return ErrVersionConflict
	}
	c.Version++
	r.carts[c.ID] = cloneCart(c)
	return nil
}

type fakeProducts struct {
	products map[int64]catalog.Product
	err      error
	calls    int
}

func (f *fakeProducts) FindProduct(_ context.Context, id int64) (catalog.Product, error) {
	f.calls++
	if f.err != nil {
		return catalog.Product{}, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	return p, nil
}

type recordingNotifier struct {
	changes []Change
	err     error
}

func (n *recordingNotifier) CartChanged(_ context.Context, c Change) error {
	n.changes = append(n.changes, c)
	return n.err
}

func (n *recordingNotifier) kinds() []ChangeKind {
	out := make([]ChangeKind, 0, len(n.changes))
	for _, c := range n.changes {
		out = append(out, c.Kind)
	}
	return out
}

type fixture struct {
	repo     *memRepo
	products *fakeProducts
	notifier *recordingNotifier
	svc      *Service
}

func newFixture(opts ...Option) *fixture {
	f := &fixture{
		repo: newMemRepo(),
		products: &fakeProducts{products: map[int64]catalog.Product{
			1: {ID: 1, Name: "Keyboard", Price: decimal.RequireFromString("10.00")},
			2: {ID: 2, Name: "Mouse", Price: decimal.RequireFromString("4.99")},
		}},
		notifier: &recordingNotifier{},
	}
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithNotifier(f.notifier),
	}
	f.svc = NewService(f.repo, f.products, append(base, opts...)...)
	return f
}

func (f *fixture) createCart(t *testing.T) string {
	t.Helper()
	v, err := f.svc.CreateCart(context.Background())
	require.NoError(t, err)
	return v.ID
}

func TestService_CreateCart(t *testing.T) {
	f := newFixture()

	v, err := f.svc.CreateCart(context.Background())
	require.NoError(t, err)

	_, err = uuid.Parse(v.ID)
	assert.NoError(t, err)
	assert.NotNil(t, v.Items)
	assert.Empty(t, v.Items)
	assert.True(t, v.TotalPrice.IsZero())
	assert.Equal(t, []ChangeKind{ChangeCreated}, f.notifier.kinds())

	again, err := f.svc.CreateCart(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, v.ID, again.ID)
}

func TestService_CreateCartStoreFailure(t *testing.T) {
	f := newFixture()
	f.repo.createErr = errors.New("connection refused")

	_, err := f.svc.CreateCart(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, f.notifier.changes)
}

func TestService_GetCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.GetCart(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrCartNotFound)

	_, err = f.svc.GetCart(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrCartNotFound)

	f.repo.getErr = errors.New("timeout")
	_, err = f.svc.GetCart(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrCartNotFound)
}

func TestService_AddToCartMergesLines(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.createCart(t)

	item, err := f.svc.AddToCart(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)

	item, err = f.svc.AddToCart(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "20.00", item.TotalPrice.StringFixed(2))

	v, err := f.svc.GetCart(ctx, id)
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "20.00", v.TotalPrice.StringFixed(2))
}

func TestService_AddToCartKeepsCapturedPrice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.createCart(t)

	_, err := f.svc.AddToCart(ctx, id, 1)
	require.NoError(t, err)

	p := f.products.products[1]
	p.Price = decimal.RequireFromString("15.00")
	f.products.products[1] = p

	item, err := f.svc.AddToCart(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, "10.00", item.UnitPrice.StringFixed(2))

	v, err := f.svc.GetCart(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "20.00", v.TotalPrice.StringFixed(2))
}

func TestService_AddToCartErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown product leaves cart untouched", func(t *testing.T) {
		f := newFixture()
		id := f.createCart(t)

		_, err := f.svc.AddToCart(ctx, id, 999)
		assert.ErrorIs(t, err, ErrProductNotFound)

		v, err := f.svc.GetCart(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, v.Items)
		assert.Zero(t, f.repo.saves)
	})

	t.Run("unknown cart", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.AddToCart(ctx, uuid.NewString(), 1)
		assert.ErrorIs(t, err, ErrCartNotFound)
		assert.Zero(t, f.products.calls)
	})

	t.Run("catalog failure is unavailable", func(t *testing.T) {
		f := newFixture()
		id := f.createCart(t)
		f.products.err = errors.New("catalog down")

		_, err := f.svc.AddToCart(ctx, id, 1)
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.NotErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("store failure on save is unavailable", func(t *testing.T) {
		f := newFixture()
		id := f.createCart(t)
		f.repo.saveErr = errors.New("disk full")

		_, err := f.svc.AddToCart(ctx, id, 1)
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Equal(t, 1, f.repo.saves)
	})
}

func TestService_UpdateCartItem(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.createCart(t)

	_, err := f.svc.AddToCart(ctx, id, 1)
	require.NoError(t, err)

	item, err := f.svc.UpdateCartItem(ctx, id, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)
	assert.Equal(t, "50.00", item.TotalPrice.StringFixed(2))

	v, err := f.svc.GetCart(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "50.00", v.TotalPrice.StringFixed(2))
	assert.Equal(t, []ChangeKind{ChangeCreated, ChangeItemAdded, ChangeItemUpdated}, f.notifier.kinds())
}

func TestService_UpdateCartItemErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := f.createCart(t)
	_, err := f.svc.AddToCart(ctx, id, 1)
	require.NoError(t, err)
	saves := f.repo.saves

	for _, qty := range []int{0, -1, MaxQuantity + 1, 3_000_000_000} {
		_, err = f.svc.UpdateCartItem(ctx, id, 1, qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}

	_, err = f.svc.UpdateCartItem(ctx, id, 2, 3)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = f.svc.UpdateCartItem(ctx, uuid.NewString(), 1, 3)
	assert.ErrorIs(t, err, ErrCartNotFound)

	assert.Equal(t, saves, f.repo.saves)

	v, err := f.svc.GetCart(ctx, id)
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, 1, v.Items[0].Quantity)
}

func TestService_RemoveItemIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.createCart(t)

	_, err := f.svc.AddToCart(ctx, id, 1)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, id, 2)
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveItem(ctx, id, 1))
	first, err := f.svc.GetCart(ctx, id)
	require.NoError(t, err)

	saves := f.repo.saves
	require.NoError(t, f.svc.RemoveItem(ctx, id, 1))
	require.NoError(t, f.svc.RemoveItem(ctx, id, 42))
	assert.Equal(t, saves, f.repo.saves)

	second, err := f.svc.GetCart(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	require.Len(t, second.Items, 1)
	assert.Equal(t, int64(2), second.Items[0].ProductID)
	assert.True(t, first.TotalPrice.Equal(second.TotalPrice))

	assert.ErrorIs(t, f.svc.RemoveItem(ctx, uuid.NewString(), 1), ErrCartNotFound)
}

func TestService_ClearCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.createCart(t)

	_, err := f.svc.AddToCart(ctx, id, 1)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, id, 2)
	require.NoError(t, err)

	require.NoError(t, f.svc.ClearCart(ctx, id))

	v, err := f.svc.GetCart(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, v.ID)
	assert.Empty(t, v.Items)
	assert.True(t, v.TotalPrice.IsZero())

	saves := f.repo.saves
	require.NoError(t, f.svc.ClearCart(ctx, id))
	assert.Equal(t, saves, f.repo.saves)

	assert.ErrorIs(t, f.svc.ClearCart(ctx, uuid.NewString()), ErrCartNotFound)
}

func TestService_RetriesVersionConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.createCart(t)
	f.repo.conflicts = 2

	item, err := f.svc.AddToCart(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, 3, f.repo.saves)
	assert.Equal(t, 1, f.products.calls, "price is captured once per call")

	v, err := f.svc.GetCart(ctx, id)
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, 1, v.Items[0].Quantity)
}

func TestService_RetriesExhausted(t *testing.T) {
	f := newFixture(WithMaxAttempts(2))
	ctx := context.Background()
	id := f.createCart(t)
	f.repo.conflicts = 5

	_, err := f.svc.AddToCart(ctx, id, 1)
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, f.repo.saves)

	v, err := f.svc.GetCart(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, v.Items)
}

func TestService_ConcurrentWriterIsRetried(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.createCart(t)

	// Another writer bumps the stored version after our first load.
	interfere := &interferingRepo{memRepo: f.repo, once: func() {
		f.repo.mu.Lock()
		f.repo.carts[id].Version++
		f.repo.mu.Unlock()
	}}
	svc := NewService(interfere, f.products, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	_, err := svc.AddToCart(ctx, id, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, f.repo.saves)
}

type interferingRepo struct {
	*memRepo
	once func()
}

func (r *interferingRepo) Get(ctx context.Context, id string) (*Cart, error) {
	c, err := r.memRepo.Get(ctx, id)
	if r.once != nil {
		r.once()
		r.once = nil
	}
	return c, err
}

func TestService_NotifierFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture()
	f.notifier.err = errors.New("broker down")
	ctx := context.Background()
	id := f.createCart(t)

	item, err := f.svc.AddToCart(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)

	require.Len(t, f.notifier.changes, 2)
	added := f.notifier.changes[1]
	assert.Equal(t, ChangeItemAdded, added.Kind)
	assert.Equal(t, int64(1), added.ProductID)
	assert.Equal(t, id, added.Cart.ID)
	assert.Equal(t, int64(0), f.notifier.changes[0].Cart.Version)
	assert.Equal(t, int64(1), added.Cart.Version)
}

func TestService_ChangesCarryCommittedVersion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.createCart(t)
	f.repo.conflicts = 1

	_, err := f.svc.AddToCart(ctx, id, 1)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, id, 2)
	require.NoError(t, err)

	require.Len(t, f.notifier.changes, 3)
	assert.Equal(t, int64(2), f.repo.carts[id].Version)
	for i, c := range f.notifier.changes {
		assert.Equal(t, int64(i), c.Cart.Version)
	}
}

func TestService_UsesClockAndIDGenerator(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	id := uuid.NewString()
	f := newFixture(WithClock(func() time.Time { return fixed }), WithIDGenerator(func() string { return id }))

	v, err := f.svc.CreateCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id, v.ID)
	assert.Equal(t, fixed, f.repo.carts[id].CreatedAt)
}

func TestService_AddToCartAtMaxQuantity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.createCart(t)

	_, err := f.svc.AddToCart(ctx, id, 1)
	require.NoError(t, err)
	_, err = f.svc.UpdateCartItem(ctx, id, 1, MaxQuantity)
	require.NoError(t, err)
	saves := f.repo.saves

	_, err = f.svc.AddToCart(ctx, id, 1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, saves, f.repo.saves)

	v, err := f.svc.GetCart(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity, v.Items[0].Quantity)
}
