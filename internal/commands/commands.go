// Package commands seeds and inspects the storefront cart directly through
// browser storage, and wraps the cart UI interactions scenarios reuse.
package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/catalog"
	"github.com/adyen/storefront-e2e/internal/expect"
	"github.com/adyen/storefront-e2e/internal/pages"
	sf "github.com/adyen/storefront-e2e/internal/storefront"
)

const (
	// DefaultStorageSettle is the pause after a storage write.
	DefaultStorageSettle = 100 * time.Millisecond
	// CartLoadTimeout bounds the waits for the cart screen.
	CartLoadTimeout = 10 * time.Second
)

// Cart setups understood by SetupCartForTesting
const (
	SetupEmpty    = "empty"
	SetupSingle   = "single"
	SetupMultiple = "multiple"
)

var setups = map[string][]catalog.CartRequest{
	SetupSingle:   {{ID: 1, Quantity: 2}},
	SetupMultiple: {{ID: 1, Quantity: 2}, {ID: 2, Quantity: 1}, {ID: 3, Quantity: 3}},
}

// Commands operates on one scenario's page
type Commands struct {
	page   browser.Page
	expect *expect.Asserter
	cart   *pages.CartPage
	logger *zap.Logger
	settle time.Duration
}

// New builds commands for page. A nil logger discards output and a
// non-positive settle uses DefaultStorageSettle.
func New(page browser.Page, a *expect.Asserter, logger *zap.Logger, settle time.Duration) *Commands {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settle <= 0 {
		settle = DefaultStorageSettle
	}
	return &Commands{
		page:   page,
		expect: a,
		cart:   pages.NewCartPage(page, a),
		logger: logger,
		settle: settle,
	}
}

// AddMultipleProductsToCart replaces the whole of browser storage with a cart
// holding reqs. Every id is resolved before storage is touched, so an unknown
// product leaves storage as it was.
func (c *Commands) AddMultipleProductsToCart(ctx context.Context, reqs []catalog.CartRequest) error {
	items, err := catalog.BuildCart(reqs)
	if err != nil {
		return err
	}
	raw, err := catalog.EncodeCart(items)
	if err != nil {
		return err
	}

	if err := c.page.ClearStorage(ctx); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	if err := c.page.SetItem(ctx, sf.StorageKeyCart, raw); err != nil {
		return fmt.Errorf("failed to write cart: %w", err)
	}
	c.logger.Debug("cart set in storage", zap.String("cart", raw))

	return sleep(ctx, c.settle)
}

// ClearCart removes the cart key. On the cart screen it also waits for the
// empty state.
func (c *Commands) ClearCart(ctx context.Context) error {
	if err := c.page.RemoveItem(ctx, sf.StorageKeyCart); err != nil {
		return fmt.Errorf("failed to remove cart: %w", err)
	}

	u, err := c.page.URL(ctx)
	if err != nil {
		return err
	}
	if !strings.Contains(u, sf.RouteCart) {
		return nil
	}
	return c.expect.Within(CartLoadTimeout).That(ctx, expect.Visible(c.cart.Elements.EmptyCart))
}

// VerifyCartTotal opens the cart if needed and checks the subtotal label
// contains expected, e.g. "$159.98".
func (c *Commands) VerifyCartTotal(ctx context.Context, expected string) error {
	if err := c.openCart(ctx); err != nil {
		return err
	}
	return c.cart.VerifySubtotal(ctx, expected)
}

// RemoveProductFromCart clicks the item's remove button and waits for its row
// to disappear.
func (c *Commands) RemoveProductFromCart(ctx context.Context, id int) error {
	itemID := strconv.Itoa(id)
	if err := c.openCart(ctx); err != nil {
		return err
	}
	if err := c.expect.That(ctx, expect.Exist(c.cart.CartItem(itemID))); err != nil {
		return err
	}
	if err := c.cart.RemoveItem(ctx, itemID); err != nil {
		return err
	}
	return c.cart.VerifyCartItemNotExists(ctx, itemID)
}

// UpdateCartQuantity selects quantity for an item. Zero must remove the row;
// any other value must show in the select.
func (c *Commands) UpdateCartQuantity(ctx context.Context, id, quantity int) error {
	itemID := strconv.Itoa(id)
	qty := strconv.Itoa(quantity)
	if err := c.openCart(ctx); err != nil {
		return err
	}
	if err := c.expect.That(ctx, expect.Exist(c.cart.CartItem(itemID))); err != nil {
		return err
	}
	if err := c.cart.UpdateItemQuantity(ctx, itemID, qty); err != nil {
		return err
	}
	if quantity == 0 {
		return c.cart.VerifyCartItemNotExists(ctx, itemID)
	}
	return c.cart.VerifyItemQuantity(ctx, itemID, qty)
}

// GetExpectedCartTotal sums price x quantity of the stored cart in cents,
// independently of what the page renders.
func (c *Commands) GetExpectedCartTotal(ctx context.Context) (int64, error) {
	items, err := c.StoredCart(ctx)
	if err != nil {
		return 0, err
	}
	return catalog.SubtotalCents(items), nil
}

// StoredCart decodes the cart key. A missing key is an empty cart.
func (c *Commands) StoredCart(ctx context.Context) ([]catalog.CartItem, error) {
	raw, _, err := c.page.GetItem(ctx, sf.StorageKeyCart)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	return catalog.DecodeCart(raw)
}

// SetupCartForTesting seeds one of the named carts. Unknown names clear the cart.
func (c *Commands) SetupCartForTesting(ctx context.Context, setup string) error {
	reqs, ok := setups[setup]
	if !ok {
		if setup != SetupEmpty {
			c.logger.Warn("unknown cart setup, clearing cart", zap.String("setup", setup))
		}
		return c.ClearCart(ctx)
	}
	return c.AddMultipleProductsToCart(ctx, reqs)
}

// openCart navigates to the cart unless already there and waits for it to load.
func (c *Commands) openCart(ctx context.Context) error {
	if err := c.cart.VisitUnlessOnCart(ctx); err != nil {
		return err
	}
	return c.expect.Within(CartLoadTimeout).That(ctx,
		expect.Visible(c.cart.Elements.CartPage),
		expect.NotExist(c.cart.Elements.LoadingState),
	)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
