package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/adyen/storefront-e2e/internal/catalog"
)

// storageSteps expose the storage commands, which set up carts without
// going through the product screens.
func (s *Scenario) storageSteps(r *Registry) {
	r.Step(`^the cart is seeded with:$`, func(ctx context.Context, table *godog.Table) error {
		reqs, err := cartRequests(table)
		if err != nil {
			return err
		}
		return s.commands.AddMultipleProductsToCart(ctx, reqs)
	})
	r.Step(`^the cart is set up as "([^"]*)"$`, func(ctx context.Context, setup string) error {
		return s.commands.SetupCartForTesting(ctx, setup)
	})
	r.Step(`^the cart is cleared$`, func(ctx context.Context) error {
		return s.commands.ClearCart(ctx)
	})
	r.Step(`^the cart total should be "([^"]*)"$`, func(ctx context.Context, total string) error {
		return s.commands.VerifyCartTotal(ctx, total)
	})
	r.Step(`^I remove product (\d+) from the cart$`, func(ctx context.Context, id int) error {
		return s.commands.RemoveProductFromCart(ctx, id)
	})
	r.Step(`^I update product (\d+) to quantity (\d+)$`, func(ctx context.Context, id, qty int) error {
		return s.commands.UpdateCartQuantity(ctx, id, qty)
	})
	r.Step(`^the displayed subtotal should match the stored cart$`, s.subtotalMatchesStorage)
	r.Step(`^the stored cart should contain product (\d+) with quantity (\d+)$`, s.storedItem)
	r.Step(`^(?:the stored cart should be empty|my cart should be empty after purchase)$`, func(ctx context.Context) error {
		items, err := s.commands.StoredCart(ctx)
		if err != nil {
			return err
		}
		if len(items) != 0 {
			return fmt.Errorf("expected an empty stored cart, found %d items", len(items))
		}
		return nil
	})
}

// storedItem checks the stored entry of a product against the fixture price
func (s *Scenario) storedItem(ctx context.Context, id, qty int) error {
	product, err := catalog.Lookup(id)
	if err != nil {
		return err
	}
	items, err := s.commands.StoredCart(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.ID != id {
			continue
		}
		if item.Quantity != qty {
			return fmt.Errorf("stored product %d has quantity %d, expected %d", id, item.Quantity, qty)
		}
		if catalog.ToCents(item.Price) != product.Cents() {
			return fmt.Errorf("stored product %d has price %s, expected %s", id, catalog.FormatPrice(item.Price), product.FormattedPrice())
		}
		return nil
	}
	return fmt.Errorf("product %d is not in the stored cart", id)
}
