package steps

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/adyen/storefront-e2e/internal/catalog"
	"github.com/adyen/storefront-e2e/internal/expect"
	sf "github.com/adyen/storefront-e2e/internal/storefront"
)

// Carts the UI setup steps build
var (
	twoItemCart = []catalog.CartRequest{{ID: 1, Quantity: 2}, {ID: 2, Quantity: 1}}
	oneItemCart = []catalog.CartRequest{{ID: 1, Quantity: 2}}
)

func (s *Scenario) cartSteps(r *Registry) {
	r.Step(`^I am on the cart page$`, func(ctx context.Context) error {
		return s.pages.Cart.VisitUnlessOnCart(ctx)
	})
	r.Step(`^(?:the cart is empty|I have an empty cart)$`, func(ctx context.Context) error {
		if err := s.page.ClearStorage(ctx); err != nil {
			return fmt.Errorf("failed to clear storage: %w", err)
		}
		if err := s.pages.Cart.Visit(ctx); err != nil {
			return err
		}
		return s.pages.Cart.VerifyEmptyCart(ctx)
	})

	r.Step(`^the cart contains items$`, func(ctx context.Context) error {
		if err := s.addProductsViaUI(ctx, twoItemCart); err != nil {
			return err
		}
		return s.pages.Cart.VerifyCartHasItems(ctx)
	})
	r.Step(`^the cart contains a product with id "(\d+)"$`, func(ctx context.Context, id string) error {
		if err := s.addProductViaUI(ctx, id, "2"); err != nil {
			return err
		}
		return s.pages.Cart.VerifyCartItemExists(ctx, id)
	})
	r.Step(`^the cart contains a product with id "(\d+)" and quantity "(\d+)"$`, func(ctx context.Context, id, qty string) error {
		if err := s.addProductViaUI(ctx, id, qty); err != nil {
			return err
		}
		if err := s.pages.Cart.VerifyCartItemExists(ctx, id); err != nil {
			return err
		}
		return s.pages.Cart.VerifyItemQuantity(ctx, id, qty)
	})
	r.Step(`^the cart contains a product with id "(\d+)", price "([^"]*)" and quantity "(\d+)"$`, func(ctx context.Context, id, price, qty string) error {
		if err := s.addProductViaUI(ctx, id, qty); err != nil {
			return err
		}
		if err := s.pages.Cart.VerifyCartItemExists(ctx, id); err != nil {
			return err
		}
		if err := s.pages.Cart.VerifyItemQuantity(ctx, id, qty); err != nil {
			return err
		}
		return s.pages.Cart.VerifyItemPrice(ctx, id, price)
	})
	r.Step(`^the cart contains only one product with id "(\d+)"$`, func(ctx context.Context, id string) error {
		if err := s.addProductViaUI(ctx, id, "1"); err != nil {
			return err
		}
		if err := s.pages.Cart.VerifyCartItemCount(ctx, 1); err != nil {
			return err
		}
		return s.pages.Cart.VerifyCartItemExists(ctx, id)
	})
	r.Step(`^the cart contains products with ids "([^"]*)"$`, func(ctx context.Context, list string) error {
		ids := splitIDs(list)
		reqs := make([]catalog.CartRequest, 0, len(ids))
		for _, raw := range ids {
			id, err := catalog.ParseID(raw)
			if err != nil {
				return err
			}
			reqs = append(reqs, catalog.CartRequest{ID: id, Quantity: 1})
		}
		if err := s.addProductsViaUI(ctx, reqs); err != nil {
			return err
		}
		return s.pages.Cart.VerifyMultipleItems(ctx, ids)
	})
	r.Step(`^the cart contains multiple items:$`, func(ctx context.Context, table *godog.Table) error {
		reqs, err := cartRequests(table)
		if err != nil {
			return err
		}
		if err := s.addProductsViaUI(ctx, reqs); err != nil {
			return err
		}
		for _, req := range reqs {
			id := strconv.Itoa(req.ID)
			if err := s.pages.Cart.VerifyCartItemExists(ctx, id); err != nil {
				return err
			}
			if err := s.pages.Cart.VerifyItemQuantity(ctx, id, strconv.Itoa(req.Quantity)); err != nil {
				return err
			}
		}
		return nil
	})

	r.Step(`^I should see (?:the )?empty cart message$`, func(ctx context.Context) error {
		return s.pages.Cart.VerifyEmptyCart(ctx)
	})
	r.Step(`^I should not see the empty cart message$`, func(ctx context.Context) error {
		return s.pages.Cart.VerifyEmptyCartAbsent(ctx)
	})
	r.Step(`^I should see the continue shopping button$`, func(ctx context.Context) error {
		return s.pages.Cart.VerifyContinueShoppingButton(ctx)
	})
	r.Step(`^I should (?:see the cart items container|still see my cart items|see the product in my cart)$`, func(ctx context.Context) error {
		return s.pages.Cart.VerifyCartHasItems(ctx)
	})
	r.Step(`^I should not see the cart items container$`, func(ctx context.Context) error {
		return s.pages.Cart.VerifyCartItemsContainerAbsent(ctx)
	})
	r.Step(`^I should see the cart summary$`, func(ctx context.Context) error {
		return s.pages.Cart.VerifyCartSummary(ctx)
	})
	r.Step(`^I should see the subtotal$`, func(ctx context.Context) error {
		return s.pages.Cart.VerifySubtotalVisible(ctx)
	})
	r.Step(`^(?:I should see the proceed to checkout button|the proceed to checkout button is enabled)$`, func(ctx context.Context) error {
		return s.pages.Cart.VerifyProceedToCheckoutButton(ctx)
	})
	r.Step(`^I should not see the proceed to checkout button$`, func(ctx context.Context) error {
		return s.pages.Cart.VerifyProceedToCheckoutAbsent(ctx)
	})

	r.Step(`^(?:I should (?:still )?see the cart item with id|the cart should still contain the item) "(\d+)"$`, func(ctx context.Context, id string) error {
		return s.pages.Cart.VerifyCartItemExists(ctx, id)
	})
	r.Step(`^I should not see the cart item with id "(\d+)"$`, func(ctx context.Context, id string) error {
		return s.pages.Cart.VerifyCartItemNotExists(ctx, id)
	})
	r.Step(`^the item "(\d+)" should be removed from the cart$`, func(ctx context.Context, id string) error {
		return s.pages.Cart.VerifyCartItemNotExists(ctx, id)
	})
	r.Step(`^I should see the (item price|quantity selector|remove button) for product "(\d+)"$`, s.itemControl)
	r.Step(`^I should still see cart items with ids "([^"]*)"$`, func(ctx context.Context, list string) error {
		return s.pages.Cart.VerifyMultipleItems(ctx, splitIDs(list))
	})
	r.Step(`^I should not see cart items with ids "([^"]*)"$`, func(ctx context.Context, list string) error {
		for _, id := range splitIDs(list) {
			if err := s.pages.Cart.VerifyCartItemNotExists(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
	r.Step(`^the cart should contain "(\d+)" items?$`, func(ctx context.Context, n int) error {
		return s.pages.Cart.VerifyCartItemCount(ctx, n)
	})
	r.Step(`^the cart should be empty$`, func(ctx context.Context) error {
		return s.pages.Cart.VerifyCartIsEmpty(ctx)
	})

	r.Step(`^I change the quantity of item "(\d+)" to "(\d+)"$`, func(ctx context.Context, id, qty string) error {
		if err := s.pages.Cart.UpdateItemQuantity(ctx, id, qty); err != nil {
			return err
		}
		// zero removes the row
		if qty == "0" {
			return nil
		}
		return s.pages.Cart.WaitForItemUpdate(ctx, id)
	})
	r.Step(`^the quantity of item "(\d+)" should be "(\d+)"$`, func(ctx context.Context, id, qty string) error {
		return s.pages.Cart.VerifyItemQuantity(ctx, id, qty)
	})
	r.Step(`^I click the remove button for item "(\d+)"$`, func(ctx context.Context, id string) error {
		return s.pages.Cart.RemoveItem(ctx, id)
	})
	r.Step(`^the quantity selector should show maximum value "(\d+)"$`, s.maxQuantity)

	r.Step(`^the subtotal (?:should show|shows) "([^"]*)"$`, func(ctx context.Context, amount string) error {
		return s.pages.Cart.VerifySubtotal(ctx, amount)
	})
	r.Step(`^the subtotal should (?:be updated accordingly|remain correct)$`, s.subtotalMatchesStorage)

	r.Step(`^I click the proceed to checkout button$`, func(ctx context.Context) error {
		return s.pages.Cart.ProceedToCheckout(ctx)
	})
	r.Step(`^I should be redirected to the checkout page$`, func(ctx context.Context) error {
		return s.expect.That(ctx, expect.URLContains("/checkout"))
	})
	r.Step(`^I click (?:the )?continue shopping(?: button)?$`, s.continueShopping)
	r.Step(`^I should be redirected to the homepage$`, func(ctx context.Context) error {
		return s.expect.That(ctx,
			expect.URLNotContains(sf.RouteCart),
			expect.Visible(s.pages.Home.Elements.MainContent),
		)
	})
	r.Step(`^I should be redirected to (?:the )?cart page$`, func(ctx context.Context) error {
		return s.expect.That(ctx, expect.URLContains(sf.RouteCart))
	})

	r.Step(`^(?:the loading indicator should not be visible|the quantity change should be applied immediately)$`, func(ctx context.Context) error {
		return s.pages.Cart.VerifyLoadingNotVisible(ctx)
	})
	r.Step(`^the cart page should be fully loaded$`, func(ctx context.Context) error {
		return s.pages.Cart.WaitForCartToLoad(ctx)
	})
	r.Step(`^I refresh the page$`, func(ctx context.Context) error {
		return s.page.Reload(ctx)
	})
}

// addProductViaUI adds one product from the homepage and lands on the cart
func (s *Scenario) addProductViaUI(ctx context.Context, id, quantity string) error {
	if err := s.pages.Home.Visit(ctx); err != nil {
		return err
	}
	return s.addFromListing(ctx, id, quantity)
}

// addProductsViaUI adds each product in turn, returning to the listing
// through the cart's continue shopping button between them.
func (s *Scenario) addProductsViaUI(ctx context.Context, reqs []catalog.CartRequest) error {
	for i, req := range reqs {
		id, qty := strconv.Itoa(req.ID), strconv.Itoa(req.Quantity)
		if i == 0 {
			if err := s.addProductViaUI(ctx, id, qty); err != nil {
				return err
			}
			continue
		}
		if err := s.pages.Cart.ContinueShopping(ctx); err != nil {
			return err
		}
		if err := s.addFromListing(ctx, id, qty); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scenario) addFromListing(ctx context.Context, id, quantity string) error {
	if err := s.pages.Home.ClickViewProduct(ctx, id); err != nil {
		return err
	}
	return s.pages.Product.AddProductToCart(ctx, quantity)
}

func (s *Scenario) itemControl(ctx context.Context, control, id string) error {
	switch control {
	case "item price":
		return s.pages.Cart.VerifyItemPriceVisible(ctx, id)
	case "quantity selector":
		return s.pages.Cart.VerifyQuantitySelectVisible(ctx, id)
	case "remove button":
		return s.pages.Cart.VerifyRemoveButtonVisible(ctx, id)
	}
	return fmt.Errorf("unknown cart item control %q", control)
}

// maxQuantity checks the quantity select of the first stored cart item
func (s *Scenario) maxQuantity(ctx context.Context, max string) error {
	items, err := s.commands.StoredCart(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("cart is empty, no quantity selector to check")
	}
	return s.pages.Cart.VerifyMaxQuantity(ctx, strconv.Itoa(items[0].ID), max)
}

// subtotalMatchesStorage checks the rendered subtotal against the stored cart
func (s *Scenario) subtotalMatchesStorage(ctx context.Context) error {
	if err := s.pages.Cart.VerifySubtotalVisible(ctx); err != nil {
		return err
	}
	if err := s.expect.That(ctx, expect.NotEmpty(s.pages.Cart.Elements.Subtotal)); err != nil {
		return err
	}
	total, err := s.commands.GetExpectedCartTotal(ctx)
	if err != nil {
		return err
	}
	return s.pages.Cart.VerifySubtotal(ctx, catalog.FormatCents(total))
}

// continueShopping clicks the continue shopping button of whichever screen
// is showing; the cart and the success page both render one.
func (s *Scenario) continueShopping(ctx context.Context) error {
	u, err := s.page.URL(ctx)
	if err != nil {
		return err
	}
	if strings.Contains(u, sf.RouteCheckoutSuccess) {
		return s.pages.Success.ClickContinueShopping(ctx)
	}
	return s.pages.Cart.ContinueShopping(ctx)
}

// cartRequests decodes an id/quantity table
func cartRequests(table *godog.Table) ([]catalog.CartRequest, error) {
	rows, err := tableRecords(table)
	if err != nil {
		return nil, err
	}
	reqs := make([]catalog.CartRequest, 0, len(rows))
	for i, row := range rows {
		id, err := catalog.ParseID(row["id"])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(row["quantity"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid quantity %q", i+1, row["quantity"])
		}
		reqs = append(reqs, catalog.CartRequest{ID: id, Quantity: qty})
	}
	return reqs, nil
}

// tableRecords maps every data row of a table by its header cells
func tableRecords(table *godog.Table) ([]map[string]string, error) {
	if table == nil || len(table.Rows) < 2 {
		return nil, fmt.Errorf("table needs a header row and at least one data row")
	}
	header := table.Rows[0].Cells
	records := make([]map[string]string, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		if len(row.Cells) != len(header) {
			return nil, fmt.Errorf("table row has %d cells, header has %d", len(row.Cells), len(header))
		}
		rec := make(map[string]string, len(header))
		for i, cell := range row.Cells {
			rec[strings.TrimSpace(header[i].Value)] = cell.Value
		}
		records = append(records, rec)
	}
	return records, nil
}

func splitIDs(list string) []string {
	var ids []string
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
