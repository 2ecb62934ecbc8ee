package pages

import (
	"context"
	"strconv"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/catalog"
	"github.com/adyen/storefront-e2e/internal/expect"
	sf "github.com/adyen/storefront-e2e/internal/storefront"
)

// CartElements are the static selectors of the cart screen
type CartElements struct {
	CartPage           string
	EmptyCart          string
	ContinueShopping   string
	CartItemsContainer string
	// CartItemRows are the item rows inside the items container.
	CartItemRows      string
	RemoveButtons     string
	CartSummary       string
	Subtotal          string
	ProceedToCheckout string
	LoadingState      string
}

// CartPage is the cart screen at /cart
type CartPage struct {
	base
	Elements CartElements
}

// NewCartPage returns the cart screen bound to page
func NewCartPage(page browser.Page, a *expect.Asserter) *CartPage {
	return &CartPage{
		base: base{page: page, expect: a},
		Elements: CartElements{
			CartPage:           sf.TestID(sf.IDCartPage),
			EmptyCart:          sf.TestID(sf.IDEmptyCart),
			ContinueShopping:   sf.TestID(sf.IDContinueShopping),
			CartItemsContainer: sf.ClassCartItems,
			CartItemRows:       sf.Descendant(sf.ClassCartItems, sf.TestIDPrefix(sf.PrefixCartItem)),
			RemoveButtons:      sf.Descendant(sf.ClassCartItems, sf.TestIDPrefix(sf.PrefixRemove)),
			CartSummary:        sf.TestID(sf.IDCartSummary),
			Subtotal:           sf.TestID(sf.IDSubtotal),
			ProceedToCheckout:  sf.TestID(sf.IDProceedToCheckout),
			LoadingState:       sf.TestID(sf.IDLoading),
		},
	}
}

// CartItem returns the row selector of one item
func (p *CartPage) CartItem(id string) string {
	return sf.TestID(sf.PrefixCartItem + id)
}

// ItemPrice returns the price label selector of one item
func (p *CartPage) ItemPrice(id string) string {
	return sf.TestID(sf.PrefixItemPrice + id)
}

// QuantitySelect returns the quantity dropdown selector of one item
func (p *CartPage) QuantitySelect(id string) string {
	return sf.TestID(sf.PrefixQuantity + id)
}

// RemoveButton returns the remove button selector of one item
func (p *CartPage) RemoveButton(id string) string {
	return sf.TestID(sf.PrefixRemove + id)
}

// Visit loads /cart
func (p *CartPage) Visit(ctx context.Context) error {
	return p.visit(ctx, sf.RouteCart)
}

// VisitUnlessOnCart skips the load when the tab already shows the cart
func (p *CartPage) VisitUnlessOnCart(ctx context.Context) error {
	return p.visitUnlessAt(ctx, sf.RouteCart)
}

// VerifyCartPage checks the cart container is shown
func (p *CartPage) VerifyCartPage(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.CartPage))
}

// VerifyEmptyCart checks the empty cart message is shown
func (p *CartPage) VerifyEmptyCart(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.EmptyCart))
}

// VerifyCartHasItems checks at least one row is listed
func (p *CartPage) VerifyCartHasItems(ctx context.Context) error {
	return p.that(ctx,
		expect.Visible(p.Elements.CartItemsContainer),
		expect.CountGreaterThan(p.Elements.CartItemRows, 0),
	)
}

// VerifyCartItemsContainerAbsent checks no item list is rendered
func (p *CartPage) VerifyCartItemsContainerAbsent(ctx context.Context) error {
	return p.that(ctx, expect.NotExist(p.Elements.CartItemsContainer))
}

// VerifyEmptyCartAbsent checks the empty cart message is not rendered
func (p *CartPage) VerifyEmptyCartAbsent(ctx context.Context) error {
	return p.that(ctx, expect.NotExist(p.Elements.EmptyCart))
}

// VerifyLoadingNotVisible waits for the loading state to go away
func (p *CartPage) VerifyLoadingNotVisible(ctx context.Context) error {
	return p.that(ctx, expect.NotExist(p.Elements.LoadingState))
}

// VerifyCartItemExists checks the row of id is shown
func (p *CartPage) VerifyCartItemExists(ctx context.Context, id string) error {
	return p.that(ctx, expect.Visible(p.CartItem(id)))
}

// VerifyCartItemNotExists checks the row of id is gone
func (p *CartPage) VerifyCartItemNotExists(ctx context.Context, id string) error {
	return p.that(ctx, expect.NotExist(p.CartItem(id)))
}

// VerifyItemPrice checks the price label of id contains price
func (p *CartPage) VerifyItemPrice(ctx context.Context, id, price string) error {
	return p.that(ctx, expect.TextContains(p.ItemPrice(id), price))
}

// VerifyItemPriceVisible checks the price label of id is shown
func (p *CartPage) VerifyItemPriceVisible(ctx context.Context, id string) error {
	return p.that(ctx, expect.Visible(p.ItemPrice(id)))
}

// VerifyItemQuantity checks the selected quantity of id
func (p *CartPage) VerifyItemQuantity(ctx context.Context, id, quantity string) error {
	return p.that(ctx, expect.ValueEquals(p.QuantitySelect(id), quantity))
}

// VerifyQuantitySelectVisible checks the quantity dropdown of id is shown
func (p *CartPage) VerifyQuantitySelectVisible(ctx context.Context, id string) error {
	return p.that(ctx, expect.Visible(p.QuantitySelect(id)))
}

// VerifyMaxQuantity checks the last option of an item's quantity select
func (p *CartPage) VerifyMaxQuantity(ctx context.Context, id, max string) error {
	sel := p.QuantitySelect(id)
	return p.that(ctx, expect.Condition{
		Description: sel + " to offer " + max + " as the last option",
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			opts, err := page.OptionValues(ctx, sel)
			if err != nil || len(opts) == 0 {
				return false, "", err
			}
			last := opts[len(opts)-1]
			return last == max, last, nil
		},
	})
}

// VerifyRemoveButtonVisible checks the remove button of id is shown
func (p *CartPage) VerifyRemoveButtonVisible(ctx context.Context, id string) error {
	return p.that(ctx, expect.Visible(p.RemoveButton(id)))
}

// UpdateItemQuantity picks quantity in the dropdown of id
func (p *CartPage) UpdateItemQuantity(ctx context.Context, id, quantity string) error {
	return p.page.SelectOption(ctx, p.QuantitySelect(id), quantity)
}

// RemoveItem clicks the remove button of id
func (p *CartPage) RemoveItem(ctx context.Context, id string) error {
	return p.click(ctx, p.RemoveButton(id))
}

// VerifyCartSummary checks the summary box is shown
func (p *CartPage) VerifyCartSummary(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.CartSummary))
}

// VerifySubtotal checks the subtotal label contains amount
func (p *CartPage) VerifySubtotal(ctx context.Context, amount string) error {
	return p.that(ctx, expect.TextContains(p.Elements.Subtotal, amount))
}

// VerifySubtotalVisible checks the subtotal label shows an amount
func (p *CartPage) VerifySubtotalVisible(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.Subtotal), expect.NotEmpty(p.Elements.Subtotal))
}

// ContinueShopping clicks the first of the screen's continue shopping buttons
func (p *CartPage) ContinueShopping(ctx context.Context) error {
	return p.click(ctx, p.Elements.ContinueShopping)
}

// ProceedToCheckout clicks the checkout button
func (p *CartPage) ProceedToCheckout(ctx context.Context) error {
	return p.click(ctx, p.Elements.ProceedToCheckout)
}

// VerifyProceedToCheckoutButton checks the checkout button can be clicked
func (p *CartPage) VerifyProceedToCheckoutButton(ctx context.Context) error {
	return p.that(ctx, clickable(p.Elements.ProceedToCheckout)...)
}

// VerifyProceedToCheckoutAbsent checks the checkout button is not rendered
func (p *CartPage) VerifyProceedToCheckoutAbsent(ctx context.Context) error {
	return p.that(ctx, expect.NotExist(p.Elements.ProceedToCheckout))
}

// VerifyContinueShoppingButton checks the continue shopping button can be clicked
func (p *CartPage) VerifyContinueShoppingButton(ctx context.Context) error {
	return p.that(ctx, clickable(p.Elements.ContinueShopping)...)
}

// CartItemCount counts the listed rows
func (p *CartPage) CartItemCount(ctx context.Context) (int, error) {
	return p.page.Count(ctx, p.Elements.CartItemRows)
}

// VerifyCartItemCount checks exactly n rows are listed
func (p *CartPage) VerifyCartItemCount(ctx context.Context, n int) error {
	return p.that(ctx, expect.CountEquals(p.Elements.CartItemRows, n))
}

// VerifyCartIsEmpty checks both sides of the empty/non-empty exclusion
func (p *CartPage) VerifyCartIsEmpty(ctx context.Context) error {
	return p.that(ctx,
		expect.Visible(p.Elements.EmptyCart),
		expect.NotExist(p.Elements.CartItemsContainer),
	)
}

// VerifyCartIsNotEmpty is the inverse of VerifyCartIsEmpty
func (p *CartPage) VerifyCartIsNotEmpty(ctx context.Context) error {
	if err := p.that(ctx, expect.NotExist(p.Elements.EmptyCart)); err != nil {
		return err
	}
	return p.VerifyCartHasItems(ctx)
}

// RemoveAllItems clicks remove until no row is left
func (p *CartPage) RemoveAllItems(ctx context.Context) error {
	for {
		n, err := p.page.Count(ctx, p.Elements.RemoveButtons)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if err := p.click(ctx, p.Elements.RemoveButtons); err != nil {
			return err
		}
		if err := p.that(ctx, expect.CountEquals(p.Elements.RemoveButtons, n-1)); err != nil {
			return err
		}
	}
}

// VerifyMultipleItems checks a row is shown for every id
func (p *CartPage) VerifyMultipleItems(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := p.VerifyCartItemExists(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// VerifyCalculatedSubtotal checks the subtotal against price x quantity of items
func (p *CartPage) VerifyCalculatedSubtotal(ctx context.Context, items []catalog.CartItem) error {
	return p.VerifySubtotal(ctx, catalog.FormatCents(catalog.SubtotalCents(items)))
}

// WaitForCartToLoad waits for the container and the end of loading
func (p *CartPage) WaitForCartToLoad(ctx context.Context) error {
	if err := p.VerifyCartPage(ctx); err != nil {
		return err
	}
	return p.VerifyLoadingNotVisible(ctx)
}

// WaitForItemUpdate waits for the row of id once loading has finished
func (p *CartPage) WaitForItemUpdate(ctx context.Context, id string) error {
	if err := p.VerifyCartItemExists(ctx, id); err != nil {
		return err
	}
	return p.VerifyLoadingNotVisible(ctx)
}

// VerifyCompleteCartState checks the whole screen against the expected items
func (p *CartPage) VerifyCompleteCartState(ctx context.Context, items []catalog.CartItem) error {
	if err := p.WaitForCartToLoad(ctx); err != nil {
		return err
	}

	if len(items) == 0 {
		if err := p.VerifyCartIsEmpty(ctx); err != nil {
			return err
		}
		return p.VerifyContinueShoppingButton(ctx)
	}

	if err := p.VerifyCartIsNotEmpty(ctx); err != nil {
		return err
	}
	if err := p.VerifyCartItemCount(ctx, len(items)); err != nil {
		return err
	}
	for _, item := range items {
		id := strconv.Itoa(item.ID)
		if err := p.that(ctx,
			expect.Visible(p.CartItem(id)),
			expect.ValueEquals(p.QuantitySelect(id), strconv.Itoa(item.Quantity)),
			expect.TextContains(p.ItemPrice(id), catalog.FormatPrice(item.Price)),
		); err != nil {
			return err
		}
	}
	if err := p.VerifyCartSummary(ctx); err != nil {
		return err
	}
	if err := p.VerifyCalculatedSubtotal(ctx, items); err != nil {
		return err
	}
	if err := p.VerifyProceedToCheckoutButton(ctx); err != nil {
		return err
	}
	return p.VerifyContinueShoppingButton(ctx)
}
