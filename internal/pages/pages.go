// Package pages holds one page object per storefront screen. Page objects
// keep no state of their own: every element is a selector resolved on each
// call, actions go straight to the browser and assertions poll through an
// expect.Asserter.
package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/expect"
)

// Pages bundles the page objects of one scenario
type Pages struct {
	Home    *HomePage
	Product *ProductPage
	Cart    *CartPage
	Address *AddressPage
	Payment *PaymentPage
	Success *SuccessPage
}

// New builds every page object on the same tab and asserter
func New(page browser.Page, a *expect.Asserter) *Pages {
	return &Pages{
		Home:    NewHomePage(page, a),
		Product: NewProductPage(page, a),
		Cart:    NewCartPage(page, a),
		Address: NewAddressPage(page, a),
		Payment: NewPaymentPage(page, a),
		Success: NewSuccessPage(page, a),
	}
}

type base struct {
	page   browser.Page
	expect *expect.Asserter
}

func (b base) visit(ctx context.Context, path string) error {
	return b.page.Goto(ctx, path)
}

// visitUnlessAt skips the navigation when the current URL already includes path.
func (b base) visitUnlessAt(ctx context.Context, path string) error {
	u, err := b.page.URL(ctx)
	if err != nil {
		return err
	}
	if strings.Contains(u, path) {
		return nil
	}
	return b.page.Goto(ctx, path)
}

func (b base) that(ctx context.Context, conds ...expect.Condition) error {
	return b.expect.That(ctx, conds...)
}

func (b base) click(ctx context.Context, selector string) error {
	return b.page.Click(ctx, selector)
}

func (b base) fill(ctx context.Context, selector, value string) error {
	return b.page.Fill(ctx, selector, value)
}

// clickable asserts the control is visible and enabled
func clickable(selector string) []expect.Condition {
	return []expect.Condition{expect.Visible(selector), expect.Enabled(selector)}
}

func unknownField(form, field string) error {
	return fmt.Errorf("unknown %s field %q", form, field)
}
