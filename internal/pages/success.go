package pages

import (
	"context"
	"regexp"
	"time"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/expect"
	sf "github.com/adyen/storefront-e2e/internal/storefront"
)

// OrderProcessingTimeout bounds the wait for the processing indicator to clear.
const OrderProcessingTimeout = 10 * time.Second

var (
	orderNumberFormat = regexp.MustCompile(`^(ORD-|#)?\d+$`)
	ordersRoute       = regexp.MustCompile(`/orders`)
)

// SuccessElements are the selectors of the order confirmation screen
type SuccessElements struct {
	Page             string
	OrderInfo        string
	OrderNumber      string
	ContinueShopping string
	ViewOrders       string
	Processing       string
	Error            string
}

// SuccessPage is the confirmation screen at /checkout/success
type SuccessPage struct {
	base
	Elements SuccessElements
}

// NewSuccessPage returns the confirmation screen bound to page
func NewSuccessPage(page browser.Page, a *expect.Asserter) *SuccessPage {
	return &SuccessPage{
		base: base{page: page, expect: a},
		Elements: SuccessElements{
			Page:             sf.TestID(sf.IDSuccessPage),
			OrderInfo:        sf.TestID(sf.IDOrderInfo),
			OrderNumber:      sf.TestID(sf.IDOrderNumber),
			ContinueShopping: sf.TestID(sf.IDContinueShopping),
			ViewOrders:       sf.TestID(sf.IDViewOrders),
			Processing:       sf.TestID(sf.IDProcessing),
			Error:            sf.TestID(sf.IDError),
		},
	}
}

// Visit loads /checkout/success
func (p *SuccessPage) Visit(ctx context.Context) error {
	return p.visit(ctx, sf.RouteCheckoutSuccess)
}

// VerifyPageLoaded checks the URL and the page container
func (p *SuccessPage) VerifyPageLoaded(ctx context.Context) error {
	return p.that(ctx, expect.URLContains(sf.RouteCheckoutSuccess), expect.Visible(p.Elements.Page))
}

// VerifySuccessPageVisible checks the page container is shown
func (p *SuccessPage) VerifySuccessPageVisible(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.Page))
}

// VerifyOrderInfo checks the order summary is shown
func (p *SuccessPage) VerifyOrderInfo(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.OrderInfo))
}

// VerifyOrderNumber checks the order number is shown and not blank
func (p *SuccessPage) VerifyOrderNumber(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.OrderNumber), expect.NotEmpty(p.Elements.OrderNumber))
}

// VerifyOrderNumberFormat accepts "ORD-123", "#123" and bare digits
func (p *SuccessPage) VerifyOrderNumberFormat(ctx context.Context) error {
	return p.that(ctx, expect.TextMatches(p.Elements.OrderNumber, orderNumberFormat))
}

// OrderNumber reads the order number text
func (p *SuccessPage) OrderNumber(ctx context.Context) (string, error) {
	return p.page.TextContent(ctx, p.Elements.OrderNumber)
}

// VerifyContinueShoppingButton checks the continue shopping button can be clicked
func (p *SuccessPage) VerifyContinueShoppingButton(ctx context.Context) error {
	return p.that(ctx, clickable(p.Elements.ContinueShopping)...)
}

// VerifyViewOrdersButton checks the view orders button can be clicked
func (p *SuccessPage) VerifyViewOrdersButton(ctx context.Context) error {
	return p.that(ctx, clickable(p.Elements.ViewOrders)...)
}

// VerifyContinueShoppingText checks the continue shopping label contains text
func (p *SuccessPage) VerifyContinueShoppingText(ctx context.Context, text string) error {
	return p.that(ctx, expect.TextContains(p.Elements.ContinueShopping, text))
}

// VerifyViewOrdersText checks the view orders label contains text
func (p *SuccessPage) VerifyViewOrdersText(ctx context.Context, text string) error {
	return p.that(ctx, expect.TextContains(p.Elements.ViewOrders, text))
}

// ClickContinueShopping returns to the homepage
func (p *SuccessPage) ClickContinueShopping(ctx context.Context) error {
	return p.click(ctx, p.Elements.ContinueShopping)
}

// ClickViewOrders opens the order list
func (p *SuccessPage) ClickViewOrders(ctx context.Context) error {
	return p.click(ctx, p.Elements.ViewOrders)
}

// VerifyNavigationToHomepage checks the URL left the checkout for "/"
func (p *SuccessPage) VerifyNavigationToHomepage(ctx context.Context) error {
	return p.that(ctx, expect.URLNotContains("/checkout"), expect.Visible(sf.TestID(sf.IDHomePage)))
}

// VerifyNavigationToOrders checks the URL moved to /orders
func (p *SuccessPage) VerifyNavigationToOrders(ctx context.Context) error {
	return p.that(ctx, expect.URLMatches(ordersRoute))
}

// VerifyOrderInfoContains checks the order summary contains text
func (p *SuccessPage) VerifyOrderInfoContains(ctx context.Context, text string) error {
	return p.that(ctx, expect.TextContains(p.Elements.OrderInfo, text))
}

// VerifySuccessMessage checks the confirmation headline anywhere on screen
func (p *SuccessPage) VerifySuccessMessage(ctx context.Context) error {
	return p.that(ctx, expect.PageHasText(sf.SuccessMessage))
}

// VerifySuccessPageComplete checks every element of the confirmation screen
func (p *SuccessPage) VerifySuccessPageComplete(ctx context.Context) error {
	checks := []func(context.Context) error{
		p.VerifyPageLoaded,
		p.VerifySuccessMessage,
		p.VerifyOrderInfo,
		p.VerifyOrderNumber,
		p.VerifyOrderNumberFormat,
		p.VerifyContinueShoppingButton,
		p.VerifyViewOrdersButton,
	}
	for _, check := range checks {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

// WaitForPageLoad is VerifyPageLoaded under the name flows use
func (p *SuccessPage) WaitForPageLoad(ctx context.Context) error {
	return p.VerifyPageLoaded(ctx)
}

// WaitForOrderProcessing waits out the processing indicator on its own,
// longer timeout.
func (p *SuccessPage) WaitForOrderProcessing(ctx context.Context) error {
	return p.expect.Within(OrderProcessingTimeout).That(ctx, expect.NotExist(p.Elements.Processing))
}

// VerifyNoOrderNumberError checks no error banner is rendered
func (p *SuccessPage) VerifyNoOrderNumberError(ctx context.Context) error {
	return p.that(ctx, expect.NotExist(p.Elements.Error))
}

// VerifyAccessibility checks the order number and both buttons carry an aria-label
func (p *SuccessPage) VerifyAccessibility(ctx context.Context) error {
	return p.that(ctx,
		expect.AttrPresent(p.Elements.OrderNumber, "aria-label"),
		expect.AttrPresent(p.Elements.ContinueShopping, "aria-label"),
		expect.AttrPresent(p.Elements.ViewOrders, "aria-label"),
	)
}
