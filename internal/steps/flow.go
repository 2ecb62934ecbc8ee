package steps

import (
	"context"
	"fmt"

	"github.com/adyen/storefront-e2e/internal/catalog"
	"github.com/adyen/storefront-e2e/internal/expect"
)

// flowSteps are the end-to-end journeys chaining several screens
func (s *Scenario) flowSteps(r *Registry) {
	r.Step(`^I start with an empty cart$`, func(ctx context.Context) error {
		if err := s.page.ClearStorage(ctx); err != nil {
			return fmt.Errorf("failed to clear storage: %w", err)
		}
		return s.pages.Home.Visit(ctx)
	})
	r.Step(`^I view product "(\d+)" and add it to cart$`, func(ctx context.Context, id string) error {
		return s.addFromListing(ctx, id, "1")
	})
	r.Step(`^I add a product to cart$`, func(ctx context.Context) error {
		return s.addFromListing(ctx, DefaultProductID, "1")
	})
	r.Step(`^I add multiple products to my cart$`, func(ctx context.Context) error {
		return s.addProductsViaUI(ctx, twoItemCart)
	})

	r.Step(`^I proceed through checkout$`, func(ctx context.Context) error {
		return s.pages.Cart.ProceedToCheckout(ctx)
	})
	r.Step(`^I fill address and payment details$`, func(ctx context.Context) error {
		if err := s.submitAddress(ctx); err != nil {
			return err
		}
		return s.pages.Payment.FillPaymentForm(ctx, catalog.DefaultPayment())
	})
	r.Step(`^I (?:proceed through complete checkout (?:with valid data|flow)|proceed to checkout with valid data|complete the full checkout process|navigate through complete checkout flow)$`,
		s.checkoutFromCart)
	r.Step(`^I complete checkout process$`, s.checkoutFromAddress)
	r.Step(`^I have completed a successful order$`, func(ctx context.Context) error {
		if err := s.addProductsViaUI(ctx, oneItemCart); err != nil {
			return err
		}
		if err := s.checkoutFromCart(ctx); err != nil {
			return err
		}
		return s.pages.Success.VerifyPageLoaded(ctx)
	})

	r.Step(`^I should see "([^"]*)" message$`, func(ctx context.Context, message string) error {
		return s.expect.That(ctx, expect.PageHasText(message))
	})
}

// checkoutFromCart proceeds from the cart and places an order with the
// default address and card.
func (s *Scenario) checkoutFromCart(ctx context.Context) error {
	if err := s.pages.Cart.ProceedToCheckout(ctx); err != nil {
		return err
	}
	if err := s.pages.Address.WaitForPageLoad(ctx); err != nil {
		return err
	}
	return s.checkoutFromAddress(ctx)
}

// checkoutFromAddress fills both forms with defaults and places the order
func (s *Scenario) checkoutFromAddress(ctx context.Context) error {
	if err := s.submitAddress(ctx); err != nil {
		return err
	}
	return s.pages.Payment.SubmitPaymentForm(ctx, catalog.DefaultPayment())
}

// submitAddress sends the default address and waits for the payment form
func (s *Scenario) submitAddress(ctx context.Context) error {
	if err := s.pages.Address.SubmitAddressForm(ctx, catalog.DefaultAddress()); err != nil {
		return err
	}
	return s.pages.Payment.WaitForPageLoad(ctx)
}
