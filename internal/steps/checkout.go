package steps

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/adyen/storefront-e2e/internal/catalog"
	"github.com/adyen/storefront-e2e/internal/expect"
	sf "github.com/adyen/storefront-e2e/internal/storefront"
)

// Validation copy the application renders in .error-message elements
const (
	MsgFieldRequired = "This field is required"
	MsgValidEmail    = "valid email"
)

// PageLoadTimeout bounds "each page should load within acceptable time"
const PageLoadTimeout = 5 * time.Second

// paymentOutcome accepts either staying on payment or reaching success; the
// application does not validate card numbers.
var paymentOutcome = regexp.MustCompile(`/(checkout/payment|checkout/success)`)

func (s *Scenario) checkoutSteps(r *Registry) {
	r.Step(`^I have items in my cart$`, func(ctx context.Context) error {
		if err := s.addProductsViaUI(ctx, oneItemCart); err != nil {
			return err
		}
		return s.pages.Cart.VerifyCartHasItems(ctx)
	})
	r.Step(`^I have multiple items in (?:my )?cart with total "([^"]*)"$`, func(ctx context.Context, total string) error {
		if err := s.addProductsViaUI(ctx, twoItemCart); err != nil {
			return err
		}
		return s.pages.Cart.VerifySubtotal(ctx, total)
	})
	r.Step(`^I try to access checkout directly$`, func(ctx context.Context) error {
		return s.page.Goto(ctx, sf.RouteCheckoutAddress)
	})

	// address
	r.Step(`^I am on the checkout address page$`, func(ctx context.Context) error {
		u, err := s.page.URL(ctx)
		if err != nil {
			return err
		}
		if !strings.Contains(u, sf.RouteCheckoutAddress) {
			if err := s.pages.Cart.ProceedToCheckout(ctx); err != nil {
				return err
			}
		}
		if err := s.pages.Address.VerifyPageLoaded(ctx); err != nil {
			return err
		}
		return s.pages.Address.VerifyContinueButton(ctx)
	})
	r.Step(`^I fill complete address form with valid data$`, func(ctx context.Context) error {
		return s.pages.Address.FillAddressForm(ctx, catalog.DefaultAddress())
	})
	r.Step(`^I fill partial address information$`, func(ctx context.Context) error {
		partial := catalog.DefaultAddress()
		for _, f := range [][2]string{{"firstname", partial.FirstName}, {"email", partial.Email}, {"street", partial.Street}} {
			if err := s.pages.Address.FillField(ctx, f[0], f[1]); err != nil {
				return err
			}
		}
		return nil
	})
	r.Step(`^I fill address form with invalid email format$`, func(ctx context.Context) error {
		data := catalog.DefaultAddress()
		data.Email = "invalid-email-format"
		return s.pages.Address.FillAddressForm(ctx, data)
	})
	r.Step(`^I try to continue (?:without filling any fields|to payment)$`, func(ctx context.Context) error {
		return s.pages.Address.ClickContinueToPayment(ctx)
	})
	r.Step(`^I click the back to cart button$`, func(ctx context.Context) error {
		return s.pages.Address.ClickBackToCart(ctx)
	})
	r.Step(`^I navigate back to cart and return to checkout$`, func(ctx context.Context) error {
		if err := s.pages.Address.ClickBackToCart(ctx); err != nil {
			return err
		}
		return s.pages.Cart.ProceedToCheckout(ctx)
	})
	r.Step(`^the continue button should be enabled$`, func(ctx context.Context) error {
		return s.pages.Address.VerifyContinueButtonEnabled(ctx)
	})
	r.Step(`^I can proceed to payment page$`, func(ctx context.Context) error {
		if err := s.pages.Address.VerifyNoValidationErrors(ctx); err != nil {
			return err
		}
		if err := s.pages.Address.ClickContinueToPayment(ctx); err != nil {
			return err
		}
		return s.pages.Payment.VerifyOnPage(ctx)
	})
	r.Step(`^the browser should show email validation error$`, func(ctx context.Context) error {
		if err := s.expect.That(ctx, expect.URLContains(sf.RouteCheckoutAddress)); err != nil {
			return err
		}
		return s.pages.Address.VerifyErrorMessage(ctx, MsgValidEmail)
	})
	r.Step(`^my address data should be preserved$`, s.addressPreserved)
	r.Step(`^I have completed the address form$`, func(ctx context.Context) error {
		if err := s.pages.Address.SubmitAddressForm(ctx, catalog.DefaultAddress()); err != nil {
			return err
		}
		return s.pages.Payment.VerifyPageLoaded(ctx)
	})
	r.Step(`^I should (?:be redirected to|remain on) the address page$`, func(ctx context.Context) error {
		return s.pages.Address.VerifyOnPage(ctx)
	})

	// payment
	r.Step(`^I (?:am on|should remain on) the payment page$`, func(ctx context.Context) error {
		if err := s.pages.Payment.VerifyOnPage(ctx); err != nil {
			return err
		}
		if err := s.pages.Payment.VerifyPlaceOrderButton(ctx); err != nil {
			return err
		}
		return s.pages.Payment.VerifyBackToAddressButton(ctx)
	})
	r.Step(`^I fill payment form with valid (\w+) card$`, func(ctx context.Context, card string) error {
		return s.pages.Payment.FillSampleCard(ctx, card)
	})
	r.Step(`^I fill payment form with invalid card details$`, func(ctx context.Context) error {
		return s.pages.Payment.FillSampleCard(ctx, "invalid")
	})
	r.Step(`^I fill payment form with "([^"]*)" card:$`, func(ctx context.Context, card string, table *godog.Table) error {
		data, err := paymentData(table)
		if err != nil {
			return fmt.Errorf("%s card: %w", card, err)
		}
		return s.pages.Payment.FillPaymentForm(ctx, data)
	})
	r.Step(`^I (?:try to place order without filling payment fields|click place order|complete the order)$`, func(ctx context.Context) error {
		return s.pages.Payment.ClickPlaceOrder(ctx)
	})
	r.Step(`^I click the back to address button$`, func(ctx context.Context) error {
		if err := s.pages.Payment.ClickBackToAddress(ctx); err != nil {
			return err
		}
		return s.pages.Payment.VerifyNavigationToAddress(ctx)
	})
	r.Step(`^the form should prevent submission with browser validation$`, func(ctx context.Context) error {
		if err := s.expect.That(ctx, expect.URLContains(sf.RouteCheckoutPayment)); err != nil {
			return err
		}
		return s.pages.Payment.VerifyErrorMessage(ctx, MsgFieldRequired)
	})
	r.Step(`^I should see appropriate error feedback$`, func(ctx context.Context) error {
		return s.expect.That(ctx, expect.URLMatches(paymentOutcome))
	})

	// success
	r.Step(`^(?:the order should be (?:successful|processed successfully)|I should see successful order completion|I should reach the success page|I should be redirected to the success page|I am on the success page)$`,
		func(ctx context.Context) error {
			return s.pages.Success.VerifySuccessMessage(ctx)
		})
	r.Step(`^I should see the order success page with valid order number$`, func(ctx context.Context) error {
		if err := s.pages.Success.VerifySuccessMessage(ctx); err != nil {
			return err
		}
		if err := s.pages.Success.VerifyOrderNumber(ctx); err != nil {
			return err
		}
		return s.pages.Success.VerifyOrderNumberFormat(ctx)
	})
	r.Step(`^I should see order confirmation details$`, s.orderConfirmation)
	r.Step(`^the order should contain correct items and total$`, func(ctx context.Context) error {
		if err := s.orderConfirmation(ctx); err != nil {
			return err
		}
		return s.pages.Success.VerifySuccessMessage(ctx)
	})
	r.Step(`^I should return to homepage with empty cart$`, func(ctx context.Context) error {
		if err := s.pages.Success.VerifySuccessMessage(ctx); err != nil {
			return err
		}
		return s.expect.That(ctx, expect.Storage(sf.StorageKeyCart, "no stored items", emptyStoredCart))
	})
	r.Step(`^order processing should complete successfully$`, func(ctx context.Context) error {
		if err := s.pages.Success.WaitForOrderProcessing(ctx); err != nil {
			return err
		}
		return s.expect.Within(OrderTimeout).That(ctx, expect.PageHasText(sf.SuccessMessage))
	})
	r.Step(`^I should see order success page with all elements:$`, s.successElements)
	r.Step(`^each page should load within acceptable time$`, func(ctx context.Context) error {
		return s.expect.Within(PageLoadTimeout).That(ctx, expect.Visible(sf.TestIDContains("page")))
	})
	r.Step(`^no loading errors should occur$`, func(ctx context.Context) error {
		return s.expect.That(ctx, expect.NotExist(sf.TestIDContains("error")))
	})
}

// OrderTimeout bounds the wait for the confirmation after placing an order
const OrderTimeout = 10 * time.Second

// ErrAddressNotSaved is returned when the address form left nothing in storage
var ErrAddressNotSaved = errors.New("addressData was not saved")

// addressPreserved encodes the application's behaviour on returning to the
// address form: the submitted address stays in storage, the form stays empty.
func (s *Scenario) addressPreserved(ctx context.Context) error {
	saved, ok, err := s.pages.Address.SavedAddress(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAddressNotSaved
	}
	want := catalog.DefaultAddress()
	if saved != want {
		return fmt.Errorf("saved address %+v does not match the submitted %+v", saved, want)
	}
	for _, field := range sf.AddressFields {
		if err := s.pages.Address.VerifyFieldEmpty(ctx, field); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scenario) orderConfirmation(ctx context.Context) error {
	if err := s.pages.Success.VerifySuccessPageVisible(ctx); err != nil {
		return err
	}
	if err := s.pages.Success.VerifyOrderInfo(ctx); err != nil {
		return err
	}
	return s.pages.Success.VerifyOrderNumber(ctx)
}

// successElements checks the whole confirmation screen and every data-testid
// listed under the table's "element" header.
func (s *Scenario) successElements(ctx context.Context, table *godog.Table) error {
	if err := s.pages.Success.VerifySuccessPageComplete(ctx); err != nil {
		return err
	}
	rows, err := tableRecords(table)
	if err != nil {
		return err
	}
	for _, row := range rows {
		id, ok := row["element"]
		if !ok {
			return fmt.Errorf("success elements table needs an \"element\" column")
		}
		if err := s.expect.That(ctx, expect.Visible(sf.TestID(strings.TrimSpace(id)))); err != nil {
			return err
		}
	}
	return nil
}

// paymentData decodes a single-row payment table keyed by cardHolder,
// cardNumber, expiry and cvv.
func paymentData(table *godog.Table) (catalog.PaymentData, error) {
	rows, err := tableRecords(table)
	if err != nil {
		return catalog.PaymentData{}, err
	}
	var data catalog.PaymentData
	for _, row := range rows {
		for key, value := range row {
			if !data.Set(key, value) {
				return catalog.PaymentData{}, fmt.Errorf("unknown payment field %q", key)
			}
		}
	}
	return data, nil
}

func emptyStoredCart(value string, ok bool) bool {
	if !ok {
		return true
	}
	items, err := catalog.DecodeCart(value)
	return err == nil && len(items) == 0
}
