package pages

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/catalog"
	"github.com/adyen/storefront-e2e/internal/expect"
	sf "github.com/adyen/storefront-e2e/internal/storefront"
)

// AddressElements are the selectors of the shipping address step
type AddressElements struct {
	Page              string
	Form              string
	BackToCart        string
	ContinueToPayment string
	ErrorMessages     string
	ErrorTestIDs      string
	// Inputs maps a field name (firstname, email, ...) to its input.
	Inputs map[string]string
}

// AddressPage is the checkout step at /checkout/address
type AddressPage struct {
	base
	Elements AddressElements
}

// NewAddressPage returns the address step bound to page
func NewAddressPage(page browser.Page, a *expect.Asserter) *AddressPage {
	inputs := make(map[string]string, len(sf.AddressFields))
	for _, field := range sf.AddressFields {
		inputs[field] = sf.TestID(sf.InputID(field))
	}
	return &AddressPage{
		base: base{page: page, expect: a},
		Elements: AddressElements{
			Page:              sf.TestID(sf.IDAddressPage),
			Form:              sf.TestID(sf.IDAddressForm),
			BackToCart:        sf.TestID(sf.IDBackToCart),
			ContinueToPayment: sf.TestID(sf.IDContinueToPayment),
			ErrorMessages:     sf.ClassErrorMessage,
			ErrorTestIDs:      sf.TestIDContains("error"),
			Inputs:            inputs,
		},
	}
}

// Input returns the selector of a named field, case-insensitively
func (p *AddressPage) Input(field string) (string, error) {
	sel, ok := p.Elements.Inputs[strings.ToLower(field)]
	if !ok {
		return "", unknownField("address", field)
	}
	return sel, nil
}

// Visit loads /checkout/address
func (p *AddressPage) Visit(ctx context.Context) error {
	return p.visit(ctx, sf.RouteCheckoutAddress)
}

// VerifyPageLoaded checks the page container and the form are shown
func (p *AddressPage) VerifyPageLoaded(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.Page), expect.Visible(p.Elements.Form))
}

// WaitForPageLoad is VerifyPageLoaded under the name flows use
func (p *AddressPage) WaitForPageLoad(ctx context.Context) error {
	return p.VerifyPageLoaded(ctx)
}

// VerifyBackToCartButton checks the back to cart button can be clicked
func (p *AddressPage) VerifyBackToCartButton(ctx context.Context) error {
	return p.that(ctx, clickable(p.Elements.BackToCart)...)
}

// VerifyAllFormFields checks every address input is shown
func (p *AddressPage) VerifyAllFormFields(ctx context.Context) error {
	for _, field := range sf.AddressFields {
		if err := p.that(ctx, expect.Visible(p.Elements.Inputs[field])); err != nil {
			return err
		}
	}
	return nil
}

// VerifyContinueButton checks the continue to payment button is shown
func (p *AddressPage) VerifyContinueButton(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.ContinueToPayment))
}

// FillField clears a field and types value into it
func (p *AddressPage) FillField(ctx context.Context, field, value string) error {
	sel, err := p.Input(field)
	if err != nil {
		return err
	}
	return p.fill(ctx, sel, value)
}

// FillAddressForm fills every field in form order. Empty fields of data take
// the default address.
func (p *AddressPage) FillAddressForm(ctx context.Context, data catalog.AddressData) error {
	for _, kv := range data.WithDefaults().Fields() {
		if err := p.FillField(ctx, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// VerifyField checks the current value of field
func (p *AddressPage) VerifyField(ctx context.Context, field, value string) error {
	sel, err := p.Input(field)
	if err != nil {
		return err
	}
	return p.that(ctx, expect.ValueEquals(sel, value))
}

// VerifyFormFilled checks every field against data, defaults applied
func (p *AddressPage) VerifyFormFilled(ctx context.Context, data catalog.AddressData) error {
	for _, kv := range data.WithDefaults().Fields() {
		if err := p.VerifyField(ctx, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// SavedAddress reads the address the application stored on submit
func (p *AddressPage) SavedAddress(ctx context.Context) (catalog.AddressData, bool, error) {
	raw, ok, err := p.page.GetItem(ctx, sf.StorageKeyAddress)
	if err != nil || !ok {
		return catalog.AddressData{}, false, err
	}
	var data catalog.AddressData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return catalog.AddressData{}, true, fmt.Errorf("failed to decode saved address: %w", err)
	}
	return data, true, nil
}

// VerifyFormRepopulated checks the form shows the saved address. It passes
// trivially when nothing is saved. The application does not repopulate the
// form, so against it this fails whenever an address is saved.
func (p *AddressPage) VerifyFormRepopulated(ctx context.Context) error {
	saved, ok, err := p.SavedAddress(ctx)
	if err != nil || !ok {
		return err
	}
	for _, kv := range saved.Fields() {
		if err := p.VerifyField(ctx, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// VerifyFieldRequired checks field carries the required attribute
func (p *AddressPage) VerifyFieldRequired(ctx context.Context, field string) error {
	sel, err := p.Input(field)
	if err != nil {
		return err
	}
	return p.that(ctx, expect.AttrPresent(sel, "required"))
}

// VerifyFieldEmpty checks field holds no value
func (p *AddressPage) VerifyFieldEmpty(ctx context.Context, field string) error {
	return p.VerifyField(ctx, field, "")
}

// ClickBackToCart returns to the cart
func (p *AddressPage) ClickBackToCart(ctx context.Context) error {
	return p.click(ctx, p.Elements.BackToCart)
}

// ClickContinueToPayment submits the form
func (p *AddressPage) ClickContinueToPayment(ctx context.Context) error {
	return p.click(ctx, p.Elements.ContinueToPayment)
}

// VerifyContinueButtonEnabled checks the continue button accepts clicks
func (p *AddressPage) VerifyContinueButtonEnabled(ctx context.Context) error {
	return p.that(ctx, expect.Enabled(p.Elements.ContinueToPayment))
}

// SubmitAddressForm fills the form with data and submits it
func (p *AddressPage) SubmitAddressForm(ctx context.Context, data catalog.AddressData) error {
	if err := p.FillAddressForm(ctx, data); err != nil {
		return err
	}
	return p.ClickContinueToPayment(ctx)
}

// VerifyValidationError checks the message rendered next to a field
func (p *AddressPage) VerifyValidationError(ctx context.Context, field, message string) error {
	if _, err := p.Input(field); err != nil {
		return err
	}
	return p.that(ctx, expect.TextContains(sf.FieldContainer(sf.InputID(strings.ToLower(field))), message))
}

// VerifyErrorMessage checks some .error-message contains text
func (p *AddressPage) VerifyErrorMessage(ctx context.Context, text string) error {
	return p.that(ctx,
		expect.Exist(p.Elements.ErrorMessages),
		errorMessagesContain(p.Elements.ErrorMessages, text),
	)
}

// VerifyNoValidationErrors checks no field error is rendered
func (p *AddressPage) VerifyNoValidationErrors(ctx context.Context) error {
	return p.that(ctx, expect.NotExist(p.Elements.ErrorMessages), expect.NotExist(p.Elements.ErrorTestIDs))
}

// ClearForm empties every address input
func (p *AddressPage) ClearForm(ctx context.Context) error {
	for _, field := range sf.AddressFields {
		if err := p.page.Clear(ctx, p.Elements.Inputs[field]); err != nil {
			return err
		}
	}
	return nil
}

// VerifyNavigationToPayment checks the URL moved to the payment step
func (p *AddressPage) VerifyNavigationToPayment(ctx context.Context) error {
	return p.that(ctx, expect.URLContains(sf.RouteCheckoutPayment))
}

// VerifyNavigationToCart checks the URL moved to the cart
func (p *AddressPage) VerifyNavigationToCart(ctx context.Context) error {
	return p.that(ctx, expect.URLContains(sf.RouteCart))
}

// VerifyOnPage checks the URL and the rendered form
func (p *AddressPage) VerifyOnPage(ctx context.Context) error {
	if err := p.that(ctx, expect.URLContains(sf.RouteCheckoutAddress)); err != nil {
		return err
	}
	return p.VerifyPageLoaded(ctx)
}

// errorMessagesContain holds when any of the matched messages contains text
func errorMessagesContain(selector, text string) expect.Condition {
	return expect.Condition{
		Description: fmt.Sprintf("%s to contain text %q", selector, text),
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			texts, err := page.AllTextContents(ctx, selector)
			if err != nil {
				return false, "", err
			}
			for _, t := range texts {
				if strings.Contains(t, text) {
					return true, t, nil
				}
			}
			return false, fmt.Sprintf("%q", texts), nil
		},
	}
}
