package pages

import (
	"context"
	"regexp"
	"strings"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/catalog"
	"github.com/adyen/storefront-e2e/internal/expect"
	sf "github.com/adyen/storefront-e2e/internal/storefront"
)

var (
	digits        = regexp.MustCompile(`\d+`)
	expiryPattern = regexp.MustCompile(`(?i)MM/YY`)
)

// PaymentElements are the selectors of the card details step
type PaymentElements struct {
	Page          string
	Form          string
	BackToAddress string
	PlaceOrder    string
	Loading       string
	ErrorMessages string
	// Inputs maps a field name (cardholder, cardnumber, expiry, cvv) to its input.
	Inputs map[string]string
}

// PaymentPage is the checkout step at /checkout/payment
type PaymentPage struct {
	base
	Elements PaymentElements
}

// NewPaymentPage returns the payment step bound to page
func NewPaymentPage(page browser.Page, a *expect.Asserter) *PaymentPage {
	inputs := make(map[string]string, len(sf.PaymentFields))
	for field, id := range sf.PaymentFields {
		inputs[field] = sf.TestID(id)
	}
	return &PaymentPage{
		base: base{page: page, expect: a},
		Elements: PaymentElements{
			Page:          sf.TestID(sf.IDPaymentPage),
			Form:          sf.TestID(sf.IDPaymentForm),
			BackToAddress: sf.TestID(sf.IDBackToAddress),
			PlaceOrder:    sf.TestID(sf.IDCompletePayment),
			Loading:       sf.TestID(sf.IDLoading),
			ErrorMessages: sf.ClassErrorMessage,
			Inputs:        inputs,
		},
	}
}

// Input returns the selector of a named field, case-insensitively
func (p *PaymentPage) Input(field string) (string, error) {
	sel, ok := p.Elements.Inputs[strings.ToLower(field)]
	if !ok {
		return "", unknownField("payment", field)
	}
	return sel, nil
}

// Visit loads /checkout/payment
func (p *PaymentPage) Visit(ctx context.Context) error {
	return p.visit(ctx, sf.RouteCheckoutPayment)
}

// VerifyPageLoaded checks the page container and the form are shown
func (p *PaymentPage) VerifyPageLoaded(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.Page), expect.Visible(p.Elements.Form))
}

// WaitForPageLoad is VerifyPageLoaded under the name flows use
func (p *PaymentPage) WaitForPageLoad(ctx context.Context) error {
	return p.VerifyPageLoaded(ctx)
}

// VerifyBackToAddressButton checks the back to address button can be clicked
func (p *PaymentPage) VerifyBackToAddressButton(ctx context.Context) error {
	return p.that(ctx, clickable(p.Elements.BackToAddress)...)
}

// VerifyAllFormFields checks every card input is shown
func (p *PaymentPage) VerifyAllFormFields(ctx context.Context) error {
	for _, kv := range (catalog.PaymentData{}).Fields() {
		if err := p.that(ctx, expect.Visible(p.Elements.Inputs[kv[0]])); err != nil {
			return err
		}
	}
	return nil
}

// VerifyPlaceOrderButton checks the place order button is shown
func (p *PaymentPage) VerifyPlaceOrderButton(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.PlaceOrder))
}

// FillField clears a field and types value into it
func (p *PaymentPage) FillField(ctx context.Context, field, value string) error {
	sel, err := p.Input(field)
	if err != nil {
		return err
	}
	return p.fill(ctx, sel, value)
}

// FillPaymentForm fills the card fields in form order. Empty fields of data
// take the default card.
func (p *PaymentPage) FillPaymentForm(ctx context.Context, data catalog.PaymentData) error {
	for _, kv := range data.WithDefaults().Fields() {
		if err := p.FillField(ctx, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// FillSampleCard fills one of the named sample cards (visa, mastercard, amex,
// invalid, expired).
func (p *PaymentPage) FillSampleCard(ctx context.Context, name string) error {
	card, err := catalog.SampleCard(name)
	if err != nil {
		return err
	}
	return p.FillPaymentForm(ctx, card)
}

// VerifyField checks the current value of field
func (p *PaymentPage) VerifyField(ctx context.Context, field, value string) error {
	sel, err := p.Input(field)
	if err != nil {
		return err
	}
	return p.that(ctx, expect.ValueEquals(sel, value))
}

// VerifyFormFilled checks every field against data, defaults applied
func (p *PaymentPage) VerifyFormFilled(ctx context.Context, data catalog.PaymentData) error {
	for _, kv := range data.WithDefaults().Fields() {
		if err := p.VerifyField(ctx, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// VerifyFieldRequired checks field carries the required attribute
func (p *PaymentPage) VerifyFieldRequired(ctx context.Context, field string) error {
	sel, err := p.Input(field)
	if err != nil {
		return err
	}
	return p.that(ctx, expect.AttrPresent(sel, "required"))
}

// VerifyFieldEmpty checks field holds no value
func (p *PaymentPage) VerifyFieldEmpty(ctx context.Context, field string) error {
	return p.VerifyField(ctx, field, "")
}

// VerifyCardNumberFormat checks the card number is a text input with a numeric maxlength
func (p *PaymentPage) VerifyCardNumberFormat(ctx context.Context) error {
	sel := p.Elements.Inputs["cardnumber"]
	return p.that(ctx,
		expect.AttrEquals(sel, "type", "text"),
		expect.AttrMatches(sel, "maxlength", digits),
	)
}

// VerifyExpiryFormat checks the expiry placeholder asks for MM/YY
func (p *PaymentPage) VerifyExpiryFormat(ctx context.Context) error {
	return p.that(ctx, expect.AttrMatches(p.Elements.Inputs["expiry"], "placeholder", expiryPattern))
}

// VerifyCVVFormat checks the CVV is a text input of at most four characters
func (p *PaymentPage) VerifyCVVFormat(ctx context.Context) error {
	sel := p.Elements.Inputs["cvv"]
	return p.that(ctx,
		expect.AttrEquals(sel, "type", "text"),
		expect.AttrEquals(sel, "maxlength", "4"),
	)
}

// ClickBackToAddress returns to the address step
func (p *PaymentPage) ClickBackToAddress(ctx context.Context) error {
	return p.click(ctx, p.Elements.BackToAddress)
}

// ClickPlaceOrder submits the card details
func (p *PaymentPage) ClickPlaceOrder(ctx context.Context) error {
	return p.click(ctx, p.Elements.PlaceOrder)
}

// VerifyPlaceOrderButtonEnabled checks the place order button accepts clicks
func (p *PaymentPage) VerifyPlaceOrderButtonEnabled(ctx context.Context) error {
	return p.that(ctx, expect.Enabled(p.Elements.PlaceOrder))
}

// SubmitPaymentForm fills the form with data and places the order
func (p *PaymentPage) SubmitPaymentForm(ctx context.Context, data catalog.PaymentData) error {
	if err := p.FillPaymentForm(ctx, data); err != nil {
		return err
	}
	return p.ClickPlaceOrder(ctx)
}

// VerifyValidationError checks the message rendered next to a field
func (p *PaymentPage) VerifyValidationError(ctx context.Context, field, message string) error {
	id, ok := sf.PaymentFields[strings.ToLower(field)]
	if !ok {
		return unknownField("payment", field)
	}
	return p.that(ctx, expect.TextContains(sf.FieldContainer(id), message))
}

// VerifyErrorMessage checks some .error-message contains text
func (p *PaymentPage) VerifyErrorMessage(ctx context.Context, text string) error {
	return p.that(ctx,
		expect.Exist(p.Elements.ErrorMessages),
		errorMessagesContain(p.Elements.ErrorMessages, text),
	)
}

// ClearForm empties every card input
func (p *PaymentPage) ClearForm(ctx context.Context) error {
	for _, kv := range (catalog.PaymentData{}).Fields() {
		if err := p.page.Clear(ctx, p.Elements.Inputs[kv[0]]); err != nil {
			return err
		}
	}
	return nil
}

// VerifyNavigationToAddress checks the URL moved back to the address step
func (p *PaymentPage) VerifyNavigationToAddress(ctx context.Context) error {
	return p.that(ctx, expect.URLContains(sf.RouteCheckoutAddress))
}

// VerifyOnPage checks the URL and the rendered form
func (p *PaymentPage) VerifyOnPage(ctx context.Context) error {
	if err := p.that(ctx, expect.URLContains(sf.RouteCheckoutPayment)); err != nil {
		return err
	}
	return p.VerifyPageLoaded(ctx)
}

// VerifyLoadingComplete waits for the loading state to go away
func (p *PaymentPage) VerifyLoadingComplete(ctx context.Context) error {
	return p.that(ctx, expect.NotExist(p.Elements.Loading))
}

// VerifyPaymentComplete checks the URL left the payment step
func (p *PaymentPage) VerifyPaymentComplete(ctx context.Context) error {
	return p.that(ctx, expect.URLNotContains(sf.RouteCheckoutPayment))
}
