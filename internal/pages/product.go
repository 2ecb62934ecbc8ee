package pages

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/catalog"
	"github.com/adyen/storefront-e2e/internal/expect"
	sf "github.com/adyen/storefront-e2e/internal/storefront"
)

var (
	currencyFormat = regexp.MustCompile(`^\$\d+\.\d{2}$`)
	hasLetter      = regexp.MustCompile(`[a-zA-Z]`)
	nonEmpty       = regexp.MustCompile(`\S`)
)

// ProductElements are the selectors of the product detail screen
type ProductElements struct {
	Container        string
	Title            string
	Image            string
	Price            string
	Description      string
	Info             string
	QuantitySelector string
	AddToCart        string
}

// ProductPage is the detail screen at /product/:id
type ProductPage struct {
	base
	Elements ProductElements
}

// NewProductPage returns the detail screen bound to page
func NewProductPage(page browser.Page, a *expect.Asserter) *ProductPage {
	return &ProductPage{
		base: base{page: page, expect: a},
		Elements: ProductElements{
			Container:        sf.TestID(sf.IDProductDetailPage),
			Title:            sf.TestID(sf.IDProductName),
			Image:            sf.TestID(sf.IDProductImage),
			Price:            sf.TestID(sf.IDProductPrice),
			Description:      sf.TestID(sf.IDProductDesc),
			Info:             sf.TestID(sf.IDProductInfo),
			QuantitySelector: sf.TestID(sf.IDQuantitySelector),
			AddToCart:        sf.TestID(sf.IDAddToCart),
		},
	}
}

// Visit loads the detail screen of id
func (p *ProductPage) Visit(ctx context.Context, id string) error {
	return p.visit(ctx, sf.ProductRoute(id))
}

// VerifyProductContainer checks the detail container is shown
func (p *ProductPage) VerifyProductContainer(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.Container))
}

// VerifyProductTitle checks the title contains expected, or is a visible
// non-empty heading when expected is blank.
func (p *ProductPage) VerifyProductTitle(ctx context.Context, expected string) error {
	if expected != "" {
		return p.that(ctx, expect.TextContains(p.Elements.Title, expected))
	}
	return p.that(ctx, expect.Visible(p.Elements.Title), expect.NotEmpty(p.Elements.Title))
}

// VerifyProductImage checks the image is shown with a src
func (p *ProductPage) VerifyProductImage(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.Image), expect.AttrPresent(p.Elements.Image, "src"))
}

// VerifyImageSource checks the image src is not blank
func (p *ProductPage) VerifyImageSource(ctx context.Context) error {
	return p.that(ctx, expect.AttrMatches(p.Elements.Image, "src", nonEmpty))
}

// VerifyProductPrice works like VerifyProductTitle for the price label
func (p *ProductPage) VerifyProductPrice(ctx context.Context, expected string) error {
	if expected != "" {
		return p.that(ctx, expect.TextContains(p.Elements.Price, expected))
	}
	return p.that(ctx, expect.Visible(p.Elements.Price), expect.NotEmpty(p.Elements.Price))
}

// VerifyProductDescription checks the description is shown
func (p *ProductPage) VerifyProductDescription(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.Description))
}

// VerifyAllProductDetails checks container, title, image, price and description
func (p *ProductPage) VerifyAllProductDetails(ctx context.Context) error {
	checks := []func(context.Context) error{
		p.VerifyProductContainer,
		func(ctx context.Context) error { return p.VerifyProductTitle(ctx, "") },
		p.VerifyProductImage,
		func(ctx context.Context) error { return p.VerifyProductPrice(ctx, "") },
		p.VerifyProductDescription,
	}
	for _, check := range checks {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ProductTitle reads the title text
func (p *ProductPage) ProductTitle(ctx context.Context) (string, error) {
	return p.page.TextContent(ctx, p.Elements.Title)
}

// VerifyPriceFormat checks the price reads like $149.99
func (p *ProductPage) VerifyPriceFormat(ctx context.Context) error {
	return p.that(ctx,
		expect.TextContains(p.Elements.Price, "$"),
		expect.TextMatches(p.Elements.Price, currencyFormat),
	)
}

// VerifyPricePositive checks the price parses to more than zero
func (p *ProductPage) VerifyPricePositive(ctx context.Context) error {
	return p.that(ctx, expect.Condition{
		Description: p.Elements.Price + " to be a positive amount",
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			text, err := page.TextContent(ctx, p.Elements.Price)
			if err != nil {
				return false, "", err
			}
			v, err := catalog.ParsePrice(text)
			return err == nil && v > 0, text, nil
		},
	})
}

// VerifyTitleMeaningful checks the title is longer than three characters
func (p *ProductPage) VerifyTitleMeaningful(ctx context.Context) error {
	return p.that(ctx, expect.Condition{
		Description: p.Elements.Title + " to be longer than 3 characters",
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			text, err := page.TextContent(ctx, p.Elements.Title)
			return len(strings.TrimSpace(text)) > 3, fmt.Sprintf("%q", text), err
		},
	})
}

// VerifyTitleHasLetters rejects titles made only of digits and punctuation
func (p *ProductPage) VerifyTitleHasLetters(ctx context.Context) error {
	return p.that(ctx, expect.TextMatches(p.Elements.Title, hasLetter))
}

// SelectQuantity picks quantity in the dropdown
func (p *ProductPage) SelectQuantity(ctx context.Context, quantity string) error {
	return p.page.SelectOption(ctx, p.Elements.QuantitySelector, quantity)
}

// VerifyQuantityValue checks the selected quantity
func (p *ProductPage) VerifyQuantityValue(ctx context.Context, quantity string) error {
	return p.that(ctx, expect.ValueEquals(p.Elements.QuantitySelector, quantity))
}

// VerifyQuantitySelector checks the quantity dropdown is shown
func (p *ProductPage) VerifyQuantitySelector(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.QuantitySelector))
}

// VerifyQuantityOptions checks the dropdown offers exactly values
func (p *ProductPage) VerifyQuantityOptions(ctx context.Context, values []string) error {
	return p.that(ctx, expect.OptionsEqual(p.Elements.QuantitySelector, values))
}

// VerifyQuantityIsDropdown checks the quantity control is a <select>
func (p *ProductPage) VerifyQuantityIsDropdown(ctx context.Context) error {
	return p.that(ctx,
		expect.Visible(p.Elements.QuantitySelector),
		expect.PropEquals(p.Elements.QuantitySelector, "tagName", "SELECT"),
	)
}

// AddToCart clicks the add to cart button
func (p *ProductPage) AddToCart(ctx context.Context) error {
	return p.click(ctx, p.Elements.AddToCart)
}

// VerifyAddToCartSuccess checks the redirect that follows adding to cart
func (p *ProductPage) VerifyAddToCartSuccess(ctx context.Context) error {
	return p.that(ctx, expect.URLContains(sf.RouteCart))
}

// VerifyAddToCartButtonVisible checks the add to cart button is shown
func (p *ProductPage) VerifyAddToCartButtonVisible(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.AddToCart))
}

// VerifyAddToCartButtonEnabled checks the add to cart button accepts clicks
func (p *ProductPage) VerifyAddToCartButtonEnabled(ctx context.Context) error {
	return p.that(ctx, expect.Enabled(p.Elements.AddToCart))
}

// VerifyAddToCartButtonDisabled checks the add to cart button rejects clicks
func (p *ProductPage) VerifyAddToCartButtonDisabled(ctx context.Context) error {
	return p.that(ctx, expect.Disabled(p.Elements.AddToCart))
}

// AddProductToCart selects a quantity, adds and waits for the cart redirect
func (p *ProductPage) AddProductToCart(ctx context.Context, quantity string) error {
	if quantity == "" {
		quantity = "1"
	}
	if err := p.SelectQuantity(ctx, quantity); err != nil {
		return err
	}
	if err := p.AddToCart(ctx); err != nil {
		return err
	}
	return p.VerifyAddToCartSuccess(ctx)
}
