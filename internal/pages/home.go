package pages

import (
	"context"
	"fmt"
	"sort"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/catalog"
	"github.com/adyen/storefront-e2e/internal/expect"
	sf "github.com/adyen/storefront-e2e/internal/storefront"
)

// HomeElements are the selectors of the product listing
type HomeElements struct {
	MainContent        string
	ProductsGrid       string
	ProductCards       string
	ViewDetailsButtons string
	SortButton         string
	NavToCart          string
	ProductImages      string
	ProductTitles      string
	ProductPrices      string
}

// HomePage is the product listing at "/"
type HomePage struct {
	base
	Elements HomeElements
}

// NewHomePage returns the product listing bound to page
func NewHomePage(page browser.Page, a *expect.Asserter) *HomePage {
	return &HomePage{
		base: base{page: page, expect: a},
		Elements: HomeElements{
			MainContent:        sf.TestID(sf.IDHomePage),
			ProductsGrid:       sf.ClassProductsGrid,
			ProductCards:       sf.ClassProductCard,
			ViewDetailsButtons: sf.TestIDPrefix(sf.PrefixViewProduct),
			SortButton:         sf.TestID(sf.IDSortPrice),
			NavToCart:          sf.TestID(sf.IDNavToCart),
			ProductImages:      sf.ClassProductImage,
			ProductTitles:      sf.ClassProductName,
			ProductPrices:      sf.ClassProductPrice,
		},
	}
}

// ViewProductButton returns the "View Details" button of one product
func (p *HomePage) ViewProductButton(id string) string {
	return sf.TestID(sf.PrefixViewProduct + id)
}

// Visit loads the homepage
func (p *HomePage) Visit(ctx context.Context) error {
	return p.visit(ctx, sf.RouteHome)
}

// VerifyMainContent checks the listing container is shown
func (p *HomePage) VerifyMainContent(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.MainContent))
}

// VerifyProductsGrid checks the product grid is shown
func (p *HomePage) VerifyProductsGrid(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.ProductsGrid))
}

// ClickSortButton toggles the price sort
func (p *HomePage) ClickSortButton(ctx context.Context) error {
	return p.click(ctx, p.Elements.SortButton)
}

// VerifySortButtonText checks the sort button label contains text
func (p *HomePage) VerifySortButtonText(ctx context.Context, text string) error {
	return p.that(ctx, expect.TextContains(p.Elements.SortButton, text))
}

// ClickFirstViewDetails opens the first product in listing order
func (p *HomePage) ClickFirstViewDetails(ctx context.Context) error {
	return p.click(ctx, p.Elements.ViewDetailsButtons)
}

// ClickViewProduct opens the detail screen of id
func (p *HomePage) ClickViewProduct(ctx context.Context, id string) error {
	return p.click(ctx, p.ViewProductButton(id))
}

// ClickCartNav follows the header link to the cart
func (p *HomePage) ClickCartNav(ctx context.Context) error {
	return p.click(ctx, p.Elements.NavToCart)
}

// VerifyProductElements checks that cards render with image, title and price
func (p *HomePage) VerifyProductElements(ctx context.Context) error {
	return p.that(ctx,
		expect.CountGreaterThan(p.Elements.ProductCards, 0),
		expect.Visible(p.Elements.ProductImages),
		expect.Visible(p.Elements.ProductTitles),
		expect.Visible(p.Elements.ProductPrices),
	)
}

// VerifyProductImages checks a card image is shown
func (p *HomePage) VerifyProductImages(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.ProductImages))
}

// VerifyProductTitles checks a card title is shown
func (p *HomePage) VerifyProductTitles(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.ProductTitles))
}

// VerifyProductPrices checks a card price is shown
func (p *HomePage) VerifyProductPrices(ctx context.Context) error {
	return p.that(ctx, expect.Visible(p.Elements.ProductPrices))
}

// VerifyProductCount checks exactly n cards are listed
func (p *HomePage) VerifyProductCount(ctx context.Context, n int) error {
	return p.that(ctx, expect.CountEquals(p.Elements.ProductCards, n))
}

// VerifyAtLeastOneProduct checks the listing is not empty
func (p *HomePage) VerifyAtLeastOneProduct(ctx context.Context) error {
	return p.that(ctx, expect.CountGreaterThan(p.Elements.ProductCards, 0))
}

// ProductPrices reads the listed prices in display order
func (p *HomePage) ProductPrices(ctx context.Context) ([]float64, error) {
	texts, err := p.page.AllTextContents(ctx, p.Elements.ProductPrices)
	if err != nil {
		return nil, err
	}
	prices := make([]float64, 0, len(texts))
	for _, text := range texts {
		v, err := catalog.ParsePrice(text)
		if err != nil {
			return nil, err
		}
		prices = append(prices, v)
	}
	return prices, nil
}

// VerifyPricesSortedAscending asserts numeric order. The application sorts
// prices as strings, so this fails against it.
func (p *HomePage) VerifyPricesSortedAscending(ctx context.Context) error {
	return p.that(ctx, p.pricesSorted("ascending", func(a, b float64) bool { return a < b }))
}

// VerifyPricesSortedDescending asserts numeric order. The application sorts
// prices as strings, so this fails against it.
func (p *HomePage) VerifyPricesSortedDescending(ctx context.Context) error {
	return p.that(ctx, p.pricesSorted("descending", func(a, b float64) bool { return a > b }))
}

func (p *HomePage) pricesSorted(order string, less func(a, b float64) bool) expect.Condition {
	return expect.Condition{
		Description: fmt.Sprintf("product prices in %s numeric order", order),
		Check: func(ctx context.Context, _ browser.Page) (bool, string, error) {
			prices, err := p.ProductPrices(ctx)
			if err != nil {
				return false, "", err
			}
			ok := len(prices) > 0 && sort.SliceIsSorted(prices, func(i, j int) bool { return less(prices[i], prices[j]) })
			return ok, fmt.Sprint(prices), nil
		},
	}
}
