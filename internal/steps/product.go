package steps

import (
	"context"
	"fmt"
	"strconv"

	"github.com/adyen/storefront-e2e/internal/expect"
	sf "github.com/adyen/storefront-e2e/internal/storefront"
)

// DefaultProductID is the product opened by steps that name none
const DefaultProductID = "1"

func (s *Scenario) productSteps(r *Registry) {
	r.Step(`^I click on a product item$`, func(ctx context.Context) error {
		return s.pages.Home.ClickFirstViewDetails(ctx)
	})
	r.Step(`^I should be on the product detail page$`, func(ctx context.Context) error {
		if err := s.expect.That(ctx, expect.URLContains(sf.ProductRoute(""))); err != nil {
			return err
		}
		return s.pages.Product.VerifyProductContainer(ctx)
	})
	r.Step(`^I (?:am on a product detail page|navigate directly to a product page)$`, func(ctx context.Context) error {
		return s.pages.Product.Visit(ctx, DefaultProductID)
	})

	r.Step(`^I should see the product (title|image|price|description)$`, s.productPart)
	r.Step(`^I should see the quantity selector$`, func(ctx context.Context) error {
		return s.pages.Product.VerifyQuantitySelector(ctx)
	})
	r.Step(`^(?:I should see the add to cart button|the add to cart button should be enabled)$`, func(ctx context.Context) error {
		return s.pages.Product.VerifyAddToCartButtonEnabled(ctx)
	})
	r.Step(`^the add to cart button should be visible$`, func(ctx context.Context) error {
		return s.pages.Product.VerifyAddToCartButtonVisible(ctx)
	})
	r.Step(`^the page loads completely$`, func(ctx context.Context) error {
		return settle(ctx, s.deps.Settings.PageSettle)
	})

	r.Step(`^the product image should be visible$`, func(ctx context.Context) error {
		return s.pages.Product.VerifyProductImage(ctx)
	})
	r.Step(`^the product image should have a valid source$`, func(ctx context.Context) error {
		return s.pages.Product.VerifyImageSource(ctx)
	})
	r.Step(`^the product (title|price) should not be empty$`, func(ctx context.Context, part string) error {
		sel := s.pages.Product.Elements.Title
		if part == "price" {
			sel = s.pages.Product.Elements.Price
		}
		return s.expect.That(ctx, expect.NotEmpty(sel))
	})
	r.Step(`^the product description should be visible$`, func(ctx context.Context) error {
		return s.pages.Product.VerifyProductDescription(ctx)
	})

	r.Step(`^(?:I select quantity|the quantity is set to) "([^"]*)"(?: from the dropdown)?$`, func(ctx context.Context, qty string) error {
		return s.pages.Product.SelectQuantity(ctx, qty)
	})
	r.Step(`^(?:the quantity (?:field should show|should be set to)|the default quantity should be) "([^"]*)"$`, func(ctx context.Context, qty string) error {
		return s.pages.Product.VerifyQuantityValue(ctx, qty)
	})
	r.Step(`^the quantity dropdown should be visible$`, func(ctx context.Context) error {
		return s.pages.Product.VerifyQuantitySelector(ctx)
	})
	r.Step(`^the quantity dropdown should have options from (\d+) to (\d+)$`, func(ctx context.Context, from, to int) error {
		if from > to {
			return fmt.Errorf("invalid option range %d to %d", from, to)
		}
		values := make([]string, 0, to-from+1)
		for i := from; i <= to; i++ {
			values = append(values, strconv.Itoa(i))
		}
		return s.pages.Product.VerifyQuantityOptions(ctx, values)
	})
	r.Step(`^the quantity field should accept numeric input only$`, func(ctx context.Context) error {
		return s.pages.Product.VerifyQuantityIsDropdown(ctx)
	})

	r.Step(`^I click the add to cart button$`, func(ctx context.Context) error {
		return s.pages.Product.AddToCart(ctx)
	})

	r.Step(`^the product price should be displayed in a valid currency format$`, func(ctx context.Context) error {
		return s.pages.Product.VerifyPriceFormat(ctx)
	})
	r.Step(`^the product price should be a positive value$`, func(ctx context.Context) error {
		return s.pages.Product.VerifyPricePositive(ctx)
	})
	r.Step(`^the product title should be meaningful$`, func(ctx context.Context) error {
		return s.pages.Product.VerifyTitleMeaningful(ctx)
	})
	r.Step(`^the product title should not contain only numbers or special characters$`, func(ctx context.Context) error {
		return s.pages.Product.VerifyTitleHasLetters(ctx)
	})

	r.Step(`^the page finishes loading$`, func(ctx context.Context) error {
		return s.expect.That(ctx, expect.NotExist(sf.TestID(sf.IDLoading)))
	})
	r.Step(`^all product elements should be present$`, func(ctx context.Context) error {
		if err := s.pages.Product.VerifyAllProductDetails(ctx); err != nil {
			return err
		}
		if err := s.pages.Product.VerifyQuantitySelector(ctx); err != nil {
			return err
		}
		return s.pages.Product.VerifyAddToCartButtonEnabled(ctx)
	})
	r.Step(`^no loading indicators should be visible$`, func(ctx context.Context) error {
		return s.expect.That(ctx, expect.NotExist(sf.TestID(sf.IDLoading)), expect.NotExist(sf.ClassLoading))
	})
	r.Step(`^there should be no error messages displayed$`, func(ctx context.Context) error {
		return s.expect.That(ctx, expect.NotExist(sf.TestID(sf.IDError)), expect.NotExist(sf.ClassError))
	})
}

func (s *Scenario) productPart(ctx context.Context, part string) error {
	p := s.pages.Product
	switch part {
	case "title":
		return p.VerifyProductTitle(ctx, "")
	case "image":
		return p.VerifyProductImage(ctx)
	case "price":
		return p.VerifyProductPrice(ctx, "")
	case "description":
		return p.VerifyProductDescription(ctx)
	}
	return fmt.Errorf("unknown product part %q", part)
}
