package steps

import (
	"context"
	"fmt"

	"github.com/adyen/storefront-e2e/internal/expect"
	sf "github.com/adyen/storefront-e2e/internal/storefront"
)

// DefaultSortLabel is the sort button text before any sorting
const DefaultSortLabel = "Sort by Price ↑"

func (s *Scenario) homepageSteps(r *Registry) {
	r.Step(`^I am on the homepage$`, s.onHomepage)
	r.Step(`^I should see the main content$`, func(ctx context.Context) error {
		return s.pages.Home.VerifyMainContent(ctx)
	})
	r.Step(`^(?:I should see the full list of products|I can see the product list|the product list should be visible|the product list loads)$`,
		func(ctx context.Context) error {
			return s.pages.Home.VerifyProductsGrid(ctx)
		})
	r.Step(`^I should see a list of products$`, func(ctx context.Context) error {
		if err := s.pages.Home.VerifyProductsGrid(ctx); err != nil {
			return err
		}
		return s.pages.Home.VerifyAtLeastOneProduct(ctx)
	})

	r.Step(`^the sort button (?:shows|should show) "([^"]*)"$`, func(ctx context.Context, label string) error {
		return s.pages.Home.VerifySortButtonText(ctx, label)
	})
	r.Step(`^I click the sort price button(?: again)?$`, func(ctx context.Context) error {
		return s.pages.Home.ClickSortButton(ctx)
	})
	r.Step(`^the products should be sorted by price in (ascending|descending) order$`, s.pricesSorted)
	r.Step(`^the products should be displayed in the default order$`, func(ctx context.Context) error {
		return s.pages.Home.VerifySortButtonText(ctx, DefaultSortLabel)
	})

	r.Step(`^I click on a "([^"]*)" button$`, func(ctx context.Context, text string) error {
		if err := s.expect.That(ctx, expect.TextContains(s.pages.Home.Elements.ViewDetailsButtons, text)); err != nil {
			return err
		}
		return s.pages.Home.ClickFirstViewDetails(ctx)
	})
	r.Step(`^I should be redirected to the product detail page$`, func(ctx context.Context) error {
		return s.expect.That(ctx, expect.URLContains(sf.ProductRoute("")))
	})
	r.Step(`^I should see the product information$`, func(ctx context.Context) error {
		return s.pages.Product.VerifyProductContainer(ctx)
	})

	r.Step(`^each product should display an? (image|title|price)$`, s.eachProductDisplays)
	r.Step(`^I should see exactly (\d+) products$`, func(ctx context.Context, n int) error {
		return s.pages.Home.VerifyProductCount(ctx, n)
	})
	r.Step(`^all products should be displayed$`, func(ctx context.Context) error {
		return s.pages.Home.VerifyProductElements(ctx)
	})
}

func (s *Scenario) onHomepage(ctx context.Context) error {
	if err := s.pages.Home.Visit(ctx); err != nil {
		return err
	}
	return s.pages.Home.VerifyMainContent(ctx)
}

func (s *Scenario) pricesSorted(ctx context.Context, order string) error {
	if order == "descending" {
		return s.pages.Home.VerifyPricesSortedDescending(ctx)
	}
	return s.pages.Home.VerifyPricesSortedAscending(ctx)
}

func (s *Scenario) eachProductDisplays(ctx context.Context, part string) error {
	switch part {
	case "image":
		return s.pages.Home.VerifyProductImages(ctx)
	case "title":
		return s.pages.Home.VerifyProductTitles(ctx)
	case "price":
		return s.pages.Home.VerifyProductPrices(ctx)
	}
	return fmt.Errorf("unknown product part %q", part)
}
