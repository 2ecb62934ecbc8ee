package browsertest

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/adyen/storefront-e2e/internal/browser"
	sf "github.com/adyen/storefront-e2e/internal/storefront"
)

func mustDo(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStorefront_AddToCartFromProductPage(t *testing.T) {
	ctx := context.Background()
	s := New()

	// GIVEN a product detail page
	mustDo(t, s.Goto(ctx, sf.ProductRoute("1")))

	// WHEN quantity 3 is selected and added
	mustDo(t, s.SelectOption(ctx, sf.TestID(sf.IDQuantitySelector), "3"))
	mustDo(t, s.Click(ctx, sf.TestID(sf.IDAddToCart)))

	// THEN the cart page shows the item with quantity 3
	if s.Path() != sf.RouteCart {
		t.Fatalf("expected %s, got %s", sf.RouteCart, s.Path())
	}
	v, err := s.InputValue(ctx, sf.TestID(sf.PrefixQuantity+"1"))
	mustDo(t, err)
	if v != "3" {
		t.Errorf("expected quantity 3, got %s", v)
	}
	items, err := s.Cart()
	mustDo(t, err)
	if len(items) != 1 || items[0].Quantity != 3 || items[0].Price != 79.99 {
		t.Errorf("unexpected cart %+v", items)
	}
}

func TestStorefront_QuantityZeroRemovesRow(t *testing.T) {
	ctx := context.Background()
	s := New()
	mustDo(t, s.SetItem(ctx, sf.StorageKeyCart, `[{"id":2,"name":"Premium Leather Watch","price":149.99,"quantity":1,"image":""}]`))
	mustDo(t, s.Goto(ctx, sf.RouteCart))

	mustDo(t, s.SelectOption(ctx, sf.TestID(sf.PrefixQuantity+"2"), "0"))

	n, err := s.Count(ctx, sf.TestID(sf.PrefixCartItem+"2"))
	mustDo(t, err)
	if n != 0 {
		t.Errorf("expected row to be removed, got %d", n)
	}
	visible, err := s.IsVisible(ctx, sf.TestID(sf.IDEmptyCart))
	mustDo(t, err)
	if !visible {
		t.Error("expected empty cart message")
	}
}

func TestStorefront_AddressRedirectsWhenCartEmpty(t *testing.T) {
	ctx := context.Background()
	s := New()

	mustDo(t, s.Goto(ctx, sf.RouteCheckoutAddress))

	url, err := s.URL(ctx)
	mustDo(t, err)
	if url != BaseURL+sf.RouteCart {
		t.Errorf("expected redirect to cart, got %s", url)
	}
}

func TestStorefront_PriceSortUsesStringOrder(t *testing.T) {
	tests := []struct {
		name    string
		numeric bool
		clicks  int
		want    []string
	}{
		{name: "default order", clicks: 0, want: []string{"$79.99", "$149.99", "$199.99"}},
		{name: "ascending defect", clicks: 1, want: []string{"$149.99", "$199.99", "$79.99"}},
		{name: "descending defect", clicks: 2, want: []string{"$79.99", "$199.99", "$149.99"}},
		{name: "ascending fixed", numeric: true, clicks: 1, want: []string{"$79.99", "$149.99", "$199.99"}},
		{name: "descending fixed", numeric: true, clicks: 2, want: []string{"$199.99", "$149.99", "$79.99"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := New()
			s.NumericSort = tt.numeric
			mustDo(t, s.Goto(ctx, sf.RouteHome))

			for i := 0; i < tt.clicks; i++ {
				mustDo(t, s.Click(ctx, sf.TestID(sf.IDSortPrice)))
			}

			got, err := s.AllTextContents(ctx, sf.ClassProductPrice)
			mustDo(t, err)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestStorefront_AddressSavedButNotRepopulated(t *testing.T) {
	ctx := context.Background()
	s := New()
	mustDo(t, s.SetItem(ctx, sf.StorageKeyCart, `[{"id":1,"name":"Classic White Sneakers","price":79.99,"quantity":1,"image":""}]`))
	mustDo(t, s.Goto(ctx, sf.RouteCheckoutAddress))

	values := map[string]string{
		"firstname": "John", "email": "john@example.com", "phone": "(555) 123-4567", "street": "123 Main Street",
		"city": "New York", "state": "NY", "zipcode": "10001", "country": "United States",
	}
	for field, v := range values {
		mustDo(t, s.Fill(ctx, sf.TestID(sf.InputID(field)), v))
	}
	mustDo(t, s.Click(ctx, sf.TestID(sf.IDContinueToPayment)))
	if s.Path() != sf.RouteCheckoutPayment {
		t.Fatalf("expected payment page, got %s", s.Path())
	}

	mustDo(t, s.Click(ctx, sf.TestID(sf.IDBackToAddress)))

	saved, ok, err := s.GetItem(ctx, sf.StorageKeyAddress)
	mustDo(t, err)
	if !ok || saved == "" {
		t.Fatal("expected saved address data")
	}
	v, err := s.InputValue(ctx, sf.TestID(sf.InputID("firstname")))
	mustDo(t, err)
	if v != "" {
		t.Errorf("expected empty field, got %q", v)
	}
}

func TestStorefront_ValidationMessages(t *testing.T) {
	ctx := context.Background()
	s := New()
	mustDo(t, s.SetItem(ctx, sf.StorageKeyCart, `[{"id":1,"name":"Classic White Sneakers","price":79.99,"quantity":1,"image":""}]`))
	mustDo(t, s.Goto(ctx, sf.RouteCheckoutAddress))

	mustDo(t, s.Click(ctx, sf.TestID(sf.IDContinueToPayment)))

	if s.Path() != sf.RouteCheckoutAddress {
		t.Fatalf("expected to stay on address page, got %s", s.Path())
	}
	text, err := s.TextContent(ctx, sf.FieldContainer(sf.InputID("email")))
	mustDo(t, err)
	if text != MsgRequired {
		t.Errorf("expected %q, got %q", MsgRequired, text)
	}
}

func TestStorefront_LoadingPhase(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.LoadingReads = 2
	mustDo(t, s.Goto(ctx, sf.RouteCart))

	visible, err := s.IsVisible(ctx, sf.TestID(sf.IDCartPage))
	mustDo(t, err)
	if visible {
		t.Error("expected cart page hidden while loading")
	}
	visible, err = s.IsVisible(ctx, sf.TestID(sf.IDCartPage))
	mustDo(t, err)
	if !visible {
		t.Error("expected cart page after loading")
	}
}

func TestStorefront_MissingElement(t *testing.T) {
	ctx := context.Background()
	s := New()
	mustDo(t, s.Goto(ctx, sf.RouteHome))

	_, err := s.TextContent(ctx, sf.TestID(sf.IDSubtotal))
	if !errors.Is(err, browser.ErrElementNotFound) {
		t.Errorf("expected ErrElementNotFound, got %v", err)
	}
}

func TestStorefront_Close(t *testing.T) {
	s := New()
	mustDo(t, s.Close())

	if err := s.Goto(context.Background(), sf.RouteHome); err == nil {
		t.Error("expected error after close")
	}
}
