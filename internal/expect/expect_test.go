package expect

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/browser/browsertest"
	sf "github.com/adyen/storefront-e2e/internal/storefront"
)

func newAsserter(t *testing.T, path string) (*Asserter, *browsertest.Storefront) {
	t.Helper()
	page := browsertest.New()
	require.NoError(t, page.Goto(context.Background(), path))
	return New(page, 200*time.Millisecond, 5*time.Millisecond), page
}

func TestAsserter_ThatPassesImmediately(t *testing.T) {
	a, _ := newAsserter(t, sf.RouteHome)

	err := a.That(context.Background(),
		Visible(sf.TestID(sf.IDHomePage)),
		CountEquals(sf.ClassProductCard, 3),
		TextContains(sf.TestID(sf.IDSortPrice), "Sort by Price"),
		URLNotContains("/cart"),
	)

	assert.NoError(t, err)
}

func TestAsserter_WaitsOutLoading(t *testing.T) {
	page := browsertest.New()
	page.LoadingReads = 3
	require.NoError(t, page.Goto(context.Background(), sf.RouteCart))
	a := New(page, time.Second, time.Millisecond)

	err := a.That(context.Background(),
		Visible(sf.TestID(sf.IDCartPage)),
		NotExist(sf.TestID(sf.IDLoading)),
	)

	assert.NoError(t, err)
}

func TestAsserter_TimeoutReportsLastObservation(t *testing.T) {
	a, _ := newAsserter(t, sf.RouteHome)

	err := a.Within(20*time.Millisecond).That(context.Background(), CountEquals(sf.ClassProductCard, 5))

	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, "length 3", timeout.Actual)
	assert.Equal(t, 20*time.Millisecond, timeout.Timeout)
	assert.Contains(t, err.Error(), "to have length 5")
}

func TestAsserter_TimeoutWrapsQueryError(t *testing.T) {
	a, _ := newAsserter(t, sf.RouteHome)

	err := a.Within(20*time.Millisecond).That(context.Background(), TextContains(sf.TestID(sf.IDSubtotal), "$"))

	assert.True(t, errors.Is(err, browser.ErrElementNotFound))
}

func TestAsserter_StopsAtFirstFailure(t *testing.T) {
	a, _ := newAsserter(t, sf.RouteHome)
	called := false
	tail := Condition{
		Description: "never reached",
		Check: func(ctx context.Context, page browser.Page) (bool, string, error) {
			called = true
			return true, "", nil
		},
	}

	err := a.Within(10*time.Millisecond).That(context.Background(), Visible(sf.TestID(sf.IDCartPage)), tail)

	assert.Error(t, err)
	assert.False(t, called)
}

func TestAsserter_CancelledContext(t *testing.T) {
	a, _ := newAsserter(t, sf.RouteHome)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.That(ctx, Visible(sf.TestID(sf.IDHomePage)))

	var timeout *TimeoutError
	assert.Error(t, err)
	assert.False(t, errors.As(err, &timeout))
}

func TestConditions(t *testing.T) {
	ctx := context.Background()
	a, page := newAsserter(t, sf.ProductRoute("1"))
	require.NoError(t, page.SetItem(ctx, sf.StorageKeyAddress, `{"firstName":"John"}`))

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"visible", Visible(sf.TestID(sf.IDProductName)), true},
		{"visible missing", Visible(sf.TestID(sf.IDCartPage)), false},
		{"exist", Exist(sf.TestID(sf.IDAddToCart)), true},
		{"not exist", NotExist(sf.TestID(sf.IDLoading)), true},
		{"enabled", Enabled(sf.TestID(sf.IDAddToCart)), true},
		{"disabled", Disabled(sf.TestID(sf.IDAddToCart)), false},
		{"value", ValueEquals(sf.TestID(sf.IDQuantitySelector), "1"), true},
		{"text contains", TextContains(sf.TestID(sf.IDProductPrice), "$79.99"), true},
		{"text not contains", TextNotContains(sf.TestID(sf.IDProductPrice), "N/A"), true},
		{"text matches", TextMatches(sf.TestID(sf.IDProductPrice), regexp.MustCompile(`^\$\d+\.\d{2}$`)), true},
		{"not empty", NotEmpty(sf.TestID(sf.IDProductName)), true},
		{"count greater", CountGreaterThan(sf.TestID(sf.IDProductName), 0), true},
		{"url contains", URLContains("/product/"), true},
		{"url matches", URLMatches(regexp.MustCompile(`/product/\d+$`)), true},
		{"attr present", AttrPresent(sf.TestID(sf.IDProductImage), "src"), true},
		{"attr equals", AttrEquals(sf.TestID(sf.IDProductImage), "alt", "Classic White Sneakers"), true},
		{"attr matches", AttrMatches(sf.TestID(sf.IDProductImage), "src", regexp.MustCompile(`^https://`)), true},
		{"prop", PropEquals(sf.TestID(sf.IDQuantitySelector), "tagName", "SELECT"), true},
		{"options", OptionsEqual(sf.TestID(sf.IDQuantitySelector), []string{"1", "2", "3", "4", "5"}), true},
		{"options mismatch", OptionsEqual(sf.TestID(sf.IDQuantitySelector), []string{"1"}), false},
		{"page text", PageHasText("Classic White Sneakers"), true},
		{"storage set", Storage(sf.StorageKeyAddress, "to be set", func(_ string, ok bool) bool { return ok }), true},
		{"storage unset", Storage(sf.StorageKeyCart, "to be unset", func(_ string, ok bool) bool { return !ok }), true},
		{"not missing", Not(Visible(sf.TestID(sf.IDCartPage))), true},
		{"not present", Not(Exist(sf.TestID(sf.IDProductName))), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := a.Holds(ctx, tt.cond)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}
