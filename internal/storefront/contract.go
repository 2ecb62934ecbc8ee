// Package storefront describes the parts of the storefront web application the
// suite depends on: routes, data-testid hooks, storage keys and fixed copy.
// Page objects and the in-memory test double both build on these values, so a
// change in the application contract is a change in one place.
package storefront

import (
	"fmt"
	"strings"
)

// Routes
const (
	RouteHome            = "/"
	RouteCart            = "/cart"
	RouteCheckoutAddress = "/checkout/address"
	RouteCheckoutPayment = "/checkout/payment"
	RouteCheckoutSuccess = "/checkout/success"
	routeProductPrefix   = "/product/"
)

// Browser storage keys written by the application.
const (
	StorageKeyCart    = "cart"
	StorageKeyAddress = "addressData"
)

// SuccessMessage is the headline rendered on the order success screen.
const SuccessMessage = "Thank You for Your Purchase!"

// ProductRoute returns the detail route for a product id.
func ProductRoute(id string) string {
	return routeProductPrefix + id
}

// IsProductRoute reports whether path points at a product detail page.
func IsProductRoute(path string) bool {
	return strings.HasPrefix(path, routeProductPrefix)
}

// ProductIDFromRoute extracts the id segment of a product detail route.
func ProductIDFromRoute(path string) string {
	return strings.TrimPrefix(path, routeProductPrefix)
}

// TestID returns the attribute selector for a data-testid value.
func TestID(id string) string {
	return fmt.Sprintf(`[data-testid="%s"]`, id)
}

// TestIDPrefix returns a selector matching every data-testid starting with prefix.
func TestIDPrefix(prefix string) string {
	return fmt.Sprintf(`[data-testid^="%s"]`, prefix)
}

// TestIDContains returns a selector matching every data-testid containing part.
func TestIDContains(part string) string {
	return fmt.Sprintf(`[data-testid*="%s"]`, part)
}

// Descendant returns a selector for child elements nested under parent.
func Descendant(parent, child string) string {
	return parent + " " + child
}

// FieldContainer selects the direct parent of the input with the given test
// id. The application renders the field's validation message there.
func FieldContainer(inputID string) string {
	return fmt.Sprintf(":has(> %s)", TestID(inputID))
}

// Static test ids.
const (
	IDHomePage          = "home-page"
	IDSortPrice         = "sort-price"
	IDProductDetailPage = "product-detail-page"
	IDProductName       = "product-name"
	IDProductPrice      = "product-price"
	IDProductImage      = "product-image"
	IDProductDesc       = "product-description"
	IDProductInfo       = "product-info"
	IDQuantitySelector  = "quantity-selector"
	IDAddToCart         = "add-to-cart"
	IDBackToProducts    = "back-to-products"
	IDNavToCart         = "nav-to-cart"
	IDCartPage          = "cart-page"
	IDEmptyCart         = "empty-cart"
	IDContinueShopping  = "continue-shopping"
	IDCartSummary       = "cart-summary"
	IDSubtotal          = "subtotal"
	IDProceedToCheckout = "proceed-to-checkout"
	IDLoading           = "loading"
	IDError             = "error"
	IDAddressPage       = "address-page"
	IDAddressForm       = "address-form"
	IDBackToCart        = "back-to-cart"
	IDContinueToPayment = "continue-to-payment"
	IDPaymentPage       = "payment-page"
	IDPaymentForm       = "payment-form"
	IDCardholderInput   = "cardholder-input"
	IDCardNumberInput   = "card-number-input"
	IDExpiryInput       = "expiry-input"
	IDCVVInput          = "cvv-input"
	IDBackToAddress     = "back-to-address"
	IDCompletePayment   = "complete-payment"
	IDSuccessPage       = "success-page"
	IDOrderInfo         = "order-info"
	IDOrderNumber       = "order-number"
	IDViewOrders        = "view-orders"
	IDProcessing        = "processing"
)

// Dynamic test id prefixes; the product id is appended.
const (
	PrefixViewProduct = "view-product-"
	PrefixCartItem    = "cart-item-"
	PrefixItemPrice   = "item-price-"
	PrefixQuantity    = "quantity-"
	PrefixRemove      = "remove-"
)

// Class hooks used where the application exposes no test id.
const (
	ClassProductsGrid = ".products-grid"
	ClassProductCard  = ".product-card"
	ClassProductImage = ".product-image"
	ClassProductName  = ".product-name"
	ClassProductPrice = ".product-price"
	ClassCartItems    = ".cart-items"
	ClassErrorMessage = ".error-message"
	ClassLoading      = ".loading"
	ClassError        = ".error"
)

// AddressFields lists the address form inputs in form order. Each renders as
// data-testid "<field>-input".
var AddressFields = []string{"firstname", "email", "phone", "street", "city", "state", "zipcode", "country"}

// PaymentFields maps payment field names to their input test ids.
var PaymentFields = map[string]string{
	"cardholder": IDCardholderInput,
	"cardnumber": IDCardNumberInput,
	"expiry":     IDExpiryInput,
	"cvv":        IDCVVInput,
}

// InputID returns the test id of a named form field input.
func InputID(field string) string {
	return field + "-input"
}
