// Package browsertest provides an in-memory storefront that implements
// browser.Page, for exercising page objects, commands and steps without a
// browser or a running application.
//
// The double reproduces the application's known defects: prices sort as
// strings and the address form is never repopulated from saved data.
package browsertest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/catalog"
	sf "github.com/adyen/storefront-e2e/internal/storefront"
)

// BaseURL is the origin reported by URL.
const BaseURL = "http://storefront.test"

// Validation copy rendered in .error-message elements
const (
	MsgRequired     = "This field is required"
	MsgInvalidEmail = "Please enter a valid email address"
)

// Sort button labels
const (
	SortLabelAscending  = "Sort by Price ↑"
	SortLabelDescending = "Sort by Price ↓"
)

var errClosed = errors.New("page is closed")

type sortOrder int

const (
	sortNone sortOrder = iota
	sortAsc
	sortDesc
)

type node struct {
	tag      string
	text     string
	hidden   bool
	disabled bool
	attrs    map[string]string
	options  []string
	// bind names the entry in Storefront.inputs holding the control's value.
	bind     string
	value    string
	onClick  func()
	onSelect func(value string)
}

func (n *node) currentValue(inputs map[string]string) string {
	if n.bind != "" {
		return inputs[n.bind]
	}
	return n.value
}

// Storefront is a single tab on the simulated application.
type Storefront struct {
	// NumericSort fixes the price sort defect when set.
	NumericSort bool
	// LoadingReads is how many queries after each navigation observe only
	// the loading indicator.
	LoadingReads int

	mu          sync.Mutex
	path        string
	storage     map[string]string
	inputs      map[string]string
	errs        map[string]string
	sort        sortOrder
	pending     int
	orderSeq    int
	orderNumber string
	closed      bool
	visits      []string
	dom         map[string][]*node
}

var _ browser.Page = (*Storefront)(nil)

// New returns a tab that has not navigated anywhere yet.
func New() *Storefront {
	s := &Storefront{
		storage: map[string]string{},
		inputs:  map[string]string{},
		errs:    map[string]string{},
	}
	s.render()
	return s
}

// Path returns the current route
func (s *Storefront) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Visits lists every route requested through Goto, in order.
func (s *Storefront) Visits() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visits...)
}

// Closed reports whether Close has been called
func (s *Storefront) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Cart decodes the stored cart
func (s *Storefront) Cart() ([]catalog.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.DecodeCart(s.storage[sf.StorageKeyCart])
}

func (s *Storefront) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed {
		return errClosed
	}
	return nil
}

// query serves a read. Reads consume the simulated loading phase.
func (s *Storefront) query(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if s.pending > 0 {
		s.pending--
		if s.pending == 0 {
			s.render()
		}
	}
	return nil
}

// act serves an action. Like a real driver, actions wait out loading.
func (s *Storefront) act(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if s.pending > 0 {
		s.pending = 0
		s.render()
	}
	return nil
}

func (s *Storefront) first(selector string) (*node, error) {
	nodes := s.dom[selector]
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, selector)
	}
	return nodes[0], nil
}

func (s *Storefront) navigate(path string) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		path = sf.RouteHome
	}
	if path == sf.RouteCheckoutAddress && len(s.cartItems()) == 0 {
		path = sf.RouteCart
	}
	if path != s.path {
		s.inputs = map[string]string{}
		s.errs = map[string]string{}
		if path == sf.RouteHome {
			s.sort = sortNone
		}
	}
	s.path = path
	s.pending = s.LoadingReads
	s.render()
}

func (s *Storefront) Goto(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	path = strings.TrimPrefix(path, BaseURL)
	s.visits = append(s.visits, path)
	s.path = ""
	s.navigate(path)
	return nil
}

func (s *Storefront) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	path := s.path
	s.path = ""
	s.navigate(path)
	return nil
}

func (s *Storefront) URL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return "", err
	}
	return BaseURL + s.path, nil
}

func (s *Storefront) Click(ctx context.Context, selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.act(ctx); err != nil {
		return err
	}
	n, err := s.first(selector)
	if err != nil {
		return err
	}
	if n.hidden || n.disabled {
		return fmt.Errorf("element %s is not clickable", selector)
	}
	if n.onClick != nil {
		n.onClick()
		s.render()
	}
	return nil
}

func (s *Storefront) Fill(ctx context.Context, selector, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.act(ctx); err != nil {
		return err
	}
	n, err := s.first(selector)
	if err != nil {
		return err
	}
	if n.bind == "" || n.tag != "input" {
		return fmt.Errorf("element %s is not an input", selector)
	}
	s.inputs[n.bind] = value
	s.render()
	return nil
}

func (s *Storefront) Clear(ctx context.Context, selector string) error {
	return s.Fill(ctx, selector, "")
}

func (s *Storefront) SelectOption(ctx context.Context, selector, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.act(ctx); err != nil {
		return err
	}
	n, err := s.first(selector)
	if err != nil {
		return err
	}
	if n.tag != "select" {
		return fmt.Errorf("element %s is not a select", selector)
	}
	found := false
	for _, o := range n.options {
		if o == value {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("option %q not found in %s", value, selector)
	}
	switch {
	case n.onSelect != nil:
		n.onSelect(value)
	case n.bind != "":
		s.inputs[n.bind] = value
	}
	s.render()
	return nil
}

func (s *Storefront) Count(ctx context.Context, selector string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.query(ctx); err != nil {
		return 0, err
	}
	return len(s.dom[selector]), nil
}

func (s *Storefront) IsVisible(ctx context.Context, selector string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.query(ctx); err != nil {
		return false, err
	}
	nodes := s.dom[selector]
	return len(nodes) > 0 && !nodes[0].hidden, nil
}

func (s *Storefront) IsEnabled(ctx context.Context, selector string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.query(ctx); err != nil {
		return false, err
	}
	n, err := s.first(selector)
	if err != nil {
		return false, err
	}
	return !n.disabled, nil
}

func (s *Storefront) TextContent(ctx context.Context, selector string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.query(ctx); err != nil {
		return "", err
	}
	n, err := s.first(selector)
	if err != nil {
		return "", err
	}
	return n.text, nil
}

func (s *Storefront) AllTextContents(ctx context.Context, selector string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.query(ctx); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(s.dom[selector]))
	for _, n := range s.dom[selector] {
		out = append(out, n.text)
	}
	return out, nil
}

func (s *Storefront) InputValue(ctx context.Context, selector string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.query(ctx); err != nil {
		return "", err
	}
	n, err := s.first(selector)
	if err != nil {
		return "", err
	}
	return n.currentValue(s.inputs), nil
}

func (s *Storefront) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.query(ctx); err != nil {
		return "", false, err
	}
	n, err := s.first(selector)
	if err != nil {
		return "", false, err
	}
	v, ok := n.attrs[name]
	return v, ok, nil
}

func (s *Storefront) Property(ctx context.Context, selector, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.query(ctx); err != nil {
		return "", err
	}
	n, err := s.first(selector)
	if err != nil {
		return "", err
	}
	switch name {
	case "tagName":
		return strings.ToUpper(n.tag), nil
	case "value":
		return n.currentValue(s.inputs), nil
	case "disabled":
		return strconv.FormatBool(n.disabled), nil
	}
	return "", nil
}

func (s *Storefront) OptionValues(ctx context.Context, selector string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.query(ctx); err != nil {
		return nil, err
	}
	n, err := s.first(selector)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), n.options...), nil
}

func (s *Storefront) HasText(ctx context.Context, text string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.query(ctx); err != nil {
		return false, err
	}
	for _, nodes := range s.dom {
		for _, n := range nodes {
			if !n.hidden && strings.Contains(n.text, text) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *Storefront) GetItem(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return "", false, err
	}
	v, ok := s.storage[key]
	return v, ok, nil
}

// SetItem writes storage. The cart view is bound to storage and re-renders.
func (s *Storefront) SetItem(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	s.storage[key] = value
	s.render()
	return nil
}

func (s *Storefront) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	delete(s.storage, key)
	s.render()
	return nil
}

func (s *Storefront) ClearStorage(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	s.storage = map[string]string{}
	s.render()
	return nil
}

func (s *Storefront) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Storefront) cartItems() []catalog.CartItem {
	items, err := catalog.DecodeCart(s.storage[sf.StorageKeyCart])
	if err != nil {
		return nil
	}
	return items
}

func (s *Storefront) saveCart(items []catalog.CartItem) {
	raw, err := catalog.EncodeCart(items)
	if err != nil {
		return
	}
	s.storage[sf.StorageKeyCart] = raw
}

func (s *Storefront) addToCart(id, quantity int) {
	p, err := catalog.Lookup(id)
	if err != nil {
		return
	}
	items := s.cartItems()
	for i := range items {
		if items[i].ID == id {
			items[i].Quantity += quantity
			s.saveCart(items)
			return
		}
	}
	s.saveCart(append(items, catalog.CartItem{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Quantity: quantity,
		Image:    p.Image,
	}))
}

func (s *Storefront) setQuantity(id, quantity int) {
	items := s.cartItems()
	out := items[:0]
	for _, item := range items {
		if item.ID == id {
			if quantity == 0 {
				continue
			}
			item.Quantity = quantity
		}
		out = append(out, item)
	}
	s.saveCart(out)
}

func (s *Storefront) submitAddress() {
	s.errs = map[string]string{}
	for _, field := range sf.AddressFields {
		if strings.TrimSpace(s.inputs[sf.InputID(field)]) == "" {
			s.errs[field] = MsgRequired
		}
	}
	email := s.inputs[sf.InputID("email")]
	if _, missing := s.errs["email"]; !missing && !validEmail(email) {
		s.errs["email"] = MsgInvalidEmail
	}
	if len(s.errs) > 0 {
		return
	}

	data, err := json.Marshal(catalog.AddressData{
		FirstName: s.inputs[sf.InputID("firstname")],
		Email:     email,
		Phone:     s.inputs[sf.InputID("phone")],
		Street:    s.inputs[sf.InputID("street")],
		City:      s.inputs[sf.InputID("city")],
		State:     s.inputs[sf.InputID("state")],
		ZipCode:   s.inputs[sf.InputID("zipcode")],
		Country:   s.inputs[sf.InputID("country")],
	})
	if err != nil {
		return
	}
	s.storage[sf.StorageKeyAddress] = string(data)
	s.navigate(sf.RouteCheckoutPayment)
}

func (s *Storefront) submitPayment() {
	s.errs = map[string]string{}
	for field, id := range sf.PaymentFields {
		if strings.TrimSpace(s.inputs[id]) == "" {
			s.errs[field] = MsgRequired
		}
	}
	if len(s.errs) > 0 {
		return
	}
	s.orderSeq++
	s.orderNumber = fmt.Sprintf("ORD-%d", 100000+s.orderSeq)
	delete(s.storage, sf.StorageKeyCart)
	s.navigate(sf.RouteCheckoutSuccess)
}

func validEmail(v string) bool {
	at := strings.Index(v, "@")
	return at > 0 && strings.Contains(v[at+1:], ".")
}

func (s *Storefront) homeOrder() []catalog.Product {
	products := catalog.Products()
	less := func(a, b catalog.Product) bool {
		if s.NumericSort {
			return a.Price < b.Price
		}
		return catalog.FormatPrice(a.Price) < catalog.FormatPrice(b.Price)
	}
	switch s.sort {
	case sortAsc:
		sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
	case sortDesc:
		sort.SliceStable(products, func(i, j int) bool { return less(products[j], products[i]) })
	}
	return products
}

// render rebuilds the selector index from the current route and state.
func (s *Storefront) render() {
	s.dom = map[string][]*node{}
	if s.path == "" {
		return
	}
	if s.pending > 0 {
		s.add(&node{tag: "div", text: "Loading..."}, sf.TestID(sf.IDLoading), sf.ClassLoading)
		return
	}

	switch {
	case s.path == sf.RouteHome:
		s.renderHome()
	case sf.IsProductRoute(s.path):
		s.renderProduct()
	case s.path == sf.RouteCart:
		s.renderCart()
	case s.path == sf.RouteCheckoutAddress:
		s.renderAddress()
	case s.path == sf.RouteCheckoutPayment:
		s.renderPayment()
	case s.path == sf.RouteCheckoutSuccess:
		s.renderSuccess()
	}
}

func (s *Storefront) add(n *node, selectors ...string) {
	for _, sel := range selectors {
		s.dom[sel] = append(s.dom[sel], n)
	}
}

func (s *Storefront) button(id, text string, onClick func(), extra ...string) *node {
	n := &node{tag: "button", text: text, onClick: onClick, attrs: map[string]string{"aria-label": text}}
	s.add(n, append([]string{sf.TestID(id)}, extra...)...)
	return n
}

func (s *Storefront) goTo(path string) func() {
	return func() { s.navigate(path) }
}

func (s *Storefront) page(id string) {
	s.add(&node{tag: "div"}, sf.TestID(id), sf.TestIDContains("page"))
}

func (s *Storefront) renderHome() {
	s.page(sf.IDHomePage)
	s.add(&node{tag: "div"}, sf.ClassProductsGrid)

	label := SortLabelAscending
	if s.sort == sortAsc {
		label = SortLabelDescending
	}
	s.button(sf.IDSortPrice, label, func() {
		if s.sort == sortAsc {
			s.sort = sortDesc
		} else {
			s.sort = sortAsc
		}
	})
	s.button(sf.IDNavToCart, "Cart", s.goTo(sf.RouteCart))

	for _, p := range s.homeOrder() {
		id := strconv.Itoa(p.ID)
		s.add(&node{tag: "div", text: p.Name + " " + p.FormattedPrice()}, sf.ClassProductCard)
		s.add(&node{tag: "img", attrs: map[string]string{"src": p.Image, "alt": p.Name}}, sf.ClassProductImage)
		s.add(&node{tag: "h3", text: p.Name}, sf.ClassProductName)
		s.add(&node{tag: "p", text: p.FormattedPrice()}, sf.ClassProductPrice)
		s.button(sf.PrefixViewProduct+id, "View Details", s.goTo(sf.ProductRoute(id)), sf.TestIDPrefix(sf.PrefixViewProduct))
	}
}

func (s *Storefront) renderProduct() {
	id, err := catalog.ParseID(sf.ProductIDFromRoute(s.path))
	var p catalog.Product
	if err == nil {
		p, err = catalog.Lookup(id)
	}
	if err != nil {
		s.add(&node{tag: "div", text: "Product not found"}, sf.TestID(sf.IDError), sf.ClassError, sf.TestIDContains("error"))
		s.button(sf.IDBackToProducts, "Back to Products", s.goTo(sf.RouteHome))
		return
	}

	s.page(sf.IDProductDetailPage)
	s.add(&node{tag: "div", text: p.Name + " " + p.FormattedPrice()}, sf.TestID(sf.IDProductInfo))
	s.add(&node{tag: "h1", text: p.Name}, sf.TestID(sf.IDProductName))
	s.add(&node{tag: "p", text: p.FormattedPrice()}, sf.TestID(sf.IDProductPrice))
	s.add(&node{tag: "img", attrs: map[string]string{"src": p.Image, "alt": p.Name}}, sf.TestID(sf.IDProductImage))
	s.add(&node{tag: "p", text: "Experience quality and style with the " + p.Name + "."}, sf.TestID(sf.IDProductDesc))

	if _, ok := s.inputs[sf.IDQuantitySelector]; !ok {
		s.inputs[sf.IDQuantitySelector] = "1"
	}
	s.add(&node{
		tag:     "select",
		bind:    sf.IDQuantitySelector,
		options: []string{"1", "2", "3", "4", "5"},
	}, sf.TestID(sf.IDQuantitySelector))

	s.button(sf.IDAddToCart, "Add to Cart", func() {
		qty, err := strconv.Atoi(s.inputs[sf.IDQuantitySelector])
		if err != nil {
			return
		}
		s.addToCart(p.ID, qty)
		s.navigate(sf.RouteCart)
	})
	s.button(sf.IDBackToProducts, "Back to Products", s.goTo(sf.RouteHome))
	s.button(sf.IDNavToCart, "Cart", s.goTo(sf.RouteCart))
}

func (s *Storefront) renderCart() {
	s.page(sf.IDCartPage)
	s.button(sf.IDContinueShopping, "Continue Shopping", s.goTo(sf.RouteHome))

	items := s.cartItems()
	if len(items) == 0 {
		s.add(&node{tag: "div", text: "Your cart is empty"}, sf.TestID(sf.IDEmptyCart))
		return
	}

	s.add(&node{tag: "div"}, sf.ClassCartItems)
	for _, item := range items {
		item := item // per-iteration copy for the closures below (go < 1.22 loop semantics)
		id := strconv.Itoa(item.ID)
		s.add(&node{tag: "div", text: item.Name},
			sf.TestID(sf.PrefixCartItem+id),
			sf.TestIDPrefix(sf.PrefixCartItem),
			sf.Descendant(sf.ClassCartItems, sf.TestIDPrefix(sf.PrefixCartItem)),
		)
		s.add(&node{tag: "span", text: catalog.FormatPrice(item.Price)}, sf.TestID(sf.PrefixItemPrice+id))
		s.add(&node{
			tag:     "select",
			value:   strconv.Itoa(item.Quantity),
			options: []string{"0", "1", "2", "3", "4", "5"},
			onSelect: func(v string) {
				qty, err := strconv.Atoi(v)
				if err == nil {
					s.setQuantity(item.ID, qty)
				}
			},
		}, sf.TestID(sf.PrefixQuantity+id))
		s.button(sf.PrefixRemove+id, "Remove", func() { s.setQuantity(item.ID, 0) },
			sf.TestIDPrefix(sf.PrefixRemove),
			sf.Descendant(sf.ClassCartItems, sf.TestIDPrefix(sf.PrefixRemove)),
		)
	}

	s.add(&node{tag: "div"}, sf.TestID(sf.IDCartSummary))
	s.add(&node{tag: "span", text: catalog.FormatCents(catalog.SubtotalCents(items))}, sf.TestID(sf.IDSubtotal))
	s.button(sf.IDProceedToCheckout, "Proceed to Checkout", s.goTo(sf.RouteCheckoutAddress))
	s.button(sf.IDContinueShopping, "Continue Shopping", s.goTo(sf.RouteHome))
}

func (s *Storefront) field(name, id string, attrs map[string]string) {
	attrs["required"] = ""
	s.add(&node{tag: "input", bind: id, attrs: attrs}, sf.TestID(id))

	msg := s.errs[name]
	s.add(&node{tag: "div", text: msg}, sf.FieldContainer(id))
	if msg != "" {
		s.add(&node{tag: "span", text: msg}, sf.ClassErrorMessage)
	}
}

func (s *Storefront) renderAddress() {
	s.page(sf.IDAddressPage)
	s.add(&node{tag: "form"}, sf.TestID(sf.IDAddressForm))
	for _, name := range sf.AddressFields {
		typ := "text"
		switch name {
		case "email":
			typ = "email"
		case "phone":
			typ = "tel"
		}
		s.field(name, sf.InputID(name), map[string]string{"type": typ})
	}
	s.button(sf.IDBackToCart, "Back to Cart", s.goTo(sf.RouteCart))
	s.button(sf.IDContinueToPayment, "Continue to Payment", s.submitAddress)
}

func (s *Storefront) renderPayment() {
	s.page(sf.IDPaymentPage)
	s.add(&node{tag: "form"}, sf.TestID(sf.IDPaymentForm))
	s.field("cardholder", sf.IDCardholderInput, map[string]string{"type": "text"})
	s.field("cardnumber", sf.IDCardNumberInput, map[string]string{"type": "text", "maxlength": "19", "placeholder": "1234 5678 9012 3456"})
	s.field("expiry", sf.IDExpiryInput, map[string]string{"type": "text", "maxlength": "5", "placeholder": "MM/YY"})
	s.field("cvv", sf.IDCVVInput, map[string]string{"type": "text", "maxlength": "4", "placeholder": "123"})
	s.button(sf.IDBackToAddress, "Back to Address", s.goTo(sf.RouteCheckoutAddress))
	s.button(sf.IDCompletePayment, "Complete Payment", s.submitPayment)
}

func (s *Storefront) renderSuccess() {
	s.page(sf.IDSuccessPage)
	s.add(&node{tag: "div", text: sf.SuccessMessage + " Your order has been confirmed and will be shipped soon."}, sf.TestID(sf.IDOrderInfo))
	number := s.orderNumber
	if number == "" {
		number = "ORD-100000"
	}
	s.add(&node{tag: "span", text: number, attrs: map[string]string{"aria-label": "Order number"}}, sf.TestID(sf.IDOrderNumber))
	s.button(sf.IDContinueShopping, "Continue Shopping", s.goTo(sf.RouteHome))
	s.button(sf.IDViewOrders, "View Orders", s.goTo("/orders"))
}
