package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// AddressData is the shipping form payload. The application stores it under
// the "addressData" storage key on submit.
type AddressData struct {
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

// PaymentData is the card form payload
type PaymentData struct {
	CardHolder string `json:"cardHolder"`
	CardNumber string `json:"cardNumber"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

// DefaultAddress returns the address used when a scenario does not supply one
func DefaultAddress() AddressData {
	return AddressData{
		FirstName: "John",
		Email:     "john@example.com",
		Phone:     "(555) 123-4567",
		Street:    "123 Main Street",
		City:      "New York",
		State:     "NY",
		ZipCode:   "10001",
		Country:   "United States",
	}
}

// DefaultPayment returns the Visa test card used when a scenario does not supply one
func DefaultPayment() PaymentData {
	return PaymentData{
		CardHolder: "John Doe",
		CardNumber: "4111111111111111",
		Expiry:     "12/25",
		CVV:        "123",
	}
}

// sampleCards are the named cards scenarios can pay with
var sampleCards = map[string]PaymentData{
	"visa":       DefaultPayment(),
	"mastercard": {CardHolder: "Jane Smith", CardNumber: "5555555555554444", Expiry: "06/26", CVV: "456"},
	"amex":       {CardHolder: "Bob Johnson", CardNumber: "378282246310005", Expiry: "09/27", CVV: "1234"},
	"invalid":    {CardHolder: "Test User", CardNumber: "1234567890123456", Expiry: "12/25", CVV: "123"},
	"expired":    {CardHolder: "Test User", CardNumber: "4111111111111111", Expiry: "01/20", CVV: "123"},
}

// SampleCard returns a named sample card. Names are case-insensitive.
func SampleCard(name string) (PaymentData, error) {
	card, ok := sampleCards[strings.ToLower(name)]
	if !ok {
		return PaymentData{}, fmt.Errorf("unknown sample card %q (have %s)", name, strings.Join(SampleCardNames(), ", "))
	}
	return card, nil
}

// SampleCardNames lists the available sample cards, sorted
func SampleCardNames() []string {
	names := make([]string, 0, len(sampleCards))
	for name := range sampleCards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithDefaults fills every empty field from DefaultAddress
func (a AddressData) WithDefaults() AddressData {
	d := DefaultAddress()
	return AddressData{
		FirstName: orDefault(a.FirstName, d.FirstName),
		Email:     orDefault(a.Email, d.Email),
		Phone:     orDefault(a.Phone, d.Phone),
		Street:    orDefault(a.Street, d.Street),
		City:      orDefault(a.City, d.City),
		State:     orDefault(a.State, d.State),
		ZipCode:   orDefault(a.ZipCode, d.ZipCode),
		Country:   orDefault(a.Country, d.Country),
	}
}

// Fields returns the payload keyed by form field name, in form order
func (a AddressData) Fields() [][2]string {
	return [][2]string{
		{"firstname", a.FirstName},
		{"email", a.Email},
		{"phone", a.Phone},
		{"street", a.Street},
		{"city", a.City},
		{"state", a.State},
		{"zipcode", a.ZipCode},
		{"country", a.Country},
	}
}

// WithDefaults fills every empty field from DefaultPayment
func (p PaymentData) WithDefaults() PaymentData {
	d := DefaultPayment()
	return PaymentData{
		CardHolder: orDefault(p.CardHolder, d.CardHolder),
		CardNumber: orDefault(p.CardNumber, d.CardNumber),
		Expiry:     orDefault(p.Expiry, d.Expiry),
		CVV:        orDefault(p.CVV, d.CVV),
	}
}

// Fields returns the payload keyed by form field name, in form order
func (p PaymentData) Fields() [][2]string {
	return [][2]string{
		{"cardholder", p.CardHolder},
		{"cardnumber", p.CardNumber},
		{"expiry", p.Expiry},
		{"cvv", p.CVV},
	}
}

// Set assigns a payment field by its camelCase key as used in feature tables.
// Unknown keys are ignored and reported as false.
func (p *PaymentData) Set(key, value string) bool {
	switch key {
	case "cardHolder":
		p.CardHolder = value
	case "cardNumber":
		p.CardNumber = value
	case "expiry":
		p.Expiry = value
	case "cvv":
		p.CVV = value
	default:
		return false
	}
	return true
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
