package catalog

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name      string
		id        int
		wantName  string
		wantPrice string
		wantErr   error
	}{
		{name: "sneakers", id: 1, wantName: "Classic White Sneakers", wantPrice: "$79.99"},
		{name: "watch", id: 2, wantName: "Premium Leather Watch", wantPrice: "$149.99"},
		{name: "headphones", id: 3, wantName: "Wireless Headphones", wantPrice: "$199.99"},
		{name: "unknown id", id: 42, wantErr: ErrProductNotFound},
		{name: "zero id", id: 0, wantErr: ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Lookup(tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Lookup(%d) error = %v, want %v", tt.id, err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if p.Name != tt.wantName {
				t.Errorf("expected name %q, got %q", tt.wantName, p.Name)
			}
			if p.FormattedPrice() != tt.wantPrice {
				t.Errorf("expected price %q, got %q", tt.wantPrice, p.FormattedPrice())
			}
		})
	}
}

func TestProducts_ReturnsCopy(t *testing.T) {
	got := Products()
	got[0].Name = "mutated"

	p, err := Lookup(1)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if p.Name != "Classic White Sneakers" {
		t.Errorf("fixture was mutated through Products(): %q", p.Name)
	}
}

func TestBuildCart(t *testing.T) {
	// GIVEN
	reqs := []CartRequest{{ID: 1, Quantity: 2}, {ID: 2, Quantity: 1}}

	// WHEN
	items, err := BuildCart(reqs)

	// THEN
	if err != nil {
		t.Fatalf("BuildCart failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Quantity != 2 || items[0].Price != 79.99 {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[1].Name != "Premium Leather Watch" {
		t.Errorf("unexpected second item: %+v", items[1])
	}
}

func TestBuildCart_UnknownProduct(t *testing.T) {
	items, err := BuildCart([]CartRequest{{ID: 1, Quantity: 1}, {ID: 9, Quantity: 1}})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if items != nil {
		t.Errorf("expected no partial cart, got %+v", items)
	}
}

func TestSubtotalCents(t *testing.T) {
	tests := []struct {
		name string
		reqs []CartRequest
		want string
	}{
		{name: "empty", reqs: nil, want: "$0.00"},
		{name: "single", reqs: []CartRequest{{ID: 1, Quantity: 2}}, want: "$159.98"},
		{name: "end to end seed", reqs: []CartRequest{{ID: 1, Quantity: 2}, {ID: 2, Quantity: 1}}, want: "$309.97"},
		{name: "multiple", reqs: []CartRequest{{ID: 1, Quantity: 2}, {ID: 2, Quantity: 1}, {ID: 3, Quantity: 3}}, want: "$909.94"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := BuildCart(tt.reqs)
			if err != nil {
				t.Fatalf("BuildCart failed: %v", err)
			}
			if got := FormatCents(SubtotalCents(items)); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestEncodeDecodeCart(t *testing.T) {
	items, err := BuildCart([]CartRequest{{ID: 3, Quantity: 1}})
	if err != nil {
		t.Fatalf("BuildCart failed: %v", err)
	}

	raw, err := EncodeCart(items)
	if err != nil {
		t.Fatalf("EncodeCart failed: %v", err)
	}
	want := `[{"id":3,"name":"Wireless Headphones","price":199.99,"quantity":1,"image":"https://images.unsplash.com/photo-1505740420928-5e560c06d30e"}]`
	if raw != want {
		t.Errorf("unexpected storage value:\n got %s\nwant %s", raw, want)
	}

	empty, err := EncodeCart(nil)
	if err != nil || empty != "[]" {
		t.Errorf("expected [] for nil cart, got %q (%v)", empty, err)
	}

	decoded, err := DecodeCart("")
	if err != nil || len(decoded) != 0 {
		t.Errorf("expected empty cart for missing value, got %v (%v)", decoded, err)
	}

	if _, err := DecodeCart("{not json"); err == nil {
		t.Error("expected error for malformed cart")
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "$79.99", want: 79.99},
		{in: " $1,149.99 ", want: 1149.99},
		{in: "199.99", want: 199.99},
		{in: "free", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePrice(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFormatCents_Negative(t *testing.T) {
	if got := FormatCents(-505); got != "-$5.05" {
		t.Errorf("expected -$5.05, got %s", got)
	}
}

func TestAddressData_WithDefaults(t *testing.T) {
	got := AddressData{Email: "jane@example.com", City: "Boston"}.WithDefaults()

	if got.Email != "jane@example.com" || got.City != "Boston" {
		t.Errorf("explicit fields were overwritten: %+v", got)
	}
	if got.FirstName != "John" || got.Phone != "(555) 123-4567" || got.Country != "United States" {
		t.Errorf("defaults not applied: %+v", got)
	}
	if (AddressData{}).WithDefaults() != DefaultAddress() {
		t.Error("empty address should resolve to the default address")
	}
}

func TestPaymentData_Set(t *testing.T) {
	var p PaymentData
	for key, value := range map[string]string{
		"cardHolder": "Jane Smith",
		"cardNumber": "5555555555554444",
		"expiry":     "06/26",
		"cvv":        "456",
	} {
		if !p.Set(key, value) {
			t.Errorf("expected key %s to be accepted", key)
		}
	}
	if p.Set("brand", "mastercard") {
		t.Error("expected unknown key to be rejected")
	}

	want := PaymentData{CardHolder: "Jane Smith", CardNumber: "5555555555554444", Expiry: "06/26", CVV: "456"}
	if p != want {
		t.Errorf("expected %+v, got %+v", want, p)
	}
	if (PaymentData{}).WithDefaults() != DefaultPayment() {
		t.Error("empty payment should resolve to the default payment")
	}
}

func TestSampleCard(t *testing.T) {
	tests := []struct {
		name    string
		card    string
		want    string
		wantErr bool
	}{
		{name: "visa is the default card", card: "visa", want: DefaultPayment().CardNumber},
		{name: "case insensitive", card: "MasterCard", want: "5555555555554444"},
		{name: "amex has a four digit cvv", card: "amex", want: "378282246310005"},
		{name: "unknown card", card: "discover", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// WHEN
			got, err := SampleCard(tt.card)

			// THEN
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if !tt.wantErr && got.CardNumber != tt.want {
				t.Errorf("expected card number %s, got %s", tt.want, got.CardNumber)
			}
		})
	}

	if names := SampleCardNames(); len(names) != 5 || names[0] != "amex" {
		t.Errorf("unexpected card names %v", names)
	}
}
