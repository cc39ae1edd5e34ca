package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice string
		quantity  int
		discount  string
		want      string
	}{
		{"no discount", "10.00", 2, "0", "20.00"},
		{"ten percent off three units", "19.99", 3, "0.10", "53.97"},
		{"single unit full discount boundary", "19.99", 1, "0.999", "0.02"},
		{"rounding half up", "0.125", 1, "0", "0.13"},
		{"zero price", "0.00", 5, "0.5", "0.00"},
		{"large quantity", "1.01", 100, "0", "101.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineTotal(dec(tt.unitPrice), tt.quantity, dec(tt.discount))
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestOrderTotal(t *testing.T) {
	total := OrderTotal([]decimal.Decimal{dec("53.97"), dec("20.00"), dec("0.03")})
	assert.True(t, dec("74.00").Equal(total))

	assert.True(t, decimal.Zero.Equal(OrderTotal(nil)))
}

func TestOrderTotalDiscounted(t *testing.T) {
	tests := []struct {
		name     string
		total    string
		discount string
		want     string
	}{
		{"no global discount", "100.00", "0", "100.00"},
		{"five percent off", "100.00", "0.05", "95.00"},
		{"rounding half up", "33.333", "0.10", "30.00"},
		{"odd cents", "19.99", "0.15", "16.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OrderTotalDiscounted(dec(tt.total), dec(tt.discount))
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestValidDiscount(t *testing.T) {
	assert.True(t, ValidDiscount(dec("0")))
	assert.True(t, ValidDiscount(dec("0.5")))
	assert.True(t, ValidDiscount(dec("0.9999")))
	assert.False(t, ValidDiscount(dec("1")))
	assert.False(t, ValidDiscount(dec("1.5")))
	assert.False(t, ValidDiscount(dec("-0.01")))
}
