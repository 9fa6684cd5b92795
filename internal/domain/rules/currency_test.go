package rules

import "testing"

func TestConverterDefaults(t *testing.T) {
	c := NewConverter(0, 0)

	if got := c.RUB(10); got != 1000 {
		t.Fatalf("RUB(10) = %v, want 1000", got)
	}
	if got := c.BYN(10); got != 33 {
		t.Fatalf("BYN(10) = %v, want 33", got)
	}
}

func TestFormatPrice(t *testing.T) {
	c := NewConverter(100, 3.3)

	got := c.FormatPrice(50)
	want := "50 USD (5000 RUB / 165.00 BYN)"
	if got != want {
		t.Fatalf("FormatPrice(50) = %q, want %q", got, want)
	}
}

func TestFormatPriceTruncatesToWholeUSD(t *testing.T) {
	c := NewConverter(100, 3.3)

	got := c.FormatPrice(19.5)
	want := "19 USD (1950 RUB / 64.35 BYN)"
	if got != want {
		t.Fatalf("FormatPrice(19.5) = %q, want %q", got, want)
	}
}
