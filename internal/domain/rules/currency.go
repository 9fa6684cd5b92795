package rules

import "fmt"

// Converter renders USD catalog prices in the display currencies.
type Converter struct {
	USDToRUB float64
	USDToBYN float64
}

func NewConverter(usdToRUB, usdToBYN float64) Converter {
	if usdToRUB <= 0 {
		usdToRUB = 100
	}
	if usdToBYN <= 0 {
		usdToBYN = 3.3
	}
	return Converter{USDToRUB: usdToRUB, USDToBYN: usdToBYN}
}

func (c Converter) RUB(usd float64) float64 {
	return usd * c.USDToRUB
}

func (c Converter) BYN(usd float64) float64 {
	return usd * c.USDToBYN
}

func (c Converter) FormatPrice(usd float64) string {
	return fmt.Sprintf("%d USD (%d RUB / %.2f BYN)", int(usd), int(c.RUB(usd)), c.BYN(usd))
}
