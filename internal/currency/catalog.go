package currency

// BaseCurrency is the currency every rate is expressed against.
const BaseCurrency = "USD"

// Info describes one supported currency.
type Info struct {
	Code     string  `json:"code"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Region   string  `json:"region"`
	Rate     float64 `json:"rate"`
	Decimals int     `json:"decimals"`
}

// Regions in display order.
const (
	RegionAmericas   = "Americas"
	RegionEurope     = "Europe"
	RegionAsiaPac    = "Asia Pacific"
	RegionMiddleEast = "Middle East & Africa"
)

// catalog is units of each currency per 1 USD. Static table, not live rates.
var catalog = []Info{
	{Code: "USD", Symbol: "$", Name: "US Dollar", Region: RegionAmericas, Rate: 1, Decimals: 2},
	{Code: "CAD", Symbol: "C$", Name: "Canadian Dollar", Region: RegionAmericas, Rate: 1.38, Decimals: 2},
	{Code: "MXN", Symbol: "Mex$", Name: "Mexican Peso", Region: RegionAmericas, Rate: 17.85, Decimals: 2},
	{Code: "BRL", Symbol: "R$", Name: "Brazilian Real", Region: RegionAmericas, Rate: 5.15, Decimals: 2},
	{Code: "ARS", Symbol: "$", Name: "Argentine Peso", Region: RegionAmericas, Rate: 365.50, Decimals: 2},

	{Code: "EUR", Symbol: "€", Name: "Euro", Region: RegionEurope, Rate: 0.92, Decimals: 2},
	{Code: "GBP", Symbol: "£", Name: "British Pound", Region: RegionEurope, Rate: 0.79, Decimals: 2},
	{Code: "CHF", Symbol: "Fr", Name: "Swiss Franc", Region: RegionEurope, Rate: 0.88, Decimals: 2},
	{Code: "SEK", Symbol: "kr", Name: "Swedish Krona", Region: RegionEurope, Rate: 10.85, Decimals: 2},
	{Code: "NOK", Symbol: "kr", Name: "Norwegian Krone", Region: RegionEurope, Rate: 10.92, Decimals: 2},
	{Code: "DKK", Symbol: "kr", Name: "Danish Krone", Region: RegionEurope, Rate: 6.86, Decimals: 2},
	{Code: "PLN", Symbol: "zł", Name: "Polish Zloty", Region: RegionEurope, Rate: 4.05, Decimals: 2},
	{Code: "CZK", Symbol: "Kč", Name: "Czech Koruna", Region: RegionEurope, Rate: 23.15, Decimals: 2},
	{Code: "RUB", Symbol: "₽", Name: "Russian Ruble", Region: RegionEurope, Rate: 92.50, Decimals: 2},
	{Code: "TRY", Symbol: "₺", Name: "Turkish Lira", Region: RegionEurope, Rate: 28.75, Decimals: 2},

	{Code: "INR", Symbol: "₹", Name: "Indian Rupee", Region: RegionAsiaPac, Rate: 83.25, Decimals: 2},
	{Code: "JPY", Symbol: "¥", Name: "Japanese Yen", Region: RegionAsiaPac, Rate: 149.50, Decimals: 0},
	{Code: "CNY", Symbol: "¥", Name: "Chinese Yuan", Region: RegionAsiaPac, Rate: 7.24, Decimals: 2},
	{Code: "AUD", Symbol: "A$", Name: "Australian Dollar", Region: RegionAsiaPac, Rate: 1.54, Decimals: 2},
	{Code: "NZD", Symbol: "NZ$", Name: "New Zealand Dollar", Region: RegionAsiaPac, Rate: 1.68, Decimals: 2},
	{Code: "KRW", Symbol: "₩", Name: "South Korean Won", Region: RegionAsiaPac, Rate: 1345.50, Decimals: 0},
	{Code: "SGD", Symbol: "S$", Name: "Singapore Dollar", Region: RegionAsiaPac, Rate: 1.35, Decimals: 2},
	{Code: "HKD", Symbol: "HK$", Name: "Hong Kong Dollar", Region: RegionAsiaPac, Rate: 7.82, Decimals: 2},
	{Code: "THB", Symbol: "฿", Name: "Thai Baht", Region: RegionAsiaPac, Rate: 36.75, Decimals: 2},
	{Code: "MYR", Symbol: "RM", Name: "Malaysian Ringgit", Region: RegionAsiaPac, Rate: 4.72, Decimals: 2},

	{Code: "AED", Symbol: "د.إ", Name: "UAE Dirham", Region: RegionMiddleEast, Rate: 3.67, Decimals: 2},
	{Code: "SAR", Symbol: "ر.س", Name: "Saudi Riyal", Region: RegionMiddleEast, Rate: 3.75, Decimals: 2},
	{Code: "ZAR", Symbol: "R", Name: "South African Rand", Region: RegionMiddleEast, Rate: 18.95, Decimals: 2},
}

// Catalog returns a copy of the supported currencies in display order.
func Catalog() []Info {
	return append([]Info(nil), catalog...)
}

// Rates returns the default rate table keyed by code.
func Rates() map[string]float64 {
	out := make(map[string]float64, len(catalog))
	for _, c := range catalog {
		out[c.Code] = c.Rate
	}
	return out
}

// Lookup returns the catalogue entry for code.
func Lookup(code string) (Info, bool) {
	for _, c := range catalog {
		if c.Code == code {
			return c, true
		}
	}
	return Info{}, false
}

// Symbol returns the display symbol for code, or the code itself.
func Symbol(code string) string {
	if c, ok := Lookup(code); ok {
		return c.Symbol
	}
	return code
}
