// Package storefront maps country and region codes to retailer storefront
// base URLs.
package storefront

// Default is the code whose storefront is used when a code is not recognized.
const Default = "CN"

type entry struct {
	code string
	url  string
}

// table is ordered; Codes returns it in this order.
var table = []entry{
	{code: "CN", url: "https://www.apple.com.cn"},
	{code: "CN-HK", url: "https://www.apple.com/hk"},
	{code: "CN-MO", url: "https://www.apple.com/mo"},
	{code: "CN-TW", url: "https://www.apple.com/tw"},
	{code: "JP", url: "https://www.apple.com/jp"},
	{code: "KR", url: "https://www.apple.com/kr"},
	{code: "SG", url: "https://www.apple.com/sg"},
	{code: "MY", url: "https://www.apple.com/my"},
	{code: "AU", url: "https://www.apple.com/au"},
	{code: "UK", url: "https://www.apple.com/uk"},
	{code: "CA", url: "https://www.apple.com/ca"},
	{code: "US", url: "https://www.apple.com"},
}

// BaseURL returns the storefront base URL for code. Matching is exact and
// case-sensitive. Unknown codes resolve to the Default storefront.
func BaseURL(code string) string {
	if u, ok := Lookup(code); ok {
		return u
	}
	u, _ := Lookup(Default)
	return u
}

// Lookup returns the storefront base URL for code and whether the code is
// in the table.
func Lookup(code string) (string, bool) {
	for _, e := range table {
		if e.code == code {
			return e.url, true
		}
	}
	return "", false
}

// Codes returns every supported code in table order.
func Codes() []string {
	codes := make([]string, 0, len(table))
	for _, e := range table {
		codes = append(codes, e.code)
	}
	return codes
}
