package integration

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ImageRef is one image reference of a candidate. SizeBytes is zero when
// the platform does not report it.
type ImageRef struct {
	Src       string `json:"src"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// Candidate is an external product record as delivered by a source
// platform. Prices are kept as the raw strings the platform sent; use the
// accessor methods to read them as decimals.
type Candidate struct {
	ExternalID    string         `json:"id" binding:"required"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	SKU           string         `json:"sku"`
	Price         string         `json:"price"`
	RegularPrice  string         `json:"regular_price"`
	SalePrice     string         `json:"sale_price"`
	Categories    []string       `json:"categories"`
	Images        []ImageRef     `json:"images"`
	StockQuantity *int           `json:"stock_quantity"`
	InStock       *bool          `json:"in_stock"`
	Brand         string         `json:"brand"`
	Tags          []string       `json:"tags"`
	ExternalURL   string         `json:"external_url"`
	Metadata      map[string]any `json:"metadata"`
}

// ListPrice is the price field used for validation: Price, falling back
// to RegularPrice.
func (c *Candidate) ListPrice() (decimal.Decimal, bool) {
	if strings.TrimSpace(c.Price) != "" {
		return ParsePrice(c.Price)
	}
	return ParsePrice(c.RegularPrice)
}

// RegularPriceValue returns RegularPrice, falling back to Price
func (c *Candidate) RegularPriceValue() (decimal.Decimal, bool) {
	if strings.TrimSpace(c.RegularPrice) != "" {
		return ParsePrice(c.RegularPrice)
	}
	return ParsePrice(c.Price)
}

// SalePriceValue returns the sale price when one is present and positive
func (c *Candidate) SalePriceValue() (decimal.Decimal, bool) {
	d, ok := ParsePrice(c.SalePrice)
	if !ok || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// HasTag reports whether any tag equals one of names, case-insensitively
func (c *Candidate) HasTag(names ...string) bool {
	for _, tag := range c.Tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		for _, n := range names {
			if t == n {
				return true
			}
		}
	}
	return false
}

// HasTagPrefix reports whether any tag starts with prefix, case-insensitively
func (c *Candidate) HasTagPrefix(prefix string) bool {
	for _, tag := range c.Tags {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(tag)), prefix) {
			return true
		}
	}
	return false
}

// MetadataString returns metadata[key] rendered as a non-empty string
func (c *Candidate) MetadataString(key string) (string, bool) {
	v, ok := c.Metadata[key]
	if !ok || v == nil {
		return "", false
	}
	s := strings.TrimSpace(toString(v))
	return s, s != ""
}

// PrimaryImage returns the first image source, or ""
func (c *Candidate) PrimaryImage() string {
	for _, img := range c.Images {
		if src := strings.TrimSpace(img.Src); src != "" {
			return src
		}
	}
	return ""
}

// ParsePrice reads a platform price string such as "19.99", "$1,299.00",
// "12,99", "1.299,00" or " 5 ". Currency symbols are ignored. A comma
// followed by exactly two trailing digits is the decimal mark; any other
// comma or dot used as a thousands separator must group digits by three.
// Ambiguous input such as "1.299,5" is rejected rather than misread.
func ParsePrice(raw string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return decimal.Zero, false
	}

	number := cleaned
	if i := strings.LastIndexByte(cleaned, ','); i >= 0 {
		if frac := cleaned[i+1:]; len(frac) == 2 && isDigits(frac) {
			head := cleaned[:i]
			if !thousandsGrouped(head, '.') {
				return decimal.Zero, false
			}
			number = strings.ReplaceAll(head, ".", "") + "." + frac
		} else {
			head, tail := cleaned, ""
			if dot := strings.IndexByte(cleaned, '.'); dot >= 0 {
				head, tail = cleaned[:dot], cleaned[dot:]
			}
			if strings.ContainsRune(tail, ',') || !thousandsGrouped(head, ',') {
				return decimal.Zero, false
			}
			number = strings.ReplaceAll(head, ",", "") + tail
		}
	}

	d, err := decimal.NewFromString(number)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// thousandsGrouped reports whether sep splits s into a leading group of
// one to three digits followed by groups of exactly three.
func thousandsGrouped(s string, sep byte) bool {
	groups := strings.Split(strings.TrimPrefix(s, "-"), string(sep))
	if len(groups) == 1 {
		return true
	}
	if n := len(groups[0]); n == 0 || n > 3 || !isDigits(groups[0]) {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 || !isDigits(g) {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return decimal.NewFromFloat(t).String()
	case int:
		return decimal.NewFromInt(int64(t)).String()
	case int64:
		return decimal.NewFromInt(t).String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	}
	return ""
}
