package integration

import "regexp"

// SourcePlatform identifies where a candidate record came from
type SourcePlatform string

const (
	PlatformAmazon         SourcePlatform = "amazon"
	PlatformAliExpress     SourcePlatform = "aliexpress"
	PlatformEbay           SourcePlatform = "ebay"
	PlatformShopify        SourcePlatform = "shopify"
	PlatformWooCommerce    SourcePlatform = "woocommerce"
	PlatformCJDropshipping SourcePlatform = "cj_dropshipping"
	PlatformCustom         SourcePlatform = "custom"
)

var platformSlug = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,49}$`)

// IsValid accepts any lower-case slug; the constants above are the
// platforms with first-party connectors, not a closed set.
func (p SourcePlatform) IsValid() bool {
	return platformSlug.MatchString(string(p))
}

func (p SourcePlatform) String() string {
	return string(p)
}
