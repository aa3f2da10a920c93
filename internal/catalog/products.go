package catalog

import "strings"

// ProductCategory is one crawlable product line.
type ProductCategory int

const (
	Seal ProductCategory = iota + 1
	Sticker
	MultiSticker
)

func (c ProductCategory) String() string {
	switch c {
	case Seal:
		return "seal"
	case Sticker:
		return "sticker"
	case MultiSticker:
		return "multi-sticker"
	}
	return "unknown"
}

// DisplayName is the vendor's product name, used in notifications.
func (c ProductCategory) DisplayName() string {
	switch c {
	case Seal:
		return "ラベルシール"
	case Sticker:
		return "ステッカー"
	case MultiSticker:
		return "マルチステッカー"
	}
	return "unknown"
}

// Form is the oid2 for every record of the category.
func (c ProductCategory) Form() Form {
	if c == MultiSticker {
		return FormMultiSheetsOnOne
	}
	return FormRoseMountCut
}

// IsVariable reports whether the category's size column is an area bucket.
func (c ProductCategory) IsVariable() bool {
	return c != Seal
}

// Product ties a category to its crawl selector, artifact prefix and live table.
type Product struct {
	Category       ProductCategory
	CrawlTarget    string
	ArtifactPrefix string
	Table          string
}

var products = []Product{
	{Seal, "crawl_seal_prices_printpac", "printpac-label-seal", "printpac_seal_prices"},
	{Sticker, "crawl_sticker_prices_printpac", "printpac-sticker", "printpac_sticker_prices"},
	{MultiSticker, "crawl_multi_sticker_prices_printpac", "printpac-multi-sticker", "printpac_multi_sticker_prices"},
}

func Products() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

func ProductByTarget(target string) (Product, bool) {
	target = strings.TrimSpace(target)
	for _, p := range products {
		if p.CrawlTarget == target {
			return p, true
		}
	}
	return Product{}, false
}

func ProductByPrefix(prefix string) (Product, bool) {
	for _, p := range products {
		if p.ArtifactPrefix == prefix {
			return p, true
		}
	}
	return Product{}, false
}

func ProductByCategory(c ProductCategory) (Product, bool) {
	for _, p := range products {
		if p.Category == c {
			return p, true
		}
	}
	return Product{}, false
}
