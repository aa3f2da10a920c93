package printpac

import (
	"context"
	"fmt"
	"strings"

	"print-pricing/internal/catalog"
	"print-pricing/internal/enumerator"

	"github.com/gocolly/colly"
)

// radio input name -> option list, per product page
var radioFields = map[catalog.ProductCategory]map[string]func(*enumerator.VendorOptions) *[]enumerator.Option{
	catalog.Sticker: {
		"print_color":    func(v *enumerator.VendorOptions) *[]enumerator.Option { return &v.Colors },
		"paper_material": func(v *enumerator.VendorOptions) *[]enumerator.Option { return &v.Papers },
		"paper_halfcut":  func(v *enumerator.VendorOptions) *[]enumerator.Option { return &v.CutAmounts },
	},
	catalog.MultiSticker: {
		"size":        func(v *enumerator.VendorOptions) *[]enumerator.Option { return &v.Sizes },
		"print_color": func(v *enumerator.VendorOptions) *[]enumerator.Option { return &v.Colors },
		"paper":       func(v *enumerator.VendorOptions) *[]enumerator.Option { return &v.Papers },
		"halfcat":     func(v *enumerator.VendorOptions) *[]enumerator.Option { return &v.CutAmounts },
	},
}

// FetchOptions scrapes the option lists of a product page.
func (c *Client) FetchOptions(ctx context.Context, category catalog.ProductCategory) (enumerator.VendorOptions, error) {
	ep, ok := endpoints[category]
	if !ok {
		return enumerator.VendorOptions{}, fmt.Errorf("no option page for category %d", category)
	}

	var opts enumerator.VendorOptions
	col := colly.NewCollector(colly.UserAgent(userAgent))
	col.SetRequestTimeout(c.timeout)

	if category == catalog.Seal {
		col.OnHTML(".size", func(e *colly.HTMLElement) {
			id := strings.TrimSpace(e.ChildAttr("input", "value"))
			if id == "" {
				return
			}
			opts.Sizes = append(opts.Sizes, enumerator.Option{ID: id, Name: strings.TrimSpace(e.Attr("alt"))})
		})
		col.OnHTML(".paper_group li input", func(e *colly.HTMLElement) {
			id := strings.TrimSpace(e.Attr("value"))
			if id == "" {
				return
			}
			opts.PaperGroups = append(opts.PaperGroups, enumerator.Option{ID: id, Name: strings.TrimSpace(e.Attr("data-name"))})
		})
	} else {
		fields := radioFields[category]
		col.OnHTML(`input[type="radio"]`, func(e *colly.HTMLElement) {
			target, ok := fields[e.Attr("name")]
			if !ok {
				return
			}
			id := strings.TrimSpace(e.Attr("value"))
			if id == "" {
				return
			}
			name := strings.TrimSpace(e.Attr("data-name"))
			if name == "" {
				name = id
			}
			list := target(&opts)
			*list = append(*list, enumerator.Option{ID: id, Name: name})
		})
	}

	var visitErr error
	col.OnError(func(r *colly.Response, err error) {
		visitErr = fmt.Errorf("option page %s: status %d: %w", r.Request.URL, r.StatusCode, err)
	})

	if err := ctx.Err(); err != nil {
		return opts, err
	}
	if err := col.Visit(c.baseURL + ep.page); err != nil && visitErr == nil {
		visitErr = err
	}
	col.Wait()
	if visitErr != nil {
		return opts, visitErr
	}

	switch category {
	case catalog.Seal:
		if len(opts.Sizes) == 0 || len(opts.PaperGroups) == 0 {
			return opts, fmt.Errorf("seal option page: found %d sizes and %d paper groups", len(opts.Sizes), len(opts.PaperGroups))
		}
	default:
		for name, field := range radioFields[category] {
			if len(*field(&opts)) == 0 {
				return opts, fmt.Errorf("%s option page: no %q options", category, name)
			}
		}
	}
	return opts, nil
}
