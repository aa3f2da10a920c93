package notify

import (
	"fmt"
	"strconv"
	"strings"

	"print-pricing/internal/catalog"
	"print-pricing/internal/models"
)

const digestRule = "--------------------------***--------------------------"

// FormatDigest renders the price changes of one product as a chat message.
// Rows whose effective price did not move are skipped. A row whose composite
// key cannot be parsed is listed with the raw key. The second return is the
// number of listed rows; zero means there is nothing to send.
func FormatDigest(category catalog.ProductCategory, diffs []models.PriceDiff) (string, int) {
	var body strings.Builder
	listed := 0
	for _, d := range diffs {
		oldPrice, newPrice := d.Old.Effective(), d.New.Effective()
		if oldPrice == newPrice {
			continue
		}
		listed++
		fmt.Fprintf(&body, "-----\n")
		k, err := models.ParseCompositeKey(d.CompositeKey)
		if err != nil {
			fmt.Fprintf(&body, "キー: %s \n", d.CompositeKey)
			fmt.Fprintf(&body, "定価: %s \n", PriceTransition(oldPrice, newPrice))
			continue
		}
		fmt.Fprintf(&body, "サイズ: %s \n", displaySize(category, k.Size))
		fmt.Fprintf(&body, "加工: %s \n", laminationLabel(k.OID1))
		fmt.Fprintf(&body, "のり: %s \n", catalog.Glue(k.OID3).String())
		fmt.Fprintf(&body, "色: %s色 \n", colorCount(k.Color))
		fmt.Fprintf(&body, "ハーフカット: %s \n", k.Path)
		fmt.Fprintf(&body, "営業: %d営業日 \n", k.Day)
		fmt.Fprintf(&body, "数量: %d個 \n", k.Set)
		fmt.Fprintf(&body, "定価: %s \n", PriceTransition(oldPrice, newPrice))
	}
	if listed == 0 {
		return "", 0
	}
	return digestRule + "\n" + "商品: " + category.DisplayName() + " \n" + body.String(), listed
}

// UnreadableKeys lists the composite keys of diffs that ParseCompositeKey rejects.
func UnreadableKeys(diffs []models.PriceDiff) []string {
	var out []string
	for _, d := range diffs {
		if _, err := models.ParseCompositeKey(d.CompositeKey); err != nil {
			out = append(out, d.CompositeKey)
		}
	}
	return out
}

// PriceTransition renders "old円 -> new円 (値下: n円)" or the 値上 form.
func PriceTransition(oldPrice, newPrice int64) string {
	if oldPrice == newPrice {
		return fmt.Sprintf("%d円 (不変)", oldPrice)
	}
	diff := oldPrice - newPrice
	if diff > 0 {
		return fmt.Sprintf("%d円 -> %d円 (値下: %d円)", oldPrice, newPrice, diff)
	}
	return fmt.Sprintf("%d円 -> %d円 (値上: %d円)", oldPrice, newPrice, -diff)
}

func displaySize(category catalog.ProductCategory, size string) string {
	switch category {
	case catalog.Seal:
		if len(size) == 4 {
			return size[:2] + "mm x " + size[2:] + "mm"
		}
		return size
	case catalog.Sticker:
		return "~" + size + "mm2"
	case catalog.MultiSticker:
		return catalog.MultiStickerSheetLabel(size) + "サイズ"
	}
	return size
}

func laminationLabel(oid1 int64) string {
	labels := catalog.LaminationLabelsForOID1(oid1)
	if len(labels) == 0 {
		return strconv.FormatInt(oid1, 10)
	}
	return strings.Join(labels, " / ")
}

func colorCount(color int64) string {
	if color == int64(catalog.FiveColors) {
		return "5"
	}
	return "4"
}
