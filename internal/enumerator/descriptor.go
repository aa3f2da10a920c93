package enumerator

import (
	"strings"

	"print-pricing/internal/catalog"
)

// OptionDescriptor is one vendor request plus the annotations the normalizer
// needs. Values are never mutated after Build returns them.
type OptionDescriptor struct {
	Category     catalog.ProductCategory `json:"category"`
	SizeID       string                  `json:"size_id"`
	SizeLabel    string                  `json:"size_label"`
	PaperGroupID string                  `json:"paper_group_id,omitempty"`
	PaperID      string                  `json:"paper_id"`
	PaperName    string                  `json:"paper_name,omitempty"`
	ProcessID    string                  `json:"process_id"`
	Lamination   catalog.Lamination      `json:"lamination"`
	ColorID      string                  `json:"color_id,omitempty"`
	CutAmountID  string                  `json:"cut_amount_id,omitempty"`
}

// Key identifies the descriptor within one enumeration.
func (d OptionDescriptor) Key() string {
	return strings.Join([]string{
		d.Category.String(), d.SizeID, d.PaperGroupID, d.PaperID, d.ProcessID, d.ColorID, d.CutAmountID,
	}, "/")
}

// VendorOptions are the option lists scraped from a product page. Fields a
// product does not use stay empty.
type VendorOptions struct {
	Sizes       []Option `json:"sizes,omitempty"`
	PaperGroups []Option `json:"paper_groups,omitempty"`
	Papers      []Option `json:"papers,omitempty"`
	Colors      []Option `json:"colors,omitempty"`
	CutAmounts  []Option `json:"cut_amounts,omitempty"`
}
