package enumerator

import (
	"fmt"

	"print-pricing/internal/catalog"
)

type processOption struct {
	id         string
	lamination catalog.Lamination
}

// Process radio ids per product, from each product page's content.js.
var processOptions = map[catalog.ProductCategory][]processOption{
	catalog.Seal: {
		{"1", catalog.NoLamination},
		{"2", catalog.GlossyLaminatedPP},
		{"3", catalog.MatteLaminatedPP},
		{"4", catalog.WhitePlate},
		{"5", catalog.GlossyLaminatedPPWithWhitePlate},
		{"6", catalog.MatteLaminatedPPWithWhitePlate},
	},
	catalog.Sticker: {
		{"1", catalog.GlossyLaminated},
		{"2", catalog.MatteLaminated},
		{"3", catalog.EmbossedLaminated},
		{"4", catalog.NoLamination},
	},
	catalog.MultiSticker: {
		{"1", catalog.GlossyLaminated},
		{"2", catalog.MatteLaminated},
		{"3", catalog.NoLamination},
	},
}

// Seal paper groups that accept PP lamination, a white plate, or both.
var (
	sealLaminateGroups           = []string{"1", "2", "3", "4", "6", "7", "8"}
	sealWhitePlateGroups         = []string{"11", "14", "15", "19"}
	sealWhitePlateLaminateGroups = []string{"8"}
)

// stickerMaterialProcesses maps paper_material -> process ids.
var stickerMaterialProcesses = map[string][]string{
	"1": {"1", "2", "4"},
	"2": {"1", "2", "4"},
	"3": {"1", "4"},
	"4": {"2", "4"},
	"5": {"1", "4"},
	"6": {"3", "4"},
}

// multiStickerPaperProcesses maps paper -> process ids.
var multiStickerPaperProcesses = map[string][]string{
	"404": {"2", "3"},
	"405": {"1", "2", "3"},
	"409": {"1", "3"},
}

// multiStickerSizeCuts maps sheet size -> half-cut ids. Postcard sheets take
// at most 10 half cuts.
var multiStickerSizeCuts = map[string][]string{
	"4":  {"1", "2", "3", "4", "5"},
	"14": {"1", "2", "3"},
}

// LaminationFor resolves a process radio id for a product.
func LaminationFor(category catalog.ProductCategory, processID string) (catalog.Lamination, error) {
	for _, p := range processOptions[category] {
		if p.id == processID {
			return p.lamination, nil
		}
	}
	return catalog.LaminationNotFound, &catalog.UnknownOptionError{Table: category.String() + " process", Code: processID}
}

// SpaceFor builds the option space of a product from scraped options.
func SpaceFor(category catalog.ProductCategory, vo VendorOptions) (Space, error) {
	switch category {
	case catalog.Seal:
		return sealSpace(vo)
	case catalog.Sticker:
		return stickerSpace(vo), nil
	case catalog.MultiSticker:
		return multiStickerSpace(vo), nil
	}
	return Space{}, fmt.Errorf("no option space for category %d", category)
}

// Build enumerates every valid descriptor for a product.
func Build(category catalog.ProductCategory, vo VendorOptions) ([]OptionDescriptor, error) {
	space, err := SpaceFor(category, vo)
	if err != nil {
		return nil, err
	}
	assignments, err := space.Enumerate()
	if err != nil {
		return nil, err
	}
	out := make([]OptionDescriptor, 0, len(assignments))
	for _, a := range assignments {
		d, err := describe(category, a)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func describe(category catalog.ProductCategory, a Assignment) (OptionDescriptor, error) {
	lam, err := LaminationFor(category, a[DimProcess].ID)
	if err != nil {
		return OptionDescriptor{}, err
	}
	d := OptionDescriptor{
		Category:    category,
		SizeID:      a[DimSize].ID,
		SizeLabel:   a[DimSize].Name,
		PaperID:     a[DimPaper].ID,
		PaperName:   a[DimPaper].Name,
		ProcessID:   a[DimProcess].ID,
		Lamination:  lam,
		ColorID:     a[DimColor].ID,
		CutAmountID: a[DimCutAmount].ID,
	}
	if g, ok := a[DimPaperGroup]; ok {
		d.PaperGroupID = g.ID
		d.PaperName = g.Name
	}
	return d, nil
}

func processList(category catalog.ProductCategory) []Option {
	opts := make([]Option, 0, len(processOptions[category]))
	for _, p := range processOptions[category] {
		opts = append(opts, Option{ID: p.id, Name: p.lamination.String()})
	}
	return opts
}

func sealSpace(vo VendorOptions) (Space, error) {
	papersByGroup := map[string][]string{}
	processesByGroup := map[string][]string{}
	var papers []Option
	for _, g := range catalog.SealPaperGroups() {
		ids, err := catalog.SealPapers(g)
		if err != nil {
			return Space{}, err
		}
		papersByGroup[g] = ids
		for _, id := range ids {
			papers = append(papers, Option{ID: id})
		}

		procs := []string{"1"}
		if contains(sealLaminateGroups, g) {
			procs = append(procs, "2", "3")
		}
		if contains(sealWhitePlateGroups, g) {
			procs = append(procs, "4")
		}
		if contains(sealWhitePlateLaminateGroups, g) {
			procs = append(procs, "5")
		}
		processesByGroup[g] = procs
	}

	return Space{
		Order: []Dimension{DimSize, DimPaperGroup, DimPaper, DimProcess},
		Options: map[Dimension][]Option{
			DimSize:       vo.Sizes,
			DimPaperGroup: vo.PaperGroups,
			DimPaper:      papers,
			DimProcess:    processList(catalog.Seal),
		},
		Rules: []Rule{
			{Name: "seal paper", From: DimPaperGroup, To: DimPaper, Allowed: papersByGroup},
			{Name: "seal process", From: DimPaperGroup, To: DimProcess, Allowed: processesByGroup},
		},
	}, nil
}

func stickerSpace(vo VendorOptions) Space {
	sizes := make([]Option, 0)
	for _, s := range catalog.StickerSizes() {
		sizes = append(sizes, Option{ID: s.SizeID, Name: s.Range})
	}
	return Space{
		Order: []Dimension{DimSize, DimColor, DimPaper, DimProcess, DimCutAmount},
		Options: map[Dimension][]Option{
			DimSize:      sizes,
			DimColor:     vo.Colors,
			DimPaper:     vo.Papers,
			DimProcess:   processList(catalog.Sticker),
			DimCutAmount: vo.CutAmounts,
		},
		Rules: []Rule{
			{Name: "sticker material process", From: DimPaper, To: DimProcess, Allowed: stickerMaterialProcesses},
		},
	}
}

func multiStickerSpace(vo VendorOptions) Space {
	return Space{
		Order: []Dimension{DimSize, DimColor, DimPaper, DimProcess, DimCutAmount},
		Options: map[Dimension][]Option{
			DimSize:      vo.Sizes,
			DimColor:     vo.Colors,
			DimPaper:     vo.Papers,
			DimProcess:   processList(catalog.MultiSticker),
			DimCutAmount: vo.CutAmounts,
		},
		Rules: []Rule{
			{Name: "multi sticker paper process", From: DimPaper, To: DimProcess, Allowed: multiStickerPaperProcesses},
			{Name: "multi sticker size half cut", From: DimSize, To: DimCutAmount, Allowed: multiStickerSizeCuts},
		},
	}
}
