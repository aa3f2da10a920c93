package printpac

import (
	"fmt"

	"print-pricing/internal/catalog"
	"print-pricing/internal/enumerator"
)

type endpoint struct {
	page  string
	price string
}

var endpoints = map[catalog.ProductCategory]endpoint{
	catalog.Seal:         {"/seal/size.php", "/seal/ajax/get_price.php"},
	catalog.Sticker:      {"/sticker/", "/sticker/ajax/get_price.php"},
	catalog.MultiSticker: {"/sticker_multi/", "/sticker_multi/ajax/get_price.php"},
}

// Request code tables mirror each product page's content.js.
var (
	// seal process -> category_id
	sealCategoryIDs = map[string]string{"1": "47", "2": "59", "3": "59", "4": "91", "5": "91", "6": "91"}

	// sticker process -> half cut -> kakou1
	stickerKakouIDs = map[string]map[string]string{
		"1": {"1": "114", "2": "115", "3": "116", "4": "117"},
		"2": {"1": "118", "2": "119", "3": "120", "4": "121"},
		"3": {"1": "125", "2": "126", "3": "127", "4": "128"},
		"4": {"1": "110", "2": "111", "3": "112", "4": "113"},
	}
	stickerCategoryIDs = map[string]string{"1": "28", "2": "248"}
	// paper_material -> kami_mei
	stickerPaperIDs = map[string]string{"1": "402", "2": "405", "3": "403", "4": "404", "5": "409", "6": "400"}

	// multi sticker process -> half cut -> first kakou1_id of the bucket
	multiStickerKakouIDs = map[string]map[string]string{
		"1": {"1": "114", "2": "617", "3": "621", "4": "624", "5": "629"},
		"2": {"1": "118", "2": "634", "3": "638", "4": "641", "5": "646"},
		"3": {"1": "110", "2": "600", "3": "604", "4": "607", "5": "612"},
	}
	multiStickerCategoryIDs = map[string]string{"1": "65", "2": "249"}
)

func lookup(table string, m map[string]string, key string) (string, error) {
	if v, ok := m[key]; ok {
		return v, nil
	}
	return "", &catalog.UnknownOptionError{Table: table, Code: key}
}

func lookup2(table string, m map[string]map[string]string, k1, k2 string) (string, error) {
	inner, ok := m[k1]
	if !ok {
		return "", &catalog.UnknownOptionError{Table: table, Code: k1}
	}
	return lookup(table, inner, k2)
}

// requestFor builds the price endpoint path and form body of a descriptor.
func requestFor(d enumerator.OptionDescriptor) (string, map[string]string, error) {
	ep, ok := endpoints[d.Category]
	if !ok {
		return "", nil, fmt.Errorf("no price endpoint for category %d", d.Category)
	}

	switch d.Category {
	case catalog.Seal:
		categoryID, err := lookup("seal category", sealCategoryIDs, d.ProcessID)
		if err != nil {
			return "", nil, err
		}
		return ep.price, map[string]string{
			"category_id": categoryID,
			"size_id":     d.SizeID,
			"paper_arr[]": d.PaperID,
			"kakou":       d.ProcessID,
			"tax_flag":    "false",
		}, nil

	case catalog.Sticker:
		size, err := catalog.StickerSizeByRange(d.SizeLabel)
		if err != nil {
			return "", nil, err
		}
		kakou, err := lookup2("sticker kakou", stickerKakouIDs, d.ProcessID, d.CutAmountID)
		if err != nil {
			return "", nil, err
		}
		categoryID, err := lookup("sticker category", stickerCategoryIDs, d.ColorID)
		if err != nil {
			return "", nil, err
		}
		paper, err := lookup("sticker paper", stickerPaperIDs, d.PaperID)
		if err != nil {
			return "", nil, err
		}
		return ep.price, map[string]string{
			"c_id":       categoryID,
			"fix_size_w": size.Width,
			"fix_size_h": size.Height,
			"size":       size.SizeID,
			"kakou1":     kakou,
			"kami_mei":   paper,
			"houhou":     "2",
			"irokazu":    "1",
			"tax_flag":   "false",
		}, nil

	case catalog.MultiSticker:
		kakou, err := lookup2("multi sticker kakou", multiStickerKakouIDs, d.ProcessID, d.CutAmountID)
		if err != nil {
			return "", nil, err
		}
		categoryID, err := lookup("multi sticker category", multiStickerCategoryIDs, d.ColorID)
		if err != nil {
			return "", nil, err
		}
		return ep.price, map[string]string{
			"c_id":        categoryID,
			"irokazu_id":  "1",
			"houhou_id":   "2",
			"size_id":     d.SizeID,
			"kami_mei_id": d.PaperID,
			"kakou1_id":   kakou,
			"tax_flag":    "false",
		}, nil
	}
	return "", nil, fmt.Errorf("no request shape for category %d", d.Category)
}
