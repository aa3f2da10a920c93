package catalog

import (
	"sort"
	"strconv"
)

// PIDInfo is the warehouse paper id and the paper's adhesive.
type PIDInfo struct {
	PID  int64
	Glue Glue
}

// PIDNotFound is emitted when a paper cannot be resolved.
const PIDNotFound int64 = -1

// Vendor fixed values.
const (
	FixedYID    int64 = 21
	FixedOID4   int64 = 1
	FixedWeight int64 = 0
)

// sealPIDTable maps paper group id -> paper id -> pid/glue.
// Source: printpac.co.jp/contents/lineup/seal/js/size.js
var sealPIDTable = map[int]map[int]PIDInfo{
	1:  {152: {100, RepeelableGlue}},
	2:  {154: {204, OrdinaryGlue}},
	3:  {153: {100, CorrectionGlue}},
	4:  {157: {100, FrozenFoodPaste}},
	5:  {155: {101, OrdinaryGlue}},
	6:  {158: {224, OrdinaryGlue}},
	7:  {156: {237, OrdinaryGlue}},
	8:  {173: {238, OrdinaryGlue}},
	9:  {147: {222, OrdinaryGlue}},
	10: {148: {1011, OrdinaryGlue}},
	11: {159: {106, OrdinaryGlue}},
	12: {174: {289, StrongAdhesive}},
	13: {
		419: {1005, OrdinaryGlue},
		432: {1008, OrdinaryGlue},
		433: {1006, OrdinaryGlue},
		434: {1007, OrdinaryGlue},
		435: {1004, OrdinaryGlue},
	},
	14: {
		175: {252, StrongAdhesive},
		176: {1015, StrongAdhesive},
		177: {251, StrongAdhesive},
		178: {290, StrongAdhesive},
		179: {250, StrongAdhesive},
	},
	15: {
		417: {239, OrdinaryGlue},
		418: {241, OrdinaryGlue},
	},
	16: {194: {1016, CorrectionGlue}},
	17: {192: {101, CorrectionGlue}},
	18: {193: {204, CorrectionGlue}},
	19: {
		415: {240, OrdinaryGlue},
		416: {242, OrdinaryGlue},
	},
	21: {472: {1010, OrdinaryGlue}},
	23: {473: {1012, OrdinaryGlue}},
	24: {471: {1014, OrdinaryGlue}},
	25: {474: {1013, OrdinaryGlue}},
	26: {470: {1009, OrdinaryGlue}},
}

// stickerPIDTable maps paper_material id -> pid/glue.
var stickerPIDTable = map[int]PIDInfo{
	1: {237, CorrectionGlue},  // 合成紙（グレー糊）
	2: {224, OrdinaryGlue},    // PET
	3: {207, StrongAdhesive},  // 塩ビ（ツヤ）
	4: {1002, OrdinaryGlue},   // 塩ビ（マット）
	5: {1001, OrdinaryGlue},   // 塩ビ（ツヤlite）
	6: {1003, RepeelableGlue}, // 塩ビ（ツヤ）強粘着
}

// multiStickerPIDTable maps paper (kami_mei) id -> pid/glue.
var multiStickerPIDTable = map[int]PIDInfo{
	404: {207, StrongAdhesive}, // 塩ビ（ツヤ）
	405: {224, OrdinaryGlue},   // PET
	409: {1001, OrdinaryGlue},  // 塩ビ（ツヤlite）
}

// StickerSize is one free-size sticker area bucket and a sample w/h inside it.
type StickerSize struct {
	Range  string // upper bound of the area in mm2, also the stored size
	SizeID string
	Width  string
	Height string
}

var stickerSizes = []StickerSize{
	{"1250", "69", "10", "120"},
	{"2500", "70", "10", "200"},
	{"5000", "71", "10", "400"},
	{"10000", "72", "10", "900"},
	{"15000", "73", "10", "1400"},
	{"22500", "74", "10", "2200"},
	{"30000", "75", "10", "2900"},
	{"40000", "76", "10", "3900"},
	{"60000", "77", "10", "5900"},
	{"90000", "78", "10", "8900"},
}

// MultiStickerSheet is one sheet size offered for multi stickers.
type MultiStickerSheet struct {
	SizeID string
	Code   string // stored size
	Label  string
}

var multiStickerSheets = []MultiStickerSheet{
	{"4", "1003", "A4"},
	{"14", "1001", "はがき"},
}

// halfCutPaths maps the half-cut radio id to the stored path bucket.
var halfCutPaths = map[ProductCategory]map[string]string{
	Sticker:      {"1": "0", "2": "1", "3": "2", "4": "3"},
	MultiSticker: {"1": "0", "2": "5", "3": "10", "4": "15", "5": "20"},
}

// SealPID resolves a seal paper.
func SealPID(groupID, paperID string) (PIDInfo, error) {
	g, err := strconv.Atoi(groupID)
	if err != nil {
		return PIDInfo{PIDNotFound, GlueNotFound}, unknown("seal paper group", groupID)
	}
	p, err := strconv.Atoi(paperID)
	if err != nil {
		return PIDInfo{PIDNotFound, GlueNotFound}, unknown("seal paper", paperID)
	}
	info, ok := sealPIDTable[g][p]
	if !ok {
		return PIDInfo{PIDNotFound, GlueNotFound}, unknown("seal paper", groupID+"/"+paperID)
	}
	return info, nil
}

// SealPapers lists the paper ids known for a paper group, ascending.
func SealPapers(groupID string) ([]string, error) {
	g, err := strconv.Atoi(groupID)
	if err != nil {
		return nil, unknown("seal paper group", groupID)
	}
	papers, ok := sealPIDTable[g]
	if !ok {
		return nil, unknown("seal paper group", groupID)
	}
	return sortedKeys(papers), nil
}

// SealPaperGroups lists every paper group id in the seal table, ascending.
func SealPaperGroups() []string {
	return sortedKeys(sealPIDTable)
}

func StickerPID(materialID string) (PIDInfo, error) {
	m, err := strconv.Atoi(materialID)
	if err != nil {
		return PIDInfo{PIDNotFound, GlueNotFound}, unknown("sticker material", materialID)
	}
	info, ok := stickerPIDTable[m]
	if !ok {
		return PIDInfo{PIDNotFound, GlueNotFound}, unknown("sticker material", materialID)
	}
	return info, nil
}

func MultiStickerPID(paperID string) (PIDInfo, error) {
	p, err := strconv.Atoi(paperID)
	if err != nil {
		return PIDInfo{PIDNotFound, GlueNotFound}, unknown("multi sticker paper", paperID)
	}
	info, ok := multiStickerPIDTable[p]
	if !ok {
		return PIDInfo{PIDNotFound, GlueNotFound}, unknown("multi sticker paper", paperID)
	}
	return info, nil
}

func StickerSizes() []StickerSize {
	out := make([]StickerSize, len(stickerSizes))
	copy(out, stickerSizes)
	return out
}

func StickerSizeByRange(rangeKey string) (StickerSize, error) {
	for _, s := range stickerSizes {
		if s.Range == rangeKey {
			return s, nil
		}
	}
	return StickerSize{}, unknown("sticker size", rangeKey)
}

func MultiStickerSheetByID(sizeID string) (MultiStickerSheet, error) {
	for _, s := range multiStickerSheets {
		if s.SizeID == sizeID {
			return s, nil
		}
	}
	return MultiStickerSheet{}, unknown("multi sticker size", sizeID)
}

// MultiStickerSheetLabel reverses a stored size code.
func MultiStickerSheetLabel(code string) string {
	for _, s := range multiStickerSheets {
		if s.Code == code {
			return s.Label
		}
	}
	return code
}

// HalfCutPath maps a half-cut radio id to the stored path. Seals have no half cut.
func HalfCutPath(category ProductCategory, cutID string) (string, error) {
	if category == Seal {
		return "0", nil
	}
	if p, ok := halfCutPaths[category][cutID]; ok {
		return p, nil
	}
	return UnknownValue, unknown(category.String()+" half cut", cutID)
}

// UnknownValue is stored in string columns when a lookup fails.
const UnknownValue = "Unknown"

func sortedKeys[V any](m map[int]V) []string {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = strconv.Itoa(k)
	}
	return out
}
