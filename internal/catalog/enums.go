package catalog

import (
	"sort"
	"strings"
)

// Lamination is the surface finishing applied to a printed sheet.
type Lamination int

const (
	LaminationNotFound Lamination = iota
	NoLamination
	WhitePlate
	GlossyLaminated
	GlossyLaminatedPP
	GlossyLaminatedPPWithWhitePlate
	MatteLaminated
	MatteLaminatedPP
	MatteLaminatedPPWithWhitePlate
	EmbossedLaminated
	GlossyLaminatedPVC
	GlossyLaminatedPET
	MatteLaminatedPVC
	MatteLaminatedPET
)

type laminationEntry struct {
	lamination Lamination
	label      string // vendor display string
	oid1       int64
	whitePlate bool
}

// OID1NotFound is emitted when a lamination cannot be resolved. Valid codes start at 1.
const OID1NotFound int64 = 0

var laminationTable = []laminationEntry{
	{NoLamination, "ラミネートなし", 1, false},
	{WhitePlate, "白版追加", 1, true},
	{GlossyLaminated, "光沢ラミネート", 2, false},
	{GlossyLaminatedPP, "光沢グロスPPラミネート", 2, false},
	{GlossyLaminatedPPWithWhitePlate, "光沢グロスPPラミネート＋白版追加", 2, true},
	{MatteLaminated, "マットラミネート", 5, false},
	{MatteLaminatedPP, "マットPPラミネート", 5, false},
	{MatteLaminatedPPWithWhitePlate, "マットPPラミネート＋白版追加", 5, true},
	{EmbossedLaminated, "エンボスラミネート", 1000, false},
	// Not offered on the site today; kept so historical rows stay decodable.
	{GlossyLaminatedPVC, "光沢ラミネート加工（PVC）", 3, false},
	{GlossyLaminatedPET, "光沢ラミネート(PET)", 4, false},
	{MatteLaminatedPVC, "マットラミネート(PVC)", 6, false},
	{MatteLaminatedPET, "マットラミネート(PET)", 7, false},
}

var (
	laminationByValue = map[Lamination]laminationEntry{}
	laminationByLabel = map[string]laminationEntry{}
)

func (l Lamination) String() string {
	if e, ok := laminationByValue[l]; ok {
		return e.label
	}
	return "NOT_FOUND"
}

// OID1 returns the warehouse lamination id, or OID1NotFound.
func (l Lamination) OID1() int64 {
	if e, ok := laminationByValue[l]; ok {
		return e.oid1
	}
	return OID1NotFound
}

func (l Lamination) HasWhitePlate() bool {
	return laminationByValue[l].whitePlate
}

// LaminationFromLabel resolves a vendor display string.
func LaminationFromLabel(label string) (Lamination, error) {
	if e, ok := laminationByLabel[strings.TrimSpace(label)]; ok {
		return e.lamination, nil
	}
	return LaminationNotFound, unknown("lamination", label)
}

// LaminationLabelForOID1 picks a display label for a stored oid1. Several
// laminations share an id, so the first table entry wins.
func LaminationLabelForOID1(oid1 int64) string {
	for _, e := range laminationTable {
		if e.oid1 == oid1 {
			return e.label
		}
	}
	return "NOT_FOUND"
}

// LaminationLabelsForOID1 lists every label stored under oid1, in table order.
func LaminationLabelsForOID1(oid1 int64) []string {
	var out []string
	for _, e := range laminationTable {
		if e.oid1 == oid1 {
			out = append(out, e.label)
		}
	}
	return out
}

// Form is the cut/mount style, stored as oid2.
type Form int64

const (
	FormMultiSheetsOnOne Form = 80
	FormRoseSquareCut    Form = 81
	FormRoseMountCut     Form = 82
	FormRollSeal         Form = 83
)

var formLabels = map[Form]string{
	FormMultiSheetsOnOne: "1シートに複数枚",
	FormRoseSquareCut:    "バラ四角カット",
	FormRoseMountCut:     "バラ台紙カット",
	FormRollSeal:         "ロールシール",
}

func (f Form) String() string { return formLabels[f] }

// Glue is the adhesive category of a paper stock, stored as oid3.
type Glue int64

const (
	GlueNotFound            Glue = -1
	OrdinaryGlue            Glue = 1
	StrongAdhesive          Glue = 2
	CorrectionGlue          Glue = 3
	RepeelableGlue          Glue = 4
	FrozenFoodPaste         Glue = 5
	StrongAdhesiveFiberGlue Glue = 6
	FrozenGlue              Glue = 7
)

var glueLabels = map[Glue]string{
	OrdinaryGlue:            "普通のり",
	StrongAdhesive:          "強粘着",
	CorrectionGlue:          "訂正のり",
	RepeelableGlue:          "再剥離のり",
	FrozenFoodPaste:         "冷食のり",
	StrongAdhesiveFiberGlue: "強粘着(センイ)のり",
	FrozenGlue:              "冷凍用（冷凍のり）",
}

func (g Glue) String() string {
	if s, ok := glueLabels[g]; ok {
		return s
	}
	return "NOT_FOUND"
}

// Shape is the die-cut outline, stored as shape.
type Shape int64

const (
	ShapeUnknown    Shape = 0
	ShapeSquare     Shape = 1
	ShapeRectangle  Shape = 2
	ShapeRRectangle Shape = 3
	ShapeRound      Shape = 4
	ShapeOval       Shape = 5
	ShapeFree       Shape = 6
	ShapeMulti      Shape = 7
)

var shapeLabels = map[Shape]string{
	ShapeSquare:     "正方形",
	ShapeRectangle:  "長方形",
	ShapeRRectangle: "角丸四角形",
	ShapeRound:      "円形",
	ShapeOval:       "楕円形",
	ShapeFree:       "free",
	ShapeMulti:      "multi",
}

// shapeMatchOrder is longest label first so "楕円形" is not read as "円形".
var shapeMatchOrder []Shape

func (s Shape) String() string {
	if l, ok := shapeLabels[s]; ok {
		return l
	}
	return "unknown"
}

// ShapeFromLabel reads the shape from a size label such as "正方形60mm×60mm".
func ShapeFromLabel(label string) (Shape, error) {
	label = strings.TrimSpace(label)
	for _, s := range shapeMatchOrder {
		if strings.Contains(label, shapeLabels[s]) {
			return s, nil
		}
	}
	return ShapeUnknown, unknown("shape", label)
}

// Color is the print color count, stored as color.
type Color int64

const (
	ColorNotFound Color = 0
	FourColors    Color = 40
	FiveColors    Color = 50
)

func (c Color) String() string {
	switch c {
	case FourColors:
		return "4色"
	case FiveColors:
		return "4色+白"
	}
	return "NOT_FOUND"
}

// ColorForPrintOption maps the sticker print_color radio value.
func ColorForPrintOption(id string) (Color, error) {
	switch id {
	case "1":
		return FourColors, nil
	case "2":
		return FiveColors, nil
	}
	return ColorNotFound, unknown("print_color", id)
}

func init() {
	for _, e := range laminationTable {
		laminationByValue[e.lamination] = e
		laminationByLabel[e.label] = e
	}
	for s, l := range shapeLabels {
		if s == ShapeFree || s == ShapeMulti || l == "" {
			continue
		}
		shapeMatchOrder = append(shapeMatchOrder, s)
	}
	sort.Slice(shapeMatchOrder, func(i, j int) bool {
		li, lj := len(shapeLabels[shapeMatchOrder[i]]), len(shapeLabels[shapeMatchOrder[j]])
		if li != lj {
			return li > lj
		}
		return shapeMatchOrder[i] < shapeMatchOrder[j]
	})
}
