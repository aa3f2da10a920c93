package catalog

import (
	"errors"
	"fmt"
)

// Validate checks that every static table is internally consistent. Entry
// points call it before touching the vendor so a broken table fails fast.
func Validate() error {
	var errs []error

	seenLabels := map[string]Lamination{}
	seenValues := map[Lamination]bool{}
	for _, e := range laminationTable {
		if prev, ok := seenLabels[e.label]; ok {
			errs = append(errs, fmt.Errorf("lamination label %q used by %d and %d", e.label, prev, e.lamination))
		}
		seenLabels[e.label] = e.lamination
		if seenValues[e.lamination] {
			errs = append(errs, fmt.Errorf("lamination %d listed twice", e.lamination))
		}
		seenValues[e.lamination] = true
		if e.oid1 == OID1NotFound {
			errs = append(errs, fmt.Errorf("lamination %q maps to the not-found oid1", e.label))
		}
	}
	for l := NoLamination; l <= MatteLaminatedPET; l++ {
		if !seenValues[l] {
			errs = append(errs, fmt.Errorf("lamination %d has no table entry", l))
		}
	}

	shapeSeen := map[string]Shape{}
	for s, label := range shapeLabels {
		if prev, ok := shapeSeen[label]; ok {
			errs = append(errs, fmt.Errorf("shape label %q used by %d and %d", label, prev, s))
		}
		shapeSeen[label] = s
	}

	checkGlue := func(table string, info PIDInfo) {
		if _, ok := glueLabels[info.Glue]; !ok {
			errs = append(errs, fmt.Errorf("%s: pid %d has unmapped glue %d", table, info.PID, info.Glue))
		}
		if info.PID <= 0 {
			errs = append(errs, fmt.Errorf("%s: invalid pid %d", table, info.PID))
		}
	}
	for _, papers := range sealPIDTable {
		for _, info := range papers {
			checkGlue("seal", info)
		}
	}
	for _, info := range stickerPIDTable {
		checkGlue("sticker", info)
	}
	for _, info := range multiStickerPIDTable {
		checkGlue("multi sticker", info)
	}

	sizeIDs := map[string]bool{}
	for _, s := range stickerSizes {
		if sizeIDs[s.SizeID] {
			errs = append(errs, fmt.Errorf("sticker size id %s listed twice", s.SizeID))
		}
		sizeIDs[s.SizeID] = true
	}

	targets, prefixes, tables := map[string]bool{}, map[string]bool{}, map[string]bool{}
	for _, p := range products {
		if targets[p.CrawlTarget] || prefixes[p.ArtifactPrefix] || tables[p.Table] {
			errs = append(errs, fmt.Errorf("product %s shares a selector, prefix or table", p.Category))
		}
		targets[p.CrawlTarget], prefixes[p.ArtifactPrefix], tables[p.Table] = true, true, true
		if _, ok := halfCutPaths[p.Category]; !ok && p.Category != Seal {
			errs = append(errs, fmt.Errorf("product %s has no half cut table", p.Category))
		}
	}

	return errors.Join(errs...)
}
