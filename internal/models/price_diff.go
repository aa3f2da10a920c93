package models

// Prices holds the three price columns of a record.
type Prices struct {
	List     int64 `json:"list"`
	Campaign int64 `json:"campaign"`
	Actual   int64 `json:"actual"`
}

// Effective is the smallest nonzero price, or 0 when none is set.
func (p Prices) Effective() int64 {
	var out int64
	for _, v := range []int64{p.List, p.Campaign, p.Actual} {
		if v <= 0 {
			continue
		}
		if out == 0 || v < out {
			out = v
		}
	}
	return out
}

// PriceDiff is one configuration whose prices differ between live and staging.
type PriceDiff struct {
	CompositeKey string `json:"composite_key"`
	Old          Prices `json:"old"`
	New          Prices `json:"new"`
}
