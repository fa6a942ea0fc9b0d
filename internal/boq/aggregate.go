// internal/boq/aggregate.go
package boq

import "math"

// The aggregation engine is read-only: it never mutates the tree and the
// same inputs always produce the same totals. A BOQ under active editing
// legitimately has empty fields, so missing or malformed numbers are
// coerced to 0 instead of failing or poisoning the totals with NaN.

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// EffectivePrice resolves the unit price a line is billed at, negotiated
// override first.
func EffectivePrice(li LineItem) float64 {
	return li.Overlay().Effective()
}

// LineTotal = volume × effective unit price.
func LineTotal(li LineItem) float64 {
	return sanitize(li.Volume) * EffectivePrice(li)
}

func WorkItemTotal(wi WorkItem) float64 {
	var total float64
	for _, li := range wi.LineItems() {
		total += LineTotal(li)
	}
	return total
}

func WorkTypeTotal(wt WorkType) float64 {
	var total float64
	for _, wi := range wt.WorkItems {
		total += WorkItemTotal(wi)
	}
	return total
}

func StageTotal(s Stage) float64 {
	var total float64
	for _, wt := range s.WorkTypes {
		total += WorkTypeTotal(wt)
	}
	return total
}

// GrandTotal rolls every stage up to the project total.
func GrandTotal(b *BillOfQuantities) float64 {
	if b == nil {
		return 0
	}
	var total float64
	for _, s := range b.Stages {
		total += StageTotal(s)
	}
	return total
}

// Diff describes how far a negotiated price moved from the original one.
type Diff struct {
	HasOverride bool    `json:"hasOverride"`
	Delta       float64 `json:"delta"`
}

// PriceDiff returns the override delta for one line. A negotiated price
// equal to the original is not an override.
func PriceDiff(li LineItem) Diff {
	original := li.OriginalPrice()
	if li.NegotiatedUnitPrice == nil || sanitize(*li.NegotiatedUnitPrice) == original {
		return Diff{}
	}
	return Diff{HasOverride: true, Delta: sanitize(*li.NegotiatedUnitPrice) - original}
}

// Summary mirrors the tree with totals computed at every level, ready for
// display without re-walking the document.
type Summary struct {
	Title      string         `json:"title"`
	Stages     []StageSummary `json:"tahapan"`
	GrandTotal float64        `json:"grandTotal"`
}

type StageSummary struct {
	Name      string            `json:"name"`
	WorkTypes []WorkTypeSummary `json:"jenisKerja"`
	Total     float64           `json:"total"`
}

type WorkTypeSummary struct {
	Name      string            `json:"name"`
	WorkItems []WorkItemSummary `json:"uraian"`
	Total     float64           `json:"total"`
}

type WorkItemSummary struct {
	Name  string        `json:"name"`
	Lines []LineSummary `json:"lines"`
	Total float64       `json:"total"`
}

type LineSummary struct {
	Description    string  `json:"description"`
	Unit           string  `json:"unit"`
	Volume         float64 `json:"volume"`
	OriginalPrice  float64 `json:"originalUnitPrice"`
	EffectivePrice float64 `json:"effectiveUnitPrice"`
	LineTotal      float64 `json:"lineTotal"`
	Diff           Diff    `json:"diff"`
}

// Summarize computes the display view of a BOQ in one pass.
func Summarize(b *BillOfQuantities) Summary {
	sum := Summary{}
	if b == nil {
		return sum
	}
	sum.Title = b.Title
	for _, s := range b.Stages {
		ss := StageSummary{Name: s.Name}
		for _, wt := range s.WorkTypes {
			wts := WorkTypeSummary{Name: wt.Name}
			for _, wi := range wt.WorkItems {
				wis := WorkItemSummary{Name: wi.Name}
				for _, li := range wi.LineItems() {
					ls := LineSummary{
						Description:    li.Description,
						Unit:           li.Unit,
						Volume:         sanitize(li.Volume),
						OriginalPrice:  li.OriginalPrice(),
						EffectivePrice: EffectivePrice(li),
						LineTotal:      LineTotal(li),
						Diff:           PriceDiff(li),
					}
					wis.Total += ls.LineTotal
					wis.Lines = append(wis.Lines, ls)
				}
				wts.Total += wis.Total
				wts.WorkItems = append(wts.WorkItems, wis)
			}
			ss.Total += wts.Total
			ss.WorkTypes = append(ss.WorkTypes, wts)
		}
		sum.GrandTotal += ss.Total
		sum.Stages = append(sum.Stages, ss)
	}
	return sum
}
