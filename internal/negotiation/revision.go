// internal/negotiation/revision.go
package negotiation

import (
	"fmt"

	"construction-marketplace-api-server/internal/boq"
)

// PriceRevision addresses one line item inside a proposal's BOQ snapshot by
// its position in the tree and carries the new unit price for it.
type PriceRevision struct {
	Stage     int     `bson:"stage" json:"stage" binding:"min=0"`
	WorkType  int     `bson:"workType" json:"workType" binding:"min=0"`
	WorkItem  int     `bson:"workItem" json:"workItem" binding:"min=0"`
	Line      int     `bson:"line" json:"line" binding:"min=0"`
	UnitPrice float64 `bson:"unitPrice" json:"unitPrice" binding:"min=0"`
}

// ApplyRevisions writes each revised price into the snapshot as the
// negotiated unit price. The original price is materialized onto
// originalUnitPrice first (legacy documents may only carry unitPrice or
// pricePerUnit), so the aggregation engine can always show both sides.
func ApplyRevisions(b *boq.BillOfQuantities, revisions []PriceRevision) error {
	if b == nil {
		return boq.ErrNoBOQAttached
	}
	for _, rev := range revisions {
		li, err := locate(b, rev)
		if err != nil {
			return err
		}
		if li.OriginalUnitPrice == nil {
			original := li.OriginalPrice()
			li.OriginalUnitPrice = &original
		}
		price := rev.UnitPrice
		li.NegotiatedUnitPrice = &price
	}
	return nil
}

func locate(b *boq.BillOfQuantities, rev PriceRevision) (*boq.LineItem, error) {
	if rev.Stage >= len(b.Stages) {
		return nil, fmt.Errorf("price revision out of range: tahapan[%d]", rev.Stage)
	}
	stage := &b.Stages[rev.Stage]
	if rev.WorkType >= len(stage.WorkTypes) {
		return nil, fmt.Errorf("price revision out of range: tahapan[%d].jenisKerja[%d]", rev.Stage, rev.WorkType)
	}
	wt := &stage.WorkTypes[rev.WorkType]
	if rev.WorkItem >= len(wt.WorkItems) {
		return nil, fmt.Errorf("price revision out of range: tahapan[%d].jenisKerja[%d].uraian[%d]",
			rev.Stage, rev.WorkType, rev.WorkItem)
	}
	wi := &wt.WorkItems[rev.WorkItem]

	// Write into whichever shape the snapshot actually carries.
	lines := wi.Spec
	if len(lines) == 0 {
		lines = wi.Items
	}
	if rev.Line >= len(lines) {
		return nil, fmt.Errorf("price revision out of range: tahapan[%d].jenisKerja[%d].uraian[%d] line %d",
			rev.Stage, rev.WorkType, rev.WorkItem, rev.Line)
	}
	return &lines[rev.Line], nil
}
