package negotiation

import (
	"errors"
	"testing"

	"construction-marketplace-api-server/internal/boq"
)

func f(v float64) *float64 { return &v }

func snapshot() *boq.BillOfQuantities {
	return &boq.BillOfQuantities{Stages: []boq.Stage{
		{Name: "Tahap 1", WorkTypes: []boq.WorkType{
			{Name: "Struktur", WorkItems: []boq.WorkItem{
				{Name: "Beton", Spec: []boq.LineItem{
					{Description: "Galian", Unit: "m³", Volume: 45, OriginalUnitPrice: f(125000)},
					{Description: "Urugan", Unit: "m³", Volume: 10, OriginalUnitPrice: f(50000)},
				}},
				// Legacy flat shape priced through unitPrice.
				{Name: "Besi", Items: []boq.LineItem{
					{Description: "Tulangan", Unit: "kg", Volume: 300, UnitPrice: f(14000)},
				}},
			}},
		}},
	}}
}

func TestApplyRevisionsWritesOverlay(t *testing.T) {
	b := snapshot()
	err := ApplyRevisions(b, []PriceRevision{
		{Stage: 0, WorkType: 0, WorkItem: 0, Line: 0, UnitPrice: 110000},
	})
	if err != nil {
		t.Fatalf("ApplyRevisions() = %v", err)
	}

	li := b.Stages[0].WorkTypes[0].WorkItems[0].Spec[0]
	if li.NegotiatedUnitPrice == nil || *li.NegotiatedUnitPrice != 110000 {
		t.Fatalf("negotiated price not written: %+v", li)
	}
	if li.OriginalUnitPrice == nil || *li.OriginalUnitPrice != 125000 {
		t.Errorf("original price not preserved: %+v", li)
	}
	if got := boq.LineTotal(li); got != 4950000 {
		t.Errorf("LineTotal after revision = %v, want 4950000", got)
	}

	// Untouched sibling keeps its numbers.
	if sibling := b.Stages[0].WorkTypes[0].WorkItems[0].Spec[1]; sibling.NegotiatedUnitPrice != nil {
		t.Errorf("sibling line gained an override: %+v", sibling)
	}
}

// Revising a legacy-shaped work item must materialize originalUnitPrice
// from the alias so both sides of the negotiation stay visible.
func TestApplyRevisionsLegacyShape(t *testing.T) {
	b := snapshot()
	err := ApplyRevisions(b, []PriceRevision{
		{Stage: 0, WorkType: 0, WorkItem: 1, Line: 0, UnitPrice: 12500},
	})
	if err != nil {
		t.Fatalf("ApplyRevisions() = %v", err)
	}

	li := b.Stages[0].WorkTypes[0].WorkItems[1].Items[0]
	if li.OriginalUnitPrice == nil || *li.OriginalUnitPrice != 14000 {
		t.Fatalf("original not materialized from unitPrice alias: %+v", li)
	}
	if li.NegotiatedUnitPrice == nil || *li.NegotiatedUnitPrice != 12500 {
		t.Fatalf("negotiated price not written: %+v", li)
	}
	if d := boq.PriceDiff(li); !d.HasOverride || d.Delta != -1500 {
		t.Errorf("PriceDiff = %+v, want override with delta -1500", d)
	}
}

// A resubmission overwrites the overlay in place.
func TestApplyRevisionsOverwrites(t *testing.T) {
	b := snapshot()
	revs := []PriceRevision{{Stage: 0, WorkType: 0, WorkItem: 0, Line: 0, UnitPrice: 110000}}
	if err := ApplyRevisions(b, revs); err != nil {
		t.Fatal(err)
	}
	revs[0].UnitPrice = 118000
	if err := ApplyRevisions(b, revs); err != nil {
		t.Fatal(err)
	}

	li := b.Stages[0].WorkTypes[0].WorkItems[0].Spec[0]
	if *li.NegotiatedUnitPrice != 118000 {
		t.Errorf("overlay not overwritten: %v", *li.NegotiatedUnitPrice)
	}
	if *li.OriginalUnitPrice != 125000 {
		t.Errorf("original lost on overwrite: %v", *li.OriginalUnitPrice)
	}
}

func TestApplyRevisionsOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		rev  PriceRevision
	}{
		{"stage", PriceRevision{Stage: 5}},
		{"work type", PriceRevision{WorkType: 9}},
		{"work item", PriceRevision{WorkItem: 7}},
		{"line", PriceRevision{Line: 99}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ApplyRevisions(snapshot(), []PriceRevision{tt.rev}); err == nil {
				t.Error("ApplyRevisions() = nil, want out-of-range error")
			}
		})
	}
}

func TestApplyRevisionsNilBOQ(t *testing.T) {
	err := ApplyRevisions(nil, nil)
	if !errors.Is(err, boq.ErrNoBOQAttached) {
		t.Errorf("ApplyRevisions(nil) = %v, want ErrNoBOQAttached", err)
	}
}
