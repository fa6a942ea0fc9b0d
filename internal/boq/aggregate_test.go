package boq

import (
	"math"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestEffectivePriceAndLineTotal(t *testing.T) {
	tests := []struct {
		name      string
		item      LineItem
		wantPrice float64
		wantTotal float64
	}{
		{
			name:      "no override",
			item:      LineItem{Unit: "m³", Volume: 45, OriginalUnitPrice: f(125000)},
			wantPrice: 125000,
			wantTotal: 5625000,
		},
		{
			name:      "negotiated override wins",
			item:      LineItem{Unit: "m³", Volume: 45, OriginalUnitPrice: f(125000), NegotiatedUnitPrice: f(110000)},
			wantPrice: 110000,
			wantTotal: 4950000,
		},
		{
			name:      "negotiated equal to original is not an override",
			item:      LineItem{Volume: 10, OriginalUnitPrice: f(500), NegotiatedUnitPrice: f(500)},
			wantPrice: 500,
			wantTotal: 5000,
		},
		{
			name:      "legacy unitPrice alias",
			item:      LineItem{Volume: 2, UnitPrice: f(750)},
			wantPrice: 750,
			wantTotal: 1500,
		},
		{
			name:      "legacy pricePerUnit alias",
			item:      LineItem{Volume: 2, PricePerUnit: f(750)},
			wantPrice: 750,
			wantTotal: 1500,
		},
		{
			name:      "originalUnitPrice outranks legacy aliases",
			item:      LineItem{Volume: 1, OriginalUnitPrice: f(100), UnitPrice: f(200), PricePerUnit: f(300)},
			wantPrice: 100,
			wantTotal: 100,
		},
		{
			name:      "missing volume contributes zero",
			item:      LineItem{OriginalUnitPrice: f(125000)},
			wantPrice: 125000,
			wantTotal: 0,
		},
		{
			name:      "missing price contributes zero",
			item:      LineItem{Volume: 45},
			wantPrice: 0,
			wantTotal: 0,
		},
		{
			name:      "NaN volume is coerced to zero",
			item:      LineItem{Volume: math.NaN(), OriginalUnitPrice: f(125000)},
			wantPrice: 125000,
			wantTotal: 0,
		},
		{
			name:      "NaN price is coerced to zero",
			item:      LineItem{Volume: 45, OriginalUnitPrice: f(math.NaN())},
			wantPrice: 0,
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectivePrice(tt.item); got != tt.wantPrice {
				t.Errorf("EffectivePrice() = %v, want %v", got, tt.wantPrice)
			}
			got := LineTotal(tt.item)
			if math.IsNaN(got) {
				t.Fatalf("LineTotal() = NaN, want %v", tt.wantTotal)
			}
			if got != tt.wantTotal {
				t.Errorf("LineTotal() = %v, want %v", got, tt.wantTotal)
			}
		})
	}
}

func TestPriceDiff(t *testing.T) {
	tests := []struct {
		name string
		item LineItem
		want Diff
	}{
		{"no negotiated price", LineItem{OriginalUnitPrice: f(125000)}, Diff{}},
		{"lowered price", LineItem{OriginalUnitPrice: f(125000), NegotiatedUnitPrice: f(110000)}, Diff{HasOverride: true, Delta: -15000}},
		{"raised price", LineItem{OriginalUnitPrice: f(100), NegotiatedUnitPrice: f(150)}, Diff{HasOverride: true, Delta: 50}},
		{"echoed price is no override", LineItem{OriginalUnitPrice: f(100), NegotiatedUnitPrice: f(100)}, Diff{}},
		{"legacy alias as baseline", LineItem{UnitPrice: f(100), NegotiatedUnitPrice: f(80)}, Diff{HasOverride: true, Delta: -20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PriceDiff(tt.item); got != tt.want {
				t.Errorf("PriceDiff() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// The grand total must equal the flat sum of volume × effective price over
// every line item, independent of how the tree is shaped.
func TestGrandTotalIndependentOfTreeShape(t *testing.T) {
	lines := []LineItem{
		{Volume: 45, OriginalUnitPrice: f(125000), NegotiatedUnitPrice: f(110000)},
		{Volume: 10, OriginalUnitPrice: f(50000)},
		{Volume: 3, UnitPrice: f(200000)},
		{Volume: 7, OriginalUnitPrice: f(15000)},
	}
	var want float64
	for _, li := range lines {
		want += LineTotal(li)
	}

	flat := &BillOfQuantities{Stages: []Stage{
		{Name: "All", WorkTypes: []WorkType{
			{Name: "All", WorkItems: []WorkItem{{Name: "All", Spec: lines}}},
		}},
	}}

	nested := &BillOfQuantities{Stages: []Stage{
		{Name: "Tahap 1", WorkTypes: []WorkType{
			{Name: "Struktur", WorkItems: []WorkItem{
				{Name: "Beton", Spec: lines[:1]},
				{Name: "Besi", Spec: lines[1:2]},
			}},
		}},
		{Name: "Tahap 2", WorkTypes: []WorkType{
			{Name: "Finishing", WorkItems: []WorkItem{{Name: "Cat", Spec: lines[2:3]}}},
			{Name: "Lain-lain", WorkItems: []WorkItem{{Name: "Misc", Spec: lines[3:]}}},
		}},
	}}

	if got := GrandTotal(flat); got != want {
		t.Errorf("GrandTotal(flat) = %v, want %v", got, want)
	}
	if got := GrandTotal(nested); got != want {
		t.Errorf("GrandTotal(nested) = %v, want %v", got, want)
	}
	// Repetition must not change anything: the engine holds no state.
	if first, second := GrandTotal(nested), GrandTotal(nested); first != second {
		t.Errorf("GrandTotal not deterministic: %v then %v", first, second)
	}
}

// A work item using the legacy flat items/unitPrice shape must total
// identically to one using spec/originalUnitPrice with the same numbers.
func TestLegacyShapeEquivalence(t *testing.T) {
	modern := WorkItem{Name: "Pasangan bata", Spec: []LineItem{
		{Volume: 120, OriginalUnitPrice: f(85000)},
		{Volume: 60, OriginalUnitPrice: f(42000)},
	}}
	legacy := WorkItem{Name: "Pasangan bata", Items: []LineItem{
		{Volume: 120, UnitPrice: f(85000)},
		{Volume: 60, UnitPrice: f(42000)},
	}}

	if m, l := WorkItemTotal(modern), WorkItemTotal(legacy); m != l {
		t.Errorf("WorkItemTotal mismatch: modern %v, legacy %v", m, l)
	}
}

func TestGrandTotalNilAndEmpty(t *testing.T) {
	if got := GrandTotal(nil); got != 0 {
		t.Errorf("GrandTotal(nil) = %v, want 0", got)
	}
	if got := GrandTotal(&BillOfQuantities{}); got != 0 {
		t.Errorf("GrandTotal(empty) = %v, want 0", got)
	}
}

func TestSummarize(t *testing.T) {
	b := &BillOfQuantities{
		Title: "RAB Renovasi",
		Stages: []Stage{
			{Name: "Persiapan", WorkTypes: []WorkType{
				{Name: "Pembersihan", WorkItems: []WorkItem{
					{Name: "Lahan", Spec: []LineItem{
						{Description: "Galian", Unit: "m³", Volume: 45, OriginalUnitPrice: f(125000), NegotiatedUnitPrice: f(110000)},
						{Description: "Urugan", Unit: "m³", Volume: 10, OriginalUnitPrice: f(50000)},
					}},
				}},
			}},
		},
	}

	sum := Summarize(b)
	if sum.GrandTotal != 4950000+500000 {
		t.Fatalf("GrandTotal = %v, want %v", sum.GrandTotal, 4950000+500000)
	}
	if len(sum.Stages) != 1 || len(sum.Stages[0].WorkTypes) != 1 {
		t.Fatalf("unexpected summary shape: %+v", sum)
	}
	line := sum.Stages[0].WorkTypes[0].WorkItems[0].Lines[0]
	if !line.Diff.HasOverride || line.Diff.Delta != -15000 {
		t.Errorf("line diff = %+v, want override with delta -15000", line.Diff)
	}
	if line.EffectivePrice != 110000 || line.LineTotal != 4950000 {
		t.Errorf("line = %+v, want effective 110000 total 4950000", line)
	}
	if sum.Stages[0].Total != sum.GrandTotal {
		t.Errorf("stage total %v != grand total %v", sum.Stages[0].Total, sum.GrandTotal)
	}
}
