// internal/boq/types.go
package boq

// PriceOverlay giữ giá gốc và giá thương lượng cạnh nhau trên cùng một dòng.
// The negotiated price only wins when it is present AND different from the
// original, so an echo of the same number is not treated as an override.
type PriceOverlay struct {
	Original   float64  `bson:"original" json:"original"`
	Negotiated *float64 `bson:"negotiated,omitempty" json:"negotiated,omitempty"`
}

// Effective returns the unit price the aggregation uses for this line.
func (p PriceOverlay) Effective() float64 {
	if p.Negotiated != nil && *p.Negotiated != p.Original {
		return sanitize(*p.Negotiated)
	}
	return sanitize(p.Original)
}

// LineItem is the leaf cost unit ("Spec") of a bill of quantities.
// Legacy documents may carry the original unit price under "unitPrice" or
// "pricePerUnit" instead of "originalUnitPrice"; all three decode side by
// side and OriginalPrice resolves them in that order.
type LineItem struct {
	Description         string   `bson:"description" json:"description"`
	Unit                string   `bson:"unit" json:"unit"` // e.g. "m²", "m³", "ls"
	Volume              float64  `bson:"volume,omitempty" json:"volume"`
	OriginalUnitPrice   *float64 `bson:"originalUnitPrice,omitempty" json:"originalUnitPrice,omitempty"`
	UnitPrice           *float64 `bson:"unitPrice,omitempty" json:"unitPrice,omitempty"`         // legacy alias
	PricePerUnit        *float64 `bson:"pricePerUnit,omitempty" json:"pricePerUnit,omitempty"`   // legacy alias
	NegotiatedUnitPrice *float64 `bson:"negotiatedUnitPrice,omitempty" json:"negotiatedUnitPrice,omitempty"`
}

// OriginalPrice resolves the stored unit price across the legacy aliases.
func (li LineItem) OriginalPrice() float64 {
	for _, p := range []*float64{li.OriginalUnitPrice, li.UnitPrice, li.PricePerUnit} {
		if p != nil {
			return sanitize(*p)
		}
	}
	return 0
}

// Overlay builds the two-field price view for this line.
func (li LineItem) Overlay() PriceOverlay {
	return PriceOverlay{Original: li.OriginalPrice(), Negotiated: li.NegotiatedUnitPrice}
}

// WorkItem ("Uraian") groups line items. New documents store them under
// "spec", legacy proposals under a flat "items" array; both shapes must
// aggregate identically.
type WorkItem struct {
	Name  string     `bson:"name" json:"name"`
	Spec  []LineItem `bson:"spec,omitempty" json:"spec,omitempty"`
	Items []LineItem `bson:"items,omitempty" json:"items,omitempty"` // legacy shape
}

// LineItems returns whichever shape the document carries, "spec" first.
func (wi WorkItem) LineItems() []LineItem {
	if len(wi.Spec) > 0 {
		return wi.Spec
	}
	return wi.Items
}

// WorkType ("JenisKerja") groups work items.
type WorkType struct {
	Name      string     `bson:"name" json:"name"`
	WorkItems []WorkItem `bson:"uraian" json:"uraian"`
}

// Stage ("Tahapan") groups work types. The project's milestone list is
// derived one-to-one from the stage sequence.
type Stage struct {
	Name      string     `bson:"name" json:"name"`
	WorkTypes []WorkType `bson:"jenisKerja" json:"jenisKerja"`
}

// BillOfQuantities is the full four-level cost breakdown of one project.
type BillOfQuantities struct {
	Title  string  `bson:"title" json:"title"`
	Stages []Stage `bson:"tahapan" json:"tahapan"`
}
