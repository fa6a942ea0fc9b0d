// internal/boq/resolve.go
package boq

// A BOQ is owned by exactly one project but may be referenced from several
// legacy attachment points on the project document. ReferenceOrder is the
// resolution precedence; it is a compatibility contract, not an accident.
var ReferenceOrder = [...]string{
	"boq",              // direct field
	"attachedBoq",      // attachment envelope
	"originalData.boq", // legacy "original data" envelope
}

// Resolve picks the first candidate that actually carries stages. Callers
// pass candidates in ReferenceOrder. A candidate that exists but has an
// empty tahapan array does not win; the next attachment point is tried.
func Resolve(candidates ...*BillOfQuantities) (*BillOfQuantities, error) {
	for _, b := range candidates {
		if b != nil && len(b.Stages) > 0 {
			return b, nil
		}
	}
	return nil, ErrNoBOQAttached
}
