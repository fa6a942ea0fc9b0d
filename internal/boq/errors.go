// internal/boq/errors.go
package boq

import (
	"errors"
	"fmt"
)

// ErrNoBOQAttached means none of the attachment points on the project held
// a bill of quantities. Callers surface this as "no BOQ attached", not as a
// failure.
var ErrNoBOQAttached = errors.New("no bill of quantities attached to project")

// MalformedBOQError flags a structurally impossible tree, e.g. a stage with
// no jenisKerja array at all. An *empty* array is a valid editing state and
// never triggers this.
type MalformedBOQError struct {
	Path   string // e.g. "tahapan[2].jenisKerja[0]"
	Reason string
}

func (e *MalformedBOQError) Error() string {
	return fmt.Sprintf("malformed bill of quantities at %s: %s", e.Path, e.Reason)
}

// Validate checks the tree for structural impossibilities. Missing child
// arrays (nil, absent in the document) are malformed; empty ones are fine.
func Validate(b *BillOfQuantities) error {
	if b == nil {
		return ErrNoBOQAttached
	}
	for i, s := range b.Stages {
		if s.WorkTypes == nil {
			return &MalformedBOQError{
				Path:   fmt.Sprintf("tahapan[%d]", i),
				Reason: "jenisKerja array is missing",
			}
		}
		for j, wt := range s.WorkTypes {
			if wt.WorkItems == nil {
				return &MalformedBOQError{
					Path:   fmt.Sprintf("tahapan[%d].jenisKerja[%d]", i, j),
					Reason: "uraian array is missing",
				}
			}
			for k, wi := range wt.WorkItems {
				if wi.Spec == nil && wi.Items == nil {
					return &MalformedBOQError{
						Path:   fmt.Sprintf("tahapan[%d].jenisKerja[%d].uraian[%d]", i, j, k),
						Reason: "neither spec nor items array is present",
					}
				}
			}
		}
	}
	return nil
}
