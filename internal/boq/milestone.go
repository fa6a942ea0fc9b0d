// internal/boq/milestone.go
package boq

// Milestone is one payment/progress checkpoint of a project.
type Milestone struct {
	Order int    `bson:"order" json:"order"`
	Name  string `bson:"name" json:"name"`
}

// Fixed fallback milestone sets, keyed by project type, used when the
// project has no BOQ attached.
var defaultMilestones = map[string][]string{
	"new_build":  {"Persiapan", "Pondasi", "Struktur", "Finishing", "Serah Terima"},
	"renovation": {"Persiapan", "Pembongkaran", "Pengerjaan", "Finishing", "Serah Terima"},
	"interior":   {"Desain", "Produksi", "Instalasi", "Serah Terima"},
}

var fallbackMilestones = []string{"Persiapan", "Pengerjaan", "Serah Terima"}

// Milestones derives the project milestone list: one milestone per stage,
// in stage order. Without a BOQ the default set for the project type is
// substituted.
func Milestones(b *BillOfQuantities, projectType string) []Milestone {
	var names []string
	if b != nil && len(b.Stages) > 0 {
		for _, s := range b.Stages {
			names = append(names, s.Name)
		}
	} else if set, ok := defaultMilestones[projectType]; ok {
		names = set
	} else {
		names = fallbackMilestones
	}

	milestones := make([]Milestone, 0, len(names))
	for i, name := range names {
		milestones = append(milestones, Milestone{Order: i + 1, Name: name})
	}
	return milestones
}
