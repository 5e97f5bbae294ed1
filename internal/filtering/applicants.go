package filtering

import "github.com/spigell/convocatorias/internal/convocatoria"

// Applicants is the list being filtered. Filters keep the original order.
type Applicants struct {
	Items []*convocatoria.Applicant
}

func New(items []*convocatoria.Applicant) *Applicants {
	return &Applicants{Items: append([]*convocatoria.Applicant(nil), items...)}
}

func (a *Applicants) Len() int {
	return len(a.Items)
}

// Keep retains the applicants accepted by fn and returns the IDs of the
// dropped ones.
func (a *Applicants) Keep(fn func(*convocatoria.Applicant) bool) []string {
	var dropped []string
	kept := a.Items[:0]
	for _, applicant := range a.Items {
		if fn(applicant) {
			kept = append(kept, applicant)
			continue
		}
		dropped = append(dropped, applicant.ID)
	}
	a.Items = kept
	return dropped
}
