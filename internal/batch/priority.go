package batch

import (
	"sort"
	"strings"

	"github.com/sells-group/prospect-cli/internal/model"
)

// orderSubjects returns the processing order. Without prioritization
// the input order is preserved. With it, a stable three-key sort runs:
// high-value specialty first, then known contact fields descending,
// then display name ascending. Ordering only affects window
// membership, not completion order within a window.
func orderSubjects(subjects []model.Subject, opts Options) []model.Subject {
	ordered := make([]model.Subject, len(subjects))
	copy(ordered, subjects)

	if !opts.PrioritizeHighValue {
		return ordered
	}

	highValue := make(map[string]bool, len(opts.HighValueSpecialties))
	for _, s := range opts.HighValueSpecialties {
		highValue[strings.ToLower(strings.TrimSpace(s))] = true
	}
	isHighValue := func(s model.Subject) bool {
		return highValue[strings.ToLower(strings.TrimSpace(s.Specialty))]
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		hi, hj := isHighValue(ordered[i]), isHighValue(ordered[j])
		if hi != hj {
			return hi
		}
		ci, cj := ordered[i].KnownContactFields(), ordered[j].KnownContactFields()
		if ci != cj {
			return ci > cj
		}
		return ordered[i].Name < ordered[j].Name
	})

	return ordered
}
