// Package aggregate derives summary statistics from a settled batch.
// Pure computation: identical inputs always produce identical output.
package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Priority tier thresholds on the 0-100 confidence scale.
const (
	HighPriorityThreshold   = 80
	MediumPriorityThreshold = 60
)

// topSpecialtyCount caps the "top categories" ranking.
const topSpecialtyCount = 5

// failRateAlertThreshold is the failure fraction above which the
// summary recommends investigating connectivity or data quality.
const failRateAlertThreshold = 0.2

// SpecialtyRank is one entry in the top-categories ranking.
type SpecialtyRank struct {
	Specialty      string  `json:"specialty"`
	Count          int     `json:"count"`
	MeanConfidence float64 `json:"mean_confidence"`
}

// Summary is the read-only aggregate view of a finished batch.
type Summary struct {
	TotalAnalyzed       int             `json:"total_analyzed"`
	Completed           int             `json:"completed"`
	Failed              int             `json:"failed"`
	MeanConfidence      float64         `json:"mean_confidence"`
	HighPriorityLeads   int             `json:"high_priority_leads"`
	MediumPriorityLeads int             `json:"medium_priority_leads"`
	LowPriorityLeads    int             `json:"low_priority_leads"`
	TopSpecialties      []SpecialtyRank `json:"top_specialties"`
	Recommendations     []string        `json:"recommendations"`
}

type specialtyAgg struct {
	count int
	sum   float64
}

// Summarize computes the aggregate view of a settled batch. Items
// flagged low-confidence count toward totals but are excluded from the
// high/medium priority tiers.
func Summarize(items []model.BatchItem) Summary {
	s := Summary{TotalAnalyzed: len(items)}

	bySpecialty := make(map[string]*specialtyAgg)

	var confidenceSum float64
	for _, item := range items {
		switch item.Status {
		case model.StatusFailed:
			s.Failed++
			continue
		case model.StatusCompleted:
		default:
			continue
		}

		s.Completed++
		conf := 0.0
		if item.Result != nil {
			conf = item.Result.Confidence
		}
		confidenceSum += conf

		switch {
		case item.LowConfidence:
			s.LowPriorityLeads++
		case conf >= HighPriorityThreshold:
			s.HighPriorityLeads++
		case conf >= MediumPriorityThreshold:
			s.MediumPriorityLeads++
		default:
			s.LowPriorityLeads++
		}

		specialty := strings.TrimSpace(item.Subject.Specialty)
		if specialty == "" {
			specialty = "unspecified"
		}
		agg := bySpecialty[specialty]
		if agg == nil {
			agg = &specialtyAgg{}
			bySpecialty[specialty] = agg
		}
		agg.count++
		agg.sum += conf
	}

	if s.Completed > 0 {
		s.MeanConfidence = confidenceSum / float64(s.Completed)
	}

	s.TopSpecialties = rankSpecialties(bySpecialty)
	s.Recommendations = recommendations(s)
	return s
}

// rankSpecialties sorts specialties by mean confidence descending,
// breaking ties alphabetically so output is deterministic, and keeps
// the top entries.
func rankSpecialties(bySpecialty map[string]*specialtyAgg) []SpecialtyRank {
	ranks := make([]SpecialtyRank, 0, len(bySpecialty))
	for specialty, agg := range bySpecialty {
		ranks = append(ranks, SpecialtyRank{
			Specialty:      specialty,
			Count:          agg.count,
			MeanConfidence: agg.sum / float64(agg.count),
		})
	}

	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].MeanConfidence != ranks[j].MeanConfidence {
			return ranks[i].MeanConfidence > ranks[j].MeanConfidence
		}
		return ranks[i].Specialty < ranks[j].Specialty
	})

	if len(ranks) > topSpecialtyCount {
		ranks = ranks[:topSpecialtyCount]
	}
	return ranks
}

// recommendations produces rule-based guidance from the computed
// numbers alone.
func recommendations(s Summary) []string {
	var recs []string

	if s.Completed == 0 {
		recs = append(recs, "No subjects completed enrichment. Check provider credentials and input data before re-running.")
		return recs
	}

	if s.TotalAnalyzed > 0 {
		failRate := float64(s.Failed) / float64(s.TotalAnalyzed)
		if failRate > failRateAlertThreshold {
			recs = append(recs, fmt.Sprintf("Failure rate is %.0f%%. Investigate provider connectivity and input data quality.", failRate*100))
		}
	}

	switch {
	case s.MeanConfidence >= HighPriorityThreshold:
		recs = append(recs, "Overall lead quality is high. Proceed with outreach.")
	case s.MeanConfidence >= MediumPriorityThreshold:
		recs = append(recs, "Overall lead quality is moderate. Review medium-priority leads before outreach.")
	default:
		recs = append(recs, "Overall lead quality is low. Consider enriching with deeper stages or better input data.")
	}

	if s.HighPriorityLeads > 0 {
		recs = append(recs, fmt.Sprintf("%d high-priority leads are ready for immediate outreach.", s.HighPriorityLeads))
	}
	if s.LowPriorityLeads > s.Completed/2 {
		recs = append(recs, "More than half of completed leads scored low. Verify subject names and locations in the source file.")
	}

	return recs
}
