// Package confidence turns partial evidence about a subject into a
// 0-100 fit score. Pure computation, no I/O.
package confidence

import (
	"math"
	"strings"

	"github.com/sells-group/prospect-cli/internal/model"
)

// EvidenceType classifies where a piece of evidence came from.
type EvidenceType string

const (
	EvidenceOfficialWebsite  EvidenceType = "official_website"
	EvidenceScrapedContent   EvidenceType = "scraped_content"
	EvidenceDirectoryListing EvidenceType = "directory_listing"
	EvidenceAISynthesis      EvidenceType = "ai_synthesis"
	EvidenceSocialProfile    EvidenceType = "social_profile"
)

// Base weights per evidence type. Relative ordering matters more than
// the literal values: a verified official website outranks scraped
// content, which outranks directory listings and synthesis.
var typeWeights = map[EvidenceType]float64{
	EvidenceOfficialWebsite:  40,
	EvidenceScrapedContent:   20,
	EvidenceDirectoryListing: 15,
	EvidenceAISynthesis:      15,
	EvidenceSocialProfile:    10,
}

// Corroboration bonus decay. The second source of a type contributes
// half its base weight, the third a quarter, capped at maxCorroborated
// sources per type.
const (
	corroborationDecay = 0.5
	maxCorroborated    = 3
)

// Evidence is one piece of external intelligence about a subject.
type Evidence struct {
	Type    EvidenceType
	Domain  string
	Signals []string
}

// Accumulator tracks the running score for one subject within one run.
// It is deterministic and safe to use without a lock from a single
// goroutine; the score never decreases.
type Accumulator struct {
	subject model.Subject
	score   float64
	seen    map[EvidenceType]int
}

// NewAccumulator creates an accumulator starting at zero confidence.
func NewAccumulator(subject model.Subject) *Accumulator {
	return &Accumulator{
		subject: subject,
		seen:    make(map[EvidenceType]int),
	}
}

// Score returns the current confidence in [0,100].
func (a *Accumulator) Score() float64 {
	return a.score
}

// Add applies one piece of evidence and returns the updated score.
// Adding evidence never lowers the score.
func (a *Accumulator) Add(ev Evidence) float64 {
	if CertainMatch(a.subject, ev) {
		a.score = 100
		a.seen[ev.Type]++
		return a.score
	}

	prior := a.seen[ev.Type]
	a.seen[ev.Type]++

	delta := weightAfterCorroboration(ev.Type, prior)
	delta += signalBonus(a.subject, ev.Signals)

	next := clamp(a.score + delta)
	if next > a.score {
		a.score = next
	}
	return a.score
}

// weightAfterCorroboration applies diminishing returns for repeated
// sources of the same type.
func weightAfterCorroboration(t EvidenceType, prior int) float64 {
	w, ok := typeWeights[t]
	if !ok {
		return 0
	}
	if prior >= maxCorroborated {
		return 0
	}
	return w * math.Pow(corroborationDecay, float64(prior))
}

// signalBonus rewards evidence whose signals mention the subject's own
// specialty, capped at 10 points per piece of evidence.
func signalBonus(subject model.Subject, signals []string) float64 {
	specialty := strings.ToLower(strings.TrimSpace(subject.Specialty))
	if specialty == "" {
		return 0
	}
	bonus := 0.0
	for _, sig := range signals {
		if strings.Contains(strings.ToLower(sig), specialty) {
			bonus += 5
		}
	}
	return math.Min(bonus, 10)
}

// CertainMatch reports a high-confidence override: the evidence domain
// contains the subject's surname and an independent signal mentions
// the subject's specialty. When true the score is set directly to 100.
func CertainMatch(subject model.Subject, ev Evidence) bool {
	surname := subject.Surname()
	if surname == "" || ev.Domain == "" {
		return false
	}
	if !strings.Contains(strings.ToLower(ev.Domain), surname) {
		return false
	}
	specialty := strings.ToLower(strings.TrimSpace(subject.Specialty))
	if specialty == "" {
		return false
	}
	for _, sig := range ev.Signals {
		if strings.Contains(strings.ToLower(sig), specialty) {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
