package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
)

func testSubject() model.Subject {
	return model.Subject{
		ID:        "s1",
		Name:      "Dr. Jane Smith",
		Practice:  "Smith Dermatology",
		Specialty: "Dermatology",
	}
}

func TestAccumulator_StartsAtZero(t *testing.T) {
	acc := NewAccumulator(testSubject())
	assert.Zero(t, acc.Score())
}

func TestAccumulator_BaseWeights(t *testing.T) {
	tests := []struct {
		name     string
		evType   EvidenceType
		expected float64
	}{
		{"official website", EvidenceOfficialWebsite, 40},
		{"scraped content", EvidenceScrapedContent, 20},
		{"directory listing", EvidenceDirectoryListing, 15},
		{"ai synthesis", EvidenceAISynthesis, 15},
		{"social profile", EvidenceSocialProfile, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := NewAccumulator(testSubject())
			got := acc.Add(Evidence{Type: tt.evType})
			assert.InDelta(t, tt.expected, got, 0.001)
		})
	}
}

func TestAccumulator_UnknownTypeContributesNothing(t *testing.T) {
	acc := NewAccumulator(testSubject())
	got := acc.Add(Evidence{Type: EvidenceType("carrier_pigeon")})
	assert.Zero(t, got)
}

func TestAccumulator_DiminishingCorroboration(t *testing.T) {
	acc := NewAccumulator(testSubject())

	first := acc.Add(Evidence{Type: EvidenceDirectoryListing})
	assert.InDelta(t, 15, first, 0.001)

	second := acc.Add(Evidence{Type: EvidenceDirectoryListing})
	assert.InDelta(t, 15+7.5, second, 0.001)

	third := acc.Add(Evidence{Type: EvidenceDirectoryListing})
	assert.InDelta(t, 15+7.5+3.75, third, 0.001)

	// Fourth source of the same type is past the corroboration cap.
	fourth := acc.Add(Evidence{Type: EvidenceDirectoryListing})
	assert.InDelta(t, third, fourth, 0.001)
}

func TestAccumulator_NeverDecreases(t *testing.T) {
	acc := NewAccumulator(testSubject())

	prev := acc.Score()
	evidence := []Evidence{
		{Type: EvidenceOfficialWebsite},
		{Type: EvidenceScrapedContent, Signals: []string{"board-certified dermatology clinic"}},
		{Type: EvidenceType("unknown")},
		{Type: EvidenceDirectoryListing},
		{Type: EvidenceDirectoryListing},
		{Type: EvidenceSocialProfile},
	}
	for _, ev := range evidence {
		got := acc.Add(ev)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestAccumulator_ClampsAt100(t *testing.T) {
	acc := NewAccumulator(testSubject())
	for i := 0; i < 20; i++ {
		acc.Add(Evidence{Type: EvidenceOfficialWebsite, Signals: []string{"dermatology"}})
		acc.Add(Evidence{Type: EvidenceScrapedContent, Signals: []string{"dermatology"}})
	}
	assert.LessOrEqual(t, acc.Score(), 100.0)
	assert.InDelta(t, 100, acc.Score(), 0.001)
}

func TestAccumulator_SignalBonusCapped(t *testing.T) {
	acc := NewAccumulator(testSubject())
	got := acc.Add(Evidence{
		Type: EvidenceSocialProfile,
		Signals: []string{
			"dermatology practice", "cosmetic dermatology", "dermatology fellowship",
		},
	})
	// 10 base + bonus capped at 10, not 15.
	assert.InDelta(t, 20, got, 0.001)
}

func TestAccumulator_SignalBonusRequiresSpecialty(t *testing.T) {
	subject := testSubject()
	subject.Specialty = ""
	acc := NewAccumulator(subject)
	got := acc.Add(Evidence{Type: EvidenceSocialProfile, Signals: []string{"dermatology"}})
	assert.InDelta(t, 10, got, 0.001)
}

func TestCertainMatch(t *testing.T) {
	subject := testSubject()

	tests := []struct {
		name     string
		evidence Evidence
		expected bool
	}{
		{
			"surname in domain plus specialty signal",
			Evidence{Type: EvidenceOfficialWebsite, Domain: "smithderm.com", Signals: []string{"Dermatology services"}},
			true,
		},
		{
			"surname in domain without specialty signal",
			Evidence{Type: EvidenceOfficialWebsite, Domain: "smithderm.com", Signals: []string{"contact us"}},
			false,
		},
		{
			"specialty signal without surname domain",
			Evidence{Type: EvidenceOfficialWebsite, Domain: "healthgrades.com", Signals: []string{"dermatology"}},
			false,
		},
		{
			"empty domain",
			Evidence{Type: EvidenceAISynthesis, Signals: []string{"dermatology"}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CertainMatch(subject, tt.evidence))
		})
	}
}

func TestCertainMatch_SetsScoreTo100(t *testing.T) {
	acc := NewAccumulator(testSubject())
	acc.Add(Evidence{Type: EvidenceDirectoryListing})

	got := acc.Add(Evidence{
		Type:    EvidenceOfficialWebsite,
		Domain:  "www.smithdermatology.com",
		Signals: []string{"Comprehensive dermatology care"},
	})
	require.InDelta(t, 100, got, 0.001)

	// Later weak evidence cannot pull it back down.
	after := acc.Add(Evidence{Type: EvidenceType("unknown")})
	assert.InDelta(t, 100, after, 0.001)
}

func TestAccumulator_Deterministic(t *testing.T) {
	evidence := []Evidence{
		{Type: EvidenceDirectoryListing, Signals: []string{"dermatology"}},
		{Type: EvidenceScrapedContent},
		{Type: EvidenceAISynthesis, Signals: []string{"skin care"}},
	}

	a := NewAccumulator(testSubject())
	b := NewAccumulator(testSubject())
	for _, ev := range evidence {
		a.Add(ev)
		b.Add(ev)
	}
	assert.Equal(t, a.Score(), b.Score())
}
