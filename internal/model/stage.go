package model

// Stage is one ordered phase of the progressive enrichment pipeline.
type Stage string

const (
	StageInstant  Stage = "instant"
	StageBasic    Stage = "basic"
	StageEnhanced Stage = "enhanced"
	StageDeep     Stage = "deep"
	StageComplete Stage = "complete"
)

// Stages is the fixed pipeline order.
var Stages = []Stage{StageInstant, StageBasic, StageEnhanced, StageDeep, StageComplete}

// Percent boundaries reached at the end of each stage. Design
// constants, not derived from timing.
const (
	PercentInstant  = 10
	PercentBasic    = 35
	PercentEnhanced = 65
	PercentDeep     = 95
	PercentComplete = 100
)

// EndPercent returns the percentComplete value a run reaches when the
// stage finishes.
func (s Stage) EndPercent() int {
	switch s {
	case StageInstant:
		return PercentInstant
	case StageBasic:
		return PercentBasic
	case StageEnhanced:
		return PercentEnhanced
	case StageDeep:
		return PercentDeep
	case StageComplete:
		return PercentComplete
	default:
		return 0
	}
}

// Index returns the stage's position in the pipeline order, or -1 for
// an unknown stage.
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// Capability is a downstream feature unlocked once percentComplete
// crosses its threshold.
type Capability string

const (
	CapabilityOutreachDraft    Capability = "outreach_draft"
	CapabilityLeadScoring      Capability = "lead_scoring"
	CapabilityCompetitiveBrief Capability = "competitive_brief"
)

// capabilityThresholds maps each capability to the percentComplete at
// which it unlocks.
var capabilityThresholds = []struct {
	cap       Capability
	threshold int
}{
	{CapabilityOutreachDraft, PercentInstant},
	{CapabilityLeadScoring, PercentBasic},
	{CapabilityCompetitiveBrief, PercentEnhanced},
}

// UnlockedCapabilities returns the capabilities available at the given
// percentComplete. Computed from progress, never from wall-clock time.
func UnlockedCapabilities(percent int) []Capability {
	var caps []Capability
	for _, ct := range capabilityThresholds {
		if percent >= ct.threshold {
			caps = append(caps, ct.cap)
		}
	}
	return caps
}
