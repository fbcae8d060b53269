package scheduler

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/prospect-cli/internal/model"
)

// StageBudget bounds one stage: a minimum elapsed time (a pacing
// device that keeps call volume inside provider rate limits when many
// subjects run at once) and a cap on provider calls.
type StageBudget struct {
	MinDuration time.Duration `yaml:"-"`
	MaxCalls    int           `yaml:"max_calls"`

	MinDurationMs int `yaml:"min_duration_ms"`
}

// Plan maps each stage to its budget.
type Plan struct {
	Budgets map[model.Stage]StageBudget
}

// DefaultPlan returns the built-in stage budgets.
func DefaultPlan() Plan {
	return Plan{
		Budgets: map[model.Stage]StageBudget{
			model.StageInstant:  {MinDuration: 200 * time.Millisecond, MaxCalls: 1},
			model.StageBasic:    {MinDuration: 1 * time.Second, MaxCalls: 2},
			model.StageEnhanced: {MinDuration: 2 * time.Second, MaxCalls: 2},
			model.StageDeep:     {MinDuration: 3 * time.Second, MaxCalls: 2},
			model.StageComplete: {MinDuration: 500 * time.Millisecond, MaxCalls: 1},
		},
	}
}

// Budget returns the stage's budget, falling back to defaults for
// stages the plan does not mention.
func (p Plan) Budget(stage model.Stage) StageBudget {
	if b, ok := p.Budgets[stage]; ok {
		return b
	}
	return DefaultPlan().Budgets[stage]
}

// TotalMinDuration sums minimum budgets for all stages up to and
// including maxDepth. Used for remaining-time estimates.
func (p Plan) TotalMinDuration(maxDepth model.Stage) time.Duration {
	var total time.Duration
	for _, stage := range model.Stages {
		total += p.Budget(stage).MinDuration
		if stage == maxDepth {
			break
		}
	}
	return total
}

// LoadPlan reads stage budgets from a YAML file. Stages omitted from
// the file keep their defaults.
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, eris.Wrapf(err, "scheduler: read plan %s", path)
	}

	var wrapper struct {
		Stages map[model.Stage]StageBudget `yaml:"stages"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Plan{}, eris.Wrap(err, "scheduler: parse plan")
	}

	plan := DefaultPlan()
	for stage, b := range wrapper.Stages {
		if stage.Index() < 0 {
			return Plan{}, eris.Errorf("scheduler: unknown stage %q in plan", stage)
		}
		merged := plan.Budgets[stage]
		if b.MinDurationMs > 0 {
			merged.MinDuration = time.Duration(b.MinDurationMs) * time.Millisecond
		}
		if b.MaxCalls > 0 {
			merged.MaxCalls = b.MaxCalls
		}
		plan.Budgets[stage] = merged
	}

	return plan, nil
}
