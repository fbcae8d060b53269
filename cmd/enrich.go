package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

var (
	enrichName      string
	enrichPractice  string
	enrichSpecialty string
	enrichLocation  string
	enrichWebsite   string
	enrichDepth     string
	enrichOffline   bool
	enrichOutput    string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich a single lead with live progress",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		provider, err := buildProvider(enrichOffline)
		if err != nil {
			return err
		}
		sched, err := buildScheduler(provider)
		if err != nil {
			return err
		}

		subject := model.Subject{
			ID:        uuid.NewString(),
			Name:      enrichName,
			Practice:  enrichPractice,
			Specialty: enrichSpecialty,
			Location:  enrichLocation,
			Website:   enrichWebsite,
		}

		maxDepth := model.Stage(enrichDepth)
		if maxDepth.Index() < 0 {
			maxDepth = configuredMaxDepth()
		}

		result, err := sched.Run(ctx, subject, maxDepth, func(snap model.ProgressSnapshot) {
			zap.L().Info("progress",
				zap.String("stage", string(snap.Stage)),
				zap.Int("percent", snap.PercentComplete),
				zap.String("action", snap.CurrentAction),
				zap.Float64("confidence", snap.Confidence),
			)
		})
		if err != nil {
			return eris.Wrap(err, "enrich: run")
		}

		return writeJSON(result, enrichOutput)
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichName, "name", "", "lead display name (required)")
	enrichCmd.Flags().StringVar(&enrichPractice, "practice", "", "practice or organization name")
	enrichCmd.Flags().StringVar(&enrichSpecialty, "specialty", "", "professional specialty")
	enrichCmd.Flags().StringVar(&enrichLocation, "location", "", "city/state location")
	enrichCmd.Flags().StringVar(&enrichWebsite, "website", "", "known website, if any")
	enrichCmd.Flags().StringVar(&enrichDepth, "depth", "", "max stage: instant|basic|enhanced|deep|complete")
	enrichCmd.Flags().BoolVar(&enrichOffline, "offline", false, "use stub provider (no API keys needed)")
	enrichCmd.Flags().StringVar(&enrichOutput, "output", "", "write result JSON to file (default: stdout)")
	_ = enrichCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(enrichCmd)
}

// writeJSON writes v as indented JSON to path, or stdout when path is
// empty.
func writeJSON(v any, path string) error {
	w := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrap(err, "create output file")
		}
		defer f.Close() //nolint:errcheck
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
