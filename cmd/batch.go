package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/aggregate"
	"github.com/sells-group/prospect-cli/internal/batch"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/roster"
	"github.com/sells-group/prospect-cli/internal/store"
)

var (
	batchCSV         string
	batchLimit       int
	batchConcurrency int
	batchDelayMs     int
	batchPrioritize  bool
	batchSkipLow     bool
	batchThreshold   float64
	batchDepth       string
	batchOffline     bool
	batchOutput      string
	batchXLSX        string
	batchNoHistory   bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Enrich a CSV of leads with bounded concurrency",
	Long:  "Imports leads from CSV, runs each through the staged enrichment pipeline with bounded concurrency, and exports results plus a batch summary.",
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchCSV, "csv", "", "input leads CSV (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "process at most N leads (0 = all)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max leads processing at once (default from config)")
	batchCmd.Flags().IntVar(&batchDelayMs, "delay", -1, "pause between concurrency windows, ms (default from config)")
	batchCmd.Flags().BoolVar(&batchPrioritize, "prioritize", false, "process high-value specialties first")
	batchCmd.Flags().BoolVar(&batchSkipLow, "skip-low-confidence", false, "flag results below the confidence threshold")
	batchCmd.Flags().Float64Var(&batchThreshold, "threshold", -1, "confidence threshold for flagging (default from config)")
	batchCmd.Flags().StringVar(&batchDepth, "depth", "", "max stage: instant|basic|enhanced|deep|complete")
	batchCmd.Flags().BoolVar(&batchOffline, "offline", false, "use stub provider (no API keys needed)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "results CSV path (default: <input>_enriched.csv)")
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "also write an XLSX workbook with results and summary")
	batchCmd.Flags().BoolVar(&batchNoHistory, "no-history", false, "skip recording this run in the batch history store")
	_ = batchCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	subjects, err := roster.ImportCSV(batchCSV)
	if err != nil {
		return err
	}
	if len(subjects) == 0 {
		return eris.Errorf("no usable leads in %s", batchCSV)
	}
	if batchLimit > 0 && len(subjects) > batchLimit {
		subjects = subjects[:batchLimit]
	}

	provider, err := buildProvider(batchOffline)
	if err != nil {
		return err
	}
	sched, err := buildScheduler(provider)
	if err != nil {
		return err
	}

	orch := batch.New(sched, batchOptions())

	var st store.Store
	if !batchNoHistory {
		st, err = openStore(ctx)
		if err != nil {
			zap.L().Warn("batch history unavailable", zap.Error(err))
		} else {
			defer st.Close() //nolint:errcheck
		}
	}

	zap.L().Info("batch: importing done", zap.Int("leads", len(subjects)), zap.String("csv", batchCSV))

	started := time.Now()
	items, err := orch.Run(ctx, subjects, batch.Callbacks{
		OnProgress: func(p model.BatchProgress) {
			zap.L().Info("batch: progress",
				zap.Int("completed", p.Completed),
				zap.Int("failed", p.Failed),
				zap.Int("total", p.Total),
				zap.String("current", p.CurrentSubject),
				zap.Duration("estimated_remaining", p.EstimatedRemaining),
			)
		},
		OnItemSettled: func(item model.BatchItem) {
			if item.Status == model.StatusFailed {
				zap.L().Warn("batch: lead failed", zap.String("name", item.Subject.Name), zap.String("error", item.Error))
				return
			}
			zap.L().Info("batch: lead settled",
				zap.String("name", item.Subject.Name),
				zap.Float64("confidence", item.Result.Confidence),
				zap.Bool("low_confidence", item.LowConfidence),
			)
		},
	})
	if err != nil {
		return eris.Wrap(err, "batch: run")
	}
	finished := time.Now()

	summary := aggregate.Summarize(items)
	printSummary(summary)

	outPath := batchOutput
	if outPath == "" {
		outPath = strings.TrimSuffix(batchCSV, ".csv") + "_enriched.csv"
	}
	if err := roster.ExportCSV(items, outPath); err != nil {
		return err
	}
	zap.L().Info("batch: results written", zap.String("path", outPath))

	if batchXLSX != "" {
		if err := roster.ExportXLSX(items, summary, batchXLSX); err != nil {
			return err
		}
		zap.L().Info("batch: workbook written", zap.String("path", batchXLSX))
	}

	saveBatchHistory(ctx, st, store.BatchRecord{
		ID:             uuid.NewString(),
		StartedAt:      started,
		FinishedAt:     finished,
		Total:          summary.TotalAnalyzed,
		Completed:      summary.Completed,
		Failed:         summary.Failed,
		MeanConfidence: summary.MeanConfidence,
	}, items)

	return nil
}

// batchOptions merges command flags over config defaults.
func batchOptions() batch.Options {
	opts := batch.Options{
		MaxConcurrent:        cfg.Batch.MaxConcurrent,
		DelayBetweenBatches:  time.Duration(cfg.Batch.DelayBetweenMs) * time.Millisecond,
		PrioritizeHighValue:  cfg.Batch.PrioritizeHighValue || batchPrioritize,
		HighValueSpecialties: cfg.Batch.HighValueSpecialties,
		SkipLowConfidence:    cfg.Batch.SkipLowConfidence || batchSkipLow,
		ConfidenceThreshold:  cfg.Batch.ConfidenceThreshold,
		MaxDepth:             configuredMaxDepth(),
	}
	if batchConcurrency > 0 {
		opts.MaxConcurrent = batchConcurrency
	}
	if batchDelayMs >= 0 {
		opts.DelayBetweenBatches = time.Duration(batchDelayMs) * time.Millisecond
	}
	if batchThreshold >= 0 {
		opts.ConfidenceThreshold = batchThreshold
	}
	if stage := model.Stage(batchDepth); stage.Index() >= 0 {
		opts.MaxDepth = stage
	}
	return opts
}

func printSummary(s aggregate.Summary) {
	fmt.Fprintf(os.Stdout, "\nBatch summary\n")
	fmt.Fprintf(os.Stdout, "  analyzed:        %d\n", s.TotalAnalyzed)
	fmt.Fprintf(os.Stdout, "  completed:       %d\n", s.Completed)
	fmt.Fprintf(os.Stdout, "  failed:          %d\n", s.Failed)
	fmt.Fprintf(os.Stdout, "  mean confidence: %.1f\n", s.MeanConfidence)
	fmt.Fprintf(os.Stdout, "  high priority:   %d\n", s.HighPriorityLeads)
	fmt.Fprintf(os.Stdout, "  medium priority: %d\n", s.MediumPriorityLeads)
	fmt.Fprintf(os.Stdout, "  low priority:    %d\n", s.LowPriorityLeads)
	if len(s.TopSpecialties) > 0 {
		fmt.Fprintf(os.Stdout, "  top specialties:\n")
		for _, rank := range s.TopSpecialties {
			fmt.Fprintf(os.Stdout, "    %-24s %3d leads, mean %.1f\n", rank.Specialty, rank.Count, rank.MeanConfidence)
		}
	}
	for _, rec := range s.Recommendations {
		fmt.Fprintf(os.Stdout, "  - %s\n", rec)
	}
}
