package roster

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/aggregate"
	"github.com/sells-group/prospect-cli/internal/model"
)

// exportHeader is the full export column set: the import contract
// columns followed by result columns.
var exportHeader = []string{
	"Doctor Name", "Practice", "Specialty", "Location",
	"Email", "Phone", "Website", "Notes",
	"Status", "Fit Score", "Recommendations",
	"Processing Time (ms)", "Completed At", "Error",
}

// ExportCSV writes settled batch items to a CSV that round-trips the
// subject columns through ImportCSV.
func ExportCSV(items []model.BatchItem, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "roster: create export file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeader); err != nil {
		return eris.Wrap(err, "roster: write header")
	}

	for _, item := range items {
		if err := w.Write(exportRow(item)); err != nil {
			return eris.Wrap(err, "roster: write row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "roster: flush export")
	}
	return nil
}

func exportRow(item model.BatchItem) []string {
	sub := item.Subject

	website := sub.Website
	confidence := ""
	if item.Result != nil {
		if website == "" {
			website = item.Result.Website
		}
		confidence = strconv.FormatFloat(item.Result.Confidence, 'f', 1, 64)
	}

	processingMs := ""
	if d := item.ProcessingTime(); d > 0 {
		processingMs = strconv.FormatInt(d.Milliseconds(), 10)
	}
	completedAt := ""
	if item.CompletedAt != nil {
		completedAt = item.CompletedAt.UTC().Format(time.RFC3339)
	}

	return []string{
		sub.Name, sub.Practice, sub.Specialty, sub.Location,
		sub.Email, sub.Phone, website, sub.Notes,
		string(item.Status), confidence, itemRecommendation(item),
		processingMs, completedAt, item.Error,
	}
}

// itemRecommendation gives a one-line per-lead disposition based on
// the same tiers the aggregate summary uses.
func itemRecommendation(item model.BatchItem) string {
	if item.Status != model.StatusCompleted || item.Result == nil {
		return ""
	}
	if item.LowConfidence {
		return "Below confidence threshold: do not act without manual review"
	}
	switch conf := item.Result.Confidence; {
	case conf >= aggregate.HighPriorityThreshold:
		return "High priority: proceed with outreach"
	case conf >= aggregate.MediumPriorityThreshold:
		return "Medium priority: review before outreach"
	default:
		return fmt.Sprintf("Low confidence (%.0f): enrich further before outreach", conf)
	}
}
