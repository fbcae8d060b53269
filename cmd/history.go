package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent batch runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		records, err := st.ListBatches(ctx, historyLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tTOTAL\tCOMPLETED\tFAILED\tMEAN CONF\tID")
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1f\t%s\n",
				rec.StartedAt.Format("2006-01-02 15:04:05"),
				rec.Total, rec.Completed, rec.Failed, rec.MeanConfidence, rec.ID)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "max runs to list")
	rootCmd.AddCommand(historyCmd)
}
