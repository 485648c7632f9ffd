package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/csheth/researchrag/internal/paper"
)

const summaryWrapWidth = 80

func newSummaryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <paper-id>",
		Short: "Print the analysis of a submitted paper",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			analysis, err := a.store().Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(analysis)
			}
			writeAnalysis(cmd.OutOrStdout(), analysis)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "output the analysis as JSON")
	return cmd
}

func writeAnalysis(w io.Writer, analysis paper.Analysis) {
	title := analysis.Title
	if title == "" {
		title = "Untitled paper"
	}
	fmt.Fprintln(w, title)
	fmt.Fprintf(w, "Paper ID: %s\n\n", analysis.PaperID)

	fmt.Fprintln(w, "Summary")
	fmt.Fprintln(w, wordwrap.String(analysis.Summary, summaryWrapWidth))
	writeList(w, "Strengths", analysis.Pros)
	writeList(w, "Weaknesses", analysis.Cons)
	writeList(w, "Future Work", analysis.FutureWork)
}

func writeList(w io.Writer, title string, items []string) {
	fmt.Fprintf(w, "\n%s\n", title)
	if len(items) == 0 {
		fmt.Fprintln(w, "  Nothing noted.")
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", wordwrap.String(item, summaryWrapWidth-4))
	}
}
