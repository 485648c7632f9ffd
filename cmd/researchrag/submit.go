package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/csheth/researchrag/internal/paper"
	"github.com/csheth/researchrag/internal/submit"
)

func newSubmitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <url|arxiv-id|file.pdf>",
		Short: "Submit a paper for analysis",
		Long: `Submit sends a paper to the analysis service and prints the new paper id.
The argument is a local PDF (up to 50 MB), a paper URL, or a bare arXiv identifier
such as 1706.03762, which is expanded to its abstract page.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := a.submitter()
			target := args[0]

			var (
				result paper.UploadResult
				err    error
			)
			if isLocalPDF(target) {
				file, info, loadErr := submit.LoadFile(target)
				if loadErr != nil {
					return loadErr
				}
				if info.Pages > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "Uploading %s (%d pages)\n", file.Name, info.Pages)
				}
				if err := ctrl.Select(file); err != nil {
					return err
				}
				result, err = ctrl.SubmitSelected(cmd.Context())
			} else {
				result, err = ctrl.SubmitURL(cmd.Context(), target)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if msg := strings.TrimSpace(result.Message); msg != "" {
				fmt.Fprintln(out, msg)
			}
			if result.Title != "" {
				fmt.Fprintf(out, "Title:    %s\n", result.Title)
			}
			fmt.Fprintf(out, "Paper ID: %s\n", result.PaperID)
			return nil
		},
	}
}

// isLocalPDF treats anything that exists on disk or carries a .pdf extension without a URL
// scheme as a file.
func isLocalPDF(target string) bool {
	if strings.Contains(target, "://") {
		return false
	}
	if strings.EqualFold(filepath.Ext(target), ".pdf") {
		return true
	}
	info, err := os.Stat(target)
	return err == nil && !info.IsDir()
}
