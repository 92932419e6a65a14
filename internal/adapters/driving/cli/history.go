package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lettergen/internal/core/domain"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show past batch runs",
	Long: `List recent batch runs, most recent first.
With a run ID, show every participant of that run and its outcome.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum runs to list (0 = all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}
	if len(args) == 1 {
		return showRun(cmd, args[0])
	}

	runs, err := historyService.ListRuns(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tCONFERENCE\tSTATE\tLETTERS\tPDF\tFAILED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%d\t%d\n",
			r.ID, formatTime(r.StartedAt), r.ConferenceName, r.State,
			r.Succeeded, r.Total, r.Converted, r.Failed)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, id string) error {
	details, err := historyService.GetRun(cmd.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	r := details.Run
	cmd.Printf("Run:        %s\n", r.ID)
	cmd.Printf("Conference: %s\n", r.ConferenceName)
	cmd.Printf("Template:   %s\n", r.TemplatePath)
	cmd.Printf("Output:     %s\n", r.OutputDir)
	cmd.Printf("State:      %s\n", r.State)
	cmd.Printf("Started:    %s\n", formatTime(r.StartedAt))
	if !r.FinishedAt.IsZero() {
		cmd.Printf("Finished:   %s (%s)\n", formatTime(r.FinishedAt), r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
	}
	if r.Error != "" {
		cmd.Printf("Error:      %s\n", r.Error)
	}
	cmd.Println()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICIPANT\tROLE\tDOCUMENT\tPDF\tERROR")
	for _, a := range details.Artifacts {
		role := "official"
		if a.Participant.IsDelegate {
			role = "delegate"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			a.Participant.Name, role, orDash(a.DocPath), orDash(a.PDFPath), orDash(a.Error))
	}
	return w.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
