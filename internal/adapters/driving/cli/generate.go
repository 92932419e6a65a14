package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lettergen/internal/adapters/driving/tui"
	"github.com/custodia-labs/lettergen/internal/core/domain"
	"github.com/custodia-labs/lettergen/internal/logger"
)

// joinTimeout bounds the wait for the worker after its event stream ends.
const joinTimeout = 30 * time.Second

// generateFlags holds the generate command's flag values.
type generateFlags struct {
	template      string
	output        string
	conference    string
	delegateDates string
	officialDates string
	manifest      string
	officials     []string
	delegates     []string
	apiKey        string
	useTUI        bool
}

var genFlags generateFlags

// runBatchTUI is replaced in tests.
var runBatchTUI = tui.RunBatch

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate absence letters",
	Long: `Generate one absence letter per participant from a .docx template.

Each letter is written to the output directory as <name>_AbsenceLetter.docx
and converted to PDF alongside it. A failure for one participant is reported
and the batch continues with the next.

Participants come from --official / --delegate flags, a manifest file, or
both. YAML manifests may also set the template, output, conference and dates;
flags take precedence.

Press Ctrl+C once to stop after the current participant, twice to abort.

Examples:
  lettergen generate -t letter.docx -c "Summit 2024" \
      --official-dates 01/01/2024-03/01/2024 \
      --delegate-dates 05/01/2024-07/01/2024 \
      --official "Ann O'Brien" --delegate Lee

  lettergen generate -m participants.yaml --tui`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genFlags.template, "template", "t", "", "path to the .docx template")
	f.StringVarP(&genFlags.output, "output", "o", "", "output directory (default from settings)")
	f.StringVarP(&genFlags.conference, "conference", "c", "", "conference name")
	f.StringVar(&genFlags.delegateDates, "delegate-dates", "", "date range for delegates")
	f.StringVar(&genFlags.officialDates, "official-dates", "", "date range for officials")
	f.StringVarP(&genFlags.manifest, "manifest", "m", "", "participants file (.yaml, .yml or .csv)")
	f.StringArrayVar(&genFlags.officials, "official", nil, "add an official participant (repeatable)")
	f.StringArrayVar(&genFlags.delegates, "delegate", nil, "add a delegate participant (repeatable)")
	f.StringVar(&genFlags.apiKey, "api-key", "", "CloudConvert API key (default from settings)")
	f.BoolVar(&genFlags.useTUI, "tui", false, "show an interactive progress view")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if batchWorker == nil {
		return errors.New("batch worker not configured")
	}

	cfg, err := buildBatchConfig(genFlags)
	if err != nil {
		return err
	}
	if batchValidator != nil {
		if err := batchValidator(cfg); err != nil {
			return fmt.Errorf("invalid batch: %w", err)
		}
	}

	ctx, abort := context.WithCancel(cmd.Context())
	defer abort()

	events, err := batchWorker.Start(ctx, cfg)
	if err != nil {
		return fmt.Errorf("start batch: %w", err)
	}
	logger.Info("generating %d letters for %s", len(cfg.Participants), cfg.ConferenceName)

	if genFlags.useTUI {
		if err := runBatchTUI(events, len(cfg.Participants), batchWorker.Cancel, abort); err != nil {
			abort()
			go drain(events)
			return fmt.Errorf("TUI error: %w", err)
		}
	} else {
		stop := handleInterrupts(ctx, cmd.ErrOrStderr(), batchWorker.Cancel, abort)
		printEvents(cmd.OutOrStdout(), cmd.ErrOrStderr(), events)
		stop()
	}

	if err := batchWorker.Wait(joinTimeout); err != nil {
		return err
	}
	return reportResult(cmd, batchWorker.Result())
}

// buildBatchConfig merges the manifest, flags and settings.
func buildBatchConfig(flags generateFlags) (domain.BatchConfig, error) {
	var cfg domain.BatchConfig

	if flags.manifest != "" {
		m, err := LoadManifest(flags.manifest)
		if err != nil {
			return cfg, fmt.Errorf("load manifest: %w", err)
		}
		cfg.TemplatePath = m.Template
		cfg.OutputDir = m.Output
		cfg.ConferenceName = m.Conference
		cfg.DelegateDates = m.DelegateDates
		cfg.OfficialDates = m.OfficialDates
		cfg.Participants = m.Participants
	}

	override(&cfg.TemplatePath, flags.template)
	override(&cfg.OutputDir, flags.output)
	override(&cfg.ConferenceName, flags.conference)
	override(&cfg.DelegateDates, flags.delegateDates)
	override(&cfg.OfficialDates, flags.officialDates)
	for _, name := range flags.officials {
		cfg.Participants = append(cfg.Participants, domain.Participant{Name: name})
	}
	for _, name := range flags.delegates {
		cfg.Participants = append(cfg.Participants, domain.Participant{Name: name, IsDelegate: true})
	}

	cfg.APIKey = flags.apiKey
	if settingsService != nil {
		if cfg.APIKey == "" {
			cfg.APIKey = settingsService.APIKey()
		}
		if cfg.OutputDir == "" {
			dir, err := settingsService.OutputDir()
			if err != nil {
				return cfg, fmt.Errorf("resolve output directory: %w", err)
			}
			cfg.OutputDir = dir
		}
	}

	return cfg, nil
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// handleInterrupts turns the first Ctrl+C into a cooperative cancel and
// the second into an abort. The returned func stops listening.
func handleInterrupts(ctx context.Context, errOut io.Writer, cancel, abort func()) func() {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt)
	done := make(chan struct{})

	go func() {
		interrupts := 0
		for {
			select {
			case <-sigCh:
				interrupts++
				if interrupts == 1 {
					fmt.Fprintln(errOut, "Stopping after the current participant (Ctrl+C again to abort)...")
					cancel()
					continue
				}
				fmt.Fprintln(errOut, "Aborting...")
				abort()
				return
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

// drain discards events so the worker can finish.
func drain(events <-chan domain.Event) {
	for range events { //nolint:revive // intentionally empty
	}
}

// printEvents writes the event stream as plain lines until it closes.
func printEvents(out, errOut io.Writer, events <-chan domain.Event) {
	for e := range events {
		switch e.Kind {
		case domain.EventProgress:
			fmt.Fprintf(out, "[%3d%%]\n", e.Percent)
		case domain.EventMessage:
			fmt.Fprintln(out, e.Text)
		case domain.EventError:
			fmt.Fprintln(errOut, e.Text)
		case domain.EventFinished:
		}
	}
}

func reportResult(cmd *cobra.Command, result *domain.BatchResult) error {
	if result == nil {
		return errors.New("batch produced no result")
	}

	switch result.State {
	case domain.BatchCriticalFailure:
		return fmt.Errorf("batch failed: %w", result.Err)
	case domain.BatchCancelled:
		cmd.Printf("Cancelled: %d of %d letters created, %d converted to PDF.\n",
			result.Succeeded, result.Total, result.Converted)
	default:
		cmd.Printf("Done: %d of %d letters created, %d converted to PDF.\n",
			result.Succeeded, result.Total, result.Converted)
	}
	cmd.Printf("Run ID: %s\n", result.RunID)

	switch {
	case errors.Is(result.ConversionErr, domain.ErrUnauthorized):
		cmd.Println("Hint: the conversion service rejected the API key. " +
			"Set a valid key with 'lettergen settings set conversion.api_key <key>' or --api-key.")
	case errors.Is(result.ConversionErr, domain.ErrRateLimited):
		cmd.Println("Hint: the conversion service is rate limiting requests. Try again later.")
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d participants failed", result.Failed, result.Total)
	}
	return nil
}
