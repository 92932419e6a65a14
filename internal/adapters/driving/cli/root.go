// Package cli implements the lettergen command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lettergen/internal/core/ports/driving"
	"github.com/custodia-labs/lettergen/internal/logger"
)

// Services wired by main. Commands fail with a clear error when one is nil.
var (
	version         = "dev"
	settingsService driving.SettingsService
	batchWorker     driving.BatchWorker
	batchValidator  driving.BatchValidator
	historyService  driving.HistoryService
	configWatcher   ConfigWatcher
)

// ConfigWatcher reports changes to the settings file until ctx is done.
type ConfigWatcher func(ctx context.Context) (<-chan struct{}, error)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "lettergen",
	Short: "Generate absence letters for conference participants",
	Long: `lettergen fills a Word template once per participant and converts
each letter to PDF through CloudConvert.

The template may contain three placeholders:
  xxxxx  participant name
  ttttt  conference name
  ddddd  delegate or official dates`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verboseFlag {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetSettingsService sets the settings service.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetBatchWorker sets the worker that runs generate batches.
func SetBatchWorker(w driving.BatchWorker) {
	batchWorker = w
}

// SetBatchValidator sets the check applied before a batch starts.
func SetBatchValidator(v driving.BatchValidator) {
	batchValidator = v
}

// SetHistoryService sets the run history service.
func SetHistoryService(h driving.HistoryService) {
	historyService = h
}

// SetConfigWatcher sets the settings file watcher used by long-running commands.
func SetConfigWatcher(w ConfigWatcher) {
	configWatcher = w
}
