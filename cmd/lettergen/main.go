// Command lettergen generates conference absence letters from a Word
// template and converts them to PDF.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/lettergen/internal/adapters/driven/cloudconvert"
	"github.com/custodia-labs/lettergen/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lettergen/internal/adapters/driven/docx"
	"github.com/custodia-labs/lettergen/internal/adapters/driven/fs"
	"github.com/custodia-labs/lettergen/internal/adapters/driven/pdf"
	"github.com/custodia-labs/lettergen/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lettergen/internal/adapters/driving/cli"
	"github.com/custodia-labs/lettergen/internal/core/ports/driven"
	"github.com/custodia-labs/lettergen/internal/core/services"
	"github.com/custodia-labs/lettergen/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return report(fmt.Errorf("get home directory: %w", err))
	}
	baseDir := filepath.Join(home, ".lettergen")

	configStore, err := file.NewConfigStore(baseDir)
	if err != nil {
		return report(fmt.Errorf("open settings: %w", err))
	}

	settingsService := services.NewSettingsService(configStore)
	if err := settingsService.LoadEnv(".env"); err != nil {
		logger.Warn("%v", err)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return report(fmt.Errorf("load settings: %w", err))
	}
	logger.SetFile(settings.Logging.File)
	logger.SetVerbose(settings.Logging.Verbose)
	defer logger.Sync() //nolint:errcheck

	runStore, err := sqlite.NewStore(filepath.Join(baseDir, "data"))
	if err != nil {
		return report(fmt.Errorf("open history: %w", err))
	}
	defer runStore.Close()

	var verifier driven.PDFVerifier
	if settings.Conversion.VerifyPDF {
		verifier = pdf.NewVerifier()
	}

	orchestrator := services.NewBatchOrchestrator(
		docx.New(),
		fs.NewCopier(),
		cloudconvert.Factory(settings.Conversion),
		verifier,
		runStore,
		settings.Conversion.Engine,
	)

	cli.SetVersion(version)
	cli.SetSettingsService(settingsService)
	cli.SetBatchWorker(services.NewBatchWorker(orchestrator))
	cli.SetBatchValidator(services.ValidateBatchConfig)
	cli.SetHistoryService(services.NewHistoryService(runStore))
	cli.SetConfigWatcher(configStore.Watch)

	// SIGTERM aborts at once. Interrupts are left to generate, which
	// cancels after the current participant and aborts on the second.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx)
}

func report(err error) error {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return err
}
