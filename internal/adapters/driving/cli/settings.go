package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/lettergen/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the conversion service, output directory and logging.

Settings are stored in ~/.lettergen/config.toml. The API key can also be
supplied through the LETTERGEN_API_KEY environment variable or a .env file
in the working directory; both take precedence over the stored key.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Store the CloudConvert API key",
	Long: `Store the CloudConvert API key in the settings file.

Without an argument the key is prompted for and read without echo when
stdin is a terminal. It is stored in plaintext; prefer LETTERGEN_API_KEY
on shared machines.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsSetKey,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long:  "Change a single setting. Available keys:\n" + settingKeysHelp(),
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingSetters maps a settings key to a parser that applies the value.
var settingSetters = map[string]func(s *domain.AppSettings, value string) error{
	"conversion.base_url": func(s *domain.AppSettings, v string) error {
		s.Conversion.BaseURL = v
		return nil
	},
	"conversion.sync_url": func(s *domain.AppSettings, v string) error {
		s.Conversion.SyncURL = v
		return nil
	},
	"conversion.sandbox": func(s *domain.AppSettings, v string) error {
		b, err := strconv.ParseBool(v)
		s.Conversion.Sandbox = b
		return err
	},
	"conversion.engine": func(s *domain.AppSettings, v string) error {
		s.Conversion.Engine = v
		return nil
	},
	"conversion.verify_pdf": func(s *domain.AppSettings, v string) error {
		b, err := strconv.ParseBool(v)
		s.Conversion.VerifyPDF = b
		return err
	},
	"conversion.timeout_seconds": func(s *domain.AppSettings, v string) error {
		n, err := strconv.Atoi(v)
		s.Conversion.TimeoutSeconds = n
		return err
	},
	"conversion.requests_per_second": func(s *domain.AppSettings, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		s.Conversion.RequestsPerSecond = f
		return err
	},
	"output.directory": func(s *domain.AppSettings, v string) error {
		s.Output.Directory = v
		return nil
	},
	"logging.file": func(s *domain.AppSettings, v string) error {
		s.Logging.File = v
		return nil
	},
	"logging.verbose": func(s *domain.AppSettings, v string) error {
		b, err := strconv.ParseBool(v)
		s.Logging.Verbose = b
		return err
	},
}

func settingKeysHelp() string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "  " + strings.Join(keys, "\n  ")
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	baseURL, syncURL := settings.Conversion.Endpoints()

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Conversion]")
	if key := settingsService.APIKey(); key != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(key))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Printf("  Sandbox: %t\n", settings.Conversion.Sandbox)
	cmd.Printf("  Base URL: %s\n", baseURL)
	cmd.Printf("  Sync URL: %s\n", syncURL)
	cmd.Printf("  Engine: %s\n", settings.Conversion.Engine)
	cmd.Printf("  Verify PDF: %t\n", settings.Conversion.VerifyPDF)
	if settings.Conversion.TimeoutSeconds > 0 {
		cmd.Printf("  Timeout: %s\n", settings.Conversion.Timeout())
	} else {
		cmd.Printf("  Timeout: none\n")
	}
	cmd.Printf("  Requests/second: %g\n", settings.Conversion.RequestsPerSecond)
	cmd.Println()

	cmd.Println("[Output]")
	if dir, err := settingsService.OutputDir(); err == nil {
		cmd.Printf("  Directory: %s\n", dir)
	}
	cmd.Println()

	cmd.Println("[Logging]")
	if settings.Logging.File != "" {
		cmd.Printf("  File: %s\n", settings.Logging.File)
	} else {
		cmd.Printf("  File: (disabled)\n")
	}
	cmd.Printf("  Verbose: %t\n", settings.Logging.Verbose)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSetKey(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	var key string
	if len(args) == 1 {
		key = strings.TrimSpace(args[0])
	} else {
		cmd.Print("CloudConvert API key: ")
		key = readPassword(cmd.InOrStdin())
		cmd.Println()
	}

	if err := settingsService.SetAPIKey(key); err != nil {
		return fmt.Errorf("failed to set API key: %w", err)
	}
	cmd.Printf("API key saved (%s).\n", maskAPIKey(key))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	setter, ok := settingSetters[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := setter(settings, value); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

// readPassword reads a line without echo when in is a terminal.
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
