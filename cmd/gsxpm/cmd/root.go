package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tormodhaugland/gsxpm/internal/config"
)

var (
	cfgFile       string
	jsonOut       bool
	jsonlOut      bool
	logLevel      string
	verbose       bool
	watchedFolder string

	cfg *config.Config
	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "gsxpm",
	Short: "GSX profile manager with a two-pane tree browser",
	Long: `gsxpm manages GSX airport profiles. It shows the profiles found under a
watched folder (usually the MSFS Community folder) next to a local store,
keeps the selection and the open folders between sessions, and activates a
selection by linking it into the folder GSX reads from.

Running 'gsxpm' without arguments launches the TUI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		c, err := config.LoadWithFlags(cfgFile, cmd.Flags())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c

		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		if verbose {
			level = logrus.DebugLevel
		}
		log.SetLevel(level)
		log.SetOutput(os.Stderr)
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		log.WithField("config", cfg.File).Debug("Configuration loaded")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return tuiCmd.RunE(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/gsxpm/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&jsonlOut, "jsonl", false, "output in JSON Lines format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&watchedFolder, "watched-folder", "", "override the watched folder for this run")
}

// logToFile redirects logging into the logs dir while a full-screen view owns
// the terminal. The returned func restores stderr.
func logToFile() func() {
	dir := cfg.LogsDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }
	}
	f, err := os.OpenFile(filepath.Join(dir, "gsxpm.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}
}

func exitWithError(msg string, code int) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}
