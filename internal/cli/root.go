package cli

import (
	"fmt"

	"github.com/mgpai22/subedit/internal/config"
	"github.com/mgpai22/subedit/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "subedit",
	Short: "Edit ASS, SRT, WebVTT and plain text subtitle files",
	Long: `Subedit is a CLI tool for editing subtitle files: listing events,
editing override tags, splitting and merging lines, copy and paste through
the clipboard, format conversion and AI translation of event text.

Events are addressed by their row number as shown by "subedit events".
Edits are written back to the input file unless --output is given.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if cfg.Path != "" {
			logger.Debugw("Loaded config", "path", cfg.Path)
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file (default ~/.subedit.yaml)")
	rootCmd.PersistentFlags().
		StringP("output", "o", "", "Output file path (default: edit in place)")
}
