package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mgpai22/subedit/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the subedit config file",
	Long: `Show the settings in effect, merged from defaults, the config file
and SUBEDIT_ environment variables (for example SUBEDIT_TRANSLATE_PROVIDER).

Examples:
  subedit config
  subedit config init
  subedit config init --config ./subedit.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file holding the default settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	bold := color.New(color.Bold)

	source := cfg.Path
	if source == "" {
		source = "(defaults)"
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Setting"), bold.Sprint("Value"))
	tbl.AddRow("file", source)
	tbl.AddRow("history.amend_window", cfg.History.AmendWindow)
	tbl.AddRow("editing.soft_linebreaks", cfg.Editing.SoftLinebreaks)
	tbl.AddRow("editing.default_style", cfg.Editing.DefaultStyle)
	tbl.AddRow("translate.provider", cfg.Translate.Provider)
	tbl.AddRow("translate.model", cfg.Translate.Model)
	tbl.AddRow("translate.source_language", cfg.Translate.SourceLanguage)
	tbl.AddRow("translate.target_language", cfg.Translate.TargetLanguage)
	tbl.AddRow("translate.concurrency", cfg.Translate.Concurrency)
	tbl.AddRow("translate.batch_size", cfg.Translate.BatchSize)

	fmt.Fprintln(cmd.OutOrStdout(), tbl)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := config.WriteDefault(configPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Config written: %s\n", path)
	return nil
}
