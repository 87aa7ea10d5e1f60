package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mgpai22/subedit/internal/convert"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [subtitle_file] [output_file]",
	Short: "Convert a subtitle file to another format",
	Long: `Convert between ASS, SRT, WebVTT and plain text. Formats are picked
from the file extensions.

SRT and WebVTT keep bold, italic and underline (and strikeout for SRT) as
HTML tags; other override tags and comment lines are dropped. Plain text
holds one stripped line per event.

Examples:
  subedit export episode.ass episode.srt
  subedit export episode.srt episode.ass
  subedit export episode.ass script.txt --no-comments --no-actors`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

var wrapCmd = &cobra.Command{
	Use:   "wrap [subtitle_file] [row...]",
	Short: "Break long events into two balanced lines",
	Long: `Insert a line break near the middle of every event whose visible text
is longer than --max characters. Events that already hold a line break are
left alone. With no rows every event is wrapped.

Examples:
  subedit wrap episode.ass
  subedit wrap episode.ass 3 7 --max 36`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWrap,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(wrapCmd)

	exportCmd.Flags().Bool("no-comments", false, "Leave comment lines out of plain text output")
	exportCmd.Flags().Bool("no-actors", false, "Leave actor names out of plain text output")

	wrapCmd.Flags().Int("max", convert.DefaultLineLength, "Maximum characters on one line")
}

func runExport(cmd *cobra.Command, args []string) error {
	noComments, _ := cmd.Flags().GetBool("no-comments")
	noActors, _ := cmd.Flags().GetBool("no-actors")

	format, err := convert.FormatFromPath(args[1])
	if err != nil {
		return err
	}

	d, err := openDocument(args[0])
	if err != nil {
		return err
	}

	if format == convert.FormatTXT && (noComments || noActors) {
		if err := os.MkdirAll(filepath.Dir(args[1]), 0755); err != nil {
			return err
		}
		f, err := os.Create(args[1])
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		opts := convert.TXTOptions{Comments: !noComments, Actors: !noActors}
		if err := convert.WriteTXT(f, d, opts); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	} else if err := convert.Save(d, args[1]); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	abs, _ := filepath.Abs(args[1])
	logger.Infow("Exported subtitle file",
		"input", args[0],
		"format", string(format),
		"events", d.Events().Len(),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d events: %s\n", d.Events().Len(), abs)
	return nil
}

func runWrap(cmd *cobra.Command, args []string) error {
	maxChars, _ := cmd.Flags().GetInt("max")
	if maxChars <= 0 {
		return fmt.Errorf("--max must be positive, got %d", maxChars)
	}

	d, err := openDocument(args[0])
	if err != nil {
		return err
	}
	ids, err := eventIDs(d, args[1:])
	if err != nil {
		return err
	}

	n, err := d.MapText("wrap lines", func(text string) string {
		return convert.Balance(text, maxChars)
	}, ids...)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No events needed wrapping")
		return nil
	}

	out, err := saveDocument(cmd, d, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrapped %d events: %s\n", n, out)
	return nil
}
