package cli

import (
	"fmt"

	"github.com/mgpai22/subedit/internal/clipboard"
	"github.com/mgpai22/subedit/internal/subtitle"
	"github.com/spf13/cobra"
)

// board is swapped out in tests.
var board clipboard.Board = clipboard.System{}

var copyCmd = &cobra.Command{
	Use:   "copy [subtitle_file] [row...]",
	Short: "Copy events to the clipboard as Dialogue lines",
	Long: `Copy events to the system clipboard, one Dialogue: or Comment: line
per event, in file order.

Examples:
  subedit copy episode.ass 3 4 5`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCopy,
}

var pasteCmd = &cobra.Command{
	Use:   "paste [subtitle_file]",
	Short: "Paste clipboard lines into a subtitle file",
	Long: `Paste clipboard lines as new events after a row. Dialogue: and Comment:
lines keep all their fields; any other line becomes the text of a new event.

With --over the pasted lines overwrite the selected --fields of the row
and the rows following it instead.

Examples:
  subedit paste episode.ass --after 12
  subedit paste episode.ass --after 3 --over --fields text
  subedit paste episode.ass --after 3 --over --fields time,style`,
	Args: cobra.ExactArgs(1),
	RunE: runPaste,
}

func init() {
	rootCmd.AddCommand(copyCmd)
	rootCmd.AddCommand(pasteCmd)

	pasteCmd.Flags().String("after", "", "Row to paste after (default: last row)")
	pasteCmd.Flags().Bool("over", false, "Overwrite existing rows instead of inserting")
	pasteCmd.Flags().String("fields", "all", "Fields to overwrite with --over")
}

func runCopy(cmd *cobra.Command, args []string) error {
	d, err := openDocument(args[0])
	if err != nil {
		return err
	}
	ids, err := eventIDs(d, args[1:])
	if err != nil {
		return err
	}

	lines, err := d.Copy(ids...)
	if err != nil {
		return err
	}
	if err := clipboard.CopyLines(board, lines); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Copied %d events\n", len(lines))
	return nil
}

func runPaste(cmd *cobra.Command, args []string) error {
	afterRow, _ := cmd.Flags().GetString("after")
	over, _ := cmd.Flags().GetBool("over")
	fieldList, _ := cmd.Flags().GetString("fields")

	fields, err := subtitle.ParseFields(fieldList)
	if err != nil {
		return err
	}

	lines, err := clipboard.PasteLines(board)
	if err != nil {
		return fmt.Errorf("failed to read clipboard: %w", err)
	}

	d, err := openDocument(args[0])
	if err != nil {
		return err
	}

	var target *subtitle.Event
	if afterRow == "" {
		target, _ = d.Events().Tail()
	} else if target, err = eventAt(d, afterRow); err != nil {
		return err
	}

	if over {
		if err := d.PasteOver(target.ID, lines, fields); err != nil {
			return err
		}
	} else if _, err := d.Paste(target.ID, lines); err != nil {
		return err
	}

	out, err := saveDocument(cmd, d, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pasted %d lines: %s\n", len(lines), out)
	return nil
}
