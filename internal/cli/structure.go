package cli

import (
	"fmt"

	"github.com/mgpai22/subedit/internal/subtitle"
	"github.com/spf13/cobra"
)

var splitCmd = &cobra.Command{
	Use:   "split [subtitle_file] [row]",
	Short: "Split an event at its line breaks or at a text position",
	Long: `Split an event into one event per line break. With --at the event is
split in two at that byte offset of its text instead.

Times are shared out by text length unless --keep-times is given, in which
case every part keeps the original times. --time sets the start of the
second part when splitting with --at.

Examples:
  subedit split episode.ass 4
  subedit split episode.ass 4 --at 12 --time 0:00:05.50
  subedit split episode.ass 4 --keep-times`,
	Args: cobra.ExactArgs(2),
	RunE: runSplit,
}

var mergeCmd = &cobra.Command{
	Use:   "merge [subtitle_file] [row] [row]",
	Short: "Merge two neighbouring events",
	Long: `Merge two neighbouring events into one spanning both. The texts are
joined with a line break; the other fields come from the earlier event.

Examples:
  subedit merge episode.ass 4 5`,
	Args: cobra.ExactArgs(3),
	RunE: runMerge,
}

var duplicateCmd = &cobra.Command{
	Use:   "duplicate [subtitle_file] [row...]",
	Short: "Duplicate events",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runDuplicate,
}

var insertCmd = &cobra.Command{
	Use:   "insert [subtitle_file] [row]",
	Short: "Insert an empty event next to a row",
	Long: `Insert an empty event after the given row, or before it with --before.
The new event is timed to sit next to its neighbour.

Examples:
  subedit insert episode.ass 4
  subedit insert episode.ass 1 --before --text "Previously..."`,
	Args: cobra.ExactArgs(2),
	RunE: runInsert,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [subtitle_file] [row...]",
	Short: "Delete events",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runDelete,
}

var commentCmd = &cobra.Command{
	Use:   "comment [subtitle_file] [row...]",
	Short: "Toggle events between Dialogue and Comment",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runComment,
}

var renameStyleCmd = &cobra.Command{
	Use:   "rename-style [subtitle_file] [from] [to]",
	Short: "Rename a style and every event using it",
	Args:  cobra.ExactArgs(3),
	RunE:  runRenameStyle,
}

func init() {
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(duplicateCmd)
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(renameStyleCmd)

	splitCmd.Flags().Int("at", -1, "Split in two at this byte offset of the text")
	splitCmd.Flags().String("time", "", "Start time of the second part (with --at)")
	splitCmd.Flags().Bool("keep-times", false, "Keep the original times on every part")

	insertCmd.Flags().Bool("before", false, "Insert before the row instead of after")
	insertCmd.Flags().String("text", "", "Text of the new event")
}

func runSplit(cmd *cobra.Command, args []string) error {
	at, _ := cmd.Flags().GetInt("at")
	timeStr, _ := cmd.Flags().GetString("time")
	keepTimes, _ := cmd.Flags().GetBool("keep-times")

	if timeStr != "" && at < 0 {
		return fmt.Errorf("--time requires --at")
	}
	var splitTime *subtitle.Time
	if timeStr != "" {
		t, err := subtitle.ParseTime(timeStr)
		if err != nil {
			return fmt.Errorf("invalid --time: %w", err)
		}
		splitTime = &t
	}

	d, err := openDocument(args[0])
	if err != nil {
		return err
	}
	e, err := eventAt(d, args[1])
	if err != nil {
		return err
	}

	var parts []*subtitle.Event
	if at >= 0 {
		parts, err = d.SplitAt(e.ID, at, keepTimes, splitTime)
	} else {
		parts, err = d.Split(e.ID, keepTimes)
	}
	if err != nil {
		return err
	}
	if parts == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Row %s has no line break; nothing to split\n", args[1])
		return nil
	}

	out, err := saveDocument(cmd, d, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Split row %s into %d events: %s\n", args[1], len(parts), out)
	return nil
}

func runMerge(cmd *cobra.Command, args []string) error {
	d, err := openDocument(args[0])
	if err != nil {
		return err
	}
	a, err := eventAt(d, args[1])
	if err != nil {
		return err
	}
	b, err := eventAt(d, args[2])
	if err != nil {
		return err
	}

	merged, err := d.Merge(a.ID, b.ID)
	if err != nil {
		return err
	}

	out, err := saveDocument(cmd, d, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Merged rows %s and %s: %s\n", args[1], args[2], merged.Text)
	logger.Infow("Saved", "path", out)
	return nil
}

func runDuplicate(cmd *cobra.Command, args []string) error {
	d, err := openDocument(args[0])
	if err != nil {
		return err
	}
	ids, err := eventIDs(d, args[1:])
	if err != nil {
		return err
	}

	added, err := d.Duplicate(ids...)
	if err != nil {
		return err
	}

	out, err := saveDocument(cmd, d, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Duplicated %d events: %s\n", len(added), out)
	return nil
}

func runInsert(cmd *cobra.Command, args []string) error {
	before, _ := cmd.Flags().GetBool("before")
	text, _ := cmd.Flags().GetString("text")

	d, err := openDocument(args[0])
	if err != nil {
		return err
	}
	e, err := eventAt(d, args[1])
	if err != nil {
		return err
	}

	var added *subtitle.Event
	if before {
		added, err = d.InsertBefore(e.ID)
	} else {
		added, err = d.InsertAfter(e.ID)
	}
	if err != nil {
		return err
	}
	if text != "" {
		if err := d.EditText(added.ID, text); err != nil {
			return err
		}
	}

	out, err := saveDocument(cmd, d, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Inserted event %s-%s: %s\n", added.Start.AsAss(), added.End.AsAss(), out)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	d, err := openDocument(args[0])
	if err != nil {
		return err
	}
	ids, err := eventIDs(d, args[1:])
	if err != nil {
		return err
	}

	if err := d.Delete(ids...); err != nil {
		return err
	}

	out, err := saveDocument(cmd, d, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d events: %s\n", len(ids), out)
	return nil
}

func runComment(cmd *cobra.Command, args []string) error {
	d, err := openDocument(args[0])
	if err != nil {
		return err
	}
	ids, err := eventIDs(d, args[1:])
	if err != nil {
		return err
	}

	if err := d.ToggleComment(ids...); err != nil {
		return err
	}

	out, err := saveDocument(cmd, d, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Toggled %d events: %s\n", len(ids), out)
	return nil
}

func runRenameStyle(cmd *cobra.Command, args []string) error {
	d, err := openDocument(args[0])
	if err != nil {
		return err
	}

	n, err := d.RenameStyle(args[1], args[2])
	if err != nil {
		return err
	}

	out, err := saveDocument(cmd, d, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed style %s to %s (%d events): %s\n", args[1], args[2], n, out)
	return nil
}
