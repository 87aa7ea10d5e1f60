package cli

import (
	"fmt"
	"strings"

	"github.com/mgpai22/subedit/internal/tags"
	"github.com/spf13/cobra"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle [subtitle_file] [row]",
	Short: "Toggle bold, italic, underline or strikeout over a selection",
	Long: `Toggle one of the b, i, u or s override tags over a range of an
event's raw text. Positions are byte offsets into the text as written in
the file; with --end equal to --start the tag applies to the rest of the
line.

Examples:
  subedit toggle episode.ass 3 --tag i --start 0 --end 5
  subedit toggle episode.ass 3 --tag b --start 6 -o bold.ass`,
	Args: cobra.ExactArgs(2),
	RunE: runToggle,
}

var setTagCmd = &cobra.Command{
	Use:   "settag [subtitle_file] [row]",
	Short: "Set an override tag at a position in an event's text",
	Long: `Set an override tag such as \pos, \fs or \c at a raw position in an
event's text. An existing tag of the same kind in the governing block is
replaced; otherwise a new block is opened.

Examples:
  subedit settag episode.ass 3 --tag fs --value 48
  subedit settag episode.ass 3 --tag pos --value 320,240
  subedit settag episode.ass 3 --tag c --value '&H0000FF&' --pos 6`,
	Args: cobra.ExactArgs(2),
	RunE: runSetTag,
}

var removeTagCmd = &cobra.Command{
	Use:   "rmtag [subtitle_file] [row]",
	Short: "Remove the override tag governing a position",
	Args:  cobra.ExactArgs(2),
	RunE:  runRemoveTag,
}

var stripCmd = &cobra.Command{
	Use:   "strip [subtitle_file] [row...]",
	Short: "Remove override tags, comments and drawings from events",
	Long: `Remove every override block, comment and drawing from the given
events, or from all events when no rows are given.

Examples:
  subedit strip episode.ass
  subedit strip episode.ass 1 2 5 -o clean.ass`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStrip,
}

func init() {
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(setTagCmd)
	rootCmd.AddCommand(removeTagCmd)
	rootCmd.AddCommand(stripCmd)

	toggleCmd.Flags().String("tag", "b", "Tag to toggle (b, i, u, s)")
	toggleCmd.Flags().Int("start", 0, "Selection start")
	toggleCmd.Flags().Int("end", -1, "Selection end (default: same as start)")

	setTagCmd.Flags().String("tag", "", "Tag name without the backslash (required)")
	setTagCmd.Flags().String("value", "", "Tag parameters, comma separated")
	setTagCmd.Flags().Int("pos", 0, "Raw position in the text")
	_ = setTagCmd.MarkFlagRequired("tag")

	removeTagCmd.Flags().String("tag", "", "Tag name without the backslash (required)")
	removeTagCmd.Flags().Int("pos", 0, "Raw position in the text")
	_ = removeTagCmd.MarkFlagRequired("tag")
}

var toggleable = map[string]bool{tags.B: true, tags.I: true, tags.U: true, tags.S: true}

func tagName(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), `\`)
}

func runToggle(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("tag")
	start, _ := cmd.Flags().GetInt("start")
	end, _ := cmd.Flags().GetInt("end")

	name = tagName(name)
	if !toggleable[name] {
		return fmt.Errorf("tag %q cannot be toggled: use b, i, u or s", name)
	}
	if end < 0 {
		end = start
	}

	d, err := openDocument(args[0])
	if err != nil {
		return err
	}
	e, err := eventAt(d, args[1])
	if err != nil {
		return err
	}

	shift, err := d.ToggleTag(e.ID, name, start, end)
	if err != nil {
		return err
	}
	logger.Debugw("Toggled tag", "tag", name, "shift", shift)

	out, err := saveDocument(cmd, d, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", e.Text)
	logger.Infow("Saved", "path", out)
	return nil
}

func runSetTag(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("tag")
	value, _ := cmd.Flags().GetString("value")
	pos, _ := cmd.Flags().GetInt("pos")

	name = tagName(name)
	if name == "" {
		return fmt.Errorf("tag name is required")
	}

	d, err := openDocument(args[0])
	if err != nil {
		return err
	}
	e, err := eventAt(d, args[1])
	if err != nil {
		return err
	}

	var params []string
	if value != "" {
		params = strings.Split(value, ",")
	}
	tag := tags.NewTag(name, params...)

	norm := tags.NewEditor(e.Text).NormalizeIndex(pos)
	if _, err := d.SetTag(e.ID, tag, norm, pos); err != nil {
		return err
	}

	out, err := saveDocument(cmd, d, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", e.Text)
	logger.Infow("Saved", "path", out)
	return nil
}

func runRemoveTag(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("tag")
	pos, _ := cmd.Flags().GetInt("pos")

	d, err := openDocument(args[0])
	if err != nil {
		return err
	}
	e, err := eventAt(d, args[1])
	if err != nil {
		return err
	}

	norm := tags.NewEditor(e.Text).NormalizeIndex(pos)
	shift, err := d.RemoveTag(e.ID, tagName(name), norm)
	if err != nil {
		return err
	}
	if shift == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No \\%s tag governs position %d\n", tagName(name), pos)
		return nil
	}

	out, err := saveDocument(cmd, d, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", e.Text)
	logger.Infow("Saved", "path", out)
	return nil
}

func runStrip(cmd *cobra.Command, args []string) error {
	d, err := openDocument(args[0])
	if err != nil {
		return err
	}
	ids, err := eventIDs(d, args[1:])
	if err != nil {
		return err
	}

	if err := d.StripTags(ids...); err != nil {
		return err
	}

	out, err := saveDocument(cmd, d, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stripped tags from %d events: %s\n", len(ids), out)
	return nil
}
