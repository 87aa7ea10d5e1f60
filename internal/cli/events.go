package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mgpai22/subedit/internal/tags"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events [subtitle_file]",
	Short: "List the events of a subtitle file",
	Long: `List every event with its row number, times, style, actor and text.

Examples:
  subedit events episode.ass
  subedit events episode.ass --plain
  subedit events episode.ass --actors`,
	Args: cobra.ExactArgs(1),
	RunE: runEvents,
}

var blocksCmd = &cobra.Command{
	Use:   "blocks [subtitle_file] [row]",
	Short: "Show how an event's text parses into blocks",
	Long: `Show the plain, override, comment and drawing blocks of one event's
text, with the tags of each override block.

Examples:
  subedit blocks episode.ass 12`,
	Args: cobra.ExactArgs(2),
	RunE: runBlocks,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(blocksCmd)

	eventsCmd.Flags().Bool("plain", false, "Show text with override tags stripped")
	eventsCmd.Flags().Bool("actors", false, "List distinct actors instead of events")
	eventsCmd.Flags().Bool("effects", false, "List distinct effects instead of events")
	eventsCmd.Flags().Int("width", 60, "Maximum text column width")
}

func runEvents(cmd *cobra.Command, args []string) error {
	plain, _ := cmd.Flags().GetBool("plain")
	actors, _ := cmd.Flags().GetBool("actors")
	effects, _ := cmd.Flags().GetBool("effects")
	width, _ := cmd.Flags().GetInt("width")

	d, err := openDocument(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if actors || effects {
		values := d.Events().Actors()
		if effects {
			values = d.Events().Effects()
		}
		for _, v := range values {
			fmt.Fprintln(out, v)
		}
		return nil
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = uint(width)
	tbl.AddRow(
		bold.Sprint("#"),
		bold.Sprint("Start"),
		bold.Sprint("End"),
		bold.Sprint("Style"),
		bold.Sprint("Actor"),
		bold.Sprint("CPS"),
		bold.Sprint("Text"),
	)
	for i, e := range d.Events().Ordered() {
		text := e.Text
		if plain {
			text = e.StrippedText()
		}
		row := fmt.Sprintf("%d", i+1)
		if e.Comment {
			row = faint.Sprint(row + "c")
			text = faint.Sprint(text)
		}
		tbl.AddRow(
			row,
			e.Start.AsAss(),
			e.End.AsAss(),
			e.Style,
			e.Actor,
			fmt.Sprintf("%.1f", e.CPS()),
			text,
		)
	}
	tbl.RightAlign(0)

	fmt.Fprintln(out, tbl)
	return nil
}

var kindColors = map[tags.BlockKind]*color.Color{
	tags.KindPlain:    color.New(color.FgWhite),
	tags.KindOverride: color.New(color.FgHiYellow),
	tags.KindComment:  color.New(color.Faint, color.Italic),
	tags.KindDrawing:  color.New(color.FgCyan),
}

func runBlocks(cmd *cobra.Command, args []string) error {
	d, err := openDocument(args[0])
	if err != nil {
		return err
	}
	e, err := eventAt(d, args[1])
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Kind"), bold.Sprint("Source"), bold.Sprint("Tags"))
	for _, b := range tags.Parse(e.Text) {
		var detail string
		if o, ok := b.(*tags.OverrideBlock); ok {
			names := make([]string, 0, len(o.Tags))
			for _, t := range o.Tags {
				names = append(names, t.String())
			}
			detail = strings.Join(names, " ")
		}
		tbl.AddRow(kindColors[b.Kind()].Sprint(b.Kind().String()), b.Text(), detail)
	}

	fmt.Fprintln(cmd.OutOrStdout(), tbl)
	return nil
}
