package cli

import (
	"fmt"

	"github.com/mgpai22/subedit/internal/karaoke"
	"github.com/mgpai22/subedit/internal/subtitle"
	"github.com/spf13/cobra"
)

var karaokeCmd = &cobra.Command{
	Use:   "karaoke [subtitle_file] [row...]",
	Short: "Retime or retag karaoke syllables",
	Long: `Rework the \k, \K, \kf and \ko syllables of events. With no rows every
event is processed; events without karaoke tags are skipped unless
--auto-split is given.

--fit stretches or trims the syllables so they span the event's times.
--type switches every syllable to another karaoke tag.
--auto-split turns a line with a single syllable into one syllable per
word.

Examples:
  subedit karaoke episode.ass --fit
  subedit karaoke episode.ass 4 5 --type kf
  subedit karaoke song.ass --auto-split --fit`,
	Args: cobra.MinimumNArgs(1),
	RunE: runKaraoke,
}

func init() {
	rootCmd.AddCommand(karaokeCmd)

	karaokeCmd.Flags().Bool("fit", false, "Fit syllables to the event times")
	karaokeCmd.Flags().String("type", "", "Karaoke tag for every syllable (k, K, kf, ko)")
	karaokeCmd.Flags().Bool("auto-split", false, "Split single-syllable lines at spaces")
}

func runKaraoke(cmd *cobra.Command, args []string) error {
	fit, _ := cmd.Flags().GetBool("fit")
	tagType, _ := cmd.Flags().GetString("type")
	autoSplit, _ := cmd.Flags().GetBool("auto-split")

	tagType = tagName(tagType)
	if tagType != "" && !karaoke.IsSyllableTag(tagType) {
		return fmt.Errorf("%w: %q, use k, K, kf or ko", karaoke.ErrTagType, tagType)
	}
	if !fit && tagType == "" && !autoSplit {
		return fmt.Errorf("nothing to do: give --fit, --type or --auto-split")
	}

	d, err := openDocument(args[0])
	if err != nil {
		return err
	}
	ids, err := eventIDs(d, args[1:])
	if err != nil {
		return err
	}

	n, err := d.MapKaraoke("karaoke", autoSplit, func(e *subtitle.Event, l *karaoke.Line) error {
		if tagType != "" {
			if err := l.SetTagType(tagType); err != nil {
				return err
			}
		}
		if fit {
			l.SetLineTimes(e.Start, e.End)
		}
		return nil
	}, ids...)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No karaoke events changed")
		return nil
	}

	out, err := saveDocument(cmd, d, args[0])
	if err != nil {
		return err
	}
	logger.Infow("Updated karaoke", "events", n, "fit", fit, "type", tagType)
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %d karaoke events: %s\n", n, out)
	return nil
}
