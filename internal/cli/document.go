package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mgpai22/subedit/internal/convert"
	"github.com/mgpai22/subedit/internal/document"
	"github.com/mgpai22/subedit/internal/history"
	"github.com/mgpai22/subedit/internal/subtitle"
	"github.com/spf13/cobra"
)

func openDocument(path string) (*document.Document, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("subtitle file not found: %s", path)
	}

	h := history.NewManager(history.WithAmendWindow(cfg.History.AmendWindow))
	d, err := convert.Open(path,
		document.WithLogger(logger),
		document.WithHistory(h),
		document.WithSoftLinebreaks(cfg.Editing.SoftLinebreaks),
		document.WithDefaultStyle(cfg.Editing.DefaultStyle),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse subtitle file: %w", err)
	}

	logger.Debugw("Parsed subtitle file",
		"path", path,
		"events", d.Events().Len(),
		"styles", d.Styles().Len(),
	)
	return d, nil
}

// saveDocument writes d to --output, or back to input. The output format
// follows the file extension.
func saveDocument(cmd *cobra.Command, d *document.Document, input string) (string, error) {
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = input
	}

	if c := d.History().PeekHistory(); c != nil {
		logger.Infow("Applied edit",
			"action", c.Message,
			"change", c.Type.String(),
			"events", len(c.Snapshots),
		)
	}

	if err := convert.Save(d, outputPath); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	abs, _ := filepath.Abs(outputPath)
	return abs, nil
}

// eventAt resolves a 1-based row number to its event.
func eventAt(d *document.Document, arg string) (*subtitle.Event, error) {
	row, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid row %q: expected a number", arg)
	}
	ordered := d.Events().Ordered()
	if row < 1 || row > len(ordered) {
		return nil, fmt.Errorf("row %d out of range: file has %d events", row, len(ordered))
	}
	return ordered[row-1], nil
}

// eventIDs resolves rows to event IDs. No rows means every event.
func eventIDs(d *document.Document, args []string) ([]int, error) {
	if len(args) == 0 {
		return d.Events().IDs(), nil
	}
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		e, err := eventAt(d, arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, e.ID)
	}
	return ids, nil
}
