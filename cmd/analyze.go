package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/photo"
	"github.com/kozaktomas/photobook/internal/quality"
	"github.com/kozaktomas/photobook/internal/selection"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <directory>",
	Short: "Score the photos in a directory",
	Long: `Score every supported image in a directory for sharpness, lighting and
composition, and show the tier each photo would get in a book. Photos that
would be excluded are listed with the reason.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Bool("json", false, "Output as JSON")
	analyzeCmd.Flags().Int("limit", 0, "Limit number of photos to analyze (0 = no limit)")
}

// AnalyzeOutput is one row of the analyze command.
type AnalyzeOutput struct {
	Name     string        `json:"name"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Score    quality.Score `json:"score"`
	Tier     string        `json:"tier,omitempty"`
	Excluded string        `json:"excluded,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	dir := args[0]
	cfg := config.Load()
	jsonOutput := mustGetBool(cmd, "json")
	limit := mustGetInt(cmd, "limit")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files, err := photo.LoadDir(ctx, dir)
	if err != nil {
		return err
	}
	files, _ = photo.Deduplicate(files)
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}

	recs := make([]photo.Record, len(files))
	for i, f := range files {
		rec, err := photo.Open(f, i)
		if err != nil && !jsonOutput {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		recs[i] = rec
	}

	var onProgress func(done, total int)
	var bar *progressbar.ProgressBar
	if !jsonOutput {
		bar = newProgressBar(len(recs), "Analyzing photos")
		onProgress = func(done, _ int) { bar.Set(done) }
	}

	scores, err := quality.NewAnalyzer(cfg.Analysis).AnalyzeBatch(ctx, recs, onProgress)
	if err != nil {
		return fmt.Errorf("failed to analyze photos: %w", err)
	}
	if bar != nil {
		bar.Finish()
	}

	rows := make([]AnalyzeOutput, len(recs))
	for i, rec := range recs {
		row := AnalyzeOutput{Name: rec.Name, Width: rec.Width, Height: rec.Height, Score: scores[i]}
		if reason := selection.ExclusionReason(scores[i]); reason != "" {
			row.Excluded = reason
		} else {
			row.Tier = string(selection.TierFor(scores[i].Overall))
		}
		rows[i] = row
	}
	slices.SortStableFunc(rows, func(a, b AnalyzeOutput) int {
		switch {
		case a.Score.Overall > b.Score.Overall:
			return -1
		case a.Score.Overall < b.Score.Overall:
			return 1
		}
		return 0
	})

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	fmt.Println()
	fmt.Printf("%-32s %11s %7s %7s %7s %7s  %s\n", "NAME", "SIZE", "OVERALL", "SHARP", "LIGHT", "COMP", "TIER")
	for _, r := range rows {
		status := r.Tier
		if r.Excluded != "" {
			status = "excluded: " + r.Excluded
		}
		if r.Score.Fallback {
			status += " (not decodable, neutral score)"
		}
		fmt.Printf("%-32s %11s %7.2f %7.2f %7.2f %7.2f  %s\n",
			truncate(r.Name, 32), fmt.Sprintf("%dx%d", r.Width, r.Height),
			r.Score.Overall, r.Score.Sharpness, r.Score.Lighting, r.Score.Composition, status)
	}
	return nil
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
