package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photobook/internal/ai"
	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/photo"
	"github.com/kozaktomas/photobook/internal/photobook"
)

var composeCmd = &cobra.Command{
	Use:   "compose <directory>",
	Short: "Compose a photobook from a directory of photos",
	Long: `Compose a photobook from every supported image in a directory.
Photos are de-duplicated, scored for sharpness, lighting and composition,
and laid out on pages. With --provider the book also gets an AI narrative
(title, chapters, hero photos); provider failures fall back to heuristics.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompose,
}

func init() {
	rootCmd.AddCommand(composeCmd)

	composeCmd.Flags().String("title", "", "Book title (defaults to the AI title or the directory name)")
	composeCmd.Flags().String("out", "book.json", "Write the book document to this file (- for stdout)")
	composeCmd.Flags().String("provider", "", "AI provider: openai, gemini, ollama, llamacpp (defaults to AI_PROVIDER)")
	composeCmd.Flags().Bool("include-all", false, "Keep photos that would be excluded as unusable")
	composeCmd.Flags().Bool("save", false, "Save the book to the configured storage")
	composeCmd.Flags().Int("max-pages", 0, "Maximum number of pages (0 = configured default)")
}

func runCompose(cmd *cobra.Command, args []string) error {
	dir := args[0]
	cfg := config.Load()

	if p := mustGetString(cmd, "provider"); p != "" {
		cfg.AI.Provider = p
	}
	if n := mustGetInt(cmd, "max-pages"); n > 0 {
		cfg.Composer.MaxPages = n
	}
	out := mustGetString(cmd, "out")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := ai.NewProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}

	files, err := photo.LoadDir(ctx, dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported photos found in %s", dir)
	}
	fmt.Fprintf(os.Stderr, "Found %d photos in %s\n", len(files), dir)

	var bar *progressbar.ProgressBar
	res, err := photobook.New(cfg, provider).Build(ctx, files, photobook.Options{
		Title:      mustGetString(cmd, "title"),
		TitleHint:  dir,
		IncludeAll: mustGetBool(cmd, "include-all"),
		OnProgress: func(p photobook.ProgressInfo) {
			switch p.Phase {
			case photobook.PhaseAnalyzing:
				if bar == nil {
					bar = newProgressBar(p.Total, "Analyzing photos")
				}
				bar.Set(p.Current)
			case photobook.PhaseEnriching:
				if p.Current == 0 {
					fmt.Fprintf(os.Stderr, "\nRequesting narrative from %s...\n", provider.Name())
				}
			}
		},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("interrupted")
		}
		return err
	}
	if bar != nil {
		bar.Finish()
	}

	doc := res.Document
	fmt.Fprintf(os.Stderr, "\nComposed %q: %d pages, %d photos\n", doc.Title, len(doc.Pages), len(res.Selected))
	fmt.Fprintf(os.Stderr, "  Duplicates: %d, unreadable: %d, excluded: %d\n", res.Duplicates, res.Unreadable, len(res.Excluded))
	if provider != nil {
		usage := provider.GetUsage()
		fmt.Fprintf(os.Stderr, "  Narrative: %v (%d tokens in, %d out, $%.4f)\n",
			res.Enriched, usage.InputTokens, usage.OutputTokens, usage.TotalCost)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode book: %w", err)
	}
	if out == "-" {
		fmt.Println(string(data))
	} else {
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Fprintf(os.Stderr, "Book written to %s\n", out)
	}

	if mustGetBool(cmd, "save") {
		store, closer, err := openStorage(ctx, cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer closer.Close()
		if err := store.SaveBook(ctx, doc); err != nil {
			return fmt.Errorf("failed to save book: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Book saved with id %s\n", doc.ID)
	}
	return nil
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
}
