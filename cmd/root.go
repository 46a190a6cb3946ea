package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "photobook",
	Short: "Compose and edit photobooks from a set of photos",
	Long: `Photobook scores a set of photos for quality, selects the best of them,
optionally asks an AI provider (OpenAI, Gemini, Ollama, llama.cpp) for a story
and lays everything out on pages. The serve command exposes the composed
books for interactive editing.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
