package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photobook/internal/config"
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Manage stored photobooks",
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored books",
	Args:  cobra.NoArgs,
	RunE:  runBooksList,
}

var booksExportCmd = &cobra.Command{
	Use:   "export <book-id>",
	Short: "Print a stored book as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runBooksExport,
}

var booksDeleteCmd = &cobra.Command{
	Use:   "delete <book-id>",
	Short: "Delete a stored book",
	Args:  cobra.ExactArgs(1),
	RunE:  runBooksDelete,
}

func init() {
	rootCmd.AddCommand(booksCmd)
	booksCmd.AddCommand(booksListCmd)
	booksCmd.AddCommand(booksExportCmd)
	booksCmd.AddCommand(booksDeleteCmd)

	booksListCmd.Flags().Bool("json", false, "Output as JSON")
}

func runBooksList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store, closer, err := openStorage(ctx, config.Load(), os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	books, err := store.ListBooks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(books)
	}

	if len(books) == 0 {
		fmt.Println("No books stored")
		return nil
	}
	fmt.Printf("%-36s  %-30s %5s %6s  %s\n", "ID", "TITLE", "PAGES", "PHOTOS", "UPDATED")
	for _, b := range books {
		fmt.Printf("%-36s  %-30s %5d %6d  %s\n", b.ID, truncate(b.Title, 30), b.PageCount, b.PhotoCount, b.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runBooksExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store, closer, err := openStorage(ctx, config.Load(), os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	doc, err := store.GetBook(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load book: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("book %s not found", args[0])
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode book: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func runBooksDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store, closer, err := openStorage(ctx, config.Load(), os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	doc, err := store.GetBook(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load book: %w", err)
	}
	if doc == nil {
		return errors.New("book not found")
	}
	if err := store.DeleteBook(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	fmt.Printf("Deleted %q (%s)\n", doc.Title, doc.ID)
	return nil
}
