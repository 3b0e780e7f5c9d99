package commands

import (
	_ "embed"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"librarydesk/internal/model"
	"librarydesk/internal/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:embed catalog.json
var defaultCatalog []byte

var seedFile string

// SeedBook is one entry of a seed catalog file.
type SeedBook struct {
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Publisher   string          `json:"publisher"`
	PublishDate string          `json:"publish_date"`
	Price       decimal.Decimal `json:"price"`
	TotalCopies int             `json:"total_copies"`
	Category    string          `json:"category"`
	ISBN        string          `json:"isbn"`
}

// seedCmd loads a sample catalog
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add a sample catalog",
	Long: `Add books from a JSON catalog. Without --file the built-in sample catalog is used.

Examples:
  libraryctl seed
  libraryctl seed --file books.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data := defaultCatalog
		if seedFile != "" {
			b, err := os.ReadFile(seedFile)
			if err != nil {
				return fmt.Errorf("read catalog: %w", err)
			}
			data = b
		}
		books, err := parseCatalog(data)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer e.Close()

		catalog := service.NewCatalogService(e.store, e.cache)
		added, skipped := 0, 0
		for _, sb := range books {
			book, err := catalog.AddBook(cmd.Context(), sb.toModel())
			if err != nil {
				skipped++
				fmt.Fprintf(cmd.ErrOrStderr(), "skip %q: %v\n", sb.Title, err)
				continue
			}
			added++
			if !jsonOutput {
				fmt.Fprintf(cmd.OutOrStdout(), "added #%d %s\n", book.ID, book.Title)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d books, %d skipped\n", added, skipped)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "Path to a JSON catalog")
	rootCmd.AddCommand(seedCmd)
}

func parseCatalog(data []byte) ([]SeedBook, error) {
	var books []SeedBook
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return books, nil
}

func (sb SeedBook) toModel() *model.Book {
	return &model.Book{
		Title:       sb.Title,
		Author:      sb.Author,
		Publisher:   sb.Publisher,
		PublishDate: sb.PublishDate,
		Price:       sb.Price,
		TotalCopies: sb.TotalCopies,
		Category:    sb.Category,
		ISBN:        sb.ISBN,
	}
}
