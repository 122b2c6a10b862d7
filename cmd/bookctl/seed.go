package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/buymeabook/buymeabook-server/internal/domain"
	"github.com/buymeabook/buymeabook-server/internal/service"
	"github.com/buymeabook/buymeabook-server/internal/store"
)

var (
	seedFile string
	seedFake int
	seedRand uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import catalog books",
	Long: `Import books into the catalog the campaign wizard searches.

Books come from a YAML file with a top-level "books" list, or are
generated with --fake. Books with an id replace the stored book.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML catalog file (- for stdin)")
	seedCmd.Flags().IntVar(&seedFake, "fake", 0, "Generate this many fake books")
	seedCmd.Flags().Uint64Var(&seedRand, "seed", 0, "Random seed for --fake (0 picks one)")
	seedCmd.MarkFlagsMutuallyExclusive("file", "fake")
	seedCmd.MarkFlagsOneRequired("file", "fake")
}

// catalogFile is the YAML layout accepted by seed --file.
type catalogFile struct {
	Books []*domain.Book `yaml:"books"`
}

func runSeed(cmd *cobra.Command, _ []string) error {
	var books []*domain.Book
	switch {
	case seedFake > 0:
		books = fakeBooks(gofakeit.New(seedRand), seedFake)
	case seedFile == "-":
		parsed, err := parseCatalog(cmd.InOrStdin())
		if err != nil {
			return err
		}
		books = parsed
	default:
		f, err := os.Open(seedFile)
		if err != nil {
			return err
		}
		defer f.Close()
		parsed, err := parseCatalog(f)
		if err != nil {
			return fmt.Errorf("%s: %w", seedFile, err)
		}
		books = parsed
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.New(cfg.Data.StorePath(), log.Component("store").Logger)
	if err != nil {
		return err
	}
	defer st.Close()

	return importCatalog(cmd.Context(), st, service.NewBookService(st, service.BookConfig{}, log.Logger), books, cmd.OutOrStdout())
}

// importCatalog upserts books and reports the resulting catalog size.
func importCatalog(ctx context.Context, st *store.Store, svc *service.BookService, books []*domain.Book, out io.Writer) error {
	n, err := svc.Import(ctx, books)
	if err != nil {
		return fmt.Errorf("imported %d of %d books: %w", n, len(books), err)
	}
	total, err := st.CountBooks(ctx)
	if err != nil {
		return fmt.Errorf("count books: %w", err)
	}
	fmt.Fprintf(out, "Imported %d books, catalog holds %d\n", n, total)
	return nil
}

// parseCatalog decodes a catalog file. Unknown keys are rejected so typos
// do not silently drop fields.
func parseCatalog(r io.Reader) ([]*domain.Book, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cat catalogFile
	if err := dec.Decode(&cat); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog is empty")
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(cat.Books) == 0 {
		return nil, errors.New("catalog has no books")
	}
	return cat.Books, nil
}

// fakeBooks generates n plausible catalog books.
func fakeBooks(faker *gofakeit.Faker, n int) []*domain.Book {
	books := make([]*domain.Book, 0, n)
	for range n {
		books = append(books, &domain.Book{
			Title:      faker.BookTitle(),
			Author:     faker.BookAuthor(),
			ISBN:       faker.Numerify("978##########"),
			FinalPrice: int64(faker.IntRange(299, 4999)),
		})
	}
	return books
}
