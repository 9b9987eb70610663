// Command catalog-import bulk-loads products into the catalog from
// gzip-compressed JSON lines files. Each line is one product:
//
//	{"name": "Azucar Morena 1kg", "unitPrice": "2.80"}
//
// Files are parsed concurrently, deduplicated by name (last one wins), and
// written in a single COPY.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/orderdesk/orderdesk/internal/domain/product"
	"github.com/orderdesk/orderdesk/internal/storage/postgres"
)

const progressEvery = 100_000

type productLine struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

func main() {
	var databaseURL string
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if flag.NArg() == 0 {
		slog.Error("usage: catalog-import [flags] file.jsonl.gz ...")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, flag.Args()); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	products, err := parseFiles(ctx, files)
	if err != nil {
		return errors.Wrap(err, "parse files")
	}
	if len(products) == 0 {
		slog.Info("no products to import")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	n, err := pool.CopyFrom(ctx,
		pgx.Identifier{"products"},
		[]string{"name", "unit_price"},
		pgx.CopyFromSlice(len(products), func(i int) ([]any, error) {
			return []any{products[i].Name, products[i].UnitPrice}, nil
		}),
	)
	if err != nil {
		return errors.Wrap(err, "copy products")
	}

	slog.Info("products imported", slog.Int64("count", n))
	return nil
}

// parseFiles reads all input files concurrently and merges their products,
// deduplicating by name. Later files win over earlier ones.
func parseFiles(ctx context.Context, files []string) ([]product.Product, error) {
	var (
		mu     sync.Mutex
		byName = make(map[string]product.Product)
	)

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(parseFile(ctx, i, f, &mu, byName))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	products := make([]product.Product, 0, len(byName))
	for _, p := range byName {
		products = append(products, p)
	}
	return products, nil
}

func parseFile(ctx context.Context, idx int, path string, mu *sync.Mutex, byName map[string]product.Product) func() error {
	return func() error {
		var count, skipped uint64

		err := streamGzFile(ctx, path, func(line string) {
			var pl productLine
			if err := json.Unmarshal([]byte(line), &pl); err != nil {
				skipped++
				return
			}
			p := product.Product{Name: strings.TrimSpace(pl.Name), UnitPrice: pl.UnitPrice}
			if err := p.Validate(); err != nil {
				skipped++
				return
			}

			mu.Lock()
			byName[p.Name] = p
			mu.Unlock()

			count++
			if count%progressEvery == 0 {
				slog.Info("parse progress",
					slog.Int("file", idx+1),
					slog.Uint64("products", count),
				)
			}
		})
		if err != nil {
			return errors.Wrapf(err, "parse file %d", idx+1)
		}

		slog.Info("parse complete",
			slog.Int("file", idx+1),
			slog.Uint64("products", count),
			slog.Uint64("skipped", skipped),
		)
		return nil
	}
}

// streamGzFile opens a gzip-compressed file and calls fn for each non-empty line.
func streamGzFile(ctx context.Context, path string, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			fn(line)
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
