// Command catalog-ingest bulk-imports products from gzipped CSV supplier
// exports. Each line is "name,description,price,unit_weight_grams". A bloom
// filter seeded with the existing catalog keeps the common case (a brand-new
// product) free of per-line existence queries; only probable duplicates are
// verified against the database.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Ashab-Asir/order-management/internal/storage/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

type productLine struct {
	name            string
	description     string
	price           decimal.Decimal
	unitWeightGrams int64
}

func main() {
	var (
		databaseURL string
		dataFiles   stringList
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Var(&dataFiles, "file", "gzipped CSV catalog file (repeatable)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if len(dataFiles) == 0 {
		slog.Error("at least one --file is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, dataFiles); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
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

	ing, err := newIngester(ctx, pool)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(ing.ingestFile(ctx, i, f))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("ingest summary",
		slog.Uint64("inserted", ing.inserted.Load()),
		slog.Uint64("skipped", ing.skipped.Load()),
	)
	return nil
}

// ingester shares one bloom filter of known product names across all file
// workers. The filter may report false positives, so a positive test is
// always verified with an exact existence query before a line is skipped.
type ingester struct {
	pool *pgxpool.Pool

	mu     sync.Mutex
	filter *bloom.BloomFilter

	inserted atomic.Uint64
	skipped  atomic.Uint64
}

func newIngester(ctx context.Context, pool *pgxpool.Pool) (*ingester, error) {
	ing := &ingester{
		pool:   pool,
		filter: bloom.NewWithEstimates(bloomCapacity, bloomFPR),
	}

	rows, err := pool.Query(ctx, `SELECT name FROM products`)
	if err != nil {
		return nil, errors.Wrap(err, "load existing product names")
	}
	defer rows.Close()

	var seeded int
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "scan product name")
		}
		ing.filter.AddString(name)
		seeded++
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate product names")
	}

	slog.Info("bloom filter seeded", slog.Int("existing_products", seeded))
	return ing, nil
}

func (ing *ingester) ingestFile(ctx context.Context, idx int, path string) func() error {
	return func() error {
		var count uint64

		err := streamGzCSV(ctx, path, func(p productLine) error {
			count++
			if count%progressEvery == 0 {
				slog.Info("ingest progress",
					slog.Int("file", idx+1),
					slog.Uint64("lines", count),
				)
			}
			return ing.upsert(ctx, p)
		})
		if err != nil {
			return errors.Wrapf(err, "ingest file %s", path)
		}

		slog.Info("file complete", slog.Int("file", idx+1), slog.Uint64("lines", count))
		return nil
	}
}

func (ing *ingester) upsert(ctx context.Context, p productLine) error {
	ing.mu.Lock()
	maybeKnown := ing.filter.TestString(p.name)
	if !maybeKnown {
		ing.filter.AddString(p.name)
	}
	ing.mu.Unlock()

	if maybeKnown {
		var exists bool
		err := ing.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM products WHERE name = $1)`, p.name,
		).Scan(&exists)
		if err != nil {
			return errors.Wrapf(err, "check product %q", p.name)
		}
		if exists {
			ing.skipped.Add(1)
			return nil
		}
	}

	_, err := ing.pool.Exec(ctx,
		`INSERT INTO products (name, description, price, unit_weight_grams, is_enabled)
		 VALUES ($1, $2, $3, $4, TRUE)`,
		p.name, p.description, p.price, p.unitWeightGrams,
	)
	if err != nil {
		return errors.Wrapf(err, "insert product %q", p.name)
	}
	ing.inserted.Add(1)
	return nil
}

// streamGzCSV opens a gzip-compressed CSV file and calls fn for each record.
func streamGzCSV(ctx context.Context, path string, fn func(productLine) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	r := csv.NewReader(gz)
	r.FieldsPerRecord = 4

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read csv record")
		}

		price, err := decimal.NewFromString(record[2])
		if err != nil {
			return errors.Wrapf(err, "parse price %q", record[2])
		}
		grams, err := strconv.ParseInt(record[3], 10, 64)
		if err != nil {
			return errors.Wrapf(err, "parse weight %q", record[3])
		}

		if err := fn(productLine{
			name:            record[0],
			description:     record[1],
			price:           price,
			unitWeightGrams: grams,
		}); err != nil {
			return err
		}
	}
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return "" }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

