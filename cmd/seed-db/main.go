package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Ashab-Asir/order-management/internal/domain/auth"
	"github.com/Ashab-Asir/order-management/internal/storage/postgres"
)

type seedFile struct {
	Products   []productJSON   `json:"products"`
	Promotions []promotionJSON `json:"promotions"`
}

type productJSON struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	UnitWeightGrams int64           `json:"unitWeightGrams"`
	Enabled         bool            `json:"enabled"`
}

type promotionJSON struct {
	Title    string           `json:"title"`
	Kind     string           `json:"kind"`
	Value    *decimal.Decimal `json:"value,omitempty"`
	StartsAt time.Time        `json:"startsAt"`
	EndsAt   time.Time        `json:"endsAt"`
	Enabled  bool             `json:"enabled"`
	Slabs    []slabJSON       `json:"slabs,omitempty"`
}

type slabJSON struct {
	MinWeightKg     decimal.Decimal  `json:"minWeightKg"`
	MaxWeightKg     *decimal.Decimal `json:"maxWeightKg,omitempty"`
	DiscountPerUnit decimal.Decimal  `json:"discountPerUnit"`
}

func main() {
	var (
		databaseURL  string
		seedPath     string
		apiKey       string
		apiKeyRole   string
		apiKeyUserID int64
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/data.json", "path to seed JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or ORDERS_SEED_API_KEY env)")
	flag.StringVar(&apiKeyRole, "api-key-role", "USER", "role for the seeded API key (USER or ADMIN)")
	flag.Int64Var(&apiKeyUserID, "api-key-user", 1, "user id attached to the seeded API key")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or ORDERS_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("ORDERS_SEED_API_KEY")
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("ORDERS_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath, apiKey, apiKeyRole, apiKeyUserID, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath, apiKey, apiKeyRole string, apiKeyUserID int64, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	raw, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrapf(err, "read seed file %s", seedPath)
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return errors.Wrap(err, "parse seed file")
	}

	if err := seedProducts(ctx, pool, seed.Products); err != nil {
		return err
	}
	if err := seedPromotions(ctx, pool, seed.Promotions); err != nil {
		return err
	}
	if apiKey != "" {
		if err := seedAPIKey(ctx, pool, apiKey, apiKeyRole, apiKeyUserID, pepper); err != nil {
			return err
		}
	}
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, products []productJSON) error {
	for _, p := range products {
		_, err := pool.Exec(ctx,
			`INSERT INTO products (name, description, price, unit_weight_grams, is_enabled)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (name) DO NOTHING`,
			p.Name, p.Description, p.Price, p.UnitWeightGrams, p.Enabled,
		)
		if err != nil {
			return errors.Wrapf(err, "insert product %q", p.Name)
		}
	}
	slog.Info("products seeded", slog.Int("count", len(products)))
	return nil
}

func seedPromotions(ctx context.Context, pool *pgxpool.Pool, promotions []promotionJSON) error {
	for _, p := range promotions {
		var id int64
		err := pool.QueryRow(ctx,
			`INSERT INTO promotions (title, kind, value, starts_at, ends_at, is_enabled)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (title) DO NOTHING
			 RETURNING id`,
			p.Title, p.Kind, p.Value, p.StartsAt, p.EndsAt, p.Enabled,
		).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			// Already seeded on a previous run, slabs included.
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "insert promotion %q", p.Title)
		}

		for _, s := range p.Slabs {
			_, err := pool.Exec(ctx,
				`INSERT INTO promotion_slabs (promotion_id, min_weight_kg, max_weight_kg, discount_per_unit)
				 VALUES ($1, $2, $3, $4)`,
				id, s.MinWeightKg, s.MaxWeightKg, s.DiscountPerUnit,
			)
			if err != nil {
				return errors.Wrapf(err, "insert slab for promotion %q", p.Title)
			}
		}
	}
	slog.Info("promotions seeded", slog.Int("count", len(promotions)))
	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, key, role string, userID int64, pepper string) error {
	hash := auth.HashKey(key, []byte(pepper))
	_, err := pool.Exec(ctx,
		`INSERT INTO api_keys (key_hash, name, role, user_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (key_hash) DO NOTHING`,
		hash, "seeded", role, userID,
	)
	if err != nil {
		return errors.Wrap(err, "insert api key")
	}
	slog.Info("api key seeded", slog.String("role", role))
	return nil
}
