// Command seed-db loads restaurants, menu items, and discounts from a JSON
// fixture file into the database. Intended for local development and
// integration test environments.
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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/dineout-quote/internal/repository"
)

type fixture struct {
	Restaurants []restaurantJSON `json:"restaurants"`
	MenuItems   []menuItemJSON   `json:"menuItems"`
	Discounts   []discountJSON   `json:"discounts"`
}

type restaurantJSON struct {
	ID                    string           `json:"id"`
	Name                  string           `json:"name"`
	GSTRate               *decimal.Decimal `json:"gstRate"`
	ServiceChargeRate     *decimal.Decimal `json:"serviceChargeRate"`
	DeliveryFee           *decimal.Decimal `json:"deliveryFee"`
	PreorderSplitPercent  *decimal.Decimal `json:"preorderSplitPercent"`
	AllowDiscountStacking *bool            `json:"allowDiscountStacking"`
	Currency              *string          `json:"currency"`
	MaxQtyPerItem         *int             `json:"maxQtyPerItem"`
}

type menuItemJSON struct {
	RestaurantID string          `json:"restaurantId"`
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Active       *bool           `json:"active"`
}

type discountJSON struct {
	ID           string           `json:"id"`
	RestaurantID string           `json:"restaurantId"`
	Kind         string           `json:"kind"`
	DiscountMode string           `json:"discountMode"`
	Amount       decimal.Decimal  `json:"amount"`
	CouponCode   *string          `json:"couponCode"`
	AppliesTo    []string         `json:"appliesTo"`
	ValidFrom    *time.Time       `json:"validFrom"`
	ValidUntil   *time.Time       `json:"validUntil"`
	SlotStart    *string          `json:"slotStart"`
	SlotEnd      *string          `json:"slotEnd"`
	MinSpend     *decimal.Decimal `json:"minSpend"`
	MaxDiscount  *decimal.Decimal `json:"maxDiscount"`
	Active       *bool            `json:"active"`
}

const (
	upsertRestaurantSQL = `INSERT INTO restaurants
		(id, name, gst_rate, service_charge_rate, delivery_fee, preorder_split_percent,
		 allow_discount_stacking, currency, max_qty_per_item)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			gst_rate = EXCLUDED.gst_rate,
			service_charge_rate = EXCLUDED.service_charge_rate,
			delivery_fee = EXCLUDED.delivery_fee,
			preorder_split_percent = EXCLUDED.preorder_split_percent,
			allow_discount_stacking = EXCLUDED.allow_discount_stacking,
			currency = EXCLUDED.currency,
			max_qty_per_item = EXCLUDED.max_qty_per_item`

	upsertMenuItemSQL = `INSERT INTO menu_items (restaurant_id, id, name, price, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (restaurant_id, id) DO UPDATE SET
			name = EXCLUDED.name, price = EXCLUDED.price, active = EXCLUDED.active`

	upsertDiscountSQL = `INSERT INTO discounts
		(id, restaurant_id, kind, discount_mode, amount, coupon_code, applies_to,
		 valid_from, valid_until, slot_start, slot_end, min_spend, max_discount, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			kind = EXCLUDED.kind,
			discount_mode = EXCLUDED.discount_mode,
			amount = EXCLUDED.amount,
			coupon_code = EXCLUDED.coupon_code,
			applies_to = EXCLUDED.applies_to,
			valid_from = EXCLUDED.valid_from,
			valid_until = EXCLUDED.valid_until,
			slot_start = EXCLUDED.slot_start,
			slot_end = EXCLUDED.slot_end,
			min_spend = EXCLUDED.min_spend,
			max_discount = EXCLUDED.max_discount,
			active = EXCLUDED.active`
)

func main() {
	var (
		databaseURL string
		fixtureFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&fixtureFile, "fixture-file", "db/seed/fixture.json", "path to fixture JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, fixtureFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, fixtureFile string) error {
	data, err := os.ReadFile(fixtureFile)
	if err != nil {
		return errors.Wrap(err, "read fixture file")
	}

	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return errors.Wrap(err, "parse fixture file")
	}

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seed(ctx, pool, fx); err != nil {
		return err
	}

	slog.Info("seeded",
		slog.Int("restaurants", len(fx.Restaurants)),
		slog.Int("menu_items", len(fx.MenuItems)),
		slog.Int("discounts", len(fx.Discounts)),
	)
	return nil
}

func seed(ctx context.Context, pool *pgxpool.Pool, fx fixture) error {
	for _, r := range fx.Restaurants {
		_, err := pool.Exec(ctx, upsertRestaurantSQL,
			r.ID, r.Name, r.GSTRate, r.ServiceChargeRate, r.DeliveryFee,
			r.PreorderSplitPercent, r.AllowDiscountStacking, r.Currency, r.MaxQtyPerItem,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert restaurant %s", r.ID)
		}
	}

	for _, m := range fx.MenuItems {
		active := true
		if m.Active != nil {
			active = *m.Active
		}
		if _, err := pool.Exec(ctx, upsertMenuItemSQL, m.RestaurantID, m.ID, m.Name, m.Price, active); err != nil {
			return errors.Wrapf(err, "upsert menu item %s", m.ID)
		}
	}

	for _, d := range fx.Discounts {
		mode := d.DiscountMode
		if mode == "" {
			mode = "percentage"
		}
		appliesTo := d.AppliesTo
		if appliesTo == nil {
			appliesTo = []string{}
		}
		active := true
		if d.Active != nil {
			active = *d.Active
		}
		_, err := pool.Exec(ctx, upsertDiscountSQL,
			d.ID, d.RestaurantID, d.Kind, mode, d.Amount, d.CouponCode, appliesTo,
			d.ValidFrom, d.ValidUntil, d.SlotStart, d.SlotEnd, d.MinSpend, d.MaxDiscount, active,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert discount %s", d.ID)
		}
	}
	return nil
}
