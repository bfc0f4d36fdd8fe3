// Package store persists accepted inventory rows to PostgreSQL. It
// implements the pipeline's Upserter contract: one batch is one transaction,
// keyed by (owner_id, stock_number) so a corrected re-submission updates
// records instead of duplicating them.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gemdesk/inventory/internal/ingest"
)

// Inventory is the pgx-backed store.
type Inventory struct {
	pool *pgxpool.Pool
}

// New wraps a connection pool. The pool's lifecycle belongs to the caller.
func New(pool *pgxpool.Pool) *Inventory {
	return &Inventory{pool: pool}
}

// schemaSQL creates the inventory table. The unique key carries the upsert
// contract; decimals are numeric so price math stays exact.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS inventory_items (
	id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	owner_id         TEXT        NOT NULL,
	stock_number     TEXT        NOT NULL,
	shape            TEXT        NOT NULL,
	carats           NUMERIC(8,3) NOT NULL,
	color            TEXT        NOT NULL,
	clarity          TEXT        NOT NULL,
	cut              TEXT,
	polish           TEXT,
	symmetry         TEXT,
	fluorescence     TEXT        NOT NULL,
	lab              TEXT,
	certificate_number TEXT      NOT NULL,
	certificate_url  TEXT,
	price_per_carat  NUMERIC(12,2),
	total_price      NUMERIC(14,2),
	discount         NUMERIC(7,2),
	depth_percent    NUMERIC(5,2),
	table_percent    NUMERIC(5,2),
	measurements     TEXT,
	girdle           TEXT,
	culet            TEXT,
	fancy_color      TEXT,
	fancy_intensity  TEXT,
	origin           TEXT,
	treatment        TEXT,
	location         TEXT,
	availability     TEXT,
	image_url        TEXT,
	video_url        TEXT,
	comment          TEXT,
	defaulted_fields TEXT[]      NOT NULL DEFAULT '{}',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (owner_id, stock_number)
);
CREATE INDEX IF NOT EXISTS idx_inventory_items_owner ON inventory_items (owner_id);
`

// EnsureSchema creates the inventory table and indexes if missing.
func (s *Inventory) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure inventory schema: %w", err)
	}
	return nil
}

const upsertSQL = `
INSERT INTO inventory_items (
	owner_id, stock_number, shape, carats, color, clarity, cut, polish,
	symmetry, fluorescence, lab, certificate_number, certificate_url,
	price_per_carat, total_price, discount, depth_percent, table_percent,
	measurements, girdle, culet, fancy_color, fancy_intensity, origin,
	treatment, location, availability, image_url, video_url, comment,
	defaulted_fields
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
	$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28,
	$29, $30, $31
)
ON CONFLICT (owner_id, stock_number) DO UPDATE SET
	shape = EXCLUDED.shape,
	carats = EXCLUDED.carats,
	color = EXCLUDED.color,
	clarity = EXCLUDED.clarity,
	cut = EXCLUDED.cut,
	polish = EXCLUDED.polish,
	symmetry = EXCLUDED.symmetry,
	fluorescence = EXCLUDED.fluorescence,
	lab = EXCLUDED.lab,
	certificate_number = EXCLUDED.certificate_number,
	certificate_url = EXCLUDED.certificate_url,
	price_per_carat = EXCLUDED.price_per_carat,
	total_price = EXCLUDED.total_price,
	discount = EXCLUDED.discount,
	depth_percent = EXCLUDED.depth_percent,
	table_percent = EXCLUDED.table_percent,
	measurements = EXCLUDED.measurements,
	girdle = EXCLUDED.girdle,
	culet = EXCLUDED.culet,
	fancy_color = EXCLUDED.fancy_color,
	fancy_intensity = EXCLUDED.fancy_intensity,
	origin = EXCLUDED.origin,
	treatment = EXCLUDED.treatment,
	location = EXCLUDED.location,
	availability = EXCLUDED.availability,
	image_url = EXCLUDED.image_url,
	video_url = EXCLUDED.video_url,
	comment = EXCLUDED.comment,
	defaulted_fields = EXCLUDED.defaulted_fields,
	updated_at = now()
`

// UpsertBatch writes one batch inside a single transaction. Either every
// row in the batch lands or none does; the pipeline records the outcome
// per batch and moves on regardless.
func (s *Inventory) UpsertBatch(ctx context.Context, owner string, rows []ingest.Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(upsertSQL, upsertArgs(owner, row)...)
	}

	br := tx.SendBatch(ctx, batch)
	persisted := 0
	for range rows {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("upsert row: %w", err)
		}
		persisted++
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit batch: %w", err)
	}
	return persisted, nil
}

func upsertArgs(owner string, row ingest.Row) []any {
	defaulted := make([]string, len(row.Defaulted))
	for i, f := range row.Defaulted {
		defaulted[i] = string(f)
	}

	v := func(f ingest.Field) any {
		s := row.Values[f]
		if s == "" {
			return nil
		}
		return s
	}

	return []any{
		owner,
		row.Values[ingest.FieldStockNumber],
		row.Values[ingest.FieldShape],
		row.Carats,
		row.Values[ingest.FieldColor],
		row.Values[ingest.FieldClarity],
		v(ingest.FieldCut),
		v(ingest.FieldPolish),
		v(ingest.FieldSymmetry),
		row.Values[ingest.FieldFluorescence],
		v(ingest.FieldLab),
		row.Values[ingest.FieldCertNumber],
		v(ingest.FieldCertURL),
		v(ingest.FieldPricePerCarat),
		v(ingest.FieldTotalPrice),
		v(ingest.FieldDiscount),
		v(ingest.FieldDepthPercent),
		v(ingest.FieldTablePercent),
		v(ingest.FieldMeasurements),
		v(ingest.FieldGirdle),
		v(ingest.FieldCulet),
		v(ingest.FieldFancyColor),
		v(ingest.FieldFancyIntensity),
		v(ingest.FieldOrigin),
		v(ingest.FieldTreatment),
		v(ingest.FieldLocation),
		v(ingest.FieldAvailability),
		v(ingest.FieldImageURL),
		v(ingest.FieldVideoURL),
		v(ingest.FieldComment),
		defaulted,
	}
}
