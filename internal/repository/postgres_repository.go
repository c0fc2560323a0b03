package repository

import (
	"context"
	"fmt"

	"salesdash/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var salesColumns = []string{
	"position",
	"code_pos",
	"pos_index",
	"name_of_pos",
	"category_of_pos",
	"type_of_pos",
	"zone",
	"district",
	"distribution_channel",
	"brand",
	"segment",
	"product",
	"sell_out",
	"purchase_price",
	"sale_price",
	"status",
	"code_week",
	"annee",
	"mois",
	"quarter",
}

type BrandTotal struct {
	Brand   string  `json:"brand"`
	Records int     `json:"records"`
	Volume  float64 `json:"volume"`
	Revenue float64 `json:"revenue"`
}

// Repository stores the dataset in PostgreSQL, one row per record. It is
// used as the fallback tier when a database URL is configured.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) LoadRecords(ctx context.Context) ([]domain.SalesRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			code_pos,
			pos_index,
			name_of_pos,
			category_of_pos,
			type_of_pos,
			zone,
			district,
			distribution_channel,
			brand,
			segment,
			product,
			sell_out,
			purchase_price,
			sale_price,
			status,
			code_week,
			annee,
			mois,
			quarter
		FROM sales_records
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query sales records: %w", err)
	}
	records, err := pgx.CollectRows(rows, scanSalesRecord)
	if err != nil {
		return nil, fmt.Errorf("collect sales records: %w", err)
	}
	return records, nil
}

// ReplaceRecords swaps the whole table content inside one transaction, so a
// failed copy leaves the previous dataset in place.
func (r *Repository) ReplaceRecords(ctx context.Context, records []domain.SalesRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM sales_records"); err != nil {
		return fmt.Errorf("delete sales records: %w", err)
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"sales_records"},
		salesColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			return recordValues(i, records[i]), nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy sales records: %w", err)
	}
	if int(copied) != len(records) {
		return fmt.Errorf("copy sales records: wrote %d of %d rows", copied, len(records))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace tx: %w", err)
	}
	return nil
}

func (r *Repository) ClearRecords(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM sales_records"); err != nil {
		return fmt.Errorf("clear sales records: %w", err)
	}
	return nil
}

func (r *Repository) CountRecords(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)::int FROM sales_records").Scan(&count); err != nil {
		return 0, fmt.Errorf("count sales records: %w", err)
	}
	return count, nil
}

// BrandTotals summarizes the stored rows per brand, largest volume first.
func (r *Repository) BrandTotals(ctx context.Context, limit int) ([]BrandTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			brand,
			COUNT(*)::int,
			COALESCE(SUM(sell_out), 0)::double precision,
			COALESCE(SUM(sell_out * sale_price), 0)::double precision
		FROM sales_records
		GROUP BY brand
		ORDER BY 3 DESC, brand
		LIMIT $1
	`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query brand totals: %w", err)
	}
	defer rows.Close()

	totals := make([]BrandTotal, 0)
	for rows.Next() {
		var item BrandTotal
		if err := rows.Scan(&item.Brand, &item.Records, &item.Volume, &item.Revenue); err != nil {
			return nil, fmt.Errorf("scan brand total: %w", err)
		}
		totals = append(totals, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brand totals: %w", err)
	}
	return totals, nil
}

func recordValues(position int, rec domain.SalesRecord) []any {
	return []any{
		position,
		rec.CodePOS,
		rec.Index,
		rec.NameOfPOS,
		rec.CategoryOfPOS,
		rec.TypeOfPOS,
		rec.Zone,
		rec.District,
		rec.DistributionChannel,
		rec.Brand,
		rec.Segment,
		rec.Product,
		rec.SellOut,
		rec.PurchasePrice,
		rec.SalePrice,
		rec.Status,
		rec.CodeWeek,
		rec.Annee,
		rec.Mois,
		rec.Quarter,
	}
}

func scanSalesRecord(row pgx.CollectableRow) (domain.SalesRecord, error) {
	var rec domain.SalesRecord
	if err := row.Scan(
		&rec.CodePOS,
		&rec.Index,
		&rec.NameOfPOS,
		&rec.CategoryOfPOS,
		&rec.TypeOfPOS,
		&rec.Zone,
		&rec.District,
		&rec.DistributionChannel,
		&rec.Brand,
		&rec.Segment,
		&rec.Product,
		&rec.SellOut,
		&rec.PurchasePrice,
		&rec.SalePrice,
		&rec.Status,
		&rec.CodeWeek,
		&rec.Annee,
		&rec.Mois,
		&rec.Quarter,
	); err != nil {
		return domain.SalesRecord{}, fmt.Errorf("scan sales record: %w", err)
	}
	return rec, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 200
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
