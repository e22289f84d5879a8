package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"hitched-scraper/models"
)

// PostgresWriter mirrors the cleaned artifacts into PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS venues (
			venue_no      TEXT PRIMARY KEY,
			region        TEXT,
			name          TEXT,
			rating        TEXT,
			no_of_reviews INTEGER,
			location      TEXT,
			price_text    TEXT,
			price_type    TEXT,
			price_numeric NUMERIC(12,2),
			capacity      TEXT,
			min_capacity  INTEGER,
			max_capacity  INTEGER,
			url           TEXT,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS venue_details (
			venue_no              TEXT PRIMARY KEY,
			description           TEXT,
			address_full          TEXT,
			venue_url             TEXT,
			map_url               TEXT,
			social_links          TEXT[],
			venue_type_tags       TEXT[],
			dining_options        TEXT[],
			ceremony_options      TEXT[],
			entertainment_options TEXT[]
		);

		CREATE TABLE IF NOT EXISTS venue_deals (
			id         SERIAL PRIMARY KEY,
			venue_no   TEXT NOT NULL,
			deal_type  TEXT NOT NULL,
			deal_title TEXT NOT NULL,
			expires_on TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS venue_suppliers (
			id                SERIAL PRIMARY KEY,
			venue_no          TEXT NOT NULL,
			supplier_name     TEXT,
			supplier_url      TEXT,
			supplier_image    TEXT,
			supplier_rating   TEXT,
			supplier_category TEXT
		);

		CREATE TABLE IF NOT EXISTS venue_reviews (
			id          SERIAL PRIMARY KEY,
			venue_no    TEXT NOT NULL,
			venue_name  TEXT,
			review_text TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_venues_region     ON venues(region);
		CREATE INDEX IF NOT EXISTS idx_venues_price_type ON venues(price_type);
		CREATE INDEX IF NOT EXISTS idx_deals_venue       ON venue_deals(venue_no);
		CREATE INDEX IF NOT EXISTS idx_suppliers_venue   ON venue_suppliers(venue_no);
		CREATE INDEX IF NOT EXISTS idx_reviews_venue     ON venue_reviews(venue_no);
	`)
	return err
}

const batchSize = 50

// WriteVenues replaces the venues table with the given records.
func (pw *PostgresWriter) WriteVenues(ctx context.Context, venues []*models.VenueRecord) error {
	rows := make([][]any, 0, len(venues))
	for _, v := range venues {
		var priceType *string
		if v.PriceType != nil {
			s := string(*v.PriceType)
			priceType = &s
		}
		rows = append(rows, []any{
			v.VenueNo, v.Region, v.Name, v.Rating, v.NoOfReviews, v.Location, v.PriceText,
			priceType, v.PriceNumeric, v.Capacity, v.MinCapacity, v.MaxCapacity, v.URL,
		})
	}
	return pw.replace(ctx, "venues", []string{
		"venue_no", "region", "name", "rating", "no_of_reviews", "location", "price_text",
		"price_type", "price_numeric", "capacity", "min_capacity", "max_capacity", "url",
	}, rows)
}

// WriteDetails replaces the detail, deal and supplier tables in one transaction.
func (pw *PostgresWriter) WriteDetails(ctx context.Context, details []*models.VenueDetail) error {
	var detailRows, dealRows, supplierRows [][]any
	for _, d := range details {
		detailRows = append(detailRows, []any{
			d.VenueNo, d.Description, d.AddressFull, d.VenueURL, d.MapURL,
			pq.Array(d.SocialLinks), pq.Array(d.VenueTypeTags), pq.Array(d.DiningOptions),
			pq.Array(d.CeremonyOptions), pq.Array(d.EntertainmentOptions),
		})
		for _, deal := range d.Deals {
			dealRows = append(dealRows, []any{deal.VenueNo, deal.Type, deal.Title, deal.ExpiresOn})
		}
		for _, s := range d.PreferredSuppliers {
			supplierRows = append(supplierRows, []any{
				s.VenueNo, s.VendorName, s.VendorURL, s.VendorImage, s.RatingText, s.Category,
			})
		}
	}

	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if err := replaceTx(ctx, tx, "venue_details", []string{
		"venue_no", "description", "address_full", "venue_url", "map_url", "social_links",
		"venue_type_tags", "dining_options", "ceremony_options", "entertainment_options",
	}, detailRows); err != nil {
		return err
	}
	if err := replaceTx(ctx, tx, "venue_deals", []string{
		"venue_no", "deal_type", "deal_title", "expires_on",
	}, dealRows); err != nil {
		return err
	}
	if err := replaceTx(ctx, tx, "venue_suppliers", []string{
		"venue_no", "supplier_name", "supplier_url", "supplier_image", "supplier_rating", "supplier_category",
	}, supplierRows); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// WriteReviews replaces the reviews table, sentinel rows included.
func (pw *PostgresWriter) WriteReviews(ctx context.Context, reviews []models.Review) error {
	rows := make([][]any, 0, len(reviews))
	for _, r := range reviews {
		rows = append(rows, []any{r.VenueNo, r.VenueName, r.ReviewText})
	}
	return pw.replace(ctx, "venue_reviews", []string{"venue_no", "venue_name", "review_text"}, rows)
}

func (pw *PostgresWriter) replace(ctx context.Context, table string, cols []string, rows [][]any) error {
	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if err := replaceTx(ctx, tx, table, cols, rows); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit %s: %w", table, err)
	}
	return nil
}

func replaceTx(ctx context.Context, tx *sql.Tx, table string, cols []string, rows [][]any) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("postgres: clear %s: %w", table, err)
	}
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		query, args := insertBatch(table, cols, rows[i:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: insert %s: %w", table, err)
		}
	}
	return nil
}

// insertBatch builds one multi-row INSERT with numbered placeholders.
func insertBatch(table string, cols []string, batch [][]any) (string, []any) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*len(cols))

	for idx, row := range batch {
		base := idx * len(cols)
		holders := make([]string, len(cols))
		for c := range cols {
			holders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(holders, ",")+")")
		valueArgs = append(valueArgs, row...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table, strings.Join(cols, ", "), strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchVenues retrieves all stored venues ordered by venue number.
func (pw *PostgresWriter) FetchVenues(ctx context.Context) ([]*models.VenueRecord, error) {
	rows, err := pw.db.QueryContext(ctx, `
		SELECT venue_no, region, name, rating, no_of_reviews, location, price_text,
		       price_type, price_numeric, capacity, min_capacity, max_capacity, url
		FROM venues
		ORDER BY length(venue_no), venue_no
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch venues: %w", err)
	}
	defer rows.Close()

	var venues []*models.VenueRecord
	for rows.Next() {
		v := &models.VenueRecord{}
		var (
			priceType               sql.NullString
			reviews, minCap, maxCap sql.NullInt64
			price                   sql.NullFloat64
		)
		if err := rows.Scan(
			&v.VenueNo, &v.Region, &v.Name, &v.Rating, &reviews, &v.Location, &v.PriceText,
			&priceType, &price, &v.Capacity, &minCap, &maxCap, &v.URL,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan venue: %w", err)
		}
		if priceType.Valid {
			pt := models.PriceType(priceType.String)
			v.PriceType = &pt
		}
		if price.Valid {
			p := price.Float64
			v.PriceNumeric = &p
		}
		v.NoOfReviews = nullInt(reviews)
		v.MinCapacity = nullInt(minCap)
		v.MaxCapacity = nullInt(maxCap)
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	i := int(n.Int64)
	return &i
}
