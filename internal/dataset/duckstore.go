package dataset

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/marcboeker/go-duckdb"

	"github.com/demandcast/backend/internal/models"
)

// DuckStore materializes a validated dataset into a temporary DuckDB
// file so observations can be queried without keeping large datasets
// pinned in Go heap memory.
type DuckStore struct {
	db     *sql.DB
	dbPath string
	rows   int
}

// DuckStoreOptions tunes the embedded DuckDB instance.
type DuckStoreOptions struct {
	Threads     int
	MemoryLimit string
}

// DefaultDuckStoreOptions returns conservative defaults.
func DefaultDuckStoreOptions() DuckStoreOptions {
	return DuckStoreOptions{Threads: 2, MemoryLimit: "256MB"}
}

// NewDuckStore creates a dataset store in tempDir and loads ds into it.
func NewDuckStore(tempDir, datasetID string, ds *models.Dataset, opts DuckStoreOptions) (*DuckStore, error) {
	dbPath := filepath.Join(tempDir, fmt.Sprintf("dataset_%s.duckdb", datasetID))

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit),
			fmt.Sprintf("PRAGMA threads=%d", opts.Threads),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE observations (
			obs_date  DATE NOT NULL,
			product   VARCHAR NOT NULL,
			demand    DOUBLE NOT NULL,
			inventory DOUBLE NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		os.Remove(dbPath)
		return nil, fmt.Errorf("creating observations table: %w", err)
	}

	s := &DuckStore{db: db, dbPath: dbPath}
	if err := s.load(ds); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *DuckStore) load(ds *models.Dataset) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO observations (obs_date, product, demand, inventory) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range ds.Rows {
		if _, err := stmt.Exec(r.Date, r.Product, r.Demand, r.Inventory); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting observation: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load: %w", err)
	}
	s.rows = len(ds.Rows)
	return nil
}

// Len returns the number of stored observations.
func (s *DuckStore) Len() int {
	return s.rows
}

// Products returns the distinct products in sorted order.
func (s *DuckStore) Products(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT product FROM observations ORDER BY product`)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Series returns the observations for one product in date order.
func (s *DuckStore) Series(ctx context.Context, product string) ([]models.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT obs_date, demand, inventory FROM observations WHERE product = ? ORDER BY obs_date`,
		product)
	if err != nil {
		return nil, fmt.Errorf("querying series: %w", err)
	}
	defer rows.Close()

	var series []models.Row
	for rows.Next() {
		var (
			date      time.Time
			demand    float64
			inventory float64
		)
		if err := rows.Scan(&date, &demand, &inventory); err != nil {
			return nil, err
		}
		series = append(series, models.Row{
			Date:      date,
			Product:   product,
			Demand:    demand,
			Inventory: inventory,
		})
	}
	return series, rows.Err()
}

// Preview returns the first n observations across all products.
func (s *DuckStore) Preview(ctx context.Context, n int) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT obs_date, product, demand, inventory FROM observations ORDER BY product, obs_date LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying preview: %w", err)
	}
	defer rows.Close()

	var preview [][]string
	for rows.Next() {
		var (
			date      time.Time
			product   string
			demand    float64
			inventory float64
		)
		if err := rows.Scan(&date, &product, &demand, &inventory); err != nil {
			return nil, err
		}
		preview = append(preview, []string{
			date.Format(models.DateLayout),
			product,
			fmt.Sprintf("%g", demand),
			fmt.Sprintf("%g", inventory),
		})
	}
	return preview, rows.Err()
}

// Close releases the database and removes its backing file.
func (s *DuckStore) Close() error {
	err := s.db.Close()
	if rmErr := os.Remove(s.dbPath); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}
