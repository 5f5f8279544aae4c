package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/prescription-analysis-server/internal/domain"
)

// SQLiteProvider loads the medicine catalog from a SQLite database. List
// columns (synonyms, side effects, alternatives) are stored as comma
// separated text, the format the catalog build scripts emit.
type SQLiteProvider struct {
	db *sql.DB
}

// NewSQLiteProvider opens the catalog database at dbPath.
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	return &SQLiteProvider{db: db}, nil
}

// NewSQLiteProviderFromDB wraps an existing database handle. Used by tests.
func NewSQLiteProviderFromDB(db *sql.DB) *SQLiteProvider {
	return &SQLiteProvider{db: db}
}

// LoadCatalog reads every medicine row from the database.
func (p *SQLiteProvider) LoadCatalog(ctx context.Context) ([]domain.MedicineRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT name, generic_name, brand_synonyms, category, indications,
		       side_effects, alternatives
		FROM medicines
		ORDER BY name`)
	if err != nil {
		return nil, &domain.CatalogError{Reason: "querying medicines table", Err: err}
	}
	defer rows.Close()

	var records []domain.MedicineRecord
	for rows.Next() {
		var rec domain.MedicineRecord
		var synonyms, sideEffects, alternatives string

		if err := rows.Scan(&rec.Name, &rec.GenericName, &synonyms,
			&rec.Category, &rec.Indications, &sideEffects, &alternatives); err != nil {
			return nil, &domain.CatalogError{Reason: "scanning medicine row", Err: err}
		}

		rec.BrandSynonyms = splitList(synonyms)
		rec.KnownSideEffects = splitList(sideEffects)
		rec.KnownAlternatives = splitList(alternatives)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.CatalogError{Reason: "iterating medicine rows", Err: err}
	}

	return records, nil
}

// Close releases the database handle.
func (p *SQLiteProvider) Close() error {
	return p.db.Close()
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
