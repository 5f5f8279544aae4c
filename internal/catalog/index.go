// Package catalog holds the medicine reference index and the providers that
// feed it at startup.
package catalog

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/prescription-analysis-server/internal/domain"
)

// Index is the in-memory lookup structure over the medicine catalog. It is
// built once at startup and is read-only afterwards, so it may be shared
// across concurrent requests without synchronization.
type Index struct {
	records []domain.MedicineRecord
	// byName maps every case-folded name, generic name, and brand synonym to
	// the index of its record in records.
	byName map[string]int
	// names holds the case-folded keys of byName sorted longest-first, so
	// word-boundary scanning prefers the most specific match.
	names []string
}

// Build constructs the reference index from catalog entries. It fails when
// the catalog is empty or a record is missing its name; startup must treat
// that as fatal.
func Build(records []domain.MedicineRecord, logger *logrus.Logger) (*Index, error) {
	if len(records) == 0 {
		return nil, &domain.CatalogError{Reason: "catalog is empty"}
	}

	idx := &Index{
		records: make([]domain.MedicineRecord, len(records)),
		byName:  make(map[string]int, len(records)*2),
	}
	copy(idx.records, records)

	for i, rec := range idx.records {
		if strings.TrimSpace(rec.Name) == "" {
			return nil, &domain.CatalogError{
				Reason: "catalog record missing name",
			}
		}

		idx.addKey(rec.Name, i)
		if rec.GenericName != "" {
			idx.addKey(rec.GenericName, i)
		}
		for _, syn := range rec.BrandSynonyms {
			if syn != "" {
				idx.addKey(syn, i)
			}
		}
	}

	idx.names = make([]string, 0, len(idx.byName))
	for name := range idx.byName {
		idx.names = append(idx.names, name)
	}
	sort.Slice(idx.names, func(a, b int) bool {
		if len(idx.names[a]) != len(idx.names[b]) {
			return len(idx.names[a]) > len(idx.names[b])
		}
		return idx.names[a] < idx.names[b]
	})

	logger.WithFields(logrus.Fields{
		"records": len(idx.records),
		"keys":    len(idx.byName),
	}).Info("Medicine reference index built")

	return idx, nil
}

func (idx *Index) addKey(name string, record int) {
	key := domain.NormalizeName(name)
	if key == "" {
		return
	}
	// First registration wins so a brand synonym cannot shadow a primary name
	// registered earlier in the catalog.
	if _, exists := idx.byName[key]; !exists {
		idx.byName[key] = record
	}
}

// Lookup resolves a medicine name or synonym to its record. The lookup is
// case-insensitive and synonym-aware. Unknown names return
// domain.ErrMedicineNotFound; Lookup never panics.
func (idx *Index) Lookup(nameOrSynonym string) (*domain.MedicineRecord, error) {
	key := domain.NormalizeName(nameOrSynonym)
	if key == "" {
		return nil, domain.ErrMedicineNotFound
	}
	i, ok := idx.byName[key]
	if !ok {
		return nil, domain.ErrMedicineNotFound
	}
	return &idx.records[i], nil
}

// AllNames returns every case-folded name and synonym known to the index,
// ordered longest-first for substring and word-boundary scanning.
func (idx *Index) AllNames() []string {
	return idx.names
}

// Records returns all catalog records in build order. Callers must not
// mutate the returned slice or its elements.
func (idx *Index) Records() []domain.MedicineRecord {
	return idx.records
}

// Len returns the number of catalog records in the index.
func (idx *Index) Len() int {
	return len(idx.records)
}
