package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/prescription-analysis-server/internal/domain"
)

// JSONFileProvider loads the medicine catalog from a JSON file. The file
// holds either a bare array of records or an object with a "medicines" key,
// matching the layouts the catalog datasets ship in.
type JSONFileProvider struct {
	path string
}

// NewJSONFileProvider creates a catalog provider reading from path.
func NewJSONFileProvider(path string) *JSONFileProvider {
	return &JSONFileProvider{path: path}
}

type catalogFile struct {
	Medicines []domain.MedicineRecord `json:"medicines"`
}

// LoadCatalog reads and parses the catalog file.
func (p *JSONFileProvider) LoadCatalog(ctx context.Context) ([]domain.MedicineRecord, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, &domain.CatalogError{Reason: fmt.Sprintf("reading catalog file %s", p.path), Err: err}
	}

	// Try the wrapped layout first, then the bare array.
	var wrapped catalogFile
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Medicines) > 0 {
		return wrapped.Medicines, nil
	}

	var records []domain.MedicineRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &domain.CatalogError{Reason: fmt.Sprintf("parsing catalog file %s", p.path), Err: err}
	}

	return records, nil
}
