package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prescription-analysis-server/internal/domain"
)

func TestJSONFileProvider_LoadCatalog(t *testing.T) {
	ctx := context.Background()

	writeCatalog := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "catalog.json")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("Wrapped_Layout", func(t *testing.T) {
		path := writeCatalog(t, `{"medicines": [{"name": "Paracetamol", "generic_name": "Acetaminophen", "category": "Analgesic"}]}`)
		records, err := NewJSONFileProvider(path).LoadCatalog(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Paracetamol", records[0].Name)
	})

	t.Run("Bare_Array_Layout", func(t *testing.T) {
		path := writeCatalog(t, `[{"name": "Ibuprofen", "category": "NSAID"}]`)
		records, err := NewJSONFileProvider(path).LoadCatalog(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Ibuprofen", records[0].Name)
	})

	t.Run("Missing_File", func(t *testing.T) {
		_, err := NewJSONFileProvider("/nonexistent/catalog.json").LoadCatalog(ctx)
		var catalogErr *domain.CatalogError
		assert.ErrorAs(t, err, &catalogErr)
	})

	t.Run("Malformed_JSON", func(t *testing.T) {
		path := writeCatalog(t, `{"medicines": [}`)
		_, err := NewJSONFileProvider(path).LoadCatalog(ctx)
		var catalogErr *domain.CatalogError
		assert.ErrorAs(t, err, &catalogErr)
	})
}

func TestSQLiteProvider_LoadCatalog(t *testing.T) {
	ctx := context.Background()
	columns := []string{"name", "generic_name", "brand_synonyms", "category", "indications", "side_effects", "alternatives"}

	t.Run("Parses_List_Columns", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT name, generic_name, brand_synonyms").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("Metformin", "Metformin hydrochloride", "Glucophage, Fortamet", "Antidiabetic", "Type 2 diabetes", "Nausea, Diarrhea", "Glipizide, Sitagliptin").
				AddRow("Warfarin", "Warfarin", "", "Anticoagulant", "Blood clot prevention", "Bleeding", ""))

		records, err := NewSQLiteProviderFromDB(db).LoadCatalog(ctx)
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, []string{"Glucophage", "Fortamet"}, records[0].BrandSynonyms)
		assert.Equal(t, []string{"Glipizide", "Sitagliptin"}, records[0].KnownAlternatives)
		assert.Nil(t, records[1].BrandSynonyms)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Query_Failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT name, generic_name, brand_synonyms").
			WillReturnError(assert.AnError)

		_, err = NewSQLiteProviderFromDB(db).LoadCatalog(ctx)
		var catalogErr *domain.CatalogError
		assert.ErrorAs(t, err, &catalogErr)
	})
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList("   "))
	assert.Equal(t, []string{"a", "b"}, splitList("a, b"))
	assert.Equal(t, []string{"a"}, splitList("a,,  "))
}
