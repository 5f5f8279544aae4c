package domain

import "context"

// CatalogProvider supplies the full medicine catalog at startup. The
// reference index consumes it once; providers are not queried afterwards.
type CatalogProvider interface {
	LoadCatalog(ctx context.Context) ([]MedicineRecord, error)
}

// InteractionSource is one provider of drug-interaction records. The local
// curated table and both external clients implement it, so the aggregator
// treats all three uniformly.
type InteractionSource interface {
	// SourceType identifies the provider for source attribution.
	SourceType() InteractionSourceType

	// LookupPair returns the interaction record for an unordered drug pair,
	// or nil when the source knows of none.
	LookupPair(ctx context.Context, drugA, drugB string) (*InteractionRecord, error)

	// LookupSingle returns every interaction record the source holds that
	// mentions the drug.
	LookupSingle(ctx context.Context, drug string) ([]InteractionRecord, error)
}

// EntityExtractor produces structured medicine entities from raw
// prescription text. Implementations never fail on malformed input; text
// with no recognizable entities yields an empty slice.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) []ExtractedEntity
}

// AlternativeResolver finds replacement candidates for a single medicine.
// An unknown medicine name returns ErrMedicineNotFound; a known medicine
// with no candidates returns an empty slice and nil error.
type AlternativeResolver interface {
	Resolve(medicineName string) ([]AlternativeCandidate, error)
}

// ConfigManager provides access to application configuration
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	Validate() error
}
