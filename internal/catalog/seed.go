package catalog

import (
	"context"

	"github.com/prescription-analysis-server/internal/domain"
)

// SeedProvider serves the built-in medicine catalog. It is the default
// catalog source, used when no external catalog file is configured, and it
// backs tests that need a realistic catalog without fixtures.
type SeedProvider struct{}

// NewSeedProvider creates a catalog provider over the embedded seed data.
func NewSeedProvider() *SeedProvider {
	return &SeedProvider{}
}

// LoadCatalog returns a fresh copy of the seed catalog.
func (p *SeedProvider) LoadCatalog(ctx context.Context) ([]domain.MedicineRecord, error) {
	records := make([]domain.MedicineRecord, len(seedCatalog))
	copy(records, seedCatalog)
	return records, nil
}

// seedCatalog is a curated subset of the full medicine database covering the
// most commonly prescribed drugs, with brand synonyms and known alternatives.
var seedCatalog = []domain.MedicineRecord{
	{
		Name:              "Paracetamol",
		GenericName:       "Acetaminophen",
		BrandSynonyms:     []string{"Tylenol", "Panadol", "Calpol"},
		Category:          "Analgesic",
		Indications:       "Pain relief, fever reduction",
		KnownSideEffects:  []string{"Nausea", "Liver damage at high doses"},
		KnownAlternatives: []string{"Ibuprofen", "Naproxen"},
	},
	{
		Name:              "Ibuprofen",
		GenericName:       "Ibuprofen",
		BrandSynonyms:     []string{"Advil", "Motrin", "Nurofen"},
		Category:          "NSAID",
		Indications:       "Pain relief, inflammation, fever",
		KnownSideEffects:  []string{"Stomach upset", "Increased bleeding risk"},
		KnownAlternatives: []string{"Paracetamol", "Naproxen", "Celecoxib"},
	},
	{
		Name:              "Naproxen",
		GenericName:       "Naproxen",
		BrandSynonyms:     []string{"Aleve", "Naprosyn"},
		Category:          "NSAID",
		Indications:       "Pain relief, inflammation, arthritis",
		KnownSideEffects:  []string{"Stomach upset", "Dizziness"},
		KnownAlternatives: []string{"Ibuprofen", "Celecoxib"},
	},
	{
		Name:             "Celecoxib",
		GenericName:      "Celecoxib",
		BrandSynonyms:    []string{"Celebrex"},
		Category:         "NSAID",
		Indications:      "Pain relief, arthritis, inflammation",
		KnownSideEffects: []string{"Headache", "Hypertension"},
	},
	{
		Name:             "Aspirin",
		GenericName:      "Acetylsalicylic acid",
		BrandSynonyms:    []string{"Disprin", "Ecosprin"},
		Category:         "NSAID",
		Indications:      "Pain relief, fever, blood thinning",
		KnownSideEffects: []string{"Stomach irritation", "Bleeding risk"},
	},
	{
		Name:             "Warfarin",
		GenericName:      "Warfarin",
		BrandSynonyms:    []string{"Coumadin", "Jantoven"},
		Category:         "Anticoagulant",
		Indications:      "Blood clot prevention, stroke prevention",
		KnownSideEffects: []string{"Bleeding", "Bruising"},
	},
	{
		Name:              "Metformin",
		GenericName:       "Metformin hydrochloride",
		BrandSynonyms:     []string{"Glucophage", "Fortamet"},
		Category:          "Antidiabetic",
		Indications:       "Type 2 diabetes, blood sugar control",
		KnownSideEffects:  []string{"Nausea", "Diarrhea", "Lactic acidosis (rare)"},
		KnownAlternatives: []string{"Glipizide", "Sitagliptin"},
	},
	{
		Name:             "Glipizide",
		GenericName:      "Glipizide",
		BrandSynonyms:    []string{"Glucotrol"},
		Category:         "Antidiabetic",
		Indications:      "Type 2 diabetes",
		KnownSideEffects: []string{"Hypoglycemia", "Weight gain"},
	},
	{
		Name:             "Sitagliptin",
		GenericName:      "Sitagliptin",
		BrandSynonyms:    []string{"Januvia"},
		Category:         "Antidiabetic",
		Indications:      "Type 2 diabetes",
		KnownSideEffects: []string{"Headache", "Upper respiratory infection"},
	},
	{
		Name:              "Amoxicillin",
		GenericName:       "Amoxicillin",
		BrandSynonyms:     []string{"Amoxil", "Trimox"},
		Category:          "Antibiotic",
		Indications:       "Bacterial infections, respiratory infections",
		KnownSideEffects:  []string{"Diarrhea", "Rash", "Allergic reactions"},
		KnownAlternatives: []string{"Azithromycin"},
	},
	{
		Name:             "Azithromycin",
		GenericName:      "Azithromycin",
		BrandSynonyms:    []string{"Zithromax", "Z-Pak"},
		Category:         "Antibiotic",
		Indications:      "Bacterial infections, pneumonia, bronchitis",
		KnownSideEffects: []string{"Nausea", "Abdominal pain"},
	},
	{
		Name:              "Lisinopril",
		GenericName:       "Lisinopril",
		BrandSynonyms:     []string{"Prinivil", "Zestril"},
		Category:          "ACE Inhibitor",
		Indications:       "High blood pressure, heart failure",
		KnownSideEffects:  []string{"Dry cough", "Dizziness", "Hyperkalemia"},
		KnownAlternatives: []string{"Amlodipine"},
	},
	{
		Name:             "Amlodipine",
		GenericName:      "Amlodipine besylate",
		BrandSynonyms:    []string{"Norvasc"},
		Category:         "Calcium Channel Blocker",
		Indications:      "High blood pressure, angina",
		KnownSideEffects: []string{"Swelling", "Flushing"},
	},
	{
		Name:              "Atorvastatin",
		GenericName:       "Atorvastatin calcium",
		BrandSynonyms:     []string{"Lipitor"},
		Category:          "Statin",
		Indications:       "High cholesterol, cardiovascular risk reduction",
		KnownSideEffects:  []string{"Muscle pain", "Liver enzyme elevation"},
		KnownAlternatives: []string{"Simvastatin"},
	},
	{
		Name:             "Simvastatin",
		GenericName:      "Simvastatin",
		BrandSynonyms:    []string{"Zocor"},
		Category:         "Statin",
		Indications:      "High cholesterol",
		KnownSideEffects: []string{"Muscle pain", "Headache"},
	},
	{
		Name:             "Omeprazole",
		GenericName:      "Omeprazole",
		BrandSynonyms:    []string{"Prilosec", "Losec"},
		Category:         "Proton Pump Inhibitor",
		Indications:      "Acid reflux, stomach ulcers, GERD",
		KnownSideEffects: []string{"Headache", "Abdominal pain"},
	},
	{
		Name:             "Levothyroxine",
		GenericName:      "Levothyroxine sodium",
		BrandSynonyms:    []string{"Synthroid", "Levoxyl"},
		Category:         "Thyroid Hormone",
		Indications:      "Hypothyroidism",
		KnownSideEffects: []string{"Palpitations", "Weight changes"},
	},
	{
		Name:             "Loratadine",
		GenericName:      "Loratadine",
		BrandSynonyms:    []string{"Claritin"},
		Category:         "Antihistamine",
		Indications:      "Allergies, hay fever, hives",
		KnownSideEffects: []string{"Drowsiness", "Dry mouth"},
	},
	{
		Name:             "Metoprolol",
		GenericName:      "Metoprolol tartrate",
		BrandSynonyms:    []string{"Lopressor", "Toprol-XL"},
		Category:         "Beta Blocker",
		Indications:      "High blood pressure, angina, heart failure",
		KnownSideEffects: []string{"Fatigue", "Bradycardia"},
	},
	{
		Name:             "Fluoxetine",
		GenericName:      "Fluoxetine hydrochloride",
		BrandSynonyms:    []string{"Prozac"},
		Category:         "SSRI",
		Indications:      "Depression, anxiety, OCD",
		KnownSideEffects: []string{"Insomnia", "Nausea"},
	},
}
