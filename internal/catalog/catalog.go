// Package catalog handles catalog file loading, validation, and conversion.
//
// LOCATION: internal/catalog/catalog.go
//
// This package is responsible for:
//   - Loading YAML catalog files (drives, files, pricing, profiles)
//   - Expanding environment variables
//   - Processing include directives
//   - Validating catalog integrity before a snapshot reaches the engine
//   - Converting between YAML and internal representations

package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/guardiandrive/guardiand/internal/engine"
	"github.com/guardiandrive/guardiand/internal/errors"
	"github.com/guardiandrive/guardiand/internal/model"
)

// =============================================================================
// Catalog
// =============================================================================

// Catalog is one loaded inventory snapshot: everything the engine
// evaluates in a sweep.
type Catalog struct {
	Drives   []model.DriveTelemetry
	Files    []model.FileRecord
	Costs    *model.CostTable
	Sheets   []model.CloudPriceSheet
	Profiles []model.AlgorithmProfile
}

// Inputs converts the catalog into the engine's snapshot form.
func (c *Catalog) Inputs() engine.Inputs {
	return engine.Inputs{
		Drives:   c.Drives,
		Files:    c.Files,
		Costs:    c.Costs,
		Sheets:   c.Sheets,
		Profiles: c.Profiles,
	}
}

// =============================================================================
// YAML Document
// =============================================================================

// document is the on-disk catalog structure. Collections map straight
// onto the model types; the cost table needs the list form below since
// its runtime shape is a struct-keyed map.
type document struct {
	Drives   []model.DriveTelemetry   `yaml:"drives"`
	Files    []model.FileRecord       `yaml:"files"`
	Costs    *costsDocument           `yaml:"costs"`
	Sheets   []model.CloudPriceSheet  `yaml:"price_sheets"`
	Profiles []model.AlgorithmProfile `yaml:"algorithm_profiles"`

	// Include lists additional catalog files to load.
	// Supports glob patterns. Relative to this file's directory.
	Include []string `yaml:"include"`
}

// costsDocument is the YAML form of a cost table.
type costsDocument struct {
	AsOf   time.Time       `yaml:"as_of"`
	Prices []priceDocument `yaml:"prices"`
}

// priceDocument is one provider/tier price row.
type priceDocument struct {
	Provider        model.Provider `yaml:"provider"`
	Tier            model.Tier     `yaml:"tier"`
	PricePerGBMonth float64        `yaml:"price_per_gb_month"`
}

// =============================================================================
// Load
// =============================================================================

// Load loads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	doc, err := loadDocument(path)
	if err != nil {
		return nil, err
	}

	// Process includes (load additional catalog files)
	baseDir := filepath.Dir(path)
	if err := processIncludes(doc, baseDir); err != nil {
		return nil, err
	}

	cat := build(doc)
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog %s: %w", path, err)
	}
	return cat, nil
}

func loadDocument(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var doc document
	if err := yaml.Unmarshal([]byte(expanded), &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &doc, nil
}

// processIncludes loads and merges included catalog files.
func processIncludes(doc *document, baseDir string) error {
	for _, pattern := range doc.Include {
		// Resolve relative paths
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(baseDir, pattern)
		}

		// Expand glob pattern
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}

		for _, match := range matches {
			partial, err := loadDocument(match)
			if err != nil {
				return fmt.Errorf("load include %q: %w", match, err)
			}
			merge(doc, partial)
		}
	}

	return nil
}

// merge folds an included document into the root. Collections append;
// a cost table in an include replaces a missing root table and extends
// a present one (later prices win on conflict).
func merge(doc, partial *document) {
	doc.Drives = append(doc.Drives, partial.Drives...)
	doc.Files = append(doc.Files, partial.Files...)
	doc.Sheets = append(doc.Sheets, partial.Sheets...)
	doc.Profiles = append(doc.Profiles, partial.Profiles...)

	if partial.Costs != nil {
		if doc.Costs == nil {
			doc.Costs = partial.Costs
		} else {
			if !partial.Costs.AsOf.IsZero() {
				doc.Costs.AsOf = partial.Costs.AsOf
			}
			doc.Costs.Prices = append(doc.Costs.Prices, partial.Costs.Prices...)
		}
	}
}

// build converts the merged document into runtime form.
func build(doc *document) *Catalog {
	cat := &Catalog{
		Drives:   doc.Drives,
		Files:    doc.Files,
		Sheets:   doc.Sheets,
		Profiles: doc.Profiles,
	}

	if doc.Costs != nil {
		table := model.NewCostTable(doc.Costs.AsOf)
		for _, p := range doc.Costs.Prices {
			table.Set(p.Provider, p.Tier, p.PricePerGBMonth)
		}
		cat.Costs = table
	}

	return cat
}

// =============================================================================
// Validate
// =============================================================================

// Validate checks catalog integrity. Per-entity field checks live in
// internal/validation and run inside the engine; this catches the
// cross-entity problems a single record cannot see.
func (c *Catalog) Validate() error {
	errs := errors.NewValidationErrors()

	driveIDs := make(map[string]struct{}, len(c.Drives))
	for i, d := range c.Drives {
		if d.DriveID == "" {
			errs.AddField(fmt.Sprintf("drives[%d].drive_id", i), "cannot be empty")
			continue
		}
		if _, dup := driveIDs[d.DriveID]; dup {
			errs.AddField(fmt.Sprintf("drives[%d].drive_id", i), fmt.Sprintf("duplicate id %q", d.DriveID))
		}
		driveIDs[d.DriveID] = struct{}{}
	}

	fileIDs := make(map[string]struct{}, len(c.Files))
	for i, f := range c.Files {
		if f.FileID == "" {
			errs.AddField(fmt.Sprintf("files[%d].file_id", i), "cannot be empty")
			continue
		}
		if _, dup := fileIDs[f.FileID]; dup {
			errs.AddField(fmt.Sprintf("files[%d].file_id", i), fmt.Sprintf("duplicate id %q", f.FileID))
		}
		fileIDs[f.FileID] = struct{}{}

		if !f.CurrentTier.Valid() {
			errs.AddField(fmt.Sprintf("files[%d].current_tier", i), "unknown tier")
		}
		if f.DriveID != "" {
			if _, ok := driveIDs[f.DriveID]; !ok {
				errs.AddField(fmt.Sprintf("files[%d].drive_id", i), fmt.Sprintf("references unknown drive %q", f.DriveID))
			}
		}
	}

	if c.Costs != nil {
		if c.Costs.Len() == 0 {
			errs.AddField("costs.prices", "at least one price is required")
		}
		for key, price := range c.Costs.Prices {
			if price < 0 {
				errs.AddField(fmt.Sprintf("costs.prices[%s/%s]", key.Provider, key.Tier), "cannot be negative")
			}
		}
	}

	for i, s := range c.Sheets {
		if !s.Provider.Valid() {
			errs.AddField(fmt.Sprintf("price_sheets[%d].provider", i), "unknown provider")
		}
		if len(s.Entries) == 0 {
			errs.AddField(fmt.Sprintf("price_sheets[%d].entries", i), "cannot be empty")
		}
		for j, e := range s.Entries {
			if e.TierName == "" {
				errs.AddField(fmt.Sprintf("price_sheets[%d].entries[%d].tier_name", i, j), "cannot be empty")
			}
			if !e.ServesTier.Valid() {
				errs.AddField(fmt.Sprintf("price_sheets[%d].entries[%d].serves_tier", i, j), "unknown tier")
			}
			if e.PricePerGBMonth < 0 {
				errs.AddField(fmt.Sprintf("price_sheets[%d].entries[%d].price_per_gb_month", i, j), "cannot be negative")
			}
		}
	}

	profileNames := make(map[string]struct{}, len(c.Profiles))
	for i, p := range c.Profiles {
		if p.Name == "" {
			errs.AddField(fmt.Sprintf("algorithm_profiles[%d].name", i), "cannot be empty")
			continue
		}
		if _, dup := profileNames[p.Name]; dup {
			errs.AddField(fmt.Sprintf("algorithm_profiles[%d].name", i), fmt.Sprintf("duplicate name %q", p.Name))
		}
		profileNames[p.Name] = struct{}{}
	}

	return errs.Err()
}
