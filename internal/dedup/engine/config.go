// Package engine groups leads into duplicate clusters and collapses a
// cluster into one surviving lead. Nothing here touches storage.
package engine

import (
	"strings"

	cfmodels "leadhub/internal/canonicalfield/models"
	"leadhub/internal/dedup/models"
	"leadhub/internal/identity"
	productmodels "leadhub/internal/product/models"
	id "leadhub/pkg/domain"
)

// BuildConfigFromFieldNames enables each identifier named in names, by
// canonical name or short alias. A nil or empty list enables every
// identifier; any other list enables only what it names, so a list of blanks
// enables nothing.
func BuildConfigFromFieldNames(names []string) models.Config {
	if len(names) == 0 {
		return models.DefaultConfig()
	}
	var cfg models.Config
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		field, err := id.ParseIdentifierField(name)
		if err != nil {
			continue
		}
		enable(&cfg, field)
	}
	return cfg
}

// FromProduct resolves a product's dedup fields. No fields means every
// identifier.
func FromProduct(p *productmodels.Product) models.Config {
	if len(p.DeduplicationFields) == 0 {
		return models.DefaultConfig()
	}
	var cfg models.Config
	for _, f := range p.DeduplicationFields {
		enable(&cfg, f)
	}
	return cfg
}

// FromCanonicalFields enables an identifier when an active canonical field
// names it (directly or through a header synonym) or, for email and phone,
// has the matching type. When no active field maps to an identifier every
// identifier is enabled.
func FromCanonicalFields(fields []*cfmodels.CanonicalField) models.Config {
	var cfg models.Config
	for _, f := range cfmodels.Active(fields) {
		canonical, _ := identity.NormalizeHeader(f.FieldName)
		if canonical == identity.FieldEmail || f.FieldType == cfmodels.TypeEmail {
			cfg.UseEmail = true
		}
		if canonical == identity.FieldPhone || f.FieldType == cfmodels.TypePhone {
			cfg.UsePhone = true
		}
		if canonical == identity.FieldAadhar {
			cfg.UseAadhar = true
		}
	}
	if cfg == (models.Config{}) {
		return models.DefaultConfig()
	}
	return cfg
}

func enable(cfg *models.Config, field id.IdentifierField) {
	switch field {
	case id.IdentifierEmail:
		cfg.UseEmail = true
	case id.IdentifierPhone:
		cfg.UsePhone = true
	case id.IdentifierAadhar:
		cfg.UseAadhar = true
	}
}
