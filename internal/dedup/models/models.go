// Package models holds the identity policy and the result shapes of lead
// and product deduplication runs.
package models

import (
	id "leadhub/pkg/domain"
)

// Config selects which identifiers take part in matching.
type Config struct {
	UseEmail  bool `json:"useEmail"`
	UsePhone  bool `json:"usePhone"`
	UseAadhar bool `json:"useAadhar"`
}

// DefaultConfig matches on every identifier.
func DefaultConfig() Config {
	return Config{UseEmail: true, UsePhone: true, UseAadhar: true}
}

// Uses reports whether field is enabled.
func (c Config) Uses(field id.IdentifierField) bool {
	switch field {
	case id.IdentifierEmail:
		return c.UseEmail
	case id.IdentifierPhone:
		return c.UsePhone
	case id.IdentifierAadhar:
		return c.UseAadhar
	}
	return false
}

// Fields lists the enabled identifiers in matching priority order.
func (c Config) Fields() []id.IdentifierField {
	fields := make([]id.IdentifierField, 0, len(id.AllIdentifiers))
	for _, f := range id.AllIdentifiers {
		if c.Uses(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

// ConfigPatch is a partial rules update. Nil fields fall back to true, the
// way an omitted flag is read in a rules request.
type ConfigPatch struct {
	UseEmail  *bool `json:"useEmail"`
	UsePhone  *bool `json:"usePhone"`
	UseAadhar *bool `json:"useAadhar"`
}

// IsEmpty reports whether no flag was sent.
func (p ConfigPatch) IsEmpty() bool {
	return p.UseEmail == nil && p.UsePhone == nil && p.UseAadhar == nil
}

// Config resolves the patch with omitted flags enabled.
func (p ConfigPatch) Config() Config {
	return Config{
		UseEmail:  orTrue(p.UseEmail),
		UsePhone:  orTrue(p.UsePhone),
		UseAadhar: orTrue(p.UseAadhar),
	}
}

func orTrue(v *bool) bool {
	return v == nil || *v
}

// MergeResult names the lead that survived a merge and those folded into it.
type MergeResult struct {
	SurvivorLeadID    id.LeadID   `json:"survivorLeadId"`
	MergedAwayLeadIDs []id.LeadID `json:"mergedAwayLeadIds"`
}

// MergeDetail reports one merged group together with the survivor's
// identifiers as they were when the group was found.
type MergeDetail struct {
	KeptLeadID    id.LeadID   `json:"keptLeadId"`
	MergedLeadIDs []id.LeadID `json:"mergedLeadIds"`
	Email         *string     `json:"email"`
	Phone         *string     `json:"phone"`
	Aadhar        *string     `json:"aadhar"`
}

// Stats summarizes one dedup run.
//
// DuplicatesFound is the sum over groups of (size - 1). FinalCount is a fresh
// count of every stored lead, not only the candidates of the run.
type Stats struct {
	TotalLeads      int           `json:"totalLeads"`
	DuplicatesFound int           `json:"duplicatesFound"`
	MergedCount     int           `json:"mergedCount"`
	FinalCount      int           `json:"finalCount"`
	MergeDetails    []MergeDetail `json:"mergeDetails"`
}

// ProductOutcome is the result of one product's run inside a run over all
// products. Exactly one of Stats and Error is set.
type ProductOutcome struct {
	PID   id.ProductID `json:"pId"`
	Stats *Stats       `json:"stats"`
	Error string       `json:"error,omitempty"`
}

// StatsInfo is the read-only duplicate overview.
type StatsInfo struct {
	TotalLeads          int            `json:"totalLeads"`
	PotentialDuplicates int            `json:"potentialDuplicates"`
	ByIdentifier        map[string]int `json:"byIdentifier"`
	Config              Config         `json:"config"`
}

// ProductConfigView shows a product's dedup fields and the policy they
// resolve to.
type ProductConfigView struct {
	PID                 id.ProductID         `json:"pId"`
	PName               string               `json:"pName"`
	DeduplicationFields []id.IdentifierField `json:"deduplicationFields"`
	ResolvedConfig      Config               `json:"resolvedConfig"`
}

// ProductPreview is one product inside a consolidation preview group.
type ProductPreview struct {
	PID   id.ProductID `json:"pId"`
	PName string       `json:"pName"`
}

// ProductMergeDetail reports one consolidated product group.
type ProductMergeDetail struct {
	KeptPID     id.ProductID   `json:"keptPId"`
	KeptPName   string         `json:"keptPName"`
	MergedPIDs  []id.ProductID `json:"mergedPIds"`
	MergedCount int            `json:"mergedCount"`
	LeadsMoved  int            `json:"leadsMoved"`
}

// ConsolidationResult summarizes a product consolidation run.
type ConsolidationResult struct {
	TotalProductsBefore  int                  `json:"totalProductsBefore"`
	DuplicateGroupsFound int                  `json:"duplicateGroupsFound"`
	ProductsRemoved      int                  `json:"productsRemoved"`
	TotalProductsAfter   int                  `json:"totalProductsAfter"`
	MergeDetails         []ProductMergeDetail `json:"mergeDetails"`
}

// Summary folds a run over all products into the totals reported after an
// upload. Failed products contribute nothing.
type Summary struct {
	TotalLeadsBefore int `json:"totalLeadsBefore"`
	DuplicatesFound  int `json:"duplicatesFound"`
	MergedCount      int `json:"mergedCount"`
	FinalLeadCount   int `json:"finalLeadCount"`
}

// Summarize adds up the successful outcomes. finalLeadCount is taken as given.
func Summarize(outcomes []ProductOutcome, finalLeadCount int) Summary {
	sum := Summary{FinalLeadCount: finalLeadCount}
	for _, o := range outcomes {
		if o.Stats == nil {
			continue
		}
		sum.TotalLeadsBefore += o.Stats.TotalLeads
		sum.DuplicatesFound += o.Stats.DuplicatesFound
		sum.MergedCount += o.Stats.MergedCount
	}
	return sum
}

// ByProduct keys outcomes by product id. A product whose run failed maps to
// nil stats; its message is in Failures.
func ByProduct(outcomes []ProductOutcome) map[id.ProductID]*Stats {
	out := make(map[id.ProductID]*Stats, len(outcomes))
	for _, o := range outcomes {
		out[o.PID] = o.Stats
	}
	return out
}

// Failures keys the error message of every failed product run by product id.
func Failures(outcomes []ProductOutcome) map[id.ProductID]string {
	out := map[id.ProductID]string{}
	for _, o := range outcomes {
		if o.Error != "" {
			out[o.PID] = o.Error
		}
	}
	return out
}

// ProductConfigRequest replaces a product's dedup fields. Both spellings of
// the field list are accepted; the snake_case one wins when both are sent.
type ProductConfigRequest struct {
	DeduplicationFieldsSnake []string `json:"deduplication_fields"`
	DeduplicationFields      []string `json:"deduplicationFields"`
}

// Fields returns the requested field names.
func (r ProductConfigRequest) Fields() []string {
	if r.DeduplicationFieldsSnake != nil {
		return r.DeduplicationFieldsSnake
	}
	return r.DeduplicationFields
}
