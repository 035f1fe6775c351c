package engine

import (
	"sort"
	"time"

	"leadhub/internal/dedup/models"
	leadmodels "leadhub/internal/lead/models"
	id "leadhub/pkg/domain"
	pstrings "leadhub/pkg/platform/strings"
)

// FindDuplicateGroups partitions candidates in one pass over their input
// order. A lead that is unprocessed and carries an enabled identifier forms
// a group with every other candidate, processed or not, that shares one of
// its enabled identifier values. Groups are sorted oldest first with undated
// leads last, and all their members become processed.
//
// The grouping is not a transitive closure: if A and B share an email and B
// and C share a phone, whether C joins depends on which lead is visited
// first and on the enabled identifiers.
func FindDuplicateGroups(cfg models.Config, candidates []*leadmodels.Lead) [][]*leadmodels.Lead {
	fields := cfg.Fields()
	processed := make(map[id.LeadID]bool, len(candidates))
	var groups [][]*leadmodels.Lead

	for _, lead := range candidates {
		if processed[lead.LeadID] || !hasEnabledIdentifier(lead, fields) {
			continue
		}
		var matches []*leadmodels.Lead
		for _, other := range candidates {
			if other.LeadID != lead.LeadID && sharesIdentifier(lead, other, fields) {
				matches = append(matches, other)
			}
		}
		if len(matches) == 0 {
			continue
		}

		group := append([]*leadmodels.Lead{lead}, matches...)
		SortBySurvivorOrder(group)
		for _, member := range group {
			processed[member.LeadID] = true
		}
		groups = append(groups, group)
	}
	return groups
}

// SortBySurvivorOrder orders leads by creation time, oldest first. Leads
// without a creation time go last. The sort is stable so ties keep their
// input order.
func SortBySurvivorOrder(leads []*leadmodels.Lead) {
	sort.SliceStable(leads, func(i, j int) bool {
		a, b := leads[i].CreatedAt, leads[j].CreatedAt
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.Before(b)
		}
	})
}

// Collapse folds every later member of a sorted group into the first one and
// returns the survivor and the members to delete. The survivor is modified in
// place. Each folded member fills only empty survivor fields, extends the
// seen sets, backfills an empty source or product and leaves one history
// record stamped with now.
//
// Collapse panics when the group has fewer than two leads; callers only pass
// groups produced by FindDuplicateGroups.
func Collapse(group []*leadmodels.Lead, now time.Time) (*leadmodels.Lead, []*leadmodels.Lead) {
	if len(group) < 2 {
		panic("engine: a merge group needs at least two leads")
	}
	survivor, rest := group[0], group[1:]
	for _, candidate := range rest {
		survivor.FillEmpty(candidate.Name, candidate.Email, candidate.PhoneNumber, candidate.AadharNumber)
		survivor.SourcesSeen = pstrings.AppendMissing(survivor.SourcesSeen, candidate.SourcesSeen...)
		survivor.ProductsSeen = pstrings.AppendMissing(survivor.ProductsSeen, candidate.ProductsSeen...)
		if survivor.SourceID == "" {
			survivor.SourceID = candidate.SourceID
		}
		if survivor.PID == "" {
			survivor.PID = candidate.PID
		}
		survivor.AppendHistory(leadmodels.MergeRecord{
			Timestamp: now,
			SourceID:  candidate.SourceID,
			PID:       candidate.PID,
			RawData:   candidate.Snapshot(),
		})
	}
	survivor.Touch(now)
	return survivor, rest
}

// Detail describes a group before it is merged.
func Detail(group []*leadmodels.Lead) models.MergeDetail {
	first := group[0]
	merged := make([]id.LeadID, 0, len(group)-1)
	for _, l := range group[1:] {
		merged = append(merged, l.LeadID)
	}
	return models.MergeDetail{
		KeptLeadID:    first.LeadID,
		MergedLeadIDs: merged,
		Email:         clone(first.Email),
		Phone:         clone(first.PhoneNumber),
		Aadhar:        clone(first.AadharNumber),
	}
}

// SharedValues counts, for one identifier, the distinct values carried by
// more than one lead.
func SharedValues(leads []*leadmodels.Lead, field id.IdentifierField) int {
	counts := make(map[string]int)
	for _, l := range leads {
		if v := l.Identifier(field); v != nil {
			counts[*v]++
		}
	}
	shared := 0
	for _, n := range counts {
		if n > 1 {
			shared++
		}
	}
	return shared
}

func hasEnabledIdentifier(l *leadmodels.Lead, fields []id.IdentifierField) bool {
	for _, f := range fields {
		if l.Identifier(f) != nil {
			return true
		}
	}
	return false
}

func sharesIdentifier(a, b *leadmodels.Lead, fields []id.IdentifierField) bool {
	for _, f := range fields {
		av, bv := a.Identifier(f), b.Identifier(f)
		if av != nil && bv != nil && *av == *bv {
			return true
		}
	}
	return false
}

func clone(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
