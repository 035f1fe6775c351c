package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"leadhub/internal/dedup/engine"
	"leadhub/internal/dedup/models"
	leadmodels "leadhub/internal/lead/models"
	id "leadhub/pkg/domain"
	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/platform/events"
	"leadhub/pkg/platform/sentinel"
	"leadhub/pkg/requestcontext"
)

// Execute deduplicates every stored lead with override, or with the stored
// default rules when override is nil.
func (s *Service) Execute(ctx context.Context, override *models.Config) (*models.Stats, error) {
	ctx, span := s.tracer.Start(ctx, "dedup.execute")
	defer span.End()
	start := time.Now()

	var stats *models.Stats
	err := s.withLock(ctx, func(ctx context.Context) error {
		cfg, err := s.resolveRules(ctx, override)
		if err != nil {
			return err
		}
		leads, err := s.leads.FindAll(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load leads")
		}
		stats, err = s.run(ctx, cfg, leads)
		return err
	})
	s.finish(span, scopeAll, start, err)
	if err != nil {
		return nil, err
	}
	s.completed(ctx, scopeAll, "", stats)
	return stats, nil
}

// ExecuteFromCanonicalFields deduplicates every stored lead with the policy
// implied by the active canonical fields.
func (s *Service) ExecuteFromCanonicalFields(ctx context.Context) (*models.Stats, error) {
	ctx, span := s.tracer.Start(ctx, "dedup.execute_canonical")
	defer span.End()
	start := time.Now()

	var stats *models.Stats
	err := s.withLock(ctx, func(ctx context.Context) error {
		fields, err := s.fields.FindActive(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load canonical fields")
		}
		leads, err := s.leads.FindAll(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load leads")
		}
		stats, err = s.run(ctx, engine.FromCanonicalFields(fields), leads)
		return err
	})
	s.finish(span, scopeCanonical, start, err)
	if err != nil {
		return nil, err
	}
	s.completed(ctx, scopeCanonical, "", stats)
	return stats, nil
}

// ExecuteForProduct deduplicates the leads of one product with that
// product's dedup fields. rawPID is matched case-insensitively.
func (s *Service) ExecuteForProduct(ctx context.Context, rawPID string) (*models.Stats, error) {
	ctx, span := s.tracer.Start(ctx, "dedup.execute_product",
		trace.WithAttributes(attribute.String("product.id", rawPID)))
	defer span.End()
	start := time.Now()

	var stats *models.Stats
	err := s.withLock(ctx, func(ctx context.Context) error {
		pID, err := s.lookupPID(rawPID)
		if err != nil {
			return err
		}
		stats, err = s.executeForProduct(ctx, pID, strings.TrimSpace(rawPID))
		return err
	})
	s.finish(span, scopeProduct, start, err)
	if err != nil {
		return nil, err
	}
	s.completed(ctx, scopeProduct, strings.ToUpper(strings.TrimSpace(rawPID)), stats)
	return stats, nil
}

// ExecuteForAllProducts runs ExecuteForProduct for every product under one
// lock. A failing product is reported in its outcome and the rest still run.
func (s *Service) ExecuteForAllProducts(ctx context.Context) ([]models.ProductOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "dedup.execute_all_products")
	defer span.End()
	start := time.Now()

	var outcomes []models.ProductOutcome
	err := s.withLock(ctx, func(ctx context.Context) error {
		products, err := s.products.FindAll(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load products")
		}
		outcomes = make([]models.ProductOutcome, 0, len(products))
		for _, p := range products {
			stats, err := s.executeForProduct(ctx, p.PID, p.PID.String())
			if err != nil {
				s.logger.WarnContext(ctx, "product deduplication failed",
					"p_id", p.PID.String(),
					"error", err,
				)
				outcomes = append(outcomes, models.ProductOutcome{PID: p.PID, Error: failureMessage(err)})
				continue
			}
			outcomes = append(outcomes, models.ProductOutcome{PID: p.PID, Stats: stats})
		}
		return nil
	})
	span.SetAttributes(attribute.Int("dedup.products", len(outcomes)))
	s.finish(span, scopeAllProducts, start, err)
	if err != nil {
		return nil, err
	}

	summary := models.Summarize(outcomes, 0)
	s.logAudit(ctx, "dedup_completed",
		"scope", scopeAllProducts,
		"products", len(outcomes),
		"merged_count", summary.MergedCount,
	)
	s.emit(ctx, events.TypeDedupCompleted, scopeAllProducts, map[string]any{
		"scope":           scopeAllProducts,
		"products":        len(outcomes),
		"totalLeads":      summary.TotalLeadsBefore,
		"duplicatesFound": summary.DuplicatesFound,
		"mergedCount":     summary.MergedCount,
	})
	return outcomes, nil
}

// ExecuteAfterUpload runs every product and folds the outcomes into the
// summary reported by an upload, with a fresh final lead count.
func (s *Service) ExecuteAfterUpload(ctx context.Context) (*models.Summary, error) {
	outcomes, err := s.ExecuteForAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	final, err := s.leads.Count(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count leads")
	}
	summary := models.Summarize(outcomes, final)
	return &summary, nil
}

// MergeGroup collapses a sorted duplicate group into its first member,
// saving the survivor and deleting the rest in one transaction. The given
// leads are not modified. A group of fewer than two leads panics.
func (s *Service) MergeGroup(ctx context.Context, group []*leadmodels.Lead) (*models.MergeResult, error) {
	result, _, err := s.mergeGroup(ctx, group)
	return result, err
}

func (s *Service) mergeGroup(ctx context.Context, group []*leadmodels.Lead) (*models.MergeResult, *leadmodels.Lead, error) {
	members := make([]*leadmodels.Lead, len(group))
	for i, l := range group {
		members[i] = l.Clone()
	}
	survivor, away := engine.Collapse(members, requestcontext.Now(ctx))

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.leads.Save(ctx, survivor); err != nil {
			return fmt.Errorf("save survivor %s: %w", survivor.LeadID, err)
		}
		for _, l := range away {
			if err := s.leads.Delete(ctx, l.LeadID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
				return fmt.Errorf("delete merged lead %s: %w", l.LeadID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to merge duplicate leads")
	}

	merged := make([]id.LeadID, len(away))
	for i, l := range away {
		merged[i] = l.LeadID
	}
	if s.metrics != nil {
		s.metrics.AddMerged(len(merged))
	}
	return &models.MergeResult{SurvivorLeadID: survivor.LeadID, MergedAwayLeadIDs: merged}, survivor, nil
}

// run groups candidates and merges each group in order. Groups may share
// members because grouping is not transitive: a member already merged away
// is skipped, a survivor of an earlier group takes part in its merged form,
// and a group left with fewer than two live members is not merged.
func (s *Service) run(ctx context.Context, cfg models.Config, candidates []*leadmodels.Lead) (*models.Stats, error) {
	groups := engine.FindDuplicateGroups(cfg, candidates)
	stats := &models.Stats{TotalLeads: len(candidates), MergeDetails: []models.MergeDetail{}}

	current := make(map[id.LeadID]*leadmodels.Lead)
	gone := make(map[id.LeadID]bool)
	for _, group := range groups {
		stats.DuplicatesFound += len(group) - 1

		live := make([]*leadmodels.Lead, 0, len(group))
		for _, l := range group {
			if gone[l.LeadID] {
				continue
			}
			if latest, ok := current[l.LeadID]; ok {
				l = latest
			}
			live = append(live, l)
		}
		if len(live) < 2 {
			continue
		}

		detail := engine.Detail(live)
		result, survivor, err := s.mergeGroup(ctx, live)
		if err != nil {
			return nil, err
		}
		current[survivor.LeadID] = survivor
		for _, leadID := range result.MergedAwayLeadIDs {
			gone[leadID] = true
		}
		stats.MergedCount += len(result.MergedAwayLeadIDs)
		stats.MergeDetails = append(stats.MergeDetails, detail)
	}

	final, err := s.leads.Count(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count leads")
	}
	stats.FinalCount = final
	return stats, nil
}

func (s *Service) executeForProduct(ctx context.Context, pID id.ProductID, display string) (*models.Stats, error) {
	product, err := s.products.FindByPID(ctx, pID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, productNotFound(display)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product")
	}
	leads, err := s.leads.FindByPID(ctx, pID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product leads")
	}
	return s.run(ctx, engine.FromProduct(product), leads)
}

func (s *Service) resolveRules(ctx context.Context, override *models.Config) (models.Config, error) {
	if override != nil {
		return *override, nil
	}
	cfg, err := s.rules.Get(ctx)
	if err != nil {
		return models.Config{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load deduplication rules")
	}
	return cfg, nil
}

// lookupPID upper-cases rawPID. A code that cannot name any product is
// reported the same way as a product that does not exist.
func (s *Service) lookupPID(rawPID string) (id.ProductID, error) {
	if strings.TrimSpace(rawPID) == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "productId is required")
	}
	pID, err := id.ParseProductID(rawPID)
	if err != nil {
		return "", productNotFound(strings.TrimSpace(rawPID))
	}
	return pID, nil
}

func (s *Service) completed(ctx context.Context, scope, key string, stats *models.Stats) {
	attrs := []any{
		"scope", scope,
		"total_leads", stats.TotalLeads,
		"duplicates_found", stats.DuplicatesFound,
		"merged_count", stats.MergedCount,
		"final_count", stats.FinalCount,
	}
	if key != "" {
		attrs = append(attrs, "p_id", key)
	}
	s.logAudit(ctx, "dedup_completed", attrs...)

	payload := map[string]any{
		"scope":           scope,
		"totalLeads":      stats.TotalLeads,
		"duplicatesFound": stats.DuplicatesFound,
		"mergedCount":     stats.MergedCount,
		"finalCount":      stats.FinalCount,
	}
	if key != "" {
		payload["pId"] = key
	} else {
		key = scope
	}
	s.emit(ctx, events.TypeDedupCompleted, key, payload)
}

func productNotFound(pID string) error {
	return dErrors.New(dErrors.CodeNotFound, "Product not found: "+pID)
}

func failureMessage(err error) string {
	if msg := dErrors.Message(err); msg != "" && dErrors.CodeOf(err) != dErrors.CodeInternal {
		return msg
	}
	return "Deduplication failed"
}
