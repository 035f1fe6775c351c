package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"leadhub/internal/dedup/engine"
	"leadhub/internal/dedup/models"
	productmodels "leadhub/internal/product/models"
	id "leadhub/pkg/domain"
	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/platform/events"
	"leadhub/pkg/platform/sentinel"
	pstrings "leadhub/pkg/platform/strings"
	"leadhub/pkg/requestcontext"
)

// PreviewProductDuplicates lists the groups of products that share a name,
// oldest first within each group. Nothing is changed.
func (s *Service) PreviewProductDuplicates(ctx context.Context) ([][]models.ProductPreview, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load products")
	}
	groups := engine.GroupProductsByName(products)
	preview := make([][]models.ProductPreview, 0, len(groups))
	for _, group := range groups {
		entries := make([]models.ProductPreview, len(group))
		for i, p := range group {
			entries[i] = models.ProductPreview{PID: p.PID, PName: p.PName}
		}
		preview = append(preview, entries)
	}
	return preview, nil
}

// ConsolidateProducts folds every group of same-named products into its
// oldest member. Leads and sources of the duplicates are re-pointed to the
// kept product before the duplicates are deleted. Each group is one
// transaction.
func (s *Service) ConsolidateProducts(ctx context.Context) (*models.ConsolidationResult, error) {
	ctx, span := s.tracer.Start(ctx, "dedup.consolidate_products")
	defer span.End()
	start := time.Now()

	var result *models.ConsolidationResult
	err := s.withLock(ctx, func(ctx context.Context) error {
		products, err := s.products.FindAll(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load products")
		}
		groups := engine.GroupProductsByName(products)
		result = &models.ConsolidationResult{
			TotalProductsBefore:  len(products),
			DuplicateGroupsFound: len(groups),
			MergeDetails:         []models.ProductMergeDetail{},
		}

		for _, group := range groups {
			detail, err := s.consolidateGroup(ctx, group)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to consolidate products")
			}
			result.ProductsRemoved += detail.MergedCount
			result.MergeDetails = append(result.MergeDetails, detail)
		}

		after, err := s.products.FindAll(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load products")
		}
		result.TotalProductsAfter = len(after)
		return nil
	})
	s.finish(span, scopeConsolidation, start, err)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("dedup.products_removed", result.ProductsRemoved))
	if s.metrics != nil {
		s.metrics.AddProductsRemoved(result.ProductsRemoved)
	}
	s.logAudit(ctx, "products_consolidated",
		"groups", result.DuplicateGroupsFound,
		"products_removed", result.ProductsRemoved,
		"products_before", result.TotalProductsBefore,
		"products_after", result.TotalProductsAfter,
	)
	s.emit(ctx, events.TypeProductsConsolidated, scopeConsolidation, map[string]any{
		"duplicateGroupsFound": result.DuplicateGroupsFound,
		"productsRemoved":      result.ProductsRemoved,
		"totalProductsAfter":   result.TotalProductsAfter,
	})
	return result, nil
}

func (s *Service) consolidateGroup(ctx context.Context, group []*productmodels.Product) (models.ProductMergeDetail, error) {
	kept, dups := group[0], group[1:]
	detail := models.ProductMergeDetail{
		KeptPID:    kept.PID,
		KeptPName:  kept.PName,
		MergedPIDs: make([]id.ProductID, 0, len(dups)),
	}
	now := requestcontext.Now(ctx)

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, dup := range dups {
			moved, err := s.repointLeads(ctx, dup.PID, kept.PID, now)
			if err != nil {
				return err
			}
			detail.LeadsMoved += moved
			if err := s.repointSources(ctx, dup.PID, kept.PID, now); err != nil {
				return err
			}
			if err := s.products.Delete(ctx, dup.PID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
				return fmt.Errorf("delete product %s: %w", dup.PID, err)
			}
			detail.MergedPIDs = append(detail.MergedPIDs, dup.PID)
		}
		return nil
	})
	if err != nil {
		return models.ProductMergeDetail{}, err
	}

	s.forgetProduct(kept.PID)
	for _, pID := range detail.MergedPIDs {
		s.forgetProduct(pID)
	}
	detail.MergedCount = len(detail.MergedPIDs)
	return detail, nil
}

// repointLeads moves the leads of from onto to. The removed product leaves
// productsSeen and the kept one joins it.
func (s *Service) repointLeads(ctx context.Context, from, to id.ProductID, now time.Time) (int, error) {
	leads, err := s.leads.FindByPID(ctx, from)
	if err != nil {
		return 0, fmt.Errorf("find leads of product %s: %w", from, err)
	}
	for _, l := range leads {
		l.PID = to
		l.ProductsSeen = slices.DeleteFunc(l.ProductsSeen, func(p string) bool { return p == from.String() })
		l.ProductsSeen = pstrings.AppendMissing(l.ProductsSeen, to.String())
		l.Touch(now)
		if err := s.leads.Save(ctx, l); err != nil {
			return 0, fmt.Errorf("save lead %s: %w", l.LeadID, err)
		}
	}
	return len(leads), nil
}

func (s *Service) repointSources(ctx context.Context, from, to id.ProductID, now time.Time) error {
	sources, err := s.sources.FindByPID(ctx, from)
	if err != nil {
		return fmt.Errorf("find sources of product %s: %w", from, err)
	}
	for _, src := range sources {
		src.PID = to
		src.UpdatedAt = now
		if err := s.sources.Save(ctx, src); err != nil {
			return fmt.Errorf("save source %s: %w", src.SourceID, err)
		}
	}
	return nil
}
