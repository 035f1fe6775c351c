package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"leadhub/internal/dedup/engine"
	"leadhub/internal/dedup/models"
	leadmodels "leadhub/internal/lead/models"
	productmodels "leadhub/internal/product/models"
	id "leadhub/pkg/domain"
	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/platform/sentinel"
	"leadhub/pkg/requestcontext"
)

// Rules returns the stored default policy.
func (s *Service) Rules(ctx context.Context) (models.Config, error) {
	return s.resolveRules(ctx, nil)
}

// UpdateRules replaces the default policy. Omitted flags are enabled.
func (s *Service) UpdateRules(ctx context.Context, patch models.ConfigPatch) (models.Config, error) {
	cfg := patch.Config()
	if err := s.rules.Put(ctx, cfg); err != nil {
		return models.Config{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store deduplication rules")
	}
	s.logAudit(ctx, "dedup_rules_updated",
		"use_email", cfg.UseEmail,
		"use_phone", cfg.UsePhone,
		"use_aadhar", cfg.UseAadhar,
	)
	return cfg, nil
}

// Stats reports how many identifier values are shared by more than one lead.
// Every identifier is counted regardless of the stored policy.
func (s *Service) Stats(ctx context.Context) (*models.StatsInfo, error) {
	var (
		leads []*leadmodels.Lead
		cfg   models.Config
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leads, err = s.leads.FindAll(gctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load leads")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		cfg, err = s.resolveRules(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	info := &models.StatsInfo{
		TotalLeads:   len(leads),
		ByIdentifier: make(map[string]int, len(id.AllIdentifiers)),
		Config:       cfg,
	}
	for _, field := range id.AllIdentifiers {
		shared := engine.SharedValues(leads, field)
		info.ByIdentifier[field.String()] = shared
		info.PotentialDuplicates += shared
	}
	return info, nil
}

// ProductConfig shows a product's dedup fields and the policy they resolve to.
func (s *Service) ProductConfig(ctx context.Context, rawPID string) (*models.ProductConfigView, error) {
	product, err := s.findProduct(ctx, rawPID)
	if err != nil {
		return nil, err
	}
	fields := product.DeduplicationFields
	if fields == nil {
		fields = []id.IdentifierField{}
	}
	return &models.ProductConfigView{
		PID:                 product.PID,
		PName:               product.PName,
		DeduplicationFields: fields,
		ResolvedConfig:      engine.FromProduct(product),
	}, nil
}

// UpdateProductConfig replaces the identifiers a product deduplicates on.
// An empty list resets the product to every identifier.
func (s *Service) UpdateProductConfig(ctx context.Context, rawPID string, names []string) (*productmodels.Product, error) {
	product, err := s.findProduct(ctx, rawPID)
	if err != nil {
		return nil, err
	}
	fields, err := productmodels.ParseDeduplicationFields(names)
	if err != nil {
		return nil, err
	}
	product.DeduplicationFields = fields
	product.UpdatedAt = requestcontext.Now(ctx)
	if err := s.products.Save(ctx, product); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save product")
	}
	s.forgetProduct(product.PID)

	names = make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	s.logAudit(ctx, "product_dedup_config_updated",
		"p_id", product.PID.String(),
		"deduplication_fields", names,
	)
	return product, nil
}

func (s *Service) findProduct(ctx context.Context, rawPID string) (*productmodels.Product, error) {
	pID, err := s.lookupPID(rawPID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByPID(ctx, pID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, productNotFound(strings.TrimSpace(rawPID))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product")
	}
	return product, nil
}
