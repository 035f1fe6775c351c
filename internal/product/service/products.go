package service

import (
	"context"
	"errors"
	"fmt"

	"leadhub/internal/product/models"
	id "leadhub/pkg/domain"
	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/platform/sentinel"
	"leadhub/pkg/requestcontext"
)

// CreateProduct stores a new product. A taken pId is a conflict.
func (s *Service) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	pID, err := id.ParseProductID(req.PID)
	if err != nil {
		return nil, err
	}
	fields, err := models.ParseDeduplicationFields(req.DeduplicationFields)
	if err != nil {
		return nil, err
	}
	exists, err := s.products.ExistsByPID(ctx, pID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check product")
	}
	if exists {
		return nil, dErrors.New(dErrors.CodeConflict, fmt.Sprintf("Product with p_id '%s' already exists", pID))
	}

	now := requestcontext.Now(ctx)
	product := &models.Product{
		PID:                 pID,
		PName:               req.PName,
		DeduplicationFields: fields,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save product")
	}
	s.logAudit(ctx, "product_created", "p_id", string(pID))
	return product, nil
}

// GetProduct returns one product.
func (s *Service) GetProduct(ctx context.Context, pID id.ProductID) (*models.Product, error) {
	if p, ok := s.cached(pID); ok {
		return p, nil
	}
	product, err := s.products.FindByPID(ctx, pID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, productNotFound(pID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get product")
	}
	s.remember(product)
	return product, nil
}

// ListProducts returns every product in creation order.
func (s *Service) ListProducts(ctx context.Context) ([]*models.Product, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list products")
	}
	return products, nil
}

// UpdateProduct changes the name and dedup fields. A non-nil empty field
// list resets matching to every identifier.
func (s *Service) UpdateProduct(ctx context.Context, pID id.ProductID, req *models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.GetProduct(ctx, pID)
	if err != nil {
		return nil, err
	}
	if req.PName != nil {
		product.PName = *req.PName
	}
	if req.DeduplicationFields != nil {
		fields, err := models.ParseDeduplicationFields(req.DeduplicationFields)
		if err != nil {
			return nil, err
		}
		product.DeduplicationFields = fields
	}
	product.UpdatedAt = requestcontext.Now(ctx)
	if err := s.products.Save(ctx, product); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save product")
	}
	s.forget(pID)
	s.logAudit(ctx, "product_updated", "p_id", string(pID))
	return product, nil
}

// DeleteProduct removes a product no source references.
func (s *Service) DeleteProduct(ctx context.Context, pID id.ProductID) error {
	count, err := s.sources.CountByPID(ctx, pID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count sources")
	}
	if count > 0 {
		return dErrors.New(dErrors.CodeConflict, "Cannot delete product: sources are associated with this product")
	}
	if err := s.products.Delete(ctx, pID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return productNotFound(pID)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete product")
	}
	s.forget(pID)
	s.logAudit(ctx, "product_deleted", "p_id", string(pID))
	return nil
}

// ProductExists reports whether pID names a stored product.
func (s *Service) ProductExists(ctx context.Context, pID id.ProductID) (bool, error) {
	if _, ok := s.cached(pID); ok {
		return true, nil
	}
	return s.products.ExistsByPID(ctx, pID)
}

// Invalidate drops pID from the lookup cache. Callers that change products
// without going through the service use it.
func (s *Service) Invalidate(pID id.ProductID) {
	s.forget(pID)
}

func productNotFound(pID id.ProductID) error {
	return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("Product with p_id '%s' not found", pID))
}
