package services

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Rakhulsr/go-catalog/app/models"
	"github.com/Rakhulsr/go-catalog/app/repositories"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// UpdateProductPrice changes the product price and the master variant price
// together.
func (s *CatalogService) UpdateProductPrice(ctx context.Context, productID string, price decimal.Decimal) error {
	if price.IsNegative() {
		return newValidationError("price", "Price must not be negative.")
	}
	return s.inTx(ctx, func(r *repositories.Repositories) error {
		product, err := r.Products.FindByID(ctx, productID)
		if err != nil {
			return storageErr("load product", err)
		}
		if product == nil {
			return fmt.Errorf("%w: product %q", ErrNotFound, productID)
		}
		if err := r.Products.UpdatePrice(ctx, productID, price); err != nil {
			return storageErr("update product price", err)
		}
		variants, err := r.Variants.GetByProductID(ctx, productID)
		if err != nil {
			return storageErr("load variants", err)
		}
		for _, v := range variants {
			if v.IsMaster {
				if err := r.Variants.UpdatePrice(ctx, v.ID, price); err != nil {
					return storageErr("update master price", err)
				}
			}
		}
		return nil
	})
}

// DiscontinueProduct hides the product from the storefront. Rows are kept so
// past orders still resolve.
func (s *CatalogService) DiscontinueProduct(ctx context.Context, productID string) error {
	return s.setAvailableOn(ctx, productID, nil)
}

func (s *CatalogService) MakeAvailable(ctx context.Context, productID string, at time.Time) error {
	return s.setAvailableOn(ctx, productID, &at)
}

func (s *CatalogService) setAvailableOn(ctx context.Context, productID string, at *time.Time) error {
	return s.inTx(ctx, func(r *repositories.Repositories) error {
		product, err := r.Products.FindByID(ctx, productID)
		if err != nil {
			return storageErr("load product", err)
		}
		if product == nil {
			return fmt.Errorf("%w: product %q", ErrNotFound, productID)
		}
		if err := r.Products.SetAvailableOn(ctx, productID, utcPtr(at)); err != nil {
			return storageErr("update availability", err)
		}
		return nil
	})
}

func (s *CatalogService) UpdateVariantPrice(ctx context.Context, variantID string, price decimal.Decimal) error {
	if price.IsNegative() {
		return newValidationError("price", "Price must not be negative.")
	}
	return s.inTx(ctx, func(r *repositories.Repositories) error {
		variant, err := r.Variants.GetByID(ctx, variantID)
		if err != nil {
			return storageErr("load variant", err)
		}
		if variant == nil {
			return fmt.Errorf("%w: variant %q", ErrNotFound, variantID)
		}
		if variant.IsMaster {
			if err := r.Products.UpdatePrice(ctx, variant.ProductID, price); err != nil {
				return storageErr("update product price", err)
			}
		}
		if err := r.Variants.UpdatePrice(ctx, variantID, price); err != nil {
			return storageErr("update variant price", err)
		}
		return nil
	})
}

// ChangeVariantSKU renames a variant. A SKU that appears on an order is
// frozen.
func (s *CatalogService) ChangeVariantSKU(ctx context.Context, variantID, sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return newValidationError("sku", "SKU is required.")
	}
	return s.inTx(ctx, func(r *repositories.Repositories) error {
		variant, err := r.Variants.GetByID(ctx, variantID)
		if err != nil {
			return storageErr("load variant", err)
		}
		if variant == nil {
			return fmt.Errorf("%w: variant %q", ErrNotFound, variantID)
		}
		if variant.SKU == sku {
			return nil
		}
		referenced, err := r.Variants.IsReferencedByOrder(ctx, variantID)
		if err != nil {
			return storageErr("check order references", err)
		}
		if referenced {
			return fmt.Errorf("%w: sku %q is referenced by an order and cannot change", ErrInvalidState, variant.SKU)
		}
		exists, err := r.Variants.IsSKUExists(ctx, sku)
		if err != nil {
			return storageErr("check sku", err)
		}
		if exists {
			return &DuplicateSKUError{SKU: sku}
		}
		if err := r.Variants.UpdateSKU(ctx, variantID, sku); err != nil {
			if repositories.IsUniqueViolation(err) {
				return &DuplicateSKUError{SKU: sku}
			}
			return storageErr("update sku", err)
		}
		return nil
	})
}

// AdjustStock adds delta (which may be negative) to the stock on hand.
func (s *CatalogService) AdjustStock(ctx context.Context, variantID string, delta int) (*models.Variant, error) {
	err := s.inTx(ctx, func(r *repositories.Repositories) error {
		variant, err := r.Variants.GetByID(ctx, variantID)
		if err != nil {
			return storageErr("load variant", err)
		}
		if variant == nil {
			return fmt.Errorf("%w: variant %q", ErrNotFound, variantID)
		}
		changed, err := r.Variants.AdjustStock(ctx, variantID, delta)
		if err != nil {
			return storageErr("adjust stock", err)
		}
		if !changed {
			return fmt.Errorf("%w: sku %q has %d on hand, cannot apply %d", ErrInvalidState, variant.SKU, variant.StockOnHand, delta)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetVariant(ctx, variantID)
}

// RemoveVariant deletes a variant, or only deactivates it when an order
// references it. It reports whether the variant was deactivated.
func (s *CatalogService) RemoveVariant(ctx context.Context, variantID string) (bool, error) {
	var deactivated bool
	var orphanedKeys []string
	err := s.inTx(ctx, func(r *repositories.Repositories) error {
		variant, err := r.Variants.GetByID(ctx, variantID)
		if err != nil {
			return storageErr("load variant", err)
		}
		if variant == nil {
			return fmt.Errorf("%w: variant %q", ErrNotFound, variantID)
		}
		if variant.IsMaster {
			return fmt.Errorf("%w: the master variant %q cannot be removed", ErrInvalidState, variant.SKU)
		}
		referenced, err := r.Variants.IsReferencedByOrder(ctx, variantID)
		if err != nil {
			return storageErr("check order references", err)
		}
		if referenced {
			deactivated = true
			if variant.DeactivatedAt != nil {
				return nil
			}
			return storageErr("deactivate variant", r.Variants.Deactivate(ctx, variantID, s.now().UTC()))
		}
		for _, img := range variant.Images {
			orphanedKeys = append(orphanedKeys, img.StorageKey)
		}
		return storageErr("delete variant", r.Variants.Delete(ctx, variantID))
	})
	if err != nil {
		return false, err
	}

	for _, key := range orphanedKeys {
		if s.assets == nil {
			break
		}
		if err := s.assets.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to remove image asset of deleted variant")
		}
	}
	return deactivated, nil
}

type checkedImage struct {
	filename string
	data     []byte
	mtype    *mimetype.MIME
}

func checkImage(data []byte, filename string) (checkedImage, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	if len(data) == 0 {
		return checkedImage{}, newValidationError("data", "Image data is empty.")
	}
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return checkedImage{}, newValidationError("filename", "Filename is required.")
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return checkedImage{}, newValidationError("data", fmt.Sprintf("Content type %s is not an image.", mtype.String()))
	}
	return checkedImage{filename: filename, data: data, mtype: mtype}, nil
}

// storeImage writes the asset and its row. The asset key is appended to
// stored before the row insert, so the caller can discard it on rollback.
func (s *CatalogService) storeImage(ctx context.Context, r *repositories.Repositories, variantID string, img checkedImage, stored *[]string) (*models.Image, error) {
	key := path.Join("variants", variantID, uuid.NewString()+img.mtype.Extension())
	if err := s.assets.Put(ctx, key, img.data); err != nil {
		return nil, &StorageError{Op: "store image", Err: err}
	}
	*stored = append(*stored, key)

	position, err := r.Images.NextPosition(ctx, variantID)
	if err != nil {
		return nil, storageErr("image position", err)
	}
	image := &models.Image{
		VariantID:   variantID,
		Filename:    img.filename,
		ContentType: img.mtype.String(),
		Size:        int64(len(img.data)),
		StorageKey:  key,
		Position:    position,
	}
	if err := r.Images.Create(ctx, image); err != nil {
		return nil, storageErr("create image", err)
	}
	return image, nil
}

func (s *CatalogService) discardAssets(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.assets.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to remove asset after rollback")
		}
	}
}

// AttachImage stores the image bytes in the asset store and records them
// against the variant. The stored asset is removed again if the record
// cannot be written.
func (s *CatalogService) AttachImage(ctx context.Context, variantID string, data []byte, filename string) (*models.Image, error) {
	img, err := checkImage(data, filename)
	if err != nil {
		return nil, err
	}

	variant, err := s.repos(ctx).Variants.GetByID(ctx, variantID)
	if err != nil {
		return nil, storageErr("load variant", err)
	}
	if variant == nil {
		return nil, fmt.Errorf("%w: variant %q does not exist", ErrInvalidReference, variantID)
	}
	if s.assets == nil {
		return nil, &StorageError{Op: "store image", Err: fmt.Errorf("no asset store configured")}
	}

	var image *models.Image
	var storedKeys []string
	err = s.inTx(ctx, func(r *repositories.Repositories) error {
		var err error
		image, err = s.storeImage(ctx, r, variantID, img, &storedKeys)
		return err
	})
	if err != nil {
		s.discardAssets(ctx, storedKeys)
		return nil, err
	}

	log.Info().Str("variant_id", variantID).Str("key", image.StorageKey).Msg("image attached")
	return image, nil
}
