package orderrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormIdentifierLookup implements ports.IdentifierLookup with exact-match
// queries on the unique short_code columns and primary keys.
type GormIdentifierLookup struct {
	db *gorm.DB
}

func NewGormIdentifierLookup(db *gorm.DB) *GormIdentifierLookup {
	return &GormIdentifierLookup{db: db}
}

type locatorRow struct {
	OrderID  uuid.UUID
	ParcelID *uuid.UUID
}

func (l *GormIdentifierLookup) FindParcelByShortCode(ctx context.Context, code kernel.ShortCode) (ports.Locator, error) {
	var row locatorRow
	err := l.db.WithContext(ctx).Model(&ParcelDTO{}).
		Select("order_id, id AS parcel_id").
		Where("short_code = ?", code.String()).
		Take(&row).Error
	return l.locator(row, err, code.String())
}

func (l *GormIdentifierLookup) FindOrderByShortCode(ctx context.Context, code kernel.ShortCode) (ports.Locator, error) {
	var row locatorRow
	err := l.db.WithContext(ctx).Model(&OrderDTO{}).
		Select("id AS order_id").
		Where("short_code = ?", code.String()).
		Take(&row).Error
	return l.locator(row, err, code.String())
}

// FindByID matches an order id first, then a parcel id.
func (l *GormIdentifierLookup) FindByID(ctx context.Context, id kernel.UUID) (ports.Locator, error) {
	var row locatorRow
	err := l.db.WithContext(ctx).Model(&OrderDTO{}).
		Select("id AS order_id").
		Where("id = ?", id.Bytes()).
		Take(&row).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return l.locator(row, err, id.String())
	}

	err = l.db.WithContext(ctx).Model(&ParcelDTO{}).
		Select("order_id, id AS parcel_id").
		Where("id = ?", id.Bytes()).
		Take(&row).Error
	return l.locator(row, err, id.String())
}

func (l *GormIdentifierLookup) ShortCodeExists(ctx context.Context, code kernel.ShortCode) (bool, error) {
	var exists bool
	err := l.db.WithContext(ctx).Raw(`
		SELECT EXISTS (SELECT 1 FROM orders WHERE short_code = @code)
			OR EXISTS (SELECT 1 FROM parcels WHERE short_code = @code)
	`, map[string]any{"code": code.String()}).Scan(&exists).Error
	return exists, err
}

func (l *GormIdentifierLookup) locator(row locatorRow, err error, identifier string) (ports.Locator, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.Locator{}, errs.NewObjectNotFoundError("identifier", identifier)
	}
	if err != nil {
		return ports.Locator{}, err
	}

	orderID, err := kernel.UUIDFromBytes(row.OrderID[:])
	if err != nil {
		return ports.Locator{}, err
	}

	loc := ports.Locator{OrderID: orderID}
	if row.ParcelID != nil {
		parcelID, parcelErr := kernel.UUIDFromBytes(row.ParcelID[:])
		if parcelErr != nil {
			return ports.Locator{}, parcelErr
		}
		loc.ParcelID = &parcelID
	}
	return loc, nil
}
