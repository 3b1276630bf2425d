// Package orderrepo persists the order aggregate: the orders row, one parcels
// row per parcel and, for bulk bookings, a bulk_orders summary row.
package orderrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the orders table. Status and delivery method are stored by name
// so the table stays readable from SQL.
type OrderDTO struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShortCode      string          `gorm:"size:12;not null;uniqueIndex"`
	Sender         ContactDTO      `gorm:"embedded;embeddedPrefix:sender_"`
	DeliveryMethod string          `gorm:"size:16;not null"`
	Amount         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status         string          `gorm:"size:24;not null;index"`
	Bulk           bool            `gorm:"not null;default:false"`
	DispatchJobRef *string         `gorm:"size:64;index"`
	DispatchedAt   *time.Time
	// LastDispatchAttemptAt is stamped by every dispatch run, failed ones included.
	LastDispatchAttemptAt *time.Time `gorm:"index"`
	CreatedAt             time.Time  `gorm:"not null"`
	UpdatedAt             time.Time  `gorm:"not null;index"`
	Version               int        `gorm:"not null;default:0"`

	Parcels   []ParcelDTO   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	BulkOrder *BulkOrderDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// ParcelDTO is the parcels table. ShortCode and the dispatch references are
// nullable: legacy rows have no code and undispatched parcels have no job.
type ParcelDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Position        int       `gorm:"not null"`
	WeightKg        float64   `gorm:"not null"`
	LengthCm        *float64
	WidthCm         *float64
	HeightCm        *float64
	Tier            string          `gorm:"size:8;not null"`
	Price           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Recipient       ContactDTO      `gorm:"embedded;embeddedPrefix:recipient_"`
	ShortCode       *string         `gorm:"size:12;uniqueIndex"`
	DispatchJobRef  *string         `gorm:"size:64;index"`
	DispatchItemRef *string         `gorm:"size:64;index"`
	Status          string          `gorm:"size:24;not null"`
}

func (ParcelDTO) TableName() string {
	return "parcels"
}

// BulkOrderDTO is the bulk_orders table.
type BulkOrderDTO struct {
	OrderID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TotalParcels  int       `gorm:"not null"`
	TotalWeightKg float64   `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (BulkOrderDTO) TableName() string {
	return "bulk_orders"
}

// ContactDTO is embedded for the sender and each recipient.
type ContactDTO struct {
	Name       string `gorm:"size:120;not null"`
	Email      string `gorm:"size:254;not null"`
	Phone      string `gorm:"size:30;not null"`
	Street     string `gorm:"size:255;not null"`
	Unit       string `gorm:"size:16"`
	PostalCode string `gorm:"size:6;not null"`
}

func fromDomain(aggregate *order.Order) OrderDTO {
	dto := OrderDTO{
		ID:             aggregate.ID().Bytes(),
		ShortCode:      aggregate.ShortCode().String(),
		Sender:         contactFromDomain(aggregate.Sender()),
		DeliveryMethod: aggregate.DeliveryMethod().String(),
		Amount:         aggregate.Amount().Decimal(),
		Status:         aggregate.Status().String(),
		Bulk:           aggregate.IsBulk(),
		DispatchJobRef: nullable(aggregate.DispatchJobRef()),
		DispatchedAt:   aggregate.DispatchedAt(),
		CreatedAt:      aggregate.CreatedAt(),

		LastDispatchAttemptAt: aggregate.LastDispatchAttemptAt(),
		UpdatedAt:             aggregate.UpdatedAt(),
		Version:               aggregate.Version(),
	}

	for _, p := range aggregate.Parcels() {
		dto.Parcels = append(dto.Parcels, parcelFromDomain(dto.ID, p))
	}

	if summary, ok := aggregate.BulkSummary(); ok {
		dto.BulkOrder = &BulkOrderDTO{
			OrderID:       dto.ID,
			TotalParcels:  summary.TotalParcels(),
			TotalWeightKg: summary.TotalWeightKg(),
			CreatedAt:     aggregate.CreatedAt(),
		}
	}

	return dto
}

func parcelFromDomain(orderID uuid.UUID, p *order.Parcel) ParcelDTO {
	dto := ParcelDTO{
		ID:              p.ID().Bytes(),
		OrderID:         orderID,
		Position:        p.Index(),
		WeightKg:        p.Measurements().WeightKg(),
		Tier:            p.Tier(),
		Price:           p.Price().Decimal(),
		Recipient:       contactFromDomain(p.Recipient()),
		ShortCode:       nullable(p.ShortCode().String()),
		DispatchJobRef:  nullable(p.DispatchJobRef()),
		DispatchItemRef: nullable(p.DispatchItemRef()),
		Status:          p.Status().String(),
	}

	if d := p.Measurements().Dimensions(); d != nil {
		dto.LengthCm, dto.WidthCm, dto.HeightCm = &d.LengthCm, &d.WidthCm, &d.HeightCm
	}
	return dto
}

func contactFromDomain(c kernel.Contact) ContactDTO {
	return ContactDTO{
		Name:       c.Name(),
		Email:      c.Email(),
		Phone:      c.Phone(),
		Street:     c.Address().Street(),
		Unit:       c.Address().Unit(),
		PostalCode: c.Address().PostalCode(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	shortCode, err := kernel.ParseShortCode(dto.ShortCode)
	if err != nil {
		return nil, err
	}

	sender, err := contactToDomain(dto.Sender)
	if err != nil {
		return nil, err
	}

	method, err := order.ParseDeliveryMethod(dto.DeliveryMethod)
	if err != nil {
		return nil, err
	}

	amount, err := kernel.NewMoney(dto.Amount)
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	parcels := make([]*order.Parcel, 0, len(dto.Parcels))
	for _, p := range dto.Parcels {
		parcel, parcelErr := parcelToDomain(p)
		if parcelErr != nil {
			return nil, parcelErr
		}
		parcels = append(parcels, parcel)
	}

	return order.RestoreOrder(order.State{
		ID:             id,
		ShortCode:      shortCode,
		Sender:         sender,
		DeliveryMethod: method,
		Amount:         amount,
		Status:         status,
		Bulk:           dto.Bulk,
		Parcels:        parcels,
		DispatchJobRef: value(dto.DispatchJobRef),
		DispatchedAt:   dto.DispatchedAt,
		CreatedAt:      dto.CreatedAt,
		UpdatedAt:      dto.UpdatedAt,
		Version:        dto.Version,

		LastDispatchAttemptAt: dto.LastDispatchAttemptAt,
	})
}

func parcelToDomain(dto ParcelDTO) (*order.Parcel, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var dimensions *order.Dimensions
	if dto.LengthCm != nil && dto.WidthCm != nil && dto.HeightCm != nil {
		dimensions = &order.Dimensions{LengthCm: *dto.LengthCm, WidthCm: *dto.WidthCm, HeightCm: *dto.HeightCm}
	}
	measurements, err := order.NewMeasurements(dto.WeightKg, dimensions)
	if err != nil {
		return nil, err
	}

	price, err := kernel.NewMoney(dto.Price)
	if err != nil {
		return nil, err
	}

	recipient, err := contactToDomain(dto.Recipient)
	if err != nil {
		return nil, err
	}

	var shortCode kernel.ShortCode
	if dto.ShortCode != nil {
		if shortCode, err = kernel.ParseShortCode(*dto.ShortCode); err != nil {
			return nil, err
		}
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	return order.RestoreParcel(order.ParcelState{
		ID:              id,
		Index:           dto.Position,
		Measurements:    measurements,
		Tier:            dto.Tier,
		Price:           price,
		Recipient:       recipient,
		ShortCode:       shortCode,
		DispatchJobRef:  value(dto.DispatchJobRef),
		DispatchItemRef: value(dto.DispatchItemRef),
		Status:          status,
	})
}

func contactToDomain(dto ContactDTO) (kernel.Contact, error) {
	address, err := kernel.NewAddress(dto.Street, dto.Unit, dto.PostalCode)
	if err != nil {
		return kernel.Contact{}, err
	}
	return kernel.NewContact(dto.Name, dto.Email, dto.Phone, address)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
