package http

import (
	"errors"
	"net/http"
	"net/url"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/generated/servers"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// CreateOrder handles POST /api/v1/orders - books a regular or bulk order and
// opens its payment session.
func (s *Server) CreateOrder(c echo.Context) error {
	var req servers.CreateOrderJSONRequestBody
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}

	cmd, err := createOrderCommand(req)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid order data: "+err.Error())
	}

	ctx := c.Request().Context()
	result, err := s.createOrderHandler.Handle(ctx, cmd)
	if err != nil {
		if errors.Is(err, errs.ErrProviderUnavailable) {
			return errorJSON(c, http.StatusBadGateway, "Payment provider is unavailable, please try again")
		}
		code, message := statusFor(err, "Failed to create order")
		if code == http.StatusInternalServerError {
			s.logger.ErrorContext(ctx, "order creation failed", "error", err)
		}
		return errorJSON(c, code, message)
	}

	return c.JSON(http.StatusCreated, servers.CreateOrderResponse{
		OrderID:    result.OrderID.String(),
		ShortCode:  result.ShortCode.String(),
		PaymentURL: result.PaymentURL,
	})
}

// GetOrder handles GET /api/v1/orders/:id - the order with its parcels, by id
// or short code.
func (s *Server) GetOrder(c echo.Context, id servers.Identifier) error {
	query, err := queries.NewGetOrderDetailsQuery(id)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Order identifier is required")
	}

	ctx := c.Request().Context()
	details, err := s.orderDetailsHandler.Handle(ctx, query)
	if err != nil {
		code, message := statusFor(err, "Failed to retrieve order")
		if code == http.StatusInternalServerError {
			s.logger.ErrorContext(ctx, "order lookup failed", "identifier", query.Identifier(), "error", err)
		}
		return errorJSON(c, code, message)
	}

	return c.JSON(http.StatusOK, orderResponse(details))
}

// PaymentSuccess handles GET /payment/success - the payment provider sends the
// buyer here; they continue to the tracking page of the first parcel.
func (s *Server) PaymentSuccess(c echo.Context, params servers.PaymentSuccessParams) error {
	query, err := queries.NewGetOrderDetailsQuery(params.OrderID)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "orderId is required")
	}

	details, err := s.orderDetailsHandler.Handle(c.Request().Context(), query)
	if err != nil {
		code, message := statusFor(err, "Failed to retrieve order")
		return errorJSON(c, code, message)
	}

	code := details.ShortCode
	for _, p := range details.Parcels {
		if p.ShortCode != "" {
			code = p.ShortCode
			break
		}
	}
	return c.Redirect(http.StatusSeeOther, "/track/"+url.PathEscape(code))
}

func createOrderCommand(r servers.CreateOrderRequest) (commands.CreateOrderCommand, error) {
	method, err := order.ParseDeliveryMethod(string(r.DeliveryMethod))
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	sender, err := newContact("sender", r.Sender)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	amount, err := kernel.NewMoney(r.TotalPrice)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	parcels := make([]commands.ParcelSpec, 0, len(r.Parcels))
	for i, p := range r.Parcels {
		m, mErr := order.NewMeasurements(p.Weight, dimensions(p))
		if mErr != nil {
			return commands.CreateOrderCommand{}, mErr
		}
		parcels = append(parcels, commands.ParcelSpec{Index: i, Measurements: m})
	}

	recipients := make([]commands.RecipientSpec, 0, len(r.Recipients))
	for _, rr := range r.Recipients {
		contact, cErr := newContact("recipient", servers.Contact{
			Name:          rr.Name,
			Email:         rr.Email,
			ContactNumber: rr.ContactNumber,
			Street:        rr.Street,
			UnitNo:        rr.UnitNo,
			PostalCode:    rr.PostalCode,
		})
		if cErr != nil {
			return commands.CreateOrderCommand{}, cErr
		}
		recipients = append(recipients, commands.RecipientSpec{Index: rr.ParcelIndex, Contact: contact})
	}

	return commands.NewCreateOrderCommand(sender, method, amount, r.IsBulkOrder, parcels, recipients)
}

// dimensions is nil when no dimension was sent; a partial set fails
// measurement validation.
func dimensions(p servers.ParcelInput) *order.Dimensions {
	if p.Length == nil && p.Width == nil && p.Height == nil {
		return nil
	}
	return &order.Dimensions{LengthCm: deref(p.Length), WidthCm: deref(p.Width), HeightCm: deref(p.Height)}
}

func newContact(role string, r servers.Contact) (kernel.Contact, error) {
	address, err := kernel.NewAddress(r.Street, r.UnitNo, r.PostalCode)
	if err != nil {
		return kernel.Contact{}, errs.NewValueIsInvalidErrorWithCause(role, err)
	}
	contact, err := kernel.NewContact(r.Name, r.Email, r.ContactNumber, address)
	if err != nil {
		return kernel.Contact{}, errs.NewValueIsInvalidErrorWithCause(role, err)
	}
	return contact, nil
}

func orderResponse(d queries.GetOrderDetailsQueryResponse) servers.OrderResponse {
	resp := servers.OrderResponse{
		ID:             d.ID.String(),
		ShortCode:      d.ShortCode,
		Status:         d.Status,
		DeliveryMethod: d.DeliveryMethod,
		Amount:         d.Amount.StringFixed(2),
		SenderName:     d.SenderName,
		Parcels:        make([]servers.ParcelResponse, 0, len(d.Parcels)),
		DispatchedAt:   d.DispatchedAt,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	for _, p := range d.Parcels {
		resp.Parcels = append(resp.Parcels, servers.ParcelResponse{
			ID:            p.ID.String(),
			Index:         p.Index,
			ShortCode:     p.ShortCode,
			Tier:          p.Tier,
			Price:         p.Price.StringFixed(2),
			Status:        p.Status,
			WeightKg:      p.WeightKg,
			RecipientName: p.RecipientName,
			PostalCode:    p.PostalCode,
			Dispatched:    p.Dispatched,
		})
	}
	if d.Bulk != nil {
		resp.Bulk = &servers.BulkResponse{TotalParcels: d.Bulk.TotalParcels, TotalWeightKg: d.Bulk.TotalWeightKg}
	}
	return resp
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
