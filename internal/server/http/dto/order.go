package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// CartItemRequest is one requested line.
type CartItemRequest struct {
	ProductID     int64          `json:"product_id"`
	ProductItemID *int64         `json:"product_item_id"`
	Quantity      int            `json:"quantity"`
	Options       map[string]any `json:"options"`
}

// AddressRefRequest references a saved address by id or carries inline fields.
type AddressRefRequest struct {
	ID int64 `json:"id"`
	AddressRequest
}

func (r AddressRefRequest) ref() model.AddressRef {
	if r.ID != 0 {
		return model.AddressRef{ID: r.ID}
	}
	if r.AddressRequest == (AddressRequest{}) {
		return model.AddressRef{}
	}
	fields := r.Fields()
	return model.AddressRef{Fields: &fields}
}

// PlaceOrderRequest is the checkout payload.
type PlaceOrderRequest struct {
	Items           []CartItemRequest  `json:"items"`
	ShippingAddress AddressRefRequest  `json:"shipping_address"`
	BillingAddress  *AddressRefRequest `json:"billing_address"`
	SameAsShipping  bool               `json:"same_as_shipping"`
	ShippingMethod  string             `json:"shipping_method"`
	ShippingAmount  decimal.Decimal    `json:"shipping_amount"`
	PaymentMethod   string             `json:"payment_method"`
	DiscountCode    string             `json:"discount_code"`
	DiscountAmount  decimal.Decimal    `json:"discount_amount"`
	Notes           string             `json:"notes"`
	TermsAccepted   bool               `json:"terms_accepted"`
}

// Cart converts the request into the domain cart.
func (r PlaceOrderRequest) Cart() model.Cart {
	cart := model.Cart{
		Items:           make([]model.CartLine, len(r.Items)),
		ShippingAddress: r.ShippingAddress.ref(),
		SameAsShipping:  r.SameAsShipping,
		ShippingMethod:  r.ShippingMethod,
		ShippingAmount:  r.ShippingAmount,
		PaymentMethod:   model.PaymentMethod(r.PaymentMethod),
		DiscountCode:    r.DiscountCode,
		DiscountAmount:  r.DiscountAmount,
		Notes:           r.Notes,
	}
	for i, it := range r.Items {
		cart.Items[i] = model.CartLine{
			ProductID:     it.ProductID,
			ProductItemID: it.ProductItemID,
			Quantity:      it.Quantity,
			Options:       it.Options,
		}
	}
	if r.BillingAddress != nil {
		ref := r.BillingAddress.ref()
		cart.BillingAddress = &ref
	}
	return cart
}

// UpdateStatusRequest moves an order to another status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderItemResponse is a purchased line.
type OrderItemResponse struct {
	ID            int64          `json:"id"`
	ProductID     int64          `json:"product_id"`
	ProductItemID *int64         `json:"product_item_id,omitempty"`
	ProductName   string         `json:"product_name"`
	ProductPrice  string         `json:"product_price"`
	Quantity      int            `json:"quantity"`
	LineTotal     string         `json:"line_total"`
	Options       map[string]any `json:"options,omitempty"`
}

// OrderResponse is the order aggregate.
type OrderResponse struct {
	ID                int64               `json:"id"`
	OrderNumber       string              `json:"order_number"`
	Status            string              `json:"status"`
	PaymentStatus     string              `json:"payment_status"`
	PaymentMethod     string              `json:"payment_method"`
	ShippingMethod    string              `json:"shipping_method,omitempty"`
	Subtotal          string              `json:"subtotal"`
	TaxAmount         string              `json:"tax_amount"`
	ShippingAmount    string              `json:"shipping_amount"`
	DiscountAmount    string              `json:"discount_amount"`
	Total             string              `json:"total"`
	DiscountCode      string              `json:"discount_code,omitempty"`
	Notes             string              `json:"notes,omitempty"`
	ShippingAddressID int64               `json:"shipping_address_id"`
	BillingAddressID  int64               `json:"billing_address_id"`
	ShippingAddress   *AddressResponse    `json:"shipping_address,omitempty"`
	BillingAddress    *AddressResponse    `json:"billing_address,omitempty"`
	Items             []OrderItemResponse `json:"items"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// NewOrderResponse maps a domain order with fixed two-place amounts.
func NewOrderResponse(o *model.Order) OrderResponse {
	resp := OrderResponse{
		ID:                o.ID,
		OrderNumber:       o.Number,
		Status:            string(o.Status),
		PaymentStatus:     string(o.PaymentStatus),
		PaymentMethod:     string(o.PaymentMethod),
		ShippingMethod:    o.ShippingMethod,
		Subtotal:          money(o.Subtotal),
		TaxAmount:         money(o.TaxAmount),
		ShippingAmount:    money(o.ShippingAmount),
		DiscountAmount:    money(o.DiscountAmount),
		Total:             money(o.Total),
		DiscountCode:      o.DiscountCode,
		Notes:             o.Notes,
		ShippingAddressID: o.ShippingAddressID,
		BillingAddressID:  o.BillingAddressID,
		ShippingAddress:   NewAddressResponse(o.ShippingAddress),
		BillingAddress:    NewAddressResponse(o.BillingAddress),
		Items:             make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:            it.ID,
			ProductID:     it.ProductID,
			ProductItemID: it.ProductItemID,
			ProductName:   it.ProductName,
			ProductPrice:  money(it.ProductPrice),
			Quantity:      it.Quantity,
			LineTotal:     money(it.LineTotal()),
			Options:       it.Options,
		})
	}
	return resp
}

// OrderPageResponse is one page of the order listing.
type OrderPageResponse struct {
	Data    []OrderResponse `json:"data"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
	Total   int             `json:"total"`
}

// NewOrderPageResponse maps a domain page.
func NewOrderPageResponse(p *model.OrderPage) OrderPageResponse {
	resp := OrderPageResponse{
		Data:    make([]OrderResponse, 0, len(p.Orders)),
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   p.Total,
	}
	for i := range p.Orders {
		resp.Data = append(resp.Data, NewOrderResponse(&p.Orders[i]))
	}
	return resp
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
