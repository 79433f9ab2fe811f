package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Order types accepted by the trade endpoint.
const (
	OrderTypeMarket    = "market"
	OrderTypeLimit     = "limit"
	OrderTypeStop      = "stop"
	OrderTypeStopLimit = "stop_limit"
)

// Order sides.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// TradeOrderRequest is the body of POST /api/portfolio/trade.
type TradeOrderRequest struct {
	Symbol        string   `json:"symbol" validate:"required"`
	Qty           float64  `json:"qty" validate:"gt=0"`
	Side          string   `json:"side" validate:"required,oneof=buy sell"`
	Type          string   `json:"type" validate:"required,oneof=market limit stop stop_limit"`
	LimitPrice    *float64 `json:"limit_price,omitempty"`
	StopPrice     *float64 `json:"stop_price,omitempty"`
	ClientOrderID string   `json:"client_order_id,omitempty"`
}

// NeedsLimitPrice reports whether orderType requires a limit price.
func NeedsLimitPrice(orderType string) bool {
	return orderType == OrderTypeLimit || orderType == OrderTypeStopLimit
}

// NeedsStopPrice reports whether orderType requires a stop price.
func NeedsStopPrice(orderType string) bool {
	return orderType == OrderTypeStop || orderType == OrderTypeStopLimit
}

func tradePrices(sl validator.StructLevel) {
	r := sl.Current().Interface().(TradeOrderRequest)
	if NeedsLimitPrice(r.Type) && (r.LimitPrice == nil || *r.LimitPrice <= 0) {
		sl.ReportError(r.LimitPrice, "limit_price", "LimitPrice", "required_for_type", r.Type)
	}
	if NeedsStopPrice(r.Type) && (r.StopPrice == nil || *r.StopPrice <= 0) {
		sl.ReportError(r.StopPrice, "stop_price", "StopPrice", "required_for_type", r.Type)
	}
}

// TradeValidationError rejects an order before it is sent.
type TradeValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *TradeValidationError) Error() string {
	return e.Message
}

// Validate checks required fields and the prices the order type needs.
func (r TradeOrderRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &TradeValidationError{Message: err.Error()}
	}

	var missingLimit, missingStop bool
	for _, fe := range verrs {
		switch fe.Field() {
		case "limit_price":
			missingLimit = true
		case "stop_price":
			missingStop = true
		case "side", "type":
			if fe.Tag() == "oneof" {
				return &TradeValidationError{Message: fmt.Sprintf("Invalid %s: %v", fe.Field(), fe.Value())}
			}
			return &TradeValidationError{Message: "Please fill in all required fields"}
		default:
			return &TradeValidationError{Message: "Please fill in all required fields"}
		}
	}

	switch {
	case r.Type == OrderTypeStopLimit && (missingLimit || missingStop):
		return &TradeValidationError{Message: "Please enter both stop price and limit price"}
	case missingLimit:
		return &TradeValidationError{Message: "Please enter a limit price"}
	default:
		return &TradeValidationError{Message: "Please enter a stop price"}
	}
}

// PlaceTrade validates and submits an order. Invalid orders never reach the network.
func (c *Client) PlaceTrade(ctx context.Context, req TradeOrderRequest) (*TradeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.ClientOrderID == "" {
		req.ClientOrderID = uuid.NewString()
	}

	resp, err := c.Post(ctx, "/api/portfolio/trade", req)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	return decode[TradeResponse](resp, "/api/portfolio/trade")
}
