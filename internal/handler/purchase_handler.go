package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stagetrade/stagetrade-backend/internal/model"
	"github.com/stagetrade/stagetrade-backend/internal/service"
)

type PurchaseHandler struct {
	svc service.PurchaseService
}

func NewPurchaseHandler(svc service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

type PurchaseResponse struct {
	ID           uint64           `json:"id"`
	ListingID    uint64           `json:"listingId"`
	BuyerUID     string           `json:"buyerUid"`
	SellerUID    string           `json:"sellerUid"`
	ConnectionID uint64           `json:"connectionId"`
	Status       string           `json:"status"`
	PaidCents    int64            `json:"paidCents"`
	ShippedAt    *string          `json:"shippedAt,omitempty"`
	DeliveredAt  *string          `json:"deliveredAt,omitempty"`
	CreatedAt    string           `json:"createdAt"`
	Listing      *ListingResponse `json:"listing,omitempty"`
}

func toPurchaseResponse(p model.Purchase, l *model.Listing) PurchaseResponse {
	resp := PurchaseResponse{
		ID:           p.ID,
		ListingID:    p.ListingID,
		BuyerUID:     p.BuyerUID,
		SellerUID:    p.SellerUID,
		ConnectionID: p.ConnectionID,
		Status:       string(p.Status),
		PaidCents:    p.PaidCents,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
	if p.ShippedAt != nil {
		s := p.ShippedAt.Format(time.RFC3339)
		resp.ShippedAt = &s
	}
	if p.DeliveredAt != nil {
		s := p.DeliveredAt.Format(time.RFC3339)
		resp.DeliveredAt = &s
	}
	if l != nil {
		lr := toListingResponse(*l)
		resp.Listing = &lr
	}
	return resp
}

func (h *PurchaseHandler) PurchaseListing(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing id"))
	}
	p, err := h.svc.PurchaseListing(c.Request().Context(), listingID, uid)
	if err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "listing not found"))
		case service.ErrAlreadyPurchased:
			return c.JSON(http.StatusConflict, NewErrorResponse("conflict", "listing already purchased"))
		default:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
	}
	return c.JSON(http.StatusCreated, toPurchaseResponse(*p, nil))
}

func (h *PurchaseHandler) GetByListing(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing id"))
	}
	p, err := h.svc.GetByListing(c.Request().Context(), listingID, uid)
	if err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "purchase not found"))
		case service.ErrForbidden:
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not a party to this purchase"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch purchase"))
		}
	}
	return c.JSON(http.StatusOK, toPurchaseResponse(*p, nil))
}

func (h *PurchaseHandler) transition(c echo.Context, fn func(ctx echo.Context, id uint64, uid string) (*model.Purchase, error)) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid purchase id"))
	}
	p, err := fn(c, id, uid)
	if err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "purchase not found"))
		case service.ErrForbidden:
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
		default:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
	}
	return c.JSON(http.StatusOK, toPurchaseResponse(*p, nil))
}

func (h *PurchaseHandler) MarkShipped(c echo.Context) error {
	return h.transition(c, func(c echo.Context, id uint64, uid string) (*model.Purchase, error) {
		return h.svc.MarkShipped(c.Request().Context(), id, uid)
	})
}

func (h *PurchaseHandler) MarkDelivered(c echo.Context) error {
	return h.transition(c, func(c echo.Context, id uint64, uid string) (*model.Purchase, error) {
		return h.svc.MarkDelivered(c.Request().Context(), id, uid)
	})
}

func (h *PurchaseHandler) Cancel(c echo.Context) error {
	return h.transition(c, func(c echo.Context, id uint64, uid string) (*model.Purchase, error) {
		return h.svc.Cancel(c.Request().Context(), id, uid)
	})
}

func (h *PurchaseHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.ListByBuyer(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch purchases"))
	}
	resp := make([]PurchaseResponse, 0, len(list))
	for _, pw := range list {
		resp = append(resp, toPurchaseResponse(pw.Purchase, pw.Listing))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PurchaseHandler) ListSales(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.ListBySeller(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch sales"))
	}
	resp := make([]PurchaseResponse, 0, len(list))
	for _, pw := range list {
		resp = append(resp, toPurchaseResponse(pw.Purchase, pw.Listing))
	}
	return c.JSON(http.StatusOK, resp)
}
