package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/stagetrade/stagetrade-backend/internal/model"
	"github.com/stagetrade/stagetrade-backend/internal/service"
)

type ConnectionHandler struct {
	svc service.ConnectionService
}

func NewConnectionHandler(svc service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{svc: svc}
}

type ConnectionResponse struct {
	ConnectionID uint64 `json:"connectionId"`
	ListingID    uint64 `json:"listingId"`
	SellerUID    string `json:"sellerUid"`
	BuyerUID     string `json:"buyerUid"`
	Status       string `json:"status"`
}

type MessageRequest struct {
	Body       string `json:"body"`
	SenderName string `json:"senderName"`
}

func toConnectionResponse(cn *model.Connection) ConnectionResponse {
	return ConnectionResponse{
		ConnectionID: cn.ID,
		ListingID:    cn.ListingID,
		SellerUID:    cn.SellerUID,
		BuyerUID:     cn.BuyerUID,
		Status:       string(cn.Status),
	}
}

func (h *ConnectionHandler) CreateFromListing(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing id"))
	}
	cn, err := h.svc.CreateOrGet(c.Request().Context(), listingID, uid)
	if err != nil {
		if err == service.ErrNotFound {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "listing not found"))
		}
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusOK, toConnectionResponse(cn))
}

func (h *ConnectionHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	conns, err := h.svc.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch connections"))
	}
	resp := make([]ConnectionResponse, 0, len(conns))
	for i := range conns {
		resp = append(resp, toConnectionResponse(&conns[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ConnectionHandler) Get(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	connID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid connection id"))
	}
	cn, err := h.svc.Get(c.Request().Context(), connID, uid)
	if err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "connection not found"))
		case service.ErrForbidden:
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not a participant"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch connection"))
		}
	}
	return c.JSON(http.StatusOK, toConnectionResponse(cn))
}

func (h *ConnectionHandler) ListMessages(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	connID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid connection id"))
	}
	msgs, err := h.svc.ListMessages(c.Request().Context(), connID, uid)
	if err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "connection not found"))
		case service.ErrForbidden:
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not a participant"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch messages"))
		}
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *ConnectionHandler) CreateMessage(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	connID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid connection id"))
	}
	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	if err := h.svc.CreateMessage(c.Request().Context(), connID, uid, req.Body, req.SenderName); err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "connection not found"))
		case service.ErrForbidden:
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not a participant"))
		default:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
	}
	return c.JSON(http.StatusOK, okStatus())
}

func (h *ConnectionHandler) End(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	connID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid connection id"))
	}
	if err := h.svc.End(c.Request().Context(), connID, uid); err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "connection not found"))
		case service.ErrForbidden:
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not a participant"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to end connection"))
		}
	}
	return c.JSON(http.StatusOK, okStatus())
}
