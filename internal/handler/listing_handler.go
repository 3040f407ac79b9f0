package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stagetrade/stagetrade-backend/internal/media"
	"github.com/stagetrade/stagetrade-backend/internal/model"
	"github.com/stagetrade/stagetrade-backend/internal/service"
)

const maxPhotoBytes = 8 << 20

type ListingHandler struct {
	svc   service.ListingService
	media *media.Store
}

func NewListingHandler(svc service.ListingService, media *media.Store) *ListingHandler {
	return &ListingHandler{svc: svc, media: media}
}

type ListingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents"`
	ConcertCity string `json:"concertCity"`
	ConcertDate string `json:"concertDate"` // RFC 3339 or 2006-01-02
	VIP         bool   `json:"vip"`
	Loge        bool   `json:"loge"`
	Suite       bool   `json:"suite"`
}

type ListingResponse struct {
	ID          uint64  `json:"id"`
	SellerUID   string  `json:"sellerUid"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	PriceCents  int64   `json:"priceCents"`
	ConcertCity string  `json:"concertCity"`
	ConcertDate string  `json:"concertDate"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

func toListingResponse(l model.Listing) ListingResponse {
	return ListingResponse{
		ID:          l.ID,
		SellerUID:   l.SellerUID,
		Title:       l.Title,
		Description: l.Description,
		PriceCents:  l.PriceCents,
		ConcertCity: l.ConcertCity,
		ConcertDate: l.ConcertDate.Format("2006-01-02"),
		Type:        string(l.TypeTag()),
		Status:      string(l.Status),
		ImageURL:    l.ImageURL,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
	}
}

func parseConcertDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func (h *ListingHandler) toInput(req ListingRequest) (service.CreateListingInput, error) {
	in := service.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		ConcertCity: req.ConcertCity,
		VIP:         req.VIP,
		Loge:        req.Loge,
		Suite:       req.Suite,
	}
	if req.ConcertDate != "" {
		t, err := parseConcertDate(req.ConcertDate)
		if err != nil {
			return in, err
		}
		in.ConcertDate = t
	}
	return in, nil
}

func (h *ListingHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req ListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	in, err := h.toInput(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid concertDate"))
	}
	l, err := h.svc.Create(c.Request().Context(), uid, in)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusCreated, toListingResponse(*l))
}

func (h *ListingHandler) Update(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing id"))
	}
	var req ListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	in, err := h.toInput(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid concertDate"))
	}
	l, err := h.svc.Update(c.Request().Context(), id, uid, in)
	if err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "listing not found"))
		case service.ErrForbidden:
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not the seller"))
		default:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
	}
	return c.JSON(http.StatusOK, toListingResponse(*l))
}

func (h *ListingHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing id"))
	}
	l, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if err == service.ErrNotFound {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "listing not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch listing"))
	}
	return c.JSON(http.StatusOK, toListingResponse(*l))
}

func (h *ListingHandler) List(c echo.Context) error {
	limit := 20
	if s := c.QueryParam("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	offset := 0
	if s := c.QueryParam("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}
	listings, total, err := h.svc.List(c.Request().Context(), limit, offset, c.QueryParam("city"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch listings"))
	}
	resp := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		resp = append(resp, toListingResponse(l))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"listings": resp,
		"total":    total,
	})
}

func (h *ListingHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	listings, err := h.svc.ListBySeller(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch listings"))
	}
	resp := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		resp = append(resp, toListingResponse(l))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) Remove(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing id"))
	}
	if err := h.svc.Remove(c.Request().Context(), id, uid); err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "listing not found"))
		case service.ErrForbidden:
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not the seller"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to remove listing"))
		}
	}
	return c.JSON(http.StatusOK, okStatus())
}

func (h *ListingHandler) UploadPhoto(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	if h.media == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", "photo storage is not configured"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing id"))
	}
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPhotoBytes+1))
	if err != nil || len(data) == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid photo body"))
	}
	if len(data) > maxPhotoBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, NewErrorResponse("too_large", "photo exceeds 8MB"))
	}
	url, err := h.media.UploadListingPhoto(c.Request().Context(), id, data, c.Request().Header.Get("Content-Type"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to upload photo"))
	}
	if err := h.svc.SetImageURL(c.Request().Context(), id, uid, url); err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "listing not found"))
		case service.ErrForbidden:
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not the seller"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to save photo"))
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"imageUrl": url})
}
