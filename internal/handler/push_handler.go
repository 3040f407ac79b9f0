package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stagetrade/stagetrade-backend/internal/model"
	"github.com/stagetrade/stagetrade-backend/internal/repository"
)

// PushHandler manages device registrations and the notification preference
// maps the fan-out job consumes.
type PushHandler struct {
	pushRepo  repository.PushRepository
	alertRepo repository.AlertRepository
	vapidKey  string
}

func NewPushHandler(pushRepo repository.PushRepository, alertRepo repository.AlertRepository, vapidKey string) *PushHandler {
	return &PushHandler{pushRepo: pushRepo, alertRepo: alertRepo, vapidKey: vapidKey}
}

type TokenRequest struct {
	Token string `json:"token"`
}

type SubscriptionRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

type AlertPreferenceRequest struct {
	Continent   *string `json:"continent"`
	City        *string `json:"city"`
	ListingType *string `json:"listingType"`
	ConcertDate *string `json:"concertDate"` // 2006-01-02
	Enabled     bool    `json:"enabled"`
}

type AlertPreferenceResponse struct {
	Continent   *string `json:"continent"`
	City        *string `json:"city"`
	ListingType *string `json:"listingType"`
	ConcertDate *string `json:"concertDate"`
	Enabled     bool    `json:"enabled"`
}

func (h *PushHandler) VAPIDKey(c echo.Context) error {
	if h.vapidKey == "" {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", "web push is not configured"))
	}
	return c.JSON(http.StatusOK, map[string]string{"publicKey": h.vapidKey})
}

func (h *PushHandler) RegisterToken(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req TokenRequest
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "token is required"))
	}
	if err := h.pushRepo.SaveToken(c.Request().Context(), uid, req.Token); err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to save token"))
	}
	return c.JSON(http.StatusOK, okStatus())
}

func (h *PushHandler) UnregisterToken(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req TokenRequest
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "token is required"))
	}
	if err := h.pushRepo.DeleteToken(c.Request().Context(), req.Token); err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to delete token"))
	}
	return c.JSON(http.StatusOK, okStatus())
}

func (h *PushHandler) Subscribe(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req SubscriptionRequest
	if err := c.Bind(&req); err != nil || req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "endpoint and keys are required"))
	}
	sub := &model.PushSubscription{
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
		UserUID:  uid,
	}
	if err := h.pushRepo.SaveSubscription(c.Request().Context(), sub); err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to save subscription"))
	}
	return c.JSON(http.StatusOK, okStatus())
}

func (h *PushHandler) Unsubscribe(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req SubscriptionRequest
	if err := c.Bind(&req); err != nil || req.Endpoint == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "endpoint is required"))
	}
	if err := h.pushRepo.DeleteSubscription(c.Request().Context(), req.Endpoint); err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to delete subscription"))
	}
	return c.JSON(http.StatusOK, okStatus())
}

func (h *PushHandler) GetPreferences(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	prefs, err := h.pushRepo.GetPreferences(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch preferences"))
	}
	return c.JSON(http.StatusOK, prefs)
}

func (h *PushHandler) PutPreferences(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	prefs := model.PreferenceMap{}
	if err := c.Bind(&prefs); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid preference map"))
	}
	if err := h.pushRepo.SavePreferences(c.Request().Context(), uid, prefs); err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to save preferences"))
	}
	return c.JSON(http.StatusOK, prefs)
}

func (h *PushHandler) GetAlertPreference(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	pref, err := h.alertRepo.GetPreference(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch alert preference"))
	}
	if pref == nil {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "no alert preference saved"))
	}
	return c.JSON(http.StatusOK, toAlertPreferenceResponse(pref))
}

func (h *PushHandler) PutAlertPreference(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req AlertPreferenceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	pref := &model.ListingAlertPreference{
		UserUID:     uid,
		Continent:   req.Continent,
		City:        req.City,
		ListingType: req.ListingType,
		Enabled:     req.Enabled,
	}
	if req.ConcertDate != nil && *req.ConcertDate != "" {
		t, err := time.Parse("2006-01-02", *req.ConcertDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid concertDate"))
		}
		pref.ConcertDate = &t
	}
	if err := h.alertRepo.UpsertPreference(c.Request().Context(), pref); err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to save alert preference"))
	}
	return c.JSON(http.StatusOK, toAlertPreferenceResponse(pref))
}

func toAlertPreferenceResponse(pref *model.ListingAlertPreference) AlertPreferenceResponse {
	resp := AlertPreferenceResponse{
		Continent:   pref.Continent,
		City:        pref.City,
		ListingType: pref.ListingType,
		Enabled:     pref.Enabled,
	}
	if pref.ConcertDate != nil {
		d := pref.ConcertDate.Format("2006-01-02")
		resp.ConcertDate = &d
	}
	return resp
}
