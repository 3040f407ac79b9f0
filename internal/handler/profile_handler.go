package handler

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/stagetrade/stagetrade-backend/internal/model"
	"github.com/stagetrade/stagetrade-backend/internal/repository"
)

// ProfileHandler serves the caller's own profile row plus public lookups
// backed by Firebase Auth.
type ProfileHandler struct {
	repo       repository.ProfileRepository
	authClient *auth.Client
}

func NewProfileHandler(repo repository.ProfileRepository, authClient *auth.Client) *ProfileHandler {
	return &ProfileHandler{repo: repo, authClient: authClient}
}

type ProfileRequest struct {
	DisplayName string `json:"displayName"`
}

type ProfileResponse struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

type PublicUserResponse struct {
	UID         string  `json:"uid"`
	DisplayName string  `json:"displayName"`
	PhotoURL    *string `json:"photoURL"`
}

func (h *ProfileHandler) GetMe(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	p, err := h.repo.Get(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch profile"))
	}
	if p == nil {
		p = &model.Profile{UID: uid, Role: model.RoleUser}
	}
	return c.JSON(http.StatusOK, ProfileResponse{UID: p.UID, DisplayName: p.DisplayName, Role: string(p.Role)})
}

func (h *ProfileHandler) UpsertMe(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	p := &model.Profile{UID: uid, DisplayName: req.DisplayName, Role: model.RoleUser}
	if err := h.repo.Upsert(c.Request().Context(), p); err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to save profile"))
	}
	saved, err := h.repo.Get(c.Request().Context(), uid)
	if err != nil || saved == nil {
		return c.JSON(http.StatusOK, ProfileResponse{UID: uid, DisplayName: req.DisplayName, Role: string(model.RoleUser)})
	}
	return c.JSON(http.StatusOK, ProfileResponse{UID: saved.UID, DisplayName: saved.DisplayName, Role: string(saved.Role)})
}

// GetPublic returns the Firebase Auth identity for another user, for
// rendering seller names next to listings.
func (h *ProfileHandler) GetPublic(c echo.Context) error {
	uid := c.Param("uid")
	if uid == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid uid"))
	}
	if h.authClient == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", "auth is not configured"))
	}
	user, err := h.authClient.GetUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "user not found"))
	}
	resp := PublicUserResponse{
		UID:         user.UID,
		DisplayName: user.DisplayName,
		PhotoURL:    strPtrOrNil(user.PhotoURL),
	}
	return c.JSON(http.StatusOK, resp)
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
