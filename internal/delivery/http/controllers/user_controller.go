package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"whentomeet/internal/delivery/http/helpers"
	"whentomeet/internal/domain"
)

// UpdateDepartureRequest is the request body for PUT /users/me/departure
type UpdateDepartureRequest struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// Validate implements Validator.
func (u UpdateDepartureRequest) Validate() []string {
	var errs []string
	if u.Lat < -90 || u.Lat > 90 {
		errs = append(errs, "lat must be between -90 and 90")
	}
	if u.Lng < -180 || u.Lng > 180 {
		errs = append(errs, "lng must be between -180 and 180")
	}
	if strings.TrimSpace(u.Address) == "" {
		errs = append(errs, "address is required")
	}
	return errs
}

// UserController handles the inbox, the stored departure point, and the
// per-user event listings.
type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

// NewUserController creates a UserController.
func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

// GetMessages godoc
// @Summary Read and clear the inbox
// @Description Returns the pending notifications and empties the inbox in the same operation.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the message list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/messages [get]
func (c *UserController) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	messages, err := c.Service.GetMessages(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, messages)
}

// ClearMessages godoc
// @Summary Clear the inbox without reading it
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 204 "no content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/messages [delete]
func (c *UserController) ClearMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := c.Service.ClearMessages(r.Context(), userID); err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateDeparture godoc
// @Summary Set the user's default departure point
// @Description The stored point is snapshotted into appointments the user accepts afterwards.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateDepartureRequest true "Departure point"
// @Success 200 {object} helpers.APIResponse "data contains the stored point"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/departure [put]
func (c *UserController) UpdateDeparture(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req UpdateDepartureRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	point := domain.GeoPoint{Lat: req.Lat, Lng: req.Lng, Address: strings.TrimSpace(req.Address)}
	if err := c.Service.UpdateDeparture(r.Context(), userID, point); err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, point)
}

// OwnedWTMs godoc
// @Summary List the WTMs the user owns
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains name/identifier pairs"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/wtms/owned [get]
func (c *UserController) OwnedWTMs(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	refs, err := c.Service.OwnedWTMs(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, refs)
}

// GuestWTMs godoc
// @Summary List the WTMs the user is invited to or has joined
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data groups refs by invitation state"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/wtms/guest [get]
func (c *UserController) GuestWTMs(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	guest, err := c.Service.GuestWTMs(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, guest)
}
