package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"whentomeet/internal/delivery/http/helpers"
	"whentomeet/internal/domain"
)

// SetAlarmRequest is the request body for POST /alarms
type SetAlarmRequest struct {
	Departure   string    `json:"departure"`
	Destination string    `json:"destination"`
	DeviceToken string    `json:"device_token"`
	ArriveAt    time.Time `json:"arrive_at"`
}

// Validate implements Validator.
func (a SetAlarmRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(a.Departure) == "" {
		errs = append(errs, "departure is required")
	}
	if strings.TrimSpace(a.Destination) == "" {
		errs = append(errs, "destination is required")
	}
	if strings.TrimSpace(a.DeviceToken) == "" {
		errs = append(errs, "device_token is required")
	}
	if a.ArriveAt.IsZero() {
		errs = append(errs, "arrive_at is required")
	}
	return errs
}

// MapsController handles geocoding lookups and departure alarms.
type MapsController struct {
	Logger   *slog.Logger
	Geocoder domain.Geocoder
	Alarms   domain.AlarmService
}

// NewMapsController creates a MapsController.
func NewMapsController(logger *slog.Logger, geocoder domain.Geocoder, alarms domain.AlarmService) *MapsController {
	return &MapsController{
		Logger:   logger,
		Geocoder: geocoder,
		Alarms:   alarms,
	}
}

// Geocode godoc
// @Summary Resolve an address to coordinates
// @Tags maps
// @Produce json
// @Security BearerAuth
// @Param address query string true "Address to resolve"
// @Success 200 {object} helpers.APIResponse "data contains lat, lng, and the formatted address"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /maps/geocode [get]
func (c *MapsController) Geocode(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "address is required")
		return
	}
	point, err := c.Geocoder.Geocode(r.Context(), address)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "geocode failed", "address", address, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, point)
}

// SetAlarm godoc
// @Summary Schedule a departure alarm
// @Description Geocodes both addresses, estimates travel time, and schedules a push notification at the computed departure instant. Alarms do not survive a restart.
// @Tags alarms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SetAlarmRequest true "Alarm definition"
// @Success 201 {object} helpers.APIResponse "data contains the scheduled alarm"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (includes departure times already in the past)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /alarms [post]
func (c *MapsController) SetAlarm(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req SetAlarmRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	alarm, err := c.Alarms.Set(r.Context(), userID, req.Departure, req.Destination, req.DeviceToken, req.ArriveAt)
	if err != nil {
		if strings.Contains(err.Error(), "already past") {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "set alarm failed", "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, alarm)
}

// CancelAlarm godoc
// @Summary Cancel a pending departure alarm
// @Tags alarms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alarm id"
// @Success 204 "no content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /alarms/{id} [delete]
func (c *MapsController) CancelAlarm(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}
	if !c.Alarms.Cancel(r.PathValue("id")) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "alarm not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
