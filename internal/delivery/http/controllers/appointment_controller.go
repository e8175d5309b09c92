package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"whentomeet/internal/delivery/http/helpers"
	"whentomeet/internal/domain"
)

// AppointmentRequest is the request body for POST /appointments and
// PUT /appointments/{identifier}.
type AppointmentRequest struct {
	Name        string     `json:"name"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Destination struct {
		Lat     float64 `json:"lat"`
		Lng     float64 `json:"lng"`
		Address string  `json:"address"`
	} `json:"destination"`
}

// Validate implements Validator.
func (a AppointmentRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(a.Name) == "" {
		errs = append(errs, "name is required")
	}
	if a.StartTime.IsZero() {
		errs = append(errs, "start_time is required")
	}
	if a.EndTime != nil && !a.EndTime.After(a.StartTime) {
		errs = append(errs, "end_time must be after start_time")
	}
	if strings.TrimSpace(a.Destination.Address) == "" {
		errs = append(errs, "destination.address is required")
	}
	return errs
}

func (a AppointmentRequest) destination() domain.GeoPoint {
	return domain.GeoPoint{
		Lat:     a.Destination.Lat,
		Lng:     a.Destination.Lng,
		Address: strings.TrimSpace(a.Destination.Address),
	}
}

// AppointmentController handles fixed-time appointment endpoints.
type AppointmentController struct {
	Logger  *slog.Logger
	Service domain.AppointmentService
}

// NewAppointmentController creates an AppointmentController.
func NewAppointmentController(logger *slog.Logger, svc domain.AppointmentService) *AppointmentController {
	return &AppointmentController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Create an appointment
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AppointmentRequest true "Appointment definition"
// @Success 201 {object} helpers.APIResponse "data contains the created appointment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /appointments [post]
func (c *AppointmentController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req AppointmentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	appt, err := c.Service.Create(r.Context(), userID, strings.TrimSpace(req.Name), req.StartTime, req.EndTime, req.destination())
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, appt)
}

// Modify godoc
// @Summary Update an appointment's name, times, or destination
// @Description Owner-only; non-owners get 404 rather than 403.
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param identifier path int true "Public event code"
// @Param body body AppointmentRequest true "New appointment fields"
// @Success 204 "no content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /appointments/{identifier} [put]
func (c *AppointmentController) Modify(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	identifier, err := helpers.ParseIdentifier(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	var req AppointmentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.Modify(r.Context(), identifier, userID, strings.TrimSpace(req.Name), req.StartTime, req.EndTime, req.destination()); err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Retrieve godoc
// @Summary Get an appointment by its public code
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param identifier path int true "Public event code"
// @Success 200 {object} helpers.APIResponse "data contains the appointment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /appointments/{identifier} [get]
func (c *AppointmentController) Retrieve(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}
	identifier, err := helpers.ParseIdentifier(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	info, err := c.Service.Retrieve(r.Context(), identifier)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, info)
}

// Members godoc
// @Summary List an appointment's members by invitation state
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param identifier path int true "Public event code"
// @Success 200 {object} helpers.APIResponse "data groups usernames by state"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /appointments/{identifier}/members [get]
func (c *AppointmentController) Members(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}
	identifier, err := helpers.ParseIdentifier(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	members, err := c.Service.Members(r.Context(), identifier)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, members)
}

// Invite godoc
// @Summary Invite users to an appointment
// @Description Owner-only. Usernames are processed independently with per-name failures collected.
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param identifier path int true "Public event code"
// @Param body body InviteRequest true "Usernames to invite"
// @Success 200 {object} helpers.APIResponse "data contains invited and failed lists"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /appointments/{identifier}/invite [post]
func (c *AppointmentController) Invite(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	identifier, err := helpers.ParseIdentifier(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	var req InviteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, failErr := inviteEach(req.Usernames, func(username string) error {
		return c.Service.Invite(r.Context(), identifier, userID, username)
	})
	if failErr != nil {
		writeDomainError(w, r, c.Logger, failErr)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// Accept godoc
// @Summary Accept an appointment invitation
// @Description The caller's stored departure point is snapshotted into the guest entry.
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param identifier path int true "Public event code"
// @Success 204 "no content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /appointments/{identifier}/accept [post]
func (c *AppointmentController) Accept(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Service.Accept)
}

// Reject godoc
// @Summary Decline an appointment invitation
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param identifier path int true "Public event code"
// @Success 204 "no content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /appointments/{identifier}/reject [post]
func (c *AppointmentController) Reject(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Service.Reject)
}

// Delete godoc
// @Summary Delete an appointment
// @Description Owner-only. Removes the appointment, detaches every member, and notifies them.
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param identifier path int true "Public event code"
// @Success 204 "no content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (also for non-owners)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /appointments/{identifier} [delete]
func (c *AppointmentController) Delete(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Service.Delete)
}

func (c *AppointmentController) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, identifier int, actorID string) error) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	identifier, err := helpers.ParseIdentifier(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	if err := op(r.Context(), identifier, userID); err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
