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

// CreateWTMRequest is the request body for POST /wtms
type CreateWTMRequest struct {
	Name      string      `json:"name"`
	Dates     []time.Time `json:"dates"`
	StartTime string      `json:"start_time"`
	EndTime   string      `json:"end_time"`
	Invited   []string    `json:"invited"`
}

// Validate implements Validator.
func (c CreateWTMRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if len(c.Dates) == 0 {
		errs = append(errs, "at least one candidate date is required")
	}
	if c.StartTime == "" {
		errs = append(errs, "start_time is required")
	}
	if c.EndTime == "" {
		errs = append(errs, "end_time is required")
	}
	return errs
}

// InviteRequest is the request body for the invite endpoints. Each username is
// processed independently.
type InviteRequest struct {
	Usernames []string `json:"usernames"`
}

// Validate implements Validator.
func (i InviteRequest) Validate() []string {
	var errs []string
	if len(i.Usernames) == 0 {
		errs = append(errs, "usernames is required")
	}
	for _, name := range i.Usernames {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, "usernames must not contain empty entries")
			break
		}
	}
	return errs
}

// InviteFailure reports one username an invite endpoint could not process.
type InviteFailure struct {
	Username string `json:"username"`
	Reason   string `json:"reason"`
}

// InviteResponse is the response body for the invite endpoints.
type InviteResponse struct {
	Invited []string        `json:"invited"`
	Failed  []InviteFailure `json:"failed"`
}

// RespondRequest is the request body for POST /wtms/{identifier}/respond
type RespondRequest struct {
	Times []domain.ResponseTime `json:"times"`
}

// Validate implements Validator.
func (r RespondRequest) Validate() []string {
	var errs []string
	if len(r.Times) == 0 {
		errs = append(errs, "times is required")
	}
	return errs
}

// WTMController handles availability poll endpoints.
type WTMController struct {
	Logger  *slog.Logger
	Service domain.WTMService
}

// NewWTMController creates a WTMController.
func NewWTMController(logger *slog.Logger, svc domain.WTMService) *WTMController {
	return &WTMController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Create an availability poll
// @Description Creates a WTM over a set of candidate dates and a daily time window, optionally inviting users by username. Unknown usernames are skipped.
// @Tags wtms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateWTMRequest true "Poll definition"
// @Success 201 {object} helpers.APIResponse "data contains the created WTM"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /wtms [post]
func (c *WTMController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req CreateWTMRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	wtm, err := c.Service.Create(r.Context(), userID, strings.TrimSpace(req.Name), req.Dates, req.StartTime, req.EndTime, req.Invited)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, wtm)
}

// Retrieve godoc
// @Summary Get a poll by its public code
// @Description Returns the poll with responder usernames resolved, plus the caller's own response and owner flag.
// @Tags wtms
// @Produce json
// @Security BearerAuth
// @Param identifier path int true "Public event code"
// @Success 200 {object} helpers.APIResponse "data contains the populated poll"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /wtms/{identifier} [get]
func (c *WTMController) Retrieve(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	identifier, err := helpers.ParseIdentifier(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	info, err := c.Service.Retrieve(r.Context(), identifier, userID)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, info)
}

// Members godoc
// @Summary List a poll's members by invitation state
// @Tags wtms
// @Produce json
// @Security BearerAuth
// @Param identifier path int true "Public event code"
// @Success 200 {object} helpers.APIResponse "data groups usernames by state"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /wtms/{identifier}/members [get]
func (c *WTMController) Members(w http.ResponseWriter, r *http.Request) {
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
// @Summary Invite users to a poll
// @Description Owner-only. Each username is processed independently; failures (unknown user, already invited, already accepted) are collected per name instead of failing the call.
// @Tags wtms
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
// @Router /wtms/{identifier}/invite [post]
func (c *WTMController) Invite(w http.ResponseWriter, r *http.Request) {
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
// @Summary Accept a poll invitation
// @Tags wtms
// @Produce json
// @Security BearerAuth
// @Param identifier path int true "Public event code"
// @Success 204 "no content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (caller owns the event)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not invited, or already declined)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /wtms/{identifier}/accept [post]
func (c *WTMController) Accept(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Service.Accept)
}

// Reject godoc
// @Summary Decline a poll invitation
// @Tags wtms
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
// @Router /wtms/{identifier}/reject [post]
func (c *WTMController) Reject(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Service.Decline)
}

// Leave godoc
// @Summary Leave a poll after accepting
// @Tags wtms
// @Produce json
// @Security BearerAuth
// @Param identifier path int true "Public event code"
// @Success 204 "no content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not an accepted guest)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /wtms/{identifier}/leave [post]
func (c *WTMController) Leave(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Service.Leave)
}

func (c *WTMController) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, identifier int, actorID string) error) {
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

// Respond godoc
// @Summary Submit or replace an availability response
// @Description Stores the caller's availability for the poll. Re-submission replaces the previous response.
// @Tags wtms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param identifier path int true "Public event code"
// @Param body body RespondRequest true "Availability per candidate day"
// @Success 200 {object} helpers.APIResponse "data contains the updated WTM"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /wtms/{identifier}/respond [post]
func (c *WTMController) Respond(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	identifier, err := helpers.ParseIdentifier(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	var req RespondRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	wtm, err := c.Service.Respond(r.Context(), identifier, userID, req.Times)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, wtm)
}

// Remind godoc
// @Summary Nudge pending members to respond
// @Description Owner-only. Drops a reminder message into every invited and accepted member's inbox.
// @Tags wtms
// @Produce json
// @Security BearerAuth
// @Param identifier path int true "Public event code"
// @Success 204 "no content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (also for non-owners)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /wtms/{identifier}/remind [post]
func (c *WTMController) Remind(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Service.Remind)
}

// Delete godoc
// @Summary Delete a poll
// @Description Owner-only. Removes the poll, detaches every member, and notifies them.
// @Tags wtms
// @Produce json
// @Security BearerAuth
// @Param identifier path int true "Public event code"
// @Success 204 "no content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (also for non-owners)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /wtms/{identifier} [delete]
func (c *WTMController) Delete(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Service.Delete)
}
