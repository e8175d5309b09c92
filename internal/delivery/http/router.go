package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"whentomeet/internal/delivery/http/controllers"
	"whentomeet/internal/delivery/http/middleware"
	"whentomeet/internal/domain"
)

// RouterDeps bundles everything NewRouter needs to wire the routes.
type RouterDeps struct {
	Auth         *controllers.AuthController
	Users        *controllers.UserController
	WTMs         *controllers.WTMController
	Appointments *controllers.AppointmentController
	Maps         *controllers.MapsController
	Verifier     domain.TokenVerifier
	AuthLimiter  *middleware.RateLimiter
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(deps RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()
	authed := middleware.RequireAuth(deps.Verifier)
	limited := deps.AuthLimiter.Limit

	// Auth
	mux.HandleFunc("POST /auth/signup", limited(deps.Auth.SignUp))
	mux.HandleFunc("POST /auth/login", limited(deps.Auth.Login))
	mux.HandleFunc("POST /auth/reset-password", authed(deps.Auth.ResetPassword))
	mux.HandleFunc("GET /auth/username-exists", deps.Auth.UsernameExists)
	mux.HandleFunc("GET /auth/email-exists", deps.Auth.EmailExists)

	// Inbox, departure point, per-user listings
	mux.HandleFunc("GET /users/me/messages", authed(deps.Users.GetMessages))
	mux.HandleFunc("DELETE /users/me/messages", authed(deps.Users.ClearMessages))
	mux.HandleFunc("PUT /users/me/departure", authed(deps.Users.UpdateDeparture))
	mux.HandleFunc("GET /users/me/wtms/owned", authed(deps.Users.OwnedWTMs))
	mux.HandleFunc("GET /users/me/wtms/guest", authed(deps.Users.GuestWTMs))

	// Availability polls
	mux.HandleFunc("POST /wtms", authed(deps.WTMs.Create))
	mux.HandleFunc("GET /wtms/{identifier}", authed(deps.WTMs.Retrieve))
	mux.HandleFunc("GET /wtms/{identifier}/members", authed(deps.WTMs.Members))
	mux.HandleFunc("POST /wtms/{identifier}/invite", authed(deps.WTMs.Invite))
	mux.HandleFunc("POST /wtms/{identifier}/accept", authed(deps.WTMs.Accept))
	mux.HandleFunc("POST /wtms/{identifier}/reject", authed(deps.WTMs.Reject))
	mux.HandleFunc("POST /wtms/{identifier}/leave", authed(deps.WTMs.Leave))
	mux.HandleFunc("POST /wtms/{identifier}/respond", authed(deps.WTMs.Respond))
	mux.HandleFunc("POST /wtms/{identifier}/remind", authed(deps.WTMs.Remind))
	mux.HandleFunc("DELETE /wtms/{identifier}", authed(deps.WTMs.Delete))

	// Appointments
	mux.HandleFunc("POST /appointments", authed(deps.Appointments.Create))
	mux.HandleFunc("GET /appointments/{identifier}", authed(deps.Appointments.Retrieve))
	mux.HandleFunc("GET /appointments/{identifier}/members", authed(deps.Appointments.Members))
	mux.HandleFunc("PUT /appointments/{identifier}", authed(deps.Appointments.Modify))
	mux.HandleFunc("POST /appointments/{identifier}/invite", authed(deps.Appointments.Invite))
	mux.HandleFunc("POST /appointments/{identifier}/accept", authed(deps.Appointments.Accept))
	mux.HandleFunc("POST /appointments/{identifier}/reject", authed(deps.Appointments.Reject))
	mux.HandleFunc("DELETE /appointments/{identifier}", authed(deps.Appointments.Delete))

	// Maps and alarms
	mux.HandleFunc("GET /maps/geocode", authed(deps.Maps.Geocode))
	mux.HandleFunc("POST /alarms", authed(deps.Maps.SetAlarm))
	mux.HandleFunc("DELETE /alarms/{id}", authed(deps.Maps.CancelAlarm))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
