package router

import (
	"net/http"

	"github.com/lumeno/accounts/internal/account"
	"github.com/lumeno/accounts/internal/auth"
	"github.com/lumeno/accounts/internal/middleware"
	"github.com/lumeno/accounts/internal/settings"
)

// New returns an http.Handler serving the API under /api/v1. Signup, login
// and health are open; everything else sits behind bearer auth.
func New(authH *auth.Handler, accountH *account.Handler, settingsH *settings.Handler, tokens middleware.TokenDecoder) http.Handler {
	mux := http.NewServeMux()
	const base = "/api/v1"

	mux.HandleFunc("GET /health", health)
	mux.HandleFunc("POST "+base+"/auth/signup", authH.Signup)
	mux.HandleFunc("POST "+base+"/auth/login", authH.Login)

	protected := http.NewServeMux()
	protected.HandleFunc("GET "+base+"/account/me", accountH.GetMe)
	protected.HandleFunc("PUT "+base+"/account/me", accountH.UpdateProfile)
	protected.HandleFunc("PUT "+base+"/account/me/password", accountH.ChangePassword)
	protected.HandleFunc("DELETE "+base+"/account/me", accountH.DeleteMe)

	protected.HandleFunc("GET "+base+"/users", accountH.ListUsers)
	protected.HandleFunc("GET "+base+"/users/{email}", accountH.GetUser)
	protected.HandleFunc("PUT "+base+"/users/{email}", accountH.UpdateUser)
	protected.HandleFunc("DELETE "+base+"/users/{email}", accountH.DeleteUser)

	protected.HandleFunc("GET "+base+"/settings/notifications", settingsH.GetNotifications)
	protected.HandleFunc("PUT "+base+"/settings/notifications", settingsH.PutNotifications)
	protected.HandleFunc("GET "+base+"/settings/billing", settingsH.GetBilling)
	protected.HandleFunc("PUT "+base+"/settings/billing", settingsH.PutBilling)
	protected.HandleFunc("GET "+base+"/settings/plans", settingsH.GetPlan)
	protected.HandleFunc("PUT "+base+"/settings/plans", settingsH.PutPlan)

	authed := middleware.BearerAuth(tokens)(protected)
	mux.Handle(base+"/account/", authed)
	mux.Handle(base+"/users", authed)
	mux.Handle(base+"/users/", authed)
	mux.Handle(base+"/settings/", authed)

	return mux
}

// health answers without touching the store so load balancers get a fast
// signal even when the backend is down.
func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
