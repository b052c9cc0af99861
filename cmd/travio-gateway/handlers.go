package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/travio/pkg/clientip"
	"github.com/dmitrymomot/travio/pkg/httpserver"
	"github.com/dmitrymomot/travio/pkg/requestid"
	"github.com/dmitrymomot/travio/pkg/session"
	"github.com/dmitrymomot/travio/pkg/travio"
)

var errBadRequest = errors.New("bad request")

// routerConfig carries what the router needs from main.
type routerConfig struct {
	Cookie session.CookieConfig
	Build  travio.Builder
	Checks map[string]httpserver.Check
	Logger *slog.Logger

	TrustProxy bool
}

func newRouter(cfg routerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware(cfg.TrustProxy))

	r.Get("/healthz", httpserver.HealthHandler(cfg.Logger, cfg.Checks))

	r.Group(func(r chi.Router) {
		r.Use(session.CookieMiddleware(cfg.Cookie))
		r.Use(travio.Middleware(cfg.Build))

		r.Post("/login", login)
		r.Post("/logout", logout)
		r.Get("/me", me)
		r.Post("/search", search)
		r.Get("/cart", getCart)
		r.Post("/cart/place", placeBooking)
	})

	return r
}

func client(r *http.Request) *travio.Client {
	c, _ := travio.FromContext(r.Context())
	return c
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

func login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		fail(w, r, fmt.Errorf("%w: username and password are required", errBadRequest))
		return
	}

	c := client(r)
	token, err := c.Auth().Login(r.Context(), req.Username, req.Password)
	if err != nil {
		fail(w, r, err)
		return
	}

	profile, err := c.Auth().LoggedAs(r.Context(), token)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"user": profile})
}

func logout(w http.ResponseWriter, r *http.Request) {
	if err := client(r).Auth().Logout(r.Context()); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func me(w http.ResponseWriter, r *http.Request) {
	profile, err := client(r).Auth().Logged(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	if profile == nil {
		writeError(w, http.StatusUnauthorized, "not_logged_in", "no user is logged in")
		return
	}
	writeData(w, http.StatusOK, map[string]any{"user": profile})
}

func search(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := decodeBody(r, &payload); err != nil {
		fail(w, r, err)
		return
	}

	resp, err := client(r).Search(r.Context(), payload, r.URL.Query().Get("cart"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

func getCart(w http.ResponseWriter, r *http.Request) {
	options := make(map[string]any)
	for key, values := range r.URL.Query() {
		if key != "cart" && len(values) > 0 {
			options[key] = values[0]
		}
	}

	cart, err := client(r).GetCart(r.Context(), r.URL.Query().Get("cart"), options)
	if err != nil {
		fail(w, r, err)
		return
	}
	if cart == nil {
		writeError(w, http.StatusNotFound, "no_cart", "no active cart")
		return
	}
	writeData(w, http.StatusOK, cart)
}

func placeBooking(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := decodeBody(r, &payload); err != nil {
		fail(w, r, err)
		return
	}

	resp, err := client(r).PlaceBooking(r.Context(), r.URL.Query().Get("cart"), payload)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}
