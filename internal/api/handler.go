// Package api implements the HTTP surface of the calculator service:
//
//	GET  /        — static calculator UI page
//	GET  /health  — liveness probe, always {"status":"ok"}
//	POST /add     — {"a":n,"b":n} → {"result":a+b}
//	POST /sub     — {"a":n,"b":n} → {"result":a-b}
//	POST /mul     — {"a":n,"b":n} → {"result":a*b}
//	POST /div     — {"a":n,"b":n} → {"result":a/b}; 400 when b is 0
//
// Missing or non-numeric operands are rejected with 422; all responses carry
// Content-Type: application/json except the UI page.
package api

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/calcboard/calcboard/internal/calculator"
)

//go:embed static/index.html
var staticFS embed.FS

// binaryOp adapts a calculator operation to a uniform fallible signature.
type binaryOp func(a, b float64) (float64, error)

// New builds the router for the calculator service. When debug is true every
// request is logged.
func New(debug bool) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if debug {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	r.Get("/", indexPage)
	r.Get("/health", health)
	r.Post("/add", operation(func(a, b float64) (float64, error) { return calculator.Add(a, b), nil }))
	r.Post("/sub", operation(func(a, b float64) (float64, error) { return calculator.Subtract(a, b), nil }))
	r.Post("/mul", operation(func(a, b float64) (float64, error) { return calculator.Multiply(a, b), nil }))
	r.Post("/div", operation(calculator.Divide))

	return r
}

// health serves the liveness probe.
func health(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// indexPage serves the embedded calculator UI.
func indexPage(w http.ResponseWriter, r *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, "ui page unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page) //nolint:errcheck
}

// operation wraps a binary operation into an HTTP handler with the shared
// validation and error translation rules.
func operation(op binaryOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OperationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonErr(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		if req.A == nil || req.B == nil {
			jsonErr(w, http.StatusUnprocessableEntity, "fields 'a' and 'b' are required numbers")
			return
		}

		result, err := op(*req.A, *req.B)
		if err != nil {
			if errors.Is(err, calculator.ErrDivisionByZero) {
				jsonErr(w, http.StatusBadRequest, err.Error())
				return
			}
			jsonErr(w, http.StatusInternalServerError, "internal error")
			return
		}
		jsonResp(w, http.StatusOK, OperationResponse{Result: result})
	}
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Detail: msg})
}
