package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/waldyrious/celo-monorepo/pkg/crypto"
	"github.com/waldyrious/celo-monorepo/pkg/identity"
	"github.com/waldyrious/celo-monorepo/pkg/subsidy"
	"github.com/waldyrious/celo-monorepo/pkg/validation"
)

// Server exposes the subsidy orchestrator over HTTP.
type Server struct {
	orch    *subsidy.Orchestrator
	limiter *GlobalRateLimiter
	auth    *AdminAuth
	logger  *slog.Logger
}

// NewServer wires the HTTP surface around an orchestrator.
func NewServer(orch *subsidy.Orchestrator, limiter *GlobalRateLimiter, auth *AdminAuth) *Server {
	return &Server{
		orch:    orch,
		limiter: limiter,
		auth:    auth,
		logger:  slog.Default().With("component", "api.server"),
	}
}

// Handler builds the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("POST /v1/subsidy/execute", http.HandlerFunc(s.handleExecute))
	mux.Handle("PUT /v1/policy/limit", s.auth.Middleware(http.HandlerFunc(s.handleSetLimit)))

	var h http.Handler = mux
	if s.limiter != nil {
		h = s.limiter.Middleware(h)
	}
	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// signatureWire is the {v, r, s} triple as it appears on the wire.
type signatureWire struct {
	V uint8  `json:"v"`
	R string `json:"r"`
	S string `json:"s"`
}

func (sw signatureWire) toSignature() (crypto.Signature, error) {
	var sig crypto.Signature
	r, err := crypto.ComponentFromHex(sw.R)
	if err != nil {
		return sig, err
	}
	sVal, err := crypto.ComponentFromHex(sw.S)
	if err != nil {
		return sig, err
	}
	sig.V = sw.V
	sig.R = r
	sig.S = sVal
	return sig, nil
}

// executeWire is the execute request body. The optional timestamp lets
// clients bound how long a request stays submittable.
type executeWire struct {
	Beneficiary    string        `json:"beneficiary"`
	Operation      string        `json:"operation"`
	RequestedUnits uint64        `json:"requested_units"`
	Timestamp      *time.Time    `json:"timestamp,omitempty"`
	Approval       signatureWire `json:"approval"`
	Consumption    signatureWire `json:"consumption"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength >= 0 && !validation.WithinSizeLimit(r.ContentLength) {
		WriteError(w, http.StatusRequestEntityTooLarge, "Payload Too Large", "Request body exceeds size limit")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, validation.MaxPayloadBytes))
	if err != nil {
		WriteError(w, http.StatusRequestEntityTooLarge, "Payload Too Large", "Request body exceeds size limit")
		return
	}

	if err := validation.ValidateExecutePayload(body); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	var wire executeWire
	if err := json.Unmarshal(body, &wire); err != nil {
		WriteBadRequest(w, "Malformed JSON body")
		return
	}
	if wire.Timestamp != nil && !validation.FreshTimestamp(*wire.Timestamp, time.Now(), validation.DefaultExpiryWindow) {
		WriteBadRequest(w, "Request timestamp is stale or in the future")
		return
	}

	req, err := wireToRequest(wire)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	event, err := s.orch.ExecuteSubsidizedChain(r.Context(), req)
	if err != nil {
		s.writeChainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(event)
}

func wireToRequest(wire executeWire) (subsidy.Request, error) {
	var req subsidy.Request

	beneficiary, err := identity.ParseAddress(wire.Beneficiary)
	if err != nil {
		return req, err
	}
	operation, err := identity.ParseOperation(wire.Operation)
	if err != nil {
		return req, err
	}
	approval, err := wire.Approval.toSignature()
	if err != nil {
		return req, err
	}
	consumption, err := wire.Consumption.toSignature()
	if err != nil {
		return req, err
	}

	return subsidy.Request{
		Beneficiary:    beneficiary,
		Operation:      operation,
		RequestedUnits: wire.RequestedUnits,
		Approval: subsidy.AuthorizedAction{
			Signer:    beneficiary,
			Operation: operation,
			Sig:       approval,
		},
		Consumption: subsidy.AuthorizedAction{
			Signer:    beneficiary,
			Operation: operation,
			Sig:       consumption,
		},
	}, nil
}

// writeChainError maps the orchestration error taxonomy onto HTTP statuses.
func (s *Server) writeChainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, subsidy.ErrMalformedRequest):
		WriteBadRequest(w, err.Error())
	case errors.Is(err, subsidy.ErrSignatureRejected):
		WriteUnauthorized(w, err.Error())
	case errors.Is(err, subsidy.ErrLimitExceeded), errors.Is(err, subsidy.ErrFeeOverflow):
		WriteError(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
	case errors.Is(err, subsidy.ErrReentrantCall):
		WriteError(w, http.StatusConflict, "Conflict", "An orchestration is already in flight")
	default:
		s.logger.ErrorContext(r.Context(), "subsidized chain failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal Server Error", "Orchestration failed")
	}
}

// limitWire is the set-limit request body.
type limitWire struct {
	NewLimit uint64 `json:"new_limit"`
}

// handleSetLimit updates the per-request unit ceiling. The caller identity
// comes from the authenticated token subject, which must be the
// administrator's ledger address.
func (s *Server) handleSetLimit(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, "")
		return
	}
	caller, err := identity.ParseAddress(claims.Subject)
	if err != nil {
		WriteUnauthorized(w, "Token subject is not a valid account address")
		return
	}

	var wire limitWire
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, validation.MaxPayloadBytes)).Decode(&wire); err != nil {
		WriteBadRequest(w, "Malformed JSON body")
		return
	}

	if err := s.orch.SetLimit(r.Context(), caller, wire.NewLimit); err != nil {
		switch {
		case errors.Is(err, subsidy.ErrUnauthorized):
			WriteForbidden(w, "Caller is not the policy administrator")
		case errors.Is(err, subsidy.ErrInvalidLimit):
			WriteBadRequest(w, "Limit must be strictly positive")
		default:
			s.logger.ErrorContext(r.Context(), "limit update failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal Server Error", "Limit update failed")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"new_limit": wire.NewLimit})
}
