package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/avkern/authgate/internal/auth"
	"github.com/avkern/authgate/internal/auth/apikey"
	"github.com/avkern/authgate/internal/authz"
	"github.com/avkern/authgate/internal/observability"
)

// keyAdminScope is the scope required for API key administration.
const keyAdminScope = "keys:write"

// routes builds the HTTP route table. Key administration endpoints are
// gated behind the key admin scope.
func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", app.handleHealth)
	mux.HandleFunc("GET /v1/whoami", app.handleWhoAmI)

	if app.keys != nil {
		requireAdmin := authz.RequireScope(app.gate, keyAdminScope)
		mux.Handle("POST /v1/keys", requireAdmin(http.HandlerFunc(app.handleGenerateKey)))
		mux.Handle("DELETE /v1/keys/{id}", requireAdmin(http.HandlerFunc(app.handleRevokeKey)))
	}

	return mux
}

func (app *application) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// whoamiResponse describes the calling identity.
type whoamiResponse struct {
	Subject   string        `json:"subject"`
	AuthType  auth.AuthType `json:"authType"`
	Issuer    string        `json:"issuer,omitempty"`
	Roles     []string      `json:"roles,omitempty"`
	Scopes    []string      `json:"scopes,omitempty"`
	ExpiresAt *time.Time    `json:"expiresAt,omitempty"`
}

func (app *application) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFromContextOrError(r.Context())
	if err != nil {
		auth.WriteFailure(w, auth.KindUnauthenticated)
		return
	}

	resp := whoamiResponse{
		Subject:  identity.Subject,
		AuthType: identity.AuthType,
		Issuer:   identity.Issuer,
		Roles:    identity.Roles,
		Scopes:   identity.Scopes,
	}
	if !identity.ExpiresAt.IsZero() {
		resp.ExpiresAt = &identity.ExpiresAt
	}

	writeJSON(w, http.StatusOK, resp)
}

// generateKeyRequest is the body of a key generation request.
type generateKeyRequest struct {
	OwnerID  string            `json:"ownerId"`
	Name     string            `json:"name,omitempty"`
	Scopes   []string          `json:"scopes,omitempty"`
	Roles    []string          `json:"roles,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// generateKeyResponse carries the raw key. It is returned exactly once
// and never persisted or logged.
type generateKeyResponse struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Prefix    string    `json:"prefix"`
	CreatedAt time.Time `json:"createdAt"`
}

func (app *application) handleGenerateKey(w http.ResponseWriter, r *http.Request) {
	var req generateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.OwnerID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ownerId is required"})
		return
	}

	raw, record, err := app.keys.Generate(r.Context(), req.OwnerID, apikey.GenerateOptions{
		Name:     req.Name,
		Scopes:   req.Scopes,
		Roles:    req.Roles,
		Metadata: req.Metadata,
	})
	if err != nil {
		app.logger.Error("key generation failed", observability.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "key generation failed"})
		return
	}

	writeJSON(w, http.StatusCreated, generateKeyResponse{
		ID:        record.ID,
		Key:       raw,
		Prefix:    record.Prefix,
		CreatedAt: record.CreatedAt,
	})
}

func (app *application) handleRevokeKey(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "key id is required"})
		return
	}

	if err := app.keys.Revoke(r.Context(), id); err != nil {
		kind := auth.Classify(err)
		if kind == auth.KindUnknownCredential {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "key not found"})
			return
		}
		app.logger.Error("key revocation failed",
			observability.String("key_id", id),
			observability.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "key revocation failed"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set(auth.HeaderContentType, auth.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
