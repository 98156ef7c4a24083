package handlers

import (
	"net/http"

	"github.com/benvon/smart-planner/internal/request"
	"github.com/benvon/smart-planner/internal/services/oidc"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	oidcProvider *oidc.Provider
	log          *zap.Logger
}

// NewAuthHandler creates a new auth handler. oidcProvider may be nil when
// no identity provider is configured.
func NewAuthHandler(oidcProvider *oidc.Provider, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{oidcProvider: oidcProvider, log: log}
}

// RegisterPublicRoutes registers the login route. The router should already have the /auth prefix.
func (h *AuthHandler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/oidc/login", h.GetOIDCLogin).Methods(http.MethodGet)
}

// RegisterRoutes registers routes that require an authenticated user
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/me", h.GetMe).Methods(http.MethodGet)
}

// LoginResponse carries the provider endpoints and a ready-made authorization URL
type LoginResponse struct {
	*oidc.LoginConfig
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
}

// GetOIDCLogin returns the OIDC configuration and authorization URL for the frontend
func (h *AuthHandler) GetOIDCLogin(w http.ResponseWriter, r *http.Request) {
	if h.oidcProvider == nil || !h.oidcProvider.Config().Enabled() {
		respondJSONError(w, http.StatusNotFound, "Not Found", "OIDC login is not configured")
		return
	}

	loginConfig, err := h.oidcProvider.GetLoginConfig(r.Context())
	if err != nil {
		h.log.Error("failed_to_get_oidc_login_config", zap.Error(err))
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Failed to get OIDC configuration")
		return
	}

	state := uuid.NewString()
	client := oidc.NewClient(h.oidcProvider.Config(), loginConfig)
	respondJSON(w, http.StatusOK, LoginResponse{
		LoginConfig:      loginConfig,
		AuthorizationURL: client.AuthCodeURL(state),
		State:            state,
	})
}

// GetMe returns current user information
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}
	respondJSON(w, http.StatusOK, user)
}
