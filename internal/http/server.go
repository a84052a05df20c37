package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/vishesh2305/SafeTour/internal/alerts"
	"github.com/vishesh2305/SafeTour/internal/auth"
	"github.com/vishesh2305/SafeTour/internal/chain"
	"github.com/vishesh2305/SafeTour/internal/config"
	"github.com/vishesh2305/SafeTour/internal/crypto"
	"github.com/vishesh2305/SafeTour/internal/issuance"
	"github.com/vishesh2305/SafeTour/internal/metrics"
	"github.com/vishesh2305/SafeTour/internal/model"
	"github.com/vishesh2305/SafeTour/internal/repository"
)

const alertChannel = "alerts.active"

type Server struct {
	cfg       config.Config
	store     repository.Backend
	forwarder *issuance.Forwarder
	redis     *redis.Client
}

func NewServer(cfg config.Config, store repository.Backend, chainClient chain.Client, redisClient *redis.Client) *Server {
	return &Server{
		cfg:       cfg,
		store:     store,
		forwarder: issuance.NewForwarder(chainClient, store),
		redis:     redisClient,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)

	r.With(s.authMiddleware).Post("/panic", s.handlePanic)
	r.With(s.authMiddleware, s.requireResponder).Get("/alerts", s.handleListAlerts)
	r.With(s.authMiddleware, s.requireResponder).Patch("/alerts/{alertID}/resolve", s.handleResolveAlert)

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.authMiddleware, s.requireAdmin)
		r.Post("/issue-id", s.handleIssueID)
		r.Get("/identity/{touristID}", s.handleIdentityInfo)
		r.Get("/receipts", s.handleListReceipts)
	})

	return r
}

type registerRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	WalletAddress string `json:"walletAddress"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userSummary struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	WalletAddress *string   `json:"walletAddress,omitempty"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"createdAt"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  userSummary `json:"user"`
}

type alertResponse struct {
	ID         string     `json:"id"`
	User       string     `json:"user"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy *string    `json:"resolvedBy,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "request body is not valid JSON")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.WalletAddress = strings.TrimSpace(req.WalletAddress)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "validation_error", "a valid email is required")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "password is required")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to process credentials")
		return
	}

	user := model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleTourist,
		CreatedAt:    time.Now().UTC(),
	}
	if req.WalletAddress != "" {
		user.WalletAddress = &req.WalletAddress
	}

	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "conflict", "a user with this email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", "registration failed")
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to issue token")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: mapUserSummary(user)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "request body is not valid JSON")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "email and password are required")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", "login failed")
		return
	}

	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid credentials")
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: mapUserSummary(user)})
}

type panicRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (s *Server) handlePanic(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "missing token")
		return
	}

	var req panicRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "request body is not valid JSON")
		return
	}

	alert, err := alerts.Create(r.Context(), s.store, claims.UserID, req.Latitude, req.Longitude)
	if err != nil {
		s.writeAlertError(w, err)
		return
	}

	metrics.AlertsCreatedTotal.Inc()
	s.publishAlert(r.Context(), alert)

	writeJSON(w, http.StatusCreated, map[string]interface{}{"alert": mapAlertResponse(alert)})
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	active, err := alerts.ListActive(r.Context(), s.store)
	if err != nil {
		s.writeAlertError(w, err)
		return
	}

	resp := make([]alertResponse, 0, len(active))
	for _, alert := range active {
		resp = append(resp, mapAlertResponse(alert))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolveAlert(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	alertID := chi.URLParam(r, "alertID")
	if alertID == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "missing alert id")
		return
	}

	resolved, err := alerts.Resolve(r.Context(), s.store, alertID, claims)
	if err != nil {
		s.writeAlertError(w, err)
		return
	}

	metrics.AlertsResolvedTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{"alert": mapAlertResponse(resolved)})
}

type issueIDRequest struct {
	TouristAddress   string            `json:"touristAddress"`
	KYCData          map[string]string `json:"kycData"`
	ItineraryHash    string            `json:"itineraryHash"`
	EmergencyContact string            `json:"emergencyContact"`
	DurationDays     int               `json:"durationDays"`
}

type receiptResponse struct {
	RequestID     string    `json:"requestId"`
	ChainTxRef    string    `json:"chainTxRef"`
	TouristWallet string    `json:"touristWallet"`
	RequestedBy   string    `json:"requestedBy"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (s *Server) handleIssueID(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req issueIDRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "request body is not valid JSON")
		return
	}

	metrics.IssuanceRequestsTotal.Inc()

	receipt, err := s.forwarder.RequestIssuance(r.Context(), claims, issuance.Payload{
		TouristAddress:   strings.TrimSpace(req.TouristAddress),
		KYCData:          req.KYCData,
		ItineraryHash:    req.ItineraryHash,
		EmergencyContact: req.EmergencyContact,
		DurationDays:     req.DurationDays,
	})
	if err != nil {
		s.writeIssuanceError(w, err)
		return
	}

	metrics.IssuanceForwardedTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{"receipt": mapReceiptResponse(receipt)})
}

func (s *Server) handleIdentityInfo(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	touristID := chi.URLParam(r, "touristID")

	info, err := s.forwarder.IdentityInfo(r.Context(), claims, touristID)
	if err != nil {
		s.writeIssuanceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	receipts, err := s.store.ListReceipts(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to list receipts")
		return
	}

	resp := make([]receiptResponse, 0, len(receipts))
	for _, receipt := range receipts {
		resp = append(resp, mapReceiptResponse(receipt))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) issueToken(user model.User) (string, error) {
	return auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, auth.Claims{
		UserID: user.ID,
		Role:   user.Role,
	})
}

// publishAlert fans the alert out to responder dashboards. Publishing is
// best-effort: a redis outage never fails the panic request.
func (s *Server) publishAlert(ctx context.Context, alert model.Alert) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(mapAlertResponse(alert))
	if err != nil {
		return
	}
	_ = s.redis.Publish(ctx, alertChannel, payload).Err()
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
			return
		}

		claims, err := auth.ParseToken(s.cfg.JWTSecret, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireResponder(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if !auth.IsResponder(claims) {
			writeError(w, http.StatusForbidden, "forbidden", "requires admin or police role")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if !auth.Authorized(claims, model.RoleAdmin) {
			writeError(w, http.StatusForbidden, "forbidden", "requires admin role")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeAlertError(w http.ResponseWriter, err error) {
	var opErr *alerts.Error
	if errors.As(err, &opErr) {
		switch opErr.Code {
		case alerts.ErrInvalidLocation:
			writeError(w, http.StatusBadRequest, "validation_error", opErr.Message)
		case alerts.ErrAlertNotFound:
			writeError(w, http.StatusNotFound, "not_found", opErr.Message)
		case alerts.ErrForbidden:
			writeError(w, http.StatusForbidden, "forbidden", opErr.Message)
		default:
			writeError(w, http.StatusInternalServerError, "server_error", "alert operation failed")
		}
		return
	}
	writeError(w, http.StatusInternalServerError, "server_error", "alert operation failed")
}

func (s *Server) writeIssuanceError(w http.ResponseWriter, err error) {
	var chainErr *chain.Error
	if errors.As(err, &chainErr) {
		metrics.IssuanceChainErrorsTotal.Inc()
		writeError(w, http.StatusBadGateway, "chain_error", chainErr.Message)
		return
	}
	var opErr *issuance.Error
	if errors.As(err, &opErr) {
		switch opErr.Code {
		case issuance.ErrInvalidPayload:
			writeError(w, http.StatusBadRequest, "validation_error", opErr.Message)
		case issuance.ErrForbidden:
			writeError(w, http.StatusForbidden, "forbidden", opErr.Message)
		default:
			writeError(w, http.StatusInternalServerError, "server_error", opErr.Message)
		}
		return
	}
	writeError(w, http.StatusInternalServerError, "server_error", "issuance failed")
}

type claimsKey struct{}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func mapUserSummary(user model.User) userSummary {
	return userSummary{
		ID:            user.ID,
		Email:         user.Email,
		WalletAddress: user.WalletAddress,
		Role:          string(user.Role),
		CreatedAt:     user.CreatedAt,
	}
}

func mapAlertResponse(alert model.Alert) alertResponse {
	return alertResponse{
		ID:         alert.ID,
		User:       alert.UserID,
		Latitude:   alert.Latitude,
		Longitude:  alert.Longitude,
		Status:     string(alert.Status),
		CreatedAt:  alert.CreatedAt,
		ResolvedAt: alert.ResolvedAt,
		ResolvedBy: alert.ResolvedBy,
	}
}

func mapReceiptResponse(receipt model.Receipt) receiptResponse {
	return receiptResponse{
		RequestID:     receipt.RequestID,
		ChainTxRef:    receipt.ChainTxRef,
		TouristWallet: receipt.TouristWallet,
		RequestedBy:   receipt.RequestedBy,
		CreatedAt:     receipt.CreatedAt,
	}
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, map[string]string{"error": kind, "message": message})
}
