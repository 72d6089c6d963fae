package account

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lumeno/accounts/internal/auth"
	"github.com/lumeno/accounts/internal/middleware"
	"github.com/lumeno/accounts/internal/store"
	"github.com/lumeno/accounts/internal/validate"
)

type UpdateProfileRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	CurrentPassword string `json:"current_password"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type DeleteRequest struct {
	Password string `json:"password"`
}

type DeleteResponse struct {
	Message string        `json:"message"`
	Deleted []KeyDeletion `json:"deleted"`
}

// UpdateUserRequest is the self-scoped CRUD update: any subset of the
// fields may be supplied, absent ones are left alone.
type UpdateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password"`
}

type Handler struct {
	repo *Repository
	log  *slog.Logger
}

func NewHandler(repo *Repository, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{repo: repo, log: log}
}

// GetMe handles GET /account/me.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromCtx(r.Context())
	acc, err := h.repo.Get(r.Context(), email)
	if err != nil {
		h.storeError(w, "fetch user", err)
		return
	}
	if acc == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

// UpdateProfile handles PUT /account/me. Name changes are gated on the
// current password; the read and the write are separate round trips.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromCtx(r.Context())
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Expected JSON body")
		return
	}
	if req.FirstName == "" || req.LastName == "" || req.CurrentPassword == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	acc, hash, err := h.repo.GetWithHash(r.Context(), email)
	if err != nil {
		h.storeError(w, "fetch user", err)
		return
	}
	if acc == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if !auth.CheckPassword(req.CurrentPassword, hash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := h.repo.UpdateNames(r.Context(), email, req.FirstName, req.LastName); err != nil {
		h.storeError(w, "update user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated successfully", "email": email})
}

// ChangePassword handles PUT /account/me/password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromCtx(r.Context())
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Expected JSON body")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		writeError(w, http.StatusBadRequest, "passwords do not match")
		return
	}
	if err := validate.Password(req.NewPassword); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	acc, hash, err := h.repo.GetWithHash(r.Context(), email)
	if err != nil {
		h.storeError(w, "fetch user", err)
		return
	}
	if acc == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if !auth.CheckPassword(req.OldPassword, hash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.log.Error("hash password failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update password")
		return
	}
	if err := h.repo.UpdatePassword(r.Context(), email, newHash); err != nil {
		h.storeError(w, "update password", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

// DeleteMe handles DELETE /account/me: password-gated removal of all four
// namespaced keys with a per-key report.
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromCtx(r.Context())
	var req DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Expected JSON body")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	acc, hash, err := h.repo.GetWithHash(r.Context(), email)
	if err != nil {
		h.storeError(w, "fetch user", err)
		return
	}
	if acc == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if !auth.CheckPassword(req.Password, hash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	h.deleteAccount(w, r, email)
}

// GetUser handles GET /users/{email}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	email, ok := h.selfScoped(w, r)
	if !ok {
		return
	}
	acc, err := h.repo.Get(r.Context(), email)
	if err != nil {
		h.storeError(w, "fetch user", err)
		return
	}
	if acc == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

// UpdateUser handles PUT /users/{email}: merges whichever fields the body
// supplies, re-hashing a new password.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	email, ok := h.selfScoped(w, r)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Expected JSON body")
		return
	}
	exists, err := h.repo.Exists(r.Context(), email)
	if err != nil {
		h.storeError(w, "fetch user", err)
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	fields := map[string]string{}
	if req.FirstName != nil {
		fields[fieldFirstName] = *req.FirstName
	}
	if req.LastName != nil {
		fields[fieldLastName] = *req.LastName
	}
	if req.Password != nil && *req.Password != "" {
		if err := validate.Password(*req.Password); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			h.log.Error("hash password failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update user")
			return
		}
		fields[fieldPassword] = hash
	}
	if len(fields) == 0 {
		writeError(w, http.StatusBadRequest, "No updatable fields provided")
		return
	}
	if err := h.repo.store.SetFields(r.Context(), store.AccountKey(email), fields); err != nil {
		h.storeError(w, "update user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User updated successfully", "email": email})
}

// DeleteUser handles DELETE /users/{email} with the same per-key report as
// DeleteMe, minus the password gate: presenting a valid token for the
// address is the credential here.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	email, ok := h.selfScoped(w, r)
	if !ok {
		return
	}
	exists, err := h.repo.Exists(r.Context(), email)
	if err != nil {
		h.storeError(w, "fetch user", err)
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	h.deleteAccount(w, r, email)
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.repo.List(r.Context())
	if err != nil {
		h.storeError(w, "list users", err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request, email string) {
	report, err := h.repo.DeleteAll(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) && len(report) == 0 {
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		h.log.Error("account deletion incomplete", "email", email, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "failed to delete user: " + err.Error(),
			"deleted": report,
		})
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Message: "User deleted successfully", Deleted: report})
}

// selfScoped normalizes the path email and enforces that it matches the
// token subject. Every protected operation is self-service only.
func (h *Handler) selfScoped(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := store.Normalize(r.PathValue("email"))
	if email != middleware.EmailFromCtx(r.Context()) {
		writeError(w, http.StatusForbidden, "cannot act on another user's account")
		return "", false
	}
	return email, true
}

func (h *Handler) storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, store.ErrUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	h.log.Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, "failed to "+op+": "+err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
