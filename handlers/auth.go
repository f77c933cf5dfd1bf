// handlers/auth.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"p9e.in/slf/config"
	"p9e.in/slf/middleware"
	"p9e.in/slf/models"
	"p9e.in/slf/pkg/workflow"
)

type registerReq struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Password       string  `json:"password"`
	Role           string  `json:"role"`
	Specialization *string `json:"specialization,omitempty"`
}

// Register creates a pending account. An admin must approve it before
// login succeeds.
func Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}
	// hash pw
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "error hashing password", http.StatusInternalServerError)
		return
	}
	u := models.User{
		Name:           req.Name,
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          req.Phone,
		PasswordHash:   string(hash),
		Role:           workflow.NormalizeRole(req.Role),
		Specialization: req.Specialization,
		ApprovalStatus: models.UserStatusPending,
	}
	if err := config.DB.Create(&u).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			http.Error(w, "email already registered", http.StatusConflict)
		} else {
			http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	// Admins review new registrations; best effort.
	notifyAdmins(models.NotificationEventUserRegistered,
		"New registration pending review",
		u.Name+" ("+u.Email+") registered as "+u.Role+" and awaits approval.")

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "registration received, pending approval",
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Token string      `json:"token"`
	Route string      `json:"route"`
	User  userPayload `json:"user"`
}

type userPayload struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

func Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	var u models.User
	if err := config.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&u).Error; err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !u.IsActive() {
		http.Error(w, "account not approved", http.StatusForbidden)
		return
	}

	role, route := workflow.ResolveRoute(u.Role)
	token, err := middleware.GenerateToken(u.ID.String(), role, u.Name, u.Email)
	if err != nil {
		http.Error(w, "couldn't create token", http.StatusInternalServerError)
		return
	}
	out := loginResp{
		Token: token,
		Route: route,
		User: userPayload{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
			Role:  role,
		},
	}
	json.NewEncoder(w).Encode(out)
}

// GetCurrentUser returns the profile and landing route for the bearer
// token's principal.
func GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		http.Error(w, "Missing Bearer token", http.StatusUnauthorized)
		return
	}

	user := middleware.GetUser(r)
	if user.ID == uuid.Nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	role, route := workflow.ResolveRoute(user.Role)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":              user.ID,
		"name":            user.Name,
		"email":           user.Email,
		"role":            role,
		"route":           route,
		"specialization":  user.Specialization,
		"approval_status": user.ApprovalStatus,
		"client_id":       user.ClientID,
	})
}
