package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mdalbakiakon/lms-backend/internal/hash"
	"github.com/mdalbakiakon/lms-backend/internal/logging"
	"github.com/mdalbakiakon/lms-backend/internal/mailer"
	"github.com/mdalbakiakon/lms-backend/internal/models"
	"github.com/mdalbakiakon/lms-backend/internal/mykafka"
	"github.com/mdalbakiakon/lms-backend/internal/service/reset"
	"github.com/mdalbakiakon/lms-backend/internal/service/token"
)

type AuthHandler struct {
	DB          *gorm.DB
	Tokens      *token.Service
	Reset       *reset.Service
	Mailer      mailer.Sender
	Producer    *mykafka.Producer
	FrontendURL string
}

func profileJSON(u *models.User) echo.Map {
	return echo.Map{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
		"role":     u.Role,
	}
}

func (h *AuthHandler) publish(c echo.Context, topic string, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka_publish_error", "error", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	fieldErrs := echo.Map{}
	if req.Username == "" {
		fieldErrs["username"] = "this field is required"
	}
	if req.Email == "" {
		fieldErrs["email"] = "this field is required"
	} else if !strings.Contains(req.Email, "@") {
		fieldErrs["email"] = "enter a valid email address"
	}
	if req.Password == "" {
		fieldErrs["password"] = "this field is required"
	}
	if req.Role == "" {
		fieldErrs["role"] = "this field is required"
	} else if !models.ValidRole(req.Role) {
		fieldErrs["role"] = "role must be one of admin, instructor, student"
	}
	if len(fieldErrs) > 0 {
		l.Warn("register_failed", "status", 400, "reason", "validation")
		return c.JSON(http.StatusBadRequest, fieldErrs)
	}

	var existing models.User
	if err := h.DB.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		l.Warn("register_failed", "status", 400, "reason", "username_taken")
		return c.JSON(http.StatusBadRequest, echo.Map{"username": "a user with that username already exists"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("register_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		l.Warn("register_failed", "status", 400, "reason", "email_taken")
		return c.JSON(http.StatusBadRequest, echo.Map{"email": "a user with that email already exists"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("register_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         req.Role,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		l.Error("register_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, "user_events", fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
		"role":     user.Role,
	})

	l.Info("register_success", "status", 201, "userID", user.ID)
	return c.JSON(http.StatusCreated, profileJSON(&user))
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	// Same failure shape whether the user is missing or the password
	// is wrong.
	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}

	access, refresh, err := h.Tokens.IssuePair(user.ID, user.Role)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot create token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create token")
	}

	h.publish(c, "user_events", fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	l.Info("login_success", "userID", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"access":  access,
		"refresh": refresh,
	})
}

func (h *AuthHandler) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	access, err := h.Tokens.Refresh(req.Refresh)
	if err != nil {
		l.Warn("refresh_failed", "status", 401)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	}

	return c.JSON(http.StatusOK, echo.Map{"access": access})
}

func (h *AuthHandler) GetProfile(c echo.Context) error {
	userID, ok := c.Get("userID").(uint)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid user")
	}

	return c.JSON(http.StatusOK, profileJSON(&user))
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_profile_update")

	userID, ok := c.Get("userID").(uint)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid user")
	}

	if req.Username != "" && req.Username != user.Username {
		var other models.User
		if err := h.DB.Where("username = ?", req.Username).First(&other).Error; err == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"username": "a user with that username already exists"})
		}
		user.Username = req.Username
	}
	if req.Email != "" && req.Email != user.Email {
		if !strings.Contains(req.Email, "@") {
			return c.JSON(http.StatusBadRequest, echo.Map{"email": "enter a valid email address"})
		}
		var other models.User
		if err := h.DB.Where("email = ?", req.Email).First(&other).Error; err == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"email": "a user with that email already exists"})
		}
		user.Email = req.Email
	}

	if err := h.DB.Save(&user).Error; err != nil {
		l.Error("profile_update_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("profile_updated", "userID", user.ID)
	return c.JSON(http.StatusOK, profileJSON(&user))
}

// ForgotPassword answers identically for known and unknown emails so
// the endpoint cannot be used to enumerate accounts. Delivery is
// fire-and-forget: a send failure does not invalidate the token.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_forgot_password")

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"email": "this field is required"})
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err == nil {
		uid := reset.EncodeUID(user.ID)
		tok := h.Reset.MakeToken(user.ID, user.PasswordHash)
		link := fmt.Sprintf("%s/reset-password/%s/%s/", h.FrontendURL, uid, tok)
		body := fmt.Sprintf("Click the link to reset password: %s", link)

		if h.Mailer != nil {
			go func() {
				sendCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := h.Mailer.Send(sendCtx, user.Email, "Password Reset", body); err != nil {
					l.Error("reset_mail_failed", "userID", user.ID, "error", err)
				}
			}()
		} else {
			l.Warn("reset_mail_skipped", "reason", "mailer not configured", "userID", user.ID)
		}
		l.Info("reset_requested", "userID", user.ID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("reset_request_failed", "reason", "db_error", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset link sent to email"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_reset_password")

	var req struct {
		UID         string `json:"uid"`
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	fieldErrs := echo.Map{}
	if req.UID == "" {
		fieldErrs["uid"] = "this field is required"
	}
	if req.Token == "" {
		fieldErrs["token"] = "this field is required"
	}
	if req.NewPassword == "" {
		fieldErrs["new_password"] = "this field is required"
	}
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusBadRequest, fieldErrs)
	}

	userID, err := reset.DecodeUID(req.UID)
	if err != nil {
		l.Warn("reset_failed", "status", 400, "reason", "invalid_user")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user"})
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		l.Warn("reset_failed", "status", 400, "reason", "invalid_user")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user"})
	}

	// The token is bound to the current password hash: once the hash
	// changes, this and every sibling token stop validating.
	if !h.Reset.CheckToken(user.ID, user.PasswordHash, req.Token) {
		l.Warn("reset_failed", "status", 400, "reason", "invalid_or_expired_token")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}

	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		l.Error("reset_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	user.PasswordHash = pwHash
	if err := h.DB.Save(&user).Error; err != nil {
		l.Error("reset_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, "user_events", fmt.Sprint(user.ID), map[string]interface{}{
		"type":   "password_reset",
		"userID": user.ID,
	})

	l.Info("reset_success", "userID", user.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset successful"})
}
