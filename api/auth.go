package api

import (
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"expensetracker/config"
	"expensetracker/database"
	"expensetracker/logger"
	"expensetracker/middleware"
	"expensetracker/models"
	"expensetracker/service"
)

// AuthHandler serves account creation and credential issuance.
type AuthHandler struct {
	cfg          *config.Config
	emailService *service.EmailService
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		cfg:          cfg,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// SignupRequest is the account creation body.
type SignupRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"Password123"`
	Name     string `json:"name" example:"Jane Doe"`
}

// SigninRequest is the credential body.
type SigninRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"Password123"`
}

// SigninResponse carries the issued token.
type SigninResponse struct {
	AccessToken string     `json:"accessToken"`
	ExpiresIn   int64      `json:"expiresIn"`
	User        SigninUser `json:"user"`
}

// SigninUser is the user block of the signin response.
type SigninUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validatePassword enforces the signup password rules.
func validatePassword(password string) string {
	if len(password) < 8 {
		return "Password must be at least 8 characters"
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper {
		return "Password must contain at least one uppercase letter"
	}
	if !hasLower {
		return "Password must contain at least one lowercase letter"
	}
	if !hasDigit {
		return "Password must contain at least one number"
	}
	return ""
}

// Signup creates a local account.
// @Summary Sign up
// @Description Creates an account. Email must be unique; passwords need at least 8 characters with upper, lower and digit.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "account fields"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Invalid request body"))
		return
	}

	if req.Email == "" || req.Password == "" {
		BadRequest(c, "Email and password are required")
		return
	}
	if !emailPattern.MatchString(req.Email) {
		BadRequest(c, "Invalid email format")
		return
	}
	if msg := validatePassword(req.Password); msg != "" {
		BadRequest(c, msg)
		return
	}

	var existing models.User
	if err := database.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		Conflict(c, "An account with this email already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("hash password", zap.Error(err))
		InternalError(c, "Sign-up failed. Please try again.")
		return
	}

	user := models.User{
		Email:    req.Email,
		Name:     req.Name,
		Password: string(hashed),
	}
	if err := database.DB.Create(&user).Error; err != nil {
		logger.Error("create user", zap.Error(err))
		InternalError(c, "Sign-up failed. Please try again.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"userId":  user.Subject(),
		"email":   user.Email,
	})
}

// Signin validates credentials and issues a bearer token.
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SigninRequest true "credentials"
// @Success 200 {object} SigninResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/auth/signin [post]
func (h *AuthHandler) Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Invalid request body"))
		return
	}

	if req.Email == "" || req.Password == "" {
		BadRequest(c, "Email and password are required")
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		Unauthorized(c, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		Unauthorized(c, "Invalid email or password")
		return
	}

	token, err := middleware.GenerateToken(user.Subject(), user.Email, user.Name, h.cfg.JWT.ExpireTime)
	if err != nil {
		logger.Error("generate token", zap.Error(err))
		InternalError(c, "Sign-in failed. Please try again.")
		return
	}

	c.JSON(http.StatusOK, SigninResponse{
		AccessToken: token,
		ExpiresIn:   int64(h.cfg.JWT.ExpireTime.Seconds()),
		User: SigninUser{
			ID:    user.Subject(),
			Email: user.Email,
			Name:  user.Name,
		},
	})
}

// Profile returns the authenticated identity.
// @Summary Current user profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Router /api/auth/profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	identity := middleware.GetCurrentIdentity(c)
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    identity.Subject,
			"email": identity.Email,
			"name":  identity.Name,
		},
	})
}

// ChangePasswordRequest is the password change body.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword replaces the caller's password.
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "passwords"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	subject := middleware.GetCurrentSubject(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Invalid request body"))
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		BadRequest(c, "Old and new passwords are required")
		return
	}
	if msg := validatePassword(req.NewPassword); msg != "" {
		BadRequest(c, msg)
		return
	}

	var user models.User
	if err := database.DB.Where("id = ?", subject).First(&user).Error; err != nil {
		Unauthorized(c, "Invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		Unauthorized(c, "Old password is incorrect")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("hash password", zap.Error(err))
		InternalError(c, "Failed to change password")
		return
	}
	if err := database.DB.Model(&user).Update("password", string(hashed)).Error; err != nil {
		logger.Error("update password", zap.Error(err))
		InternalError(c, "Failed to change password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// RequestPasswordResetRequest is the reset request body.
type RequestPasswordResetRequest struct {
	Email string `json:"email"`
}

// RequestPasswordReset mails a reset link. The response never reveals
// whether the address has an account.
// @Summary Request password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RequestPasswordResetRequest true "account email"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /api/auth/password/request-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req RequestPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		BadRequest(c, "Email is required")
		return
	}

	genericResponse := gin.H{"message": "If the address has an account, a reset email has been sent"}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusOK, genericResponse)
		return
	}

	token, err := models.GenerateResetToken()
	if err != nil {
		logger.Error("generate reset token", zap.Error(err))
		InternalError(c, "Failed to process reset request")
		return
	}

	reset := models.PasswordReset{
		UserID:    user.ID,
		Token:     token,
		Email:     user.Email,
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
	if err := database.DB.Create(&reset).Error; err != nil {
		logger.Error("store reset token", zap.Error(err))
		InternalError(c, "Failed to process reset request")
		return
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", h.cfg.Server.BaseURL, token)
	if err := h.emailService.SendPasswordResetEmail(user.Email, user.Name, resetLink); err != nil {
		// Mail is best-effort in development setups with email disabled.
		logger.Warn("send reset email", zap.Error(err))
	}

	c.JSON(http.StatusOK, genericResponse)
}

// ResetPasswordRequest is the reset completion body.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword completes a reset with a mailed token.
// @Summary Reset password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "token and new password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /api/auth/password/reset [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		BadRequest(c, "Token and new password are required")
		return
	}
	if msg := validatePassword(req.NewPassword); msg != "" {
		BadRequest(c, msg)
		return
	}

	var reset models.PasswordReset
	if err := database.DB.Where("token = ?", req.Token).First(&reset).Error; err != nil {
		BadRequest(c, "Invalid or expired reset token")
		return
	}
	if !reset.IsValid() {
		BadRequest(c, "Invalid or expired reset token")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("hash password", zap.Error(err))
		InternalError(c, "Failed to reset password")
		return
	}

	if err := database.DB.Model(&models.User{}).
		Where("id = ?", reset.UserID).
		Update("password", string(hashed)).Error; err != nil {
		logger.Error("update password", zap.Error(err))
		InternalError(c, "Failed to reset password")
		return
	}
	_ = database.DB.Model(&reset).Update("used", true).Error

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
