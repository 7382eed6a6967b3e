package controllers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/khelarena/khelarena_backend/middleware"
	"github.com/khelarena/khelarena_backend/models"
	"github.com/khelarena/khelarena_backend/repositories"
	"github.com/khelarena/khelarena_backend/services"
	"github.com/khelarena/khelarena_backend/utils"
)

// AuthController contains the OTP and profile flow
type AuthController struct {
	DB     *mongo.Client
	otp    *services.OtpService
	users  *repositories.UserRepository
	logger *log.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(db *mongo.Client, otp *services.OtpService, users *repositories.UserRepository) *AuthController {
	return &AuthController{
		DB:     db,
		otp:    otp,
		users:  users,
		logger: log.New(os.Stdout, "[AUTH] ", log.LstdFlags),
	}
}

// SendOTP handles POST /api/auth/send-otp
func (ac *AuthController) SendOTP(c echo.Context) error {
	var req models.SendOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Phone) == "" {
		return c.JSON(http.StatusBadRequest, errorBody{
			Success: false,
			Message: "Phone number is required",
			Code:    services.CodeMissingPhone,
		})
	}

	if !req.ConsentGiven {
		return c.JSON(http.StatusBadRequest, errorBody{
			Success: false,
			Message: "User consent is required",
			Code:    services.CodeConsentRequired,
		})
	}

	result, err := ac.otp.Issue(c.Request().Context(), req.Phone)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "OTP sent successfully via WhatsApp",
		"expiresIn": result.ExpiresIn,
		"messageId": result.Receipt.MessageID,
		"status":    result.Receipt.Status,
	})
}

// VerifyOTP handles POST /api/auth/verify-otp. Success deletes the code,
// marks the user verified and issues a session token.
func (ac *AuthController) VerifyOTP(c echo.Context) error {
	var req models.VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if req.Phone == "" || req.OTP == "" {
		return c.JSON(http.StatusBadRequest, errorBody{
			Success: false,
			Message: "Phone number and OTP are required",
			Code:    services.CodeMissingPhone,
		})
	}

	phone := utils.NormalizePhone(req.Phone)
	if err := ac.otp.Verify(c.Request().Context(), phone, req.OTP); err != nil {
		return respondError(c, err)
	}

	token, err := middleware.GenerateJWT(phone, "player")
	if err != nil {
		ac.logger.Printf("token generation failed for %s: %v", phone, err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "OTP verified successfully",
		"token":   token,
		"user": map[string]interface{}{
			"phone":    phone,
			"verified": true,
		},
	})
}

// Login handles POST /api/auth/login: a phone-only login that walks the
// caller through profile completion. Under-age users are deleted on sight.
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return respondError(c, services.ErrInvalidPhone())
	}

	ctx := c.Request().Context()
	user, err := ac.users.FindByPhone(ctx, phone)
	if errors.Is(err, repositories.ErrNotFound) {
		// First-time login: create a placeholder record
		if _, err := ac.users.Create(ctx, phone); err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"newUser": true,
			"message": "Phone verified. Enter name and age.",
		})
	}
	if err != nil {
		return respondError(c, err)
	}

	if user.Name == "" || user.Age == 0 {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"newUser": true,
			"message": "Complete profile (name and age).",
		})
	}

	if user.Age < 18 {
		if err := ac.users.Delete(ctx, phone); err != nil {
			ac.logger.Printf("failed to delete under-age user %s: %v", phone, err)
		}
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "You are not old enough, kiddo. Come back at 18!",
		})
	}

	if !user.TermsAccepted {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"termsRequired": true,
			"message":       "Please accept Terms and Conditions",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"user":    user,
	})
}

// UpdateProfile handles POST /api/auth/update-profile
func (ac *AuthController) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if req.Phone == "" || req.Name == "" || req.Age == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Phone, name, and age required",
		})
	}

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return respondError(c, services.ErrInvalidPhone())
	}

	ctx := c.Request().Context()

	// Under-age records are deleted, not stored
	if req.Age < 18 {
		if err := ac.users.Delete(ctx, phone); err != nil {
			ac.logger.Printf("failed to delete under-age user %s: %v", phone, err)
		}
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "You are not old enough, kiddo. Come back at 18!",
		})
	}

	user, err := ac.users.UpdateProfile(ctx, phone, utils.SanitizeInput(req.Name), req.Age)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// RegisterFCMToken handles POST /api/auth/fcm-token. The token identity
// comes from the JWT, not the body.
func (ac *AuthController) RegisterFCMToken(c echo.Context) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "FCM token required",
		})
	}

	phone, _ := c.Get("phone").(string)
	if phone == "" {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	if err := ac.users.SetFCMToken(c.Request().Context(), phone, req.Token); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "FCM token registered",
	})
}

// AcceptTerms handles POST /api/auth/accept-terms
func (ac *AuthController) AcceptTerms(c echo.Context) error {
	var req models.AcceptTermsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if req.Phone == "" || !req.Accepted {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Must accept terms",
		})
	}

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return respondError(c, services.ErrInvalidPhone())
	}

	user, err := ac.users.AcceptTerms(c.Request().Context(), phone)
	if errors.Is(err, repositories.ErrNotFound) {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}
