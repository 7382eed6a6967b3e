package controllers

import (
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/khelarena/khelarena_backend/models"
	"github.com/khelarena/khelarena_backend/repositories"
	"github.com/khelarena/khelarena_backend/services"
	"github.com/khelarena/khelarena_backend/utils"
)

// OptInController handles explicit WhatsApp opt-in registration and the
// inbound Gupshup webhook.
type OptInController struct {
	otp    *services.OtpService
	users  *repositories.UserRepository
	logger *log.Logger
}

// NewOptInController creates a new opt-in controller
func NewOptInController(otp *services.OtpService, users *repositories.UserRepository) *OptInController {
	return &OptInController{
		otp:    otp,
		users:  users,
		logger: log.New(os.Stdout, "[OPTIN] ", log.LstdFlags),
	}
}

// Register handles POST /api/optin: explicit opt-in registration with the
// provider, independent of any OTP issuance.
func (oc *OptInController) Register(c echo.Context) error {
	var req models.OptInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if req.Phone == "" {
		return c.JSON(http.StatusBadRequest, errorBody{
			Success: false,
			Message: "Phone number is required",
			Code:    services.CodeMissingPhone,
		})
	}

	resp, err := oc.otp.RegisterOptIn(c.Request().Context(), req.Phone)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Opt-in registered",
		"status":  resp.Status,
	})
}

// Webhook handles POST /api/whatsapp/webhook. Gupshup posts inbound user
// messages here; any message from a user counts as consent, so the sender
// is marked opted-in. Always answers 200 so the provider does not retry.
func (oc *OptInController) Webhook(c echo.Context) error {
	var payload models.GupshupWebhookPayload
	if err := c.Bind(&payload); err != nil {
		oc.logger.Printf("unparseable webhook payload: %v", err)
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "ignored"})
	}

	raw := payload.Payload.Sender.Phone
	if raw == "" {
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "ignored"})
	}

	phone, err := utils.SanitizePhone(raw)
	if err != nil {
		oc.logger.Printf("webhook sender phone rejected: %q", raw)
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "ignored"})
	}

	if err := oc.users.MarkOptedIn(c.Request().Context(), phone); err != nil {
		oc.logger.Printf("failed to mark %s opted-in: %v", phone, err)
	} else {
		oc.logger.Printf("inbound message from %s, marked opted-in", phone)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok"})
}
