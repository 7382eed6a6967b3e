package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/khelarena/khelarena_backend/models"
	"github.com/khelarena/khelarena_backend/services"
)

// errorBody is the failure envelope: a stable code plus a readable
// message, with attemptsLeft for wrong-OTP responses.
type errorBody struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Code         string `json:"code"`
	AttemptsLeft *int   `json:"attemptsLeft,omitempty"`
}

// respondError maps a service error to its HTTP response. AppErrors keep
// their stable code and status; anything else is a 500 without internals.
func respondError(c echo.Context, err error) error {
	var appErr *services.AppError
	if errors.As(err, &appErr) {
		return c.JSON(appErr.Status, errorBody{
			Success:      false,
			Message:      appErr.Message,
			Code:         appErr.Code,
			AttemptsLeft: appErr.AttemptsLeft,
		})
	}

	c.Logger().Errorf("internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, models.Response{
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
	})
}
