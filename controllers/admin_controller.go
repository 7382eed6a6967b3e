package controllers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/khelarena/khelarena_backend/middleware"
	"github.com/khelarena/khelarena_backend/models"
	"github.com/khelarena/khelarena_backend/repositories"
)

// AdminController handles the operations-account login
type AdminController struct {
	admins *repositories.AdminRepository
	logger *log.Logger
}

// NewAdminController creates a new admin controller
func NewAdminController(admins *repositories.AdminRepository) *AdminController {
	return &AdminController{
		admins: admins,
		logger: log.New(os.Stdout, "[ADMIN] ", log.LstdFlags),
	}
}

// Login handles POST /api/admin/login. A valid email/password pair gets
// an admin-typed token for the tournament and prize endpoints. Unknown
// email and wrong password answer identically.
func (ac *AdminController) Login(c echo.Context) error {
	var req models.AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email and password are required",
		})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	admin, err := ac.admins.FindByEmail(c.Request().Context(), email)
	if errors.Is(err, repositories.ErrNotFound) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}
	if err != nil {
		return respondError(c, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)) != nil {
		ac.logger.Printf("failed login attempt for %s", email)
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	token, err := middleware.GenerateJWT(email, "admin")
	if err != nil {
		ac.logger.Printf("token generation failed for %s: %v", email, err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"token":   token,
	})
}
