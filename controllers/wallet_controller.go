package controllers

import (
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/khelarena/khelarena_backend/models"
	"github.com/khelarena/khelarena_backend/services"
	"github.com/khelarena/khelarena_backend/utils"
)

// WalletController exposes wallet balance and top-up endpoints
type WalletController struct {
	wallets  *services.WalletService
	razorpay *services.RazorpayService
	logger   *log.Logger
}

// NewWalletController creates a new wallet controller
func NewWalletController(wallets *services.WalletService, razorpay *services.RazorpayService) *WalletController {
	return &WalletController{
		wallets:  wallets,
		razorpay: razorpay,
		logger:   log.New(os.Stdout, "[WALLET] ", log.LstdFlags),
	}
}

// CreateOrder handles POST /api/wallet/create-order. It creates a Razorpay
// order for the requested top-up amount; no balance changes until the
// payment callback hits AddMoney.
func (wc *WalletController) CreateOrder(c echo.Context) error {
	var req models.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Amount must be a positive number",
		})
	}

	order, err := wc.razorpay.CreateOrder(c.Request().Context(), req.Amount)
	if err != nil {
		wc.logger.Printf("order creation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create payment order",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"order":   order,
	})
}

// AddMoney handles POST /api/wallet/add, crediting the caller's
// wallet after a completed payment.
func (wc *WalletController) AddMoney(c echo.Context) error {
	var req models.AddMoneyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	phone := req.Phone
	if phone == "" {
		phone, _ = c.Get("phone").(string)
	}
	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Amount must be a positive number",
		})
	}

	balance, err := wc.wallets.Credit(c.Request().Context(), phone, req.Amount)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Money added to wallet",
		"balance": balance,
	})
}

// GetBalance handles GET /api/wallet/balance/:phone. An absent wallet
// reads as zero rather than 404.
func (wc *WalletController) GetBalance(c echo.Context) error {
	phone := c.Param("phone")
	if phone == "" {
		phone, _ = c.Get("phone").(string)
	}
	if _, err := utils.SanitizePhone(phone); err != nil {
		return respondError(c, services.ErrInvalidPhone())
	}

	balance, err := wc.wallets.Balance(c.Request().Context(), phone)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"phone":   utils.NormalizePhone(phone),
		"balance": balance,
	})
}

// AddPrize handles POST /api/wallet/add-prize (admin only). Prize money
// goes to existing wallets only; a winner with no wallet is a 404.
func (wc *WalletController) AddPrize(c echo.Context) error {
	var req models.AddPrizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if req.Phone == "" || req.Prize <= 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Phone and a positive prize amount required",
		})
	}

	balance, err := wc.wallets.AddPrize(c.Request().Context(), req.Phone, req.Prize)
	if err != nil {
		return respondError(c, err)
	}

	wc.logger.Printf("prize of %d credited to %s", req.Prize, utils.NormalizePhone(req.Phone))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Prize credited",
		"balance": balance,
	})
}
