package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/khelarena/khelarena_backend/models"
)

const gupshupBaseURL = "https://api.gupshup.io/sm/api/v1"

// GupshupService handles interactions with the Gupshup WhatsApp API
type GupshupService struct {
	baseURL  string
	apiKey   string
	sender   string
	appName  string
	template string
	client   *http.Client
}

// NewGupshupService creates a new Gupshup service instance from environment
// configuration.
func NewGupshupService() *GupshupService {
	apiKey := os.Getenv("GUPSHUP_API_KEY")
	sender := os.Getenv("GUPSHUP_SENDER")
	appName := os.Getenv("GUPSHUP_APP_NAME")
	if appName == "" {
		appName = "GupshupApp"
	}
	template := os.Getenv("GUPSHUP_TEMPLATE_NAME")
	if template == "" {
		template = "otp_verification_code"
	}

	if apiKey == "" || sender == "" {
		log.Printf("WARNING: Gupshup credentials not fully configured:")
		if apiKey == "" {
			log.Printf("  - GUPSHUP_API_KEY is missing")
		}
		if sender == "" {
			log.Printf("  - GUPSHUP_SENDER is missing")
		}
		log.Printf("OTP delivery will fail until these are set")
	}

	return &GupshupService{
		baseURL:  gupshupBaseURL,
		apiKey:   apiKey,
		sender:   sender,
		appName:  appName,
		template: template,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// withCountryCode prefixes the Indian country code Gupshup expects
func withCountryCode(phone string) string {
	if strings.HasPrefix(phone, "91") && len(phone) == 12 {
		return phone
	}
	return "91" + phone
}

// SendOTP dispatches an OTP through the Gupshup WhatsApp template API and
// returns the provider's receipt.
func (s *GupshupService) SendOTP(ctx context.Context, phone, otp string, expiryMinutes int) (*models.DispatchReceipt, error) {
	payload := url.Values{}
	payload.Set("channel", "whatsapp")
	payload.Set("source", s.sender)
	payload.Set("destination", withCountryCode(phone))
	payload.Set("src.name", s.appName)
	payload.Set("template", s.template)
	payload.Set("template.params", otp+"|"+strconv.Itoa(expiryMinutes))

	body, err := s.postForm(ctx, "/template/msg", payload)
	if err != nil {
		return nil, err
	}

	var sendResp models.GupshupSendResponse
	if err := json.Unmarshal(body, &sendResp); err != nil {
		return nil, fmt.Errorf("failed to parse Gupshup response: %w", err)
	}

	if sendResp.Status == "submitted" || sendResp.Status == "queued" || sendResp.MessageID != "" {
		return &models.DispatchReceipt{
			MessageID: sendResp.MessageID,
			Status:    sendResp.Status,
		}, nil
	}

	return nil, fmt.Errorf("unexpected Gupshup response: %s", string(body))
}

// RegisterOptIn registers a phone for WhatsApp messages. Callers treat
// failure as best-effort and must not block OTP issuance on it.
func (s *GupshupService) RegisterOptIn(ctx context.Context, phone string) (*models.GupshupOptInResponse, error) {
	payload := url.Values{}
	payload.Set("channel", "whatsapp")
	payload.Set("source", withCountryCode(phone))
	payload.Set("destination", s.sender)
	payload.Set("src.name", s.appName)
	payload.Set("context.optinType", "checkbox")
	payload.Set("context.optinSource", "mobile_app")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	body, err := s.postForm(ctx, "/app/opt/in/"+s.appName, payload)
	if err != nil {
		return nil, err
	}

	var optInResp models.GupshupOptInResponse
	if err := json.Unmarshal(body, &optInResp); err != nil {
		return nil, fmt.Errorf("failed to parse opt-in response: %w", err)
	}

	if optInResp.Status == "success" || optInResp.Status == "submitted" {
		if optInResp.Message == "" {
			optInResp.Message = "Opt-in successful"
		}
		return &optInResp, nil
	}

	return nil, fmt.Errorf("unexpected opt-in response: %s", string(body))
}

// postForm performs a form-encoded POST against the Gupshup API
func (s *GupshupService) postForm(ctx context.Context, endpoint string, payload url.Values) ([]byte, error) {
	if s.apiKey == "" || s.sender == "" {
		return nil, fmt.Errorf("missing Gupshup credentials. Please set GUPSHUP_API_KEY and GUPSHUP_SENDER environment variables")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+endpoint, strings.NewReader(payload.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apikey", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("no response from Gupshup API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &apiErr)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return nil, fmt.Errorf("invalid Gupshup API key")
		case http.StatusBadRequest:
			if apiErr.Message == "" {
				apiErr.Message = "invalid parameters"
			}
			return nil, fmt.Errorf("bad request: %s", apiErr.Message)
		case http.StatusTooManyRequests:
			return nil, fmt.Errorf("rate limit exceeded on Gupshup API")
		default:
			return nil, fmt.Errorf("Gupshup API returned status %d: %s", resp.StatusCode, string(body))
		}
	}

	return body, nil
}
