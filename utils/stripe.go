package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"

	"devcourses/config"
)

// PlatformFeeRate is the fixed percentage of a paid course's price retained
// by the platform on every checkout.
const PlatformFeeRate = 0.30

// GrossMinorUnits converts a price to the smallest currency unit (cents).
func GrossMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// PlatformFeeMinorUnits computes the platform cut in cents. The fee is
// rounded independently of the gross amount, not derived by subtracting
// rounded values from each other.
func PlatformFeeMinorUnits(price float64) int64 {
	return int64(math.Round(price * PlatformFeeRate * 100))
}

// StripeClient talks to the Stripe REST API. Constructed once at startup and
// passed to the controllers that need it.
type StripeClient struct {
	http        *resty.Client
	successURL  string
	cancelURL   string
	redirectURL string
}

// StripeAccount is the subset of a connected account we read back.
type StripeAccount struct {
	ID             string `json:"id"`
	ChargesEnabled bool   `json:"charges_enabled"`
}

// CheckoutSession is the subset of a hosted checkout session we read back.
type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"` // "paid" once captured
}

// StripeBalance mirrors the balance endpoint response.
type StripeBalance struct {
	Available []StripeBalanceAmount `json:"available"`
	Pending   []StripeBalanceAmount `json:"pending"`
}

type StripeBalanceAmount struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewStripeClient(cfg *config.Config) *StripeClient {
	client := resty.New().
		SetBaseURL(cfg.StripeApiURL).
		SetBasicAuth(cfg.StripeSecretKey, "").
		SetHeader("Content-Type", "application/x-www-form-urlencoded")

	return &StripeClient{
		http:        client,
		successURL:  cfg.StripeSuccessURL,
		cancelURL:   cfg.StripeCancelURL,
		redirectURL: cfg.StripeRedirectURL,
	}
}

// CreateAccount creates a standard connected account and returns its id.
func (s *StripeClient) CreateAccount() (string, error) {
	resp, err := s.http.R().
		SetFormData(map[string]string{"type": "standard"}).
		Post("/v1/accounts")
	if err != nil {
		return "", fmt.Errorf("stripe account create: %w", err)
	}
	if resp.IsError() {
		return "", apiError("stripe account create", resp)
	}

	var account StripeAccount
	if err := json.Unmarshal(resp.Body(), &account); err != nil {
		return "", fmt.Errorf("stripe account create: invalid response: %w", err)
	}
	return account.ID, nil
}

// CreateAccountLink creates an onboarding link for the connected account and
// returns its URL with the user's email prefilled, mirroring the hosted
// onboarding redirect the frontend expects.
func (s *StripeClient) CreateAccountLink(accountID, email string) (string, error) {
	resp, err := s.http.R().
		SetFormData(map[string]string{
			"account":     accountID,
			"refresh_url": s.redirectURL,
			"return_url":  s.redirectURL,
			"type":        "account_onboarding",
		}).
		Post("/v1/account_links")
	if err != nil {
		return "", fmt.Errorf("stripe account link: %w", err)
	}
	if resp.IsError() {
		return "", apiError("stripe account link", resp)
	}

	var link struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(resp.Body(), &link); err != nil {
		return "", fmt.Errorf("stripe account link: invalid response: %w", err)
	}

	return link.URL + "?" + url.Values{"stripe_user[email]": {email}}.Encode(), nil
}

// GetAccount retrieves a connected account.
func (s *StripeClient) GetAccount(accountID string) (*StripeAccount, error) {
	resp, err := s.http.R().Get("/v1/accounts/" + accountID)
	if err != nil {
		return nil, fmt.Errorf("stripe account fetch: %w", err)
	}
	if resp.IsError() {
		return nil, apiError("stripe account fetch", resp)
	}

	var account StripeAccount
	if err := json.Unmarshal(resp.Body(), &account); err != nil {
		return nil, fmt.Errorf("stripe account fetch: invalid response: %w", err)
	}
	return &account, nil
}

// GetBalance retrieves the balance of a connected account.
func (s *StripeClient) GetBalance(accountID string) (*StripeBalance, error) {
	resp, err := s.http.R().
		SetHeader("Stripe-Account", accountID).
		Get("/v1/balance")
	if err != nil {
		return nil, fmt.Errorf("stripe balance fetch: %w", err)
	}
	if resp.IsError() {
		return nil, apiError("stripe balance fetch", resp)
	}

	var balance StripeBalance
	if err := json.Unmarshal(resp.Body(), &balance); err != nil {
		return nil, fmt.Errorf("stripe balance fetch: invalid response: %w", err)
	}
	return &balance, nil
}

// CreateCheckoutSession creates a hosted checkout session charging amount
// cents for the course, routing the payment to the instructor's connected
// account minus the platform fee. Returns the opaque session id the frontend
// redirects with.
func (s *StripeClient) CreateCheckoutSession(courseID uint, courseName string, amount, fee int64, destination string) (string, error) {
	resp, err := s.http.R().
		SetFormData(map[string]string{
			"payment_method_types[0]":                  "card",
			"line_items[0][price_data][currency]":      "usd",
			"line_items[0][price_data][unit_amount]":   strconv.FormatInt(amount, 10),
			"line_items[0][price_data][product_data][name]": courseName,
			"line_items[0][quantity]":                  "1",
			"mode":                                     "payment",
			"payment_intent_data[application_fee_amount]":   strconv.FormatInt(fee, 10),
			"payment_intent_data[transfer_data][destination]": destination,
			"success_url": fmt.Sprintf("%s/%d", s.successURL, courseID),
			"cancel_url":  s.cancelURL,
		}).
		Post("/v1/checkout/sessions")
	if err != nil {
		return "", fmt.Errorf("stripe checkout create: %w", err)
	}
	if resp.IsError() {
		return "", apiError("stripe checkout create", resp)
	}

	var session CheckoutSession
	if err := json.Unmarshal(resp.Body(), &session); err != nil {
		return "", fmt.Errorf("stripe checkout create: invalid response: %w", err)
	}
	return session.ID, nil
}

// GetCheckoutSession retrieves the current status of a hosted checkout
// session by its id.
func (s *StripeClient) GetCheckoutSession(sessionID string) (*CheckoutSession, error) {
	resp, err := s.http.R().Get("/v1/checkout/sessions/" + sessionID)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout fetch: %w", err)
	}
	if resp.IsError() {
		return nil, apiError("stripe checkout fetch", resp)
	}

	var session CheckoutSession
	if err := json.Unmarshal(resp.Body(), &session); err != nil {
		return nil, fmt.Errorf("stripe checkout fetch: invalid response: %w", err)
	}
	return &session, nil
}

func apiError(op string, resp *resty.Response) error {
	var se stripeError
	if err := json.Unmarshal(resp.Body(), &se); err == nil && se.Error.Message != "" {
		return fmt.Errorf("%s: %s", op, se.Error.Message)
	}
	return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode(), resp.String())
}
