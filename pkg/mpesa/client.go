package mpesa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"time"
)

// Config carries the Daraja credentials, endpoints and static merchant
// fields. ConsumerKey, ConsumerSecret and Passkey must never be logged.
type Config struct {
	ConsumerKey      string
	ConsumerSecret   string
	Passkey          string
	ShortCode        string
	CallbackURL      string
	OAuthURL         string
	STKPushURL       string
	TransactionType  string
	AccountReference string
	TransactionDesc  string
}

// Client talks to the Daraja OAuth and STK push endpoints. A fresh access
// token and a fresh timestamp/password pair are produced for every push;
// nothing is cached between calls.
type Client struct {
	cfg       Config
	shortCode int64
	loc       *time.Location
	client    *http.Client
	now       func() time.Time
}

func New(cfg Config) (*Client, error) {
	shortCode, err := strconv.ParseInt(cfg.ShortCode, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("short code %q is not numeric", cfg.ShortCode)
	}
	// Safaricom requires the STK timestamp in East African Time regardless
	// of where the server runs.
	loc, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		return nil, fmt.Errorf("load Africa/Nairobi timezone: %w", err)
	}
	return &Client{
		cfg:       cfg,
		shortCode: shortCode,
		loc:       loc,
		client:    &http.Client{Timeout: 30 * time.Second},
		now:       time.Now,
	}, nil
}

var phonePattern = regexp.MustCompile(`^(?:2547|2541)[0-9]{8}$`)

// ValidatePhone checks for a 12-digit Safaricom number (2547XXXXXXXX or
// 2541XXXXXXXX).
func ValidatePhone(phone string) error {
	if phone == "" {
		return &Error{Kind: KindValidation, Message: "Phone number and amount are required."}
	}
	if !phonePattern.MatchString(phone) {
		return &Error{Kind: KindValidation, Message: "Invalid Kenyan Safaricom phone number format. Must be 2547/2541XXXXXXXX."}
	}
	return nil
}

// ValidateAmount checks for a positive whole amount in KES.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return &Error{Kind: KindValidation, Message: "Amount must be a positive integer."}
	}
	return nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// AccessToken fetches a short-lived bearer token from the OAuth endpoint
// using Basic auth built from the consumer key and secret. Tokens are not
// cached; every push fetches its own.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.OAuthURL, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[MPESA] access token request failed: %v", err)
		return "", fmt.Errorf("oauth request: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[MPESA] access token rejected: status=%d", resp.StatusCode)
		return "", fmt.Errorf("oauth endpoint returned %d", resp.StatusCode)
	}
	var out tokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		log.Printf("[MPESA] access token response not JSON: %v", err)
		return "", fmt.Errorf("decode oauth response: %w", err)
	}
	if out.AccessToken == "" {
		log.Printf("[MPESA] access token missing from oauth response")
		return "", fmt.Errorf("access_token missing from oauth response")
	}
	log.Printf("[MPESA] access token obtained")
	return out.AccessToken, nil
}

type stkPushPayload struct {
	BusinessShortCode int64  `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            int64  `json:"PartyA"`
	PartyB            int64  `json:"PartyB"`
	PhoneNumber       int64  `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// STKPushResponse is the provider's synchronous reply. ResponseCode "0"
// means the push was accepted for processing; the payment outcome arrives
// later on the callback URL.
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// InitiateSTKPush validates the inputs, fetches a token, derives the
// timestamp/password pair and submits the push request. Validation
// failures return before any network call is made.
func (c *Client) InitiateSTKPush(ctx context.Context, phone string, amount int64) (*STKPushResponse, error) {
	if err := ValidatePhone(phone); err != nil {
		return nil, err
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, &Error{Kind: KindAuth, Message: "Failed to connect to M-Pesa. Please try again later.", Err: err}
	}

	timestamp, password := c.credentials()
	phoneNum, _ := strconv.ParseInt(phone, 10, 64)
	payload := stkPushPayload{
		BusinessShortCode: c.shortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   c.cfg.TransactionType,
		Amount:            amount,
		PartyA:            phoneNum,
		PartyB:            c.shortCode,
		// Provider requires the customer number both as initiating party
		// and as the prompt target.
		PhoneNumber:      phoneNum,
		CallBackURL:      c.cfg.CallbackURL,
		AccountReference: c.cfg.AccountReference,
		TransactionDesc:  c.cfg.TransactionDesc,
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.STKPushURL, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: "Network or API communication error.", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	// Password is derived from the passkey, so it stays out of the logs.
	log.Printf("[MPESA] STK push shortcode=%d phone=%s amount=%d timestamp=%s", c.shortCode, phone, amount, timestamp)
	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[MPESA] STK push request failed: %v", err)
		return nil, &Error{Kind: KindTransport, Message: "Network or API communication error.", Err: err}
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	log.Printf("[MPESA] STK push response status=%d body=%s", resp.StatusCode, string(respBody))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindTransport, Message: "Network or API communication error.", Err: fmt.Errorf("stkpush endpoint returned %d", resp.StatusCode)}
	}
	var out STKPushResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &Error{Kind: KindParse, Message: "Failed to parse M-Pesa API response.", Err: err}
	}
	if out.ResponseCode != "0" {
		desc := out.ResponseDescription
		if desc == "" {
			desc = "STK Push initiation failed due to an unknown M-Pesa error."
		}
		log.Printf("[MPESA] STK push rejected: code=%s desc=%s", out.ResponseCode, desc)
		return nil, &Error{Kind: KindRejected, Message: desc}
	}
	return &out, nil
}
