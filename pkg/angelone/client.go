// Package angelone is a typed client for the Angel One SmartAPI endpoints
// the terminal needs: order placement, LTP quotes, and session login.
//
// Credentials travel with each call rather than living on the client, so
// one client instance serves every user of the terminal.
package angelone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tradeterm/internal/model"
)

const (
	defaultRootURL = "https://apiconnect.angelone.in"
	defaultTimeout = 7 * time.Second

	placeOrderPath = "/rest/secure/angelbroking/order/v1/placeOrder"
	quotePath      = "/rest/secure/angelbroking/market/v1/quote/"
	loginPath      = "/rest/auth/angelbroking/user/v1/loginByPassword"
)

// Config configures the client.
type Config struct {
	RootURL string        // default: https://apiconnect.angelone.in
	Timeout time.Duration // default: 7s

	// Client identification headers required by the API.
	ClientLocalIP  string
	ClientPublicIP string
	MACAddress     string
}

// Client is a stateless SmartAPI HTTP client.
type Client struct {
	rootURL    string
	httpClient *http.Client

	clientLocalIP  string
	clientPublicIP string
	macAddress     string
}

// NewClient creates a client with sane defaults.
func NewClient(cfg Config) *Client {
	if cfg.RootURL == "" {
		cfg.RootURL = defaultRootURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.ClientLocalIP == "" {
		cfg.ClientLocalIP = "127.0.0.1"
	}
	if cfg.ClientPublicIP == "" {
		cfg.ClientPublicIP = "127.0.0.1"
	}
	if cfg.MACAddress == "" {
		cfg.MACAddress = "00:00:00:00:00:00"
	}
	return &Client{
		rootURL:        strings.TrimRight(cfg.RootURL, "/"),
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		clientLocalIP:  cfg.ClientLocalIP,
		clientPublicIP: cfg.ClientPublicIP,
		macAddress:     cfg.MACAddress,
	}
}

// placeOrderPayload is the exact wire shape the placeOrder endpoint
// requires. triggerprice is present only for STOPLOSS variety.
type placeOrderPayload struct {
	Variety           string `json:"variety"`
	TradingSymbol     string `json:"tradingsymbol"`
	SymbolToken       string `json:"symboltoken"`
	TransactionType   string `json:"transactiontype"`
	Exchange          string `json:"exchange"`
	OrderType         string `json:"ordertype"`
	ProductType       string `json:"producttype"`
	Duration          string `json:"duration"`
	Price             string `json:"price"`
	SquareOff         string `json:"squareoff"`
	StopLoss          string `json:"stoploss"`
	Quantity          string `json:"quantity"`
	DisclosedQuantity string `json:"disclosedquantity"`
	TriggerPrice      string `json:"triggerprice,omitempty"`
}

// apiEnvelope is the common SmartAPI response wrapper.
type apiEnvelope struct {
	Status    *bool           `json:"status"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"errorcode"`
	Data      json.RawMessage `json:"data"`
}

// PlaceOrder submits one order. Exactly one attempt: a failed or
// timed-out call is reported as an error and never retried here, because
// the broker may already have received the order.
func (c *Client) PlaceOrder(ctx context.Context, creds model.Credentials, o *model.NormalizedOrder) (*model.BrokerResponse, error) {
	payload := placeOrderPayload{
		Variety:           o.Variety,
		TradingSymbol:     o.Symbol,
		SymbolToken:       o.Token,
		TransactionType:   o.Side,
		Exchange:          o.Exchange,
		OrderType:         o.OrderType,
		ProductType:       o.ProductType,
		Duration:          o.Duration,
		Price:             zeroIfEmpty(o.Price),
		SquareOff:         "0",
		StopLoss:          "0",
		Quantity:          o.Quantity,
		DisclosedQuantity: zeroIfEmpty(o.DisclosedQuantity),
	}
	if o.Variety == model.VarietyStopLoss {
		payload.TriggerPrice = zeroIfEmpty(o.TriggerPrice)
	}

	env, err := c.post(ctx, placeOrderPath, creds, payload)
	if err != nil {
		return nil, err
	}
	if env.Status == nil {
		return nil, fmt.Errorf("broker response missing status field")
	}

	resp := &model.BrokerResponse{
		Status:    *env.Status,
		Message:   env.Message,
		ErrorCode: env.ErrorCode,
	}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		var data struct {
			OrderID string `json:"orderid"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("broker response data: %w", err)
		}
		resp.OrderID = data.OrderID
	}
	if resp.Status && resp.OrderID == "" {
		return nil, fmt.Errorf("broker accepted order but returned no order id")
	}
	return resp, nil
}

// QuoteLTP fetches the last traded price for one instrument via the quote
// endpoint. Returns the price as a decimal string.
func (c *Client) QuoteLTP(ctx context.Context, creds model.Credentials, exchange, token string) (string, error) {
	payload := map[string]any{
		"mode":           "LTP",
		"exchangeTokens": map[string][]string{exchange: {token}},
	}

	env, err := c.post(ctx, quotePath, creds, payload)
	if err != nil {
		return "", err
	}
	if env.Status == nil || !*env.Status {
		return "", fmt.Errorf("quote request failed: %s", env.Message)
	}

	var data struct {
		Fetched []struct {
			LTP json.Number `json:"ltp"`
		} `json:"fetched"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", fmt.Errorf("quote response data: %w", err)
	}
	if len(data.Fetched) == 0 {
		return "", fmt.Errorf("no quote for %s:%s", exchange, token)
	}
	return data.Fetched[0].LTP.String(), nil
}

// GenerateSession logs in with password + TOTP and returns session
// credentials. Used by the startup bootstrap, not by the per-request
// pipeline.
func (c *Client) GenerateSession(ctx context.Context, apiKey, clientCode, password, totp string) (model.Credentials, error) {
	payload := map[string]string{
		"clientcode": clientCode,
		"password":   password,
		"totp":       totp,
	}

	env, err := c.post(ctx, loginPath, model.Credentials{APIKey: apiKey}, payload)
	if err != nil {
		return model.Credentials{}, err
	}
	if env.Status == nil || !*env.Status {
		return model.Credentials{}, fmt.Errorf("login failed: %s", env.Message)
	}

	var data struct {
		JWTToken string `json:"jwtToken"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return model.Credentials{}, fmt.Errorf("login response data: %w", err)
	}
	if data.JWTToken == "" {
		return model.Credentials{}, fmt.Errorf("login response missing jwtToken")
	}
	return model.Credentials{AccessToken: data.JWTToken, APIKey: apiKey}, nil
}

func (c *Client) post(ctx context.Context, path string, creds model.Credentials, payload any) (*apiEnvelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rootURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, creds)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("broker request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("broker read response: %w", err)
	}

	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("broker response is not valid JSON (HTTP %d)", resp.StatusCode)
	}
	return &env, nil
}

func (c *Client) setHeaders(req *http.Request, creds model.Credentials) {
	h := req.Header
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("X-UserType", "USER")
	h.Set("X-SourceID", "WEB")
	h.Set("X-ClientLocalIP", c.clientLocalIP)
	h.Set("X-ClientPublicIP", c.clientPublicIP)
	h.Set("X-MACAddress", c.macAddress)
	h.Set("X-PrivateKey", creds.APIKey)
	if creds.AccessToken != "" {
		h.Set("Authorization", "Bearer "+creds.AccessToken)
	}
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
