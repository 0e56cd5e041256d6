package angelone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tradeterm/internal/model"
)

func testCreds() model.Credentials {
	return model.Credentials{AccessToken: "jwt-abc", APIKey: "key-123"}
}

func TestPlaceOrderWirePayload(t *testing.T) {
	var got map[string]any
	var gotAuth, gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != placeOrderPath {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("X-PrivateKey")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Write([]byte(`{"status":true,"message":"SUCCESS","data":{"orderid":"240828000001"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{RootURL: srv.URL})
	resp, err := c.PlaceOrder(context.Background(), testCreds(), &model.NormalizedOrder{
		Symbol:      "SBIN-EQ",
		Token:       "3045",
		Exchange:    "NSE",
		Side:        "BUY",
		OrderType:   "LIMIT",
		ProductType: "DELIVERY",
		Variety:     "NORMAL",
		Duration:    "DAY",
		Quantity:    "10",
		Price:       "812.56",
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if !resp.Status || resp.OrderID != "240828000001" {
		t.Fatalf("resp = %+v", resp)
	}

	if gotAuth != "Bearer jwt-abc" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotKey != "key-123" {
		t.Errorf("X-PrivateKey = %q", gotKey)
	}
	for k, want := range map[string]string{
		"variety":           "NORMAL",
		"tradingsymbol":     "SBIN-EQ",
		"symboltoken":       "3045",
		"transactiontype":   "BUY",
		"exchange":          "NSE",
		"ordertype":         "LIMIT",
		"producttype":       "DELIVERY",
		"duration":          "DAY",
		"price":             "812.56",
		"squareoff":         "0",
		"stoploss":          "0",
		"quantity":          "10",
		"disclosedquantity": "0",
	} {
		if got[k] != want {
			t.Errorf("payload[%s] = %v, want %q", k, got[k], want)
		}
	}
	if _, ok := got["triggerprice"]; ok {
		t.Error("triggerprice should be omitted for non-stoploss orders")
	}
}

func TestPlaceOrderStopLossIncludesTrigger(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"status":true,"message":"SUCCESS","data":{"orderid":"240828000002"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{RootURL: srv.URL})
	_, err := c.PlaceOrder(context.Background(), testCreds(), &model.NormalizedOrder{
		Symbol:       "SBIN-EQ",
		Token:        "3045",
		Exchange:     "NSE",
		Side:         "BUY",
		OrderType:    "STOPLOSS_LIMIT",
		ProductType:  "INTRADAY",
		Variety:      "STOPLOSS",
		Duration:     "DAY",
		Quantity:     "5",
		Price:        "815.00",
		TriggerPrice: "814.50",
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if got["triggerprice"] != "814.50" {
		t.Errorf("payload[triggerprice] = %v", got["triggerprice"])
	}
}

func TestPlaceOrderBrokerRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":false,"message":"Insufficient funds","errorcode":"AB1004","data":null}`))
	}))
	defer srv.Close()

	c := NewClient(Config{RootURL: srv.URL})
	resp, err := c.PlaceOrder(context.Background(), testCreds(), &model.NormalizedOrder{
		Symbol: "SBIN-EQ", Token: "3045", Exchange: "NSE", Side: "BUY",
		OrderType: "MARKET", ProductType: "DELIVERY", Variety: "NORMAL",
		Duration: "DAY", Quantity: "10", Price: "0",
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if resp.Status {
		t.Error("expected status=false")
	}
	if resp.ErrorCode != "AB1004" || resp.Message != "Insufficient funds" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestPlaceOrderMalformedResponse(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `<html>gateway error</html>`},
		{"missing status", `{"message":"ok"}`},
		{"accepted without orderid", `{"status":true,"message":"SUCCESS","data":{}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(Config{RootURL: srv.URL})
			_, err := c.PlaceOrder(context.Background(), testCreds(), &model.NormalizedOrder{
				Symbol: "SBIN-EQ", Token: "3045", Exchange: "NSE", Side: "BUY",
				OrderType: "MARKET", ProductType: "DELIVERY", Variety: "NORMAL",
				Duration: "DAY", Quantity: "10", Price: "0",
			})
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestQuoteLTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Mode           string              `json:"mode"`
			ExchangeTokens map[string][]string `json:"exchangeTokens"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Mode != "LTP" {
			t.Errorf("mode = %q", body.Mode)
		}
		if toks := body.ExchangeTokens["NSE"]; len(toks) != 1 || toks[0] != "3045" {
			t.Errorf("exchangeTokens = %v", body.ExchangeTokens)
		}
		w.Write([]byte(`{"status":true,"message":"SUCCESS","data":{"fetched":[{"exchange":"NSE","symbolToken":"3045","ltp":812.55}]}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{RootURL: srv.URL})
	ltp, err := c.QuoteLTP(context.Background(), testCreds(), "NSE", "3045")
	if err != nil {
		t.Fatalf("QuoteLTP: %v", err)
	}
	if ltp != "812.55" {
		t.Errorf("ltp = %q", ltp)
	}
}

func TestQuoteLTPEmptyFetched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":true,"data":{"fetched":[]}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{RootURL: srv.URL})
	if _, err := c.QuoteLTP(context.Background(), testCreds(), "NSE", "3045"); err == nil {
		t.Fatal("expected error for empty fetched list")
	}
}

func TestGenerateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != loginPath {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("X-PrivateKey"); got != "key-123" {
			t.Errorf("X-PrivateKey = %q", got)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["clientcode"] != "A123" || body["totp"] != "123456" {
			t.Errorf("body = %v", body)
		}
		w.Write([]byte(`{"status":true,"data":{"jwtToken":"jwt-new","refreshToken":"r","feedToken":"f"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{RootURL: srv.URL})
	creds, err := c.GenerateSession(context.Background(), "key-123", "A123", "pin", "123456")
	if err != nil {
		t.Fatalf("GenerateSession: %v", err)
	}
	if creds.AccessToken != "jwt-new" || creds.APIKey != "key-123" {
		t.Errorf("creds = %+v", creds)
	}
}
