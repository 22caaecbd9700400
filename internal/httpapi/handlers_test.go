package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ihale.org/internal/admin"
	"ihale.org/internal/auction"
	"ihale.org/internal/auth"
	"ihale.org/internal/ids"
	"ihale.org/internal/ticket"
	"ihale.org/internal/user"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
	users   *user.Memory
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	users := user.NewMemory()
	auctions := auction.NewInMemory(users)
	tickets := ticket.NewInMemory(users)

	codec, err := auth.NewTokenCodec("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	authSvc := auth.NewService(users, codec)
	adminSvc := admin.NewService(users, auctions, tickets)

	api := New(ReadyProbe{}, "test", authSvc, users, auctions, tickets, adminSvc)
	api.rateBurst = 1000
	api.ratePerSec = 1000

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
		users:   users,
	}
}

func (c *apiClient) do(method, path string, body any, token string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) register(name, email, password, userType string) {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/api/auth/register", map[string]any{
		"name":     name,
		"email":    email,
		"password": password,
		"userType": userType,
	}, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("register %s: unexpected status %d", email, resp.StatusCode)
	}
}

func (c *apiClient) login(email, password, loginType string) string {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email":     email,
		"password":  password,
		"loginType": loginType,
	}, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("login %s: unexpected status %d", email, resp.StatusCode)
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.t.Fatalf("decode login response: %v", err)
	}
	if payload.Token == "" {
		c.t.Fatal("empty token issued")
	}
	return payload.Token
}

// seedAdmin plants an admin account directly in the store; registration never
// grants the flag.
func (c *apiClient) seedAdmin(email, password string) {
	c.t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		c.t.Fatalf("hash password: %v", err)
	}
	err = c.users.Create(context.Background(), &user.User{
		ID:           ids.New(),
		Name:         "Admin",
		Email:        email,
		PasswordHash: hash,
		UserType:     user.TypeAdmin,
		IsAdmin:      true,
		IsActive:     true,
	})
	if err != nil {
		c.t.Fatalf("seed admin: %v", err)
	}
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func sampleVehicle() map[string]any {
	return map[string]any{
		"brand":         "BMW",
		"model":         "320i",
		"year":          2020,
		"mileage":       45000,
		"fuelType":      "gasoline",
		"transmission":  "automatic",
		"startingPrice": 450000,
		"endDate":       time.Now().UTC().Add(72 * time.Hour).Format(time.RFC3339),
	}
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	api := newTestAPI(t)
	api.register("Alice", "alice@example.com", "hunter22", "individual")
	token := api.login("alice@example.com", "hunter22", "individual")

	resp := api.do(http.MethodGet, "/api/auth/user", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	profile := payload["user"].(map[string]any)
	if profile["email"] != "alice@example.com" {
		t.Fatalf("unexpected profile email: %v", profile["email"])
	}
	if _, leaked := profile["passwordHash"]; leaked {
		t.Fatal("password hash leaked in profile")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	api := newTestAPI(t)
	api.register("Alice", "alice@example.com", "hunter22", "individual")

	resp := api.do(http.MethodPost, "/api/auth/register", map[string]any{
		"name":     "Clone",
		"email":    "alice@example.com",
		"password": "pw",
		"userType": "corporate",
	}, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLoginWrongPortal(t *testing.T) {
	api := newTestAPI(t)
	api.register("Alice", "alice@example.com", "hunter22", "individual")

	resp := api.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email":     "alice@example.com",
		"password":  "hunter22",
		"loginType": "corporate",
	}, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email":     "ghost@example.com",
		"password":  "pw",
		"loginType": "individual",
	}, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestMalformedBodyRejected(t *testing.T) {
	api := newTestAPI(t)
	api.register("Alice", "alice@example.com", "hunter22", "individual")
	token := api.login("alice@example.com", "hunter22", "individual")

	cases := []struct {
		name  string
		path  string
		body  string
		token string
	}{
		{"broken json", "/api/auth/register", "{not json", ""},
		{"empty body", "/api/auth/login", "", ""},
		{"trailing data", "/api/rights/purchase", `{"amount":3}{"amount":4}`, token},
		{"unknown field", "/api/tickets/use", `{"vehicleId":"v1","extra":true}`, token},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, api.baseURL+tc.path, strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("new request: %v", err)
			}
			req.Header.Set("Content-Type", "application/json")
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			resp, err := api.client.Do(req)
			if err != nil {
				t.Fatalf("do request: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("%s: expected 400, got %d", tc.path, resp.StatusCode)
			}
			var body map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if _, ok := body["message"]; !ok {
				t.Fatal("error body missing message field")
			}
		})
	}
}

func TestVehicleCRUDRequiresSellerRole(t *testing.T) {
	api := newTestAPI(t)
	api.register("Alice", "alice@example.com", "pw", "individual")
	api.register("Corp", "corp@example.com", "pw", "corporate")
	individual := api.login("alice@example.com", "pw", "individual")
	corporate := api.login("corp@example.com", "pw", "corporate")

	// Anonymous create is rejected before the role check.
	resp := api.do(http.MethodPost, "/api/vehicles", sampleVehicle(), "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp = api.do(http.MethodPost, "/api/vehicles", sampleVehicle(), individual)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	resp = api.do(http.MethodPost, "/api/vehicles", sampleVehicle(), corporate)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	created := decode[map[string]any](t, resp)
	id := created["id"].(string)
	if created["status"] != "active" {
		t.Fatalf("expected active status, got %v", created["status"])
	}

	// The active listing is publicly readable.
	resp = api.do(http.MethodGet, "/api/vehicles", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	listed := decode[[]map[string]any](t, resp)
	if len(listed) != 1 {
		t.Fatalf("expected one listing, got %d", len(listed))
	}

	resp = api.do(http.MethodPut, "/api/vehicles/"+id, map[string]any{"mileage": 46000}, corporate)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	updated := decode[map[string]any](t, resp)
	if updated["mileage"].(float64) != 46000 {
		t.Fatalf("update not applied: %v", updated["mileage"])
	}

	resp = api.do(http.MethodDelete, "/api/vehicles/"+id, nil, corporate)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = api.do(http.MethodGet, "/api/vehicles/"+id, nil, corporate)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestBidAndSettleFlow(t *testing.T) {
	api := newTestAPI(t)
	api.register("Corp", "corp@example.com", "pw", "corporate")
	api.register("Alice", "alice@example.com", "pw", "individual")
	api.register("Bob", "bob@example.com", "pw", "individual")
	corporate := api.login("corp@example.com", "pw", "corporate")
	alice := api.login("alice@example.com", "pw", "individual")
	bob := api.login("bob@example.com", "pw", "individual")

	resp := api.do(http.MethodPost, "/api/vehicles", sampleVehicle(), corporate)
	created := decode[map[string]any](t, resp)
	id := created["id"].(string)

	resp = api.do(http.MethodPost, "/api/bids/"+id, map[string]any{"amount": 500000}, alice)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()
	resp = api.do(http.MethodPost, "/api/bids/"+id, map[string]any{"amount": 600000}, bob)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = api.do(http.MethodGet, "/api/bids/vehicle/"+id, nil, alice)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	bids := decode[[]map[string]any](t, resp)
	if len(bids) != 2 {
		t.Fatalf("expected two bids, got %d", len(bids))
	}
	if bids[0]["amount"].(float64) != 600000 {
		t.Fatalf("bids not sorted by amount: %v", bids[0]["amount"])
	}
	if bids[0]["bidderName"] != "Bob" {
		t.Fatalf("missing bidder enrichment: %v", bids[0]["bidderName"])
	}

	resp = api.do(http.MethodPost, "/api/vehicles/end-auction/"+id, nil, corporate)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	settled := decode[map[string]any](t, resp)
	winner := settled["winner"].(map[string]any)
	if winner["name"] != "Bob" || winner["amount"].(float64) != 600000 {
		t.Fatalf("unexpected winner: %v", winner)
	}
}

func TestEndAuctionWithoutBids(t *testing.T) {
	api := newTestAPI(t)
	api.register("Corp", "corp@example.com", "pw", "corporate")
	corporate := api.login("corp@example.com", "pw", "corporate")

	resp := api.do(http.MethodPost, "/api/vehicles", sampleVehicle(), corporate)
	created := decode[map[string]any](t, resp)
	id := created["id"].(string)

	resp = api.do(http.MethodPost, "/api/vehicles/end-auction/"+id, nil, corporate)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	resp = api.do(http.MethodGet, "/api/vehicles/"+id, nil, corporate)
	vehicle := decode[map[string]any](t, resp)
	if vehicle["status"] != "cancelled" {
		t.Fatalf("expected cancelled listing, got %v", vehicle["status"])
	}
}

func TestTicketLifecycle(t *testing.T) {
	api := newTestAPI(t)
	api.register("Alice", "alice@example.com", "pw", "individual")
	token := api.login("alice@example.com", "pw", "individual")

	resp := api.do(http.MethodPost, "/api/tickets/purchase", nil, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	bought := decode[map[string]any](t, resp)
	tk := bought["ticket"].(map[string]any)
	if tk["price"].(float64) != 2500 {
		t.Fatalf("unexpected ticket price: %v", tk["price"])
	}
	ticketID := tk["id"].(string)

	// The alternate purchase route answers 200.
	resp = api.do(http.MethodPost, "/api/tickets", nil, token)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = api.do(http.MethodGet, "/api/tickets/my-tickets", nil, token)
	mine := decode[[]map[string]any](t, resp)
	if len(mine) != 2 {
		t.Fatalf("expected two tickets, got %d", len(mine))
	}

	resp = api.do(http.MethodDelete, "/api/tickets/refund/"+ticketID, nil, token)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp = api.do(http.MethodDelete, "/api/tickets/refund/"+ticketID, nil, token)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on second refund, got %d", resp.StatusCode)
	}

	resp = api.do(http.MethodPost, "/api/tickets/use", map[string]any{"vehicleId": "v1"}, token)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	// No active tickets remain.
	resp = api.do(http.MethodPost, "/api/tickets/use", map[string]any{"vehicleId": "v1"}, token)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	resp = api.do(http.MethodDelete, "/api/tickets/cleanup", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	cleaned := decode[map[string]any](t, resp)
	if cleaned["deletedCount"].(float64) != 0 {
		t.Fatalf("unexpected deleted count: %v", cleaned["deletedCount"])
	}
}

func TestPurchaseParticipationRights(t *testing.T) {
	api := newTestAPI(t)
	api.register("Alice", "alice@example.com", "pw", "individual")
	token := api.login("alice@example.com", "pw", "individual")

	resp := api.do(http.MethodPost, "/api/rights/purchase", map[string]any{"amount": 3}, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	if payload["newRights"].(float64) != 3 {
		t.Fatalf("unexpected rights balance: %v", payload["newRights"])
	}

	resp = api.do(http.MethodPost, "/api/rights/purchase", map[string]any{"amount": 0}, token)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAdminEndpointsRequireAdminFlag(t *testing.T) {
	api := newTestAPI(t)
	api.register("Alice", "alice@example.com", "pw", "individual")
	token := api.login("alice@example.com", "pw", "individual")

	for _, path := range []string{
		"/api/admin/dashboard-stats",
		"/api/admin/stats",
		"/api/admin/users",
		"/api/admin/vehicles",
		"/api/admin/auctions",
		"/api/admin/tickets",
		"/api/admin/reports",
	} {
		resp := api.do(http.MethodGet, path, nil, token)
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", path, resp.StatusCode)
		}
	}
}

func TestAdminDashboardAndUserManagement(t *testing.T) {
	api := newTestAPI(t)
	api.seedAdmin("admin@ihale.com", "adminpw")
	api.register("Alice", "alice@example.com", "pw", "individual")
	adminToken := api.login("admin@ihale.com", "adminpw", "admin")

	resp := api.do(http.MethodGet, "/api/admin/dashboard-stats", nil, adminToken)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	stats := decode[map[string]any](t, resp)
	if stats["totalUsers"].(float64) != 2 {
		t.Fatalf("unexpected user count: %v", stats["totalUsers"])
	}

	resp = api.do(http.MethodGet, "/api/admin/users", nil, adminToken)
	users := decode[[]map[string]any](t, resp)
	if len(users) != 2 {
		t.Fatalf("expected two users, got %d", len(users))
	}

	var aliceID string
	for _, u := range users {
		if u["email"] == "alice@example.com" {
			aliceID = u["id"].(string)
		}
	}
	if aliceID == "" {
		t.Fatal("alice not in admin listing")
	}

	resp = api.do(http.MethodPut, "/api/admin/users/"+aliceID, map[string]any{"isActive": false}, adminToken)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	toggled := decode[map[string]any](t, resp)
	if toggled["user"].(map[string]any)["isActive"] != false {
		t.Fatal("active flag was not toggled")
	}

	resp = api.do(http.MethodDelete, "/api/admin/users/"+aliceID, nil, adminToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp = api.do(http.MethodDelete, "/api/admin/users/"+aliceID, nil, adminToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp := api.do(http.MethodGet, path, nil, "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}
