package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fkhayef/splitledger/internal/config"
	"github.com/fkhayef/splitledger/internal/database/databasetest"
	"github.com/fkhayef/splitledger/pkg/logger"
	mw "github.com/fkhayef/splitledger/pkg/middleware"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type client struct {
	t      *testing.T
	server *httptest.Server
}

func (c *client) do(method, path, actor, body string) (int, envelope) {
	c.t.Helper()
	req, err := http.NewRequest(method, c.server.URL+path, strings.NewReader(body))
	if err != nil {
		c.t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set(mw.DevUserHeader, actor)
	}

	resp, err := c.server.Client().Do(req)
	if err != nil {
		c.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			c.t.Fatalf("failed to decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode, env
}

func (c *client) id(env envelope) string {
	c.t.Helper()
	var v struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &v); err != nil || v.ID == "" {
		c.t.Fatalf("response has no id: %s", env.Data)
	}
	return v.ID
}

func newClient(t *testing.T, auth config.AuthConfig) *client {
	t.Helper()
	server := httptest.NewServer(NewRouter(databasetest.New(t), auth, logger.Discard()))
	t.Cleanup(server.Close)
	return &client{t: t, server: server}
}

func TestRouterLedgerFlow(t *testing.T) {
	c := newClient(t, config.AuthConfig{JWTSecret: "test-secret", DevHeader: true})

	users := map[string]string{}
	for _, name := range []string{"ana", "ben", "cat"} {
		status, env := c.do(http.MethodPost, "/api/v1/users", "", fmt.Sprintf(`{"username":%q,"email":"%s@example.com"}`, name, name))
		if status != http.StatusCreated {
			t.Fatalf("create user %s = %d", name, status)
		}
		users[name] = c.id(env)
	}
	ana, ben, cat := users["ana"], users["ben"], users["cat"]

	status, env := c.do(http.MethodPost, "/api/v1/groups", ana, fmt.Sprintf(`{"name":"Flat","member_ids":[%q,%q]}`, ben, cat))
	if status != http.StatusCreated {
		t.Fatalf("create group = %d", status)
	}
	groupID := c.id(env)

	expense := func(actor, payer, amount string) string {
		body := fmt.Sprintf(`{"description":"Bills","amount":%s,"paid_by":%q,"group_id":%q,"split_type":"equal","split_with":[{"user_id":%q},{"user_id":%q},{"user_id":%q}]}`,
			amount, payer, groupID, ana, ben, cat)
		status, env := c.do(http.MethodPost, "/api/v1/expenses", actor, body)
		if status != http.StatusCreated {
			t.Fatalf("create expense = %d %+v", status, env.Error)
		}
		return c.id(env)
	}
	first := expense(ana, ana, "120")
	expense(ana, ben, "90")

	var balances struct {
		Balances map[string]float64 `json:"balances"`
	}
	status, env = c.do(http.MethodGet, "/api/v1/groups/"+groupID+"/balances", cat, "")
	if status != http.StatusOK {
		t.Fatalf("group balances = %d", status)
	}
	if err := json.Unmarshal(env.Data, &balances); err != nil {
		t.Fatalf("failed to decode balances: %v", err)
	}
	for id, want := range map[string]float64{ana: 50, ben: 20, cat: -70} {
		if balances.Balances[id] != want {
			t.Errorf("balance[%s] = %v, want %v", id, balances.Balances[id], want)
		}
	}

	if status, _ := c.do(http.MethodPost, "/api/v1/expenses/"+first+"/settle", cat, ""); status != http.StatusOK {
		t.Errorf("settle = %d", status)
	}
	if status, env := c.do(http.MethodPost, "/api/v1/expenses/"+first+"/settle", cat, ""); status != http.StatusBadRequest || env.Error.Code != "ALREADY_SETTLED" {
		t.Errorf("repeat settle = %d", status)
	}

	var pair struct {
		Amount float64 `json:"amount"`
	}
	status, env = c.do(http.MethodGet, "/api/v1/balances/"+ben, cat, "")
	if status != http.StatusOK {
		t.Fatalf("pairwise balance = %d", status)
	}
	if err := json.Unmarshal(env.Data, &pair); err != nil {
		t.Fatalf("failed to decode balance: %v", err)
	}
	if pair.Amount != -30 {
		t.Errorf("cat vs ben = %v, want -30", pair.Amount)
	}

	status, env = c.do(http.MethodGet, "/api/v1/balances/"+ana, cat, "")
	if err := json.Unmarshal(env.Data, &pair); status != http.StatusOK || err != nil {
		t.Fatalf("pairwise balance = %d, %v", status, err)
	}
	if pair.Amount != 0 {
		t.Errorf("cat vs ana = %v, want 0 once cat's share is settled", pair.Amount)
	}

	if status, _ := c.do(http.MethodGet, "/api/v1/groups/"+groupID+"/expenses", ben, ""); status != http.StatusOK {
		t.Errorf("group expenses = %d", status)
	}
}

func TestRouterAuthentication(t *testing.T) {
	c := newClient(t, config.AuthConfig{JWTSecret: "test-secret"})

	if status, _ := c.do(http.MethodGet, "/health", "", ""); status != http.StatusOK {
		t.Errorf("health = %d", status)
	}
	if status, _ := c.do(http.MethodGet, "/api/v1/expenses", "", ""); status != http.StatusUnauthorized {
		t.Errorf("anonymous expenses = %d, want 401", status)
	}
	// the dev header is ignored when disabled
	if status, _ := c.do(http.MethodGet, "/api/v1/expenses", "someone", ""); status != http.StatusUnauthorized {
		t.Errorf("dev header = %d, want 401", status)
	}

	token, err := mw.NewAuthenticator("test-secret", false).Sign("someone", time.Minute)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	req, _ := http.NewRequest(http.MethodGet, c.server.URL+"/api/v1/expenses", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("bearer expenses = %d, want 200", resp.StatusCode)
	}

	resp, err = c.server.Client().Get(c.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics = %d", resp.StatusCode)
	}
}
