package httpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	botgo "github.com/convexim/botgo"
	"github.com/convexim/botgo/credstore"
	"github.com/convexim/botgo/models"
)

var serverBotID = uuid.MustParse("24348246-6791-4ac0-9d86-b948cd6a0e46")

func newTestServer(t *testing.T, collectors ...*botgo.Collector) (*Server, *botgo.Bot) {
	t.Helper()
	bot, err := botgo.New(botgo.Options{
		Collectors: collectors,
		Accounts: []credstore.Account{{
			BotID:     serverBotID,
			Host:      "cts.example.com",
			SecretKey: "secret",
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return New(Config{ListenAddr: ":0"}, bot, nil), bot
}

func commandBody(botID uuid.UUID, body string) string {
	return fmt.Sprintf(`{
		"bot_id": %q,
		"sync_id": %q,
		"command": {"body": %q, "command_type": "user"},
		"from": {"host": "cts.example.com", "chat_type": "chat", "group_chat_id": %q},
		"proto_version": 4
	}`, botID, uuid.New(), body, uuid.New())
}

func TestCommandAccepted(t *testing.T) {
	handled := make(chan struct{})
	c := botgo.NewCollector()
	if err := c.Command(botgo.CommandHandler{
		Body: "/ping",
		Handler: func(ctx context.Context, msg *models.UserMessage) error {
			close(handled)
			return nil
		},
	}); err != nil {
		t.Fatal(err)
	}
	s, bot := newTestServer(t, c)

	req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(commandBody(serverBotID, "/ping")))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["result"] != "accepted" {
		t.Errorf("body = %v", resp)
	}

	select {
	case <-handled:
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
	bot.Shutdown(context.Background())
}

func TestCommandUnknownBotDisabled(t *testing.T) {
	s, _ := newTestServer(t)
	stranger := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(commandBody(stranger, "/ping")))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Reason    string `json:"reason"`
		ErrorData struct {
			StatusMessage string `json:"status_message"`
		} `json:"error_data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Reason != "bot_disabled" {
		t.Errorf("reason = %q", resp.Reason)
	}
	if want := "No credentials for bot " + stranger.String(); resp.ErrorData.StatusMessage != want {
		t.Errorf("status_message = %q, want %q", resp.ErrorData.StatusMessage, want)
	}
}

func TestCommandUndecodableRejected(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(`{"proto_version": 3}`))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	c := botgo.NewCollector()
	if err := c.Command(botgo.CommandHandler{
		Body:        "/debug",
		Description: "Simple debug command",
		Handler: func(ctx context.Context, msg *models.UserMessage) error {
			return nil
		},
	}); err != nil {
		t.Fatal(err)
	}
	s, _ := newTestServer(t, c)

	req := httptest.NewRequest(http.MethodGet, "/status?bot_id="+serverBotID.String()+"&chat_type=chat", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp struct {
		Status string `json:"status"`
		Result struct {
			Enabled       bool   `json:"enabled"`
			StatusMessage string `json:"status_message"`
			Commands      []struct {
				Body        string `json:"body"`
				Name        string `json:"name"`
				Description string `json:"description"`
			} `json:"commands"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || !resp.Result.Enabled {
		t.Errorf("response = %+v", resp)
	}
	if resp.Result.StatusMessage != "Bot is working" {
		t.Errorf("status_message = %q", resp.Result.StatusMessage)
	}
	if len(resp.Result.Commands) != 1 {
		t.Fatalf("commands = %+v", resp.Result.Commands)
	}
	entry := resp.Result.Commands[0]
	if entry.Body != "/debug" || entry.Name != "/debug" || entry.Description != "Simple debug command" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestStatusUnknownBotDisabled(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/status?bot_id="+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestStatusMissingBotID(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body)
	}
}
