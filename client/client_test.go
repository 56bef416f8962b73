package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/convexim/botgo/credstore"
	"github.com/convexim/botgo/models"
)

var (
	mockBotID  = uuid.MustParse("8dada2c8-67a6-4434-9dec-570d244e78ee")
	mockChatID = uuid.MustParse("dea55ee4-7a9f-4315-913b-654f9bc26e60")
)

// mockMessenger is an httptest stand-in for one messenger server. It
// records the requests it sees and issues incrementing tokens.
type mockMessenger struct {
	t *testing.T

	mu        sync.Mutex
	requests  []string
	tokenSeq  int
	expire401 int // respond 401 to this many authenticated calls

	server *httptest.Server
}

func newMockMessenger(t *testing.T) *mockMessenger {
	m := &mockMessenger{t: t}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.server.Close)
	return m
}

// host returns the host:port the credential store should bind to.
func (m *mockMessenger) host() string {
	u, err := url.Parse(m.server.URL)
	if err != nil {
		m.t.Fatal(err)
	}
	return u.Host
}

func (m *mockMessenger) seen() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.requests...)
}

func (m *mockMessenger) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requests = append(m.requests, r.Method+" "+r.URL.Path)
	m.mu.Unlock()

	if strings.HasPrefix(r.URL.Path, "/api/v2/botx/bots/") && strings.HasSuffix(r.URL.Path, "/token") {
		if r.URL.Query().Get("signature") == "" {
			m.t.Error("token request without signature")
		}
		m.mu.Lock()
		m.tokenSeq++
		token := fmt.Sprintf("token-%d", m.tokenSeq)
		m.mu.Unlock()
		writeResult(w, http.StatusOK, token)
		return
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		m.t.Errorf("authenticated call without bearer token: %s", r.URL.Path)
	}

	m.mu.Lock()
	expired := m.expire401 > 0
	if expired {
		m.expire401--
	}
	m.mu.Unlock()
	if expired {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch r.URL.Path {
	case DirectNotificationPath:
		var req struct {
			GroupChatID uuid.UUID `json:"group_chat_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			m.t.Error(err)
		}
		if req.GroupChatID != mockChatID {
			m.t.Errorf("group_chat_id = %s", req.GroupChatID)
		}
		writeResult(w, http.StatusOK, map[string]string{"sync_id": uuid.NewString()})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeResult(w http.ResponseWriter, status int, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "result": result})
}

// newTestClient wires a client against the mock over plain http.
func newTestClient(t *testing.T, m *mockMessenger) (*Client, models.Binding) {
	creds := credstore.New(credstore.Account{
		BotID:     mockBotID,
		Host:      m.host(),
		SecretKey: "secret",
	})
	c := New(creds, m.server.Client(), nil)
	c.Scheme = "http"
	return c, models.Binding{BotID: mockBotID, Host: m.host()}
}

func TestSendMessageColdTokenPath(t *testing.T) {
	mock := newMockMessenger(t)
	c, bind := newTestClient(t, mock)

	syncID, err := c.SendMessage(context.Background(), bind, mockChatID, &models.MessagePayload{Body: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if syncID == uuid.Nil {
		t.Error("sync id not returned")
	}

	want := []string{
		"GET /api/v2/botx/bots/" + mockBotID.String() + "/token",
		"POST " + DirectNotificationPath,
	}
	got := mock.seen()
	if len(got) != len(want) {
		t.Fatalf("requests = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("requests = %v, want %v", got, want)
		}
	}
}

func TestTokenIsCachedAcrossCalls(t *testing.T) {
	mock := newMockMessenger(t)
	c, bind := newTestClient(t, mock)

	for i := 0; i < 3; i++ {
		if _, err := c.SendMessage(context.Background(), bind, mockChatID, &models.MessagePayload{Body: "hi"}); err != nil {
			t.Fatal(err)
		}
	}

	tokenCalls := 0
	for _, r := range mock.seen() {
		if strings.Contains(r, "/token") {
			tokenCalls++
		}
	}
	if tokenCalls != 1 {
		t.Errorf("token requests = %d, want 1", tokenCalls)
	}
}

func TestExpiredTokenRetriedOnce(t *testing.T) {
	mock := newMockMessenger(t)
	c, bind := newTestClient(t, mock)

	// Warm the cache, then have the server reject the next call.
	if _, err := c.SendMessage(context.Background(), bind, mockChatID, &models.MessagePayload{Body: "hi"}); err != nil {
		t.Fatal(err)
	}
	mock.mu.Lock()
	mock.expire401 = 1
	mock.mu.Unlock()

	if _, err := c.SendMessage(context.Background(), bind, mockChatID, &models.MessagePayload{Body: "again"}); err != nil {
		t.Fatal(err)
	}

	// token, notify, notify(401), token, notify
	got := mock.seen()
	if len(got) != 5 {
		t.Fatalf("requests = %v", got)
	}
	if !strings.Contains(got[3], "/token") {
		t.Errorf("requests = %v, want token reacquisition at position 3", got)
	}
}

func TestPersistent401SurfacesError(t *testing.T) {
	mock := newMockMessenger(t)
	c, bind := newTestClient(t, mock)

	if _, err := c.SendMessage(context.Background(), bind, mockChatID, &models.MessagePayload{Body: "hi"}); err != nil {
		t.Fatal(err)
	}
	mock.mu.Lock()
	mock.expire401 = 10 // reject the retry too
	mock.mu.Unlock()

	_, err := c.SendMessage(context.Background(), bind, mockChatID, &models.MessagePayload{Body: "again"})
	if err == nil {
		t.Fatal("expected error after failed retry")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
}

func TestChatNotFoundClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/token") {
			writeResult(w, http.StatusOK, "token-1")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"status": "error", "reason": "chat_not_found", "errors": [], "error_data": {"group_chat_id": %q}}`, mockChatID)
	}))
	defer server.Close()

	u, _ := url.Parse(server.URL)
	creds := credstore.New(credstore.Account{BotID: mockBotID, Host: u.Host, SecretKey: "secret"})
	c := New(creds, server.Client(), nil)
	c.Scheme = "http"
	bind := models.Binding{BotID: mockBotID, Host: u.Host}

	_, err := c.SendMessage(context.Background(), bind, mockChatID, &models.MessagePayload{Body: "hi"})
	var notFound *ChatNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want ChatNotFoundError", err)
	}
	if notFound.ChatID != mockChatID {
		t.Errorf("chat id = %s", notFound.ChatID)
	}
}

func TestUnclassified404FallsBackToAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/token") {
			writeResult(w, http.StatusOK, "token-1")
			return
		}
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"status": "error", "reason": "something_else"}`)
	}))
	defer server.Close()

	u, _ := url.Parse(server.URL)
	creds := credstore.New(credstore.Account{BotID: mockBotID, Host: u.Host, SecretKey: "secret"})
	c := New(creds, server.Client(), nil)
	c.Scheme = "http"
	bind := models.Binding{BotID: mockBotID, Host: u.Host}

	_, err := c.SendMessage(context.Background(), bind, mockChatID, &models.MessagePayload{Body: "hi"})
	if err == nil {
		t.Fatal("expected error")
	}
	var chatErr *ChatNotFoundError
	if errors.As(err, &chatErr) {
		t.Fatal("reason mismatch must not classify as ChatNotFoundError")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
}

func TestGoneOverridesHandlers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/token") {
			writeResult(w, http.StatusOK, "token-1")
			return
		}
		w.WriteHeader(http.StatusGone)
	}))
	defer server.Close()

	u, _ := url.Parse(server.URL)
	creds := credstore.New(credstore.Account{BotID: mockBotID, Host: u.Host, SecretKey: "secret"})
	c := New(creds, server.Client(), nil)
	c.Scheme = "http"
	bind := models.Binding{BotID: mockBotID, Host: u.Host}

	_, err := c.SendMessage(context.Background(), bind, mockChatID, &models.MessagePayload{Body: "hi"})
	var gone *RouteDeprecatedError
	if !errors.As(err, &gone) {
		t.Fatalf("err = %v, want RouteDeprecatedError", err)
	}
}

func TestTokenRequestRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	u, _ := url.Parse(server.URL)
	creds := credstore.New(credstore.Account{BotID: mockBotID, Host: u.Host, SecretKey: "wrong"})
	c := New(creds, server.Client(), nil)
	c.Scheme = "http"
	bind := models.Binding{BotID: mockBotID, Host: u.Host}

	_, err := c.SendMessage(context.Background(), bind, mockChatID, &models.MessagePayload{Body: "hi"})
	var unauthorized *UnauthorizedError
	if !errors.As(err, &unauthorized) {
		t.Fatalf("err = %v, want UnauthorizedError", err)
	}
}

func TestSendMessageBodyLimitCheckedLocally(t *testing.T) {
	mock := newMockMessenger(t)
	c, bind := newTestClient(t, mock)

	long := strings.Repeat("a", models.MaxMessageBodyLength+1)
	if _, err := c.SendMessage(context.Background(), bind, mockChatID, &models.MessagePayload{Body: long}); err == nil {
		t.Fatal("expected local body limit error")
	}
	if got := mock.seen(); len(got) != 0 {
		t.Errorf("requests = %v, want none", got)
	}

	// Character limit, not byte limit: a multibyte body at the cap goes out.
	multibyte := strings.Repeat("ё", models.MaxMessageBodyLength)
	if _, err := c.SendMessage(context.Background(), bind, mockChatID, &models.MessagePayload{Body: multibyte}); err != nil {
		t.Fatalf("multibyte body at the limit: %v", err)
	}
}

func TestUploadFileMultipart(t *testing.T) {
	var gotChatID, gotFileName, gotContent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/token") {
			writeResult(w, http.StatusOK, "token-1")
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Error(err)
			return
		}
		gotChatID = r.FormValue("group_chat_id")
		file, header, err := r.FormFile("content")
		if err != nil {
			t.Error(err)
			return
		}
		defer file.Close()
		gotFileName = header.Filename
		buf, err := io.ReadAll(file)
		if err != nil {
			t.Error(err)
			return
		}
		gotContent = string(buf)
		writeResult(w, http.StatusOK, map[string]interface{}{
			"type": "document", "file_id": uuid.NewString(),
			"file_name": header.Filename, "file_size": header.Size,
			"file_mime_type": "text/plain",
		})
	}))
	defer server.Close()

	u, _ := url.Parse(server.URL)
	creds := credstore.New(credstore.Account{BotID: mockBotID, Host: u.Host, SecretKey: "secret"})
	c := New(creds, server.Client(), nil)
	c.Scheme = "http"
	bind := models.Binding{BotID: mockBotID, Host: u.Host}

	file, err := models.NewOutgoingFile("notes.txt", strings.NewReader("upload me"))
	if err != nil {
		t.Fatal(err)
	}
	async, err := c.UploadFile(context.Background(), bind, mockChatID, file)
	if err != nil {
		t.Fatal(err)
	}

	if gotChatID != mockChatID.String() {
		t.Errorf("group_chat_id = %q", gotChatID)
	}
	if gotFileName != "notes.txt" || gotContent != "upload me" {
		t.Errorf("file = %q content = %q", gotFileName, gotContent)
	}
	if async.FileName != "notes.txt" || async.Kind != models.AttachmentDocument {
		t.Errorf("async file = %+v", async)
	}
}

func TestDownloadFileRawBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/token") {
			writeResult(w, http.StatusOK, "token-1")
			return
		}
		w.Write([]byte("raw-bytes"))
	}))
	defer server.Close()

	u, _ := url.Parse(server.URL)
	creds := credstore.New(credstore.Account{BotID: mockBotID, Host: u.Host, SecretKey: "secret"})
	c := New(creds, server.Client(), nil)
	c.Scheme = "http"
	bind := models.Binding{BotID: mockBotID, Host: u.Host}

	body, err := c.DownloadFile(context.Background(), bind, mockChatID, uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "raw-bytes" {
		t.Errorf("body = %q", body)
	}
}

func TestBuildURLEscapesPathParams(t *testing.T) {
	c := New(credstore.New(), nil, nil)
	got := c.buildURL("cts.example.com", Method{
		Verb:       http.MethodGet,
		Path:       "/api/v2/botx/bots/{bot_id}/token",
		PathParams: map[string]string{"bot_id": "weird/value"},
	})
	if got != "https://cts.example.com/api/v2/botx/bots/weird%2Fvalue/token" {
		t.Errorf("url = %q", got)
	}
}
