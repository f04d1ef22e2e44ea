package telegram

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/park285/gift-grid-bot/internal/giftbot/config"
	domainerrors "github.com/park285/gift-grid-bot/internal/giftbot/errors"
	"github.com/park285/gift-grid-bot/internal/giftbot/ui"
)

// fakeBotAPI: 메서드 이름별로 고정 응답을 돌려주는 Bot API 서버
type fakeBotAPI struct {
	mu        sync.Mutex
	responses map[string]string
	bodies    map[string]string
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.bodies[method] = string(body)
	response, ok := f.responses[method]
	f.mu.Unlock()

	if !ok {
		response = `{"ok":true,"result":true}`
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, response)
}

func newTestClient(t *testing.T, responses map[string]string) (*Client, *fakeBotAPI) {
	t.Helper()
	fake := &fakeBotAPI{responses: responses, bodies: make(map[string]string)}
	if _, ok := fake.responses["getMe"]; !ok {
		fake.responses["getMe"] = `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Gift","username":"gift_bot"}}`
	}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := NewClient(config.TelegramConfig{
		Token:       "test-token",
		APIEndpoint: server.URL + "/bot%s/%s",
		CallTimeout: time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	return client, fake
}

func TestSendMessage(t *testing.T) {
	client, fake := newTestClient(t, map[string]string{
		"sendMessage": `{"ok":true,"result":{"message_id":77,"date":0,"chat":{"id":10,"type":"private"}}}`,
	})

	keyboard := ui.Keyboard{
		ui.Row(ui.Callback("🎮 Играть", "menu:play")),
		ui.Row(ui.Link("📢 News", "https://t.me/news")),
	}
	id, err := client.SendMessage(context.Background(), 10, "<b>hi</b>", keyboard)
	if err != nil || id != 77 {
		t.Fatalf("expected message 77, got %d err=%v", id, err)
	}

	body := fake.bodies["sendMessage"]
	for _, want := range []string{"parse_mode=HTML", "menu%3Aplay", "https%3A%2F%2Ft.me%2Fnews"} {
		if !strings.Contains(body, want) {
			t.Errorf("request body missing %q: %s", want, body)
		}
	}
}

func TestEditMessage_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		response string
		check    func(error) bool
	}{
		{
			name:     "ok",
			response: `{"ok":true,"result":true}`,
			check:    func(err error) bool { return err == nil },
		},
		{
			name:     "not modified",
			response: `{"ok":false,"error_code":400,"description":"Bad Request: message is not modified: specified new message content and reply markup are exactly the same"}`,
			check:    func(err error) bool { return errors.Is(err, domainerrors.ErrMessageNotModified) },
		},
		{
			name:     "blocked",
			response: `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`,
			check:    domainerrors.IsPermissionRevoked,
		},
		{
			name:     "message gone",
			response: `{"ok":false,"error_code":400,"description":"Bad Request: message to edit not found"}`,
			check: func(err error) bool {
				return err != nil && !domainerrors.IsPermissionRevoked(err) && !errors.Is(err, domainerrors.ErrMessageNotModified)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, map[string]string{"editMessageText": tt.response})
			err := client.EditMessage(context.Background(), 10, 5, "text", nil)
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestChatMemberStatus(t *testing.T) {
	client, fake := newTestClient(t, map[string]string{
		"getChatMember": `{"ok":true,"result":{"status":"administrator","user":{"id":1,"is_bot":false,"first_name":"A"}}}`,
	})

	status, err := client.ChatMemberStatus(context.Background(), -1001, 1)
	if err != nil || status != "administrator" {
		t.Fatalf("expected administrator, got %q err=%v", status, err)
	}
	if body := fake.bodies["getChatMember"]; !strings.Contains(body, "chat_id=-1001") || !strings.Contains(body, "user_id=1") {
		t.Errorf("unexpected request: %s", body)
	}
}

func TestSendInvoice(t *testing.T) {
	client, fake := newTestClient(t, map[string]string{
		"sendInvoice": `{"ok":true,"result":{"message_id":9,"date":0,"chat":{"id":10,"type":"private"}}}`,
	})

	id, err := client.SendInvoice(context.Background(), 10, Invoice{
		Title: "attempt", Description: "buy", Payload: "buy_attempt_1", Label: "1", Amount: 5,
	})
	if err != nil || id != 9 {
		t.Fatalf("expected invoice message 9, got %d err=%v", id, err)
	}
	body := fake.bodies["sendInvoice"]
	for _, want := range []string{"currency=XTR", "payload=buy_attempt_1", "suggested_tip_amounts=%5B%5D"} {
		if !strings.Contains(body, want) {
			t.Errorf("invoice body missing %q: %s", want, body)
		}
	}
}

func TestCall_ContextDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)
	_, err := call(ctx, func() (int, error) {
		<-release
		return 1, nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
