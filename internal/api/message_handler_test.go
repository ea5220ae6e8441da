package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/lukasmoran/accord/internal/auth"
	"github.com/lukasmoran/accord/internal/models"
	"github.com/lukasmoran/accord/internal/permissions"
)

func TestSendMessage_Success(t *testing.T) {
	f := newHandlerFixture(permissions.DefaultView | permissions.SendMessage)

	body := `{"content":"hello world","nonce":"n-1"}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/channels/2000/messages", strings.NewReader(body))
	c.SetParamNames("id")
	c.SetParamValues("2000")
	setAuthUser(c, testUserID)

	if err := f.messages.SendMessage(c); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var msg models.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if msg.Content == nil || *msg.Content != "hello world" {
		t.Errorf("content = %v, want hello world", msg.Content)
	}
	if msg.Nonce == nil || *msg.Nonce != "n-1" {
		t.Errorf("nonce = %v, want n-1", msg.Nonce)
	}
	if msg.AuthorID != testUserID {
		t.Errorf("author = %d, want %d", msg.AuthorID, testUserID)
	}
}

func TestSendMessage_InvalidChannelID(t *testing.T) {
	f := newHandlerFixture(permissions.DefaultView | permissions.SendMessage)

	c, rec := newTestContext(http.MethodPost, "/api/v1/channels/abc/messages", strings.NewReader(`{}`))
	c.SetParamNames("id")
	c.SetParamValues("abc")
	setAuthUser(c, testUserID)

	if err := f.messages.SendMessage(c); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSendMessage_MissingSendPermission(t *testing.T) {
	f := newHandlerFixture(permissions.DefaultView)

	body := `{"content":"hello"}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/channels/2000/messages", strings.NewReader(body))
	c.SetParamNames("id")
	c.SetParamValues("2000")
	setAuthUser(c, testUserID)

	if err := f.messages.SendMessage(c); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403: %s", rec.Code, rec.Body.String())
	}
}

func TestSendMessage_NonMember(t *testing.T) {
	f := newHandlerFixture(permissions.DefaultView | permissions.SendMessage)

	c, rec := newTestContext(http.MethodPost, "/api/v1/channels/2000/messages", strings.NewReader(`{"content":"hi"}`))
	c.SetParamNames("id")
	c.SetParamValues("2000")
	setAuthUser(c, int64(424242))

	if err := f.messages.SendMessage(c); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSendMessage_EmptyBody(t *testing.T) {
	f := newHandlerFixture(permissions.DefaultView | permissions.SendMessage)

	c, rec := newTestContext(http.MethodPost, "/api/v1/channels/2000/messages", strings.NewReader(`{}`))
	c.SetParamNames("id")
	c.SetParamValues("2000")
	setAuthUser(c, testUserID)

	if err := f.messages.SendMessage(c); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Error.Code != "EMPTY_MESSAGE" {
		t.Errorf("code = %q, want EMPTY_MESSAGE", resp.Error.Code)
	}
}

func TestSendMessage_TooLongReportsMax(t *testing.T) {
	f := newHandlerFixture(permissions.DefaultView | permissions.SendMessage)

	body := `{"content":"` + strings.Repeat("a", 2001) + `"}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/channels/2000/messages", strings.NewReader(body))
	c.SetParamNames("id")
	c.SetParamValues("2000")
	setAuthUser(c, testUserID)

	if err := f.messages.SendMessage(c); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Error.Max != 2000 {
		t.Errorf("max = %d, want 2000", resp.Error.Max)
	}
}

func TestSendMessage_MasqueradeRequiresPermission(t *testing.T) {
	f := newHandlerFixture(permissions.DefaultView | permissions.SendMessage)

	body := `{"content":"hi","masquerade":{"name":"someone else"}}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/channels/2000/messages", strings.NewReader(body))
	c.SetParamNames("id")
	c.SetParamValues("2000")
	setAuthUser(c, testUserID)

	if err := f.messages.SendMessage(c); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestGetMessage(t *testing.T) {
	f := newHandlerFixture(permissions.DefaultView | permissions.SendMessage)

	seed := &models.Message{ID: 5000, ChannelID: testChannelID, AuthorID: testUserID, Content: strptr("stored")}
	if err := f.msgRepo.Insert(context.Background(), seed); err != nil {
		t.Fatalf("seeding message: %v", err)
	}

	c, rec := newTestContext(http.MethodGet, "/api/v1/channels/2000/messages/5000", nil)
	c.SetParamNames("id", "message_id")
	c.SetParamValues("2000", "5000")
	setAuthUser(c, testUserID)

	if err := f.messages.GetMessage(c); err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var msg models.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if msg.ID != 5000 {
		t.Errorf("id = %d, want 5000", msg.ID)
	}
}

func TestExecuteWebhook(t *testing.T) {
	f := newHandlerFixture(permissions.DefaultView | permissions.SendMessage)

	token, err := auth.GenerateWebhookToken()
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	hash, err := auth.HashToken(token)
	if err != nil {
		t.Fatalf("hashing token: %v", err)
	}
	f.whRepo.GetByIDFn = func(_ context.Context, id int64) (*models.Webhook, error) {
		if id == 7000 {
			return &models.Webhook{ID: 7000, ChannelID: testChannelID, Name: "ci", TokenHash: hash}, nil
		}
		return nil, nil
	}

	body := `{"content":"build passed"}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/webhooks/7000/"+token, strings.NewReader(body))
	c.SetParamNames("id", "token")
	c.SetParamValues("7000", token)

	if err := f.messages.ExecuteWebhook(c); err != nil {
		t.Fatalf("ExecuteWebhook: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var msg models.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if msg.AuthorID != 7000 || msg.Webhook == nil || msg.Webhook.Name != "ci" {
		t.Errorf("webhook message = %+v, want webhook-stamped author", msg)
	}
}

func TestExecuteWebhook_BadToken(t *testing.T) {
	f := newHandlerFixture(permissions.DefaultView | permissions.SendMessage)

	hash, err := auth.HashToken("the-real-token")
	if err != nil {
		t.Fatalf("hashing token: %v", err)
	}
	f.whRepo.GetByIDFn = func(_ context.Context, id int64) (*models.Webhook, error) {
		return &models.Webhook{ID: 7000, ChannelID: testChannelID, Name: "ci", TokenHash: hash}, nil
	}

	c, rec := newTestContext(http.MethodPost, "/api/v1/webhooks/7000/wrong", strings.NewReader(`{"content":"x"}`))
	c.SetParamNames("id", "token")
	c.SetParamValues("7000", "wrong")

	if err := f.messages.ExecuteWebhook(c); err != nil {
		t.Fatalf("ExecuteWebhook: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
