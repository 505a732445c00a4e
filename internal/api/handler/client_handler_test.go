package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/centralauth/centralauth/internal/core/domain"
	"github.com/centralauth/centralauth/internal/core/ports"
)

type stubClientService struct {
	createFn     func(ctx context.Context, in ports.ClientInput) (*ports.ClientDetail, error)
	getByIDFn    func(ctx context.Context, id string) (*domain.OAuthClient, error)
	listFn       func(ctx context.Context) ([]domain.OAuthClient, int64, error)
	updateFn     func(ctx context.Context, id string, in ports.ClientInput) (*domain.OAuthClient, error)
	deleteFn     func(ctx context.Context, id string) error
	regenFn      func(ctx context.Context, id string) (*ports.ClientDetail, error)
	regenByCIDFn func(ctx context.Context, clientID string) (*ports.ClientDetail, error)
}

func (s *stubClientService) Create(ctx context.Context, in ports.ClientInput) (*ports.ClientDetail, error) {
	return s.createFn(ctx, in)
}

func (s *stubClientService) GetByID(ctx context.Context, id string) (*domain.OAuthClient, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubClientService) List(ctx context.Context) ([]domain.OAuthClient, int64, error) {
	return s.listFn(ctx)
}

func (s *stubClientService) Update(ctx context.Context, id string, in ports.ClientInput) (*domain.OAuthClient, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubClientService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubClientService) RegenerateSecret(ctx context.Context, id string) (*ports.ClientDetail, error) {
	return s.regenFn(ctx, id)
}

func (s *stubClientService) RegenerateSecretByClientID(ctx context.Context, clientID string) (*ports.ClientDetail, error) {
	return s.regenByCIDFn(ctx, clientID)
}

func sampleClient() domain.OAuthClient {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return domain.OAuthClient{
		ID:                   "id_1",
		ClientID:             "client_abc123",
		SecretHash:           "digest",
		Name:                 "Dashboard",
		RedirectURI:          "https://app.example.com/callback",
		AllowedScopes:        []string{"openid"},
		AllowedGrantTypes:    []string{"authorization_code"},
		AllowedResponseTypes: []string{"code"},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

const sampleClientBody = `{
	"name": "Dashboard",
	"redirect_uri": "https://app.example.com/callback",
	"allowed_scopes": ["openid"],
	"allowed_grant_types": ["authorization_code"],
	"allowed_response_types": ["code"]
}`

func TestClientHandler_Create_Success(t *testing.T) {
	stub := &stubClientService{
		createFn: func(_ context.Context, in ports.ClientInput) (*ports.ClientDetail, error) {
			if in.Name != "Dashboard" || in.RedirectURI != "https://app.example.com/callback" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.ClientDetail{Client: sampleClient(), Secret: "plaintext-secret"}, nil
		},
	}
	h := NewClientHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/clients", sampleClientBody)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	data := envelopeData(t, rec)
	if data["client_secret"] != "plaintext-secret" {
		t.Fatalf("expected one-time secret in create response: %+v", data)
	}
	if _, leaked := data["secret_hash"]; leaked {
		t.Fatalf("secret hash must never be serialised")
	}
}

func TestClientHandler_Create_Validation(t *testing.T) {
	stub := &stubClientService{
		createFn: func(context.Context, ports.ClientInput) (*ports.ClientDetail, error) {
			t.Fatalf("service must not be called on invalid input")
			return nil, nil
		},
	}
	h := NewClientHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/clients", `{"name":"x","redirect_uri":"not a url"}`)

	err := h.Create(c)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"name", "redirect_uri"} {
		if _, ok := ve.Fields[field]; !ok {
			t.Fatalf("expected a message for %q, got %v", field, ve.Fields)
		}
	}
}

func TestClientHandler_List_Success(t *testing.T) {
	stub := &stubClientService{
		listFn: func(context.Context) ([]domain.OAuthClient, int64, error) {
			return []domain.OAuthClient{sampleClient()}, 1, nil
		},
	}
	h := NewClientHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/clients", "")

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := envelopeData(t, rec)
	if data["total"].(float64) != 1 {
		t.Fatalf("unexpected total: %v", data["total"])
	}
	raw, _ := json.Marshal(data["clients"])
	var clients []map[string]any
	if err := json.Unmarshal(raw, &clients); err != nil || len(clients) != 1 {
		t.Fatalf("unexpected clients payload: %v", data["clients"])
	}
	if _, leaked := clients[0]["client_secret"]; leaked {
		t.Fatalf("list must not carry secrets")
	}
}

func TestClientHandler_Get_NotFound(t *testing.T) {
	stub := &stubClientService{
		getByIDFn: func(context.Context, string) (*domain.OAuthClient, error) {
			return nil, domain.ErrClientNotFound
		},
	}
	h := NewClientHandler(stub)

	c, _ := newTestContext(t, http.MethodGet, "/clients/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := h.Get(c); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestClientHandler_Update_Success(t *testing.T) {
	stub := &stubClientService{
		updateFn: func(_ context.Context, id string, in ports.ClientInput) (*domain.OAuthClient, error) {
			if id != "id_1" {
				t.Fatalf("unexpected id: %s", id)
			}
			updated := sampleClient()
			updated.Name = in.Name
			return &updated, nil
		},
	}
	h := NewClientHandler(stub)

	c, rec := newTestContext(t, http.MethodPut, "/clients/id_1", sampleClientBody)
	c.SetParamNames("id")
	c.SetParamValues("id_1")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := envelopeData(t, rec)
	if data["name"] != "Dashboard" {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestClientHandler_Delete_Success(t *testing.T) {
	stub := &stubClientService{
		deleteFn: func(_ context.Context, id string) error {
			if id != "id_1" {
				t.Fatalf("unexpected id: %s", id)
			}
			return nil
		},
	}
	h := NewClientHandler(stub)

	c, rec := newTestContext(t, http.MethodDelete, "/clients/id_1", "")
	c.SetParamNames("id")
	c.SetParamValues("id_1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := envelopeData(t, rec)
	if data["success"] != true {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestClientHandler_RegenerateSecret_Success(t *testing.T) {
	stub := &stubClientService{
		regenFn: func(_ context.Context, id string) (*ports.ClientDetail, error) {
			return &ports.ClientDetail{Client: sampleClient(), Secret: "fresh-secret"}, nil
		},
	}
	h := NewClientHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/clients/id_1/regenerate-secret", "")
	c.SetParamNames("id")
	c.SetParamValues("id_1")

	if err := h.RegenerateSecret(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := envelopeData(t, rec)
	if data["client_secret"] != "fresh-secret" {
		t.Fatalf("expected one-time secret, got %+v", data)
	}
}

func TestClientHandler_RegenerateSecret_PublicClient(t *testing.T) {
	stub := &stubClientService{
		regenFn: func(context.Context, string) (*ports.ClientDetail, error) {
			return nil, domain.ErrPublicClientSecret
		},
	}
	h := NewClientHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/clients/id_1/regenerate-secret", "")
	c.SetParamNames("id")
	c.SetParamValues("id_1")

	if err := h.RegenerateSecret(c); !errors.Is(err, domain.ErrPublicClientSecret) {
		t.Fatalf("expected ErrPublicClientSecret, got %v", err)
	}
}

func TestClientHandler_RegenerateSecretByClientID(t *testing.T) {
	stub := &stubClientService{
		regenByCIDFn: func(_ context.Context, clientID string) (*ports.ClientDetail, error) {
			if clientID != "client_abc123" {
				t.Fatalf("unexpected client_id: %s", clientID)
			}
			return &ports.ClientDetail{Client: sampleClient(), Secret: "recovered-secret"}, nil
		},
	}
	h := NewClientHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/clients/regenerate-secret/client_abc123", "")
	c.SetParamNames("client_id")
	c.SetParamValues("client_abc123")

	if err := h.RegenerateSecretByClientID(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := envelopeData(t, rec)
	if data["client_secret"] != "recovered-secret" {
		t.Fatalf("expected one-time secret, got %+v", data)
	}
}
