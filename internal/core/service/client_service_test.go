package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/centralauth/centralauth/internal/core/domain"
	"github.com/centralauth/centralauth/internal/core/ports"
)

type stubClientRepo struct {
	mu      sync.Mutex
	clients map[string]*domain.OAuthClient
	seq     int
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{clients: make(map[string]*domain.OAuthClient)}
}

func cloneClient(c *domain.OAuthClient) *domain.OAuthClient {
	clone := *c
	return &clone
}

func (r *stubClientRepo) Create(_ context.Context, client *domain.OAuthClient) (*domain.OAuthClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.ClientID == client.ClientID {
			return nil, domain.ErrDuplicateClientID
		}
	}
	r.seq++
	copy := cloneClient(client)
	copy.ID = fmt.Sprintf("id_%d", r.seq)
	r.clients[copy.ID] = cloneClient(copy)
	return copy, nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id string) (*domain.OAuthClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[id]; ok {
		return cloneClient(c), nil
	}
	return nil, domain.ErrClientNotFound
}

func (r *stubClientRepo) FindByClientID(_ context.Context, clientID string) (*domain.OAuthClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.ClientID == clientID {
			return cloneClient(c), nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func (r *stubClientRepo) List(_ context.Context) ([]domain.OAuthClient, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.OAuthClient, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubClientRepo) Update(_ context.Context, client *domain.OAuthClient) (*domain.OAuthClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[client.ID]; !ok {
		return nil, domain.ErrClientNotFound
	}
	r.clients[client.ID] = cloneClient(client)
	return cloneClient(client), nil
}

func (r *stubClientRepo) UpdateSecretHash(_ context.Context, id, secretHash string) (*domain.OAuthClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	c.SecretHash = secretHash
	return cloneClient(c), nil
}

func (r *stubClientRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[id]; !ok {
		return domain.ErrClientNotFound
	}
	delete(r.clients, id)
	return nil
}

func newTestClients() (*stubClientRepo, *ClientService) {
	repo := newStubClientRepo()
	return repo, NewClientService(repo, zerolog.Nop())
}

func validInput() ports.ClientInput {
	return ports.ClientInput{
		Name:                 "Dashboard",
		RedirectURI:          "https://app.example.com/callback",
		AllowedScopes:        []string{"openid", "profile", "custom:reports"},
		AllowedGrantTypes:    []string{"authorization_code", "refresh_token"},
		AllowedResponseTypes: []string{"code"},
	}
}

func TestClientService_Create_Confidential(t *testing.T) {
	repo, svc := newTestClients()

	detail, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if detail.Secret == "" {
		t.Fatalf("confidential client must receive a plaintext secret")
	}
	if detail.Client.ClientID == "" {
		t.Fatalf("expected generated client_id")
	}

	stored, err := repo.FindByID(context.Background(), detail.Client.ID)
	if err != nil {
		t.Fatalf("client not stored: %v", err)
	}
	if stored.SecretHash == "" || stored.SecretHash == detail.Secret {
		t.Fatalf("secret must be stored as a digest, got %q", stored.SecretHash)
	}
}

func TestClientService_Create_PublicHasNoSecret(t *testing.T) {
	repo, svc := newTestClients()

	in := validInput()
	in.IsPublic = true
	detail, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if detail.Secret != "" {
		t.Fatalf("public client must not receive a secret, got %q", detail.Secret)
	}

	stored, err := repo.FindByID(context.Background(), detail.Client.ID)
	if err != nil {
		t.Fatalf("client not stored: %v", err)
	}
	if stored.SecretHash != "" {
		t.Fatalf("public client must not store a secret hash")
	}
}

func TestClientService_Create_Validation(t *testing.T) {
	_, svc := newTestClients()

	cases := []struct {
		name    string
		mutate  func(*ports.ClientInput)
		wantErr error
	}{
		{"relative redirect", func(in *ports.ClientInput) { in.RedirectURI = "/callback" }, domain.ErrInvalidRedirectURI},
		{"garbage redirect", func(in *ports.ClientInput) { in.RedirectURI = "://nope" }, domain.ErrInvalidRedirectURI},
		{"unknown grant", func(in *ports.ClientInput) { in.AllowedGrantTypes = []string{"device_code"} }, domain.ErrUnknownGrantType},
		{"unknown response", func(in *ports.ClientInput) { in.AllowedResponseTypes = []string{"fragment"} }, domain.ErrUnknownResponseType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			if _, err := svc.Create(context.Background(), in); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestClientService_Create_CustomScopesAccepted(t *testing.T) {
	_, svc := newTestClients()

	in := validInput()
	in.AllowedScopes = []string{"openid", "inventory:read", "inventory:write"}
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("custom scopes must be accepted: %v", err)
	}
}

func TestClientService_Update_PublicDropsSecret(t *testing.T) {
	repo, svc := newTestClients()

	detail, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	in := validInput()
	in.IsPublic = true
	updated, err := svc.Update(context.Background(), detail.Client.ID, in)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.IsPublic {
		t.Fatalf("client not converted to public")
	}

	stored, err := repo.FindByID(context.Background(), detail.Client.ID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if stored.SecretHash != "" {
		t.Fatalf("conversion to public must drop the secret hash")
	}
}

func TestClientService_Update_NotFound(t *testing.T) {
	_, svc := newTestClients()

	if _, err := svc.Update(context.Background(), "missing", validInput()); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestClientService_Delete_NotFound(t *testing.T) {
	_, svc := newTestClients()

	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestClientService_RegenerateSecret_RotatesHash(t *testing.T) {
	repo, svc := newTestClients()

	detail, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	before, _ := repo.FindByID(context.Background(), detail.Client.ID)

	rotated, err := svc.RegenerateSecret(context.Background(), detail.Client.ID)
	if err != nil {
		t.Fatalf("regenerate failed: %v", err)
	}
	if rotated.Secret == "" || rotated.Secret == detail.Secret {
		t.Fatalf("expected a fresh plaintext secret")
	}

	after, _ := repo.FindByID(context.Background(), detail.Client.ID)
	if after.SecretHash == before.SecretHash {
		t.Fatalf("secret hash not rotated")
	}
}

func TestClientService_RegenerateSecret_PublicRejected(t *testing.T) {
	_, svc := newTestClients()

	in := validInput()
	in.IsPublic = true
	detail, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.RegenerateSecret(context.Background(), detail.Client.ID); !errors.Is(err, domain.ErrPublicClientSecret) {
		t.Fatalf("expected ErrPublicClientSecret, got %v", err)
	}
}

func TestClientService_RegenerateSecretByClientID(t *testing.T) {
	_, svc := newTestClients()

	detail, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rotated, err := svc.RegenerateSecretByClientID(context.Background(), detail.Client.ClientID)
	if err != nil {
		t.Fatalf("regenerate by client_id failed: %v", err)
	}
	if rotated.Secret == "" {
		t.Fatalf("expected a fresh plaintext secret")
	}

	if _, err := svc.RegenerateSecretByClientID(context.Background(), "client_unknown"); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}
