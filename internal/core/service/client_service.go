package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/centralauth/centralauth/internal/api/metrics"
	"github.com/centralauth/centralauth/internal/core/domain"
	"github.com/centralauth/centralauth/internal/core/ports"
	"github.com/centralauth/centralauth/internal/core/token"
)

// ClientService is the OAuth client registry. It enforces the credential
// invariants: public clients are never issued a secret, confidential clients
// get their secret revealed exactly once, and grant/response types must come
// from the known enumerations.
type ClientService struct {
	repo ports.ClientRepository
	log  zerolog.Logger
}

func NewClientService(repo ports.ClientRepository, log zerolog.Logger) *ClientService {
	return &ClientService{repo: repo, log: log}
}

// Create registers a new client. The returned detail carries the plaintext
// secret for confidential clients; it is not retrievable afterwards.
func (s *ClientService) Create(ctx context.Context, in ports.ClientInput) (*ports.ClientDetail, error) {
	if err := validateClientInput(in); err != nil {
		return nil, err
	}

	clientID, err := token.NewClientID()
	if err != nil {
		return nil, err
	}

	var secret, secretHash string
	if !in.IsPublic {
		secret, secretHash, err = token.NewOpaque()
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	client := &domain.OAuthClient{
		ClientID:             clientID,
		SecretHash:           secretHash,
		Name:                 in.Name,
		Description:          in.Description,
		Website:              in.Website,
		RedirectURI:          in.RedirectURI,
		IsPublic:             in.IsPublic,
		OIDCEnabled:          in.OIDCEnabled,
		AllowedScopes:        defaultSlice(in.AllowedScopes),
		AllowedGrantTypes:    defaultSlice(in.AllowedGrantTypes),
		AllowedResponseTypes: defaultSlice(in.AllowedResponseTypes),
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	created, err := s.repo.Create(ctx, client)
	if err != nil {
		return nil, err
	}

	metrics.ClientsCreatedTotal.WithLabelValues(clientKind(created.IsPublic)).Inc()
	s.log.Info().Str("client_id", created.ClientID).Bool("is_public", created.IsPublic).Msg("oauth client created")

	return &ports.ClientDetail{Client: *created, Secret: secret}, nil
}

func (s *ClientService) GetByID(ctx context.Context, id string) (*domain.OAuthClient, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ClientService) List(ctx context.Context) ([]domain.OAuthClient, int64, error) {
	return s.repo.List(ctx)
}

// Update mutates all fields except the client_id and the secret.
func (s *ClientService) Update(ctx context.Context, id string, in ports.ClientInput) (*domain.OAuthClient, error) {
	if err := validateClientInput(in); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = in.Name
	existing.Description = in.Description
	existing.Website = in.Website
	existing.RedirectURI = in.RedirectURI
	existing.IsPublic = in.IsPublic
	existing.OIDCEnabled = in.OIDCEnabled
	existing.AllowedScopes = defaultSlice(in.AllowedScopes)
	existing.AllowedGrantTypes = defaultSlice(in.AllowedGrantTypes)
	existing.AllowedResponseTypes = defaultSlice(in.AllowedResponseTypes)
	existing.UpdatedAt = time.Now().UTC()

	// Converting a confidential client to public drops its secret; the
	// invariant is that a public client never has one.
	if existing.IsPublic {
		existing.SecretHash = ""
	}

	return s.repo.Update(ctx, existing)
}

func (s *ClientService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("id", id).Msg("oauth client deleted")
	return nil
}

// RegenerateSecret mints a new secret for a confidential client, addressed by
// internal id. The plaintext is returned once.
func (s *ClientService) RegenerateSecret(ctx context.Context, id string) (*ports.ClientDetail, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.rotateSecret(ctx, client)
}

// RegenerateSecretByClientID is the self-service recovery path, addressed by
// the public client_id. Same invariant, same one-time reveal.
func (s *ClientService) RegenerateSecretByClientID(ctx context.Context, clientID string) (*ports.ClientDetail, error) {
	client, err := s.repo.FindByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return s.rotateSecret(ctx, client)
}

func (s *ClientService) rotateSecret(ctx context.Context, client *domain.OAuthClient) (*ports.ClientDetail, error) {
	if client.IsPublic {
		return nil, domain.ErrPublicClientSecret
	}

	secret, secretHash, err := token.NewOpaque()
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateSecretHash(ctx, client.ID, secretHash)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("client_id", updated.ClientID).Msg("client secret regenerated")
	return &ports.ClientDetail{Client: *updated, Secret: secret}, nil
}

// validateClientInput checks the fields the request validator cannot: the
// redirect URI must be an absolute URL and grant/response types must belong
// to the closed enumerations. Scopes are deliberately open: the standard OIDC
// set plus arbitrary custom strings.
func validateClientInput(in ports.ClientInput) error {
	u, err := url.Parse(in.RedirectURI)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRedirectURI, in.RedirectURI)
	}
	for _, gt := range in.AllowedGrantTypes {
		if !domain.ValidGrantType(gt) {
			return fmt.Errorf("%w: %q", domain.ErrUnknownGrantType, gt)
		}
	}
	for _, rt := range in.AllowedResponseTypes {
		if !domain.ValidResponseType(rt) {
			return fmt.Errorf("%w: %q", domain.ErrUnknownResponseType, rt)
		}
	}
	return nil
}

func defaultSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func clientKind(isPublic bool) string {
	if isPublic {
		return "public"
	}
	return "confidential"
}
