package ports

import (
	"context"

	"github.com/centralauth/centralauth/internal/core/domain"
)

// ClientInput carries the mutable fields of an OAuth client.
type ClientInput struct {
	Name                 string
	Description          string
	Website              string
	RedirectURI          string
	IsPublic             bool
	OIDCEnabled          bool
	AllowedScopes        []string
	AllowedGrantTypes    []string
	AllowedResponseTypes []string
}

// ClientDetail pairs a stored client with the plaintext secret when one has
// just been minted. Secret is empty everywhere except the Create and
// RegenerateSecret return paths.
type ClientDetail struct {
	Client domain.OAuthClient
	Secret string
}

type ClientService interface {
	Create(ctx context.Context, in ClientInput) (*ClientDetail, error)
	GetByID(ctx context.Context, id string) (*domain.OAuthClient, error)
	List(ctx context.Context) ([]domain.OAuthClient, int64, error)
	Update(ctx context.Context, id string, in ClientInput) (*domain.OAuthClient, error)
	Delete(ctx context.Context, id string) error
	RegenerateSecret(ctx context.Context, id string) (*ClientDetail, error)
	RegenerateSecretByClientID(ctx context.Context, clientID string) (*ClientDetail, error)
}
