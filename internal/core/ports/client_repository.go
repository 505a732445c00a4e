package ports

import (
	"context"

	"github.com/centralauth/centralauth/internal/core/domain"
)

// ClientRepository defines persistence for registered OAuth clients.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.OAuthClient) (*domain.OAuthClient, error)
	FindByID(ctx context.Context, id string) (*domain.OAuthClient, error)
	FindByClientID(ctx context.Context, clientID string) (*domain.OAuthClient, error)
	List(ctx context.Context) ([]domain.OAuthClient, int64, error)
	Update(ctx context.Context, client *domain.OAuthClient) (*domain.OAuthClient, error)
	UpdateSecretHash(ctx context.Context, id, secretHash string) (*domain.OAuthClient, error)
	Delete(ctx context.Context, id string) error
}
