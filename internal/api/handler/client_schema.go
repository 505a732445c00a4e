package handler

import (
	"time"

	"github.com/centralauth/centralauth/internal/core/domain"
	"github.com/centralauth/centralauth/internal/core/ports"
)

// --- Request / Response types ---

type clientRequest struct {
	Name                 string   `json:"name"                   validate:"required,min=3,max=100"`
	Description          string   `json:"description"            validate:"max=500"`
	Website              string   `json:"website"                validate:"omitempty,url,max=255"`
	RedirectURI          string   `json:"redirect_uri"           validate:"required,url"`
	IsPublic             bool     `json:"is_public"`
	OIDCEnabled          bool     `json:"oidc_enabled"`
	AllowedScopes        []string `json:"allowed_scopes"`
	AllowedGrantTypes    []string `json:"allowed_grant_types"`
	AllowedResponseTypes []string `json:"allowed_response_types"`
}

func (r *clientRequest) toInput() ports.ClientInput {
	return ports.ClientInput{
		Name:                 r.Name,
		Description:          r.Description,
		Website:              r.Website,
		RedirectURI:          r.RedirectURI,
		IsPublic:             r.IsPublic,
		OIDCEnabled:          r.OIDCEnabled,
		AllowedScopes:        r.AllowedScopes,
		AllowedGrantTypes:    r.AllowedGrantTypes,
		AllowedResponseTypes: r.AllowedResponseTypes,
	}
}

// clientResponse is the read shape: no secret field, ever.
type clientResponse struct {
	ID                   string    `json:"id"`
	ClientID             string    `json:"client_id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Website              string    `json:"website"`
	RedirectURI          string    `json:"redirect_uri"`
	IsPublic             bool      `json:"is_public"`
	OIDCEnabled          bool      `json:"oidc_enabled"`
	AllowedScopes        []string  `json:"allowed_scopes"`
	AllowedGrantTypes    []string  `json:"allowed_grant_types"`
	AllowedResponseTypes []string  `json:"allowed_response_types"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// clientDetailResponse adds the plaintext secret. Only Create and the
// regenerate endpoints produce it; the secret is not retrievable afterwards.
type clientDetailResponse struct {
	clientResponse
	ClientSecret string `json:"client_secret,omitempty"`
}

type listClientsResponse struct {
	Clients []clientResponse `json:"clients"`
	Total   int64            `json:"total"`
}

type deleteClientResponse struct {
	Success bool `json:"success"`
}

func clientFromDomain(c *domain.OAuthClient) clientResponse {
	return clientResponse{
		ID:                   c.ID,
		ClientID:             c.ClientID,
		Name:                 c.Name,
		Description:          c.Description,
		Website:              c.Website,
		RedirectURI:          c.RedirectURI,
		IsPublic:             c.IsPublic,
		OIDCEnabled:          c.OIDCEnabled,
		AllowedScopes:        c.AllowedScopes,
		AllowedGrantTypes:    c.AllowedGrantTypes,
		AllowedResponseTypes: c.AllowedResponseTypes,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

func clientDetailFromResult(detail *ports.ClientDetail) clientDetailResponse {
	return clientDetailResponse{
		clientResponse: clientFromDomain(&detail.Client),
		ClientSecret:   detail.Secret,
	}
}
