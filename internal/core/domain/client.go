package domain

import (
	"errors"
	"time"
)

var ErrClientNotFound = errors.New("oauth client not found")
var ErrDuplicateClientID = errors.New("client_id already exists")
var ErrPublicClientSecret = errors.New("public clients have no client secret")
var ErrInvalidRedirectURI = errors.New("redirect_uri must be an absolute URL")
var ErrUnknownGrantType = errors.New("unknown grant type")
var ErrUnknownResponseType = errors.New("unknown response type")

// StandardScopes are the OIDC scopes the registry recognises out of the box.
// Custom free-form scopes are also accepted on clients.
var StandardScopes = []string{"openid", "profile", "email", "address", "phone", "offline_access"}

// allowedGrantTypes is the closed set of OAuth2 grant types a client may be
// configured with. Unlike scopes, unknown values are rejected.
var allowedGrantTypes = map[string]struct{}{
	"authorization_code": {},
	"refresh_token":      {},
	"client_credentials": {},
	"password":           {},
	"implicit":           {},
}

var allowedResponseTypes = map[string]struct{}{
	"code":           {},
	"token":          {},
	"id_token":       {},
	"id_token token": {},
	"code id_token":  {},
}

// ValidGrantType reports whether gt is in the allowed enumeration.
func ValidGrantType(gt string) bool {
	_, ok := allowedGrantTypes[gt]
	return ok
}

// ValidResponseType reports whether rt is in the allowed enumeration.
func ValidResponseType(rt string) bool {
	_, ok := allowedResponseTypes[rt]
	return ok
}

// OAuthClient is a registered OAuth2/OIDC application.
//
// ClientID is the public, immutable identifier handed to integrators.
// SecretHash is empty for public clients, which are never issued a secret;
// for confidential clients the plaintext secret is revealed exactly once at
// creation or regeneration and only its digest is kept.
type OAuthClient struct {
	ID                   string    `json:"id" bson:"_id,omitempty"`
	ClientID             string    `json:"client_id" bson:"client_id"`
	SecretHash           string    `json:"-" bson:"secret_hash,omitempty"`
	Name                 string    `json:"name" bson:"name"`
	Description          string    `json:"description,omitempty" bson:"description,omitempty"`
	Website              string    `json:"website,omitempty" bson:"website,omitempty"`
	RedirectURI          string    `json:"redirect_uri" bson:"redirect_uri"`
	IsPublic             bool      `json:"is_public" bson:"is_public"`
	OIDCEnabled          bool      `json:"oidc_enabled" bson:"oidc_enabled"`
	AllowedScopes        []string  `json:"allowed_scopes" bson:"allowed_scopes"`
	AllowedGrantTypes    []string  `json:"allowed_grant_types" bson:"allowed_grant_types"`
	AllowedResponseTypes []string  `json:"allowed_response_types" bson:"allowed_response_types"`
	CreatedAt            time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" bson:"updated_at"`
}
