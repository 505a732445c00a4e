package handler

// --- Request / Response types ---

type registerRequest struct {
	Email       string `json:"email"         validate:"required,email,max=255"`
	Password    string `json:"password"      validate:"required,min=8,max=72"`
	FullName    string `json:"full_name"     validate:"required,min=2,max=255"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
}

type registerResponse struct {
	UserID string `json:"user_id"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// tokenPairResponse is shared by login and refresh: both mint a fresh
// access/refresh pair. The refresh token travels in the body, not a cookie.
type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	ExpireAt     int64  `json:"expire_at"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type logoutResponse struct {
	Success bool `json:"success"`
}

type logoutAllResponse struct {
	Success       bool  `json:"success"`
	SessionsEnded int64 `json:"sessions_ended"`
}
