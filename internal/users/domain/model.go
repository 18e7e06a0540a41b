package domain

// APIKey is the single active credential of the current user.
type APIKey struct {
	APIKey string `json:"api_key"`
}

// APIKeyRequest asks the backend to issue a key and deliver it to Email.
type APIKeyRequest struct {
	Email string `json:"email"`
}

// SaveAPIKeyRequest stores APIKey as the caller's active key.
type SaveAPIKeyRequest struct {
	APIKey string `json:"api_key"`
}
