package identity

// LoginRequest represents the payload of a sign-in request.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// MeResponse tells a client which player its token belongs to.
type MeResponse struct {
	Username    string `json:"username"`
	CurrentUser string `json:"currentUser"`
}
