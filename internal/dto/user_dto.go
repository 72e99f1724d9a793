package dto

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=8"`
	Coins    int64  `json:"coins" binding:"omitempty,gte=0"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type UpdateUserRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=50"`
	Email    *string `json:"email" binding:"omitempty,email,max=100"`
	Password *string `json:"password" binding:"omitempty,min=8"`
	IsActive *bool   `json:"is_active"`
}

// CoinsRequest carries a coin amount for the balance endpoints. Negative
// amounts are rejected here, before the ledger is reached.
type CoinsRequest struct {
	Amount int64 `json:"amount" binding:"gte=0"`
}
