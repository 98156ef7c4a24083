package models

// JWTClaims represents the claims extracted from an identity provider token
type JWTClaims struct {
	Sub   string `json:"sub"`   // Subject (user ID from provider)
	Email string `json:"email"` // User email
	Name  string `json:"name"`  // User name
	Exp   int64  `json:"exp"`   // Expiration time
	Iss   string `json:"iss"`   // Issuer
}

// User converts the claims into the principal used for task ownership
func (c *JWTClaims) User() *User {
	return &User{ID: c.Sub, Email: c.Email, Name: c.Name}
}
