package config

import "os"

type JwtConfig struct {
	Secret string
}

// NewJwtConfig reads the HMAC secret used to verify bearer tokens. An empty
// secret disables the protected HTTP routes.
func NewJwtConfig() *JwtConfig {
	return &JwtConfig{
		Secret: os.Getenv("JWT_SECRET"),
	}
}
