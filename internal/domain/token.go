package domain

import (
	"fmt"
	"time"
)

// ServiceClaims identify a service calling the control plane's mutating
// endpoints. Subject is the caller's service name.
type ServiceClaims struct {
	Subject   string   `json:"sub"`
	Issuer    string   `json:"iss"`
	Scopes    []string `json:"scopes,omitempty"`
	IssuedAt  int64    `json:"iat"`
	ExpiresAt int64    `json:"exp"`
	NotBefore int64    `json:"nbf,omitempty"`
}

func (c *ServiceClaims) Valid() error {
	now := time.Now().Unix()

	if c.ExpiresAt != 0 && now > c.ExpiresAt {
		return ErrTokenExpired
	}

	if c.NotBefore != 0 && now < c.NotBefore {
		return ErrTokenNotYetValid
	}

	if c.Subject == "" {
		return ErrTokenInvalidSubject
	}

	if c.Issuer == "" {
		return ErrTokenInvalidIssuer
	}

	return nil
}

func (c *ServiceClaims) ValidateIssuer(allowedIssuers []string) error {
	for _, allowed := range allowedIssuers {
		if c.Issuer == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s not in allowed list", ErrTokenIssuerNotAllowed, c.Issuer)
}

func (c *ServiceClaims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
