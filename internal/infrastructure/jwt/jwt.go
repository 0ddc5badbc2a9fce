package jwt

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/apascualco/fleetway/internal/domain"
	"github.com/apascualco/fleetway/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
)

// Service validates and mints the RS256 service tokens that guard the
// control plane's mutating endpoints.
type Service struct {
	publicKey      *rsa.PublicKey
	privateKey     *rsa.PrivateKey
	issuer         string
	tokenTTL       time.Duration
	allowedIssuers []string
}

func NewService(cfg *config.Config) (*Service, error) {
	s := &Service{
		issuer:         cfg.JWTIssuer,
		tokenTTL:       cfg.JWTTokenTTL,
		allowedIssuers: cfg.JWTAllowedIssuers,
	}

	if cfg.JWTPublicKey != "" {
		pubKey, err := parseRSAPublicKey(cfg.JWTPublicKey)
		if err != nil {
			return nil, fmt.Errorf("failed to parse public key: %w", err)
		}
		s.publicKey = pubKey
	}

	if cfg.JWTPrivateKey != "" {
		privKey, err := parseRSAPrivateKey(cfg.JWTPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		s.privateKey = privKey

		if s.publicKey == nil {
			s.publicKey = &privKey.PublicKey
		}
	}

	return s, nil
}

func NewServiceWithKeys(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, issuer string, tokenTTL time.Duration, allowedIssuers []string) *Service {
	return &Service{
		privateKey:     privateKey,
		publicKey:      publicKey,
		issuer:         issuer,
		tokenTTL:       tokenTTL,
		allowedIssuers: allowedIssuers,
	}
}

// ValidateServiceToken parses and verifies a service token, returning
// the caller's service name.
func (s *Service) ValidateServiceToken(tokenString string) (string, error) {
	if s.publicKey == nil {
		return "", fmt.Errorf("public key not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", domain.ErrTokenMalformed, token.Header["alg"])
		}
		return s.publicKey, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return "", domain.ErrTokenInvalidSignature
		default:
			return "", fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
		}
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", domain.ErrTokenMalformed
	}

	claims := serviceClaimsFromMap(mapClaims)
	if err := claims.Valid(); err != nil {
		return "", err
	}
	if err := claims.ValidateIssuer(s.allowedIssuers); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// GenerateServiceToken mints a token for a service, used by operators
// and the client SDK.
func (s *Service) GenerateServiceToken(serviceName string, scopes []string) (string, error) {
	if s.privateKey == nil {
		return "", fmt.Errorf("private key not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": serviceName,
		"iss": s.issuer,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}
	if len(scopes) > 0 {
		claims["scopes"] = scopes
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.privateKey)
}

func serviceClaimsFromMap(m jwt.MapClaims) *domain.ServiceClaims {
	claims := &domain.ServiceClaims{}
	if sub, ok := m["sub"].(string); ok {
		claims.Subject = sub
	}
	if iss, ok := m["iss"].(string); ok {
		claims.Issuer = iss
	}
	if iat, ok := m["iat"].(float64); ok {
		claims.IssuedAt = int64(iat)
	}
	if exp, ok := m["exp"].(float64); ok {
		claims.ExpiresAt = int64(exp)
	}
	if nbf, ok := m["nbf"].(float64); ok {
		claims.NotBefore = int64(nbf)
	}
	if scopes, ok := m["scopes"].([]any); ok {
		for _, sc := range scopes {
			if str, ok := sc.(string); ok {
				claims.Scopes = append(claims.Scopes, str)
			}
		}
	}
	return claims
}

func parseRSAPublicKey(pemStr string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(normalizePEM(pemStr)))
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA public key")
	}
	return rsaPub, nil
}

func parseRSAPrivateKey(pemStr string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(normalizePEM(pemStr)))
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA private key")
	}
	return rsaKey, nil
}

// normalizePEM restores newlines in keys passed through single-line env
// vars.
func normalizePEM(pemStr string) string {
	return strings.ReplaceAll(pemStr, "\\n", "\n")
}
