package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/apascualco/fleetway/internal/domain"
	"github.com/apascualco/fleetway/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
)

func generateTestKeys() (string, string) {
	privateKey, _ := rsa.GenerateKey(rand.Reader, 2048)

	privBytes := x509.MarshalPKCS1PrivateKey(privateKey)
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: privBytes,
	})

	pubBytes, _ := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubBytes,
	})

	return string(privPEM), string(pubPEM)
}

func createTestService(t *testing.T) *Service {
	privPEM, pubPEM := generateTestKeys()

	cfg := &config.Config{
		JWTPrivateKey:     privPEM,
		JWTPublicKey:      pubPEM,
		JWTIssuer:         "fleetway",
		JWTTokenTTL:       5 * time.Minute,
		JWTAllowedIssuers: []string{"fleetway", "auth-service"},
	}

	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func TestNewService(t *testing.T) {
	privPEM, pubPEM := generateTestKeys()

	t.Run("with valid keys", func(t *testing.T) {
		cfg := &config.Config{
			JWTPrivateKey:     privPEM,
			JWTPublicKey:      pubPEM,
			JWTIssuer:         "fleetway",
			JWTTokenTTL:       5 * time.Minute,
			JWTAllowedIssuers: []string{"fleetway"},
		}

		svc, err := NewService(cfg)
		if err != nil {
			t.Fatalf("NewService() error = %v", err)
		}
		if svc.privateKey == nil {
			t.Error("privateKey should not be nil")
		}
		if svc.publicKey == nil {
			t.Error("publicKey should not be nil")
		}
	})

	t.Run("with only private key derives public key", func(t *testing.T) {
		cfg := &config.Config{
			JWTPrivateKey:     privPEM,
			JWTIssuer:         "fleetway",
			JWTTokenTTL:       5 * time.Minute,
			JWTAllowedIssuers: []string{"fleetway"},
		}

		svc, err := NewService(cfg)
		if err != nil {
			t.Fatalf("NewService() error = %v", err)
		}
		if svc.publicKey == nil {
			t.Error("publicKey should be derived from the private key")
		}
	})

	t.Run("with escaped newlines", func(t *testing.T) {
		cfg := &config.Config{
			JWTPrivateKey: strings.ReplaceAll(privPEM, "\n", "\\n"),
			JWTIssuer:     "fleetway",
			JWTTokenTTL:   5 * time.Minute,
		}

		if _, err := NewService(cfg); err != nil {
			t.Fatalf("single-line env var key should parse: %v", err)
		}
	})

	t.Run("with garbage key", func(t *testing.T) {
		cfg := &config.Config{JWTPrivateKey: "not-a-key"}
		if _, err := NewService(cfg); err == nil {
			t.Error("garbage key should be rejected")
		}
	})
}

func TestGenerateAndValidateServiceToken(t *testing.T) {
	svc := createTestService(t)

	tokenString, err := svc.GenerateServiceToken("auth-service", []string{"registry:write"})
	if err != nil {
		t.Fatalf("GenerateServiceToken() error = %v", err)
	}

	serviceName, err := svc.ValidateServiceToken(tokenString)
	if err != nil {
		t.Fatalf("ValidateServiceToken() error = %v", err)
	}
	if serviceName != "auth-service" {
		t.Errorf("expected subject auth-service, got %s", serviceName)
	}
}

func TestValidateServiceToken_Expired(t *testing.T) {
	svc := createTestService(t)

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "auth-service",
		"iss": "fleetway",
		"iat": now.Add(-2 * time.Hour).Unix(),
		"exp": now.Add(-1 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString(svc.privateKey)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := svc.ValidateServiceToken(tokenString); !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateServiceToken_IssuerNotAllowed(t *testing.T) {
	svc := createTestService(t)

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "auth-service",
		"iss": "rogue-issuer",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})
	tokenString, err := token.SignedString(svc.privateKey)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := svc.ValidateServiceToken(tokenString); !errors.Is(err, domain.ErrTokenIssuerNotAllowed) {
		t.Errorf("expected ErrTokenIssuerNotAllowed, got %v", err)
	}
}

func TestValidateServiceToken_WrongSigningMethod(t *testing.T) {
	svc := createTestService(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "auth-service",
		"iss": "fleetway",
	})
	tokenString, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := svc.ValidateServiceToken(tokenString); err == nil {
		t.Error("HMAC-signed token should be rejected")
	}
}

func TestValidateServiceToken_Garbage(t *testing.T) {
	svc := createTestService(t)

	if _, err := svc.ValidateServiceToken("not.a.token"); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Errorf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestGenerateServiceToken_NoPrivateKey(t *testing.T) {
	_, pubPEM := generateTestKeys()
	svc, err := NewService(&config.Config{JWTPublicKey: pubPEM})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	if _, err := svc.GenerateServiceToken("auth-service", nil); err == nil {
		t.Error("minting without a private key should fail")
	}
}
