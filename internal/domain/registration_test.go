package domain

import (
	"strings"
	"testing"
)

func TestRegisterRequest_Validate(t *testing.T) {
	valid := RegisterRequest{
		ServiceName:    "auth-service",
		ServiceURL:     "http://auth:8080",
		HealthCheckURL: "https://auth:8080/healthz",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"empty name", RegisterRequest{ServiceURL: "http://x:1"}},
		{"uppercase name", RegisterRequest{ServiceName: "Auth-Service", ServiceURL: "http://x:1"}},
		{"underscore name", RegisterRequest{ServiceName: "auth_service", ServiceURL: "http://x:1"}},
		{"leading hyphen", RegisterRequest{ServiceName: "-auth", ServiceURL: "http://x:1"}},
		{"trailing hyphen", RegisterRequest{ServiceName: "auth-", ServiceURL: "http://x:1"}},
		{"name too long", RegisterRequest{ServiceName: strings.Repeat("a", 101), ServiceURL: "http://x:1"}},
		{"missing url", RegisterRequest{ServiceName: "auth-service"}},
		{"relative url", RegisterRequest{ServiceName: "auth-service", ServiceURL: "/auth"}},
		{"wrong scheme", RegisterRequest{ServiceName: "auth-service", ServiceURL: "ftp://x:1"}},
		{"bad health url", RegisterRequest{ServiceName: "auth-service", ServiceURL: "http://x:1", HealthCheckURL: "healthz"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.req.Validate(); err == nil {
				t.Errorf("expected rejection for %+v", tc.req)
			}
		})
	}
}

func TestValidateServiceName_Boundary(t *testing.T) {
	if err := ValidateServiceName(strings.Repeat("a", 100)); err != nil {
		t.Errorf("100 characters should be allowed: %v", err)
	}
	if err := ValidateServiceName("a"); err != nil {
		t.Errorf("single character should be allowed: %v", err)
	}
	if err := ValidateServiceName("svc-1-beta-2"); err != nil {
		t.Errorf("hyphenated alphanumerics should be allowed: %v", err)
	}
}

func TestHealthUpdateRequest_Validate(t *testing.T) {
	for _, status := range []ServiceStatus{StatusHealthy, StatusUnhealthy, StatusUnknown} {
		req := HealthUpdateRequest{Status: status}
		if err := req.Validate(); err != nil {
			t.Errorf("status %s should be allowed: %v", status, err)
		}
	}

	bad := HealthUpdateRequest{Status: "degraded"}
	if err := bad.Validate(); err == nil {
		t.Error("unknown status value should be rejected")
	}

	negative := -1.0
	req := HealthUpdateRequest{Status: StatusHealthy, ResponseTimeMs: &negative}
	if err := req.Validate(); err == nil {
		t.Error("negative response time should be rejected")
	}
}
