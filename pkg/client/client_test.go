package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func controlPlaneStub(t *testing.T, registers *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/registry/services", func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		registers.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(ServiceRecord{
			ServiceName: req.ServiceName,
			ServiceURL:  req.ServiceURL,
			Status:      "unknown",
		})
	})
	mux.HandleFunc("DELETE /api/v1/registry/services/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"deregistered": true})
	})
	mux.HandleFunc("GET /api/v1/registry/services/healthy", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ServiceList{
			Services: []ServiceRecord{{ServiceName: "auth-service", Status: "healthy"}},
			Total:    1,
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient_Register(t *testing.T) {
	var registers atomic.Int64
	server := controlPlaneStub(t, &registers)

	c, err := New(server.URL, "auth-service", "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Shutdown()

	rec, err := c.Register(context.Background(), RegisterRequest{
		ServiceName: "auth-service",
		ServiceURL:  "http://auth:8080",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if rec.ServiceName != "auth-service" {
		t.Errorf("expected service_name auth-service, got %s", rec.ServiceName)
	}

	if _, err := c.Register(context.Background(), RegisterRequest{}); err == nil {
		t.Error("double Register without Shutdown should fail")
	}
}

func TestClient_KeepAliveReRegisters(t *testing.T) {
	var registers atomic.Int64
	server := controlPlaneStub(t, &registers)

	c, err := New(server.URL, "auth-service", "", WithKeepAliveInterval(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := c.Register(context.Background(), RegisterRequest{
		ServiceName: "auth-service",
		ServiceURL:  "http://auth:8080",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for registers.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	c.Shutdown()

	if got := registers.Load(); got < 3 {
		t.Errorf("expected at least 3 registrations via keep-alive, got %d", got)
	}

	// No further registrations after Shutdown.
	after := registers.Load()
	time.Sleep(100 * time.Millisecond)
	if registers.Load() != after {
		t.Error("keep-alive must stop after Shutdown")
	}
}

func TestClient_Healthy(t *testing.T) {
	var registers atomic.Int64
	server := controlPlaneStub(t, &registers)

	c, err := New(server.URL, "auth-service", "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	services, err := c.Healthy(context.Background())
	if err != nil {
		t.Fatalf("Healthy() error = %v", err)
	}
	if len(services) != 1 || services[0].ServiceName != "auth-service" {
		t.Errorf("unexpected healthy list: %v", services)
	}
}

func TestClient_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	c, err := New(server.URL, "auth-service", "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := c.Register(context.Background(), RegisterRequest{}); err != ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClient_BadPrivateKey(t *testing.T) {
	if _, err := New("http://localhost:8080", "auth-service", "garbage"); err == nil {
		t.Error("garbage private key should be rejected")
	}
}
