package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/apascualco/fleetway/internal/application"
	"github.com/apascualco/fleetway/internal/domain"
	"github.com/gin-gonic/gin"
)

func setupFlagsRouter(flags *application.Flags) *gin.Engine {
	router := gin.New()
	handler := NewFlagsHandler(flags)
	router.POST("/api/v1/flags", handler.Create)
	router.GET("/api/v1/flags", handler.List)
	router.GET("/api/v1/flags/:name", handler.Get)
	router.PUT("/api/v1/flags/:name", handler.Update)
	router.DELETE("/api/v1/flags/:name", handler.Delete)
	router.POST("/api/v1/flags/evaluate", handler.Evaluate)
	return router
}

func TestFlagsHandler_Create(t *testing.T) {
	router := setupFlagsRouter(newTestFlags())

	body := domain.FlagRequest{
		Name:              "new_checkout",
		Environment:       "production",
		IsEnabled:         true,
		RolloutPercentage: 50,
	}
	resp := doJSON(router, "POST", "/api/v1/flags", body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	// Duplicate in the same environment conflicts.
	resp = doJSON(router, "POST", "/api/v1/flags", body)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
	var errBody map[string]string
	json.Unmarshal(resp.Body.Bytes(), &errBody)
	if errBody["error"] != "flag_exists" {
		t.Errorf("expected error flag_exists, got %s", errBody["error"])
	}
}

func TestFlagsHandler_Create_Invalid(t *testing.T) {
	router := setupFlagsRouter(newTestFlags())

	cases := []struct {
		name string
		body any
	}{
		{"missing name", map[string]any{"environment": "production"}},
		{"bad name", map[string]any{"name": "Bad-Name", "environment": "production"}},
		{"bad environment", map[string]any{"name": "beta", "environment": "qa"}},
		{"bad rollout", map[string]any{"name": "beta", "environment": "production", "rollout_percentage": 150}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(router, "POST", "/api/v1/flags", tc.body)
			if resp.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d: %s", resp.Code, resp.Body.String())
			}
		})
	}
}

func TestFlagsHandler_Get_EnvironmentQuery(t *testing.T) {
	router := setupFlagsRouter(newTestFlags())

	doJSON(router, "POST", "/api/v1/flags", domain.FlagRequest{Name: "beta", Environment: "staging"})

	// Default environment is production: the staging flag is invisible
	// without the query parameter.
	resp := doJSON(router, "GET", "/api/v1/flags/beta", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}

	resp = doJSON(router, "GET", "/api/v1/flags/beta?environment=staging", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestFlagsHandler_List(t *testing.T) {
	router := setupFlagsRouter(newTestFlags())

	for _, name := range []string{"alpha", "beta"} {
		doJSON(router, "POST", "/api/v1/flags", domain.FlagRequest{Name: name, Environment: "production"})
	}

	resp := doJSON(router, "GET", "/api/v1/flags?environment=production", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var body struct {
		Flags []domain.FeatureFlag `json:"flags"`
		Total int                  `json:"total"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Total != 2 {
		t.Errorf("expected 2 flags, got %d", body.Total)
	}
}

func TestFlagsHandler_Update(t *testing.T) {
	router := setupFlagsRouter(newTestFlags())

	doJSON(router, "POST", "/api/v1/flags", domain.FlagRequest{Name: "beta", Environment: "production"})

	resp := doJSON(router, "PUT", "/api/v1/flags/beta", map[string]any{"is_enabled": true})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var flag domain.FeatureFlag
	json.Unmarshal(resp.Body.Bytes(), &flag)
	if !flag.IsEnabled {
		t.Error("expected the flag to be enabled")
	}

	resp = doJSON(router, "PUT", "/api/v1/flags/missing", map[string]any{"is_enabled": true})
	if resp.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", resp.Code)
	}
}

func TestFlagsHandler_Delete(t *testing.T) {
	router := setupFlagsRouter(newTestFlags())

	doJSON(router, "POST", "/api/v1/flags", domain.FlagRequest{Name: "beta", Environment: "production"})

	resp := doJSON(router, "DELETE", "/api/v1/flags/beta", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	resp = doJSON(router, "DELETE", "/api/v1/flags/beta", nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("second delete should 404, got %d", resp.Code)
	}
}

func TestFlagsHandler_Evaluate(t *testing.T) {
	router := setupFlagsRouter(newTestFlags())

	doJSON(router, "POST", "/api/v1/flags", domain.FlagRequest{
		Name:        "beta",
		Environment: "production",
		IsEnabled:   true,
		TargetUsers: []string{"u1"},
	})

	resp := doJSON(router, "POST", "/api/v1/flags/evaluate", map[string]string{
		"flag_name":   "beta",
		"environment": "production",
		"user_id":     "u1",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Enabled     bool   `json:"enabled"`
		Reason      string `json:"reason"`
		FlagName    string `json:"flag_name"`
		Environment string `json:"environment"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !body.Enabled || body.Reason != domain.ReasonUserTargeted {
		t.Errorf("expected enabled/user_targeted, got %+v", body)
	}
	if body.FlagName != "beta" || body.Environment != "production" {
		t.Errorf("evaluation should echo flag and environment, got %+v", body)
	}

	// Missing flags evaluate to disabled instead of failing.
	resp = doJSON(router, "POST", "/api/v1/flags/evaluate", map[string]string{
		"flag_name":   "missing",
		"environment": "production",
		"user_id":     "u1",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	json.Unmarshal(resp.Body.Bytes(), &body)
	if body.Enabled || body.Reason != domain.ReasonFlagNotFound {
		t.Errorf("expected disabled/flag_not_found, got %+v", body)
	}

	resp = doJSON(router, "POST", "/api/v1/flags/evaluate", map[string]string{
		"flag_name":   "beta",
		"environment": "qa",
		"user_id":     "u1",
	})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("unknown environment should be rejected, got %d", resp.Code)
	}
}
