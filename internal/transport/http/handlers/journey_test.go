package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"hrapp/internal/app/server"
	"hrapp/internal/domain/auth"
	"hrapp/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func testConfig(t *testing.T, dbURL string) config.Config {
	t.Helper()
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		Environment:        "test",
		SeedTenantName:     "Test Tenant",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		ReportsDir:         t.TempDir(),
	}
}

func TestAssessmentAndSurveyJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(t, dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	dimensionName := fmt.Sprintf("Strategic Thinking %d", time.Now().UnixNano())
	dimensionID := createDimension(t, client, ts.URL, token, dimensionName)

	profileName := fmt.Sprintf("Senior Engineer %d", time.Now().UnixNano())
	profileID := createProfile(t, client, ts.URL, token, profileName)

	postJSON(t, client, ts.URL+"/api/v1/profiles/"+profileID+"/dimensions/"+dimensionID, token, map[string]any{
		"weight":   20,
		"critical": true,
	})

	eval := evaluateProfile(t, client, ts.URL, token, profileID, map[string]float64{
		dimensionID: 4.5,
	})
	if eval.SuccessScore <= 0 {
		t.Fatalf("expected positive success score, got %f", eval.SuccessScore)
	}
	if !eval.MeetsMinimum {
		t.Fatal("expected a 4.5/5 observation to clear the minimum threshold")
	}

	surveyTitle := fmt.Sprintf("Quarterly Pulse %d", time.Now().UnixNano())
	surveyID := createSurvey(t, client, ts.URL, token, surveyTitle)

	postJSON(t, client, ts.URL+"/api/v1/surveys/"+surveyID+"/questions", token, map[string]any{
		"text":        "How clear are team priorities?",
		"type":        "likert_5",
		"dimensionId": dimensionID,
		"required":    true,
	})

	if got := transitionSurvey(t, client, ts.URL, token, surveyID, "published"); got != "published" {
		t.Fatalf("expected published, got %s", got)
	}
	if got := transitionSurvey(t, client, ts.URL, token, surveyID, "active"); got != "active" {
		t.Fatalf("expected active, got %s", got)
	}

	responseID := startResponse(t, client, ts.URL, token, surveyID)
	putJSON(t, client, ts.URL+"/api/v1/surveys/"+surveyID+"/responses/"+responseID+"/progress", token, map[string]any{
		"completionPercentage": 60,
	})

	idemKey := fmt.Sprintf("submit-%d", time.Now().UnixNano())
	first := submitResponse(t, client, ts.URL, token, surveyID, responseID, idemKey)
	replay := submitResponse(t, client, ts.URL, token, surveyID, responseID, idemKey)
	if first != replay {
		t.Fatalf("expected idempotent submit to replay response %s, got %s", first, replay)
	}

	stats := getJSON(t, client, ts.URL+"/api/v1/surveys/"+surveyID+"/statistics", token)
	var statsPayload map[string]any
	if err := json.Unmarshal(stats.Data, &statsPayload); err != nil {
		t.Fatalf("failed to decode statistics: %v", err)
	}
	if submitted, _ := statsPayload["submittedResponses"].(float64); submitted < 1 {
		t.Fatalf("expected at least one submitted response, got %v", statsPayload["submittedResponses"])
	}

	if got := transitionSurvey(t, client, ts.URL, token, surveyID, "completed"); got != "completed" {
		t.Fatalf("expected completed, got %s", got)
	}
	if got := transitionSurvey(t, client, ts.URL, token, surveyID, "archived"); got != "archived" {
		t.Fatalf("expected archived, got %s", got)
	}
}

func TestSurveyRejectsIllegalTransition(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(t, dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	surveyID := createSurvey(t, client, ts.URL, token, fmt.Sprintf("Draft Jump %d", time.Now().UnixNano()))
	postJSONStatus(t, client, ts.URL+"/api/v1/surveys/"+surveyID+"/transition", token, map[string]any{
		"status": "active",
	}, http.StatusConflict)
}

func TestEmployeeCannotManageDimensions(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(t, dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ctx := context.Background()
	var tenantID string
	if err := app.DB.QueryRow(ctx, "SELECT id FROM tenants WHERE name = $1", cfg.SeedTenantName).Scan(&tenantID); err != nil {
		t.Fatalf("failed to load tenant: %v", err)
	}

	var employeeRoleID string
	if err := app.DB.QueryRow(ctx, "SELECT id FROM roles WHERE tenant_id = $1 AND name = $2", tenantID, auth.RoleEmployee).Scan(&employeeRoleID); err != nil {
		t.Fatalf("failed to load employee role: %v", err)
	}

	employeeEmail := fmt.Sprintf("employee-%d@example.com", time.Now().UnixNano())
	employeePassword := "Employee123!"
	hash, err := auth.HashPassword(employeePassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if _, err := app.DB.Exec(ctx, `
    INSERT INTO users (tenant_id, email, password_hash, role_id)
    VALUES ($1,$2,$3,$4)
  `, tenantID, employeeEmail, hash, employeeRoleID); err != nil {
		t.Fatalf("failed to create employee user: %v", err)
	}

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	token := login(t, ts.Client(), ts.URL, employeeEmail, employeePassword)
	postJSONStatus(t, ts.Client(), ts.URL+"/api/v1/dimensions", token, map[string]any{
		"name":        "Forbidden Dimension",
		"category":    "technical",
		"scaleFamily": "likert_5",
	}, http.StatusForbidden)
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func createDimension(t *testing.T, client *http.Client, baseURL, token, name string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/dimensions", token, map[string]any{
		"name":        name,
		"description": "Ability to reason beyond the current sprint",
		"category":    "technical",
		"scaleFamily": "likert_5",
		"weight":      15,
	})
	return idFrom(t, resp, "dimension")
}

func createProfile(t *testing.T, client *http.Client, baseURL, token, name string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/profiles", token, map[string]any{
		"name":               name,
		"description":        "Expectations for senior engineers",
		"scopeType":          "company_wide",
		"minSuccessScore":    50,
		"targetSuccessScore": 75,
	})
	return idFrom(t, resp, "profile")
}

type evaluationResult struct {
	SuccessScore float64 `json:"successScore"`
	MeetsMinimum bool    `json:"meetsMinimum"`
	MeetsTarget  bool    `json:"meetsTarget"`
}

func evaluateProfile(t *testing.T, client *http.Client, baseURL, token, profileID string, observations map[string]float64) evaluationResult {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/profiles/"+profileID+"/evaluate", token, map[string]any{
		"subject":      "candidate-1",
		"observations": observations,
	})
	var eval evaluationResult
	if err := json.Unmarshal(resp.Data, &eval); err != nil {
		t.Fatalf("failed to decode evaluation: %v", err)
	}
	return eval
}

func createSurvey(t *testing.T, client *http.Client, baseURL, token, title string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/surveys", token, map[string]any{
		"title":      title,
		"kind":       "engagement",
		"repeatable": true,
	})
	return idFrom(t, resp, "survey")
}

func transitionSurvey(t *testing.T, client *http.Client, baseURL, token, surveyID, to string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/surveys/"+surveyID+"/transition", token, map[string]any{
		"status": to,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode transition response: %v", err)
	}
	status, _ := payload["status"].(string)
	return status
}

func startResponse(t *testing.T, client *http.Client, baseURL, token, surveyID string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/surveys/"+surveyID+"/responses", token, nil)
	return idFrom(t, resp, "response")
}

func submitResponse(t *testing.T, client *http.Client, baseURL, token, surveyID, responseID, idemKey string) string {
	t.Helper()
	body, err := json.Marshal(map[string]any{"totalScore": 42.0})
	if err != nil {
		t.Fatalf("failed to marshal submit body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/surveys/"+surveyID+"/responses/"+responseID+"/submit", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Idempotency-Key", idemKey)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return idFrom(t, env, "submitted response")
}

func idFrom(t *testing.T, resp envelope, what string) string {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode %s response: %v", what, err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatalf("expected %s id", what)
	}
	return id
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, token, body, 0)
}

func putJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPut, url, token, body, 0)
}

func postJSONStatus(t *testing.T, client *http.Client, url, token string, body any, want int) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, token, body, want)
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any, wantStatus int) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if wantStatus != 0 {
		if resp.StatusCode != wantStatus {
			t.Fatalf("expected status %d, got %d: %s", wantStatus, resp.StatusCode, string(raw))
		}
	} else if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}
