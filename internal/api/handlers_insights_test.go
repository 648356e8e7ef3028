package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/terraincognita07/bloom/internal/flows"
	"github.com/terraincognita07/bloom/internal/services"
)

func TestSymptomForecastRequiresRecurringSymptom(t *testing.T) {
	t.Parallel()

	invoker := &stubFlowInvoker{result: json.RawMessage(`{"dailyForecast":[]}`)}
	app := newTestApp(t, invoker)

	response := app.do(t, http.MethodPost, "/api/insights/symptom-forecast", "user-1", nil)
	expectStatus(t, response, http.StatusUnprocessableEntity)

	for i := 0; i < 2; i++ {
		expectStatus(t, app.do(t, http.MethodPost, "/api/symptoms", "user-1", map[string]any{"symptomType": "Acne", "severity": 2}), http.StatusCreated)
	}
	expectStatus(t, app.do(t, http.MethodPost, "/api/symptoms", "user-1", map[string]any{"symptomType": "Cramps", "severity": 4}), http.StatusCreated)

	response = app.do(t, http.MethodPost, "/api/insights/symptom-forecast", "user-1", map[string]any{"targetSymptom": "Cramps"})
	expectStatus(t, response, http.StatusUnprocessableEntity)

	response = app.do(t, http.MethodPost, "/api/insights/symptom-forecast", "user-1", nil)
	expectStatus(t, response, http.StatusOK)
	insight := struct {
		Flow   string          `json:"flow"`
		Result json.RawMessage `json:"result"`
	}{}
	decodeJSON(t, response, &insight)
	if insight.Flow != flows.SymptomPredictor {
		t.Fatalf("expected %s, got %s", flows.SymptomPredictor, insight.Flow)
	}

	if len(invoker.calls) != 1 {
		t.Fatalf("expected one flow call, got %d", len(invoker.calls))
	}
	input, ok := invoker.calls[0].input.(services.SymptomForecastInput)
	if !ok {
		t.Fatalf("unexpected flow input %T", invoker.calls[0].input)
	}
	if input.TargetSymptom != "Acne" {
		t.Fatalf("expected first recurring symptom as target, got %q", input.TargetSymptom)
	}
	if !strings.Contains(input.HistoricalData, "Cramps") {
		t.Fatalf("expected full symptom history in flow input, got %s", input.HistoricalData)
	}
}

func TestRecoveryInsightSendsLowercasePhase(t *testing.T) {
	t.Parallel()

	invoker := &stubFlowInvoker{}
	app := newTestApp(t, invoker)

	response := app.do(t, http.MethodPost, "/api/insights/recovery", "user-1", nil)
	expectStatus(t, response, http.StatusOK)

	input, ok := invoker.calls[0].input.(services.RecoveryInput)
	if !ok {
		t.Fatalf("unexpected flow input %T", invoker.calls[0].input)
	}
	if input.CyclePhase != "unknown" {
		t.Fatalf("expected lowercase unknown phase, got %q", input.CyclePhase)
	}
	if !json.Valid([]byte(input.HealthSnapshot)) {
		t.Fatalf("expected snapshot to be a JSON string, got %q", input.HealthSnapshot)
	}
}

func TestInsightsWithoutFlowsEndpoint(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)

	response := app.do(t, http.MethodPost, "/api/insights/cycle-prediction", "user-1", nil)
	expectStatus(t, response, http.StatusServiceUnavailable)
}

func TestInsightFlowFailureMapsToBadGateway(t *testing.T) {
	t.Parallel()

	invoker := &stubFlowInvoker{err: &flows.FlowError{Flow: flows.CyclePredictor, Status: http.StatusInternalServerError}}
	app := newTestApp(t, invoker)

	response := app.do(t, http.MethodPost, "/api/insights/cycle-prediction", "user-1", nil)
	expectStatus(t, response, http.StatusBadGateway)
}

func TestInsightRateLimitPerUser(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &stubFlowInvoker{})

	for i := 0; i < insightAttemptLimit; i++ {
		expectStatus(t, app.do(t, http.MethodPost, "/api/insights/recovery", "busy-user", nil), http.StatusOK)
	}
	limited := app.do(t, http.MethodPost, "/api/insights/recovery", "busy-user", nil)
	expectStatus(t, limited, http.StatusTooManyRequests)
	if limited.Header.Get("Retry-After") == "" {
		t.Fatal("expected Retry-After on a limited response")
	}
	expectStatus(t, app.do(t, http.MethodPost, "/api/insights/recovery", "calm-user", nil), http.StatusOK)
}

func TestLabInsightsUseLoggedPanels(t *testing.T) {
	t.Parallel()

	invoker := &stubFlowInvoker{}
	app := newTestApp(t, invoker)

	response := app.do(t, http.MethodPost, "/api/insights/lab-analysis", "user-1", nil)
	expectStatus(t, response, http.StatusUnprocessableEntity)

	response = app.do(t, http.MethodPost, "/api/insights/pcos-subtype", "user-1", nil)
	expectStatus(t, response, http.StatusOK)

	response = app.do(t, http.MethodPost, "/api/labs", "user-1", map[string]any{
		"testType": "Hormone panel",
		"testDate": "2026-03-02",
		"results": []map[string]any{
			{"marker": "Testosterone", "value": "64", "unit": "ng/dL", "normalRange": "15-70"},
		},
	})
	expectStatus(t, response, http.StatusCreated)

	response = app.do(t, http.MethodPost, "/api/labs", "user-1", map[string]any{"testType": "Hormone panel", "testDate": "2026-03-02"})
	expectStatus(t, response, http.StatusUnprocessableEntity)
	response = app.do(t, http.MethodPost, "/api/labs", "user-1", map[string]any{"testType": "Hormone panel", "testDate": "March"})
	expectStatus(t, response, http.StatusBadRequest)

	response = app.do(t, http.MethodPost, "/api/insights/lab-analysis", "user-1", nil)
	expectStatus(t, response, http.StatusOK)

	last := invoker.calls[len(invoker.calls)-1]
	if last.flow != flows.LabResultAnalyzer {
		t.Fatalf("expected %s, got %s", flows.LabResultAnalyzer, last.flow)
	}
	input, ok := last.input.(services.LabResultAnalysisInput)
	if !ok {
		t.Fatalf("unexpected flow input %T", last.input)
	}
	if len(input.LabResults) != 1 || input.LabResults[0].TestDate != "2026-03-02" || input.LabResults[0].Results[0].Value != "64" {
		t.Fatalf("unexpected lab panels %#v", input.LabResults)
	}

	response = app.do(t, http.MethodPost, "/api/insights/lab-analysis", "user-2", nil)
	expectStatus(t, response, http.StatusUnprocessableEntity)
}
