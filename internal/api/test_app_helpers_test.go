package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bloom/internal/db"
	"github.com/terraincognita07/bloom/internal/services"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

type recordedFlowCall struct {
	flow  string
	input any
}

type stubFlowInvoker struct {
	mu     sync.Mutex
	calls  []recordedFlowCall
	result json.RawMessage
	err    error
}

func (stub *stubFlowInvoker) Invoke(_ context.Context, flowName string, input any) (json.RawMessage, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.calls = append(stub.calls, recordedFlowCall{flow: flowName, input: input})
	if stub.err != nil {
		return nil, stub.err
	}
	if stub.result == nil {
		return json.RawMessage(`{"ok":true}`), nil
	}
	return stub.result, nil
}

type testApp struct {
	app   *fiber.App
	flows *stubFlowInvoker
	key   []byte
	repos *db.Repositories
}

func newTestApp(t *testing.T, invoker services.FlowInvoker) *testApp {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "bloom-api-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	repos := db.NewRepositories(database)
	fetcher := services.NewWindowFetcher(db.NewHealthStreams(repos), nil)
	handler, err := NewHandler(testSecretKey, time.UTC, Dependencies{
		Summary:   services.NewSummaryService(fetcher),
		Dashboard: services.NewDashboardService(fetcher, time.UTC),
		Insights:  services.NewInsightService(fetcher, invoker, time.UTC),
		Logs:      services.NewLogService(repos.Cycles, repos.Symptoms, repos.Nutrition, repos.Fitness, repos.CheckIns, repos.LabResults, time.UTC),
		Chats:     repos.TelegramChats,
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)

	stub, _ := invoker.(*stubFlowInvoker)
	return &testApp{app: app, flows: stub, key: handler.signingKey, repos: repos}
}

func (app *testApp) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := IssueToken(app.key, userID, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (app *testApp) do(t *testing.T, method string, path string, userID string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	if userID != "" {
		request.Header.Set("Authorization", "Bearer "+app.token(t, userID))
	}

	response, err := app.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func expectStatus(t *testing.T, response *http.Response, want int) {
	t.Helper()
	if response.StatusCode != want {
		payload, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status %d, got %d: %s", want, response.StatusCode, string(payload))
	}
}

func decodeJSON(t *testing.T, response *http.Response, target any) {
	t.Helper()
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func readAPIError(t *testing.T, response *http.Response) string {
	t.Helper()
	payload := map[string]string{}
	decodeJSON(t, response, &payload)
	return payload["error"]
}
