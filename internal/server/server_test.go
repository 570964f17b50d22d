package server

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deedflow/internal/common/config"
	stderrors "deedflow/internal/common/errors"
	"deedflow/internal/common/logger"
	"deedflow/internal/contract"
	"deedflow/internal/pandadoc"
	"deedflow/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStreamer struct {
	streamFn func(ctx context.Context, system, prompt string, w io.Writer) error
}

func (f *fakeStreamer) StreamCompletion(ctx context.Context, system, prompt string, w io.Writer) error {
	return f.streamFn(ctx, system, prompt, w)
}

type fakeRenderer struct {
	renderFn func(text, propertyAddress string) ([]byte, error)
}

func (f *fakeRenderer) Render(text, propertyAddress string) ([]byte, error) {
	return f.renderFn(text, propertyAddress)
}

type fakeDispatcher struct {
	createAndSendFn func(ctx context.Context, pdfData []byte, form contract.FormData) (*pandadoc.SendResult, error)
	getDocumentFn   func(ctx context.Context, documentID string) (*pandadoc.Document, error)
}

func (f *fakeDispatcher) CreateAndSend(ctx context.Context, pdfData []byte, form contract.FormData) (*pandadoc.SendResult, error) {
	return f.createAndSendFn(ctx, pdfData, form)
}

func (f *fakeDispatcher) GetDocument(ctx context.Context, documentID string) (*pandadoc.Document, error) {
	if f.getDocumentFn == nil {
		return &pandadoc.Document{ID: documentID, Status: pandadoc.StatusSent}, nil
	}
	return f.getDocumentFn(ctx, documentID)
}

type fakeEvents struct {
	handleFn func(ctx context.Context, events []pandadoc.WebhookEvent) error
}

func (f *fakeEvents) HandleBatch(ctx context.Context, events []pandadoc.WebhookEvent) error {
	return f.handleFn(ctx, events)
}

type fakeMailer struct {
	sent []struct{ To, Subject string }
}

func (f *fakeMailer) Send(_ context.Context, to, subject, _ string) (string, error) {
	f.sent = append(f.sent, struct{ To, Subject string }{to, subject})
	return "msg-id", nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "deedflow-test", Environment: "test"},
		PandaDoc: config.PandaDocConfig{
			WebhookSecret: "hook-secret",
		},
	}
}

func defaultDeps() Deps {
	return Deps{
		Streamer: &fakeStreamer{streamFn: func(_ context.Context, _, _ string, w io.Writer) error {
			_, err := io.WriteString(w, "CONTRACT TEXT")
			return err
		}},
		Renderer: &fakeRenderer{renderFn: func(_, _ string) ([]byte, error) {
			return []byte("%PDF-fake"), nil
		}},
		Dispatcher: &fakeDispatcher{createAndSendFn: func(_ context.Context, _ []byte, _ contract.FormData) (*pandadoc.SendResult, error) {
			return &pandadoc.SendResult{ID: "doc-123"}, nil
		}},
		Events: &fakeEvents{handleFn: func(_ context.Context, _ []pandadoc.WebhookEvent) error {
			return nil
		}},
		Mailer:    &fakeMailer{},
		Contracts: store.NewMemoryStore(),
	}
}

func newTestEngine(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	return New(testConfig(), logger.NewTestLogger(t), deps).Engine()
}

func validFormJSON() map[string]interface{} {
	return map[string]interface{}{
		"brokerName":         "Bob Broker",
		"brokerEmail":        "bob@brokerage.test",
		"agentName":          "Alice Agent",
		"agentEmail":         "alice@agency.test",
		"buyerName":          "Betty Buyer",
		"buyerEmail":         "betty@buyers.test",
		"sellerName":         "Sam Seller",
		"sellerEmail":        "sam@sellers.test",
		"propertyAddress":    "12 Elm St, Springfield",
		"offerPrice":         450000,
		"downPaymentPercent": 20,
		"loanType":           "Conventional",
	}
}

func doJSON(engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doJSON(newTestEngine(t, defaultDeps()), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "deedflow-test")
}

func TestGenerate(t *testing.T) {
	t.Run("streams contract text", func(t *testing.T) {
		deps := defaultDeps()
		var capturedPrompt string
		deps.Streamer = &fakeStreamer{streamFn: func(_ context.Context, system, prompt string, w io.Writer) error {
			capturedPrompt = prompt
			assert.Contains(t, system, "real estate attorney")
			io.WriteString(w, "RESIDENTIAL ")
			io.WriteString(w, "PURCHASE AGREEMENT")
			return nil
		}}

		rec := doJSON(newTestEngine(t, deps), http.MethodPost, "/api/generate", validFormJSON())

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
		assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
		assert.Equal(t, "RESIDENTIAL PURCHASE AGREEMENT", rec.Body.String())
		assert.Contains(t, capturedPrompt, "12 Elm St, Springfield")
	})

	t.Run("invalid form is a 400", func(t *testing.T) {
		form := validFormJSON()
		delete(form, "propertyAddress")

		rec := doJSON(newTestEngine(t, defaultDeps()), http.MethodPost, "/api/generate", form)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "propertyAddress")
	})

	t.Run("failure before first byte is a clean 500", func(t *testing.T) {
		deps := defaultDeps()
		deps.Streamer = &fakeStreamer{streamFn: func(_ context.Context, _, _ string, _ io.Writer) error {
			return stderrors.NewLLMStreamFailed(http.StatusTooManyRequests, "overloaded")
		}}

		rec := doJSON(newTestEngine(t, deps), http.MethodPost, "/api/generate", validFormJSON())

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Failed to generate contract")
	})

	t.Run("failure mid-stream aborts the connection", func(t *testing.T) {
		deps := defaultDeps()
		deps.Streamer = &fakeStreamer{streamFn: func(_ context.Context, _, _ string, w io.Writer) error {
			io.WriteString(w, "PARTIAL")
			return stderrors.NewLLMStreamBroken(errors.New("upstream reset"))
		}}
		engine := newTestEngine(t, deps)

		raw, _ := json.Marshal(validFormJSON())
		req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader(raw))
		rec := httptest.NewRecorder()

		assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
			engine.ServeHTTP(rec, req)
		})
		assert.Equal(t, "PARTIAL", rec.Body.String())
	})
}

func TestSendContract(t *testing.T) {
	sendBody := func(form map[string]interface{}) map[string]interface{} {
		return map[string]interface{}{
			"contractText": "RESIDENTIAL PURCHASE AGREEMENT ...",
			"formData":     form,
		}
	}

	t.Run("dispatches and persists", func(t *testing.T) {
		deps := defaultDeps()
		mailer := &fakeMailer{}
		deps.Mailer = mailer
		contracts := store.NewMemoryStore()
		deps.Contracts = contracts

		rec := doJSON(newTestEngine(t, deps), http.MethodPost, "/api/send-contract", sendBody(validFormJSON()))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["success"])
		assert.Equal(t, "doc-123", resp["pandaDocId"])
		assert.NotContains(t, resp, "sandboxSkipped")

		record, err := contracts.Get(context.Background(), "doc-123")
		require.NoError(t, err)
		assert.Equal(t, "12 Elm St, Springfield", record.PropertyAddress)

		require.Len(t, mailer.sent, 1)
		assert.Equal(t, "alice@agency.test", mailer.sent[0].To)
		assert.Equal(t, "Sent to Broker — Purchase Agreement — 12 Elm St, Springfield", mailer.sent[0].Subject)
	})

	t.Run("sandbox skip is surfaced", func(t *testing.T) {
		deps := defaultDeps()
		deps.Dispatcher = &fakeDispatcher{createAndSendFn: func(_ context.Context, _ []byte, _ contract.FormData) (*pandadoc.SendResult, error) {
			return &pandadoc.SendResult{ID: "doc-123", SandboxSkipped: true}, nil
		}}

		rec := doJSON(newTestEngine(t, deps), http.MethodPost, "/api/send-contract", sendBody(validFormJSON()))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"sandboxSkipped":true`)
	})

	t.Run("dispatch failure is a 500", func(t *testing.T) {
		deps := defaultDeps()
		deps.Dispatcher = &fakeDispatcher{createAndSendFn: func(_ context.Context, _ []byte, _ contract.FormData) (*pandadoc.SendResult, error) {
			return nil, stderrors.NewDocumentCreateFailed(http.StatusBadRequest, "invalid recipients")
		}}

		rec := doJSON(newTestEngine(t, deps), http.MethodPost, "/api/send-contract", sendBody(validFormJSON()))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Failed to send contract")
	})

	t.Run("missing contract text is a 400", func(t *testing.T) {
		body := sendBody(validFormJSON())
		body["contractText"] = "   "

		rec := doJSON(newTestEngine(t, defaultDeps()), http.MethodPost, "/api/send-contract", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "contractText")
	})

	t.Run("invalid form is a 400", func(t *testing.T) {
		form := validFormJSON()
		form["loanType"] = "Balloon"

		rec := doJSON(newTestEngine(t, defaultDeps()), http.MethodPost, "/api/send-contract", sendBody(form))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhook(t *testing.T) {
	eventBatch := []pandadoc.WebhookEvent{{
		Event: pandadoc.EventRecipientCompleted,
		Data:  pandadoc.WebhookData{ID: "doc-123", Name: "Purchase Agreement — 12 Elm St"},
	}}
	payload, _ := json.Marshal(eventBatch)

	post := func(engine *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/webhook/pandadoc?signature="+signature, bytes.NewReader(body))
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid signature routes the batch", func(t *testing.T) {
		deps := defaultDeps()
		var received []pandadoc.WebhookEvent
		deps.Events = &fakeEvents{handleFn: func(_ context.Context, events []pandadoc.WebhookEvent) error {
			received = events
			return nil
		}}

		rec := post(newTestEngine(t, deps), payload, signBody(payload, "hook-secret"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
		require.Len(t, received, 1)
		assert.Equal(t, "doc-123", received[0].Data.ID)
	})

	t.Run("bad signature is a 401", func(t *testing.T) {
		called := false
		deps := defaultDeps()
		deps.Events = &fakeEvents{handleFn: func(_ context.Context, _ []pandadoc.WebhookEvent) error {
			called = true
			return nil
		}}

		rec := post(newTestEngine(t, deps), payload, signBody(payload, "wrong-secret"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized", rec.Body.String())
		assert.False(t, called, "unauthenticated payloads must never reach the router")
	})

	t.Run("header-delivered signature accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/webhook/pandadoc", bytes.NewReader(payload))
		req.Header.Set("X-PandaDoc-Signature", signBody(payload, "hook-secret"))
		rec := httptest.NewRecorder()
		newTestEngine(t, defaultDeps()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing signature is a 401", func(t *testing.T) {
		rec := post(newTestEngine(t, defaultDeps()), payload, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("authenticated garbage is a 500", func(t *testing.T) {
		garbage := []byte("{not an array")
		rec := post(newTestEngine(t, defaultDeps()), garbage, signBody(garbage, "hook-secret"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal Server Error", rec.Body.String())
	})

	t.Run("routing failure is a 500", func(t *testing.T) {
		deps := defaultDeps()
		deps.Events = &fakeEvents{handleFn: func(_ context.Context, _ []pandadoc.WebhookEvent) error {
			return stderrors.NewNotificationSendFailed("betty@buyers.test", errors.New("smtp down"))
		}}

		rec := post(newTestEngine(t, deps), payload, signBody(payload, "hook-secret"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal Server Error", rec.Body.String())
	})
}

func TestContracts(t *testing.T) {
	deps := defaultDeps()
	contracts := store.NewMemoryStore()
	deps.Contracts = contracts
	engine := newTestEngine(t, deps)

	require.NoError(t, contracts.Save(context.Background(), store.ContractRecord{
		DocumentID:      "doc-123",
		PropertyAddress: "12 Elm St, Springfield",
	}))

	t.Run("get existing includes provider status", func(t *testing.T) {
		rec := doJSON(engine, http.MethodGet, "/api/contracts/doc-123", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "12 Elm St, Springfield")
		assert.Contains(t, rec.Body.String(), `"status":"document.sent"`)
	})

	t.Run("provider outage degrades to local record", func(t *testing.T) {
		outageDeps := defaultDeps()
		outageDeps.Contracts = contracts
		outageDeps.Dispatcher = &fakeDispatcher{
			createAndSendFn: func(_ context.Context, _ []byte, _ contract.FormData) (*pandadoc.SendResult, error) {
				return &pandadoc.SendResult{ID: "doc-123"}, nil
			},
			getDocumentFn: func(_ context.Context, _ string) (*pandadoc.Document, error) {
				return nil, errors.New("provider unreachable")
			},
		}

		rec := doJSON(newTestEngine(t, outageDeps), http.MethodGet, "/api/contracts/doc-123", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "12 Elm St, Springfield")
		assert.NotContains(t, rec.Body.String(), `"status"`)
	})

	t.Run("get missing", func(t *testing.T) {
		rec := doJSON(engine, http.MethodGet, "/api/contracts/doc-999", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		rec := doJSON(engine, http.MethodGet, "/api/contracts", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "doc-123")
	})
}
