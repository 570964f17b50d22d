package pandadoc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"deedflow/internal/common/config"
	stderrors "deedflow/internal/common/errors"
	"deedflow/internal/common/logger"
	"deedflow/internal/common/metrics"
	"deedflow/internal/contract"
)

const sandboxRestrictionMarker = "outside of your organization"

type Client struct {
	cfg    config.PandaDocConfig
	policy PollPolicy
	client *http.Client
	clock  Clock
	logger logger.Logger
}

func NewClient(cfg config.PandaDocConfig, log logger.Logger) *Client {
	return &Client{
		cfg: cfg,
		policy: PollPolicy{
			Interval: config.GetDuration(cfg.PollInterval),
			MaxWait:  config.GetDuration(cfg.PollMaxWait),
		},
		client: &http.Client{Timeout: 60 * time.Second},
		clock:  realClock{},
		logger: log.WithFields(map[string]interface{}{"component": "pandadoc"}),
	}
}

// WithClock overrides the poll loop clock. Used by tests.
func (c *Client) WithClock(clock Clock) *Client {
	c.clock = clock
	return c
}

// WithPolicy overrides the poll policy. Used by tests.
func (c *Client) WithPolicy(policy PollPolicy) *Client {
	c.policy = policy
	return c
}

func (c *Client) authHeader() string {
	return "API-Key " + c.cfg.APIKey
}

// DocumentLink is the provider console link for a document. The provider does
// not expose distinct per-party links, so the document link is reused for all
// three parties.
func (c *Client) DocumentLink(documentID string) string {
	return "https://app.pandadoc.com/a/#/documents/" + documentID
}

type createRecipient struct {
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Role         string `json:"role"`
	SigningOrder int    `json:"signing_order"`
}

type createRequest struct {
	Name            string            `json:"name"`
	Recipients      []createRecipient `json:"recipients"`
	Metadata        map[string]string `json:"metadata"`
	Tags            []string          `json:"tags"`
	ParseFormFields bool              `json:"parse_form_fields"`
}

// CreateDocument uploads the assembled PDF together with the three signing
// parties and the flat metadata map the webhook router later recovers context
// from. Non-success responses are fatal and never retried; the provider
// status and body are attached verbatim.
func (c *Client) CreateDocument(ctx context.Context, pdfData []byte, form contract.FormData) (string, error) {
	data := createRequest{
		Name:            contract.DocumentName(form.PropertyAddress),
		Recipients:      make([]createRecipient, 0, 3),
		Metadata:        documentMetadata(form),
		Tags:            []string{"deed-app", "purchase-agreement"},
		ParseFormFields: false,
	}
	for _, party := range form.Parties() {
		data.Recipients = append(data.Recipients, createRecipient{
			Email:        party.Email,
			FirstName:    party.FirstName,
			LastName:     party.LastName,
			Role:         party.Role.String(),
			SigningOrder: party.SigningOrder,
		})
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		return "", stderrors.NewDocumentCreateFailed(0, err.Error())
	}

	var body bytes.Buffer
	form2 := multipart.NewWriter(&body)

	fileHeader := make(textproto.MIMEHeader)
	fileHeader.Set("Content-Disposition", `form-data; name="file"; filename="contract.pdf"`)
	fileHeader.Set("Content-Type", "application/pdf")
	filePart, err := form2.CreatePart(fileHeader)
	if err != nil {
		return "", stderrors.NewDocumentCreateFailed(0, err.Error())
	}
	if _, err := filePart.Write(pdfData); err != nil {
		return "", stderrors.NewDocumentCreateFailed(0, err.Error())
	}

	if err := form2.WriteField("data", string(dataJSON)); err != nil {
		return "", stderrors.NewDocumentCreateFailed(0, err.Error())
	}
	if err := form2.Close(); err != nil {
		return "", stderrors.NewDocumentCreateFailed(0, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/documents", &body)
	if err != nil {
		return "", stderrors.NewDocumentCreateFailed(0, err.Error())
	}
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Content-Type", form2.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", stderrors.NewDocumentCreateFailed(0, err.Error())
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", stderrors.NewDocumentCreateFailed(resp.StatusCode, string(respBody))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &created); err != nil {
		return "", stderrors.NewDocumentCreateFailed(resp.StatusCode, string(respBody))
	}

	metrics.DocumentsCreated.Inc()
	c.logger.Info("document created", map[string]interface{}{
		"documentId": created.ID,
		"name":       data.Name,
	})
	return created.ID, nil
}

func documentMetadata(form contract.FormData) map[string]string {
	return map[string]string{
		contract.MetaPropertyAddress:    form.PropertyAddress,
		contract.MetaAgentEmail:         form.AgentEmail,
		contract.MetaAgentName:          form.AgentName,
		contract.MetaOfferPrice:         strconv.FormatFloat(form.OfferPrice, 'f', -1, 64),
		contract.MetaLoanType:           string(form.LoanType),
		contract.MetaDownPaymentPercent: strconv.FormatFloat(form.DownPaymentPercent, 'f', -1, 64),
	}
}

// GetDocument queries the current provider-side document state.
func (c *Client) GetDocument(ctx context.Context, documentID string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/documents/"+documentID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.authHeader())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("document status query failed: status %d, body: %s", resp.StatusCode, respBody)
	}

	var doc Document
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return nil, fmt.Errorf("document status parse failed: %w", err)
	}
	return &doc, nil
}

// WaitUntilReady polls document status on the policy interval until the
// document reaches a sendable state (draft or sent), the provider reports a
// terminal error, or the policy ceiling elapses. Intermediate statuses are
// the expected steady state and are logged at debug only. A failed status
// query is not terminal; the next tick retries it.
func (c *Client) WaitUntilReady(ctx context.Context, documentID string) error {
	deadline := c.clock.Now().Add(c.policy.MaxWait)

	for c.clock.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.clock.After(c.policy.Interval):
		}

		metrics.DocumentPollAttempts.Inc()
		doc, err := c.GetDocument(ctx, documentID)
		if err != nil {
			c.logger.Warn("status poll failed", map[string]interface{}{
				"documentId": documentID,
				"error":      err.Error(),
			})
			continue
		}

		switch doc.Status {
		case StatusDraft, StatusSent:
			return nil
		case StatusError:
			return stderrors.NewDocumentProcessingFailed(documentID)
		default:
			c.logger.Debug("document not ready yet", map[string]interface{}{
				"documentId": documentID,
				"status":     doc.Status,
			})
		}
	}

	return stderrors.NewDocumentPollTimeout(documentID, c.policy.MaxWait)
}

type sendRequest struct {
	Message string `json:"message"`
	Subject string `json:"subject"`
	Silent  bool   `json:"silent"`
}

// SendDocument triggers the provider's own delivery of the first signing
// request (to the broker). The provider's organization restriction — sending
// blocked for recipients outside the caller's org — is a soft failure: the
// document exists and is valid, so the result flags the skipped send instead
// of erroring.
func (c *Client) SendDocument(ctx context.Context, documentID, propertyAddress string) (*SendResult, error) {
	body, err := json.Marshal(sendRequest{
		Message: fmt.Sprintf("Please review and sign the Purchase Agreement for %s.", propertyAddress),
		Subject: fmt.Sprintf("Signature Required: Purchase Agreement — %s", propertyAddress),
		Silent:  false,
	})
	if err != nil {
		return nil, stderrors.NewDocumentSendFailed(0, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/documents/"+documentID+"/send", bytes.NewReader(body))
	if err != nil {
		return nil, stderrors.NewDocumentSendFailed(0, err.Error())
	}
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, stderrors.NewDocumentSendFailed(0, err.Error())
	}
	defer resp.Body.Close()

	link := c.DocumentLink(documentID)
	result := &SendResult{
		ID:         documentID,
		BrokerLink: link,
		BuyerLink:  link,
		SellerLink: link,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusForbidden && strings.Contains(string(respBody), sandboxRestrictionMarker) {
			metrics.DocumentSendsSkipped.Inc()
			c.logger.Warn("send skipped by sandbox restriction", map[string]interface{}{
				"documentId": documentID,
			})
			result.SandboxSkipped = true
			return result, nil
		}
		return nil, stderrors.NewDocumentSendFailed(resp.StatusCode, string(respBody))
	}

	return result, nil
}

// CreateAndSend runs the full lifecycle for an assembled contract: upload,
// poll until sendable, then trigger the signing chain.
func (c *Client) CreateAndSend(ctx context.Context, pdfData []byte, form contract.FormData) (*SendResult, error) {
	documentID, err := c.CreateDocument(ctx, pdfData, form)
	if err != nil {
		return nil, err
	}

	if err := c.WaitUntilReady(ctx, documentID); err != nil {
		return nil, err
	}

	return c.SendDocument(ctx, documentID, form.PropertyAddress)
}
