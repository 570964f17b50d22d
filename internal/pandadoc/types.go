// Package pandadoc implements the e-signature provider client: document
// creation, readiness polling, sending, and webhook payload handling.
package pandadoc

// Provider document statuses observed via polling or webhook push.
const (
	StatusUploaded        = "document.uploaded"
	StatusProcessing      = "document.processing"
	StatusDraft           = "document.draft"
	StatusSent            = "document.sent"
	StatusWaitingApproval = "document.waiting_approval"
	StatusError           = "document.error"
)

// EventRecipientCompleted is the only webhook event type the router acts on.
const EventRecipientCompleted = "recipient_completed"

// Recipient is one signing party as reported by the provider.
type Recipient struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Role         string `json:"role"`
	HasCompleted bool   `json:"has_completed"`
	SigningOrder int    `json:"signing_order,omitempty"`
}

// FullName joins the split name parts, trimming the trailing space a missing
// last name leaves behind.
func (r Recipient) FullName() string {
	if r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}

// WebhookData is the document snapshot attached to a webhook event.
type WebhookData struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Status     string            `json:"status"`
	Metadata   map[string]string `json:"metadata"`
	Recipients []Recipient       `json:"recipients"`
}

// WebhookEvent is a single entry of the webhook batch payload.
type WebhookEvent struct {
	Event string      `json:"event"`
	Data  WebhookData `json:"data"`
}

// Document is the provider's representation fetched when polling.
type Document struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
}

// SendResult reports the outcome of triggering the signing chain. When the
// provider blocks delivery to recipients outside the caller's organization,
// the document still exists and is valid: SandboxSkipped is set instead of an
// error so callers can degrade gracefully.
type SendResult struct {
	ID             string
	SandboxSkipped bool
	BrokerLink     string
	BuyerLink      string
	SellerLink     string
}
