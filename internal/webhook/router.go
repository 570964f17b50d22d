// Package webhook routes provider signing events to the notification set the
// three-party chain calls for. The router is stateless across invocations:
// all context comes from the event payload and its attached document
// metadata.
package webhook

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"deedflow/internal/common/logger"
	"deedflow/internal/common/metrics"
	"deedflow/internal/contract"
	"deedflow/internal/notify"
	"deedflow/internal/pandadoc"
)

type Router struct {
	mailer  notify.Mailer
	logger  logger.Logger
	now     func() time.Time
	docLink func(documentID string) string
}

func NewRouter(mailer notify.Mailer, log logger.Logger) *Router {
	return &Router{
		mailer:  mailer,
		logger:  log.WithFields(map[string]interface{}{"component": "webhook-router"}),
		now:     time.Now,
		docLink: defaultDocLink,
	}
}

func defaultDocLink(documentID string) string {
	return "https://app.pandadoc.com/a/#/documents/" + documentID
}

// WithNow overrides the clock used for the computed closing date. Used by
// tests.
func (r *Router) WithNow(now func() time.Time) *Router {
	r.now = now
	return r
}

// HandleBatch processes events independently and in array order. A send
// failure aborts the remaining events; notifications already delivered stay
// delivered (at-least-once, non-atomic).
func (r *Router) HandleBatch(ctx context.Context, events []pandadoc.WebhookEvent) error {
	for _, event := range events {
		if err := r.handleEvent(ctx, event); err != nil {
			metrics.WebhookEvents.WithLabelValues("error").Inc()
			return err
		}
	}
	return nil
}

func (r *Router) handleEvent(ctx context.Context, event pandadoc.WebhookEvent) error {
	if event.Event != pandadoc.EventRecipientCompleted {
		metrics.WebhookEvents.WithLabelValues("ignored").Inc()
		return nil
	}

	data := event.Data
	recipients := data.Recipients

	var completed, pending []pandadoc.Recipient
	for _, rec := range recipients {
		if rec.HasCompleted {
			completed = append(completed, rec)
		} else {
			pending = append(pending, rec)
		}
	}

	// "Who just signed" is the completed recipient with the highest signing
	// order. Events reporting zero completions carry partial state and are
	// dropped.
	justSigned := highestOrder(completed)
	if justSigned == nil {
		metrics.WebhookEvents.WithLabelValues("ignored").Inc()
		return nil
	}

	metadata := data.Metadata
	agentEmail := metadata[contract.MetaAgentEmail]
	agentName := metadata[contract.MetaAgentName]
	if agentName == "" {
		agentName = "Your Agent"
	}
	propertyAddress := contract.AddressFromDocumentName(data.Name)

	offerPrice := parseFloatOr(metadata[contract.MetaOfferPrice], 0)
	loanType := metadata[contract.MetaLoanType]
	if loanType == "" {
		loanType = string(contract.LoanConventional)
	}
	downPayment := parseFloatOr(metadata[contract.MetaDownPaymentPercent], 20)

	r.logger.Info("routing signing event", map[string]interface{}{
		"documentId":   data.ID,
		"signingOrder": justSigned.SigningOrder,
		"allComplete":  len(pending) == 0,
	})

	switch justSigned.SigningOrder {
	case contract.RoleBroker.SigningOrder():
		buyer := findByOrder(recipients, contract.RoleBuyer.SigningOrder())
		if buyer != nil {
			html, err := notify.RenderBuyerSign(notify.BuyerSignParams{
				BuyerName:          buyer.FullName(),
				AgentName:          agentName,
				PropertyAddress:    propertyAddress,
				OfferPrice:         offerPrice,
				LoanType:           loanType,
				DownPaymentPercent: downPayment,
				SigningLink:        r.docLink(data.ID),
			})
			if err != nil {
				return err
			}
			subject := fmt.Sprintf("Your Purchase Agreement is Ready to Sign — %s", propertyAddress)
			if _, err := r.mailer.Send(ctx, buyer.Email, subject, html); err != nil {
				return err
			}
			metrics.NotificationsSent.WithLabelValues("buyer_sign").Inc()
		}

		if agentEmail != "" {
			nextStep := "Buyer will be notified shortly."
			if buyer != nil {
				nextStep = fmt.Sprintf("Contract sent to %s (buyer) for signature.", buyer.FullName())
			}
			if err := r.sendAgentPing(ctx, agentEmail, fmt.Sprintf("Broker Signed — Purchase Agreement — %s", propertyAddress), notify.AgentStatusParams{
				AgentName:       agentName,
				PropertyAddress: propertyAddress,
				StatusMessage:   "Broker has signed",
				SignerName:      justSigned.FullName(),
				SignerRole:      contract.RoleBroker.String(),
				NextStepMessage: nextStep,
			}); err != nil {
				return err
			}
		}

	case contract.RoleBuyer.SigningOrder():
		seller := findByOrder(recipients, contract.RoleSeller.SigningOrder())
		buyer := findByOrder(recipients, contract.RoleBuyer.SigningOrder())
		if seller != nil {
			buyerName := contract.RoleBuyer.String()
			if buyer != nil {
				buyerName = buyer.FullName()
			}
			html, err := notify.RenderSellerSign(notify.SellerSignParams{
				SellerName:         seller.FullName(),
				BuyerName:          buyerName,
				AgentName:          agentName,
				PropertyAddress:    propertyAddress,
				OfferPrice:         offerPrice,
				LoanType:           loanType,
				DownPaymentPercent: downPayment,
				SigningLink:        r.docLink(data.ID),
			})
			if err != nil {
				return err
			}
			subject := fmt.Sprintf("Offer Received for %s — Review & Sign", propertyAddress)
			if _, err := r.mailer.Send(ctx, seller.Email, subject, html); err != nil {
				return err
			}
			metrics.NotificationsSent.WithLabelValues("seller_sign").Inc()
		}

		if agentEmail != "" {
			nextStep := "Seller will be notified shortly."
			if seller != nil {
				nextStep = fmt.Sprintf("Contract sent to %s (seller) for signature.", seller.FullName())
			}
			if err := r.sendAgentPing(ctx, agentEmail, fmt.Sprintf("Buyer Signed — Purchase Agreement — %s", propertyAddress), notify.AgentStatusParams{
				AgentName:       agentName,
				PropertyAddress: propertyAddress,
				StatusMessage:   "Buyer has signed",
				SignerName:      justSigned.FullName(),
				SignerRole:      contract.RoleBuyer.String(),
				NextStepMessage: nextStep,
			}); err != nil {
				return err
			}
		}
	}

	// The seller completing has no next signer; the all-complete branch is
	// the only thing that fires for signing order 3.
	if len(pending) == 0 {
		if err := r.sendFullyExecuted(ctx, data, propertyAddress, agentName, agentEmail, offerPrice); err != nil {
			return err
		}
	}

	metrics.WebhookEvents.WithLabelValues("routed").Inc()
	return nil
}

func (r *Router) sendFullyExecuted(ctx context.Context, data pandadoc.WebhookData, propertyAddress, agentName, agentEmail string, offerPrice float64) error {
	closingDate := contract.FormatLongDate(contract.ClosingDate(r.now()))

	broker := findByOrder(data.Recipients, contract.RoleBroker.SigningOrder())
	buyer := findByOrder(data.Recipients, contract.RoleBuyer.SigningOrder())
	seller := findByOrder(data.Recipients, contract.RoleSeller.SigningOrder())

	// Missing parties fall back to their generic role name in the emails
	// sent to everyone else; the missing party itself receives nothing.
	nameOr := func(rec *pandadoc.Recipient, fallback string) string {
		if rec != nil {
			return rec.FullName()
		}
		return fallback
	}
	brokerName := nameOr(broker, contract.RoleBroker.String())
	buyerName := nameOr(buyer, contract.RoleBuyer.String())
	sellerName := nameOr(seller, contract.RoleSeller.String())

	for _, party := range []*pandadoc.Recipient{broker, buyer, seller} {
		if party == nil || party.Email == "" {
			continue
		}
		html, err := notify.RenderFullyExecuted(notify.FullyExecutedParams{
			RecipientName:   party.FullName(),
			BrokerName:      brokerName,
			BuyerName:       buyerName,
			SellerName:      sellerName,
			AgentName:       agentName,
			PropertyAddress: propertyAddress,
			OfferPrice:      offerPrice,
			ClosingDate:     closingDate,
		})
		if err != nil {
			return err
		}
		subject := fmt.Sprintf("Fully Executed: Purchase Agreement for %s", propertyAddress)
		if _, err := r.mailer.Send(ctx, party.Email, subject, html); err != nil {
			return err
		}
		metrics.NotificationsSent.WithLabelValues("fully_executed").Inc()
	}

	if agentEmail != "" {
		return r.sendAgentPing(ctx, agentEmail, fmt.Sprintf("Fully Executed — Purchase Agreement — %s", propertyAddress), notify.AgentStatusParams{
			AgentName:       agentName,
			PropertyAddress: propertyAddress,
			StatusMessage:   "All parties have signed — contract fully executed",
			SignerName:      sellerName,
			SignerRole:      contract.RoleSeller.String(),
			NextStepMessage: fmt.Sprintf("The Purchase Agreement for %s is now fully executed. All parties have received a copy. Target closing: %s.", propertyAddress, closingDate),
		})
	}
	return nil
}

func (r *Router) sendAgentPing(ctx context.Context, agentEmail, subject string, params notify.AgentStatusParams) error {
	html, err := notify.RenderAgentStatus(params)
	if err != nil {
		return err
	}
	if _, err := r.mailer.Send(ctx, agentEmail, subject, html); err != nil {
		return err
	}
	metrics.NotificationsSent.WithLabelValues("agent_status").Inc()
	return nil
}

// highestOrder returns the completed recipient with the maximum signing
// order. Each order value appears at most once, so there are no ties.
func highestOrder(completed []pandadoc.Recipient) *pandadoc.Recipient {
	var top *pandadoc.Recipient
	for i := range completed {
		if top == nil || completed[i].SigningOrder > top.SigningOrder {
			top = &completed[i]
		}
	}
	return top
}

func findByOrder(recipients []pandadoc.Recipient, order int) *pandadoc.Recipient {
	for i := range recipients {
		if recipients[i].SigningOrder == order {
			return &recipients[i]
		}
	}
	return nil
}

func parseFloatOr(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}
