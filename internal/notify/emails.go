package notify

import (
	"bytes"
	"html/template"

	"deedflow/internal/contract"
)

// Email bodies are plain HTML tables in the house style; subjects are
// composed by the callers.

var emailFuncs = template.FuncMap{
	"usd": contract.FormatUSD,
}

var buyerSignTmpl = template.Must(template.New("buyer_sign").Funcs(emailFuncs).Parse(`
<div style="font-family: Georgia, serif; max-width: 560px; margin: 0 auto; color: #1a1a1a;">
  <h2 style="font-weight: normal;">Your Purchase Agreement is Ready to Sign</h2>
  <p>Hi {{.BuyerName}},</p>
  <p>{{.AgentName}} has prepared a purchase agreement for <strong>{{.PropertyAddress}}</strong> and the broker has signed off. It is now your turn to sign.</p>
  <table style="border-collapse: collapse; width: 100%; margin: 16px 0;">
    <tr><td style="padding: 6px 0; color: #666;">Offer Price</td><td style="text-align: right;">{{usd .OfferPrice}}</td></tr>
    <tr><td style="padding: 6px 0; color: #666;">Loan Type</td><td style="text-align: right;">{{.LoanType}}</td></tr>
    <tr><td style="padding: 6px 0; color: #666;">Down Payment</td><td style="text-align: right;">{{.DownPaymentPercent}}%</td></tr>
  </table>
  <p><a href="{{.SigningLink}}" style="display: inline-block; background: #1a1a1a; color: #ffffff; padding: 12px 24px; text-decoration: none;">Review &amp; Sign</a></p>
  <p style="color: #666; font-size: 13px;">Once you sign, the agreement moves to the seller for the final signature.</p>
</div>`))

// BuyerSignParams carries everything the buyer's "ready to sign" email shows.
type BuyerSignParams struct {
	BuyerName          string
	AgentName          string
	PropertyAddress    string
	OfferPrice         float64
	LoanType           string
	DownPaymentPercent float64
	SigningLink        string
}

func RenderBuyerSign(p BuyerSignParams) (string, error) {
	return render(buyerSignTmpl, p)
}

var sellerSignTmpl = template.Must(template.New("seller_sign").Funcs(emailFuncs).Parse(`
<div style="font-family: Georgia, serif; max-width: 560px; margin: 0 auto; color: #1a1a1a;">
  <h2 style="font-weight: normal;">An Offer Has Been Signed for Your Property</h2>
  <p>Hi {{.SellerName}},</p>
  <p>{{.BuyerName}} has signed a purchase agreement for <strong>{{.PropertyAddress}}</strong>, prepared by {{.AgentName}}. Your signature completes the agreement.</p>
  <table style="border-collapse: collapse; width: 100%; margin: 16px 0;">
    <tr><td style="padding: 6px 0; color: #666;">Offer Price</td><td style="text-align: right;">{{usd .OfferPrice}}</td></tr>
    <tr><td style="padding: 6px 0; color: #666;">Loan Type</td><td style="text-align: right;">{{.LoanType}}</td></tr>
    <tr><td style="padding: 6px 0; color: #666;">Down Payment</td><td style="text-align: right;">{{.DownPaymentPercent}}%</td></tr>
  </table>
  <p><a href="{{.SigningLink}}" style="display: inline-block; background: #1a1a1a; color: #ffffff; padding: 12px 24px; text-decoration: none;">Review &amp; Sign</a></p>
</div>`))

// SellerSignParams carries the seller's "offer received" email fields; the
// buyer's name identifies the offering party.
type SellerSignParams struct {
	SellerName         string
	BuyerName          string
	AgentName          string
	PropertyAddress    string
	OfferPrice         float64
	LoanType           string
	DownPaymentPercent float64
	SigningLink        string
}

func RenderSellerSign(p SellerSignParams) (string, error) {
	return render(sellerSignTmpl, p)
}

var fullyExecutedTmpl = template.Must(template.New("fully_executed").Funcs(emailFuncs).Parse(`
<div style="font-family: Georgia, serif; max-width: 560px; margin: 0 auto; color: #1a1a1a;">
  <h2 style="font-weight: normal;">Fully Executed</h2>
  <p>Hi {{.RecipientName}},</p>
  <p>The purchase agreement for <strong>{{.PropertyAddress}}</strong> has been signed by all parties and is now fully executed.</p>
  <table style="border-collapse: collapse; width: 100%; margin: 16px 0;">
    <tr><td style="padding: 6px 0; color: #666;">Broker</td><td style="text-align: right;">{{.BrokerName}}</td></tr>
    <tr><td style="padding: 6px 0; color: #666;">Buyer</td><td style="text-align: right;">{{.BuyerName}}</td></tr>
    <tr><td style="padding: 6px 0; color: #666;">Seller</td><td style="text-align: right;">{{.SellerName}}</td></tr>
    <tr><td style="padding: 6px 0; color: #666;">Agent</td><td style="text-align: right;">{{.AgentName}}</td></tr>
    <tr><td style="padding: 6px 0; color: #666;">Offer Price</td><td style="text-align: right;">{{usd .OfferPrice}}</td></tr>
    <tr><td style="padding: 6px 0; color: #666;">Target Closing</td><td style="text-align: right;">{{.ClosingDate}}</td></tr>
  </table>
  <p style="color: #666; font-size: 13px;">All parties have received a copy of this notice.</p>
</div>`))

// FullyExecutedParams carries the all-parties-signed email fields.
type FullyExecutedParams struct {
	RecipientName   string
	BrokerName      string
	BuyerName       string
	SellerName      string
	AgentName       string
	PropertyAddress string
	OfferPrice      float64
	ClosingDate     string
}

func RenderFullyExecuted(p FullyExecutedParams) (string, error) {
	return render(fullyExecutedTmpl, p)
}

var agentStatusTmpl = template.Must(template.New("agent_status").Funcs(emailFuncs).Parse(`
<div style="font-family: Georgia, serif; max-width: 560px; margin: 0 auto; color: #1a1a1a;">
  <h2 style="font-weight: normal;">Status Update</h2>
  <p>Hi {{.AgentName}},</p>
  <p><strong>{{.StatusMessage}}</strong> — {{.PropertyAddress}}</p>
  <table style="border-collapse: collapse; width: 100%; margin: 16px 0;">
    <tr><td style="padding: 6px 0; color: #666;">Signer</td><td style="text-align: right;">{{.SignerName}} ({{.SignerRole}})</td></tr>
  </table>
  <p>{{.NextStepMessage}}</p>
</div>`))

// AgentStatusParams carries the agent status-ping email fields.
type AgentStatusParams struct {
	AgentName       string
	PropertyAddress string
	StatusMessage   string
	SignerName      string
	SignerRole      string
	NextStepMessage string
}

func RenderAgentStatus(p AgentStatusParams) (string, error) {
	return render(agentStatusTmpl, p)
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
