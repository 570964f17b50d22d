package contract

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// SystemPrompt steers the drafting model toward complete formal contract
// language.
const SystemPrompt = `You are an expert real estate attorney drafting a Residential Purchase Agreement. Write complete, professional, legally sound contract language. Use formal language throughout. Never use placeholder brackets or [INSERT] markers — use the actual data provided. Write every section in full.`

const longDateLayout = "January 2, 2006"

// ClosingDate is the proposed closing: 30 calendar days out.
func ClosingDate(now time.Time) time.Time {
	return now.AddDate(0, 0, 30)
}

// FormatLongDate renders a date as "Month D, YYYY".
func FormatLongDate(t time.Time) string {
	return t.Format(longDateLayout)
}

// BuildPrompt produces the full drafting instruction for the LLM from the
// form snapshot. Pure function of its inputs; now supplies the effective and
// closing dates.
func BuildPrompt(data FormData, now time.Time) string {
	selected := data.Addendums.Labels()
	loanAmount := LoanAmount(data.OfferPrice, data.DownPaymentPercent)
	earnestMoney := EarnestMoney(data.OfferPrice)
	todayStr := FormatLongDate(now)
	closingStr := FormatLongDate(ClosingDate(now))

	selectedStr := "None"
	if len(selected) > 0 {
		selectedStr = strings.Join(selected, ", ")
	}

	specialRequests := data.SpecialRequests
	if specialRequests == "" {
		specialRequests = "None"
	}

	var addendumSections string
	if len(selected) > 0 {
		blocks := make([]string, 0, len(selected))
		for _, label := range selected {
			blocks = append(blocks, fmt.Sprintf("%s:\n[Full addendum text for %s]", strings.ToUpper(label), label))
		}
		addendumSections = strings.Join(blocks, "\n\n")
	}

	var specialRequestsSection string
	if data.SpecialRequests != "" {
		specialRequestsSection = fmt.Sprintf("SPECIAL REQUESTS:\n%s", data.SpecialRequests)
	}

	return fmt.Sprintf(`You are drafting a formal Residential Purchase Agreement. Write the complete, professional contract below. Use formal legal language throughout. Fill in every blank with the provided information. Do not use placeholder brackets — every field should contain real data from the inputs provided.

CONTRACT DATA:
- Effective Date: %s
- Property Address: %s
- Buyer: %s (%s)
- Seller / Seller's Agent: %s (%s)
- Selling Agent (Buyer's Agent): %s (%s)
- Broker: %s (%s)
- Offer Price: %s (%s dollars)
- Down Payment: %g%% (%s)
- Loan Amount: %s
- Loan Type: %s
- Earnest Money Deposit: %s
- Proposed Closing Date: %s
- Selected Addendums: %s
- Special Requests: %s

Write the full contract with these exact sections in order. Use clear section headers in ALL CAPS followed by a colon.

RESIDENTIAL PURCHASE AGREEMENT

PARTIES:
[Full parties section — buyer, seller, agents, broker with all contact info]

PROPERTY:
[Property description section]

PURCHASE PRICE AND TERMS:
[Price, earnest money, financing details]

FINANCING:
[Loan type, down payment, financing contingency if selected]

CLOSING:
[Closing date, possession, closing costs]

CONDITION OF PROPERTY:
[Seller representations, as-is language if selected]

INCLUSIONS AND EXCLUSIONS:
[Standard fixtures and appliances language]

TITLE:
[Title commitment, title insurance, transfer]

DEFAULT AND REMEDIES:
[Earnest money forfeiture, specific performance rights]

%s

%s

ENTIRE AGREEMENT:
[Integration clause]

GOVERNING LAW:
[Governing law clause]

COUNTERPARTS AND ELECTRONIC SIGNATURES:
[Electronic signature acceptance clause]

SIGNATURES:
[Signature blocks for Broker, Buyer, and Seller/Seller's Agent with name, title, date lines]

Write the complete contract now. Be thorough and professional. Each section should contain complete, legally sound language appropriate for a residential real estate purchase agreement.`,
		todayStr,
		data.PropertyAddress,
		data.BuyerName, data.BuyerEmail,
		data.SellerName, data.SellerEmail,
		data.AgentName, data.AgentEmail,
		data.BrokerName, data.BrokerEmail,
		FormatUSD(data.OfferPrice), NumberToWords(int(math.Round(data.OfferPrice))),
		data.DownPaymentPercent, FormatUSD(data.OfferPrice*data.DownPaymentPercent/100),
		FormatUSD(loanAmount),
		data.LoanType,
		FormatUSD(earnestMoney),
		closingStr,
		selectedStr,
		specialRequests,
		addendumSections,
		specialRequestsSection,
	)
}
