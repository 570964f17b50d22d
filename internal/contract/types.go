// Package contract holds the immutable purchase-agreement form snapshot and
// the entities derived from it.
package contract

import "strings"

// LoanType enumerates the supported financing arrangements.
type LoanType string

const (
	LoanConventional LoanType = "Conventional"
	LoanFHA          LoanType = "FHA"
	LoanVA           LoanType = "VA"
	LoanCash         LoanType = "Cash"
	LoanUSDA         LoanType = "USDA"
)

// Valid reports whether the loan type is one of the recognized values.
func (lt LoanType) Valid() bool {
	switch lt {
	case LoanConventional, LoanFHA, LoanVA, LoanCash, LoanUSDA:
		return true
	}
	return false
}

// Role identifies a signing party. The numeric value IS the signing order:
// the chain is strictly Broker, then Buyer, then Seller, and "who just
// signed" is decided by comparing these values.
type Role int

const (
	RoleBroker Role = 1
	RoleBuyer  Role = 2
	RoleSeller Role = 3
)

func (r Role) String() string {
	switch r {
	case RoleBroker:
		return "Broker"
	case RoleBuyer:
		return "Buyer"
	case RoleSeller:
		return "Seller"
	}
	return "Unknown"
}

// SigningOrder returns the party's fixed position in the signing chain.
func (r Role) SigningOrder() int {
	return int(r)
}

// Roles lists all signing roles in chain order.
func Roles() []Role {
	return []Role{RoleBroker, RoleBuyer, RoleSeller}
}

// Addendums is the fixed set of optional addendum flags on the form.
type Addendums struct {
	HomeInspection       bool `json:"homeInspection"`
	FinancingContingency bool `json:"financingContingency"`
	AppraisalContingency bool `json:"appraisalContingency"`
	SaleOfBuyersHome     bool `json:"saleOfBuyersHome"`
	HOADisclosure        bool `json:"hoaDisclosure"`
	AsIs                 bool `json:"asIs"`
	LeadBasedPaint       bool `json:"leadBasedPaint"`
	WellSeptic           bool `json:"wellSeptic"`
	RadonTesting         bool `json:"radonTesting"`
	SellerConcessions    bool `json:"sellerConcessions"`
}

// Labels returns the human-readable labels of the selected addendums, in the
// fixed form order.
func (a Addendums) Labels() []string {
	var labels []string
	for _, entry := range []struct {
		selected bool
		label    string
	}{
		{a.HomeInspection, "Home Inspection Contingency"},
		{a.FinancingContingency, "Financing Contingency"},
		{a.AppraisalContingency, "Appraisal Contingency"},
		{a.SaleOfBuyersHome, "Sale of Buyer's Current Home Contingency"},
		{a.HOADisclosure, "HOA / Condo Association Disclosure"},
		{a.AsIs, "As-Is Sale Addendum"},
		{a.LeadBasedPaint, "Lead-Based Paint Disclosure"},
		{a.WellSeptic, "Well & Septic Inspection Addendum"},
		{a.RadonTesting, "Radon Testing Addendum"},
		{a.SellerConcessions, "Seller Concessions / Closing Cost Assistance"},
	} {
		if entry.selected {
			labels = append(labels, entry.label)
		}
	}
	return labels
}

// FormData is the immutable input snapshot captured at form submission.
type FormData struct {
	BrokerName  string `json:"brokerName"`
	BrokerEmail string `json:"brokerEmail"`

	AgentName  string `json:"agentName"`
	AgentEmail string `json:"agentEmail"`

	BuyerName  string `json:"buyerName"`
	BuyerEmail string `json:"buyerEmail"`

	SellerName  string `json:"sellerName"`
	SellerEmail string `json:"sellerEmail"`

	PropertyAddress string `json:"propertyAddress"`

	OfferPrice         float64  `json:"offerPrice"`
	DownPaymentPercent float64  `json:"downPaymentPercent"`
	LoanType           LoanType `json:"loanType"`

	SpecialRequests string `json:"specialRequests"`

	Addendums Addendums `json:"addendums"`
}

// Party is a signing participant derived from the form.
type Party struct {
	Role         Role
	Email        string
	FirstName    string
	LastName     string
	SigningOrder int
}

// SplitName splits a full name on the first space: everything before is the
// first name, everything after (possibly empty) the last name.
func SplitName(full string) (first, last string) {
	first, last, found := strings.Cut(full, " ")
	if !found {
		return full, ""
	}
	return first, last
}

// Parties derives the three signing parties in chain order.
func (f FormData) Parties() []Party {
	mk := func(role Role, name, email string) Party {
		first, last := SplitName(name)
		return Party{
			Role:         role,
			Email:        email,
			FirstName:    first,
			LastName:     last,
			SigningOrder: role.SigningOrder(),
		}
	}
	return []Party{
		mk(RoleBroker, f.BrokerName, f.BrokerEmail),
		mk(RoleBuyer, f.BuyerName, f.BuyerEmail),
		mk(RoleSeller, f.SellerName, f.SellerEmail),
	}
}

const documentNamePrefix = "Purchase Agreement — "

// DocumentName builds the provider-facing document name for a property.
func DocumentName(propertyAddress string) string {
	return documentNamePrefix + propertyAddress
}

// AddressFromDocumentName recovers the property address from a document name.
func AddressFromDocumentName(name string) string {
	return strings.TrimPrefix(name, documentNamePrefix)
}

// Metadata keys carried on the provider document. This flat map is the only
// channel by which the webhook router recovers contract context.
const (
	MetaPropertyAddress    = "propertyAddress"
	MetaAgentEmail         = "agentEmail"
	MetaAgentName          = "agentName"
	MetaOfferPrice         = "offerPrice"
	MetaLoanType           = "loanType"
	MetaDownPaymentPercent = "downPaymentPercent"
)
