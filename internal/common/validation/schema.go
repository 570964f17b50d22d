// Package validation checks incoming form payloads against a JSON Schema
// before any downstream work starts.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	stderrors "deedflow/internal/common/errors"
)

const formDataSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": [
    "brokerName", "brokerEmail",
    "agentName", "agentEmail",
    "buyerName", "buyerEmail",
    "sellerName", "sellerEmail",
    "propertyAddress",
    "offerPrice", "downPaymentPercent", "loanType"
  ],
  "properties": {
    "brokerName":  {"type": "string", "minLength": 1},
    "brokerEmail": {"type": "string", "format": "email"},
    "agentName":   {"type": "string", "minLength": 1},
    "agentEmail":  {"type": "string", "format": "email"},
    "buyerName":   {"type": "string", "minLength": 1},
    "buyerEmail":  {"type": "string", "format": "email"},
    "sellerName":  {"type": "string", "minLength": 1},
    "sellerEmail": {"type": "string", "format": "email"},
    "propertyAddress": {"type": "string", "minLength": 1},
    "offerPrice":         {"type": "number", "exclusiveMinimum": 0},
    "downPaymentPercent": {"type": "number", "minimum": 0, "maximum": 100},
    "loanType": {"type": "string", "enum": ["Conventional", "FHA", "VA", "Cash", "USDA"]},
    "specialRequests": {"type": "string"},
    "addendums": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "homeInspection":       {"type": "boolean"},
        "financingContingency": {"type": "boolean"},
        "appraisalContingency": {"type": "boolean"},
        "saleOfBuyersHome":     {"type": "boolean"},
        "hoaDisclosure":        {"type": "boolean"},
        "asIs":                 {"type": "boolean"},
        "leadBasedPaint":       {"type": "boolean"},
        "wellSeptic":           {"type": "boolean"},
        "radonTesting":         {"type": "boolean"},
        "sellerConcessions":    {"type": "boolean"}
      }
    }
  }
}`

var compiledFormSchema = mustCompile(formDataSchema)

func mustCompile(schema string) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("form schema failed to compile: %v", err))
	}
	return compiled
}

// ValidateFormData checks a raw JSON request body against the form schema and
// returns a VALIDATION_FAILED error listing every violated field.
func ValidateFormData(raw []byte) error {
	result, err := compiledFormSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return stderrors.NewValidationFailed(fmt.Sprintf("request body is not valid JSON: %v", err))
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, violation := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", violation.Field(), violation.Description()))
	}
	return stderrors.NewValidationFailed(strings.Join(violations, "; "))
}
