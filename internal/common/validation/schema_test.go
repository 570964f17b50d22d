package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "deedflow/internal/common/errors"
)

func validForm() map[string]interface{} {
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
		"addendums": map[string]bool{
			"homeInspection": true,
			"asIs":           false,
		},
	}
}

func marshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestValidateFormData(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		assert.NoError(t, ValidateFormData(marshal(t, validForm())))
	})

	t.Run("not json", func(t *testing.T) {
		err := ValidateFormData([]byte("{not json"))
		require.Error(t, err)
		assert.True(t, stderrors.HasCode(err, stderrors.ErrCodeValidationFailed))
	})

	t.Run("missing required field", func(t *testing.T) {
		form := validForm()
		delete(form, "propertyAddress")
		err := ValidateFormData(marshal(t, form))
		require.Error(t, err)
		assert.True(t, stderrors.HasCode(err, stderrors.ErrCodeValidationFailed))
		assert.Contains(t, err.(*stderrors.StandardError).Details, "propertyAddress")
	})

	t.Run("zero offer price", func(t *testing.T) {
		form := validForm()
		form["offerPrice"] = 0
		assert.Error(t, ValidateFormData(marshal(t, form)))
	})

	t.Run("down payment over 100", func(t *testing.T) {
		form := validForm()
		form["downPaymentPercent"] = 120
		assert.Error(t, ValidateFormData(marshal(t, form)))
	})

	t.Run("unknown loan type", func(t *testing.T) {
		form := validForm()
		form["loanType"] = "Balloon"
		assert.Error(t, ValidateFormData(marshal(t, form)))
	})

	t.Run("unknown addendum flag rejected", func(t *testing.T) {
		form := validForm()
		form["addendums"] = map[string]bool{"petInspection": true}
		assert.Error(t, ValidateFormData(marshal(t, form)))
	})

	t.Run("multiple violations all reported", func(t *testing.T) {
		form := validForm()
		delete(form, "buyerName")
		form["loanType"] = "Balloon"
		err := ValidateFormData(marshal(t, form))
		require.Error(t, err)
		details := err.(*stderrors.StandardError).Details
		assert.Contains(t, details, "buyerName")
		assert.Contains(t, details, "loanType")
	})
}
