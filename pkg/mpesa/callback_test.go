package mpesa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const successCallback = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 0,
      "ResultDesc": "The service request is processed successfully.",
      "CallbackMetadata": {
        "Item": [
          {"Name": "Amount", "Value": 1.00},
          {"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
          {"Name": "TransactionDate", "Value": 20191219102115},
          {"Name": "PhoneNumber", "Value": 254708374149}
        ]
      }
    }
  }
}`

const failedCallback = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 1032,
      "ResultDesc": "Request cancelled by user."
    }
  }
}`

func TestParseCallbackSuccess(t *testing.T) {
	cb, err := ParseCallback([]byte(successCallback))
	require.NoError(t, err)
	assert.Equal(t, 0, cb.ResultCode)
	assert.Equal(t, "ws_CO_191220191020363925", cb.CheckoutRequestID)

	receipt := cb.Receipt()
	assert.Equal(t, "NLJ7RT61SV", receipt.ReceiptNumber)
	assert.Equal(t, 1.00, receipt.Amount)
	assert.Equal(t, "254708374149", receipt.PhoneNumber)
	assert.Equal(t, "20191219102115", receipt.TransactionDate)
}

func TestParseCallbackFailedPayment(t *testing.T) {
	cb, err := ParseCallback([]byte(failedCallback))
	require.NoError(t, err, "a failed payment is a normal payload, not a parse error")
	assert.Equal(t, 1032, cb.ResultCode)
	assert.Nil(t, cb.CallbackMetadata)
	assert.Equal(t, Receipt{}, cb.Receipt())
}

func TestParseCallbackMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<xml/>`},
		{"empty object", `{}`},
		{"missing stkCallback", `{"Body":{}}`},
		{"wrong shape", `{"Body":"nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCallback([]byte(tt.body))
			require.Error(t, err)
			assert.Equal(t, KindParse, KindOf(err))
		})
	}
}

func TestReceiptIgnoresUnknownItems(t *testing.T) {
	cb := &STKCallback{
		ResultCode: 0,
		CallbackMetadata: &CallbackMetadata{Item: []MetadataItem{
			{Name: "Balance", Value: 120.5},
			{Name: "MpesaReceiptNumber", Value: "ABC123"},
			{Name: "SomethingNew", Value: "x"},
		}},
	}
	receipt := cb.Receipt()
	assert.Equal(t, "ABC123", receipt.ReceiptNumber)
	assert.Zero(t, receipt.Amount)
}

func TestReceiptStringAmount(t *testing.T) {
	// Some provider environments send Amount as a string.
	cb := &STKCallback{
		CallbackMetadata: &CallbackMetadata{Item: []MetadataItem{
			{Name: "Amount", Value: "150"},
			{Name: "PhoneNumber", Value: "254712345678"},
		}},
	}
	receipt := cb.Receipt()
	assert.Equal(t, 150.0, receipt.Amount)
	assert.Equal(t, "254712345678", receipt.PhoneNumber)
}
