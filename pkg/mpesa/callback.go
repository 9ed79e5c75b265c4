package mpesa

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CallbackEnvelope is the asynchronous result notification the provider
// POSTs to the callback URL after the customer responds to the prompt.
type CallbackEnvelope struct {
	Body *CallbackBody `json:"Body"`
}

type CallbackBody struct {
	STKCallback *STKCallback `json:"stkCallback"`
}

// STKCallback reports the final outcome of one push. ResultCode 0 is a
// completed payment; any other code is a failure or user cancellation and
// carries no metadata.
type STKCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type CallbackMetadata struct {
	Item []MetadataItem `json:"Item"`
}

// MetadataItem is a provider name/value pair. Value is a string or a
// number depending on the name.
type MetadataItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value,omitempty"`
}

// Receipt is the typed projection of a successful callback's metadata
// items.
type Receipt struct {
	ReceiptNumber   string
	Amount          float64
	PhoneNumber     string
	TransactionDate string
}

// Receipt projects the known metadata items into a Receipt. Unknown item
// names are ignored; a failed callback (no metadata) yields the zero value.
func (s *STKCallback) Receipt() Receipt {
	var r Receipt
	if s.CallbackMetadata == nil {
		return r
	}
	for _, item := range s.CallbackMetadata.Item {
		switch item.Name {
		case "MpesaReceiptNumber":
			r.ReceiptNumber = itemString(item.Value)
		case "Amount":
			r.Amount = itemNumber(item.Value)
		case "PhoneNumber":
			r.PhoneNumber = itemString(item.Value)
		case "TransactionDate":
			r.TransactionDate = itemString(item.Value)
		}
	}
	return r
}

// ParseCallback decodes a callback body and rejects payloads missing the
// nested stkCallback envelope.
func ParseCallback(body []byte) (*STKCallback, error) {
	var env CallbackEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &Error{Kind: KindParse, Message: "invalid callback JSON", Err: err}
	}
	if env.Body == nil || env.Body.STKCallback == nil {
		return nil, &Error{Kind: KindParse, Message: "callback missing Body.stkCallback envelope"}
	}
	return env.Body.STKCallback, nil
}

// CallbackAck is the acknowledgement the provider expects; returning it
// with ResultCode 0 stops redelivery.
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// itemString renders a metadata value as a string. The provider sends
// phone numbers and transaction dates as JSON numbers.
func itemString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

func itemNumber(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case json.Number:
		f, _ := t.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0
	}
}
