package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("MPESA_CONSUMER_KEY", "ck")
	t.Setenv("MPESA_CONSUMER_SECRET", "cs")
	t.Setenv("MPESA_PASSKEY", "pk")
	t.Setenv("MPESA_SHORTCODE", "174379")
	t.Setenv("MPESA_CALLBACK_URL", "https://example.com/api/mpesa_callback")
	t.Setenv("MPESA_OAUTH_URL", "https://sandbox.safaricom.co.ke/oauth/v1/generate?grant_type=client_credentials")
	t.Setenv("MPESA_STKPUSH_URL", "https://sandbox.safaricom.co.ke/mpesa/stkpush/v1/processrequest")
}

func TestLoadWithAllRequired(t *testing.T) {
	setRequired(t)
	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "174379", cfg.Mpesa.ShortCode)
	assert.Equal(t, "CustomerPayBillOnline", cfg.Mpesa.TransactionType)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestValidateReportsEveryMissingVariable(t *testing.T) {
	setRequired(t)
	t.Setenv("MPESA_PASSKEY", "")
	t.Setenv("MPESA_CALLBACK_URL", "")

	err := Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MPESA_PASSKEY")
	assert.Contains(t, err.Error(), "MPESA_CALLBACK_URL")
	assert.NotContains(t, err.Error(), "MPESA_CONSUMER_KEY")
}

func TestOptionalOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("MPESA_ACCOUNT_REFERENCE", "Duka001")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "Duka001", cfg.Mpesa.AccountReference)
}
