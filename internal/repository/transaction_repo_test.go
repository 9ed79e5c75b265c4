package repository

import (
	"path/filepath"
	"testing"
	"time"

	"dukapay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testRepo(t *testing.T) *TransactionRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Transaction{}))
	return NewTransactionRepository(db)
}

func TestCreateAndLookup(t *testing.T) {
	repo := testRepo(t)
	tx := &models.Transaction{
		MerchantRef:       "dukapay-abc",
		CheckoutRequestID: "ws_CO_1",
		PhoneNumber:       "254712345678",
		Amount:            100,
		Status:            models.TxStatusPending,
	}
	require.NoError(t, repo.Create(tx))
	assert.NotZero(t, tx.ID)

	byCheckout, err := repo.GetByCheckoutRequestID("ws_CO_1")
	require.NoError(t, err)
	assert.Equal(t, tx.ID, byCheckout.ID)

	byRef, err := repo.GetByMerchantRef("dukapay-abc")
	require.NoError(t, err)
	assert.Equal(t, tx.ID, byRef.ID)
}

func TestLookupUnknownReturnsNotFound(t *testing.T) {
	repo := testRepo(t)
	_, err := repo.GetByCheckoutRequestID("nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetByMerchantRef("nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateTerminalState(t *testing.T) {
	repo := testRepo(t)
	tx := &models.Transaction{
		MerchantRef:       "dukapay-xyz",
		CheckoutRequestID: "ws_CO_2",
		PhoneNumber:       "254712345678",
		Amount:            50,
		Status:            models.TxStatusPending,
	}
	require.NoError(t, repo.Create(tx))
	assert.False(t, tx.Terminal())

	code := 0
	now := time.Now()
	tx.Status = models.TxStatusCompleted
	tx.ResultCode = &code
	tx.ReceiptNumber = "NLJ7RT61SV"
	tx.CompletedAt = &now
	require.NoError(t, repo.Update(tx))

	got, err := repo.GetByCheckoutRequestID("ws_CO_2")
	require.NoError(t, err)
	assert.True(t, got.Terminal())
	assert.Equal(t, "NLJ7RT61SV", got.ReceiptNumber)
	require.NotNil(t, got.ResultCode)
	assert.Equal(t, 0, *got.ResultCode)
}

func TestDuplicateCheckoutRequestIDRejected(t *testing.T) {
	repo := testRepo(t)
	first := &models.Transaction{MerchantRef: "dukapay-1", CheckoutRequestID: "ws_CO_3", PhoneNumber: "254712345678", Amount: 10, Status: models.TxStatusPending}
	require.NoError(t, repo.Create(first))

	dup := &models.Transaction{MerchantRef: "dukapay-2", CheckoutRequestID: "ws_CO_3", PhoneNumber: "254712345678", Amount: 10, Status: models.TxStatusPending}
	assert.Error(t, repo.Create(dup))
}
