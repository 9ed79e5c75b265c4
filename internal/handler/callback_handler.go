package handler

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"dukapay/internal/models"
	"dukapay/internal/repository"
	"dukapay/pkg/mpesa"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CallbackHandler struct {
	txRepo *repository.TransactionRepository
}

func NewCallbackHandler(txRepo *repository.TransactionRepository) *CallbackHandler {
	return &CallbackHandler{txRepo: txRepo}
}

// Handle processes the provider's asynchronous result. A nonzero
// ResultCode is a normal outcome (user cancelled or payment failed), not
// an error: the provider always gets a success acknowledgement so it stops
// redelivering. Only a local parse or store failure acks with ResultCode 1.
func (h *CallbackHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("[CALLBACK] read body failed: %v", err)
		c.JSON(http.StatusInternalServerError, mpesa.CallbackAck{ResultCode: 1, ResultDesc: "Failed to process callback"})
		return
	}
	log.Printf("[CALLBACK] raw body: %s", string(body))

	cb, err := mpesa.ParseCallback(body)
	if err != nil {
		log.Printf("[CALLBACK] parse failed: %v", err)
		c.JSON(http.StatusInternalServerError, mpesa.CallbackAck{ResultCode: 1, ResultDesc: "Failed to process callback"})
		return
	}

	if cb.ResultCode == 0 {
		receipt := cb.Receipt()
		log.Printf("[CALLBACK] payment completed checkout_request_id=%s receipt=%s amount=%v phone=%s date=%s",
			cb.CheckoutRequestID, receipt.ReceiptNumber, receipt.Amount, receipt.PhoneNumber, receipt.TransactionDate)
	} else {
		log.Printf("[CALLBACK] payment failed/cancelled checkout_request_id=%s result_code=%d desc=%s",
			cb.CheckoutRequestID, cb.ResultCode, cb.ResultDesc)
	}

	if err := h.apply(cb); err != nil {
		log.Printf("[CALLBACK] store update failed for checkout_request_id=%s: %v", cb.CheckoutRequestID, err)
		c.JSON(http.StatusInternalServerError, mpesa.CallbackAck{ResultCode: 1, ResultDesc: "Failed to process callback"})
		return
	}

	c.JSON(http.StatusOK, mpesa.CallbackAck{ResultCode: 0, ResultDesc: "Callback received successfully"})
}

// apply resolves the tracked transaction. Unknown checkout IDs and
// already-terminal rows are acknowledged without changes so redelivered
// callbacks stay idempotent.
func (h *CallbackHandler) apply(cb *mpesa.STKCallback) error {
	tx, err := h.txRepo.GetByCheckoutRequestID(cb.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[CALLBACK] no transaction for checkout_request_id=%s, acknowledging", cb.CheckoutRequestID)
			return nil
		}
		return err
	}
	if tx.Terminal() {
		log.Printf("[CALLBACK] transaction %d already %s, duplicate delivery ignored", tx.ID, tx.Status)
		return nil
	}

	code := cb.ResultCode
	tx.ResultCode = &code
	tx.ResultDesc = cb.ResultDesc
	if cb.ResultCode == 0 {
		receipt := cb.Receipt()
		now := time.Now()
		tx.Status = models.TxStatusCompleted
		tx.ReceiptNumber = receipt.ReceiptNumber
		tx.TransactionDate = receipt.TransactionDate
		tx.CompletedAt = &now
	} else {
		tx.Status = models.TxStatusFailed
	}
	return h.txRepo.Update(tx)
}
