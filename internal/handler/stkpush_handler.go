package handler

import (
	"fmt"
	"log"
	"math"
	"net/http"

	"github.com/google/uuid"

	"dukapay/internal/models"
	"dukapay/internal/repository"
	"dukapay/pkg/mpesa"

	"github.com/gin-gonic/gin"
)

type STKPushHandler struct {
	txRepo *repository.TransactionRepository
	client *mpesa.Client
}

func NewSTKPushHandler(txRepo *repository.TransactionRepository, client *mpesa.Client) *STKPushHandler {
	return &STKPushHandler{txRepo: txRepo, client: client}
}

// Initiate validates the payment page's input, submits the STK push and
// records a PENDING transaction keyed by the provider's CheckoutRequestID
// so the later callback can be correlated.
func (h *STKPushHandler) Initiate(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
		Amount      any    `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Phone number and amount are required."})
		return
	}
	log.Printf("[STKPUSH] request phone=%s amount=%v", req.PhoneNumber, req.Amount)

	if req.PhoneNumber == "" || req.Amount == nil {
		log.Printf("[STKPUSH] validation failed: missing phone number or amount")
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Phone number and amount are required."})
		return
	}
	if err := mpesa.ValidatePhone(req.PhoneNumber); err != nil {
		log.Printf("[STKPUSH] validation failed: invalid phone %q", req.PhoneNumber)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": validationMessage(err)})
		return
	}
	amount, ok := wholeAmount(req.Amount)
	if !ok || amount <= 0 {
		log.Printf("[STKPUSH] validation failed: invalid amount %v", req.Amount)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Amount must be a positive integer."})
		return
	}

	resp, err := h.client.InitiateSTKPush(c.Request.Context(), req.PhoneNumber, amount)
	if err != nil {
		h.renderError(c, err)
		return
	}

	tx := &models.Transaction{
		MerchantRef:       fmt.Sprintf("dukapay-%s", uuid.New().String()),
		CheckoutRequestID: resp.CheckoutRequestID,
		MerchantRequestID: resp.MerchantRequestID,
		PhoneNumber:       req.PhoneNumber,
		Amount:            amount,
		Status:            models.TxStatusPending,
	}
	if err := h.txRepo.Create(tx); err != nil {
		log.Printf("[STKPUSH] transaction create failed for checkout_request_id=%s: %v", resp.CheckoutRequestID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "An unexpected server error occurred."})
		return
	}
	log.Printf("[STKPUSH] push accepted merchant_ref=%s checkout_request_id=%s", tx.MerchantRef, resp.CheckoutRequestID)

	message := resp.CustomerMessage
	if message == "" {
		message = "STK Push initiated successfully! Please check your phone for the M-Pesa prompt."
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"message":           message,
		"CheckoutRequestID": resp.CheckoutRequestID,
		"ResponseCode":      resp.ResponseCode,
		"merchantRef":       tx.MerchantRef,
	})
}

func (h *STKPushHandler) renderError(c *gin.Context, err error) {
	switch mpesa.KindOf(err) {
	case mpesa.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": validationMessage(err)})
	case mpesa.KindRejected:
		log.Printf("[STKPUSH] rejected by provider: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": validationMessage(err)})
	case mpesa.KindAuth:
		log.Printf("[STKPUSH] token fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to connect to M-Pesa. Please try again later."})
	case mpesa.KindParse:
		log.Printf("[STKPUSH] provider response parse failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to parse M-Pesa API response."})
	default:
		log.Printf("[STKPUSH] request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Network or API communication error."})
	}
}

// validationMessage pulls the caller-safe message off an mpesa.Error,
// leaving the wrapped cause in the logs only.
func validationMessage(err error) string {
	if me, ok := err.(*mpesa.Error); ok {
		return me.Message
	}
	return err.Error()
}

// wholeAmount accepts only JSON integers. Fractional numbers, strings and
// other types are rejected the same way a missing amount is.
func wholeAmount(v any) (int64, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int64(f), true
}
