package handler

import (
	"errors"
	"net/http"

	"dukapay/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StatusHandler lets the payment page poll for the callback outcome after
// an accepted push.
type StatusHandler struct {
	txRepo *repository.TransactionRepository
}

func NewStatusHandler(txRepo *repository.TransactionRepository) *StatusHandler {
	return &StatusHandler{txRepo: txRepo}
}

func (h *StatusHandler) Get(c *gin.Context) {
	ref := c.Param("merchantRef")
	tx, err := h.txRepo.GetByMerchantRef(ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, tx)
}
