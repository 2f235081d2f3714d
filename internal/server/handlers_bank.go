package server

import (
	"net/http"

	"banking-backend-go/internal/auth"
	"banking-backend-go/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *handlers) syncWithBank(c *gin.Context) {
	user := auth.CurrentUser(c)

	customerOID, alreadyLinked, err := h.Ledger.SyncWithBank(c.Request.Context(), user)
	if err != nil {
		respondDetail(c, http.StatusInternalServerError, "Failed to sync with bank: "+err.Error())
		return
	}

	if alreadyLinked {
		c.JSON(http.StatusOK, gin.H{
			"message":      "User already synced with bank",
			"customer_oid": customerOID,
		})
		return
	}

	// The cached identity still lacks the customer OID.
	h.Cache.Invalidate(c.Request.Context(), user.Username)

	c.JSON(http.StatusOK, gin.H{
		"message":      "Successfully synced with bank",
		"customer_oid": customerOID,
	})
}

func (h *handlers) bankPortfolio(c *gin.Context) {
	user := auth.CurrentUser(c)

	if user.CustomerOID == "" {
		respondDetail(c, http.StatusNotFound, "User not linked to bank. Please contact support.")
		return
	}
	if h.Bank == nil {
		respondDetail(c, http.StatusServiceUnavailable, "Bank integration not configured")
		return
	}

	result := h.Bank.GetCustomerPortfolio(c.Request.Context(), user.CustomerOID)
	switch result.Status {
	case models.BankStatusNotFound:
		respondDetail(c, http.StatusNotFound, "Portfolio not found in bank")
	case models.BankStatusSuccess:
		c.JSON(http.StatusOK, result.Data)
	default:
		respondDetail(c, http.StatusInternalServerError, "Bank API error: "+result.Error)
	}
}

func (h *handlers) bankStatus(c *gin.Context) {
	if h.Bank == nil {
		c.JSON(http.StatusOK, gin.H{
			"status": models.BankStatusDisconnected,
			"error":  "bank client not configured",
		})
		return
	}

	result := h.Bank.CheckConnection(c.Request.Context())

	response := gin.H{"status": result.Status}
	if result.Error != "" {
		response["error"] = result.Error
	}
	c.JSON(http.StatusOK, response)
}

func (h *handlers) bankCustomers(c *gin.Context) {
	if h.Bank == nil {
		respondDetail(c, http.StatusServiceUnavailable, "Bank integration not configured")
		return
	}

	result := h.Bank.GetAllCustomers(c.Request.Context())
	if result.Status != models.BankStatusSuccess {
		respondDetail(c, http.StatusInternalServerError, "Bank API error: "+result.Error)
		return
	}

	c.JSON(http.StatusOK, result.Data)
}
