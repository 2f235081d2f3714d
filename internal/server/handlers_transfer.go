package server

import (
	"net/http"

	"banking-backend-go/internal/auth"
	"banking-backend-go/internal/models"

	"github.com/gin-gonic/gin"
)

// transfer moves funds out of one of the caller's accounts. The source is
// named in the query string so the JSON body stays identical for every
// source account.
func (h *handlers) transfer(c *gin.Context) {
	user := auth.CurrentUser(c)

	fromAccountId := c.Query("from_account_id")
	if fromAccountId == "" {
		respondDetail(c, http.StatusBadRequest, "from_account_id is required")
		return
	}

	var req models.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondDetail(c, http.StatusBadRequest, err.Error())
		return
	}

	transaction, err := h.Ledger.Transfer(c.Request.Context(), user, fromAccountId, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactionResponse(transaction))
}
