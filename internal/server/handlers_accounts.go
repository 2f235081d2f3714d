package server

import (
	"net/http"
	"strconv"

	"banking-backend-go/internal/auth"
	"banking-backend-go/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listAccounts(c *gin.Context) {
	user := auth.CurrentUser(c)

	accounts, err := h.Ledger.ListAccounts(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = accountResponse(&accounts[i])
	}

	c.JSON(http.StatusOK, models.AccountListResponse{Accounts: responses})
}

func (h *handlers) getAccount(c *gin.Context) {
	user := auth.CurrentUser(c)

	account, err := h.Ledger.GetAccount(c.Request.Context(), user, c.Param("account_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, accountResponse(account))
}

func (h *handlers) getBalance(c *gin.Context) {
	user := auth.CurrentUser(c)

	balance, err := h.Ledger.GetBalance(c.Request.Context(), user, c.Param("account_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

func (h *handlers) listTransactions(c *gin.Context) {
	user := auth.CurrentUser(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondDetail(c, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	transactions, err := h.Ledger.ListTransactions(c.Request.Context(), user, c.Param("account_id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.TransactionResponse, len(transactions))
	for i := range transactions {
		responses[i] = transactionResponse(&transactions[i])
	}

	c.JSON(http.StatusOK, responses)
}
