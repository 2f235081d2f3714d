package server

import (
	"errors"
	"net/http"

	"banking-backend-go/internal/api"
	"banking-backend-go/internal/models"
	"banking-backend-go/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func userResponse(user *models.User) models.UserResponse {
	return models.UserResponse{
		Id:          user.Id,
		Username:    user.Username,
		Email:       user.Email,
		FullName:    user.FullName,
		CustomerOID: user.CustomerOID,
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt,
	}
}

func accountResponse(account *models.Account) models.AccountResponse {
	return models.AccountResponse{
		Id:          account.Id,
		AccountName: account.AccountName,
		AccountType: account.AccountType,
		Balance:     account.Balance,
		Currency:    account.Currency,
		IsActive:    account.IsActive,
		UserId:      account.UserId,
		CreatedAt:   account.CreatedAt,
	}
}

func transactionResponse(transaction *models.Transaction) models.TransactionResponse {
	return models.TransactionResponse{
		Id:              transaction.Id,
		FromAccountId:   transaction.FromAccountId,
		ToAccountId:     transaction.ToAccountId,
		Amount:          transaction.Amount,
		Currency:        transaction.Currency,
		Description:     transaction.Description,
		TransactionType: transaction.TransactionType,
		Status:          transaction.Status,
		CreatedAt:       transaction.CreatedAt,
	}
}

func respondDetail(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}

// respondError maps service failures onto HTTP answers. Anything without a
// sentinel is logged and hidden behind a generic 500 so internals never
// leak to clients.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, api.ErrSourceAccountNotFound):
		respondDetail(c, http.StatusNotFound, "Source account not found")
	case errors.Is(err, api.ErrDestinationAccountNotFound):
		respondDetail(c, http.StatusNotFound, "Destination account not found")
	case errors.Is(err, store.ErrAccountNotFound):
		respondDetail(c, http.StatusNotFound, "Account not found")
	case errors.Is(err, store.ErrInsufficientBalance):
		respondDetail(c, http.StatusBadRequest, "Insufficient balance")
	case errors.Is(err, store.ErrInvalidAmount):
		respondDetail(c, http.StatusBadRequest, "Transfer amount must be positive")
	case errors.Is(err, store.ErrDuplicateUser):
		respondDetail(c, http.StatusBadRequest, "Username or email already registered")
	case errors.Is(err, store.ErrInactiveUser):
		respondDetail(c, http.StatusBadRequest, "Inactive user")
	case errors.Is(err, store.ErrInvalidCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		respondDetail(c, http.StatusUnauthorized, "Could not validate credentials")
	default:
		zap.L().Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		respondDetail(c, http.StatusInternalServerError, "Internal server error")
	}
}
