/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package server

import (
	"net/http"

	"banking-backend-go/internal/auth"
	"banking-backend-go/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *handlers) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondDetail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.Ledger.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, userResponse(user))
}

// tokenLogin is the form-encoded login used by OAuth2 password-flow clients.
func (h *handlers) tokenLogin(c *gin.Context) {
	h.login(c, c.PostForm("username"), c.PostForm("password"))
}

// jsonLogin is the JSON login used by browser clients.
func (h *handlers) jsonLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondDetail(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	h.login(c, req.Username, req.Password)
}

// login verifies the credentials, mints a token and hands it out twice:
// in the response body for API clients and as a session cookie for
// browsers.
func (h *handlers) login(c *gin.Context, username, password string) {
	if username == "" || password == "" {
		respondDetail(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := auth.Authenticate(c.Request.Context(), h.Identity, username, password)
	if err != nil {
		c.Header("WWW-Authenticate", "Bearer")
		respondDetail(c, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := auth.CreateAccessToken(h.Auth, user.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	auth.SetSessionCookie(c, token, h.Auth)
	c.JSON(http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *handlers) logout(c *gin.Context) {
	auth.ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

func (h *handlers) currentUser(c *gin.Context) {
	user := auth.CurrentUser(c)
	c.JSON(http.StatusOK, userResponse(user))
}

func (h *handlers) listUsers(c *gin.Context) {
	users, err := h.Ledger.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.UserResponse, len(users))
	for i := range users {
		responses[i] = userResponse(&users[i])
	}

	c.JSON(http.StatusOK, responses)
}
