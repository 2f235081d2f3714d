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

package auth

import (
	"net/http"

	"banking-backend-go/internal/models"

	"github.com/gin-gonic/gin"
)

const contextUserKey = "current_user"

// RequireUser resolves the caller through the given carriers (bearer header
// first, then session cookie, when none are specified) and aborts with 401
// when no carrier yields a valid identity. Inactive users resolve but are
// rejected with 400 so a disabled account never falls back to another
// credential.
func RequireUser(resolver *Resolver, carriers ...Carrier) gin.HandlerFunc {
	if len(carriers) == 0 {
		carriers = []Carrier{BearerCarrier, CookieCarrier}
	}

	return func(c *gin.Context) {
		user, err := resolver.Resolve(c.Request.Context(), c.Request, carriers...)
		if err != nil {
			// Drop a session cookie that no longer validates
			if _, cookieErr := c.Request.Cookie(CookieName); cookieErr == nil {
				ClearSessionCookie(c)
			}
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}

		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "Inactive user"})
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user resolved by RequireUser for this request.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// SetSessionCookie attaches the access token as an HttpOnly lax cookie
// scoped to the whole site, expiring with the token.
func SetSessionCookie(c *gin.Context, token string, cfg models.AuthConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(cfg.TokenLifetime.Seconds()), "/", "", cfg.CookieSecure, true)
}

// ClearSessionCookie expires the session cookie immediately.
func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
}
