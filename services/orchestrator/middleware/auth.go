// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware guards the orchestrator's /v1 API.
//
// Every tracked-issue, test-case, dataset, and automation route runs
// behind AuthMiddleware; /health, /metrics, and the static UI stay
// open. The middleware resolves the caller once per request and leaves
// the identity in the gin context, where the automation handlers pick
// it up to attribute launched runs and created issues.
//
// The default NopAuthProvider authenticates everything as "local-user"
// with admin rights, which is the expected setup for a QA engineer
// running the tool on their own machine. Deployments that front the
// orchestrator with a real identity provider swap in an AuthProvider
// via extensions.ServiceOptions; the rest of the service is unaware of
// the difference.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianQA/pkg/extensions"
)

// authInfoKey is where the resolved identity lives in the gin context.
const authInfoKey = "aleutianqa_auth_info"

// anonymousUser labels requests that carry no resolvable identity.
const anonymousUser = "anonymous"

// SetAuthInfo stores the caller's identity for the rest of the request.
func SetAuthInfo(c *gin.Context, info *extensions.AuthInfo) {
	c.Set(authInfoKey, info)
}

// GetAuthInfo returns the identity resolved by AuthMiddleware, or nil
// when the request never passed through it.
func GetAuthInfo(c *gin.Context) *extensions.AuthInfo {
	if info, exists := c.Get(authInfoKey); exists {
		if authInfo, ok := info.(*extensions.AuthInfo); ok {
			return authInfo
		}
	}
	return nil
}

// UserID returns the caller's user ID for run and issue attribution.
// Requests without a resolved identity report "anonymous" so the
// attribution fields are never empty.
func UserID(c *gin.Context) string {
	info := GetAuthInfo(c)
	if info == nil || info.UserID == "" {
		return anonymousUser
	}
	return info.UserID
}

// AuthMiddleware authenticates every request on the group it is
// mounted on. The bearer token from the Authorization header (empty
// when absent or not a Bearer scheme) goes to the provider; a
// validation failure aborts with 401, success stores the identity for
// the handlers.
//
// The NopAuthProvider accepts the empty token, so local setups need no
// credentials at all.
func AuthMiddleware(provider extensions.AuthProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))

		authInfo, err := provider.Validate(c.Request.Context(), token)
		if err != nil {
			// Provider failures and rejections read the same from the
			// outside; neither leaks why.
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}

		SetAuthInfo(c, authInfo)
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header value.
// The scheme match is case-insensitive per RFC 7235; anything that is
// not a Bearer credential yields the empty token.
func bearerToken(header string) string {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
