package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFTokenHeader is the header carrying the CSRF token on unsafe requests.
const CSRFTokenHeader = "X-CSRF-Token"

const contextKeyCSRFToken = "csrf_token"

// CSRFMiddleware protects cookie-authenticated writes. Requests carrying a
// valid Bearer token are exempt, since browsers never attach one on their
// own. Safe methods pass through and receive a fresh token.
//
// If authService is nil any Bearer header is trusted.
func CSRFMiddleware(secret []byte, secure bool, authService *Service) gin.HandlerFunc {
	protect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFTokenHeader),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		if hasValidBearer(c, authService) {
			c.Next()
			return
		}

		passed := false
		handler := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set(contextKeyCSRFToken, csrf.Token(r))
			c.Request = r
			c.Next()
		}))
		if !secure {
			c.Request = csrf.PlaintextHTTPRequest(c.Request)
		}
		handler.ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"CSRF token invalid or missing","code":"csrf"}`))
}

func hasValidBearer(c *gin.Context, authService *Service) bool {
	token, ok := bearerToken(c)
	if !ok {
		return false
	}
	if authService == nil {
		return true
	}
	_, err := authService.ValidateToken(token)
	return err == nil
}

// GetCSRFToken retrieves the CSRF token issued for this request.
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(contextKeyCSRFToken)
}
