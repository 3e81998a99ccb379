package xhttp

import (
	"net/http"
	"strings"
)

// HeaderMap flattens request headers into a single-valued map, the shape
// an API gateway hands to its authorizers. Repeated Cookie headers
// are joined with "; ", any other repeated header keeps its first value.
func HeaderMap(r *http.Request) map[string]string {
	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		if len(values) == 0 {
			continue
		}
		if name == "Cookie" {
			headers[name] = strings.Join(values, "; ")
			continue
		}
		headers[name] = values[0]
	}
	return headers
}

// SetSessionCookie issues the session cookie holding the given token.
func SetSessionCookie(w http.ResponseWriter, name, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
	})
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
