package authorizer

import (
	"strings"
)

const cookieHeader = "cookie"

// CookieMap holds the cookies sent with a request.
// The nil map means that no Cookie header was sent at all.
type CookieMap map[string]string

func (m CookieMap) Present() bool {
	return m != nil
}

func (m CookieMap) Get(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// ParseCookies extracts cookies from the raw header collection.
// It never fails: a segment without "=" maps its name to an empty value.
func ParseCookies(headers map[string]string) CookieMap {
	raw, ok := lookupHeader(headers, cookieHeader)
	if !ok || len(raw) == 0 {
		return nil
	}

	cookies := CookieMap{}
	for _, segment := range strings.Split(raw, ";") {
		segment = strings.TrimSpace(segment)
		if len(segment) == 0 {
			continue
		}

		name, value, _ := strings.Cut(segment, "=")
		cookies[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	return cookies
}

// header names are case-insensitive, gateways tend to lower-case them.
func lookupHeader(headers map[string]string, name string) (string, bool) {
	if v, ok := headers[name]; ok {
		return v, true
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
