package authorizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCookies(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    CookieMap
	}{
		{
			name:    "token among others",
			headers: map[string]string{"Cookie": "token=abc.def.ghi; other=1"},
			want:    CookieMap{"token": "abc.def.ghi", "other": "1"},
		},
		{
			name:    "lower-cased header name",
			headers: map[string]string{"cookie": "token=xyz"},
			want:    CookieMap{"token": "xyz"},
		},
		{
			name:    "value containing equals sign",
			headers: map[string]string{"Cookie": "token=a=b=c"},
			want:    CookieMap{"token": "a=b=c"},
		},
		{
			name:    "segment without value",
			headers: map[string]string{"Cookie": "flag; token=t"},
			want:    CookieMap{"flag": "", "token": "t"},
		},
		{
			name:    "empty segments and spaces",
			headers: map[string]string{"Cookie": " ; token = t ;; "},
			want:    CookieMap{"token": "t"},
		},
		{
			name:    "duplicate names keep the last",
			headers: map[string]string{"Cookie": "token=first; token=second"},
			want:    CookieMap{"token": "second"},
		},
		{
			name:    "only separators",
			headers: map[string]string{"Cookie": ";;"},
			want:    CookieMap{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCookies(tt.headers)
			assert.True(t, got.Present())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCookiesAbsent(t *testing.T) {
	for name, headers := range map[string]map[string]string{
		"nil headers":  nil,
		"no cookie":    {"Accept": "application/json"},
		"empty cookie": {"Cookie": ""},
	} {
		t.Run(name, func(t *testing.T) {
			got := ParseCookies(headers)
			assert.False(t, got.Present())
			_, ok := got.Get("token")
			assert.False(t, ok)
		})
	}
}
