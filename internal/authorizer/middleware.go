package authorizer

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vpnhouse/songbook/pkg/xerror"
	"github.com/vpnhouse/songbook/pkg/xhttp"
	"go.uber.org/zap"
)

const requestTypeRequest = "REQUEST"

type principalKey struct{}

// Principal is the verified identity attached to an allowed request.
type Principal struct {
	ID    string
	Email string
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// MethodARN builds the execute-api ARN of a single method invocation.
func MethodARN(prefix, method, path string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + strings.ToUpper(method) + "/" + strings.TrimPrefix(path, "/")
}

// NewRequest converts an incoming HTTP request into an authorization request.
func NewRequest(r *http.Request, arnPrefix string) *Request {
	req := &Request{
		Type:       requestTypeRequest,
		MethodArn:  MethodARN(arnPrefix, r.Method, r.URL.Path),
		Resource:   r.URL.Path,
		Path:       r.URL.Path,
		HTTPMethod: r.Method,
		Headers:    xhttp.HeaderMap(r),
	}

	if query := r.URL.Query(); len(query) > 0 {
		req.QueryStringParameters = make(map[string]string, len(query))
		for k, v := range query {
			req.QueryStringParameters[k] = v[0]
		}
	}

	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); len(pattern) > 0 {
			req.Resource = pattern
		}
		if len(rctx.URLParams.Keys) > 0 {
			req.PathParameters = make(map[string]string, len(rctx.URLParams.Keys))
			for i, k := range rctx.URLParams.Keys {
				req.PathParameters[k] = rctx.URLParams.Values[i]
			}
		}
	}

	return req
}

// Middleware denies with 403 every request the authorizer does not explicitly allow.
func (a *Authorizer) Middleware(arnPrefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := NewRequest(r, arnPrefix)
			resp := a.Authorize(r.Context(), req)
			if !resp.Allowed() {
				xhttp.WriteJsonError(w, xerror.WForbidden("authorizer",
					"User is not authorized to access this resource",
					zap.String("method_arn", req.MethodArn)))
				return
			}

			email, _ := resp.Context["email"].(string)
			ctx := WithPrincipal(r.Context(), Principal{ID: resp.PrincipalID, Email: email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
