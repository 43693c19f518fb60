package authn

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shandysiswandi/mailpress/internal/pkg/goerror"
	"github.com/shandysiswandi/mailpress/internal/pkg/jwt"
)

// Step authenticates r and returns the context to continue with.
type Step func(ctx context.Context, r *http.Request) (context.Context, error)

// Verifier validates a single bearer token.
type Verifier interface {
	Verify(token string) (jwt.Claims, error)
}

func fail(kind Kind, cause error, msg string) error {
	return goerror.NewUnauthorized(&Error{Kind: kind, Err: cause}, msg)
}

// RequireAnyAuth fails unless the Authorization header carries at least one
// bearer token and every token verifies.
//
// Delegated calls list several credentials separated by commas, originating
// caller first. On success the context holds the first claims as Auth and the
// whole chain, in header order, as MultiAuth.
func RequireAnyAuth(verifier Verifier) Step {
	return func(ctx context.Context, r *http.Request) (context.Context, error) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			return ctx, fail(KindAuthenticationRequired, nil, "Authentication required")
		}

		tokens, err := bearerTokens(header)
		if err != nil {
			return ctx, fail(KindAuthenticationInvalid, err, "Invalid authorization header")
		}

		claims := make([]jwt.Claims, 0, len(tokens))
		var expired, invalid error
		for _, token := range tokens {
			clm, err := verifier.Verify(token)
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				expired = err
			case err != nil:
				if invalid == nil {
					invalid = err
				}
			default:
				claims = append(claims, clm)
			}
		}

		if expired != nil {
			return ctx, fail(KindTokenExpired, expired, "Token has expired")
		}
		if invalid != nil {
			return ctx, fail(KindAuthenticationInvalid, invalid, "Invalid or expired token")
		}

		ctx = jwt.SetAuth(ctx, claims[0])
		ctx = jwt.SetMultiAuth(ctx, claims)
		return ctx, nil
	}
}

// OptionalAnyAuth runs required and treats a missing credential as anonymous
// access. Every other failure is returned unchanged.
func OptionalAnyAuth(required Step) Step {
	return func(ctx context.Context, r *http.Request) (context.Context, error) {
		next, err := required(ctx, r)
		if err == nil {
			return next, nil
		}
		if KindOf(err) == KindAuthenticationRequired {
			return ctx, nil
		}
		return ctx, err
	}
}

var errMalformed = errors.New("expected comma separated \"Bearer <token>\" credentials")

func bearerTokens(header string) ([]string, error) {
	parts := strings.Split(header, ",")
	tokens := make([]string, 0, len(parts))

	for _, part := range parts {
		fields := strings.Fields(part)
		if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
			return nil, errMalformed
		}
		tokens = append(tokens, fields[1])
	}

	return tokens, nil
}
