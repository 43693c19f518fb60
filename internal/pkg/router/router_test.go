package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/mailpress/internal/pkg/authn"
	"github.com/shandysiswandi/mailpress/internal/pkg/config"
	"github.com/shandysiswandi/mailpress/internal/pkg/goerror"
	"github.com/shandysiswandi/mailpress/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type tokenVerifier map[string]string

func (v tokenVerifier) Verify(token string) (jwt.Claims, error) {
	if token == "expired" {
		return jwt.Claims{}, jwt.ErrTokenExpired
	}
	uid, ok := v[token]
	if !ok {
		return jwt.Claims{}, jwt.ErrInvalidToken
	}
	return jwt.Claims{UserID: uid}, nil
}

type created struct {
	ID string `json:"id"`
}

func (created) StatusCode() int { return http.StatusCreated }
func (created) Message() string { return "created" }

func newTestRouter(t *testing.T, yaml string) *Router {
	t.Helper()

	var cfg config.Config
	if yaml != "" {
		v, err := config.NewViperFromBytes("yaml", []byte(yaml))
		require.NoError(t, err)
		cfg = v
	}

	return NewRouter(Config{Config: cfg, UUID: fixedID("cid-generated")})
}

func serve(ro *Router, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRouter_Health(t *testing.T) {
	rec := serve(newTestRouter(t, ""), http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cid-generated", rec.Header().Get(HeaderCorrelationID))
	assert.Equal(t, map[string]any{"status": "ok"}, decode(t, rec)["data"])
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	ro := newTestRouter(t, "")

	rec := serve(ro, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "endpoint not found", decode(t, rec)["message"])

	rec = serve(ro, http.MethodPost, "/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_SuccessAndErrorEnvelopes(t *testing.T) {
	ro := newTestRouter(t, "")
	ro.POST("/things", func(r *Request) (any, error) {
		var in struct {
			ID string `json:"id"`
		}
		if err := r.DecodeBody(&in); err != nil {
			return nil, err
		}
		return created{ID: in.ID}, nil
	})
	ro.GET("/things/:id", func(r *Request) (any, error) {
		if r.GetParam("id") == "missing" {
			return nil, goerror.NewBusiness("thing not found", goerror.CodeNotFound)
		}
		return nil, goerror.NewInvalidInput(nil, "id", "must be missing")
	})

	rec := serve(ro, http.MethodPost, "/things", `{"id":"t1"}`, map[string]string{HeaderCorrelationID: "cid-in"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "cid-in", rec.Header().Get(HeaderCorrelationID))
	body := decode(t, rec)
	assert.Equal(t, "created", body["message"])
	assert.Equal(t, map[string]any{"id": "t1"}, body["data"])

	rec = serve(ro, http.MethodPost, "/things", `{"id":"t1","extra":true}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(ro, http.MethodGet, "/things/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "thing not found", decode(t, rec)["message"])

	rec = serve(ro, http.MethodGet, "/things/other", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, map[string]any{"id": "must be missing"}, decode(t, rec)["error"])
}

func TestRouter_RecoversPanics(t *testing.T) {
	ro := newTestRouter(t, "")
	ro.GET("/boom", func(*Request) (any, error) { panic("boom") })

	rec := serve(ro, http.MethodGet, "/boom", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode(t, rec)["message"])
}

func TestRouter_Maintenance(t *testing.T) {
	ro := newTestRouter(t, "app:\n  maintenance:\n    endpoints: [\"/down\"]\n")
	ro.GET("/down", func(*Request) (any, error) { return map[string]string{}, nil })
	ro.GET("/up", func(*Request) (any, error) { return map[string]string{}, nil })

	assert.Equal(t, http.StatusServiceUnavailable, serve(ro, http.MethodGet, "/down", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(ro, http.MethodGet, "/up", "", nil).Code)

	all := newTestRouter(t, "app:\n  maintenance:\n    endpoints: \"*\"\n")
	all.GET("/up", func(*Request) (any, error) { return map[string]string{}, nil })
	assert.Equal(t, http.StatusServiceUnavailable, serve(all, http.MethodGet, "/up", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(all, http.MethodGet, "/health", "", nil).Code)
}

func TestRouter_Guard(t *testing.T) {
	verifier := tokenVerifier{"tok": "u1"}

	type seen struct {
		UserIDs       []string `json:"user_ids"`
		Authorization string   `json:"authorization"`
	}
	identity := func(r *Request) (any, error) {
		out := seen{UserIDs: []string{}, Authorization: jwt.GetAuthorization(r.Context())}
		for _, clm := range jwt.GetMultiAuth(r.Context()) {
			out.UserIDs = append(out.UserIDs, clm.UserID)
		}
		return out, nil
	}

	ro := newTestRouter(t, "")
	ro.GET("/required", identity, Guard(authn.RequireAnyAuth(verifier)))
	ro.GET("/optional", identity, Guard(authn.OptionalAnyAuth(authn.RequireAnyAuth(verifier))))

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantIDs    []any
	}{
		{name: "required without credential", path: "/required", wantStatus: http.StatusUnauthorized},
		{name: "required with credential", path: "/required", header: "Bearer tok", wantStatus: http.StatusOK, wantIDs: []any{"u1"}},
		{name: "optional without credential", path: "/optional", wantStatus: http.StatusOK, wantIDs: []any{}},
		{name: "optional with credential", path: "/optional", header: "Bearer tok", wantStatus: http.StatusOK, wantIDs: []any{"u1"}},
		{name: "optional with expired", path: "/optional", header: "Bearer expired", wantStatus: http.StatusUnauthorized},
		{name: "optional with garbage", path: "/optional", header: "Token tok", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}

			rec := serve(ro, http.MethodGet, tt.path, "", headers)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}

			data := decode(t, rec)["data"].(map[string]any)
			assert.Equal(t, tt.wantIDs, data["user_ids"])
			assert.Equal(t, tt.header, data["authorization"])
		})
	}
}

func TestGuard_StepsRunInOrder(t *testing.T) {
	var calls []string
	step := func(name string, fail bool) authn.Step {
		return func(ctx context.Context, _ *http.Request) (context.Context, error) {
			calls = append(calls, name)
			if fail {
				return ctx, goerror.NewBusiness("denied", goerror.CodeForbidden)
			}
			return ctx, nil
		}
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls = append(calls, "handler")
	})

	rec := httptest.NewRecorder()
	Guard(step("a", false), step("b", true), step("c", false))(next).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b"}, calls)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
