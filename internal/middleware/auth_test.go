package middleware

import (
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/taskwave/backend/domain"
	"github.com/taskwave/backend/pkg/token"
)

func newTestManager() *token.Manager {
	return token.NewManager(token.Config{
		Secret:   "mw-secret",
		Issuer:   "taskwave",
		Audience: "taskwave-api",
		Expiry:   time.Hour,
	})
}

func TestBearerAuthPropagatesSubject(t *testing.T) {
	tokens := newTestManager()
	signed, _, _, err := tokens.Issue(&domain.User{ID: "user-7", Name: "Alice"}, time.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var seenUser string
	handler := BearerAuth(tokens, nil)(func(ctx *fasthttp.RequestCtx) {
		seenUser = string(ctx.Request.Header.Peek("X-User-ID"))
		ctx.SetStatusCode(fasthttp.StatusOK)
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set("Authorization", "Bearer "+signed)
	handler(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d, want 200", ctx.Response.StatusCode())
	}
	if seenUser != "user-7" {
		t.Errorf("X-User-ID = %q, want user-7", seenUser)
	}
}

func TestBearerAuthRejections(t *testing.T) {
	tokens := newTestManager()
	otherIssuer := token.NewManager(token.Config{
		Secret:   "mw-secret",
		Issuer:   "someone-else",
		Audience: "taskwave-api",
		Expiry:   time.Hour,
	})
	foreign, _, _, err := otherIssuer.Issue(&domain.User{ID: "user-7"}, time.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"garbage", "Bearer nope"},
		{"wrong issuer", "Bearer " + foreign},
	}
	for _, tc := range cases {
		called := false
		handler := BearerAuth(tokens, nil)(func(ctx *fasthttp.RequestCtx) { called = true })

		ctx := &fasthttp.RequestCtx{}
		if tc.header != "" {
			ctx.Request.Header.Set("Authorization", tc.header)
		}
		handler(ctx)

		if called {
			t.Errorf("%s: inner handler must not run", tc.name)
		}
		if ctx.Response.StatusCode() != fasthttp.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", tc.name, ctx.Response.StatusCode())
		}
	}
}
