package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vancomm/fifteen-server/internal/config"
)

type CtxKey int

const (
	CtxPlayerClaims CtxKey = iota
	CtxRequestId
)

// Auth puts the claims of a logged in player into the request context. Bad
// or expired cookies are cleared and the request continues anonymously.
func Auth(logger *slog.Logger, cookies *config.Cookies) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := cookies.ParsePlayerClaims(r)
			if err != nil {
				if _, cookieErr := r.Cookie("auth"); cookieErr == nil {
					logger.Debug("dropping invalid auth cookies", slog.Any("error", err))
					cookies.Clear(w)
				}
				h.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), CtxPlayerClaims, claims)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func PlayerClaims(ctx context.Context) (*config.PlayerClaims, bool) {
	claims, ok := ctx.Value(CtxPlayerClaims).(*config.PlayerClaims)
	return claims, ok
}
