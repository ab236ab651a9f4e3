package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Principal is the identity resolved from a validated bearer token. It
// lives for the request only; nothing here persists it.
type Principal struct {
	ID          string
	Email       string
	DisplayName string
	Role        string
}

// ErrPrincipalNotFound is returned by directories when the token subject
// has no corresponding user record.
var ErrPrincipalNotFound = errors.New("principal not found")

// PrincipalDirectory resolves a token subject to a user record.
type PrincipalDirectory interface {
	FindBySubject(ctx context.Context, subject string) (*Principal, error)
}

// Gate resolves bearer credentials to principals for handlers that run
// outside the standard middleware stack (streaming endpoints).
//
// Every failure mode — absent header, wrong scheme, empty token, expired
// or forged token, unknown subject, directory I/O failure — collapses to
// a nil principal. Callers cannot distinguish "expired" from "forged";
// the specific cause is logged internally only, by the caller's request
// logger if one is attached to ctx.
type Gate struct {
	tokens    *JWTManager
	directory PrincipalDirectory
}

func NewGate(tokens *JWTManager, directory PrincipalDirectory) *Gate {
	return &Gate{tokens: tokens, directory: directory}
}

// Resolve authenticates the Authorization header value. A nil result is
// the normal outcome for anonymous or unauthenticated callers, never an
// error. Validation runs before the directory lookup; the lookup never
// starts for a token that failed validation or a cancelled context.
func (g *Gate) Resolve(ctx context.Context, authorization string) *Principal {
	logger := zerolog.Ctx(ctx)

	token, err := TokenFromHeader(authorization)
	if err != nil {
		logger.Debug().Msg("gate: no bearer credential presented")
		return nil
	}

	claims, err := g.tokens.Validate(token)
	if err != nil {
		logger.Debug().Err(err).Msg("gate: token validation failed")
		return nil
	}

	if ctx.Err() != nil {
		logger.Debug().Err(ctx.Err()).Msg("gate: request cancelled before lookup")
		return nil
	}

	principal, err := g.directory.FindBySubject(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			logger.Debug().Str("subject", claims.Subject).Msg("gate: unknown subject")
		} else {
			logger.Error().Err(err).Msg("gate: directory lookup failed")
		}
		return nil
	}

	logger.Debug().
		Str("subject", claims.Subject).
		Str("role", principal.Role).
		Time("resolved_at", time.Now().UTC()).
		Msg("gate: principal resolved")
	return principal
}
