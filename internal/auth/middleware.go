package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/observability"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const actorKey = "auth_actor"

// ActorResolver maps a verified identity onto an actor, provisioning a profile on first sight.
type ActorResolver interface {
	ResolveActor(ctx context.Context, identity domain.Identity) (domain.Actor, error)
}

// AuthMiddleware validates bearer tokens and loads actors.
type AuthMiddleware struct {
	tokens   *TokenManager
	resolver ActorResolver
	logger   *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, resolver ActorResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, resolver: resolver, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	identity := claims.Identity()
	actor, err := m.resolver.ResolveActor(c.UserContext(), identity)
	if err != nil {
		return apperrors.MapError(err)
	}

	if identity.ClaimedRole != "" && identity.ClaimedRole != string(actor.Role) {
		m.logger.Debug("ignoring token role claim",
			zap.String("actor_id", actor.ID),
			zap.String("claimed_role", identity.ClaimedRole),
			zap.String("directory_role", string(actor.Role)))
	}

	c.Locals(actorKey, actor)
	c.Locals(observability.ActorIDKey, actor.ID)
	return c.Next()
}

// ActorFromContext retrieves the authenticated actor.
func ActorFromContext(c *fiber.Ctx) (domain.Actor, bool) {
	actor, ok := c.Locals(actorKey).(domain.Actor)
	return actor, ok
}

// WithActor stores an actor on the request. Used by tests and trusted internal callers.
func WithActor(actor domain.Actor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(actorKey, actor)
		c.Locals(observability.ActorIDKey, actor.ID)
		return c.Next()
	}
}
