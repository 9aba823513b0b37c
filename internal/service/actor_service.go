package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/claims-api/internal/models"
	appErrors "github.com/noah-isme/claims-api/pkg/errors"
)

type actorFinder interface {
	FindActor(ctx context.Context, id string) (*models.Actor, error)
}

// ActorService turns validated token claims into a scoped actor.
type ActorService struct {
	users  actorFinder
	logger *zap.Logger
}

// NewActorService constructs an ActorService.
func NewActorService(users actorFinder, logger *zap.Logger) *ActorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActorService{users: users, logger: logger}
}

// Resolve loads the actor named by the token. The stored role wins over the token role.
func (s *ActorService) Resolve(ctx context.Context, claims *models.JWTClaims) (*models.Actor, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	actor, err := s.users.FindActor(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "user is unknown or inactive")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve actor")
	}
	if claims.Role != "" && claims.Role != actor.Role {
		s.logger.Warn("token role differs from stored role",
			zap.String("user_id", claims.UserID),
			zap.String("token_role", string(claims.Role)),
			zap.String("stored_role", string(actor.Role)),
		)
	}
	if actor.FullName == "" {
		actor.FullName = claims.FullName
	}
	return actor, nil
}
