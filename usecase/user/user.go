package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/taskwave/backend/domain"
	"github.com/taskwave/backend/repository"
)

// UseCase exposes current-user reads. User records are only written by the
// auth callback, so there is no update path here.
type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{users: users, logger: logger}
}

func (uc *UseCase) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, err
		}
		uc.logger.Error("user store failure", zap.Error(err))
		return nil, domain.WrapError(domain.ErrCodeInternal, "internal error", err)
	}
	return user, nil
}
