package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"go-music-catalog/internal/model"
	"go-music-catalog/pkg/apierror"
)

type UserService struct {
	users  userStore
	hasher passwordHasher
	audit  *AuditService
	now    func() time.Time
}

func NewUserService(users userStore, hasher passwordHasher, audit *AuditService) *UserService {
	return &UserService{users: users, hasher: hasher, audit: audit, now: time.Now}
}

// Signup creates an account from a validated request. The returned user
// carries no password hash.
func (s *UserService) Signup(ctx context.Context, req model.SignupRequest) (model.User, error) {
	if err := req.Validate(); err != nil {
		return model.User{}, err
	}
	req.Normalize()
	actor := model.AuditActor{Email: req.Email}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return model.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		s.audit.Log(ctx, AuditActionSignup, actor, AuditStatusFailure, "email", model.ErrUserAlreadyExists)
		return model.User{}, apierror.Conflict("email already registered", "email")
	}

	var phone *string
	if req.Phone != "" {
		exists, err := s.users.ExistsByPhone(ctx, req.Phone)
		if err != nil {
			return model.User{}, fmt.Errorf("check phone: %w", err)
		}
		if exists {
			s.audit.Log(ctx, AuditActionSignup, actor, AuditStatusFailure, "phone", model.ErrUserAlreadyExists)
			return model.User{}, apierror.Conflict("phone already registered", "phone")
		}
		phone = &req.Phone
	}

	hash, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        phone,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same email or phone.
		if errors.Is(err, model.ErrUserAlreadyExists) {
			s.audit.Log(ctx, AuditActionSignup, actor, AuditStatusFailure, "", err)
			return model.User{}, apierror.Conflict("user already exists", "")
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	actor.UserID = user.ID
	s.audit.Log(ctx, AuditActionSignup, actor, AuditStatusSuccess, "", nil)

	user.PasswordHash = ""
	return user, nil
}
