// Package usecase implements the authentication business logic: registration,
// login, and bearer-token authentication of requests.
package usecase

import (
	"context"
	"strings"

	"github.com/allisson/go-pwdhash"
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authService "github.com/sentimeter/sentimeter/internal/auth/service"
	"github.com/sentimeter/sentimeter/internal/database"
	apperrors "github.com/sentimeter/sentimeter/internal/errors"
	userDomain "github.com/sentimeter/sentimeter/internal/user/domain"
	appValidation "github.com/sentimeter/sentimeter/internal/validation"
)

// CredentialsInput contains the email/password pair for registration and login.
type CredentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenOutput carries an issued bearer token back to the HTTP layer.
type TokenOutput struct {
	AccessToken string
	TokenType   string
}

// UseCase defines the interface for authentication business logic.
type UseCase interface {
	// Register creates a new user and returns a token for the new identity.
	Register(ctx context.Context, input CredentialsInput) (*TokenOutput, error)
	// Login checks a credential pair and returns a token on success. Unknown
	// email and wrong password are indistinguishable to the caller.
	Login(ctx context.Context, input CredentialsInput) (*TokenOutput, error)
	// Authenticate verifies a bearer token and resolves its subject to a user.
	Authenticate(ctx context.Context, tokenString string) (*userDomain.User, error)
}

// UserRepository defines the user persistence operations the use case needs.
type UserRepository interface {
	Create(ctx context.Context, user *userDomain.User) error
	GetByEmail(ctx context.Context, email string) (*userDomain.User, error)
}

// AuthUseCase handles authentication business logic.
type AuthUseCase struct {
	txManager      database.TxManager
	userRepo       UserRepository
	auth           authService.AuthService
	passwordHasher *pwdhash.PasswordHasher
}

// NewAuthUseCase creates a new AuthUseCase.
func NewAuthUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	auth authService.AuthService,
) (UseCase, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	return &AuthUseCase{
		txManager:      txManager,
		userRepo:       userRepo,
		auth:           auth,
		passwordHasher: hasher,
	}, nil
}

// validateCredentialsInput checks the email format and password length.
func (uc *AuthUseCase) validateCredentialsInput(input CredentialsInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(3, 320).Error("email must be between 3 and 320 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(6, 128).Error("password must be between 6 and 128 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// Register creates a new user and issues a token for it.
func (uc *AuthUseCase) Register(ctx context.Context, input CredentialsInput) (*TokenOutput, error) {
	if err := uc.validateCredentialsInput(input); err != nil {
		return nil, err
	}

	hashedPassword, err := uc.passwordHasher.Hash([]byte(input.Password))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	user := &userDomain.User{
		ID:       uuid.Must(uuid.NewV7()),
		Email:    strings.TrimSpace(strings.ToLower(input.Email)),
		Password: hashedPassword,
	}

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		return uc.userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	return uc.issueFor(user.Email)
}

// Login authenticates a credential pair and issues a token.
func (uc *AuthUseCase) Login(ctx context.Context, input CredentialsInput) (*TokenOutput, error) {
	if err := uc.validateCredentialsInput(input); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Unknown email surfaces exactly like a bad password.
		if apperrors.Is(err, userDomain.ErrUserNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrUnauthorized, "invalid credentials")
		}
		return nil, err
	}

	ok, err := uc.passwordHasher.Verify([]byte(input.Password), user.Password)
	if err != nil || !ok {
		return nil, apperrors.Wrap(apperrors.ErrUnauthorized, "invalid credentials")
	}

	return uc.issueFor(user.Email)
}

// Authenticate verifies a token and resolves the subject to a stored user.
// A valid token whose subject no longer exists is rejected the same way an
// invalid token is.
func (uc *AuthUseCase) Authenticate(ctx context.Context, tokenString string) (*userDomain.User, error) {
	claims, err := uc.auth.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if apperrors.Is(err, userDomain.ErrUserNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrUnauthorized, "unknown token subject")
		}
		return nil, err
	}

	return user, nil
}

// issueFor issues a bearer token for the given subject.
func (uc *AuthUseCase) issueFor(subject string) (*TokenOutput, error) {
	token, err := uc.auth.Issue(subject)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to issue token")
	}
	return &TokenOutput{AccessToken: token, TokenType: "bearer"}, nil
}
