package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sentimeter/sentimeter/internal/app"
	authUseCase "github.com/sentimeter/sentimeter/internal/auth/usecase"
	"github.com/sentimeter/sentimeter/internal/config"
)

// RunCreateUser creates a user account from the command line.
// The issued token is not printed; the user logs in through the API.
func RunCreateUser(ctx context.Context, email, password string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()

	defer closeContainer(container, logger)

	useCase, err := container.AuthUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize auth use case: %w", err)
	}

	if _, err := useCase.Register(ctx, authUseCase.CredentialsInput{
		Email:    email,
		Password: password,
	}); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("user created", slog.String("email", email))
	return nil
}
