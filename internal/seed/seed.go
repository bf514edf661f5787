package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/lakshya/placement-portal/internal/app/models"
	appRepos "github.com/lakshya/placement-portal/internal/app/repositories"
	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
	"github.com/lakshya/placement-portal/internal/pkg/auth"
	"github.com/rs/zerolog"
)

// Options controls what CreateDefaultData provisions.
type Options struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
	DemoUsers     bool
}

// account is one seeded account with its optional role profile.
type account struct {
	username    string
	email       string
	password    string
	role        models.Role
	department  string
	student     *models.StudentProfile
	coordinator *models.CoordinatorProfile
}

func demoAccounts() []account {
	cgpa := 8.1
	return []account{
		{
			username:    "coordinator_cs",
			email:       "coordinator.cs@kkwieer.edu.in",
			password:    "coordinator123",
			role:        models.RoleCoordinator,
			department:  "CSE",
			coordinator: &models.CoordinatorProfile{Department: "CSE", Name: "CS Placement Coordinator"},
		},
		{
			username:   "student001",
			email:      "student001@kkwieer.edu.in",
			password:   "student123",
			role:       models.RoleStudent,
			department: "CSE",
			student: &models.StudentProfile{
				StudentID:      "STU001",
				FullName:       "Demo Student",
				Branch:         "CSE",
				CGPA:           &cgpa,
				GraduationYear: 2025,
			},
		},
	}
}

// CreateDefaultData creates the administrator and, optionally, demo users.
// Accounts that already exist are left untouched, so it is safe on every start.
func CreateDefaultData(ctx context.Context, store appRepos.AccountStore, transactor appRepos.AccountTransactor, opts Options, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default accounts...")

	accounts := []account{{
		username: opts.AdminUsername,
		email:    opts.AdminEmail,
		password: opts.AdminPassword,
		role:     models.RoleAdmin,
	}}
	if opts.DemoUsers {
		accounts = append(accounts, demoAccounts()...)
	}

	var finalErr error
	for _, a := range accounts {
		created, err := ensureAccount(ctx, store, transactor, a)
		switch {
		case err != nil:
			lgr.Error().Err(err).Str("username", a.username).Msg("Error creating default account")
			finalErr = errors.Join(finalErr, err)
		case created:
			lgr.Info().Str("username", a.username).Str("role", string(a.role)).Msg("Default account created")
		default:
			lgr.Debug().Str("username", a.username).Msg("Default account already exists")
		}
	}

	return finalErr
}

func ensureAccount(ctx context.Context, store appRepos.AccountStore, transactor appRepos.AccountTransactor, a account) (bool, error) {
	if a.username == "" || a.email == "" || a.password == "" {
		return false, fmt.Errorf("seed account %q is incomplete", a.username)
	}

	exists, err := store.IdentityExists(ctx, a.username, a.email)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	hash, err := auth.HashPassword(a.password)
	if err != nil {
		return false, err
	}

	err = transactor.WithinTransaction(ctx, func(ctx context.Context, tx appRepos.AccountStore) error {
		acc := &models.Account{
			Username:     a.username,
			Email:        a.email,
			PasswordHash: hash,
			Role:         a.role,
			IsActive:     true,
		}
		if a.department != "" {
			dept := a.department
			acc.Department = &dept
		}
		if err := tx.CreateAccount(ctx, acc); err != nil {
			return err
		}

		switch {
		case a.student != nil:
			profile := *a.student
			profile.AccountID = acc.ID
			return tx.CreateStudentProfile(ctx, &profile)
		case a.coordinator != nil:
			profile := *a.coordinator
			profile.AccountID = acc.ID
			return tx.CreateCoordinatorProfile(ctx, &profile)
		}
		return nil
	})
	// Another instance may have seeded the same account concurrently.
	if errors.Is(err, apperrors.ErrConflict) {
		return false, nil
	}
	return err == nil, err
}
