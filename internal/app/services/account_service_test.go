package services

import (
	"context"
	"testing"

	authz "github.com/lakshya/placement-portal/internal/app/auth"
	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/lakshya/placement-portal/internal/app/models/dto"
	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
	"github.com/lakshya/placement-portal/internal/pkg/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_ListAndDeactivate(t *testing.T) {
	af := newAuthFixture(t)
	ctx := context.Background()

	adminReg, err := af.svc.Register(ctx, &dto.RegisterRequest{Username: "admin", Email: "admin@x.edu", Password: "secret1", Role: models.RoleAdmin})
	require.NoError(t, err)
	stuReg, err := af.svc.Register(ctx, studentRequest("stu1", "S001"))
	require.NoError(t, err)
	_, err = af.svc.Register(ctx, studentRequest("stu2", "S002"))
	require.NoError(t, err)

	publisher := newRecordingPublisher()
	svc := NewAccountService(af.store, publisher, zerolog.Nop())
	admin := principalFor(t, af, adminReg.Token)

	students, err := svc.ListAccounts(ctx, dto.AccountListQuery{Role: models.RoleStudent}, models.Page{Number: 1, Size: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), students.Pagination.TotalItems)
	assert.Equal(t, 2, students.Pagination.TotalPages)
	assert.Len(t, students.Items.([]*models.Account), 1)

	account, err := svc.SetActive(ctx, admin, stuReg.UserID, false)
	require.NoError(t, err)
	assert.False(t, account.IsActive)
	require.True(t, publisher.wait())
	assert.Equal(t, []string{events.AccountStatusChanged}, publisher.types())

	_, err = af.svc.Login(ctx, &dto.LoginRequest{Username: "stu1", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.SetActive(ctx, admin, stuReg.UserID, true)
	require.NoError(t, err)
	_, err = af.svc.Login(ctx, &dto.LoginRequest{Username: "stu1", Password: "secret1"})
	assert.NoError(t, err)

	_, err = svc.SetActive(ctx, admin, admin.AccountID, false)
	assert.ErrorIs(t, err, authz.ErrCannotDisableSelf)
	_, err = svc.SetActive(ctx, admin, 999, false)
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}
