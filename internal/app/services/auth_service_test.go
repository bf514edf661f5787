package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/lakshya/placement-portal/internal/app/models/dto"
	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
	"github.com/lakshya/placement-portal/internal/pkg/auth"
	"github.com/lakshya/placement-portal/internal/pkg/events"
	"github.com/lakshya/placement-portal/internal/pkg/metrics"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

type authFixture struct {
	store       *memoryStore
	files       *memoryFiles
	revocations *auth.MemoryRevocationList
	clock       *testClock
	jwt         *auth.JWTService
	publisher   *recordingPublisher
	svc         AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		store:     newMemoryStore(),
		files:     newMemoryFiles(),
		clock:     &testClock{t: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)},
		publisher: newRecordingPublisher(),
	}
	f.revocations = auth.NewMemoryRevocationList(f.clock.Now)
	f.jwt = auth.NewJWTService(auth.JWTConfig{
		SecretKey: "test-secret",
		TokenTTL:  24 * time.Hour,
		Issuer:    "placement-portal",
	}, auth.WithClock(f.clock.Now))
	f.svc = NewAuthService(f.store, f.store, f.jwt, f.revocations, f.files, f.publisher, metrics.New(), zerolog.Nop())
	return f
}

func studentRequest(username, studentID string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Username: username,
		Email:    username + "@x.edu",
		Password: "secret1",
		Role:     models.RoleStudent,
		StudentData: &dto.StudentData{
			StudentID:      studentID,
			FullName:       "A B",
			Branch:         "CSE",
			GraduationYear: 2025,
		},
	}
}

func coordinatorRequest(username, department string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Username:        username,
		Email:           username + "@x.edu",
		Password:        "secret1",
		Role:            models.RoleCoordinator,
		Department:      &department,
		CoordinatorData: &dto.CoordinatorData{Name: "Dr. " + username},
	}
}

func TestRegisterThenLogin_Student(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, studentRequest("stu1", "S001"))
	require.NoError(t, err)
	assert.Positive(t, reg.UserID)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "Bearer", reg.TokenType)

	assert.Len(t, f.store.accounts, 1)
	assert.Len(t, f.store.students, 1)
	assert.Equal(t, "S001", f.store.students[reg.UserID].StudentID)
	assert.Equal(t, models.PlacementNotPlaced, f.store.students[reg.UserID].PlacementStatus)
	assert.NotEqual(t, "secret1", f.store.accounts[reg.UserID].PasswordHash)

	login, err := f.svc.Login(ctx, &dto.LoginRequest{Username: "stu1", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, int64(86400), login.ExpiresIn)

	claims, err := f.jwt.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, claims.Principal().Role)
	assert.Equal(t, reg.UserID, claims.Principal().AccountID)
	assert.Equal(t, "CSE", claims.Principal().Department)

	require.NotNil(t, login.User)
	require.NotNil(t, login.User.Student)
	assert.Equal(t, "S001", login.User.Student.StudentID)
	require.NotNil(t, f.store.accounts[reg.UserID].LastLoginAt)

	require.True(t, f.publisher.wait())
	assert.Equal(t, []string{events.AccountRegistered}, f.publisher.types())
}

func TestRegister_Coordinator(t *testing.T) {
	f := newAuthFixture(t)

	reg, err := f.svc.Register(context.Background(), coordinatorRequest("coordinator_cs", "CSE"))
	require.NoError(t, err)

	profile, ok := f.store.coordinators[reg.UserID]
	require.True(t, ok)
	assert.Equal(t, "CSE", profile.Department)
	assert.Equal(t, "Dr. coordinator_cs", profile.Name)

	claims, err := f.jwt.ValidateToken(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCoordinator, claims.Principal().Role)
	assert.Equal(t, "CSE", claims.Principal().Department)
}

func TestRegister_Admin(t *testing.T) {
	f := newAuthFixture(t)

	reg, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "root", Email: "ROOT@X.edu", Password: "secret1", Role: models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "root@x.edu", f.store.accounts[reg.UserID].Email)
	assert.Empty(t, f.store.students)
	assert.Empty(t, f.store.coordinators)
}

func TestRegister_Uniqueness(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, studentRequest("stu1", "S001"))
	require.NoError(t, err)

	sameUsername := studentRequest("stu1", "S002")
	sameUsername.Email = "other@x.edu"
	_, err = f.svc.Register(ctx, sameUsername)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	sameEmail := studentRequest("stu2", "S002")
	sameEmail.Email = "STU1@x.edu"
	_, err = f.svc.Register(ctx, sameEmail)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	assert.Len(t, f.store.accounts, 1)
}

func TestRegister_DuplicateStudentIDRollsBackAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, studentRequest("stu1", "S001"))
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, studentRequest("stu2", "S001"))
	assert.ErrorIs(t, err, apperrors.ErrStudentIDTaken)
	assert.Len(t, f.store.accounts, 1)
	assert.Len(t, f.store.students, 1)
	assert.Equal(t, 1, f.store.rollbacks)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Username: "stu2", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRegister_UniqueConstraintIsSourceOfTruth(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, studentRequest("stu1", "S001"))
	require.NoError(t, err)

	f.store.staleStudentIDCheck = true
	_, err = f.svc.Register(ctx, studentRequest("stu2", "S001"))
	assert.ErrorIs(t, err, apperrors.ErrStudentIDTaken)
	assert.Len(t, f.store.accounts, 1)
}

func TestRegister_Validation(t *testing.T) {
	dept := "CSE"
	empty := ""

	tests := []struct {
		name   string
		mutate func(r *dto.RegisterRequest)
	}{
		{"missing student data", func(r *dto.RegisterRequest) { r.StudentData = nil }},
		{"coordinator data on student", func(r *dto.RegisterRequest) { r.CoordinatorData = &dto.CoordinatorData{Name: "X Y"} }},
		{"unknown role", func(r *dto.RegisterRequest) { r.Role = "superuser" }},
		{"short password", func(r *dto.RegisterRequest) { r.Password = "abc" }},
		{"bad username", func(r *dto.RegisterRequest) { r.Username = "a b" }},
		{"bad student id", func(r *dto.RegisterRequest) { r.StudentData.StudentID = "S 1" }},
		{"cgpa out of range", func(r *dto.RegisterRequest) { c := 11.0; r.StudentData.CGPA = &c }},
		{"bad phone", func(r *dto.RegisterRequest) { r.StudentData.Phone = "12" }},
		{"coordinator without department", func(r *dto.RegisterRequest) {
			r.Role = models.RoleCoordinator
			r.StudentData = nil
			r.Department = &empty
			r.CoordinatorData = &dto.CoordinatorData{Name: "X Y"}
		}},
		{"coordinator without data", func(r *dto.RegisterRequest) {
			r.Role = models.RoleCoordinator
			r.StudentData = nil
			r.Department = &dept
		}},
		{"admin with student data", func(r *dto.RegisterRequest) { r.Role = models.RoleAdmin }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			req := studentRequest("stu1", "S001")
			tt.mutate(req)

			_, err := f.svc.Register(context.Background(), req)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
			assert.Empty(t, f.store.accounts)
			assert.Zero(t, f.store.commits+f.store.rollbacks)
		})
	}
}

func TestLogin_FailuresShareOneMessage(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, studentRequest("stu1", "S001"))
	require.NoError(t, err)

	_, unknown := f.svc.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "secret1"})
	_, wrong := f.svc.Login(ctx, &dto.LoginRequest{Username: "stu1", Password: "secret2"})

	require.NoError(t, f.store.SetActive(ctx, reg.UserID, false))
	_, inactive := f.svc.Login(ctx, &dto.LoginRequest{Username: "stu1", Password: "secret1"})

	for _, err := range []error{unknown, wrong, inactive} {
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		assert.Equal(t, "Invalid username or password", err.Error())
	}
}

func TestLogin_ByEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, studentRequest("stu1", "S001"))
	require.NoError(t, err)

	resp, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "STU1@x.edu", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "stu1", resp.User.Username)
}

func TestLogout_RevokesForRemainingLifetime(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, studentRequest("stu1", "S001"))
	require.NoError(t, err)
	claims, err := f.jwt.ValidateToken(reg.Token)
	require.NoError(t, err)

	f.clock.t = f.clock.t.Add(time.Hour)
	require.NoError(t, f.svc.Logout(ctx, claims))

	revoked, err := f.revocations.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	f.clock.t = f.clock.t.Add(23 * time.Hour)
	revoked, err = f.revocations.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	assert.ErrorIs(t, f.svc.Logout(ctx, &auth.Claims{}), apperrors.ErrTokenInvalid)
}

func TestGetProfile(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	cgpa := 8.7
	req := studentRequest("stu1", "S001")
	req.StudentData.CGPA = &cgpa
	reg, err := f.svc.Register(ctx, req)
	require.NoError(t, err)

	profile, err := f.svc.GetProfile(ctx, reg.UserID)
	require.NoError(t, err)
	require.NotNil(t, profile.Student)
	assert.Equal(t, "Excellent", profile.Student.PlacementCategory)
	assert.Nil(t, profile.Coordinator)

	_, err = f.svc.GetProfile(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)

	orphan := &models.Account{Username: "orphan", Email: "orphan@x.edu", Role: models.RoleStudent, IsActive: true}
	require.NoError(t, f.store.CreateAccount(ctx, orphan))
	_, err = f.svc.GetProfile(ctx, orphan.ID)
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
}

func principalFor(t *testing.T, f *authFixture, token string) models.Principal {
	t.Helper()
	claims, err := f.jwt.ValidateToken(token)
	require.NoError(t, err)
	return claims.Principal()
}

func TestUpdateProfile_Student(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, studentRequest("stu1", "S001"))
	require.NoError(t, err)
	p := principalFor(t, f, reg.Token)

	name := "A B C"
	cgpa := 7.2
	email := "New@X.edu"
	profile, err := f.svc.UpdateProfile(ctx, p, &dto.UpdateProfileRequest{FullName: &name, CGPA: &cgpa, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "new@x.edu", profile.Email)
	assert.Equal(t, "A B C", profile.Student.FullName)
	assert.Equal(t, "Good", profile.Student.PlacementCategory)

	coordName := "X"
	_, err = f.svc.UpdateProfile(ctx, p, &dto.UpdateProfileRequest{Name: &coordName})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.UpdateProfile(ctx, p, &dto.UpdateProfileRequest{})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestUpdateProfile_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, studentRequest("stu1", "S001"))
	require.NoError(t, err)
	reg, err := f.svc.Register(ctx, studentRequest("stu2", "S002"))
	require.NoError(t, err)

	taken := "stu1@x.edu"
	_, err = f.svc.UpdateProfile(ctx, principalFor(t, f, reg.Token), &dto.UpdateProfileRequest{Email: &taken})
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
	assert.Equal(t, "stu2@x.edu", f.store.accounts[reg.UserID].Email)
}

func TestUpdateProfile_RollsBackEmailWhenProfileMissing(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	orphan := &models.Account{Username: "orphan", Email: "orphan@x.edu", Role: models.RoleStudent, IsActive: true}
	require.NoError(t, f.store.CreateAccount(ctx, orphan))

	email := "changed@x.edu"
	branch := "ECE"
	p := models.Principal{AccountID: orphan.ID, Role: models.RoleStudent}
	_, err := f.svc.UpdateProfile(ctx, p, &dto.UpdateProfileRequest{Email: &email, Branch: &branch})
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
	assert.Equal(t, "orphan@x.edu", f.store.accounts[orphan.ID].Email)
}

func TestUpdateProfile_Coordinator(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, coordinatorRequest("coord", "CSE"))
	require.NoError(t, err)
	p := principalFor(t, f, reg.Token)

	name := "Prof. Rao"
	profile, err := f.svc.UpdateProfile(ctx, p, &dto.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Prof. Rao", profile.Coordinator.Name)

	cgpa := 9.0
	_, err = f.svc.UpdateProfile(ctx, p, &dto.UpdateProfileRequest{CGPA: &cgpa})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func uploadHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("resume", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["resume"][0]
}

func TestUploadResume(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, studentRequest("stu1", "S001"))
	require.NoError(t, err)
	p := principalFor(t, f, reg.Token)

	first, err := f.svc.UploadResume(ctx, p, uploadHeader(t, "cv.pdf", []byte("%PDF-1.4 first")))
	require.NoError(t, err)
	require.NotNil(t, first.ResumePath)
	firstPath := *first.ResumePath
	assert.Equal(t, firstPath, *f.store.students[reg.UserID].ResumePath)

	second, err := f.svc.UploadResume(ctx, p, uploadHeader(t, "cv.pdf", []byte("%PDF-1.4 second")))
	require.NoError(t, err)
	assert.NotEqual(t, firstPath, *second.ResumePath)
	assert.Equal(t, []string{firstPath}, f.files.deleted)

	_, err = f.svc.UploadResume(ctx, p, uploadHeader(t, "cv.docx", []byte("PK..")))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	coord := models.Principal{AccountID: 42, Role: models.RoleCoordinator}
	_, err = f.svc.UploadResume(ctx, coord, uploadHeader(t, "cv.pdf", []byte("%PDF-1.4")))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
