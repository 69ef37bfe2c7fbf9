package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/agency-crm-backend/internal/models"
	"github.com/ignatzorin/agency-crm-backend/internal/pkg/apperror"
	"github.com/ignatzorin/agency-crm-backend/internal/repository"
)

// mockAuthRepository реализует AuthRepository для тестов.
type mockAuthRepository struct {
	usersByEmail map[string]*models.User
	usersByID    map[uuid.UUID]*models.User
	sessions     map[string]*models.Session
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[uuid.UUID]*models.User),
		sessions:     make(map[string]*models.Session),
	}
}

func (m *mockAuthRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	return nil
}

func (m *mockAuthRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	if user, ok := m.usersByID[userID]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

func (m *mockAuthRepository) CreateSession(ctx context.Context, session *models.Session) error {
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockAuthRepository) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	if session, ok := m.sessions[refreshToken]; ok {
		return session, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	delete(m.sessions, refreshToken)
	return nil
}

// mockOrganizationCreator создаёт организации в памяти.
type mockOrganizationCreator struct {
	created []*models.Organization
}

func (m *mockOrganizationCreator) Create(ctx context.Context, org *models.Organization) error {
	org.ID = uuid.New()
	org.CreatedAt = time.Now()
	m.created = append(m.created, org)
	return nil
}

func TestAuthService_RegisterCreatesOrganizationAdmin(t *testing.T) {
	repo := newMockAuthRepository()
	orgs := &mockOrganizationCreator{}
	tokenManager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	svc := NewAuthService(repo, orgs, tokenManager)

	ctx := context.Background()
	res, err := svc.Register(ctx, RegisterInput{
		OrganizationName: "Digital Лаборатория",
		Email:            "director@agency.ru",
		Password:         "Password123",
	}, map[string]string{"ip": "127.0.0.1"})
	if err != nil {
		t.Fatalf("регистрация вернула ошибку: %v", err)
	}

	if len(orgs.created) != 1 {
		t.Fatalf("должна быть создана одна организация, получили %d", len(orgs.created))
	}
	if res.User.OrganizationID != orgs.created[0].ID {
		t.Fatalf("сотрудник должен принадлежать созданной организации")
	}
	if res.User.Role != models.UserRoleAdmin {
		t.Fatalf("первый сотрудник организации должен быть admin, получили %s", res.User.Role)
	}
	if res.User.Name != "director" {
		t.Fatalf("имя должно выводиться из email, получили %q", res.User.Name)
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("ожидалась одна сессия, получили %d", len(repo.sessions))
	}
}

func TestAuthService_RegisterEnforcesPasswordPolicy(t *testing.T) {
	repo := newMockAuthRepository()
	tokenManager := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	svc := NewAuthService(repo, &mockOrganizationCreator{}, tokenManager)

	_, err := svc.Register(context.Background(), RegisterInput{
		OrganizationName: "Агентство",
		Email:            "director@agency.ru",
		Password:         "password123",
	}, nil)
	if !apperror.IsValidation(err) {
		t.Fatalf("пароль без заглавной буквы должен отклоняться, получили %v", err)
	}
	if len(repo.usersByEmail) != 0 {
		t.Fatalf("при отклонённом пароле сотрудник создаваться не должен")
	}
}

func TestAuthService_RegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newMockAuthRepository()
	tokenManager := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	svc := NewAuthService(repo, &mockOrganizationCreator{}, tokenManager)

	ctx := context.Background()
	in := RegisterInput{
		OrganizationName: "Агентство",
		Email:            "director@agency.ru",
		Password:         "Password123",
	}
	if _, err := svc.Register(ctx, in, nil); err != nil {
		t.Fatalf("первая регистрация вернула ошибку: %v", err)
	}

	_, err := svc.Register(ctx, in, nil)
	if !apperror.IsConflict(err) {
		t.Fatalf("повторная регистрация должна давать конфликт, получили %v", err)
	}
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	repo := newMockAuthRepository()
	tokenManager := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	svc := NewAuthService(repo, &mockOrganizationCreator{}, tokenManager)

	hash, _ := bcrypt.GenerateFromPassword([]byte("правильный"), bcrypt.DefaultCost)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "manager@agency.ru",
		PasswordHash: string(hash),
		Role:         models.UserRoleManager,
		IsActive:     true,
	}
	repo.usersByEmail[user.Email] = user
	repo.usersByID[user.ID] = user

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "manager@agency.ru",
		Password: "неправильный",
	}, nil)
	if err == nil {
		t.Fatalf("вход с неверным паролем должен отклоняться")
	}
}

func TestAuthService_RefreshRotatesSession(t *testing.T) {
	repo := newMockAuthRepository()
	orgs := &mockOrganizationCreator{}
	tokenManager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	svc := NewAuthService(repo, orgs, tokenManager)

	ctx := context.Background()
	res, err := svc.Register(ctx, RegisterInput{
		OrganizationName: "Агентство",
		Email:            "director@agency.ru",
		Password:         "Password123",
	}, nil)
	if err != nil {
		t.Fatalf("регистрация вернула ошибку: %v", err)
	}

	oldToken := res.TokenPair.RefreshToken
	refreshed, err := svc.Refresh(ctx, oldToken, nil)
	if err != nil {
		t.Fatalf("refresh вернул ошибку: %v", err)
	}

	if refreshed.TokenPair.RefreshToken == oldToken {
		t.Fatalf("ожидался новый refresh токен")
	}
	if _, ok := repo.sessions[oldToken]; ok {
		t.Fatalf("старая сессия должна быть удалена, токены одноразовые")
	}

	// повторное использование погашенного токена отклоняется
	if _, err := svc.Refresh(ctx, oldToken, nil); err == nil {
		t.Fatalf("погашенный refresh токен не должен приниматься")
	}
}

func TestTokenManager_AccessClaimsRoundtrip(t *testing.T) {
	tokenManager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)

	user := &models.User{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		Email:          "manager@agency.ru",
		Role:           models.UserRoleManager,
	}

	pair, accessExp, refreshExp, err := tokenManager.GeneratePair(user)
	if err != nil {
		t.Fatalf("не удалось сгенерировать токены: %v", err)
	}
	if accessExp.After(refreshExp) {
		t.Fatalf("access должен истекать раньше refresh")
	}

	claims, err := tokenManager.ParseAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("разбор access токена вернул ошибку: %v", err)
	}
	if claims.UserID != user.ID || claims.OrganizationID != user.OrganizationID || claims.Role != user.Role {
		t.Fatalf("клеймы не совпадают: %+v", claims)
	}

	if _, err := tokenManager.ParseAccess(pair.RefreshToken); err == nil {
		t.Fatalf("refresh токен не должен приниматься как access")
	}
}
