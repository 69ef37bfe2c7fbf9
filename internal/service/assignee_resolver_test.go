package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/ignatzorin/agency-crm-backend/internal/models"
	"github.com/ignatzorin/agency-crm-backend/internal/pkg/apperror"
)

// mockContactReader отдаёт контакты в рамках организации.
type mockContactReader struct {
	contacts map[uuid.UUID]*models.Contact
}

func newMockContactReader() *mockContactReader {
	return &mockContactReader{contacts: make(map[uuid.UUID]*models.Contact)}
}

func (m *mockContactReader) add(organizationID uuid.UUID) *models.Contact {
	contact := &models.Contact{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		Name:           "Иван Петров",
		Email:          "ivan@client.ru",
	}
	m.contacts[contact.ID] = contact
	return contact
}

func (m *mockContactReader) GetInOrganization(ctx context.Context, id, organizationID uuid.UUID) (*models.Contact, error) {
	contact, ok := m.contacts[id]
	if !ok || contact.OrganizationID != organizationID {
		return nil, apperror.ErrContactNotFound
	}
	return contact, nil
}

// mockUserReader отдаёт сотрудников по id.
type mockUserReader struct {
	users map[uuid.UUID]*models.User
}

func newMockUserReader() *mockUserReader {
	return &mockUserReader{users: make(map[uuid.UUID]*models.User)}
}

func (m *mockUserReader) add(organizationID uuid.UUID, role string) *models.User {
	user := &models.User{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		Email:          "manager@agency.ru",
		Role:           role,
	}
	m.users[user.ID] = user
	return user
}

func (m *mockUserReader) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, apperror.ErrUserNotFound
}

func TestAssigneeResolver_EmptyRefMeansUnassigned(t *testing.T) {
	resolver := NewAssigneeResolver(newMockContactReader(), newMockUserReader())

	got := resolver.Resolve(context.Background(), "", uuid.New())
	if got.Kind != models.AssigneeNone {
		t.Fatalf("пустая ссылка должна давать «не назначен», получили %+v", got)
	}

	got = resolver.Resolve(context.Background(), "   ", uuid.New())
	if got.Kind != models.AssigneeNone {
		t.Fatalf("ссылка из пробелов должна давать «не назначен», получили %+v", got)
	}
}

func TestAssigneeResolver_BareIDResolvesContact(t *testing.T) {
	contacts := newMockContactReader()
	resolver := NewAssigneeResolver(contacts, newMockUserReader())

	orgID := uuid.New()
	contact := contacts.add(orgID)

	got := resolver.Resolve(context.Background(), contact.ID.String(), orgID)
	if got.Kind != models.AssigneeContact || got.ID != contact.ID {
		t.Fatalf("ссылка без префикса должна резолвиться в контакта, получили %+v", got)
	}
}

func TestAssigneeResolver_UserPrefixResolvesUser(t *testing.T) {
	users := newMockUserReader()
	resolver := NewAssigneeResolver(newMockContactReader(), users)

	orgID := uuid.New()
	user := users.add(orgID, models.UserRoleManager)

	got := resolver.Resolve(context.Background(), UserTokenPrefix+user.ID.String(), orgID)
	if got.Kind != models.AssigneeUser || got.ID != user.ID {
		t.Fatalf("ссылка с префиксом должна резолвиться в сотрудника, получили %+v", got)
	}
}

func TestAssigneeResolver_UnknownRefDegradesToUnassigned(t *testing.T) {
	resolver := NewAssigneeResolver(newMockContactReader(), newMockUserReader())
	orgID := uuid.New()

	cases := []string{
		uuid.New().String(),                   // несуществующий контакт
		UserTokenPrefix + uuid.New().String(), // несуществующий сотрудник
		"не-uuid",
		UserTokenPrefix + "мусор",
	}
	for _, ref := range cases {
		if got := resolver.Resolve(context.Background(), ref, orgID); got.Kind != models.AssigneeNone {
			t.Fatalf("ссылка %q должна деградировать до «не назначен», получили %+v", ref, got)
		}
	}
}

func TestAssigneeResolver_ForeignUserRejected(t *testing.T) {
	users := newMockUserReader()
	resolver := NewAssigneeResolver(newMockContactReader(), users)

	user := users.add(uuid.New(), models.UserRoleManager)

	got := resolver.Resolve(context.Background(), UserTokenPrefix+user.ID.String(), uuid.New())
	if got.Kind != models.AssigneeNone {
		t.Fatalf("сотрудник чужой организации не должен назначаться, получили %+v", got)
	}
}

func TestAssigneeResolver_SuperadminCrossesOrganizations(t *testing.T) {
	users := newMockUserReader()
	resolver := NewAssigneeResolver(newMockContactReader(), users)

	superadmin := users.add(uuid.New(), models.UserRoleSuperadmin)

	got := resolver.Resolve(context.Background(), UserTokenPrefix+superadmin.ID.String(), uuid.New())
	if got.Kind != models.AssigneeUser || got.ID != superadmin.ID {
		t.Fatalf("суперадмин должен назначаться в любую организацию, получили %+v", got)
	}
}
