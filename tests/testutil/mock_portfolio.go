package testutil

import (
	"context"
	"time"

	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockClientRepository is a mock implementation of portfolio.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByIDForTenant(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*portfolio.Client, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portfolio.Client), args.Error(1)
}

func (m *MockClientRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*portfolio.Client, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*portfolio.Client), args.Error(1)
}

func (m *MockClientRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter portfolio.ClientFilter) ([]portfolio.Client, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]portfolio.Client), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientRepository) ExistsByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, externalID, excludeID)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockClientRepository) GenerateAccountNo(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(string), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, client *portfolio.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockClientRepository) SaveDocument(ctx context.Context, doc *portfolio.ClientDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockClientRepository) FindDocument(ctx context.Context, tenantID uuid.UUID, clientID uuid.UUID, docID uuid.UUID) (*portfolio.ClientDocument, error) {
	args := m.Called(ctx, tenantID, clientID, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portfolio.ClientDocument), args.Error(1)
}

func (m *MockClientRepository) FindDocuments(ctx context.Context, tenantID uuid.UUID, clientID uuid.UUID) ([]portfolio.ClientDocument, error) {
	args := m.Called(ctx, tenantID, clientID)
	return args.Get(0).([]portfolio.ClientDocument), args.Error(1)
}

func (m *MockClientRepository) DeleteDocument(ctx context.Context, tenantID uuid.UUID, docID uuid.UUID) error {
	args := m.Called(ctx, tenantID, docID)
	return args.Error(0)
}

// MockGroupRepository is a mock implementation of portfolio.GroupRepository
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) FindByIDForTenant(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*portfolio.Group, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portfolio.Group), args.Error(1)
}

func (m *MockGroupRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter portfolio.GroupFilter) ([]portfolio.Group, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]portfolio.Group), args.Get(1).(int64), args.Error(2)
}

func (m *MockGroupRepository) FindByParent(ctx context.Context, tenantID uuid.UUID, centerID uuid.UUID) ([]portfolio.Group, error) {
	args := m.Called(ctx, tenantID, centerID)
	return args.Get(0).([]portfolio.Group), args.Error(1)
}

func (m *MockGroupRepository) FindByClient(ctx context.Context, tenantID uuid.UUID, clientID uuid.UUID) ([]portfolio.Group, error) {
	args := m.Called(ctx, tenantID, clientID)
	return args.Get(0).([]portfolio.Group), args.Error(1)
}

func (m *MockGroupRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, officeID uuid.UUID, level portfolio.GroupLevel, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, officeID, level, name, excludeID)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockGroupRepository) Save(ctx context.Context, group *portfolio.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockCalendarRepository is a mock implementation of portfolio.CalendarRepository
type MockCalendarRepository struct {
	mock.Mock
}

func (m *MockCalendarRepository) FindByIDForTenant(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*portfolio.Calendar, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portfolio.Calendar), args.Error(1)
}

func (m *MockCalendarRepository) FindForEntity(ctx context.Context, tenantID uuid.UUID, entityType portfolio.CalendarEntityType, entityID uuid.UUID, calType portfolio.CalendarType) (*portfolio.Calendar, *portfolio.CalendarInstance, error) {
	args := m.Called(ctx, tenantID, entityType, entityID, calType)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*portfolio.Calendar), optional[*portfolio.CalendarInstance](args.Get(1)), args.Error(2)
}

func (m *MockCalendarRepository) FindInstances(ctx context.Context, tenantID uuid.UUID, calendarID uuid.UUID) ([]portfolio.CalendarInstance, error) {
	args := m.Called(ctx, tenantID, calendarID)
	return args.Get(0).([]portfolio.CalendarInstance), args.Error(1)
}

func (m *MockCalendarRepository) FindInstance(ctx context.Context, tenantID uuid.UUID, instanceID uuid.UUID) (*portfolio.CalendarInstance, error) {
	args := m.Called(ctx, tenantID, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portfolio.CalendarInstance), args.Error(1)
}

func (m *MockCalendarRepository) FindHistory(ctx context.Context, tenantID uuid.UUID, calendarID uuid.UUID) ([]portfolio.CalendarHistory, error) {
	args := m.Called(ctx, tenantID, calendarID)
	return args.Get(0).([]portfolio.CalendarHistory), args.Error(1)
}

func (m *MockCalendarRepository) Save(ctx context.Context, cal *portfolio.Calendar) error {
	args := m.Called(ctx, cal)
	return args.Error(0)
}

func (m *MockCalendarRepository) SaveInstance(ctx context.Context, instance *portfolio.CalendarInstance) error {
	args := m.Called(ctx, instance)
	return args.Error(0)
}

func (m *MockCalendarRepository) SaveHistory(ctx context.Context, history *portfolio.CalendarHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockCalendarRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockMeetingRepository is a mock implementation of portfolio.MeetingRepository
type MockMeetingRepository struct {
	mock.Mock
}

func (m *MockMeetingRepository) FindByIDForTenant(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*portfolio.Meeting, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portfolio.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) FindByInstanceAndDate(ctx context.Context, tenantID uuid.UUID, instanceID uuid.UUID, date time.Time) (*portfolio.Meeting, error) {
	args := m.Called(ctx, tenantID, instanceID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portfolio.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) FindByInstance(ctx context.Context, tenantID uuid.UUID, instanceID uuid.UUID) ([]portfolio.Meeting, error) {
	args := m.Called(ctx, tenantID, instanceID)
	return args.Get(0).([]portfolio.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) CountForCalendar(ctx context.Context, tenantID uuid.UUID, calendarID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, calendarID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMeetingRepository) Save(ctx context.Context, meeting *portfolio.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func (m *MockMeetingRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockLoanProductRepository is a mock implementation of portfolio.LoanProductRepository
type MockLoanProductRepository struct {
	mock.Mock
}

func (m *MockLoanProductRepository) FindByIDForTenant(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*portfolio.LoanProduct, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portfolio.LoanProduct), args.Error(1)
}

func (m *MockLoanProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]portfolio.LoanProduct, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]portfolio.LoanProduct), args.Get(1).(int64), args.Error(2)
}

func (m *MockLoanProductRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, name, excludeID)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockLoanProductRepository) Save(ctx context.Context, product *portfolio.LoanProduct) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// MockLoanRepository is a mock implementation of portfolio.LoanRepository
type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) FindByIDForTenant(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*portfolio.Loan, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portfolio.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter portfolio.LoanFilter) ([]portfolio.Loan, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]portfolio.Loan), args.Get(1).(int64), args.Error(2)
}

func (m *MockLoanRepository) FindActiveByOffice(ctx context.Context, tenantID uuid.UUID, officeID uuid.UUID) ([]portfolio.Loan, error) {
	args := m.Called(ctx, tenantID, officeID)
	return args.Get(0).([]portfolio.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindActiveByBorrowers(ctx context.Context, tenantID uuid.UUID, clientIDs []uuid.UUID, groupIDs []uuid.UUID) ([]portfolio.Loan, error) {
	args := m.Called(ctx, tenantID, clientIDs, groupIDs)
	return args.Get(0).([]portfolio.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindOpenIDsByOffices(ctx context.Context, tenantID uuid.UUID, officeIDs []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID, officeIDs)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockLoanRepository) FindActiveOfficeIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockLoanRepository) CountActiveForClient(ctx context.Context, tenantID uuid.UUID, clientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, clientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLoanRepository) CountActiveForGroup(ctx context.Context, tenantID uuid.UUID, groupID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, groupID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLoanRepository) GenerateAccountNo(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(string), args.Error(1)
}

func (m *MockLoanRepository) Save(ctx context.Context, loan *portfolio.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func optional[T any](v any) T {
	var zero T
	if v == nil {
		return zero
	}
	return v.(T)
}
