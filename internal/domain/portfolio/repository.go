package portfolio

import (
	"context"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientFilter defines filtering options for client queries
type ClientFilter struct {
	shared.Filter
	OfficeID *uuid.UUID
	StaffID  *uuid.UUID
	Status   *ClientStatus
}

// ClientRepository defines persistence for clients and their documents
type ClientRepository interface {
	// FindByIDForTenant finds a client by ID
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Client, error)

	// FindByIDs loads clients keyed by ID; missing IDs are absent
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*Client, error)

	// FindAllForTenant lists clients
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ClientFilter) ([]Client, int64, error)

	// ExistsByExternalID checks for a duplicate external ID
	ExistsByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string, excludeID *uuid.UUID) (bool, error)

	// GenerateAccountNo returns the next CL-YYYYMM-NNNNN number
	GenerateAccountNo(ctx context.Context, tenantID uuid.UUID) (string, error)

	// Save creates or updates a client
	Save(ctx context.Context, client *Client) error

	// Delete removes a client
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// SaveDocument records document metadata
	SaveDocument(ctx context.Context, doc *ClientDocument) error

	// FindDocument finds a document of a client
	FindDocument(ctx context.Context, tenantID, clientID, docID uuid.UUID) (*ClientDocument, error)

	// FindDocuments lists the documents of a client
	FindDocuments(ctx context.Context, tenantID, clientID uuid.UUID) ([]ClientDocument, error)

	// DeleteDocument removes document metadata
	DeleteDocument(ctx context.Context, tenantID, docID uuid.UUID) error
}

// GroupFilter defines filtering options for group and center queries
type GroupFilter struct {
	shared.Filter
	Level    GroupLevel
	OfficeID *uuid.UUID
	ParentID *uuid.UUID
	Status   *GroupStatus
}

// GroupRepository defines persistence for groups and centers
type GroupRepository interface {
	// FindByIDForTenant finds a group or center by ID
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Group, error)

	// FindAllForTenant lists groups or centers
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter GroupFilter) ([]Group, int64, error)

	// FindByParent lists the groups of a center
	FindByParent(ctx context.Context, tenantID, centerID uuid.UUID) ([]Group, error)

	// FindByClient lists the groups a client belongs to
	FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]Group, error)

	// ExistsByName checks for a duplicate name within an office and level
	ExistsByName(ctx context.Context, tenantID, officeID uuid.UUID, level GroupLevel, name string, excludeID *uuid.UUID) (bool, error)

	// Save creates or updates a group and its memberships
	Save(ctx context.Context, group *Group) error

	// Delete removes a group
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// CalendarRepository defines persistence for calendars, their attachments and history
type CalendarRepository interface {
	// FindByIDForTenant finds a calendar by ID
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Calendar, error)

	// FindForEntity returns the calendar of a type attached to an entity, if any
	FindForEntity(ctx context.Context, tenantID uuid.UUID, entityType CalendarEntityType, entityID uuid.UUID, calType CalendarType) (*Calendar, *CalendarInstance, error)

	// FindInstances lists the attachments of a calendar
	FindInstances(ctx context.Context, tenantID, calendarID uuid.UUID) ([]CalendarInstance, error)

	// FindInstance finds an attachment by ID
	FindInstance(ctx context.Context, tenantID, instanceID uuid.UUID) (*CalendarInstance, error)

	// FindHistory lists superseded recurrences of a calendar
	FindHistory(ctx context.Context, tenantID, calendarID uuid.UUID) ([]CalendarHistory, error)

	// Save creates or updates a calendar
	Save(ctx context.Context, cal *Calendar) error

	// SaveInstance attaches a calendar to an entity
	SaveInstance(ctx context.Context, instance *CalendarInstance) error

	// SaveHistory records a superseded recurrence
	SaveHistory(ctx context.Context, history *CalendarHistory) error

	// Delete removes a calendar and its attachments
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// MeetingRepository defines persistence for meetings and attendance
type MeetingRepository interface {
	// FindByIDForTenant finds a meeting by ID
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Meeting, error)

	// FindByInstanceAndDate finds the meeting of an attachment on a date
	FindByInstanceAndDate(ctx context.Context, tenantID, instanceID uuid.UUID, date time.Time) (*Meeting, error)

	// FindByInstance lists the meetings of an attachment, newest first
	FindByInstance(ctx context.Context, tenantID, instanceID uuid.UUID) ([]Meeting, error)

	// CountForCalendar counts meetings held on any attachment of a calendar
	CountForCalendar(ctx context.Context, tenantID, calendarID uuid.UUID) (int64, error)

	// Save creates or updates a meeting with its attendance
	Save(ctx context.Context, meeting *Meeting) error

	// Delete removes a meeting
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// LoanProductRepository defines persistence for loan products
type LoanProductRepository interface {
	// FindByIDForTenant finds a product by ID
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*LoanProduct, error)

	// FindAllForTenant lists products
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]LoanProduct, int64, error)

	// ExistsByName checks for a duplicate product name
	ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *LoanProduct) error
}

// LoanFilter defines filtering options for loan queries
type LoanFilter struct {
	shared.Filter
	OfficeID  *uuid.UUID
	ClientID  *uuid.UUID
	GroupID   *uuid.UUID
	ProductID *uuid.UUID
	Statuses  []LoanStatus
}

// LoanRepository defines persistence for loans with their schedule and transactions
type LoanRepository interface {
	// FindByIDForTenant loads a loan with tranches, installments and transactions
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Loan, error)

	// FindAllForTenant lists loans without their installments
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter LoanFilter) ([]Loan, int64, error)

	// FindActiveByOffice loads the fully hydrated active loans of an office
	FindActiveByOffice(ctx context.Context, tenantID, officeID uuid.UUID) ([]Loan, error)

	// FindActiveByBorrowers loads the active loans of the given clients and groups
	FindActiveByBorrowers(ctx context.Context, tenantID uuid.UUID, clientIDs, groupIDs []uuid.UUID) ([]Loan, error)

	// FindOpenIDsByOffices lists IDs of open loans in the given offices
	FindOpenIDsByOffices(ctx context.Context, tenantID uuid.UUID, officeIDs []uuid.UUID) ([]uuid.UUID, error)

	// FindActiveOfficeIDs lists offices holding at least one active loan
	FindActiveOfficeIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error)

	// CountActiveForClient counts open loans of a client
	CountActiveForClient(ctx context.Context, tenantID, clientID uuid.UUID) (int64, error)

	// CountActiveForGroup counts open loans of a group
	CountActiveForGroup(ctx context.Context, tenantID, groupID uuid.UUID) (int64, error)

	// GenerateAccountNo returns the next LN-YYYYMM-NNNNN number
	GenerateAccountNo(ctx context.Context, tenantID uuid.UUID) (string, error)

	// Save writes the loan, replacing its schedule and upserting transactions
	Save(ctx context.Context, loan *Loan) error
}
