package portfolio

import (
	"strings"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientStatus is the lifecycle state of a client
type ClientStatus string

const (
	ClientStatusPending   ClientStatus = "PENDING"
	ClientStatusActive    ClientStatus = "ACTIVE"
	ClientStatusClosed    ClientStatus = "CLOSED"
	ClientStatusRejected  ClientStatus = "REJECTED"
	ClientStatusWithdrawn ClientStatus = "WITHDRAWN"
)

// IsValid checks the status
func (s ClientStatus) IsValid() bool {
	switch s {
	case ClientStatusPending, ClientStatusActive, ClientStatusClosed, ClientStatusRejected, ClientStatusWithdrawn:
		return true
	}
	return false
}

// Client is an individual or entity borrowing from the institution
type Client struct {
	shared.TenantAggregateRoot
	AccountNo      string
	OfficeID       uuid.UUID
	StaffID        *uuid.UUID
	Firstname      string
	Lastname       string
	Fullname       string
	ExternalID     string
	MobileNo       string
	DateOfBirth    *time.Time
	Gender         string
	Status         ClientStatus
	SubmittedOn    time.Time
	ActivationDate *time.Time
	ClosureDate    *time.Time
	ClosureReason  string
}

// ClientInput carries the descriptive fields of a client
type ClientInput struct {
	Firstname   string
	Lastname    string
	Fullname    string
	ExternalID  string
	MobileNo    string
	DateOfBirth *time.Time
	Gender      string
}

func (in ClientInput) validate() error {
	person := strings.TrimSpace(in.Firstname) != "" || strings.TrimSpace(in.Lastname) != ""
	entity := strings.TrimSpace(in.Fullname) != ""
	if person && entity {
		return shared.NewDomainError("CLIENT_NAME_AMBIGUOUS", "Provide either firstname/lastname or fullname, not both")
	}
	if !person && !entity {
		return shared.NewDomainError("CLIENT_NAME_REQUIRED", "Client name is required")
	}
	if person && (strings.TrimSpace(in.Firstname) == "" || strings.TrimSpace(in.Lastname) == "") {
		return shared.NewDomainError("CLIENT_NAME_REQUIRED", "Both firstname and lastname are required")
	}
	if in.DateOfBirth != nil && shared.IsAfterToday(*in.DateOfBirth) {
		return shared.NewDomainError("INVALID_DATE_OF_BIRTH", "Date of birth cannot be in the future")
	}
	return nil
}

// NewClient creates a pending client
func NewClient(tenantID, officeID uuid.UUID, accountNo string, in ClientInput, submittedOn time.Time) (*Client, error) {
	if officeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OFFICE", "Office is required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if shared.IsAfterToday(submittedOn) {
		return nil, shared.NewDomainError("SUBMITTED_DATE_IN_FUTURE", "Submitted date cannot be in the future")
	}
	c := &Client{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AccountNo:           accountNo,
		OfficeID:            officeID,
		Status:              ClientStatusPending,
		SubmittedOn:         shared.Day(submittedOn),
	}
	c.assign(in)
	return c, nil
}

func (c *Client) assign(in ClientInput) {
	c.Firstname = strings.TrimSpace(in.Firstname)
	c.Lastname = strings.TrimSpace(in.Lastname)
	c.Fullname = strings.TrimSpace(in.Fullname)
	c.ExternalID = strings.TrimSpace(in.ExternalID)
	c.MobileNo = in.MobileNo
	c.DateOfBirth = in.DateOfBirth
	c.Gender = in.Gender
}

// DisplayName is the name used on statements and sheets
func (c *Client) DisplayName() string {
	if c.Fullname != "" {
		return c.Fullname
	}
	return c.Firstname + " " + c.Lastname
}

// Update changes the descriptive fields
func (c *Client) Update(in ClientInput) error {
	if c.Status == ClientStatusClosed || c.Status == ClientStatusRejected || c.Status == ClientStatusWithdrawn {
		return shared.NewDomainError("CLIENT_NOT_EDITABLE", "Closed, rejected or withdrawn clients cannot be edited")
	}
	if err := in.validate(); err != nil {
		return err
	}
	c.assign(in)
	c.Touch()
	c.IncrementVersion()
	return nil
}

func (c *Client) transition(from ClientStatus, to ClientStatus, date time.Time) error {
	if c.Status != from {
		return shared.NewDomainError("INVALID_STATE", "Client must be "+string(from)+" to become "+string(to))
	}
	if shared.IsAfterToday(date) {
		return shared.NewDomainError("DATE_IN_FUTURE", "Transition date cannot be in the future")
	}
	if shared.Day(date).Before(c.SubmittedOn) {
		return shared.NewDomainError("DATE_BEFORE_SUBMITTAL", "Transition date cannot be before the submitted date")
	}
	c.Status = to
	c.Touch()
	c.IncrementVersion()
	return nil
}

// Activate moves a pending client to active
func (c *Client) Activate(date time.Time) error {
	if err := c.transition(ClientStatusPending, ClientStatusActive, date); err != nil {
		return err
	}
	d := shared.Day(date)
	c.ActivationDate = &d
	return nil
}

// Reject declines a pending client
func (c *Client) Reject(date time.Time, reason string) error {
	if err := c.transition(ClientStatusPending, ClientStatusRejected, date); err != nil {
		return err
	}
	d := shared.Day(date)
	c.ClosureDate, c.ClosureReason = &d, reason
	return nil
}

// Withdraw records the client withdrawing a pending application
func (c *Client) Withdraw(date time.Time, reason string) error {
	if err := c.transition(ClientStatusPending, ClientStatusWithdrawn, date); err != nil {
		return err
	}
	d := shared.Day(date)
	c.ClosureDate, c.ClosureReason = &d, reason
	return nil
}

// Close ends an active client relationship. hasActiveLoans must be false.
func (c *Client) Close(date time.Time, reason string, hasActiveLoans bool) error {
	if hasActiveLoans {
		return shared.NewDomainError("CLIENT_HAS_ACTIVE_LOANS", "Client with active loans cannot be closed")
	}
	if c.ActivationDate != nil && shared.Day(date).Before(*c.ActivationDate) {
		return shared.NewDomainError("DATE_BEFORE_ACTIVATION", "Closure date cannot be before activation")
	}
	if err := c.transition(ClientStatusActive, ClientStatusClosed, date); err != nil {
		return err
	}
	d := shared.Day(date)
	c.ClosureDate, c.ClosureReason = &d, reason
	return nil
}

// Reactivate reopens a closed client as pending
func (c *Client) Reactivate(date time.Time) error {
	if c.ClosureDate != nil && shared.Day(date).Before(*c.ClosureDate) {
		return shared.NewDomainError("DATE_BEFORE_CLOSURE", "Reactivation date cannot be before closure")
	}
	if err := c.transition(ClientStatusClosed, ClientStatusPending, date); err != nil {
		return err
	}
	c.ActivationDate, c.ClosureDate, c.ClosureReason = nil, nil, ""
	return nil
}

// AssignStaff sets the client's staff member. staffOffice must be the
// client's office or one of its ancestors; clientOffice is the client's office.
func (c *Client) AssignStaff(staffID uuid.UUID, staffOfficeHierarchy, clientOfficeHierarchy string) error {
	if !strings.HasPrefix(clientOfficeHierarchy, staffOfficeHierarchy) {
		return shared.NewDomainError("STAFF_OFFICE_MISMATCH", "Staff must belong to the client's office hierarchy")
	}
	c.StaffID = &staffID
	c.Touch()
	return nil
}

// UnassignStaff clears the staff member
func (c *Client) UnassignStaff() error {
	if c.StaffID == nil {
		return shared.NewDomainError("CLIENT_NO_STAFF", "Client has no assigned staff")
	}
	c.StaffID = nil
	c.Touch()
	return nil
}

// CanDelete reports whether the client record may be removed
func (c *Client) CanDelete() error {
	if c.Status != ClientStatusPending {
		return shared.NewDomainError("CLIENT_NOT_PENDING", "Only pending clients can be deleted")
	}
	return nil
}

// ClientDocument is metadata of a file stored against a client
type ClientDocument struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	ClientID    uuid.UUID
	Name        string
	FileName    string
	ContentType string
	Size        int64
	StorageKey  string
	Description string
	CreatedAt   time.Time
}

// MaxDocumentSize caps uploads at 10 MiB
const MaxDocumentSize int64 = 10 << 20

// NewClientDocument validates upload metadata and derives its storage key
func NewClientDocument(c *Client, name, fileName, contentType string, size int64, description string) (*ClientDocument, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Document name is required")
	}
	if size <= 0 || size > MaxDocumentSize {
		return nil, shared.NewDomainError("DOCUMENT_SIZE_INVALID", "Document must be between 1 byte and 10 MiB")
	}
	if fileName == "" || strings.ContainsAny(fileName, "/\\") {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "Invalid document file name")
	}
	id := uuid.New()
	return &ClientDocument{
		ID:          id,
		TenantID:    c.TenantID,
		ClientID:    c.ID,
		Name:        strings.TrimSpace(name),
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
		StorageKey:  c.TenantID.String() + "/clients/" + c.ID.String() + "/" + id.String() + "/" + fileName,
		Description: description,
		CreatedAt:   time.Now(),
	}, nil
}
