package portfolio

import (
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyTotals sums amounts per currency code
type CurrencyTotals map[string]decimal.Decimal

func (t CurrencyTotals) add(currency string, amount decimal.Decimal) {
	t[currency] = t[currency].Add(amount)
}

func (t CurrencyTotals) merge(other CurrencyTotals) {
	for c, v := range other {
		t.add(c, v)
	}
}

// CollectionSheetLoan is one loan line on a collection sheet
type CollectionSheetLoan struct {
	LoanID       uuid.UUID
	AccountNo    string
	Currency     string
	PrincipalDue decimal.Decimal
	InterestDue  decimal.Decimal
	TotalDue     decimal.Decimal
	TotalOverdue decimal.Decimal
}

// CollectionSheetClient lists a member's loans and default attendance
type CollectionSheetClient struct {
	ClientID   uuid.UUID
	Name       string
	Attendance AttendanceType
	Loans      []CollectionSheetLoan
}

// CollectionSheetGroup is one group block on a sheet
type CollectionSheetGroup struct {
	GroupID  uuid.UUID
	Name     string
	Clients  []CollectionSheetClient
	Loans    []CollectionSheetLoan // loans held by the group itself
	TotalDue CurrencyTotals
}

// CollectionSheet is what field staff collect at a meeting
type CollectionSheet struct {
	EntityType   CalendarEntityType
	EntityID     uuid.UUID
	EntityName   string
	MeetingDate  time.Time
	Groups       []CollectionSheetGroup
	TotalDue     CurrencyTotals
	TotalOverdue CurrencyTotals
}

// CollectionSheetInput is the data a sheet is assembled from. Groups holds
// the entity itself when it is a group, or its groups when it is a center.
type CollectionSheetInput struct {
	Entity  *Group
	Groups  []Group
	Clients map[uuid.UUID]*Client
	Loans   []Loan
	Meeting *Meeting
	Date    time.Time
}

// BuildCollectionSheet assembles the dues of every active loan held by the
// entity's groups and their clients as of the meeting date
func BuildCollectionSheet(in CollectionSheetInput) *CollectionSheet {
	date := shared.Day(in.Date)
	entityType := CalendarEntityGroup
	if in.Entity.IsCenter() {
		entityType = CalendarEntityCenter
	}
	sheet := &CollectionSheet{
		EntityType:   entityType,
		EntityID:     in.Entity.ID,
		EntityName:   in.Entity.Name,
		MeetingDate:  date,
		TotalDue:     CurrencyTotals{},
		TotalOverdue: CurrencyTotals{},
	}

	byClient := make(map[uuid.UUID][]*Loan)
	byGroup := make(map[uuid.UUID][]*Loan)
	for i := range in.Loans {
		l := &in.Loans[i]
		if l.Status != LoanActive {
			continue
		}
		switch {
		case l.ClientID != nil:
			byClient[*l.ClientID] = append(byClient[*l.ClientID], l)
		case l.GroupID != nil:
			byGroup[*l.GroupID] = append(byGroup[*l.GroupID], l)
		}
	}

	for _, g := range in.Groups {
		block := CollectionSheetGroup{GroupID: g.ID, Name: g.Name, TotalDue: CurrencyTotals{}}
		for _, l := range byGroup[g.ID] {
			line := sheetLine(l, date)
			block.Loans = append(block.Loans, line)
			block.TotalDue.add(line.Currency, line.TotalDue)
			sheet.TotalOverdue.add(line.Currency, line.TotalOverdue)
		}
		for _, cid := range g.ClientIDs {
			c, ok := in.Clients[cid]
			if !ok || c.Status != ClientStatusActive {
				continue
			}
			row := CollectionSheetClient{ClientID: cid, Name: c.DisplayName(), Attendance: AttendancePresent}
			if in.Meeting != nil {
				if a, ok := in.Meeting.AttendanceOf(cid); ok {
					row.Attendance = a
				}
			}
			for _, l := range byClient[cid] {
				line := sheetLine(l, date)
				row.Loans = append(row.Loans, line)
				block.TotalDue.add(line.Currency, line.TotalDue)
				sheet.TotalOverdue.add(line.Currency, line.TotalOverdue)
			}
			block.Clients = append(block.Clients, row)
		}
		sheet.TotalDue.merge(block.TotalDue)
		sheet.Groups = append(sheet.Groups, block)
	}
	return sheet
}

func sheetLine(l *Loan, date time.Time) CollectionSheetLoan {
	p, i := l.DueAsOf(date)
	op, oi := l.DueAsOf(date.AddDate(0, 0, -1))
	return CollectionSheetLoan{
		LoanID:       l.ID,
		AccountNo:    l.AccountNo,
		Currency:     l.Terms.Currency,
		PrincipalDue: p,
		InterestDue:  i,
		TotalDue:     p.Add(i),
		TotalOverdue: op.Add(oi),
	}
}

// Members returns the clients listed on the sheet
func (s *CollectionSheet) Members() map[uuid.UUID]bool {
	members := make(map[uuid.UUID]bool)
	for _, g := range s.Groups {
		for _, c := range g.Clients {
			members[c.ClientID] = true
		}
	}
	return members
}

// HasLoan reports whether a loan is listed on the sheet
func (s *CollectionSheet) HasLoan(loanID uuid.UUID) bool {
	for _, g := range s.Groups {
		for _, l := range g.Loans {
			if l.LoanID == loanID {
				return true
			}
		}
		for _, c := range g.Clients {
			for _, l := range c.Loans {
				if l.LoanID == loanID {
					return true
				}
			}
		}
	}
	return false
}

// SheetRepayment is one collected amount on a submitted sheet
type SheetRepayment struct {
	LoanID        uuid.UUID
	Amount        decimal.Decimal
	ReceiptNumber string
}

// ValidateSubmission checks collected amounts and attendance against the sheet
func (s *CollectionSheet) ValidateSubmission(repayments []SheetRepayment, attendance []ClientAttendance) error {
	seen := make(map[uuid.UUID]bool, len(repayments))
	for _, r := range repayments {
		if r.Amount.IsNegative() {
			return shared.NewDomainError("INVALID_AMOUNT", "Collected amounts cannot be negative")
		}
		if !s.HasLoan(r.LoanID) {
			return shared.NewDomainError("COLLECTION_SHEET_UNKNOWN_LOAN", "Loan "+r.LoanID.String()+" is not on the collection sheet")
		}
		if seen[r.LoanID] {
			return shared.NewDomainError("COLLECTION_SHEET_DUPLICATE_LOAN", "Loan listed twice on the collection sheet")
		}
		seen[r.LoanID] = true
	}
	members := s.Members()
	for _, a := range attendance {
		if !members[a.ClientID] {
			return shared.NewDomainError("ATTENDANCE_CLIENT_NOT_MEMBER", "Client "+a.ClientID.String()+" is not on the collection sheet")
		}
	}
	return nil
}
