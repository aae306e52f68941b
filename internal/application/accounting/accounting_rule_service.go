package accounting

import (
	"context"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountingRuleService manages accounting rules
type AccountingRuleService struct {
	ruleRepo    accounting.AccountingRuleRepository
	accountRepo accounting.GLAccountRepository
}

// NewAccountingRuleService creates a new AccountingRuleService
func NewAccountingRuleService(
	ruleRepo accounting.AccountingRuleRepository,
	accountRepo accounting.GLAccountRepository,
) *AccountingRuleService {
	return &AccountingRuleService{ruleRepo: ruleRepo, accountRepo: accountRepo}
}

// Create adds a rule
func (s *AccountingRuleService) Create(ctx context.Context, tenantID uuid.UUID, req AccountingRuleRequest) (*AccountingRuleResponse, error) {
	if err := s.checkName(ctx, tenantID, req.Name, nil); err != nil {
		return nil, err
	}
	rule, err := accounting.NewAccountingRule(tenantID, req.input())
	if err != nil {
		return nil, err
	}
	if err := s.checkAccounts(ctx, tenantID, rule); err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}
	return ToAccountingRuleResponse(rule), nil
}

// Update changes a rule
func (s *AccountingRuleService) Update(ctx context.Context, tenantID, id uuid.UUID, req AccountingRuleRequest) (*AccountingRuleResponse, error) {
	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, tenantID, req.Name, &id); err != nil {
		return nil, err
	}
	if err := rule.Update(req.input()); err != nil {
		return nil, err
	}
	if err := s.checkAccounts(ctx, tenantID, rule); err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}
	return ToAccountingRuleResponse(rule), nil
}

// Delete removes a rule
func (s *AccountingRuleService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	return s.ruleRepo.Delete(ctx, tenantID, id)
}

// GetByID retrieves a rule
func (s *AccountingRuleService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*AccountingRuleResponse, error) {
	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToAccountingRuleResponse(rule), nil
}

// List retrieves every rule of the tenant
func (s *AccountingRuleService) List(ctx context.Context, tenantID uuid.UUID) ([]AccountingRuleResponse, error) {
	rules, err := s.ruleRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]AccountingRuleResponse, 0, len(rules))
	for i := range rules {
		out = append(out, *ToAccountingRuleResponse(&rules[i]))
	}
	return out, nil
}

func (s *AccountingRuleService) checkName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) error {
	exists, err := s.ruleRepo.ExistsByName(ctx, tenantID, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ACCOUNTING_RULE_NAME_EXISTS", "Accounting rule with this name already exists")
	}
	return nil
}

// checkAccounts requires fixed accounts to exist and be DETAIL accounts
func (s *AccountingRuleService) checkAccounts(ctx context.Context, tenantID uuid.UUID, rule *accounting.AccountingRule) error {
	ids := rule.ReferencedAccounts()
	if len(ids) == 0 {
		return nil
	}
	accounts, err := s.accountRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		acct, ok := accounts[id]
		if !ok {
			return shared.NewDomainError("INVALID_GL_ACCOUNT", "GL account "+id.String()+" not found")
		}
		if acct.Usage != accounting.GLAccountUsageDetail {
			return shared.NewDomainError("GL_ACCOUNT_NOT_DETAIL", "Accounting rules can only reference DETAIL accounts: "+acct.GLCode)
		}
	}
	return nil
}
