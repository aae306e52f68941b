package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// nextAccountNumber returns the next <kind>-YYYYMM-NNNNN number for a tenant.
// The sequence restarts every month. A unique index on (tenant_id, account_no)
// rejects the loser of a concurrent race.
func nextAccountNumber(ctx context.Context, db *gorm.DB, table, kind string, tenantID uuid.UUID, now time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", kind, now.Format("200601"))

	var last []string
	if err := db.WithContext(ctx).
		Table(table).
		Where("tenant_id = ? AND account_no LIKE ?", tenantID, prefix+"%").
		Order("account_no DESC").
		Limit(1).
		Pluck("account_no", &last).Error; err != nil {
		return "", err
	}

	next := 1
	if len(last) == 1 {
		if n, err := strconv.Atoi(strings.TrimPrefix(last[0], prefix)); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%05d", prefix, next), nil
}
