package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mmdatafocus/retail_backend/config"
)

func NewTrue() *bool {
	b := true
	return &b
}

// NewLotId issues the system-generated half of a batch identity. Batch
// numbers are free text from suppliers and can recur; the lot id is what
// makes the (batchNumber, lotId) pair unique.
func NewLotId() string {
	return uuid.NewString()
}

func ProcessValidationErrors(err error) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[strings.ToLower(fe.Field())] = fe.Tag()
		}
		return out
	}
	out["error"] = err.Error()
	return out
}

// ConvertToDate truncates t to its calendar date in the given timezone.
func ConvertToDate(t time.Time, timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, err
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc), nil
}

// CompanyLock obtains a best-effort distributed lock for the company.
// Reliability must not depend on Redis: posting also serializes through the
// MySQL advisory lock in workflow.AcquireCompanyPostingLock.
func CompanyLock(ctx context.Context, companyId string, lockType string, moduleName string, functionName string) (*redislock.Lock, error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		return nil, nil
	}
	lockKey := fmt.Sprintf("%s:%s", lockType, companyId)
	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain lock for companyId", companyId, err)
		return nil, NewConcurrencyConflictError("another posting is in progress for this company")
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining lock for companyId", companyId, err)
		return nil, err
	}
	return lock, nil
}

func ReleaseCompanyLock(ctx context.Context, lock *redislock.Lock) {
	if lock == nil {
		return
	}
	_ = lock.Release(ctx)
}
