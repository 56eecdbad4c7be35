package workflow

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mmdatafocus/retail_backend/utils"
)

// AcquireCompanyPostingLock serializes posting per company across instances
// using MySQL advisory locks.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same
// *gorm.DB transaction that will do the posting.
func AcquireCompanyPostingLock(tx *gorm.DB, companyId string) error {
	lockName := fmt.Sprintf("posting:%s", companyId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return utils.NewConcurrencyConflictError(fmt.Sprintf("could not acquire posting lock for company_id=%s", companyId))
	}
	return nil
}

func ReleaseCompanyPostingLock(tx *gorm.DB, companyId string) {
	lockName := fmt.Sprintf("posting:%s", companyId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}
