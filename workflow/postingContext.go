package workflow

import (
	"context"

	"github.com/mmdatafocus/retail_backend/utils"
)

// PostingContext is the explicit scope every posting operation runs under.
// It is always passed by value into the protocol; the engine never reads
// ambient session state.
type PostingContext struct {
	CompanyId    string
	FiscalYearId int
	UserId       int
}

func PostingContextFromRequest(ctx context.Context) (*PostingContext, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, utils.NewValidationError("company id is required")
	}
	fiscalYearId, ok := utils.GetFiscalYearIdFromContext(ctx)
	if !ok || fiscalYearId == 0 {
		return nil, utils.NewValidationError("fiscal year id is required")
	}
	userId, _ := utils.GetUserIdFromContext(ctx)
	return &PostingContext{
		CompanyId:    companyId,
		FiscalYearId: fiscalYearId,
		UserId:       userId,
	}, nil
}
