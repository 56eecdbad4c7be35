package utils

import (
	"context"

	"github.com/mmdatafocus/retail_backend/appctx"
)

var (
	ContextKeyToken        = appctx.ContextKeyToken
	ContextKeyCompanyId    = appctx.ContextKeyCompanyId
	ContextKeyFiscalYearId = appctx.ContextKeyFiscalYearId
	ContextKeyUserId       = appctx.ContextKeyUserId
)

func GetCompanyIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCompanyId)
}

func GetFiscalYearIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyFiscalYearId)
}

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyUserId)
}

func SetTokenInContext(ctx context.Context, token string) context.Context {
	return appctx.Set(ctx, ContextKeyToken, token)
}

func SetCompanyIdInContext(ctx context.Context, companyId string) context.Context {
	return appctx.Set(ctx, ContextKeyCompanyId, companyId)
}

func SetFiscalYearIdInContext(ctx context.Context, fiscalYearId int) context.Context {
	return appctx.Set(ctx, ContextKeyFiscalYearId, fiscalYearId)
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return appctx.Set(ctx, ContextKeyUserId, userId)
}
