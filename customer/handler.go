package customer

import (
	"context"

	"github.com/edgestore/customerstore/internal/model"
)

func NewRefreshCacheHandler(id ID, tenantID model.ID, svc *Service) func() error {
	return func() error {
		return svc.refreshCache(context.Background(), id, tenantID)
	}
}
