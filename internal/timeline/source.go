package timeline

import (
	"context"

	"tidepool/internal/model"
	"tidepool/internal/rpc"
)

// HomeSource drives a Feed from the credentialed home timeline.
func HomeSource(r *rpc.Router) PageSource {
	return func(ctx context.Context, maxID string, limit int) ([]model.Status, error) {
		return r.HomeTimeline(ctx, rpc.HomeTimelineParams{Limit: limit, MaxID: maxID})
	}
}

// AccountSource drives a Feed from one account's statuses.
func AccountSource(r *rpc.Router, accountID string) PageSource {
	return func(ctx context.Context, maxID string, limit int) ([]model.Status, error) {
		return r.AccountStatuses(ctx, rpc.AccountStatusesParams{AccountID: accountID, MaxID: maxID, Limit: limit})
	}
}
