package obs

import (
	"context"
	"time"

	"rental-ops-service/internal/platform/logger"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// Time logs the duration of an operation when the returned func runs.
// Use it with defer and a named error return:
//
//	func (s *store) GetMany(ctx ...) (_ map[string]..., err error) {
//		defer obs.Time(ctx, "cache.GetMany")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			logger.L.Errorw("op failed", "req_id", reqID, "op", name, "dur_ms", dur.Milliseconds(), "err", *errp)
			return
		}
		logger.L.Debugw("op done", "req_id", reqID, "op", name, "dur_ms", dur.Milliseconds())
	}
}
