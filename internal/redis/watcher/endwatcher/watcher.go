package endwatcher

import (
	"context"
	"strings"

	"auctionmart/internal/services/bidledger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Run listens to key-expiry events and finishes auctions whose end timer
// elapsed. It is only a trigger: FinishAuction is idempotent and can be
// driven by any scheduler. Run must be started once at service boot.
func Run(ctx context.Context, rdb *redis.Client, svc bidledger.IBidLedgerService) {
	_ = rdb.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err()
	ps := rdb.PSubscribe(ctx, "__keyevent@*__:expired")
	defer ps.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ps.Channel():
			if !ok {
				return
			}
			if !strings.HasPrefix(m.Payload, "auc_t:") {
				continue
			}
			id := strings.TrimPrefix(m.Payload, "auc_t:")
			if err := svc.FinishAuction(ctx, id); err != nil {
				zap.L().Error("endwatcher.finish", zap.String("auction_id", id), zap.Error(err))
			}
		}
	}
}
