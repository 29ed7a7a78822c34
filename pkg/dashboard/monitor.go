package dashboard

import (
	"context"

	"f1laptrend/pkg/pubsub"

	"go.uber.org/zap"
)

const monitorBuffer = 64

// Monitor logs every settled stream of every dashboard until ctx is done.
func Monitor(ctx context.Context, ps *pubsub.PubSub[Snapshot], logger *zap.Logger) {
	snaps, unsubscribe := ps.Subscribe(pubsub.TopicAll, monitorBuffer)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-snaps:
			logger.Debug("stream settled",
				zap.String("circuit", snap.Datasets.Circuit),
				zap.Uint64("generation", snap.Datasets.Generation),
				zap.String("stream", snap.Stream),
				zap.String("status", string(snap.Status())))
		}
	}
}
