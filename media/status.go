package media

import (
	"context"
	"fmt"

	"github.com/couchbot/couchbot/core"
	"github.com/couchbot/couchbot/resilience"
)

// handleStatus reports the active download queues. An empty queue returns a
// fixed message with no model call at all, so the reply can never invent
// in-flight downloads.
func (r *Resolver) handleStatus(ctx context.Context, input string) (core.Reply, error) {
	movieQueue, err := resilience.Do(ctx, r.exec, "catalog.queue", func(ctx context.Context) ([]core.DownloadStatus, error) {
		return r.movies.ListActiveDownloads(ctx)
	})
	if err != nil {
		return core.Reply{}, err
	}
	seriesQueue, err := resilience.Do(ctx, r.exec, "catalog.queue", func(ctx context.Context) ([]core.DownloadStatus, error) {
		return r.series.ListActiveDownloads(ctx)
	})
	if err != nil {
		return core.Reply{}, err
	}

	queue := append(movieQueue, seriesQueue...)
	if len(queue) == 0 {
		return core.TextReply(queueClearMessage), nil
	}

	prompt := fmt.Sprintf(statusPrompt, formatQueue(queue)) + input
	msg, err := r.invokeModel(ctx, "model.status", prompt)
	if err != nil {
		// The queue data is already in hand; degrade to the raw listing
		// rather than failing the turn.
		r.logger.Warn("status summary model call failed", "error", err.Error())
		return core.TextReply("Currently downloading:\n" + formatQueue(queue)), nil
	}
	return core.TextReply(msg.Content), nil
}
