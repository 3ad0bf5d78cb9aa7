package worker

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"wellwatch/internal/service"
)

// RefreshHandler repopulates the enrichment cache for recently imported
// wells so their display attributes stay current without waiting out the
// cache TTL.
type RefreshHandler struct {
	enricher *service.WellEnricher
	logger   *logrus.Logger
}

func NewRefreshHandler(enricher *service.WellEnricher, logger *logrus.Logger) *RefreshHandler {
	return &RefreshHandler{enricher: enricher, logger: logger}
}

func (h *RefreshHandler) HandleRefresh(ctx context.Context, task *asynq.Task) error {
	var payload RefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	h.logger.WithField("wells", len(payload.APINumbers)).Info("refreshing well enrichment")

	for _, apiNumber := range payload.APINumbers {
		if _, err := h.enricher.Refresh(ctx, apiNumber); err != nil {
			// Transient registry trouble; asynq retries the task.
			return err
		}
	}
	return nil
}
