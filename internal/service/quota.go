package service

import (
	"context"
	"errors"
	"fmt"

	"wellwatch/internal/models"
	"wellwatch/internal/recordstore"
)

// ErrQuotaExceeded rejects a whole commit before any write happens.
var ErrQuotaExceeded = errors.New("plan limit exceeded")

// QuotaGate compares projected record counts against the account's plan
// ceiling. The limit table is injected configuration, never ambient state.
// Current counts are always re-fetched from the store: the gate runs
// independently at preview and at commit and trusts nothing computed
// client-side in between.
type QuotaGate struct {
	store       recordstore.Store
	limits      map[string]models.PlanLimits
	defaultPlan string
}

func NewQuotaGate(store recordstore.Store, limits map[string]models.PlanLimits, defaultPlan string) *QuotaGate {
	return &QuotaGate{store: store, limits: limits, defaultPlan: defaultPlan}
}

func (g *QuotaGate) limitsFor(plan string) models.PlanLimits {
	if l, ok := g.limits[plan]; ok {
		return l
	}
	return g.limits[g.defaultPlan]
}

// Check projects current + willImport against the plan ceiling. A limit of
// -1 is unbounded and never exceeded.
func (g *QuotaGate) Check(ctx context.Context, accountID, plan string, kind models.RecordKind, willImport int) (models.QuotaCheck, error) {
	current, err := g.store.CountRecords(ctx, accountID, kind)
	if err != nil {
		return models.QuotaCheck{}, fmt.Errorf("failed to count existing %s: %w", kind, err)
	}

	limit := g.limitsFor(plan).For(kind)
	check := models.QuotaCheck{
		Current:     current,
		Limit:       limit,
		Plan:        plan,
		AfterUpload: current + willImport,
	}
	check.WouldExceedLimit = limit >= 0 && check.AfterUpload > limit
	return check, nil
}
