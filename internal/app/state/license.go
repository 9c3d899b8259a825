package state

import (
	"context"

	"clientadmin/internal/app/ds"
	"clientadmin/internal/app/notify"
)

const (
	PlanUpdated      = "License plan updated successfully"
	PlanUpdateFailed = "Failed to update license plan. Please try again."
)

// PlanUpdater moves a license onto another subscription plan.
type PlanUpdater interface {
	UpdatePlan(ctx context.Context, req ds.UpdatePlanRequest) (*ds.License, error)
}

// LicenseContainer is the license collection plus the plan change action.
type LicenseContainer struct {
	*Container[ds.License, ds.CreateLicenseRequest, ds.UpdateLicenseRequest]
	plans PlanUpdater
}

func NewLicenseContainer(api Resource[ds.License, ds.CreateLicenseRequest, ds.UpdateLicenseRequest], plans PlanUpdater, notifier notify.Notifier, observer Observer) *LicenseContainer {
	return &LicenseContainer{
		Container: NewContainer(LicenseEntity, api, notifier, observer),
		plans:     plans,
	}
}

// Updating also covers plan changes in flight.
func (l *LicenseContainer) Updating() bool {
	return l.busy(actionUpdate) || l.busy(actionPlan)
}

func (l *LicenseContainer) Snapshot() Snapshot[ds.License] {
	snap := l.Container.Snapshot()
	snap.Updating = snap.Updating || l.busy(actionPlan)
	return snap
}

// UpdatePlan applies the echoed license when the backend returns a known one for
// the same client and product, and reloads the collection otherwise.
func (l *LicenseContainer) UpdatePlan(ctx context.Context, req ds.UpdatePlanRequest) bool {
	c := l.Container
	c.start(actionPlan)
	echoed, err := l.plans.UpdatePlan(ctx, req)

	c.mu.Lock()
	c.inflight[actionPlan]--

	if c.abandonedLocked(ctx, actionPlan) {
		c.unlockAndFlush(ctx)
		return false
	}
	if err != nil {
		c.failLocked(actionPlan, err, PlanUpdateFailed)
		c.unlockAndFlush(ctx)
		return false
	}

	reload := true
	if echoed != nil && echoed.ClientCompCode == req.ClientCompCode && echoed.MainAppID == req.MainAppID {
		if _, known := c.byID[echoed.ID()]; known {
			c.replaceLocked(*echoed)
			c.changedLocked()
			reload = false
		}
	}
	c.succeedLocked(actionPlan, PlanUpdated)
	c.unlockAndFlush(ctx)

	if reload {
		c.Load(ctx)
	}
	return true
}
