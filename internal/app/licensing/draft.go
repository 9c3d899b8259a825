package licensing

import (
	"errors"
	"strings"
	"time"

	"clientadmin/internal/app/ds"

	"github.com/jinzhu/now"
	"github.com/sirupsen/logrus"
)

// ErrIncompleteDraft is returned when a draft lacks a client, a plan or a product.
var ErrIncompleteDraft = errors.New("license draft needs a client, a subscription and a product")

// Clock returns the current time. Dates are taken on its UTC calendar day.
type Clock func() time.Time

// Draft is the form state of a license being created or edited. The user count
// and the validity window are derived from the selected plan, never typed in.
type Draft struct {
	LicenseID       int64
	ClientCompCode  string
	SubscriptionID  int64
	MainAppID       int64
	MaxAllowedUsers int
	StartDate       string
	EndDate         string
	FormEndPoint    string
	IsActive        bool
	Renewing        bool

	editing        bool
	persistedStart string
	persistedEnd   string
	clock          Clock
}

func NewDraft(clock Clock) *Draft {
	return &Draft{IsActive: true, clock: orNow(clock)}
}

// EditDraft starts from a stored license and remembers its dates for cancel-renew.
func EditDraft(l ds.License, clock Clock) *Draft {
	return &Draft{
		LicenseID:       l.ClientSubscriptionID,
		ClientCompCode:  l.ClientCompCode,
		SubscriptionID:  l.SubscriptionID,
		MainAppID:       l.MainAppID,
		MaxAllowedUsers: l.MaxAllowedUsers,
		StartDate:       l.StartDate,
		EndDate:         l.EndDate,
		FormEndPoint:    l.FormEndPoint,
		IsActive:        l.IsActive,
		editing:         true,
		persistedStart:  l.StartDate,
		persistedEnd:    l.EndDate,
		clock:           orNow(clock),
	}
}

func orNow(clock Clock) Clock {
	if clock == nil {
		return time.Now
	}
	return clock
}

func (d *Draft) SelectClient(c ds.Client) {
	d.ClientCompCode = c.ClientCompCode
}

func (d *Draft) SelectProduct(p ds.Product) {
	d.MainAppID = p.MainAppID
}

// SelectSubscription takes the plan's user limit and recomputes the window:
// from today for a new license or a renewal, else from the stored start.
func (d *Draft) SelectSubscription(sub ds.Subscription) {
	d.SubscriptionID = sub.SubscriptionID
	d.MaxAllowedUsers = sub.MaxAllowedUsers

	start := d.today()
	if d.editing && !d.Renewing {
		stored, ok := ParseDate(d.persistedStart)
		if !ok {
			logrus.Warnf("license %d: stored start %q is not a date, keeping stored window", d.LicenseID, d.persistedStart)
			d.StartDate, d.EndDate = d.persistedStart, d.persistedEnd
			return
		}
		start = stored
	}
	d.StartDate, d.EndDate = Window(start, sub.DurationDays)
}

var storedDateLayouts = []string{
	ds.DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate reads a stored license date, either a calendar date or a timestamp.
// Timestamps count on their UTC calendar day.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range storedDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return now.With(t.UTC()).BeginningOfDay(), true
		}
	}
	return time.Time{}, false
}

// ToggleRenew enters or leaves renewal. Entering moves the window to start today;
// leaving restores the stored dates exactly.
func (d *Draft) ToggleRenew(sub ds.Subscription) {
	d.Renewing = !d.Renewing
	if !d.editing {
		return
	}
	if !d.Renewing {
		d.StartDate, d.EndDate = d.persistedStart, d.persistedEnd
		return
	}
	if d.SubscriptionID > 0 && sub.SubscriptionID == d.SubscriptionID {
		d.StartDate, d.EndDate = Window(d.today(), sub.DurationDays)
	}
}

func (d *Draft) complete() bool {
	return d.ClientCompCode != "" && d.SubscriptionID > 0 && d.MainAppID > 0
}

// CreateRequest carries only what the backend cannot derive.
func (d *Draft) CreateRequest() (ds.CreateLicenseRequest, error) {
	if !d.complete() {
		return ds.CreateLicenseRequest{}, ErrIncompleteDraft
	}
	return ds.CreateLicenseRequest{
		ClientCompCode: d.ClientCompCode,
		SubscriptionID: d.SubscriptionID,
		MainAppID:      d.MainAppID,
		FormEndPoint:   d.FormEndPoint,
		IsActive:       d.IsActive,
	}, nil
}

func (d *Draft) UpdateRequest() (ds.UpdateLicenseRequest, error) {
	if !d.complete() || d.LicenseID == 0 {
		return ds.UpdateLicenseRequest{}, ErrIncompleteDraft
	}
	return ds.UpdateLicenseRequest{
		ClientSubscriptionID: d.LicenseID,
		ClientCompCode:       d.ClientCompCode,
		SubscriptionID:       d.SubscriptionID,
		MainAppID:            d.MainAppID,
		MaxAllowedUsers:      d.MaxAllowedUsers,
		StartDate:            d.StartDate,
		EndDate:              d.EndDate,
		FormEndPoint:         d.FormEndPoint,
		IsActive:             d.IsActive,
	}, nil
}

func (d *Draft) today() time.Time {
	return now.With(d.clock().UTC()).BeginningOfDay()
}

// Window returns the start and end dates of a validity period of durationDays.
func Window(start time.Time, durationDays int) (string, string) {
	start = now.With(start.UTC()).BeginningOfDay()
	return start.Format(ds.DateLayout), start.AddDate(0, 0, durationDays).Format(ds.DateLayout)
}

// Renewal compares a license's stored window with the one a renewal today would give.
type Renewal struct {
	LicenseID    int64  `json:"client_subscription_id"`
	CurrentStart string `json:"current_start_date"`
	CurrentEnd   string `json:"current_end_date"`
	RenewedStart string `json:"renewed_start_date"`
	RenewedEnd   string `json:"renewed_end_date"`
}

// Renew builds the update that renews l on plan sub from today.
func Renew(l ds.License, sub ds.Subscription, clock Clock) (Renewal, ds.UpdateLicenseRequest, error) {
	d := EditDraft(l, clock)
	d.SelectSubscription(sub)
	d.ToggleRenew(sub)

	req, err := d.UpdateRequest()
	if err != nil {
		return Renewal{}, req, err
	}
	return Renewal{
		LicenseID:    l.ClientSubscriptionID,
		CurrentStart: l.StartDate,
		CurrentEnd:   l.EndDate,
		RenewedStart: d.StartDate,
		RenewedEnd:   d.EndDate,
	}, req, nil
}
