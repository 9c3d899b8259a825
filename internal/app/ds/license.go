package ds

// DateLayout is the calendar-date format used for license validity windows on the wire.
const DateLayout = "2006-01-02"

// License binds a client (by code) to a product and a subscription plan.
type License struct {
	ClientSubscriptionID int64  `json:"client_subscription_id"`
	ClientCompCode       string `json:"client_comp_code"`
	SubscriptionID       int64  `json:"subscription_id"`
	MainAppID            int64  `json:"main_app_id"`
	MaxAllowedUsers      int    `json:"max_allowed_users"`
	StartDate            string `json:"start_date"`
	EndDate              string `json:"end_date"`
	FormEndPoint         string `json:"form_end_point"`
	IsActive             bool   `json:"is_active"`
}

// CreateLicenseRequest carries no derived fields: the backend fills users and dates from the plan.
type CreateLicenseRequest struct {
	ClientCompCode string `json:"client_comp_code"`
	SubscriptionID int64  `json:"subscription_id"`
	MainAppID      int64  `json:"main_app_id"`
	FormEndPoint   string `json:"form_end_point"`
	IsActive       bool   `json:"is_active"`
}

type UpdateLicenseRequest struct {
	ClientSubscriptionID int64  `json:"client_subscription_id"`
	ClientCompCode       string `json:"client_comp_code"`
	SubscriptionID       int64  `json:"subscription_id"`
	MainAppID            int64  `json:"main_app_id"`
	MaxAllowedUsers      int    `json:"max_allowed_users"`
	StartDate            string `json:"start_date"`
	EndDate              string `json:"end_date"`
	FormEndPoint         string `json:"form_end_point"`
	IsActive             bool   `json:"is_active"`
}

// UpdatePlanRequest moves a client's product license onto another plan.
type UpdatePlanRequest struct {
	ClientCompCode string `json:"client_comp_code"`
	SubscriptionID int64  `json:"subscription_id"`
	MainAppID      int64  `json:"main_app_id"`
	IsActive       bool   `json:"is_active"`
}

func (l License) ID() int64              { return l.ClientSubscriptionID }
func (r UpdateLicenseRequest) ID() int64 { return r.ClientSubscriptionID }
func (l License) Active() bool           { return l.IsActive }
