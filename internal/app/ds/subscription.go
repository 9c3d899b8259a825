package ds

// Subscription plan. DurationDays and MaxAllowedUsers feed the derived license fields.
type Subscription struct {
	SubscriptionID    int64   `json:"subscription_id"`
	SubscriptionName  string  `json:"subscription_name"`
	SubscriptionPrice float64 `json:"subscription_price"`
	DurationDays      int     `json:"duration_days"`
	MaxAllowedUsers   int     `json:"max_allowed_users"`
	IsActive          bool    `json:"is_active"`
}

type CreateSubscriptionRequest struct {
	SubscriptionName  string  `json:"subscription_name"`
	SubscriptionPrice float64 `json:"subscription_price"`
	DurationDays      int     `json:"duration_days"`
	MaxAllowedUsers   int     `json:"max_allowed_users"`
	IsActive          bool    `json:"is_active"`
}

type UpdateSubscriptionRequest struct {
	SubscriptionID    int64   `json:"subscription_id"`
	SubscriptionName  string  `json:"subscription_name"`
	SubscriptionPrice float64 `json:"subscription_price"`
	DurationDays      int     `json:"duration_days"`
	MaxAllowedUsers   int     `json:"max_allowed_users"`
	IsActive          bool    `json:"is_active"`
}

func (s Subscription) ID() int64              { return s.SubscriptionID }
func (r UpdateSubscriptionRequest) ID() int64 { return r.SubscriptionID }
func (s Subscription) Active() bool           { return s.IsActive }
