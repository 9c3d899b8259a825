package dto

import (
	"clientadmin/internal/app/ds"
	"clientadmin/internal/app/notify"
)

// ============ Common ============

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// List is one collection with the container's in-flight flags. Stale is set
// when a requested refresh did not replace the collection.
type List[T any] struct {
	Items    []T  `json:"items"`
	Total    int  `json:"total"`
	Loading  bool `json:"loading"`
	Creating bool `json:"creating"`
	Updating bool `json:"updating"`
	Deleting bool `json:"deleting"`
	Stale    bool `json:"stale"`
}

// ============ Auth ============

type SigninRequest struct {
	UserEmail string `json:"user_email" binding:"required,email"`
	UserPwd   string `json:"user_pwd" binding:"required,min=6"`
}

type SigninResponse struct {
	Token     string  `json:"token"`
	TokenType string  `json:"token_type"`
	ExpiresIn int     `json:"expires_in"`
	User      ds.User `json:"user"`
}

// ============ Clients ============

type ClientRequest struct {
	ClientCompName      string `json:"client_comp_name" binding:"required,max=255"`
	ClientCompShortName string `json:"client_comp_short_name" binding:"max=50"`
	IsActive            *bool  `json:"is_active"`
}

// ============ Products ============

type ProductRequest struct {
	MainAppName    string `json:"main_app_name" binding:"required,max=255"`
	MainAppVersion string `json:"main_app_version" binding:"max=50"`
	MainAppCode    string `json:"main_app_code" binding:"max=50"`
	MainAppModelNo string `json:"main_app_model_no" binding:"max=50"`
	MainAppDesc    string `json:"main_app_desc"`
	IsActive       *bool  `json:"is_active"`
}

// ============ Subscriptions ============

type SubscriptionRequest struct {
	SubscriptionName  string  `json:"subscription_name" binding:"required,max=255"`
	SubscriptionPrice float64 `json:"subscription_price" binding:"gte=0"`
	DurationDays      int     `json:"duration_days" binding:"required,gt=0"`
	MaxAllowedUsers   int     `json:"max_allowed_users" binding:"required,gt=0"`
	IsActive          *bool   `json:"is_active"`
}

// ============ Licenses ============

// LicenseRequest picks the client by id or code. User count and dates are
// always derived from the plan.
type LicenseRequest struct {
	ClientCompID   int64  `json:"client_comp_id" binding:"required_without=ClientCompCode"`
	ClientCompCode string `json:"client_comp_code" binding:"required_without=ClientCompID"`
	SubscriptionID int64  `json:"subscription_id" binding:"required,gt=0"`
	MainAppID      int64  `json:"main_app_id" binding:"required,gt=0"`
	FormEndPoint   string `json:"form_end_point" binding:"omitempty,url"`
	IsActive       *bool  `json:"is_active"`
	Renew          bool   `json:"renew"`
}

type UpdatePlanRequest struct {
	SubscriptionID int64 `json:"subscription_id" binding:"required,gt=0"`
	MainAppID      int64 `json:"main_app_id" binding:"omitempty,gt=0"`
	IsActive       *bool `json:"is_active"`
}

type ExportResponse struct {
	Object    string `json:"object"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// ============ Notifications / audit ============

type NotificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
}

type AuditResponse struct {
	Entries []ds.AuditEntry `json:"entries"`
}

// Active resolves an optional flag; new records default to active.
func Active(flag *bool, fallback bool) bool {
	if flag == nil {
		return fallback
	}
	return *flag
}
