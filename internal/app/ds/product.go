package ds

// Product (main application) offered to clients.
type Product struct {
	MainAppID      int64  `json:"main_app_id"`
	MainAppName    string `json:"main_app_name"`
	MainAppVersion string `json:"main_app_version"`
	MainAppCode    string `json:"main_app_code"`
	MainAppModelNo string `json:"main_app_model_no"`
	MainAppDesc    string `json:"main_app_desc"`
	IsActive       bool   `json:"is_active"`
}

type CreateProductRequest struct {
	MainAppName    string `json:"main_app_name"`
	MainAppVersion string `json:"main_app_version"`
	MainAppCode    string `json:"main_app_code"`
	MainAppModelNo string `json:"main_app_model_no"`
	MainAppDesc    string `json:"main_app_desc"`
	IsActive       bool   `json:"is_active"`
}

type UpdateProductRequest struct {
	MainAppID      int64  `json:"main_app_id"`
	MainAppName    string `json:"main_app_name"`
	MainAppVersion string `json:"main_app_version"`
	MainAppCode    string `json:"main_app_code"`
	MainAppModelNo string `json:"main_app_model_no"`
	MainAppDesc    string `json:"main_app_desc"`
	IsActive       bool   `json:"is_active"`
}

func (p Product) ID() int64              { return p.MainAppID }
func (r UpdateProductRequest) ID() int64 { return r.MainAppID }
func (p Product) Active() bool           { return p.IsActive }
