package ds

// Staff credentials checked by the backend on signin.
type SigninRequest struct {
	UserEmail string `json:"user_email"`
	UserPwd   string `json:"user_pwd"`
}

// Staff user as returned by the backend signin endpoint.
type User struct {
	UserID    int64  `json:"user_id"`
	UserEmail string `json:"user_email"`
	UserName  string `json:"user_name"`
}
