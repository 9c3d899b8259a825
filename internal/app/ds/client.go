package ds

// Client company. ClientCompCode is assigned by the backend and never sent on create.
type Client struct {
	ClientCompID        int64  `json:"client_comp_id"`
	ClientCompCode      string `json:"client_comp_code"`
	ClientCompName      string `json:"client_comp_name"`
	ClientCompShortName string `json:"client_comp_short_name"`
	IsActive            bool   `json:"is_active"`
}

type CreateClientRequest struct {
	ClientCompName      string `json:"client_comp_name"`
	ClientCompShortName string `json:"client_comp_short_name"`
	IsActive            bool   `json:"is_active"`
}

type UpdateClientRequest struct {
	ClientCompID        int64  `json:"client_comp_id"`
	ClientCompName      string `json:"client_comp_name"`
	ClientCompShortName string `json:"client_comp_short_name"`
	IsActive            bool   `json:"is_active"`
}

func (c Client) ID() int64              { return c.ClientCompID }
func (r UpdateClientRequest) ID() int64 { return r.ClientCompID }
func (c Client) Active() bool           { return c.IsActive }
