package request

type SetAdminRequest struct {
	IsAdmin bool `json:"is_admin"`
}
