package redis

// UserState is the chat session of one user: the product being configured
// and the order encoded as a share query string.
type UserState struct {
	Step    string `json:"step"`
	Product string `json:"product,omitempty"`
	Query   string `json:"query,omitempty"`
	// Notice is the last quantity adjustment message shown to the user.
	Notice string `json:"notice,omitempty"`
}

// Empty reports whether the user has not picked a product yet.
func (s *UserState) Empty() bool {
	return s == nil || s.Product == ""
}
