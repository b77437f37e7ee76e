package domain

// Member is the directory view of a marketplace account.
type Member struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"name"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"member_role,omitempty"`
}

const (
	MemberRoleBuyer  = "BUYER"
	MemberRoleSeller = "SELLER"
	MemberRoleAdmin  = "ADMIN"
)
