package group

// CreateGroupRequest represents the request to create a group. The creator
// is always added as admin; MemberIDs adds further members.
type CreateGroupRequest struct {
	Name        string   `json:"name" example:"Lisbon trip"`
	Description string   `json:"description,omitempty"`
	MemberIDs   []string `json:"member_ids,omitempty"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// AddMemberRequest represents the request to add a member to a group
type AddMemberRequest struct {
	UserID string     `json:"user_id"`
	Role   MemberRole `json:"role,omitempty" enums:"admin,member"`
}
