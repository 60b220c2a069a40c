package member

import (
	"context"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleMember }

// Member belongs to exactly one group. Savings balance is derived from
// contributions and never stored here.
type Member struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	MemberID  string    `gorm:"size:32;uniqueIndex:ux_members_member_id" json:"member_id"`
	GroupID   string    `gorm:"size:32;index:idx_members_group" json:"group_id"`
	Name      string    `gorm:"size:128" json:"name"`
	Phone     string    `gorm:"size:32" json:"phone,omitempty"`
	Role      Role      `gorm:"size:16;default:'member'" json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Member) TableName() string { return "members" }

type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByMemberID(ctx context.Context, memberID string) (*Member, error)
	// ListByGroupID returns members ordered by join date, then member id.
	ListByGroupID(ctx context.Context, groupID string) ([]Member, error)
}
