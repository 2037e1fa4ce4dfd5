package community

import "time"

const (
	RoleMember    = "member"
	RoleModerator = "moderator"
)

type CommunityModel struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Name        string    `gorm:"uniqueIndex;size:128;not null"`
	Description string    `gorm:"type:text;not null"`
	Category    string    `gorm:"index;size:32;not null;default:general"`
	Tags        []string  `gorm:"serializer:json;type:text"`
	Rules       []string  `gorm:"serializer:json;type:text"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"index"`
}

func (CommunityModel) TableName() string { return "communities" }

type MembershipModel struct {
	Seq         uint64 `gorm:"primaryKey;autoIncrement"`
	CommunityID string `gorm:"size:36;not null;uniqueIndex:uk_membership"`
	UserID      string `gorm:"size:64;not null;uniqueIndex:uk_membership"`
	Role        string `gorm:"size:16;not null;uniqueIndex:uk_membership"`
}

func (MembershipModel) TableName() string { return "community_members" }
