package post

import "time"

// PostModel Seq 自增主键只用于稳定排序，对外 id 为 ID
type PostModel struct {
	Seq         uint64    `gorm:"primaryKey;autoIncrement"`
	ID          string    `gorm:"uniqueIndex;size:36;not null"`
	AuthorID    string    `gorm:"index;size:64;not null"`
	CommunityID string    `gorm:"index;size:36;not null;default:''"`
	Content     string    `gorm:"type:text;not null"`
	Tags        []string  `gorm:"serializer:json;type:text"`
	CreatedAt   time.Time `gorm:"index;not null"`
}

func (PostModel) TableName() string { return "posts" }

// ReplyModel 回复按 Seq 升序即插入顺序
type ReplyModel struct {
	Seq       uint64    `gorm:"primaryKey;autoIncrement"`
	ID        string    `gorm:"uniqueIndex;size:36;not null"`
	PostID    string    `gorm:"index;size:36;not null"`
	AuthorID  string    `gorm:"size:64;not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (ReplyModel) TableName() string { return "replies" }

type PostLikeModel struct {
	Seq    uint64 `gorm:"primaryKey;autoIncrement"`
	PostID string `gorm:"size:36;not null;uniqueIndex:uk_post_like"`
	UserID string `gorm:"size:64;not null;uniqueIndex:uk_post_like"`
}

func (PostLikeModel) TableName() string { return "post_likes" }

type ReplyLikeModel struct {
	Seq     uint64 `gorm:"primaryKey;autoIncrement"`
	PostID  string `gorm:"index;size:36;not null"`
	ReplyID string `gorm:"size:36;not null;uniqueIndex:uk_reply_like"`
	UserID  string `gorm:"size:64;not null;uniqueIndex:uk_reply_like"`
}

func (ReplyLikeModel) TableName() string { return "reply_likes" }
