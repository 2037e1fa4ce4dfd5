package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"plantcare-community/internal/feature/community"
	"plantcare-community/internal/feature/post"
	"plantcare-community/internal/feature/user"
)

// Models 需要迁移的全部表
func Models() []any {
	return []any{
		&user.UserModel{},
		&post.PostModel{},
		&post.ReplyModel{},
		&post.PostLikeModel{},
		&post.ReplyLikeModel{},
		&community.CommunityModel{},
		&community.MembershipModel{},
	}
}

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(Models()...) }

// likeEscape 使用 '!' 作为 ESCAPE 字符，postgres/mysql/sqlite 写法一致
const likeEscape = "!"

func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}

func containsPattern(s string) string { return "%" + escapeLike(s) + "%" }

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
