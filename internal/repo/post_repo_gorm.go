package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"plantcare-community/internal/domain"
	"plantcare-community/internal/feature/post"
)

// PostRepo 关系型映射：回复独立成表（post_id 外键 + 自增排序键），点赞为 (目标,用户) 唯一表
type PostRepo struct{ db *gorm.DB }

func NewPostRepo(db *gorm.DB) *PostRepo { return &PostRepo{db: db} }

func (r *PostRepo) Create(ctx context.Context, p *domain.Post) error {
	m := post.PostModel{
		ID:          p.ID,
		AuthorID:    p.AuthorID,
		CommunityID: p.CommunityID,
		Content:     p.Content,
		Tags:        orEmpty(p.Tags),
		CreatedAt:   p.Timestamp,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *PostRepo) Get(ctx context.Context, id string) (*domain.Post, error) {
	var m post.PostModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	ps, err := loadAggregates(r.db.WithContext(ctx), []post.PostModel{m})
	if err != nil {
		return nil, err
	}
	return &ps[0], nil
}

func (r *PostRepo) List(ctx context.Context, f domain.PostFilter) ([]domain.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&post.PostModel{})
	if f.CommunityID != "" {
		q = q.Where("community_id = ?", f.CommunityID)
	}
	if f.Tag != "" {
		// tags 以 JSON 数组存储，按带引号的元素匹配
		q = q.Where("tags LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(`"`+strings.ToLower(f.Tag)+`"`))
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []post.PostModel
	if err := q.Session(&gorm.Session{}).
		Order("created_at DESC").Order("seq DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	ps, err := loadAggregates(r.db.WithContext(ctx), ms)
	return ps, total, err
}

func (r *PostRepo) Search(ctx context.Context, query string, limit int) ([]domain.Post, error) {
	var ms []post.PostModel
	err := r.db.WithContext(ctx).
		Where("LOWER(content) LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(strings.ToLower(query))).
		Order("created_at DESC").Order("seq DESC").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return loadAggregates(r.db.WithContext(ctx), ms)
}

// ensurePost 对帖子行加 FOR UPDATE 锁：同一帖子的点赞切换、回复、删除在事务内串行。
// sqlite 不支持行锁，方言会忽略该子句（sqlite 本身串行化写事务）
func ensurePost(tx *gorm.DB, postID string) error {
	var m post.PostModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("seq").Where("id = ?", postID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrPostNotFound
	}
	return err
}

func ensureReply(tx *gorm.DB, postID, replyID string) error {
	var n int64
	if err := tx.Model(&post.ReplyModel{}).Where("id = ? AND post_id = ?", replyID, postID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrReplyNotFound
	}
	return nil
}

func (r *PostRepo) AddReply(ctx context.Context, postID string, rp *domain.Reply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePost(tx, postID); err != nil {
			return err
		}
		return tx.Create(&post.ReplyModel{
			ID:        rp.ID,
			PostID:    postID,
			AuthorID:  rp.AuthorID,
			Content:   rp.Content,
			CreatedAt: rp.Timestamp,
		}).Error
	})
}

// TogglePostLike 先删；没删到再插入（冲突忽略）。唯一索引保证集合语义
func (r *PostRepo) TogglePostLike(ctx context.Context, postID, userID string) ([]string, error) {
	var likes []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePost(tx, postID); err != nil {
			return err
		}
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&post.PostLikeModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
				DoNothing: true,
			}).Create(&post.PostLikeModel{PostID: postID, UserID: userID}).Error
			if err != nil {
				return err
			}
		}
		return tx.Model(&post.PostLikeModel{}).
			Where("post_id = ?", postID).Order("seq ASC").
			Pluck("user_id", &likes).Error
	})
	return orEmpty(likes), err
}

func (r *PostRepo) ToggleReplyLike(ctx context.Context, postID, replyID, userID string) ([]string, error) {
	var likes []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePost(tx, postID); err != nil {
			return err
		}
		if err := ensureReply(tx, postID, replyID); err != nil {
			return err
		}
		res := tx.Where("reply_id = ? AND user_id = ?", replyID, userID).Delete(&post.ReplyLikeModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "reply_id"}, {Name: "user_id"}},
				DoNothing: true,
			}).Create(&post.ReplyLikeModel{PostID: postID, ReplyID: replyID, UserID: userID}).Error
			if err != nil {
				return err
			}
		}
		return tx.Model(&post.ReplyLikeModel{}).
			Where("reply_id = ?", replyID).Order("seq ASC").
			Pluck("user_id", &likes).Error
	})
	return orEmpty(likes), err
}

// Delete 帖子连同回复、点赞一起删除
func (r *PostRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&post.PostModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrPostNotFound
		}
		for _, m := range []any{&post.ReplyLikeModel{}, &post.PostLikeModel{}, &post.ReplyModel{}} {
			if err := tx.Where("post_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostRepo) DeleteReply(ctx context.Context, postID, replyID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePost(tx, postID); err != nil {
			return err
		}
		res := tx.Where("id = ? AND post_id = ?", replyID, postID).Delete(&post.ReplyModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrReplyNotFound
		}
		return tx.Where("reply_id = ?", replyID).Delete(&post.ReplyLikeModel{}).Error
	})
}

func (r *PostRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&post.PostModel{}).Count(&n).Error
	return n, err
}

// loadAggregates 三次批量查询拼装回复与点赞，避免 N+1
func loadAggregates(db *gorm.DB, ms []post.PostModel) ([]domain.Post, error) {
	out := make([]domain.Post, len(ms))
	if len(ms) == 0 {
		return out, nil
	}
	ids := make([]string, len(ms))
	for i, m := range ms {
		ids[i] = m.ID
	}

	var replies []post.ReplyModel
	if err := db.Where("post_id IN ?", ids).Order("seq ASC").Find(&replies).Error; err != nil {
		return nil, err
	}
	var postLikes []post.PostLikeModel
	if err := db.Where("post_id IN ?", ids).Order("seq ASC").Find(&postLikes).Error; err != nil {
		return nil, err
	}
	var replyLikes []post.ReplyLikeModel
	if err := db.Where("post_id IN ?", ids).Order("seq ASC").Find(&replyLikes).Error; err != nil {
		return nil, err
	}

	likesByPost := map[string][]string{}
	for _, l := range postLikes {
		likesByPost[l.PostID] = append(likesByPost[l.PostID], l.UserID)
	}
	likesByReply := map[string][]string{}
	for _, l := range replyLikes {
		likesByReply[l.ReplyID] = append(likesByReply[l.ReplyID], l.UserID)
	}
	repliesByPost := map[string][]domain.Reply{}
	for _, rm := range replies {
		repliesByPost[rm.PostID] = append(repliesByPost[rm.PostID], domain.Reply{
			ID:        rm.ID,
			AuthorID:  rm.AuthorID,
			Content:   rm.Content,
			Likes:     orEmpty(likesByReply[rm.ID]),
			Timestamp: rm.CreatedAt,
		})
	}

	for i, m := range ms {
		rs := repliesByPost[m.ID]
		if rs == nil {
			rs = []domain.Reply{}
		}
		out[i] = domain.Post{
			ID:          m.ID,
			AuthorID:    m.AuthorID,
			CommunityID: m.CommunityID,
			Content:     m.Content,
			Tags:        orEmpty(m.Tags),
			Replies:     rs,
			Likes:       orEmpty(likesByPost[m.ID]),
			Timestamp:   m.CreatedAt,
		}
	}
	return out, nil
}
