package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"plantcare-community/internal/domain"
	"plantcare-community/internal/feature/community"
)

// CommunityRepo 成员/版主放在 community_members 表，以 role 区分
type CommunityRepo struct{ db *gorm.DB }

func NewCommunityRepo(db *gorm.DB) *CommunityRepo { return &CommunityRepo{db: db} }

func (r *CommunityRepo) Create(ctx context.Context, c *domain.Community) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := community.CommunityModel{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Category:    c.Category,
			Tags:        orEmpty(c.Tags),
			Rules:       orEmpty(c.Rules),
			IsActive:    c.IsActive,
			CreatedAt:   c.CreatedAt,
		}
		if err := tx.Create(&m).Error; err != nil {
			if isDupKey(err) {
				return domain.Conflict("Community with this name already exists")
			}
			return err
		}
		var rows []community.MembershipModel
		for _, u := range c.Members {
			rows = append(rows, community.MembershipModel{CommunityID: c.ID, UserID: u, Role: community.RoleMember})
		}
		for _, u := range c.Moderators {
			rows = append(rows, community.MembershipModel{CommunityID: c.ID, UserID: u, Role: community.RoleModerator})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

func (r *CommunityRepo) Get(ctx context.Context, id string) (*domain.Community, error) {
	var m community.CommunityModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCommunityNotFound
	}
	if err != nil {
		return nil, err
	}
	cs, err := r.withMembers(ctx, []community.CommunityModel{m})
	if err != nil {
		return nil, err
	}
	return &cs[0], nil
}

func (r *CommunityRepo) List(ctx context.Context, category string) ([]domain.Community, error) {
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var ms []community.CommunityModel
	if err := q.Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.withMembers(ctx, ms)
}

func (r *CommunityRepo) withMembers(ctx context.Context, ms []community.CommunityModel) ([]domain.Community, error) {
	out := make([]domain.Community, len(ms))
	if len(ms) == 0 {
		return out, nil
	}
	ids := make([]string, len(ms))
	for i, m := range ms {
		ids[i] = m.ID
	}
	var rows []community.MembershipModel
	if err := r.db.WithContext(ctx).Where("community_id IN ?", ids).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	members := map[string][]string{}
	mods := map[string][]string{}
	for _, row := range rows {
		if row.Role == community.RoleModerator {
			mods[row.CommunityID] = append(mods[row.CommunityID], row.UserID)
		} else {
			members[row.CommunityID] = append(members[row.CommunityID], row.UserID)
		}
	}
	for i, m := range ms {
		out[i] = domain.Community{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			Category:    m.Category,
			Tags:        orEmpty(m.Tags),
			Rules:       orEmpty(m.Rules),
			Members:     orEmpty(members[m.ID]),
			Moderators:  orEmpty(mods[m.ID]),
			IsActive:    m.IsActive,
			CreatedAt:   m.CreatedAt,
		}
	}
	return out, nil
}

func (r *CommunityRepo) ensure(tx *gorm.DB, id string) error {
	var n int64
	if err := tx.Model(&community.CommunityModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCommunityNotFound
	}
	return nil
}

func (r *CommunityRepo) AddMember(ctx context.Context, id, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.ensure(tx, id); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&community.MembershipModel{CommunityID: id, UserID: userID, Role: community.RoleMember}).Error
	})
}

func (r *CommunityRepo) RemoveMember(ctx context.Context, id, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.ensure(tx, id); err != nil {
			return err
		}
		return tx.Where("community_id = ? AND user_id = ? AND role = ?", id, userID, community.RoleMember).
			Delete(&community.MembershipModel{}).Error
	})
}

func (r *CommunityRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&community.CommunityModel{}).Count(&n).Error
	return n, err
}
