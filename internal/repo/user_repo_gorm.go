package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"plantcare-community/internal/domain"
	"plantcare-community/internal/feature/user"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func toUserModel(u *domain.User) user.UserModel {
	return user.UserModel{
		ID: u.ID, Email: u.Email, Name: u.Name, Username: u.Username,
		PasswordHash: u.PasswordHash, Role: u.Role, CreatedAt: u.CreatedAt,
	}
}

func fromUserModel(m *user.UserModel) domain.User {
	return domain.User{
		ID: m.ID, Email: m.Email, Name: m.Name, Username: m.Username,
		PasswordHash: m.PasswordHash, Role: m.Role, CreatedAt: m.CreatedAt,
	}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDupKey(err) {
			return domain.Conflict("User already exists with this email")
		}
		return err
	}
	return nil
}

func (r *UserRepo) first(ctx context.Context, col, val string) (*domain.User, error) {
	var m user.UserModel
	err := r.db.WithContext(ctx).Where(col+" = ?", val).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u := fromUserModel(&m)
	return &u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email", email)
}

func (r *UserRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ms []user.UserModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(ms))
	for i := range ms {
		out = append(out, fromUserModel(&ms[i]))
	}
	return out, nil
}

func (r *UserRepo) List(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&user.UserModel{})
	if s := strings.TrimSpace(f.Q); s != "" {
		like := containsPattern(strings.ToLower(s))
		q = q.Where("LOWER(email) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(name) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(username) LIKE ? ESCAPE '"+likeEscape+"'", like, like, like)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []user.UserModel
	if err := q.Session(&gorm.Session{}).Order("created_at DESC").Offset(f.Offset).Limit(f.Limit).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.User, 0, len(ms))
	for i := range ms {
		out = append(out, fromUserModel(&ms[i]))
	}
	return out, total, nil
}
