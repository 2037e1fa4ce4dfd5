// Package mongostore 文档存储：帖子以内嵌回复的单文档保存，点赞切换走单文档原子更新
package mongostore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"plantcare-community/internal/domain"
)

const (
	colUsers       = "users"
	colPosts       = "posts"
	colCommunities = "communities"
)

type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store { return &Store{db: db} }

func (s *Store) Users() *UserRepo { return &UserRepo{c: s.db.Collection(colUsers)} }
func (s *Store) Posts() *PostRepo { return &PostRepo{c: s.db.Collection(colPosts)} }
func (s *Store) Communities() *CommunityRepo {
	return &CommunityRepo{c: s.db.Collection(colCommunities)}
}

// EnsureIndexes 幂等，启动时调用
func (s *Store) EnsureIndexes(ctx context.Context) error {
	idx := []struct {
		col    string
		models []mongo.IndexModel
	}{
		{colUsers, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{colPosts, []mongo.IndexModel{
			{Keys: bson.D{{Key: "createdNs", Value: -1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
			{Keys: bson.D{{Key: "communityId", Value: 1}, {Key: "createdNs", Value: -1}}},
		}},
		{colCommunities, []mongo.IndexModel{
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
	}
	for _, x := range idx {
		if _, err := s.db.Collection(x.col).Indexes().CreateMany(ctx, x.models); err != nil {
			return err
		}
	}
	return nil
}

// containsRegex 大小写不敏感的字面量子串匹配
func containsRegex(s string) bson.Regex {
	return bson.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// ---------- users ----------

type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func (d *userDoc) toDomain() domain.User {
	return domain.User{
		ID: d.ID, Name: d.Name, Username: d.Username, Email: d.Email,
		PasswordHash: d.PasswordHash, Role: d.Role, CreatedAt: d.CreatedAt,
	}
}

type UserRepo struct{ c *mongo.Collection }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.c.InsertOne(ctx, userDoc{
		ID: u.ID, Name: u.Name, Username: u.Username, Email: strings.ToLower(u.Email),
		PasswordHash: u.PasswordHash, Role: u.Role, CreatedAt: u.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return domain.Conflict("User already exists with this email")
	}
	return err
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	var d userDoc
	err := r.c.FindOne(ctx, filter).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u := d.toDomain()
	return &u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: strings.ToLower(email)}})
}

func (r *UserRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.c.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, err
	}
	var ds []userDoc
	if err := cur.All(ctx, &ds); err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(ds))
	for i := range ds {
		out = append(out, ds[i].toDomain())
	}
	return out, nil
}

func (r *UserRepo) List(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	filter := bson.D{}
	if q := strings.TrimSpace(f.Q); q != "" {
		re := containsRegex(q)
		filter = bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "email", Value: re}},
			bson.D{{Key: "name", Value: re}},
			bson.D{{Key: "username", Value: re}},
		}}}
	}
	total, err := r.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(f.Offset))
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	cur, err := r.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var ds []userDoc
	if err := cur.All(ctx, &ds); err != nil {
		return nil, 0, err
	}
	out := make([]domain.User, 0, len(ds))
	for i := range ds {
		out = append(out, ds[i].toDomain())
	}
	return out, total, nil
}
