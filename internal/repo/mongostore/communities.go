package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"plantcare-community/internal/domain"
)

type communityDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Category    string    `bson:"category"`
	Tags        []string  `bson:"tags"`
	Rules       []string  `bson:"rules"`
	Members     []string  `bson:"members"`
	Moderators  []string  `bson:"moderators"`
	IsActive    bool      `bson:"isActive"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func (d *communityDoc) toDomain() domain.Community {
	return domain.Community{
		ID: d.ID, Name: d.Name, Description: d.Description, Category: d.Category,
		Tags: nonNil(d.Tags), Rules: nonNil(d.Rules),
		Members: nonNil(d.Members), Moderators: nonNil(d.Moderators),
		IsActive: d.IsActive, CreatedAt: d.CreatedAt,
	}
}

type CommunityRepo struct{ c *mongo.Collection }

func (r *CommunityRepo) Create(ctx context.Context, c *domain.Community) error {
	_, err := r.c.InsertOne(ctx, communityDoc{
		ID: c.ID, Name: c.Name, Description: c.Description, Category: c.Category,
		Tags: nonNil(c.Tags), Rules: nonNil(c.Rules),
		Members: nonNil(c.Members), Moderators: nonNil(c.Moderators),
		IsActive: c.IsActive, CreatedAt: c.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return domain.Conflict("Community with this name already exists")
	}
	return err
}

func (r *CommunityRepo) Get(ctx context.Context, id string) (*domain.Community, error) {
	var d communityDoc
	err := r.c.FindOne(ctx, byID(id)).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrCommunityNotFound
	}
	if err != nil {
		return nil, err
	}
	c := d.toDomain()
	return &c, nil
}

func (r *CommunityRepo) List(ctx context.Context, category string) ([]domain.Community, error) {
	filter := bson.D{{Key: "isActive", Value: true}}
	if category != "" {
		filter = append(filter, bson.E{Key: "category", Value: category})
	}
	cur, err := r.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var ds []communityDoc
	if err := cur.All(ctx, &ds); err != nil {
		return nil, err
	}
	out := make([]domain.Community, 0, len(ds))
	for i := range ds {
		out = append(out, ds[i].toDomain())
	}
	return out, nil
}

func (r *CommunityRepo) update(ctx context.Context, id string, update bson.D) error {
	res, err := r.c.UpdateOne(ctx, byID(id), update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrCommunityNotFound
	}
	return nil
}

func (r *CommunityRepo) AddMember(ctx context.Context, id, userID string) error {
	return r.update(ctx, id, bson.D{{Key: "$addToSet", Value: bson.D{{Key: "members", Value: userID}}}})
}

func (r *CommunityRepo) RemoveMember(ctx context.Context, id, userID string) error {
	return r.update(ctx, id, bson.D{{Key: "$pull", Value: bson.D{{Key: "members", Value: userID}}}})
}

func (r *CommunityRepo) Count(ctx context.Context) (int64, error) {
	return r.c.CountDocuments(ctx, bson.D{})
}
