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

type replyDoc struct {
	ID        string    `bson:"id"`
	AuthorID  string    `bson:"author"`
	Content   string    `bson:"content"`
	Likes     []string  `bson:"likes"`
	Timestamp time.Time `bson:"timestamp"`
}

// postDoc createdNs 用于排序；BSON 时间只到毫秒
type postDoc struct {
	ID          string     `bson:"_id"`
	AuthorID    string     `bson:"author"`
	CommunityID string     `bson:"communityId"`
	Content     string     `bson:"content"`
	Tags        []string   `bson:"tags"`
	Replies     []replyDoc `bson:"replies"`
	Likes       []string   `bson:"likes"`
	Timestamp   time.Time  `bson:"timestamp"`
	CreatedNs   int64      `bson:"createdNs"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toPostDoc(p *domain.Post) postDoc {
	d := postDoc{
		ID:          p.ID,
		AuthorID:    p.AuthorID,
		CommunityID: p.CommunityID,
		Content:     p.Content,
		Tags:        nonNil(p.Tags),
		Replies:     []replyDoc{},
		Likes:       nonNil(p.Likes),
		Timestamp:   p.Timestamp,
		CreatedNs:   p.Timestamp.UnixNano(),
	}
	for _, r := range p.Replies {
		d.Replies = append(d.Replies, toReplyDoc(&r))
	}
	return d
}

func toReplyDoc(r *domain.Reply) replyDoc {
	return replyDoc{ID: r.ID, AuthorID: r.AuthorID, Content: r.Content, Likes: nonNil(r.Likes), Timestamp: r.Timestamp}
}

func (d *postDoc) toDomain() domain.Post {
	p := domain.Post{
		ID:          d.ID,
		AuthorID:    d.AuthorID,
		CommunityID: d.CommunityID,
		Content:     d.Content,
		Tags:        nonNil(d.Tags),
		Replies:     make([]domain.Reply, 0, len(d.Replies)),
		Likes:       nonNil(d.Likes),
		Timestamp:   d.Timestamp,
	}
	for _, r := range d.Replies {
		p.Replies = append(p.Replies, domain.Reply{
			ID: r.ID, AuthorID: r.AuthorID, Content: r.Content,
			Likes: nonNil(r.Likes), Timestamp: r.Timestamp,
		})
	}
	return p
}

type PostRepo struct{ c *mongo.Collection }

var newestFirst = bson.D{{Key: "createdNs", Value: -1}, {Key: "_id", Value: -1}}

func byID(id string) bson.D { return bson.D{{Key: "_id", Value: id}} }

func (r *PostRepo) Create(ctx context.Context, p *domain.Post) error {
	_, err := r.c.InsertOne(ctx, toPostDoc(p))
	if mongo.IsDuplicateKeyError(err) {
		return domain.Conflict("Post already exists")
	}
	return err
}

func (r *PostRepo) Get(ctx context.Context, id string) (*domain.Post, error) {
	var d postDoc
	err := r.c.FindOne(ctx, byID(id)).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	p := d.toDomain()
	return &p, nil
}

func (r *PostRepo) find(ctx context.Context, filter bson.D, opts *options.FindOptionsBuilder) ([]domain.Post, error) {
	cur, err := r.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var ds []postDoc
	if err := cur.All(ctx, &ds); err != nil {
		return nil, err
	}
	out := make([]domain.Post, 0, len(ds))
	for i := range ds {
		out = append(out, ds[i].toDomain())
	}
	return out, nil
}

func (r *PostRepo) List(ctx context.Context, f domain.PostFilter) ([]domain.Post, int64, error) {
	filter := bson.D{}
	if f.CommunityID != "" {
		filter = append(filter, bson.E{Key: "communityId", Value: f.CommunityID})
	}
	if f.Tag != "" {
		filter = append(filter, bson.E{Key: "tags", Value: f.Tag})
	}
	total, err := r.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(newestFirst).SetSkip(int64(f.Offset))
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	ps, err := r.find(ctx, filter, opts)
	return ps, total, err
}

func (r *PostRepo) Search(ctx context.Context, query string, limit int) ([]domain.Post, error) {
	filter := bson.D{{Key: "content", Value: containsRegex(query)}}
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, filter, opts)
}

func (r *PostRepo) AddReply(ctx context.Context, postID string, rp *domain.Reply) error {
	res, err := r.c.UpdateOne(ctx, byID(postID),
		bson.D{{Key: "$push", Value: bson.D{{Key: "replies", Value: toReplyDoc(rp)}}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

// toggleExpr 聚合表达式：arr 中有 uid 则移除，否则追加到末尾。uid 用 $literal 防止被当作字段路径
func toggleExpr(arr string, uid string) bson.D {
	lit := bson.D{{Key: "$literal", Value: uid}}
	safe := bson.D{{Key: "$ifNull", Value: bson.A{arr, bson.A{}}}}
	return bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$in", Value: bson.A{lit, safe}}},
		bson.D{{Key: "$filter", Value: bson.D{
			{Key: "input", Value: safe},
			{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", lit}}}},
		}}},
		bson.D{{Key: "$concatArrays", Value: bson.A{safe, bson.A{lit}}}},
	}}}
}

var returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)

func (r *PostRepo) TogglePostLike(ctx context.Context, postID, userID string) ([]string, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "likes", Value: toggleExpr("$likes", userID)}}}},
	}
	var d postDoc
	err := r.c.FindOneAndUpdate(ctx, byID(postID), pipeline, returnAfter).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return nonNil(d.Likes), nil
}

func (r *PostRepo) ToggleReplyLike(ctx context.Context, postID, replyID, userID string) ([]string, error) {
	lit := bson.D{{Key: "$literal", Value: replyID}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "replies", Value: bson.D{{Key: "$map", Value: bson.D{
			{Key: "input", Value: "$replies"},
			{Key: "as", Value: "r"},
			{Key: "in", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$$r.id", lit}}},
				bson.D{{Key: "$mergeObjects", Value: bson.A{
					"$$r",
					bson.D{{Key: "likes", Value: toggleExpr("$$r.likes", userID)}},
				}}},
				"$$r",
			}}}},
		}}}}}}},
	}
	filter := bson.D{{Key: "_id", Value: postID}, {Key: "replies.id", Value: replyID}}
	var d postDoc
	err := r.c.FindOneAndUpdate(ctx, filter, pipeline, returnAfter).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.missing(ctx, postID)
	}
	if err != nil {
		return nil, err
	}
	for _, rp := range d.Replies {
		if rp.ID == replyID {
			return nonNil(rp.Likes), nil
		}
	}
	return nil, domain.ErrReplyNotFound
}

// missing 区分帖子不存在与回复不存在
func (r *PostRepo) missing(ctx context.Context, postID string) error {
	n, err := r.c.CountDocuments(ctx, byID(postID))
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPostNotFound
	}
	return domain.ErrReplyNotFound
}

func (r *PostRepo) Delete(ctx context.Context, id string) error {
	res, err := r.c.DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepo) DeleteReply(ctx context.Context, postID, replyID string) error {
	filter := bson.D{{Key: "_id", Value: postID}, {Key: "replies.id", Value: replyID}}
	update := bson.D{{Key: "$pull", Value: bson.D{{Key: "replies", Value: bson.D{{Key: "id", Value: replyID}}}}}}
	res, err := r.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missing(ctx, postID)
	}
	return nil
}

func (r *PostRepo) Count(ctx context.Context) (int64, error) {
	return r.c.CountDocuments(ctx, bson.D{})
}
