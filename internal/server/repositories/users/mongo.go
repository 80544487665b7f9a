package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vivekprasad7/hc-youtube-backend/internal/common"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection         = "users"
	VideosCollection        = "videos"
	SubscriptionsCollection = "subscriptions"
)

// userDoc is the stored shape of a user. Ids are UUID strings, not ObjectIDs,
// so they look the same across backends.
type userDoc struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	FullName     string    `bson:"fullName"`
	Avatar       string    `bson:"avatar"`
	CoverImage   string    `bson:"coverImage"`
	Password     string    `bson:"password"`
	RefreshToken string    `bson:"refreshToken,omitempty"`
	WatchHistory []string  `bson:"watchHistory"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func (d *userDoc) model() *models.User {
	return &models.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		FullName:     d.FullName,
		Avatar:       d.Avatar,
		CoverImage:   d.CoverImage,
		PasswordHash: d.Password,
		RefreshToken: d.RefreshToken,
		WatchHistory: d.WatchHistory,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type MongoRepository struct {
	users         *mongo.Collection
	videos        *mongo.Collection
	subscriptions *mongo.Collection
	now           func() time.Time
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		users:         db.Collection(UsersCollection),
		videos:        db.Collection(VideosCollection),
		subscriptions: db.Collection(SubscriptionsCollection),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the unique indexes uniqueness relies on.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	_, err = r.subscriptions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "channel", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("subscriptions indexes: %w", err)
	}
	return nil
}

func mapMongoErr(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return common.ErrorNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", common.ErrConflict, err)
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

func (r *MongoRepository) findOne(ctx context.Context, filter any) (*models.User, error) {
	var d userDoc
	if err := r.users.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, mapMongoErr(err)
	}
	return d.model(), nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	or := bson.A{}
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil, common.ErrorNotFound
	}
	return r.findOne(ctx, bson.M{"$or": or})
}

func (r *MongoRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := r.now()
	d := userDoc{
		ID:           uuid.NewString(),
		Username:     user.Username,
		Email:        user.Email,
		FullName:     user.FullName,
		Avatar:       user.Avatar,
		CoverImage:   user.CoverImage,
		Password:     user.PasswordHash,
		WatchHistory: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := r.users.InsertOne(ctx, d); err != nil {
		return nil, mapMongoErr(err)
	}

	user.ID = d.ID
	user.CreatedAt = now
	user.UpdatedAt = now
	return user, nil
}

// updateOne applies update to the document matching filter and reports
// common.ErrorNotFound when nothing matched.
func (r *MongoRepository) updateOne(ctx context.Context, filter bson.M, update bson.M) error {
	res, err := r.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapMongoErr(err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	return r.updateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"refreshToken": token, "updatedAt": r.now()}})
}

func (r *MongoRepository) UnsetRefreshToken(ctx context.Context, id string) error {
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{
		"$unset": bson.M{"refreshToken": ""},
		"$set":   bson.M{"updatedAt": r.now()},
	})
}

func (r *MongoRepository) RotateRefreshToken(ctx context.Context, id, expected, next string) error {
	err := r.updateOne(ctx, bson.M{"_id": id, "refreshToken": expected},
		bson.M{"$set": bson.M{"refreshToken": next, "updatedAt": r.now()}})
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrRefreshTokenReused
	}
	return err
}

func (r *MongoRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.updateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"password": hash, "updatedAt": r.now()}})
}

func (r *MongoRepository) setAndReturn(ctx context.Context, id string, set bson.M) (*models.User, error) {
	set["updatedAt"] = r.now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d userDoc
	if err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&d); err != nil {
		return nil, mapMongoErr(err)
	}
	return d.model(), nil
}

func (r *MongoRepository) UpdateAccount(ctx context.Context, id, fullName, email string) (*models.User, error) {
	return r.setAndReturn(ctx, id, bson.M{"fullName": fullName, "email": email})
}

func (r *MongoRepository) UpdateAvatar(ctx context.Context, id, url string) (*models.User, error) {
	return r.setAndReturn(ctx, id, bson.M{"avatar": url})
}

func (r *MongoRepository) UpdateCoverImage(ctx context.Context, id, url string) (*models.User, error) {
	return r.setAndReturn(ctx, id, bson.M{"coverImage": url})
}

type channelDoc struct {
	ID                        string `bson:"_id"`
	Username                  string `bson:"username"`
	FullName                  string `bson:"fullName"`
	Email                     string `bson:"email"`
	Avatar                    string `bson:"avatar"`
	CoverImage                string `bson:"coverImage"`
	SubscribersCount          int64  `bson:"subscribersCount"`
	ChannelsSubscribedToCount int64  `bson:"channelsSubscribedToCount"`
	IsSubscribed              bool   `bson:"isSubscribed"`
}

func (r *MongoRepository) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": username}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         SubscriptionsCollection,
			"localField":   "_id",
			"foreignField": "channel",
			"as":           "subscribers",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         SubscriptionsCollection,
			"localField":   "_id",
			"foreignField": "subscriber",
			"as":           "subscribedTo",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"subscribersCount":          bson.M{"$size": "$subscribers"},
			"channelsSubscribedToCount": bson.M{"$size": "$subscribedTo"},
			"isSubscribed":              bson.M{"$in": bson.A{viewerID, "$subscribers.subscriber"}},
		}}},
		{{Key: "$project", Value: bson.M{
			"username":                  1,
			"fullName":                  1,
			"email":                     1,
			"avatar":                    1,
			"coverImage":                1,
			"subscribersCount":          1,
			"channelsSubscribedToCount": 1,
			"isSubscribed":              1,
		}}},
	}

	cur, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	var docs []channelDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapMongoErr(err)
	}
	if len(docs) == 0 {
		return nil, common.ErrorNotFound
	}

	d := docs[0]
	return &models.ChannelProfile{
		ID:                        d.ID,
		Username:                  d.Username,
		FullName:                  d.FullName,
		Email:                     d.Email,
		Avatar:                    d.Avatar,
		CoverImage:                d.CoverImage,
		SubscribersCount:          d.SubscribersCount,
		ChannelsSubscribedToCount: d.ChannelsSubscribedToCount,
		IsSubscribed:              d.IsSubscribed,
	}, nil
}

type watchedDoc struct {
	ID          string    `bson:"_id"`
	VideoFile   string    `bson:"videoFile"`
	Thumbnail   string    `bson:"thumbnail"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Duration    float64   `bson:"duration"`
	Views       int64     `bson:"views"`
	IsPublished bool      `bson:"isPublished"`
	CreatedAt   time.Time `bson:"createdAt"`
	Owner       struct {
		Username string `bson:"username"`
		FullName string `bson:"fullName"`
		Avatar   string `bson:"avatar"`
	} `bson:"owner"`
}

func (r *MongoRepository) WatchHistory(ctx context.Context, id string) ([]models.WatchedVideo, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(u.WatchHistory) == 0 {
		return []models.WatchedVideo{}, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$in": u.WatchHistory}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         UsersCollection,
			"localField":   "owner",
			"foreignField": "_id",
			"as":           "owner",
			"pipeline": bson.A{
				bson.M{"$project": bson.M{"username": 1, "fullName": 1, "avatar": 1}},
			},
		}}},
		{{Key: "$addFields", Value: bson.M{"owner": bson.M{"$first": "$owner"}}}},
	}

	cur, err := r.videos.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	var docs []watchedDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapMongoErr(err)
	}

	byID := make(map[string]watchedDoc, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	// $in does not keep order; rebuild it from the stored history.
	out := make([]models.WatchedVideo, 0, len(docs))
	for _, vid := range u.WatchHistory {
		d, ok := byID[vid]
		if !ok {
			continue
		}
		out = append(out, models.WatchedVideo{
			ID:          d.ID,
			VideoFile:   d.VideoFile,
			Thumbnail:   d.Thumbnail,
			Title:       d.Title,
			Description: d.Description,
			Duration:    d.Duration,
			Views:       d.Views,
			IsPublished: d.IsPublished,
			CreatedAt:   d.CreatedAt,
			Owner:       models.VideoOwner{Username: d.Owner.Username, FullName: d.Owner.FullName, Avatar: d.Owner.Avatar},
		})
	}
	return out, nil
}
