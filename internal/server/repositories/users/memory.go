package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vivekprasad7/hc-youtube-backend/internal/common"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/models"
)

// MemoryRepository keeps everything in process memory. It backs tests and
// the "memory" storage mode; data is lost on restart.
type MemoryRepository struct {
	mu            sync.RWMutex
	users         map[string]*models.User
	videos        map[string]models.Video
	subscriptions map[[2]string]time.Time
	now           func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:         make(map[string]*models.User),
		videos:        make(map[string]models.Video),
		subscriptions: make(map[[2]string]time.Time),
		now:           time.Now,
	}
}

func clone(u *models.User) *models.User {
	c := *u
	c.WatchHistory = append([]string(nil), u.WatchHistory...)
	return &c
}

// taken reports whether another user already uses username or email.
// Caller holds the lock.
func (r *MemoryRepository) taken(exceptID, username, email string) bool {
	for id, u := range r.users {
		if id == exceptID {
			continue
		}
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) FindByUsernameOrEmail(_ context.Context, username, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *models.User
	for _, u := range r.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			if found == nil || u.CreatedAt.Before(found.CreatedAt) {
				found = u
			}
		}
	}
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return clone(found), nil
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken("", user.Username, user.Email) {
		return nil, common.ErrConflict
	}

	user.ID = uuid.NewString()
	user.CreatedAt = r.now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = clone(user)

	return user, nil
}

// update applies fn to the stored user under the write lock.
func (r *MemoryRepository) update(id string, fn func(u *models.User) error) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	u.UpdatedAt = r.now()
	return clone(u), nil
}

func (r *MemoryRepository) SetRefreshToken(_ context.Context, id, token string) error {
	_, err := r.update(id, func(u *models.User) error {
		u.RefreshToken = token
		return nil
	})
	return err
}

func (r *MemoryRepository) UnsetRefreshToken(_ context.Context, id string) error {
	_, err := r.update(id, func(u *models.User) error {
		u.RefreshToken = ""
		return nil
	})
	return err
}

func (r *MemoryRepository) RotateRefreshToken(_ context.Context, id, expected, next string) error {
	_, err := r.update(id, func(u *models.User) error {
		if u.RefreshToken == "" || u.RefreshToken != expected {
			return common.ErrRefreshTokenReused
		}
		u.RefreshToken = next
		return nil
	})
	if err == common.ErrorNotFound {
		return common.ErrRefreshTokenReused
	}
	return err
}

func (r *MemoryRepository) UpdatePasswordHash(_ context.Context, id, hash string) error {
	_, err := r.update(id, func(u *models.User) error {
		u.PasswordHash = hash
		return nil
	})
	return err
}

func (r *MemoryRepository) UpdateAccount(_ context.Context, id, fullName, email string) (*models.User, error) {
	return r.update(id, func(u *models.User) error {
		if r.taken(id, "", email) {
			return common.ErrConflict
		}
		u.FullName = fullName
		u.Email = email
		return nil
	})
}

func (r *MemoryRepository) UpdateAvatar(_ context.Context, id, url string) (*models.User, error) {
	return r.update(id, func(u *models.User) error {
		u.Avatar = url
		return nil
	})
}

func (r *MemoryRepository) UpdateCoverImage(_ context.Context, id, url string) (*models.User, error) {
	return r.update(id, func(u *models.User) error {
		u.CoverImage = url
		return nil
	})
}

func (r *MemoryRepository) ChannelProfile(_ context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var channel *models.User
	for _, u := range r.users {
		if u.Username == username {
			channel = u
			break
		}
	}
	if channel == nil {
		return nil, common.ErrorNotFound
	}

	p := &models.ChannelProfile{
		ID:         channel.ID,
		Username:   channel.Username,
		FullName:   channel.FullName,
		Email:      channel.Email,
		Avatar:     channel.Avatar,
		CoverImage: channel.CoverImage,
	}
	for key := range r.subscriptions {
		subscriber, ch := key[0], key[1]
		if ch == channel.ID {
			p.SubscribersCount++
			if subscriber == viewerID {
				p.IsSubscribed = true
			}
		}
		if subscriber == channel.ID {
			p.ChannelsSubscribedToCount++
		}
	}
	return p, nil
}

func (r *MemoryRepository) WatchHistory(_ context.Context, id string) ([]models.WatchedVideo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}

	out := make([]models.WatchedVideo, 0, len(u.WatchHistory))
	for _, vid := range u.WatchHistory {
		v, ok := r.videos[vid]
		if !ok {
			continue
		}
		w := models.WatchedVideo{
			ID:          v.ID,
			VideoFile:   v.VideoFile,
			Thumbnail:   v.Thumbnail,
			Title:       v.Title,
			Description: v.Description,
			Duration:    v.Duration,
			Views:       v.Views,
			IsPublished: v.IsPublished,
			CreatedAt:   v.CreatedAt,
		}
		if owner, ok := r.users[v.OwnerID]; ok {
			w.Owner = models.VideoOwner{Username: owner.Username, FullName: owner.FullName, Avatar: owner.Avatar}
		}
		out = append(out, w)
	}
	return out, nil
}

// Delete removes the user with id, together with its subscriptions. Missing
// ids are ignored.
func (r *MemoryRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
	for key := range r.subscriptions {
		if key[0] == id || key[1] == id {
			delete(r.subscriptions, key)
		}
	}
}

// AddVideo stores v, assigning an id when empty.
func (r *MemoryRepository) AddVideo(v models.Video) models.Video {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = r.now()
	}
	r.videos[v.ID] = v
	return v
}

// Subscribe records that subscriberID follows channelID. Repeats are no-ops.
func (r *MemoryRepository) Subscribe(subscriberID, channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := [2]string{subscriberID, channelID}
	if _, ok := r.subscriptions[key]; !ok {
		r.subscriptions[key] = r.now()
	}
}

// RecordWatch appends videoID to the user's watch history.
func (r *MemoryRepository) RecordWatch(userID, videoID string) error {
	_, err := r.update(userID, func(u *models.User) error {
		u.WatchHistory = append(u.WatchHistory, videoID)
		return nil
	})
	return err
}
