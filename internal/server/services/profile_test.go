package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivekprasad7/hc-youtube-backend/internal/common"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/models"
)

func TestUpdateAccountDetails(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	id := f.register(t, validInput())

	other := validInput()
	other.Username = "bob"
	other.Email = "bob@example.com"
	f.register(t, other)

	_, err := f.svc.UpdateAccountDetails(ctx, id, "", "x@example.com")
	assertKind(t, err, common.ErrValidation, "All fields are required")

	_, err = f.svc.UpdateAccountDetails(ctx, id, "Jane", " BOB@example.com ")
	assertKind(t, err, common.ErrConflict, "Email is already in use")

	u, err := f.svc.UpdateAccountDetails(ctx, id, "  Jane Q. Doe ", "JQ@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "Jane Q. Doe", u.FullName)
	assert.Equal(t, "jq@example.com", u.Email)
	assert.Equal(t, "janed", u.Username)

	_, err = f.svc.UpdateAccountDetails(ctx, "missing", "A", "a@example.com")
	assertKind(t, err, common.ErrorNotFound, "User does not exist")
}

func TestUpdateAvatarAndCoverImage(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	id := f.register(t, validInput())

	_, err := f.svc.UpdateAvatar(ctx, id, "")
	assertKind(t, err, common.ErrValidation, "Avatar file is missing")

	_, err = f.svc.UpdateCoverImage(ctx, id, "")
	assertKind(t, err, common.ErrValidation, "Cover image file is missing")

	u, err := f.svc.UpdateAvatar(ctx, id, stageFile(t, "new-avatar.png"))
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.test/media/new-avatar.png", u.Avatar)

	u, err = f.svc.UpdateCoverImage(ctx, id, stageFile(t, "banner.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.test/media/banner.jpg", u.CoverImage)

	broken := stageFile(t, "broken.png")
	f.uploader.fail[broken] = errors.New("boom")
	_, err = f.svc.UpdateCoverImage(ctx, id, broken)
	assertKind(t, err, common.ErrUpload, "Error while uploading cover image")

	_, err = f.svc.UpdateAvatar(ctx, "missing", stageFile(t, "x.png"))
	assertKind(t, err, common.ErrorNotFound, "User does not exist")
}

func TestGetChannelProfile(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	channelID := f.register(t, validInput())

	viewer := validInput()
	viewer.Username = "viewer"
	viewer.Email = "viewer@example.com"
	viewerID := f.register(t, viewer)

	f.rm.Store().Subscribe(viewerID, channelID)
	f.rm.Store().Subscribe(channelID, viewerID)

	p, err := f.svc.GetChannelProfile(ctx, "JaneD", viewerID)
	require.NoError(t, err)
	assert.Equal(t, "janed", p.Username)
	assert.EqualValues(t, 1, p.SubscribersCount)
	assert.EqualValues(t, 1, p.ChannelsSubscribedToCount)
	assert.True(t, p.IsSubscribed)

	p, err = f.svc.GetChannelProfile(ctx, "janed", channelID)
	require.NoError(t, err)
	assert.False(t, p.IsSubscribed)

	_, err = f.svc.GetChannelProfile(ctx, " ", viewerID)
	assertKind(t, err, common.ErrValidation, "username is missing")

	_, err = f.svc.GetChannelProfile(ctx, "nobody", viewerID)
	assertKind(t, err, common.ErrorNotFound, "channel does not exist")
}

func TestGetWatchHistory(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	id := f.register(t, validInput())

	history, err := f.svc.GetWatchHistory(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)

	store := f.rm.Store()
	first := store.AddVideo(models.Video{OwnerID: id, Title: "first"})
	second := store.AddVideo(models.Video{OwnerID: id, Title: "second"})
	require.NoError(t, store.RecordWatch(id, second.ID))
	require.NoError(t, store.RecordWatch(id, first.ID))

	history, err = f.svc.GetWatchHistory(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "second", history[0].Title)
	assert.Equal(t, "first", history[1].Title)
	assert.Equal(t, "janed", history[0].Owner.Username)

	_, err = f.svc.GetWatchHistory(ctx, "missing")
	assertKind(t, err, common.ErrorNotFound, "User does not exist")
}
