package service

import (
	"testing"
	"time"

	"github.com/yxlimo/paperhub/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserServiceAt(store *fakeStore, now time.Time) *UserServiceImpl {
	return &UserServiceImpl{
		store:  store,
		files:  newFakeFileStore(),
		logger: newTestLogger(),
		now:    func() time.Time { return now },
	}
}

func TestCheckInOncePerDay(t *testing.T) {
	store, users, _, _, _ := newFakeStore()
	user := seedUser(t, users, 2, false)

	day := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	svc := newUserServiceAt(store, day)

	added, err := svc.CheckIn(user.ID)
	require.NoError(t, err)
	assert.Equal(t, CheckInReward, added)
	assert.Equal(t, 7, user.DownloadTickets)

	// 同一天第二次签到失败，当日总共只加 5
	_, err = svc.CheckIn(user.ID)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
	assert.Equal(t, 7, user.DownloadTickets)
}

func TestCheckInNextDaySucceeds(t *testing.T) {
	store, users, _, _, _ := newFakeStore()
	user := seedUser(t, users, 0, false)

	day1 := time.Date(2025, 3, 10, 23, 50, 0, 0, time.UTC)
	_, err := newUserServiceAt(store, day1).CheckIn(user.ID)
	require.NoError(t, err)

	day2 := time.Date(2025, 3, 11, 0, 5, 0, 0, time.UTC)
	added, err := newUserServiceAt(store, day2).CheckIn(user.ID)
	require.NoError(t, err)
	assert.Equal(t, CheckInReward, added)
	assert.Equal(t, 10, user.DownloadTickets)
}

func TestCheckInUserNotFound(t *testing.T) {
	store, _, _, _, _ := newFakeStore()
	svc := newUserServiceAt(store, time.Now())

	_, err := svc.CheckIn(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMeSnapshot(t *testing.T) {
	store, users, _, _, _ := newFakeStore()
	user := seedUser(t, users, 3, false)

	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newUserServiceAt(store, day)

	snap, err := svc.Me(user.ID)
	require.NoError(t, err)
	assert.False(t, snap.IsCheckedIn)

	_, err = svc.CheckIn(user.ID)
	require.NoError(t, err)

	snap, err = svc.Me(user.ID)
	require.NoError(t, err)
	assert.True(t, snap.IsCheckedIn)
	assert.Equal(t, 8, snap.User.DownloadTickets)
}

func TestUpdateUsernameValidation(t *testing.T) {
	store, users, _, _, _ := newFakeStore()
	user := seedUser(t, users, 0, false)
	svc := newUserServiceAt(store, time.Now())

	assert.ErrorIs(t, svc.UpdateUsername(user.ID, "a"), ErrInvalidArgument)
	assert.ErrorIs(t, svc.UpdateUsername(user.ID, "超过七个字的昵称啦"), ErrInvalidArgument)

	require.NoError(t, svc.UpdateUsername(user.ID, "  小明  "))
	assert.Equal(t, "小明", user.Username)
}

func TestUpdateAvatarValidation(t *testing.T) {
	store, users, _, _, _ := newFakeStore()
	user := seedUser(t, users, 0, false)
	svc := newUserServiceAt(store, time.Now())

	_, err := svc.UpdateAvatar(user.ID, "resume.pdf", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	url, err := svc.UpdateAvatar(user.ID, "me.png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.NotEmpty(t, url)
	assert.Equal(t, url, user.AvatarURL)
}

func TestDownloadsHistory(t *testing.T) {
	store, users, papers, downloads, _ := newFakeStore()
	uploader := seedUser(t, users, 0, false)
	buyer := seedUser(t, users, 1, false)
	paper := seedPaper(t, papers, uploader.ID, models.PaperStatusApproved)

	psvc := newPaperService(store, &fakeNotifier{})
	_, err := psvc.Download(buyer.ID, paper.ID)
	require.NoError(t, err)

	svc := newUserServiceAt(store, time.Now())
	history, err := svc.Downloads(buyer.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, paper.ID, history[0].PaperID)
	assert.Equal(t, 1, downloads.countFor(buyer.ID, paper.ID))
}
