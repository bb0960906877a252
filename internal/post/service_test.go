package post

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xieumar/HNG-Framez/internal/apperr"
	"github.com/xieumar/HNG-Framez/internal/database"
	"github.com/xieumar/HNG-Framez/internal/engine"
	"github.com/xieumar/HNG-Framez/internal/events"
	"github.com/xieumar/HNG-Framez/internal/media"
	"github.com/xieumar/HNG-Framez/internal/storage"
	"github.com/xieumar/HNG-Framez/internal/user"
)

// local fixtures for the child tables so the cascade can be observed without
// importing the engagement packages (they depend on this one)
type likeFixture struct {
	ID        string `gorm:"primaryKey"`
	PostID    string
	UserID    string
	CreatedAt time.Time
}

func (likeFixture) TableName() string { return "likes" }

type commentFixture struct {
	ID        string `gorm:"primaryKey"`
	PostID    string `gorm:"index"`
	UserID    string
	Content   string
	CreatedAt time.Time
}

func (commentFixture) TableName() string { return "comments" }

func newTestService(t *testing.T) (*Service, *storage.MemoryStore) {
	t.Helper()
	db := database.OpenTest(t, &user.User{}, &Post{}, &likeFixture{}, &commentFixture{})
	store := storage.NewMemoryStore("https://blob.test")
	return NewService(engine.New(db, events.NewBus()), store), store
}

func seedUser(t *testing.T, s *Service, name string) string {
	t.Helper()
	row := user.User{ID: uuid.New().String(), ExternalID: uuid.New().String(), Name: name, CreatedAt: time.Now()}
	require.NoError(t, s.engine.DB().Create(&row).Error)
	return row.ID
}

func TestCreateInitializesCounters(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	userID := seedUser(t, service, "Ana")

	postID, err := service.Create(ctx, userID, "hello", media.Ref{})
	require.NoError(t, err)

	row, err := service.Get(ctx, postID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, row.LikesCount)
	assert.EqualValues(t, 0, row.CommentsCount)
	assert.EqualValues(t, 0, row.SharesCount)
}

func TestGetAllNewestFirstWithAuthor(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	userID := seedUser(t, service, "Ana")

	// deterministic ordering: insert with explicit timestamps
	older := Post{ID: "p-old", UserID: userID, Content: "first", CreatedAt: time.Now().Add(-time.Hour)}
	newer := Post{ID: "p-new", UserID: userID, Content: "second", CreatedAt: time.Now()}
	require.NoError(t, service.engine.DB().Create(&older).Error)
	require.NoError(t, service.engine.DB().Create(&newer).Error)

	views, err := service.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "p-new", views[0].ID)
	assert.Equal(t, "p-old", views[1].ID)
	require.NotNil(t, views[0].Author)
	assert.Equal(t, "Ana", views[0].Author.Name)
}

func TestGetAllScenario(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	userID := seedUser(t, service, "Ana")

	_, err := service.Create(ctx, userID, "hello", media.Ref{})
	require.NoError(t, err)

	views, err := service.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "hello", views[0].Content)
	assert.EqualValues(t, 0, views[0].LikesCount)
	assert.EqualValues(t, 0, views[0].CommentsCount)
	require.NotNil(t, views[0].Author)
	assert.Equal(t, "Ana", views[0].Author.Name)
}

func TestGetAllDeletedAuthorYieldsNil(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	userID := seedUser(t, service, "Ana")

	_, err := service.Create(ctx, userID, "orphaned", media.Ref{})
	require.NoError(t, err)
	require.NoError(t, service.engine.DB().Delete(&user.User{}, "id = ?", userID).Error)

	views, err := service.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1, "the post is still returned")
	assert.Nil(t, views[0].Author)
}

func TestGetAllResolvesImages(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()
	userID := seedUser(t, service, "Ana")

	ticket, err := store.CreateUploadTicket(ctx)
	require.NoError(t, err)
	store.Put(ticket.ObjectID, []byte("jpg"), "image/jpeg")

	_, err = service.Create(ctx, userID, "", media.ParseRef(ticket.ObjectID))
	require.NoError(t, err)
	_, err = service.Create(ctx, userID, "external", media.ParseRef("https://cdn.example/pic.png"))
	require.NoError(t, err)

	views, err := service.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byContent := map[string]*string{}
	for _, v := range views {
		byContent[v.Content] = v.ImageURL
	}
	require.NotNil(t, byContent["external"])
	assert.Equal(t, "https://cdn.example/pic.png", *byContent["external"])
	require.NotNil(t, byContent[""])
	assert.Equal(t, "https://blob.test/object/"+ticket.ObjectID, *byContent[""])
}

func TestGetForUserOmitsAuthor(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	ana := seedUser(t, service, "Ana")
	bob := seedUser(t, service, "Bob")

	_, err := service.Create(ctx, ana, "mine", media.Ref{})
	require.NoError(t, err)
	_, err = service.Create(ctx, bob, "theirs", media.Ref{})
	require.NoError(t, err)

	views, err := service.GetForUser(ctx, ana)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "mine", views[0].Content)
	assert.Nil(t, views[0].Author)
}

func TestUpdateOwnerOnly(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	ana := seedUser(t, service, "Ana")
	bob := seedUser(t, service, "Bob")

	postID, err := service.Create(ctx, ana, "original", media.Ref{})
	require.NoError(t, err)

	err = service.Update(ctx, postID, bob, "hijacked")
	assert.Equal(t, apperr.Forbidden, apperr.CodeOf(err))

	require.NoError(t, service.Update(ctx, postID, ana, "edited"))
	row, err := service.Get(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, "edited", row.Content)
}

func TestUpdateMissingPost(t *testing.T) {
	service, _ := newTestService(t)

	err := service.Update(context.Background(), "missing", "u1", "text")
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
}

func TestUpdateBumpsVersion(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	ana := seedUser(t, service, "Ana")

	postID, err := service.Create(ctx, ana, "v0", media.Ref{})
	require.NoError(t, err)
	before, _ := service.Get(ctx, postID)

	require.NoError(t, service.Update(ctx, postID, ana, "v1"))
	after, _ := service.Get(ctx, postID)
	assert.Greater(t, after.Version, before.Version)
}

func TestDeleteCascades(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()
	ana := seedUser(t, service, "Ana")

	ticket, err := store.CreateUploadTicket(ctx)
	require.NoError(t, err)
	store.Put(ticket.ObjectID, []byte("jpg"), "image/jpeg")

	postID, err := service.Create(ctx, ana, "doomed", media.ParseRef(ticket.ObjectID))
	require.NoError(t, err)

	db := service.engine.DB()
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&likeFixture{ID: uuid.New().String(), PostID: postID, UserID: uuid.New().String()}).Error)
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, db.Create(&commentFixture{ID: uuid.New().String(), PostID: postID, UserID: ana, Content: "c"}).Error)
	}

	require.NoError(t, service.Delete(ctx, postID, ana))

	var likes, comments int64
	db.Model(&likeFixture{}).Where("post_id = ?", postID).Count(&likes)
	db.Model(&commentFixture{}).Where("post_id = ?", postID).Count(&comments)
	assert.EqualValues(t, 0, likes)
	assert.EqualValues(t, 0, comments)

	_, err = service.Get(ctx, postID)
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))

	url, err := store.Resolve(ctx, ticket.ObjectID)
	require.NoError(t, err)
	assert.Empty(t, url, "image blob reclaimed")
}

func TestDeleteOwnerOnly(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	ana := seedUser(t, service, "Ana")
	bob := seedUser(t, service, "Bob")

	postID, err := service.Create(ctx, ana, "keep out", media.Ref{})
	require.NoError(t, err)

	err = service.Delete(ctx, postID, bob)
	assert.Equal(t, apperr.Forbidden, apperr.CodeOf(err))

	_, err = service.Get(ctx, postID)
	assert.NoError(t, err, "post survived the forbidden delete")
}

func TestDeleteMissingPost(t *testing.T) {
	service, _ := newTestService(t)

	err := service.Delete(context.Background(), "missing", "u1")
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
}

func TestIncrementShares(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	ana := seedUser(t, service, "Ana")

	postID, err := service.Create(ctx, ana, "shared", media.Ref{})
	require.NoError(t, err)

	require.NoError(t, service.IncrementShares(ctx, postID))
	require.NoError(t, service.IncrementShares(ctx, postID))

	row, err := service.Get(ctx, postID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, row.SharesCount)
}

func TestIncrementSharesMissingPostIsSilent(t *testing.T) {
	service, _ := newTestService(t)

	assert.NoError(t, service.IncrementShares(context.Background(), "missing"))
}

func TestBumpCounterFloorsAtZero(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	ana := seedUser(t, service, "Ana")

	postID, err := service.Create(ctx, ana, "floored", media.Ref{})
	require.NoError(t, err)

	// two logical decrements of the same unit must not go negative
	db := service.engine.DB()
	for i := 0; i < 2; i++ {
		found, err := BumpCounter(db, postID, "comments_count", -1)
		require.NoError(t, err)
		assert.True(t, found)
	}

	row, err := service.Get(ctx, postID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, row.CommentsCount)
}
