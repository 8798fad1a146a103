package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yamdb/internal/dto"
	"yamdb/internal/models"
	"yamdb/pkg/apperrors"
)

type commentFixture struct {
	svc      CommentService
	author   *models.User
	stranger *models.User
	admin    *models.User
	reviewID int64
	comments *MockCommentRepository
}

func newCommentFixture(t *testing.T) *commentFixture {
	t.Helper()

	users := NewMockUserRepository()
	author := &models.User{ID: "u-author", Username: "author", Email: "author@example.com", Role: models.RoleUser}
	stranger := &models.User{ID: "u-stranger", Username: "stranger", Email: "stranger@example.com", Role: models.RoleUser}
	admin := &models.User{ID: "u-admin", Username: "admin", Email: "admin@example.com", Role: models.RoleAdmin}
	require.NoError(t, users.Create(author))
	require.NoError(t, users.Create(stranger))
	require.NoError(t, users.Create(admin))

	reviews := NewMockReviewRepository(users)
	review := &models.Review{Text: "the review under discussion", Score: 7, AuthorID: author.ID, TitleID: 1}
	require.NoError(t, reviews.Create(review))

	comments := NewMockCommentRepository(users)

	return &commentFixture{
		svc:      NewCommentService(comments, reviews),
		author:   author,
		stranger: stranger,
		admin:    admin,
		reviewID: review.ID,
		comments: comments,
	}
}

func TestCreateComment_Success(t *testing.T) {
	f := newCommentFixture(t)

	resp, err := f.svc.CreateComment(f.stranger, f.reviewID, &dto.CreateCommentDTO{Text: "disagree entirely"})
	require.NoError(t, err)

	assert.Equal(t, "stranger", resp.Author)
	assert.Equal(t, "disagree entirely", resp.Text)
	assert.False(t, resp.PubDate.IsZero())
}

func TestCreateComment_MissingReview(t *testing.T) {
	f := newCommentFixture(t)

	_, err := f.svc.CreateComment(f.stranger, 9999, &dto.CreateCommentDTO{Text: "into the void"})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	assert.Equal(t, 404, appErr.HTTPCode)
}

func TestUpdateComment_StrangerForbidden(t *testing.T) {
	f := newCommentFixture(t)

	created, err := f.svc.CreateComment(f.author, f.reviewID, &dto.CreateCommentDTO{Text: "my comment"})
	require.NoError(t, err)

	_, err = f.svc.UpdateComment(f.stranger, created.ID, &dto.UpdateCommentDTO{Text: "hijacked"})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestUpdateComment_AuthorAllowed(t *testing.T) {
	f := newCommentFixture(t)

	created, err := f.svc.CreateComment(f.author, f.reviewID, &dto.CreateCommentDTO{Text: "typo herre"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateComment(f.author, created.ID, &dto.UpdateCommentDTO{Text: "typo here"})
	require.NoError(t, err)
	assert.Equal(t, "typo here", updated.Text)
}

func TestDeleteComment_AdminAllowed(t *testing.T) {
	f := newCommentFixture(t)

	created, err := f.svc.CreateComment(f.author, f.reviewID, &dto.CreateCommentDTO{Text: "offensive"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteComment(f.admin, created.ID))

	_, err = f.svc.UpdateComment(f.author, created.ID, &dto.UpdateCommentDTO{Text: "still there?"})
	require.Error(t, err)
}

func TestGetReviewComments_OldestFirst(t *testing.T) {
	f := newCommentFixture(t)

	first, err := f.svc.CreateComment(f.author, f.reviewID, &dto.CreateCommentDTO{Text: "first"})
	require.NoError(t, err)
	second, err := f.svc.CreateComment(f.stranger, f.reviewID, &dto.CreateCommentDTO{Text: "second"})
	require.NoError(t, err)

	page, err := f.svc.GetReviewComments(f.reviewID, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, first.ID, page.Data[0].ID)
	assert.Equal(t, second.ID, page.Data[1].ID)
}

func TestGetReviewComments_MissingReview(t *testing.T) {
	f := newCommentFixture(t)

	_, err := f.svc.GetReviewComments(9999, 1, 20)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
