package repository

// Database-backed tests for the delete transactions and unique indexes.
// They need a real Postgres: set TEST_DATABASE_URL to run them, otherwise
// they skip. Every test runs inside its own transaction and rolls back, so
// the database is left untouched.

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"yamdb/internal/models"
)

var (
	testDBOnce sync.Once
	testDBConn *gorm.DB
	testDBErr  error
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}

	testDBOnce.Do(func() {
		testDBConn, testDBErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if testDBErr != nil {
			return
		}
		testDBErr = testDBConn.AutoMigrate(
			&models.User{},
			&models.RefreshToken{},
			&models.Category{},
			&models.Genre{},
			&models.Title{},
			&models.TitleGenre{},
			&models.Review{},
			&models.Comment{},
		)
	})
	require.NoError(t, testDBErr)
	return testDBConn
}

func beginTx(t *testing.T, db *gorm.DB) *gorm.DB {
	t.Helper()
	tx := db.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() { tx.Rollback() })
	return tx
}

func createTestUser(t *testing.T, tx *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "$2a$10$hashedhashedhashedhashedhashedhashedhashedhashedhashed",
		Role:     models.RoleUser,
	}
	require.NoError(t, tx.Create(user).Error)
	return user
}

func createTestTitle(t *testing.T, tx *gorm.DB, name string, categoryID *int64) *models.Title {
	t.Helper()
	title := &models.Title{Name: name, Year: 2005, CategoryID: categoryID}
	require.NoError(t, tx.Create(title).Error)
	return title
}

func createTestReview(t *testing.T, tx *gorm.DB, author *models.User, titleID int64, score int) *models.Review {
	t.Helper()
	review := &models.Review{
		Text:     "review text",
		AuthorID: author.ID,
		TitleID:  titleID,
		Score:    score,
	}
	require.NoError(t, tx.Create(review).Error)
	return review
}

func createTestComment(t *testing.T, tx *gorm.DB, author *models.User, reviewID int64) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		Text:     "comment text",
		AuthorID: author.ID,
		ReviewID: reviewID,
	}
	require.NoError(t, tx.Create(comment).Error)
	return comment
}

func createTestRefreshToken(t *testing.T, tx *gorm.DB, userID string) *models.RefreshToken {
	t.Helper()
	rt := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, tx.Create(rt).Error)
	return rt
}

func countRows(t *testing.T, tx *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, tx.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	tx := beginTx(t, testDB(t))

	alice := createTestUser(t, tx, "cascade_alice")
	bob := createTestUser(t, tx, "cascade_bob")
	title := createTestTitle(t, tx, "Cascade Title", nil)

	aliceReview := createTestReview(t, tx, alice, title.ID, 7)
	bobReview := createTestReview(t, tx, bob, title.ID, 9)

	// bob comments on alice's review, alice comments on bob's and her own
	createTestComment(t, tx, bob, aliceReview.ID)
	createTestComment(t, tx, alice, bobReview.ID)
	createTestComment(t, tx, alice, aliceReview.ID)

	createTestRefreshToken(t, tx, alice.ID)
	createTestRefreshToken(t, tx, bob.ID)

	require.NoError(t, NewUserRepository(tx).Delete(alice.ID))

	assert.Zero(t, countRows(t, tx, &models.User{}, "id = ?", alice.ID))
	assert.Zero(t, countRows(t, tx, &models.Review{}, "author_id = ?", alice.ID))
	assert.Zero(t, countRows(t, tx, &models.Comment{}, "author_id = ?", alice.ID))
	assert.Zero(t, countRows(t, tx, &models.Comment{}, "review_id = ?", aliceReview.ID),
		"comments by others on the deleted user's reviews must go too")
	assert.Zero(t, countRows(t, tx, &models.RefreshToken{}, "user_id = ?", alice.ID))

	// bob's review and token survive, his comment on alice's review does not
	assert.EqualValues(t, 1, countRows(t, tx, &models.Review{}, "id = ?", bobReview.ID))
	assert.EqualValues(t, 1, countRows(t, tx, &models.RefreshToken{}, "user_id = ?", bob.ID))
	assert.Zero(t, countRows(t, tx, &models.Comment{}, "review_id = ?", bobReview.ID),
		"alice's comment on bob's review is gone with alice")
}

func TestUserRepository_DeleteMissing(t *testing.T) {
	tx := beginTx(t, testDB(t))

	err := NewUserRepository(tx).Delete(uuid.New().String())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTitleRepository_DeleteCascades(t *testing.T) {
	tx := beginTx(t, testDB(t))

	reviewer := createTestUser(t, tx, "title_cascade_reviewer")
	commenter := createTestUser(t, tx, "title_cascade_commenter")

	genre := &models.Genre{Name: "Cascade Genre", Slug: "cascade-genre"}
	require.NoError(t, tx.Create(genre).Error)

	doomed := createTestTitle(t, tx, "Doomed Title", nil)
	require.NoError(t, tx.Create(&models.TitleGenre{TitleID: doomed.ID, GenreID: genre.ID}).Error)
	survivor := createTestTitle(t, tx, "Surviving Title", nil)

	doomedReview := createTestReview(t, tx, reviewer, doomed.ID, 5)
	createTestComment(t, tx, commenter, doomedReview.ID)
	createTestComment(t, tx, reviewer, doomedReview.ID)

	survivorReview := createTestReview(t, tx, reviewer, survivor.ID, 8)
	createTestComment(t, tx, commenter, survivorReview.ID)

	require.NoError(t, NewTitleRepository(tx).Delete(doomed.ID))

	assert.Zero(t, countRows(t, tx, &models.Title{}, "id = ?", doomed.ID))
	assert.Zero(t, countRows(t, tx, &models.Review{}, "title_id = ?", doomed.ID))
	assert.Zero(t, countRows(t, tx, &models.Comment{}, "review_id = ?", doomedReview.ID),
		"comments reach the title only through reviews, they must go with it")
	assert.Zero(t, countRows(t, tx, &models.TitleGenre{}, "title_id = ?", doomed.ID))

	// the genre itself and unrelated rows are untouched
	assert.EqualValues(t, 1, countRows(t, tx, &models.Genre{}, "id = ?", genre.ID))
	assert.EqualValues(t, 1, countRows(t, tx, &models.Review{}, "id = ?", survivorReview.ID))
	assert.EqualValues(t, 1, countRows(t, tx, &models.Comment{}, "review_id = ?", survivorReview.ID))
}

func TestTitleRepository_DeleteMissing(t *testing.T) {
	tx := beginTx(t, testDB(t))

	err := NewTitleRepository(tx).Delete(999999999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCategoryRepository_DeleteKeepsTitles(t *testing.T) {
	tx := beginTx(t, testDB(t))

	doomed := &models.Category{Name: "Doomed Category", Slug: "doomed-category"}
	require.NoError(t, tx.Create(doomed).Error)
	other := &models.Category{Name: "Other Category", Slug: "other-category"}
	require.NoError(t, tx.Create(other).Error)

	orphaned1 := createTestTitle(t, tx, "Orphaned One", &doomed.ID)
	orphaned2 := createTestTitle(t, tx, "Orphaned Two", &doomed.ID)
	kept := createTestTitle(t, tx, "Kept Title", &other.ID)

	require.NoError(t, NewCategoryRepository(tx).Delete("doomed-category"))

	assert.Zero(t, countRows(t, tx, &models.Category{}, "slug = ?", "doomed-category"))

	// titles survive with the reference cleared
	for _, id := range []int64{orphaned1.ID, orphaned2.ID} {
		var title models.Title
		require.NoError(t, tx.First(&title, id).Error)
		assert.Nil(t, title.CategoryID)
	}

	var keptTitle models.Title
	require.NoError(t, tx.First(&keptTitle, kept.ID).Error)
	require.NotNil(t, keptTitle.CategoryID)
	assert.Equal(t, other.ID, *keptTitle.CategoryID)
}

func TestCategoryRepository_DeleteMissing(t *testing.T) {
	tx := beginTx(t, testDB(t))

	err := NewCategoryRepository(tx).Delete("no-such-category")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReviewRepository_DeleteRemovesComments(t *testing.T) {
	tx := beginTx(t, testDB(t))

	author := createTestUser(t, tx, "review_delete_author")
	commenter := createTestUser(t, tx, "review_delete_commenter")
	title := createTestTitle(t, tx, "Reviewed Title", nil)

	doomed := createTestReview(t, tx, author, title.ID, 6)
	kept := createTestReview(t, tx, commenter, title.ID, 4)

	createTestComment(t, tx, commenter, doomed.ID)
	createTestComment(t, tx, author, doomed.ID)
	createTestComment(t, tx, author, kept.ID)

	require.NoError(t, NewReviewRepository(tx).Delete(doomed.ID))

	assert.Zero(t, countRows(t, tx, &models.Review{}, "id = ?", doomed.ID))
	assert.Zero(t, countRows(t, tx, &models.Comment{}, "review_id = ?", doomed.ID))
	assert.EqualValues(t, 1, countRows(t, tx, &models.Comment{}, "review_id = ?", kept.ID))
}

func TestReviewRepository_DeleteMissing(t *testing.T) {
	tx := beginTx(t, testDB(t))

	err := NewReviewRepository(tx).Delete(999999999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReviewRepository_DuplicatePairRejected(t *testing.T) {
	tx := beginTx(t, testDB(t))

	author := createTestUser(t, tx, "double_reviewer")
	title := createTestTitle(t, tx, "Twice Reviewed", nil)
	repo := NewReviewRepository(tx)

	require.NoError(t, repo.Create(&models.Review{
		Text:     "first take",
		AuthorID: author.ID,
		TitleID:  title.ID,
		Score:    8,
	}))

	// the unique (author_id, title_id) index catches the second insert;
	// this statement aborts the test transaction, so it comes last
	err := repo.Create(&models.Review{
		Text:     "second take",
		AuthorID: author.ID,
		TitleID:  title.ID,
		Score:    3,
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
