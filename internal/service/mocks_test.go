package service

import (
	"sort"
	"time"

	"yamdb/internal/models"
	"yamdb/internal/repository"

	"gorm.io/gorm"
)

// In-memory repository implementations backing the service tests. Each mock
// mirrors the real repository's contract: gorm.ErrRecordNotFound for misses
// and gorm.ErrDuplicatedKey where a unique index would fire.

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	users     map[string]*models.User // keyed by ID
	createErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*models.User)}
}

func (m *MockUserRepository) Create(user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByID(id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) List(page, pageSize int) ([]models.User, int64, error) {
	all := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	return paginate(all, page, pageSize), int64(len(all)), nil
}

func (m *MockUserRepository) Update(user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, u := range m.users {
		if u.ID != user.ID && u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) Delete(id string) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

// MockRefreshTokenRepository is a mock implementation of repository.RefreshTokenRepository.
type MockRefreshTokenRepository struct {
	tokens map[string]*models.RefreshToken // keyed by token string
}

func NewMockRefreshTokenRepository() *MockRefreshTokenRepository {
	return &MockRefreshTokenRepository{tokens: make(map[string]*models.RefreshToken)}
}

func (m *MockRefreshTokenRepository) Create(rt *models.RefreshToken) error {
	m.tokens[rt.Token] = rt
	return nil
}

func (m *MockRefreshTokenRepository) FindByToken(tokenString string) (*models.RefreshToken, error) {
	if rt, ok := m.tokens[tokenString]; ok {
		return rt, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockRefreshTokenRepository) Revoke(tokenID string) error {
	for _, rt := range m.tokens {
		if rt.ID == tokenID {
			rt.Revoked = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *MockRefreshTokenRepository) DeleteByUser(userID string) error {
	for key, rt := range m.tokens {
		if rt.UserID == userID {
			delete(m.tokens, key)
		}
	}
	return nil
}

// MockCategoryRepository is a mock implementation of repository.CategoryRepository.
type MockCategoryRepository struct {
	categories map[string]*models.Category // keyed by slug
	nextID     int64
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{categories: make(map[string]*models.Category), nextID: 1}
}

func (m *MockCategoryRepository) Create(category *models.Category) error {
	if _, exists := m.categories[category.Slug]; exists {
		return gorm.ErrDuplicatedKey
	}
	category.ID = m.nextID
	m.nextID++
	m.categories[category.Slug] = category
	return nil
}

func (m *MockCategoryRepository) FindBySlug(slug string) (*models.Category, error) {
	if c, ok := m.categories[slug]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockCategoryRepository) List(page, pageSize int) ([]models.Category, int64, error) {
	all := make([]models.Category, 0, len(m.categories))
	for _, c := range m.categories {
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Slug < all[j].Slug })
	return paginate(all, page, pageSize), int64(len(all)), nil
}

func (m *MockCategoryRepository) Delete(slug string) error {
	if _, ok := m.categories[slug]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.categories, slug)
	return nil
}

// MockGenreRepository is a mock implementation of repository.GenreRepository.
type MockGenreRepository struct {
	genres map[string]*models.Genre // keyed by slug
	nextID int64
}

func NewMockGenreRepository() *MockGenreRepository {
	return &MockGenreRepository{genres: make(map[string]*models.Genre), nextID: 1}
}

func (m *MockGenreRepository) Create(genre *models.Genre) error {
	if _, exists := m.genres[genre.Slug]; exists {
		return gorm.ErrDuplicatedKey
	}
	genre.ID = m.nextID
	m.nextID++
	m.genres[genre.Slug] = genre
	return nil
}

func (m *MockGenreRepository) FindBySlug(slug string) (*models.Genre, error) {
	if g, ok := m.genres[slug]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockGenreRepository) FindBySlugs(slugs []string) ([]models.Genre, error) {
	found := make([]models.Genre, 0, len(slugs))
	for _, slug := range slugs {
		if g, ok := m.genres[slug]; ok {
			found = append(found, *g)
		}
	}
	return found, nil
}

func (m *MockGenreRepository) List(page, pageSize int) ([]models.Genre, int64, error) {
	all := make([]models.Genre, 0, len(m.genres))
	for _, g := range m.genres {
		all = append(all, *g)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Slug < all[j].Slug })
	return paginate(all, page, pageSize), int64(len(all)), nil
}

func (m *MockGenreRepository) Delete(slug string) error {
	if _, ok := m.genres[slug]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.genres, slug)
	return nil
}

// MockTitleRepository is a mock implementation of repository.TitleRepository.
type MockTitleRepository struct {
	titles     map[int64]*models.Title
	categories *MockCategoryRepository
	nextID     int64
}

func NewMockTitleRepository(categories *MockCategoryRepository) *MockTitleRepository {
	return &MockTitleRepository{
		titles:     make(map[int64]*models.Title),
		categories: categories,
		nextID:     1,
	}
}

func (m *MockTitleRepository) Create(title *models.Title) error {
	title.ID = m.nextID
	m.nextID++
	m.titles[title.ID] = title
	return nil
}

func (m *MockTitleRepository) GetByID(id int64) (*models.Title, error) {
	title, ok := m.titles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	// emulate the category preload
	if title.CategoryID != nil && title.Category == nil && m.categories != nil {
		for _, c := range m.categories.categories {
			if c.ID == *title.CategoryID {
				title.Category = c
			}
		}
	}
	return title, nil
}

func (m *MockTitleRepository) List(filters repository.TitleFilters, page, pageSize int) ([]models.Title, int64, error) {
	all := make([]models.Title, 0, len(m.titles))
	for _, t := range m.titles {
		if filters.Year != 0 && t.Year != filters.Year {
			continue
		}
		if filters.Name != "" && t.Name != filters.Name {
			continue
		}
		all = append(all, *t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page, pageSize), int64(len(all)), nil
}

func (m *MockTitleRepository) Update(title *models.Title) error {
	if _, ok := m.titles[title.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.titles[title.ID] = title
	return nil
}

func (m *MockTitleRepository) ReplaceGenres(title *models.Title, genres []models.Genre) error {
	stored, ok := m.titles[title.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Genres = genres
	return nil
}

func (m *MockTitleRepository) Delete(id int64) error {
	if _, ok := m.titles[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.titles, id)
	return nil
}

// MockReviewRepository is a mock implementation of repository.ReviewRepository.
type MockReviewRepository struct {
	reviews map[int64]*models.Review
	users   *MockUserRepository
	nextID  int64
}

func NewMockReviewRepository(users *MockUserRepository) *MockReviewRepository {
	return &MockReviewRepository{
		reviews: make(map[int64]*models.Review),
		users:   users,
		nextID:  1,
	}
}

func (m *MockReviewRepository) Create(review *models.Review) error {
	for _, r := range m.reviews {
		if r.AuthorID == review.AuthorID && r.TitleID == review.TitleID {
			return gorm.ErrDuplicatedKey
		}
	}
	review.ID = m.nextID
	m.nextID++
	if review.PubDate.IsZero() {
		review.PubDate = time.Now()
	}
	m.reviews[review.ID] = review
	return nil
}

func (m *MockReviewRepository) Update(review *models.Review) error {
	stored, ok := m.reviews[review.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	// text and score only, pub_date stays untouched
	stored.Text = review.Text
	stored.Score = review.Score
	return nil
}

func (m *MockReviewRepository) Delete(reviewID int64) error {
	if _, ok := m.reviews[reviewID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.reviews, reviewID)
	return nil
}

func (m *MockReviewRepository) GetByID(reviewID int64) (*models.Review, error) {
	review, ok := m.reviews[reviewID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	m.preloadAuthor(review)
	return review, nil
}

func (m *MockReviewRepository) GetByAuthorAndTitle(authorID string, titleID int64) (*models.Review, error) {
	for _, r := range m.reviews {
		if r.AuthorID == authorID && r.TitleID == titleID {
			m.preloadAuthor(r)
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockReviewRepository) GetByTitle(titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	all := make([]models.Review, 0)
	for _, r := range m.reviews {
		if r.TitleID == titleID {
			m.preloadAuthor(r)
			all = append(all, *r)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].PubDate.Equal(all[j].PubDate) {
			return all[i].ID < all[j].ID
		}
		return all[i].PubDate.Before(all[j].PubDate)
	})
	return paginate(all, page, pageSize), int64(len(all)), nil
}

func (m *MockReviewRepository) AverageScore(titleID int64) (float64, error) {
	var sum, count int
	for _, r := range m.reviews {
		if r.TitleID == titleID {
			sum += r.Score
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return float64(sum) / float64(count), nil
}

func (m *MockReviewRepository) CountByTitle(titleID int64) (int64, error) {
	var count int64
	for _, r := range m.reviews {
		if r.TitleID == titleID {
			count++
		}
	}
	return count, nil
}

func (m *MockReviewRepository) preloadAuthor(review *models.Review) {
	if m.users == nil {
		return
	}
	if u, ok := m.users.users[review.AuthorID]; ok {
		review.Author = *u
	}
}

// MockCommentRepository is a mock implementation of repository.CommentRepository.
type MockCommentRepository struct {
	comments map[int64]*models.Comment
	users    *MockUserRepository
	nextID   int64
}

func NewMockCommentRepository(users *MockUserRepository) *MockCommentRepository {
	return &MockCommentRepository{
		comments: make(map[int64]*models.Comment),
		users:    users,
		nextID:   1,
	}
}

func (m *MockCommentRepository) Create(comment *models.Comment) error {
	comment.ID = m.nextID
	m.nextID++
	if comment.PubDate.IsZero() {
		comment.PubDate = time.Now()
	}
	m.comments[comment.ID] = comment
	return nil
}

func (m *MockCommentRepository) Update(comment *models.Comment) error {
	stored, ok := m.comments[comment.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Text = comment.Text
	return nil
}

func (m *MockCommentRepository) Delete(commentID int64) error {
	if _, ok := m.comments[commentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.comments, commentID)
	return nil
}

func (m *MockCommentRepository) GetByID(commentID int64) (*models.Comment, error) {
	comment, ok := m.comments[commentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if m.users != nil {
		if u, ok := m.users.users[comment.AuthorID]; ok {
			comment.Author = *u
		}
	}
	return comment, nil
}

func (m *MockCommentRepository) GetByReview(reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	all := make([]models.Comment, 0)
	for _, c := range m.comments {
		if c.ReviewID == reviewID {
			if m.users != nil {
				if u, ok := m.users.users[c.AuthorID]; ok {
					c.Author = *u
				}
			}
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].PubDate.Equal(all[j].PubDate) {
			return all[i].ID < all[j].ID
		}
		return all[i].PubDate.Before(all[j].PubDate)
	})
	return paginate(all, page, pageSize), int64(len(all)), nil
}

func paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
