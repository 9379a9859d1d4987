package posts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepository implements Repository for testing
type memoryRepository struct {
	posts  map[int64]*Post
	nextID int64
	getErr error
	setErr error
	mu     sync.Mutex
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		posts:  make(map[int64]*Post),
		nextID: 100,
	}
}

func (m *memoryRepository) GetByID(ctx context.Context, id int64) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryRepository) ListByUserID(ctx context.Context, userID int64) ([]*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []*Post
	for _, p := range m.posts {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryRepository) Create(ctx context.Context, post *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.nextID++
	post.ID = m.nextID
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *memoryRepository) Save(ctx context.Context, post *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return nil, m.setErr
	}
	if existing, ok := m.posts[post.ID]; ok {
		cp := *existing
		return &cp, nil
	}
	cp := *post
	m.posts[post.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memoryRepository) Update(ctx context.Context, post *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	if _, ok := m.posts[post.ID]; !ok {
		return ErrNotFound
	}
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *memoryRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	if _, ok := m.posts[id]; !ok {
		return ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *memoryRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts)
}

// fakeUpstream implements Upstream and counts calls
type fakeUpstream struct {
	posts      map[int64]*UpstreamPost
	users      map[int64]bool
	fetchErr   error
	userErr    error
	fetchCalls int
	userCalls  int
	mu         sync.Mutex
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		posts: make(map[int64]*UpstreamPost),
		users: make(map[int64]bool),
	}
}

func (f *fakeUpstream) FetchPost(ctx context.Context, id int64) (*UpstreamPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	p, ok := f.posts[id]
	if !ok {
		return nil, fmt.Errorf("%w: status 404", ErrUpstreamUnavailable)
	}
	return p, nil
}

func (f *fakeUpstream) UserExists(ctx context.Context, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	if f.userErr != nil {
		return false, f.userErr
	}
	return f.users[userID], nil
}

func (f *fakeUpstream) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls, f.userCalls
}

func newTestService(repo *memoryRepository, up *fakeUpstream) Service {
	return NewPostService(repo, up, NewValidator(2, 10))
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(s string) *string { return &s }

func TestGetPost_InvalidID(t *testing.T) {
	repo := newMemoryRepository()
	up := newFakeUpstream()
	svc := newTestService(repo, up)
	ctx := context.Background()

	for _, id := range []int64{0, -1, -100} {
		t.Run(fmt.Sprintf("id=%d", id), func(t *testing.T) {
			_, err := svc.GetPost(ctx, id)
			require.Error(t, err)
			assert.Equal(t, KindInvalidArgument, ErrorKind(err))

			_, err = svc.EditPost(ctx, id, EditPostRequest{Title: strPtr("new title here")})
			assert.Equal(t, KindInvalidArgument, ErrorKind(err))

			_, err = svc.DeletePost(ctx, id)
			assert.Equal(t, KindInvalidArgument, ErrorKind(err))
		})
	}

	fetches, users := up.calls()
	assert.Zero(t, fetches, "invalid ids must not reach the upstream")
	assert.Zero(t, users)
}

func TestGetPost_LocalHit(t *testing.T) {
	repo := newMemoryRepository()
	repo.posts[1] = &Post{ID: 1, UserID: 1, Title: "My first post", Body: "Hello, world!"}
	up := newFakeUpstream()
	svc := newTestService(repo, up)

	post, err := svc.GetPost(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "My first post", post.Title)

	fetches, _ := up.calls()
	assert.Zero(t, fetches)
}

func TestGetPost_MissFetchesOnceThenServesLocally(t *testing.T) {
	repo := newMemoryRepository()
	up := newFakeUpstream()
	up.posts[42] = &UpstreamPost{ID: 42, UserID: 7, Title: "remote title", Body: "remote body text"}
	svc := newTestService(repo, up)
	ctx := context.Background()

	first, err := svc.GetPost(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, &Post{ID: 42, UserID: 7, Title: "remote title", Body: "remote body text"}, first)
	assert.Equal(t, 1, repo.count())

	for i := 0; i < 5; i++ {
		again, err := svc.GetPost(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	fetches, _ := up.calls()
	assert.Equal(t, 1, fetches, "only the first read may contact the upstream")
}

func TestGetPost_UpstreamUnavailable(t *testing.T) {
	repo := newMemoryRepository()
	up := newFakeUpstream()
	up.fetchErr = fmt.Errorf("%w: connection refused", ErrUpstreamUnavailable)
	svc := newTestService(repo, up)

	_, err := svc.GetPost(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, KindUpstreamNotFound, ErrorKind(err))
	assert.Contains(t, err.Error(), "id=5")
	assert.Zero(t, repo.count())
}

func TestGetPost_UpstreamNotFoundAndUnreachableAreTheSame(t *testing.T) {
	repo := newMemoryRepository()
	up := newFakeUpstream()
	svc := newTestService(repo, up)

	// Unknown id answers 404
	_, err404 := svc.GetPost(context.Background(), 9)
	up.fetchErr = fmt.Errorf("%w: dial tcp: timeout", ErrUpstreamUnavailable)
	_, errNet := svc.GetPost(context.Background(), 9)

	assert.Equal(t, ErrorKind(err404), ErrorKind(errNet))
	assert.Equal(t, err404.Error(), errNet.Error())
}

func TestGetPost_MalformedPayloadIsUnknown(t *testing.T) {
	tests := []struct {
		name     string
		payload  *UpstreamPost
		fetchErr error
	}{
		{
			name:     "undecodable body",
			fetchErr: fmt.Errorf("%w: unexpected EOF", ErrMalformedPayload),
		},
		{
			name:    "id mismatch",
			payload: &UpstreamPost{ID: 4, UserID: 1, Title: "a b", Body: "body body body"},
		},
		{
			name:    "missing userId",
			payload: &UpstreamPost{ID: 3, Title: "a b", Body: "body body body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryRepository()
			up := newFakeUpstream()
			up.fetchErr = tt.fetchErr
			if tt.payload != nil {
				up.posts[3] = tt.payload
			}
			svc := newTestService(repo, up)

			_, err := svc.GetPost(context.Background(), 3)
			require.Error(t, err)
			assert.Equal(t, KindUnknown, ErrorKind(err))
			assert.True(t, errors.Is(err, ErrMalformedPayload))
			assert.Zero(t, repo.count())
		})
	}
}

func TestGetPost_StoreFailureIsUnknown(t *testing.T) {
	repo := newMemoryRepository()
	repo.getErr = errors.New("pq: connection refused")
	svc := newTestService(repo, newFakeUpstream())

	_, err := svc.GetPost(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, IsUnknown(err))
}

func TestGetPost_PersistFailureIsUnknown(t *testing.T) {
	repo := newMemoryRepository()
	repo.setErr = errors.New("disk full")
	up := newFakeUpstream()
	up.posts[2] = &UpstreamPost{ID: 2, UserID: 1, Title: "a b", Body: "body body body"}
	svc := newTestService(repo, up)

	_, err := svc.GetPost(context.Background(), 2)
	require.Error(t, err)
	assert.Equal(t, KindUnknown, ErrorKind(err))
}

func TestGetPost_ConcurrentMissesDoNotCorrupt(t *testing.T) {
	repo := newMemoryRepository()
	up := newFakeUpstream()
	up.posts[8] = &UpstreamPost{ID: 8, UserID: 2, Title: "race title", Body: "race body text"}
	svc := newTestService(repo, up)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			post, err := svc.GetPost(context.Background(), 8)
			if err == nil && post.Title != "race title" {
				err = fmt.Errorf("unexpected title %q", post.Title)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, repo.count())
}

func TestGetPosts(t *testing.T) {
	repo := newMemoryRepository()
	repo.posts[1] = &Post{ID: 1, UserID: 1, Title: "a b", Body: "x"}
	repo.posts[2] = &Post{ID: 2, UserID: 1, Title: "c d", Body: "y"}
	repo.posts[3] = &Post{ID: 3, UserID: 2, Title: "e f", Body: "z"}
	up := newFakeUpstream()
	svc := newTestService(repo, up)
	ctx := context.Background()

	list, err := svc.GetPosts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(2), list[1].ID)

	empty, err := svc.GetPosts(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = svc.GetPosts(ctx, 0)
	assert.Equal(t, KindInvalidArgument, ErrorKind(err))

	fetches, _ := up.calls()
	assert.Zero(t, fetches, "list never falls back to the upstream")
}

func TestCreatePost_TitleWordCount(t *testing.T) {
	repo := newMemoryRepository()
	up := newFakeUpstream()
	up.users[1] = true
	svc := newTestService(repo, up)
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, CreatePostRequest{UserID: int64Ptr(1), Title: "hello", Body: "long enough body"})
	require.Error(t, err)
	assert.Equal(t, KindInvalidArgument, ErrorKind(err))
	_, userCalls := up.calls()
	assert.Zero(t, userCalls, "validation must fail before any network call")

	post, err := svc.CreatePost(ctx, CreatePostRequest{UserID: int64Ptr(1), Title: "hello world", Body: "long enough body"})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, int64(1), post.UserID)
	assert.Equal(t, "hello world", post.Title)

	stored, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post, stored)
}

func TestCreatePost_BodyLengthBoundary(t *testing.T) {
	repo := newMemoryRepository()
	up := newFakeUpstream()
	up.users[1] = true
	svc := newTestService(repo, up)
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, CreatePostRequest{UserID: int64Ptr(1), Title: "a title", Body: strings.Repeat("x", 9)})
	require.Error(t, err)
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "body", valErr.Field)

	_, err = svc.CreatePost(ctx, CreatePostRequest{UserID: int64Ptr(1), Title: "a title", Body: strings.Repeat("x", 10)})
	require.NoError(t, err)
}

func TestCreatePost_InvalidUserID(t *testing.T) {
	svc := newTestService(newMemoryRepository(), newFakeUpstream())

	for _, req := range []CreatePostRequest{
		{Title: "a title", Body: "long enough body"},
		{UserID: int64Ptr(0), Title: "a title", Body: "long enough body"},
		{UserID: int64Ptr(-3), Title: "a title", Body: "long enough body"},
		{ID: int64Ptr(-1), UserID: int64Ptr(1), Title: "a title", Body: "long enough body"},
	} {
		_, err := svc.CreatePost(context.Background(), req)
		assert.Equal(t, KindInvalidArgument, ErrorKind(err))
	}
}

func TestCreatePost_UnknownUserPersistsNothing(t *testing.T) {
	repo := newMemoryRepository()
	repo.posts[1] = &Post{ID: 1, UserID: 1, Title: "a b", Body: "x"}
	up := newFakeUpstream()
	svc := newTestService(repo, up)

	before := repo.count()
	_, err := svc.CreatePost(context.Background(), CreatePostRequest{UserID: int64Ptr(77), Title: "hello world", Body: "long enough body"})
	require.Error(t, err)
	assert.Equal(t, KindUpstreamNotFound, ErrorKind(err))
	assert.True(t, IsUserNotFound(err))
	assert.Equal(t, "User with id=77 not found", err.Error())
	assert.Equal(t, before, repo.count())
}

func TestCreatePost_UpstreamUnreachable(t *testing.T) {
	repo := newMemoryRepository()
	up := newFakeUpstream()
	up.userErr = fmt.Errorf("%w: timeout", ErrUpstreamUnavailable)
	svc := newTestService(repo, up)

	_, err := svc.CreatePost(context.Background(), CreatePostRequest{UserID: int64Ptr(1), Title: "hello world", Body: "long enough body"})
	require.Error(t, err)
	assert.True(t, IsUserNotFound(err))
	assert.Zero(t, repo.count())
}

func TestCreatePost_InsertFailureIsUnknown(t *testing.T) {
	repo := newMemoryRepository()
	repo.setErr = errors.New("constraint violation")
	up := newFakeUpstream()
	up.users[1] = true
	svc := newTestService(repo, up)

	_, err := svc.CreatePost(context.Background(), CreatePostRequest{UserID: int64Ptr(1), Title: "hello world", Body: "long enough body"})
	assert.Equal(t, KindUnknown, ErrorKind(err))
}

func TestEditPost_PartialUpdate(t *testing.T) {
	repo := newMemoryRepository()
	repo.posts[1] = &Post{ID: 1, UserID: 1, Title: "old title", Body: "original body"}
	svc := newTestService(repo, newFakeUpstream())
	ctx := context.Background()

	updated, err := svc.EditPost(ctx, 1, EditPostRequest{Title: strPtr("new title here")})
	require.NoError(t, err)
	assert.Equal(t, "new title here", updated.Title)
	assert.Equal(t, "original body", updated.Body)

	stored, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)

	updated, err = svc.EditPost(ctx, 1, EditPostRequest{Body: strPtr("a replacement body")})
	require.NoError(t, err)
	assert.Equal(t, "new title here", updated.Title)
	assert.Equal(t, "a replacement body", updated.Body)
}

func TestEditPost_Errors(t *testing.T) {
	repo := newMemoryRepository()
	repo.posts[1] = &Post{ID: 1, UserID: 1, Title: "old title", Body: "original body"}
	svc := newTestService(repo, newFakeUpstream())
	ctx := context.Background()

	_, err := svc.EditPost(ctx, 2, EditPostRequest{Title: strPtr("new title")})
	assert.Equal(t, KindNotFound, ErrorKind(err))
	assert.Equal(t, "Post with id=2 not found", err.Error())

	_, err = svc.EditPost(ctx, 1, EditPostRequest{Title: strPtr("single")})
	assert.Equal(t, KindInvalidArgument, ErrorKind(err))

	_, err = svc.EditPost(ctx, 1, EditPostRequest{Body: strPtr("short")})
	assert.Equal(t, KindInvalidArgument, ErrorKind(err))

	stored, _ := repo.GetByID(ctx, 1)
	assert.Equal(t, "old title", stored.Title, "failed validation leaves the row untouched")
	assert.Equal(t, "original body", stored.Body)
}

func TestDeletePost(t *testing.T) {
	repo := newMemoryRepository()
	repo.posts[3] = &Post{ID: 3, UserID: 1, Title: "a b", Body: "x"}
	up := newFakeUpstream()
	up.fetchErr = fmt.Errorf("%w: connection refused", ErrUpstreamUnavailable)
	svc := newTestService(repo, up)
	ctx := context.Background()

	_, err := svc.DeletePost(ctx, 4)
	assert.Equal(t, KindNotFound, ErrorKind(err))

	msg, err := svc.DeletePost(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Post with id=3 deleted", msg.Message)
	assert.Zero(t, repo.count())

	// Gone locally and the upstream is unreachable
	_, err = svc.GetPost(ctx, 3)
	assert.Equal(t, KindUpstreamNotFound, ErrorKind(err))
}

func TestNewPostService_PanicsOnNilDependencies(t *testing.T) {
	assert.Panics(t, func() { NewPostService(nil, newFakeUpstream(), NewValidator(2, 10)) })
	assert.Panics(t, func() { NewPostService(newMemoryRepository(), nil, NewValidator(2, 10)) })
}
