package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"Postbridge/internal/api/middleware"
	"Postbridge/internal/api/routes"
	"Postbridge/internal/core/posts"
	"Postbridge/internal/core/users"
	"Postbridge/internal/db/sqldb"
	"Postbridge/internal/upstream"
)

// fakeUpstream serves /posts/{id} and /users/{id} from in-memory fixtures
type fakeUpstream struct {
	server    *httptest.Server
	posts     map[int64]posts.UpstreamPost
	rawPosts  map[int64]string
	users     map[int64]bool
	postHits  atomic.Int64
	userHits  atomic.Int64
	mu        sync.Mutex
	failPosts bool
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{
		posts:    map[int64]posts.UpstreamPost{},
		rawPosts: map[int64]string{},
		users:    map[int64]bool{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeUpstream) addPost(p posts.UpstreamPost) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts[p.ID] = p
}

// addRawPost serves body verbatim with status 200 for the given post id
func (f *fakeUpstream) addRawPost(id int64, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rawPosts[id] = body
}

func (f *fakeUpstream) addUser(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = true
}

func (f *fakeUpstream) setFailPosts(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPosts = fail
}

func (f *fakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	var id int64
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.HasPrefix(r.URL.Path, "/posts/"):
		f.postHits.Add(1)
		if f.failPosts {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Sscanf(r.URL.Path, "/posts/%d", &id)
		if raw, ok := f.rawPosts[id]; ok {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(raw))
			return
		}
		p, ok := f.posts[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p)

	case strings.HasPrefix(r.URL.Path, "/users/"):
		f.userHits.Add(1)
		_, _ = fmt.Sscanf(r.URL.Path, "/users/%d", &id)
		if !f.users[id] {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"id": %d, "name": "Leanne Graham"}`, id)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// testApp is the full HTTP stack backed by a fresh database and a fake upstream
type testApp struct {
	db       *sqlx.DB
	upstream *fakeUpstream
	server   *httptest.Server
}

// setupTestDB returns a migrated database: postgres when TEST_DATABASE_URL is
// set, otherwise a throwaway sqlite file
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	driver, dsn := sqldb.DriverSQLite, filepath.Join(t.TempDir(), "integration.db")
	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		driver, dsn = sqldb.DriverPostgres, url
	}

	db, err := sqldb.Open(ctx, driver, dsn)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, sqldb.Migrate(ctx, db), "Failed to run migrations")

	if driver == sqldb.DriverPostgres {
		_, err := db.Exec(`TRUNCATE posts, users RESTART IDENTITY`)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Failed to close database: %v", err)
		}
	})
	return db
}

func setupTestApp(t *testing.T, rateLimiter *middleware.RateLimiter) *testApp {
	t.Helper()

	db := setupTestDB(t)
	fake := newFakeUpstream(t)

	client := upstream.NewClient(fake.server.URL, upstream.WithTimeout(2*time.Second))
	postService := posts.NewPostService(sqldb.NewPostRepository(db), client, posts.NewValidator(2, 10))
	userService := users.NewUserService(sqldb.NewUserRepository(db))

	srv := httptest.NewServer(routes.NewRouter(postService, userService, db, rateLimiter))
	t.Cleanup(srv.Close)

	return &testApp{db: db, upstream: fake, server: srv}
}

// do sends a request to the app and decodes the JSON response into out when non-nil
func (a *testApp) do(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()

	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = raw
	}

	req, err := http.NewRequest(method, a.server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out), "decode %s %s", method, path)
	}
	return resp.StatusCode
}

func (a *testApp) countPosts(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, a.db.Get(&n, `SELECT COUNT(*) FROM posts`))
	return n
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
