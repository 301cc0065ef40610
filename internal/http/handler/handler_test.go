package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/LDK/javascriv-api/internal/audit"
	"github.com/LDK/javascriv-api/internal/auth"
	"github.com/LDK/javascriv-api/internal/domain/file"
	"github.com/LDK/javascriv-api/internal/domain/project"
	"github.com/LDK/javascriv-api/internal/domain/user"
	"github.com/LDK/javascriv-api/internal/filetree"
	"github.com/LDK/javascriv-api/internal/projects"
	"github.com/LDK/javascriv-api/internal/repository"
	apperrors "github.com/LDK/javascriv-api/pkg/errors"

	"github.com/labstack/echo/v4"
)

type fakeUsers struct {
	byID    map[int64]*user.User
	nextID  int64
	created []user.CreateUserInput
	options *user.UpdateOptionsInput
}

func newFakeUsers(users ...*user.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[int64]*user.User), nextID: 100}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, _ repository.Tx, in user.CreateUserInput) (*user.User, error) {
	for _, u := range f.byID {
		if u.Username == in.Username || u.Email == in.Email {
			return nil, apperrors.Conflict("username or email already registered")
		}
	}
	f.nextID++
	u := &user.User{ID: f.nextID, Username: in.Username, Email: in.Email, PasswordHash: in.PasswordHash}
	f.byID[u.ID] = u
	f.created = append(f.created, in)
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, _ repository.Tx, id int64) (*user.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, apperrors.NotFound("user not found")
}

func (f *fakeUsers) GetByUsername(_ context.Context, _ repository.Tx, username string) (*user.User, error) {
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (f *fakeUsers) GetByEmail(_ context.Context, _ repository.Tx, email string) (*user.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (f *fakeUsers) UpdateOptions(_ context.Context, _ repository.Tx, id int64, in user.UpdateOptionsInput) (*user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	f.options = &in
	if in.PublishOptions != nil {
		u.PublishOptions = in.PublishOptions
	}
	if in.FontOptions != nil {
		u.FontOptions = in.FontOptions
	}
	return u, nil
}

type fakeHasher struct {
	burned int
}

func (h *fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (h *fakeHasher) Compare(hash, password string) bool  { return hash == "hashed:"+password }
func (h *fakeHasher) BurnCompare(string)                  { h.burned++ }

type fakeTokens struct{}

func (fakeTokens) Generate(userID int64, username string) (string, error) {
	return "token-" + username, nil
}

type fakeRecorder struct {
	entries []audit.Entry
}

func (r *fakeRecorder) Record(_ echo.Context, e audit.Entry) {
	r.entries = append(r.entries, e)
}

// fakeProjects records the inputs the handlers pass down and returns canned
// results.
type fakeProjects struct {
	createIn   *projects.CreateInput
	syncIn     *filetree.SyncInput
	identifier string
	dupTitle   string
	err        error
	view       *projects.View
}

func (f *fakeProjects) result() (*projects.View, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.view != nil {
		return f.view, nil
	}
	return &projects.View{Project: &project.Project{ID: 7, Title: "Novel"}, Files: []*file.Node{}}, nil
}

func (f *fakeProjects) ListForUser(context.Context, int64) (*projects.Listings, error) {
	return &projects.Listings{Created: []project.Listing{{ID: 7, Title: "Novel"}}, Collaborating: []project.Listing{}}, f.err
}

func (f *fakeProjects) Create(_ context.Context, _ int64, in projects.CreateInput) (*projects.View, error) {
	f.createIn = &in
	return f.result()
}

func (f *fakeProjects) Get(context.Context, int64, int64) (*projects.View, error) {
	return f.result()
}

func (f *fakeProjects) Sync(_ context.Context, _, _ int64, in filetree.SyncInput) (*projects.View, error) {
	f.syncIn = &in
	return f.result()
}

func (f *fakeProjects) Delete(context.Context, int64, int64) error {
	return f.err
}

func (f *fakeProjects) Duplicate(_ context.Context, _, _ int64, title string) (*projects.View, error) {
	f.dupTitle = title
	return f.result()
}

func (f *fakeProjects) AddCollaborator(_ context.Context, _, _ int64, identifier string) (*project.Project, error) {
	f.identifier = identifier
	if f.err != nil {
		return nil, f.err
	}
	return &project.Project{ID: 7}, nil
}

func (f *fakeProjects) RemoveCollaborator(context.Context, int64, int64, int64) (*project.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &project.Project{ID: 7}, nil
}

func (f *fakeProjects) Authorize(context.Context, int64, int64) (*project.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &project.Project{ID: 7}, nil
}

// newContext builds a request context, authenticated as userID when it is
// positive.
func newContext(method, target, body string, userID int64) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID > 0 {
		c.Set(auth.ContextKeyUserID, userID)
		c.Set(auth.ContextKeyUsername, "ada")
	}
	return c, rec
}
