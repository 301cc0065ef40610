package projects

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/LDK/javascriv-api/internal/domain/file"
	"github.com/LDK/javascriv-api/internal/domain/project"
	"github.com/LDK/javascriv-api/internal/domain/user"
	"github.com/LDK/javascriv-api/internal/repository"
	apperrors "github.com/LDK/javascriv-api/pkg/errors"
)

var errInjected = errors.New("injected failure")

type storedProject struct {
	project.Project
	collaborators []int64
}

// memDB is an in-memory stand-in for the three repositories. WithTx restores
// a snapshot when fn fails, the way a rolled back transaction would.
type memDB struct {
	users    map[int64]*user.User
	projects map[int64]*storedProject
	files    map[int64]*file.File
	nextID   int64
	writes   int

	failOnPath string
	// beforeSetEditing runs ahead of each presence write, standing in for a
	// concurrent request.
	beforeSetEditing func()
}

func newMemDB(users ...*user.User) *memDB {
	db := &memDB{
		users:    make(map[int64]*user.User),
		projects: make(map[int64]*storedProject),
		files:    make(map[int64]*file.File),
		nextID:   1000,
	}
	for _, u := range users {
		db.users[u.ID] = u
	}
	return db
}

type snapshot struct {
	projects map[int64]storedProject
	files    map[int64]file.File
	nextID   int64
	writes   int
}

func (db *memDB) snapshot() snapshot {
	s := snapshot{
		projects: make(map[int64]storedProject, len(db.projects)),
		files:    make(map[int64]file.File, len(db.files)),
		nextID:   db.nextID,
		writes:   db.writes,
	}
	for id, p := range db.projects {
		cp := *p
		cp.collaborators = append([]int64(nil), p.collaborators...)
		s.projects[id] = cp
	}
	for id, f := range db.files {
		s.files[id] = *f
	}
	return s
}

func (db *memDB) restore(s snapshot) {
	db.projects = make(map[int64]*storedProject, len(s.projects))
	for id, p := range s.projects {
		cp := p
		db.projects[id] = &cp
	}
	db.files = make(map[int64]*file.File, len(s.files))
	for id, f := range s.files {
		cp := f
		db.files[id] = &cp
	}
	db.nextID = s.nextID
	db.writes = s.writes
}

func (db *memDB) WithTx(_ context.Context, fn func(tx repository.Tx) error) error {
	snap := db.snapshot()
	if err := fn(nil); err != nil {
		db.restore(snap)
		return err
	}
	return nil
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

// users

type memUsers struct{ db *memDB }

func (r memUsers) Create(_ context.Context, _ repository.Tx, in user.CreateUserInput) (*user.User, error) {
	u := &user.User{ID: r.db.id(), Username: in.Username, Email: in.Email, PasswordHash: in.PasswordHash}
	r.db.users[u.ID] = u
	return u, nil
}

func (r memUsers) GetByID(_ context.Context, _ repository.Tx, id int64) (*user.User, error) {
	if u, ok := r.db.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.NotFound("user not found")
}

func (r memUsers) GetByUsername(_ context.Context, _ repository.Tx, username string) (*user.User, error) {
	for _, u := range r.db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (r memUsers) GetByEmail(_ context.Context, _ repository.Tx, email string) (*user.User, error) {
	for _, u := range r.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (r memUsers) UpdateOptions(_ context.Context, _ repository.Tx, id int64, in user.UpdateOptionsInput) (*user.User, error) {
	return r.GetByID(context.Background(), nil, id)
}

// projects

type memProjects struct{ db *memDB }

func (r memProjects) Create(_ context.Context, _ repository.Tx, in project.CreateProjectInput) (*project.Project, error) {
	creator, ok := r.db.users[in.CreatorID]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	p := &storedProject{Project: project.Project{
		ID:           r.db.id(),
		Title:        in.Title,
		Settings:     in.Settings,
		OpenFilePath: in.OpenFilePath,
		Creator:      creator.Summary(),
		LastEdited:   time.Now(),
		CreatedAt:    time.Now(),
	}}
	r.db.projects[p.ID] = p
	r.db.writes++
	return r.get(p.ID)
}

func (r memProjects) get(id int64) (*project.Project, error) {
	sp, ok := r.db.projects[id]
	if !ok {
		return nil, apperrors.NotFound("project not found")
	}
	p := sp.Project
	p.Collaborators = []user.Summary{}
	for _, cid := range sp.collaborators {
		p.Collaborators = append(p.Collaborators, r.db.users[cid].Summary())
	}
	return &p, nil
}

func (r memProjects) GetByID(_ context.Context, _ repository.Tx, id int64) (*project.Project, error) {
	return r.get(id)
}

func (r memProjects) ListCreatedBy(_ context.Context, _ repository.Tx, userID int64) ([]project.Listing, error) {
	var out []project.Listing
	for _, p := range r.db.sorted() {
		if p.Creator.ID == userID {
			out = append(out, project.Listing{ID: p.ID, Title: p.Title})
		}
	}
	return out, nil
}

func (r memProjects) ListCollaborating(_ context.Context, _ repository.Tx, userID int64) ([]project.Listing, error) {
	var out []project.Listing
	for _, p := range r.db.sorted() {
		for _, c := range p.collaborators {
			if c == userID {
				out = append(out, project.Listing{ID: p.ID, Title: p.Title})
			}
		}
	}
	return out, nil
}

func (r memProjects) Update(_ context.Context, _ repository.Tx, p *project.Project) error {
	sp, ok := r.db.projects[p.ID]
	if !ok {
		return apperrors.NotFound("project not found")
	}
	sp.Title = p.Title
	sp.Settings = p.Settings
	sp.OpenFilePath = p.OpenFilePath
	sp.LastEdited = p.LastEdited
	sp.LastEditorID = p.LastEditorID
	r.db.writes++
	return nil
}

func (r memProjects) Delete(_ context.Context, _ repository.Tx, id int64) error {
	if _, ok := r.db.projects[id]; !ok {
		return apperrors.NotFound("project not found")
	}
	delete(r.db.projects, id)
	for fid, f := range r.db.files {
		if f.ProjectID == id {
			delete(r.db.files, fid)
		}
	}
	r.db.writes++
	return nil
}

func (r memProjects) AddCollaborator(_ context.Context, _ repository.Tx, projectID, userID int64) error {
	sp, ok := r.db.projects[projectID]
	if !ok {
		return apperrors.NotFound("project not found")
	}
	if _, ok := r.db.users[userID]; !ok {
		return apperrors.NotFound("user not found")
	}
	for _, c := range sp.collaborators {
		if c == userID {
			return apperrors.Conflict("already a collaborator")
		}
	}
	sp.collaborators = append(sp.collaborators, userID)
	r.db.writes++
	return nil
}

func (r memProjects) RemoveCollaborator(_ context.Context, _ repository.Tx, projectID, userID int64) error {
	sp, ok := r.db.projects[projectID]
	if !ok {
		return apperrors.NotFound("project not found")
	}
	for i, c := range sp.collaborators {
		if c == userID {
			sp.collaborators = append(sp.collaborators[:i], sp.collaborators[i+1:]...)
			r.db.writes++
			return nil
		}
	}
	return apperrors.NotFound("collaborator not found")
}

func (db *memDB) sorted() []*storedProject {
	out := make([]*storedProject, 0, len(db.projects))
	for _, p := range db.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// files

type memFiles struct{ db *memDB }

func (r memFiles) CreateFile(_ context.Context, _ repository.Tx, f *file.File) error {
	if f.Path == r.db.failOnPath {
		return errInjected
	}
	if f.ParentID != nil && r.db.files[*f.ParentID] == nil {
		return apperrors.Conflict("parent does not exist")
	}
	for _, other := range r.db.files {
		if other.ProjectID == f.ProjectID && other.Path == f.Path {
			return apperrors.Conflict("a file already exists at this path")
		}
	}
	f.ID = r.db.id()
	cp := *f
	r.db.files[f.ID] = &cp
	r.db.writes++
	return nil
}

func (r memFiles) GetByID(_ context.Context, _ repository.Tx, id int64) (*file.File, error) {
	f, ok := r.db.files[id]
	if !ok {
		return nil, apperrors.NotFound("file not found")
	}
	cp := *f
	return &cp, nil
}

func (r memFiles) ListByProject(_ context.Context, _ repository.Tx, projectID int64) ([]*file.File, error) {
	var out []*file.File
	for _, f := range r.db.files {
		if f.ProjectID == projectID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memFiles) UpdateFile(_ context.Context, _ repository.Tx, f *file.File) error {
	if r.db.files[f.ID] == nil {
		return apperrors.NotFound("file not found")
	}
	cp := *f
	r.db.files[f.ID] = &cp
	r.db.writes++
	return nil
}

func (r memFiles) DeleteFile(_ context.Context, _ repository.Tx, id int64) error {
	if r.db.files[id] == nil {
		return apperrors.NotFound("file not found")
	}
	delete(r.db.files, id)
	for _, f := range r.db.files {
		if f.ParentID != nil && *f.ParentID == id {
			f.ParentID = nil
		}
	}
	r.db.writes++
	return nil
}

func (r memFiles) SetEditing(_ context.Context, _ repository.Tx, id int64, editingID *int64, lastActive *time.Time, guard repository.EditingGuard) error {
	if r.db.beforeSetEditing != nil {
		r.db.beforeSetEditing()
	}
	f, ok := r.db.files[id]
	if !ok {
		return apperrors.NotFound("file not found")
	}
	if !guard.Allows(f.EditingID, f.LastActive) {
		return apperrors.Conflict("file is being edited by another user")
	}
	f.EditingID = editingID
	f.LastActive = lastActive
	return nil
}

func (r memFiles) SetAttachment(_ context.Context, _ repository.Tx, id int64, key string) error {
	f, ok := r.db.files[id]
	if !ok {
		return apperrors.NotFound("file not found")
	}
	f.Attachment = &key
	return nil
}

func (db *memDB) fileByPath(projectID int64, path string) *file.File {
	for _, f := range db.files {
		if f.ProjectID == projectID && f.Path == path {
			return f
		}
	}
	return nil
}

// collaborators of the service

type published struct {
	projectID int64
	eventType string
	payload   any
}

type recordingPublisher struct {
	events       []published
	disconnected []int64
}

func (p *recordingPublisher) Publish(projectID, _ int64, eventType string, payload any) {
	p.events = append(p.events, published{projectID: projectID, eventType: eventType, payload: payload})
}

func (p *recordingPublisher) Disconnect(_, userID int64) {
	p.disconnected = append(p.disconnected, userID)
}

type recordingNotifier struct {
	added   []string
	removed []string
}

func (n *recordingNotifier) CollaboratorAdded(_ *project.Project, _, target *user.User) {
	n.added = append(n.added, target.Username)
}

func (n *recordingNotifier) CollaboratorRemoved(_ *project.Project, _, target *user.User) {
	n.removed = append(n.removed, target.Username)
}

type memAttachments struct {
	deleted         []string
	deletedPrefixes []string
	failPresign     bool
}

func (a *memAttachments) AttachmentKey(projectID, fileID int64, nonce string) string {
	return fmt.Sprintf("attachments/projects/%d/%d/%s", projectID, fileID, nonce)
}

func (a *memAttachments) ProjectPrefix(projectID int64) string {
	return fmt.Sprintf("attachments/projects/%d/", projectID)
}

func (a *memAttachments) PresignUpload(_ context.Context, key, _ string) (string, time.Time, error) {
	if a.failPresign {
		return "", time.Time{}, errInjected
	}
	return "https://bucket.example.com/" + key + "?put", testNow.Add(15 * time.Minute), nil
}

func (a *memAttachments) PresignDownload(_ context.Context, key string) (string, time.Time, error) {
	return "https://bucket.example.com/" + key + "?get", testNow.Add(15 * time.Minute), nil
}

func (a *memAttachments) DeleteObject(_ context.Context, key string) error {
	a.deleted = append(a.deleted, key)
	return nil
}

func (a *memAttachments) DeletePrefix(_ context.Context, prefix string) error {
	a.deletedPrefixes = append(a.deletedPrefixes, prefix)
	return nil
}
