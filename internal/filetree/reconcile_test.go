package filetree

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/LDK/javascriv-api/internal/domain/file"
	"github.com/LDK/javascriv-api/internal/domain/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const actor int64 = 10

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestReconciler(store *memStore) *Reconciler {
	r := NewReconciler(store, store)
	r.now = func() time.Time { return fixedNow }
	return r
}

func newTestProject() *project.Project {
	return &project.Project{
		ID:           1,
		Title:        "Novel",
		Settings:     project.Settings{"theme": "dark", "size": 12.0},
		OpenFilePath: "/doc",
		LastEdited:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func sameInput(p *project.Project, files ...*file.Node) SyncInput {
	return SyncInput{
		Title:        p.Title,
		Settings:     project.Settings{"size": 12.0, "theme": "dark"},
		OpenFilePath: p.OpenFilePath,
		Files:        files,
	}
}

func TestReconcile_RenameAndCreateByPathInference(t *testing.T) {
	existing := []*file.File{row(1, "/doc", nil)}
	store := newMemStore(existing...)
	r := newTestReconciler(store)
	p := newTestProject()

	renamed := withID(1, folder("/doc"))
	renamed.Name = "renamed"
	sub := folder("/doc/sub")

	res, err := r.Reconcile(context.Background(), nil, p, existing, sameInput(p, renamed, sub), actor)
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, res.Updated)
	assert.Len(t, res.Created, 1)
	assert.Empty(t, res.Deleted)

	updated := store.rows[1]
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, fixedNow, updated.LastEdited)
	assert.Equal(t, actor, *updated.LastEditorID)

	created := store.rows[res.Created[0]]
	require.NotNil(t, created.ParentID)
	assert.Equal(t, int64(1), *created.ParentID)
	assert.Equal(t, actor, *created.CreatorID)
	assert.Len(t, res.Files, 2)
}

func TestReconcile_OmittedChildDeleted(t *testing.T) {
	existing := []*file.File{row(1, "/doc", nil), row(2, "/doc/x", ptr(int64(1)))}
	store := newMemStore(existing...)
	r := newTestReconciler(store)
	p := newTestProject()

	res, err := r.Reconcile(context.Background(), nil, p, existing, sameInput(p, withID(1, folder("/doc"))), actor)
	require.NoError(t, err)

	assert.Equal(t, []int64{2}, res.Deleted)
	assert.Empty(t, res.Updated)
	assert.Empty(t, res.Created)
	assert.Equal(t, []string{"delete:2"}, store.ops)
}

func TestReconcile_UnchangedTreeWritesNothing(t *testing.T) {
	existing := []*file.File{
		row(1, "/a", nil),
		row(2, "/a/b", ptr(int64(1))),
		row(3, "/a/b/c", ptr(int64(2))),
		row(4, "/d", nil),
	}
	store := newMemStore(existing...)
	r := newTestReconciler(store)
	p := newTestProject()
	before := p.LastEdited

	tree := []*file.Node{
		withID(1, folder("/a", withID(2, folder("/a/b", withID(3, folder("/a/b/c")))))),
		withID(4, folder("/d")),
	}

	res, err := r.Reconcile(context.Background(), nil, p, existing, sameInput(p, tree...), actor)
	require.NoError(t, err)

	assert.False(t, res.Changed())
	assert.Empty(t, store.ops)
	assert.Equal(t, 1, store.projectUpdates)
	assert.Equal(t, before, p.LastEdited)
	assert.Len(t, res.Files, 4)
}

func TestReconcile_UnchangedRootSiblingsWithInferredParent(t *testing.T) {
	existing := []*file.File{row(1, "/doc", nil), row(2, "/doc/sub", ptr(int64(1)))}
	store := newMemStore(existing...)
	r := newTestReconciler(store)
	p := newTestProject()

	tree := []*file.Node{withID(1, folder("/doc")), withID(2, folder("/doc/sub"))}

	res, err := r.Reconcile(context.Background(), nil, p, existing, sameInput(p, tree...), actor)
	require.NoError(t, err)

	assert.False(t, res.Changed())
	assert.Empty(t, store.ops)
}

func TestReconcile_DeletesEveryAbsentNodeOnce(t *testing.T) {
	existing := []*file.File{
		row(1, "/a", nil),
		row(2, "/a/b", ptr(int64(1))),
		row(3, "/a/b/c", ptr(int64(2))),
		row(4, "/keep", nil),
	}
	store := newMemStore(existing...)
	r := newTestReconciler(store)
	p := newTestProject()

	res, err := r.Reconcile(context.Background(), nil, p, existing, sameInput(p, withID(4, folder("/keep"))), actor)
	require.NoError(t, err)

	assert.ElementsMatch(t, []int64{1, 2, 3}, res.Deleted)
	assert.Equal(t, []string{"delete:1", "delete:2", "delete:3"}, store.ops)
	assert.Contains(t, store.rows, int64(4))
}

func TestReconcile_CreatesParentsBeforeChildren(t *testing.T) {
	store := newMemStore()
	r := newTestReconciler(store)
	p := newTestProject()

	tree := []*file.Node{
		folder("/a", folder("/a/b", doc("/a/b/c", "deep")), doc("/a/d", "")),
		doc("/e", ""),
	}

	res, err := r.Reconcile(context.Background(), nil, p, nil, sameInput(p, tree...), actor)
	require.NoError(t, err)

	assert.Equal(t, []string{"create:/a", "create:/e", "create:/a/b", "create:/a/d", "create:/a/b/c"}, store.ops)
	assert.Len(t, res.Created, 5)

	byPath := make(map[string]*file.File)
	for _, f := range store.rows {
		byPath[f.Path] = f
	}
	assert.Equal(t, byPath["/a"].ID, *byPath["/a/b"].ParentID)
	assert.Equal(t, byPath["/a/b"].ID, *byPath["/a/b/c"].ParentID)
	assert.Nil(t, byPath["/e"].ParentID)
}

func TestReconcile_MovesExistingNodeUnderNewFolder(t *testing.T) {
	existing := []*file.File{row(1, "/x", nil)}
	store := newMemStore(existing...)
	r := newTestReconciler(store)
	p := newTestProject()

	tree := []*file.Node{folder("/f", withID(1, folder("/f/x")))}

	res, err := r.Reconcile(context.Background(), nil, p, existing, sameInput(p, tree...), actor)
	require.NoError(t, err)

	require.Len(t, res.Created, 1)
	assert.Equal(t, []int64{1}, res.Updated)
	assert.Equal(t, res.Created[0], *store.rows[1].ParentID)
	assert.Equal(t, "/f/x", store.rows[1].Path)
}

func TestReconcile_SurvivingChildOfDeletedParentMovesToRoot(t *testing.T) {
	existing := []*file.File{row(1, "/a", nil), row(2, "/a/b", ptr(int64(1)))}
	store := newMemStore(existing...)
	r := newTestReconciler(store)
	p := newTestProject()

	res, err := r.Reconcile(context.Background(), nil, p, existing, sameInput(p, withID(2, folder("/a/b"))), actor)
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, res.Deleted)
	assert.Contains(t, store.rows, int64(2))
	assert.Nil(t, store.rows[2].ParentID)
}

func TestReconcile_SurvivingChildOfDeletedParentAdopted(t *testing.T) {
	existing := []*file.File{
		row(1, "/a", nil),
		row(2, "/a/b", ptr(int64(1))),
		row(3, "/c", nil),
	}
	store := newMemStore(existing...)
	r := newTestReconciler(store)
	p := newTestProject()

	tree := []*file.Node{withID(3, folder("/c", withID(2, folder("/c/b"))))}

	res, err := r.Reconcile(context.Background(), nil, p, existing, sameInput(p, tree...), actor)
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, res.Deleted)
	assert.Equal(t, []int64{2}, res.Updated)
	assert.Equal(t, int64(3), *store.rows[2].ParentID)
}

func TestReconcile_RootNodeLosesStoredParent(t *testing.T) {
	existing := []*file.File{row(1, "/a", nil), row(2, "/b", ptr(int64(1)))}
	store := newMemStore(existing...)
	r := newTestReconciler(store)
	p := newTestProject()

	b := withID(2, folder("/b"))
	b.Parent = &file.Ref{ID: 1}

	res, err := r.Reconcile(context.Background(), nil, p, existing, sameInput(p, withID(1, folder("/a")), b), actor)
	require.NoError(t, err)

	assert.Equal(t, []int64{2}, res.Updated)
	assert.Nil(t, store.rows[2].ParentID)
}

func TestReconcile_ContentChangeStampsEditor(t *testing.T) {
	existing := []*file.File{{ID: 1, ProjectID: 1, Type: file.TypeFile, Name: "doc", Path: "/doc", Content: ptr("old")}}
	store := newMemStore(existing...)
	r := newTestReconciler(store)
	p := newTestProject()

	res, err := r.Reconcile(context.Background(), nil, p, existing, sameInput(p, withID(1, doc("/doc", "new"))), actor)
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, res.Updated)
	assert.Equal(t, "new", *store.rows[1].Content)
	assert.Equal(t, fixedNow, p.LastEdited)
	assert.Equal(t, actor, *p.LastEditorID)
}

func TestReconcile_UnknownIDIsCreated(t *testing.T) {
	store := newMemStore()
	r := newTestReconciler(store)
	p := newTestProject()

	res, err := r.Reconcile(context.Background(), nil, p, nil, sameInput(p, withID(99, folder("/a", folder("/a/b")))), actor)
	require.NoError(t, err)

	assert.Len(t, res.Created, 2)
	assert.Empty(t, res.Updated)
	assert.Equal(t, []string{"create:/a", "create:/a/b"}, store.ops)
}

func TestReconcile_UnknownIDNotShadowedByAssignedID(t *testing.T) {
	existing := []*file.File{row(1, "/a", nil)}
	store := newMemStore(existing...)
	r := newTestReconciler(store)
	p := newTestProject()

	// The store hands out id 2 to /n, which /x also claims.
	tree := []*file.Node{withID(1, folder("/a")), folder("/n"), withID(2, folder("/x"))}

	res, err := r.Reconcile(context.Background(), nil, p, existing, sameInput(p, tree...), actor)
	require.NoError(t, err)

	assert.Equal(t, []string{"create:/n", "create:/x"}, store.ops)
	assert.Len(t, res.Created, 2)
	require.NotNil(t, store.rowByPath("/n"))
	require.NotNil(t, store.rowByPath("/x"))
	assert.NotEqual(t, store.rowByPath("/n").ID, store.rowByPath("/x").ID)
	assert.Len(t, res.Files, 3)
}

func TestReconcile_PathInferenceFollowsInputOrder(t *testing.T) {
	store := newMemStore()
	r := newTestReconciler(store)
	p := newTestProject()

	// A sibling only adopts a parent saved before it in the same level.
	tree := []*file.Node{folder("/doc/sub"), folder("/doc"), folder("/doc/late")}

	_, err := r.Reconcile(context.Background(), nil, p, nil, sameInput(p, tree...), actor)
	require.NoError(t, err)

	assert.Nil(t, store.rowByPath("/doc/sub").ParentID)
	require.NotNil(t, store.rowByPath("/doc/late").ParentID)
	assert.Equal(t, store.rowByPath("/doc").ID, *store.rowByPath("/doc/late").ParentID)
}

func TestReconcile_EquivalentSettingsKept(t *testing.T) {
	store := newMemStore()
	r := newTestReconciler(store)
	p := newTestProject()
	original := p.Settings
	before := p.LastEdited

	in := sameInput(p)
	in.Title = "Renamed novel"

	_, err := r.Reconcile(context.Background(), nil, p, nil, in, actor)
	require.NoError(t, err)

	assert.Equal(t, reflect.ValueOf(original).Pointer(), reflect.ValueOf(p.Settings).Pointer())
	assert.Equal(t, "Renamed novel", p.Title)
	assert.NotEqual(t, before, p.LastEdited)
}

func TestReconcile_EquivalentSettingsAloneDoNotBumpLastEdited(t *testing.T) {
	store := newMemStore()
	r := newTestReconciler(store)
	p := newTestProject()
	before := p.LastEdited

	_, err := r.Reconcile(context.Background(), nil, p, nil, sameInput(p), actor)
	require.NoError(t, err)

	assert.Equal(t, before, p.LastEdited)
	assert.Nil(t, p.LastEditorID)
}

func TestReconcile_ChangedSettingsReplaced(t *testing.T) {
	store := newMemStore()
	r := newTestReconciler(store)
	p := newTestProject()

	in := sameInput(p)
	in.Settings = project.Settings{"theme": "light", "size": 12.0}

	_, err := r.Reconcile(context.Background(), nil, p, nil, in, actor)
	require.NoError(t, err)

	assert.Equal(t, "light", p.Settings["theme"])
	assert.Equal(t, fixedNow, p.LastEdited)
}

func TestReconcile_StoreErrorAborts(t *testing.T) {
	store := newMemStore()
	store.failOnPath = "/a/b"
	r := newTestReconciler(store)
	p := newTestProject()

	_, err := r.Reconcile(context.Background(), nil, p, nil, sameInput(p, folder("/a", folder("/a/b"))), actor)

	assert.ErrorIs(t, err, errInjected)
	assert.Equal(t, 0, store.projectUpdates)
}
