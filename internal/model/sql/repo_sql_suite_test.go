package sql

import (
	"context"
	"errors"
	"fmt"
	"portfolio/internal/entity/db"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// repoFactory returns a repository backed by an empty, migrated database.
type repoFactory func(t *testing.T) *GormRepository

func runRepositorySuite(t *testing.T, newRepo repoFactory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, repo *GormRepository)
	}{
		{"CreateAndGetRoundTrip", testCreateAndGetRoundTrip},
		{"TagNamesAreNeverDuplicated", testTagNamesAreNeverDuplicated},
		{"DuplicateTagNamesCollapse", testDuplicateTagNamesCollapse},
		{"UpdateReplacesTagsAndScreenshots", testUpdateReplacesTagsAndScreenshots},
		{"UpdateMissingProject", testUpdateMissingProject},
		{"Pagination", testPagination},
		{"TagFilter", testTagFilter},
		{"SearchTitleAndTag", testSearchTitleAndTag},
		{"DeleteCascadesButKeepsTags", testDeleteCascadesButKeepsTags},
		{"ScreenshotScopedToProject", testScreenshotScopedToProject},
		{"ReorderScreenshots", testReorderScreenshots},
		{"ReorderUnknownIDChangesNothing", testReorderUnknownIDChangesNothing},
		{"ReorderOmittedMoveToEnd", testReorderOmittedMoveToEnd},
		{"ListTagsCountsProjects", testListTagsCountsProjects},
		{"Users", testUsers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newRepo(t))
		})
	}
}

func strPtr(s string) *string { return &s }

func createProject(t *testing.T, repo *GormRepository, title string, tags []string, shots ...db.Screenshot) *db.Project {
	t.Helper()
	p, err := repo.CreateProject(context.Background(), &db.Project{
		Title:       title,
		Description: "about " + title,
		Screenshots: shots,
	}, tags)
	require.NoError(t, err)
	return p
}

func tagNames(p *db.Project) []string {
	out := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		out = append(out, tag.Name)
	}
	return out
}

func screenshotURLs(shots []db.Screenshot) []string {
	out := make([]string, 0, len(shots))
	for _, s := range shots {
		out = append(out, s.URL)
	}
	return out
}

func countTags(t *testing.T, repo *GormRepository, name string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, repo.db.Model(&db.Tag{}).Where("name = ?", name).Count(&count).Error)
	return count
}

func testCreateAndGetRoundTrip(t *testing.T, repo *GormRepository) {
	ctx := context.Background()
	before := time.Now().UTC().Add(-time.Second)

	created, err := repo.CreateProject(ctx, &db.Project{
		Title:       "Site",
		Description: "A **markdown** description",
		LiveURL:     strPtr("https://live.example"),
		SourceURL:   strPtr("https://github.com/example/site"),
		Screenshots: []db.Screenshot{
			{URL: "y", SortOrder: 1},
			{URL: "x", SortOrder: 0, AltText: strPtr("home")},
		},
	}, []string{"a", "b"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.Before(before))

	got, err := repo.GetProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Site", got.Title)
	assert.Equal(t, "A **markdown** description", got.Description)
	require.NotNil(t, got.LiveURL)
	assert.Equal(t, "https://live.example", *got.LiveURL)
	require.NotNil(t, got.SourceURL)
	assert.Equal(t, "https://github.com/example/site", *got.SourceURL)
	assert.ElementsMatch(t, []string{"a", "b"}, tagNames(got))
	assert.Equal(t, []string{"x", "y"}, screenshotURLs(got.Screenshots))
	require.NotNil(t, got.Screenshots[0].AltText)
	assert.Equal(t, "home", *got.Screenshots[0].AltText)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func testTagNamesAreNeverDuplicated(t *testing.T, repo *GormRepository) {
	first := createProject(t, repo, "one", []string{"go", "api"})
	second := createProject(t, repo, "two", []string{"go"})
	createProject(t, repo, "three", []string{"api", "go", "web"})

	_, err := repo.UpdateProject(context.Background(), second.ID, db.ProjectFields{
		Title: "two", Description: "d",
	}, []string{"go", "web"}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), countTags(t, repo, "go"))
	assert.Equal(t, int64(1), countTags(t, repo, "api"))
	assert.Equal(t, int64(1), countTags(t, repo, "web"))

	got, err := repo.GetProject(context.Background(), first.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"go", "api"}, tagNames(got))
}

func testDuplicateTagNamesCollapse(t *testing.T, repo *GormRepository) {
	p := createProject(t, repo, "dups", []string{"go", " go ", "go", "Go"})
	assert.ElementsMatch(t, []string{"go", "Go"}, tagNames(p), "matching is exact and case-sensitive")
	assert.Equal(t, int64(1), countTags(t, repo, "go"))
}

func testUpdateReplacesTagsAndScreenshots(t *testing.T, repo *GormRepository) {
	ctx := context.Background()
	p := createProject(t, repo, "orig", []string{"a", "b"},
		db.Screenshot{URL: "old-1", SortOrder: 0},
		db.Screenshot{URL: "old-2", SortOrder: 1},
	)
	p, err := repo.GetProject(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	oldShotID := p.Screenshots[0].ID

	updated, err := repo.UpdateProject(ctx, p.ID, db.ProjectFields{
		Title:       "renamed",
		Description: "new description",
		LiveURL:     nil,
		SourceURL:   strPtr("https://src"),
	}, []string{"c"}, []db.Screenshot{
		{URL: "new-b", SortOrder: 1},
		{URL: "new-a", SortOrder: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Nil(t, updated.LiveURL)
	assert.Equal(t, []string{"c"}, tagNames(updated))
	assert.Equal(t, []string{"new-a", "new-b"}, screenshotURLs(updated.Screenshots))
	assert.True(t, p.CreatedAt.Equal(updated.CreatedAt), "created_at never changes")

	assert.Equal(t, int64(1), countTags(t, repo, "a"), "replaced tags are kept")
	assert.Equal(t, int64(1), countTags(t, repo, "b"))

	_, err = repo.GetScreenshot(ctx, p.ID, oldShotID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func testUpdateMissingProject(t *testing.T, repo *GormRepository) {
	_, err := repo.UpdateProject(context.Background(), 4242, db.ProjectFields{Title: "t", Description: "d"}, []string{"zzz"}, nil)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.Equal(t, int64(0), countTags(t, repo, "zzz"), "failed update must not leave tags behind")
}

func testPagination(t *testing.T, repo *GormRepository) {
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		createProject(t, repo, fmt.Sprintf("p%d", i), nil)
	}

	items, meta, err := repo.ListProjects(ctx, db.ProjectQuery{Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, int64(7), meta.Total)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, "p6", items[0].Title, "newest first")

	items, meta, err = repo.ListProjects(ctx, db.ProjectQuery{Page: 3, PageSize: 3})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p0", items[0].Title)

	items, meta, err = repo.ListProjects(ctx, db.ProjectQuery{Page: 4, PageSize: 3})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(7), meta.Total)
	assert.Equal(t, 4, meta.Page)

	// 偏移量会超出 int 范围的页码同样返回空页
	items, meta, err = repo.ListProjects(ctx, db.ProjectQuery{Page: 100000000000000001, PageSize: 100})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(7), meta.Total)

	_, _, err = repo.ListProjects(ctx, db.ProjectQuery{Page: 1, PageSize: 0})
	assert.Error(t, err)
}

func testTagFilter(t *testing.T, repo *GormRepository) {
	ctx := context.Background()
	createProject(t, repo, "A", []string{"x"})
	createProject(t, repo, "B", []string{"x", "z"})
	createProject(t, repo, "C", []string{"y"})

	items, meta, err := repo.ListProjects(ctx, db.ProjectQuery{Page: 1, PageSize: 10, Tag: "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), meta.Total)
	titles := []string{}
	for _, p := range items {
		titles = append(titles, p.Title)
	}
	assert.ElementsMatch(t, []string{"A", "B"}, titles)
	for _, p := range items {
		if p.Title == "B" {
			assert.ElementsMatch(t, []string{"x", "z"}, tagNames(&p), "filter must not trim loaded tags")
		}
	}

	items, meta, err = repo.ListProjects(ctx, db.ProjectQuery{Page: 1, PageSize: 10, Tag: "nonexistent"})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(0), meta.Total)
	assert.Equal(t, 0, meta.TotalPages)
}

func testSearchTitleAndTag(t *testing.T, repo *GormRepository) {
	ctx := context.Background()
	createProject(t, repo, "Go Portfolio", []string{"go"})
	createProject(t, repo, "Go CLI", []string{"cli"})
	createProject(t, repo, "Rust Portfolio", []string{"rust"})

	items, meta, err := repo.ListProjects(ctx, db.ProjectQuery{Page: 1, PageSize: 10, Title: "Portfolio"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), meta.Total)
	assert.Len(t, items, 2)

	_, meta, err = repo.ListProjects(ctx, db.ProjectQuery{Page: 1, PageSize: 10, Title: "portfolio"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), meta.Total, "title match is case-sensitive")

	items, meta, err = repo.ListProjects(ctx, db.ProjectQuery{Page: 1, PageSize: 10, Title: "Go", Tag: "cli"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), meta.Total)
	require.Len(t, items, 1)
	assert.Equal(t, "Go CLI", items[0].Title)
}

func testDeleteCascadesButKeepsTags(t *testing.T, repo *GormRepository) {
	ctx := context.Background()
	p := createProject(t, repo, "gone", []string{"only-here"},
		db.Screenshot{URL: "s1", SortOrder: 0},
		db.Screenshot{URL: "s2", SortOrder: 1},
	)
	p, err := repo.GetProject(ctx, p.ID)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteProject(ctx, p.ID))

	_, err = repo.GetProject(ctx, p.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	for _, s := range p.Screenshots {
		var count int64
		require.NoError(t, repo.db.Model(&db.Screenshot{}).Where("id = ?", s.ID).Count(&count).Error)
		assert.Zero(t, count)
	}
	var links int64
	require.NoError(t, repo.db.Model(&db.ProjectTag{}).Where("project_id = ?", p.ID).Count(&links).Error)
	assert.Zero(t, links)
	assert.Equal(t, int64(1), countTags(t, repo, "only-here"))

	err = repo.DeleteProject(ctx, p.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func testScreenshotScopedToProject(t *testing.T, repo *GormRepository) {
	ctx := context.Background()
	owner := createProject(t, repo, "owner", nil)
	other := createProject(t, repo, "other", nil)

	shot := &db.Screenshot{ProjectID: owner.ID, URL: "/uploads/1/a.png", SortOrder: 0}
	require.NoError(t, repo.CreateScreenshot(ctx, shot))
	require.NotZero(t, shot.ID)

	err := repo.DeleteScreenshot(ctx, other.ID, shot.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "screenshot id alone is not enough")

	_, err = repo.GetScreenshot(ctx, owner.ID, shot.ID)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteScreenshot(ctx, owner.ID, shot.ID))
	err = repo.DeleteScreenshot(ctx, owner.ID, shot.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	err = repo.CreateScreenshot(ctx, &db.Screenshot{ProjectID: 9999, URL: "x"})
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func seedShots(t *testing.T, repo *GormRepository, n int) (*db.Project, []uint) {
	t.Helper()
	shots := make([]db.Screenshot, n)
	for i := range shots {
		shots[i] = db.Screenshot{URL: fmt.Sprintf("shot-%d", i), SortOrder: i}
	}
	p := createProject(t, repo, "gallery", nil, shots...)
	ids := make([]uint, 0, n)
	for _, s := range p.Screenshots {
		ids = append(ids, s.ID)
	}
	return p, ids
}

func testReorderScreenshots(t *testing.T, repo *GormRepository) {
	ctx := context.Background()
	p, ids := seedShots(t, repo, 3)

	result, err := repo.ReorderScreenshots(ctx, p.ID, []uint{ids[2], ids[0], ids[1]})
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, []uint{ids[2], ids[0], ids[1]}, []uint{result[0].ID, result[1].ID, result[2].ID})
	for i, s := range result {
		assert.Equal(t, i, s.SortOrder)
	}

	got, err := repo.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"shot-2", "shot-0", "shot-1"}, screenshotURLs(got.Screenshots))
}

func testReorderUnknownIDChangesNothing(t *testing.T, repo *GormRepository) {
	ctx := context.Background()
	p, ids := seedShots(t, repo, 3)
	foreign, foreignIDs := seedShots(t, repo, 1)
	require.NotEqual(t, p.ID, foreign.ID)

	_, err := repo.ReorderScreenshots(ctx, p.ID, []uint{ids[2], ids[1], foreignIDs[0]})
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	got, err := repo.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"shot-0", "shot-1", "shot-2"}, screenshotURLs(got.Screenshots))

	_, err = repo.ReorderScreenshots(ctx, 9999, nil)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func testReorderOmittedMoveToEnd(t *testing.T, repo *GormRepository) {
	ctx := context.Background()
	p, ids := seedShots(t, repo, 4)

	result, err := repo.ReorderScreenshots(ctx, p.ID, []uint{ids[3], ids[1]})
	require.NoError(t, err)
	require.Len(t, result, 4)
	assert.Equal(t, []string{"shot-3", "shot-1", "shot-0", "shot-2"}, screenshotURLs(result))
	for i, s := range result {
		assert.Equal(t, i, s.SortOrder, "sort order stays dense")
	}
}

func testListTagsCountsProjects(t *testing.T, repo *GormRepository) {
	createProject(t, repo, "one", []string{"go", "api"})
	createProject(t, repo, "two", []string{"go"})
	p := createProject(t, repo, "three", []string{"orphan"})
	require.NoError(t, repo.DeleteProject(context.Background(), p.ID))

	tags, err := repo.ListTags(context.Background())
	require.NoError(t, err)
	counts := map[string]int64{}
	for _, tag := range tags {
		counts[tag.Name] = tag.ProjectCount
	}
	assert.Equal(t, map[string]int64{"api": 1, "go": 2, "orphan": 0}, counts)
}

func testUsers(t *testing.T, repo *GormRepository) {
	ctx := context.Background()
	user := &db.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash", Role: db.UserRoleUser}
	require.NoError(t, repo.CreateUser(ctx, user))

	got, err := repo.GetUserByEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	emailTaken, usernameTaken, err := repo.UserExists(ctx, "alice@example.com", "bob")
	require.NoError(t, err)
	assert.True(t, emailTaken)
	assert.False(t, usernameTaken)

	emailTaken, usernameTaken, err = repo.UserExists(ctx, "bob@example.com", "alice")
	require.NoError(t, err)
	assert.False(t, emailTaken)
	assert.True(t, usernameTaken)

	err = repo.CreateUser(ctx, &db.User{Username: "alice", Email: "other@example.com", PasswordHash: "h", Role: db.UserRoleUser})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
