package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	e := Extract("Fix the login bug in src/auth/login.go using React and PostgreSQL")

	assert.Equal(t, []string{"src/auth/login.go"}, e.Files)
	assert.Equal(t, []string{"React", "PostgreSQL"}, e.Technologies)
	assert.Equal(t, []string{"fix"}, e.Actions)
	assert.Equal(t, []string{"authentication"}, e.Targets)
	assert.False(t, e.Empty())
}

func TestExtract_Dedupes(t *testing.T) {
	e := Extract("edit main.go then main.go again, react and React")
	assert.Equal(t, []string{"main.go"}, e.Files)
	assert.Equal(t, []string{"React"}, e.Technologies)
}

func TestExtract_Empty(t *testing.T) {
	assert.True(t, Extract("hello there").Empty())
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "Build a dashboard", Summarize("Build a dashboard. Then deploy it.", 0))
	assert.Equal(t, "line one", Summarize("  line one\nline two", 0))
	assert.Equal(t, "v1.2 release notes", Summarize("v1.2 release notes", 0))
	assert.Equal(t, "abcde...", Summarize("abcdefghij", 5))
	assert.Equal(t, "대시보드...", Summarize("대시보드 구현", 4))
	assert.Equal(t, "", Summarize("   ", 10))
}

func TestContext(t *testing.T) {
	text := "Build a REST API. Add a React page, write docs; fix nothing"

	assert.Equal(t, "Build a REST API", Context(text, CatBackend))
	assert.Equal(t, "Add a React page", Context(text, CatFrontend))
	assert.Equal(t, "", Context(text, CatSecurity))
	assert.Equal(t, "fix a, fix b, fix c", Context("fix a. fix b. fix c. fix d", CatBugfix))
	assert.Equal(t, "fix a", Context("fix a. fix a", CatBugfix))
}
