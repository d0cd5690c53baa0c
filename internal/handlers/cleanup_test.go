package handlers

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupRemovesOnlyStalePrefixedDirs(t *testing.T) {
	tempDir := t.TempDir()

	stale := filepath.Join(tempDir, "df-anlz-stale")
	fresh := filepath.Join(tempDir, "df-anlz-fresh")
	other := filepath.Join(tempDir, "unrelated-dir")
	for _, dir := range []string{stale, fresh, other} {
		require.NoError(t, os.Mkdir(dir, 0755))
	}

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))
	require.NoError(t, os.Chtimes(other, old, old))

	fcs := NewFileCleanupService(tempDir, "df-anlz-", 24*time.Hour)
	fcs.cleanupStaleWorkDirs()

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale work dir should be removed")

	_, err = os.Stat(fresh)
	assert.NoError(t, err, "fresh work dir should survive")

	_, err = os.Stat(other)
	assert.NoError(t, err, "non-prefixed dir should survive even when old")
}

func TestParsePaginationDefaultsAndClamps(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		query     string
		wantLimit int
		wantPage  int
	}{
		{"", 50, 1},
		{"limit=10&page=3", 10, 3},
		{"limit=0&page=0", 50, 1},
		{"limit=-5&page=-1", 50, 1},
		{"limit=5000", 1000, 1},
		{"limit=abc&page=xyz", 50, 1},
	}

	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/api/v1/logs?"+tc.query, nil)

		limit, page := parsePagination(c)
		assert.Equal(t, tc.wantLimit, limit, "query %q", tc.query)
		assert.Equal(t, tc.wantPage, page, "query %q", tc.query)
	}
}
