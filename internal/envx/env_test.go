package envx

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	t.Setenv(Prefix+"HTTP_ADDR", " :9090 ")

	v := ":8080"
	String("HTTP_ADDR", &v)
	assert.Equal(t, ":9090", v)

	other := "keep"
	String("MISSING", &other)
	assert.Equal(t, "keep", other)
}

func TestString_BlankIsIgnored(t *testing.T) {
	t.Setenv(Prefix+"SECRET_KEY", "   ")

	v := "default"
	String("SECRET_KEY", &v)
	assert.Equal(t, "default", v)
}

func TestDuration(t *testing.T) {
	t.Setenv(Prefix+"TTL", "90s")

	d := time.Minute
	require.NoError(t, Duration("TTL", &d))
	assert.Equal(t, 90*time.Second, d)

	t.Setenv(Prefix+"TTL", "later")
	err := Duration("TTL", &d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), Prefix+"TTL")
	assert.Equal(t, 90*time.Second, d)
}

func TestBool(t *testing.T) {
	t.Setenv(Prefix+"DEV", "true")

	var b bool
	require.NoError(t, Bool("DEV", &b))
	assert.True(t, b)

	t.Setenv(Prefix+"DEV", "maybe")
	require.Error(t, Bool("DEV", &b))
}

func TestList(t *testing.T) {
	t.Setenv(Prefix+"ORIGINS", "http://a.example, ,http://b.example ")

	var got []string
	List("ORIGINS", &got)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, got)
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SKINKEEPER_FROM_FILE=yes\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv(Prefix + "FROM_FILE") })

	require.NoError(t, LoadDotenv(path))

	var v string
	String("FROM_FILE", &v)
	assert.Equal(t, "yes", v)
}

func TestLoadDotenv_MissingFileIsNotAnError(t *testing.T) {
	require.NoError(t, LoadDotenv(filepath.Join(t.TempDir(), "absent.env")))
}
