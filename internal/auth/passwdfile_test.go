package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempPasswd(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ducktracker.passwd")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadPasswdFileParsesPlainAndBcrypt(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)

	path := writeTempPasswd(t, "# comment\n\nalice:"+hash+"\nbob:plaintextpass\nmalformed-line\n")
	pf, err := LoadPasswdFile(path)
	require.NoError(t, err)

	require.True(t, pf.Verify("alice", "correct-horse"))
	require.False(t, pf.Verify("alice", "wrong"))
	require.True(t, pf.Verify("bob", "plaintextpass"))
	require.False(t, pf.Verify("bob", "nope"))
}

func TestLoadPasswdFileUnknownUserFails(t *testing.T) {
	path := writeTempPasswd(t, "alice:secret\n")
	pf, err := LoadPasswdFile(path)
	require.NoError(t, err)

	require.False(t, pf.Verify("carol", "anything"))
}

func TestLoadPasswdFileMissingFile(t *testing.T) {
	_, err := LoadPasswdFile(filepath.Join(t.TempDir(), "nope.passwd"))
	require.Error(t, err)
}
