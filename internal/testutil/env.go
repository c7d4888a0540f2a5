package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thruflo/brigadier/internal/logging"
)

// SetupProjectDir creates a temporary project directory holding
// SampleProject, SampleConfig and SampleEnv. The directory is removed when
// the test completes.
func SetupProjectDir(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	WriteTestFile(t, tmpDir, SampleProjectName, []byte(SampleProject))
	WriteTestFile(t, tmpDir, "brigadier.yaml", []byte(SampleConfig))
	WriteTestFile(t, tmpDir, ".env", []byte(SampleEnv))
	return tmpDir
}

// WriteTestFile writes content to a file in the test directory.
// Creates parent directories as needed.
func WriteTestFile(t *testing.T, basePath, relativePath string, content []byte) {
	t.Helper()
	fullPath := filepath.Join(basePath, relativePath)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
	require.NoError(t, os.WriteFile(fullPath, content, 0644))
}

// SyncBuffer is a bytes.Buffer guarded by a mutex, for output written from
// background goroutines and read by the test.
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write appends p to the buffer.
func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns the buffer contents.
func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Reset empties the buffer.
func (b *SyncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// NewLogger returns a colorless logger and the buffers it writes its
// standard and error output to.
func NewLogger(verbose bool) (*logging.Logger, *SyncBuffer, *SyncBuffer) {
	out, errOut := &SyncBuffer{}, &SyncBuffer{}
	log := logging.New()
	log.SetColor(false)
	log.SetVerbose(verbose)
	log.SetOutput(out, errOut)
	return log, out, errOut
}
