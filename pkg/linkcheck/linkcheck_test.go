package linkcheck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	openErr error
	exports map[string]bool
	loads   int
	asked   []string
}

func (f *fakeResolver) Resolve(_ string, symbols []string) ([]bool, error) {
	f.loads++
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.asked = append(f.asked, symbols...)
	found := make([]bool, len(symbols))
	for i, sym := range symbols {
		found[i] = f.exports[sym]
	}
	return found, nil
}

func fakeLibrary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "libnatives.so")
	require.NoError(t, os.WriteFile(path, []byte("not really"), 0644))
	return path
}

func TestVerifyReportsMissing(t *testing.T) {
	lib := fakeLibrary(t)
	r := &fakeResolver{exports: map[string]bool{
		"Java_pkg_Math_sum": true,
		"test_OnLoad":       true,
	}}

	report, err := verify(context.Background(), r, lib, []string{
		"test_OnLoad", "test_OnUnload", "Java_pkg_Math_sum", "test_OnLoad",
	})
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Equal(t, lib, report.Library)
	assert.Equal(t, []string{"test_OnLoad", "Java_pkg_Math_sum"}, report.Present)
	assert.Equal(t, []string{"test_OnUnload"}, report.Missing)
	assert.Equal(t, 1, r.loads, "the library is loaded once for all symbols")
	assert.Equal(t, []string{"test_OnLoad", "test_OnUnload", "Java_pkg_Math_sum"}, r.asked)
}

func TestVerifyAllPresent(t *testing.T) {
	r := &fakeResolver{exports: map[string]bool{"a": true, "b": true}}
	report, err := verify(context.Background(), r, fakeLibrary(t), []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, report.OK())
}

func TestVerifyLoadFailures(t *testing.T) {
	_, err := verify(context.Background(), &fakeResolver{}, filepath.Join(t.TempDir(), "missing.so"), nil)
	assert.ErrorIs(t, err, ErrLibraryLoad)
	assert.ErrorIs(t, err, os.ErrNotExist)

	openErr := errors.New("bad ELF header")
	_, err = verify(context.Background(), &fakeResolver{openErr: openErr}, fakeLibrary(t), nil)
	assert.ErrorIs(t, err, ErrLibraryLoad)
	assert.ErrorIs(t, err, openErr)
}

func TestVerifyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &fakeResolver{}
	_, err := verify(ctx, r, fakeLibrary(t), []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, r.loads)
}

func TestVerifyEmptySymbolList(t *testing.T) {
	r := &fakeResolver{}
	report, err := verify(context.Background(), r, fakeLibrary(t), nil)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 1, r.loads, "the library is still loaded")
}
