// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package utils

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "present.txt")
	require.NoError(os.WriteFile(path, []byte("x"), 0o644))

	require.True(FileExists(path))
	require.False(FileExists(filepath.Join(dir, "absent.txt")))
	require.False(FileExists(dir))
	require.True(DirectoryExists(dir))
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	require := require.New(t)

	calls := 0
	result, err := Retry(func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}, 10*time.Millisecond, 5, "probe")
	require.NoError(err)
	require.Equal("ok", result)
	require.Equal(3, calls)
}

func TestRetryExhausted(t *testing.T) {
	require := require.New(t)

	_, err := Retry(func(context.Context) (string, error) {
		return "", errors.New("down")
	}, time.Millisecond, 2, "probe")
	require.Error(err)
	require.Contains(err.Error(), "probe")
	require.Contains(err.Error(), "down")
}

func TestUniq(t *testing.T) {
	require.Equal(t, []string{"a", "b", "c"}, Uniq([]string{"a", "b", "a", "c", "b"}))
}
