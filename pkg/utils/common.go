// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package utils

import (
	"context"
	"fmt"
	"os"
	"time"
)

// FileExists checks if a file exists.
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}

func DirectoryExists(dirName string) bool {
	info, err := os.Stat(dirName)
	if os.IsNotExist(err) {
		return false
	}
	return info.IsDir()
}

// Retry retries the given function until it succeeds or the maximum number of attempts is reached.
func Retry[T any](
	fn func(context.Context) (T, error),
	attemptTimeout time.Duration,
	maxAttempts int,
	errMsg string,
) (T, error) {
	const defaultAttemptTimeout = 2 * time.Second
	if attemptTimeout == 0 {
		attemptTimeout = defaultAttemptTimeout
	}
	var (
		result T
		err    error
	)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), attemptTimeout)
		result, err = fn(ctx)
		cancel()
		if err == nil {
			return result, nil
		}
		elapsed := time.Since(start)
		if elapsed < attemptTimeout {
			time.Sleep(attemptTimeout - elapsed)
		}
	}
	return result, fmt.Errorf(
		"%s: maximum retry attempts %d reached: last err = %w",
		errMsg,
		maxAttempts,
		err,
	)
}

// Uniq filters out duplicate elements preserving first-seen order.
func Uniq[T comparable](arr []T) []T {
	visited := map[T]bool{}
	unique := []T{}
	for _, e := range arr {
		if !visited[e] {
			unique = append(unique, e)
			visited[e] = true
		}
	}
	return unique
}
