package main

import (
	"fmt"

	"github.com/gofrs/flock"
)

// acquireLock takes an exclusive lock file so two instances of the same
// long-running command cannot share a cache directory.
func acquireLock(path, name string) (*flock.Flock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another tldw %s is already running (lock %s)", name, path)
	}
	return lock, nil
}
