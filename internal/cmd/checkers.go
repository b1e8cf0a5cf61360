package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/printforge/slicerd/pkg/profile"
)

// engineBinaryChecker degrades health when the slicing engine is absent.
// Profile management keeps working without it, so it is a soft check.
type engineBinaryChecker struct {
	bin string
}

func (c engineBinaryChecker) CheckHealth(ctx context.Context) error {
	_ = ctx
	fi, err := os.Stat(c.bin)
	if err != nil {
		return fmt.Errorf("slicer binary not found: %s", c.bin)
	}
	if fi.IsDir() {
		return fmt.Errorf("slicer binary path is a directory: %s", c.bin)
	}
	return nil
}

// storeLayoutChecker fails health when the profile store root is missing
// or not writable.
type storeLayoutChecker struct {
	store *profile.Store
}

func (c storeLayoutChecker) CheckHealth(ctx context.Context) error {
	_ = ctx
	probe, err := os.CreateTemp(c.store.RootDir(), ".healthcheck.*")
	if err != nil {
		return fmt.Errorf("profile store not writable: %v", err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}
