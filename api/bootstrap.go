package api

import (
	"context"

	"github.com/pkg/errors"
)

// InitFunc performs one-time initialization and returns its result.
type InitFunc func(context.Context) (interface{}, error)

// ReleaseFunc releases a resource acquired through EnterScoped.
type ReleaseFunc func(context.Context) error

// ScopedFunc acquires a resource and returns it together with its release
// function.
type ScopedFunc func(context.Context) (interface{}, ReleaseFunc, error)

// RunOnce runs an initialization function synchronously, outside the
// per-invocation execution window. It is intended for one-time setup of
// resources reused across invocations by a warm process, typically from the
// package init path before Start.
func (h *Handler) RunOnce(fn InitFunc) (interface{}, error) {
	return fn(context.Background())
}

// EnterScoped acquires a scoped resource immediately and registers its
// release function to run on Close. The resource is shared across all
// invocations served by the process.
func (h *Handler) EnterScoped(fn ScopedFunc) (interface{}, error) {
	value, release, err := fn(context.Background())
	if err != nil {
		return nil, errors.Wrap(err, "failed acquiring scoped resource")
	}

	if release != nil {
		h.releases = append(h.releases, release)
	}

	return value, nil
}

// Close releases scoped resources in reverse acquisition order.
//
// Release is best-effort only: the lambda runtime freezes and terminates
// processes without notice, so Close may never run. Resources must tolerate
// abandonment.
func (h *Handler) Close() error {
	var failed []error

	for i := len(h.releases) - 1; i >= 0; i-- {
		if err := h.releases[i](context.Background()); err != nil {
			failed = append(failed, err)
		}
	}
	h.releases = nil

	if len(failed) == 0 {
		return nil
	}

	err := errors.New("failed releasing scoped resources")
	for _, f := range failed {
		err = errors.Wrap(err, f.Error())
	}

	return err
}
