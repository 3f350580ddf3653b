package silt

import (
	"log/slog"
	"time"

	"github.com/aretw0/silt/pkg/core"
)

// options holds the internal configuration for a workspace.
type options struct {
	logger       *slog.Logger
	local        core.LocalStore
	remote       core.Remote
	connectivity core.Connectivity
	identity     core.Identity
	guardWindow  time.Duration
	dataDir      string
}

// Option defines a functional option for configuring a workspace.
type Option func(*options)

func defaultOptions() *options {
	return &options{}
}

// WithLogger sets the logger for the workspace.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLocalStore injects a custom local snapshot store.
// By default an in-memory store is used.
func WithLocalStore(local core.LocalStore) Option {
	return func(o *options) {
		o.local = local
	}
}

// WithRemote injects a custom remote backend.
// By default an in-memory remote is used.
func WithRemote(remote core.Remote) Option {
	return func(o *options) {
		o.remote = remote
	}
}

// WithConnectivity injects a custom connectivity signal.
// The default signal starts offline and never changes.
func WithConnectivity(c core.Connectivity) Option {
	return func(o *options) {
		o.connectivity = c
	}
}

// WithIdentity injects a custom identity provider.
// The default provider starts signed out.
func WithIdentity(id core.Identity) Option {
	return func(o *options) {
		o.identity = id
	}
}

// WithGuardWindow overrides the echo-suppression window for remote-change
// triggers. Mostly useful to shrink it in tests.
func WithGuardWindow(d time.Duration) Option {
	return func(o *options) {
		o.guardWindow = d
	}
}

// WithDataDir overrides the local snapshot directory when opening a
// filesystem workspace. Only Open honors it; New takes a LocalStore
// directly.
func WithDataDir(dir string) Option {
	return func(o *options) {
		o.dataDir = dir
	}
}
