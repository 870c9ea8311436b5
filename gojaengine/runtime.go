package gojaengine

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/a3st/ABOVE/engine"
	"github.com/a3st/ABOVE/errors"
)

// Version identifies the backend in Runtime.Check results.
const Version = "gojaengine/1.0"

const defaultAppName = "above"

// Runtime is the installed in-process engine. Unlike an external browser
// runtime it is always available; Check exists so callers exercise the
// same bootstrap sequence they would against a system runtime.
type Runtime struct {
	client *http.Client
}

var _ engine.Runtime = (*Runtime)(nil)

// New creates the engine runtime with a default document fetch client.
func New() *Runtime {
	return &Runtime{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Check reports the backend version.
func (r *Runtime) Check() (string, error) {
	return Version, nil
}

// CreateEnvironment resolves the profile directory and delivers the
// environment through done via the Dispatcher. An immediate error means
// the request was never issued.
func (r *Runtime) CreateEnvironment(opts engine.Options, done engine.EnvironmentCompleted) error {
	if done == nil {
		return errors.InvalidInput(errors.PhaseConstruct, "environment completion must not be nil")
	}
	if opts.Dispatch == nil {
		return errors.InvalidInput(errors.PhaseConstruct, "environment options require a dispatcher")
	}

	appName := opts.AppName
	if appName == "" {
		appName = defaultAppName
	}

	dataDir := opts.DataDir
	if dataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return errors.Environment("CreateEnvironment", err)
		}
		dataDir = filepath.Join(base, appName)
	}

	env := &environment{
		id:        uuid.NewString(),
		appName:   appName,
		dataDir:   dataDir,
		debug:     opts.Debug,
		anyOrigin: opts.DisableOriginChecks,
		dispatch:  opts.Dispatch,
		client:    r.client,
	}

	return opts.Dispatch(func() {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			done(nil, errors.Environment("CreateEnvironment", err))
			return
		}
		Logger().Debug("environment created",
			zap.String("environment", env.id),
			zap.String("data_dir", dataDir),
			zap.Bool("debug", env.debug))
		done(env, nil)
	})
}
