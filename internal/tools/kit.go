package tools

import (
	"workbench/internal/config"
	"workbench/internal/log"
	"workbench/internal/security"

	"github.com/docker/docker/client"
)

// Kit bundles the shared dependencies every handler draws on. A single
// Kit is built at startup and handed to the dispatcher; handlers never
// reach for globals.
type Kit struct {
	Log     log.Logger
	Cfg     *config.Config
	Sandbox *security.Sandbox

	// Docker is nil when the Docker surface is disabled by configuration
	// or the client could not be constructed; handlers translate that
	// into UNAVAILABLE.
	Docker client.APIClient
}

// NewKit builds a Kit from configuration. The Docker client is created
// lazily enough to not fail startup: a daemon that is down only surfaces
// when a docker operation is invoked.
func NewKit(cfg *config.Config, logger log.Logger) (*Kit, error) {
	sandbox, err := security.NewSandbox(cfg.Workspace.Root, cfg.Sandbox.Enabled)
	if err != nil {
		return nil, err
	}

	kit := &Kit{
		Log:     logger,
		Cfg:     cfg,
		Sandbox: sandbox,
	}

	if cfg.Docker.Enabled {
		docker, err := client.NewClientWithOpts(
			client.FromEnv,
			client.WithAPIVersionNegotiation(),
		)
		if err != nil {
			// Misconfigured DOCKER_HOST and similar. Log and run
			// without the docker surface rather than refusing to start.
			logger.Warn("docker client unavailable", "error", err)
		} else {
			kit.Docker = docker
		}
	}

	return kit, nil
}

// Close releases Kit resources.
func (k *Kit) Close() error {
	if k.Docker != nil {
		return k.Docker.Close()
	}
	return nil
}

// docker returns the Docker client or an UNAVAILABLE error when the
// surface is disabled or the client was never constructed.
func (k *Kit) docker() (client.APIClient, error) {
	if k.Docker == nil {
		return nil, Errf(CodeUnavailable, "docker is not available")
	}
	return k.Docker, nil
}
