package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/relblock/relblock/pkg/observability"
)

// registerHooks wires the observability registry to the CLI logger at
// debug level, so --verbose surfaces per-stage timings and cache
// behavior without extra plumbing.
func (c *CLI) registerHooks() {
	observability.SetPipelineHooks(&logPipelineHooks{logger: c.Logger})
	observability.SetCacheHooks(&logCacheHooks{logger: c.Logger})
	observability.SetStoreHooks(&logStoreHooks{logger: c.Logger})
}

type logPipelineHooks struct {
	observability.NoopPipelineHooks
	logger *log.Logger
}

func (h *logPipelineHooks) OnLayoutComplete(_ context.Context, nodeCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "nodes", nodeCount, "err", err)
		return
	}
	h.logger.Debug("layout", "nodes", nodeCount, "took", d.Round(time.Microsecond))
}

func (h *logPipelineHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("render", "format", format, "bytes", size, "took", d.Round(time.Microsecond))
}

type logCacheHooks struct {
	observability.NoopCacheHooks
	logger *log.Logger
}

func (h *logCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

type logStoreHooks struct {
	observability.NoopStoreHooks
	logger *log.Logger
}

func (h *logStoreHooks) OnAppend(_ context.Context, kind string, version int) {
	h.logger.Debug("event appended", "kind", kind, "version", version)
}

func (h *logStoreHooks) OnReplay(_ context.Context, eventCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("replay failed", "events", eventCount, "err", err)
		return
	}
	h.logger.Debug("replay", "events", eventCount, "took", d.Round(time.Microsecond))
}
