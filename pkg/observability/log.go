package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event at debug level. It implements all three hook
// interfaces; the CLI registers it when --verbose is given.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that write to logger. A nil logger uses
// log.Default().
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

// Register installs h as analysis, cache and HTTP hooks.
func (h *LogHooks) Register() {
	SetAnalysisHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnAnalyzeStart(_ context.Context, nodes, elements int) {
	h.logger.Debug("analysis started", "nodes", nodes, "elements", elements)
}

func (h *LogHooks) OnAnalyzeComplete(_ context.Context, nodes, elements int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("analysis failed", "nodes", nodes, "elements", elements, "duration", d, "err", err)
		return
	}
	h.logger.Debug("analysis complete", "nodes", nodes, "elements", elements, "duration", d)
}

func (h *LogHooks) OnPredict(_ context.Context, ok bool, d time.Duration) {
	h.logger.Debug("prediction", "ok", ok, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

var (
	_ AnalysisHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
