package debug

import (
	"os"
	"path/filepath"

	"github.com/draftdeck/draftdeck/internal/logger"
)

// enabled is set via ldflags for debug builds
var enabled = ""

// Enabled controls whether pipeline artifacts are dumped to disk
var Enabled = false

// dir is where dumped artifacts land
var dir = "debug"

func init() {
	// Enable via ldflags (build-debug target)
	if enabled == "true" {
		Enabled = true
	}
	// Enable via environment variable (overrides ldflags)
	if os.Getenv("DRAFTDECK_DEBUG") == "1" {
		Enabled = true
	}
	if d := os.Getenv("DRAFTDECK_DEBUG_DIR"); d != "" {
		dir = d
	}
	if Enabled {
		logger.Info("[Debug] Artifact dumping enabled (dir: %s)", dir)
	}
}

// Dump writes an intermediate pipeline artifact (compiled HTML, captured
// PNG) under the debug directory. A dump failure is logged, never fatal.
func Dump(name string, data []byte) {
	if !Enabled {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("[Debug] Creating dump dir: %v", err)
		return
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Warn("[Debug] Writing %s: %v", path, err)
		return
	}
	logger.Debug("[Debug] Dumped %s (%d bytes)", path, len(data))
}
