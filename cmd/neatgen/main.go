package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/calumari/neatgen/internal/errors"
	"github.com/calumari/neatgen/internal/logger"
)

// version reports the module version neatgen was installed at, or the VCS
// revision of a local build.
func version() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "devel"
	}
	return versionOf(bi)
}

func versionOf(bi *debug.BuildInfo) string {
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	settings := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}
	rev := settings["vcs.revision"]
	if rev == "" {
		return "devel"
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if settings["vcs.modified"] == "true" {
		rev += "-dirty"
	}
	return rev
}

// reportFailure writes err and its hints to w, or logs them as one entry
// when logging as JSON.
func reportFailure(w io.Writer, err error) {
	hints := errors.GetAllHints(err)
	if logger.JSONOutput {
		logger.Errorw("Command failed", "error", errors.Describe(err), "hints", hints)
		return
	}
	fmt.Fprintf(w, "neatgen: %s\n", errors.Describe(err))
	for _, hint := range hints {
		fmt.Fprintf(w, "hint: %s\n", hint)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		reportFailure(os.Stderr, err)
	}
	logger.Cleanup()
	if err != nil {
		os.Exit(1)
	}
}
