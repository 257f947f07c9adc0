// control/platform.go
// Author: momentics <momentics@gmail.com>
//
// Platform capability probes.

package control

import (
	"runtime"

	"github.com/momentics/hioload-rpc/api"
)

// RegisterPlatformProbes exposes the detected transport features.
func RegisterPlatformProbes(dp *DebugProbes, f api.TransportFeatures) {
	dp.RegisterProbe("platform.os", func() any { return f.OS })
	dp.RegisterProbe("platform.named_pipes", func() any { return f.NamedPipes })
	dp.RegisterProbe("platform.signals", func() any { return f.Signals })
	dp.RegisterProbe("platform.goroutines", func() any { return runtime.NumGoroutine() })
}
