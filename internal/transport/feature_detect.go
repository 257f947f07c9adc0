// File: internal/transport/feature_detect.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Advertises the detected capabilities of the host platform.

package transport

import (
	"runtime"

	"github.com/momentics/hioload-rpc/api"
)

// DetectFeatures returns the transport capabilities of this OS.
func DetectFeatures() api.TransportFeatures {
	onWindows := runtime.GOOS == "windows"
	// Synchronous pipe reads on windows are not interrupted by Close, so
	// there child exit is only observed once output drains.
	return api.TransportFeatures{
		NamedPipes:     onWindows,
		ConsoleHandles: onWindows,
		Signals:        signalsSupported,
		ChildWatcher:   !onWindows,
		OS:             runtime.GOOS,
	}
}
