// File: driver/signals.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package driver

import (
	"github.com/momentics/hioload-rpc/api"
)

// SetSignalHandlers subscribes signums and runs h with the signal number on
// the loop goroutine for every delivery. Where the platform cannot deliver
// signals into the loop the registry is recorded empty. A live registry must
// be cleared before a new one is set.
func (d *Driver) SetSignalHandlers(h api.SignalHandler, signums ...int) error {
	if h == nil {
		return api.ErrInvalidArgument
	}
	if d.State() == api.StateClosed {
		return api.ErrDriverClosed
	}
	relay := func(signum int) {
		d.post(func() {
			d.metrics.Signals.Inc()
			h(signum)
		})
	}
	if err := d.signals.Setup(signums, relay); err != nil {
		return err
	}
	d.log.Debug().Ints("signals", d.signals.Registered()).Msg("signal handlers installed")
	return nil
}

// ClearSignalHandlers unsubscribes exactly what SetSignalHandlers
// subscribed and returns those signal numbers.
func (d *Driver) ClearSignalHandlers() []int {
	nums := d.signals.Teardown()
	if nums != nil {
		d.log.Debug().Ints("signals", nums).Msg("signal handlers removed")
	}
	return nums
}
