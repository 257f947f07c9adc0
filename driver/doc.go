// Package driver
// Author: momentics <momentics@gmail.com>
//
// Transport driver for an RPC client. A Driver establishes exactly one
// connection (TCP stream, local socket or named pipe, the process's own
// stdin/stdout, or a spawned child's pipes) and turns it into one ordered
// byte stream delivered on a single event loop goroutine.
//
// Typical use:
//
//	d, _ := driver.New(driver.DefaultConfig())
//	if err := d.ConnectChild(ctx, []string{"nvim", "--embed", "--headless"}); err != nil {
//		return err
//	}
//	_ = d.OnData(framer.Feed)
//	_ = d.OnError(func(reason string) { ... })
//	go d.Send(request)
//	_ = d.Run() // returns after Stop, an error relay or Close
//	_ = d.Close()
//
// All handlers run on the goroutine that called Run. Other goroutines talk
// to the loop only through CallSoon and Stop.
package driver
