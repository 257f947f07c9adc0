// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, runtime metrics and debug introspection for hioload-rpc.
//
// Provides:
//   - Config loading from defaults, file, environment and flags (viper)
//   - Per-driver prometheus metrics
//   - Debug probe registration and state dumps
package control
