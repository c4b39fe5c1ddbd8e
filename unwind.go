package ggsurface

import (
	"fmt"
	"os"
	"runtime/debug"
)

// exit terminates the process. Tests replace it.
var exit = os.Exit

// StopUnwind runs f and turns a panic escaping it into a logged error and
// exit status 1. Mobile entry points wrap the whole application in it so
// that no panic crosses back into the host's native code.
func StopUnwind(f func()) {
	defer func() {
		if v := recover(); v != nil {
			slogger().Error("ggsurface: panic in application", "panic", fmt.Sprint(v), "stack", string(debug.Stack()))
			exit(1)
		}
	}()
	f()
}
