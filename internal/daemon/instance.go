package daemon

import (
	"path/filepath"
	"time"
)

// Instance bundles the lock and pid files that keep the daemon single
// instance per data directory.
type Instance struct {
	lockFile   *LockFile
	pidFile    *PIDFile
	socketPath string
}

func NewInstance(baseDir, socketPath string) *Instance {
	return &Instance{
		lockFile:   NewLockFile(filepath.Join(baseDir, "daemon.lock")),
		pidFile:    NewPIDFile(filepath.Join(baseDir, "daemon.pid")),
		socketPath: socketPath,
	}
}

// Acquire claims the instance lock and records our pid. ErrLockHeld means
// another daemon owns this data directory.
func (i *Instance) Acquire() error {
	if err := i.lockFile.Acquire(); err != nil {
		return err
	}
	return i.pidFile.Write()
}

// Running reports whether a previous daemon is still alive, checking the
// socket first and falling back to the recorded pid.
func (i *Instance) Running() bool {
	if Ping(i.socketPath, 500*time.Millisecond) {
		return true
	}
	return i.pidFile.IsProcessAlive()
}

func (i *Instance) Release() {
	i.pidFile.Remove()
	i.lockFile.Release()
}

func (i *Instance) PIDFile() *PIDFile {
	return i.pidFile
}
