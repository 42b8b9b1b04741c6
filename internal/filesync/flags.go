package filesync

import "sync/atomic"

// Flags is the one-shot suppression handshake shared by one File and the
// Synchronizer built on it. Each flag has a single setter and a single
// clearer; setting an already set flag still suppresses exactly one event.
type Flags struct {
	echoedWrite atomic.Bool
	fromDisk    atomic.Bool
}

// armEchoedWrite is called by the saver right before it writes.
func (f *Flags) armEchoedWrite() {
	f.echoedWrite.Store(true)
}

// consumeEchoedWrite is called by the watcher for every finalized
// notification. It reports whether the notification is an echo.
func (f *Flags) consumeEchoedWrite() bool {
	return f.echoedWrite.CompareAndSwap(true, false)
}

// armFromDisk is called by the deserializer for every raw change it handles.
func (f *Flags) armFromDisk() {
	f.fromDisk.Store(true)
}

// consumeFromDisk is called by the serializer for every typed change. It
// reports whether the change came from the deserializer.
func (f *Flags) consumeFromDisk() bool {
	return f.fromDisk.CompareAndSwap(true, false)
}

// EchoedWrite reports whether a write echo is pending.
func (f *Flags) EchoedWrite() bool {
	return f.echoedWrite.Load()
}

// FromDisk reports whether a disk-originated typed change is pending.
func (f *Flags) FromDisk() bool {
	return f.fromDisk.Load()
}
