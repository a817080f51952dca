package bridge

import "github.com/tasknest/realtime/internal/transport/ws"

// Bridge relays broadcast frames between server instances so a TaskNest
// deployment can run more than one realtime process behind a load
// balancer.
type Bridge interface {
	// Publish sends a frame to all other instances.
	Publish(f ws.Frame) error

	// Start begins listening for frames from other instances.
	Start() error

	// Stop shuts down the bridge connection.
	Stop() error

	// Available reports whether the bridge is connected and operational.
	Available() bool
}

// BroadcastTarget is implemented by the Hub to receive frames from the bridge.
type BroadcastTarget interface {
	DeliverLocal(f ws.Frame)
}
