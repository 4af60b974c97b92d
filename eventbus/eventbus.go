// Package eventbus publishes cell recalculation events on a ZeroMQ PUB
// socket so external dashboards can subscribe to a running sheet without
// coupling to its process.
//
// Grounded on the teacher's kernel/kernel.go, which binds a zmq4.Pub socket
// the same way (zmq4.NewPub + Listen) for its IOPub channel; this package
// narrows that pattern to a single topic-tagged publish call, reached from
// cell formulas through the stdlib Publish host function (SPEC_FULL.md §4.7).
package eventbus

import (
	"context"
	"fmt"

	"github.com/go-zeromq/zmq4"
)

// Bus wraps a single bound PUB socket. The zero value is not usable; build
// one with Listen.
type Bus struct {
	sock zmq4.Socket
}

// Listen binds a PUB socket at addr (e.g. "tcp://127.0.0.1:5590") and
// returns a Bus ready to Publish on it.
func Listen(addr string) (*Bus, error) {
	sock := zmq4.NewPub(context.Background())
	if err := sock.Listen(addr); err != nil {
		return nil, fmt.Errorf("eventbus: failed to bind %s: %w", addr, err)
	}
	return &Bus{sock: sock}, nil
}

// Publish sends a two-frame message: the channel as the topic frame (so
// subscribers can filter with zmq4's SUB prefix matching) followed by the
// payload.
func (b *Bus) Publish(channel, payload string) error {
	msg := zmq4.NewMsgFrom([]byte(channel), []byte(payload))
	return b.sock.Send(msg)
}

func (b *Bus) Close() error {
	return b.sock.Close()
}
