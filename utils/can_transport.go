package utils

import (
	"context"
	"fmt"
	"net"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
)

type CANWriter interface {
	WriteFrame(ctx context.Context, frame can.Frame) error
	Close() error
}

type SocketCANWriter struct {
	iface string
	conn  net.Conn
	tx    *socketcan.Transmitter
}

func NewSocketCANWriter(ctx context.Context, iface string) (*SocketCANWriter, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", iface, err)
	}
	return &SocketCANWriter{
		iface: iface,
		conn:  conn,
		tx:    socketcan.NewTransmitter(conn),
	}, nil
}

func (w *SocketCANWriter) WriteFrame(ctx context.Context, frame can.Frame) error {
	if err := w.tx.TransmitFrame(ctx, frame); err != nil {
		return fmt.Errorf("%s: transmit 0x%X: %w", w.iface, frame.ID, err)
	}
	return nil
}

func (w *SocketCANWriter) Close() error {
	if w.conn != nil {
		return w.conn.Close()
	}
	return nil
}

// BusWriters routes frames to one writer per logical bus index.
type BusWriters map[int]CANWriter

// OpenBusWriters dials one SocketCAN interface per non-empty entry of ifaces,
// where the slice index is the logical bus.
func OpenBusWriters(ctx context.Context, ifaces []string) (BusWriters, error) {
	out := BusWriters{}
	for bus, name := range ifaces {
		if name == "" {
			continue
		}
		w, err := NewSocketCANWriter(ctx, name)
		if err != nil {
			_ = out.Close()
			return nil, fmt.Errorf("bus %d: %w", bus, err)
		}
		out[bus] = w
	}
	return out, nil
}

func (b BusWriters) Close() error {
	var first error
	for _, w := range b {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
