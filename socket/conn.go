package socket

// Conn is the part of a Socket.IO connection the hub needs. socketio.Conn satisfies it.
type Conn interface {
	ID() string
	Emit(event string, v ...interface{})
}

type outbound struct {
	conn    Conn
	event   string
	payload interface{}
}

// outbox collects emits while the hub lock is held so they can be sent after unlock
type outbox []outbound

func (o *outbox) add(conn Conn, event string, payload interface{}) {
	if conn == nil {
		return
	}
	*o = append(*o, outbound{conn: conn, event: event, payload: payload})
}

func (o outbox) flush() {
	for _, m := range o {
		m.conn.Emit(m.event, m.payload)
	}
}
