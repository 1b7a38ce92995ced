package transport

import (
	"context"

	"github.com/go-zeromq/zmq4"
)

func init() {
	Register(BackendZMTP, newZMTPSocket)
}

// zmtpSocket wraps a pure-Go ZMTP socket. Kernel buffer sizes and
// high-water-marks are not configurable on this backend; SetOption and
// GetOption report domain.ErrUnsupportedOption.
type zmtpSocket struct {
	sock zmq4.Socket
	role Role
}

func newZMTPSocket(ctx context.Context, role Role) (Socket, error) {
	var sock zmq4.Socket
	switch role {
	case RoleSub:
		sock = zmq4.NewSub(ctx)
	default:
		sock = zmq4.NewPub(ctx)
	}
	return &zmtpSocket{sock: sock, role: role}, nil
}

func (s *zmtpSocket) Role() Role {
	return s.role
}

func (s *zmtpSocket) Bind(endpoint string) error {
	return transportError("bind "+endpoint, s.sock.Listen(endpoint))
}

func (s *zmtpSocket) Connect(endpoint string) error {
	return transportError("connect "+endpoint, s.sock.Dial(endpoint))
}

func (s *zmtpSocket) Send(topic string, payload []byte) error {
	msg := zmq4.NewMsgFrom([]byte(topic), payload)
	return transportError("send", s.sock.SendMulti(msg))
}

func (s *zmtpSocket) Recv() ([][]byte, error) {
	msg, err := s.sock.Recv()
	if err != nil {
		return nil, transportError("receive", err)
	}
	return msg.Frames, nil
}

func (s *zmtpSocket) Subscribe(prefix string) error {
	return transportError("subscribe", s.sock.SetOption(zmq4.OptionSubscribe, prefix))
}

func (s *zmtpSocket) SetOption(opt Option, _ int) error {
	return unsupported(BackendZMTP, opt)
}

func (s *zmtpSocket) GetOption(opt Option) (int, error) {
	return 0, unsupported(BackendZMTP, opt)
}

func (s *zmtpSocket) Close() error {
	return transportError("close", s.sock.Close())
}
