//go:build libzmq

package transport

import (
	"context"

	zmq "github.com/pebbe/zmq4"
)

func init() {
	Register(BackendLibzmq, newLibzmqSocket)
}

// libzmqSocket wraps a libzmq socket. Not safe for concurrent use.
type libzmqSocket struct {
	sock *zmq.Socket
	role Role
}

func newLibzmqSocket(_ context.Context, role Role) (Socket, error) {
	t := zmq.PUB
	if role == RoleSub {
		t = zmq.SUB
	}

	sock, err := zmq.NewSocket(t)
	if err != nil {
		return nil, err
	}
	return &libzmqSocket{sock: sock, role: role}, nil
}

func (s *libzmqSocket) Role() Role {
	return s.role
}

func (s *libzmqSocket) Bind(endpoint string) error {
	return transportError("bind "+endpoint, s.sock.Bind(endpoint))
}

func (s *libzmqSocket) Connect(endpoint string) error {
	return transportError("connect "+endpoint, s.sock.Connect(endpoint))
}

func (s *libzmqSocket) Send(topic string, payload []byte) error {
	if _, err := s.sock.SendBytes([]byte(topic), zmq.SNDMORE); err != nil {
		return transportError("send envelope", err)
	}
	if _, err := s.sock.SendBytes(payload, 0); err != nil {
		return transportError("send message", err)
	}
	return nil
}

func (s *libzmqSocket) Recv() ([][]byte, error) {
	frames, err := s.sock.RecvMessageBytes(0)
	if err != nil {
		return nil, transportError("receive", err)
	}
	return frames, nil
}

func (s *libzmqSocket) Subscribe(prefix string) error {
	return transportError("subscribe", s.sock.SetSubscribe(prefix))
}

func (s *libzmqSocket) SetOption(opt Option, value int) error {
	var err error
	switch opt {
	case OptionSendBuffer:
		err = s.sock.SetSndbuf(value)
	case OptionRecvBuffer:
		err = s.sock.SetRcvbuf(value)
	case OptionSendHWM:
		err = s.sock.SetSndhwm(value)
	case OptionRecvHWM:
		err = s.sock.SetRcvhwm(value)
	default:
		return unsupported(BackendLibzmq, opt)
	}
	return transportError("set "+string(opt), err)
}

func (s *libzmqSocket) GetOption(opt Option) (int, error) {
	var (
		v   int
		err error
	)
	switch opt {
	case OptionSendBuffer:
		v, err = s.sock.GetSndbuf()
	case OptionRecvBuffer:
		v, err = s.sock.GetRcvbuf()
	case OptionSendHWM:
		v, err = s.sock.GetSndhwm()
	case OptionRecvHWM:
		v, err = s.sock.GetRcvhwm()
	default:
		return 0, unsupported(BackendLibzmq, opt)
	}
	if err != nil {
		return 0, transportError("get "+string(opt), err)
	}
	return v, nil
}

func (s *libzmqSocket) Close() error {
	return transportError("close", s.sock.Close())
}
