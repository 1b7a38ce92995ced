// Package transporttest provides in-memory sockets for tests.
package transporttest

import (
	"errors"
	"io"
	"sync"

	"github.com/yndnr/zpipe/internal/transport"
)

// Sent is one message captured by a Socket.
type Sent struct {
	Topic   string
	Payload []byte
}

// Socket is an in-memory transport.Socket. Sent messages are recorded;
// Recv replays queued frames and then returns io.EOF.
type Socket struct {
	mu sync.Mutex

	role      transport.Role
	endpoints []string
	filters   []string
	options   map[transport.Option]int
	sent      []Sent
	inbox     [][][]byte
	closed    bool

	// SendErr, when set, is returned by Send after SendErrAfter
	// successful sends.
	SendErr      error
	SendErrAfter int

	// OptionErr, when set, is returned by SetOption and GetOption.
	OptionErr error
}

// New returns a socket for role.
func New(role transport.Role) *Socket {
	return &Socket{role: role, options: make(map[transport.Option]int)}
}

// Queue adds a raw multipart message for Recv.
func (s *Socket) Queue(frames ...[]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbox = append(s.inbox, frames)
}

// Sent returns a copy of the messages sent so far.
func (s *Socket) Sent() []Sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Sent, len(s.sent))
	copy(out, s.sent)
	return out
}

// Endpoints returns the endpoints passed to Bind or Connect.
func (s *Socket) Endpoints() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.endpoints...)
}

// Filters returns the subscription prefixes.
func (s *Socket) Filters() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.filters...)
}

// Closed reports whether Close was called.
func (s *Socket) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Socket) Role() transport.Role { return s.role }

func (s *Socket) Bind(endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endpoints = append(s.endpoints, endpoint)
	return nil
}

func (s *Socket) Connect(endpoint string) error {
	return s.Bind(endpoint)
}

func (s *Socket) Send(topic string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("transporttest: socket closed")
	}
	if s.SendErr != nil && len(s.sent) >= s.SendErrAfter {
		return s.SendErr
	}
	s.sent = append(s.sent, Sent{Topic: topic, Payload: append([]byte{}, payload...)})
	return nil
}

func (s *Socket) Recv() ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.inbox) == 0 {
		return nil, io.EOF
	}
	frames := s.inbox[0]
	s.inbox = s.inbox[1:]
	return frames, nil
}

func (s *Socket) Subscribe(prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = append(s.filters, prefix)
	return nil
}

func (s *Socket) SetOption(opt transport.Option, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.OptionErr != nil {
		return s.OptionErr
	}
	s.options[opt] = value
	return nil
}

func (s *Socket) GetOption(opt transport.Option) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.OptionErr != nil {
		return 0, s.OptionErr
	}
	return s.options[opt], nil
}

func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ transport.Socket = (*Socket)(nil)
