package transport

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yndnr/zpipe/internal/core/domain"
)

// Role is the socket pattern role.
type Role int

const (
	RolePub Role = iota + 1
	RoleSub
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RolePub:
		return "PUB"
	case RoleSub:
		return "SUB"
	default:
		return "UNKNOWN"
	}
}

// Option names a socket option settable through SetOption.
type Option string

const (
	OptionSendBuffer Option = "sndbuf"
	OptionRecvBuffer Option = "rcvbuf"
	OptionSendHWM    Option = "sndhwm"
	OptionRecvHWM    Option = "rcvhwm"
)

// Backend names.
const (
	BackendLibzmq = "libzmq"
	BackendZMTP   = "zmtp"
)

// Sender sends one two-frame message.
type Sender interface {
	Send(topic string, payload []byte) error
}

// Receiver receives the frames of one message. Blocks until a message
// arrives; there is no timeout.
type Receiver interface {
	Recv() ([][]byte, error)
}

// Socket is a PUB or SUB socket.
type Socket interface {
	Sender
	Receiver

	Role() Role
	Bind(endpoint string) error
	Connect(endpoint string) error

	// Subscribe sets a topic prefix filter. "" subscribes to everything.
	Subscribe(prefix string) error

	SetOption(opt Option, value int) error
	GetOption(opt Option) (int, error)

	Close() error
}

// Factory creates a socket for a role.
type Factory func(ctx context.Context, role Role) (Socket, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a backend available under name.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultBackend returns libzmq when it is compiled in, zmtp otherwise.
func DefaultBackend() string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if _, ok := registry[BackendLibzmq]; ok {
		return BackendLibzmq
	}
	return BackendZMTP
}

// New creates a socket using the named backend.
func New(ctx context.Context, backend string, role Role) (Socket, error) {
	if backend == "" {
		backend = DefaultBackend()
	}

	registryMu.RLock()
	f, ok := registry[backend]
	registryMu.RUnlock()

	if !ok {
		return nil, domain.ErrInvalidConfig.WithDetails(
			fmt.Sprintf("unknown transport %q (available: %v)", backend, Backends()))
	}

	sock, err := f(ctx, role)
	if err != nil {
		return nil, transportError("create "+role.String()+" socket", err)
	}
	return sock, nil
}

// transportError wraps a backend failure as a coded transport error.
func transportError(op string, err error) error {
	if err == nil {
		return nil
	}
	return domain.ErrTransport.WithDetails(op).WithCause(err)
}

// unsupported reports an option the backend cannot apply.
func unsupported(backend string, opt Option) error {
	return domain.ErrUnsupportedOption.WithDetails(fmt.Sprintf("%s: %s", backend, opt))
}
