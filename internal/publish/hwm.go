package publish

import (
	"errors"

	"github.com/yndnr/zpipe/internal/core/domain"
	"github.com/yndnr/zpipe/internal/telemetry/logger"
	"github.com/yndnr/zpipe/internal/transport"
)

// DefaultHWM is used when neither the flag nor the socket provides a
// send high-water-mark.
const DefaultHWM = 1000

// OptionSetter is the part of a socket that ResolveHWM needs.
type OptionSetter interface {
	SetOption(opt transport.Option, value int) error
	GetOption(opt transport.Option) (int, error)
}

// ResolveHWM picks the replay high-water-mark: the explicit value when
// given (also applied to the socket), else the socket's send HWM, else
// DefaultHWM. A backend that cannot apply the option is logged and
// tolerated; any other option failure is returned.
func ResolveHWM(explicit *int, sock OptionSetter, log logger.Logger) (int, error) {
	if log == nil {
		log = logger.Discard()
	}

	if explicit != nil {
		if err := sock.SetOption(transport.OptionSendHWM, *explicit); err != nil {
			if !errors.Is(err, domain.ErrUnsupportedOption) {
				return 0, err
			}
			log.Warn("send high-water-mark not applied to socket", "hwm", *explicit, "error", err)
		}
		return *explicit, nil
	}

	v, err := sock.GetOption(transport.OptionSendHWM)
	if err != nil {
		log.Debug("socket send high-water-mark unavailable, using default", "hwm", DefaultHWM, "error", err)
		return DefaultHWM, nil
	}
	return v, nil
}
