package httpclient

import (
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

var _ resty.Logger = (*restyLogger)(nil)

// restyLogger forwards resty's internal messages to zerolog.
type restyLogger struct {
	logger zerolog.Logger
}

func newRestyLogger(logger zerolog.Logger) *restyLogger {
	return &restyLogger{logger: logger.With().Str("component", "resty").Logger()}
}

func (l *restyLogger) Errorf(format string, v ...any) {
	l.logger.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
