package log

import (
	"io"
	"os"

	config "github.com/dollet000/dollet-stats/configs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

func InitLogger() {
	// overrides zerolog global logger
	log.Logger = NewLogger("stats")
}

func NewLogger(name string) zerolog.Logger {
	return newLogger(os.Stderr, name, config.Cfg.Log)
}

func newLogger(out io.Writer, name string, cfg config.LogConfig) zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	level := zerolog.WarnLevel
	if lvl, err := zerolog.ParseLevel(cfg.Level); err == nil && lvl != zerolog.NoLevel {
		level = lvl
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Prettify {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).With().Timestamp().Str("component", name).Caller().Logger()
}
