package env

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Load reads .env from the working directory, if present, without
// overriding variables that are already set.
func Load(files ...string) {
	err := godotenv.Load(files...)
	if err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
}
