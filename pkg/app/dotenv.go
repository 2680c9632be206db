package app

import (
	"errors"
	"io/fs"

	log "github.com/echocat/slf4g"
	"github.com/joho/godotenv"
)

// DefaultEnvironmentFile is read before the command line is parsed.
const DefaultEnvironmentFile = ".env"

// LoadEnvironment exports the variables of the given files into the process
// environment. Variables which are already set are kept. Missing files are
// ignored.
func LoadEnvironment(files ...string) error {
	if len(files) == 0 {
		files = []string{DefaultEnvironmentFile}
	}
	for _, fn := range files {
		if err := godotenv.Load(fn); errors.Is(err, fs.ErrNotExist) {
			log.With("file", fn).
				Debug("Environment file absent.")
			continue
		} else if err != nil {
			return err
		}
		log.With("file", fn).
			Debug("Environment file loaded.")
	}
	return nil
}
