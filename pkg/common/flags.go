package common

import "github.com/alecthomas/kingpin/v2"

// FlagHolder is where a configuration registers its flags. Both the
// kingpin application and a kingpin command satisfy it.
type FlagHolder interface {
	Flag(name, help string) *kingpin.FlagClause
}
