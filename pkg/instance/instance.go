package instance

import "github.com/angelmondragon/quotecatalog/pkg/env"

// GetID identifies the running process in logs: the dyno name when the
// platform sets one, then the host name, then "local".
func GetID() string {
	return env.Get("DYNO", env.Get("HOSTNAME", "local"))
}
