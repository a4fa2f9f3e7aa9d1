// Package autoload initializes the process logger from the LOG-prefixed
// environment on import.
package autoload

import (
	configx "github.com/metroequip/rental-desk/pkg/config"
	logx "github.com/metroequip/rental-desk/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
