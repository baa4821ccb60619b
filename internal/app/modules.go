package app

import (
	"github.com/vk/mpetstudy/internal/registry"
	"github.com/vk/mpetstudy/modules/dakota"
	"github.com/vk/mpetstudy/modules/mpetrun"
)

// coreModules is the definitive list of calculation plugins compiled into
// the mpetstudy binary.
var coreModules = []registry.Module{
	&mpetrun.Module{},
	&dakota.Module{},
}
