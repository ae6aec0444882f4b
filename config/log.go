package config

import (
	"github.com/inconshreveable/log15"
)

var log = log15.New("module", "mooglife-config")
