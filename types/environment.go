package types

import (
	"github.com/robfig/cron/v3"
)

type Environment struct {
	Cron *cron.Cron
}

func NewEnvironment() *Environment {
	cr := cron.New()
	return &Environment{
		Cron: cr,
	}
}
