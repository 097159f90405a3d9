package srvenv

import (
	"percept/internal/dataset"
	"percept/internal/sim"
	"percept/internal/trainer"
)

type Option func(*SrvEnv) *SrvEnv

func New(opts ...Option) *SrvEnv {
	env := &SrvEnv{}
	for _, f := range opts {
		env = f(env)
	}

	return env
}

// SrvEnv aggregates the provider functions built during setup.
type SrvEnv struct {
	dataset dataset.ProvideFn
	session trainer.ProvideFn
	sim     sim.ProvideFn
}

func (s *SrvEnv) ProvideDataset() dataset.ProvideFn {
	return s.dataset
}

func (s *SrvEnv) ProvideSession() trainer.ProvideFn {
	return s.session
}

func (s *SrvEnv) ProvideSim() sim.ProvideFn {
	return s.sim
}

func WithDataset(fn dataset.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.dataset = fn
		return s
	}
}

func WithSession(fn trainer.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.session = fn
		return s
	}
}

func WithSim(fn sim.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.sim = fn
		return s
	}
}
