// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package control

import (
	"github.com/vpnhouse/songbook/pkg/xerror"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type ServiceController interface {
	Shutdown() error
	Running() bool
}

// ServiceMap keeps started services and shuts them down
// in the reverse order of registration.
type ServiceMap struct {
	services map[string]ServiceController
	order    []string
}

func NewServiceMap() *ServiceMap {
	return &ServiceMap{
		services: make(map[string]ServiceController),
		order:    make([]string, 0),
	}
}

func (m *ServiceMap) RegisterService(name string, service ServiceController) {
	if _, ok := m.services[name]; ok {
		zap.L().Fatal("service is already registered", zap.String("name", name))
	}

	if service == nil {
		zap.L().Fatal("service is nil", zap.String("name", name))
	}

	m.services[name] = service
	m.order = append(m.order, name)

	zap.L().Info("registered service", zap.String("name", name))
}

func (m *ServiceMap) Service(name string) (ServiceController, bool) {
	c, ok := m.services[name]
	return c, ok
}

// Shutdown stops every registered service, collecting failures
// instead of stopping at the first one.
func (m *ServiceMap) Shutdown() error {
	var result error
	for idx := len(m.order) - 1; idx >= 0; idx-- {
		name := m.order[idx]
		zap.L().Info("shutting down service", zap.String("name", name))

		service := m.services[name]
		if err := service.Shutdown(); err != nil {
			result = multierr.Append(result, xerror.EInternalError("service is failed to shutdown", err, zap.String("name", name)))
			continue
		}

		if service.Running() {
			result = multierr.Append(result, xerror.EInternalError("service is still running", nil, zap.String("name", name)))
		}
	}

	m.order = m.order[:0]
	m.services = make(map[string]ServiceController)
	return result
}
