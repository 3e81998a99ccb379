package xhttp

import (
	"net/http"
)

type HealthChecker func() error

type HealthCheck struct {
	checkers []HealthChecker
}

func NewHealthCheck(checkers ...HealthChecker) HealthCheck {
	return HealthCheck{checkers}
}

func (h HealthCheck) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	for _, c := range h.checkers {
		if err := c(); err != nil {
			WriteJsonError(w, err)
			return
		}
	}

	WriteData(w, jsonOkString)
}
