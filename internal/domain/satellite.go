package domain

import (
	"errors"
	"net"
	"strconv"
)

// ConnectivityDescriptor identifies a reachable participant of the fabric.
// Satellites always carry a Name; the coordinator's own descriptor leaves it empty.
type ConnectivityDescriptor struct {
	Name string `json:"name,omitempty"`
	Host string `json:"host"`
	Port int    `json:"port"`
}

// NewConnectivityDescriptor builds a descriptor value
func NewConnectivityDescriptor(name, host string, port int) ConnectivityDescriptor {
	return ConnectivityDescriptor{
		Name: name,
		Host: host,
		Port: port,
	}
}

// Address returns host:port suitable for net.Dial
func (d ConnectivityDescriptor) Address() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// ValidateSatellite checks the fields a satellite registration must carry
func (d ConnectivityDescriptor) ValidateSatellite() error {
	if d.Name == "" {
		return errors.New("satellite name is required")
	}
	if d.Host == "" {
		return errors.New("satellite host is required")
	}
	if d.Port <= 0 || d.Port > 65535 {
		return errors.New("satellite port must be in range 1-65535")
	}
	return nil
}
