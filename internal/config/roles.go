package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Tool sources a satellite can load descriptors from
const (
	ToolSourceStatic = "static"
	ToolSourceHTTP   = "http"
	ToolSourceRedis  = "redis"
)

// Catalog backends of the code server
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// CoordinatorConfig configures the coordinator process
type CoordinatorConfig struct {
	Host       string        `envconfig:"COORDINATOR_HOST" default:"127.0.0.1"`
	Port       int           `envconfig:"COORDINATOR_PORT" default:"8000"`
	AdminPort  int           `envconfig:"ADMIN_PORT" default:"8082"`
	HopTimeout time.Duration `envconfig:"HOP_TIMEOUT" default:"30s"`
}

// Address is the coordinator's listen address
func (c *CoordinatorConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ApplyServerProperties overlays a Server.properties file
func (c *CoordinatorConfig) ApplyServerProperties(p *Properties) {
	p.overlay(&c.Host, &c.Port, nil)
}

func (c *CoordinatorConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid coordinator port %d", c.Port)
	}
	if c.AdminPort < 0 || c.AdminPort > 65535 {
		return fmt.Errorf("invalid admin port %d", c.AdminPort)
	}
	if c.HopTimeout < 0 {
		return fmt.Errorf("invalid hop timeout %s", c.HopTimeout)
	}
	return nil
}

// SatelliteConfig configures a satellite process
type SatelliteConfig struct {
	Name            string        `envconfig:"SATELLITE_NAME"`
	Host            string        `envconfig:"SATELLITE_HOST" default:"127.0.0.1"`
	Port            int           `envconfig:"SATELLITE_PORT" default:"0"`
	CoordinatorHost string        `envconfig:"COORDINATOR_HOST" default:"127.0.0.1"`
	CoordinatorPort int           `envconfig:"COORDINATOR_PORT" default:"8000"`
	HopTimeout      time.Duration `envconfig:"HOP_TIMEOUT" default:"30s"`
	WaitAck         bool          `envconfig:"REGISTER_WAIT_ACK" default:"false"`
	ToolSource      string        `envconfig:"TOOL_SOURCE" default:"static"`
	CodeServerURL   string        `envconfig:"CODESERVER_URL" default:"http://127.0.0.1:8090"`
	RedisConfig
	SigningConfig
}

// CoordinatorAddress is where the satellite registers itself
func (c *SatelliteConfig) CoordinatorAddress() string {
	return net.JoinHostPort(c.CoordinatorHost, strconv.Itoa(c.CoordinatorPort))
}

// ApplySatelliteProperties overlays a Satellite.<name>.properties file
func (c *SatelliteConfig) ApplySatelliteProperties(p *Properties) {
	p.overlay(&c.Host, &c.Port, &c.Name)
}

// ApplyServerProperties overlays the coordinator's Server.properties file
func (c *SatelliteConfig) ApplyServerProperties(p *Properties) {
	p.overlay(&c.CoordinatorHost, &c.CoordinatorPort, nil)
}

// ApplyCodeServerProperties overlays a WebServer.properties file; it implies the http source
func (c *SatelliteConfig) ApplyCodeServerProperties(p *Properties) {
	if p == nil || (p.Host == "" && p.Port == 0) {
		return
	}
	host, port := "127.0.0.1", 8090
	p.overlay(&host, &port, nil)
	c.CodeServerURL = "http://" + net.JoinHostPort(host, strconv.Itoa(port))
	c.ToolSource = ToolSourceHTTP
}

func (c *SatelliteConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("satellite name is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid satellite port %d", c.Port)
	}
	switch c.ToolSource {
	case ToolSourceStatic, ToolSourceHTTP, ToolSourceRedis:
	default:
		return fmt.Errorf("unknown tool source %q", c.ToolSource)
	}
	return nil
}

// CodeServerConfig configures the tool descriptor server
type CodeServerConfig struct {
	Port    int    `envconfig:"CODESERVER_PORT" default:"8090"`
	Backend string `envconfig:"CODESERVER_BACKEND" default:"postgres"`
	RedisConfig
	PostgresConfig
	SigningConfig
}

func (c *CodeServerConfig) Validate() error {
	switch c.Backend {
	case BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("unknown code server backend %q", c.Backend)
	}
	return nil
}

// ClientConfig configures the submit command
type ClientConfig struct {
	CoordinatorHost string        `envconfig:"COORDINATOR_HOST" default:"127.0.0.1"`
	CoordinatorPort int           `envconfig:"COORDINATOR_PORT" default:"8000"`
	HopTimeout      time.Duration `envconfig:"HOP_TIMEOUT" default:"30s"`
}

func (c *ClientConfig) CoordinatorAddress() string {
	return net.JoinHostPort(c.CoordinatorHost, strconv.Itoa(c.CoordinatorPort))
}

// ApplyServerProperties overlays the coordinator's Server.properties file
func (c *ClientConfig) ApplyServerProperties(p *Properties) {
	p.overlay(&c.CoordinatorHost, &c.CoordinatorPort, nil)
}
