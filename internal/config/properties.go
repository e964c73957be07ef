package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Properties is the content of a HOST/PORT/NAME .properties file
type Properties struct {
	Name string
	Host string
	Port int
}

// ReadProperties parses a java-style .properties file
func ReadProperties(path string) (*Properties, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("properties")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read properties %s: %w", path, err)
	}

	return &Properties{
		Name: v.GetString("name"),
		Host: v.GetString("host"),
		Port: v.GetInt("port"),
	}, nil
}

// overlay copies the non-zero properties onto host, port and name
func (p *Properties) overlay(host *string, port *int, name *string) {
	if p == nil {
		return
	}
	if host != nil && p.Host != "" {
		*host = p.Host
	}
	if port != nil && p.Port != 0 {
		*port = p.Port
	}
	if name != nil && p.Name != "" {
		*name = p.Name
	}
}
