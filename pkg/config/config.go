// Package config exposes environment-backed configuration lookups.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Env gives read access to configuration values supplied through
// environment variables. Keys use dotted paths ("database.password") that map
// to PREFIX_DATABASE_PASSWORD.
type Env interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	IsSet(key string) bool
}

// viperEnv implements Env with viper's automatic environment binding.
type viperEnv struct {
	v *viper.Viper
}

// NewEnv creates an Env reading variables prefixed with the upper-cased
// service name.
func NewEnv(serviceName string) Env {
	v := viper.New()
	v.SetEnvPrefix(strings.ToUpper(serviceName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &viperEnv{v: v}
}

func (e *viperEnv) GetString(key string) string {
	return e.v.GetString(key)
}

func (e *viperEnv) GetInt(key string) int {
	return e.v.GetInt(key)
}

func (e *viperEnv) GetBool(key string) bool {
	return e.v.GetBool(key)
}

func (e *viperEnv) IsSet(key string) bool {
	return e.v.IsSet(key)
}
