// Package config registers the configuration fields of spacetime and loads
// them through viper from defaults, the environment and a TOML file.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	"github.com/anisan-cli/spacetime/constant"
	"github.com/anisan-cli/spacetime/filesystem"
	"github.com/anisan-cli/spacetime/key"
	"github.com/anisan-cli/spacetime/metrics"
	"github.com/anisan-cli/spacetime/spacetime"
	"github.com/anisan-cli/spacetime/where"
)

// EnvKeyReplacer turns a key such as playback.rate into PLAYBACK_RATE.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup loads defaults, binds SPACETIME_* variables and reads the config file if present.
func Setup() error {
	viper.SetConfigName(constant.Spacetime)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Spacetime)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	return nil
}

// Playback builds composition options from the playback.* keys. Metrics are
// registered with reg when metrics.enable is set.
func Playback(reg prometheus.Registerer) spacetime.Options {
	opts := spacetime.Options{
		UpdateThrottle: time.Duration(viper.GetInt(key.PlaybackUpdateThrottle)) * time.Millisecond,
		FrameInterval:  time.Duration(viper.GetInt(key.PlaybackFrameInterval)) * time.Millisecond,
		LoadAhead:      viper.GetFloat64(key.PlaybackLoadAhead),
	}
	if viper.GetBool(key.MetricsEnable) {
		opts.Metrics = metrics.New(reg)
	}
	return opts
}
