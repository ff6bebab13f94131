package log

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"github.com/anisan-cli/spacetime/filesystem"
	"github.com/anisan-cli/spacetime/key"
	"github.com/anisan-cli/spacetime/where"
)

func TestSetup(t *testing.T) {
	Convey("Given an in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()
		t.Setenv(where.EnvConfigPath, "/config")
		Reset(func() {
			viper.Reset()
			enabled = false
		})

		Convey("Logging is off by default", func() {
			So(Setup(), ShouldBeNil)
			So(Enabled(), ShouldBeFalse)

			Info("dropped")
			WithField("clip", "a").Info("dropped")
			So(lo.Must(filesystem.API().Exists(where.Logs())), ShouldBeTrue)
			entries := lo.Must(filesystem.API().ReadDir(where.Logs()))
			So(entries, ShouldBeEmpty)
		})

		Convey("With logs.write set, messages reach today's file", func() {
			viper.Set(key.LogsWrite, true)
			viper.Set(key.LogsLevel, "debug")
			viper.Set(key.LogsJson, true)
			So(Setup(), ShouldBeNil)
			So(Enabled(), ShouldBeTrue)
			So(logrus.GetLevel(), ShouldEqual, logrus.DebugLevel)

			Debugf("clip %s activated", "a")

			path := filepath.Join(where.Logs(), time.Now().Format("2006-01-02")+".log")
			data := lo.Must(filesystem.API().ReadFile(path))
			So(string(data), ShouldContainSubstring, "clip a activated")
		})

		Convey("An unknown level falls back to info", func() {
			viper.Set(key.LogsWrite, true)
			viper.Set(key.LogsLevel, "loud")
			So(Setup(), ShouldBeNil)
			So(logrus.GetLevel(), ShouldEqual, logrus.InfoLevel)
		})
	})
}
