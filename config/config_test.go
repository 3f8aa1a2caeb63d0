package config

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/streamscout-cli/streamscout/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("proxy.base_url")
			So(result, ShouldEqual, "proxy_base_url")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Field", t, func() {
		field := Default["proxy.streams"]

		Convey("Env name carries the application prefix", func() {
			So(field.Env(), ShouldEqual, "STREAMSCOUT_PROXY_STREAMS")
		})

		Convey("Pretty output mentions the key", func() {
			_ = Setup()
			So(field.Pretty(), ShouldContainSubstring, "proxy.streams")
		})
	})
}
