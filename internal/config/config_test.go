package config_test

import (
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"github.com/tkorhonen/opprec/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.CatalogTTLSeconds, convey.ShouldEqual, 60)
			convey.So(cfg.RefreshWorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.InferenceBackend, convey.ShouldEqual, "rest")
			convey.So(cfg.InferenceConnectTimeoutMS, convey.ShouldEqual, 5000)
			convey.So(cfg.InferenceReadTimeoutMS, convey.ShouldEqual, 10_000)
			convey.So(cfg.MaxSkillURIs, convey.ShouldEqual, 1000)
		})
	})
}
