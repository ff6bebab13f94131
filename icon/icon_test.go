package icon

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"github.com/anisan-cli/spacetime/key"
)

func TestGet(t *testing.T) {
	Convey("Given every registered icon", t, func() {
		Reset(func() { viper.Set(key.IconsVariant, "plain") })

		for _, variant := range AvailableVariants() {
			Convey("It renders with variant="+variant, func() {
				viper.Set(key.IconsVariant, variant)
				for i := range icons {
					So(Get(i), ShouldNotBeEmpty)
				}
			})
		}

		Convey("It returns empty for an unknown variant", func() {
			viper.Set(key.IconsVariant, "")
			So(Get(Play), ShouldBeEmpty)
		})
	})
}
