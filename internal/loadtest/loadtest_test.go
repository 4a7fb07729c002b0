package loadtest

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tkorhonen/opprec/internal/domain/model"
	"github.com/tkorhonen/opprec/internal/domain/types"
)

func floatPtr(v float64) *float64 { return &v }

func TestGenerateOpportunities(t *testing.T) {
	Convey("Given a generated opportunity set", t, func() {
		opps := GenerateOpportunities(30)

		Convey("Then every opportunity has an id, a title and a known kind", func() {
			So(opps, ShouldHaveLength, 30)
			for _, opp := range opps {
				So(opp.ID.String(), ShouldNotEqual, "00000000-0000-0000-0000-000000000000")
				So(opp.Titles[model.LangFI], ShouldNotBeEmpty)
				So(opp.Kind == model.KindJob || opp.Kind == model.KindTraining, ShouldBeTrue)
			}
		})

		Convey("Then trainings carry a skill distribution", func() {
			for _, opp := range opps {
				if opp.Kind == model.KindTraining {
					So(opp.Skills.TotalCount, ShouldBeGreaterThan, 0)
					So(opp.Skills.Values, ShouldNotBeEmpty)
				}
			}
		})
	})
}

func TestVerifyRanking(t *testing.T) {
	Convey("Given ranked suggestion lists", t, func() {
		Convey("When scores are non-increasing with unscored at the tail", func() {
			err := verifyRanking([]types.Suggestion{
				{Score: floatPtr(0.9)},
				{Score: floatPtr(0.9)},
				{Score: floatPtr(0.3)},
				{Score: nil},
				{Score: nil},
			})
			So(err, ShouldBeNil)
		})

		Convey("When a score increases mid-list", func() {
			err := verifyRanking([]types.Suggestion{
				{Score: floatPtr(0.3)},
				{Score: floatPtr(0.9)},
			})
			So(err, ShouldNotBeNil)
		})

		Convey("When a scored suggestion follows an unscored one", func() {
			err := verifyRanking([]types.Suggestion{
				{Score: floatPtr(0.9)},
				{Score: nil},
				{Score: floatPtr(0.3)},
			})
			So(err, ShouldNotBeNil)
		})

		Convey("When the list is empty", func() {
			So(verifyRanking(nil), ShouldBeNil)
		})
	})
}
