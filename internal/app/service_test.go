package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/tkorhonen/opprec/internal/adapters/inference"
	"github.com/tkorhonen/opprec/internal/adapters/repository"
	service "github.com/tkorhonen/opprec/internal/app"
	"github.com/tkorhonen/opprec/internal/domain/model"
	"github.com/tkorhonen/opprec/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// fakeGateway serves canned scores and counts invocations.
type fakeGateway struct {
	scores []inference.Score
	err    error
	calls  atomic.Int64
}

func (g *fakeGateway) Infer(_ context.Context, _ string, _ inference.Request) ([]inference.Score, error) {
	g.calls.Add(1)
	return g.scores, g.err
}

func testID(i int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", i))
}

func seedOpportunities() []repository.Opportunity {
	return []repository.Opportunity{
		{
			ID:     testID(1),
			Kind:   model.KindJob,
			Titles: map[model.Language]string{model.LangFI: "Autonasentaja"},
			Active: true,
		},
		{
			ID:     testID(2),
			Kind:   model.KindTraining,
			Titles: map[model.Language]string{model.LangFI: "Hitsauskurssi"},
			Skills: model.Distribution{
				TotalCount: 2,
				Values: []model.ValueShare{
					{Value: "skill/welding", Share: 0.5},
					{Value: "skill/safety", Share: 0.5},
				},
			},
			Active: true,
		},
		{
			ID:     testID(3),
			Kind:   model.KindJob,
			Titles: map[model.Language]string{model.LangFI: "Hitsaaja"},
			Active: true,
		},
	}
}

func startedService(t *testing.T, gw inference.Gateway) *service.Service {
	t.Helper()
	store, err := repository.NewMemStore(repository.WithOpportunities(seedOpportunities()))
	So(err, ShouldBeNil)

	svc := service.New(
		service.WithStore(store),
		service.WithGateway(gw, "http://scorer.local/score", "rest"),
		service.WithCatalogTTL(time.Minute),
		service.WithRefreshWorkerCount(1),
	)
	So(svc.Start(context.Background()), ShouldBeNil)
	t.Cleanup(func() { svc.Stop(context.Background()) })
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given a started service", t, func() {
		svc := startedService(t, &fakeGateway{})

		Convey("Then it is marked as started", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["opportunities"], ShouldEqual, 3)
		})

		Convey("When stopping the service", func() {
			svc.Stop(context.Background())

			Convey("Then it is marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Suggest(t *testing.T) {
	Convey("Given a started service with a scoring gateway", t, func() {
		ctx := context.Background()

		Convey("When suggesting with skills", func() {
			gw := &fakeGateway{scores: []inference.Score{
				{ID: testID(3), Value: 0.9},
				{ID: testID(1), Value: 0.4},
				{ID: testID(2), Value: 0.7},
			}}
			svc := startedService(t, gw)

			out, err := svc.Suggest(ctx, service.SuggestParams{
				Sort:   model.SortAsc,
				Lang:   model.LangFI,
				Skills: []string{"skill/welding"},
			})

			Convey("Then one suggestion per catalog entry comes back ranked", func() {
				So(err, ShouldBeNil)
				So(out, ShouldHaveLength, 3)
				So(out[0].ID, ShouldEqual, testID(3))
				So(out[1].ID, ShouldEqual, testID(2))
				So(out[2].ID, ShouldEqual, testID(1))
				So(gw.calls.Load(), ShouldEqual, 1)
			})
		})

		Convey("When the request carries no signal at all", func() {
			gw := &fakeGateway{}
			svc := startedService(t, gw)

			out, err := svc.Suggest(ctx, service.SuggestParams{
				Sort: model.SortAsc,
				Lang: model.LangFI,
			})

			Convey("Then the gateway is never called", func() {
				So(err, ShouldBeNil)
				So(gw.calls.Load(), ShouldEqual, 0)
			})

			Convey("And suggestions come back unscored in catalog order", func() {
				So(out, ShouldHaveLength, 3)
				// Finnish collation: Autonasentaja, Hitsaaja, Hitsauskurssi.
				So(out[0].ID, ShouldEqual, testID(1))
				So(out[1].ID, ShouldEqual, testID(3))
				So(out[2].ID, ShouldEqual, testID(2))
				for i, s := range out {
					So(s.Score, ShouldBeNil)
					So(s.PresentationIndex, ShouldEqual, i)
				}
			})
		})

		Convey("When free text is the only signal", func() {
			gw := &fakeGateway{}
			svc := startedService(t, gw)

			_, err := svc.Suggest(ctx, service.SuggestParams{
				Sort:     model.SortAsc,
				Lang:     model.LangFI,
				FreeText: "haluan hitsata",
			})

			Convey("Then scoring still happens", func() {
				So(err, ShouldBeNil)
				So(gw.calls.Load(), ShouldEqual, 1)
			})
		})

		Convey("When the gateway reports overload", func() {
			gw := &fakeGateway{err: fmt.Errorf("backend: %w", inference.ErrOverloaded)}
			svc := startedService(t, gw)

			_, err := svc.Suggest(ctx, service.SuggestParams{
				Sort:   model.SortAsc,
				Lang:   model.LangFI,
				Skills: []string{"skill/welding"},
			})

			Convey("Then the overload classification survives wrapping", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, inference.ErrOverloaded), ShouldBeTrue)
			})
		})

		Convey("When listing descending", func() {
			svc := startedService(t, &fakeGateway{})

			out, err := svc.Suggest(ctx, service.SuggestParams{
				Sort: model.SortDesc,
				Lang: model.LangFI,
			})

			Convey("Then the catalog order is reversed", func() {
				So(err, ShouldBeNil)
				So(out[0].ID, ShouldEqual, testID(2))
				So(out[2].ID, ShouldEqual, testID(1))
			})
		})
	})
}

func TestService_PathSteps(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService(t, &fakeGateway{})

		Convey("When asking for path steps with missing skills", func() {
			steps, err := svc.PathSteps(ctx, []string{"skill/welding"})

			Convey("Then matching trainings come back ranked", func() {
				So(err, ShouldBeNil)
				So(steps, ShouldHaveLength, 1)
				So(steps[0].ID, ShouldEqual, testID(2))
				So(steps[0].Score, ShouldEqual, 0.5)
				So(steps[0].SkillMatchCount, ShouldEqual, 1)
			})
		})

		Convey("When the missing set is empty", func() {
			steps, err := svc.PathSteps(ctx, nil)

			Convey("Then the result is empty", func() {
				So(err, ShouldBeNil)
				So(steps, ShouldBeEmpty)
			})
		})

		Convey("When missing skills contain empty strings", func() {
			steps, err := svc.PathSteps(ctx, []string{"", ""})

			Convey("Then they are ignored and the result is empty", func() {
				So(err, ShouldBeNil)
				So(steps, ShouldBeEmpty)
			})
		})
	})
}

func TestService_CatalogVersion(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService(t, &fakeGateway{})

		Convey("Before any listing", func() {
			_, ok := svc.CatalogVersion(model.SortAsc, model.LangFI)

			Convey("Then no version is available", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("After a listing", func() {
			_, err := svc.Suggest(ctx, service.SuggestParams{Sort: model.SortAsc, Lang: model.LangFI})
			So(err, ShouldBeNil)

			v, ok := svc.CatalogVersion(model.SortAsc, model.LangFI)

			Convey("Then the first snapshot is version 1", func() {
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 1)
			})
		})
	})
}
