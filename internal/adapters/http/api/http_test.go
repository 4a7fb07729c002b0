package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/tkorhonen/opprec/internal/adapters/http/api"
	"github.com/tkorhonen/opprec/internal/adapters/inference"
	service "github.com/tkorhonen/opprec/internal/app"
	"github.com/tkorhonen/opprec/internal/domain/model"
	"github.com/tkorhonen/opprec/internal/domain/types"
)

// fakeDeps implements api.Dependencies with canned responses.
type fakeDeps struct {
	suggestions []types.Suggestion
	steps       []types.Step
	suggestErr  error
	stepsErr    error

	lastParams  service.SuggestParams
	lastMissing []string
}

func (d *fakeDeps) Suggest(_ context.Context, params service.SuggestParams) ([]types.Suggestion, error) {
	d.lastParams = params
	return d.suggestions, d.suggestErr
}

func (d *fakeDeps) PathSteps(_ context.Context, missing []string) ([]types.Step, error) {
	d.lastMissing = missing
	return d.steps, d.stepsErr
}

type fakeStats struct{}

func (fakeStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestServer(deps *fakeDeps) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps, fakeStats{}).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func TestSuggestionsEndpoint(t *testing.T) {
	Convey("Given the suggestions endpoint", t, func() {
		score := 0.9
		deps := &fakeDeps{suggestions: []types.Suggestion{
			{ID: uuid.New(), Kind: model.KindJob, Score: &score, PresentationIndex: 0},
			{ID: uuid.New(), Kind: model.KindTraining, PresentationIndex: 1},
		}}
		srv := newTestServer(deps)
		defer srv.Close()

		post := func(url, lang, body string) *http.Response {
			req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
			So(err, ShouldBeNil)
			if lang != "" {
				req.Header.Set("Content-Language", lang)
			}
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			return resp
		}

		Convey("When posting a valid request", func() {
			resp := post(srv.URL+"/api/v1/suggestions?sort=desc", "sv",
				`{"skills": ["skill/welding"], "skillWeight": 0.7}`)
			defer resp.Body.Close()

			Convey("Then the suggestions come back as JSON", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var got []types.Suggestion
				So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
				So(got, ShouldHaveLength, 2)
				So(*got[0].Score, ShouldEqual, 0.9)
				So(got[1].Score, ShouldBeNil)
			})

			Convey("And the sort, language and weights reach the engine", func() {
				So(deps.lastParams.Sort, ShouldEqual, model.SortDesc)
				So(deps.lastParams.Lang, ShouldEqual, model.LangSV)
				So(deps.lastParams.Skills, ShouldResemble, []string{"skill/welding"})
				So(*deps.lastParams.SkillWeight, ShouldEqual, 0.7)
			})
		})

		Convey("When the sort parameter and language are absent", func() {
			resp := post(srv.URL+"/api/v1/suggestions", "", `{}`)
			defer resp.Body.Close()

			Convey("Then defaults apply", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(deps.lastParams.Sort, ShouldEqual, model.SortAsc)
				So(deps.lastParams.Lang, ShouldEqual, model.LangFI)
			})
		})

		Convey("When the sort parameter is invalid", func() {
			resp := post(srv.URL+"/api/v1/suggestions?sort=upside-down", "", `{}`)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the language is unsupported", func() {
			resp := post(srv.URL+"/api/v1/suggestions", "de", `{}`)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body is not JSON", func() {
			resp := post(srv.URL+"/api/v1/suggestions", "", `{broken`)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the skill list exceeds the cap", func() {
			skills := make([]string, 1001)
			for i := range skills {
				skills[i] = fmt.Sprintf("skill/%d", i)
			}
			body, err := json.Marshal(map[string]any{"skills": skills})
			So(err, ShouldBeNil)

			resp := post(srv.URL+"/api/v1/suggestions", "", string(body))
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a weight is out of range", func() {
			resp := post(srv.URL+"/api/v1/suggestions", "", `{"skillWeight": 1.5}`)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the engine reports overload", func() {
			deps.suggestErr = fmt.Errorf("scoring request: %w", inference.ErrOverloaded)
			resp := post(srv.URL+"/api/v1/suggestions", "", `{"skills": ["skill/welding"]}`)
			defer resp.Body.Close()

			Convey("Then the client gets a retryable 429", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusTooManyRequests)
				So(resp.Header.Get("Retry-After"), ShouldNotBeEmpty)

				var body map[string]string
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body["code"], ShouldEqual, "overloaded")
			})
		})

		Convey("When the engine reports a backend validation failure", func() {
			deps.suggestErr = fmt.Errorf("scoring request: %w", inference.ErrValidation)
			resp := post(srv.URL+"/api/v1/suggestions", "", `{"skills": ["skill/welding"]}`)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the engine reports a generic backend failure", func() {
			deps.suggestErr = fmt.Errorf("scoring request: %w", inference.ErrInference)
			resp := post(srv.URL+"/api/v1/suggestions", "", `{"skills": ["skill/welding"]}`)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadGateway)
		})

		Convey("When the engine fails internally", func() {
			deps.suggestErr = fmt.Errorf("listing catalog: boom")
			resp := post(srv.URL+"/api/v1/suggestions", "", `{}`)
			defer resp.Body.Close()

			Convey("Then the client gets a 500 without internal detail", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)

				var body map[string]string
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body["message"], ShouldNotContainSubstring, "boom")
			})
		})

		Convey("When using the wrong method", func() {
			resp, err := http.Get(srv.URL + "/api/v1/suggestions")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPathStepsEndpoint(t *testing.T) {
	Convey("Given the path steps endpoint", t, func() {
		deps := &fakeDeps{steps: []types.Step{
			{ID: uuid.New(), Kind: model.KindTraining, Score: 0.5, SkillMatchCount: 1},
		}}
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When posting missing skills", func() {
			resp, err := http.Post(srv.URL+"/api/v1/path-steps", "application/json",
				strings.NewReader(`{"missingSkills": ["skill/welding"]}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then ranked steps come back as JSON", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var got []types.Step
				So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
				So(got, ShouldHaveLength, 1)
				So(got[0].Score, ShouldEqual, 0.5)
			})

			Convey("And the skills reach the engine", func() {
				So(deps.lastMissing, ShouldResemble, []string{"skill/welding"})
			})
		})

		Convey("When the body is not JSON", func() {
			resp, err := http.Post(srv.URL+"/api/v1/path-steps", "application/json",
				strings.NewReader(`nope`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the engine fails", func() {
			deps.stepsErr = fmt.Errorf("store gone")
			resp, err := http.Post(srv.URL+"/api/v1/path-steps", "application/json",
				strings.NewReader(`{"missingSkills": ["skill/welding"]}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("Given the operational endpoints", t, func() {
		srv := newTestServer(&fakeDeps{})
		defer srv.Close()

		Convey("When hitting /healthz", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the service reports ok", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var body map[string]string
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body["status"], ShouldEqual, "ok")
			})
		})

		Convey("When hitting /stats", func() {
			resp, err := http.Get(srv.URL + "/stats")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the stats provider output comes back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var body map[string]interface{}
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body["started"], ShouldEqual, true)
			})
		})

		Convey("When hitting /metrics", func() {
			resp, err := http.Get(srv.URL + "/metrics")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then Prometheus metrics are exposed", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestMaxURIListOption(t *testing.T) {
	Convey("Given a server with a lowered URI cap", t, func() {
		deps := &fakeDeps{}
		mux := http.NewServeMux()
		api.NewServer(deps, fakeStats{}, api.WithMaxURIListLen(2)).Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		post := func(body string) *http.Response {
			resp, err := http.Post(srv.URL+"/api/v1/suggestions", "application/json", strings.NewReader(body))
			So(err, ShouldBeNil)
			return resp
		}

		Convey("When the skill list fits the cap", func() {
			resp := post(`{"skills": ["a", "b"]}`)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("When the skill list exceeds the cap", func() {
			resp := post(`{"skills": ["a", "b", "c"]}`)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}
