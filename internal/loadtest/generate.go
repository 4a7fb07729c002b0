package loadtest

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/google/uuid"

	"github.com/tkorhonen/opprec/internal/adapters/repository"
	"github.com/tkorhonen/opprec/internal/domain/model"
	"github.com/tkorhonen/opprec/pkg/logger"
)

// File permission constants.
const (
	seedFilePermission = 0600
)

// Title fragments combined into plausible localized opportunity titles.
var titleStems = []string{
	"Hitsaaja", "Autonasentaja", "Lähihoitaja", "Ohjelmistokehittäjä",
	"Kokki", "Sähköasentaja", "Varastotyöntekijä", "Puutarhuri",
	"Öljynvaihtaja", "Ääniteknikko",
}

var skillPool = []string{
	"skill/welding", "skill/cooking", "skill/driving", "skill/first-aid",
	"skill/electrical", "skill/logistics", "skill/gardening", "skill/audio",
	"skill/programming", "skill/safety",
}

func randomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// GenerateOpportunities creates a mixed set of job and training
// opportunities with Finnish titles and, for trainings, random skill
// distributions.
func GenerateOpportunities(n int) []repository.Opportunity {
	opps := make([]repository.Opportunity, 0, n)
	for i := 0; i < n; i++ {
		title := fmt.Sprintf("%s %d", titleStems[randomInt(len(titleStems))], i)
		opp := repository.Opportunity{
			ID:     uuid.New(),
			Kind:   model.KindJob,
			Titles: map[model.Language]string{model.LangFI: title},
			Active: true,
		}
		// Roughly a third of the set are trainings carrying a distribution.
		if i%3 == 0 {
			count := 1 + randomInt(4)
			values := make([]model.ValueShare, 0, count)
			for j := 0; j < count; j++ {
				values = append(values, model.ValueShare{
					Value: skillPool[randomInt(len(skillPool))],
					Share: 1 / float64(count),
				})
			}
			opp.Kind = model.KindTraining
			opp.Skills = model.Distribution{TotalCount: count, Values: values}
		}
		opps = append(opps, opp)
	}
	return opps
}

// WriteSeedFile serializes the opportunities into the JSON shape the service
// loads at startup.
func WriteSeedFile(ctx context.Context, path string, opps []repository.Opportunity) error {
	data, err := json.MarshalIndent(opps, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding seed file: %w", err)
	}
	if err := os.WriteFile(path, data, seedFilePermission); err != nil {
		return fmt.Errorf("writing seed file: %w", err)
	}
	logger.Get().Info(ctx, "seed file written",
		logger.String("path", path),
		logger.Int("opportunities", len(opps)),
	)
	return nil
}

// randomSkills picks a random non-empty subset of the skill pool.
func randomSkills() []string {
	count := 1 + randomInt(3)
	skills := make([]string, 0, count)
	for i := 0; i < count; i++ {
		skills = append(skills, skillPool[randomInt(len(skillPool))])
	}
	return skills
}
