package services

import (
	"context"
	"strings"

	"tradematch_backend/internal/models"
	"tradematch_backend/internal/repositories"
	"tradematch_backend/internal/services/dto"
	"tradematch_backend/internal/utils"
)

// MatchingService finds the tradespeople who should hear about a new job.
// A candidate is included only when both the area match and the specialty
// match pass; passing candidates are bucketed by subscription tier.
type MatchingService interface {
	MatchTradespeople(ctx context.Context, job *models.Job) (*dto.TierMatches, error)
}

type MatchingServiceImpl struct {
	userRepo repositories.UserRepository
}

func NewMatchingService(userRepo repositories.UserRepository) MatchingService {
	return &MatchingServiceImpl{userRepo: userRepo}
}

// londonRegions maps a London outcode letter prefix to its coarse sub-region.
// Longest prefixes are listed first so EC wins over E and NW over N.
var londonRegions = []struct {
	prefix string
	region string
}{
	{"EC", "central"},
	{"WC", "central"},
	{"NW", "north"},
	{"SE", "south"},
	{"SW", "south"},
	{"N", "north"},
	{"E", "east"},
	{"W", "west"},
}

const londonSlug = "london"

func (s *MatchingServiceImpl) MatchTradespeople(_ context.Context, job *models.Job) (*dto.TierMatches, error) {
	matches := &dto.TierMatches{
		Business: []models.User{},
		Pro:      []models.User{},
		Basic:    []models.User{},
	}

	outcode := outcodePrefix(job.Postcode)
	serviceType := strings.ToLower(strings.TrimSpace(job.ServiceType))

	// Without a postcode prefix or a service type there is nothing to match
	// on. Returning empty here is deliberate: a blank job must never fan out
	// to every tradesperson.
	if outcode == "" || serviceType == "" {
		return matches, nil
	}

	candidates, err := s.userRepo.FindAlertableTradespeople()
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		if !areaMatches(&candidate, job, outcode) {
			continue
		}
		if !specialtyMatches(&candidate, serviceType) {
			continue
		}

		switch candidate.Tier() {
		case models.TierBusiness:
			matches.Business = append(matches.Business, candidate)
		case models.TierPro:
			matches.Pro = append(matches.Pro, candidate)
		default:
			matches.Basic = append(matches.Basic, candidate)
		}
	}

	return matches, nil
}

// outcodePrefix is the lowercased text before the first space of the
// postcode, e.g. "E7 9JH" -> "e7".
func outcodePrefix(postcode string) string {
	trimmed := strings.TrimSpace(strings.ToLower(postcode))
	if trimmed == "" {
		return ""
	}
	if idx := strings.IndexByte(trimmed, ' '); idx > 0 {
		return trimmed[:idx]
	}
	return trimmed
}

// areaMatches tests the candidate's free-text serviceAreas against the
// job's location tokens: outcode prefix, town and city slug, plus the
// derived London sub-region when the job sits in the metro.
func areaMatches(candidate *models.User, job *models.Job, outcode string) bool {
	areas := strings.ToLower(candidate.ServiceAreas)
	if strings.TrimSpace(areas) == "" {
		return false
	}

	tokens := []string{
		outcode,
		strings.ToLower(strings.TrimSpace(job.Town)),
		strings.ToLower(strings.TrimSpace(job.CitySlug)),
	}
	for _, token := range tokens {
		if token != "" && strings.Contains(areas, token) {
			return true
		}
	}

	if utils.Slugify(job.CitySlug) == londonSlug {
		if region := londonRegion(outcode); region != "" {
			for _, variant := range []string{
				region + " london area",
				region + " london",
				region,
			} {
				if strings.Contains(areas, variant) {
					return true
				}
			}
		}
	}

	return false
}

func londonRegion(outcode string) string {
	upper := strings.ToUpper(outcode)
	for _, entry := range londonRegions {
		if strings.HasPrefix(upper, entry.prefix) {
			return entry.region
		}
	}
	return ""
}

// specialtyMatches is equality or substring: "boiler repair" matches both
// the specialty "boiler repair" and "gas boiler repairs".
func specialtyMatches(candidate *models.User, serviceType string) bool {
	for _, specialty := range candidate.GetSpecialties() {
		normalized := strings.ToLower(strings.TrimSpace(specialty))
		if normalized == "" {
			continue
		}
		if normalized == serviceType || strings.Contains(normalized, serviceType) {
			return true
		}
	}
	return false
}
