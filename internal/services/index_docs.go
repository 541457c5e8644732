package services

import "tradematch_backend/internal/models"

// jobIndexObject is the flat document pushed into the jobs index. The
// search path and the reindex worker share this shape so filters always see
// the same field names.
func JobIndexObject(job *models.Job) map[string]any {
	doc := map[string]any{
		"objectID":     job.ID,
		"title":        job.Title,
		"description":  job.Description,
		"service_type": job.ServiceType,
		"skills":       job.GetSkills(),
		"keywords":     job.GetKeywords(),
		"town":         job.Town,
		"postcode":     job.Postcode,
		"city_slug":    job.CitySlug,
		"urgency":      string(job.Urgency),
		"status":       string(job.Status),
		"quote_count":  float64(job.QuoteCount),
		"created_at":   job.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		"created_ts":   float64(job.CreatedAt.Unix()),
	}
	if job.Budget != nil {
		doc["budget"] = *job.Budget
	}
	if job.Latitude != nil && job.Longitude != nil {
		doc["lat"] = *job.Latitude
		doc["lng"] = *job.Longitude
	}
	return doc
}

func TradespersonIndexObject(user *models.User) map[string]any {
	doc := map[string]any{
		"objectID":      user.ID,
		"name":          user.Name,
		"service_areas": user.ServiceAreas,
		"specialties":   user.GetSpecialties(),
		"tier":          string(user.Tier()),
	}
	if user.HourlyRate != nil {
		doc["hourly_rate"] = *user.HourlyRate
	}
	return doc
}
