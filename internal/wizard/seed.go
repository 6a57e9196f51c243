package wizard

import (
	"net/url"
	"path"
	"strings"

	"github.com/noah-isme/edu-crm-api/internal/models"
)

// Seed is the source a wizard is populated from. Profile wins over Enquiry
// when both are present.
type Seed struct {
	Profile *models.DetailedProfile
	Enquiry *models.Enquiry
}

// ProfileID returns the identity of the edited profile, if any.
func (s Seed) ProfileID() string {
	if s.Profile != nil {
		return s.Profile.ID
	}
	return ""
}

// EnquiryID returns the enquiry the resulting profile belongs to.
func (s Seed) EnquiryID() string {
	if s.Profile != nil && s.Profile.EnquiryID != "" {
		return s.Profile.EnquiryID
	}
	if s.Enquiry != nil {
		return s.Enquiry.ID
	}
	return ""
}

// BuildDraft derives the initial draft and staging entries from seed. The
// result depends only on seed.
func BuildDraft(seed Seed) (models.ProfileData, *StagingArea) {
	staging := NewStagingArea()

	switch {
	case seed.Profile != nil:
		data := seed.Profile.ProfileData.Clone()
		for _, field := range models.DocumentFields {
			stored := strings.TrimSpace(seed.Profile.Document(field))
			if stored == "" {
				data.SetDocument(field, "")
				continue
			}
			staging.entries[field] = Persisted(stored)
			data.SetDocument(field, DisplayNameFromURL(stored))
		}
		return data.Clone(), staging
	case seed.Enquiry != nil:
		data := models.ProfileData{}
		data.CurrentEducation.Level = seed.Enquiry.CurrentEducationLevel
		data.ConfirmedServices = append([]string{}, seed.Enquiry.InterestedServices...)
		data.EnquiryStatus = seed.Enquiry.EnquiryStatus
		return data.Clone(), staging
	default:
		return models.ProfileData{}.Clone(), staging
	}
}

// DisplayNameFromURL turns a durable document URL into the original file
// name. Object names are "<field>_<unix millis>_<name>"; values that are not
// http(s) URLs are returned unchanged.
func DisplayNameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Path == "" {
		return raw
	}
	base := path.Base(u.EscapedPath())
	if decoded, err := url.PathUnescape(base); err == nil {
		base = decoded
	}
	return stripObjectPrefix(base)
}

func stripObjectPrefix(name string) string {
	for _, field := range models.DocumentFields {
		rest, ok := strings.CutPrefix(name, string(field)+"_")
		if !ok {
			continue
		}
		stamp, file, ok := strings.Cut(rest, "_")
		if ok && stamp != "" && file != "" && allDigits(stamp) {
			return file
		}
	}
	return name
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
