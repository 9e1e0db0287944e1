package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformX         Platform = "x"
	PlatformInstagram Platform = "instagram"
)

func KnownPlatforms() []Platform {
	return []Platform{PlatformFacebook, PlatformX, PlatformInstagram}
}

func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PlatformFacebook, PlatformX, PlatformInstagram:
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// PlatformSet holds the draft's target platforms. Membership only, no order.
type PlatformSet map[Platform]struct{}

// Toggle flips membership: present is removed, absent is added.
func (s PlatformSet) Toggle(p Platform) {
	if _, ok := s[p]; ok {
		delete(s, p)
		return
	}
	s[p] = struct{}{}
}

func (s PlatformSet) Contains(p Platform) bool {
	_, ok := s[p]
	return ok
}

// Slice returns the members sorted for stable serialization; callers must
// not read meaning into the order.
func (s PlatformSet) Slice() []Platform {
	out := make([]Platform, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type Format string

const (
	FormatText      Format = "text"
	FormatImageText Format = "image-text"
	FormatVideo     Format = "video"
)

func KnownFormats() []Format {
	return []Format{FormatText, FormatImageText, FormatVideo}
}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatText, FormatImageText, FormatVideo:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Draft is the unit of work handed from composition to review. It is built
// only by a successful blueprint submit and is read-only afterwards.
type Draft struct {
	ID            uuid.UUID  `json:"draft_id"`
	CampaignName  string     `json:"campaign_name"`
	ContentIdea   string     `json:"content_idea"`
	ReferenceFile string     `json:"reference_file,omitempty"` // display name only, no content
	Platforms     []Platform `json:"platforms"`
	Format        Format     `json:"format"`
	ContentText   string     `json:"content_text"`
	ImageURL      string     `json:"image_url"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Reviewable reports whether the draft carries anything to decide on.
func (d *Draft) Reviewable() bool {
	return d.ContentText != "" || d.ImageURL != ""
}

// PlatformList joins the target platforms for the approval payload.
func (d *Draft) PlatformList() string {
	parts := make([]string, len(d.Platforms))
	for i, p := range d.Platforms {
		parts[i] = string(p)
	}
	return strings.Join(parts, ",")
}

// ValidationError reports a blueprint field that failed its constraint.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// BlueprintInput carries the raw composer fields before validation.
type BlueprintInput struct {
	CampaignName  string
	ContentIdea   string
	ReferenceFile string
	Platforms     PlatformSet
	Format        Format
}

// Validate checks every composer constraint and returns the first failure.
// A passing Format is rewritten to its canonical spelling.
func (in *BlueprintInput) Validate() error {
	if strings.TrimSpace(in.CampaignName) == "" {
		return &ValidationError{Field: "campaign_name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.ContentIdea) == "" {
		return &ValidationError{Field: "content_idea", Reason: "must not be empty"}
	}
	if len(in.Platforms) == 0 {
		return &ValidationError{Field: "platforms", Reason: "select at least one platform"}
	}
	if in.Format == "" {
		return &ValidationError{Field: "format", Reason: "must be set"}
	}
	format, err := ParseFormat(string(in.Format))
	if err != nil {
		return &ValidationError{Field: "format", Reason: err.Error()}
	}
	in.Format = format
	return nil
}
