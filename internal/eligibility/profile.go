package eligibility

import (
	"fmt"
	"sort"

	"github.com/Dolphinator7/airtable-automation/internal/applicant"

	"github.com/mitchellh/mapstructure"
)

// Profile is the subset of the compressed document the rules look at.
type Profile struct {
	// Years counts experience entries with a company. It is an entry count,
	// not tenure.
	Years         int
	WorkedTier1   bool
	PreferredRate float64
	Availability  float64
	Location      string
	HasLocation   bool
}

type personalInput struct {
	Location *string `mapstructure:"Location"`
}

type experienceInput struct {
	Company *string `mapstructure:"Company"`
}

type salaryInput struct {
	PreferredRate *float64 `mapstructure:"Preferred Rate"`
	Availability  *float64 `mapstructure:"Availability (hrs/wk)"`
}

// NewProfile extracts the rule inputs from doc. Fields of an unexpected
// type are reported as errors.
func NewProfile(doc *applicant.Document, tier1 []string) (*Profile, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is required")
	}

	tier1Set := newSet(tier1)
	profile := &Profile{
		PreferredRate: absentPreferredRate,
		Availability:  absentAvailability,
	}

	for idx, entry := range doc.Experience {
		var exp experienceInput
		if err := decode(entry, &exp); err != nil {
			return nil, fmt.Errorf("experience entry %d: %w", idx, err)
		}
		if exp.Company == nil || *exp.Company == "" {
			continue
		}
		profile.Years++
		if tier1Set.has(*exp.Company) {
			profile.WorkedTier1 = true
		}
	}

	var salary salaryInput
	if err := decode(doc.Salary, &salary); err != nil {
		return nil, fmt.Errorf("salary: %w", err)
	}
	if salary.PreferredRate != nil {
		profile.PreferredRate = *salary.PreferredRate
	}
	if salary.Availability != nil {
		profile.Availability = *salary.Availability
	}

	var personal personalInput
	if err := decode(doc.Personal, &personal); err != nil {
		return nil, fmt.Errorf("personal: %w", err)
	}
	if personal.Location != nil {
		profile.Location = *personal.Location
		profile.HasLocation = true
	}

	return profile, nil
}

func decode(input map[string]any, target any) error {
	if len(input) == 0 {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

type set map[string]struct{}

func newSet(items []string) set {
	s := make(set, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

func (s set) has(item string) bool {
	_, ok := s[item]
	return ok
}

func (s set) sorted() []string {
	items := make([]string, 0, len(s))
	for item := range s {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}
