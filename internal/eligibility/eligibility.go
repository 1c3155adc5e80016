// Package eligibility decides whether an applicant qualifies for the
// shortlist based on the compressed document alone.
package eligibility

import (
	"strconv"
	"strings"

	"github.com/Dolphinator7/airtable-automation/internal/applicant"
)

// Reason is recorded on every shortlisted lead, whichever rule let it through.
const Reason = "Tier1 Experience + Comp & Availability + Location match"

const (
	// Stand-ins for absent salary fields. An absent rate never qualifies.
	absentPreferredRate = 999
	absentAvailability  = 0
)

// Criteria configures the rules.
type Criteria struct {
	MinYears         int      `mapstructure:"min-years"`
	MaxPreferredRate float64  `mapstructure:"max-preferred-rate"`
	MinAvailability  float64  `mapstructure:"min-availability"`
	Tier1Companies   []string `mapstructure:"tier1-companies"`
	Locations        []string `mapstructure:"locations"`
}

// DefaultCriteria returns the built-in thresholds and allow-lists.
func DefaultCriteria() Criteria {
	return Criteria{
		MinYears:         4,
		MaxPreferredRate: 100,
		MinAvailability:  20,
		Tier1Companies:   []string{"Google", "Meta", "OpenAI"},
		Locations:        []string{"US", "Canada", "UK", "Germany", "India"},
	}
}

// Rule is a single eligibility predicate.
type Rule interface {
	Name() string
	Check(p *Profile) bool
	Status() Status
}

// Status describes a rule for logging.
type Status struct {
	Name    string
	Details map[string]string
}

// Result is the outcome of evaluating one applicant.
type Result struct {
	Qualified bool
	// FailedRule is the name of the first rule that rejected the applicant.
	FailedRule string
	Profile    *Profile
}

// Evaluator runs the rules in order.
type Evaluator struct {
	criteria Criteria
	rules    []Rule
}

func New(c Criteria) *Evaluator {
	return &Evaluator{
		criteria: c,
		rules: []Rule{
			&experienceRule{minYears: c.MinYears},
			&rateRule{max: c.MaxPreferredRate},
			&availabilityRule{min: c.MinAvailability},
			&locationRule{allowed: newSet(c.Locations)},
		},
	}
}

// Evaluate builds the applicant profile from doc and checks every rule.
func (e *Evaluator) Evaluate(doc *applicant.Document) (*Result, error) {
	profile, err := NewProfile(doc, e.criteria.Tier1Companies)
	if err != nil {
		return nil, err
	}

	for _, rule := range e.rules {
		if !rule.Check(profile) {
			return &Result{Qualified: false, FailedRule: rule.Name(), Profile: profile}, nil
		}
	}

	return &Result{Qualified: true, Profile: profile}, nil
}

// Describe returns status entries for the configured rules.
func (e *Evaluator) Describe() []Status {
	statuses := make([]Status, 0, len(e.rules))
	for _, rule := range e.rules {
		statuses = append(statuses, rule.Status())
	}
	return statuses
}

type experienceRule struct {
	minYears int
}

func (r *experienceRule) Name() string { return "experience" }

func (r *experienceRule) Check(p *Profile) bool {
	return p.Years >= r.minYears || p.WorkedTier1
}

func (r *experienceRule) Status() Status {
	return Status{Name: r.Name(), Details: map[string]string{"min_years": strconv.Itoa(r.minYears)}}
}

type rateRule struct {
	max float64
}

func (r *rateRule) Name() string { return "preferred_rate" }

func (r *rateRule) Check(p *Profile) bool { return p.PreferredRate <= r.max }

func (r *rateRule) Status() Status {
	return Status{Name: r.Name(), Details: map[string]string{"max": strconv.FormatFloat(r.max, 'f', -1, 64)}}
}

type availabilityRule struct {
	min float64
}

func (r *availabilityRule) Name() string { return "availability" }

func (r *availabilityRule) Check(p *Profile) bool { return p.Availability >= r.min }

func (r *availabilityRule) Status() Status {
	return Status{Name: r.Name(), Details: map[string]string{"min": strconv.FormatFloat(r.min, 'f', -1, 64)}}
}

type locationRule struct {
	allowed set
}

func (r *locationRule) Name() string { return "location" }

func (r *locationRule) Check(p *Profile) bool {
	return p.HasLocation && r.allowed.has(p.Location)
}

func (r *locationRule) Status() Status {
	return Status{Name: r.Name(), Details: map[string]string{"allowed": strings.Join(r.allowed.sorted(), ",")}}
}
