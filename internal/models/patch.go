package models

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/skinkeeper/internal/common"
)

const (
	MinAge         = 1
	MaxAge         = 120
	MaxAllergies   = 50
	MaxAllergyLen  = 64
	MaxExtraKeys   = 20
	MaxExtraValLen = 256
)

// Field names accepted in Patch.Clear.
const (
	FieldGender   = "gender"
	FieldAge      = "age"
	FieldSkinType = "skinType"
)

var extraKeyPattern = regexp.MustCompile(`^[a-z0-9_]{1,32}$`)

// CompletionPolicy decides whether profileCompleted may go back to false.
type CompletionPolicy string

const (
	// PolicySticky never reverts a completed profile.
	PolicySticky CompletionPolicy = "sticky"
	// PolicyStrict reverts when a required scalar field is cleared.
	PolicyStrict CompletionPolicy = "strict"
)

func (p CompletionPolicy) Valid() bool {
	return p == PolicySticky || p == PolicyStrict
}

// Patch is a partial profile update. A nil field is left untouched; a
// non-nil pointer to an empty slice sets the empty set. Extra is merged key
// by key and an empty value removes the key. Clear resets the named scalar
// fields.
type Patch struct {
	Gender       *Gender           `json:"gender,omitempty"`
	Age          *int              `json:"age,omitempty"`
	SkinType     *SkinType         `json:"skinType,omitempty"`
	SkinConcerns *[]Concern        `json:"skinConcerns,omitempty"`
	Allergies    *[]string         `json:"allergies,omitempty"`
	Preferences  *[]Preference     `json:"preferences,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
	Clear        []string          `json:"clear,omitempty"`

	// extraClash is an extra key supplied more than once after normalization.
	extraClash string
}

// Complete reports whether the patch supplies every required attribute.
func (p *Patch) Complete() bool {
	return p.Gender != nil && p.Age != nil && p.SkinType != nil &&
		p.SkinConcerns != nil && p.Allergies != nil && p.Preferences != nil
}

// Normalize returns a copy with enum values and tags trimmed and
// lower-cased and sets de-duplicated and sorted.
func (p Patch) Normalize() Patch {
	out := p
	if p.Gender != nil {
		g := Gender(normTag(string(*p.Gender)))
		out.Gender = &g
	}
	if p.SkinType != nil {
		s := SkinType(normTag(string(*p.SkinType)))
		out.SkinType = &s
	}
	if p.SkinConcerns != nil {
		c := normSet(*p.SkinConcerns)
		out.SkinConcerns = &c
	}
	if p.Allergies != nil {
		a := normSet(*p.Allergies)
		out.Allergies = &a
	}
	if p.Preferences != nil {
		pr := normSet(*p.Preferences)
		out.Preferences = &pr
	}
	if p.Extra != nil {
		out.Extra = make(map[string]string, len(p.Extra))
		for k, v := range p.Extra {
			nk := normTag(k)
			if _, ok := out.Extra[nk]; ok && (out.extraClash == "" || nk < out.extraClash) {
				out.extraClash = nk
			}
			out.Extra[nk] = strings.TrimSpace(v)
		}
	}
	if p.Clear != nil {
		out.Clear = make([]string, 0, len(p.Clear))
		for _, f := range p.Clear {
			out.Clear = append(out.Clear, strings.TrimSpace(f))
		}
	}
	return out
}

// Validate checks a normalized patch.
func (p *Patch) Validate() error {
	if p.Gender != nil && !p.Gender.Valid() {
		return invalid("gender %q is not supported", *p.Gender)
	}
	if p.Age != nil && (*p.Age < MinAge || *p.Age > MaxAge) {
		return invalid("age must be between %d and %d", MinAge, MaxAge)
	}
	if p.SkinType != nil && !p.SkinType.Valid() {
		return invalid("skinType %q is not supported", *p.SkinType)
	}
	if p.SkinConcerns != nil {
		for _, c := range *p.SkinConcerns {
			if !c.Valid() {
				return invalid("skin concern %q is not supported", c)
			}
		}
	}
	if p.Preferences != nil {
		for _, pr := range *p.Preferences {
			if !pr.Valid() {
				return invalid("preference %q is not supported", pr)
			}
		}
	}
	if p.Allergies != nil {
		if len(*p.Allergies) > MaxAllergies {
			return invalid("at most %d allergies are allowed", MaxAllergies)
		}
		for _, a := range *p.Allergies {
			if n := utf8.RuneCountInString(a); n == 0 || n > MaxAllergyLen {
				return invalid("allergy must be 1-%d chars", MaxAllergyLen)
			}
		}
	}
	if p.extraClash != "" {
		return invalid("extra key %q is supplied more than once", p.extraClash)
	}
	if len(p.Extra) > MaxExtraKeys {
		return invalid("at most %d extra attributes are allowed", MaxExtraKeys)
	}
	for k, v := range p.Extra {
		if !extraKeyPattern.MatchString(k) {
			return invalid("extra key %q must match %s", k, extraKeyPattern)
		}
		if utf8.RuneCountInString(v) > MaxExtraValLen {
			return invalid("extra value for %q must be <= %d chars", k, MaxExtraValLen)
		}
	}
	for _, f := range p.Clear {
		switch f {
		case FieldGender:
			if p.Gender != nil {
				return invalid("gender is both set and cleared")
			}
		case FieldAge:
			if p.Age != nil {
				return invalid("age is both set and cleared")
			}
		case FieldSkinType:
			if p.SkinType != nil {
				return invalid("skinType is both set and cleared")
			}
		default:
			return invalid("field %q cannot be cleared", f)
		}
	}
	return nil
}

// CheckExtra reports common.ErrorValidation when merging p into u would leave
// more than MaxExtraKeys extra attributes on the record.
func (u *User) CheckExtra(p *Patch) error {
	n := len(u.Extra)
	for k, v := range p.Extra {
		_, had := u.Extra[k]
		switch {
		case v == "" && had:
			n--
		case v != "" && !had:
			n++
		}
	}
	if n > MaxExtraKeys {
		return invalid("at most %d extra attributes are allowed, the profile would have %d", MaxExtraKeys, n)
	}
	return nil
}

// Apply merges a validated patch into u. Only supplied fields change.
// UpdatedAt is set to now, or CreatedAt if now is earlier.
func (u *User) Apply(p *Patch, policy CompletionPolicy, now time.Time) {
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	if p.SkinType != nil {
		u.SkinType = *p.SkinType
	}
	if p.SkinConcerns != nil {
		u.SkinConcerns = slices.Clone(*p.SkinConcerns)
	}
	if p.Allergies != nil {
		u.Allergies = slices.Clone(*p.Allergies)
	}
	if p.Preferences != nil {
		u.Preferences = slices.Clone(*p.Preferences)
	}
	for k, v := range p.Extra {
		if v == "" {
			delete(u.Extra, k)
			continue
		}
		if u.Extra == nil {
			u.Extra = make(map[string]string)
		}
		u.Extra[k] = v
	}

	clearedRequired := false
	for _, f := range p.Clear {
		switch f {
		case FieldGender:
			u.Gender = ""
		case FieldAge:
			u.Age = 0
		case FieldSkinType:
			u.SkinType = ""
		}
		clearedRequired = true
	}

	switch {
	case p.Complete():
		u.ProfileCompleted = true
	case clearedRequired && policy == PolicyStrict:
		u.ProfileCompleted = false
	}

	u.Profile.EnsureSets()

	if now.Before(u.CreatedAt) {
		now = u.CreatedAt
	}
	u.UpdatedAt = now
}

// EnsureSets replaces nil sets with empty ones.
func (p *Profile) EnsureSets() {
	if p.SkinConcerns == nil {
		p.SkinConcerns = []Concern{}
	}
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
	if p.Preferences == nil {
		p.Preferences = []Preference{}
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, fmt.Sprintf(format, args...))
}

func normTag(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func normSet[T ~string](in []T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		out = append(out, T(normTag(string(v))))
	}
	slices.Sort(out)
	return slices.Compact(out)
}
