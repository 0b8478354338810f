package models

type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderNonBinary   Gender = "non_binary"
	GenderUndisclosed Gender = "undisclosed"
)

type SkinType string

const (
	SkinOily        SkinType = "oily"
	SkinDry         SkinType = "dry"
	SkinCombination SkinType = "combination"
	SkinNormal      SkinType = "normal"
	SkinSensitive   SkinType = "sensitive"
)

// Concern is a skin concern tag.
type Concern string

const (
	ConcernAcne         Concern = "acne"
	ConcernAging        Concern = "aging"
	ConcernPigmentation Concern = "pigmentation"
	ConcernRedness      Concern = "redness"
	ConcernDryness      Concern = "dryness"
	ConcernOiliness     Concern = "oiliness"
	ConcernSensitivity  Concern = "sensitivity"
	ConcernPores        Concern = "pores"
	ConcernDullness     Concern = "dullness"
	ConcernDarkCircles  Concern = "dark_circles"
)

// Preference is a product preference tag.
type Preference string

const (
	PrefOrganic        Preference = "organic"
	PrefVegan          Preference = "vegan"
	PrefCrueltyFree    Preference = "cruelty_free"
	PrefFragranceFree  Preference = "fragrance_free"
	PrefParabenFree    Preference = "paraben_free"
	PrefHypoallergenic Preference = "hypoallergenic"
	PrefAlcoholFree    Preference = "alcohol_free"
)

var genders = map[Gender]struct{}{
	GenderMale: {}, GenderFemale: {}, GenderNonBinary: {}, GenderUndisclosed: {},
}

var skinTypes = map[SkinType]struct{}{
	SkinOily: {}, SkinDry: {}, SkinCombination: {}, SkinNormal: {}, SkinSensitive: {},
}

var concerns = map[Concern]struct{}{
	ConcernAcne: {}, ConcernAging: {}, ConcernPigmentation: {}, ConcernRedness: {},
	ConcernDryness: {}, ConcernOiliness: {}, ConcernSensitivity: {}, ConcernPores: {},
	ConcernDullness: {}, ConcernDarkCircles: {},
}

var preferences = map[Preference]struct{}{
	PrefOrganic: {}, PrefVegan: {}, PrefCrueltyFree: {}, PrefFragranceFree: {},
	PrefParabenFree: {}, PrefHypoallergenic: {}, PrefAlcoholFree: {},
}

func (g Gender) Valid() bool {
	_, ok := genders[g]
	return ok
}

func (s SkinType) Valid() bool {
	_, ok := skinTypes[s]
	return ok
}

func (c Concern) Valid() bool {
	_, ok := concerns[c]
	return ok
}

func (p Preference) Valid() bool {
	_, ok := preferences[p]
	return ok
}
