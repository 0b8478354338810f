package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/dmitrijs2005/skinkeeper/internal/client/client"
	"github.com/dmitrijs2005/skinkeeper/internal/client/session"
	"github.com/dmitrijs2005/skinkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfiles struct {
	readOut *models.ProfileView
	readErr error

	writeOut *models.User
	writeErr error

	gotSession session.Session
	gotUser    string
	gotPatch   *models.Patch
}

func (f *fakeProfiles) ReadProfile(_ context.Context, s session.Session, userID string) (*models.ProfileView, error) {
	f.gotSession, f.gotUser = s, userID
	return f.readOut, f.readErr
}

func (f *fakeProfiles) WriteProfile(_ context.Context, s session.Session, userID string, p models.Patch) (*models.User, error) {
	f.gotSession, f.gotUser, f.gotPatch = s, userID, &p
	return f.writeOut, f.writeErr
}

type fakeFinder struct {
	out     *client.IngredientsResult
	err     error
	gotTok  string
	gotName string
}

func (f *fakeFinder) FindIngredients(_ context.Context, token, name string) (*client.IngredientsResult, error) {
	f.gotTok, f.gotName = token, name
	return f.out, f.err
}

var sess = session.Session{Key: "cli", AccessToken: "tok"}

func loggedInApp(t *testing.T) (*App, *fakeProfiles, *fakeFinder, *bytes.Buffer) {
	t.Helper()
	f := &fakeAuth{current: ann, sess: sess}
	a, out := newTestApp(f)
	p, fi := &fakeProfiles{}, &fakeFinder{}
	a.profiles, a.ingredients = p, fi
	return a, p, fi, out
}

func TestProfile_Prints(t *testing.T) {
	a, p, _, out := loggedInApp(t)
	p.readOut = &models.ProfileView{
		UserID:           "u1",
		ProfileCompleted: true,
		Profile: models.Profile{
			Gender:       models.GenderFemale,
			Age:          30,
			SkinType:     models.SkinOily,
			SkinConcerns: []models.Concern{models.ConcernAcne, models.ConcernRedness},
			Allergies:    []string{},
			Preferences:  []models.Preference{models.PrefVegan},
			Extra:        map[string]string{"climate": "humid"},
		},
	}

	require.NoError(t, a.Profile(context.Background()))
	assert.Equal(t, "u1", p.gotUser)
	assert.Equal(t, sess, p.gotSession)

	s := out.String()
	assert.Contains(t, s, "status:      profile complete")
	assert.Contains(t, s, "age:         30")
	assert.Contains(t, s, "concerns:    acne, redness")
	assert.Contains(t, s, "allergies:   -")
	assert.Contains(t, s, "climate: humid")
}

func TestProfile_NotLoggedIn(t *testing.T) {
	a, out := newTestApp(&fakeAuth{})
	p := &fakeProfiles{}
	a.profiles = p

	require.NoError(t, a.Profile(context.Background()))
	assert.Equal(t, "not logged in\n", out.String())
	assert.Empty(t, p.gotUser)
}

func TestProfile_Error(t *testing.T) {
	a, p, _, _ := loggedInApp(t)
	p.readErr = client.ErrNotFound

	assert.ErrorIs(t, a.Profile(context.Background()), client.ErrNotFound)
}

func TestSetProfile(t *testing.T) {
	a, p, _, out := loggedInApp(t)
	p.writeOut = &models.User{ID: "u1", Username: "ann", ProfileCompleted: false, Profile: models.Profile{Age: 31}}

	require.NoError(t, a.SetProfile(context.Background(), []string{"age=31"}))
	require.NotNil(t, p.gotPatch)
	assert.Equal(t, 31, *p.gotPatch.Age)
	assert.Equal(t, "u1", p.gotUser)
	assert.Contains(t, out.String(), "Profile saved")
	assert.Equal(t, 31, a.user.Age)
}

func TestSetProfile_UsageAndParseErrors(t *testing.T) {
	a, p, _, out := loggedInApp(t)

	require.NoError(t, a.SetProfile(context.Background(), nil))
	assert.Contains(t, out.String(), "Usage: setprofile")

	assert.ErrorIs(t, a.SetProfile(context.Background(), []string{"age"}), client.ErrValidation)
	assert.ErrorIs(t, a.SetProfile(context.Background(), []string{"age=old"}), client.ErrValidation)
	assert.ErrorIs(t, a.SetProfile(context.Background(), []string{"colour=blue"}), client.ErrValidation)
	assert.Nil(t, p.gotPatch)
}

func TestParsePatch(t *testing.T) {
	p, err := parsePatch([]string{
		"gender=female",
		"skinType=dry",
		"concerns=acne, aging",
		"allergies=",
		"preferences=vegan",
		"extra.climate=humid",
		"extra.note=",
		"clear=age",
	})
	require.NoError(t, err)

	require.NotNil(t, p.Gender)
	assert.Equal(t, models.GenderFemale, *p.Gender)
	assert.Equal(t, models.SkinDry, *p.SkinType)
	assert.Equal(t, []models.Concern{models.ConcernAcne, models.ConcernAging}, *p.SkinConcerns)
	require.NotNil(t, p.Allergies)
	assert.Empty(t, *p.Allergies)
	assert.Equal(t, []models.Preference{models.PrefVegan}, *p.Preferences)
	assert.Equal(t, map[string]string{"climate": "humid", "note": ""}, p.Extra)
	assert.Equal(t, []string{"age"}, p.Clear)
	assert.Nil(t, p.Age)
}

func TestIngredients(t *testing.T) {
	a, _, fi, out := loggedInApp(t)
	fi.out = &client.IngredientsResult{Ingredients: []any{"aqua", map[string]any{"name": "glycerin"}}}

	require.NoError(t, a.Ingredients(context.Background(), []string{"rose", "water"}))
	assert.Equal(t, "tok", fi.gotTok)
	assert.Equal(t, "rose water", fi.gotName)
	assert.Contains(t, out.String(), " - aqua\n")
	assert.Contains(t, out.String(), ` - {"name":"glycerin"}`)
}

func TestIngredients_PromptsAndEmpty(t *testing.T) {
	a, _, fi, out := loggedInApp(t)
	fi.out = &client.IngredientsResult{}
	stubInputs(t, []string{"night cream"}, nil)

	require.NoError(t, a.Ingredients(context.Background(), nil))
	assert.Equal(t, "night cream", fi.gotName)
	assert.Contains(t, out.String(), "No ingredients found")
}

func TestIngredients_Error(t *testing.T) {
	a, _, fi, _ := loggedInApp(t)
	fi.err = client.ErrUnavailable

	assert.ErrorIs(t, a.Ingredients(context.Background(), []string{"x"}), client.ErrUnavailable)
}
