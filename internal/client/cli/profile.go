package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/skinkeeper/internal/client/client"
	"github.com/dmitrijs2005/skinkeeper/internal/client/session"
	"github.com/dmitrijs2005/skinkeeper/internal/models"
)

const setProfileUsage = `Usage: setprofile key=value ...
  gender=female|male|non_binary|undisclosed
  age=30
  skinType=oily|dry|combination|normal|sensitive
  concerns=acne,redness       (empty value sets no concerns)
  allergies=nuts,lanolin
  preferences=vegan,fragrance_free
  extra.<key>=value           (empty value removes the key)
  clear=gender,age,skinType`

// requireUser resolves the current user and the session to act under.
// It returns a nil user after telling the user to log in.
func (a *App) requireUser(ctx context.Context) (*models.User, session.Session, error) {
	u, err := a.currentUser(ctx)
	if err != nil {
		return nil, session.Session{}, err
	}
	if u == nil {
		fmt.Fprintln(a.out, "not logged in")
		return nil, session.Session{}, nil
	}
	s, err := a.authService.Session(ctx)
	if err != nil {
		return nil, session.Session{}, err
	}
	return u, s, nil
}

func (a *App) Profile(ctx context.Context) error {
	u, s, err := a.requireUser(ctx)
	if err != nil || u == nil {
		return err
	}

	view, err := a.profiles.ReadProfile(ctx, s, u.ID)
	if err != nil {
		return err
	}
	a.printProfile(view.ProfileCompleted, view.Profile)
	return nil
}

func (a *App) SetProfile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, setProfileUsage)
		return nil
	}
	patch, err := parsePatch(args)
	if err != nil {
		return err
	}

	u, s, err := a.requireUser(ctx)
	if err != nil || u == nil {
		return err
	}

	updated, err := a.profiles.WriteProfile(ctx, s, u.ID, patch)
	if err != nil {
		return err
	}
	a.user = updated
	fmt.Fprintln(a.out, "Profile saved")
	a.printProfile(updated.ProfileCompleted, updated.Profile)
	return nil
}

func (a *App) Ingredients(ctx context.Context, args []string) error {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		var err error
		if name, err = getSimpleText(a.reader, "Enter product name", a.out); err != nil {
			return err
		}
	}

	u, s, err := a.requireUser(ctx)
	if err != nil || u == nil {
		return err
	}

	res, err := a.ingredients.FindIngredients(ctx, s.AccessToken, name)
	if err != nil {
		return err
	}
	if len(res.Ingredients) == 0 {
		fmt.Fprintln(a.out, "No ingredients found")
		return nil
	}
	for _, ing := range res.Ingredients {
		if str, ok := ing.(string); ok {
			fmt.Fprintln(a.out, " -", str)
			continue
		}
		b, _ := json.Marshal(ing)
		fmt.Fprintln(a.out, " -", string(b))
	}
	return nil
}

func (a *App) printProfile(completed bool, p models.Profile) {
	orDash := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}
	age := "-"
	if p.Age > 0 {
		age = strconv.Itoa(p.Age)
	}

	fmt.Fprintf(a.out, "  status:      %s\n", completion(completed))
	fmt.Fprintf(a.out, "  gender:      %s\n", orDash(string(p.Gender)))
	fmt.Fprintf(a.out, "  age:         %s\n", age)
	fmt.Fprintf(a.out, "  skin type:   %s\n", orDash(string(p.SkinType)))
	fmt.Fprintf(a.out, "  concerns:    %s\n", orDash(joinTags(p.SkinConcerns)))
	fmt.Fprintf(a.out, "  allergies:   %s\n", orDash(joinTags(p.Allergies)))
	fmt.Fprintf(a.out, "  preferences: %s\n", orDash(joinTags(p.Preferences)))

	keys := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(a.out, "  %s: %s\n", k, p.Extra[k])
	}
}

func joinTags[T ~string](tags []T) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

// parsePatch turns key=value arguments into a patch. Values are not
// validated here beyond their syntax.
func parsePatch(args []string) (models.Patch, error) {
	var p models.Patch
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return models.Patch{}, fmt.Errorf("%w: expected key=value, got %q", client.ErrValidation, arg)
		}
		value = strings.TrimSpace(value)

		switch key = strings.TrimSpace(key); {
		case key == "gender":
			g := models.Gender(value)
			p.Gender = &g
		case key == "age":
			n, err := strconv.Atoi(value)
			if err != nil {
				return models.Patch{}, fmt.Errorf("%w: age must be a number", client.ErrValidation)
			}
			p.Age = &n
		case key == "skinType":
			st := models.SkinType(value)
			p.SkinType = &st
		case key == "concerns":
			c := splitList[models.Concern](value)
			p.SkinConcerns = &c
		case key == "allergies":
			al := splitList[string](value)
			p.Allergies = &al
		case key == "preferences":
			pr := splitList[models.Preference](value)
			p.Preferences = &pr
		case key == "clear":
			p.Clear = append(p.Clear, splitList[string](value)...)
		case strings.HasPrefix(key, "extra."):
			if p.Extra == nil {
				p.Extra = make(map[string]string)
			}
			p.Extra[strings.TrimPrefix(key, "extra.")] = value
		default:
			return models.Patch{}, fmt.Errorf("%w: unknown field %q", client.ErrValidation, key)
		}
	}
	return p, nil
}

func splitList[T ~string](v string) []T {
	out := []T{}
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, T(item))
		}
	}
	return out
}
