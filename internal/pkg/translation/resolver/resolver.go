// Package resolver computes the set of languages a message must be made
// available in, from a snapshot of the conversation's participant profiles.
package resolver

import (
	"sort"

	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
)

// DefaultLanguage is used when a profile row carries no system language.
const DefaultLanguage = "en"

// Resolver derives required language sets. A zero value uses
// DefaultLanguage as the fallback base language.
type Resolver struct {
	Default string
}

func New(defaultLanguage string) *Resolver {
	if defaultLanguage == "" {
		defaultLanguage = DefaultLanguage
	}
	return &Resolver{Default: defaultLanguage}
}

func (r *Resolver) defaultLang() string {
	if r == nil || r.Default == "" {
		return DefaultLanguage
	}
	return r.Default
}

// RequiredLanguages returns the sorted set of target languages for a message
// written in sourceLanguage, given the membership snapshot taken at dispatch
// time. Rules:
//   - every participant's system language is always included, independent of
//     the auto-translate flag (a reader must always get their base language);
//   - with auto-translate on, the regional and custom destination languages
//     are added when their respective flags are set;
//   - the source language is removed (no self-translation).
//
// An empty result is a valid "nothing to do" outcome, not an error.
func (r *Resolver) RequiredLanguages(profiles []domain.ParticipantLanguageProfile, sourceLanguage string) []string {
	source := domain.NormalizeLanguageCode(sourceLanguage)
	set := make(map[string]struct{})

	for _, p := range profiles {
		if !p.IsActive {
			continue
		}
		set[p.SystemLanguageOrDefault(r.defaultLang())] = struct{}{}

		if !p.AutoTranslateEnabled {
			continue
		}
		if p.TranslateToRegionalLanguage {
			if lang := domain.NormalizeLanguageCode(p.RegionalLanguage); lang != "" {
				set[lang] = struct{}{}
			}
		}
		if p.UseCustomDestination {
			if lang := domain.NormalizeLanguageCode(p.CustomDestinationLanguage); lang != "" {
				set[lang] = struct{}{}
			}
		}
	}

	delete(set, source)

	out := make([]string, 0, len(set))
	for lang := range set {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// PreferredLanguage resolves the single language a participant reads in,
// applying the same precedence the distribution layer selects variants by.
func (r *Resolver) PreferredLanguage(p domain.ParticipantLanguageProfile) string {
	return p.ResolvedPreferredLanguage(r.defaultLang())
}
