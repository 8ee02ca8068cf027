// Package resolver contains tests for required-language derivation.
package resolver

import (
	"reflect"
	"testing"

	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
)

func profile(system string, mut ...func(*domain.ParticipantLanguageProfile)) domain.ParticipantLanguageProfile {
	p := domain.ParticipantLanguageProfile{
		ParticipantID:             system + "-user",
		IsActive:                  true,
		SystemLanguage:            system,
		TranslateToSystemLanguage: true,
	}
	for _, m := range mut {
		m(&p)
	}
	return p
}

// ---------------------------------------------------------------------------
// RequiredLanguages
// ---------------------------------------------------------------------------

func TestRequiredLanguages_SystemLanguageAlwaysIncluded(t *testing.T) {
	r := New("")
	profiles := []domain.ParticipantLanguageProfile{
		profile("fr", func(p *domain.ParticipantLanguageProfile) {
			p.AutoTranslateEnabled = false
		}),
		profile("de", func(p *domain.ParticipantLanguageProfile) {
			p.AutoTranslateEnabled = false
		}),
	}

	got := r.RequiredLanguages(profiles, "en")
	want := []string{"de", "fr"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRequiredLanguages_SuppressesOptionalTargetsWithoutAutoTranslate(t *testing.T) {
	r := New("")
	profiles := []domain.ParticipantLanguageProfile{
		profile("fr", func(p *domain.ParticipantLanguageProfile) {
			p.AutoTranslateEnabled = false
			p.RegionalLanguage = "br"
			p.TranslateToRegionalLanguage = true
			p.CustomDestinationLanguage = "oc"
			p.UseCustomDestination = true
		}),
	}

	got := r.RequiredLanguages(profiles, "en")
	want := []string{"fr"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v: regional/custom must not leak when auto-translate is off", got, want)
	}
}

func TestRequiredLanguages_IncludesRegionalAndCustomWhenEnabled(t *testing.T) {
	r := New("")
	profiles := []domain.ParticipantLanguageProfile{
		profile("fr", func(p *domain.ParticipantLanguageProfile) {
			p.AutoTranslateEnabled = true
			p.RegionalLanguage = "br"
			p.TranslateToRegionalLanguage = true
			p.CustomDestinationLanguage = "oc"
			p.UseCustomDestination = true
		}),
	}

	got := r.RequiredLanguages(profiles, "en")
	want := []string{"br", "fr", "oc"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRequiredLanguages_NeverContainsSource(t *testing.T) {
	r := New("")
	profiles := []domain.ParticipantLanguageProfile{
		profile("fr"),
		profile("en"),
	}

	got := r.RequiredLanguages(profiles, "fr")
	for _, lang := range got {
		if lang == "fr" {
			t.Fatalf("required set %v contains the source language", got)
		}
	}
}

func TestRequiredLanguages_SingleParticipantSameLanguageIsEmpty(t *testing.T) {
	r := New("")
	profiles := []domain.ParticipantLanguageProfile{profile("es")}

	got := r.RequiredLanguages(profiles, "es")
	if len(got) != 0 {
		t.Errorf("got %v, want empty set", got)
	}
}

func TestRequiredLanguages_MissingSystemLanguageFallsBackToDefault(t *testing.T) {
	r := New("pt")
	profiles := []domain.ParticipantLanguageProfile{
		profile("", func(p *domain.ParticipantLanguageProfile) {
			p.SystemLanguage = ""
		}),
	}

	got := r.RequiredLanguages(profiles, "en")
	want := []string{"pt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRequiredLanguages_SkipsInactiveParticipants(t *testing.T) {
	r := New("")
	profiles := []domain.ParticipantLanguageProfile{
		profile("fr"),
		profile("de", func(p *domain.ParticipantLanguageProfile) {
			p.IsActive = false
		}),
	}

	got := r.RequiredLanguages(profiles, "en")
	want := []string{"fr"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRequiredLanguages_MixedRoster(t *testing.T) {
	// fr reader, en reader with regional zh, es reader with custom en.
	r := New("")
	profiles := []domain.ParticipantLanguageProfile{
		profile("fr"),
		profile("en", func(p *domain.ParticipantLanguageProfile) {
			p.AutoTranslateEnabled = true
			p.RegionalLanguage = "zh"
			p.TranslateToRegionalLanguage = true
		}),
		profile("es", func(p *domain.ParticipantLanguageProfile) {
			p.AutoTranslateEnabled = true
			p.CustomDestinationLanguage = "en"
			p.UseCustomDestination = true
		}),
	}

	got := r.RequiredLanguages(profiles, "fr")
	want := []string{"en", "es", "zh"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRequiredLanguages_CaseInsensitiveCodes(t *testing.T) {
	r := New("")
	profiles := []domain.ParticipantLanguageProfile{
		profile("FR"),
		profile("fr"),
	}

	got := r.RequiredLanguages(profiles, "en")
	want := []string{"fr"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v: codes must collapse case-insensitively", got, want)
	}
}

// ---------------------------------------------------------------------------
// PreferredLanguage
// ---------------------------------------------------------------------------

func TestPreferredLanguage_Precedence(t *testing.T) {
	r := New("en")

	cases := []struct {
		name string
		p    domain.ParticipantLanguageProfile
		want string
	}{
		{
			name: "custom destination wins",
			p: profile("fr", func(p *domain.ParticipantLanguageProfile) {
				p.CustomDestinationLanguage = "it"
				p.UseCustomDestination = true
			}),
			want: "it",
		},
		{
			name: "system language when no custom",
			p:    profile("fr"),
			want: "fr",
		},
		{
			name: "regional when system flag off",
			p: profile("fr", func(p *domain.ParticipantLanguageProfile) {
				p.TranslateToSystemLanguage = false
				p.RegionalLanguage = "br"
				p.TranslateToRegionalLanguage = true
			}),
			want: "br",
		},
		{
			name: "system as final default",
			p: profile("fr", func(p *domain.ParticipantLanguageProfile) {
				p.TranslateToSystemLanguage = false
			}),
			want: "fr",
		},
		{
			name: "configured default when profile is empty",
			p: domain.ParticipantLanguageProfile{
				IsActive:                  true,
				TranslateToSystemLanguage: true,
			},
			want: "en",
		},
	}

	for _, tc := range cases {
		if got := r.PreferredLanguage(tc.p); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}
