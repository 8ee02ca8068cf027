package translation

// ParticipantLanguageProfile captures one conversation member's language
// preferences. Created when the participant joins; the engine reads a
// snapshot at dispatch time and never writes it back.
type ParticipantLanguageProfile struct {
	ConversationID             string `db:"conversation_id"`
	ParticipantID              string `db:"participant_id"`
	IsActive                   bool   `db:"is_active"`
	SystemLanguage             string `db:"system_language"`
	RegionalLanguage           string `db:"regional_language"`
	CustomDestinationLanguage  string `db:"custom_destination_language"`
	AutoTranslateEnabled       bool   `db:"auto_translate_enabled"`
	TranslateToSystemLanguage  bool   `db:"translate_to_system_language"`
	TranslateToRegionalLanguage bool  `db:"translate_to_regional"`
	UseCustomDestination       bool   `db:"use_custom_destination"`
}

// SystemLanguageOrDefault applies the configured default when a profile row
// is missing its base language.
func (p ParticipantLanguageProfile) SystemLanguageOrDefault(def string) string {
	if lang := NormalizeLanguageCode(p.SystemLanguage); lang != "" {
		return lang
	}
	return NormalizeLanguageCode(def)
}

// ResolvedPreferredLanguage is the single language this participant reads
// content in. Precedence: custom destination when enabled, then system
// language, then regional language, with system language as the final
// default.
func (p ParticipantLanguageProfile) ResolvedPreferredLanguage(def string) string {
	if p.UseCustomDestination {
		if lang := NormalizeLanguageCode(p.CustomDestinationLanguage); lang != "" {
			return lang
		}
	}
	if p.TranslateToSystemLanguage {
		return p.SystemLanguageOrDefault(def)
	}
	if p.TranslateToRegionalLanguage {
		if lang := NormalizeLanguageCode(p.RegionalLanguage); lang != "" {
			return lang
		}
	}
	return p.SystemLanguageOrDefault(def)
}
