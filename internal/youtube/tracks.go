package youtube

import (
	"strings"

	"golang.org/x/text/language"
)

// needsPoToken reports tracks whose URLs require a proof-of-origin token.
// They return empty bodies without one.
func needsPoToken(t captionTrack) bool {
	return strings.Contains(t.BaseURL, "&exp=xpe")
}

// pickTrack selects a caption track. Manually authored tracks in a preferred
// language win, then generated tracks in a preferred language, then any
// English track, then the first usable track.
func pickTrack(tracks []captionTrack, languages []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}

	prefs := parseTags(languages)
	var manual []captionTrack
	for _, t := range usable {
		if t.Kind != "asr" {
			manual = append(manual, t)
		}
	}
	if t, ok := matchTrack(manual, prefs); ok {
		return t, true
	}
	if t, ok := matchTrack(usable, prefs); ok {
		return t, true
	}
	for _, t := range usable {
		if strings.HasPrefix(strings.ToLower(t.LanguageCode), "en") {
			return t, true
		}
	}
	return usable[0], true
}

func matchTrack(tracks []captionTrack, prefs []language.Tag) (captionTrack, bool) {
	if len(tracks) == 0 || len(prefs) == 0 {
		return captionTrack{}, false
	}
	supported := make([]language.Tag, len(tracks))
	for i, t := range tracks {
		tag, err := language.Parse(t.LanguageCode)
		if err != nil {
			tag = language.Und
		}
		supported[i] = tag
	}
	_, idx, conf := language.NewMatcher(supported).Match(prefs...)
	if conf < language.High || idx < 0 || idx >= len(tracks) {
		return captionTrack{}, false
	}
	return tracks[idx], true
}

func parseTags(languages []string) []language.Tag {
	tags := make([]language.Tag, 0, len(languages))
	for _, code := range languages {
		tag, err := language.Parse(strings.TrimSpace(code))
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

// languageRank orders a caption language code by preference; lower is better
// and len(languages) means unmatched.
func languageRank(code string, languages []string) int {
	prefs := parseTags(languages)
	tag, err := language.Parse(code)
	if err != nil {
		return len(prefs)
	}
	for i, pref := range prefs {
		if _, _, conf := language.NewMatcher([]language.Tag{tag}).Match(pref); conf >= language.High {
			return i
		}
	}
	return len(prefs)
}
