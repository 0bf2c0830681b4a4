package tts

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Catalog owns the voice list for the active language and the derived
// default selection. The list is recomputed wholesale on every language
// change; results from superseded loads are discarded by comparing load
// generations, so the last load the user initiated always wins regardless
// of response ordering.
type Catalog struct {
	lister VoiceLister

	mu         sync.Mutex
	language   string
	voices     []Voice
	generation uint64
}

// CatalogResult is the outcome of one voice load. It must be passed back to
// Apply on the event loop that owns the catalog.
type CatalogResult struct {
	Language string
	Voices   []Voice
	Err      error

	generation uint64
}

// NewCatalog creates a catalog backed by the given voice lister.
func NewCatalog(lister VoiceLister) *Catalog {
	return &Catalog{lister: lister}
}

// StartLoad registers a new load for the given language and returns its
// generation token. Any load started earlier becomes stale immediately.
func (c *Catalog) StartLoad(languageTag string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return c.generation
}

// Fetch performs the voice fetch for a load started with StartLoad. It does
// not mutate the catalog; hand the result to Apply.
func (c *Catalog) Fetch(ctx context.Context, languageTag string, generation uint64) CatalogResult {
	res := CatalogResult{Language: languageTag, generation: generation}

	if languageTag == "" {
		res.Err = ErrEmptyLanguage
		return res
	}

	voices, err := c.lister.ListVoices(ctx, languageTag)
	if err != nil {
		res.Err = fmt.Errorf("load voices for %q: %w", languageTag, err)
		return res
	}

	voices = FilterVoices(voices, languageTag)
	SortVoices(voices)
	res.Voices = voices
	return res
}

// Apply installs a load result. It returns false when the result is stale
// (a newer load was started since) and the catalog is untouched.
//
// On failure the previously loaded list is kept when the failed load was for
// the language already on display; a failed load for a different language
// resets the catalog to empty, since the old list's voice ids are
// meaningless for the new selection. The error stays in the result for the
// caller to surface as a non-fatal warning.
func (c *Catalog) Apply(res CatalogResult) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if res.generation != c.generation {
		return false
	}

	if res.Err != nil {
		if res.Language != c.language {
			c.voices = nil
			c.language = res.Language
		}
		return true
	}

	c.voices = res.Voices
	c.language = res.Language
	return true
}

// Voices returns a copy of the current voice list.
func (c *Catalog) Voices() []Voice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Voice, len(c.voices))
	copy(out, c.voices)
	return out
}

// Language returns the language of the catalog on display.
func (c *Catalog) Language() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.language
}

// Default returns the default voice id for the current list, or false for an
// empty catalog.
func (c *Catalog) Default() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return PickDefault(c.voices)
}

// FilterVoices returns the voices whose locale starts with the language tag.
func FilterVoices(voices []Voice, languageTag string) []Voice {
	filtered := make([]Voice, 0, len(voices))
	for _, v := range voices {
		if strings.HasPrefix(v.Locale, languageTag) {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// SortVoices sorts voices in place by locale then gender, ascending. The
// sort is stable so equal entries keep their server order.
func SortVoices(voices []Voice) {
	sort.SliceStable(voices, func(i, j int) bool {
		if voices[i].Locale != voices[j].Locale {
			return voices[i].Locale < voices[j].Locale
		}
		return voices[i].Gender < voices[j].Gender
	})
}

// PickDefault chooses the default voice for a catalog: the first
// neural-class voice, falling back to the first voice in sorted order.
// Returns false for an empty catalog.
func PickDefault(voices []Voice) (string, bool) {
	if len(voices) == 0 {
		return "", false
	}
	for _, v := range voices {
		if v.IsNeural() {
			return v.ShortName, true
		}
	}
	return voices[0].ShortName, true
}

// LanguageDisplayName renders a language or locale tag as a human-readable
// English name, e.g. "en-US" -> "American English". Unparseable tags are
// returned as-is.
func LanguageDisplayName(tag string) string {
	parsed, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	name := display.English.Tags().Name(parsed)
	if name == "" {
		return tag
	}
	return name
}
