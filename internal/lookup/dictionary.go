package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/example/vocapp/internal/apperr"
	"github.com/example/vocapp/pkg/models"
)

// DefaultMaxSenses is how many senses are kept for each part of speech.
const DefaultMaxSenses = 5

// Definer turns a single word into its grouped definition.
type Definer interface {
	Define(ctx context.Context, word string) (models.Definition, error)
}

// DictionaryClient represents a client for a dictionaryapi.dev compatible API
type DictionaryClient struct {
	baseURL    string
	httpClient *http.Client
	maxSenses  int
	title      cases.Caser
}

// Option configures a DictionaryClient.
type Option func(*DictionaryClient)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *DictionaryClient) { d.httpClient = c }
}

// WithMaxSenses changes the per part-of-speech limit.
func WithMaxSenses(n int) Option {
	return func(d *DictionaryClient) {
		if n > 0 {
			d.maxSenses = n
		}
	}
}

// NewDictionaryClient creates a new dictionary client
func NewDictionaryClient(baseURL string, timeout time.Duration, opts ...Option) *DictionaryClient {
	d := &DictionaryClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		maxSenses:  DefaultMaxSenses,
		title:      cases.Title(language.English),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// entry is one element of the API response array
type entry struct {
	Word     string `json:"word"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string `json:"definition"`
		} `json:"definitions"`
	} `json:"meanings"`
}

// Define fetches the meanings of word. An unknown word is NotFound, any
// other failure to get an answer is UpstreamUnavailable.
func (d *DictionaryClient) Define(ctx context.Context, word string) (models.Definition, error) {
	endpoint := fmt.Sprintf("%s/%s", d.baseURL, url.PathEscape(strings.ToLower(word)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperr.Upstream(err, "error creating request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Upstream(err, "error sending request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperr.NotFound("No results found for '%s'", word)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream(errors.Errorf("status %d", resp.StatusCode), "dictionary returned an error")
	}

	var entries []entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, apperr.Upstream(err, "error decoding response")
	}

	def := d.clean(entries)
	if len(def) == 0 {
		return nil, apperr.NotFound("No results found for '%s'", word)
	}
	return def, nil
}

// clean merges all entries by title-cased part of speech, keeps at most
// maxSenses senses for each and skips senses that open with a parenthesis.
func (d *DictionaryClient) clean(entries []entry) models.Definition {
	def := models.Definition{}
	for _, e := range entries {
		for _, m := range e.Meanings {
			pos := strings.TrimSpace(m.PartOfSpeech)
			if pos == "" {
				continue
			}
			pos = d.title.String(pos)
			for _, sense := range m.Definitions {
				text := strings.TrimSpace(sense.Definition)
				if text == "" || strings.HasPrefix(text, "(") {
					continue
				}
				if len(def[pos]) >= d.maxSenses {
					break
				}
				def[pos] = append(def[pos], text)
			}
		}
	}
	return def
}
