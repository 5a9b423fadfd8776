package quranapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/mushafdata/qurandb/internal/config"
)

const (
	maxAttempts       = 5
	initialRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 30 * time.Second
)

// Client interfaces with the api.quran.com v4 API
type Client struct {
	httpClient   *http.Client
	baseURL      string
	audioBaseURL string
	userAgent    string
}

// NewClient creates a new Quran API client from configuration
func NewClient(cfg config.API) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.ConnectTimeout + cfg.ReadTimeout,
		},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		audioBaseURL: cfg.AudioBaseURL,
		userAgent:    cfg.UserAgent,
	}
}

// VerseKey addresses a single verse as a chapter/verse-number pair.
type VerseKey struct {
	Sura int
	Ayah int
}

func (k VerseKey) String() string {
	return fmt.Sprintf("%d:%d", k.Sura, k.Ayah)
}

// Chapter is one entry of the chapter-list endpoint
type Chapter struct {
	ID              int    `json:"id"`
	NameArabic      string `json:"name_arabic"`
	RevelationOrder int    `json:"revelation_order"`
	VersesCount     int    `json:"verses_count"`
}

// FetchOptions selects which verse and word fields a fetch requests.
type FetchOptions struct {
	Fields          string
	WordFields      string
	AudioRecitation int // recitation id, 0 disables audio
}

// BasicOptions matches the original Arabic-only dataset: verse text plus
// structural locators, word text only.
func BasicOptions() FetchOptions {
	return FetchOptions{
		Fields:     "juz_number,hizb_number,page_number,text_uthmani",
		WordFields: "text_uthmani",
	}
}

// ExtendedOptions additionally requests prostration markers, recitation
// audio and word-level layout/type metadata.
func ExtendedOptions() FetchOptions {
	return FetchOptions{
		Fields:          "text_uthmani,chapter_id,page_number,juz_number,hizb_number,sajdah_number",
		WordFields:      "text_uthmani,page_number,line_number,char_type,audio",
		AudioRecitation: 7,
	}
}

// VersePayload is a verse normalized to the local schema
type VersePayload struct {
	SuraID       int
	AyatNumber   int
	TextUthmani  string
	JuzID        int
	HezbID       int
	PageID       int
	SajdahNumber *int
	AudioURL     *string
	Words        []WordPayload
}

// WordPayload is a single word sub-record of a verse
type WordPayload struct {
	Position    int
	TextUthmani string
	Type        string
	PageNumber  *int
	LineNumber  *int
	AudioURL    *string
}

type chaptersEnvelope struct {
	Chapters []Chapter `json:"chapters"`
}

type verseEnvelope struct {
	Verse verseJSON `json:"verse"`
}

type verseJSON struct {
	ChapterID       int    `json:"chapter_id"`
	VerseNumber     int    `json:"verse_number"`
	TextUthmani     string `json:"text_uthmani"`
	JuzNumber       int    `json:"juz_number"`
	HizbNumber      *int   `json:"hizb_number"`
	RubElHizbNumber *int   `json:"rub_el_hizb_number"`
	PageNumber      int    `json:"page_number"`
	SajdahNumber    *int   `json:"sajdah_number"`
	Audio           *struct {
		URL string `json:"url"`
	} `json:"audio"`
	Words []wordJSON `json:"words"`
}

type wordJSON struct {
	Position     int     `json:"position"`
	TextUthmani  string  `json:"text_uthmani"`
	CharTypeName string  `json:"char_type_name"`
	CharType     string  `json:"char_type"`
	PageNumber   *int    `json:"page_number"`
	LineNumber   *int    `json:"line_number"`
	AudioURL     *string `json:"audio_url"`
	Audio        *struct {
		URL string `json:"url"`
	} `json:"audio"`
}

// Chapters fetches the full ordered chapter list with verse counts,
// under the same retry policy as verse fetches.
func (c *Client) Chapters(ctx context.Context) ([]Chapter, error) {
	var chapters []Chapter
	err := retry.Do(
		func() error {
			result, err := c.doChaptersRequest(ctx)
			if err != nil {
				return err
			}
			chapters = result
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.Delay(initialRetryDelay),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(IsRetryable),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return chapters, nil
}

func (c *Client) doChaptersRequest(ctx context.Context) ([]Chapter, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/chapters?language=ar", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode >= 500 {
		return nil, &ServerError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var envelope chaptersEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode chapter list: %w", err)
	}
	if len(envelope.Chapters) == 0 {
		return nil, fmt.Errorf("chapter list is empty")
	}

	return envelope.Chapters, nil
}

// VerseByKey fetches a single verse with its word sub-records, retrying
// transient failures (429, 5xx, connection errors) with exponential backoff.
func (c *Client) VerseByKey(ctx context.Context, key VerseKey, opts FetchOptions) (*VersePayload, error) {
	u := c.verseURL(key, opts)

	var payload *VersePayload
	err := retry.Do(
		func() error {
			p, err := c.doVerseRequest(ctx, u, key)
			if err != nil {
				return err
			}
			payload = p
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.Delay(initialRetryDelay),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(IsRetryable),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) verseURL(key VerseKey, opts FetchOptions) string {
	q := url.Values{}
	q.Set("words", "true")
	if opts.AudioRecitation > 0 {
		q.Set("audio", fmt.Sprintf("%d", opts.AudioRecitation))
	}
	if opts.WordFields != "" {
		q.Set("word_fields", opts.WordFields)
	}
	if opts.Fields != "" {
		q.Set("fields", opts.Fields)
	}
	return fmt.Sprintf("%s/verses/by_key/%s?%s", c.baseURL, key, q.Encode())
}

func (c *Client) doVerseRequest(ctx context.Context, url string, key VerseKey) (*VersePayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode >= 500 {
		return nil, &ServerError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var envelope verseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode verse response: %w", err)
	}

	return c.normalizeVerse(key, envelope.Verse), nil
}

// normalizeVerse maps the wire format onto the local schema, applying the
// fallback chains the upstream API needs: hizb_number falls back to
// rub_el_hizb_number, the word type falls back char_type_name -> char_type,
// and relative audio paths are joined onto the audio host.
func (c *Client) normalizeVerse(key VerseKey, v verseJSON) *VersePayload {
	suraID := v.ChapterID
	if suraID == 0 {
		suraID = key.Sura
	}
	ayatNumber := v.VerseNumber
	if ayatNumber == 0 {
		ayatNumber = key.Ayah
	}

	hezbID := 0
	if v.HizbNumber != nil {
		hezbID = *v.HizbNumber
	} else if v.RubElHizbNumber != nil {
		hezbID = *v.RubElHizbNumber
	}

	var audioURL *string
	if v.Audio != nil {
		audioURL = c.combineAudioURL(v.Audio.URL)
	}

	words := make([]WordPayload, 0, len(v.Words))
	for _, w := range v.Words {
		wordType := w.CharTypeName
		if wordType == "" {
			wordType = w.CharType
		}

		var wordAudio *string
		switch {
		case w.AudioURL != nil && *w.AudioURL != "":
			wordAudio = c.combineAudioURL(*w.AudioURL)
		case w.Audio != nil:
			wordAudio = c.combineAudioURL(w.Audio.URL)
		}

		words = append(words, WordPayload{
			Position:    w.Position,
			TextUthmani: w.TextUthmani,
			Type:        wordType,
			PageNumber:  w.PageNumber,
			LineNumber:  w.LineNumber,
			AudioURL:    wordAudio,
		})
	}

	return &VersePayload{
		SuraID:       suraID,
		AyatNumber:   ayatNumber,
		TextUthmani:  v.TextUthmani,
		JuzID:        v.JuzNumber,
		HezbID:       hezbID,
		PageID:       v.PageNumber,
		SajdahNumber: v.SajdahNumber,
		AudioURL:     audioURL,
		Words:        words,
	}
}

func (c *Client) combineAudioURL(path string) *string {
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return &path
	}
	combined := strings.TrimRight(c.audioBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	return &combined
}
