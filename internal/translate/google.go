package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultBaseURL is Google's public translate endpoint
const DefaultBaseURL = "https://translate.googleapis.com/translate_a/single"

var (
	// ErrUnsupportedLanguage is returned for a destination language we do not know
	ErrUnsupportedLanguage = errors.New("invalid destination language")
	// ErrEmptyText is returned when there is nothing to translate
	ErrEmptyText = errors.New("nothing to translate")
)

// Result is a completed translation
type Result struct {
	Text   string
	Source string // detected source language code
	Dest   string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client. An empty baseURL uses DefaultBaseURL and a nil
// httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Translate translates text into dest, which may be a language code ("ja")
// or an English language name ("japanese"). The source language is detected.
func (c *Client) Translate(ctx context.Context, text, dest string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	code, err := LanguageCode(dest)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", code)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build translate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translate request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read translate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translate service returned %s", resp.Status)
	}

	return parseResponse(body, code)
}

// parseResponse extracts the translation from the nested-array payload:
// [[["<translated>","<original>",...],...],null,"<source>",...]
func parseResponse(body []byte, dest string) (*Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid translate response: %.100s", string(body))
	}

	segments := gjson.GetBytes(body, "0")
	if !segments.IsArray() {
		return nil, fmt.Errorf("no translation found in response")
	}

	var sb strings.Builder
	segments.ForEach(func(_, segment gjson.Result) bool {
		sb.WriteString(segment.Get("0").String())
		return true
	})

	if sb.Len() == 0 {
		return nil, fmt.Errorf("no translation found in response")
	}

	return &Result{
		Text:   sb.String(),
		Source: gjson.GetBytes(body, "2").String(),
		Dest:   dest,
	}, nil
}

// LanguageCode resolves a language code or English name to a code
func LanguageCode(lang string) (string, error) {
	l := strings.ToLower(strings.TrimSpace(lang))
	if _, ok := languages[l]; ok {
		return l, nil
	}
	for code, name := range languages {
		if name == l {
			return code, nil
		}
	}
	return "", fmt.Errorf("%q: %w", lang, ErrUnsupportedLanguage)
}

// LanguageName returns the English name for a code, or the code itself
func LanguageName(code string) string {
	if name, ok := languages[code]; ok {
		return name
	}
	return code
}
