// Package bing implements the two-step Bing Translator scrape: a cached,
// single-flight credential fetch followed by a signed translate POST
// (spec §4.3).
package bing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	"github.com/transgate/gatewaycore/internal/obslog"
	"github.com/transgate/gatewaycore/internal/providers/langset"
	"github.com/transgate/gatewaycore/internal/signing"
	"github.com/transgate/gatewaycore/internal/transport"
	"github.com/transgate/gatewaycore/sdk/translate"
)

const serviceID = "bing"

var langCodes = translate.LangCodeTable{
	translate.ChineseSimplified:  "zh-Hans",
	translate.ChineseTraditional: "zh-Hant",
	translate.Auto:               "auto-detect",
}

var supportedLanguages = langset.AllExcept(translate.ChineseClassical, translate.Burmese, translate.Khmer)

// credentialCache owns the {ig, iid, token, ts, resolvedHost} tuple scraped
// from /translator and the monotonically increasing SFX counter. A single
// credential fetch is shared across concurrent callers via singleflight.
type credentialCache struct {
	mu      sync.Mutex
	creds   signing.BingCredentials
	host    string
	have    bool
	counter int64

	group singleflight.Group
}

func (c *credentialCache) drop() {
	c.mu.Lock()
	c.have = false
	c.mu.Unlock()
}

func (c *credentialCache) nextCounter() int64 {
	return atomic.AddInt64(&c.counter, 1)
}

// Translator scrapes www.bing.com (or cn.bing.com) for translation
// credentials and signs the translate request with them.
type Translator struct {
	client       *transport.Client
	useChinaHost bool
	cache        *credentialCache
	// Endpoint overrides the host selection entirely; tests point it at an
	// httptest server that serves both /translator and /ttranslatev3.
	Endpoint string
}

// New builds a Translator. useChinaHost selects cn.bing.com over
// www.bing.com per spec §6's Bing config surface.
func New(client *transport.Client, useChinaHost bool) *Translator {
	return &Translator{client: client, useChinaHost: useChinaHost, cache: &credentialCache{}}
}

func (t *Translator) Capability() translate.Capability {
	return translate.Capability{
		ServiceID:          serviceID,
		DisplayName:        "Bing Translator",
		RequiresAPIKey:     false,
		IsConfigured:       true,
		SupportedLanguages: supportedLanguages,
		IsStreaming:        false,
		MaxTextLength:      5000,
	}
}

func (t *Translator) defaultHost() string {
	if t.Endpoint != "" {
		return t.Endpoint
	}
	if t.useChinaHost {
		return "https://cn.bing.com"
	}
	return "https://www.bing.com"
}

// fetchCredentials performs the single-flight-guarded GET {host}/translator
// scrape, updating the cache's resolved host and credentials on success.
func (t *Translator) fetchCredentials(ctx context.Context) (signing.BingCredentials, string, error) {
	v, err, _ := t.cache.group.Do("fetch", func() (interface{}, error) {
		resp, body, err := t.client.DoBufferedFull(ctx, transport.Request{
			Method: http.MethodGet,
			URL:    t.defaultHost() + "/translator",
		})
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d fetching bing translator page", resp.StatusCode)
		}
		resolvedHost := t.defaultHost()
		if resp.FinalURL != "" {
			if u, perr := url.Parse(resp.FinalURL); perr == nil && u.Host != "" {
				resolvedHost = u.Scheme + "://" + u.Host
			}
		}
		creds, cerr := signing.ScrapeBingCredentials(string(body))
		if cerr != nil {
			return nil, cerr
		}

		t.cache.mu.Lock()
		t.cache.creds = creds
		t.cache.host = resolvedHost
		t.cache.have = true
		t.cache.mu.Unlock()

		return struct {
			creds signing.BingCredentials
			host  string
		}{creds, resolvedHost}, nil
	})
	if err != nil {
		return signing.BingCredentials{}, "", err
	}
	result := v.(struct {
		creds signing.BingCredentials
		host  string
	})
	return result.creds, result.host, nil
}

func (t *Translator) currentCredentials(ctx context.Context) (signing.BingCredentials, string, error) {
	t.cache.mu.Lock()
	if t.cache.have {
		creds, host := t.cache.creds, t.cache.host
		t.cache.mu.Unlock()
		return creds, host, nil
	}
	t.cache.mu.Unlock()
	return t.fetchCredentials(ctx)
}

func (t *Translator) translateOnce(ctx context.Context, req translate.Request, creds signing.BingCredentials, host string) (int, []byte, error) {
	q := url.Values{}
	q.Set("IG", creds.IG)
	q.Set("IID", creds.IID)
	q.Set("edgepdftranslator", "1")
	q.Set("isVertical", "1")
	q.Set("ref", "TThis")
	q.Set("SFX", strconv.FormatInt(t.cache.nextCounter(), 10))

	form := url.Values{}
	form.Set("text", req.Text)
	form.Set("fromLang", translate.LangCode(langCodes, req.FromLanguage))
	form.Set("to", translate.LangCode(langCodes, req.ToLanguage))
	form.Set("token", creds.Token)
	form.Set("key", creds.TimeStamp)

	status, _, body, err := t.client.DoBuffered(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    host + "/ttranslatev3",
		Query:  q,
		Headers: http.Header{
			"Content-Type": {"application/x-www-form-urlencoded"},
			"Origin":       {host},
			"Referer":      {host + "/translator"},
		},
		Body: []byte(form.Encode()),
	})
	return status, body, err
}

func (t *Translator) TranslateInternal(ctx context.Context, req translate.Request) (translate.Result, error) {
	creds, host, err := t.currentCredentials(ctx)
	if err != nil {
		return translate.Result{}, translate.Wrap(serviceID, translate.ErrServiceUnavailable, "failed to extract bing credentials", err)
	}

	status, body, err := t.translateOnce(ctx, req, creds, host)
	if err != nil {
		return translate.Result{}, err
	}

	if status == http.StatusTooManyRequests || !gjson.ValidBytes(body) || len(strings.TrimSpace(string(body))) == 0 {
		t.cache.drop()
		creds, host, err = t.fetchCredentials(ctx)
		if err != nil {
			return translate.Result{}, translate.Wrap(serviceID, translate.ErrServiceUnavailable, "failed to extract bing credentials", err)
		}
		status, body, err = t.translateOnce(ctx, req, creds, host)
		if err != nil {
			return translate.Result{}, err
		}
		if status == http.StatusTooManyRequests {
			return translate.Result{}, translate.New(serviceID, translate.ErrRateLimited, "bing rate limited")
		}
		if !gjson.ValidBytes(body) || len(strings.TrimSpace(string(body))) == 0 {
			return translate.Result{}, translate.New(serviceID, translate.ErrInvalidResponse, "bing returned a non-json (captcha) response")
		}
	}

	if status != http.StatusOK {
		return translate.Result{}, translate.New(serviceID, translate.ErrServiceUnavailable, fmt.Sprintf("unexpected status %d", status))
	}

	parsed := gjson.ParseBytes(body)
	results := parsed.Array()
	if len(results) == 0 {
		return translate.Result{}, translate.New(serviceID, translate.ErrInvalidResponse, "empty translation result")
	}
	first := results[0]
	translations := first.Get("translations").Array()
	if len(translations) == 0 {
		return translate.Result{}, translate.New(serviceID, translate.ErrInvalidResponse, "no translations in response")
	}

	detected := translate.FromDialect(first.Get("detectedLanguage.language").String())
	obslog.For(serviceID).WithField("to", req.ToLanguage).Debug("translated")

	return translate.Result{
		TranslatedText:   translations[0].Get("text").String(),
		OriginalText:     req.Text,
		DetectedLanguage: detected,
		TargetLanguage:   req.ToLanguage,
		ServiceName:      "Bing Translator",
	}, nil
}
