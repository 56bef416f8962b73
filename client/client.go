package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/convexim/botgo/credstore"
	"github.com/convexim/botgo/logger"
	"github.com/convexim/botgo/models"
)

// ErrorHandler classifies one error envelope into a typed error. Returning
// nil passes the envelope on to the next handler for the same status.
type ErrorHandler func(env *ErrorEnvelope, rc RequestContext) error

// Method is one messenger API call: verb, templated path, parameters, body
// and the per-status error classification table.
type Method struct {
	Verb          string
	Path          string // template, e.g. /api/v2/botx/bots/{bot_id}/token
	PathParams    map[string]string
	Query         url.Values
	Body          interface{}          // JSON body, nil for none
	File          *models.OutgoingFile // multipart file upload body
	FileMeta      map[string]string    // extra multipart form fields
	ErrorHandlers map[int][]ErrorHandler

	// NoAuth marks the token-issuance request itself; every other method
	// carries a bearer token.
	NoAuth bool
}

// Client performs messenger API calls for every server in the credential
// store. It is safe for concurrent use.
type Client struct {
	creds *credstore.Store
	http  *http.Client
	log   *logger.Logger

	// Scheme is https unless overridden (tests run against plain http).
	Scheme string
}

// New creates a client over the given credential store. A nil httpClient
// gets a 60 second default; a nil log defaults to stderr at INFO.
func New(creds *credstore.Store, httpClient *http.Client, log *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if log == nil {
		log = logger.Default()
	}
	return &Client{creds: creds, http: httpClient, log: log, Scheme: "https"}
}

// resultEnvelope is the success body every endpoint shares.
type resultEnvelope struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
}

// Perform executes the method against the binding's host and decodes the
// result envelope into out (which may be nil for calls whose result is
// discarded). Apart from token cache updates it has no local side effects.
func (c *Client) Perform(ctx context.Context, bind models.Binding, m Method, out interface{}) error {
	token := ""
	if !m.NoAuth {
		var err error
		token, err = c.ensureToken(ctx, bind)
		if err != nil {
			return err
		}
	}

	rc, body, err := c.send(ctx, bind.Host, m, token)
	if err != nil {
		return err
	}

	// A 401 on an authenticated call means the cached token expired;
	// acquire a fresh one and retry once.
	if rc.StatusCode == http.StatusUnauthorized && !m.NoAuth {
		token, err = c.acquireToken(ctx, bind)
		if err != nil {
			return err
		}
		rc, body, err = c.send(ctx, bind.Host, m, token)
		if err != nil {
			return err
		}
	}

	return c.classify(rc, body, m, out)
}

// PerformRaw executes the method and returns the raw response body; used
// for file downloads, which do not share the result envelope.
func (c *Client) PerformRaw(ctx context.Context, bind models.Binding, m Method) ([]byte, error) {
	token, err := c.ensureToken(ctx, bind)
	if err != nil {
		return nil, err
	}
	rc, body, err := c.send(ctx, bind.Host, m, token)
	if err != nil {
		return nil, err
	}
	if rc.StatusCode == http.StatusUnauthorized {
		token, err = c.acquireToken(ctx, bind)
		if err != nil {
			return nil, err
		}
		rc, body, err = c.send(ctx, bind.Host, m, token)
		if err != nil {
			return nil, err
		}
	}
	if rc.StatusCode >= 200 && rc.StatusCode < 300 {
		return body, nil
	}
	return nil, c.classify(rc, body, m, nil)
}

// buildURL assembles the request URL: configured scheme, binding host,
// percent-encoded template substitution, query string.
func (c *Client) buildURL(host string, m Method) string {
	path := m.Path
	for name, value := range m.PathParams {
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(value))
	}
	u := c.Scheme + "://" + host + path
	if len(m.Query) > 0 {
		u += "?" + m.Query.Encode()
	}
	return u
}

func (c *Client) send(ctx context.Context, host string, m Method, token string) (RequestContext, []byte, error) {
	reqURL := c.buildURL(host, m)
	rc := RequestContext{Verb: m.Verb, URL: reqURL}

	var bodyReader io.Reader
	contentType := ""
	switch {
	case m.File != nil:
		buf := &bytes.Buffer{}
		w := multipart.NewWriter(buf)
		for field, value := range m.FileMeta {
			if err := w.WriteField(field, value); err != nil {
				return rc, nil, fmt.Errorf("writing multipart field %s: %w", field, err)
			}
		}
		part, err := createFilePart(w, m.File)
		if err != nil {
			return rc, nil, err
		}
		if _, err := part.Write(m.File.Content); err != nil {
			return rc, nil, fmt.Errorf("writing multipart content: %w", err)
		}
		if err := w.Close(); err != nil {
			return rc, nil, fmt.Errorf("finalizing multipart body: %w", err)
		}
		bodyReader = buf
		contentType = w.FormDataContentType()
	case m.Body != nil:
		encoded, err := json.Marshal(m.Body)
		if err != nil {
			return rc, nil, fmt.Errorf("marshalling %s %s body: %w", m.Verb, m.Path, err)
		}
		bodyReader = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, m.Verb, reqURL, bodyReader)
	if err != nil {
		return rc, nil, fmt.Errorf("building %s %s: %w", m.Verb, reqURL, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug("calling %s %s", m.Verb, reqURL)
	resp, err := c.http.Do(req)
	if err != nil {
		return rc, nil, fmt.Errorf("calling %s %s: %w", m.Verb, reqURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return rc, nil, fmt.Errorf("reading %s %s response: %w", m.Verb, reqURL, err)
	}
	rc.StatusCode = resp.StatusCode
	rc.Body = string(body)
	return rc, body, nil
}

func (c *Client) classify(rc RequestContext, body []byte, m Method, out interface{}) error {
	switch {
	case rc.StatusCode >= 200 && rc.StatusCode < 300:
		if out == nil {
			return nil
		}
		var env resultEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("parsing %s %s response: %w", rc.Verb, rc.URL, err)
		}
		if len(env.Result) > 0 {
			if err := json.Unmarshal(env.Result, out); err != nil {
				return fmt.Errorf("parsing %s %s result: %w", rc.Verb, rc.URL, err)
			}
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("parsing %s %s response: %w", rc.Verb, rc.URL, err)
		}
		return nil

	case rc.StatusCode == http.StatusGone:
		// 410 overrides any per-method classification.
		return &RouteDeprecatedError{APIError{rc}}

	default:
		env := &ErrorEnvelope{}
		if err := json.Unmarshal(body, env); err != nil {
			// Not the shared envelope shape; fall through to APIError.
			env = &ErrorEnvelope{}
		}
		for _, handle := range m.ErrorHandlers[rc.StatusCode] {
			if typed := handle(env, rc); typed != nil {
				return typed
			}
		}
		return &APIError{rc}
	}
}

func createFilePart(w *multipart.Writer, f *models.OutgoingFile) (io.Writer, error) {
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{
		fmt.Sprintf(`form-data; name="content"; filename="%s"`, f.FileName),
	}
	h["Content-Type"] = []string{f.MediaType}
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("creating multipart file part: %w", err)
	}
	return part, nil
}
