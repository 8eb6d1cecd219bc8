// Package e2e drives black-box scenarios against a running labfhir
// deployment over plain HTTP. The target is named by LABFHIR_E2E_BASE_URL;
// an optional LABFHIR_E2E_TOKEN bearer token is attached to every request
// for auth-enabled deployments.
package e2e

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// TestContext carries shared state across the steps of one scenario: the
// HTTP client, the last response, and the identifiers earlier steps created.
type TestContext struct {
	baseURL string
	token   string
	client  *http.Client

	// nonce salts uploaded content and external identifiers so scenarios
	// never collide with records persisted by earlier runs.
	nonce string

	status int
	body   []byte

	subjectID string
	reportID  string
	savedHash string
}

// NewTestContext creates a context targeting the deployment at baseURL.
func NewTestContext(baseURL, token string) *TestContext {
	return &TestContext{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Reset clears per-scenario state and draws a fresh salt. Call from the
// scenario Before hook.
func (tc *TestContext) Reset() {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	tc.nonce = hex.EncodeToString(buf)
	tc.status = 0
	tc.body = nil
	tc.subjectID = ""
	tc.reportID = ""
	tc.savedHash = ""
}

// Salt makes a scenario-scoped value from s: the same literal salts to the
// same value within a scenario and to a different one in the next, so
// duplicate-detection steps work without polluting later runs.
func (tc *TestContext) Salt(s string) string {
	return s + "-" + tc.nonce
}

func (tc *TestContext) do(req *http.Request) error {
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	tc.status = resp.StatusCode
	tc.body = body
	return nil
}

// POST sends a JSON request and records the response.
func (tc *TestContext) POST(path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, tc.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req)
}

// GET sends a request and records the response.
func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequest(http.MethodGet, tc.baseURL+path, nil)
	if err != nil {
		return err
	}
	return tc.do(req)
}

// Upload sends the multipart report submission: a subject_id field plus one
// file part carrying the document bytes.
func (tc *TestContext) Upload(path, subjectID, filename string, content []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("subject_id", subjectID); err != nil {
		return err
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := part.Write(content); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, tc.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return tc.do(req)
}

// Status returns the last response's status code.
func (tc *TestContext) Status() int {
	return tc.status
}

// Body returns the last response's raw bytes.
func (tc *TestContext) Body() []byte {
	return tc.body
}

// Field resolves a dotted path (e.g. "error.code") in the last JSON
// response.
func (tc *TestContext) Field(path string) (any, error) {
	var doc any
	if err := json.Unmarshal(tc.body, &doc); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	current := doc
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", path, key)
		}
		current, ok = obj[key]
		if !ok {
			return nil, fmt.Errorf("field %q not present in response", path)
		}
	}
	return current, nil
}

// SubjectID returns the subject created for this scenario.
func (tc *TestContext) SubjectID() string { return tc.subjectID }

// SetSubjectID records the subject created for this scenario.
func (tc *TestContext) SetSubjectID(id string) { tc.subjectID = id }

// ReportID returns the report under test.
func (tc *TestContext) ReportID() string { return tc.reportID }

// SetReportID records the report under test.
func (tc *TestContext) SetReportID(id string) { tc.reportID = id }

// SavedHash returns the artifact hash saved earlier in the scenario.
func (tc *TestContext) SavedHash() string { return tc.savedHash }

// SetSavedHash records an artifact hash for a later comparison step.
func (tc *TestContext) SetSavedHash(h string) { tc.savedHash = h }
