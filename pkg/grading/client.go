// Package grading checks programs against the marbles computer tasks,
// remotely through the grading service or locally against test cases.
package grading

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("marbles.grading")

// Errors
var (
	ErrUnknownTask = errors.New("unknown task")
	ErrBadResponse = errors.New("bad response from grading service")
)

// Task names a graded assignment.
type Task string

const (
	TaskMax  Task = "max"
	TaskNBit Task = "nBit"
	TaskSort Task = "sort"
)

// Tasks lists every task in the order the service presents them.
var Tasks = []Task{TaskMax, TaskNBit, TaskSort}

// ParseTask resolves a task name, ignoring case.
func ParseTask(name string) (Task, error) {
	for _, t := range Tasks {
		if strings.EqualFold(string(t), name) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTask, name)
}

// Verdict is the service's judgement of a submission.
type Verdict string

const (
	VerdictCorrect Verdict = "correct"
	VerdictWrong   Verdict = "wrong"
	VerdictError   Verdict = "error"
)

// Result is the decoded service response. For a correct submission Data
// holds the password part.
type Result struct {
	Status Verdict         `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Message returns Data as text, unquoting a JSON string.
func (r *Result) Message() string {
	if len(r.Data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Data, &s); err == nil {
		return s
	}
	return string(r.Data)
}

// Client talks to the grading service.
type Client struct {
	endpoint string
	http     *http.Client
}

// ClientOption is a functional option for NewClient.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d}
	}
}

// NewClient creates a client for the service at endpoint, e.g.
// "https://api.marblescomputer.stastnyjakub.com".
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Submit posts the raw program text for task and returns the verdict.
// A verdict of VerdictError is a result, not an error; errors are reserved
// for transport failures and malformed responses.
func (c *Client) Submit(ctx context.Context, task Task, code string) (*Result, error) {
	if _, err := ParseTask(string(task)); err != nil {
		return nil, err
	}

	url := c.endpoint + "/submit/" + string(task)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(code))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Cache-Control", "no-cache")

	logger.Debugf("submitting %d bytes for task %s to %s", len(code), task, url)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submitting %s: %w", task, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warningf("task %s: service answered %s", task, resp.Status)
		return nil, fmt.Errorf("%w: %s", ErrBadResponse, resp.Status)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	switch result.Status {
	case VerdictCorrect, VerdictWrong, VerdictError:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrBadResponse, result.Status)
	}

	logger.Infof("task %s: %s in %s", task, result.Status, time.Since(start))
	return &result, nil
}
