// Package transcribe drives batch jobs on the managed transcription service:
// submit a stored recording, poll until the job reaches a terminal state,
// then fetch and parse the result document.
package transcribe

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"vnotes/internal/errors"
	"vnotes/internal/transcript"
)

// JobStatus enumerates the service-reported states of a transcription job.
type JobStatus string

const (
	StatusQueued     JobStatus = "QUEUED"
	StatusInProgress JobStatus = "IN_PROGRESS"
	StatusCompleted  JobStatus = "COMPLETED"
	StatusFailed     JobStatus = "FAILED"
)

// Requester is the capability the pipeline needs from this package.
type Requester interface {
	// Submit starts a job for the media at the given object-storage URI and
	// returns the generated job name.
	Submit(ctx context.Context, mediaURI string) (string, error)

	// Await polls the job until it completes or fails, then fetches and
	// parses the transcript. Job failure and timeout are terminal; they are
	// reported, never retried.
	Await(ctx context.Context, jobName string) (*transcript.Transcript, error)
}

// Client talks to the transcription service over its HTTP JSON API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client

	interval time.Duration
	timeout  time.Duration

	// sleep and now are injectable so tests can simulate immediate
	// completion or timeout without waiting.
	sleep func(time.Duration)
	now   func() time.Time
}

// New builds a client. interval is the wait between status polls, timeout
// bounds the whole wait for one job.
func New(baseURL, token string, interval, timeout time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		token:    token,
		http:     &http.Client{Timeout: 30 * time.Second},
		interval: interval,
		timeout:  timeout,
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

type submitRequest struct {
	JobName     string `json:"job_name"`
	MediaURI    string `json:"media_uri"`
	MediaFormat string `json:"media_format"`
	Language    string `json:"language"`
}

type jobResponse struct {
	Job struct {
		Name          string    `json:"name"`
		Status        JobStatus `json:"status"`
		FailureReason string    `json:"failure_reason"`
		TranscriptURI string    `json:"transcript_uri"`
	} `json:"job"`
}

// Submit starts a transcription job for the media at mediaURI.
func (c *Client) Submit(ctx context.Context, mediaURI string) (string, error) {
	jobName, err := newJobName()
	if err != nil {
		return "", errors.NewInternal(err)
	}

	body, err := json.Marshal(submitRequest{
		JobName:     jobName,
		MediaURI:    mediaURI,
		MediaFormat: "mp3",
		Language:    "en-US",
	})
	if err != nil {
		return "", errors.NewInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jobs", bytes.NewReader(body))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.NewTranscription(jobName, fmt.Sprintf("submit: %v", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", errors.NewTranscription(jobName, fmt.Sprintf("submit: http %d: %s", resp.StatusCode, string(b)))
	}

	return jobName, nil
}

// Await polls the job on the configured interval until it reaches a terminal
// state or the overall timeout elapses.
func (c *Client) Await(ctx context.Context, jobName string) (*transcript.Transcript, error) {
	deadline := c.now().Add(c.timeout)

	for {
		job, err := c.getJob(ctx, jobName)
		if err != nil {
			return nil, err
		}

		switch job.Job.Status {
		case StatusCompleted:
			return c.fetchResult(ctx, jobName, job.Job.TranscriptURI)
		case StatusFailed:
			reason := job.Job.FailureReason
			if reason == "" {
				reason = "service reported FAILED"
			}
			return nil, errors.NewTranscription(jobName, reason)
		case StatusQueued, StatusInProgress:
			// keep polling
		default:
			return nil, errors.NewTranscription(jobName, fmt.Sprintf("unknown status %q", job.Job.Status))
		}

		if c.now().After(deadline) {
			return nil, errors.NewTranscription(jobName, fmt.Sprintf("timed out after %s", c.timeout))
		}
		c.sleep(c.interval)
	}
}

// getJob fetches the current job record.
func (c *Client) getJob(ctx context.Context, jobName string) (*jobResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/jobs/"+jobName, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NewTranscription(jobName, fmt.Sprintf("poll: %v", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, errors.NewTranscription(jobName, fmt.Sprintf("poll: http %d: %s", resp.StatusCode, string(b)))
	}

	var job jobResponse
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, errors.NewTranscription(jobName, fmt.Sprintf("poll: decode: %v", err))
	}
	return &job, nil
}

// fetchResult downloads and parses the finished transcript document.
func (c *Client) fetchResult(ctx context.Context, jobName, uri string) (*transcript.Transcript, error) {
	if uri == "" {
		return nil, errors.NewTranscription(jobName, "completed job has no transcript URI")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NewTranscription(jobName, fmt.Sprintf("fetch result: %v", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewTranscription(jobName, fmt.Sprintf("fetch result: http %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewTranscription(jobName, fmt.Sprintf("fetch result: %v", err))
	}
	return transcript.ParseResult(data)
}

// newJobName generates a ULID job name, unique per submission.
func newJobName() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
