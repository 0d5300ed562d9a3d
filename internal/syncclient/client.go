// Package syncclient speaks the sync wire contract: push opaque encrypted
// records, pull the server's copy ordered by last update. The client never
// ships plaintext and does no conflict resolution.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cyclewise/cyclewise/internal/errs"
	"github.com/cyclewise/cyclewise/internal/model"
	"github.com/cyclewise/cyclewise/internal/store"
)

// Client talks to a sync server with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New constructs a sync client.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// PushRequest is the push payload.
type PushRequest struct {
	UserID string         `json:"userId"`
	Ops    []model.SyncOp `json:"ops"`
}

// PullResponse is the pull payload.
type PullResponse struct {
	Records []model.RemoteRecord `json:"records"`
}

// BuildOps assembles upsert ops for every encrypted table in the store.
func BuildOps(ctx context.Context, st *store.Store) ([]model.SyncOp, error) {
	var ops []model.SyncOp
	for _, t := range store.Tables() {
		if !t.Encrypted() {
			continue
		}
		recs, err := st.EncryptedRecords(ctx, t)
		if err != nil {
			return nil, err
		}
		for id, enc := range recs {
			ops = append(ops, model.SyncOp{
				ID:        id,
				Table:     t.Name(),
				Encrypted: enc,
				Action:    model.SyncUpsert,
			})
		}
	}
	return ops, nil
}

// Push uploads ops for the given user.
func (c *Client) Push(ctx context.Context, userID string, ops []model.SyncOp) error {
	for i := range ops {
		if err := ops[i].Validate(); err != nil {
			return err
		}
	}
	body, err := json.Marshal(PushRequest{UserID: userID, Ops: ops})
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/sync", bytes.NewReader(body))
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// Pull downloads the server's records, ordered by last-update time.
func (c *Client) Pull(ctx context.Context) ([]model.RemoteRecord, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/sync", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var out PullResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Records, nil
}

// Apply writes pulled records into the local store without decrypting them.
// Records naming unknown or unencrypted tables are rejected.
func Apply(ctx context.Context, st *store.Store, records []model.RemoteRecord) error {
	for _, r := range records {
		t, ok := store.TableByName(r.Table)
		if !ok || !t.Encrypted() {
			return fmt.Errorf("%w: table %q", errs.ErrInvalidRecord, r.Table)
		}
		if err := st.PutEncryptedRecord(ctx, t, r.ID, r.Encrypted); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body *bytes.Reader) (*http.Request, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return errs.ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("sync: unexpected status %d", resp.StatusCode)
	}
	return nil
}
