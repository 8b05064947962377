package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/DeafMist/transit-proximity/internal/models"
)

// Client wraps go-elasticsearch with helpers for the match index.
type Client struct {
	es    *elasticsearch.Client
	index string
	log   *slog.Logger
}

// New instantiates the Elasticsearch client.
func New(addr, index string, logger *slog.Logger) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{addr},
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{es: es, index: index, log: logger}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}

	return nil
}

type bulkAction struct {
	Index struct {
		ID string `json:"_id"`
	} `json:"index"`
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// IndexMatches writes docs with a single bulk request, using the property id
// as document id so a rerun replaces the previous match. It returns the number
// of documents accepted.
func (c *Client) IndexMatches(ctx context.Context, docs []models.MatchDocument) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, doc := range docs {
		var action bulkAction
		action.Index.ID = doc.PropertyID
		if err := enc.Encode(action); err != nil {
			return 0, fmt.Errorf("marshal bulk action: %w", err)
		}
		if err := enc.Encode(doc); err != nil {
			return 0, fmt.Errorf("marshal doc: %w", err)
		}
	}

	req := esapi.BulkRequest{
		Index:   c.index,
		Body:    &body,
		Refresh: "false",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return 0, fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return 0, fmt.Errorf("bulk index failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode bulk response: %w", err)
	}

	failed := 0
	for _, item := range parsed.Items {
		for _, result := range item {
			if result.Status >= 300 {
				failed++
				c.log.Warn("bulk item rejected",
					"doc_id", result.ID, "status", result.Status,
					"type", result.Error.Type, "reason", result.Error.Reason)
			}
		}
	}

	accepted := len(docs) - failed
	if failed > 0 {
		return accepted, fmt.Errorf("bulk index: %d of %d documents rejected", failed, len(docs))
	}
	return accepted, nil
}

// DeleteOlderThan removes match documents resolved before now-maxAge using
// batched delete-by-query. It loops until a batch deletes fewer documents than
// batchSize.
func (c *Client) DeleteOlderThan(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	cutoff := time.Now().Add(-maxAge).UTC().Format(time.RFC3339)
	totalDeleted := int64(0)

	for {
		body := map[string]any{
			"query": map[string]any{
				"range": map[string]any{
					"resolved_at": map[string]any{
						"lte": cutoff,
					},
				},
			},
		}

		payload, err := json.Marshal(body)
		if err != nil {
			return totalDeleted, fmt.Errorf("marshal delete body: %w", err)
		}

		res, err := c.es.DeleteByQuery(
			[]string{c.index},
			bytes.NewReader(payload),
			c.es.DeleteByQuery.WithContext(ctx),
			c.es.DeleteByQuery.WithWaitForCompletion(true),
			c.es.DeleteByQuery.WithConflicts("proceed"),
			c.es.DeleteByQuery.WithMaxDocs(batchSize),
			c.es.DeleteByQuery.WithRefresh(true),
		)
		if err != nil {
			return totalDeleted, fmt.Errorf("delete by query: %w", err)
		}

		if res.IsError() {
			data, _ := io.ReadAll(res.Body)
			res.Body.Close()
			return totalDeleted, fmt.Errorf("delete by query failed: %s", strings.TrimSpace(string(data)))
		}

		var parsed struct {
			Deleted int64 `json:"deleted"`
		}
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			res.Body.Close()
			return totalDeleted, fmt.Errorf("decode delete response: %w", err)
		}
		res.Body.Close()

		totalDeleted += parsed.Deleted
		c.log.Debug("retention batch", "deleted", parsed.Deleted, "cutoff", cutoff)

		if parsed.Deleted < int64(batchSize) {
			break
		}
	}

	return totalDeleted, nil
}
