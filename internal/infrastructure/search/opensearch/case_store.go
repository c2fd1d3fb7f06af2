package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

// CaseStoreConfig maps collections and fields onto indices.
type CaseStoreConfig struct {
	// IndexPrefix is prepended to the lower-cased collection name.
	IndexPrefix string

	// KeywordSuffix selects the not-analyzed sub-field used for exact and
	// prefix matching, e.g. ".keyword".
	KeywordSuffix string
}

// CaseStore serves case-study documents from OpenSearch.  It implements
// casestudy.DocumentQuerier; every failure is reported in the QueryResult.
type CaseStore struct {
	client *Client
	config CaseStoreConfig
	logger logging.Logger
}

var _ casestudy.DocumentQuerier = (*CaseStore)(nil)

// NewCaseStore returns a CaseStore on client.
func NewCaseStore(client *Client, cfg CaseStoreConfig, logger logging.Logger) *CaseStore {
	return &CaseStore{client: client, config: cfg, logger: logger}
}

// IndexName returns the index backing collection.
func (s *CaseStore) IndexName(collection string) string {
	return s.config.IndexPrefix + strings.ToLower(collection)
}

func (s *CaseStore) FindByExactField(ctx context.Context, collection, field, value string, limit int) casestudy.QueryResult {
	q := map[string]interface{}{
		"term": map[string]interface{}{
			field + s.config.KeywordSuffix: map[string]interface{}{"value": value},
		},
	}
	return s.search(ctx, collection, q, limit)
}

func (s *CaseStore) FindByFieldPrefix(ctx context.Context, collection, field, prefix string, limit int) casestudy.QueryResult {
	q := map[string]interface{}{
		"prefix": map[string]interface{}{
			field + s.config.KeywordSuffix: map[string]interface{}{"value": prefix},
		},
	}
	return s.search(ctx, collection, q, limit)
}

func (s *CaseStore) FindAll(ctx context.Context, collection string, limit int) casestudy.QueryResult {
	return s.search(ctx, collection, map[string]interface{}{"match_all": map[string]interface{}{}}, limit)
}

func (s *CaseStore) search(ctx context.Context, collection string, query map[string]interface{}, limit int) casestudy.QueryResult {
	if s.client == nil {
		return casestudy.Failed(errors.New(errors.ErrCodeCaseStoreUnhealthy, "case store has no client"))
	}
	index := s.IndexName(collection)

	body, err := json.Marshal(map[string]interface{}{
		"query": query,
		"size":  limit,
	})
	if err != nil {
		return casestudy.Failed(errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal query DSL"))
	}

	req := opensearchapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(body),
	}

	start := time.Now()
	resp, err := req.Do(ctx, s.client.GetClient())
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return casestudy.Failed(errors.New(errors.ErrCodeTimeout, "case search timed out"))
		}
		return casestudy.Failed(errors.Wrap(err, errors.ErrCodeCaseQueryFailed, "case search request failed"))
	}
	defer resp.Body.Close()

	// A missing index is a collection with no documents yet.
	if resp.StatusCode == http.StatusNotFound {
		return casestudy.NoResults()
	}
	if resp.IsError() {
		return casestudy.Failed(errorFromResponse(resp))
	}

	docs, err := decodeHits(resp.Body)
	if err != nil {
		return casestudy.Failed(err)
	}

	s.logger.Debug("case search executed",
		logging.String("index", index),
		logging.Int("hits", len(docs)),
		logging.Int64("took_ms", time.Since(start).Milliseconds()))
	return casestudy.Found(docs)
}

// decodeHits extracts the _source of every hit.  Numbers decode as
// json.Number so that they survive normalization unchanged.
func decodeHits(body io.Reader) ([]casestudy.FieldMap, error) {
	var resp struct {
		Hits struct {
			Hits []struct {
				Source casestudy.FieldMap `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&resp); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCaseDecodeFailed, "failed to decode search response")
	}

	docs := make([]casestudy.FieldMap, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		if h.Source != nil {
			docs = append(docs, h.Source)
		}
	}
	return docs, nil
}

func errorFromResponse(resp *opensearchapi.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	var errResp struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Error.Reason != "" {
		return errors.New(errors.ErrCodeCaseQueryFailed, "opensearch error").
			WithDetail(fmt.Sprintf("%s: %s", errResp.Error.Type, errResp.Error.Reason))
	}
	return errors.Newf(errors.ErrCodeCaseQueryFailed, "opensearch error status %d", resp.StatusCode)
}
