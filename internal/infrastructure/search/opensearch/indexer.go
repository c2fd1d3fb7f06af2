package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

// BulkItemError describes one rejected document.
type BulkItemError struct {
	Position  int    `json:"position"`
	ErrorType string `json:"errorType"`
	Reason    string `json:"reason"`
}

// BulkResult summarizes a bulk load.
type BulkResult struct {
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Errors    []BulkItemError `json:"errors,omitempty"`
}

// IndexerConfig holds bulk settings.
type IndexerConfig struct {
	BulkBatchSize int
	RefreshPolicy string
}

// Indexer loads case-study documents into the indices a CaseStore reads.
type Indexer struct {
	store  *CaseStore
	config IndexerConfig
	logger logging.Logger
}

// NewIndexer returns an Indexer writing to the indices of store.
func NewIndexer(store *CaseStore, cfg IndexerConfig, logger logging.Logger) *Indexer {
	if cfg.BulkBatchSize <= 0 {
		cfg.BulkBatchSize = 500
	}
	if cfg.RefreshPolicy == "" {
		cfg.RefreshPolicy = "wait_for"
	}
	return &Indexer{store: store, config: cfg, logger: logger}
}

// CaseIndexMapping maps every string as text with a keyword sub-field so
// that term and prefix queries see the raw label.
func CaseIndexMapping(keywordSuffix string) map[string]interface{} {
	sub := "keyword"
	if len(keywordSuffix) > 1 {
		sub = keywordSuffix[1:]
	}
	return map[string]interface{}{
		"mappings": map[string]interface{}{
			"dynamic_templates": []interface{}{
				map[string]interface{}{
					"strings_with_keyword": map[string]interface{}{
						"match_mapping_type": "string",
						"mapping": map[string]interface{}{
							"type": "text",
							"fields": map[string]interface{}{
								sub: map[string]interface{}{"type": "keyword", "ignore_above": 256},
							},
						},
					},
				},
			},
		},
	}
}

// EnsureIndex creates the collection's index when it does not exist.  It
// reports whether the index was created.
func (i *Indexer) EnsureIndex(ctx context.Context, collection string) (bool, error) {
	index := i.store.IndexName(collection)
	client := i.store.client.GetClient()

	exists := opensearchapi.IndicesExistsRequest{Index: []string{index}}
	resp, err := exists.Do(ctx, client)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCaseStoreUnhealthy, "failed to check index existence")
	}
	resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return false, nil
	case http.StatusNotFound:
	default:
		return false, errors.Newf(errors.ErrCodeCaseStoreUnhealthy, "index existence check returned %d", resp.StatusCode)
	}

	body, err := json.Marshal(CaseIndexMapping(i.store.config.KeywordSuffix))
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal index mapping")
	}
	create := opensearchapi.IndicesCreateRequest{Index: index, Body: bytes.NewReader(body)}
	resp, err = create.Do(ctx, client)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCaseStoreUnhealthy, "failed to create index")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return false, errorFromResponse(resp)
	}

	i.logger.Info("case index created", logging.String("index", index))
	return true, nil
}

// BulkIndex appends docs to the collection in batches.  Per-document
// rejections are collected in the result; transport failures abort.
func (i *Indexer) BulkIndex(ctx context.Context, collection string, docs []casestudy.FieldMap) (*BulkResult, error) {
	result := &BulkResult{}
	index := i.store.IndexName(collection)
	meta, _ := json.Marshal(map[string]interface{}{"index": map[string]string{"_index": index}})

	for start := 0; start < len(docs); start += i.config.BulkBatchSize {
		end := start + i.config.BulkBatchSize
		if end > len(docs) {
			end = len(docs)
		}

		var buf bytes.Buffer
		positions := make([]int, 0, end-start)
		for pos := start; pos < end; pos++ {
			src, err := json.Marshal(docs[pos])
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, BulkItemError{Position: pos, ErrorType: "serialization_error", Reason: err.Error()})
				continue
			}
			buf.Write(meta)
			buf.WriteByte('\n')
			buf.Write(src)
			buf.WriteByte('\n')
			positions = append(positions, pos)
		}
		if len(positions) == 0 {
			continue
		}

		if err := i.sendBatch(ctx, &buf, positions, result); err != nil {
			return result, err
		}
	}

	i.logger.Info("bulk case load completed",
		logging.String("index", index),
		logging.Int("total", len(docs)),
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed))
	return result, nil
}

func (i *Indexer) sendBatch(ctx context.Context, body *bytes.Buffer, positions []int, result *BulkResult) error {
	req := opensearchapi.BulkRequest{Body: bytes.NewReader(body.Bytes()), Refresh: i.config.RefreshPolicy}
	resp, err := req.Do(ctx, i.store.client.GetClient())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCaseStoreUnhealthy, "bulk request failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		cause := errorFromResponse(resp)
		result.Failed += len(positions)
		for _, pos := range positions {
			result.Errors = append(result.Errors, BulkItemError{Position: pos, ErrorType: "http_error", Reason: cause.Error()})
		}
		return nil
	}

	var bulkResp struct {
		Items []map[string]struct {
			Status int `json:"status"`
			Error  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode bulk response")
	}

	for n, item := range bulkResp.Items {
		for _, v := range item {
			if v.Status >= 200 && v.Status < 300 {
				result.Succeeded++
				continue
			}
			pos := -1
			if n < len(positions) {
				pos = positions[n]
			}
			result.Failed++
			result.Errors = append(result.Errors, BulkItemError{Position: pos, ErrorType: v.Error.Type, Reason: v.Error.Reason})
		}
	}
	return nil
}
