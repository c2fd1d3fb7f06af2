package casestudy

import (
	"context"
	"errors"
)

var errUnspecified = errors.New("casestudy: query failed")

// QueryStatus tags the outcome of a document query.
type QueryStatus int

const (
	QuerySuccess QueryStatus = iota
	QueryEmpty
	QueryError
)

func (s QueryStatus) String() string {
	switch s {
	case QuerySuccess:
		return "success"
	case QueryEmpty:
		return "empty"
	case QueryError:
		return "error"
	default:
		return "unknown"
	}
}

// QueryResult is the tagged outcome of a store query.  Records is non-empty
// exactly when Status is QuerySuccess; Err is set exactly when Status is
// QueryError.
type QueryResult struct {
	Status  QueryStatus
	Records []FieldMap
	Err     error
}

// Found wraps records, tagging an empty slice as QueryEmpty.
func Found(records []FieldMap) QueryResult {
	if len(records) == 0 {
		return QueryResult{Status: QueryEmpty}
	}
	return QueryResult{Status: QuerySuccess, Records: records}
}

// NoResults is the QueryEmpty outcome.
func NoResults() QueryResult {
	return QueryResult{Status: QueryEmpty}
}

// Failed is the QueryError outcome.
func Failed(err error) QueryResult {
	if err == nil {
		err = errUnspecified
	}
	return QueryResult{Status: QueryError, Err: err}
}

// DocumentQuerier is the document-store port used by the advisory pipeline.
// Implementations never return a nil-error QueryError or a QuerySuccess with
// zero records.
type DocumentQuerier interface {
	// FindByExactField returns documents in collection whose field equals value.
	FindByExactField(ctx context.Context, collection, field, value string, limit int) QueryResult

	// FindByFieldPrefix returns documents whose field starts with prefix.
	FindByFieldPrefix(ctx context.Context, collection, field, prefix string, limit int) QueryResult

	// FindAll returns up to limit documents of any field value.
	FindAll(ctx context.Context, collection string, limit int) QueryResult
}
