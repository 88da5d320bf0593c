package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/Itish41/WorkflowPro/logging"
	"github.com/Itish41/WorkflowPro/models"
	"github.com/elastic/go-elasticsearch/v8"
)

const DefaultSearchIndex = "documenti"

// SearchService keeps document metadata in Elasticsearch. A nil client
// disables it: writes become no-ops and Search reports Unavailable.
type SearchService struct {
	client *elasticsearch.Client
	index  string
	logger logging.Logger
}

func NewSearchService(client *elasticsearch.Client, index string, logger logging.Logger) *SearchService {
	if index == "" {
		index = DefaultSearchIndex
	}
	return &SearchService{client: client, index: index, logger: logger}
}

func (s *SearchService) Enabled() bool {
	return s != nil && s.client != nil
}

// EnsureIndex creates the index with the mapping derived from the elastic
// tags on models.SearchDocument.
func (s *SearchService) EnsureIndex(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	res, err := s.client.Indices.Exists([]string{s.index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", s.index, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, err := json.Marshal(map[string]any{
		"mappings": map[string]any{"properties": elasticMapping(reflect.TypeOf(models.SearchDocument{}))},
	})
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}
	res, err = s.client.Indices.Create(s.index,
		s.client.Indices.Create.WithBody(bytes.NewReader(body)),
		s.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", s.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", s.index, res.String())
	}
	s.logger.Info(ctx, "[SearchService.EnsureIndex] index created", "index", s.index)
	return nil
}

func (s *SearchService) Index(ctx context.Context, doc models.DocumentView) error {
	if !s.Enabled() {
		return nil
	}
	body, err := json.Marshal(models.NewSearchDocument(doc))
	if err != nil {
		return fmt.Errorf("failed to marshal document for indexing: %w", err)
	}
	res, err := s.client.Index(s.index, bytes.NewReader(body),
		s.client.Index.WithDocumentID(strconv.FormatInt(doc.ID, 10)),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index document %d: %w", doc.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index document %d: %s", doc.ID, res.String())
	}
	return nil
}

// Delete treats a document missing from the index as removed.
func (s *SearchService) Delete(ctx context.Context, id int64) error {
	if !s.Enabled() {
		return nil
	}
	res, err := s.client.Delete(s.index, strconv.FormatInt(id, 10), s.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete document %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete document %d: %s", id, res.String())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.SearchDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a multi_match over file name and type name.
func (s *SearchService) Search(ctx context.Context, query string) ([]models.SearchDocument, error) {
	if !s.Enabled() {
		return nil, Unavailable("Ricerca non disponibile")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, Validation("Parametro di ricerca obbligatorio")
	}

	body, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"nome_file", "tipo_documento_nome"},
				"fuzziness": "AUTO",
			},
		},
		"sort": []any{"_score", map[string]any{"data_caricamento": "desc"}},
	})
	if err != nil {
		return nil, Internal("Errore ricerca", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		s.logger.Error(ctx, "[SearchService.Search] request failed", "error", err)
		return nil, Unavailable("Ricerca non disponibile")
	}
	defer res.Body.Close()
	if res.IsError() {
		s.logger.Error(ctx, "[SearchService.Search] search failed", "status", res.StatusCode, "body", res.String())
		return nil, Unavailable("Ricerca non disponibile")
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, Internal("Errore lettura risultati ricerca", err)
	}
	results := make([]models.SearchDocument, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		results = append(results, hit.Source)
	}
	return results, nil
}

// elasticMapping turns `elastic:"type:text,analyzer:standard"` tags into
// mapping properties keyed by the json field name.
func elasticMapping(t reflect.Type) map[string]any {
	props := make(map[string]any)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("elastic")
		if tag == "" {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			name = f.Name
		}
		prop := make(map[string]any)
		for _, part := range strings.Split(tag, ",") {
			k, v, ok := strings.Cut(part, ":")
			if ok {
				prop[strings.TrimSpace(k)] = strings.TrimSpace(v)
			}
		}
		props[name] = prop
	}
	return props
}
