package search

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

const DefaultLimit = 20

// Index wraps a Bleve index over active documents.
type Index struct {
	index bleve.Index
}

// Document is what gets indexed for one active document.
type Document struct {
	ID       uint64   `json:"-"`
	Title    string   `json:"title"`
	Abstract string   `json:"abstract"`
	Category string   `json:"category"`
	Volume   string   `json:"volume"`
	Authors  []string `json:"authors"`
	Topics   []string `json:"topics"`
}

type Hit struct {
	ID        uint64              `json:"id"`
	Title     string              `json:"title"`
	Category  string              `json:"category"`
	Score     float64             `json:"score"`
	Fragments map[string][]string `json:"fragments,omitempty"`
}

// Open opens the index at path, creating it when missing.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return &Index{index: idx}, nil
}

// NewMemory builds an index that lives only in memory.
func NewMemory() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create memory index: %w", err)
	}
	return &Index{index: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = "standard"

	keywordFieldMapping := bleve.NewKeywordFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)
	docMapping.AddFieldMappingsAt("abstract", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("authors", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("topics", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("category", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("volume", keywordFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

func (i *Index) Close() error {
	return i.index.Close()
}

func docID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// IndexDocuments adds or replaces the given documents in one batch.
func (i *Index) IndexDocuments(docs ...Document) error {
	if len(docs) == 0 {
		return nil
	}
	batch := i.index.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(docID(doc.ID), doc); err != nil {
			return fmt.Errorf("batch index %d: %w", doc.ID, err)
		}
	}
	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func (i *Index) Delete(ids ...uint64) error {
	if len(ids) == 0 {
		return nil
	}
	batch := i.index.NewBatch()
	for _, id := range ids {
		batch.Delete(docID(id))
	}
	return i.index.Batch(batch)
}

// Rebuild replaces the whole index content with docs.
func (i *Index) Rebuild(docs []Document) error {
	keep := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		keep[docID(doc.ID)] = struct{}{}
	}

	stale, err := i.allIDs()
	if err != nil {
		return err
	}
	batch := i.index.NewBatch()
	for _, id := range stale {
		if _, ok := keep[id]; !ok {
			batch.Delete(id)
		}
	}
	for _, doc := range docs {
		if err := batch.Index(docID(doc.ID), doc); err != nil {
			return fmt.Errorf("batch index %d: %w", doc.ID, err)
		}
	}
	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func (i *Index) allIDs() ([]string, error) {
	total, err := i.index.DocCount()
	if err != nil || total == 0 {
		return nil, err
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(total), 0, false)
	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// Search runs a query string query (quotes, +/-, fuzzy ~ are supported).
func (i *Index) Search(queryStr string, limit int) ([]Hit, error) {
	queryStr = strings.TrimSpace(queryStr)
	if queryStr == "" {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(queryStr), limit, 0, false)
	req.Highlight = bleve.NewHighlightWithStyle("html")
	req.Fields = []string{"title", "category"}

	results, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, 0, len(results.Hits))
	for _, h := range results.Hits {
		id, err := strconv.ParseUint(h.ID, 10, 64)
		if err != nil {
			continue
		}
		hit := Hit{ID: id, Score: h.Score, Fragments: h.Fragments}
		if title, ok := h.Fields["title"].(string); ok {
			hit.Title = title
		}
		if category, ok := h.Fields["category"].(string); ok {
			hit.Category = category
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}
