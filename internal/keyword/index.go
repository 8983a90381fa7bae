// Package keyword maintains a local bleve index of note content. It is
// derived, rebuildable state used to blend keyword relevance into search; the
// remote vector index stays the system of record.
package keyword

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

type noteDoc struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type Index struct {
	index bleve.Index
}

// Open opens the keyword index at dir, creating it if it does not exist.
func Open(dir string) (*Index, error) {
	index, err := bleve.Open(dir)
	if err == bleve.ErrorIndexPathDoesNotExist {
		if mkErr := os.MkdirAll(filepath.Dir(dir), 0o755); mkErr != nil {
			return nil, fmt.Errorf("create keyword index dir: %w", mkErr)
		}
		index, err = bleve.New(dir, buildIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("open keyword index: %w", err)
	}
	return &Index{index: index}, nil
}

// Index adds or replaces a note document.
func (i *Index) Index(id int64, title, content string) error {
	return i.index.Index(strconv.FormatInt(id, 10), noteDoc{
		Title:   title,
		Content: content,
	})
}

// Delete removes a note document. Unknown ids are not an error.
func (i *Index) Delete(id int64) error {
	return i.index.Delete(strconv.FormatInt(id, 10))
}

// Search returns note ids matching the query with scores normalized to the
// top hit, so they combine cleanly with cosine similarity scores.
func (i *Index) Search(query string, limit int) (map[int64]float64, error) {
	if limit <= 0 {
		limit = 10
	}
	matchQuery := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(matchQuery, limit, 0, false)
	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	scores := make(map[int64]float64, len(res.Hits))
	var maxScore float64
	for _, hit := range res.Hits {
		if hit.Score > maxScore {
			maxScore = hit.Score
		}
	}
	for _, hit := range res.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		if maxScore > 0 {
			scores[id] = hit.Score / maxScore
		} else {
			scores[id] = 0
		}
	}
	return scores, nil
}

func (i *Index) Close() error {
	return i.index.Close()
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultField = "content"

	docMapping := bleve.NewDocumentMapping()

	contentField := bleve.NewTextFieldMapping()
	contentField.Store = false
	contentField.Index = true
	docMapping.AddFieldMappingsAt("content", contentField)

	titleField := bleve.NewTextFieldMapping()
	titleField.Store = true
	titleField.Index = true
	docMapping.AddFieldMappingsAt("title", titleField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}
