package catalog

import (
	"log"
	"strconv"
	"strings"

	"github.com/scaryPonens/fundadvisor/internal/domain"

	"github.com/blevesearch/bleve/v2"
)

// searchDoc is the indexed projection of a fund.
type searchDoc struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Type     string `json:"type"`
	Remarks  string `json:"remarks"`
}

// buildIndex creates an in-memory full-text index over the snapshot.
// Document IDs are row positions, so hits map straight back to funds.
func buildIndex(funds []domain.Fund) bleve.Index {
	indexMapping := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textField := bleve.NewTextFieldMapping()
	textField.Store = false
	textField.Index = true
	docMapping.AddFieldMappingsAt("name", textField)
	docMapping.AddFieldMappingsAt("category", textField)
	docMapping.AddFieldMappingsAt("type", textField)
	docMapping.AddFieldMappingsAt("remarks", textField)
	indexMapping.AddDocumentMapping("_default", docMapping)

	index, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		log.Printf("fund catalog: search index unavailable: %v", err)
		return nil
	}

	batch := index.NewBatch()
	for i, f := range funds {
		doc := searchDoc{Name: f.Name, Category: f.Category, Type: f.Type, Remarks: f.Remarks}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			log.Printf("fund catalog: indexing %q: %v", f.Name, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		log.Printf("fund catalog: search index batch failed: %v", err)
		return nil
	}
	return index
}

// Search runs a ranked full-text query over fund names, categories, and
// remarks. Exact and prefix name matches outrank fuzzier hits. Returns at
// most limit funds; a nil result means no matches (or no index).
func (c *Catalog) Search(query string, limit int) []domain.Fund {
	if c.index == nil || strings.TrimSpace(query) == "" {
		return nil
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	q := strings.ToLower(strings.TrimSpace(query))

	nameMatch := bleve.NewMatchQuery(query)
	nameMatch.SetField("name")
	nameMatch.SetBoost(3.0)

	namePrefix := bleve.NewPrefixQuery(q)
	namePrefix.SetField("name")
	namePrefix.SetBoost(2.0)

	nameWildcard := bleve.NewWildcardQuery("*" + q + "*")
	nameWildcard.SetField("name")
	nameWildcard.SetBoost(1.5)

	categoryMatch := bleve.NewMatchQuery(query)
	categoryMatch.SetField("category")
	categoryMatch.SetBoost(1.2)

	remarksMatch := bleve.NewMatchQuery(query)
	remarksMatch.SetField("remarks")

	searchQuery := bleve.NewDisjunctionQuery(nameMatch, namePrefix, nameWildcard, categoryMatch, remarksMatch)
	request := bleve.NewSearchRequest(searchQuery)
	request.Size = limit

	result, err := c.index.Search(request)
	if err != nil {
		log.Printf("fund catalog: search %q: %v", query, err)
		return nil
	}

	out := make([]domain.Fund, 0, len(result.Hits))
	seen := make(map[string]struct{}, len(result.Hits))
	for _, hit := range result.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= len(c.funds) {
			continue
		}
		f := c.funds[i]
		if _, dup := seen[f.Name]; dup {
			continue
		}
		seen[f.Name] = struct{}{}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
