package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/coffeemania/services/catalog/internal/models"
)

const DefaultIndex = "products"

// Index ranks products by text relevance. Product data itself stays in the database.
type Index interface {
	Search(ctx context.Context, query string, from, size int) (total int64, ids []uint, err error)
	Put(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uint) error
}

type Config struct {
	URL      string
	Username string
	Password string
	Index    string
}

type ESIndex struct {
	es    *elasticsearch.Client
	index string
}

// NewESIndex connects and checks the cluster answers.
func NewESIndex(ctx context.Context, cfg Config) (*ESIndex, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}

	index := cfg.Index
	if index == "" {
		index = DefaultIndex
	}
	return &ESIndex{es: client, index: index}, nil
}

type productDoc struct {
	ID                  uint   `json:"id"`
	Name                string `json:"name"`
	ShortDescription    string `json:"shortDescription"`
	DetailedDescription string `json:"detailedDescription"`
	Category            string `json:"category"`
	Price               string `json:"price"`
}

func (x *ESIndex) Search(ctx context.Context, query string, from, size int) (int64, []uint, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^3", "category^2", "shortDescription", "detailedDescription"},
				"fuzziness": "AUTO",
			},
		},
		"_source": []string{"id"},
		"from":    from,
		"size":    size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := x.es.Search(
		x.es.Search.WithContext(ctx),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source productDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search: %w", err)
	}

	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		ids = append(ids, h.Source.ID)
	}
	return r.Hits.Total.Value, ids, nil
}

func (x *ESIndex) Put(ctx context.Context, p *models.Product) error {
	doc := productDoc{
		ID:                  p.ID,
		Name:                p.Name,
		ShortDescription:    p.ShortDescription,
		DetailedDescription: p.DetailedDescription,
		Category:            p.Category,
		Price:               p.Price.String(),
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	res, err := x.es.Index(x.index, bytes.NewReader(b),
		x.es.Index.WithContext(ctx),
		x.es.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index product %d: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index product %d: %s", p.ID, res.Status())
	}
	return nil
}

func (x *ESIndex) Delete(ctx context.Context, id uint) error {
	res, err := x.es.Delete(x.index, strconv.FormatUint(uint64(id), 10), x.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete product %d: %s", id, res.Status())
	}
	return nil
}
