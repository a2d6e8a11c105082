// Package search indexe les produits dans Elasticsearch pour la recherche
// full-text. L'indexation est best-effort : Mongo reste la source de vérité,
// une erreur Elastic est loggée et n'échoue jamais la requête appelante.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"vendora_back_end/internal/config"
	"vendora_back_end/internal/models"
)

const productIndex = "products"

type ProductIndex struct {
	es *elasticsearch.Client
}

// New construit le client Elastic ; retourne un index inerte si l'URL
// n'est pas configurée (toutes les méthodes deviennent des no-op)
func New(cfg *config.Config) *ProductIndex {
	if cfg.ElasticURL == "" {
		log.Println("⚠️ Elasticsearch non configuré — recherche avancée désactivée")
		return &ProductIndex{}
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		Username:  cfg.ElasticUser,
		Password:  cfg.ElasticPassword,
	})
	if err != nil {
		log.Println("⚠️ Erreur création client Elasticsearch:", err)
		return &ProductIndex{}
	}

	log.Println("✅ Client Elasticsearch prêt")
	return &ProductIndex{es: client}
}

func (pi *ProductIndex) Enabled() bool {
	return pi != nil && pi.es != nil
}

// IndexProduct indexe (ou réindexe) un produit
func (pi *ProductIndex) IndexProduct(ctx context.Context, p models.Product) {
	if !pi.Enabled() {
		return
	}

	data, _ := json.Marshal(p)
	req := esapi.IndexRequest{
		Index:      productIndex,
		DocumentID: p.ID.Hex(),
		Body:       bytes.NewReader(data),
	}

	res, err := req.Do(ctx, pi.es)
	if err != nil {
		log.Println("❌ Erreur envoi Elastic:", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Elastic a renvoyé une erreur pour %s: %s", p.Name, res.String())
	}
}

// RemoveProduct retire un produit de l'index (soft delete côté catalogue)
func (pi *ProductIndex) RemoveProduct(ctx context.Context, id string) {
	if !pi.Enabled() {
		return
	}

	req := esapi.DeleteRequest{Index: productIndex, DocumentID: id}
	res, err := req.Do(ctx, pi.es)
	if err != nil {
		log.Println("❌ Erreur suppression Elastic:", err)
		return
	}
	res.Body.Close()
}

// Search interroge l'index par nom, description et catégorie
func (pi *ProductIndex) Search(ctx context.Context, query string, from, size int) ([]models.Product, error) {
	if !pi.Enabled() {
		return nil, errors.New("client Elasticsearch non initialisé")
	}

	var buf bytes.Buffer
	body := map[string]interface{}{
		"from": from,
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     query,
						"fields":    []string{"name^3", "description", "category"},
						"fuzziness": "AUTO",
					},
				},
				"must_not": map[string]interface{}{
					"term": map[string]interface{}{"is_deleted": true},
				},
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	res, err := pi.es.Search(
		pi.es.Search.WithContext(ctx),
		pi.es.Search.WithIndex(productIndex),
		pi.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elastic a répondu: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		products = append(products, hit.Source)
	}
	return products, nil
}
