package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"golang.org/x/oauth2/clientcredentials"
)

// PayPalGateway : handshake OAuth2 client-credentials puis création de
// commande. Montant en unités majeures, contrairement à Stripe.
type PayPalGateway struct {
	baseURL string
	client  *http.Client
}

func NewPayPalGateway(clientID, secret, baseURL string) *PayPalGateway {
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: secret,
		TokenURL:     baseURL + "/v1/oauth2/token",
	}
	return &PayPalGateway{
		baseURL: baseURL,
		// Le client gère le token d'accès et son renouvellement
		client: conf.Client(context.Background()),
	}
}

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalOrderRequest struct {
	Intent        string `json:"intent"`
	PurchaseUnits []struct {
		Amount paypalAmount `json:"amount"`
	} `json:"purchase_units"`
}

type paypalOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (g *PayPalGateway) Collect(ctx context.Context, amount float64, _ string) (string, error) {
	reqBody := paypalOrderRequest{Intent: "CAPTURE"}
	reqBody.PurchaseUnits = make([]struct {
		Amount paypalAmount `json:"amount"`
	}, 1)
	reqBody.PurchaseUnits[0].Amount = paypalAmount{
		CurrencyCode: "EUR",
		Value:        fmt.Sprintf("%.2f", amount),
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/v2/checkout/orders", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("❌ Erreur PayPal: %v", err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("PayPal a répondu %d", resp.StatusCode)
	}

	var order paypalOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return "", err
	}
	if order.ID == "" {
		return "", fmt.Errorf("réponse PayPal sans identifiant de commande")
	}

	log.Printf("💳 Commande PayPal créée : %s (%.2f€)", order.ID, amount)
	return order.ID, nil
}
