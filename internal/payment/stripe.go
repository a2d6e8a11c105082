package payment

import (
	"context"
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/refund"
)

// StripeGateway encaisse via PaymentIntent : montant en centimes,
// confirmation immédiate avec le payment method fourni par le front.
type StripeGateway struct{}

func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) Collect(ctx context.Context, amount float64, paymentToken string) (string, error) {
	if paymentToken == "" {
		return "", fmt.Errorf("payment method manquant")
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(int64(amount * 100)), // centimes
		Currency:      stripe.String("eur"),
		PaymentMethod: stripe.String(paymentToken),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Printf("❌ Erreur Stripe: %v", err)
		return "", err
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return "", fmt.Errorf("paiement non abouti (statut %s)", intent.Status)
	}

	log.Printf("💳 PaymentIntent confirmé : %s (%.2f€)", intent.ID, amount)
	return intent.ID, nil
}

// Refund rembourse une transaction Stripe (montant en euros)
func (g *StripeGateway) Refund(ctx context.Context, paymentRef string, amount float64) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentRef),
		Amount:        stripe.Int64(int64(amount * 100)),
		Reason:        stripe.String("requested_by_customer"),
	}
	params.Context = ctx

	r, err := refund.New(params)
	if err != nil {
		log.Printf("❌ Erreur Stripe refund: %v", err)
		return "", err
	}

	log.Printf("💰 Remboursement Stripe créé : %s (%.2f€)", r.ID, amount)
	return r.ID, nil
}
