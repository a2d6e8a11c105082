// Package payment isole les passerelles de paiement externes. Le pipeline
// de commande n'a besoin que de "payé" ou "non payé" : chaque passerelle
// encaisse un montant et retourne une référence, ou une erreur.
package payment

import "context"

// Gateway : contrat commun aux passerelles carte et PayPal
type Gateway interface {
	// Collect encaisse le montant (en euros) et retourne la référence
	// de la transaction chez le prestataire
	Collect(ctx context.Context, amount float64, paymentToken string) (string, error)
}
