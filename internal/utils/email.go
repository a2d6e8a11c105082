package utils

import (
	"bytes"
	"fmt"
	"log"

	"github.com/wneessen/go-mail"

	"vendora_back_end/internal/config"
	"vendora_back_end/internal/models"
)

// Mailer envoie les e-mails transactionnels (codes de vérification,
// réinitialisation, confirmations de commande). Les envois sont
// fire-and-forget : une erreur est loggée, jamais remontée au client.
type Mailer struct {
	cfg *config.Config
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send envoie un e-mail HTML, avec pièce jointe PDF optionnelle
func (m *Mailer) Send(to, subject, htmlBody string, pdfAttachment []byte) error {
	msg := mail.NewMsg()

	if err := msg.From(m.cfg.EmailFrom); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if pdfAttachment != nil {
		msg.AttachReader("facture_vendora.pdf", bytes.NewReader(pdfAttachment))
	}

	client, err := mail.NewClient(m.cfg.SMTPHost,
		mail.WithPort(m.cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.cfg.SMTPUsername),
		mail.WithPassword(m.cfg.SMTPPassword),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// SendAsync envoie dans une goroutine et logge l'échec éventuel
func (m *Mailer) SendAsync(to, subject, htmlBody string, pdfAttachment []byte) {
	go func() {
		if err := m.Send(to, subject, htmlBody, pdfAttachment); err != nil {
			log.Printf("❌ Erreur envoi e-mail à %s: %v", to, err)
		}
	}()
}

// SendVerificationEmail envoie le code de vérification d'inscription
func (m *Mailer) SendVerificationEmail(to, code string) {
	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Bienvenue sur Vendora</h2>
		<p>Voici votre code de vérification :</p>
		<p style="font-size: 24px; font-weight: bold; letter-spacing: 3px;">%s</p>
		<p style="color: #555;">Ce code expire dans 24 heures.</p>
	</div>
</body>
</html>`, code)

	m.SendAsync(to, "Vérifiez votre adresse e-mail", html, nil)
}

// SendPasswordResetEmail envoie le code de réinitialisation de mot de passe
func (m *Mailer) SendPasswordResetEmail(to, code string) {
	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Réinitialisation de mot de passe</h2>
		<p>Voici votre code de réinitialisation :</p>
		<p style="font-size: 24px; font-weight: bold; letter-spacing: 3px;">%s</p>
		<p style="color: #555;">Ce code expire dans 15 minutes. Si vous n'êtes pas à l'origine
		de cette demande, ignorez cet e-mail.</p>
	</div>
</body>
</html>`, code)

	m.SendAsync(to, "Réinitialisation de votre mot de passe Vendora", html, nil)
}

// OrderConfirmationHTML génère le HTML de confirmation de commande
func OrderConfirmationHTML(order models.Order) string {
	itemsHTML := ""
	for _, item := range order.Items {
		lineTotal := (item.UnitPrice - item.UnitDiscount) * float64(item.Quantity)
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%.2f€</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%.2f€</td>
			</tr>`, item.Name, item.Quantity, item.UnitPrice, lineTotal)
	}

	discountRow := ""
	if order.CouponDiscount > 0 {
		discountRow = fmt.Sprintf(`
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right;">Coupon %s :</td>
					<td style="padding: 10px;">-%.2f€</td>
				</tr>`, order.CouponCode, order.CouponDiscount)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Confirmation de votre commande</h2>
		<p>Bonjour,</p>
		<p>Votre commande a été confirmée avec succès.</p>

		<h3>Détails de la commande</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Produit</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
			<tfoot>
				%s
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total :</td>
					<td style="padding: 10px; font-weight: bold;">%.2f€</td>
				</tr>
			</tfoot>
		</table>

		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Vendora</strong>
		</p>
	</div>
</body>
</html>`, itemsHTML, discountRow, order.FinalPrice)
}
