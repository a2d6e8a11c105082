// Package validation : étape de validation explicite, découplée du
// stockage. Chaque fonction est pure : entrée → liste d'erreurs de champs.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"vendora_back_end/internal/models"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Message agrège la liste en un message lisible pour l'enveloppe d'erreur
func Message(errs []FieldError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

func ValidateRegister(in RegisterInput) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, FieldError{"name", "nom requis"})
	}
	if !emailRe.MatchString(in.Email) {
		errs = append(errs, FieldError{"email", "adresse e-mail invalide"})
	}
	if len(in.Password) < 8 {
		errs = append(errs, FieldError{"password", "8 caractères minimum"})
	}
	// Le rôle admin ne s'obtient jamais via l'inscription
	if in.Role != "" && in.Role != models.RoleBuyer && in.Role != models.RoleSeller {
		errs = append(errs, FieldError{"role", "rôle invalide (buyer ou seller)"})
	}
	return errs
}

type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Stock       int
}

func ValidateProduct(in ProductInput) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, FieldError{"name", "nom requis"})
	}
	if in.Price <= 0 {
		errs = append(errs, FieldError{"price", "prix strictement positif requis"})
	}
	if strings.TrimSpace(in.Category) == "" {
		errs = append(errs, FieldError{"category", "catégorie requise"})
	}
	if in.Stock < 0 {
		errs = append(errs, FieldError{"stock", "stock négatif interdit"})
	}
	return errs
}

// ValidateDiscount vérifie type et valeur d'une remise produit
func ValidateDiscount(d models.Discount) []FieldError {
	var errs []FieldError
	if d.Type != models.DiscountPercentage && d.Type != models.DiscountFixed {
		errs = append(errs, FieldError{"type", "type de remise invalide (percentage ou fixed)"})
	}
	if d.Value < 0 {
		errs = append(errs, FieldError{"value", "valeur négative interdite"})
	}
	if d.Type == models.DiscountPercentage && d.Value > 100 {
		errs = append(errs, FieldError{"value", "pourcentage limité à 100"})
	}
	return errs
}

type CouponInput struct {
	Code             string
	Type             string
	Value            float64
	MinOrderValue    float64
	UsageLimit       int
	ProductSpecific  bool
	ProductCount     int
	CategorySpecific bool
	CategoryCount    int
}

func ValidateCoupon(in CouponInput) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(in.Code) == "" {
		errs = append(errs, FieldError{"code", "code requis"})
	}
	if in.Type != models.DiscountPercentage && in.Type != models.DiscountFixed {
		errs = append(errs, FieldError{"type", "type invalide (percentage ou fixed)"})
	}
	if in.Value <= 0 {
		errs = append(errs, FieldError{"value", "valeur strictement positive requise"})
	}
	if in.Type == models.DiscountPercentage && in.Value > 100 {
		errs = append(errs, FieldError{"value", "pourcentage limité à 100"})
	}
	if in.MinOrderValue < 0 {
		errs = append(errs, FieldError{"min_order_value", "valeur négative interdite"})
	}
	if in.UsageLimit < 0 {
		errs = append(errs, FieldError{"usage_limit", "valeur négative interdite"})
	}
	// Les drapeaux specific exigent une liste non vide
	if in.ProductSpecific && in.ProductCount == 0 {
		errs = append(errs, FieldError{"product_ids", "liste de produits requise"})
	}
	if in.CategorySpecific && in.CategoryCount == 0 {
		errs = append(errs, FieldError{"categories", "liste de catégories requise"})
	}
	return errs
}

type ReviewInput struct {
	Rating  int
	Comment string
}

func ValidateReview(in ReviewInput) []FieldError {
	var errs []FieldError
	if in.Rating < 1 || in.Rating > 5 {
		errs = append(errs, FieldError{"rating", "note entre 1 et 5 requise"})
	}
	if len(in.Comment) > 500 {
		errs = append(errs, FieldError{"comment", "500 caractères maximum"})
	}
	return errs
}
