package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"vendora_back_end/internal/models"
)

func fieldNames(errs []FieldError) []string {
	names := make([]string, 0, len(errs))
	for _, e := range errs {
		names = append(names, e.Field)
	}
	return names
}

func TestValidateRegister(t *testing.T) {
	valid := RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "motdepasse",
		Role:     "buyer",
	}
	assert.Empty(t, ValidateRegister(valid))

	t.Run("rôle vide accepté", func(t *testing.T) {
		in := valid
		in.Role = ""
		assert.Empty(t, ValidateRegister(in))
	})

	t.Run("admin refusé à l'inscription", func(t *testing.T) {
		in := valid
		in.Role = "admin"
		assert.Contains(t, fieldNames(ValidateRegister(in)), "role")
	})

	t.Run("e-mail invalide", func(t *testing.T) {
		for _, email := range []string{"", "pasunemail", "@example.com", "a@b", "a b@c.de"} {
			in := valid
			in.Email = email
			assert.Contains(t, fieldNames(ValidateRegister(in)), "email", email)
		}
	})

	t.Run("mot de passe trop court", func(t *testing.T) {
		in := valid
		in.Password = "court"
		assert.Contains(t, fieldNames(ValidateRegister(in)), "password")
	})

	t.Run("nom vide", func(t *testing.T) {
		in := valid
		in.Name = "   "
		assert.Contains(t, fieldNames(ValidateRegister(in)), "name")
	})
}

func TestValidateProduct(t *testing.T) {
	valid := ProductInput{Name: "Clavier", Price: 49.99, Category: "informatique", Stock: 10}
	assert.Empty(t, ValidateProduct(valid))

	tests := []struct {
		name  string
		mut   func(*ProductInput)
		field string
	}{
		{"prix nul", func(in *ProductInput) { in.Price = 0 }, "price"},
		{"prix négatif", func(in *ProductInput) { in.Price = -1 }, "price"},
		{"stock négatif", func(in *ProductInput) { in.Stock = -1 }, "stock"},
		{"nom vide", func(in *ProductInput) { in.Name = "" }, "name"},
		{"catégorie vide", func(in *ProductInput) { in.Category = "" }, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mut(&in)
			assert.Contains(t, fieldNames(ValidateProduct(in)), tt.field)
		})
	}
}

func TestValidateDiscount(t *testing.T) {
	assert.Empty(t, ValidateDiscount(models.Discount{Type: models.DiscountPercentage, Value: 10}))
	assert.Empty(t, ValidateDiscount(models.Discount{Type: models.DiscountFixed, Value: 5}))

	assert.NotEmpty(t, ValidateDiscount(models.Discount{Type: "autre", Value: 10}))
	assert.NotEmpty(t, ValidateDiscount(models.Discount{Type: models.DiscountPercentage, Value: 101}))
	assert.NotEmpty(t, ValidateDiscount(models.Discount{Type: models.DiscountFixed, Value: -1}))
}

func TestValidateCoupon(t *testing.T) {
	valid := CouponInput{Code: "SAVE10", Type: models.DiscountPercentage, Value: 10}
	assert.Empty(t, ValidateCoupon(valid))

	tests := []struct {
		name  string
		mut   func(*CouponInput)
		field string
	}{
		{"code vide", func(in *CouponInput) { in.Code = "  " }, "code"},
		{"type inconnu", func(in *CouponInput) { in.Type = "autre" }, "type"},
		{"valeur nulle", func(in *CouponInput) { in.Value = 0 }, "value"},
		{"pourcentage > 100", func(in *CouponInput) { in.Value = 150 }, "value"},
		{"minimum négatif", func(in *CouponInput) { in.MinOrderValue = -1 }, "min_order_value"},
		{"limite négative", func(in *CouponInput) { in.UsageLimit = -1 }, "usage_limit"},
		{"product_specific sans produits", func(in *CouponInput) { in.ProductSpecific = true }, "product_ids"},
		{"category_specific sans catégories", func(in *CouponInput) { in.CategorySpecific = true }, "categories"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mut(&in)
			assert.Contains(t, fieldNames(ValidateCoupon(in)), tt.field)
		})
	}
}

func TestValidateReview(t *testing.T) {
	assert.Empty(t, ValidateReview(ReviewInput{Rating: 1}))
	assert.Empty(t, ValidateReview(ReviewInput{Rating: 5, Comment: "Très bon produit"}))

	assert.NotEmpty(t, ValidateReview(ReviewInput{Rating: 0}))
	assert.NotEmpty(t, ValidateReview(ReviewInput{Rating: 6}))
	assert.NotEmpty(t, ValidateReview(ReviewInput{Rating: 3, Comment: strings.Repeat("x", 501)}))
}

func TestMessage(t *testing.T) {
	msg := Message([]FieldError{
		{Field: "email", Message: "adresse e-mail invalide"},
		{Field: "password", Message: "8 caractères minimum"},
	})
	assert.Equal(t, "email: adresse e-mail invalide; password: 8 caractères minimum", msg)
}
