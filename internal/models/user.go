package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rôles disponibles sur la plateforme
const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
	RoleBuyer  = "buyer"
)

type User struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"`
	Email      string             `json:"email" bson:"email"`
	Password   string             `json:"-" bson:"password"`
	Phone      string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Address    string             `json:"address,omitempty" bson:"address,omitempty"`
	Role       string             `json:"role" bson:"role"`
	IsBanned   bool               `json:"is_banned" bson:"is_banned"`
	IsVerified bool               `json:"is_verified" bson:"is_verified"`

	// Vérification d'e-mail et réinitialisation de mot de passe
	VerificationCode      string     `json:"-" bson:"verification_code,omitempty"`
	VerificationExpiresAt *time.Time `json:"-" bson:"verification_expires_at,omitempty"`
	ResetCode             string     `json:"-" bson:"reset_code,omitempty"`
	ResetExpiresAt        *time.Time `json:"-" bson:"reset_expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// ValidRole vérifie qu'un rôle fait partie des rôles connus
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSeller, RoleBuyer:
		return true
	}
	return false
}
