package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config regroupe toute la configuration du processus, chargée une seule
// fois au démarrage puis passée explicitement aux composants.
type Config struct {
	Port string

	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string

	StripeSecretKey string

	PayPalClientID string
	PayPalSecret   string
	PayPalBaseURL  string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string

	FrontendURL string

	CompanyName string
	CompanyIBAN string
	CompanyBIC  string
}

// Load lit le .env puis construit la configuration depuis l'environnement
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getEnv("MONGO_DATABASE", "vendora"),

		RedisAddr:     getEnv("REDIS_HOST", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		EmailFrom:    getEnv("EMAIL_FROM", "noreply@vendora.shop"),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),

		PayPalClientID: os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalSecret:   os.Getenv("PAYPAL_SECRET"),
		PayPalBaseURL:  getEnv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "vendora-products"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),

		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		CompanyName: getEnv("COMPANY_NAME", "Vendora SRL"),
		CompanyIBAN: os.Getenv("COMPANY_IBAN"),
		CompanyBIC:  os.Getenv("COMPANY_BIC"),
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI manquant dans l'environnement")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET manquant dans l'environnement")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️  %s invalide (%q), valeur par défaut %d utilisée", key, v, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️  %s invalide (%q), valeur par défaut %s utilisée", key, v, fallback)
		return fallback
	}
	return d
}
