// Package services : stockage objet des images produit dans MinIO.
package services

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"vendora_back_end/internal/config"
)

type ImageStore struct {
	client   *minio.Client
	endpoint string
	bucket   string
	useSSL   bool
}

// NewImageStore connecte MinIO et s'assure que le bucket existe.
// Retourne un store inerte si MinIO n'est pas configuré.
func NewImageStore(ctx context.Context, cfg *config.Config) *ImageStore {
	if cfg.MinioEndpoint == "" {
		log.Println("⚠️ MinIO non configuré — upload d'images désactivé")
		return &ImageStore{}
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		log.Println("⚠️ MinIO non disponible :", err)
		return &ImageStore{}
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		log.Println("⚠️ Erreur vérification bucket MinIO :", err)
		return &ImageStore{}
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			log.Println("⚠️ Erreur création bucket MinIO :", err)
			return &ImageStore{}
		}
		log.Println("🪣 Bucket créé :", cfg.MinioBucket)
	}

	log.Println("✅ Connecté à MinIO :", cfg.MinioEndpoint)
	return &ImageStore{
		client:   client,
		endpoint: cfg.MinioEndpoint,
		bucket:   cfg.MinioBucket,
		useSSL:   cfg.MinioUseSSL,
	}
}

func (s *ImageStore) Enabled() bool {
	return s != nil && s.client != nil
}

// Upload pousse une image et retourne son URL publique.
// Le nom d'objet est régénéré pour éviter les collisions.
func (s *ImageStore) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	objectName := uuid.NewString() + filepath.Ext(file.Filename)

	_, err = s.client.PutObject(ctx, s.bucket, objectName, f, file.Size,
		minio.PutObjectOptions{ContentType: file.Header.Get("Content-Type")})
	if err != nil {
		return "", err
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, objectName), nil
}
