package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kendall-kelly/cafe-orders-api/utils"
)

// presignedURLTTL is how long a dish photo URL stays valid
const presignedURLTTL = time.Hour

// DishImageService validates and stores dish photos in an ObjectStore
type DishImageService struct {
	store   ObjectStore
	maxSize int64
}

var dishImageServiceInstance *DishImageService

// InitDishImageService sets up the global photo service
func InitDishImageService(store ObjectStore, maxSize int64) *DishImageService {
	dishImageServiceInstance = NewDishImageService(store, maxSize)
	return dishImageServiceInstance
}

// GetDishImageService returns the global photo service, or nil when photos are disabled
func GetDishImageService() *DishImageService {
	return dishImageServiceInstance
}

// SetDishImageService sets the photo service instance (primarily for testing)
func SetDishImageService(service *DishImageService) {
	dishImageServiceInstance = service
}

// NewDishImageService creates a photo service writing to store
func NewDishImageService(store ObjectStore, maxSize int64) *DishImageService {
	return &DishImageService{store: store, maxSize: maxSize}
}

// Upload validates the file and stores it under dishes/<id>/, returning the storage key
func (s *DishImageService) Upload(ctx context.Context, dishID uint, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader, s.maxSize); err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("warning: failed to close file: %v", closeErr)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	key := fmt.Sprintf("dishes/%d/%s%s", dishID, uuid.NewString(), ext)
	if err := s.store.Put(ctx, key, content, utils.ImageContentType(ext)); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return key, nil
}

// URL returns a temporary URL for a stored photo; an empty key yields ""
func (s *DishImageService) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	url, err := s.store.PresignGet(ctx, key, presignedURLTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}
	return url, nil
}

// Delete removes a stored photo; an empty key is a no-op
func (s *DishImageService) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
