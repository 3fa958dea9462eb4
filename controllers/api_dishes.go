package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-orders-api/config"
	"github.com/kendall-kelly/cafe-orders-api/models"
	"github.com/kendall-kelly/cafe-orders-api/serializers"
	"github.com/kendall-kelly/cafe-orders-api/services"
	"github.com/kendall-kelly/cafe-orders-api/utils"
)

func dishService() *services.DishService {
	return services.NewDishService(config.GetDB())
}

// dishImageURL presigns the dish photo URL. Failures are logged and the URL omitted.
func dishImageURL(ctx context.Context, dish *models.Dish) string {
	images := services.GetDishImageService()
	if images == nil || dish.ImageS3Key == nil {
		return ""
	}
	url, err := images.URL(ctx, *dish.ImageS3Key)
	if err != nil {
		log.Printf("warning: failed to generate image URL for dish %d: %v", dish.ID, err)
		return ""
	}
	return url
}

func dishResponse(ctx context.Context, dish *models.Dish) serializers.DishResponse {
	return serializers.NewDishResponse(dish, dishImageURL(ctx, dish))
}

// ListDishes handles GET /api/dish/ - lists dishes newest first
func ListDishes(c *gin.Context) {
	dishes, err := dishService().List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "retrieve dishes")
		return
	}

	resp := make([]serializers.DishResponse, 0, len(dishes))
	for i := range dishes {
		resp = append(resp, dishResponse(c.Request.Context(), &dishes[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetDish handles GET /api/dish/:id/
func GetDish(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "dish")
	if !ok {
		return
	}

	dish, err := dishService().Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "retrieve dish")
		return
	}
	c.JSON(http.StatusOK, dishResponse(c.Request.Context(), dish))
}

// CreateDish handles POST /api/dish/
func CreateDish(c *gin.Context) {
	var req serializers.DishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	dish, err := dishService().Create(c.Request.Context(), req.ToInput())
	if err != nil {
		respondServiceError(c, err, "create dish")
		return
	}
	c.JSON(http.StatusCreated, dishResponse(c.Request.Context(), dish))
}

// ReplaceDish handles PUT /api/dish/:id/ - name and price are both required
func ReplaceDish(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "dish")
	if !ok {
		return
	}

	var req serializers.DishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	in := req.ToInput()
	dish, err := dishService().Update(c.Request.Context(), id, services.DishPatch{Name: &in.Name, Price: &in.Price})
	if err != nil {
		respondServiceError(c, err, "update dish")
		return
	}
	c.JSON(http.StatusOK, dishResponse(c.Request.Context(), dish))
}

// PatchDish handles PATCH /api/dish/:id/ - absent fields stay unchanged
func PatchDish(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "dish")
	if !ok {
		return
	}

	var req serializers.DishPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	dish, err := dishService().Update(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		respondServiceError(c, err, "update dish")
		return
	}
	c.JSON(http.StatusOK, dishResponse(c.Request.Context(), dish))
}

// DeleteDish handles DELETE /api/dish/:id/ - removes the dish, the order items
// referencing it and its photo
func DeleteDish(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "dish")
	if !ok {
		return
	}

	dish, err := dishService().Delete(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "delete dish")
		return
	}
	deleteDishImage(c.Request.Context(), dish)
	c.Status(http.StatusNoContent)
}

func deleteDishImage(ctx context.Context, dish *models.Dish) {
	images := services.GetDishImageService()
	if images == nil || dish.ImageS3Key == nil {
		return
	}
	if err := images.Delete(ctx, *dish.ImageS3Key); err != nil {
		log.Printf("warning: failed to delete photo of dish %d: %v", dish.ID, err)
	}
}

// UploadDishImage handles POST /api/dish/:id/image - stores a PNG or JPEG photo
// from the multipart field "image" and replaces the previous one
func UploadDishImage(c *gin.Context) {
	images := services.GetDishImageService()
	if images == nil {
		respondError(c, http.StatusServiceUnavailable, "IMAGE_STORAGE_DISABLED", "Dish photo storage is not configured")
		return
	}

	id, ok := parseIDParam(c, "id", "dish")
	if !ok {
		return
	}
	dish, err := dishService().Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "retrieve dish")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "Multipart field \"image\" is required")
		return
	}

	key, err := images.Upload(c.Request.Context(), dish.ID, fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
			return
		}
		log.Printf("Failed to upload photo of dish %d: %v", dish.ID, err)
		respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to upload image")
		return
	}

	previous := dish.ImageS3Key
	updated, err := dishService().SetImageKey(c.Request.Context(), dish.ID, &key)
	if err != nil {
		if delErr := images.Delete(c.Request.Context(), key); delErr != nil {
			log.Printf("warning: failed to remove orphaned photo %s: %v", key, delErr)
		}
		respondServiceError(c, err, "update dish")
		return
	}
	if previous != nil {
		deleteDishImage(c.Request.Context(), &models.Dish{ID: dish.ID, ImageS3Key: previous})
	}

	c.JSON(http.StatusOK, dishResponse(c.Request.Context(), updated))
}
