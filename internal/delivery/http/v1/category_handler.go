package v1

import (
	"net/http"

	"pcd-jobs-backend/internal/delivery/http/response"
	"pcd-jobs-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categoryUC domain.CategoryUsecase
}

func NewCategoryHandler(public *gin.RouterGroup, categoryUC domain.CategoryUsecase) {
	handler := &CategoryHandler{categoryUC: categoryUC}

	public.GET("/categories", handler.ListCategories)
	public.GET("/accessibility-resources", handler.ListResources)
}

// ListCategories godoc
// @Summary      List disability categories
// @Tags         categories
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.DisabilityCategory}
// @Router       /categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryUC.ListCategories(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Disability categories", categories)
}

// ListResources godoc
// @Summary      List accessibility resources
// @Tags         categories
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.AccessibilityResource}
// @Router       /accessibility-resources [get]
func (h *CategoryHandler) ListResources(c *gin.Context) {
	resources, err := h.categoryUC.ListResources(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Accessibility resources", resources)
}
