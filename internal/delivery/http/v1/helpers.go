package v1

import (
	"strconv"

	"pcd-jobs-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.Error(apperror.BadRequest("Invalid ID format"))
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	return page, pageSize
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return false
	}
	return true
}
