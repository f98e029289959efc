package v1

import (
	"context"
	"net/http"

	"pcd-jobs-backend/internal/delivery/http/middleware"
	"pcd-jobs-backend/internal/delivery/http/response"
	"pcd-jobs-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PostingHandler struct {
	postingUC domain.PostingUsecase
}

func NewPostingHandler(public *gin.RouterGroup, protected *gin.RouterGroup, postingUC domain.PostingUsecase) {
	handler := &PostingHandler{postingUC: postingUC}

	// PUBLIC routes: open postings only
	postings := public.Group("/postings")
	{
		postings.GET("", handler.ListOpen)
		postings.GET("/:id", handler.View)
	}

	// Company-owned postings
	companies := protected.Group("/companies/postings")
	{
		companies.GET("", handler.ListMine)
		companies.POST("", handler.Create)
		companies.GET("/:id", handler.Get)
		companies.PUT("/:id", handler.Update)
		companies.DELETE("/:id", handler.Delete)
		companies.POST("/:id/submit", handler.Submit)
		companies.POST("/:id/publish", handler.Publish)
		companies.POST("/:id/pause", handler.Pause)
		companies.POST("/:id/close", handler.Close)
	}
}

// ListOpen godoc
// @Summary      List open postings (public)
// @Tags         postings
// @Produce      json
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size"
// @Success      200        {object}  response.Response{data=response.Page}
// @Router       /postings [get]
func (h *PostingHandler) ListOpen(c *gin.Context) {
	page, pageSize := pageParams(c)

	postings, total, err := h.postingUC.ListOpen(c.Request.Context(), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Paginated(c, http.StatusOK, "Open postings", postings, total, page, pageSize)
}

// View godoc
// @Summary      Get an open posting (public)
// @Description  Returns an open posting and counts the view
// @Tags         postings
// @Produce      json
// @Param        id   path      string  true  "Posting ID"
// @Success      200  {object}  response.Response{data=domain.Posting}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /postings/{id} [get]
func (h *PostingHandler) View(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	posting, err := h.postingUC.ViewPosting(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Posting details", posting)
}

// ListMine godoc
// @Summary      List the company's postings
// @Tags         postings
// @Produce      json
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size"
// @Success      200        {object}  response.Response
// @Failure      403        {object}  response.Response
// @Router       /companies/postings [get]
// @Security     BearerAuth
func (h *PostingHandler) ListMine(c *gin.Context) {
	page, pageSize := pageParams(c)

	postings, total, err := h.postingUC.ListMyPostings(c.Request.Context(), middleware.CurrentActor(c), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Paginated(c, http.StatusOK, "Company postings", postings, total, page, pageSize)
}

// Create godoc
// @Summary      Create a posting
// @Description  Creates a draft posting with its pending medical evaluation (company only)
// @Tags         postings
// @Accept       json
// @Produce      json
// @Param        posting  body      domain.PostingInput  true  "Posting fields"
// @Success      201      {object}  response.Response{data=domain.Posting}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /companies/postings [post]
// @Security     BearerAuth
func (h *PostingHandler) Create(c *gin.Context) {
	var req domain.PostingInput
	if !bindJSON(c, &req) {
		return
	}

	posting, err := h.postingUC.CreatePosting(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Posting created", posting)
}

// Get godoc
// @Summary      Get a posting
// @Description  Owners see their postings in any status
// @Tags         postings
// @Produce      json
// @Param        id   path      string  true  "Posting ID"
// @Success      200  {object}  response.Response{data=domain.Posting}
// @Failure      404  {object}  response.Response
// @Router       /companies/postings/{id} [get]
// @Security     BearerAuth
func (h *PostingHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	posting, err := h.postingUC.GetPosting(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Posting details", posting)
}

// Update godoc
// @Summary      Edit a posting
// @Description  Allowed in draft, rejected, adjustments_needed and paused; the posting returns to draft
// @Tags         postings
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Posting ID"
// @Param        posting  body      domain.PostingInput  true  "Posting fields"
// @Success      200      {object}  response.Response{data=domain.Posting}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /companies/postings/{id} [put]
// @Security     BearerAuth
func (h *PostingHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req domain.PostingInput
	if !bindJSON(c, &req) {
		return
	}

	posting, err := h.postingUC.UpdatePosting(c.Request.Context(), middleware.CurrentActor(c), id, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Posting updated", posting)
}

// Delete godoc
// @Summary      Delete a posting
// @Description  Allowed in draft, rejected, adjustments_needed and closed
// @Tags         postings
// @Produce      json
// @Param        id   path      string  true  "Posting ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /companies/postings/{id} [delete]
// @Security     BearerAuth
func (h *PostingHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.postingUC.DeletePosting(c.Request.Context(), middleware.CurrentActor(c), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Posting deleted", nil)
}

type postingAction func(ctx context.Context, company domain.Actor, id uuid.UUID) (*domain.Posting, error)

func (h *PostingHandler) runAction(c *gin.Context, action postingAction, message string) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	posting, err := action(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, message, posting)
}

// Submit godoc
// @Summary      Submit a draft for medical review
// @Tags         postings
// @Produce      json
// @Param        id   path      string  true  "Posting ID"
// @Success      200  {object}  response.Response{data=domain.Posting}
// @Failure      403  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /companies/postings/{id}/submit [post]
// @Security     BearerAuth
func (h *PostingHandler) Submit(c *gin.Context) {
	h.runAction(c, h.postingUC.SubmitForReview, "Posting submitted for review")
}

// Publish godoc
// @Summary      Publish an approved posting
// @Tags         postings
// @Produce      json
// @Param        id   path      string  true  "Posting ID"
// @Success      200  {object}  response.Response{data=domain.Posting}
// @Failure      403  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /companies/postings/{id}/publish [post]
// @Security     BearerAuth
func (h *PostingHandler) Publish(c *gin.Context) {
	h.runAction(c, h.postingUC.Publish, "Posting published")
}

// Pause godoc
// @Summary      Pause an open or approved posting
// @Tags         postings
// @Produce      json
// @Param        id   path      string  true  "Posting ID"
// @Success      200  {object}  response.Response{data=domain.Posting}
// @Failure      422  {object}  response.Response
// @Router       /companies/postings/{id}/pause [post]
// @Security     BearerAuth
func (h *PostingHandler) Pause(c *gin.Context) {
	h.runAction(c, h.postingUC.Pause, "Posting paused")
}

// Close godoc
// @Summary      Close an open posting
// @Tags         postings
// @Produce      json
// @Param        id   path      string  true  "Posting ID"
// @Success      200  {object}  response.Response{data=domain.Posting}
// @Failure      422  {object}  response.Response
// @Router       /companies/postings/{id}/close [post]
// @Security     BearerAuth
func (h *PostingHandler) Close(c *gin.Context) {
	h.runAction(c, h.postingUC.Close, "Posting closed")
}
