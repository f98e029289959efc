package v1

import (
	"net/http"

	"pcd-jobs-backend/internal/delivery/http/middleware"
	"pcd-jobs-backend/internal/delivery/http/response"
	"pcd-jobs-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewUC domain.ReviewUsecase
}

func NewReviewHandler(protected *gin.RouterGroup, reviewUC domain.ReviewUsecase) {
	handler := &ReviewHandler{reviewUC: reviewUC}

	doctors := protected.Group("/doctors")
	{
		doctors.GET("/reviews", handler.Queue)
		doctors.POST("/reviews/:id/decision", handler.Decide)
		doctors.GET("/stats", handler.Stats)
	}

	protected.GET("/postings/:id/evaluations", handler.ListEvaluations)
}

// Queue godoc
// @Summary      Medical review queue
// @Description  Postings waiting for a doctor's decision, oldest first (doctor or admin)
// @Tags         reviews
// @Produce      json
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size"
// @Success      200        {object}  response.Response
// @Failure      403        {object}  response.Response
// @Router       /doctors/reviews [get]
// @Security     BearerAuth
func (h *ReviewHandler) Queue(c *gin.Context) {
	page, pageSize := pageParams(c)

	postings, total, err := h.reviewUC.ListPendingReview(c.Request.Context(), middleware.CurrentActor(c), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Paginated(c, http.StatusOK, "Postings pending review", postings, total, page, pageSize)
}

// Decide godoc
// @Summary      Record a medical decision
// @Description  Decides the posting's pending evaluation and moves the posting to the matching status (doctor only)
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id        path      string               true  "Posting ID"
// @Param        decision  body      domain.DecisionInput  true  "Decision"
// @Success      200       {object}  response.Response{data=domain.Posting}
// @Failure      400       {object}  response.Response
// @Failure      403       {object}  response.Response
// @Failure      404       {object}  response.Response
// @Failure      422       {object}  response.Response
// @Router       /doctors/reviews/{id}/decision [post]
// @Security     BearerAuth
func (h *ReviewHandler) Decide(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req domain.DecisionInput
	if !bindJSON(c, &req) {
		return
	}

	posting, err := h.reviewUC.DoctorDecide(c.Request.Context(), middleware.CurrentActor(c), id, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Decision recorded", posting)
}

// Stats godoc
// @Summary      Doctor review statistics
// @Tags         reviews
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.DoctorStats}
// @Failure      403  {object}  response.Response
// @Router       /doctors/stats [get]
// @Security     BearerAuth
func (h *ReviewHandler) Stats(c *gin.Context) {
	stats, err := h.reviewUC.DoctorStats(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Doctor statistics", stats)
}

// ListEvaluations godoc
// @Summary      Review history of a posting
// @Description  Owner, doctors and admins only; newest first
// @Tags         reviews
// @Produce      json
// @Param        id   path      string  true  "Posting ID"
// @Success      200  {object}  response.Response{data=[]domain.MedicalEvaluation}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /postings/{id}/evaluations [get]
// @Security     BearerAuth
func (h *ReviewHandler) ListEvaluations(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	evaluations, err := h.reviewUC.ListEvaluations(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Posting evaluations", evaluations)
}
