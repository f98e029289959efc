package v1

import (
	"net/http"

	"pcd-jobs-backend/internal/delivery/http/middleware"
	"pcd-jobs-backend/internal/delivery/http/response"
	"pcd-jobs-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application routes. limit throttles the
// apply endpoint.
func NewApplicationHandler(protected *gin.RouterGroup, applicationUC domain.ApplicationUsecase, limit gin.HandlerFunc) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	candidates := protected.Group("/candidates")
	{
		candidates.POST("/postings/:id/apply", limit, handler.Apply)
		candidates.GET("/applications", handler.ListMine)
		candidates.POST("/applications/:id/withdraw", handler.Withdraw)
		candidates.GET("/compatible-postings", handler.Compatible)
	}

	companies := protected.Group("/companies")
	{
		companies.GET("/postings/:id/applications", handler.ListForPosting)
		companies.PATCH("/applications/:id", handler.Review)
	}
}

// Apply godoc
// @Summary      Apply to a posting
// @Description  Candidate applies to an open posting whose approved categories match their profile
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id           path      string             true  "Posting ID"
// @Param        application  body      domain.ApplyInput  false "Message to the company"
// @Success      201          {object}  response.Response{data=domain.Application}
// @Failure      403          {object}  response.Response
// @Failure      404          {object}  response.Response
// @Failure      409          {object}  response.Response
// @Failure      422          {object}  response.Response
// @Router       /candidates/postings/{id}/apply [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Apply(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req domain.ApplyInput
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationUC.Apply(c.Request.Context(), middleware.CurrentActor(c), id, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Application submitted successfully", app)
}

// ListMine godoc
// @Summary      List my applications
// @Tags         applications
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Application}
// @Failure      403  {object}  response.Response
// @Router       /candidates/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	apps, err := h.applicationUC.ListMyApplications(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", apps)
}

// Withdraw godoc
// @Summary      Withdraw an application
// @Tags         applications
// @Produce      json
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response{data=domain.Application}
// @Failure      403  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /candidates/applications/{id}/withdraw [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	app, err := h.applicationUC.WithdrawApplication(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application withdrawn", app)
}

// Compatible godoc
// @Summary      Postings compatible with my profile
// @Description  Open postings approved for at least one of the candidate's disability categories
// @Tags         applications
// @Produce      json
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size"
// @Success      200        {object}  response.Response
// @Failure      403        {object}  response.Response
// @Router       /candidates/compatible-postings [get]
// @Security     BearerAuth
func (h *ApplicationHandler) Compatible(c *gin.Context) {
	page, pageSize := pageParams(c)

	postings, total, err := h.applicationUC.CompatiblePostings(c.Request.Context(), middleware.CurrentActor(c), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Paginated(c, http.StatusOK, "Compatible postings", postings, total, page, pageSize)
}

// ListForPosting godoc
// @Summary      List applications for a posting
// @Description  Owning company or admin only
// @Tags         applications
// @Produce      json
// @Param        id   path      string  true  "Posting ID"
// @Success      200  {object}  response.Response{data=[]domain.Application}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /companies/postings/{id}/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListForPosting(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	apps, err := h.applicationUC.ListPostingApplications(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", apps)
}

// Review godoc
// @Summary      Update an application
// @Description  Owning company changes status, rating (1-5) or notes
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id      path      string              true  "Application ID"
// @Param        review  body      domain.ReviewInput  true  "Changes"
// @Success      200     {object}  response.Response{data=domain.Application}
// @Failure      400     {object}  response.Response
// @Failure      403     {object}  response.Response
// @Failure      422     {object}  response.Response
// @Router       /companies/applications/{id} [patch]
// @Security     BearerAuth
func (h *ApplicationHandler) Review(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req domain.ReviewInput
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationUC.ReviewApplication(c.Request.Context(), middleware.CurrentActor(c), id, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application updated", app)
}
