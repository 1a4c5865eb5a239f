package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sciencejournal/auth"
	"sciencejournal/middleware"
	"sciencejournal/models"
	"sciencejournal/repository"
	"sciencejournal/services"
)

// PaperController verbindet die Paper-Routen mit dem PaperService.
type PaperController struct {
	Papers      *services.PaperService
	Documents   *services.DocumentService
	Conferences *services.ConferenceService
	Logger      *zap.Logger
	PreviewLen  int
}

func NewPaperController(papers *services.PaperService, documents *services.DocumentService, conferences *services.ConferenceService, logger *zap.Logger, previewLen int) *PaperController {
	return &PaperController{
		Papers:      papers,
		Documents:   documents,
		Conferences: conferences,
		Logger:      logger,
		PreviewLen:  previewLen,
	}
}

// paperID liest :id. Eine ungültige ID kann kein Paper bezeichnen und wird
// deshalb wie ein fehlendes Paper behandelt.
func paperID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, false
	}
	return id, true
}

func (pc *PaperController) Index(c *gin.Context) {
	var filter repository.PaperFilter
	if raw := c.Query("status"); raw != "" {
		status := models.PaperStatus(raw)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown status %q", raw)})
			return
		}
		filter.Status = &status
	}
	papers, err := pc.Papers.GetAllPapers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	conferences, err := pc.Conferences.GetConferences(c.Request.Context())
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"view":        "Index",
		"papers":      summarize(papers, pc.PreviewLen),
		"conferences": conferences,
	})
}

// CreateForm liefert die Vorbelegung des Einreichungsformulars.
func (pc *PaperController) CreateForm(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	conferences, err := pc.Conferences.GetConferences(c.Request.Context())
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"view":        "Create",
		"form":        gin.H{"author_first": p.Email},
		"conferences": conferences,
	})
}

func (pc *PaperController) Create(c *gin.Context) {
	in, ok := pc.bindPaperForm(c)
	if !ok {
		return
	}

	var upload *services.Upload
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			respondError(c, pc.Logger, err)
			return
		}
		defer f.Close()
		upload = &services.Upload{Filename: fh.Filename, Size: fh.Size, Content: f}
	}

	paper, err := pc.Papers.CreateNewPaper(c.Request.Context(), middleware.CurrentPrincipal(c), in, upload)
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"paper": detail(paper), "redirect": "MyPapers"})
}

func (pc *PaperController) Details(c *gin.Context) {
	id, ok := paperID(c, "id")
	if !ok {
		return
	}
	paper, err := pc.Papers.GetDetailsForPaper(c.Request.Context(), id)
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	pc.Papers.RecordView(c.Request.Context(), id)

	previous := c.DefaultQuery("prev", "Index")
	p := middleware.CurrentPrincipal(c)
	c.JSON(http.StatusOK, gin.H{
		"view":            "Details",
		"paper":           detail(paper),
		"no_edit":         c.Query("flag") == "1",
		"previous_action": previous,
		"can_edit":        p.CanModify(paper) && paper.IsPending(),
	})
}

// GetPdfDocument streamt das PDF. Der Stream wird auf jedem Weg geschlossen.
func (pc *PaperController) GetPdfDocument(c *gin.Context) {
	id, ok := paperID(c, "documentId")
	if !ok {
		return
	}
	doc, obj, err := pc.Documents.OpenDocument(c.Request.Context(), id)
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	defer obj.Close()

	size := obj.Size
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, "application/pdf", obj, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", doc.OriginalName),
	})
}

func (pc *PaperController) MyPapers(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	papers, err := pc.Papers.GetPapersForUser(c.Request.Context(), p.UserID)
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": "MyPapers", "papers": summarize(papers, pc.PreviewLen)})
}

func (pc *PaperController) EditForm(c *gin.Context) {
	id, ok := paperID(c, "id")
	if !ok {
		return
	}
	paper, err := pc.Papers.GetDetailsForEdit(c.Request.Context(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	conferences, err := pc.Conferences.GetConferences(c.Request.Context())
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": "Edit", "paper": detail(paper), "conferences": conferences})
}

func (pc *PaperController) Edit(c *gin.Context) {
	id, ok := paperID(c, "id")
	if !ok {
		return
	}
	in, ok := pc.bindPaperForm(c)
	if !ok {
		return
	}
	paper, err := pc.Papers.UpdateExistingPaper(c.Request.Context(), middleware.CurrentPrincipal(c), id, in)
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paper": detail(paper), "redirect": "MyPapers"})
}

func (pc *PaperController) DeleteForm(c *gin.Context) {
	id, ok := paperID(c, "id")
	if !ok {
		return
	}
	paper, err := pc.Papers.GetDetailsForDelete(c.Request.Context(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": "Delete", "paper": detail(paper)})
}

func (pc *PaperController) DeleteConfirmed(c *gin.Context) {
	id, ok := paperID(c, "id")
	if !ok {
		return
	}
	if err := pc.Papers.DeletePaper(c.Request.Context(), middleware.CurrentPrincipal(c), id); err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id, "redirect": "MyPapers"})
}

func (pc *PaperController) ShowPendingPapers(c *gin.Context) {
	if !middleware.CurrentPrincipal(c).HasCapability(auth.CapabilityAdmin) {
		respondError(c, pc.Logger, services.ErrAdminRequired)
		return
	}
	papers, err := pc.Papers.GetAllPendingPapers(c.Request.Context())
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": "ShowPendingPapers", "papers": summarize(papers, pc.PreviewLen)})
}

func (pc *PaperController) ApprovePaper(c *gin.Context) {
	pc.review(c, pc.Papers.ApprovePaper)
}

func (pc *PaperController) DenyPaper(c *gin.Context) {
	pc.review(c, pc.Papers.DenyPaper)
}

func (pc *PaperController) ReviewHistory(c *gin.Context) {
	id, ok := paperID(c, "id")
	if !ok {
		return
	}
	reviews, err := pc.Papers.ReviewHistory(c.Request.Context(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paper_id": id, "reviews": reviews})
}

func (pc *PaperController) review(c *gin.Context, decide func(context.Context, *auth.Principal, uuid.UUID) (*models.Paper, error)) {
	id, ok := paperID(c, "id")
	if !ok {
		return
	}
	paper, err := decide(c.Request.Context(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paper": detail(paper), "redirect": "ShowPendingPapers"})
}

// bindPaperForm liest Formular- oder JSON-Daten einer Einreichung.
func (pc *PaperController) bindPaperForm(c *gin.Context) (services.PaperInput, bool) {
	var form paperForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return services.PaperInput{}, false
	}
	form.jsonBody = c.ContentType() == binding.MIMEJSON
	in, err := form.input()
	if err != nil {
		respondError(c, pc.Logger, err)
		return in, false
	}
	return in, true
}
