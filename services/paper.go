package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sciencejournal/auth"
	"sciencejournal/models"
	"sciencejournal/repository"
	"sciencejournal/storage"
)

const pdfMIME = "application/pdf"

// PaperInput enthält die vom Autor bearbeitbaren Felder einer Einreichung.
type PaperInput struct {
	// ID und Version werden nur beim Bearbeiten ausgewertet.
	ID      uuid.UUID
	Version int

	Title        string
	Abstract     string
	AuthorFirst  string
	AuthorSecond string
	AuthorThird  string
	ConferenceID *uuid.UUID
	Keywords     []string
}

// Upload ist das hochgeladene PDF einer Einreichung.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// PaperService bündelt den Lebenszyklus eines Papers: Einreichung,
// Bearbeitung, Löschung und Begutachtung.
type PaperService struct {
	DB          *gorm.DB
	Papers      *repository.PaperRepository
	Keywords    *repository.KeywordRepository
	Documents   *repository.DocumentRepository
	Users       *repository.UserRepository
	Reviews     *repository.ReviewRepository
	Conferences *repository.ConferenceRepository
	Store       storage.DocumentStore
	Views       ViewCounter
	Logger      *zap.Logger

	MaxUploadBytes int64
}

// NewPaperService erstellt eine neue Instanz des PaperService.
func NewPaperService(db *gorm.DB, store storage.DocumentStore, views ViewCounter, logger *zap.Logger, maxUploadBytes int64) *PaperService {
	return &PaperService{
		DB:             db,
		Papers:         repository.NewPaperRepository(db),
		Keywords:       repository.NewKeywordRepository(db),
		Documents:      repository.NewDocumentRepository(db),
		Users:          repository.NewUserRepository(db),
		Reviews:        repository.NewReviewRepository(db),
		Conferences:    repository.NewConferenceRepository(db),
		Store:          store,
		Views:          views,
		Logger:         logger,
		MaxUploadBytes: maxUploadBytes,
	}
}

// normalize prüft die Pflichtfelder, bereinigt Text aus PDF-Kopien und
// verwirft leere Keywords.
func (in *PaperInput) normalize() error {
	in.Title = cleanLine(in.Title)
	in.Abstract = cleanAbstract(in.Abstract)
	in.AuthorFirst = cleanLine(in.AuthorFirst)
	in.AuthorSecond = cleanLine(in.AuthorSecond)
	in.AuthorThird = cleanLine(in.AuthorThird)
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}
	if in.AuthorFirst == "" {
		return fmt.Errorf("%w: first author is required", ErrInvalidArgument)
	}
	keywords := make([]string, 0, len(in.Keywords))
	for _, kw := range in.Keywords {
		if kw = cleanLine(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	in.Keywords = keywords
	if in.ConferenceID != nil && *in.ConferenceID == uuid.Nil {
		in.ConferenceID = nil
	}
	return nil
}

func (s *PaperService) checkConference(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.Conferences.FindByID(ctx, *id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: unknown conference", ErrInvalidArgument)
		}
		return err
	}
	return nil
}

// authorIdentities liefert den Einreicher plus alle registrierten Benutzer,
// deren E-Mail-Adresse als Token in einem Autorenfeld steht.
func (s *PaperService) authorIdentities(ctx context.Context, submitter uuid.UUID, fields []string) ([]uuid.UUID, error) {
	var emails []string
	for _, field := range fields {
		for _, token := range strings.Fields(field) {
			if strings.Contains(token, "@") {
				emails = append(emails, strings.Trim(token, ",;<>()"))
			}
		}
	}
	users, err := s.Users.FindByEmails(ctx, emails)
	if err != nil {
		return nil, err
	}
	ids := []uuid.UUID{submitter}
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

// sniffPDF prüft Endung, Größe und Inhalt des Uploads und liefert einen
// Reader, der die bereits gelesenen Bytes wieder voranstellt.
func (s *PaperService) sniffPDF(up *Upload) (string, io.Reader, error) {
	if up == nil || up.Content == nil {
		return "", nil, fmt.Errorf("%w: a PDF file is required", ErrInvalidUpload)
	}
	name, err := storage.CleanName(up.Filename)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return "", nil, fmt.Errorf("%w: only .pdf files are accepted", ErrInvalidUpload)
	}
	if up.Size <= 0 {
		return "", nil, fmt.Errorf("%w: file is empty", ErrInvalidUpload)
	}
	if s.MaxUploadBytes > 0 && up.Size > s.MaxUploadBytes {
		return "", nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidUpload, s.MaxUploadBytes)
	}

	head := make([]byte, 3072)
	n, err := io.ReadFull(up.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]
	if mtype := mimetype.Detect(head); !mtype.Is(pdfMIME) {
		return "", nil, fmt.Errorf("%w: content is %s, not a PDF", ErrInvalidUpload, mtype.String())
	}
	return name, io.MultiReader(bytes.NewReader(head), up.Content), nil
}

// CreateNewPaper legt eine Einreichung an. Der Status ist immer pending.
// Dokument, Paper, Keywords und Autoren werden in einer Transaktion
// geschrieben; scheitert sie, wird die gespeicherte Datei wieder entfernt.
func (s *PaperService) CreateNewPaper(ctx context.Context, p *auth.Principal, in PaperInput, up *Upload) (*models.Paper, error) {
	if p == nil {
		return nil, ErrForbidden
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if err := s.checkConference(ctx, in.ConferenceID); err != nil {
		return nil, err
	}
	original, content, err := s.sniffPDF(up)
	if err != nil {
		return nil, err
	}

	paper := &models.Paper{
		Title:        in.Title,
		Abstract:     in.Abstract,
		AuthorFirst:  in.AuthorFirst,
		AuthorSecond: in.AuthorSecond,
		AuthorThird:  in.AuthorThird,
		ConferenceID: in.ConferenceID,
		SubmittedBy:  p.UserID,
	}
	authorIDs, err := s.authorIdentities(ctx, p.UserID, paper.AuthorFields())
	if err != nil {
		return nil, err
	}

	doc := &models.PaperDocument{
		ID:           uuid.New(),
		OriginalName: original,
		ContentType:  pdfMIME,
		Size:         up.Size,
	}
	doc.DocumentName = doc.ID.String() + "_" + original
	if err := s.Store.Save(ctx, doc.DocumentName, content, up.Size); err != nil {
		s.Logger.Error("Failed to store uploaded document", zap.String("document", doc.DocumentName), zap.Error(err))
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Documents.WithTx(tx).Create(ctx, doc); err != nil {
			return err
		}
		paper.DocumentID = &doc.ID
		papers := s.Papers.WithTx(tx)
		if err := papers.Create(ctx, paper); err != nil {
			return err
		}
		if err := s.Keywords.WithTx(tx).AddAll(ctx, paper.ID, in.Keywords); err != nil {
			return err
		}
		return papers.ReplaceAuthors(ctx, paper.ID, authorIDs)
	})
	if err != nil {
		s.Logger.Error("Failed to persist paper, removing stored document",
			zap.String("document", doc.DocumentName), zap.Error(err))
		if delErr := s.Store.Delete(context.WithoutCancel(ctx), doc.DocumentName); delErr != nil {
			s.Logger.Warn("Could not remove orphaned document", zap.String("document", doc.DocumentName), zap.Error(delErr))
		}
		return nil, fromRepo(err)
	}

	submissionsCounter.Inc()
	s.Logger.Info("Paper submitted",
		zap.String("paper_id", paper.ID.String()),
		zap.String("submitted_by", p.Email),
		zap.Int("keywords", len(in.Keywords)))
	return s.GetDetailsForPaper(ctx, paper.ID)
}

// GetAllPapers liefert alle Paper, optional nach Status gefiltert.
func (s *PaperService) GetAllPapers(ctx context.Context, filter repository.PaperFilter) ([]models.Paper, error) {
	return s.Papers.FindAll(ctx, filter)
}

func (s *PaperService) GetAllPendingPapers(ctx context.Context) ([]models.Paper, error) {
	return s.Papers.FindPending(ctx)
}

// GetPapersForUser liefert die Paper, mit denen userID als Autor verknüpft ist.
func (s *PaperService) GetPapersForUser(ctx context.Context, userID uuid.UUID) ([]models.Paper, error) {
	return s.Papers.FindByAuthor(ctx, userID)
}

func (s *PaperService) GetDetailsForPaper(ctx context.Context, id uuid.UUID) (*models.Paper, error) {
	paper, err := s.Papers.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err)
	}
	return paper, nil
}

// loadModifiable lädt das Paper und prüft erst danach die Berechtigung,
// damit ein fehlendes Paper immer als ErrNotFound erscheint.
func (s *PaperService) loadModifiable(ctx context.Context, p *auth.Principal, id uuid.UUID) (*models.Paper, error) {
	paper, err := s.GetDetailsForPaper(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanModify(paper) {
		return nil, ErrForbidden
	}
	return paper, nil
}

// GetDetailsForEdit liefert ein Paper für das Bearbeitungsformular.
func (s *PaperService) GetDetailsForEdit(ctx context.Context, p *auth.Principal, id uuid.UUID) (*models.Paper, error) {
	paper, err := s.loadModifiable(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !paper.IsPending() {
		return nil, ErrNotEditable
	}
	return paper, nil
}

// GetDetailsForDelete liefert ein Paper für die Löschbestätigung.
func (s *PaperService) GetDetailsForDelete(ctx context.Context, p *auth.Principal, id uuid.UUID) (*models.Paper, error) {
	return s.loadModifiable(ctx, p, id)
}

// UpdateExistingPaper schreibt die Änderungen eines Autors. Paper, Keywords
// und Autorenverknüpfung werden atomar ersetzt.
func (s *PaperService) UpdateExistingPaper(ctx context.Context, p *auth.Principal, id uuid.UUID, in PaperInput) (*models.Paper, error) {
	if in.ID != id {
		return nil, ErrNotFound
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	paper, err := s.GetDetailsForEdit(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkConference(ctx, in.ConferenceID); err != nil {
		return nil, err
	}

	if in.Version != 0 {
		paper.Version = in.Version
	}
	paper.Title = in.Title
	paper.Abstract = in.Abstract
	paper.AuthorFirst = in.AuthorFirst
	paper.AuthorSecond = in.AuthorSecond
	paper.AuthorThird = in.AuthorThird
	paper.ConferenceID = in.ConferenceID

	authorIDs, err := s.authorIdentities(ctx, paper.SubmittedBy, paper.AuthorFields())
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		papers := s.Papers.WithTx(tx)
		if err := papers.Update(ctx, paper); err != nil {
			return err
		}
		keywords := s.Keywords.WithTx(tx)
		if err := keywords.DeleteAllKeywordsForPaper(ctx, paper.ID); err != nil {
			return err
		}
		if err := keywords.AddAll(ctx, paper.ID, in.Keywords); err != nil {
			return err
		}
		return papers.ReplaceAuthors(ctx, paper.ID, authorIDs)
	})
	if errors.Is(err, repository.ErrConflict) {
		exists, existsErr := s.Papers.Exists(ctx, id)
		if existsErr != nil {
			return nil, existsErr
		}
		if !exists {
			return nil, ErrNotFound
		}
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fromRepo(err)
	}

	s.Logger.Info("Paper updated", zap.String("paper_id", id.String()), zap.Int("version", paper.Version))
	return s.GetDetailsForPaper(ctx, id)
}

// DeletePaper entfernt ein Paper samt Keywords, Autoren, Gutachten und
// Dokument. Die Datei wird danach nach bestem Bemühen gelöscht.
func (s *PaperService) DeletePaper(ctx context.Context, p *auth.Principal, id uuid.UUID) error {
	paper, err := s.loadModifiable(ctx, p, id)
	if err != nil {
		return err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Keywords.WithTx(tx).DeleteAllKeywordsForPaper(ctx, id); err != nil {
			return err
		}
		papers := s.Papers.WithTx(tx)
		if err := papers.DeleteAuthors(ctx, id); err != nil {
			return err
		}
		if err := s.Reviews.WithTx(tx).DeleteByPaper(ctx, id); err != nil {
			return err
		}
		if err := papers.Delete(ctx, id); err != nil {
			return err
		}
		if paper.DocumentID != nil {
			return s.Documents.WithTx(tx).Delete(ctx, *paper.DocumentID)
		}
		return nil
	})
	if err != nil {
		return fromRepo(err)
	}

	log := s.Logger.With(zap.String("paper_id", id.String()))
	if paper.Document != nil {
		if err := s.Store.Delete(ctx, paper.Document.DocumentName); err != nil {
			log.Warn("Paper deleted but document file could not be removed",
				zap.String("document", paper.Document.DocumentName),
				zap.Error(err))
		}
	}
	log.Info("Paper deleted", zap.String("deleted_by", p.Email))
	return nil
}

func (s *PaperService) ApprovePaper(ctx context.Context, p *auth.Principal, id uuid.UUID) (*models.Paper, error) {
	return s.review(ctx, p, id, models.StatusApproved)
}

func (s *PaperService) DenyPaper(ctx context.Context, p *auth.Principal, id uuid.UUID) (*models.Paper, error) {
	return s.review(ctx, p, id, models.StatusDenied)
}

// review führt den Übergang pending -> to aus und protokolliert die Entscheidung.
func (s *PaperService) review(ctx context.Context, p *auth.Principal, id uuid.UUID, to models.PaperStatus) (*models.Paper, error) {
	if !p.HasCapability(auth.CapabilityAdmin) {
		return nil, ErrAdminRequired
	}
	paper, err := s.GetDetailsForPaper(ctx, id)
	if err != nil {
		return nil, err
	}
	if !paper.IsPending() {
		return nil, ErrInvalidTransition
	}

	details, err := json.Marshal(map[string]string{
		"previous_status": string(paper.Status),
		"reviewer_email":  p.Email,
	})
	if err != nil {
		return nil, err
	}
	now := time.Now()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Papers.WithTx(tx).UpdateStatus(ctx, id, models.StatusPending, to, now); err != nil {
			return err
		}
		return s.Reviews.WithTx(tx).Create(ctx, &models.PaperReview{
			PaperID:    id,
			ReviewerID: p.UserID,
			Decision:   to,
			Details:    datatypes.JSON(details),
		})
	})
	if errors.Is(err, repository.ErrConflict) {
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, fromRepo(err)
	}

	reviewsCounter.WithLabelValues(string(to)).Inc()
	s.Logger.Info("Paper reviewed",
		zap.String("paper_id", id.String()),
		zap.String("decision", string(to)),
		zap.String("reviewer", p.Email))
	return s.GetDetailsForPaper(ctx, id)
}

// ReviewHistory liefert die protokollierten Entscheidungen zu einem Paper.
// Nur Administratoren sehen das Protokoll.
func (s *PaperService) ReviewHistory(ctx context.Context, p *auth.Principal, id uuid.UUID) ([]models.PaperReview, error) {
	if !p.HasCapability(auth.CapabilityAdmin) {
		return nil, ErrAdminRequired
	}
	if _, err := s.GetDetailsForPaper(ctx, id); err != nil {
		return nil, err
	}
	return s.Reviews.FindByPaper(ctx, id)
}

// RecordView zählt einen Aufruf der Detailseite. Fehler werden nur geloggt.
func (s *PaperService) RecordView(ctx context.Context, id uuid.UUID) {
	if s.Views == nil {
		return
	}
	if err := s.Views.Record(ctx, id); err != nil {
		s.Logger.Warn("Failed to record paper view", zap.String("paper_id", id.String()), zap.Error(err))
	}
}

// SyncViews schreibt die gepufferten Aufrufe in papers.view_count.
func (s *PaperService) SyncViews(ctx context.Context) (int, error) {
	if s.Views == nil {
		return 0, nil
	}
	counts, err := s.Views.Drain(ctx)
	if err != nil {
		s.Logger.Error("Failed to drain view counter", zap.Error(err))
	}
	updated := 0
	for id, n := range counts {
		if err := s.Papers.AddViews(ctx, id, n); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.Logger.Debug("Dropping views of deleted paper", zap.String("paper_id", id.String()), zap.Int64("views", n))
				continue
			}
			s.Logger.Error("Failed to persist paper views", zap.String("paper_id", id.String()), zap.Error(err))
			continue
		}
		viewsSyncedCounter.Add(float64(n))
		updated++
	}
	return updated, err
}

// RefreshBacklog aktualisiert die Metrik der offenen Einreichungen.
func (s *PaperService) RefreshBacklog(ctx context.Context) (int64, error) {
	count, err := s.Papers.CountByStatus(ctx, models.StatusPending)
	if err != nil {
		return 0, err
	}
	pendingGauge.Set(float64(count))
	return count, nil
}
