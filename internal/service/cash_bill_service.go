package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/cashbill"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/export"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/repository/storage"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ArchiveURLExpiry is how long an archived document's download link stays valid
const ArchiveURLExpiry = 24 * time.Hour

// CashBillService builds cash bill downloads from member snapshots
type CashBillService struct {
	repo           domain.CashBillRepository
	exporters      *export.Registry
	archive        storage.DocumentArchive
	eventPublisher websocket.EventPublisher
	now            Clock
	title          string
}

// NewCashBillService creates a new CashBillService
func NewCashBillService(repo domain.CashBillRepository, exporters *export.Registry, now Clock, title string) *CashBillService {
	return &CashBillService{
		repo:      repo,
		exporters: exporters,
		now:       now,
		title:     title,
	}
}

// SetArchive enables keeping a copy of every generated document
func (s *CashBillService) SetArchive(archive storage.DocumentArchive) {
	s.archive = archive
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *CashBillService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// CashBillRequest selects whose bills to render and in which format
type CashBillRequest struct {
	SelectedUser *uuid.UUID
	Format       export.Format
}

// CashBillDownload is a rendered cash bill ready to send
type CashBillDownload struct {
	Filename    string
	MemberCount int
	Artifact    *export.Artifact
	ArchiveKey  string
	ArchiveURL  string
}

// cashBillExported is the payload of a cash_bill.exported event
type cashBillExported struct {
	Filename    string        `json:"filename"`
	Format      export.Format `json:"format"`
	MemberCount int           `json:"memberCount"`
	Size        int           `json:"size"`
	ArchiveKey  string        `json:"archiveKey,omitempty"`
}

// Generate renders the cash bills for one member, or all members when none is
// selected. It returns domain.ErrNoSnapshots when there is nothing to print.
func (s *CashBillService) Generate(ctx context.Context, req CashBillRequest) (*CashBillDownload, error) {
	format := req.Format
	if format == "" {
		format = export.DefaultFormat
	}
	exporter, err := s.exporters.Get(format)
	if err != nil {
		return nil, err
	}

	snapshots, err := s.repo.ListSnapshots(ctx, req.SelectedUser)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load cash bill snapshots")
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, domain.ErrNoSnapshots
	}

	now := s.now()
	doc := cashbill.Layout(snapshots, cashbill.Options{Title: s.title, Date: now})

	artifact, err := exporter.Export(export.Input{
		Document: doc,
		Title:    s.title,
		Date:     now,
	})
	if err != nil {
		log.Error().Err(err).Str("format", string(format)).Msg("Failed to export cash bill")
		return nil, fmt.Errorf("export %s cash bill: %w", format, err)
	}

	download := &CashBillDownload{
		Filename:    export.Filename(export.CashBillDocument, export.Scope(req.SelectedUser, snapshots), now, format),
		MemberCount: len(snapshots),
		Artifact:    artifact,
	}

	if s.archive != nil {
		s.archiveDocument(ctx, download, now)
	}

	log.Info().
		Str("filename", download.Filename).
		Str("format", string(format)).
		Int("member_count", download.MemberCount).
		Int("size", artifact.Size()).
		Msg("Cash bill generated")

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(websocket.AdminChannel, websocket.CashBillExported(cashBillExported{
			Filename:    download.Filename,
			Format:      format,
			MemberCount: download.MemberCount,
			Size:        artifact.Size(),
			ArchiveKey:  download.ArchiveKey,
		}))
	}

	return download, nil
}

// archiveDocument stores a copy of the download. Failures are logged and the
// download is still served.
func (s *CashBillService) archiveDocument(ctx context.Context, download *CashBillDownload, now time.Time) {
	key := storage.ObjectKey(export.CashBillDocument, download.Filename, now)
	if err := s.archive.Store(ctx, key, download.Artifact.Data, download.Artifact.ContentType, download.Filename); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to archive cash bill")
		return
	}
	download.ArchiveKey = key

	url, err := s.archive.GeneratePresignedURL(ctx, key, ArchiveURLExpiry)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to presign archived cash bill")
		return
	}
	download.ArchiveURL = url
}
