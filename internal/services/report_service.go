package services

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/report"
	"github.com/example/pandol/internal/repository"
	"github.com/example/pandol/internal/utils"
)

// Report dataset sources.
const (
	ReportSourceSample = "sample"
	ReportSourceLive   = "live"
)

// ReportService picks the dataset for a report and renders it.
type ReportService struct {
	source      ReportSource
	letterheads LetterheadRepository
	mode        string
	logo        []byte
	log         logrus.FieldLogger
	now         func() time.Time
}

// NewReportService builds a ReportService. mode is ReportSourceSample or
// ReportSourceLive; logo may be nil to use the bundled one.
func NewReportService(source ReportSource, letterheads LetterheadRepository, mode string, logo []byte, log logrus.FieldLogger) *ReportService {
	return &ReportService{
		source:      source,
		letterheads: letterheads,
		mode:        mode,
		logo:        logo,
		log:         log.WithField("component", "report_service"),
		now:         time.Now,
	}
}

// Build derives the named report over the configured dataset.
func (s *ReportService) Build(ctx context.Context, kind, timeRange string) (*report.Report, error) {
	k, err := report.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	if timeRange == "" {
		timeRange = "week"
	}

	now := s.now()
	since, err := rangeStart(timeRange, now)
	if err != nil {
		return nil, err
	}

	ds := report.SampleDataset()
	if s.mode == ReportSourceLive {
		ds, err = s.source.Dataset(ctx, since)
		if err != nil {
			return nil, errors.Wrap(err, "load report dataset")
		}
	}

	ref, err := utils.NewReference("RPT")
	if err != nil {
		return nil, errors.Wrap(err, "generate report reference")
	}

	r, err := report.Build(k, ds, report.Options{TimeRange: timeRange, Now: now, Reference: ref})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"kind": k, "range": timeRange, "reference": ref, "source": s.mode}).Info("report built")
	return r, nil
}

// Letterhead returns the saved letterhead or the default one.
func (s *ReportService) Letterhead(ctx context.Context) report.Letterhead {
	lh, err := s.letterheads.Get(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.WithError(err).Warn("load letterhead, using default")
		}
		return report.DefaultLetterhead()
	}
	return letterheadFromModel(lh)
}

// SaveLetterhead stores the letterhead printed on documents.
func (s *ReportService) SaveLetterhead(ctx context.Context, lh report.Letterhead) error {
	return s.letterheads.Save(ctx, &models.Letterhead{
		CompanyName: lh.CompanyName,
		Address:     lh.Address,
		Phone:       lh.Phone,
		Email:       lh.Email,
		FooterNote:  lh.FooterNote,
	})
}

// RenderDocument writes the printable document for r.
func (s *ReportService) RenderDocument(ctx context.Context, w io.Writer, r *report.Report, autoPrint bool) error {
	return report.RenderDocument(w, r, report.DocumentOptions{
		Letterhead: s.Letterhead(ctx),
		Logo:       s.logo,
		AutoPrint:  autoPrint,
	})
}

func letterheadFromModel(lh *models.Letterhead) report.Letterhead {
	out := report.DefaultLetterhead()
	if lh.CompanyName != "" {
		out.CompanyName = lh.CompanyName
	}
	if lh.Address != "" {
		out.Address = lh.Address
	}
	if lh.Phone != "" {
		out.Phone = lh.Phone
	}
	if lh.Email != "" {
		out.Email = lh.Email
	}
	if lh.FooterNote != "" {
		out.FooterNote = lh.FooterNote
	}
	return out
}

// rangeStart is the earliest sale timestamp a time range covers. "custom"
// covers everything.
func rangeStart(timeRange string, now time.Time) (time.Time, error) {
	switch timeRange {
	case "day":
		return now.AddDate(0, 0, -1), nil
	case "week":
		return now.AddDate(0, 0, -7), nil
	case "month":
		return now.AddDate(0, -1, 0), nil
	case "quarter":
		return now.AddDate(0, -3, 0), nil
	case "year":
		return now.AddDate(-1, 0, 0), nil
	case "custom":
		return time.Time{}, nil
	}
	return time.Time{}, errors.Wrapf(report.ErrUnknownTimeRange, "%q", timeRange)
}
