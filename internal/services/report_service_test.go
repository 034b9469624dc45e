package services_test

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/report"
	"github.com/example/pandol/internal/repository"
	"github.com/example/pandol/internal/services"
	"github.com/example/pandol/internal/services/mocks"
)

var referencePattern = regexp.MustCompile(`^RPT-[0-9A-Z]{6}$`)

func TestReportServiceSample(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockReportSource(ctrl)
	letterheads := mocks.NewMockLetterheadRepository(ctrl)
	svc := services.NewReportService(source, letterheads, services.ReportSourceSample, nil, quietLog)

	r, err := svc.Build(context.Background(), "sales", "")
	require.NoError(t, err)
	assert.Equal(t, "₱6669.80", r.Cards[0].Value)
	assert.Equal(t, "67", r.Cards[1].Value)
	assert.Equal(t, "5", r.Cards[2].Value)
	assert.Regexp(t, referencePattern, r.Reference)

	_, err = svc.Build(context.Background(), "payroll", "week")
	assert.ErrorIs(t, err, report.ErrUnknownKind)

	_, err = svc.Build(context.Background(), "sales", "fortnight")
	assert.ErrorIs(t, err, report.ErrUnknownTimeRange)
}

func TestReportServiceLive(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockReportSource(ctrl)
	letterheads := mocks.NewMockLetterheadRepository(ctrl)
	svc := services.NewReportService(source, letterheads, services.ReportSourceLive, nil, quietLog)

	source.EXPECT().Dataset(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, since time.Time) (report.Dataset, error) {
			assert.WithinDuration(t, time.Now().AddDate(0, -1, 0), since, time.Minute)
			return report.Dataset{Inventory: []report.InventoryRecord{
				{ID: 1, Name: "Rice", Category: "Grains", Stock: 2, ReorderLevel: 10, Status: report.StatusLowStock},
			}}, nil
		})

	r, err := svc.Build(context.Background(), "inventory", "month")
	require.NoError(t, err)
	assert.Equal(t, "1", r.Cards[1].Value)

	source.EXPECT().Dataset(gomock.Any(), time.Time{}).Return(report.Dataset{}, errors.New("db gone"))
	_, err = svc.Build(context.Background(), "credit", "custom")
	assert.Error(t, err)
}

func TestReportServiceLetterhead(t *testing.T) {
	ctrl := gomock.NewController(t)
	letterheads := mocks.NewMockLetterheadRepository(ctrl)
	svc := services.NewReportService(mocks.NewMockReportSource(ctrl), letterheads, services.ReportSourceSample, nil, quietLog)

	letterheads.EXPECT().Get(gomock.Any()).Return(nil, repository.ErrNotFound)
	assert.Equal(t, report.DefaultLetterhead(), svc.Letterhead(context.Background()))

	letterheads.EXPECT().Get(gomock.Any()).Return(&models.Letterhead{CompanyName: "Pandol MPC", Phone: "0917 000 0000"}, nil)
	lh := svc.Letterhead(context.Background())
	assert.Equal(t, "Pandol MPC", lh.CompanyName)
	assert.Equal(t, "0917 000 0000", lh.Phone)
	assert.Equal(t, report.DefaultLetterhead().Address, lh.Address)

	letterheads.EXPECT().Get(gomock.Any()).Return(&models.Letterhead{CompanyName: "Pandol MPC"}, nil)
	r, err := svc.Build(context.Background(), "members", "year")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.RenderDocument(context.Background(), &buf, r, true))
	assert.Contains(t, buf.String(), "Pandol MPC")
	assert.Contains(t, buf.String(), "Member Report")

	letterheads.EXPECT().Save(gomock.Any(), &models.Letterhead{CompanyName: "X", Address: "Y"}).Return(nil)
	require.NoError(t, svc.SaveLetterhead(context.Background(), report.Letterhead{CompanyName: "X", Address: "Y"}))
}
