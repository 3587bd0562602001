package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/alexanderramin/derby/internal/domain"
	"github.com/alexanderramin/derby/internal/repository"
)

// exportTimeLayout matches what spreadsheet tools parse without hints.
const exportTimeLayout = "2006-01-02 15:04:05"

var exportHeader = []string{
	"Project", "Start Time", "End Time", "Duration (seconds)", "Duration (hours)", "Notes",
}

type exportService struct {
	sessions repository.SessionRepo
	observer UseCaseObserver
}

func NewExportService(sessions repository.SessionRepo, observers ...UseCaseObserver) ExportService {
	return &exportService{sessions: sessions, observer: useCaseObserverOrNoop(observers)}
}

// ExportCSV writes completed sessions as CSV and returns the number of data
// rows written. Active sessions are skipped.
func (s *exportService) ExportCSV(ctx context.Context, w io.Writer, req ExportRequest) (rows int, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project": req.Project}
	defer func() {
		fields["rows"] = rows
		observe(ctx, s.observer, "export.csv", startedAt, fields, err)
	}()

	if err := req.Range.Validate(); err != nil {
		return 0, err
	}
	loc := req.Location
	if loc == nil {
		loc = time.Local
	}

	sessions, err := s.sessions.Query(ctx, repository.SessionQuery{
		Project:    req.Project,
		Start:      req.Range.Start,
		End:        req.Range.End,
		ClosedOnly: true,
	})
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("writing csv header: %w", err)
	}
	for _, sess := range sessions {
		secs := sess.DurationSeconds(*sess.EndTime)
		record := []string{
			sess.ProjectName,
			sess.StartTime.In(loc).Format(exportTimeLayout),
			sess.EndTime.In(loc).Format(exportTimeLayout),
			strconv.FormatInt(secs, 10),
			strconv.FormatFloat(domain.DecimalHours(secs), 'f', 2, 64),
			sess.Notes,
		}
		if err := cw.Write(record); err != nil {
			return rows, fmt.Errorf("writing csv row: %w", err)
		}
		rows++
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return rows, fmt.Errorf("flushing csv: %w", err)
	}
	return rows, nil
}
