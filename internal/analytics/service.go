// Package analytics derives read-only reporting views over the certificate
// store. Nothing here is persisted; every call recomputes from current state.
package analytics

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	certmodels "securevault/internal/certificate/models"
	dErrors "securevault/pkg/domain-errors"
)

// UnknownDepartment groups certificates whose department field is empty.
const UnknownDepartment = "Unknown"

// Bucket selects the granularity for the uploads-over-time series.
type Bucket string

const (
	BucketDay   Bucket = "day"
	BucketMonth Bucket = "month"
)

// TimeBucket is one point of the sparse uploads series.
type TimeBucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Report bundles every aggregate for the dashboard endpoint.
type Report struct {
	CountByDepartment  map[string]int            `json:"countByDepartment"`
	UniqueStudentCount int                       `json:"uniqueStudentCount"`
	UploadsOverTime    []TimeBucket              `json:"uploadsOverTime"`
	RecentActivity     []*certmodels.Certificate `json:"recentActivity"`
}

// CertificateReader is the read-only store surface analytics consumes.
type CertificateReader interface {
	ListAll(ctx context.Context) ([]*certmodels.Certificate, error)
}

// Service computes the aggregates.
type Service struct {
	certs CertificateReader
}

// New constructs an analytics Service.
func New(certs CertificateReader) *Service {
	return &Service{certs: certs}
}

// CountByDepartment counts current certificates per department. Empty
// departments group under UnknownDepartment.
func (s *Service) CountByDepartment(ctx context.Context) (map[string]int, error) {
	certs, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, cert := range certs {
		dept := cert.Department
		if dept == "" {
			dept = UnknownDepartment
		}
		counts[dept]++
	}
	return counts, nil
}

// UniqueStudentCount returns the number of distinct studentIds holding at
// least one current certificate.
func (s *Service) UniqueStudentCount(ctx context.Context) (int, error) {
	certs, err := s.listAll(ctx)
	if err != nil {
		return 0, err
	}
	students := make(map[string]struct{})
	for _, cert := range certs {
		students[cert.StudentID] = struct{}{}
	}
	return len(students), nil
}

// UploadsOverTime buckets issuance timestamps by day or month. The series is
// sparse: buckets with no certificates are omitted, not zero-filled.
func (s *Service) UploadsOverTime(ctx context.Context, bucket Bucket) ([]TimeBucket, error) {
	layout := "2006-01-02"
	if bucket == BucketMonth {
		layout = "2006-01"
	}
	certs, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, cert := range certs {
		counts[cert.IssuedAt.Format(layout)]++
	}
	series := make([]TimeBucket, 0, len(counts))
	for key, count := range counts {
		series = append(series, TimeBucket{Key: key, Count: count})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Key < series[j].Key })
	return series, nil
}

// RecentActivity returns up to limit certificates, newest issuedAt first.
func (s *Service) RecentActivity(ctx context.Context, limit int) ([]*certmodels.Certificate, error) {
	certs, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(certs, func(i, j int) bool { return certs[i].IssuedAt.After(certs[j].IssuedAt) })
	if limit > 0 && limit < len(certs) {
		certs = certs[:limit]
	}
	return certs, nil
}

// BuildReport computes all aggregates in parallel with shared cancellation.
func (s *Service) BuildReport(ctx context.Context, bucket Bucket, recentLimit int) (*Report, error) {
	g, ctx := errgroup.WithContext(ctx)
	report := &Report{}

	g.Go(func() error {
		counts, err := s.CountByDepartment(ctx)
		if err != nil {
			return err
		}
		report.CountByDepartment = counts
		return nil
	})
	g.Go(func() error {
		count, err := s.UniqueStudentCount(ctx)
		if err != nil {
			return err
		}
		report.UniqueStudentCount = count
		return nil
	})
	g.Go(func() error {
		series, err := s.UploadsOverTime(ctx, bucket)
		if err != nil {
			return err
		}
		report.UploadsOverTime = series
		return nil
	})
	g.Go(func() error {
		recent, err := s.RecentActivity(ctx, recentLimit)
		if err != nil {
			return err
		}
		report.RecentActivity = recent
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Service) listAll(ctx context.Context) ([]*certmodels.Certificate, error) {
	certs, err := s.certs.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "certificate store unreachable")
	}
	return certs, nil
}
