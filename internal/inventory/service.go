package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Domain errors returned by Service; handlers translate them to HTTP
var (
	ErrClusterNotFound   = errors.New("cluster not found")
	ErrClusterNameExists = errors.New("cluster name already exists")
	ErrNodeNotFound      = errors.New("node not found")
)

// Service performs cluster and node CRUD. Every call runs in its own
// transaction which is committed on success and rolled back on any error
// or panic.
type Service struct {
	db     *gorm.DB
	logger *logrus.Entry
	now    func() time.Time
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithLogger sets the service logger
func WithLogger(logger *logrus.Entry) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock replaces the time source used for timestamps
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, opts ...ServiceOption) *Service {
	s := &Service{
		db:     db,
		logger: logrus.NewEntry(logrus.StandardLogger()),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithField("component", "inventory")
	return s
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

func (s *Service) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

func orderedNodes(db *gorm.DB) *gorm.DB {
	return db.Order("nodes.id ASC")
}
