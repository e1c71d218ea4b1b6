package tracker

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"csfloat-trader/internal/models"
	"csfloat-trader/internal/services/csfloat"
)

// Account is the part of the CSFloat service the tracker reads from.
type Account interface {
	GetBalance() (csfloat.Cents, error)
	ListOwnOrders() ([]csfloat.OwnBuyOrder, error)
}

// Service periodically records the account balance and open buy orders.
type Service struct {
	db      *gorm.DB
	account Account
	log     logrus.FieldLogger
	now     func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

// ErrRunning is returned by Start when the schedule is already active.
var ErrRunning = errors.New("tracker already running")

// cronLogger routes cron's own messages, including recovered panics, to logrus.
type cronLogger struct {
	log logrus.FieldLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(kvFields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithFields(kvFields(keysAndValues)).WithError(err).Error(msg)
}

func kvFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

func NewService(db *gorm.DB, account Account, log logrus.FieldLogger) *Service {
	return &Service{
		db:      db,
		account: account,
		log:     log.WithField("service", "tracker"),
		now:     time.Now,
	}
}

// Snapshot fetches the balance and every open order and stores them as one
// run. Nothing is stored when either fetch fails.
func (s *Service) Snapshot() (string, error) {
	balance, err := s.account.GetBalance()
	if err != nil {
		return "", errors.Wrap(err, "fetch balance")
	}
	orders, err := s.account.ListOwnOrders()
	if err != nil {
		return "", errors.Wrap(err, "fetch buy orders")
	}

	runID := uuid.NewString()
	takenAt := s.now().UTC()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.BalanceSnapshot{
			RunID:   runID,
			Balance: int64(balance),
			TakenAt: takenAt,
		}).Error; err != nil {
			return err
		}
		if len(orders) == 0 {
			return nil
		}
		rows := make([]models.OrderSnapshot, 0, len(orders))
		for _, o := range orders {
			rows = append(rows, models.OrderSnapshot{
				RunID:          runID,
				OrderID:        o.ID,
				MarketHashName: o.MarketHashName,
				Quantity:       o.Quantity,
				Price:          int64(o.Price),
				OrderCreatedAt: o.CreatedAt,
				TakenAt:        takenAt,
			})
		}
		return tx.CreateInBatches(&rows, 100).Error
	})
	if err != nil {
		return "", errors.Wrap(err, "store snapshot")
	}

	s.log.WithFields(logrus.Fields{
		"run_id":  runID,
		"balance": balance.String(),
		"orders":  len(orders),
	}).Info("snapshot stored")
	return runID, nil
}

// Start runs Snapshot on the given cron schedule until Stop is called. A
// panic inside one run is logged and does not stop the schedule.
func (s *Service) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return ErrRunning
	}

	logger := cronLogger{log: s.log}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger)))
	_, err := c.AddFunc(schedule, func() {
		if _, err := s.Snapshot(); err != nil {
			s.log.WithError(err).Error("snapshot failed")
		}
	})
	if err != nil {
		return errors.Wrapf(err, "invalid schedule %q", schedule)
	}
	s.cron = c
	c.Start()
	s.log.WithField("schedule", schedule).Info("tracker started")
	return nil
}

// Stop waits for a running snapshot to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
}

// BalanceHistory returns the newest balance snapshots first.
func (s *Service) BalanceHistory(limit int) ([]models.BalanceSnapshot, error) {
	var snaps []models.BalanceSnapshot
	err := s.db.Order("taken_at DESC").Order("id DESC").Limit(limit).Find(&snaps).Error
	return snaps, err
}

// LatestOrders returns the orders recorded by the most recent run, or an
// empty slice when no run exists yet.
func (s *Service) LatestOrders() ([]models.OrderSnapshot, error) {
	var latest models.BalanceSnapshot
	err := s.db.Order("taken_at DESC").Order("id DESC").First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.OrderSnapshot{}, nil
	}
	if err != nil {
		return nil, err
	}

	var orders []models.OrderSnapshot
	err = s.db.Where("run_id = ?", latest.RunID).Order("id ASC").Find(&orders).Error
	return orders, err
}
