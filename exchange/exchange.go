// Package exchange turns "request / acquire this book" actions into request
// records and campus-coin adjustments.
package exchange

import (
	"context"
	"fmt"
	"slices"
	"time"

	"campus_shelf/models"

	"go.uber.org/zap"
)

// Rewards 奖励常数，可由配置覆盖
type Rewards struct {
	RequestReward  int `yaml:"requestReward"`
	AcquireCost    int `yaml:"acquireCost"`
	DiscountReward int `yaml:"discountReward"`
}

func DefaultRewards() Rewards {
	return Rewards{RequestReward: 2, AcquireCost: 30, DiscountReward: 1}
}

type Choice string

const (
	PayWithCoins    Choice = "COINS"
	PayWithDiscount Choice = "DISCOUNT"
)

type NoticeType string

const (
	NoticeSuccess NoticeType = "success"
	NoticeInfo    NoticeType = "info"
	NoticeWarning NoticeType = "warning"
)

type Notification struct {
	Message string     `json:"message"`
	Type    NoticeType `json:"type"`
}

type Result struct {
	Request      *models.BookRequest `json:"request"`
	User         *models.User        `json:"user"`
	Notification Notification        `json:"notification"`
}

type RequestOptions struct {
	PreferredDeliveryDate string `json:"preferredDeliveryDate"`
	PreferredDeliveryTime string `json:"preferredDeliveryTime"`
	BorrowerContact       string `json:"borrowerContact"`
	BorrowerAltContact    string `json:"borrowerAltContact"`
}

type Service struct {
	store   Store
	rewards Rewards
	log     *zap.Logger
	now     func() time.Time
}

func NewService(store Store, rewards Rewards, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, rewards: rewards, log: log, now: time.Now}
}

func (s *Service) Rewards() Rewards { return s.rewards }

func (s *Service) newRequest(book *models.Book, borrowerID string, kind models.RequestKind, delta int, opts RequestOptions) *models.BookRequest {
	now := s.now().UTC()
	return &models.BookRequest{
		ID:                    fmt.Sprintf("req_%d", now.UnixNano()),
		BookID:                book.ID,
		BorrowerID:            borrowerID,
		DonorID:               book.DonorID,
		Status:                models.StatusPending,
		Kind:                  kind,
		CoinDelta:             delta,
		Timestamp:             now,
		PreferredDeliveryDate: opts.PreferredDeliveryDate,
		PreferredDeliveryTime: opts.PreferredDeliveryTime,
		BorrowerContact:       opts.BorrowerContact,
		BorrowerAltContact:    opts.BorrowerAltContact,
	}
}

// place 事务：锁用户 → 查重 → 记账 → 插入请求
func (s *Service) place(ctx context.Context, userID string, book *models.Book, kind func(u *models.User) (models.RequestKind, int, error), opts RequestOptions) (*models.BookRequest, *models.User, error) {
	var (
		req  *models.BookRequest
		user *models.User
	)
	err := s.store.WithTx(ctx, func(tx Tx) error {
		u, err := tx.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		existing, err := tx.ActiveRequest(ctx, userID, book.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateRequest
		}
		k, delta, err := kind(u)
		if err != nil {
			return err
		}
		if u.CampusCoins+delta < 0 {
			return ErrInsufficientCoins
		}
		u.CampusCoins += delta
		if err := tx.SaveCounters(ctx, u); err != nil {
			return err
		}
		r := s.newRequest(book, userID, k, delta, opts)
		if err := tx.InsertRequest(ctx, r); err != nil {
			return err
		}
		req, user = r, u
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return req, user, nil
}

// RequestBook creates a PENDING request for (userID, bookID) and credits the
// request reward. A second request for the same pair fails with
// ErrDuplicateRequest and changes nothing. Requesting a book the user donated
// is allowed.
func (s *Service) RequestBook(ctx context.Context, userID, bookID string, opts RequestOptions) (*Result, error) {
	book, err := s.store.FindBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	reward := s.rewards.RequestReward
	req, user, err := s.place(ctx, userID, book, func(*models.User) (models.RequestKind, int, error) {
		return models.KindRequest, reward, nil
	}, opts)
	if err != nil {
		return nil, err
	}
	s.log.Info("book requested",
		zap.String("request", req.ID),
		zap.String("book", book.ID),
		zap.String("borrower", userID),
		zap.Int("coins", user.CampusCoins))
	return &Result{
		Request:      req,
		User:         user,
		Notification: Notification{Message: fmt.Sprintf("Request sent! You earned %d Campus Coins! ✨", reward), Type: NoticeSuccess},
	}, nil
}

// Offer 两条路径：余额够就可以用币直接换，否则只能折扣价购买
type Offer struct {
	BookID          string   `json:"bookId"`
	Options         []Choice `json:"options"`
	Coins           int      `json:"coins"`
	AcquireCost     int      `json:"acquireCost"`
	CoinsAway       int      `json:"coinsAway"`
	Price           float64  `json:"price"`
	DiscountPercent int      `json:"discountPercent"`
	DiscountReward  int      `json:"discountReward"`
}

func (r Rewards) Offer(u models.User, b models.Book) Offer {
	o := Offer{
		BookID:          b.ID,
		Options:         []Choice{PayWithDiscount},
		Coins:           u.CampusCoins,
		AcquireCost:     r.AcquireCost,
		Price:           b.CurrentPrice,
		DiscountPercent: b.DiscountPercent(),
		DiscountReward:  r.DiscountReward,
	}
	if u.CampusCoins >= r.AcquireCost {
		o.Options = []Choice{PayWithCoins, PayWithDiscount}
	} else {
		o.CoinsAway = r.AcquireCost - u.CampusCoins
	}
	return o
}

func (o Offer) Allows(c Choice) bool { return slices.Contains(o.Options, c) }

func (s *Service) Offer(ctx context.Context, u *models.User, bookID string) (Offer, error) {
	book, err := s.store.FindBook(ctx, bookID)
	if err != nil {
		return Offer{}, err
	}
	return s.rewards.Offer(*u, *book), nil
}

// Acquire evaluates the offer once against the locked user row and applies the
// chosen path. The choice is not re-checked after the transaction commits.
func (s *Service) Acquire(ctx context.Context, userID, bookID string, choice Choice, opts RequestOptions) (*Result, error) {
	book, err := s.store.FindBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	var offer Offer
	req, user, err := s.place(ctx, userID, book, func(u *models.User) (models.RequestKind, int, error) {
		offer = s.rewards.Offer(*u, *book)
		if !offer.Allows(choice) {
			return "", 0, ErrOptionUnavailable
		}
		if choice == PayWithCoins {
			return models.KindAcquireCoins, -s.rewards.AcquireCost, nil
		}
		return models.KindAcquireDiscount, s.rewards.DiscountReward, nil
	}, opts)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Purchase confirmed at %.2f. You earned %d Campus Coin!", offer.Price, s.rewards.DiscountReward)
	if choice == PayWithCoins {
		msg = fmt.Sprintf("Acquired for free with %d Campus Coins!", s.rewards.AcquireCost)
	}
	s.log.Info("book acquired",
		zap.String("request", req.ID),
		zap.String("book", book.ID),
		zap.String("choice", string(choice)),
		zap.Int("coins", user.CampusCoins))
	return &Result{Request: req, User: user, Notification: Notification{Message: msg, Type: NoticeSuccess}}, nil
}

// SetStatus 捐书人处理请求：只允许 PENDING → ACCEPTED / REJECTED。
// 接受时捐书人 donationScore +1。
func (s *Service) SetStatus(ctx context.Context, donorID, requestID string, status models.RequestStatus) (*models.BookRequest, error) {
	if status != models.StatusAccepted && status != models.StatusRejected {
		return nil, ErrInvalidTransition
	}
	var out *models.BookRequest
	err := s.store.WithTx(ctx, func(tx Tx) error {
		r, err := tx.LockRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if r.DonorID != donorID {
			return ErrNotDonor
		}
		if r.Status != models.StatusPending {
			return ErrInvalidTransition
		}
		r.Status = status
		if err := tx.SaveStatus(ctx, r); err != nil {
			return err
		}
		if status == models.StatusAccepted {
			donor, err := tx.LockUser(ctx, donorID)
			if err != nil {
				return err
			}
			donor.DonationScore++
			if err := tx.SaveCounters(ctx, donor); err != nil {
				return err
			}
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("request status changed", zap.String("request", requestID), zap.String("status", string(status)))
	return out, nil
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]models.BookRequest, error) {
	return s.store.ListRequestsByBorrower(ctx, userID)
}

func (s *Service) ListIncoming(ctx context.Context, donorID string) ([]models.BookRequest, error) {
	return s.store.ListRequestsByDonor(ctx, donorID)
}
