package exchange

import (
	"context"
	"errors"

	"campus_shelf/models"
)

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrRequestNotFound   = errors.New("request not found")
	ErrDuplicateRequest  = errors.New("you've already requested this book")
	ErrOptionUnavailable = errors.New("option not available for this user")
	ErrInsufficientCoins = errors.New("not enough campus coins")
	ErrNotDonor          = errors.New("only the book's donor can change this request")
	ErrInvalidTransition = errors.New("request status cannot change")
)

// Tx 一次事务内可用的操作；LockUser / LockRequest 要求行锁
type Tx interface {
	LockUser(ctx context.Context, id string) (*models.User, error)
	SaveCounters(ctx context.Context, u *models.User) error
	// ActiveRequest 返回 (borrower, book) 上未被拒绝的请求，没有则 nil, nil
	ActiveRequest(ctx context.Context, borrowerID, bookID string) (*models.BookRequest, error)
	InsertRequest(ctx context.Context, r *models.BookRequest) error
	LockRequest(ctx context.Context, id string) (*models.BookRequest, error)
	SaveStatus(ctx context.Context, r *models.BookRequest) error
}

// Store is implemented by db.Repo. Not-found lookups return the sentinels above.
type Store interface {
	FindBook(ctx context.Context, id string) (*models.Book, error)
	ListRequestsByBorrower(ctx context.Context, borrowerID string) ([]models.BookRequest, error)
	ListRequestsByDonor(ctx context.Context, donorID string) ([]models.BookRequest, error)
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}
