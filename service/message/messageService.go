package message

import (
	"context"
	"errors"
	"strings"

	"carrental/model"
	"carrental/util/database"

	"github.com/jackc/pgx/v5"
)

var (
	ErrReceiverNotFound = errors.New("receiver not found")
	ErrSelfMessage      = errors.New("cannot message yourself")
	ErrEmptyContent     = errors.New("content is empty")
)

type Repo interface {
	ByEmail(ctx context.Context, email string) (*model.User, error)
	InsertMessage(ctx context.Context, tx pgx.Tx, m *model.Message) error
	ListReceived(ctx context.Context, userID int64) ([]model.Message, error)
	ListSent(ctx context.Context, userID int64) ([]model.Message, error)
}

type Service interface {
	Send(ctx context.Context, senderID int64, receiverEmail, content string) (*model.Message, error)
	Inbox(ctx context.Context, userID int64) ([]model.Message, error)
	Sent(ctx context.Context, userID int64) ([]model.Message, error)
}

type service struct {
	db database.TxBeginner
	r  Repo
}

func New(db database.TxBeginner, r Repo) Service { return &service{db: db, r: r} }

func (s *service) Send(ctx context.Context, senderID int64, receiverEmail, content string) (_ *model.Message, err error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	to, err := s.r.ByEmail(ctx, strings.TrimSpace(receiverEmail))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReceiverNotFound
		}
		return nil, err
	}
	if to.ID == senderID {
		return nil, ErrSelfMessage
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	m := &model.Message{
		SenderID:   senderID,
		ReceiverID: to.ID,
		Content:    model.TruncateContent(content),
	}
	if err = s.r.InsertMessage(ctx, tx, m); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) Inbox(ctx context.Context, userID int64) ([]model.Message, error) {
	return s.r.ListReceived(ctx, userID)
}

func (s *service) Sent(ctx context.Context, userID int64) ([]model.Message, error) {
	return s.r.ListSent(ctx, userID)
}
