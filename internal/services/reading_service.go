package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pustaka/internal/models"
	"pustaka/internal/repositories"
)

// ReadingService records reads and borrows for the signed-in user.
type ReadingService struct {
	books   repositories.BookRepository
	borrows repositories.BorrowRepository
	reads   repositories.ReadRepository
	events  *Events
	now     func() time.Time
}

// NewReadingService creates a new ReadingService.
func NewReadingService(books repositories.BookRepository, borrows repositories.BorrowRepository, reads repositories.ReadRepository, events *Events) *ReadingService {
	return &ReadingService{
		books:   books,
		borrows: borrows,
		reads:   reads,
		events:  events,
		now:     time.Now,
	}
}

// RecordRead notes that the caller opened a book.
func (s *ReadingService) RecordRead(ctx context.Context, actor *models.Session, bookID string) (*models.Read, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	book, err := s.getBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	read := &models.Read{UserID: actor.UserID, BookID: book.ID, ReadDate: s.now()}
	if err := s.reads.Create(ctx, read); err != nil {
		if errors.Is(err, repositories.ErrReferenced) {
			return nil, s.danglingReference(ctx, bookID)
		}
		return nil, fmt.Errorf("failed to record read: %w", err)
	}
	read.Book = book
	s.events.emit("book.read", actor, book.ID, read)
	return read, nil
}

// ReadHistory returns the caller's reads, newest first.
func (s *ReadingService) ReadHistory(ctx context.Context, actor *models.Session) ([]models.Read, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	reads, err := s.reads.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reading history: %w", err)
	}
	return reads, nil
}

// Borrow lends a book to the caller. A user holds at most one active borrow
// per book.
func (s *ReadingService) Borrow(ctx context.Context, actor *models.Session, bookID string) (*models.Borrow, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	book, err := s.getBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	_, err = s.borrows.FindActive(ctx, actor.UserID, book.ID)
	switch {
	case err == nil:
		return nil, conflict("book %q is already borrowed", book.Title)
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("failed to check active borrow: %w", err)
	}

	borrow := &models.Borrow{UserID: actor.UserID, BookID: book.ID, BorrowDate: s.now()}
	if err := s.borrows.Create(ctx, borrow); err != nil {
		if errors.Is(err, repositories.ErrReferenced) {
			return nil, s.danglingReference(ctx, bookID)
		}
		return nil, fmt.Errorf("failed to create borrow: %w", err)
	}
	borrow.Book = book
	s.events.emit("borrow.created", actor, borrow.ID, borrow)
	return borrow, nil
}

// Return closes an active borrow. Only its owner or an admin may return it.
func (s *ReadingService) Return(ctx context.Context, actor *models.Session, borrowID string) (*models.Borrow, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	borrow, err := s.borrows.GetByID(ctx, borrowID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("borrow", borrowID)
		}
		return nil, fmt.Errorf("failed to get borrow: %w", err)
	}
	if borrow.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if !borrow.Active() {
		return nil, conflict("borrow has already been returned")
	}

	at := s.now()
	if err := s.borrows.MarkReturned(ctx, borrowID, at); err != nil {
		// Someone else returned it in the meantime.
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, conflict("borrow has already been returned")
		}
		return nil, fmt.Errorf("failed to return borrow: %w", err)
	}
	borrow.ReturnDate = &at
	s.events.emit("borrow.returned", actor, borrow.ID, borrow)
	return borrow, nil
}

// Borrows returns the caller's borrow history, newest first.
func (s *ReadingService) Borrows(ctx context.Context, actor *models.Session) ([]models.Borrow, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	borrows, err := s.borrows.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load borrows: %w", err)
	}
	return borrows, nil
}

func (s *ReadingService) getBook(ctx context.Context, bookID string) (*models.Book, error) {
	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return nil, invalid("bookId is required")
	}
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("book", bookID)
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

// danglingReference explains a foreign key failure on insert. Either the book
// was deleted after it was looked up, or the session outlived its account.
func (s *ReadingService) danglingReference(ctx context.Context, bookID string) error {
	if _, err := s.getBook(ctx, bookID); err != nil {
		return err
	}
	return fmt.Errorf("%w: account no longer exists", ErrUnauthenticated)
}
