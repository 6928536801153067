package quoting

import (
	"context"

	"github.com/angelmondragon/quotecatalog/internal/search"
	"github.com/angelmondragon/quotecatalog/internal/session"
)

func (s *Service) CreateSession(ctx context.Context) (*session.Session, error) {
	sess, err := s.sessions.Create(ctx)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithSessionID(ctx, sess.ID), "session.created")
	return sess, nil
}

func (s *Service) Session(ctx context.Context, id string) (*session.Session, error) {
	return s.sessions.Get(ctx, id)
}

// AddToCart resolves reference against the active catalog and appends it.
func (s *Service) AddToCart(ctx context.Context, sessionID, reference, variant string, quantity int) (*session.Session, error) {
	item, err := search.ResolveReference(s.Catalog(), reference, variant)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		return sess.AddLine(item, quantity)
	})
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithSessionID(ctx, sessionID)
	ctx = s.logg.WithFields(ctx, map[string]any{"reference": item.Product.Reference, "variant": item.Variant.Key, "quantity": quantity})
	s.logg.Debug(ctx, "cart.line_added")
	return sess, nil
}

func (s *Service) RemoveFromCart(ctx context.Context, sessionID string, index int) (*session.Session, error) {
	return s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		_, err := sess.RemoveLine(index)
		return err
	})
}

func (s *Service) ClearCart(ctx context.Context, sessionID string) (*session.Session, error) {
	return s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		sess.Clear()
		return nil
	})
}
