package attempts

import "context"

// Repository port for the attempt log
type Repository interface {
	Save(ctx context.Context, a *Attempt) error
	// Latest lists owner's attempts, newest first
	Latest(ctx context.Context, owner string, limit int) ([]*Attempt, error)
}

// Discard is used when no database is configured
type Discard struct{}

func (Discard) Save(context.Context, *Attempt) error { return nil }

func (Discard) Latest(context.Context, string, int) ([]*Attempt, error) { return []*Attempt{}, nil }
