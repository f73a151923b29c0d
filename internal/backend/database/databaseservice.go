package database

import "context"

// DatabaseService is a handle to a picture store. It owns connection parameters or a pool,
// never a live session; every upload acquires its own Session via Connect.
type DatabaseService interface {
	Connect(ctx context.Context) (Session, error)
	Ping(ctx context.Context) error
	Close() error
}

// Session runs the statements of a single upload. Callers must Close it on every exit path.
type Session interface {
	// CreateTable ensures the pictures table exists. It is a no-op when the table is present.
	CreateTable(ctx context.Context) error
	InsertPicture(ctx context.Context, picture *Picture) error
	ListPictures(ctx context.Context) ([]*Picture, error)
	Close() error
}
