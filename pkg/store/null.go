package store

import "context"

// NullStore discards every record.
type NullStore struct{}

func (NullStore) Save(context.Context, *Record) error { return nil }

func (NullStore) Get(context.Context, string) (*Record, error) { return nil, ErrNotFound }

func (NullStore) List(context.Context, int) ([]*Record, error) { return nil, nil }

func (NullStore) Close() error { return nil }

var _ Store = NullStore{}
