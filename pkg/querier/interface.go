package querier

import (
	"context"

	"github.com/darkclainer/kabgo/pkg/parser"
)

//go:generate go run github.com/vektra/mockery/cmd/mockery -name Querier -output ../mocks/

type Querier interface {
	Categories(ctx context.Context) ([]*parser.Category, error)
	Entries(ctx context.Context, page string) ([]*parser.LexicalEntry, error)
	Close(ctx context.Context) error
}
