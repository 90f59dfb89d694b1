package query

import (
	"github.com/goliatone/go-rooms/access"
)

func safeGuard(g access.Guard) access.Guard {
	return access.Ensure(g)
}
