package locks

import "context"

// UserLocker serializes dedup work per user: a detection run and any manual
// merge/unmerge for the same user are mutually exclusive. TryLock must not
// block; a held lock reports ok=false so the caller can fail fast.
type UserLocker interface {
	TryLock(ctx context.Context, userID int64) (release func(), ok bool, err error)
}
