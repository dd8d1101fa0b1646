package crawler

import "errors"

// ErrMemberFetch is returned when a room's member list cannot be fetched
// within the retry policy. It aborts the whole crawl: a graph missing a room
// would be silently wrong.
var ErrMemberFetch = errors.New("failed to fetch room members")
