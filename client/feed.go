package client

import (
	"sync"
)

// Token identifies one staged optimistic adjustment.
type Token int64

type staged struct {
	postID string
	amount int64
	// post version the server reported for the confirmed mutation; 0 until
	// Confirm. The delta is cleared only once a server result shows the post
	// at or past this version — never on a timer.
	version int64
}

// Feed reconciles server feed results with optimistic local adjustments. The
// displayed comment count is serverCount + delta: a delta, not an absolute
// override, so other users' activity on the same counter during the window
// shows through instead of being masked.
type Feed struct {
	mu     sync.Mutex
	posts  []Post
	byID   map[string]*Post
	deltas map[string]int64
	tokens map[Token]*staged
	next   Token
	// true once any server result has been applied; distinguishes "loading"
	// from "loaded, empty"
	loaded bool
}

func NewFeed() *Feed {
	return &Feed{
		byID:   make(map[string]*Post),
		deltas: make(map[string]int64),
		tokens: make(map[Token]*staged),
	}
}

// Loaded reports whether a first server result has arrived (spinner vs.
// empty-state).
func (f *Feed) Loaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

// Apply installs an authoritative feed result and settles any staged deltas
// the result already reflects.
func (f *Feed) Apply(posts []Post) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.posts = posts
	f.byID = make(map[string]*Post, len(posts))
	for i := range posts {
		f.byID[posts[i].ID] = &posts[i]
	}
	f.loaded = true

	for token, st := range f.tokens {
		row, exists := f.byID[st.postID]
		if !exists {
			// post deleted server-side; the adjustment has nothing to adjust
			f.drop(token, st)
			continue
		}
		if st.version > 0 && row.Version >= st.version {
			// the server value now includes our mutation
			f.drop(token, st)
		}
	}
}

// StageComment optimistically bumps a post's displayed comment count before
// the mutation round-trips. Revert or Confirm must follow.
func (f *Feed) StageComment(postID string) Token {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.next++
	token := f.next
	f.tokens[token] = &staged{postID: postID, amount: 1}
	f.deltas[postID]++
	return token
}

// Confirm records the post version the successful mutation produced. The
// delta stays visible until a server result at or past that version arrives.
func (f *Feed) Confirm(token Token, postVersion int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, ok := f.tokens[token]
	if !ok {
		return
	}
	st.version = postVersion

	// the live result may already have overtaken the mutation response
	if row, exists := f.byID[st.postID]; exists && row.Version >= postVersion {
		f.drop(token, st)
	}
}

// Revert rolls back a failed mutation by exactly the staged amount.
func (f *Feed) Revert(token Token) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if st, ok := f.tokens[token]; ok {
		f.drop(token, st)
	}
}

func (f *Feed) drop(token Token, st *staged) {
	f.deltas[st.postID] -= st.amount
	if f.deltas[st.postID] == 0 {
		delete(f.deltas, st.postID)
	}
	delete(f.tokens, token)
}

// Posts returns the feed with optimistic adjustments applied.
func (f *Feed) Posts() []Post {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Post, len(f.posts))
	copy(out, f.posts)
	for i := range out {
		if delta, ok := f.deltas[out[i].ID]; ok {
			out[i].CommentsCount += delta
			if out[i].CommentsCount < 0 {
				out[i].CommentsCount = 0
			}
		}
	}
	return out
}

// CommentsCount is the displayed count for one post.
func (f *Feed) CommentsCount(postID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	var server int64
	if row, ok := f.byID[postID]; ok {
		server = row.CommentsCount
	}
	count := server + f.deltas[postID]
	if count < 0 {
		return 0
	}
	return count
}
