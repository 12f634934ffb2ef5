package extract

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// fallbackUsers and fallbackPosts are the samples substituted when the
// remote API is unavailable. They are kept as raw JSON so the fallback
// path feeds the exact same row shape into transform as a live fetch.
var fallbackUsers = []json.RawMessage{
	json.RawMessage(`{"id": 1, "name": "Alice", "username": "alice", "email": "alice@example.com"}`),
	json.RawMessage(`{"id": 2, "name": "Bob", "username": "bob", "email": "bob@example.com"}`),
}

var fallbackPosts = []json.RawMessage{
	json.RawMessage(`{"userId": 1, "id": 1, "title": "Hello", "body": "First post"}`),
	json.RawMessage(`{"userId": 1, "id": 2, "title": "World", "body": "Second post"}`),
	json.RawMessage(`{"userId": 2, "id": 3, "title": "Another", "body": "Third post"}`),
}

// Fetcher retrieves a named JSON collection from the demo API.
type Fetcher interface {
	FetchCollection(resource string) ([]json.RawMessage, error)
}

// Extract fetches the users and posts collections. Any fetch error is logged
// as a warning and the fixed fallback sample is substituted for that
// collection. The returned flag reports whether any fallback was used.
func Extract(fetcher Fetcher, log *logrus.Logger) (users, posts []json.RawMessage, usedFallback bool) {
	users, err := fetcher.FetchCollection("users")
	if err != nil {
		log.Warnf("API fetch users failed (%v). Using fallback sample.", err)
		users = fallbackUsers
		usedFallback = true
	}

	posts, err = fetcher.FetchCollection("posts")
	if err != nil {
		log.Warnf("API fetch posts failed (%v). Using fallback sample.", err)
		posts = fallbackPosts
		usedFallback = true
	}

	return users, posts, usedFallback
}
