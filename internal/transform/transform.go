package transform

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	goskema "github.com/reoring/goskema"
	g "github.com/reoring/goskema/dsl"

	"github.com/Dan9191/etl-pipeline/internal/models"
)

// unknownEmail is substituted when a user row carries no usable email.
const unknownEmail = "unknown@example.com"

// rawUser is the wire shape of a users row; surplus API fields
// (address, phone, company, ...) are stripped by the schema.
type rawUser struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type rawPost struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

func userSchema() goskema.Schema[rawUser] {
	return g.ObjectOf[rawUser]().
		Field("id", g.IntOf[int]()).Required().
		Field("name", g.StringOf[string]().Nullable()).Default("").
		Field("username", g.StringOf[string]().Nullable()).Default("").
		Field("email", g.StringOf[string]().Nullable()).Default(unknownEmail).
		UnknownStrip().
		MustBind()
}

func postSchema() goskema.Schema[rawPost] {
	return g.ObjectOf[rawPost]().
		Field("id", g.IntOf[int]()).Required().
		Field("userId", g.IntOf[int]()).Required().
		Field("title", g.StringOf[string]()).Required().
		Field("body", g.StringOf[string]().Nullable()).Default("").
		UnknownStrip().
		MustBind()
}

var (
	userRows = userSchema()
	postRows = postSchema()
)

// Transform validates and reshapes raw API rows into clean user and post
// rows. Rows failing a required-field check are silently dropped; callers
// see only the final row counts.
func Transform(ctx context.Context, rawUsers, rawPosts []json.RawMessage) ([]models.User, []models.Post) {
	users := make([]models.User, 0, len(rawUsers))
	for _, raw := range rawUsers {
		ru, err := goskema.ParseFrom(ctx, userRows, goskema.JSONBytes(raw))
		if err != nil {
			continue
		}
		email := ru.Email
		if email == "" {
			email = unknownEmail
		}
		users = append(users, models.User{
			UserID:   ru.ID,
			Name:     ru.Name,
			Username: ru.Username,
			Email:    email,
		})
	}

	posts := make([]models.Post, 0, len(rawPosts))
	for _, raw := range rawPosts {
		rp, err := goskema.ParseFrom(ctx, postRows, goskema.JSONBytes(raw))
		if err != nil {
			continue
		}
		title := strings.TrimSpace(rp.Title)
		if title == "" {
			continue
		}
		posts = append(posts, models.Post{
			PostID:   rp.ID,
			UserID:   rp.UserID,
			Title:    title,
			Body:     rp.Body,
			TitleLen: utf8.RuneCountInString(title),
		})
	}

	return users, posts
}
