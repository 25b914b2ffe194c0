package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxTrackedLikers bounds the liker set kept inline on a post document so
// the document itself stays small. Past the cap the oldest entry is
// evicted; an evicted actor that likes again counts as a fresh like.
const MaxTrackedLikers = 2000

// MaxPostTextLength is the cut-off applied to post content and taglines.
// Longer input is truncated, not rejected.
const MaxPostTextLength = 200

// AuthorSnapshot is the denormalized author info embedded in posts and
// comments at creation time.
type AuthorSnapshot struct {
	Handle      string `json:"handle" bson:"handle"`
	DisplayName string `json:"display_name" bson:"display_name"`
	Avatar      string `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Gender      string `json:"gender,omitempty" bson:"gender,omitempty"`
	LookingFor  string `json:"looking_for,omitempty" bson:"looking_for,omitempty"`
	ContactQQ   string `json:"contact_qq,omitempty" bson:"contact_qq,omitempty"`
	ContactWX   string `json:"contact_wx,omitempty" bson:"contact_wx,omitempty"`
}

// Post represents a teammate-wanted post stored in MongoDB
type Post struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Author       AuthorSnapshot     `json:"author" bson:"author"`
	Content      string             `json:"content" bson:"content"`
	Tagline      string             `json:"tagline,omitempty" bson:"tagline,omitempty"`
	Images       []string           `json:"images,omitempty" bson:"images,omitempty"`
	LikeCount    int                `json:"like_count" bson:"like_count"`
	LikerIDs     []string           `json:"-" bson:"liker_ids"`
	CommentCount int                `json:"comment_count" bson:"comment_count"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

// ToggleLike flips the actor's membership in the liker set and keeps the
// counter in step. Returns true when the post ends up liked by the actor.
// Removal floors the counter at zero; adding past the cap evicts the oldest
// tracked liker while the counter keeps the running total.
func (p *Post) ToggleLike(actorID string) bool {
	for i, id := range p.LikerIDs {
		if id == actorID {
			p.LikerIDs = append(p.LikerIDs[:i], p.LikerIDs[i+1:]...)
			if p.LikeCount > 0 {
				p.LikeCount--
			}
			return false
		}
	}
	p.LikerIDs = append(p.LikerIDs, actorID)
	if len(p.LikerIDs) > MaxTrackedLikers {
		p.LikerIDs = p.LikerIDs[1:]
	}
	p.LikeCount++
	return true
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content string   `json:"content" validate:"required,min=1"`
	Tagline string   `json:"tagline,omitempty"`
	Images  []string `json:"images,omitempty" validate:"omitempty,max=9"`
}
