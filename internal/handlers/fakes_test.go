package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"

	"github.com/moyustudio/teamup-board/backend/internal/apperrors"
	"github.com/moyustudio/teamup-board/backend/internal/models"
	"github.com/moyustudio/teamup-board/backend/validators"
)

// newTestContext builds an echo context around an optional JSON body, wired
// with the same validator the server installs.
func newTestContext(t *testing.T, method, path string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// fakeUserRepo is an in-memory UserRepository keyed by handle.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
	next  uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (f *fakeUserRepo) CreateUser(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.Handle]; ok {
		return gorm.ErrDuplicatedKey
	}
	f.next++
	user.ID = f.next
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.Handle] = &cp
	return nil
}

func (f *fakeUserRepo) GetUserByHandle(handle string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[handle]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) UpdateUser(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.Handle]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	f.users[user.Handle] = &cp
	return nil
}

func (f *fakeUserRepo) DeleteUser(handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[handle]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.users, handle)
	return nil
}

// UpdateUserLocked mutates the stored record in place, mirroring how the row
// state is committed even when fn reports a business error.
func (f *fakeUserRepo) UpdateUserLocked(handle string, fn func(*models.User) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[handle]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	return fn(u)
}

// fakePostRepo is an in-memory PostRepository keyed by hex object ID.
type fakePostRepo struct {
	mu    sync.Mutex
	posts map[string]*models.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[string]*models.Post{}}
}

func (f *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	if post.LikerIDs == nil {
		post.LikerIDs = []string{}
	}
	cp := *post
	f.posts[post.ID.Hex()] = &cp
	return nil
}

func (f *fakePostRepo) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, apperrors.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePostRepo) GetRecentPosts(_ context.Context, limit int64) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Post, 0, len(f.posts))
	for _, p := range f.posts {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePostRepo) DeletePost(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return apperrors.ErrPostNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) ToggleLike(_ context.Context, postID, actorID string) (bool, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[postID]
	if !ok {
		return false, 0, apperrors.ErrPostNotFound
	}
	liked := p.ToggleLike(actorID)
	return liked, p.LikeCount, nil
}

func (f *fakePostRepo) adjustCommentCount(postID string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[postID]
	if !ok {
		return apperrors.ErrPostNotFound
	}
	p.CommentCount += delta
	if p.CommentCount < 0 {
		p.CommentCount = 0
	}
	return nil
}

// fakeCommentRepo is an in-memory CommentRepository that keeps the parent
// post's counter in step through the shared fakePostRepo.
type fakeCommentRepo struct {
	mu       sync.Mutex
	posts    *fakePostRepo
	comments []*models.Comment
}

func newFakeCommentRepo(posts *fakePostRepo) *fakeCommentRepo {
	return &fakeCommentRepo{posts: posts}
}

func (f *fakeCommentRepo) AddComment(_ context.Context, comment *models.Comment) error {
	if err := f.posts.adjustCommentCount(comment.PostID.Hex(), 1); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	cp := *comment
	f.comments = append(f.comments, &cp)
	return nil
}

func (f *fakeCommentRepo) GetCommentByID(_ context.Context, id string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.comments {
		if c.ID.Hex() == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.ErrCommentNotFound
}

func (f *fakeCommentRepo) GetCommentsByPostID(_ context.Context, postID string) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Comment
	for _, c := range f.comments {
		if c.PostID.Hex() == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) DeleteComment(_ context.Context, comment *models.Comment) error {
	f.mu.Lock()
	found := false
	for i, c := range f.comments {
		if c.ID == comment.ID {
			f.comments = append(f.comments[:i], f.comments[i+1:]...)
			found = true
			break
		}
	}
	f.mu.Unlock()
	if !found {
		return apperrors.ErrCommentNotFound
	}
	return f.posts.adjustCommentCount(comment.PostID.Hex(), -1)
}

// fakeConversationRepo is an in-memory ConversationRepository driven by a
// logical clock so inbox ordering is deterministic.
type fakeConversationRepo struct {
	mu    sync.Mutex
	now   time.Time
	convs map[string]*models.Conversation
	msgs  map[string][]models.Message
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		now:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		convs: map[string]*models.Conversation{},
		msgs:  map[string][]models.Message{},
	}
}

func (f *fakeConversationRepo) SendMessage(_ context.Context, from, to, content string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(time.Second)

	convID := models.ConversationID(from, to)
	conv, ok := f.convs[convID]
	if !ok {
		conv = models.NewConversation(from, to, f.now)
		f.convs[convID] = conv
	}
	conv.ApplyMessage(from, to, content, f.now)

	msg := models.Message{
		ID:             primitive.NewObjectID(),
		ConversationID: convID,
		Sender:         from,
		Content:        content,
		CreatedAt:      f.now,
	}
	f.msgs[convID] = append(f.msgs[convID], msg)
	return &msg, nil
}

func (f *fakeConversationRepo) MarkRead(_ context.Context, actor, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.convs[conversationID]
	if !ok || !conv.HasParticipant(actor) {
		return apperrors.ErrConversationNotFound
	}
	conv.MarkRead(actor)
	return nil
}

func (f *fakeConversationRepo) HideSession(_ context.Context, actor, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.convs[conversationID]
	if !ok || !conv.HasParticipant(actor) {
		return apperrors.ErrConversationNotFound
	}
	conv.Hide(actor)
	return nil
}

func (f *fakeConversationRepo) GetInbox(_ context.Context, actor string) ([]models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Conversation
	for _, conv := range f.convs {
		if conv.HasParticipant(actor) && !conv.HiddenBy(actor) {
			out = append(out, *conv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakeConversationRepo) GetHistory(_ context.Context, conversationID string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.msgs[conversationID]
	if len(msgs) > models.ChatHistoryPageSize {
		msgs = msgs[len(msgs)-models.ChatHistoryPageSize:]
	}
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}
